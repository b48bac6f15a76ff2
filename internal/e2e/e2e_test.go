package e2e

import (
    "encoding/json"
    "net/http"
    "strings"
    "testing"

    "bedrockproxy/internal/bedrocktest"
    "bedrockproxy/internal/translate"
    "bedrockproxy/pkg/types"
)

func claudeDelta(text string) bedrocktest.Event {
    b, _ := json.Marshal(map[string]any{
        "type":  "content_block_delta",
        "index": 0,
        "delta": map[string]string{"type": "text_delta", "text": text},
    })
    return bedrocktest.Chunk(string(b))
}

// TestE2E_ClaudeStream drives a Claude stream end to end, including the
// non-delta frames the service sends around the text.
func TestE2E_ClaudeStream(t *testing.T) {
    srv, fake, _ := newStack(t, func(inv bedrocktest.Invocation) bedrocktest.Response {
        return bedrocktest.Response{Events: []bedrocktest.Event{
            bedrocktest.Chunk(`{"type":"message_start","message":{"role":"assistant"}}`),
            claudeDelta("Hello"),
            claudeDelta(", world"),
            bedrocktest.Chunk(`{"type":"message_stop","amazon-bedrock-invocationMetrics":{"inputTokenCount":3,"outputTokenCount":2}}`),
        }}
    })

    resp, body := httpPostJSON(t, srv.URL+"/chat", []byte(`{"prompt":"Hi","max_tokens":10,"temperature":0.5}`))
    if resp.StatusCode != http.StatusOK { t.Fatalf("status=%d body=%s", resp.StatusCode, body) }
    if string(body) != "Hello, world" { t.Fatalf("body=%q", body) }
    if resp.Header.Get("X-Stream-ID") == "" { t.Fatalf("missing X-Stream-ID") }
    if tr := resp.Trailer.Get("X-Stream-Error"); tr != "" { t.Fatalf("unexpected stream error trailer %q", tr) }

    invs := fake.Invocations()
    if len(invs) != 1 { t.Fatalf("invocations=%d", len(invs)) }
    if invs[0].ModelID != translate.DefaultModelID { t.Fatalf("model=%q", invs[0].ModelID) }
    var sent map[string]any
    if err := json.Unmarshal(invs[0].Body, &sent); err != nil { t.Fatalf("payload: %v", err) }
    if sent["anthropic_version"] != "bedrock-2023-05-31" || sent["max_tokens"] != float64(10) || sent["temperature"] != 0.5 {
        t.Fatalf("unexpected payload: %v", sent)
    }
}

func TestE2E_LlamaAndGenericFamilies(t *testing.T) {
    srv, fake, _ := newStack(t, func(inv bedrocktest.Invocation) bedrocktest.Response {
        if strings.Contains(inv.ModelID, "llama") {
            return bedrocktest.Response{Events: []bedrocktest.Event{
                bedrocktest.Chunk(`{"generation":"Hi "}`),
                bedrocktest.Chunk(`{"generation":"there","stop_reason":"stop"}`),
            }}
        }
        return bedrocktest.Response{Events: []bedrocktest.Event{
            bedrocktest.Chunk(`{"outputText":"Titan says hi","index":0}`),
        }}
    })

    _, body := httpPostJSON(t, srv.URL+"/chat", []byte(`{"prompt":"x","modelId":"meta.llama3-8b-instruct-v1:0"}`))
    if string(body) != "Hi there" { t.Fatalf("llama body=%q", body) }
    _, body = httpPostJSON(t, srv.URL+"/chat", []byte(`{"prompt":"x","modelId":"amazon.titan-text-express-v1"}`))
    if string(body) != "Titan says hi" { t.Fatalf("generic body=%q", body) }

    invs := fake.Invocations()
    if len(invs) != 2 { t.Fatalf("invocations=%d", len(invs)) }
    var llama map[string]any
    _ = json.Unmarshal(invs[0].Body, &llama)
    if llama["max_gen_len"] != float64(types.DefaultMaxTokens) { t.Fatalf("llama payload=%v", llama) }
    var generic map[string]any
    _ = json.Unmarshal(invs[1].Body, &generic)
    if generic["inputText"] != "x" { t.Fatalf("generic payload=%v", generic) }
}

func TestE2E_OpenFailureIsInBand(t *testing.T) {
    srv, _, p := newStack(t, func(inv bedrocktest.Invocation) bedrocktest.Response {
        return bedrocktest.Response{Status: http.StatusForbidden, ErrorType: "AccessDeniedException", Message: "not authorized for model"}
    })
    resp, body := httpPostJSON(t, srv.URL+"/chat", []byte(`{"prompt":"x"}`))
    if resp.StatusCode != http.StatusOK { t.Fatalf("status=%d", resp.StatusCode) }
    if !strings.HasPrefix(string(body), "Error: ") || !strings.Contains(string(body), "not authorized for model") {
        t.Fatalf("body=%q", body)
    }
    if tr := resp.Trailer.Get("X-Stream-Error"); tr != "upstream_connection" { t.Fatalf("trailer=%q", tr) }
    if st := p.Status(); st.StreamErrorsTotal != 1 || st.LastError == "" { t.Fatalf("status=%+v", st) }
}

func TestE2E_MidStreamException(t *testing.T) {
    srv, _, _ := newStack(t, func(inv bedrocktest.Invocation) bedrocktest.Response {
        return bedrocktest.Response{Events: []bedrocktest.Event{
            claudeDelta("partial"),
            bedrocktest.Exception("modelStreamErrorException", "model overloaded"),
        }}
    })
    resp, body := httpPostJSON(t, srv.URL+"/chat", []byte(`{"prompt":"x"}`))
    if !strings.HasPrefix(string(body), "partialError: ") || !strings.Contains(string(body), "model overloaded") {
        t.Fatalf("body=%q", body)
    }
    if tr := resp.Trailer.Get("X-Stream-Error"); tr != "upstream_stream" { t.Fatalf("trailer=%q", tr) }
}

func TestE2E_MalformedFrameEndsStream(t *testing.T) {
    srv, _, _ := newStack(t, func(inv bedrocktest.Invocation) bedrocktest.Response {
        return bedrocktest.Response{Events: []bedrocktest.Event{
            claudeDelta("Hello"),
            bedrocktest.Chunk(`not json`),
            claudeDelta("never"),
        }}
    })
    resp, body := httpPostJSON(t, srv.URL+"/chat", []byte(`{"prompt":"x"}`))
    if !strings.HasPrefix(string(body), "HelloError: ") || strings.Contains(string(body), "never") {
        t.Fatalf("body=%q", body)
    }
    if tr := resp.Trailer.Get("X-Stream-Error"); tr != "malformed_frame" { t.Fatalf("trailer=%q", tr) }
}

func TestE2E_ModelsAndStatus(t *testing.T) {
    srv, _, _ := newStack(t, func(inv bedrocktest.Invocation) bedrocktest.Response { return bedrocktest.Response{} })

    resp, body := httpGet(t, srv.URL+"/models")
    if resp.StatusCode != http.StatusOK { t.Fatalf("/models %d", resp.StatusCode) }
    var models []types.Model
    if err := json.Unmarshal(body, &models); err != nil { t.Fatalf("/models json: %v", err) }
    if len(models) != 5 || models[3].ID != "meta.llama3-8b-instruct-v1:0" { t.Fatalf("models=%+v", models) }

    resp, _ = httpGet(t, srv.URL+"/readyz")
    if resp.StatusCode != http.StatusOK { t.Fatalf("/readyz %d", resp.StatusCode) }

    // An empty stream is a successful, empty response.
    resp, body = httpPostJSON(t, srv.URL+"/chat", []byte(`{"prompt":""}`))
    if resp.StatusCode != http.StatusOK || len(body) != 0 { t.Fatalf("empty stream: %d %q", resp.StatusCode, body) }

    resp, body = httpGet(t, srv.URL+"/status")
    if resp.StatusCode != http.StatusOK { t.Fatalf("/status %d", resp.StatusCode) }
    var st types.StatusResponse
    if err := json.Unmarshal(body, &st); err != nil { t.Fatalf("/status json: %v", err) }
    if st.Region != testRegion || st.StreamsTotal != 1 || st.ActiveStreams != 0 { t.Fatalf("status=%+v", st) }
}
