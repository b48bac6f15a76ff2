package e2e

import (
    "bytes"
    "context"
    "io"
    "net/http"
    "net/http/httptest"
    "testing"

    "github.com/rs/zerolog"

    "bedrockproxy/internal/bedrocktest"
    "bedrockproxy/internal/httpapi"
    "bedrockproxy/internal/pipeline"
    "bedrockproxy/internal/proxy"
    "bedrockproxy/internal/registry"
    "bedrockproxy/internal/upstream"
)

const testRegion = "us-east-1"

// newStack starts a fake Bedrock endpoint and serves the real HTTP stack in
// front of it through the SDK client.
func newStack(t *testing.T, h bedrocktest.Handler) (*httptest.Server, *bedrocktest.Server, *proxy.Proxy) {
    t.Helper()
    bedrocktest.SetEnv(t, testRegion)
    fake := bedrocktest.NewServer(h)
    t.Cleanup(fake.Close)

    client, err := upstream.NewBedrock(context.Background(), upstream.Options{Region: testRegion, EndpointURL: fake.URL})
    if err != nil {
        t.Fatalf("bedrock client: %v", err)
    }
    httpapi.SetLogger(zerolog.New(io.Discard))
    p := proxy.New(proxy.Config{
        Opener: pipeline.FromClient(client),
        Models: registry.Default(),
        Region: testRegion,
        Logger: zerolog.Nop(),
    })
    srv := httptest.NewServer(httpapi.NewMux(p))
    t.Cleanup(srv.Close)
    return srv, fake, p
}

func httpGet(t *testing.T, url string) (*http.Response, []byte) {
    t.Helper()
    req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, url, nil)
    if err != nil { t.Fatalf("new req: %v", err) }
    resp, err := http.DefaultClient.Do(req)
    if err != nil { t.Fatalf("do req: %v", err) }
    body, _ := io.ReadAll(resp.Body)
    _ = resp.Body.Close()
    return resp, body
}

func httpPostJSON(t *testing.T, url string, payload []byte) (*http.Response, []byte) {
    t.Helper()
    req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, url, bytes.NewReader(payload))
    if err != nil { t.Fatalf("new req: %v", err) }
    req.Header.Set("Content-Type", "application/json")
    resp, err := http.DefaultClient.Do(req)
    if err != nil { t.Fatalf("do req: %v", err) }
    body, _ := io.ReadAll(resp.Body)
    _ = resp.Body.Close()
    return resp, body
}
