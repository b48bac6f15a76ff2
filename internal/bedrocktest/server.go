// Package bedrocktest runs a local stand-in for the Bedrock Runtime
// streaming endpoint. It speaks the AWS event stream encoding so a real SDK
// client can be pointed at it with a custom endpoint URL.
package bedrocktest

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws/protocol/eventstream"
)

// Event is one frame written to the response stream.
type Event struct {
	// Chunk is the JSON document carried by a chunk event.
	Chunk string
	// ExceptionType, when set, makes this frame a modeled stream exception
	// such as "modelStreamErrorException".
	ExceptionType string
	Message       string
}

// Chunk returns a chunk event carrying doc.
func Chunk(doc string) Event { return Event{Chunk: doc} }

// Exception returns an in-stream exception event.
func Exception(typ, msg string) Event { return Event{ExceptionType: typ, Message: msg} }

// Response scripts the reply to one invocation. A non-zero Status other than
// 200 fails the call before any stream is established.
type Response struct {
	Status    int
	ErrorType string
	Message   string
	Events    []Event
}

// Invocation records a received request.
type Invocation struct {
	ModelID string
	Body    []byte
}

// Handler picks the response for an invocation.
type Handler func(inv Invocation) Response

// Server is a fake Bedrock Runtime endpoint.
type Server struct {
	*httptest.Server

	mu   sync.Mutex
	seen []Invocation
}

const streamSuffix = "/invoke-with-response-stream"

// NewServer starts a server answering every invocation with h. Callers must
// Close it.
func NewServer(h Handler) *Server {
	s := &Server{}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || !strings.HasPrefix(r.URL.Path, "/model/") || !strings.HasSuffix(r.URL.Path, streamSuffix) {
			writeError(w, http.StatusNotFound, "UnknownOperationException", "unknown operation "+r.URL.Path)
			return
		}
		body, _ := io.ReadAll(r.Body)
		inv := Invocation{
			ModelID: strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/model/"), streamSuffix),
			Body:    body,
		}
		s.mu.Lock()
		s.seen = append(s.seen, inv)
		s.mu.Unlock()

		resp := h(inv)
		if resp.Status != 0 && resp.Status != http.StatusOK {
			writeError(w, resp.Status, resp.ErrorType, resp.Message)
			return
		}
		w.Header().Set("Content-Type", "application/vnd.amazon.eventstream")
		w.Header().Set("X-Amzn-Bedrock-Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		enc := eventstream.NewEncoder()
		for _, ev := range resp.Events {
			if err := enc.Encode(w, message(ev)); err != nil {
				return
			}
			if f, ok := w.(http.Flusher); ok {
				f.Flush()
			}
		}
	}))
	return s
}

// Invocations returns the requests received so far.
func (s *Server) Invocations() []Invocation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Invocation(nil), s.seen...)
}

func message(ev Event) eventstream.Message {
	var msg eventstream.Message
	msg.Headers.Set(":content-type", eventstream.StringValue("application/json"))
	if ev.ExceptionType != "" {
		msg.Headers.Set(":message-type", eventstream.StringValue("exception"))
		msg.Headers.Set(":exception-type", eventstream.StringValue(ev.ExceptionType))
		msg.Payload, _ = json.Marshal(map[string]string{"message": ev.Message})
		return msg
	}
	msg.Headers.Set(":message-type", eventstream.StringValue("event"))
	msg.Headers.Set(":event-type", eventstream.StringValue("chunk"))
	msg.Payload, _ = json.Marshal(struct {
		Bytes []byte `json:"bytes"`
	}{Bytes: []byte(ev.Chunk)})
	return msg
}

func writeError(w http.ResponseWriter, status int, typ, msg string) {
	if typ != "" {
		w.Header().Set("X-Amzn-ErrorType", typ)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": msg})
}

// Env returns AWS variables that give the SDK static credentials and keep
// it away from the host's shared config and instance metadata.
func Env(dir, region string) []string {
	return []string{
		"AWS_ACCESS_KEY_ID=AKIDTEST",
		"AWS_SECRET_ACCESS_KEY=secret",
		"AWS_SESSION_TOKEN=",
		"AWS_REGION=" + region,
		"AWS_PROFILE=",
		"AWS_EC2_METADATA_DISABLED=true",
		"AWS_CONFIG_FILE=" + filepath.Join(dir, "aws-config"),
		"AWS_SHARED_CREDENTIALS_FILE=" + filepath.Join(dir, "aws-credentials"),
	}
}

// SetEnv applies Env to the current test process.
func SetEnv(t testing.TB, region string) {
	t.Helper()
	for _, kv := range Env(t.TempDir(), region) {
		k, v, _ := strings.Cut(kv, "=")
		t.Setenv(k, v)
	}
}
