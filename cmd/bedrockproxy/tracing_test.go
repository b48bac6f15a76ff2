package main

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"bedrockproxy/internal/bedrocktest"
	"bedrockproxy/internal/config"
	"bedrockproxy/internal/httpapi"
	"bedrockproxy/internal/pipeline"
	"bedrockproxy/internal/upstream"
)

func TestInitTracingExportsToCollector(t *testing.T) {
	prev := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	var (
		mu    sync.Mutex
		paths []string
	)
	collector := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		mu.Lock()
		paths = append(paths, r.Method+" "+r.URL.Path)
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	defer collector.Close()

	tp, err := initTracing(context.Background(), otlptracehttp.WithEndpointURL(collector.URL+"/v1/traces"))
	require.NoError(t, err)
	require.Same(t, tp, otel.GetTracerProvider())

	_, span := otel.Tracer(pipeline.TracerName).Start(context.Background(), "bedrock.stream")
	span.End()
	require.NoError(t, tp.Shutdown(context.Background()))

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, []string{"POST /v1/traces"}, paths)
}

func TestBuildHandlerTracesStreams(t *testing.T) {
	defer httpapi.SetLogger(zerolog.New(io.Discard))
	bedrocktest.SetEnv(t, "us-east-1")
	fake := bedrocktest.NewServer(func(bedrocktest.Invocation) bedrocktest.Response {
		return bedrocktest.Response{Events: []bedrocktest.Event{
			bedrocktest.Chunk(`{"generation":"Hi"}`),
			bedrocktest.Chunk(`{"generation":" there","stop_reason":"stop"}`),
		}}
	})
	defer fake.Close()

	client, err := upstream.NewBedrock(context.Background(), upstream.Options{Region: "us-east-1", EndpointURL: fake.URL})
	require.NoError(t, err)

	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	defer func() { _ = tp.Shutdown(context.Background()) }()

	cfg := config.Default()
	cfg.Region = "us-east-1"
	cfg.DefaultModel = "meta.llama3-8b-instruct-v1:0"
	h, err := buildHandler(cfg, pipeline.FromClient(client), tp.Tracer(pipeline.TracerName), zerolog.Nop())
	require.NoError(t, err)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(`{"prompt":"hi"}`)))
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "Hi there", w.Body.String())

	invs := fake.Invocations()
	require.Len(t, invs, 1)
	require.Equal(t, "meta.llama3-8b-instruct-v1:0", invs[0].ModelID)

	spans := rec.Ended()
	require.Len(t, spans, 1)
	require.Equal(t, "bedrock.stream", spans[0].Name())
	attrs := map[string]string{}
	for _, kv := range spans[0].Attributes() {
		attrs[string(kv.Key)] = kv.Value.Emit()
	}
	require.Equal(t, "meta.llama3-8b-instruct-v1:0", attrs["bedrock.model_id"])
	require.Equal(t, "llama", attrs["bedrock.family"])
	require.Equal(t, "2", attrs["bedrock.fragments"])
}
