package proxy

import (
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"

	"bedrockproxy/internal/pipeline"
	"bedrockproxy/pkg/types"
)

// Config encapsulates all tunables for Proxy construction.
type Config struct {
	// Opener is the upstream stream factory. Required.
	Opener pipeline.Opener
	// Models is the GET /models catalogue, in order.
	Models []types.Model
	// Region is reported by /status only.
	Region string
	// DefaultModel replaces an empty request modelId. Empty means
	// translate.DefaultModelID.
	DefaultModel string
	// StreamTimeout bounds each stream; zero disables.
	StreamTimeout time.Duration
	Logger        zerolog.Logger
	// Tracer records one span per upstream stream. Nil uses the global
	// provider.
	Tracer trace.Tracer
}
