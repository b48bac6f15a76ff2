package proxy

import (
	"sync"
	"sync/atomic"
	"time"

	"bedrockproxy/internal/pipeline"
	"bedrockproxy/internal/translate"
	"bedrockproxy/pkg/types"
)

// Proxy serves the HTTP API. It is safe for concurrent use.
type Proxy struct {
	pipe         *pipeline.Pipeline
	models       []types.Model
	region       string
	defaultModel string
	startTime    time.Time

	active       atomic.Int64
	streamsTotal atomic.Uint64
	errorsTotal  atomic.Uint64

	mu      sync.RWMutex
	lastErr string
}

// New constructs a Proxy from Config. A nil Opener yields a Proxy that
// reports not ready.
func New(cfg Config) *Proxy {
	p := &Proxy{
		models:       append([]types.Model(nil), cfg.Models...),
		region:       cfg.Region,
		defaultModel: cfg.DefaultModel,
		startTime:    time.Now(),
	}
	if p.defaultModel == "" {
		p.defaultModel = translate.DefaultModelID
	}
	if cfg.Opener != nil {
		p.pipe = pipeline.New(cfg.Opener,
			pipeline.WithLogger(cfg.Logger),
			pipeline.WithTimeout(cfg.StreamTimeout),
			pipeline.WithDefaultModel(p.defaultModel),
			pipeline.WithTracer(cfg.Tracer),
		)
	}
	return p
}

// Ready reports whether the upstream client is configured.
func (p *Proxy) Ready() bool { return p.pipe != nil }

// ListModels returns a copy of the catalogue.
func (p *Proxy) ListModels() []types.Model {
	return append([]types.Model(nil), p.models...)
}
