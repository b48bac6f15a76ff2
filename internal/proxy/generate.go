package proxy

import (
	"context"
	"errors"
	"iter"

	"bedrockproxy/internal/pipeline"
	"bedrockproxy/internal/streamerr"
	"bedrockproxy/pkg/types"
)

var errNotReady = errors.New("upstream client not initialized")

// Generate streams the response for req. The sequence follows the pipeline
// contract: fragments in order, then at most one terminal error item.
func (p *Proxy) Generate(ctx context.Context, req types.GenerationRequest) iter.Seq[pipeline.Item] {
	return func(yield func(pipeline.Item) bool) {
		p.streamsTotal.Add(1)
		p.active.Add(1)
		defer p.active.Add(-1)

		if p.pipe == nil {
			err := streamerr.UpstreamConnection(errNotReady)
			p.noteError(err)
			yield(pipeline.Item{Err: err})
			return
		}
		for it := range p.pipe.Items(ctx, req) {
			if it.Err != nil {
				p.noteError(it.Err)
			}
			if !yield(it) {
				return
			}
		}
	}
}

func (p *Proxy) noteError(err error) {
	p.errorsTotal.Add(1)
	p.mu.Lock()
	p.lastErr = err.Error()
	p.mu.Unlock()
}
