package proxy

import (
	"time"

	"bedrockproxy/pkg/types"
)

// Status builds the /status response.
func (p *Proxy) Status() types.StatusResponse {
	p.mu.RLock()
	lastErr := p.lastErr
	p.mu.RUnlock()
	now := time.Now()
	return types.StatusResponse{
		Region:            p.region,
		DefaultModel:      p.defaultModel,
		ActiveStreams:     p.active.Load(),
		StreamsTotal:      p.streamsTotal.Load(),
		StreamErrorsTotal: p.errorsTotal.Load(),
		LastError:         lastErr,
		UptimeSeconds:     int64(now.Sub(p.startTime).Seconds()),
		ServerTimeUnix:    now.Unix(),
	}
}
