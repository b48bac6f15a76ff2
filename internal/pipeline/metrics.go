package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"

	"bedrockproxy/internal/translate"
)

var (
	fragmentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bedrockproxy",
			Subsystem: "stream",
			Name:      "fragments_total",
			Help:      "Text fragments relayed to callers",
		},
		[]string{"family"},
	)

	streamErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bedrockproxy",
			Subsystem: "stream",
			Name:      "errors_total",
			Help:      "Streams that ended with an in-band error, by kind",
		},
		[]string{"family", "kind"},
	)

	upstreamOpenSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "bedrockproxy",
			Subsystem: "stream",
			Name:      "upstream_open_seconds",
			Help:      "Time to open the upstream response stream",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"family"},
	)

	tokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bedrockproxy",
			Subsystem: "stream",
			Name:      "tokens_total",
			Help:      "Tokens reported by upstream invocation metrics",
		},
		[]string{"family", "direction"},
	)

	streamsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "bedrockproxy",
			Subsystem: "stream",
			Name:      "active",
			Help:      "Streams currently being relayed",
		},
	)
)

func init() {
	prometheus.MustRegister(fragmentsTotal, streamErrorsTotal, upstreamOpenSeconds, tokensTotal, streamsActive)
}

func recordUsage(family string, u *translate.Usage) {
	if u.InputTokens > 0 {
		tokensTotal.WithLabelValues(family, "input").Add(float64(u.InputTokens))
	}
	if u.OutputTokens > 0 {
		tokensTotal.WithLabelValues(family, "output").Add(float64(u.OutputTokens))
	}
}
