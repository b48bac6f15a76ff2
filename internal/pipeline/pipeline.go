// Package pipeline turns a generation request into a lazy sequence of text
// fragments: it builds the family payload, opens the upstream stream, decodes
// each frame and yields the non-empty fragments in order.
//
// Failures travel through the sequence as tagged Items. The final Item of a
// failed stream carries the error; callers that need plain text render it
// with ErrorText at the output boundary.
package pipeline

import (
	"context"
	"fmt"
	"iter"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"bedrockproxy/internal/streamerr"
	"bedrockproxy/internal/translate"
	"bedrockproxy/internal/upstream"
	"bedrockproxy/pkg/types"
)

// FrameStream is a single-use sequence of upstream frames.
type FrameStream interface {
	Next(ctx context.Context) bool
	Frame() upstream.Frame
	Err() error
	Close() error
}

// Opener starts one upstream stream per call. Implementations must be safe
// for concurrent use.
type Opener interface {
	Open(ctx context.Context, req upstream.Request) (FrameStream, error)
}

type clientOpener struct{ c *upstream.Client }

func (o clientOpener) Open(ctx context.Context, req upstream.Request) (FrameStream, error) {
	s, err := o.c.Open(ctx, req)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// FromClient adapts a Bedrock client to Opener.
func FromClient(c *upstream.Client) Opener { return clientOpener{c: c} }

// Item is one element of a response stream: either a text fragment or the
// terminal error.
type Item struct {
	Text string
	Err  error
}

// Pipeline holds no per-request state and may serve concurrent requests.
type Pipeline struct {
	up           Opener
	log          zerolog.Logger
	tracer       trace.Tracer
	timeout      time.Duration
	defaultModel string
}

// TracerName is the instrumentation scope of the per-stream spans.
const TracerName = "bedrockproxy/internal/pipeline"

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger used for stream failures.
func WithLogger(l zerolog.Logger) Option { return func(p *Pipeline) { p.log = l } }

// WithTimeout bounds each stream. Zero leaves timeouts to the transport.
func WithTimeout(d time.Duration) Option { return func(p *Pipeline) { p.timeout = d } }

// WithDefaultModel sets the model used when a request names none. Empty
// keeps translate.DefaultModelID.
func WithDefaultModel(id string) Option { return func(p *Pipeline) { p.defaultModel = id } }

// WithTracer overrides the tracer taken from the global provider. A nil
// tracer is ignored.
func WithTracer(t trace.Tracer) Option {
	return func(p *Pipeline) {
		if t != nil {
			p.tracer = t
		}
	}
}

func New(up Opener, opts ...Option) *Pipeline {
	p := &Pipeline{
		up:     up,
		log:    zerolog.Nop(),
		tracer: otel.Tracer(TracerName),
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Items returns the stream for req as tagged items. Any failure ends the
// sequence with exactly one error item; fragments already yielded stay
// yielded. The upstream stream is released on every exit path, including
// when the consumer stops early.
func (p *Pipeline) Items(ctx context.Context, req types.GenerationRequest) iter.Seq[Item] {
	return func(yield func(Item) bool) {
		family := translate.Classify(translate.ResolveModelID(req.ModelID, p.defaultModel)).String()
		streamsActive.Inc()
		defer streamsActive.Dec()

		var inYield bool
		emit := func(it Item) bool {
			inYield = true
			ok := yield(it)
			inYield = false
			return ok
		}
		fail := func(err error) {
			kind := streamerr.KindOf(err)
			streamErrorsTotal.WithLabelValues(family, kind.String()).Inc()
			p.log.Warn().Err(err).Str("kind", kind.String()).Str("model", req.ModelID).Str("family", family).Msg("stream failed")
			emit(Item{Err: err})
		}
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			if inYield {
				panic(r)
			}
			fail(streamerr.Internal(fmt.Errorf("panic: %v", r)))
		}()

		if err := p.run(ctx, req, emit); err != nil {
			fail(err)
		}
	}
}

func (p *Pipeline) run(ctx context.Context, req types.GenerationRequest, emit func(Item) bool) (err error) {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}
	payload, err := translate.Build(req, p.defaultModel)
	if err != nil {
		return err
	}
	family := payload.Family.String()

	ctx, span := p.tracer.Start(ctx, "bedrock.stream", trace.WithAttributes(
		attribute.String("bedrock.model_id", payload.ModelID),
		attribute.String("bedrock.family", family),
	))
	var fragments int
	defer func() {
		span.SetAttributes(attribute.Int("bedrock.fragments", fragments))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	start := time.Now()
	s, err := p.up.Open(ctx, payload.Request)
	upstreamOpenSeconds.WithLabelValues(family).Observe(time.Since(start).Seconds())
	if err != nil {
		return streamerr.UpstreamConnection(err)
	}
	defer s.Close()

	for s.Next(ctx) {
		c, err := translate.Decode(payload.Family, s.Frame())
		if err != nil {
			return err
		}
		if c.Usage != nil {
			recordUsage(family, c.Usage)
		}
		if c.Text == "" {
			continue
		}
		fragments++
		fragmentsTotal.WithLabelValues(family).Inc()
		if !emit(Item{Text: c.Text}) {
			return nil
		}
	}
	return s.Err()
}

// Stream is Items rendered as text: fragments as-is and a terminal error as
// ErrorText. It never fails out of band.
func (p *Pipeline) Stream(ctx context.Context, req types.GenerationRequest) iter.Seq[string] {
	return func(yield func(string) bool) {
		for it := range p.Items(ctx, req) {
			if !yield(Render(it)) {
				return
			}
		}
	}
}

// Render returns the text an item contributes to the response body.
func Render(it Item) string {
	if it.Err != nil {
		return ErrorText(it.Err)
	}
	return it.Text
}

// ErrorText is the in-band form of a stream failure.
func ErrorText(err error) string { return "Error: " + err.Error() }
