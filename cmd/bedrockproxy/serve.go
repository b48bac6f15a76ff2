package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"

	"bedrockproxy/internal/config"
	"bedrockproxy/internal/httpapi"
	"bedrockproxy/internal/pipeline"
	"bedrockproxy/internal/proxy"
	"bedrockproxy/internal/registry"
	"bedrockproxy/internal/translate"
	"bedrockproxy/internal/upstream"
)

const shutdownGrace = 5 * time.Second

// buildHandler wires the proxy and HTTP layer from cfg. A nil opener leaves
// the service running but not ready.
func buildHandler(cfg config.Config, opener pipeline.Opener, tracer trace.Tracer, log zerolog.Logger) (http.Handler, error) {
	models, err := registry.FromConfig(cfg.Models)
	if err != nil {
		return nil, err
	}
	p := proxy.New(proxy.Config{
		Opener:        opener,
		Models:        models,
		Region:        cfg.Region,
		DefaultModel:  cfg.DefaultModel,
		StreamTimeout: time.Duration(cfg.StreamTimeoutSeconds) * time.Second,
		Tracer:        tracer,
		Logger:        log,
	})

	httpapi.SetLogger(log)
	httpapi.SetRequestLogLevel(cfg.LogLevel)
	httpapi.SetMaxBodyBytes(cfg.MaxBodyBytes)
	httpapi.SetCORSOptions(cfg.CORS(), cfg.CORSAllowedOrigins, cfg.CORSAllowedMethods, cfg.CORSAllowedHeaders)
	return httpapi.NewMux(p), nil
}

func runServe(ctx context.Context, cfg config.Config, log zerolog.Logger) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var opener pipeline.Opener
	client, err := upstream.NewBedrock(ctx, upstream.Options{Region: cfg.Region, EndpointURL: cfg.EndpointURL})
	if err != nil {
		log.Error().Err(err).Msg("bedrock client unavailable, serving as not ready")
	} else {
		opener = pipeline.FromClient(client)
	}
	var tracer trace.Tracer
	if cfg.Tracing {
		tp, err := initTracing(ctx)
		if err != nil {
			return err
		}
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
			defer cancel()
			if err := tp.Shutdown(sctx); err != nil {
				log.Warn().Err(err).Msg("trace export flush failed")
			}
		}()
		tracer = tp.Tracer(pipeline.TracerName)
		log.Info().Msg("OTLP tracing enabled")
	}
	h, err := buildHandler(cfg, opener, tracer, log)
	if err != nil {
		return err
	}

	// Streams see this context; it outlives the signal so in-flight
	// responses get the shutdown grace period.
	baseCtx, cancelBase := context.WithCancel(context.Background())
	defer cancelBase()
	httpapi.SetBaseContext(baseCtx)

	srv := &http.Server{Addr: cfg.Addr, Handler: h, ReadHeaderTimeout: 10 * time.Second}
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.Addr).Str("region", cfg.Region).Str("default_model", translate.ResolveModelID("", cfg.DefaultModel)).Msg("bedrockproxy listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		log.Warn().Err(err).Msg("graceful shutdown incomplete, canceling streams")
		cancelBase()
		_ = srv.Close()
	}
	return nil
}
