package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"iter"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"bedrockproxy/internal/pipeline"
	"bedrockproxy/internal/streamerr"
	"bedrockproxy/internal/translate"
	"bedrockproxy/pkg/types"
)

// Service defines the methods required by the HTTP API layer.
type Service interface {
	ListModels() []types.Model
	Status() types.StatusResponse
	Generate(ctx context.Context, req types.GenerationRequest) iter.Seq[pipeline.Item]
	Ready() bool
}

const (
	// headerStreamID carries the per-stream id assigned by the handler.
	headerStreamID = "X-Stream-ID"
	// trailerStreamError names the error kind when a stream ended in error.
	trailerStreamError = "X-Stream-Error"
)

func NewMux(svc Service) http.Handler {
	r := chi.NewRouter()
	// Basic middlewares: request id, real ip, recoverer
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(MetricsMiddleware)
	// Compression for JSON endpoints only; text streams must not be buffered.
	r.Use(middleware.Compress(5, "application/json"))
	if corsEnabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   corsAllowedOrigins,
			AllowedMethods:   corsAllowedMethods,
			AllowedHeaders:   corsAllowedHeaders,
			ExposedHeaders:   []string{headerStreamID},
			AllowCredentials: true,
		}))
	}
	// Security headers
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})

	r.Get("/models", handleModels(svc))
	r.Get("/status", handleStatus(svc))
	r.Post("/chat", handleChat(svc))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if svc.Ready() {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("ready"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("not ready"))
	})

	// Prometheus metrics endpoint
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	MountSwagger(r)
	return r
}

// handleModels lists the supported model identifiers.
//
// @Summary  List models
// @Tags     models
// @Produce  json
// @Success  200  {array}  types.Model
// @Router   /models [get]
func handleModels(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		models := svc.ListModels()
		if models == nil {
			models = []types.Model{}
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(models); err != nil {
			writeJSONError(w, http.StatusInternalServerError, "failed to encode response")
		}
	}
}

// handleStatus reports stream counters and upstream settings.
//
// @Summary  Service status
// @Tags     status
// @Produce  json
// @Success  200  {object}  types.StatusResponse
// @Router   /status [get]
func handleStatus(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(svc.Status()); err != nil {
			writeJSONError(w, http.StatusInternalServerError, "failed to encode response")
		}
	}
}

// handleChat streams generated text as a plain-text body.
//
// The response status is 200 once streaming starts. A failure after that
// point is appended to the body as "Error: <description>" and named in the
// X-Stream-Error trailer.
//
// @Summary  Stream a completion
// @Tags     chat
// @Accept   json
// @Produce  plain
// @Param    request  body      types.GenerationRequest  true  "Generation request"
// @Success  200      {string}  string                   "Streamed text"
// @Failure  400      {object}  types.ErrorResponse
// @Failure  415      {object}  types.ErrorResponse
// @Router   /chat [post]
func handleChat(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// A missing Content-Type is read as JSON.
		ct := r.Header.Get("Content-Type")
		if ct != "" && !strings.HasPrefix(strings.ToLower(ct), "application/json") {
			IncrementRejection("content_type")
			writeJSONError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		req := types.NewGenerationRequest()
		if err := decodeSingle(r.Body, &req); err != nil {
			// Oversized bodies also land here; report 400 without size details.
			IncrementRejection("invalid_json")
			writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}

		streamID := uuid.NewString()
		lvl := requestLogLevel(r)
		rid := middleware.GetReqID(r.Context())
		modelID := translate.ResolveModelID(req.ModelID, svc.Status().DefaultModel)
		family := translate.Classify(modelID).String()
		start := time.Now()
		if lvl >= LevelInfo {
			zlog.Info().Str("path", r.URL.Path).Str("request_id", rid).Str("stream_id", streamID).
				Str("model", modelID).Str("family", family).Msg("chat start")
		}

		h := w.Header()
		h.Set("Content-Type", "text/plain; charset=utf-8")
		h.Set("Cache-Control", "no-cache")
		h.Set("X-Accel-Buffering", "no")
		h.Set(headerStreamID, streamID)
		h.Set("Trailer", trailerStreamError)
		w.WriteHeader(http.StatusOK)

		flush := func() {}
		if f, ok := w.(http.Flusher); ok {
			flush = f.Flush
		}
		flush()

		writer := io.Writer(w)
		if lvl >= LevelDebug {
			lw := &loggingLineWriter{streamID: streamID}
			defer lw.Close()
			writer = io.MultiWriter(w, lw)
		}

		// Join server base context with request context so shutdown cancels work too.
		ctx, cancel := joinContexts(serverBaseCtx, r.Context())
		defer cancel()

		var (
			fragments int
			streamErr error
			writeErr  error
		)
		for it := range svc.Generate(ctx, req) {
			if it.Err != nil {
				streamErr = it.Err
			} else {
				fragments++
			}
			if _, writeErr = io.WriteString(writer, pipeline.Render(it)); writeErr != nil {
				break
			}
			flush()
		}
		if streamErr != nil {
			h.Set(trailerStreamError, streamerr.KindOf(streamErr).String())
		}

		if writeErr != nil || r.Context().Err() != nil {
			if lvl >= LevelInfo {
				zlog.Info().Str("request_id", rid).Str("stream_id", streamID).Int("fragments", fragments).
					Dur("dur", time.Since(start)).Msg("chat client gone")
			}
			return
		}
		if streamErr != nil {
			if lvl >= LevelError {
				zlog.Error().Err(streamErr).Str("kind", streamerr.KindOf(streamErr).String()).
					Str("request_id", rid).Str("stream_id", streamID).Int("fragments", fragments).
					Dur("dur", time.Since(start)).Msg("chat end")
			}
			return
		}
		if lvl >= LevelInfo {
			zlog.Info().Str("request_id", rid).Str("stream_id", streamID).Int("fragments", fragments).
				Dur("dur", time.Since(start)).Msg("chat end")
		}
	}
}

var errTrailingData = errors.New("unexpected data after JSON body")

// decodeSingle decodes exactly one JSON value from r into v.
func decodeSingle(r io.Reader, v any) error {
	dec := json.NewDecoder(r)
	if err := dec.Decode(v); err != nil {
		return err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errTrailingData
	}
	return nil
}
