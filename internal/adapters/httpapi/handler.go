package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimid "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/atvirokodosprendimai/feedbackapi/internal/core/domain"
	"github.com/atvirokodosprendimai/feedbackapi/internal/core/usecase"
)

const (
	timeFormat      = "2006-01-02T15:04:05.999999999Z07:00"
	maxJSONBodySize = 1 << 20
	apiKeyHeader    = "X-API-Key"
)

type Services struct {
	Ingestion  *usecase.IngestionService
	Feedback   *usecase.FeedbackService
	Projects   *usecase.ProjectService
	Insights   *usecase.InsightsService
	Principals *usecase.PrincipalService
}

type Options struct {
	// IngestRateLimit is a per-IP limit for public ingestion in limiter
	// notation ("60-M"). Empty disables limiting.
	IngestRateLimit string
	DevMode         bool
	// Metrics enables request instrumentation and GET /metrics.
	Metrics *Metrics
	// Ready backs GET /healthz.
	Ready func(ctx context.Context) error
}

type Handler struct {
	ingestion  *usecase.IngestionService
	feedback   *usecase.FeedbackService
	projects   *usecase.ProjectService
	insights   *usecase.InsightsService
	principals *usecase.PrincipalService

	metrics   *Metrics
	ready     func(ctx context.Context) error
	rateLimit func(http.Handler) http.Handler
	secure    func(http.Handler) http.Handler
	log       zerolog.Logger
}

func NewHandler(services Services, log zerolog.Logger, opts Options) (*Handler, error) {
	rateLimit, err := newIPRateLimiter(opts.IngestRateLimit)
	if err != nil {
		return nil, err
	}
	return &Handler{
		ingestion:  services.Ingestion,
		feedback:   services.Feedback,
		projects:   services.Projects,
		insights:   services.Insights,
		principals: services.Principals,
		metrics:    opts.Metrics,
		ready:      opts.Ready,
		rateLimit:  rateLimit,
		secure:     newSecure(opts.DevMode),
		log:        log.With().Str("component", "http").Logger(),
	}, nil
}

func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(chimid.RequestID)
	r.Use(chimid.RealIP)
	r.Use(h.requestLogger)
	r.Use(chimid.Recoverer)
	if h.metrics != nil {
		r.Use(h.metrics.Middleware)
		r.Handle("/metrics", h.metrics.Handler())
	}

	r.Get("/healthz", h.healthz)
	r.Get("/openapi.json", h.openapi)

	r.Group(func(pr chi.Router) {
		pr.Use(publicCORS)
		pr.With(h.rateLimit).Post("/v1/feedback", h.ingest)
		pr.Options("/v1/feedback", preflight)
	})

	r.Group(func(or chi.Router) {
		or.Use(h.secure)
		or.Post("/v1/auth/register", h.register)
		or.Post("/v1/auth/login", h.login)

		or.Group(func(ar chi.Router) {
			ar.Use(h.requirePrincipal)
			ar.Get("/v1/me", h.me)

			ar.Get("/v1/projects", h.listProjects)
			ar.Post("/v1/projects", h.createProject)
			ar.Get("/v1/projects/{id}", h.getProject)
			ar.Patch("/v1/projects/{id}", h.updateProject)
			ar.Delete("/v1/projects/{id}", h.deleteProject)

			ar.Get("/v1/feedback", h.listFeedback)
			ar.Get("/v1/insights", h.getInsights)
		})
	})

	return r
}

func (h *Handler) healthz(w http.ResponseWriter, r *http.Request) {
	if h.ready != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.ready(ctx); err != nil {
			h.log.Warn().Err(err).Msg("readiness check failed")
			writeJSON(w, http.StatusServiceUnavailable, map[string]bool{"ok": false})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (h *Handler) openapi(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, openapiSpec())
}

// decodeJSON reads a single JSON document into dst, rejecting unknown fields.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBodySize)
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return false
	}
	if err := ensureEOF(decoder); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return false
	}
	return true
}

func ensureEOF(decoder *json.Decoder) error {
	var extra json.RawMessage
	if err := decoder.Decode(&extra); err != nil {
		if err == io.EOF {
			return nil
		}
		return err
	}
	return errors.New("extra json tokens")
}

func parseIntQuery(w http.ResponseWriter, r *http.Request, name string, fallback int) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, name+" must be integer")
		return 0, false
	}
	return v, true
}

func parseBoolQuery(w http.ResponseWriter, r *http.Request, name string) (bool, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return false, true
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, name+" must be boolean")
		return false, false
	}
	return v, true
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	data, err := json.Marshal(body)
	if err != nil {
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(append(data, '\n'))
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": message})
}

func (h *Handler) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": ve.Error(), "details": ve.Errors})
	case errors.Is(err, domain.ErrUnknownCredential),
		errors.Is(err, domain.ErrInvalidCredentials),
		errors.Is(err, domain.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrTenantInactive), errors.Is(err, domain.ErrForbidden):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrEmailTaken):
		writeError(w, http.StatusConflict, err.Error())
	default:
		h.log.Error().Err(err).
			Str("request_id", chimid.GetReqID(r.Context())).
			Str("path", r.URL.Path).
			Msg("request failed")
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
