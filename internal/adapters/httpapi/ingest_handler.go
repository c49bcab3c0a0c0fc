package httpapi

import (
	"errors"
	"io"
	"net/http"

	"github.com/atvirokodosprendimai/feedbackapi/internal/core/domain"
	"github.com/atvirokodosprendimai/feedbackapi/internal/core/usecase"
)

func (h *Handler) ingest(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBodySize)
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		h.metrics.observeIngest("invalid")
		writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
		return
	}

	sub, err := usecase.DecodeSubmission(raw)
	if err != nil {
		h.metrics.observeIngest("invalid")
		h.handleDomainError(w, r, err)
		return
	}

	fb, err := h.ingestion.Ingest(r.Context(), sub, r.Header.Get(apiKeyHeader))
	if err != nil {
		h.metrics.observeIngest(ingestOutcome(err))
		h.handleDomainError(w, r, err)
		return
	}
	h.metrics.observeIngest("accepted")
	writeJSON(w, http.StatusCreated, map[string]any{"feedback": toFeedbackResponse(fb)})
}

func ingestOutcome(err error) string {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		return "invalid"
	case errors.Is(err, domain.ErrTenantInactive):
		return "inactive"
	case errors.Is(err, domain.ErrUnknownCredential):
		return "unknown_key"
	default:
		return "error"
	}
}
