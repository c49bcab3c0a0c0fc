package httpapi

import (
	"net/http"

	"github.com/atvirokodosprendimai/feedbackapi/internal/core/usecase"
)

func (h *Handler) listFeedback(w http.ResponseWriter, r *http.Request) {
	limit, ok := parseIntQuery(w, r, "limit", usecase.DefaultFeedbackLimit)
	if !ok {
		return
	}
	offset, ok := parseIntQuery(w, r, "offset", 0)
	if !ok {
		return
	}

	includeOrphaned, ok := parseBoolQuery(w, r, "include_orphaned")
	if !ok {
		return
	}

	items, err := h.feedback.List(r.Context(), principalIDFromContext(r.Context()), r.URL.Query().Get("project_id"), limit, offset, includeOrphaned)
	if err != nil {
		h.handleDomainError(w, r, err)
		return
	}
	out := make([]feedbackResponse, 0, len(items))
	for _, item := range items {
		out = append(out, toFeedbackResponse(item))
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": out})
}

func (h *Handler) getInsights(w http.ResponseWriter, r *http.Request) {
	includeOrphaned, ok := parseBoolQuery(w, r, "include_orphaned")
	if !ok {
		return
	}
	report, err := h.insights.Report(r.Context(), principalIDFromContext(r.Context()), r.URL.Query().Get("project_id"), includeOrphaned)
	if err != nil {
		h.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toInsightsResponse(report))
}
