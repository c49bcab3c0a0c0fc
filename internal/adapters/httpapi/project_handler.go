package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/atvirokodosprendimai/feedbackapi/internal/core/domain"
)

type createProjectRequest struct {
	Name        string `json:"name"`
	Domain      string `json:"domain"`
	Description string `json:"description"`
}

type updateProjectRequest struct {
	Name             *string `json:"name"`
	Domain           *string `json:"domain"`
	Description      *string `json:"description"`
	IsActive         *bool   `json:"is_active"`
	RegenerateAPIKey bool    `json:"regenerate_api_key"`
}

func (h *Handler) listProjects(w http.ResponseWriter, r *http.Request) {
	items, err := h.projects.List(r.Context(), principalIDFromContext(r.Context()))
	if err != nil {
		h.handleDomainError(w, r, err)
		return
	}
	out := make([]projectResponse, 0, len(items))
	for _, item := range items {
		resp := toProjectResponse(item.Project)
		count := item.FeedbackCount
		resp.FeedbackCount = &count
		out = append(out, resp)
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": out})
}

func (h *Handler) createProject(w http.ResponseWriter, r *http.Request) {
	var req createProjectRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	p, err := h.projects.Create(r.Context(), principalIDFromContext(r.Context()), domain.ProjectInput{
		Name:        req.Name,
		Domain:      req.Domain,
		Description: req.Description,
	})
	if err != nil {
		h.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toProjectResponse(p))
}

func (h *Handler) getProject(w http.ResponseWriter, r *http.Request) {
	p, err := h.projects.Get(r.Context(), principalIDFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		h.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toProjectResponse(p))
}

func (h *Handler) updateProject(w http.ResponseWriter, r *http.Request) {
	var req updateProjectRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	p, err := h.projects.Update(r.Context(), principalIDFromContext(r.Context()), chi.URLParam(r, "id"), domain.ProjectPatch{
		Name:             req.Name,
		Domain:           req.Domain,
		Description:      req.Description,
		IsActive:         req.IsActive,
		RegenerateAPIKey: req.RegenerateAPIKey,
	})
	if err != nil {
		h.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toProjectResponse(p))
}

func (h *Handler) deleteProject(w http.ResponseWriter, r *http.Request) {
	if err := h.projects.Delete(r.Context(), principalIDFromContext(r.Context()), chi.URLParam(r, "id")); err != nil {
		h.handleDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
