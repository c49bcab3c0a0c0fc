package httpapi

import (
	"net/http"

	"github.com/atvirokodosprendimai/feedbackapi/internal/core/domain"
)

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	p, err := h.principals.Register(r.Context(), domain.Registration{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
	})
	if err != nil {
		h.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toPrincipalResponse(p))
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	session, err := h.principals.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"token":      session.Token,
		"expires_at": session.ExpiresAt.UTC().Format(timeFormat),
	})
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	p, err := h.principals.Me(r.Context(), principalIDFromContext(r.Context()))
	if err != nil {
		h.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toPrincipalResponse(p))
}
