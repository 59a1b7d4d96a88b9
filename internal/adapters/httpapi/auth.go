package httpapi

import (
	"net/http"

	"github.com/bshishov/timelinewiki/internal/core/domain"
)

type userResponse struct {
	Email   string `json:"email"`
	Role    string `json:"role"`
	Created string `json:"created"`
}

func toUserResponse(apiKey domain.APIKey) userResponse {
	return userResponse{
		Email:   apiKey.Email,
		Role:    apiKey.Role,
		Created: apiKey.CreatedAt.UTC().Format(timeFormat),
	}
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	body, ok := decodeObject(w, r)
	if !ok {
		return
	}

	apiKey, err := h.authService.Login(r.Context(), body)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(apiKey))
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	apiKey, _ := apiKeyFromContext(r.Context())
	if err := h.authService.Logout(r.Context(), apiKey); err != nil {
		handleDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
