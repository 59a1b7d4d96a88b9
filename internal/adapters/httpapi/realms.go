package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/bshishov/timelinewiki/internal/core/domain"
)

type realmResponse struct {
	URL        string `json:"url"`
	URLEvents  string `json:"url_events"`
	URLHeaders string `json:"url_headers"`
	URI        string `json:"uri"`
	Name       string `json:"name"`
	CreatedAt  string `json:"created_at"`
	UpdatedAt  string `json:"updated_at"`
}

func toRealmResponse(r *http.Request, realm domain.Realm) realmResponse {
	base := baseURL(r) + "/" + realm.URI + "/"
	return realmResponse{
		URL:        base,
		URLEvents:  base + "events/",
		URLHeaders: base + "headers/",
		URI:        realm.URI,
		Name:       realm.Name,
		CreatedAt:  realm.CreatedAt.UTC().Format(timeFormat),
		UpdatedAt:  realm.UpdatedAt.UTC().Format(timeFormat),
	}
}

func (h *Handler) listRealms(w http.ResponseWriter, r *http.Request) {
	realms, err := h.realmService.List(r.Context())
	if err != nil {
		handleDomainError(w, r, err)
		return
	}

	result := make([]realmResponse, 0, len(realms))
	for _, realm := range realms {
		result = append(result, toRealmResponse(r, realm))
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) createRealm(w http.ResponseWriter, r *http.Request) {
	body, ok := decodeObject(w, r)
	if !ok {
		return
	}

	realm, err := h.realmService.Create(r.Context(), body, mutationMeta(r))
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toRealmResponse(r, realm))
}

func (h *Handler) getRealm(w http.ResponseWriter, r *http.Request) {
	realm, err := h.realmService.Get(r.Context(), chi.URLParam(r, "realm_uri"))
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toRealmResponse(r, realm))
}

func (h *Handler) updateRealm(w http.ResponseWriter, r *http.Request) {
	body, ok := decodeObject(w, r)
	if !ok {
		return
	}

	realm, err := h.realmService.Update(r.Context(), chi.URLParam(r, "realm_uri"), body, mutationMeta(r))
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toRealmResponse(r, realm))
}

func (h *Handler) deleteRealm(w http.ResponseWriter, r *http.Request) {
	if err := h.realmService.Delete(r.Context(), chi.URLParam(r, "realm_uri"), mutationMeta(r)); err != nil {
		handleDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
