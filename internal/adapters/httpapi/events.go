package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/bshishov/timelinewiki/internal/core/domain"
)

type eventResponse struct {
	URL       string  `json:"url"`
	ID        string  `json:"id"`
	Realm     string  `json:"realm"`
	Type      string  `json:"type"`
	Value     string  `json:"value"`
	Order     float64 `json:"order"`
	CreatedAt string  `json:"created_at"`
	UpdatedAt string  `json:"updated_at"`
}

func toEventResponse(r *http.Request, event domain.Event) eventResponse {
	return eventResponse{
		URL:       baseURL(r) + "/events/" + event.ID + "/",
		ID:        event.ID,
		Realm:     event.RealmURI,
		Type:      event.Type,
		Value:     event.Value,
		Order:     event.Order,
		CreatedAt: event.CreatedAt.UTC().Format(timeFormat),
		UpdatedAt: event.UpdatedAt.UTC().Format(timeFormat),
	}
}

func writeEvents(w http.ResponseWriter, r *http.Request, events []domain.Event) {
	result := make([]eventResponse, 0, len(events))
	for _, event := range events {
		result = append(result, toEventResponse(r, event))
	}
	writeJSON(w, http.StatusOK, result)
}

// listEvents accepts a repeated ?type= filter.
func (h *Handler) listEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.eventService.List(r.Context(), chi.URLParam(r, "realm_uri"), r.URL.Query()["type"]...)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	writeEvents(w, r, events)
}

func (h *Handler) listHeaders(w http.ResponseWriter, r *http.Request) {
	events, err := h.eventService.Headers(r.Context(), chi.URLParam(r, "realm_uri"))
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	writeEvents(w, r, events)
}

func (h *Handler) createEvent(w http.ResponseWriter, r *http.Request) {
	body, ok := decodeObject(w, r)
	if !ok {
		return
	}

	event, err := h.eventService.Create(r.Context(), chi.URLParam(r, "realm_uri"), body, mutationMeta(r))
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toEventResponse(r, event))
}

func (h *Handler) getEvent(w http.ResponseWriter, r *http.Request) {
	event, err := h.eventService.Get(r.Context(), chi.URLParam(r, "event_id"))
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toEventResponse(r, event))
}

func (h *Handler) updateEvent(w http.ResponseWriter, r *http.Request) {
	body, ok := decodeObject(w, r)
	if !ok {
		return
	}

	event, err := h.eventService.Update(r.Context(), chi.URLParam(r, "event_id"), body, mutationMeta(r))
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toEventResponse(r, event))
}

func (h *Handler) deleteEvent(w http.ResponseWriter, r *http.Request) {
	if err := h.eventService.Delete(r.Context(), chi.URLParam(r, "event_id"), mutationMeta(r)); err != nil {
		handleDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
