package httpapi

import (
	"net/http"
	"strconv"

	"github.com/bshishov/timelinewiki/internal/core/domain"
)

func (h *Handler) listAudit(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := domain.AuditFilter{
		ResourceType: q.Get("resource_type"),
		ResourceID:   q.Get("resource_id"),
		Action:       q.Get("action"),
	}

	var ok bool
	if filter.Limit, ok = parseIntParam(w, q.Get("limit"), "limit"); !ok {
		return
	}
	before, ok := parseIntParam(w, q.Get("before"), "before")
	if !ok {
		return
	}
	filter.BeforeID = int64(before)

	entries, err := h.auditService.List(r.Context(), filter)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": entries})
}

func parseIntParam(w http.ResponseWriter, raw, name string) (int, bool) {
	if raw == "" {
		return 0, true
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, name+" must be integer")
		return 0, false
	}
	return parsed, true
}
