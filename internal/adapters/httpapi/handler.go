package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bshishov/timelinewiki/internal/core/domain"
	"github.com/bshishov/timelinewiki/internal/core/usecase"
	"github.com/bshishov/timelinewiki/internal/core/validation"
	"github.com/bshishov/timelinewiki/internal/logger"
)

type ctxKey string

const (
	timeFormat              = "2006-01-02T15:04:05.999999999Z07:00"
	apiKeyCtxKey     ctxKey = "api_key"
	traceIDCtxKey    ctxKey = "trace_id"
	maxJSONBodySize         = 1 << 20
	errInvalidJSON          = "invalid json body"
	errInternalError        = "internal server error"
)

type Handler struct {
	realmService *usecase.RealmService
	eventService *usecase.EventService
	authService  *usecase.AuthService
	auditService *usecase.AuditService
	logger       *logger.Logger
}

func NewHandler(
	realmService *usecase.RealmService,
	eventService *usecase.EventService,
	authService *usecase.AuthService,
	auditService *usecase.AuditService,
	log *logger.Logger,
) *Handler {
	if log == nil {
		log = logger.Nop()
	}
	return &Handler{
		realmService: realmService,
		eventService: eventService,
		authService:  authService,
		auditService: auditService,
		logger:       log,
	}
}

func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(h.withTraceID, h.withLogging)

	r.Get("/healthz", h.healthz)
	r.Get("/openapi.json", h.openapi)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Get("/", h.listRealms)
	r.Get("/{realm_uri}/", h.getRealm)
	r.Get("/{realm_uri}/events/", h.listEvents)
	r.Get("/{realm_uri}/headers/", h.listHeaders)
	r.Get("/events/{event_id}/", h.getEvent)
	r.Post("/auth/", h.login)

	r.Group(func(pr chi.Router) {
		pr.Use(h.requireAPIKey)
		pr.Post("/", h.createRealm)
		pr.Put("/{realm_uri}/", h.updateRealm)
		pr.Post("/{realm_uri}/events/", h.createEvent)
		pr.Put("/events/{event_id}/", h.updateEvent)
		pr.Delete("/events/{event_id}/", h.deleteEvent)
		pr.Delete("/auth/", h.logout)

		pr.Group(func(ar chi.Router) {
			ar.Use(h.requireAdmin)
			ar.Delete("/{realm_uri}/", h.deleteRealm)
			ar.Get("/audit/", h.listAudit)
		})
	})

	return r
}

func (h *Handler) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (h *Handler) openapi(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, openapiSpec())
}

func (h *Handler) requireAPIKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimSpace(r.Header.Get("X-API-Key"))
		if token == "" {
			auth := strings.TrimSpace(r.Header.Get("Authorization"))
			if strings.HasPrefix(strings.ToLower(auth), "bearer ") {
				token = strings.TrimSpace(auth[7:])
			}
		}

		apiKey, err := h.authService.Authenticate(r.Context(), token)
		if err != nil {
			handleDomainError(w, r, err)
			return
		}

		ctx := context.WithValue(r.Context(), apiKeyCtxKey, apiKey)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handler) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		apiKey, ok := apiKeyFromContext(r.Context())
		if !ok || !apiKey.IsAdmin() {
			handleDomainError(w, r, domain.ErrForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// decodeObject reads a JSON object body keeping key order and number text.
func decodeObject(w http.ResponseWriter, r *http.Request) (*validation.Object, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBodySize)
	decoder := json.NewDecoder(r.Body)
	decoder.UseNumber()

	obj := validation.NewObject()
	if err := decoder.Decode(obj); err != nil {
		writeError(w, http.StatusBadRequest, errInvalidJSON)
		return nil, false
	}
	if err := ensureEOF(decoder); err != nil {
		writeError(w, http.StatusBadRequest, errInvalidJSON)
		return nil, false
	}
	return obj, true
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	data, err := json.Marshal(body)
	if err != nil {
		http.Error(w, errInternalError, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(append(data, '\n'))
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": message})
}

func handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *validation.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, map[string]any{"errors": verr.Violations})
	case errors.Is(err, domain.ErrInvalidFilter):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, usecase.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, "unauthorized")
	case errors.Is(err, domain.ErrForbidden):
		writeError(w, http.StatusForbidden, "forbidden")
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, domain.ErrNotFound.Error())
	case errors.Is(err, domain.ErrConflict):
		writeError(w, http.StatusConflict, domain.ErrConflict.Error())
	default:
		logger.FromContext(r.Context()).Error().Err(err).Msg("request failed")
		writeError(w, http.StatusInternalServerError, errInternalError)
	}
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

func apiKeyFromContext(ctx context.Context) (domain.APIKey, bool) {
	apiKey, ok := ctx.Value(apiKeyCtxKey).(domain.APIKey)
	return apiKey, ok
}

func traceIDFromContext(ctx context.Context) string {
	traceID, _ := ctx.Value(traceIDCtxKey).(string)
	return traceID
}

// mutationMeta attributes a change to the caller's key and trace id.
func mutationMeta(r *http.Request) domain.MutationMetadata {
	meta := domain.MutationMetadata{RequestID: traceIDFromContext(r.Context())}
	if apiKey, ok := apiKeyFromContext(r.Context()); ok {
		meta.Actor = apiKey.Email
	}
	return meta
}

// baseURL is the scheme and host the client used to reach us.
func baseURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = strings.ToLower(strings.TrimSpace(strings.Split(proto, ",")[0]))
	}
	return scheme + "://" + r.Host
}

func openapiSpec() map[string]any {
	return map[string]any{
		"openapi": "3.0.3",
		"info": map[string]any{
			"title":   "timelinewiki",
			"version": "1.0.0",
		},
		"paths": map[string]any{
			"/": map[string]any{
				"get":  map[string]any{"summary": "List realms"},
				"post": map[string]any{"summary": "Create realm"},
			},
			"/{realm_uri}/": map[string]any{
				"get":    map[string]any{"summary": "Get realm"},
				"put":    map[string]any{"summary": "Update realm"},
				"delete": map[string]any{"summary": "Delete realm"},
			},
			"/{realm_uri}/events/": map[string]any{
				"get":  map[string]any{"summary": "List realm events"},
				"post": map[string]any{"summary": "Create event"},
			},
			"/{realm_uri}/headers/": map[string]any{
				"get": map[string]any{"summary": "List realm headers"},
			},
			"/events/{event_id}/": map[string]any{
				"get":    map[string]any{"summary": "Get event"},
				"put":    map[string]any{"summary": "Update event"},
				"delete": map[string]any{"summary": "Delete event"},
			},
			"/auth/": map[string]any{
				"post":   map[string]any{"summary": "Log in"},
				"delete": map[string]any{"summary": "Log out"},
			},
			"/audit/": map[string]any{
				"get": map[string]any{"summary": "List audit entries"},
			},
		},
	}
}
