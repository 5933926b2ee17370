// Package http exposes the marketplace API over HTTP: the route table
// with its access policies, the resource handlers, and the server
// lifecycle.
package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/bookmart-dev/bookmart/pkg/api"
	"github.com/bookmart-dev/bookmart/pkg/auth"
	"github.com/bookmart-dev/bookmart/pkg/observability"
	"github.com/bookmart-dev/bookmart/pkg/service"
	"github.com/bookmart-dev/bookmart/pkg/storage"
	"github.com/bookmart-dev/bookmart/pkg/transport"
	"github.com/go-chi/chi/v5"
)

// maxBodySize bounds request bodies. None of the API payloads are large.
const maxBodySize = 1 << 20 // 1 MB

// API holds the handlers for all marketplace routes.
type API struct {
	customers *service.CustomerService
	books     *service.BookService
	purchases *service.PurchaseService
	login     *auth.CredentialAuthenticator
	issuer    auth.TokenIssuer
	tokenTTL  time.Duration
	store     storage.Store
}

// NewAPI creates the handler set.
func NewAPI(
	customers *service.CustomerService,
	books *service.BookService,
	purchases *service.PurchaseService,
	login *auth.CredentialAuthenticator,
	issuer auth.TokenIssuer,
	tokenTTL time.Duration,
	store storage.Store,
) *API {
	return &API{
		customers: customers,
		books:     books,
		purchases: purchases,
		login:     login,
		issuer:    issuer,
		tokenTTL:  tokenTTL,
		store:     store,
	}
}

// handleLogin exchanges credentials for a bearer token. Every credential
// failure gets the same coarse 401: the response never says whether the
// account exists.
func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req api.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		transport.WriteAPIError(w, api.NewInvalidRequestError("invalid request body"))
		return
	}
	if req.Email == "" || req.Password == "" {
		transport.WriteAPIError(w, api.NewInvalidRequestError("email and password are required"))
		return
	}

	p, err := a.login.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			observability.LoginsTotal.WithLabelValues("failure").Inc()
			transport.WriteAPIError(w, api.NewAccessDeniedError())
			return
		}
		writeError(w, r, err)
		return
	}

	token, expiresAt, err := a.issuer.Issue(strconv.FormatInt(p.ID, 10), a.tokenTTL)
	if err != nil {
		writeError(w, r, fmt.Errorf("issuing token: %w", err))
		return
	}

	observability.LoginsTotal.WithLabelValues("success").Inc()
	writeJSON(w, http.StatusOK, api.LoginResponse{Token: token, ExpiresAt: expiresAt})
}

// handleHealthz reports liveness and whether the backing store is
// reachable.
func (a *API) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if err := a.store.HealthCheck(r.Context()); err != nil {
		slog.Error("health check failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// decodeJSON decodes the request body into v with a body size limit.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	return json.NewDecoder(r.Body).Decode(v)
}

// writeJSON writes v as a JSON response with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes an error response. Structured APIErrors keep their
// type and code; anything else is logged and becomes an opaque 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var apiErr *api.APIError
	if errors.As(err, &apiErr) {
		transport.WriteAPIError(w, apiErr)
		return
	}
	slog.Error("request failed",
		"request_id", transport.RequestIDFromContext(r.Context()),
		"method", r.Method,
		"path", r.URL.Path,
		"error", err,
	)
	transport.WriteAPIError(w, api.NewServerError())
}

// idParam parses the {id} path parameter.
func idParam(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return 0, api.NewInvalidRequestError("invalid id")
	}
	return id, nil
}

// pageParams parses the page and size query parameters. Page is
// zero-based; size defaults to 10.
func pageParams(r *http.Request) (page, size int) {
	size = 10
	if v := r.URL.Query().Get("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			page = n
		}
	}
	if v := r.URL.Query().Get("size"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			size = n
		}
	}
	return page, size
}
