package http

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/bookmart-dev/bookmart/pkg/auth"
	"github.com/bookmart-dev/bookmart/pkg/config"
	"github.com/bookmart-dev/bookmart/pkg/observability"
	"github.com/bookmart-dev/bookmart/pkg/transport"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Route binds one endpoint to its handler and access policy. The table of
// routes is the single place where every endpoint's access rule is
// declared.
type Route struct {
	Method  string
	Pattern string
	Policy  auth.RoutePolicy

	// Owner resolves the owning principal of the addressed resource; only
	// self-or-role routes need one.
	Owner auth.OwnerResolver

	Handler http.HandlerFunc
}

// Routes returns the full route table with access policies.
func (a *API) Routes() []Route {
	selfOrAdmin := auth.SelfOrRole(auth.RoleAdmin)

	return []Route{
		{Method: http.MethodPost, Pattern: "/login", Policy: auth.Public(), Handler: a.handleLogin},

		{Method: http.MethodPost, Pattern: "/customers", Policy: auth.Public(), Handler: a.handleCreateCustomer},
		{Method: http.MethodGet, Pattern: "/customers", Policy: auth.RequireRole(auth.RoleAdmin), Handler: a.handleListCustomers},
		{Method: http.MethodGet, Pattern: "/customers/{id}", Policy: selfOrAdmin, Owner: ownerFromPath, Handler: a.handleGetCustomer},
		{Method: http.MethodPut, Pattern: "/customers/{id}", Policy: selfOrAdmin, Owner: ownerFromPath, Handler: a.handleUpdateCustomer},
		{Method: http.MethodDelete, Pattern: "/customers/{id}", Policy: selfOrAdmin, Owner: ownerFromPath, Handler: a.handleDeleteCustomer},

		{Method: http.MethodGet, Pattern: "/books", Policy: auth.Public(), Handler: a.handleListBooks},
		{Method: http.MethodGet, Pattern: "/books/active", Policy: auth.Public(), Handler: a.handleListActiveBooks},
		{Method: http.MethodGet, Pattern: "/books/{id}", Policy: auth.Public(), Handler: a.handleGetBook},
		{Method: http.MethodPost, Pattern: "/books", Policy: auth.RequireRole(auth.RoleCustomer), Handler: a.handleCreateBook},
		{Method: http.MethodPut, Pattern: "/books/{id}", Policy: auth.RequireRole(auth.RoleCustomer), Handler: a.handleUpdateBook},
		{Method: http.MethodDelete, Pattern: "/books/{id}", Policy: auth.RequireRole(auth.RoleCustomer), Handler: a.handleDeleteBook},

		{Method: http.MethodPost, Pattern: "/purchases", Policy: auth.RequireRole(auth.RoleCustomer), Handler: a.handleCreatePurchase},
		{Method: http.MethodGet, Pattern: "/purchases/purchased/{id}", Policy: selfOrAdmin, Owner: ownerFromPath, Handler: a.handlePurchasedBooks},
		{Method: http.MethodGet, Pattern: "/purchases/sold/{id}", Policy: selfOrAdmin, Owner: ownerFromPath, Handler: a.handleSoldBooks},
	}
}

// ownerFromPath is the default owner resolver: the {id} path parameter
// names the owning principal.
func ownerFromPath(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

// NewHandler assembles the router: middleware, the guarded route table,
// and the unguarded health and metrics endpoints.
func NewHandler(a *API, guard *auth.Guard, obs config.ObservabilityConfig, logger *slog.Logger) http.Handler {
	mux := chi.NewRouter()
	mux.Use(transport.RequestID)
	mux.Use(transport.Recovery)
	mux.Use(transport.Logging(logger))
	mux.Use(observability.MetricsMiddleware)

	for _, rt := range a.Routes() {
		mux.Method(rt.Method, rt.Pattern, guard.Protect(rt.Policy, rt.Owner, rt.Handler))
	}

	// Health and metrics bypass the guard.
	mux.Get("/healthz", a.handleHealthz)
	if obs.Metrics.Enabled {
		mux.Handle(obs.Metrics.Path, promhttp.Handler())
	}

	return mux
}
