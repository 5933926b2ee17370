package auth

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/bookmart-dev/bookmart/pkg/api"
	"github.com/bookmart-dev/bookmart/pkg/observability"
)

// OwnerResolver derives the owning principal id of the addressed resource
// from the request, for SelfOrRole routes. The default resolver reads the
// {id} path parameter; routes whose ownership follows an indirect relation
// supply their own resolver at registration time.
type OwnerResolver func(r *http.Request) (int64, error)

// Guard wires the request authenticator and the access decision into HTTP
// middleware. Exactly one Guard protects all routes; the per-route policy
// is passed at registration.
type Guard struct {
	authn *RequestAuthenticator
}

// NewGuard creates a Guard.
func NewGuard(authn *RequestAuthenticator) *Guard {
	return &Guard{authn: authn}
}

// Protect wraps next with authentication and the route's access decision.
// On allow the authenticated identity (if any) is injected into the
// request context; on deny the chain terminates with a structured 401/403.
func (g *Guard) Protect(policy RoutePolicy, owner OwnerResolver, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		result, err := g.authn.Authenticate(r.Context(), r)
		if err != nil {
			slog.Error("request authentication failed", "path", r.URL.Path, "error", err)
			writeError(w, api.NewServerError(), http.StatusInternalServerError)
			return
		}

		if result.Failure != nil {
			observability.AuthFailuresTotal.WithLabelValues(failureKind(result.Failure)).Inc()
		}

		var ownerID int64
		if policy.Kind == PolicySelfOrRole {
			if owner == nil {
				// A SelfOrRole route without a resolver is a wiring bug;
				// deny rather than guess.
				slog.Error("self-or-role route has no owner resolver", "path", r.URL.Path)
				writeError(w, api.NewForbiddenError(), http.StatusForbidden)
				return
			}
			ownerID, err = owner(r)
			if err != nil {
				writeError(w, api.NewInvalidRequestError("invalid resource identifier"), http.StatusBadRequest)
				return
			}
		}

		if err := Decide(result.Identity, policy, ownerID); err != nil {
			switch {
			case errors.Is(err, ErrUnauthenticated):
				observability.AuthFailuresTotal.WithLabelValues("unauthenticated").Inc()
				slog.Warn("request denied",
					"path", r.URL.Path,
					"remote_addr", r.RemoteAddr,
					"reason", "unauthenticated",
				)
				writeError(w, api.NewAccessDeniedError(), http.StatusUnauthorized)
			default:
				observability.AuthFailuresTotal.WithLabelValues("forbidden").Inc()
				slog.Warn("request denied",
					"path", r.URL.Path,
					"remote_addr", r.RemoteAddr,
					"principal_id", result.Identity.PrincipalID,
					"reason", "forbidden",
				)
				writeError(w, api.NewForbiddenError(), http.StatusForbidden)
			}
			return
		}

		ctx := r.Context()
		if result.Identity != nil {
			ctx = SetIdentity(ctx, result.Identity)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// failureKind labels a recorded token failure for metrics. The labels are
// coarse on purpose; they never reach response bodies.
func failureKind(err error) string {
	switch {
	case errors.Is(err, ErrInvalidSignature):
		return "invalid_signature"
	case errors.Is(err, ErrTokenExpired):
		return "expired"
	case errors.Is(err, ErrNoSuchPrincipal):
		return "no_principal"
	default:
		return "malformed"
	}
}

func writeError(w http.ResponseWriter, apiErr *api.APIError, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(api.ErrorResponse{Error: apiErr})
}
