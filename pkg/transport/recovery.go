package transport

import (
	"log/slog"
	"net/http"

	"github.com/bookmart-dev/bookmart/pkg/api"
)

// Recovery returns middleware that catches panics in the handler chain and
// converts them to opaque 500 responses. The server continues to accept
// new requests after a panic is recovered.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				slog.Error("panic recovered",
					"request_id", RequestIDFromContext(r.Context()),
					"path", r.URL.Path,
					"panic", rec,
				)
				WriteAPIError(w, api.NewServerError())
			}
		}()
		next.ServeHTTP(w, r)
	})
}
