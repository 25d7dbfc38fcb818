package middleware

import (
	"net/http"

	"github.com/frahmantamala/org-directory/pkg/logger"
	"github.com/google/uuid"
)

const traceHeader = "X-Request-ID"

// RequestID attaches an inbound or freshly generated request id to the
// response headers and the context logger.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID := r.Header.Get(traceHeader)
		if traceID == "" {
			traceID = uuid.NewString()
		}

		w.Header().Set(traceHeader, traceID)
		ctx := logger.With(r.Context(), "request_id", traceID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
