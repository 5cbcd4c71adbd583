package middleware

import (
	"net/http"

	"artisanlink/internal/logger"

	"github.com/google/uuid"
)

const DeviceIDHeader = "X-Device-ID"

// DeviceID tags the request with the caller's device. Guest carts and
// wishlists are keyed by it, so a missing or malformed id gets a fresh one
// echoed back for the client to keep. Other UUID spellings (braced, urn,
// bare hex) are rewritten to the canonical hyphenated form.
func DeviceID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		if u, err := uuid.Parse(r.Header.Get(DeviceIDHeader)); err == nil {
			id = u.String()
		}
		w.Header().Set(DeviceIDHeader, id)

		next.ServeHTTP(w, r.WithContext(logger.WithDeviceID(r.Context(), id)))
	})
}
