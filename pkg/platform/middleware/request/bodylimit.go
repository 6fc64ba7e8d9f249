package request

import (
	"net/http"
)

// BodyLimit caps request bodies at maxBytes. Reads past the limit fail with
// *http.MaxBytesError, which the JSON decoder reports as a bad request.
func BodyLimit(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}
