package middlewarex

import (
	"crypto/subtle"
	"net/http"
)

// CallbackToken rejects requests that do not carry token in the "token"
// query parameter or the X-Callback-Token header. An empty token disables
// the check.
func CallbackToken(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if token == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := r.URL.Query().Get("token")
			if got == "" {
				got = r.Header.Get("X-Callback-Token")
			}
			if subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
				http.Error(w, "invalid callback token", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
