package httpx

import (
	"crypto/subtle"
	"net/http"

	"golang.org/x/crypto/bcrypt"
)

// AdminAuth guards admin routes with HTTP basic auth against the single
// configured admin. An empty hash locks the routes.
func AdminAuth(email, passwordHash string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, pass, ok := r.BasicAuth()
			if !ok || passwordHash == "" ||
				subtle.ConstantTimeCompare([]byte(user), []byte(email)) != 1 ||
				bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(pass)) != nil {
				w.Header().Set("WWW-Authenticate", `Basic realm="admin"`)
				writeJSON(w, http.StatusUnauthorized, errorBody{Error: "Credenciales inválidas"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
