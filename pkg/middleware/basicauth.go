package middleware

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/json"
	"net/http"
)

// BasicAuth returns middleware that protects routes with HTTP Basic
// Authentication. Credentials are compared in constant time to avoid leaking
// their length or content through timing.
func BasicAuth(realm, username, password string) func(http.Handler) http.Handler {
	wantUser := sha256.Sum256([]byte(username))
	wantPass := sha256.Sum256([]byte(password))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, pass, ok := r.BasicAuth()
			if !ok {
				writeBasicAuthChallenge(w, realm)
				return
			}

			gotUser := sha256.Sum256([]byte(user))
			gotPass := sha256.Sum256([]byte(pass))

			userMatch := subtle.ConstantTimeCompare(wantUser[:], gotUser[:]) == 1
			passMatch := subtle.ConstantTimeCompare(wantPass[:], gotPass[:]) == 1
			if !userMatch || !passMatch {
				writeBasicAuthChallenge(w, realm)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func writeBasicAuthChallenge(w http.ResponseWriter, realm string) {
	w.Header().Set("WWW-Authenticate", `Basic realm="`+realm+`"`)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"code":    "UNAUTHORIZED",
		"message": "authentication required",
	})
}
