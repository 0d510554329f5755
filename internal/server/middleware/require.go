package middleware

import "net/http"

// RequireUser rejects requests whose context carries no authenticated user.
func RequireUser() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			uid, ok := UserIDFromContext(r.Context())
			if !ok || uid == 0 {
				http.Error(w, `{"title":"Forbidden","status":403,"detail":"authenticated user required"}`, http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
