package middlewares

import (
	"net/http"
	"strings"
)

type Middleware func(http.Handler) http.Handler

// MiddlewaresExcludePaths wraps a middleware so that requests to the listed
// paths, or anything below them, bypass it.
func MiddlewaresExcludePaths(middleware Middleware, excludedPaths ...string) Middleware {
	return func(next http.Handler) http.Handler {
		wrapped := middleware(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, path := range excludedPaths {
				if r.URL.Path == path || strings.HasPrefix(r.URL.Path, path+"/") {
					next.ServeHTTP(w, r)
					return
				}
			}
			wrapped.ServeHTTP(w, r)
		})
	}
}
