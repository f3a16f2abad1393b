package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/attendly/server/internal/api/problem"
	"github.com/rs/zerolog"
)

// Recovery converts handler panics into a 500 problem response instead of
// tearing down the connection.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				zerolog.Ctx(r.Context()).Error().
					Interface("panic", rec).
					Bytes("stack", debug.Stack()).
					Str("path", r.URL.Path).
					Str("method", r.Method).
					Msg("handler panic")
				problem.WriteProblem(w, problem.ProblemDetails{
					Type:     problem.TypeServerError,
					Title:    "Server error",
					Status:   http.StatusInternalServerError,
					Instance: r.URL.Path,
				})
			}
		}()
		next.ServeHTTP(w, r)
	})
}
