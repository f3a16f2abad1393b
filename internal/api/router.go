// Package api assembles the HTTP surface: routing, middleware, and the
// problem+json error contract.
package api

import (
	"net/http"
	"sort"
	"strings"

	"github.com/attendly/server/internal/api/handlers"
	"github.com/attendly/server/internal/api/middleware"
	"github.com/attendly/server/internal/config"
	"github.com/attendly/server/internal/domain/categories"
	"github.com/attendly/server/internal/domain/comments"
	"github.com/attendly/server/internal/domain/compilations"
	"github.com/attendly/server/internal/domain/events"
	"github.com/attendly/server/internal/domain/requests"
	"github.com/attendly/server/internal/domain/users"
	"github.com/attendly/server/internal/metrics"
	"github.com/attendly/server/internal/stats"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Services carries the wired domain services the router exposes.
type Services struct {
	Events       *events.Service
	Requests     *requests.Service
	Users        *users.Service
	Categories   *categories.Service
	Compilations *compilations.Service
	Comments     *comments.Service
	// Stats is nil when hits are forwarded to a remote collector instead of
	// being served in-process.
	Stats *stats.Service
	Pool  *pgxpool.Pool
}

func NewRouter(cfg config.Config, logger zerolog.Logger, svc Services) http.Handler {
	env := cfg.Environment

	eventsHandler := handlers.NewEventsHandler(svc.Events, env)
	requestsHandler := handlers.NewRequestsHandler(svc.Requests, env)
	usersHandler := handlers.NewUsersHandler(svc.Users, env)
	categoriesHandler := handlers.NewCategoriesHandler(svc.Categories, env)
	compilationsHandler := handlers.NewCompilationsHandler(svc.Compilations, env)
	commentsHandler := handlers.NewCommentsHandler(svc.Comments, env)

	mux := http.NewServeMux()
	mux.Handle("/healthz", handlers.Healthz())
	mux.Handle("/readyz", handlers.Readyz(svc.Pool))
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	// Admin surface.
	mux.Handle("/admin/events", methodMux(map[string]http.Handler{
		http.MethodGet: http.HandlerFunc(eventsHandler.AdminList),
	}))
	mux.Handle("/admin/events/{eventId}", methodMux(map[string]http.Handler{
		http.MethodPatch: http.HandlerFunc(eventsHandler.AdminUpdate),
	}))
	mux.Handle("/admin/users", methodMux(map[string]http.Handler{
		http.MethodGet:  http.HandlerFunc(usersHandler.List),
		http.MethodPost: http.HandlerFunc(usersHandler.Create),
	}))
	mux.Handle("/admin/users/{userId}", methodMux(map[string]http.Handler{
		http.MethodDelete: http.HandlerFunc(usersHandler.Delete),
	}))
	mux.Handle("/admin/categories", methodMux(map[string]http.Handler{
		http.MethodPost: http.HandlerFunc(categoriesHandler.Create),
	}))
	mux.Handle("/admin/categories/{catId}", methodMux(map[string]http.Handler{
		http.MethodPatch:  http.HandlerFunc(categoriesHandler.Update),
		http.MethodDelete: http.HandlerFunc(categoriesHandler.Delete),
	}))
	mux.Handle("/admin/compilations", methodMux(map[string]http.Handler{
		http.MethodPost: http.HandlerFunc(compilationsHandler.Create),
	}))
	mux.Handle("/admin/compilations/{compId}", methodMux(map[string]http.Handler{
		http.MethodPatch:  http.HandlerFunc(compilationsHandler.Update),
		http.MethodDelete: http.HandlerFunc(compilationsHandler.Delete),
	}))
	mux.Handle("/admin/comments/{commentId}", methodMux(map[string]http.Handler{
		http.MethodDelete: http.HandlerFunc(commentsHandler.DeleteByAdmin),
	}))

	// Private surface (initiators and requesters).
	mux.Handle("/users/{userId}/events", methodMux(map[string]http.Handler{
		http.MethodGet:  http.HandlerFunc(eventsHandler.ListByInitiator),
		http.MethodPost: http.HandlerFunc(eventsHandler.Create),
	}))
	mux.Handle("/users/{userId}/events/{eventId}", methodMux(map[string]http.Handler{
		http.MethodGet:   http.HandlerFunc(eventsHandler.GetByInitiator),
		http.MethodPatch: http.HandlerFunc(eventsHandler.UpdateByInitiator),
	}))
	mux.Handle("/users/{userId}/events/{eventId}/requests", methodMux(map[string]http.Handler{
		http.MethodGet:   http.HandlerFunc(requestsHandler.ListForEvent),
		http.MethodPatch: http.HandlerFunc(requestsHandler.UpdateStatuses),
	}))
	mux.Handle("/users/{userId}/requests", methodMux(map[string]http.Handler{
		http.MethodGet:  http.HandlerFunc(requestsHandler.List),
		http.MethodPost: http.HandlerFunc(requestsHandler.Create),
	}))
	mux.Handle("/users/{userId}/requests/{requestId}/cancel", methodMux(map[string]http.Handler{
		http.MethodPatch: http.HandlerFunc(requestsHandler.Cancel),
	}))
	mux.Handle("/users/{userId}/comments", methodMux(map[string]http.Handler{
		http.MethodGet:  http.HandlerFunc(commentsHandler.ListByAuthor),
		http.MethodPost: http.HandlerFunc(commentsHandler.Create),
	}))
	mux.Handle("/users/{userId}/comments/{commentId}", methodMux(map[string]http.Handler{
		http.MethodGet:    http.HandlerFunc(commentsHandler.GetByAuthor),
		http.MethodPatch:  http.HandlerFunc(commentsHandler.Update),
		http.MethodDelete: http.HandlerFunc(commentsHandler.DeleteByAuthor),
	}))

	// Public surface.
	mux.Handle("/events", methodMux(map[string]http.Handler{
		http.MethodGet: http.HandlerFunc(eventsHandler.PublicList),
	}))
	mux.Handle("/events/{eventId}", methodMux(map[string]http.Handler{
		http.MethodGet: http.HandlerFunc(eventsHandler.PublicGet),
	}))
	mux.Handle("/events/{eventId}/comments", methodMux(map[string]http.Handler{
		http.MethodGet: http.HandlerFunc(commentsHandler.ListByEvent),
	}))
	mux.Handle("/categories", methodMux(map[string]http.Handler{
		http.MethodGet: http.HandlerFunc(categoriesHandler.List),
	}))
	mux.Handle("/categories/{catId}", methodMux(map[string]http.Handler{
		http.MethodGet: http.HandlerFunc(categoriesHandler.Get),
	}))
	mux.Handle("/compilations", methodMux(map[string]http.Handler{
		http.MethodGet: http.HandlerFunc(compilationsHandler.List),
	}))
	mux.Handle("/compilations/{compId}", methodMux(map[string]http.Handler{
		http.MethodGet: http.HandlerFunc(compilationsHandler.Get),
	}))

	// Collector surface, only when the stats service runs in-process.
	if svc.Stats != nil {
		statsHandler := handlers.NewStatsHandler(svc.Stats, env)
		mux.Handle("/hit", methodMux(map[string]http.Handler{
			http.MethodPost: http.HandlerFunc(statsHandler.RecordHit),
		}))
		mux.Handle("/stats", methodMux(map[string]http.Handler{
			http.MethodGet: http.HandlerFunc(statsHandler.Stats),
		}))
	}

	var handler http.Handler = mux
	handler = middleware.Recovery(handler)
	handler = metrics.HTTPMiddleware(handler)
	handler = middleware.RequestLogging(logger)(handler)
	if cfg.Tracing.Enabled {
		handler = middleware.Tracing(handler)
	}
	handler = middleware.CorrelationID(logger)(handler)
	return handler
}

func methodMux(handlers map[string]http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if handler, ok := handlers[r.Method]; ok {
			handler.ServeHTTP(w, r)
			return
		}
		w.Header().Set("Allow", allowedMethods(handlers))
		w.WriteHeader(http.StatusMethodNotAllowed)
	})
}

func allowedMethods(handlers map[string]http.Handler) string {
	methods := make([]string, 0, len(handlers))
	for method := range handlers {
		methods = append(methods, method)
	}
	sort.Strings(methods)
	return strings.Join(methods, ", ")
}
