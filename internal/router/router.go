package router

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/freightboard/dashboard-api/internal/handlers"
	"github.com/freightboard/dashboard-api/internal/middleware"
)

func NewRouter(deps *handlers.Deps) chi.Router {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	lm := middleware.NewLoggerMiddleware(deps.Log)
	r.Use(lm.LoggerMiddleware)

	auth := middleware.NewMiddleware(deps.Firebase)

	dh := handlers.NewDashboardHandlers(deps)
	wh := handlers.NewWidgetHandlers(deps)
	ah := handlers.NewAIHandlers(deps)
	sh := handlers.NewSourceHandlers(deps)

	r.Group(func(r chi.Router) {
		r.Use(auth.FirebaseAuth)
		r.Mount("/dashboards", dh.DashboardRoutes())
		r.Mount("/widgets", wh.WidgetRoutes())
		r.Mount("/ai", ah.AIRoutes())
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAdmin)
			r.Mount("/sources", sh.SourceRoutes())
		})
	})
	return r
}
