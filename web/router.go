package web

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/unrolled/render"

	"github.com/morganjb52/ffb/controller"
)

func getRouter(ctrl controller.C, render *render.Render) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Set a timeout value on the request context (ctx), that will signal
	// through ctx.Done() that the request has timed out and further
	// processing should be stopped. Platform fetches go through external
	// relays, so the budget is generous.
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/", rootHandler(ctrl, render))

	r.Route("/connections", func(r chi.Router) {
		r.Post("/{platform}", connectHandler(ctrl, render))
		r.Delete("/{platform}", disconnectHandler(ctrl, render))
	})

	r.Route("/oauth", func(r chi.Router) {
		r.Get("/callback", oauthRedirectHandler(ctrl, render))
		r.Get("/{platform}", oauthLinkHandler(ctrl, render))
	})

	r.Route("/teams", func(r chi.Router) {
		r.Get("/", listTeamsHandler(ctrl, render))
		r.Route("/{teamID}", func(r chi.Router) {
			r.Get("/", getTeamHandler(ctrl, render))
			r.Get("/lineup", getLineupHandler(ctrl, render))
			r.Put("/lineup", updateLineupHandler(ctrl, render))
			r.Post("/sync", syncTeamHandler(ctrl, render))
		})
	})

	return r
}
