package handler

import (
	"net/http"

	"lending/core"
	"lending/handler/auth"
	"lending/handler/hc"
	"lending/handler/render"
	"lending/handler/rest"
	"lending/pkg/metrics"

	"github.com/fox-one/pkg/logger"
	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/rs/cors"
)

// Server server
type Server struct {
	cfg      *core.Config
	session  core.Session
	services rest.Services
	version  string
}

// New new server function
func New(
	cfg *core.Config,
	session core.Session,
	services rest.Services,
	version string,
) Server {
	return Server{
		cfg:      cfg,
		session:  session,
		services: services,
		version:  version,
	}
}

// Handler hc, metrics and the restful api under /api
func (s Server) Handler() http.Handler {
	mux := chi.NewMux()
	mux.Use(middleware.Recoverer)
	mux.Use(middleware.StripSlashes)
	mux.Use(cors.AllowAll().Handler)
	mux.Use(logger.WithRequestID)
	mux.Use(middleware.Logger)
	mux.Use(metrics.Middleware)

	mux.Mount("/hc", hc.Handle(s.version, s.services.Prices, s.cfg.App.PriceMaxAge))
	mux.Handle("/metrics", metrics.Handler())

	mux.Group(func(r chi.Router) {
		r.Use(render.WrapResponse)
		r.Use(auth.HandleAuthentication(s.session))
		r.Mount("/api", rest.Handle(s.services))
	})

	return mux
}
