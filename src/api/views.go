package api

import (
	"fmt"
	"net/http"
	"time"

	handlers "investmentapp/src/api/handlers"
	"investmentapp/src/config"
	"investmentapp/src/models"
	"investmentapp/src/repositories"
	"investmentapp/src/services"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/jwtauth"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
)

type Server struct {
	Router  *chi.Mux
	Handler *handlers.Handler
	cfg     *config.Config
}

func NewServer(cfg *config.Config, logger *logrus.Logger, store *repositories.Store, cache services.PortfolioCache) (*Server, error) {
	if cfg.Auth.JWTSecret == "" {
		return nil, fmt.Errorf("auth.jwtSecret must be set")
	}
	ttl, err := time.ParseDuration(cfg.Auth.TokenTTL)
	if err != nil {
		return nil, fmt.Errorf("invalid auth.tokenTTL: %w", err)
	}

	server := &Server{
		Router: chi.NewRouter(),
		Handler: &handlers.Handler{
			Positions:   services.NewPositionService(store, cache),
			Holders:     services.NewHolderService(store, cache),
			Instruments: services.NewInstrumentService(store),
			TokenAuth:   jwtauth.New("HS256", []byte(cfg.Auth.JWTSecret), nil),
			TokenTTL:    ttl,
			Logger:      logger,
		},
		cfg: cfg,
	}
	server.InitRoutes()
	return server, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}

func (s *Server) InitRoutes() {
	s.Router.Use(middleware.RequestID)
	s.Router.Use(middleware.Recoverer)
	s.Router.Use(cors.New(cors.Options{
		AllowedOrigins:   s.cfg.Service.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}).Handler)
	s.Router.Use(s.Handler.WithLogger)

	s.Router.Get("/alive", handlers.Healthcheck)
	s.Router.Post("/signup", s.Handler.SignUp)
	s.Router.Post("/login", s.Handler.Login)

	s.Router.Route("/api", func(r chi.Router) {
		r.Use(jwtauth.Verifier(s.Handler.TokenAuth))
		r.Use(jwtauth.Authenticator)
		r.Use(s.Handler.Subject)

		r.Route("/portfolio", func(r chi.Router) {
			r.Get("/", s.Handler.GetPortfolio)
			r.Get("/export", s.Handler.ExportPortfolio)
			r.Delete("/positions/{id}", s.Handler.DeletePositionByID)
			r.Put("/{ticker}", s.Handler.PutPosition)
			r.Delete("/{ticker}", s.Handler.DeletePositionByTicker)
		})

		r.Route("/holder", func(r chi.Router) {
			r.Get("/", s.Handler.GetHolder)
			r.Put("/", s.Handler.PutHolder)
			r.Put("/address", s.Handler.PutAddress)
		})

		r.Route("/instruments", func(r chi.Router) {
			r.Get("/", s.Handler.GetInstruments)
			r.With(s.Handler.RequireRole(models.RoleAdmin)).Put("/", s.Handler.PutInstrument)
		})
	})
}

func NewHTTPServer(cfg *config.Config, server *Server) *http.Server {
	httpServer := &http.Server{
		Addr:         ":" + cfg.Service.Port,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		Handler:      server,
	}
	return httpServer
}
