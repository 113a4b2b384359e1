package worker

import (
	"net/http"
	"time"

	"investmentapp/src/config"
	"investmentapp/src/repositories"
	"investmentapp/src/services"
	"investmentapp/src/worker/controllers"
	handlers "investmentapp/src/worker/handlers"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
)

type Server struct {
	Router  *chi.Mux
	Handler *handlers.Handler
}

// NewServer builds the worker and schedules the periodic relationship
// repair when worker.auditCron is set.
func NewServer(cfg *config.Config, logger *logrus.Logger, store *repositories.Store) (*Server, error) {
	controller := controllers.NewController(services.NewRelationshipMaintainer(store))
	if cfg.Worker.AuditCron != "" {
		if err := controller.ScheduleAudit(logger, cfg.Worker.AuditCron); err != nil {
			return nil, err
		}
	}

	server := &Server{
		Router:  chi.NewRouter(),
		Handler: handlers.NewHandler(controller, logger),
	}
	server.InitRoutes()
	return server, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}

func (s *Server) InitRoutes() {
	s.Router.Use(middleware.Recoverer)
	s.Router.Get("/alive", handlers.Healthcheck)
	s.Router.Route("/api/relationships", func(r chi.Router) {
		r.Post("/audit", s.Handler.RunAudit)
	})
}

func (s *Server) Close() {
	s.Handler.Controller.Stop()
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
