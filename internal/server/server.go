// Package server exposes the engine's operational HTTP surface: liveness,
// scheduler status, and Prometheus metrics. The engine itself is an
// in-process library; nothing here is part of its scheduling contract.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/remindkit/reminderd/internal/engine"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type Server struct {
	engine    *engine.Engine
	reminders ReminderDirectory
	users     UserRegistry
	db        Pinger
	log       zerolog.Logger
	http      *http.Server
}

func New(addr string, eng *engine.Engine, reminders ReminderDirectory, users UserRegistry, db Pinger, log zerolog.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	s := &Server{
		engine:    eng,
		reminders: reminders,
		users:     users,
		db:        db,
		log:       log,
		http: &http.Server{
			Addr:              addr,
			Handler:           router,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}

	router.GET("/health", s.health)
	router.GET("/status", s.status)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.POST("/users", s.registerUser)
	router.POST("/reminders", s.createReminder)
	router.GET("/users/:id/reminders", s.listReminders)
	router.DELETE("/reminders/:id", s.cancelReminder)
	return s
}

// Handler exposes the route tree, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	s.log.Info().Str("addr", s.http.Addr).Msg("http server started")

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.http.Shutdown(shutdownCtx)
	}
}

func (s *Server) health(c *gin.Context) {
	if err := s.db.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) status(c *gin.Context) {
	c.JSON(http.StatusOK, s.engine.Status())
}
