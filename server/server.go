// Package server exposes the board over a JSON HTTP API.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/existflow/focusboard/internal/app"
	"github.com/existflow/focusboard/internal/logger"
	"github.com/existflow/focusboard/internal/reminder"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// Server serves one App.
type Server struct {
	app   *app.App
	echo  *echo.Echo
	token string
}

// New creates a new server. When token is set every /api/v1 request must
// carry it as a bearer token.
func New(a *app.App, token string) *Server {
	s := &Server{app: a, token: token}
	s.setupEcho()
	return s
}

func (s *Server) setupEcho() {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(requestLogger)
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.CORS())

	// Health check
	e.GET("/health", s.handleHealth)

	// API v1
	api := e.Group("/api/v1")
	if s.token != "" {
		api.Use(s.authMiddleware)
	}

	api.GET("/tasks", s.handleListTasks)
	api.POST("/tasks", s.handleCreateTask)
	api.POST("/tasks/:id/toggle", s.handleToggleTask)
	api.PATCH("/tasks/:id", s.handleUpdateTask)
	api.DELETE("/tasks/:id", s.handleDeleteTask)

	api.GET("/categories", s.handleListCategories)
	api.POST("/categories", s.handleCreateCategory)
	api.DELETE("/categories/:id", s.handleDeleteCategory)

	api.GET("/events", s.handleListEvents)
	api.POST("/events", s.handleCreateEvent)
	api.DELETE("/events/:id", s.handleDeleteEvent)
	api.POST("/sync", s.handleSync)

	api.GET("/reminders", s.handleReminders)
	api.GET("/settings", s.handleGetSettings)
	api.PUT("/settings", s.handlePutSettings)
	api.GET("/export", s.handleExport)
	api.POST("/import", s.handleImport)

	s.echo = e
}

// Router returns the HTTP handler
func (s *Server) Router() http.Handler {
	return s.echo
}

// Start serves on addr until Shutdown.
func (s *Server) Start(addr string) error {
	logger.Info("HTTP server listening", logger.F("addr", addr))
	if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// Run serves a on addr with reminders and scheduled sync running in the
// background, until ctx is cancelled or the process is interrupted.
func Run(ctx context.Context, a *app.App, addr, token string) error {
	if err := a.StartBackground(reminder.LogNotifier{}); err != nil {
		logger.Warn("Background sync disabled", logger.Err(err))
	}

	srv := New(a, token)
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start(addr) }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
		"time":   s.app.Store.Now().Format(time.RFC3339),
	})
}

func errorJSON(c echo.Context, status int, msg string) error {
	return c.JSON(status, map[string]string{"error": msg})
}
