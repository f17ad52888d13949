package httpapp

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// App owns the HTTP server lifecycle
type App struct {
	log        *slog.Logger
	httpServer *http.Server
	port       int
}

// New returns a new instance of the HTTP App
func New(log *slog.Logger, handler http.Handler, port int, timeout time.Duration) *App {
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      handler,
		ReadTimeout:  timeout,
		WriteTimeout: timeout,
	}
	return &App{
		log:        log,
		httpServer: srv,
		port:       port,
	}
}

// MustRun runs the server and panics if an error occurs
func (a *App) MustRun() {
	if err := a.Run(); err != nil {
		panic(err)
	}
}

// Run starts the HTTP server
func (a *App) Run() error {
	const op = "httpapp.Run"

	a.log.Info("http server is running",
		slog.String("op", op),
		slog.String("addr", a.httpServer.Addr))

	if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Stop shuts the server down, letting in-flight requests finish
func (a *App) Stop() {
	const op = "httpapp.Stop"

	a.log.Info("stopping http server", slog.String("op", op), slog.Int("port", a.port))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.httpServer.Shutdown(ctx); err != nil {
		a.log.Error("http server shutdown failed", slog.String("op", op), slog.String("error", err.Error()))
	}
}
