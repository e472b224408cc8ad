package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"comedores/internal/promo"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// application is the in-memory reference backend: it honors the wire
// contracts the client core depends on (promotion catalog, order submission,
// status stream) without any real order processing behind them.
type application struct {
	config   config
	logger   *zap.SugaredLogger
	menu     *menuStore
	catalog  []promo.Promotion
	hub      *hub
	ordNum   *orderNumberGenerator
	validate *validator.Validate
}

type config struct {
	addr        string
	env         string
	orderSecret string
	statusStep  time.Duration
}

func (app *application) mount() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(30 * time.Second))

		r.Get("/health", app.healthCheckHandler)
		r.Get("/promotions", app.getPromotionsHandler)
		r.Post("/orders", app.createOrderHandler)
	})

	// The stream stays outside the timeout group: it is long-lived by design.
	r.Get("/orders/notifications/stream", app.streamOrderEventsHandler)

	return r
}

func (app *application) run(mux http.Handler) error {
	srv := &http.Server{
		Addr:        app.config.addr,
		Handler:     mux,
		ReadTimeout: time.Second * 10,
		IdleTimeout: time.Minute,
	}

	shutdown := make(chan error)

	go func() {
		quit := make(chan os.Signal, 1)

		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		s := <-quit

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		app.logger.Infow("signal caught", "signal", s.String())

		shutdown <- srv.Shutdown(ctx)
	}()

	app.logger.Infow("dev backend has started", "addr", app.config.addr, "env", app.config.env, "version", version)

	err := srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	err = <-shutdown
	if err != nil {
		return err
	}

	app.logger.Infow("dev backend has stopped", "addr", app.config.addr)

	return nil
}

func (app *application) healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"env":     app.config.env,
		"version": version,
	})
}
