/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/friendsincode/smartalarm/internal/alarm"
	"github.com/friendsincode/smartalarm/internal/api"
	"github.com/friendsincode/smartalarm/internal/calendar"
	"github.com/friendsincode/smartalarm/internal/config"
	"github.com/friendsincode/smartalarm/internal/db"
	"github.com/friendsincode/smartalarm/internal/device"
	"github.com/friendsincode/smartalarm/internal/eventbus"
	"github.com/friendsincode/smartalarm/internal/events"
	"github.com/friendsincode/smartalarm/internal/models"
	"github.com/friendsincode/smartalarm/internal/radio"
	"github.com/friendsincode/smartalarm/internal/session"
	"github.com/friendsincode/smartalarm/internal/speech"
	"github.com/friendsincode/smartalarm/internal/telemetry"
)

const (
	requestTimeout       = 60 * time.Second
	shutdownTimeout      = 10 * time.Second
	dbMetricsInterval    = 30 * time.Second
	natsReconnectWait    = 2 * time.Second
	apiTracingServiceTag = "smartalarm-api"
)

// Server bundles HTTP and supporting services.
type Server struct {
	cfg        *config.Config
	logger     zerolog.Logger
	router     chi.Router
	httpServer *http.Server
	closers    []func() error
	now        func() time.Time

	services   *Services
	bus        *events.Bus
	triggers   chan models.Trigger
	alarms     *alarm.Store
	scheduler  *alarm.Scheduler
	controller *session.Controller
	bridge     *eventbus.NATSBridge
	api        *api.API
}

// New constructs the server and wires dependencies.
func New(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*Server, error) {
	for _, warn := range cfg.LegacyEnvWarnings {
		logger.Warn().Msg(warn)
	}

	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	router.Use(securityHeadersMiddleware)
	router.Use(telemetry.TracingMiddleware(apiTracingServiceTag))
	router.Use(telemetry.MetricsMiddleware)
	// The event stream is long-lived; everything else gets a deadline.
	router.Use(func(next http.Handler) http.Handler {
		timeout := middleware.Timeout(requestTimeout)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if strings.EqualFold(r.Header.Get("Upgrade"), "websocket") {
				next.ServeHTTP(w, r)
				return
			}
			timeout(next).ServeHTTP(w, r)
		})
	})

	loc := cfg.Location
	if loc == nil {
		loc = time.Local
	}

	srv := &Server{
		cfg:      cfg,
		logger:   logger,
		router:   router,
		now:      func() time.Time { return time.Now().In(loc) },
		bus:      events.NewBus(),
		triggers: make(chan models.Trigger, cfg.TriggerQueueSize),
	}

	if err := srv.initDependencies(ctx); err != nil {
		_ = srv.Close()
		return nil, err
	}

	srv.configureRoutes()

	addr := fmt.Sprintf("%s:%d", cfg.HTTPBind, cfg.HTTPPort)
	srv.httpServer = &http.Server{
		Addr:              addr,
		Handler:           srv.router,
		ReadHeaderTimeout: 15 * time.Second,
		// WriteTimeout stays 0 for the event stream; the middleware
		// timeout covers the other routes.
		WriteTimeout: 0,
		IdleTimeout:  60 * time.Second,
	}

	return srv, nil
}

func securityHeadersMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("Referrer-Policy", "no-referrer")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")

		// Only advertise HSTS for requests served over HTTPS.
		if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
			w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) initDependencies(ctx context.Context) error {
	services, err := NewServices(ctx, s.cfg, s.logger)
	if err != nil {
		return err
	}
	s.services = services
	s.DeferClose(services.Close)

	var cal calendar.Provider
	if s.cfg.GoogleEnabled() {
		cal = calendar.NewGoogle(calendar.GoogleConfig{
			ClientID:     s.cfg.GoogleClientID,
			ClientSecret: s.cfg.GoogleClientSecret,
			RefreshToken: s.cfg.GoogleRefreshToken,
			CalendarID:   s.cfg.GoogleCalendarID,
		}, s.logger)
	} else {
		s.logger.Info().Msg("google calendar not configured, calendar mode disabled")
	}

	browser := radio.NewBrowser(nil, s.cfg.RadioDirectoryURL, s.logger)
	var stations session.StationSource
	if country := s.cfg.RadioCountry; country != "" {
		stations = func(ctx context.Context) []radio.Station {
			return browser.ByCountry(ctx, country)
		}
	}

	var (
		sink    session.Sink   = device.NewLogSink(s.logger)
		speaker speech.Speaker = speech.NewLogSpeaker(s.logger)
	)
	if s.cfg.NATSEnabled() {
		nc, err := eventbus.Connect(eventbus.NATSConfig{
			URL:           s.cfg.NATSURL,
			Token:         s.cfg.NATSToken,
			Prefix:        s.cfg.NATSPrefix,
			MaxReconnects: -1,
			ReconnectWait: natsReconnectWait,
			Timeout:       s.cfg.DeviceTimeout,
		}, s.logger)
		if err != nil {
			s.logger.Warn().Err(err).Msg("nats unavailable, using headless device")
		} else {
			s.DeferClose(func() error {
				nc.Close()
				return nil
			})
			client := device.NewClient(nc, s.cfg.NATSPrefix, s.cfg.DeviceTimeout, s.logger)
			sink, speaker = client, client
			s.bridge = eventbus.NewNATSBridge(nc, s.bus, s.cfg.NATSPrefix, s.triggers, s.logger)
		}
	}

	s.alarms = alarm.NewStore(services.DB, s.logger)
	s.scheduler = alarm.NewScheduler(s.alarms, s.triggers, s.bus, s.cfg.AlarmTickInterval, s.logger).WithClock(s.now)

	s.controller = session.New(session.Deps{
		Selector:  services.Pipeline,
		Sink:      sink,
		Speaker:   speaker,
		Calendar:  cal,
		Stations:  stations,
		Learning:  services.Learning,
		Scheduler: s.scheduler,
		DB:        services.DB,
		Bus:       s.bus,
	}, s.logger).WithClock(s.now).WithFadeIn(s.cfg.FadeIn)

	s.api = api.New(api.Deps{
		Selector:   services.Pipeline,
		Classifier: services.Classifier,
		Alarms:     s.alarms,
		Session:    s.controller,
		Learning:   services.Learning,
		History:    services.History,
		Calendar:   cal,
		Radio:      browser,
		Predictor:  services.Predictor,
		Bus:        s.bus,
	}, s.logger).WithClock(s.now)

	return nil
}

// Handler exposes the router.
func (s *Server) Handler() http.Handler {
	return s.router
}

// HTTPServer exposes the underlying net/http server.
func (s *Server) HTTPServer() *http.Server {
	return s.httpServer
}

// Run serves HTTP and runs the alarm workers until ctx is cancelled or
// one of them fails, then shuts the HTTP server down.
func (s *Server) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info().Str("addr", s.httpServer.Addr).Msg("HTTP server listening")
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}
		return nil
	})

	s.startBackgroundWorkers(ctx, g)
	return g.Wait()
}

func (s *Server) startBackgroundWorkers(ctx context.Context, g *errgroup.Group) {
	g.Go(func() error {
		if err := s.scheduler.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("alarm scheduler: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		if err := s.controller.Run(ctx, s.triggers); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("session controller: %w", err)
		}
		return nil
	})
	if s.bridge != nil {
		g.Go(func() error {
			if err := s.bridge.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				s.logger.Error().Err(err).Msg("nats bridge exited")
			}
			return nil
		})
	}

	g.Go(func() error {
		ticker := time.NewTicker(dbMetricsInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				db.UpdateConnectionMetrics(s.services.DB)
			}
		}
	})
}

// Close releases owned resources in reverse order.
func (s *Server) Close() error {
	var firstErr error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	s.closers = nil
	return firstErr
}

// DeferClose registers a cleanup hook.
func (s *Server) DeferClose(fn func() error) {
	s.closers = append(s.closers, fn)
}

func (s *Server) configureRoutes() {
	s.router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	s.router.Handle("/metrics", telemetry.Handler())

	s.api.Routes(s.router)
}
