package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"voc-insights-go/internal/app"
	"voc-insights-go/internal/config"
	"voc-insights-go/internal/logger"
	"voc-insights-go/internal/metrics"
)

func main() {
	_ = godotenv.Load() // loads .env

	log := logger.New()
	settings := config.Load()
	log.WithField("environment", settings.Environment).Info("starting service")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	a, err := app.New(ctx, settings, metrics.New(reg), log.Entry)
	if err != nil {
		log.WithError(err).Fatal("failed to wire application")
	}
	defer func() {
		if err := a.Close(); err != nil {
			log.WithError(err).Warn("close failed")
		}
	}()

	s := &server{
		log:       log,
		runner:    a.Driver,
		processor: a.Processor,
		trigger:   a.Trigger,
		gatherer:  reg,
	}

	addr := fmt.Sprintf(":%s", settings.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.WithField("addr", addr).Info("listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.WithError(err).Fatal("server terminated")
	}
	log.Info("server stopped")
}
