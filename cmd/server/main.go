package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/estebanSulcaInfante/envaperu-catalog/internal/config"
	"github.com/estebanSulcaInfante/envaperu-catalog/internal/infra"
	"github.com/estebanSulcaInfante/envaperu-catalog/internal/router"
	"github.com/estebanSulcaInfante/envaperu-catalog/internal/worker"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	// Structured logger: pretty in dev, JSON in prod
	if cfg.Env != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL, cfg.DBLockTimeoutMS)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	if err := infra.RunMigrations(db); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	rdb, err := infra.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mailer := infra.NewMailer(cfg)
	queue := worker.NewRedisQueue(rdb)
	dispatcher := worker.NewDispatcher(queue)

	app := router.New(ctx, cfg, router.Deps{DB: db, Redis: rdb, Mailer: mailer, Dispatcher: dispatcher})

	// Worker handlers are wired here (composition root): the offer worker
	// reads final versions through the same catalog service the API uses.
	ofertaWorker := worker.NewOfertaWorker(app.Catalogos, dispatcher, cfg.PDFStoragePath)
	emailWorker := worker.NewEmailWorker(mailer)
	pool := worker.NewPool(queue, map[string]worker.Handler{
		worker.JobOfertaFinal: ofertaWorker.Process,
		worker.JobEmail:       emailWorker.Process,
	})
	pool.Start(ctx, cfg.WorkerPoolSize)
	worker.StartDLQMonitor(ctx, queue, mailer)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      app.Engine,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Msgf("envaperu catalog API listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	_ = rdb.Close()
	log.Info().Msg("server exited")
}
