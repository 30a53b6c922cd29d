// Command foray runs the interest-graph discovery server.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/forayhq/foray/internal/api"
	"github.com/forayhq/foray/internal/config"
	"github.com/forayhq/foray/internal/db"
	"github.com/forayhq/foray/internal/db/migrations"
	"github.com/forayhq/foray/internal/dbpool"
	"github.com/forayhq/foray/internal/service"
	"github.com/forayhq/foray/internal/store"
	"github.com/forayhq/foray/internal/ws"
)

const (
	startupTimeout  = 60 * time.Second
	shutdownTimeout = 15 * time.Second
	auditQueueSize  = 1000
	embedQueueSize  = 1000
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	if err := run(log); err != nil {
		log.WithError(err).Fatal("server exited with error")
	}
}

func run(log *logrus.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	} else {
		log.WithField("level", cfg.LogLevel).Warn("unknown log level, using info")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	startCtx, cancel := context.WithTimeout(ctx, startupTimeout)
	defer cancel()

	pool, err := dbpool.NewPool(startCtx, cfg.DatabaseURL.Value())
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := db.RunMigrations(startCtx, pool, log, migrations.FS); err != nil {
		return err
	}

	if err := db.EnsureVectorDimensions(startCtx, pool, log, cfg.EmbeddingDimensions); err != nil {
		return err
	}

	log.WithField("schema_version", db.SchemaVersion()).Info("database ready")

	base := store.Base{Pool: pool, Log: log}
	nodes := store.NewNodeStore(base)
	archive := store.NewArchiveStore(base)
	reactions := store.NewReactionStore(base)
	keywords := store.NewKeywordStore(base)
	embeddings := store.NewEmbeddingStore(base)
	stats := store.NewStatsStore(base)
	auditStore := store.NewAuditStore(base)
	users := store.NewUserStore(pool)

	embedder := service.NewEmbeddingService(cfg.OllamaURL, cfg.EmbeddingModel)
	textgen := service.NewTextGenService(cfg.OllamaURL, cfg.GenerationModel)
	searcher := service.NewSearchService(cfg.SearchURL)

	auditSvc := service.NewAuditService(auditStore, log)
	auditWorker := service.NewAuditWorker(auditSvc, log, auditQueueSize)
	embedWorker := service.NewEmbedWorker(embedder, embeddings, log, embedQueueSize, cfg.EmbedWorkers)

	graph := service.NewGraphService(nodes, archive, reactions, stats, embedder, embedWorker, auditWorker, log)
	feedback := service.NewFeedbackService(reactions, nodes, keywords, graph, auditWorker, log)
	combiner := service.NewCombinationService(nodes, log)
	discovery := service.NewDiscoveryService(graph, feedback, searcher, textgen, keywords, auditWorker, log)

	hub := ws.NewHub(log)
	go hub.Run(ctx)
	go auditWorker.Run(ctx)
	go embedWorker.Run(ctx)

	bridge := db.NewNotifyBridge(log, pool, hub)
	if err := bridge.Start(ctx); err != nil {
		return err
	}

	handler := api.NewRouter(ctx, &api.RouterDeps{
		Log:         log,
		Pool:        pool,
		Hub:         hub,
		Graph:       graph,
		Discovery:   discovery,
		Combiner:    combiner,
		Audit:       auditSvc,
		Admin:       embeddings,
		UserLookup:  users,
		EmbedWorker: embedWorker,
		CORSOrigins: cfg.CORSOrigins,
		Version:     config.Version,
		OllamaURL:   cfg.OllamaURL,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)

	go func() {
		log.WithFields(logrus.Fields{
			"addr":    cfg.Addr(),
			"version": config.Version,
		}).Info("server listening")

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("forced shutdown")
	}

	hub.Shutdown()

	return nil
}
