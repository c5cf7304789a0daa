package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"time"

	"go.uber.org/zap"

	"github.com/Reinvik/nexus-jarvis-suite/internal/aisle"
	"github.com/Reinvik/nexus-jarvis-suite/internal/config"
	"github.com/Reinvik/nexus-jarvis-suite/internal/normalize"
	"github.com/Reinvik/nexus-jarvis-suite/internal/repository/excel"
	"github.com/Reinvik/nexus-jarvis-suite/internal/repository/mongodb"
	"github.com/Reinvik/nexus-jarvis-suite/internal/repository/sheets"
	"github.com/Reinvik/nexus-jarvis-suite/internal/scheduler"
	"github.com/Reinvik/nexus-jarvis-suite/internal/server/handlers"
	"github.com/Reinvik/nexus-jarvis-suite/internal/server/router"
	"github.com/Reinvik/nexus-jarvis-suite/internal/service/analyze"
	"github.com/Reinvik/nexus-jarvis-suite/internal/service/consolidate"
	"github.com/Reinvik/nexus-jarvis-suite/internal/service/runner"
	"github.com/Reinvik/nexus-jarvis-suite/pkg/clients/notify"
	"github.com/Reinvik/nexus-jarvis-suite/pkg/logger"
)

func main() {
	once := flag.Bool("once", false, "execute a single reconciliation run and exit")
	flag.Parse()

	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New())
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	aisleTable, err := excel.LoadAisleTable(cfg.Analysis.AislePath)
	if err != nil {
		baseLogger.Warn("aisle master unavailable, swaps disabled for this process",
			zap.String("path", cfg.Analysis.AislePath), zap.Error(err))
		aisleTable = nil
	}
	resolver := aisle.NewResolver(aisleTable, baseLogger.Named("aisle"))

	sources := []consolidate.Source{
		excel.NewInboxRepository(cfg.Ingest.InboxDir, cfg.Ingest.ProcessedDir, baseLogger.Named("repo.inbox")),
	}
	if cfg.SheetsEnabled() {
		sheetSource, err := sheets.NewGoogleSheetSource(context.Background(), cfg.Sheets, baseLogger.Named("repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets source", zap.Error(err))
		}
		sources = append(sources, sheetSource)
	}

	var archiver runner.Archiver
	if cfg.ArchiveEnabled() {
		mongoRepo, err := mongodb.NewMongoDBRepository(context.Background(), cfg.MongoDB.URI, cfg.MongoDB.DBName)
		if err != nil {
			baseLogger.Fatal("failed to init mongodb repository", zap.Error(err))
		}
		defer func() {
			if err := mongoRepo.Close(context.Background()); err != nil {
				baseLogger.Error("failed to close mongodb connection", zap.Error(err))
			}
		}()
		archiver = mongoRepo
	}

	var notifier runner.Notifier
	if cfg.NotifyEnabled() {
		notifier = notify.NewWebhookClient(cfg.Notify.WebhookURL)
	}

	store := excel.NewMasterRepository(cfg.Store.MasterPath, baseLogger.Named("repo.master"))
	normalizer := normalize.NewNormalizer(normalize.NewDateParser(), baseLogger.Named("normalize"))
	consolidator := consolidate.NewService(sources, normalizer, baseLogger.Named("svc.consolidate"))
	analyzer := analyze.NewAnalyzer(resolver, baseLogger.Named("svc.analyze"))
	reports := excel.NewReportWriter(cfg.Analysis.ReportDir, baseLogger.Named("repo.report"))

	run := runner.New(store, consolidator, analyzer, reports, archiver, notifier, baseLogger.Named("runner"))

	if *once {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		if _, err := run.Run(ctx); err != nil {
			baseLogger.Fatal("run failed", zap.Error(err))
		}
		return
	}

	runHandler := handlers.NewRunHandler(run, baseLogger.Named("handlers.run"))
	engine := router.New(runHandler, baseLogger.Named("router"))

	sched, err := scheduler.NewScheduler(cfg.Scheduler, run, baseLogger.Named("scheduler"))
	if err != nil {
		baseLogger.Fatal("failed to init scheduler", zap.Error(err))
	}
	if err := sched.Start(); err != nil {
		baseLogger.Fatal("failed to start scheduler", zap.Error(err))
	}
	defer sched.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}
