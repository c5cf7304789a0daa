// Package runner drives one full reconciliation cycle: ingest pending
// documents into the master dataset, recompute the analysis, emit the report
// workbook and fan the outcome out to the optional archive and webhook.
package runner

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Reinvik/nexus-jarvis-suite/internal/domain/models"
	"github.com/Reinvik/nexus-jarvis-suite/internal/service/analyze"
	"github.com/Reinvik/nexus-jarvis-suite/internal/service/consolidate"
)

// ErrRunInProgress is returned when a run is requested while another one is
// still executing.
var ErrRunInProgress = errors.New("a run is already in progress")

// ReportWriter persists an analysis report and returns the written path.
type ReportWriter interface {
	Write(report models.AnalysisReport, at time.Time) (string, error)
}

// Archiver stores run reports in a durable history.
type Archiver interface {
	ArchiveRunReport(ctx context.Context, report models.RunReport) error
}

// Notifier announces finished runs.
type Notifier interface {
	SendRunSummary(ctx context.Context, report models.RunReport) error
}

// Runner executes reconciliation cycles one at a time.
type Runner struct {
	store        consolidate.Store
	consolidator *consolidate.Service
	analyzer     *analyze.Analyzer
	reports      ReportWriter
	archiver     Archiver
	notifier     Notifier
	logger       *zap.Logger

	mu       sync.Mutex
	running  bool
	lastRun  *models.RunReport
	lastScan *models.AnalysisReport
}

// New wires a runner. archiver and notifier may be nil; the corresponding
// steps are skipped.
func New(store consolidate.Store, consolidator *consolidate.Service, analyzer *analyze.Analyzer, reports ReportWriter, archiver Archiver, notifier Notifier, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		store:        store,
		consolidator: consolidator,
		analyzer:     analyzer,
		reports:      reports,
		archiver:     archiver,
		notifier:     notifier,
		logger:       logger,
	}
}

// Run executes one full cycle. Only one run may be in flight at a time;
// concurrent calls fail fast with ErrRunInProgress.
func (r *Runner) Run(ctx context.Context) (models.RunReport, error) {
	if !r.tryAcquire() {
		return models.RunReport{}, ErrRunInProgress
	}
	defer r.release()

	report := models.RunReport{
		RunID:     uuid.NewString(),
		StartedAt: time.Now(),
	}
	logger := r.logger.With(zap.String("run_id", report.RunID))
	logger.Info("run started")

	var (
		ingestion consolidate.Ingestion
		analysis  models.AnalysisReport
	)

	err := r.store.WithLock(ctx, func(ctx context.Context) error {
		existing, err := r.store.Load(ctx)
		if err != nil {
			return err
		}

		ingestion, err = r.consolidator.Ingest(ctx, existing)
		if err != nil {
			return err
		}

		// Ingested files leave the inbox only after the dataset is durable,
		// so a failed commit retries them on the next run.
		if err := r.store.Commit(ctx, ingestion.Data); err != nil {
			return err
		}

		for _, processed := range ingestion.Documents {
			if err := processed.Source.MarkProcessed(ctx, processed.Doc); err != nil {
				logger.Warn("failed to archive processed document",
					zap.String("document", processed.Doc.Name), zap.Error(err))
			}
		}
		return nil
	})
	if err != nil {
		logger.Error("run failed", zap.Error(err))
		return models.RunReport{}, err
	}

	analysis = r.analyzer.Analyze(ingestion.Data)

	report.FilesProcessed = ingestion.FilesProcessed
	report.SheetsSkipped = ingestion.SheetsSkipped
	report.NewShortages = ingestion.NewShortages
	report.NewOverages = ingestion.NewOverages
	report.NewDamages = ingestion.NewDamages
	report.Duplicates = ingestion.Duplicates
	report.TotalShortages = len(ingestion.Data.Shortages)
	report.TotalOverages = len(ingestion.Data.Overages)
	report.Shipments = len(analysis.Summary)

	if path, err := r.reports.Write(analysis, report.StartedAt); err != nil {
		logger.Error("failed to write report workbook", zap.Error(err))
	} else {
		report.ReportFile = path
	}

	report.FinishedAt = time.Now()

	if r.archiver != nil {
		if err := r.archiver.ArchiveRunReport(ctx, report); err != nil {
			logger.Warn("failed to archive run report", zap.Error(err))
		}
	}
	if r.notifier != nil {
		if err := r.notifier.SendRunSummary(ctx, report); err != nil {
			logger.Warn("failed to send run summary", zap.Error(err))
		}
	}

	r.mu.Lock()
	r.lastRun = &report
	r.lastScan = &analysis
	r.mu.Unlock()

	logger.Info("run finished",
		zap.Int("files", report.FilesProcessed),
		zap.Int("shipments", report.Shipments),
		zap.Int("duplicates", report.Duplicates),
		zap.Duration("took", report.FinishedAt.Sub(report.StartedAt)))

	return report, nil
}

// Running reports whether a run is currently in flight.
func (r *Runner) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

// LastRun returns the report of the most recent finished run, if any.
func (r *Runner) LastRun() (models.RunReport, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.lastRun == nil {
		return models.RunReport{}, false
	}
	return *r.lastRun, true
}

// LastAnalysis returns the output tables of the most recent finished run.
func (r *Runner) LastAnalysis() (models.AnalysisReport, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.lastScan == nil {
		return models.AnalysisReport{}, false
	}
	return *r.lastScan, true
}

func (r *Runner) tryAcquire() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.running {
		return false
	}
	r.running = true
	return true
}

func (r *Runner) release() {
	r.mu.Lock()
	r.running = false
	r.mu.Unlock()
}
