package runner_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Reinvik/nexus-jarvis-suite/internal/aisle"
	"github.com/Reinvik/nexus-jarvis-suite/internal/domain/models"
	"github.com/Reinvik/nexus-jarvis-suite/internal/normalize"
	"github.com/Reinvik/nexus-jarvis-suite/internal/service/analyze"
	"github.com/Reinvik/nexus-jarvis-suite/internal/service/consolidate"
	"github.com/Reinvik/nexus-jarvis-suite/internal/service/runner"
)

// memStore keeps the master dataset in memory and records the call sequence.
type memStore struct {
	mu        sync.Mutex
	data      models.MasterData
	locked    bool
	commitErr error
	calls     []string
}

func (s *memStore) WithLock(ctx context.Context, fn func(ctx context.Context) error) error {
	s.mu.Lock()
	if s.locked {
		s.mu.Unlock()
		return errors.New("store already locked")
	}
	s.locked = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.locked = false
		s.mu.Unlock()
	}()
	return fn(ctx)
}

func (s *memStore) Load(ctx context.Context) (models.MasterData, error) {
	s.calls = append(s.calls, "load")
	return s.data, nil
}

func (s *memStore) Commit(ctx context.Context, data models.MasterData) error {
	s.calls = append(s.calls, "commit")
	if s.commitErr != nil {
		return s.commitErr
	}
	s.data = data
	return nil
}

type memSource struct {
	docs      []consolidate.RawDocument
	processed []string
}

func (f *memSource) FetchDocuments(ctx context.Context) ([]consolidate.RawDocument, error) {
	return f.docs, nil
}

func (f *memSource) MarkProcessed(ctx context.Context, doc consolidate.RawDocument) error {
	f.processed = append(f.processed, doc.Name)
	return nil
}

type memReportWriter struct {
	written []models.AnalysisReport
	err     error
}

func (w *memReportWriter) Write(report models.AnalysisReport, at time.Time) (string, error) {
	if w.err != nil {
		return "", w.err
	}
	w.written = append(w.written, report)
	return "reports/analysis.xlsx", nil
}

type memArchiver struct {
	archived []models.RunReport
	err      error
}

func (a *memArchiver) ArchiveRunReport(ctx context.Context, report models.RunReport) error {
	if a.err != nil {
		return a.err
	}
	a.archived = append(a.archived, report)
	return nil
}

type memNotifier struct {
	sent []models.RunReport
}

func (n *memNotifier) SendRunSummary(ctx context.Context, report models.RunReport) error {
	n.sent = append(n.sent, report)
	return nil
}

func sampleDoc() consolidate.RawDocument {
	return consolidate.RawDocument{
		Name:       "Reporte_Temuco.xlsx",
		ReceivedAt: time.Date(2025, 7, 20, 10, 0, 0, 0, time.UTC),
		Sheets: []consolidate.RawSheet{{
			Name: "Faltantes",
			Rows: [][]string{
				{"SKU", "Cantidad", "Zonal"},
				{"123", "5", "Temuco"},
			},
		}},
	}
}

func newRunner(store *memStore, source *memSource, writer *memReportWriter, archiver runner.Archiver, notifier runner.Notifier) *runner.Runner {
	normalizer := normalize.NewNormalizer(normalize.NewDateParser(), nil)
	consolidator := consolidate.NewService([]consolidate.Source{source}, normalizer, nil)
	analyzer := analyze.NewAnalyzer(aisle.NewResolver(nil, nil), nil)
	return runner.New(store, consolidator, analyzer, writer, archiver, notifier, nil)
}

func TestRunner_Run(t *testing.T) {
	store := &memStore{}
	source := &memSource{docs: []consolidate.RawDocument{sampleDoc()}}
	writer := &memReportWriter{}
	archiver := &memArchiver{}
	notifier := &memNotifier{}

	run := newRunner(store, source, writer, archiver, notifier)

	report, err := run.Run(context.Background())
	require.NoError(t, err)

	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, 1, report.FilesProcessed)
	assert.Equal(t, 1, report.NewShortages)
	assert.Equal(t, 1, report.TotalShortages)
	assert.Equal(t, 1, report.Shipments)
	assert.Equal(t, "reports/analysis.xlsx", report.ReportFile)
	assert.False(t, report.FinishedAt.Before(report.StartedAt))

	// Dataset was committed and the document filed afterwards.
	assert.Equal(t, []string{"load", "commit"}, store.calls)
	require.Len(t, store.data.Shortages, 1)
	assert.True(t, decimal.NewFromInt(5).Equal(store.data.Shortages[0].Quantity))
	assert.Equal(t, []string{"Reporte_Temuco.xlsx"}, source.processed)

	// Fan-out reached every sink.
	require.Len(t, writer.written, 1)
	require.Len(t, archiver.archived, 1)
	assert.Equal(t, report.RunID, archiver.archived[0].RunID)
	require.Len(t, notifier.sent, 1)

	// Results are queryable after the run.
	last, ok := run.LastRun()
	require.True(t, ok)
	assert.Equal(t, report.RunID, last.RunID)

	analysis, ok := run.LastAnalysis()
	require.True(t, ok)
	require.Len(t, analysis.Summary, 1)
	assert.Equal(t, models.StatusShortage, analysis.Summary[0].Status)
}

func TestRunner_CommitFailureKeepsInbox(t *testing.T) {
	store := &memStore{commitErr: errors.New("disk full")}
	source := &memSource{docs: []consolidate.RawDocument{sampleDoc()}}
	run := newRunner(store, source, &memReportWriter{}, nil, nil)

	_, err := run.Run(context.Background())
	require.Error(t, err)

	assert.Empty(t, source.processed)
	assert.Empty(t, store.data.Shortages)

	_, ok := run.LastRun()
	assert.False(t, ok)
}

func TestRunner_SingleFlight(t *testing.T) {
	store := &memStore{}
	source := &memSource{}

	started := make(chan struct{})
	release := make(chan struct{})
	blockingStore := &blockingStoreWrapper{inner: store, started: started, release: release}

	normalizer := normalize.NewNormalizer(normalize.NewDateParser(), nil)
	consolidator := consolidate.NewService([]consolidate.Source{source}, normalizer, nil)
	analyzer := analyze.NewAnalyzer(aisle.NewResolver(nil, nil), nil)
	run := runner.New(blockingStore, consolidator, analyzer, &memReportWriter{}, nil, nil, nil)

	done := make(chan error, 1)
	go func() {
		_, err := run.Run(context.Background())
		done <- err
	}()

	<-started
	_, err := run.Run(context.Background())
	assert.ErrorIs(t, err, runner.ErrRunInProgress)
	assert.True(t, run.Running())

	close(release)
	require.NoError(t, <-done)
	assert.False(t, run.Running())
}

// blockingStoreWrapper parks the first WithLock call until released, so the
// test can observe an in-flight run.
type blockingStoreWrapper struct {
	inner   *memStore
	started chan struct{}
	release chan struct{}
	once    sync.Once
}

func (b *blockingStoreWrapper) WithLock(ctx context.Context, fn func(ctx context.Context) error) error {
	b.once.Do(func() {
		close(b.started)
		<-b.release
	})
	return b.inner.WithLock(ctx, fn)
}

func (b *blockingStoreWrapper) Load(ctx context.Context) (models.MasterData, error) {
	return b.inner.Load(ctx)
}

func (b *blockingStoreWrapper) Commit(ctx context.Context, data models.MasterData) error {
	return b.inner.Commit(ctx, data)
}

func TestRunner_ReportWriteFailureIsNotFatal(t *testing.T) {
	store := &memStore{}
	source := &memSource{docs: []consolidate.RawDocument{sampleDoc()}}
	writer := &memReportWriter{err: errors.New("no space")}
	run := newRunner(store, source, writer, nil, nil)

	report, err := run.Run(context.Background())
	require.NoError(t, err)
	assert.Empty(t, report.ReportFile)
}

func TestRunner_ArchiveFailureIsNotFatal(t *testing.T) {
	store := &memStore{}
	source := &memSource{docs: []consolidate.RawDocument{sampleDoc()}}
	archiver := &memArchiver{err: errors.New("mongo down")}
	run := newRunner(store, source, &memReportWriter{}, archiver, nil)

	_, err := run.Run(context.Background())
	assert.NoError(t, err)
}
