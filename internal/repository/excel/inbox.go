// Package excel adapts the reconciliation core to its durable spreadsheet
// representations: the inbox of raw attachment workbooks, the consolidated
// master workbook and the per-run analysis report.
package excel

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/Reinvik/nexus-jarvis-suite/internal/service/consolidate"
)

// InboxRepository reads raw workbooks dropped into the inbox directory by the
// mail collaborator and moves them aside once a run has committed them.
type InboxRepository struct {
	inboxDir     string
	processedDir string
	logger       *zap.Logger
}

// NewInboxRepository builds an inbox source over the given directories.
func NewInboxRepository(inboxDir, processedDir string, logger *zap.Logger) *InboxRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InboxRepository{inboxDir: inboxDir, processedDir: processedDir, logger: logger}
}

// FetchDocuments opens every spreadsheet in the inbox and returns its raw
// sheets. A workbook that cannot be opened is skipped with a warning; it
// stays in the inbox for the next run.
func (r *InboxRepository) FetchDocuments(ctx context.Context) ([]consolidate.RawDocument, error) {
	entries, err := os.ReadDir(r.inboxDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read inbox dir %s: %w", r.inboxDir, err)
	}

	var docs []consolidate.RawDocument
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if entry.IsDir() || !isSpreadsheet(entry.Name()) {
			continue
		}

		path := filepath.Join(r.inboxDir, entry.Name())
		doc, err := r.readWorkbook(path, entry.Name())
		if err != nil {
			r.logger.Warn("skipping unreadable workbook",
				zap.String("file", entry.Name()), zap.Error(err))
			continue
		}
		docs = append(docs, doc)
	}

	return docs, nil
}

// MarkProcessed moves a committed workbook from the inbox to the processed
// directory, the equivalent of filing the source mail away.
func (r *InboxRepository) MarkProcessed(ctx context.Context, doc consolidate.RawDocument) error {
	if err := os.MkdirAll(r.processedDir, 0o755); err != nil {
		return fmt.Errorf("create processed dir: %w", err)
	}

	src := filepath.Join(r.inboxDir, doc.Name)
	dst := filepath.Join(r.processedDir, doc.Name)
	if _, err := os.Stat(dst); err == nil {
		// A same-named file was already filed; keep both.
		dst = filepath.Join(r.processedDir,
			fmt.Sprintf("%s_%d%s", strings.TrimSuffix(doc.Name, filepath.Ext(doc.Name)),
				time.Now().Unix(), filepath.Ext(doc.Name)))
	}

	if err := os.Rename(src, dst); err != nil {
		return fmt.Errorf("move %s to processed: %w", doc.Name, err)
	}

	r.logger.Debug("workbook filed", zap.String("file", doc.Name))
	return nil
}

func (r *InboxRepository) readWorkbook(path, name string) (consolidate.RawDocument, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return consolidate.RawDocument{}, fmt.Errorf("open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	receivedAt := time.Now()
	if info, err := os.Stat(path); err == nil {
		receivedAt = info.ModTime()
	}

	doc := consolidate.RawDocument{Name: name, ReceivedAt: receivedAt}
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
		if err != nil {
			return consolidate.RawDocument{}, fmt.Errorf("read sheet %q: %w", sheet, err)
		}
		doc.Sheets = append(doc.Sheets, consolidate.RawSheet{Name: sheet, Rows: rows})
	}

	return doc, nil
}

func isSpreadsheet(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xlsm":
		return true
	}
	return false
}
