// Package consolidate implements the ingestion half of the reconciliation
// pipeline: it pulls raw documents from the configured sources, normalizes
// their sheets and merges the result into the deduplicated master dataset.
package consolidate

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Reinvik/nexus-jarvis-suite/internal/domain/models"
	"github.com/Reinvik/nexus-jarvis-suite/internal/normalize"
)

// Store is the durable master dataset as seen by a consolidation run.
type Store interface {
	// WithLock holds exclusive store access for the duration of fn and
	// releases it on every path.
	WithLock(ctx context.Context, fn func(ctx context.Context) error) error
	Load(ctx context.Context) (models.MasterData, error)
	// Commit replaces the durable state all-or-nothing.
	Commit(ctx context.Context, data models.MasterData) error
}

// ProcessedDocument pairs an ingested document with the source it came
// from, so it can be marked processed on that source after commit.
type ProcessedDocument struct {
	Doc    RawDocument
	Source Source
}

// Ingestion is the outcome of one ingest pass.
type Ingestion struct {
	Data           models.MasterData
	Documents      []ProcessedDocument
	FilesProcessed int
	SheetsSkipped  int
	NewShortages   int
	NewOverages    int
	NewDamages     int
	Duplicates     int
}

// Service merges incoming raw documents into the master dataset.
type Service struct {
	sources    []Source
	normalizer *normalize.Normalizer
	logger     *zap.Logger
}

// NewService wires a consolidation service over the given sources.
func NewService(sources []Source, normalizer *normalize.Normalizer, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{sources: sources, normalizer: normalizer, logger: logger}
}

// Ingest fetches all pending documents, normalizes their sheets and merges
// them into existing. Sheets without a recognizable header are counted and
// skipped; they never fail the run. The returned dataset is fully
// deduplicated and idempotent under re-ingestion.
func (s *Service) Ingest(ctx context.Context, existing models.MasterData) (Ingestion, error) {
	result := Ingestion{Data: existing}

	var incoming models.MasterData
	for _, source := range s.sources {
		docs, err := source.FetchDocuments(ctx)
		if err != nil {
			return Ingestion{}, err
		}
		for _, doc := range docs {
			s.ingestDocument(doc, &incoming, &result)
			result.Documents = append(result.Documents, ProcessedDocument{Doc: doc, Source: source})
			result.FilesProcessed++
		}
	}

	result.NewShortages = len(incoming.Shortages)
	result.NewOverages = len(incoming.Overages)
	result.NewDamages = len(incoming.Damages)

	before := len(existing.Shortages) + len(existing.Overages) + len(existing.Damages) +
		len(incoming.Shortages) + len(incoming.Overages) + len(incoming.Damages)

	result.Data = models.MasterData{
		Shortages: Merge(existing.Shortages, incoming.Shortages),
		Overages:  Merge(existing.Overages, incoming.Overages),
		Damages:   Merge(existing.Damages, incoming.Damages),
		Shipments: MergeShipments(existing.Shipments, incoming.Shipments),
	}

	after := len(result.Data.Shortages) + len(result.Data.Overages) + len(result.Data.Damages)
	result.Duplicates = before - after

	s.logger.Info("ingestion merged",
		zap.Int("files", result.FilesProcessed),
		zap.Int("sheets_skipped", result.SheetsSkipped),
		zap.Int("new_shortages", result.NewShortages),
		zap.Int("new_overages", result.NewOverages),
		zap.Int("new_damages", result.NewDamages),
		zap.Int("duplicates", result.Duplicates))

	return result, nil
}

func (s *Service) ingestDocument(doc RawDocument, incoming *models.MasterData, result *Ingestion) {
	sawRef := false
	for _, sheet := range doc.Sheets {
		kind, ok := classifySheet(sheet.Name)
		if !ok {
			continue
		}

		records, err := s.normalizer.NormalizeSheet(sheet.Name, sheet.Rows)
		if err != nil {
			if errors.Is(err, normalize.ErrNormalizationFailed) {
				result.SheetsSkipped++
				s.logger.Warn("sheet skipped",
					zap.String("document", doc.Name),
					zap.String("sheet", sheet.Name),
					zap.Error(err))
				continue
			}
			result.SheetsSkipped++
			s.logger.Warn("sheet unreadable",
				zap.String("document", doc.Name),
				zap.String("sheet", sheet.Name),
				zap.Error(err))
			continue
		}

		if kind == sheetKindShipments {
			if len(records) > 0 {
				incoming.Shipments = append(incoming.Shipments, toShipmentRef(doc, records[0]))
				sawRef = true
			}
			continue
		}

		for _, rec := range records {
			converted := toDiscrepancy(doc, rec, kind.recordKind())
			switch converted.Kind {
			case models.KindShortage:
				incoming.Shortages = append(incoming.Shortages, converted)
			case models.KindOverage:
				incoming.Overages = append(incoming.Overages, converted)
			case models.KindDamage:
				incoming.Damages = append(incoming.Damages, converted)
			}
		}
	}

	// A shipment exists from the moment anything references it, even when the
	// workbook has no reference sheet.
	if !sawRef {
		incoming.Shipments = append(incoming.Shipments, models.ShipmentRef{
			ShipmentID:  doc.Name,
			ReportDate:  dateOnly(doc.ReceivedAt),
			SourceFile:  doc.Name,
			SourceEmail: doc.SourceRef,
			AddedAt:     time.Now(),
		})
	}
}

type sheetKind int

const (
	sheetKindShortages sheetKind = iota
	sheetKindOverages
	sheetKindDamages
	sheetKindShipments
)

func (k sheetKind) recordKind() models.Kind {
	switch k {
	case sheetKindShortages:
		return models.KindShortage
	case sheetKindOverages:
		return models.KindOverage
	default:
		return models.KindDamage
	}
}

// classifySheet maps a sheet name onto a master partition, tolerating the
// case and spelling drift seen in the field.
func classifySheet(name string) (sheetKind, bool) {
	lower := strings.ToLower(strings.TrimSpace(name))
	switch {
	case lower == "faltantes":
		return sheetKindShortages, true
	case lower == "sobrantes":
		return sheetKindOverages, true
	case strings.Contains(lower, "da") && strings.Contains(lower, "mec"):
		return sheetKindDamages, true
	case strings.Contains(lower, "transp"):
		return sheetKindShipments, true
	}
	return 0, false
}

func toDiscrepancy(doc RawDocument, rec normalize.Record, kind models.Kind) models.DiscrepancyRecord {
	reportDate := rec.ReportDate
	if reportDate.IsZero() {
		reportDate = dateOnly(doc.ReceivedAt)
	}
	return models.DiscrepancyRecord{
		ShipmentID:  doc.Name,
		Kind:        kind,
		SKU:         rec.SKU,
		Description: rec.Description,
		Quantity:    rec.Quantity,
		Unit:        rec.Unit,
		Zonal:       rec.Zonal,
		Warehouse:   rec.Warehouse,
		Lot:         rec.Lot,
		ReportDate:  reportDate,
		SourceFile:  doc.Name,
		SourceEmail: doc.SourceRef,
		AddedAt:     time.Now(),
	}
}

func toShipmentRef(doc RawDocument, rec normalize.Record) models.ShipmentRef {
	reportDate := rec.ReportDate
	if reportDate.IsZero() {
		reportDate = dateOnly(doc.ReceivedAt)
	}
	return models.ShipmentRef{
		ShipmentID:  doc.Name,
		Zonal:       rec.Zonal,
		ReportDate:  reportDate,
		SourceFile:  doc.Name,
		SourceEmail: doc.SourceRef,
		AddedAt:     time.Now(),
	}
}

func dateOnly(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
