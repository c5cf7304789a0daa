package excel

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/Reinvik/nexus-jarvis-suite/internal/domain/models"
)

// ErrStoreLocked is returned when another run holds the master store lock.
var ErrStoreLocked = errors.New("master store is locked by another run")

// Sheet names of the consolidated master workbook.
const (
	sheetShortages = "Faltantes"
	sheetOverages  = "Sobrantes"
	sheetDamages   = "Daño Mecanico"
	sheetShipments = "Transportes"
)

const (
	dateLayout      = "02/01/2006"
	timestampLayout = "02/01/2006 15:04"
)

var recordHeader = []string{
	"ShipmentID", "SKU", "Description", "Quantity", "Unit", "Zonal",
	"Warehouse", "Lot", "ReportDate", "SourceFile", "SourceEmail",
	"SourceSubject", "AddedAt",
}

var shipmentHeader = []string{
	"ShipmentID", "Zonal", "ReportDate", "SourceFile", "SourceEmail", "AddedAt",
}

// MasterRepository persists the deduplicated master dataset as one workbook.
// Commits are all-or-nothing: the new state is written to a temporary file in
// the same directory and renamed over the previous one.
type MasterRepository struct {
	path   string
	logger *zap.Logger
}

// NewMasterRepository builds a master store over the given workbook path.
func NewMasterRepository(path string, logger *zap.Logger) *MasterRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MasterRepository{path: path, logger: logger}
}

// WithLock runs fn while holding exclusive access to the store. The lock is
// released unconditionally, on success and failure alike.
func (r *MasterRepository) WithLock(ctx context.Context, fn func(ctx context.Context) error) error {
	lockPath := r.path + ".lock"
	f, err := os.OpenFile(lockPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return fmt.Errorf("%w (lock file %s)", ErrStoreLocked, lockPath)
		}
		return fmt.Errorf("acquire store lock: %w", err)
	}
	fmt.Fprintf(f, "%d\n", os.Getpid())
	_ = f.Close()

	defer func() {
		if err := os.Remove(lockPath); err != nil {
			r.logger.Error("failed releasing store lock", zap.Error(err))
		}
	}()

	return fn(ctx)
}

// Load reads the full master state. A missing workbook is an empty store, not
// an error: the store is created implicitly on the first commit.
func (r *MasterRepository) Load(ctx context.Context) (models.MasterData, error) {
	if _, err := os.Stat(r.path); os.IsNotExist(err) {
		return models.MasterData{}, nil
	}

	f, err := excelize.OpenFile(r.path)
	if err != nil {
		return models.MasterData{}, fmt.Errorf("open master workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	var data models.MasterData
	for _, part := range []struct {
		sheet string
		kind  models.Kind
		dst   *[]models.DiscrepancyRecord
	}{
		{sheetShortages, models.KindShortage, &data.Shortages},
		{sheetOverages, models.KindOverage, &data.Overages},
		{sheetDamages, models.KindDamage, &data.Damages},
	} {
		records, err := readRecordSheet(f, part.sheet, part.kind)
		if err != nil {
			return models.MasterData{}, err
		}
		*part.dst = records
	}

	shipments, err := readShipmentSheet(f, sheetShipments)
	if err != nil {
		return models.MasterData{}, err
	}
	data.Shipments = shipments

	r.logger.Debug("master store loaded",
		zap.Int("shortages", len(data.Shortages)),
		zap.Int("overages", len(data.Overages)),
		zap.Int("damages", len(data.Damages)),
		zap.Int("shipments", len(data.Shipments)))

	return data, nil
}

// Commit atomically replaces the durable master state with data. On any
// failure the previously committed workbook is left untouched.
func (r *MasterRepository) Commit(ctx context.Context, data models.MasterData) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	writeRecordSheet(f, sheetShortages, data.Shortages)
	writeRecordSheet(f, sheetOverages, data.Overages)
	writeRecordSheet(f, sheetDamages, data.Damages)
	writeShipmentSheet(f, sheetShipments, data.Shipments)

	// excelize seeds new workbooks with a default sheet.
	_ = f.DeleteSheet("Sheet1")

	tmp := r.path + ".tmp"
	if err := f.SaveAs(tmp); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("write master workbook: %w", err)
	}
	if err := os.Rename(tmp, r.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace master workbook: %w", err)
	}

	r.logger.Info("master store committed",
		zap.Int("shortages", len(data.Shortages)),
		zap.Int("overages", len(data.Overages)),
		zap.Int("damages", len(data.Damages)),
		zap.Int("shipments", len(data.Shipments)))

	return nil
}

func writeRecordSheet(f *excelize.File, sheet string, records []models.DiscrepancyRecord) {
	_, _ = f.NewSheet(sheet)
	setRow(f, sheet, "A1", recordHeader)
	for i, rec := range records {
		row := []string{
			rec.ShipmentID, rec.SKU, rec.Description, rec.Quantity.String(),
			rec.Unit, rec.Zonal, rec.Warehouse, rec.Lot,
			formatDate(rec.ReportDate, dateLayout),
			rec.SourceFile, rec.SourceEmail, rec.SourceSubject,
			formatDate(rec.AddedAt, timestampLayout),
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		setRow(f, sheet, cell, row)
	}
}

func writeShipmentSheet(f *excelize.File, sheet string, shipments []models.ShipmentRef) {
	_, _ = f.NewSheet(sheet)
	setRow(f, sheet, "A1", shipmentHeader)
	for i, ref := range shipments {
		row := []string{
			ref.ShipmentID, ref.Zonal, formatDate(ref.ReportDate, dateLayout),
			ref.SourceFile, ref.SourceEmail, formatDate(ref.AddedAt, timestampLayout),
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		setRow(f, sheet, cell, row)
	}
}

func readRecordSheet(f *excelize.File, sheet string, kind models.Kind) ([]models.DiscrepancyRecord, error) {
	rows, err := sheetRows(f, sheet)
	if err != nil || len(rows) == 0 {
		return nil, err
	}

	cols := headerIndex(rows[0])
	var records []models.DiscrepancyRecord
	for _, row := range rows[1:] {
		sku := cols.cell(row, "sku")
		if strings.TrimSpace(sku) == "" {
			continue
		}
		qty, err := decimal.NewFromString(cols.cell(row, "quantity"))
		if err != nil {
			qty = decimal.Zero
		}
		records = append(records, models.DiscrepancyRecord{
			ShipmentID:    cols.cell(row, "shipmentid"),
			Kind:          kind,
			SKU:           sku,
			Description:   cols.cell(row, "description"),
			Quantity:      qty,
			Unit:          cols.cell(row, "unit"),
			Zonal:         cols.cell(row, "zonal"),
			Warehouse:     cols.cell(row, "warehouse"),
			Lot:           cols.cell(row, "lot"),
			ReportDate:    parseDateCell(cols.cell(row, "reportdate"), dateLayout),
			SourceFile:    cols.cell(row, "sourcefile"),
			SourceEmail:   cols.cell(row, "sourceemail"),
			SourceSubject: cols.cell(row, "sourcesubject"),
			AddedAt:       parseDateCell(cols.cell(row, "addedat"), timestampLayout),
		})
	}
	return records, nil
}

func readShipmentSheet(f *excelize.File, sheet string) ([]models.ShipmentRef, error) {
	rows, err := sheetRows(f, sheet)
	if err != nil || len(rows) == 0 {
		return nil, err
	}

	cols := headerIndex(rows[0])
	var refs []models.ShipmentRef
	for _, row := range rows[1:] {
		id := cols.cell(row, "shipmentid")
		if strings.TrimSpace(id) == "" {
			continue
		}
		refs = append(refs, models.ShipmentRef{
			ShipmentID:  id,
			Zonal:       cols.cell(row, "zonal"),
			ReportDate:  parseDateCell(cols.cell(row, "reportdate"), dateLayout),
			SourceFile:  cols.cell(row, "sourcefile"),
			SourceEmail: cols.cell(row, "sourceemail"),
			AddedAt:     parseDateCell(cols.cell(row, "addedat"), timestampLayout),
		})
	}
	return refs, nil
}

func sheetRows(f *excelize.File, sheet string) ([][]string, error) {
	idx, err := f.GetSheetIndex(sheet)
	if err != nil || idx < 0 {
		return nil, nil
	}
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	return rows, nil
}

// columnIndex maps lowercased header names to their column positions.
type columnIndex map[string]int

func headerIndex(header []string) columnIndex {
	cols := make(columnIndex, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	return cols
}

// cell returns the trimmed value of the named column, or "" when the column
// is absent from the workbook or the row is short.
func (c columnIndex) cell(row []string, name string) string {
	idx, ok := c[name]
	if !ok || idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func formatDate(t time.Time, layout string) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(layout)
}

func parseDateCell(value, layout string) time.Time {
	if value == "" {
		return time.Time{}
	}
	t, err := time.Parse(layout, value)
	if err != nil {
		return time.Time{}
	}
	return t
}

func setRow(f *excelize.File, sheet, cell string, cells []string) {
	row := toInterfaceRow(cells)
	_ = f.SetSheetRow(sheet, cell, &row)
}

func toInterfaceRow(cells []string) []interface{} {
	row := make([]interface{}, len(cells))
	for i, c := range cells {
		row[i] = c
	}
	return row
}
