package excel

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/Reinvik/nexus-jarvis-suite/internal/domain/models"
)

// Report workbook sheet names.
const (
	sheetSummary       = "Resumen_Global"
	sheetDiscrepancies = "Analisis_Discrepancias"
	sheetSwaps         = "Productos_Cambiados"
)

// ReportWriter emits one analysis workbook per run into the report directory.
type ReportWriter struct {
	dir    string
	logger *zap.Logger
}

// NewReportWriter builds a writer targeting dir.
func NewReportWriter(dir string, logger *zap.Logger) *ReportWriter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportWriter{dir: dir, logger: logger}
}

// Write renders the three output tables into a timestamped workbook and
// returns its path.
func (w *ReportWriter) Write(report models.AnalysisReport, at time.Time) (string, error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", fmt.Errorf("create report dir: %w", err)
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	writeSummarySheet(f, report.Summary)
	writeDiscrepancySheet(f, report.Discrepancies)
	writeSwapSheet(f, report.Swaps)
	_ = f.DeleteSheet("Sheet1")

	name := fmt.Sprintf("Analisis_Zonales_%s.xlsx", at.Format("20060102_150405"))
	path := filepath.Join(w.dir, name)
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("write report workbook: %w", err)
	}

	w.logger.Info("analysis report written",
		zap.String("file", name),
		zap.Int("shipments", len(report.Summary)),
		zap.Int("discrepancies", len(report.Discrepancies)),
		zap.Int("swaps", len(report.Swaps)))

	return path, nil
}

func writeSummarySheet(f *excelize.File, rows []models.SummaryRow) {
	_, _ = f.NewSheet(sheetSummary)
	header := []string{
		"Fecha", "Zonal", "Transporte", "Estado", "Faltantes", "Sobrantes",
		"Cambiados", "Analisis",
	}
	setRow(f, sheetSummary, "A1", header)
	for i, row := range rows {
		analysis := fmt.Sprintf("%d Falt / %d Sobr / %d Swaps",
			row.RemainingShortages, row.RemainingOverages, row.Swaps)
		cells := []string{
			formatDate(row.ReportDate, dateLayout), row.Zonal, row.ShipmentID,
			string(row.Status),
			fmt.Sprintf("%d", row.RemainingShortages),
			fmt.Sprintf("%d", row.RemainingOverages),
			fmt.Sprintf("%d", row.Swaps),
			analysis,
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		setRow(f, sheetSummary, cell, cells)
	}
}

func writeDiscrepancySheet(f *excelize.File, rows []models.DiscrepancyRow) {
	_, _ = f.NewSheet(sheetDiscrepancies)
	header := []string{
		"Fecha", "Zonal", "Transporte", "Estado", "SKU", "Descripcion",
		"Cantidad", "UM", "Pasillo",
	}
	setRow(f, sheetDiscrepancies, "A1", header)
	for i, row := range rows {
		cells := []string{
			formatDate(row.ReportDate, dateLayout), row.Zonal, row.ShipmentID,
			string(row.State), row.SKU, row.Description,
			row.Quantity.String(), row.Unit, row.Aisle,
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		setRow(f, sheetDiscrepancies, cell, cells)
	}
}

func writeSwapSheet(f *excelize.File, rows []models.SwapRow) {
	_, _ = f.NewSheet(sheetSwaps)
	header := []string{
		"Fecha", "Zonal", "Transporte", "SKU_Faltante", "Desc_Faltante",
		"SKU_Sobrante", "Desc_Sobrante", "Cantidad", "UM", "Pasillo",
	}
	setRow(f, sheetSwaps, "A1", header)
	for i, row := range rows {
		cells := []string{
			formatDate(row.ReportDate, dateLayout), row.Zonal, row.ShipmentID,
			row.ShortageSKU, row.ShortageDescription,
			row.OverageSKU, row.OverageDescription,
			row.Quantity.String(), row.Unit, row.Aisle,
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		setRow(f, sheetSwaps, cell, cells)
	}
}
