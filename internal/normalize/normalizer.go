package normalize

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ErrNormalizationFailed signals that a raw sheet had no recognizable header
// row. The sheet is skipped; the run continues with the remaining sheets.
var ErrNormalizationFailed = errors.New("normalization failed: header row not found")

// headerScanWindow bounds how many leading rows are inspected for the header.
const headerScanWindow = 15

// Record is one cleaned row of a discrepancy sheet, still untyped with
// respect to partition and provenance.
type Record struct {
	SKU         string
	Description string
	Quantity    decimal.Decimal
	Unit        string
	Zonal       string
	Warehouse   string
	Lot         string
	ReportDate  time.Time
}

// Canonical field names used by the alias table.
const (
	fieldSKU         = "sku"
	fieldDescription = "description"
	fieldQuantity    = "quantity"
	fieldUnit        = "unit"
	fieldZonal       = "zonal"
	fieldWarehouse   = "warehouse"
	fieldLot         = "lot"
	fieldReportDate  = "report_date"
)

// columnAliases maps localized header variants onto canonical fields. Variants
// are data, not code branches; compare after normalizeHeader.
var columnAliases = map[string]string{
	"sku":             fieldSKU,
	"material":        fieldSKU,
	"cod. material":   fieldSKU,
	"codigo material": fieldSKU,

	"descripcion":             fieldDescription,
	"desc":                    fieldDescription,
	"description":             fieldDescription,
	"texto breve":             fieldDescription,
	"texto breve de material": fieldDescription,

	"cantidad": fieldQuantity,
	"cant":     fieldQuantity,
	"cant.":    fieldQuantity,
	"qty":      fieldQuantity,

	"um":     fieldUnit,
	"u.m.":   fieldUnit,
	"unidad": fieldUnit,

	"zonal": fieldZonal,
	"zona":  fieldZonal,

	"almacen": fieldWarehouse,
	"alm":     fieldWarehouse,

	"lote":     fieldLot,
	"nro lote": fieldLot,

	"fecha dig-":       fieldReportDate,
	"fecha dig":        fieldReportDate,
	"fecha digitacion": fieldReportDate,
	"fecha":            fieldReportDate,
}

// header tokens that identify the header row itself.
var (
	skuHeaderTokens   = map[string]bool{"sku": true, "material": true}
	zonalHeaderTokens = map[string]bool{"zonal": true, "zona": true}
)

var accentReplacer = strings.NewReplacer(
	"á", "a", "é", "e", "í", "i", "ó", "o", "ú", "u",
	"Á", "a", "É", "e", "Í", "i", "Ó", "o", "Ú", "u",
)

// normalizeHeader lowers, de-accents and collapses whitespace in a header cell.
func normalizeHeader(cell string) string {
	s := accentReplacer.Replace(strings.TrimSpace(cell))
	s = strings.ToLower(s)
	return strings.Join(strings.Fields(s), " ")
}

// Normalizer turns raw sheets into canonical records.
type Normalizer struct {
	dates  DateParser
	logger *zap.Logger
}

// NewNormalizer builds a normalizer using the supplied date parser.
func NewNormalizer(dates DateParser, logger *zap.Logger) *Normalizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Normalizer{dates: dates, logger: logger}
}

// NormalizeSheet cleans one raw sheet: it locates the header row within the
// scan window, maps known header variants onto the canonical field set, drops
// rows without a SKU and fills blank zonal/warehouse fields from the lot
// number. A sheet without a recognizable header yields ErrNormalizationFailed.
func (n *Normalizer) NormalizeSheet(sheetName string, rows [][]string) ([]Record, error) {
	headerIdx := findHeaderRow(rows)
	if headerIdx < 0 {
		return nil, fmt.Errorf("sheet %q: %w", sheetName, ErrNormalizationFailed)
	}

	// Column index -> canonical field, unnamed and unknown columns dropped.
	fields := make(map[int]string)
	for col, cell := range rows[headerIdx] {
		name := normalizeHeader(cell)
		if name == "" {
			continue
		}
		if canonical, ok := columnAliases[name]; ok {
			if _, taken := fieldTaken(fields, canonical); !taken {
				fields[col] = canonical
			}
		}
	}

	var records []Record
	for _, row := range rows[headerIdx+1:] {
		rec := n.buildRecord(fields, row)
		if strings.TrimSpace(rec.SKU) == "" {
			continue
		}
		records = append(records, rec)
	}

	n.logger.Debug("sheet normalized",
		zap.String("sheet", sheetName),
		zap.Int("header_row", headerIdx),
		zap.Int("records", len(records)))

	return records, nil
}

func (n *Normalizer) buildRecord(fields map[int]string, row []string) Record {
	var rec Record
	for col, field := range fields {
		if col >= len(row) {
			continue
		}
		value := strings.TrimSpace(row[col])
		switch field {
		case fieldSKU:
			rec.SKU = value
		case fieldDescription:
			rec.Description = value
		case fieldQuantity:
			rec.Quantity = parseQuantity(value)
		case fieldUnit:
			rec.Unit = strings.ToUpper(value)
		case fieldZonal:
			rec.Zonal = titleCase(value)
		case fieldWarehouse:
			rec.Warehouse = strings.ToUpper(value)
		case fieldLot:
			rec.Lot = value
		case fieldReportDate:
			if t, ok := n.dates.Parse(value); ok {
				rec.ReportDate = t
			}
		}
	}

	if rec.Unit == "" {
		rec.Unit = "UN"
	}

	// Best-effort enrichment from the lot code; never overrides explicit data.
	if rec.Zonal == "" || rec.Warehouse == "" {
		if zonal, warehouse, ok := SiteFromLot(rec.Lot); ok {
			if rec.Zonal == "" {
				rec.Zonal = zonal
			}
			if rec.Warehouse == "" {
				rec.Warehouse = warehouse
			}
		}
	}

	return rec
}

// findHeaderRow scans the first rows for a cell signature containing an SKU
// column and a zonal column. Returns -1 when nothing qualifies.
func findHeaderRow(rows [][]string) int {
	limit := len(rows)
	if limit > headerScanWindow {
		limit = headerScanWindow
	}
	for i := 0; i < limit; i++ {
		var hasSKU, hasZonal bool
		for _, cell := range rows[i] {
			name := normalizeHeader(cell)
			if skuHeaderTokens[name] {
				hasSKU = true
			}
			if zonalHeaderTokens[name] {
				hasZonal = true
			}
		}
		if hasSKU && hasZonal {
			return i
		}
	}
	return -1
}

func fieldTaken(fields map[int]string, canonical string) (int, bool) {
	for col, f := range fields {
		if f == canonical {
			return col, true
		}
	}
	return 0, false
}

// parseQuantity converts a localized numeric cell to a decimal. Unparseable
// values become zero, matching how upstream sheets coerce bad quantities.
func parseQuantity(value string) decimal.Decimal {
	s := strings.TrimSpace(value)
	if s == "" {
		return decimal.Zero
	}
	if strings.Contains(s, ",") {
		if strings.Contains(s, ".") {
			// "1.234,5": dot is a thousands separator.
			s = strings.ReplaceAll(s, ".", "")
		}
		s = strings.ReplaceAll(s, ",", ".")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// titleCase uppercases the first letter of each word, the way zonal names are
// kept in the master ("la serena" -> "La Serena").
func titleCase(value string) string {
	words := strings.Fields(strings.ToLower(strings.TrimSpace(value)))
	for i, w := range words {
		r := []rune(w)
		r[0] = []rune(strings.ToUpper(string(r[0])))[0]
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}
