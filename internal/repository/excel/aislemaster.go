package excel

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// LoadAisleTable reads the maintained SKU -> aisle workbook. The header row
// is found by scanning for a column naming the material and one naming the
// aisle; header spelling is matched by substring since the file is curated by
// hand and drifts.
func LoadAisleTable(path string) (map[string]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open aisle master: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("aisle master %s has no sheets", path)
	}

	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read aisle master: %w", err)
	}

	skuCol, aisleCol, headerIdx := -1, -1, -1
	for i, row := range rows {
		if i >= 15 {
			break
		}
		s, a := -1, -1
		for col, cellValue := range row {
			name := strings.ToLower(strings.TrimSpace(cellValue))
			if s < 0 && (strings.Contains(name, "sku") || strings.Contains(name, "material")) {
				s = col
			}
			if a < 0 && strings.Contains(name, "pasillo") {
				a = col
			}
		}
		if s >= 0 && a >= 0 {
			skuCol, aisleCol, headerIdx = s, a, i
			break
		}
	}
	if headerIdx < 0 {
		return nil, fmt.Errorf("aisle master %s: no SKU/aisle header found", path)
	}

	table := make(map[string]string)
	for _, row := range rows[headerIdx+1:] {
		if skuCol >= len(row) || aisleCol >= len(row) {
			continue
		}
		sku := strings.TrimSpace(row[skuCol])
		aisleCode := strings.TrimSpace(row[aisleCol])
		if sku == "" || aisleCode == "" {
			continue
		}
		table[sku] = aisleCode
	}

	return table, nil
}
