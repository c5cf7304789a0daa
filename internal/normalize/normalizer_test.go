package normalize_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Reinvik/nexus-jarvis-suite/internal/normalize"
)

func TestNormalizer_NormalizeSheet(t *testing.T) {
	n := normalize.NewNormalizer(newTestParser(), nil)

	t.Run("header found below preamble rows", func(t *testing.T) {
		rows := [][]string{
			{"Reporte de Diferencias"},
			{},
			{"Material", "Texto breve", "Cantidad", "UM", "Zonal", "Lote", "Fecha Dig-"},
			{"000123", "CABLE UTP", "5", "UN", "temuco", "LT-TMSJ-01", "14/07/2025"},
			{"", "fila sin sku", "9", "UN", "Temuco", "", ""},
			{"456", "CAJA 20X20", "2,5", "CJ", "", "X-ARSJ-99", ""},
		}

		records, err := n.NormalizeSheet("Faltantes", rows)
		require.NoError(t, err)
		require.Len(t, records, 2)

		first := records[0]
		assert.Equal(t, "000123", first.SKU)
		assert.Equal(t, "CABLE UTP", first.Description)
		assert.True(t, decimal.NewFromInt(5).Equal(first.Quantity))
		assert.Equal(t, "UN", first.Unit)
		assert.Equal(t, "Temuco", first.Zonal)
		assert.Equal(t, "2025-07-14", first.ReportDate.Format("2006-01-02"))

		second := records[1]
		assert.Equal(t, "456", second.SKU)
		assert.True(t, decimal.RequireFromString("2.5").Equal(second.Quantity))
		assert.Equal(t, "CJ", second.Unit)
	})

	t.Run("blank site filled from lot code", func(t *testing.T) {
		rows := [][]string{
			{"SKU", "Zonal", "Lote"},
			{"77", "", "LT-PMSJ-0042"},
		}

		records, err := n.NormalizeSheet("Sobrantes", rows)
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, "Puerto Montt", records[0].Zonal)
		assert.Equal(t, "PMSJ", records[0].Warehouse)
	})

	t.Run("explicit site wins over lot code", func(t *testing.T) {
		rows := [][]string{
			{"SKU", "Zonal", "Lote"},
			{"77", "Arica", "LT-PMSJ-0042"},
		}

		records, err := n.NormalizeSheet("Sobrantes", rows)
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, "Arica", records[0].Zonal)
		assert.Equal(t, "PMSJ", records[0].Warehouse)
	})

	t.Run("missing unit defaults", func(t *testing.T) {
		rows := [][]string{
			{"SKU", "Zona"},
			{"88", "Calama"},
		}

		records, err := n.NormalizeSheet("Faltantes", rows)
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, "UN", records[0].Unit)
	})

	t.Run("accented headers recognized", func(t *testing.T) {
		rows := [][]string{
			{"SKU", "Descripción", "Zonal"},
			{"5", "TORNILLO", "Osorno"},
		}

		records, err := n.NormalizeSheet("Faltantes", rows)
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, "TORNILLO", records[0].Description)
	})

	t.Run("no header row fails", func(t *testing.T) {
		rows := [][]string{
			{"nada", "que", "ver"},
			{"1", "2", "3"},
		}

		_, err := n.NormalizeSheet("Hoja1", rows)
		assert.ErrorIs(t, err, normalize.ErrNormalizationFailed)
	})

	t.Run("header outside scan window fails", func(t *testing.T) {
		rows := make([][]string, 0, 17)
		for i := 0; i < 16; i++ {
			rows = append(rows, []string{"relleno"})
		}
		rows = append(rows, []string{"SKU", "Zonal"}, []string{"9", "Talca"})

		_, err := n.NormalizeSheet("Hoja1", rows)
		assert.ErrorIs(t, err, normalize.ErrNormalizationFailed)
	})
}

func TestSiteFromLot(t *testing.T) {
	tests := []struct {
		lot       string
		zonal     string
		warehouse string
		ok        bool
	}{
		{"LT-ARSJ-001", "Arica", "ARSJ", true},
		{"xx-pasj-77", "Punta Arenas", "PASJ", true},
		{"TMSJ", "Temuco", "TMSJ", true},
		{"SINCODIGO", "", "", false},
		{"", "", "", false},
	}

	for _, tt := range tests {
		zonal, warehouse, ok := normalize.SiteFromLot(tt.lot)
		assert.Equal(t, tt.ok, ok, "lot %q", tt.lot)
		assert.Equal(t, tt.zonal, zonal, "lot %q", tt.lot)
		assert.Equal(t, tt.warehouse, warehouse, "lot %q", tt.lot)
	}
}
