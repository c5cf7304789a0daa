package analyze_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Reinvik/nexus-jarvis-suite/internal/domain/models"
	"github.com/Reinvik/nexus-jarvis-suite/internal/service/analyze"
)

func rec(shipment string, kind models.Kind, sku, zonal string, qty string, date time.Time) models.DiscrepancyRecord {
	return models.DiscrepancyRecord{
		ShipmentID: shipment,
		Kind:       kind,
		SKU:        sku,
		Zonal:      zonal,
		Quantity:   decimal.RequireFromString(qty),
		ReportDate: date,
	}
}

func TestAnalyzer_Analyze(t *testing.T) {
	jul10 := time.Date(2025, 7, 10, 0, 0, 0, 0, time.UTC)
	jul12 := time.Date(2025, 7, 12, 0, 0, 0, 0, time.UTC)
	jul14 := time.Date(2025, 7, 14, 0, 0, 0, 0, time.UTC)

	resolver := mapResolver{"123": "P-07", "456": "P-07"}

	master := models.MasterData{
		Shortages: []models.DiscrepancyRecord{
			rec("T-swap", models.KindShortage, "123", "Temuco", "5", jul12),
			rec("T-short", models.KindShortage, "999", "Arica", "2", jul10),
		},
		Overages: []models.DiscrepancyRecord{
			rec("T-swap", models.KindOverage, "456", "Temuco", "5", jul12),
		},
		Shipments: []models.ShipmentRef{
			{ShipmentID: "T-swap", Zonal: "Temuco", ReportDate: jul12},
			{ShipmentID: "T-clean", Zonal: "Osorno", ReportDate: jul14},
			{ShipmentID: "T-short", Zonal: "Arica", ReportDate: jul10},
		},
	}

	report := analyze.NewAnalyzer(resolver, nil).Analyze(master)

	t.Run("summary sorted newest first", func(t *testing.T) {
		require.Len(t, report.Summary, 3)
		assert.Equal(t, "T-clean", report.Summary[0].ShipmentID)
		assert.Equal(t, "T-swap", report.Summary[1].ShipmentID)
		assert.Equal(t, "T-short", report.Summary[2].ShipmentID)
	})

	t.Run("statuses per shipment", func(t *testing.T) {
		byID := make(map[string]models.SummaryRow)
		for _, row := range report.Summary {
			byID[row.ShipmentID] = row
		}

		assert.Equal(t, models.StatusProductSwapped, byID["T-swap"].Status)
		assert.Equal(t, 1, byID["T-swap"].Swaps)
		assert.Equal(t, 0, byID["T-swap"].RemainingShortages)

		assert.Equal(t, models.StatusShortage, byID["T-short"].Status)
		assert.Equal(t, 1, byID["T-short"].RemainingShortages)

		assert.Equal(t, models.StatusNoDifferences, byID["T-clean"].Status)
	})

	t.Run("clean shipment gets placeholder row", func(t *testing.T) {
		var placeholder *models.DiscrepancyRow
		for i := range report.Discrepancies {
			if report.Discrepancies[i].ShipmentID == "T-clean" {
				placeholder = &report.Discrepancies[i]
			}
		}
		require.NotNil(t, placeholder)
		assert.Equal(t, models.StatusNoDifferences, placeholder.State)
		assert.Equal(t, "-", placeholder.SKU)
		assert.Equal(t, "Osorno", placeholder.Zonal)
		assert.True(t, placeholder.Quantity.IsZero())
	})

	t.Run("unmatched records listed with resolved aisle", func(t *testing.T) {
		var short *models.DiscrepancyRow
		for i := range report.Discrepancies {
			if report.Discrepancies[i].ShipmentID == "T-short" {
				short = &report.Discrepancies[i]
			}
		}
		require.NotNil(t, short)
		assert.Equal(t, models.StatusShortage, short.State)
		assert.Equal(t, "999", short.SKU)
		assert.Equal(t, models.AisleUnknown, short.Aisle)
	})

	t.Run("swap table filled", func(t *testing.T) {
		require.Len(t, report.Swaps, 1)
		swap := report.Swaps[0]
		assert.Equal(t, "T-swap", swap.ShipmentID)
		assert.Equal(t, "123", swap.ShortageSKU)
		assert.Equal(t, "456", swap.OverageSKU)
		assert.Equal(t, "P-07", swap.Aisle)
	})
}

func TestAnalyzer_MetadataPriority(t *testing.T) {
	jul10 := time.Date(2025, 7, 10, 0, 0, 0, 0, time.UTC)

	t.Run("shortage metadata used without reference row", func(t *testing.T) {
		master := models.MasterData{
			Shortages: []models.DiscrepancyRecord{
				rec("T-1", models.KindShortage, "999", "Calama", "2", jul10),
			},
		}

		report := analyze.NewAnalyzer(mapResolver{}, nil).Analyze(master)
		require.Len(t, report.Summary, 1)
		assert.Equal(t, "Calama", report.Summary[0].Zonal)
		assert.Equal(t, jul10, report.Summary[0].ReportDate)
	})

	t.Run("overage metadata is the last resort", func(t *testing.T) {
		master := models.MasterData{
			Overages: []models.DiscrepancyRecord{
				rec("T-2", models.KindOverage, "999", "Iquique", "2", jul10),
			},
		}

		report := analyze.NewAnalyzer(mapResolver{}, nil).Analyze(master)
		require.Len(t, report.Summary, 1)
		assert.Equal(t, "Iquique", report.Summary[0].Zonal)
	})

	t.Run("reference row wins over record metadata", func(t *testing.T) {
		master := models.MasterData{
			Shortages: []models.DiscrepancyRecord{
				rec("T-3", models.KindShortage, "999", "Talca", "2", jul10),
			},
			Shipments: []models.ShipmentRef{
				{ShipmentID: "T-3", Zonal: "Chillán", ReportDate: jul10},
			},
		}

		report := analyze.NewAnalyzer(mapResolver{}, nil).Analyze(master)
		require.Len(t, report.Summary, 1)
		assert.Equal(t, "Chillán", report.Summary[0].Zonal)
	})
}

func TestAnalyzer_EmptyMaster(t *testing.T) {
	report := analyze.NewAnalyzer(mapResolver{}, nil).Analyze(models.MasterData{})
	assert.Empty(t, report.Summary)
	assert.Empty(t, report.Discrepancies)
	assert.Empty(t, report.Swaps)
}
