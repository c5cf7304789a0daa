package analyze

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Reinvik/nexus-jarvis-suite/internal/domain/models"
)

// Analyzer recomputes the matching outcome of every shipment in the master
// dataset. Nothing here mutates the store; matching state is derived from
// scratch on every run.
type Analyzer struct {
	resolver AisleResolver
	logger   *zap.Logger
}

// NewAnalyzer wires an analyzer over the given aisle resolver.
func NewAnalyzer(resolver AisleResolver, logger *zap.Logger) *Analyzer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Analyzer{resolver: resolver, logger: logger}
}

// Analyze produces the three output tables for the full dataset: the
// per-shipment summary (newest first), the unified discrepancy table with a
// placeholder row for clean shipments, and the swap detail table.
func (a *Analyzer) Analyze(master models.MasterData) models.AnalysisReport {
	shortagesByShipment := groupRecords(master.Shortages)
	overagesByShipment := groupRecords(master.Overages)

	universe := shipmentUniverse(master)

	var report models.AnalysisReport
	for _, shipmentID := range universe {
		shortages := shortagesByShipment[shipmentID]
		overages := overagesByShipment[shipmentID]

		zonal, reportDate := a.metadataFor(shipmentID, master, shortages, overages)

		swaps, remShortages, remOverages := Reconcile(shortages, overages, a.resolver)
		status := Classify(len(swaps) > 0, len(remShortages) > 0, len(remOverages) > 0)

		report.Summary = append(report.Summary, models.SummaryRow{
			ShipmentID:         shipmentID,
			ReportDate:         reportDate,
			Zonal:              zonal,
			Status:             status,
			RemainingShortages: len(remShortages),
			RemainingOverages:  len(remOverages),
			Swaps:              len(swaps),
		})

		for _, rec := range remShortages {
			report.Discrepancies = append(report.Discrepancies, a.discrepancyRow(rec, models.StatusShortage))
		}
		for _, rec := range remOverages {
			report.Discrepancies = append(report.Discrepancies, a.discrepancyRow(rec, models.StatusOverage))
		}

		// A clean shipment still gets one row, so "checked and clean" is
		// visible rather than merely absent.
		if status == models.StatusNoDifferences {
			report.Discrepancies = append(report.Discrepancies, models.DiscrepancyRow{
				ShipmentID:  shipmentID,
				Zonal:       zonal,
				ReportDate:  reportDate,
				State:       models.StatusNoDifferences,
				SKU:         "-",
				Description: "Shipment checked, no differences",
				Quantity:    decimal.Zero,
				Unit:        "",
				Aisle:       "-",
			})
		}

		for _, swap := range swaps {
			report.Swaps = append(report.Swaps, models.SwapRow{
				ShipmentID:          shipmentID,
				Zonal:               swap.Shortage.Zonal,
				ReportDate:          swap.Shortage.ReportDate,
				ShortageSKU:         swap.Shortage.SKU,
				ShortageDescription: swap.Shortage.Description,
				OverageSKU:          swap.Overage.SKU,
				OverageDescription:  swap.Overage.Description,
				Quantity:            swap.Shortage.Quantity,
				Unit:                swap.Shortage.Unit,
				Aisle:               swap.Aisle,
			})
		}
	}

	// Newest shipments first; undated ones sink to the bottom.
	sort.SliceStable(report.Summary, func(i, j int) bool {
		di, dj := report.Summary[i].ReportDate, report.Summary[j].ReportDate
		if di.IsZero() || dj.IsZero() {
			return dj.IsZero() && !di.IsZero()
		}
		return di.After(dj)
	})

	a.logger.Info("analysis complete",
		zap.Int("shipments", len(report.Summary)),
		zap.Int("discrepancies", len(report.Discrepancies)),
		zap.Int("swaps", len(report.Swaps)))

	return report
}

func (a *Analyzer) discrepancyRow(rec models.DiscrepancyRecord, state models.ShipmentStatus) models.DiscrepancyRow {
	return models.DiscrepancyRow{
		ShipmentID:  rec.ShipmentID,
		Zonal:       rec.Zonal,
		ReportDate:  rec.ReportDate,
		State:       state,
		SKU:         rec.SKU,
		Description: rec.Description,
		Quantity:    rec.Quantity,
		Unit:        rec.Unit,
		Aisle:       a.resolver.Resolve(rec.SKU),
	}
}

// metadataFor resolves zonal and date for a shipment, preferring its
// reference row, then its shortages, then its overages.
func (a *Analyzer) metadataFor(shipmentID string, master models.MasterData, shortages, overages []models.DiscrepancyRecord) (zonal string, reportDate time.Time) {
	for _, ref := range master.Shipments {
		if ref.ShipmentID == shipmentID {
			zonal, reportDate = ref.Zonal, ref.ReportDate
			break
		}
	}
	if zonal == "" && len(shortages) > 0 {
		zonal = shortages[0].Zonal
	}
	if reportDate.IsZero() && len(shortages) > 0 {
		reportDate = shortages[0].ReportDate
	}
	if zonal == "" && len(overages) > 0 {
		zonal = overages[0].Zonal
	}
	if reportDate.IsZero() && len(overages) > 0 {
		reportDate = overages[0].ReportDate
	}
	return zonal, reportDate
}

func groupRecords(records []models.DiscrepancyRecord) map[string][]models.DiscrepancyRecord {
	grouped := make(map[string][]models.DiscrepancyRecord)
	for _, rec := range records {
		grouped[rec.ShipmentID] = append(grouped[rec.ShipmentID], rec)
	}
	return grouped
}

// shipmentUniverse lists every shipment id present anywhere, in first-seen
// order: reference rows first, then shortages, then overages.
func shipmentUniverse(master models.MasterData) []string {
	seen := make(map[string]bool)
	var ids []string
	add := func(id string) {
		if id == "" || seen[id] {
			return
		}
		seen[id] = true
		ids = append(ids, id)
	}
	for _, ref := range master.Shipments {
		add(ref.ShipmentID)
	}
	for _, rec := range master.Shortages {
		add(rec.ShipmentID)
	}
	for _, rec := range master.Overages {
		add(rec.ShipmentID)
	}
	return ids
}
