// Package analyze implements the matching core of the pipeline: per shipment
// it pairs shortages against overages under the swap heuristic, classifies
// the outcome and assembles the run's output tables.
package analyze

import (
	"github.com/Reinvik/nexus-jarvis-suite/internal/domain/models"
)

// AisleResolver maps a SKU to its warehouse aisle, or models.AisleUnknown.
type AisleResolver interface {
	Resolve(sku string) string
}

// SwapMatch pairs one shortage with one overage explained as a picking swap.
// Engine output only; it is never written back to the master store.
type SwapMatch struct {
	Shortage models.DiscrepancyRecord
	Overage  models.DiscrepancyRecord
	Aisle    string
}

// matchable decorates a record with its resolved aisle and match state.
type matchable struct {
	record  models.DiscrepancyRecord
	aisle   string
	matched bool
}

// Reconcile pairs one shipment's shortages against its overages. The pass is
// greedy and deterministic: shortages are visited in list order and each one
// binds to the first unmatched overage with equal quantity and equal resolved
// aisle. An unknown aisle disqualifies a record outright, so two unknowns can
// never pair up on quantity alone. There is no backtracking and no attempt at
// a globally optimal pairing; first-encountered wins is the contract.
func Reconcile(shortages, overages []models.DiscrepancyRecord, resolver AisleResolver) (swaps []SwapMatch, remainingShortages, remainingOverages []models.DiscrepancyRecord) {
	sRows := decorate(shortages, resolver)
	oRows := decorate(overages, resolver)

	for i := range sRows {
		if sRows[i].matched || sRows[i].aisle == models.AisleUnknown {
			continue
		}
		for j := range oRows {
			if oRows[j].matched {
				continue
			}
			if !sRows[i].record.Quantity.Equal(oRows[j].record.Quantity) {
				continue
			}
			if oRows[j].aisle != sRows[i].aisle {
				continue
			}
			sRows[i].matched = true
			oRows[j].matched = true
			swaps = append(swaps, SwapMatch{
				Shortage: sRows[i].record,
				Overage:  oRows[j].record,
				Aisle:    sRows[i].aisle,
			})
			break
		}
	}

	for _, row := range sRows {
		if !row.matched {
			remainingShortages = append(remainingShortages, row.record)
		}
	}
	for _, row := range oRows {
		if !row.matched {
			remainingOverages = append(remainingOverages, row.record)
		}
	}
	return swaps, remainingShortages, remainingOverages
}

func decorate(records []models.DiscrepancyRecord, resolver AisleResolver) []matchable {
	rows := make([]matchable, len(records))
	for i, rec := range records {
		rows[i] = matchable{record: rec, aisle: resolver.Resolve(rec.SKU)}
	}
	return rows
}
