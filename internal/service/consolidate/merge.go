package consolidate

import (
	"time"

	"github.com/Reinvik/nexus-jarvis-suite/internal/domain/models"
)

// Merge concatenates existing and incoming records of one partition and
// collapses duplicate fingerprints. Within a duplicate group the record with
// the earliest report date is retained; an undated record loses to any dated
// one; exact ties keep the first occurrence in input order. Existing records
// come first, so re-ingesting an already-merged batch changes nothing:
// Merge(Merge(a, b), b) == Merge(a, b).
func Merge(existing, incoming []models.DiscrepancyRecord) []models.DiscrepancyRecord {
	merged := make([]models.DiscrepancyRecord, 0, len(existing)+len(incoming))
	index := make(map[string]int, len(existing)+len(incoming))

	for _, rec := range existing {
		mergeOne(&merged, index, rec)
	}
	for _, rec := range incoming {
		mergeOne(&merged, index, rec)
	}
	return merged
}

func mergeOne(merged *[]models.DiscrepancyRecord, index map[string]int, rec models.DiscrepancyRecord) {
	fp := rec.Fingerprint()
	at, seen := index[fp]
	if !seen {
		index[fp] = len(*merged)
		*merged = append(*merged, rec)
		return
	}
	if earlierDate(rec.ReportDate, (*merged)[at].ReportDate) {
		(*merged)[at] = rec
	}
}

// MergeShipments deduplicates shipment reference rows under the same
// earliest-report-date rule.
func MergeShipments(existing, incoming []models.ShipmentRef) []models.ShipmentRef {
	merged := make([]models.ShipmentRef, 0, len(existing)+len(incoming))
	index := make(map[string]int, len(existing)+len(incoming))

	for _, refs := range [][]models.ShipmentRef{existing, incoming} {
		for _, ref := range refs {
			fp := ref.Fingerprint()
			at, seen := index[fp]
			if !seen {
				index[fp] = len(merged)
				merged = append(merged, ref)
				continue
			}
			if earlierDate(ref.ReportDate, merged[at].ReportDate) {
				merged[at] = ref
			}
		}
	}
	return merged
}

// earlierDate reports whether a strictly improves on b as "first reported".
// An undated candidate never wins; an undated incumbent always loses to a
// dated candidate; equal dates keep the incumbent.
func earlierDate(a, b time.Time) bool {
	if a.IsZero() {
		return false
	}
	if b.IsZero() {
		return true
	}
	return a.Before(b)
}
