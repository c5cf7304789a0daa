package analyze_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Reinvik/nexus-jarvis-suite/internal/domain/models"
	"github.com/Reinvik/nexus-jarvis-suite/internal/service/analyze"
)

// mapResolver resolves aisles from a plain map, UNKNOWN for everything else.
type mapResolver map[string]string

func (m mapResolver) Resolve(sku string) string {
	if aisle, ok := m[models.NormalizeSKU(sku)]; ok {
		return aisle
	}
	return models.AisleUnknown
}

func shortage(sku string, qty string) models.DiscrepancyRecord {
	return models.DiscrepancyRecord{
		ShipmentID: "T-1",
		Kind:       models.KindShortage,
		SKU:        sku,
		Quantity:   decimal.RequireFromString(qty),
	}
}

func overage(sku string, qty string) models.DiscrepancyRecord {
	return models.DiscrepancyRecord{
		ShipmentID: "T-1",
		Kind:       models.KindOverage,
		SKU:        sku,
		Quantity:   decimal.RequireFromString(qty),
	}
}

func TestReconcile(t *testing.T) {
	t.Run("same aisle same quantity pairs up", func(t *testing.T) {
		resolver := mapResolver{"123": "P-07", "456": "P-07"}

		swaps, remS, remO := analyze.Reconcile(
			[]models.DiscrepancyRecord{shortage("123", "5")},
			[]models.DiscrepancyRecord{overage("456", "5")},
			resolver,
		)

		require.Len(t, swaps, 1)
		assert.Equal(t, "123", swaps[0].Shortage.SKU)
		assert.Equal(t, "456", swaps[0].Overage.SKU)
		assert.Equal(t, "P-07", swaps[0].Aisle)
		assert.Empty(t, remS)
		assert.Empty(t, remO)
	})

	t.Run("different aisles never pair", func(t *testing.T) {
		resolver := mapResolver{"123": "P-07", "456": "P-09"}

		swaps, remS, remO := analyze.Reconcile(
			[]models.DiscrepancyRecord{shortage("123", "5")},
			[]models.DiscrepancyRecord{overage("456", "5")},
			resolver,
		)

		assert.Empty(t, swaps)
		assert.Len(t, remS, 1)
		assert.Len(t, remO, 1)
	})

	t.Run("different quantities never pair", func(t *testing.T) {
		resolver := mapResolver{"123": "P-07", "456": "P-07"}

		swaps, _, _ := analyze.Reconcile(
			[]models.DiscrepancyRecord{shortage("123", "5")},
			[]models.DiscrepancyRecord{overage("456", "4")},
			resolver,
		)
		assert.Empty(t, swaps)
	})

	t.Run("quantity equality ignores representation", func(t *testing.T) {
		resolver := mapResolver{"123": "P-07", "456": "P-07"}

		swaps, _, _ := analyze.Reconcile(
			[]models.DiscrepancyRecord{shortage("123", "5.0")},
			[]models.DiscrepancyRecord{overage("456", "5")},
			resolver,
		)
		assert.Len(t, swaps, 1)
	})

	t.Run("unknown aisles never pair even with each other", func(t *testing.T) {
		swaps, remS, remO := analyze.Reconcile(
			[]models.DiscrepancyRecord{shortage("111", "5")},
			[]models.DiscrepancyRecord{overage("222", "5")},
			mapResolver{},
		)

		assert.Empty(t, swaps)
		assert.Len(t, remS, 1)
		assert.Len(t, remO, 1)
	})

	t.Run("first unmatched overage wins", func(t *testing.T) {
		resolver := mapResolver{"123": "P-07", "456": "P-07", "789": "P-07"}

		swaps, _, remO := analyze.Reconcile(
			[]models.DiscrepancyRecord{shortage("123", "5")},
			[]models.DiscrepancyRecord{overage("456", "5"), overage("789", "5")},
			resolver,
		)

		require.Len(t, swaps, 1)
		assert.Equal(t, "456", swaps[0].Overage.SKU)
		require.Len(t, remO, 1)
		assert.Equal(t, "789", remO[0].SKU)
	})

	t.Run("each overage binds at most once", func(t *testing.T) {
		resolver := mapResolver{"123": "P-07", "124": "P-07", "456": "P-07"}

		swaps, remS, _ := analyze.Reconcile(
			[]models.DiscrepancyRecord{shortage("123", "5"), shortage("124", "5")},
			[]models.DiscrepancyRecord{overage("456", "5")},
			resolver,
		)

		require.Len(t, swaps, 1)
		require.Len(t, remS, 1)
		assert.Equal(t, "124", remS[0].SKU)
	})

	t.Run("no backtracking for a better global pairing", func(t *testing.T) {
		// Shortage A could leave the P-07 overage to shortage B, which has no
		// other candidate. The greedy pass does not care.
		resolver := mapResolver{"a": "P-07", "b": "P-07", "o1": "P-07"}

		swaps, remS, _ := analyze.Reconcile(
			[]models.DiscrepancyRecord{shortage("a", "5"), shortage("b", "5")},
			[]models.DiscrepancyRecord{overage("o1", "5")},
			resolver,
		)

		require.Len(t, swaps, 1)
		assert.Equal(t, "a", swaps[0].Shortage.SKU)
		require.Len(t, remS, 1)
		assert.Equal(t, "b", remS[0].SKU)
	})

	t.Run("empty inputs yield empty outputs", func(t *testing.T) {
		swaps, remS, remO := analyze.Reconcile(nil, nil, mapResolver{})
		assert.Empty(t, swaps)
		assert.Empty(t, remS)
		assert.Empty(t, remO)
	})
}
