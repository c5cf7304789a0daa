package analyze_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Reinvik/nexus-jarvis-suite/internal/domain/models"
	"github.com/Reinvik/nexus-jarvis-suite/internal/service/analyze"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name      string
		swaps     bool
		shortages bool
		overages  bool
		want      models.ShipmentStatus
	}{
		{"nothing at all", false, false, false, models.StatusNoDifferences},
		{"only swaps", true, false, false, models.StatusProductSwapped},
		{"only shortages", false, true, false, models.StatusShortage},
		{"only overages", false, false, true, models.StatusOverage},
		{"shortages and overages", false, true, true, models.StatusShortageAndOverage},
		{"swaps and shortages", true, true, false, "PRODUCT_SWAPPED / SHORTAGE"},
		{"swaps and overages", true, false, true, "PRODUCT_SWAPPED / OVERAGE"},
		{"everything", true, true, true, "PRODUCT_SWAPPED / SHORTAGE / OVERAGE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, analyze.Classify(tt.swaps, tt.shortages, tt.overages))
		})
	}
}
