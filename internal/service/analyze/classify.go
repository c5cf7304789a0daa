package analyze

import (
	"strings"

	"github.com/Reinvik/nexus-jarvis-suite/internal/domain/models"
)

// Classify reduces a shipment's matching outcome to one ShipmentStatus. The
// table is checked in order, first match wins; any other combination joins
// its labels with " / " in the fixed order swapped, shortage, overage.
func Classify(hasSwaps, hasShortages, hasOverages bool) models.ShipmentStatus {
	switch {
	case !hasSwaps && !hasShortages && !hasOverages:
		return models.StatusNoDifferences
	case hasSwaps && !hasShortages && !hasOverages:
		return models.StatusProductSwapped
	case !hasSwaps && hasShortages && !hasOverages:
		return models.StatusShortage
	case !hasSwaps && !hasShortages && hasOverages:
		return models.StatusOverage
	case !hasSwaps && hasShortages && hasOverages:
		return models.StatusShortageAndOverage
	}

	var parts []string
	if hasSwaps {
		parts = append(parts, string(models.StatusProductSwapped))
	}
	if hasShortages {
		parts = append(parts, string(models.StatusShortage))
	}
	if hasOverages {
		parts = append(parts, string(models.StatusOverage))
	}
	if len(parts) == 0 {
		// Unreachable: every remaining combination has at least two labels.
		return models.StatusReview
	}
	return models.ShipmentStatus(strings.Join(parts, models.StatusJoinSeparator))
}
