// Package aisle resolves SKUs to physical warehouse aisles. The aisle is a
// matching signal only, never an authoritative location record.
package aisle

import (
	"strings"

	"go.uber.org/zap"

	"github.com/Reinvik/nexus-jarvis-suite/internal/domain/models"
)

// Resolver maps SKUs to aisle codes using the maintained lookup table.
type Resolver struct {
	bySKU  map[string]string
	logger *zap.Logger
}

// NewResolver builds a resolver from a SKU -> aisle table. Keys are stored
// with leading zeros stripped and aisles uppercased; empty entries are
// ignored. A nil or empty table yields a resolver that answers UNKNOWN for
// everything, which disables swap matching entirely.
func NewResolver(table map[string]string, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}

	bySKU := make(map[string]string, len(table))
	for sku, aisleCode := range table {
		key := models.NormalizeSKU(sku)
		value := strings.ToUpper(strings.TrimSpace(aisleCode))
		if key == "" || value == "" {
			continue
		}
		bySKU[key] = value
	}

	logger.Info("aisle lookup loaded", zap.Int("skus", len(bySKU)))
	return &Resolver{bySKU: bySKU, logger: logger}
}

// Resolve returns the aisle for a SKU, or models.AisleUnknown when the SKU is
// blank or unmapped.
func (r *Resolver) Resolve(sku string) string {
	key := models.NormalizeSKU(sku)
	if key == "" {
		return models.AisleUnknown
	}
	if aisleCode, ok := r.bySKU[key]; ok {
		return aisleCode
	}
	return models.AisleUnknown
}

// Size reports how many SKUs are mapped.
func (r *Resolver) Size() int {
	return len(r.bySKU)
}
