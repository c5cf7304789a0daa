package aisle_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Reinvik/nexus-jarvis-suite/internal/aisle"
	"github.com/Reinvik/nexus-jarvis-suite/internal/domain/models"
)

func TestResolver_Resolve(t *testing.T) {
	r := aisle.NewResolver(map[string]string{
		"000123": "p-12",
		"456":    "P-03",
		"789":    "  ",
	}, nil)

	assert.Equal(t, 2, r.Size())

	// Lookup keys normalize the same way table keys do.
	assert.Equal(t, "P-12", r.Resolve("123"))
	assert.Equal(t, "P-12", r.Resolve("000123"))
	assert.Equal(t, "P-03", r.Resolve("0456"))

	// Blank aisles were dropped at load time.
	assert.Equal(t, models.AisleUnknown, r.Resolve("789"))
	assert.Equal(t, models.AisleUnknown, r.Resolve("999"))
	assert.Equal(t, models.AisleUnknown, r.Resolve(""))
}

func TestResolver_EmptyTable(t *testing.T) {
	r := aisle.NewResolver(nil, nil)
	assert.Equal(t, 0, r.Size())
	assert.Equal(t, models.AisleUnknown, r.Resolve("123"))
}
