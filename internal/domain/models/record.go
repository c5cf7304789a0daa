package models

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Kind distinguishes the discrepancy partitions of the master store.
type Kind string

const (
	KindShortage Kind = "SHORTAGE"
	KindOverage  Kind = "OVERAGE"
	KindDamage   Kind = "DAMAGE"
)

// AisleUnknown tags a record whose SKU has no aisle in the master lookup.
// Two unknown aisles never count as equal during matching.
const AisleUnknown = "UNKNOWN"

// DiscrepancyRecord is one reported shortage, overage or damage line for a
// shipment. Provenance fields (source file, email, subject, AddedAt and the
// ingestion-side ReportDate) never participate in identity.
type DiscrepancyRecord struct {
	ShipmentID  string          `json:"shipment_id" bson:"shipment_id"`
	Kind        Kind            `json:"kind" bson:"kind"`
	SKU         string          `json:"sku" bson:"sku"`
	Description string          `json:"description" bson:"description"`
	Quantity    decimal.Decimal `json:"quantity" bson:"quantity"`
	Unit        string          `json:"unit" bson:"unit"`
	Zonal       string          `json:"zonal" bson:"zonal"`
	Warehouse   string          `json:"warehouse" bson:"warehouse"`
	Lot         string          `json:"lot" bson:"lot"`
	ReportDate  time.Time       `json:"report_date" bson:"report_date"`

	// Provenance.
	SourceFile    string    `json:"source_file" bson:"source_file"`
	SourceEmail   string    `json:"source_email" bson:"source_email"`
	SourceSubject string    `json:"source_subject" bson:"source_subject"`
	AddedAt       time.Time `json:"added_at" bson:"added_at"`
}

// NormalizeSKU strips surrounding whitespace and leading zeros so that
// "000123" and "123" identify the same material.
func NormalizeSKU(sku string) string {
	return strings.TrimLeft(strings.TrimSpace(sku), "0")
}

// Fingerprint derives the record's content identity: shipment, kind, SKU and
// quantity. Two records with equal fingerprints are the same real-world event
// reported more than once.
func (r DiscrepancyRecord) Fingerprint() string {
	h := sha256.New()
	h.Write([]byte(r.ShipmentID))
	h.Write([]byte{0})
	h.Write([]byte(r.Kind))
	h.Write([]byte{0})
	h.Write([]byte(NormalizeSKU(r.SKU)))
	h.Write([]byte{0})
	h.Write([]byte(r.Quantity.String()))
	return hex.EncodeToString(h.Sum(nil))
}

// ShipmentRef is one row of the shipment reference partition. It carries
// metadata only; discrepancy lines live in their own partitions.
type ShipmentRef struct {
	ShipmentID  string    `json:"shipment_id" bson:"shipment_id"`
	Zonal       string    `json:"zonal" bson:"zonal"`
	ReportDate  time.Time `json:"report_date" bson:"report_date"`
	SourceFile  string    `json:"source_file" bson:"source_file"`
	SourceEmail string    `json:"source_email" bson:"source_email"`
	AddedAt     time.Time `json:"added_at" bson:"added_at"`
}

// Fingerprint identifies a reference row by shipment and zonal.
func (s ShipmentRef) Fingerprint() string {
	h := sha256.New()
	h.Write([]byte(s.ShipmentID))
	h.Write([]byte{0})
	h.Write([]byte(strings.ToUpper(strings.TrimSpace(s.Zonal))))
	return hex.EncodeToString(h.Sum(nil))
}

// MasterData is the full in-memory state of the master store: the three
// discrepancy partitions plus the shipment reference rows.
type MasterData struct {
	Shortages []DiscrepancyRecord `json:"shortages"`
	Overages  []DiscrepancyRecord `json:"overages"`
	Damages   []DiscrepancyRecord `json:"damages"`
	Shipments []ShipmentRef       `json:"shipments"`
}

// IsEmpty reports whether the store holds no rows at all.
func (m MasterData) IsEmpty() bool {
	return len(m.Shortages) == 0 && len(m.Overages) == 0 &&
		len(m.Damages) == 0 && len(m.Shipments) == 0
}
