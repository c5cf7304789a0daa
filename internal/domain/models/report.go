package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// SummaryRow is one line of the per-run shipment summary table.
type SummaryRow struct {
	ShipmentID         string         `json:"shipment_id"`
	ReportDate         time.Time      `json:"report_date"`
	Zonal              string         `json:"zonal"`
	Status             ShipmentStatus `json:"status"`
	RemainingShortages int            `json:"remaining_shortages"`
	RemainingOverages  int            `json:"remaining_overages"`
	Swaps              int            `json:"swaps"`
}

// DiscrepancyRow is one line of the unified discrepancy table: a remaining
// shortage, a remaining overage, or the placeholder row of a clean shipment.
type DiscrepancyRow struct {
	ShipmentID  string          `json:"shipment_id"`
	Zonal       string          `json:"zonal"`
	ReportDate  time.Time       `json:"report_date"`
	State       ShipmentStatus  `json:"state"`
	SKU         string          `json:"sku"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	Unit        string          `json:"unit"`
	Aisle       string          `json:"aisle"`
}

// SwapRow details one shortage/overage pair explained as a picking swap.
type SwapRow struct {
	ShipmentID          string          `json:"shipment_id"`
	Zonal               string          `json:"zonal"`
	ReportDate          time.Time       `json:"report_date"`
	ShortageSKU         string          `json:"shortage_sku"`
	ShortageDescription string          `json:"shortage_description"`
	OverageSKU          string          `json:"overage_sku"`
	OverageDescription  string          `json:"overage_description"`
	Quantity            decimal.Decimal `json:"quantity"`
	Unit                string          `json:"unit"`
	Aisle               string          `json:"aisle"`
}

// AnalysisReport holds the three output tables of one analysis pass.
type AnalysisReport struct {
	Summary       []SummaryRow     `json:"summary"`
	Discrepancies []DiscrepancyRow `json:"discrepancies"`
	Swaps         []SwapRow        `json:"swaps"`
}

// RunReport summarizes one consolidation run end to end. It is what the
// status endpoint serves, the archive stores and the notifier posts.
type RunReport struct {
	RunID          string    `json:"run_id" bson:"run_id"`
	StartedAt      time.Time `json:"started_at" bson:"started_at"`
	FinishedAt     time.Time `json:"finished_at" bson:"finished_at"`
	FilesProcessed int       `json:"files_processed" bson:"files_processed"`
	SheetsSkipped  int       `json:"sheets_skipped" bson:"sheets_skipped"`
	NewShortages   int       `json:"new_shortages" bson:"new_shortages"`
	NewOverages    int       `json:"new_overages" bson:"new_overages"`
	NewDamages     int       `json:"new_damages" bson:"new_damages"`
	Duplicates     int       `json:"duplicates" bson:"duplicates"`
	TotalShortages int       `json:"total_shortages" bson:"total_shortages"`
	TotalOverages  int       `json:"total_overages" bson:"total_overages"`
	Shipments      int       `json:"shipments" bson:"shipments"`
	ReportFile     string    `json:"report_file" bson:"report_file"`
}
