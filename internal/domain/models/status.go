package models

// ShipmentStatus is the classification of a shipment after matching.
// Composite states join the applicable labels with " / " in the fixed order
// swapped, shortage, overage.
type ShipmentStatus string

const (
	StatusNoDifferences      ShipmentStatus = "NO_DIFFERENCES"
	StatusProductSwapped     ShipmentStatus = "PRODUCT_SWAPPED"
	StatusShortage           ShipmentStatus = "SHORTAGE"
	StatusOverage            ShipmentStatus = "OVERAGE"
	StatusShortageAndOverage ShipmentStatus = "SHORTAGE_AND_OVERAGE"

	// StatusReview is a defensive fallback; no reachable combination of the
	// classifier inputs produces it.
	StatusReview ShipmentStatus = "REVIEW"
)

// StatusJoinSeparator joins labels of composite shipment states.
const StatusJoinSeparator = " / "
