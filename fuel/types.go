// Package fuel implements fuel-specific stock management on top of the
// generic ledger engine: fuel type master data, report formatting, and
// loadable demo scenarios.
package fuel

import "github.com/warp/stock-ledger/ledger"

// =============================================================================
// FUEL RESOURCE TYPES
// =============================================================================

// Well-known fuel resource ids. The catalog is the source of truth; these
// exist so fixtures and demos don't scatter string literals.
const (
	Diesel    ledger.ResourceTypeID = "diesel"
	Petrol    ledger.ResourceTypeID = "petrol"
	Kerosene  ledger.ResourceTypeID = "kerosene"
	EngineOil ledger.ResourceTypeID = "engine_oil"
	Grease    ledger.ResourceTypeID = "grease"
)

// DefaultResourceTypes returns the stock variants a fresh installation
// starts with. Liquids in liters, grease by weight.
func DefaultResourceTypes() []ledger.ResourceType {
	return []ledger.ResourceType{
		{ID: Diesel, Name: "Diesel", Unit: ledger.UnitLiters},
		{ID: Petrol, Name: "Petrol", Unit: ledger.UnitLiters},
		{ID: Kerosene, Name: "Kerosene", Unit: ledger.UnitLiters},
		{ID: EngineOil, Name: "Engine Oil", Unit: ledger.UnitLiters},
		{ID: Grease, Name: "Grease", Unit: ledger.UnitKilograms},
	}
}
