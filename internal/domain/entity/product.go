package entity

import "time"

// Product is catalog reference data for the ledger: enough identity for FK
// checks and for the UI autocomplete. Pricing and specs live elsewhere.
type Product struct {
	ID        string
	SKU       string
	Name      string
	Grade     string // steel grade, e.g. "304", "S235JR"
	Unit      string // default measurement unit
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
