package entity

import "time"

// Warehouse is a physical storage location stock moves in and out of.
type Warehouse struct {
	ID        string
	Code      string
	Name      string
	Address   string
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
