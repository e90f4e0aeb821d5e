package models

import "time"

// NATS subjects
const (
	EventSalesChanged = "sales.changed"
)

// Actions carried by SalesChangedEvent
const (
	SaleActionCreated = "created"
	SaleActionDeleted = "deleted"
	SaleActionReset   = "reset"
)

// SalesChangedEvent is published by the ledger after every change of the sales list.
// Terminals use it only as a trigger; the sales list itself is always re-read.
type SalesChangedEvent struct {
	Action    string    `json:"action"`
	SaleID    string    `json:"sale_id,omitempty"`
	Seats     []string  `json:"seats,omitempty"`
	Sale      *Sale     `json:"sale,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
