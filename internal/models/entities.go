package models

import (
	"time"
)

// SeatStatus is the lifecycle state of a single seat
type SeatStatus string

const (
	SeatAvailable SeatStatus = "AVAILABLE"
	SeatSelected  SeatStatus = "SELECTED"
	SeatSold      SeatStatus = "SOLD"
	SeatBlocked   SeatStatus = "BLOCKED"
)

// Sector is a named block of the seating layout
type Sector string

const (
	SectorLeft   Sector = "LEFT"
	SectorCenter Sector = "CENTER"
	SectorRight  Sector = "RIGHT"
)

// Suffix returns the short code used inside seat identifiers
func (s Sector) Suffix() string {
	switch s {
	case SectorLeft:
		return "ESQ"
	case SectorCenter:
		return "CEN"
	case SectorRight:
		return "DIR"
	}
	return ""
}

// Label returns the name printed on the venue map
func (s Sector) Label() string {
	switch s {
	case SectorLeft:
		return "PNE ESQ"
	case SectorCenter:
		return "CENTRAL"
	case SectorRight:
		return "PNE DIR"
	}
	return string(s)
}

// SectorFromSuffix is the inverse of Sector.Suffix
func SectorFromSuffix(suffix string) (Sector, bool) {
	switch suffix {
	case "ESQ":
		return SectorLeft, true
	case "CEN":
		return SectorCenter, true
	case "DIR":
		return SectorRight, true
	}
	return "", false
}

// Sectors lists sectors in presentation order
var Sectors = []Sector{SectorLeft, SectorCenter, SectorRight}

// Seat represents one bookable seat of the venue
type Seat struct {
	ID     string     `json:"id"`
	Sector Sector     `json:"sector"`
	Row    string     `json:"row"`
	Number int        `json:"number"`
	Status SeatStatus `json:"status"`
}

// Sale represents a sale record persisted in the ledger
type Sale struct {
	ID         string      `json:"id" db:"id"`
	BuyerName  string      `json:"buyer_name" db:"buyer_name"`
	BuyerPhone string      `json:"buyer_phone" db:"buyer_phone"`
	StudentID  *string     `json:"student_id,omitempty" db:"student_id"`
	Seats      []string    `json:"seats" db:"seats"`
	TotalValue int64       `json:"total_value" db:"total_value"` // minor units
	SaleDate   time.Time   `json:"sale_date" db:"sale_date"`
	CreatedAt  time.Time   `json:"created_at" db:"created_at"`
	Student    *StudentRef `json:"student,omitempty"` // Not from sales table, joined from students
}

// StudentRef is the student summary attached to a sale
type StudentRef struct {
	StudentName     string `json:"student_name"`
	ResponsibleName string `json:"responsible_name"`
}

// Student represents a pre-registered buyer template
type Student struct {
	ID              string    `json:"id" db:"id"`
	StudentName     string    `json:"student_name" db:"student_name"`
	ResponsibleName string    `json:"responsible_name" db:"responsible_name"`
	Phone           string    `json:"phone" db:"phone"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}

// Settings holds the venue-wide configuration shared by all terminals
type Settings struct {
	ID          int       `json:"id" db:"id"`
	TicketPrice int64     `json:"ticket_price" db:"ticket_price"` // minor units
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}
