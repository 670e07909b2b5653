package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	StaffStatusActive   = "active"
	StaffStatusInactive = "inactive"
)

type Staff struct {
	ID        int64
	StaffID   string // business identifier, unique and editable
	Name      string
	DOB       time.Time
	Salary    decimal.Decimal
	Status    string
	CreatedAt time.Time
	UpdatedAt time.Time
}
