package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Additions are the recognized pay-statement addition line items. A closed set
// of named lines replaces the free-form string map the dashboard used to keep,
// so a typo cannot silently drop money.
type Additions struct {
	Bonus               Money `gorm:"type:decimal(20,2);not null;default:0" json:"bonus"`
	LumperReimbursement Money `gorm:"type:decimal(20,2);not null;default:0" json:"lumper_reimbursement"`
	Detention           Money `gorm:"type:decimal(20,2);not null;default:0" json:"detention"`
	Other               Money `gorm:"type:decimal(20,2);not null;default:0" json:"other"`
}

// Sum totals all addition lines.
func (a Additions) Sum() Money {
	total := a.Bonus.Decimal.
		Add(a.LumperReimbursement.Decimal).
		Add(a.Detention.Decimal).
		Add(a.Other.Decimal)
	return NewMoneyFromDecimal(total)
}

// Deductions are the recognized pay-statement deduction line items.
type Deductions struct {
	Factoring    Money `gorm:"type:decimal(20,2);not null;default:0" json:"factoring"`
	Fuel         Money `gorm:"type:decimal(20,2);not null;default:0" json:"fuel"`
	Insurance    Money `gorm:"type:decimal(20,2);not null;default:0" json:"insurance"`
	Occupational Money `gorm:"type:decimal(20,2);not null;default:0" json:"occupational"`
	Parking      Money `gorm:"type:decimal(20,2);not null;default:0" json:"parking"`
	Other        Money `gorm:"type:decimal(20,2);not null;default:0" json:"other"`
}

// Sum totals all deduction lines.
func (d Deductions) Sum() Money {
	total := d.Factoring.Decimal.
		Add(d.Fuel.Decimal).
		Add(d.Insurance.Decimal).
		Add(d.Occupational.Decimal).
		Add(d.Parking.Decimal).
		Add(d.Other.Decimal)
	return NewMoneyFromDecimal(total)
}

// TripSummary is one itemized trip line attached to a pay statement.
type TripSummary struct {
	ReferenceCode     string    `json:"reference_code"`
	PickupDate        time.Time `json:"pickup_date"`
	PickupLocations   string    `json:"pickup_locations"`
	DeliveryDate      time.Time `json:"delivery_date"`
	DeliveryLocations string    `json:"delivery_locations"`
	Amount            Money     `json:"amount"`
}

// TripSummaries is a JSON-serialized trip list column.
type TripSummaries []TripSummary

// Value implements database writes.
func (t TripSummaries) Value() (driver.Value, error) {
	if t == nil {
		return "[]", nil
	}
	data, err := json.Marshal(t)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan implements database reads.
func (t *TripSummaries) Scan(value interface{}) error {
	if value == nil {
		*t = nil
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported trip summaries column type %T", value)
	}
	if len(data) == 0 {
		*t = nil
		return nil
	}
	return json.Unmarshal(data, t)
}

// PayStatement is a driver's compensation record for one period. Net pay is
// never stored; it is derived from gross pay and the line items on read.
type PayStatement struct {
	ID          uint          `gorm:"primarykey" json:"id"`
	DriverID    uint          `gorm:"index;not null" json:"driver_id"`
	PeriodStart time.Time     `gorm:"index;not null" json:"period_start"`
	PeriodEnd   time.Time     `gorm:"not null" json:"period_end"`
	GrossPay    Money         `gorm:"type:decimal(20,2);not null;default:0" json:"gross_pay"`
	Additions   Additions     `gorm:"embedded;embeddedPrefix:addition_" json:"additions"`
	Deductions  Deductions    `gorm:"embedded;embeddedPrefix:deduction_" json:"deductions"`
	Trips       TripSummaries `gorm:"type:text" json:"trips"`
	Notes       string        `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt   time.Time     `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`

	Driver *Driver `gorm:"foreignKey:DriverID" json:"driver,omitempty"`
}

// TableName sets the table name.
func (PayStatement) TableName() string {
	return "pay_statements"
}

// TotalAdditions sums the addition lines.
func (p *PayStatement) TotalAdditions() Money {
	return p.Additions.Sum()
}

// TotalDeductions sums the deduction lines.
func (p *PayStatement) TotalDeductions() Money {
	return p.Deductions.Sum()
}

// NetPay is gross pay plus additions minus deductions.
func (p *PayStatement) NetPay() Money {
	net := p.GrossPay.Decimal.
		Add(p.Additions.Sum().Decimal).
		Sub(p.Deductions.Sum().Decimal)
	return NewMoneyFromDecimal(net)
}

// ZeroMoney returns a zero amount.
func ZeroMoney() Money {
	return NewMoneyFromDecimal(decimal.Zero)
}
