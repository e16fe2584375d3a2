package repository

import "time"

// ShipmentListFilter filters the shipment list.
type ShipmentListFilter struct {
	Page          int
	PageSize      int
	DriverID      uint
	BrokerID      uint
	Status        string
	LoadType      string
	Search        string
	CreatedFrom   *time.Time
	CreatedTo     *time.Time
	WithRelations bool
}

// DriverListFilter filters the driver list.
type DriverListFilter struct {
	Page       int
	PageSize   int
	Search     string
	OnlyActive bool
}

// BrokerListFilter filters the broker list.
type BrokerListFilter struct {
	Page     int
	PageSize int
	Search   string
}

// PayStatementListFilter filters the pay statement list.
type PayStatementListFilter struct {
	Page       int
	PageSize   int
	DriverID   uint
	PeriodFrom *time.Time
	PeriodTo   *time.Time
	WithDriver bool
}

// DocumentListFilter filters the load document list.
type DocumentListFilter struct {
	Page       int
	PageSize   int
	ShipmentID uint
	Status     string
}

// ActivityLogListFilter filters the activity log list.
type ActivityLogListFilter struct {
	Page        int
	PageSize    int
	Actor       string
	Action      string
	ShipmentID  uint
	DriverID    uint
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}
