package reports

import (
	"time"

	"github.com/renovapanel/renova/pkg/faults"
)

// Stats is the dashboard snapshot computed as of invocation time.
type Stats struct {
	TotalActive            int64             `json:"total_active"`
	TotalExpired           int64             `json:"total_expired"`
	ExpiringSoon           int64             `json:"expiring_soon"`
	WaitingReminder        int64             `json:"waiting_reminder"`
	MonthlyRevenueCentavos int64             `json:"monthly_revenue_centavos"`
	RevenueByProduct       []*ProductRevenue `json:"revenue_by_product"`
	LastSales              []*SaleRecord     `json:"last_sales"`
}

// ProductRevenue is one row of the current-month revenue breakdown.
type ProductRevenue struct {
	ProductName   string `json:"nome"`
	TotalCentavos int64  `json:"total_centavos"`
}

// SaleRecord is one immutable ledger entry, annotated with the client
// and product display names. ClientID is nil when the client was
// deleted after the sale.
type SaleRecord struct {
	ID              int64     `json:"id"`
	ClientID        *int64    `json:"cliente_id,omitempty"`
	ProductID       int64     `json:"produto_id"`
	AmountCentavos  int64     `json:"valor_centavos"`
	MonthsPurchased int       `json:"meses_comprados"`
	PaidAt          time.Time `json:"data_pagamento"`
	ClientName      string    `json:"cliente_nome,omitempty"`
	ProductName     string    `json:"produto_nome"`
}

// SalesFilter restricts the ledger listing to a year or a month of a year.
type SalesFilter struct {
	Month *int
	Year  *int
}

// Validate checks filter consistency
func (f *SalesFilter) Validate() error {
	if f == nil {
		return nil
	}
	if f.Month != nil {
		if f.Year == nil {
			return faults.InvalidInput("month filter requires a year")
		}
		if *f.Month < 1 || *f.Month > 12 {
			return faults.InvalidInput("month must be between 1 and 12")
		}
	}
	if f.Year != nil && *f.Year < 1 {
		return faults.InvalidInput("year must be positive")
	}
	return nil
}
