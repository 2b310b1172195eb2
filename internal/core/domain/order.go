package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order is the header row of one purchase event. TotalPrice is derived:
// zero at creation, the sum of line subtotals once the transaction
// finalizes.
type Order struct {
	ID         int64
	ClientID   int64
	OrderDate  time.Time
	TotalPrice decimal.Decimal
}

// OrderLine is one medicine entry of an order. UnitPrice is the
// price-at-purchase snapshot: it is captured when the line is inserted and
// never follows later catalog price changes.
type OrderLine struct {
	OrderID    int64
	MedicineID int64
	Quantity   int
	UnitPrice  decimal.Decimal
}

func (l OrderLine) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// OrderSummary is a row of the detailed_order_summary reporting view.
type OrderSummary struct {
	OrderID         int64
	OrderDate       time.Time
	ClientFirstName string
	ClientLastName  string
	TotalPrice      decimal.Decimal
	TotalItemsCount int64
}
