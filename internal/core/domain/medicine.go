package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Medicine is a catalog entry. Stock is the only field the order
// transaction mutates; UnitPrice is the live catalog price, copied onto
// order lines at purchase time.
type Medicine struct {
	ID        int64
	Name      string
	UnitPrice decimal.Decimal
	Stock     int
}

func NewMedicine(name string, unitPrice decimal.Decimal, stock int) (Medicine, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Medicine{}, fmt.Errorf("%w: medicine name cannot be empty", ErrInvalidInput)
	}
	if !unitPrice.IsPositive() {
		return Medicine{}, fmt.Errorf("%w: unit price must be positive", ErrInvalidInput)
	}
	if stock < 0 {
		return Medicine{}, fmt.Errorf("%w: stock cannot be negative", ErrInvalidInput)
	}
	return Medicine{Name: name, UnitPrice: unitPrice, Stock: stock}, nil
}
