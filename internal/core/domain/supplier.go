package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

type Supplier struct {
	ID      int64
	Name    string `validate:"required"`
	Address Address
}

func NewSupplier(name string, address Address) (Supplier, error) {
	s := Supplier{Name: strings.TrimSpace(name), Address: address}
	if err := validate.Struct(s); err != nil {
		return Supplier{}, fmt.Errorf("%w: supplier: %v", ErrInvalidInput, err)
	}
	return s, nil
}

// SupplierMedicine links a supplier to a medicine it can deliver, at the
// supplier's own price (unrelated to the catalog unit price).
type SupplierMedicine struct {
	SupplierID  int64
	MedicineID  int64
	SupplyPrice decimal.Decimal
}

func NewSupplierMedicine(supplierID, medicineID int64, supplyPrice decimal.Decimal) (SupplierMedicine, error) {
	if supplierID <= 0 {
		return SupplierMedicine{}, fmt.Errorf("%w: supplier id must be positive", ErrInvalidInput)
	}
	if medicineID <= 0 {
		return SupplierMedicine{}, fmt.Errorf("%w: medicine id must be positive", ErrInvalidInput)
	}
	if !supplyPrice.IsPositive() {
		return SupplierMedicine{}, fmt.Errorf("%w: supply price must be positive", ErrInvalidInput)
	}
	return SupplierMedicine{SupplierID: supplierID, MedicineID: medicineID, SupplyPrice: supplyPrice}, nil
}
