package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAddress(t *testing.T) {
	address, err := NewAddress("  Lithuania ", "Vilnius", "Gedimino pr. 1", "01103")
	require.NoError(t, err)
	assert.Equal(t, "Lithuania", address.Country)

	_, err = NewAddress("Lithuania", "   ", "Gedimino pr. 1", "01103")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestNewClient(t *testing.T) {
	address, err := NewAddress("Lithuania", "Vilnius", "Gedimino pr. 1", "01103")
	require.NoError(t, err)

	client, err := NewClient(" Jonas ", "Jonaitis", address)
	require.NoError(t, err)
	assert.Equal(t, "Jonas", client.FirstName)

	_, err = NewClient("", "Jonaitis", address)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestNewMedicine(t *testing.T) {
	medicine, err := NewMedicine("Ibuprofen", decimal.RequireFromString("2.00"), 10)
	require.NoError(t, err)
	assert.Equal(t, 10, medicine.Stock)

	_, err = NewMedicine("", decimal.RequireFromString("2.00"), 10)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = NewMedicine("Ibuprofen", decimal.Zero, 10)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = NewMedicine("Ibuprofen", decimal.RequireFromString("-1.00"), 10)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = NewMedicine("Ibuprofen", decimal.RequireFromString("2.00"), -1)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestNewSupplierMedicine(t *testing.T) {
	link, err := NewSupplierMedicine(1, 2, decimal.RequireFromString("0.80"))
	require.NoError(t, err)
	assert.Equal(t, int64(2), link.MedicineID)

	_, err = NewSupplierMedicine(0, 2, decimal.RequireFromString("0.80"))
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = NewSupplierMedicine(1, 2, decimal.Zero)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestOrderLineSubtotal(t *testing.T) {
	line := OrderLine{Quantity: 3, UnitPrice: decimal.RequireFromString("2.50")}
	assert.True(t, line.Subtotal().Equal(decimal.RequireFromString("7.50")))

	// Exactness matters for money: 0.1 * 3 must be 0.3, not 0.30000000000000004.
	line = OrderLine{Quantity: 3, UnitPrice: decimal.RequireFromString("0.10")}
	assert.True(t, line.Subtotal().Equal(decimal.RequireFromString("0.30")))
}
