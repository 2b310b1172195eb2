package domain

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

type Address struct {
	Country    string `validate:"required"`
	City       string `validate:"required"`
	Street     string `validate:"required"`
	PostalCode string `validate:"required"`
}

func NewAddress(country, city, street, postalCode string) (Address, error) {
	a := Address{
		Country:    strings.TrimSpace(country),
		City:       strings.TrimSpace(city),
		Street:     strings.TrimSpace(street),
		PostalCode: strings.TrimSpace(postalCode),
	}
	if err := validate.Struct(a); err != nil {
		return Address{}, fmt.Errorf("%w: address: %v", ErrInvalidInput, err)
	}
	return a, nil
}

type Client struct {
	ID        int64
	FirstName string `validate:"required"`
	LastName  string `validate:"required"`
	Address   Address
}

func NewClient(firstName, lastName string, address Address) (Client, error) {
	c := Client{
		FirstName: strings.TrimSpace(firstName),
		LastName:  strings.TrimSpace(lastName),
		Address:   address,
	}
	if err := validate.Struct(c); err != nil {
		return Client{}, fmt.Errorf("%w: client: %v", ErrInvalidInput, err)
	}
	return c, nil
}
