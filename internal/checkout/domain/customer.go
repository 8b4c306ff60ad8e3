package domain

import (
	"regexp"
	"strings"

	orderdomain "github.com/dwikikusuma/storefront/internal/order/domain"
	"github.com/pkg/errors"
)

var ErrInvalidCustomer = errors.New("invalid customer details")

var emailPattern = regexp.MustCompile(`^\S+@\S+\.\S+$`)

// FieldError names the first form field that failed validation.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string { return e.Message }

func (e *FieldError) Unwrap() error { return ErrInvalidCustomer }

// CustomerForm is the raw checkout form as typed by the customer.
type CustomerForm struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Address string `json:"address"`
	City    string `json:"city"`
}

// Validate checks the form field by field and stops at the first problem.
func (f CustomerForm) Validate() (orderdomain.Customer, error) {
	c := orderdomain.Customer{
		Name:    strings.TrimSpace(f.Name),
		Phone:   strings.TrimSpace(f.Phone),
		Email:   strings.TrimSpace(f.Email),
		Address: strings.TrimSpace(f.Address),
		City:    strings.TrimSpace(f.City),
	}

	switch {
	case c.Name == "":
		return c, &FieldError{Field: "name", Message: "name is required"}
	case c.Phone == "" && c.Email == "":
		return c, &FieldError{Field: "phone", Message: "please provide a phone number or email"}
	case c.Email != "" && !emailPattern.MatchString(c.Email):
		return c, &FieldError{Field: "email", Message: "please enter a valid email"}
	case c.Address == "":
		return c, &FieldError{Field: "address", Message: "address is required"}
	case c.City == "":
		return c, &FieldError{Field: "city", Message: "city is required"}
	}
	return c, nil
}
