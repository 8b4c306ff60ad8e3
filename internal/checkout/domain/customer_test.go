package domain

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func valid() CustomerForm {
	return CustomerForm{Name: "Ada", Phone: "0800 000 0000", Email: "ada@example.com", Address: "1 Main St", City: "Lagos"}
}

func TestValidateTrimsAndOmits(t *testing.T) {
	f := CustomerForm{Name: "  Ada ", Phone: "   ", Email: " ada@example.com ", Address: " 1 Main St", City: "Lagos  "}

	c, err := f.Validate()
	require.NoError(t, err)
	assert.Equal(t, "Ada", c.Name)
	assert.Equal(t, "", c.Phone)
	assert.Equal(t, "ada@example.com", c.Email)
	assert.Equal(t, "1 Main St", c.Address)
	assert.Equal(t, "Lagos", c.City)
}

func TestValidateFields(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*CustomerForm)
		field  string
	}{
		{"blank name", func(f *CustomerForm) { f.Name = "  " }, "name"},
		{"no contact", func(f *CustomerForm) { f.Phone, f.Email = "", " " }, "phone"},
		{"bad email", func(f *CustomerForm) { f.Email = "ada@example" }, "email"},
		{"email with spaces", func(f *CustomerForm) { f.Email = "a da@example.com" }, "email"},
		{"blank address", func(f *CustomerForm) { f.Address = "" }, "address"},
		{"blank city", func(f *CustomerForm) { f.City = "\t" }, "city"},
		{"first problem wins", func(f *CustomerForm) { f.Name, f.City = "", "" }, "name"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			f := valid()
			c.mutate(&f)

			_, err := f.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidCustomer)

			var fe *FieldError
			require.True(t, errors.As(err, &fe))
			assert.Equal(t, c.field, fe.Field)
		})
	}
}

func TestPhoneAloneIsEnough(t *testing.T) {
	f := valid()
	f.Email = ""
	c, err := f.Validate()
	require.NoError(t, err)
	assert.Empty(t, c.Email)
}
