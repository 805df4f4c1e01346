package service

import (
	"strings"

	"github.com/avassel/stagebook/internal/model"
)

// ResolveBillingAddress decides which of the customer's two addresses
// an invoice must carry and returns it as a snapshot.  The home
// address always qualifies; the dedicated billing address is only
// usable when its required fields are filled in, otherwise a
// ValidationError names the first blank field.  The function is pure:
// callers persist the snapshot onto the invoice row, so later profile
// edits never reach documents that were already issued.
func ResolveBillingAddress(c *model.Customer) (model.AddressSnapshot, error) {
	if c.UseHomeAddressForBilling {
		return model.AddressSnapshot{
			Kind:       model.AddressKindHome,
			Label:      c.FullName(),
			Street:     c.HomeStreet,
			Street2:    c.HomeStreet2,
			PostalCode: c.HomePostalCode,
			City:       c.HomeCity,
			Country:    c.HomeCountry,
		}, nil
	}
	for _, req := range []struct {
		field string
		value string
	}{
		{"billing_street", c.BillingStreet},
		{"billing_postal_code", c.BillingPostalCode},
		{"billing_city", c.BillingCity},
	} {
		if strings.TrimSpace(req.value) == "" {
			return model.AddressSnapshot{}, &model.ValidationError{Field: req.field, Reason: "is required"}
		}
	}
	label := c.BillingLabel
	if label == "" {
		label = c.FullName()
	}
	return model.AddressSnapshot{
		Kind:       model.AddressKindBilling,
		Label:      label,
		Street:     c.BillingStreet,
		Street2:    c.BillingStreet2,
		PostalCode: c.BillingPostalCode,
		City:       c.BillingCity,
		Country:    c.BillingCountry,
	}, nil
}
