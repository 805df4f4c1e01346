package model

import "time"

// Customer identifies a trainee together with two address records: a
// home address and an optional dedicated billing address.  When
// UseHomeAddressForBilling is false the dedicated billing fields must
// be complete before an invoice can be issued; the billing address
// resolver enforces this.
//
// Fields:
//  ID                       – primary key identifier.
//  FirstName                – given name.
//  LastName                 – surname, also used in document filenames.
//  Email                    – contact address for notifications.
//  HomeStreet               – home address street line.
//  HomeStreet2              – optional second street line.
//  HomePostalCode           – home postal code.
//  HomeCity                 – home city.
//  HomeCountry              – home country.
//  BillingLabel             – optional company or recipient label.
//  BillingStreet            – dedicated billing street line.
//  BillingStreet2           – optional second billing street line.
//  BillingPostalCode        – dedicated billing postal code.
//  BillingCity              – dedicated billing city.
//  BillingCountry           – dedicated billing country.
//  UseHomeAddressForBilling – selects which address invoices carry.
//  CreatedAt                – creation timestamp.
//  UpdatedAt                – last update timestamp.
type Customer struct {
	ID                       uint64    // customers.id
	FirstName                string    // customers.first_name
	LastName                 string    // customers.last_name
	Email                    string    // customers.email
	HomeStreet               string    // customers.home_street
	HomeStreet2              string    // customers.home_street2
	HomePostalCode           string    // customers.home_postal_code
	HomeCity                 string    // customers.home_city
	HomeCountry              string    // customers.home_country
	BillingLabel             string    // customers.billing_label
	BillingStreet            string    // customers.billing_street
	BillingStreet2           string    // customers.billing_street2
	BillingPostalCode        string    // customers.billing_postal_code
	BillingCity              string    // customers.billing_city
	BillingCountry           string    // customers.billing_country
	UseHomeAddressForBilling bool      // customers.use_home_address_for_billing
	CreatedAt                time.Time // customers.created_at
	UpdatedAt                time.Time // customers.updated_at
}

// FullName returns the display name used on documents.
func (c *Customer) FullName() string {
	return c.FirstName + " " + c.LastName
}

// AddressKind states which of the customer's two addresses an invoice
// snapshot was taken from.
type AddressKind string

const (
	AddressKindHome    AddressKind = "home"    // customer's home address
	AddressKindBilling AddressKind = "billing" // dedicated billing address
)

// AddressSnapshot is the billing address captured at invoice issuance
// time.  It is persisted verbatim on the invoice row so later edits
// of the customer profile never alter an issued document.
type AddressSnapshot struct {
	Kind       AddressKind // which address the snapshot was taken from
	Label      string      // recipient label (full name or company)
	Street     string      // street line
	Street2    string      // optional second street line
	PostalCode string      // postal code
	City       string      // city
	Country    string      // country
}

// Lines renders the snapshot as the ordered lines printed on an
// invoice, skipping empty optional parts.
func (a AddressSnapshot) Lines() []string {
	lines := make([]string, 0, 4)
	if a.Label != "" {
		lines = append(lines, a.Label)
	}
	lines = append(lines, a.Street)
	if a.Street2 != "" {
		lines = append(lines, a.Street2)
	}
	locality := a.PostalCode + " " + a.City
	if a.Country != "" {
		locality += ", " + a.Country
	}
	lines = append(lines, locality)
	return lines
}
