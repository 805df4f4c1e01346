package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/avassel/stagebook/internal/model"
)

// CustomerRepo provides read access to customer profiles.  Profile
// editing is an administrative concern that lives outside this core;
// the workflow only needs to load identities and addresses.
type CustomerRepo struct {
	db *sql.DB
}

// NewCustomerRepo returns a new CustomerRepo bound to the given database.
func NewCustomerRepo(db *sql.DB) *CustomerRepo { return &CustomerRepo{db: db} }

const customerColumns = `id, first_name, last_name, email,
	   home_street, home_street2, home_postal_code, home_city, home_country,
	   billing_label, billing_street, billing_street2, billing_postal_code, billing_city, billing_country,
	   use_home_address_for_billing, created_at, updated_at`

// GetByID loads a customer.  model.ErrNotFound is returned when no
// row exists.
func (r *CustomerRepo) GetByID(ctx context.Context, id uint64) (*model.Customer, error) {
	return scanCustomer(r.db.QueryRowContext(ctx, `SELECT `+customerColumns+` FROM customers WHERE id = ?`, id))
}

// GetByIDTx is GetByID within the scope of an existing transaction.
func (r *CustomerRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Customer, error) {
	return scanCustomer(tx.QueryRowContext(ctx, `SELECT `+customerColumns+` FROM customers WHERE id = ?`, id))
}

func scanCustomer(row rowScanner) (*model.Customer, error) {
	var c model.Customer
	var homeStreet2, billLabel, billStreet, billStreet2, billPostal, billCity, billCountry sql.NullString
	err := row.Scan(
		&c.ID, &c.FirstName, &c.LastName, &c.Email,
		&c.HomeStreet, &homeStreet2, &c.HomePostalCode, &c.HomeCity, &c.HomeCountry,
		&billLabel, &billStreet, &billStreet2, &billPostal, &billCity, &billCountry,
		&c.UseHomeAddressForBilling, &c.CreatedAt, &c.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	c.HomeStreet2 = homeStreet2.String
	c.BillingLabel = billLabel.String
	c.BillingStreet = billStreet.String
	c.BillingStreet2 = billStreet2.String
	c.BillingPostalCode = billPostal.String
	c.BillingCity = billCity.String
	c.BillingCountry = billCountry.String
	return &c, nil
}
