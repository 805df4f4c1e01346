package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/avassel/stagebook/internal/model"
)

// InvoiceRepo persists invoices and the per-month numbering
// sequences.  An invoice row is written at most once per reservation;
// re-issuing updates the existing row.  Numbering draws from the
// invoice_sequences table so two issuances in the same clock tick
// still obtain distinct suffixes.
type InvoiceRepo struct {
	db *sql.DB
}

// NewInvoiceRepo returns a new InvoiceRepo bound to the given database.
func NewInvoiceRepo(db *sql.DB) *InvoiceRepo { return &InvoiceRepo{db: db} }

const invoiceColumns = `id, reservation_id, number, amount_cents, net_cents, tax_cents,
	   currency, status, billing_kind, billing_label, billing_street, billing_street2,
	   billing_postal_code, billing_city, billing_country, issued_at, updated_at`

// NextSequenceTx allocates the next suffix for the given year/month
// inside the caller's transaction.  The single-statement upsert makes
// the counter safe under concurrent issuance: MySQL reports one
// affected row for a fresh month (sequence starts at 1) and two for
// an increment, in which case LAST_INSERT_ID carries the new value.
func (r *InvoiceRepo) NextSequenceTx(ctx context.Context, tx *sql.Tx, year, month int) (int64, error) {
	const q = `INSERT INTO invoice_sequences (year, month, last_value) VALUES (?, ?, 1)
			   ON DUPLICATE KEY UPDATE last_value = LAST_INSERT_ID(last_value + 1)`
	result, err := tx.ExecContext(ctx, q, year, month)
	if err != nil {
		return 0, err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	if n == 1 {
		return 1, nil
	}
	return result.LastInsertId()
}

// GetActiveByReservationTx loads the reservation's non-void invoice
// with a row lock.  model.ErrNotFound is returned when the
// reservation has no active invoice.
func (r *InvoiceRepo) GetActiveByReservationTx(ctx context.Context, tx *sql.Tx, reservationID uint64) (*model.Invoice, error) {
	const q = `SELECT ` + invoiceColumns + ` FROM invoices
			   WHERE reservation_id = ? AND status <> 'VOID' FOR UPDATE`
	return scanInvoice(tx.QueryRowContext(ctx, q, reservationID))
}

// GetActiveByReservation is the lock-free variant used by read paths
// such as document download and mail dispatch.
func (r *InvoiceRepo) GetActiveByReservation(ctx context.Context, reservationID uint64) (*model.Invoice, error) {
	const q = `SELECT ` + invoiceColumns + ` FROM invoices
			   WHERE reservation_id = ? AND status <> 'VOID'`
	return scanInvoice(r.db.QueryRowContext(ctx, q, reservationID))
}

// CreateTx inserts a new invoice and populates the generated ID and
// timestamps.
func (r *InvoiceRepo) CreateTx(ctx context.Context, tx *sql.Tx, inv *model.Invoice) error {
	const q = `INSERT INTO invoices
		(reservation_id, number, amount_cents, net_cents, tax_cents, currency, status,
		 billing_kind, billing_label, billing_street, billing_street2,
		 billing_postal_code, billing_city, billing_country)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	result, err := tx.ExecContext(ctx, q,
		inv.ReservationID, inv.Number, inv.AmountCents, inv.NetCents, inv.TaxCents,
		inv.Currency, inv.Status,
		inv.Billing.Kind, inv.Billing.Label, inv.Billing.Street, inv.Billing.Street2,
		inv.Billing.PostalCode, inv.Billing.City, inv.Billing.Country,
	)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	inv.ID = uint64(id)
	const sel = `SELECT issued_at, updated_at FROM invoices WHERE id = ?`
	return tx.QueryRowContext(ctx, sel, inv.ID).Scan(&inv.IssuedAt, &inv.UpdatedAt)
}

// UpdateTx rewrites an existing invoice in place.  Used by the
// re-issue path: amounts, number and the billing snapshot may change,
// the row identity does not.
func (r *InvoiceRepo) UpdateTx(ctx context.Context, tx *sql.Tx, inv *model.Invoice) error {
	const q = `UPDATE invoices SET number = ?, amount_cents = ?, net_cents = ?, tax_cents = ?,
			   status = ?, billing_kind = ?, billing_label = ?, billing_street = ?,
			   billing_street2 = ?, billing_postal_code = ?, billing_city = ?, billing_country = ?
			   WHERE id = ?`
	_, err := tx.ExecContext(ctx, q,
		inv.Number, inv.AmountCents, inv.NetCents, inv.TaxCents, inv.Status,
		inv.Billing.Kind, inv.Billing.Label, inv.Billing.Street, inv.Billing.Street2,
		inv.Billing.PostalCode, inv.Billing.City, inv.Billing.Country,
		inv.ID,
	)
	return err
}

// SetStatusTx updates only the invoice status (SENT on mail
// dispatch, VOID on explicit voiding).
func (r *InvoiceRepo) SetStatusTx(ctx context.Context, tx *sql.Tx, id uint64, status model.InvoiceStatus) error {
	const q = `UPDATE invoices SET status = ? WHERE id = ?`
	_, err := tx.ExecContext(ctx, q, status, id)
	return err
}

func scanInvoice(row rowScanner) (*model.Invoice, error) {
	var inv model.Invoice
	var label, street2, country sql.NullString
	err := row.Scan(
		&inv.ID, &inv.ReservationID, &inv.Number, &inv.AmountCents, &inv.NetCents, &inv.TaxCents,
		&inv.Currency, &inv.Status, &inv.Billing.Kind, &label, &inv.Billing.Street, &street2,
		&inv.Billing.PostalCode, &inv.Billing.City, &country, &inv.IssuedAt, &inv.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	inv.Billing.Label = label.String
	inv.Billing.Street2 = street2.String
	inv.Billing.Country = country.String
	return &inv, nil
}
