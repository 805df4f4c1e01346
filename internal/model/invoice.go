package model

import "time"

// InvoiceStatus tracks the lifecycle of an invoice after issuance.
// ISSUED invoices become SENT once the mail event has been published.
// VOID invoices are kept for audit but no longer count as the
// reservation's active invoice.
type InvoiceStatus string

const (
	InvoiceIssued InvoiceStatus = "ISSUED"
	InvoiceSent   InvoiceStatus = "SENT"
	InvoiceVoid   InvoiceStatus = "VOID"
)

// Invoice belongs to exactly one paid reservation.  The billing
// address in force at issuance time is snapshotted onto the row, so
// profile edits after the fact never rewrite an issued document.
// Re-issuing updates the row in place instead of inserting a
// duplicate.
//
// Fields:
//  ID            – primary key identifier.
//  ReservationID – the paid reservation being billed.
//  Number        – globally unique invoice number (PREFIX/YYYY/MM/NNNN).
//  AmountCents   – gross amount in cents.
//  NetCents      – net amount in cents.
//  TaxCents      – VAT amount in cents (AmountCents - NetCents).
//  Currency      – ISO currency code; fixed to EUR.
//  Status        – ISSUED, SENT or VOID.
//  Billing       – billing address snapshot taken at issuance.
//  IssuedAt      – issuance timestamp.
//  UpdatedAt     – last re-issue or status change.
type Invoice struct {
	ID            uint64          // invoices.id
	ReservationID uint64          // invoices.reservation_id
	Number        string          // invoices.number
	AmountCents   uint32          // invoices.amount_cents
	NetCents      uint32          // invoices.net_cents
	TaxCents      uint32          // invoices.tax_cents
	Currency      string          // invoices.currency
	Status        InvoiceStatus   // invoices.status
	Billing       AddressSnapshot // invoices.billing_* columns
	IssuedAt      time.Time       // invoices.issued_at
	UpdatedAt     time.Time       // invoices.updated_at
}
