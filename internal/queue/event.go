// Package queue defines the mail-dispatch events exchanged over the
// message broker, the publisher the workflow hands them to and the
// background consumer that forwards them to the mail collaborator.
package queue

// MailKind distinguishes the two outbound mails the core can request.
type MailKind string

const (
	// MailPaymentInstructions is sent right after a booking to tell
	// the customer how to pay.
	MailPaymentInstructions MailKind = "payment_instructions"
	// MailReservation is the operator-triggered mail carrying session
	// and invoice facts plus an optional custom message.
	MailReservation MailKind = "reservation"
)

// MailEvent is published on the mail.dispatch queue.  It carries
// every fact the mail collaborator needs so downstream never queries
// the primary database.
type MailEvent struct {
	Kind           MailKind `json:"kind"`
	ReservationID  uint64   `json:"reservation_id"`
	CustomerEmail  string   `json:"customer_email"`
	CustomerName   string   `json:"customer_name"`
	SessionNumber  string   `json:"session_number"`
	SessionCity    string   `json:"session_city"`
	SessionStart   string   `json:"session_start"`
	SessionEnd     string   `json:"session_end"`
	PaymentMethod  string   `json:"payment_method,omitempty"`
	AmountCents    uint32   `json:"amount_cents,omitempty"`
	InvoiceNumber  string   `json:"invoice_number,omitempty"`
	BillingAddress string   `json:"billing_address,omitempty"`
	CustomMessage  string   `json:"custom_message,omitempty"`
	RequestedAt    string   `json:"requested_at"`
}
