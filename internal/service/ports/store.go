// Package ports declares the persistence interfaces the workflow
// services are written against.  The MySQL implementation lives in
// internal/repository; tests substitute in-memory fakes.
package ports

import (
	"context"
	"time"

	"github.com/avassel/stagebook/internal/model"
)

// Store is the injected persistence handle.  Reads that need no
// transactional guarantees go through the top-level getters; every
// mutation runs inside InTx so that capacity counters, reservation
// rows and invoices move together or not at all.
type Store interface {
	// InTx runs fn inside one transaction.  A non-nil error from fn
	// or from the commit rolls everything back.
	InTx(ctx context.Context, fn func(UnitOfWork) error) error

	Session(ctx context.Context, id uint64) (*model.Session, error)
	Customer(ctx context.Context, id uint64) (*model.Customer, error)
	Reservation(ctx context.Context, id uint64) (*model.Reservation, error)
	ActiveInvoice(ctx context.Context, reservationID uint64) (*model.Invoice, error)
}

// UnitOfWork is the store view scoped to one open transaction.
type UnitOfWork interface {
	// ReserveSeat atomically takes one seat, returning a capacity
	// token, or fails with model.ErrCapacityExceeded.
	ReserveSeat(ctx context.Context, sessionID uint64) (string, error)
	// ReleaseSeat returns one seat to the session.
	ReleaseSeat(ctx context.Context, sessionID uint64) error

	Session(ctx context.Context, id uint64) (*model.Session, error)
	Customer(ctx context.Context, id uint64) (*model.Customer, error)

	HasActiveReservation(ctx context.Context, customerID, sessionID uint64) (bool, error)
	CreateReservation(ctx context.Context, res *model.Reservation) error
	ReservationForUpdate(ctx context.Context, id uint64) (*model.Reservation, error)
	MarkReservationPaid(ctx context.Context, id uint64, at time.Time) error
	MarkReservationCancelled(ctx context.Context, id uint64, at time.Time) error
	MoveReservation(ctx context.Context, id, sessionID uint64, token string) error

	ActiveInvoiceForUpdate(ctx context.Context, reservationID uint64) (*model.Invoice, error)
	NextInvoiceSequence(ctx context.Context, year, month int) (int64, error)
	CreateInvoice(ctx context.Context, inv *model.Invoice) error
	UpdateInvoice(ctx context.Context, inv *model.Invoice) error
	SetInvoiceStatus(ctx context.Context, id uint64, status model.InvoiceStatus) error
}

// Notifier publishes outbound notifications.  Implementations must be
// safe to call after the enclosing transaction committed and must
// never be awaited inside one; failures are reported to the caller as
// warnings, not rolled into the primary result.
type Notifier interface {
	// PaymentInstructions tells the customer how to pay for a fresh
	// reservation.
	PaymentInstructions(ctx context.Context, res *model.Reservation, cust *model.Customer, sess *model.Session) error
	// ReservationMail sends session/invoice facts plus an optional
	// operator message to the customer.
	ReservationMail(ctx context.Context, res *model.Reservation, cust *model.Customer, sess *model.Session, inv *model.Invoice, customMessage string) error
}
