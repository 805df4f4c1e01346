// Package repository implements the persistence layer on MySQL.  Each
// table has its own repository; Store aggregates them behind the
// transactional handle the service layer is built against, so that a
// booking, its capacity decrement and its duplicate check always
// commit or roll back together.
package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/avassel/stagebook/internal/model"
	"github.com/avassel/stagebook/internal/service/ports"
)

// Store bundles the per-table repositories and owns transaction
// boundaries.  It implements ports.Store.
type Store struct {
	db           *sql.DB
	sessions     *SessionRepo
	customers    *CustomerRepo
	reservations *ReservationRepo
	invoices     *InvoiceRepo
}

var _ ports.Store = (*Store)(nil)

// NewStore constructs a Store and its repositories over one DB handle.
func NewStore(db *sql.DB) *Store {
	return &Store{
		db:           db,
		sessions:     NewSessionRepo(db),
		customers:    NewCustomerRepo(db),
		reservations: NewReservationRepo(db),
		invoices:     NewInvoiceRepo(db),
	}
}

// Sessions exposes the session repository for handlers that only
// need plain reads (listing, admin creation).
func (s *Store) Sessions() *SessionRepo { return s.sessions }

// InTx runs fn inside a single database transaction.  The
// transaction is rolled back unless fn returns nil and the commit
// succeeds, so a failure in any sub-step leaves no partial state.
func (s *Store) InTx(ctx context.Context, fn func(uow ports.UnitOfWork) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := fn(&TxUnit{tx: tx, store: s}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	committed = true
	return nil
}

// Session loads a session outside any transaction.
func (s *Store) Session(ctx context.Context, id uint64) (*model.Session, error) {
	return s.sessions.GetByID(ctx, id)
}

// Customer loads a customer outside any transaction.
func (s *Store) Customer(ctx context.Context, id uint64) (*model.Customer, error) {
	return s.customers.GetByID(ctx, id)
}

// Reservation loads a reservation outside any transaction.
func (s *Store) Reservation(ctx context.Context, id uint64) (*model.Reservation, error) {
	return s.reservations.GetByID(ctx, id)
}

// ActiveInvoice loads the reservation's non-void invoice outside any
// transaction.
func (s *Store) ActiveInvoice(ctx context.Context, reservationID uint64) (*model.Invoice, error) {
	return s.invoices.GetActiveByReservation(ctx, reservationID)
}

// TxUnit is the view of the store scoped to one open transaction.
// Every method runs on the same *sql.Tx, which is what gives the
// workflow its all-or-nothing semantics.
type TxUnit struct {
	tx    *sql.Tx
	store *Store
}

// ReserveSeat takes one seat on the session, failing with
// model.ErrCapacityExceeded when none remain.
func (u *TxUnit) ReserveSeat(ctx context.Context, sessionID uint64) (string, error) {
	return u.store.sessions.ReserveSeatTx(ctx, u.tx, sessionID)
}

// ReleaseSeat returns one seat to the session.
func (u *TxUnit) ReleaseSeat(ctx context.Context, sessionID uint64) error {
	return u.store.sessions.ReleaseSeatTx(ctx, u.tx, sessionID)
}

// Session loads a session inside the transaction.
func (u *TxUnit) Session(ctx context.Context, id uint64) (*model.Session, error) {
	return u.store.sessions.GetByIDTx(ctx, u.tx, id)
}

// Customer loads a customer inside the transaction.
func (u *TxUnit) Customer(ctx context.Context, id uint64) (*model.Customer, error) {
	return u.store.customers.GetByIDTx(ctx, u.tx, id)
}

// HasActiveReservation reports whether a non-cancelled reservation
// already exists for the pair.
func (u *TxUnit) HasActiveReservation(ctx context.Context, customerID, sessionID uint64) (bool, error) {
	return u.store.reservations.HasActiveTx(ctx, u.tx, customerID, sessionID)
}

// CreateReservation inserts the reservation row.
func (u *TxUnit) CreateReservation(ctx context.Context, res *model.Reservation) error {
	return u.store.reservations.CreateTx(ctx, u.tx, res)
}

// ReservationForUpdate loads the reservation with a row lock.
func (u *TxUnit) ReservationForUpdate(ctx context.Context, id uint64) (*model.Reservation, error) {
	return u.store.reservations.GetForUpdateTx(ctx, u.tx, id)
}

// MarkReservationPaid transitions the reservation to PAID.
func (u *TxUnit) MarkReservationPaid(ctx context.Context, id uint64, at time.Time) error {
	return u.store.reservations.MarkPaidTx(ctx, u.tx, id, at)
}

// MarkReservationCancelled transitions the reservation to CANCELLED.
func (u *TxUnit) MarkReservationCancelled(ctx context.Context, id uint64, at time.Time) error {
	return u.store.reservations.MarkCancelledTx(ctx, u.tx, id, at)
}

// MoveReservation repoints the reservation at a different session.
func (u *TxUnit) MoveReservation(ctx context.Context, id, sessionID uint64, token string) error {
	return u.store.reservations.MoveToSessionTx(ctx, u.tx, id, sessionID, token)
}

// ActiveInvoiceForUpdate loads the reservation's non-void invoice
// with a row lock.
func (u *TxUnit) ActiveInvoiceForUpdate(ctx context.Context, reservationID uint64) (*model.Invoice, error) {
	return u.store.invoices.GetActiveByReservationTx(ctx, u.tx, reservationID)
}

// NextInvoiceSequence allocates the next numbering suffix for the
// year/month pair.
func (u *TxUnit) NextInvoiceSequence(ctx context.Context, year, month int) (int64, error) {
	return u.store.invoices.NextSequenceTx(ctx, u.tx, year, month)
}

// CreateInvoice inserts a new invoice row.
func (u *TxUnit) CreateInvoice(ctx context.Context, inv *model.Invoice) error {
	return u.store.invoices.CreateTx(ctx, u.tx, inv)
}

// UpdateInvoice rewrites an existing invoice row in place.
func (u *TxUnit) UpdateInvoice(ctx context.Context, inv *model.Invoice) error {
	return u.store.invoices.UpdateTx(ctx, u.tx, inv)
}

// SetInvoiceStatus updates only the invoice status.
func (u *TxUnit) SetInvoiceStatus(ctx context.Context, id uint64, status model.InvoiceStatus) error {
	return u.store.invoices.SetStatusTx(ctx, u.tx, id, status)
}
