package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/avassel/stagebook/internal/model"
)

// ReservationRepo provides CRUD operations for reservations.  All
// mutating methods take an explicit *sql.Tx: a reservation row never
// changes outside the transaction that also adjusts the session's
// seat counter, so a crash between the two cannot leave orphaned
// state.  The caller commits or rolls back.
type ReservationRepo struct {
	db *sql.DB
}

// NewReservationRepo returns a new ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

const reservationColumns = `id, customer_id, session_id, status, stage_type,
	   payment_method, capacity_token, booked_at, paid_at, cancelled_at`

// CreateTx inserts a new reservation within the scope of an existing
// transaction and populates the generated ID and booking timestamp.
// A duplicate (customer, session) pair among non-cancelled rows
// violates the partial unique index and is mapped to
// model.ErrDuplicateReservation.
func (r *ReservationRepo) CreateTx(ctx context.Context, tx *sql.Tx, res *model.Reservation) error {
	const q = `INSERT INTO reservations
		(customer_id, session_id, status, stage_type, payment_method, capacity_token, active_pair)
		VALUES (?, ?, ?, ?, ?, ?, CONCAT(?, ':', ?))`
	result, err := tx.ExecContext(ctx, q,
		res.CustomerID, res.SessionID, res.Status, res.StageType,
		res.PaymentMethod, res.CapacityToken, res.CustomerID, res.SessionID,
	)
	if err != nil {
		if isDuplicateKey(err) {
			return model.ErrDuplicateReservation
		}
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	res.ID = uint64(id)
	const sel = `SELECT booked_at FROM reservations WHERE id = ?`
	return tx.QueryRowContext(ctx, sel, res.ID).Scan(&res.BookedAt)
}

// GetByID loads a reservation outside any transaction.
func (r *ReservationRepo) GetByID(ctx context.Context, id uint64) (*model.Reservation, error) {
	return scanReservation(r.db.QueryRowContext(ctx,
		`SELECT `+reservationColumns+` FROM reservations WHERE id = ?`, id))
}

// GetForUpdateTx loads a reservation with a row lock inside the
// caller's transaction.  State transitions read through this method
// so two concurrent confirmations or cancellations serialize on the
// row instead of racing.
func (r *ReservationRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Reservation, error) {
	return scanReservation(tx.QueryRowContext(ctx,
		`SELECT `+reservationColumns+` FROM reservations WHERE id = ? FOR UPDATE`, id))
}

// HasActiveTx reports whether the customer already holds a
// non-cancelled reservation for the session.  It runs inside the
// booking transaction so the check and the insert cannot be split by
// a concurrent request.
func (r *ReservationRepo) HasActiveTx(ctx context.Context, tx *sql.Tx, customerID, sessionID uint64) (bool, error) {
	const q = `SELECT 1 FROM reservations
			   WHERE customer_id = ? AND session_id = ? AND status <> 'CANCELLED' LIMIT 1`
	var one int
	err := tx.QueryRowContext(ctx, q, customerID, sessionID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// MarkPaidTx transitions the reservation to PAID and stamps paid_at.
func (r *ReservationRepo) MarkPaidTx(ctx context.Context, tx *sql.Tx, id uint64, at time.Time) error {
	const q = `UPDATE reservations SET status = 'PAID', paid_at = ? WHERE id = ?`
	_, err := tx.ExecContext(ctx, q, at, id)
	return err
}

// MarkCancelledTx transitions the reservation to CANCELLED, stamps
// cancelled_at and clears active_pair so the (customer, session)
// slot opens up for a new booking.
func (r *ReservationRepo) MarkCancelledTx(ctx context.Context, tx *sql.Tx, id uint64, at time.Time) error {
	const q = `UPDATE reservations SET status = 'CANCELLED', cancelled_at = ?, active_pair = NULL WHERE id = ?`
	_, err := tx.ExecContext(ctx, q, at, id)
	return err
}

// MoveToSessionTx repoints the reservation at a different session and
// records the capacity token minted for the target seat.  The seat
// counters of both sessions are adjusted by the caller inside the
// same transaction.
func (r *ReservationRepo) MoveToSessionTx(ctx context.Context, tx *sql.Tx, id, sessionID uint64, token string) error {
	const q = `UPDATE reservations
			   SET session_id = ?, capacity_token = ?, active_pair = CONCAT(customer_id, ':', ?)
			   WHERE id = ?`
	_, err := tx.ExecContext(ctx, q, sessionID, token, sessionID, id)
	if err != nil && isDuplicateKey(err) {
		return model.ErrDuplicateReservation
	}
	return err
}

func scanReservation(row rowScanner) (*model.Reservation, error) {
	var res model.Reservation
	var paidAt, cancelledAt sql.NullTime
	err := row.Scan(
		&res.ID, &res.CustomerID, &res.SessionID, &res.Status, &res.StageType,
		&res.PaymentMethod, &res.CapacityToken, &res.BookedAt, &paidAt, &cancelledAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if paidAt.Valid {
		t := paidAt.Time
		res.PaidAt = &t
	}
	if cancelledAt.Valid {
		t := cancelledAt.Time
		res.CancelledAt = &t
	}
	return &res, nil
}

// isDuplicateKey reports whether err is a MySQL duplicate-entry
// violation (error 1062).
func isDuplicateKey(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == 1062
}
