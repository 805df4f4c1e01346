package repository // repository for session persistence and the capacity ledger

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/avassel/stagebook/internal/model"
)

// SessionRepo encapsulates database operations for sessions,
// including the capacity ledger.  Seat counters are only ever touched
// through guarded single-row UPDATEs so that two concurrent bookings
// for the last seat cannot both succeed: the loser sees zero rows
// affected and the enclosing transaction is rolled back.
type SessionRepo struct {
	db *sql.DB
}

// NewSessionRepo constructs a SessionRepo given a DB handle.
func NewSessionRepo(db *sql.DB) *SessionRepo { return &SessionRepo{db: db} }

// DB exposes the underlying handle so callers can begin transactions
// spanning several repositories.
func (r *SessionRepo) DB() *sql.DB { return r.db }

const sessionColumns = `id, session_number, title, street, postal_code, city,
	   start_date, end_date, morning_start, morning_end, afternoon_start, afternoon_end,
	   price_cents, total_seats, remaining_seats,
	   agreement_department_code, agreement_number, agreement_department_name,
	   created_at, updated_at`

// Create inserts a new session and populates the generated ID.  The
// remaining seat counter starts at full capacity.
func (r *SessionRepo) Create(ctx context.Context, s *model.Session) error {
	const q = `INSERT INTO sessions
		(session_number, title, street, postal_code, city,
		 start_date, end_date, morning_start, morning_end, afternoon_start, afternoon_end,
		 price_cents, total_seats, remaining_seats,
		 agreement_department_code, agreement_number, agreement_department_name)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	var deptCode, agrNumber, deptName interface{}
	if s.Agreement != nil {
		deptCode = s.Agreement.DepartmentCode
		agrNumber = s.Agreement.Number
		if s.Agreement.DepartmentName != nil {
			deptName = *s.Agreement.DepartmentName
		}
	}
	result, err := r.db.ExecContext(ctx, q,
		s.Number, s.Title, s.Street, s.PostalCode, s.City,
		s.StartDate, s.EndDate, s.MorningStart, s.MorningEnd, s.AfternoonStart, s.AfternoonEnd,
		s.PriceCents, s.TotalSeats, s.TotalSeats,
		deptCode, agrNumber, deptName,
	)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = uint64(id)
	s.RemainingSeats = s.TotalSeats
	return nil
}

// GetByID loads a session outside any transaction.  model.ErrNotFound
// is returned when the row does not exist.
func (r *SessionRepo) GetByID(ctx context.Context, id uint64) (*model.Session, error) {
	return scanSession(r.db.QueryRowContext(ctx, `SELECT `+sessionColumns+` FROM sessions WHERE id = ?`, id))
}

// GetByIDTx is GetByID within the scope of an existing transaction.
func (r *SessionRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Session, error) {
	return scanSession(tx.QueryRowContext(ctx, `SELECT `+sessionColumns+` FROM sessions WHERE id = ?`, id))
}

// List returns all sessions ordered by start date ascending.  It
// backs the public listing endpoint and is served through the
// response cache.
func (r *SessionRepo) List(ctx context.Context) ([]model.Session, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+sessionColumns+` FROM sessions ORDER BY start_date ASC, id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	sessions := make([]model.Session, 0)
	for rows.Next() {
		s, err := scanSessionRows(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return sessions, nil
}

// ReserveSeatTx atomically takes one seat on the session inside the
// caller's transaction.  The UPDATE is guarded by remaining_seats > 0
// so the counter can never go negative.  On success it returns a
// fresh capacity token which the caller stores on the reservation
// row it inserts in the same transaction.
func (r *SessionRepo) ReserveSeatTx(ctx context.Context, tx *sql.Tx, sessionID uint64) (string, error) {
	const q = `UPDATE sessions SET remaining_seats = remaining_seats - 1
			   WHERE id = ? AND remaining_seats > 0`
	result, err := tx.ExecContext(ctx, q, sessionID)
	if err != nil {
		return "", err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return "", err
	}
	if n == 0 {
		// Either the session is full or it does not exist; a second
		// lookup inside the same transaction tells the two apart.
		var exists bool
		err := tx.QueryRowContext(ctx, `SELECT 1 FROM sessions WHERE id = ?`, sessionID).Scan(&exists)
		if errors.Is(err, sql.ErrNoRows) {
			return "", model.ErrNotFound
		}
		if err != nil {
			return "", err
		}
		return "", model.ErrCapacityExceeded
	}
	return uuid.NewString(), nil
}

// ReleaseSeatTx returns one seat to the session inside the caller's
// transaction.  The guard remaining_seats < total_seats keeps the
// counter within capacity even if a release is replayed.
func (r *SessionRepo) ReleaseSeatTx(ctx context.Context, tx *sql.Tx, sessionID uint64) error {
	const q = `UPDATE sessions SET remaining_seats = remaining_seats + 1
			   WHERE id = ? AND remaining_seats < total_seats`
	result, err := tx.ExecContext(ctx, q, sessionID)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		var exists bool
		err := tx.QueryRowContext(ctx, `SELECT 1 FROM sessions WHERE id = ?`, sessionID).Scan(&exists)
		if errors.Is(err, sql.ErrNoRows) {
			return model.ErrNotFound
		}
		if err != nil {
			return err
		}
		// Counter already at capacity; treat the release as a no-op.
		return nil
	}
	return nil
}

// rowScanner abstracts *sql.Row and *sql.Rows for the shared scan code.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSession(row rowScanner) (*model.Session, error) {
	s, err := scanSessionRows(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrNotFound
	}
	return s, err
}

func scanSessionRows(row rowScanner) (*model.Session, error) {
	var s model.Session
	var deptCode, agrNumber, deptName sql.NullString
	err := row.Scan(
		&s.ID, &s.Number, &s.Title, &s.Street, &s.PostalCode, &s.City,
		&s.StartDate, &s.EndDate, &s.MorningStart, &s.MorningEnd, &s.AfternoonStart, &s.AfternoonEnd,
		&s.PriceCents, &s.TotalSeats, &s.RemainingSeats,
		&deptCode, &agrNumber, &deptName,
		&s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if deptCode.Valid && agrNumber.Valid {
		agr := &model.Agreement{DepartmentCode: deptCode.String, Number: agrNumber.String}
		if deptName.Valid {
			name := deptName.String
			agr.DepartmentName = &name
		}
		s.Agreement = agr
	}
	return &s, nil
}
