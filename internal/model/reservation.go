package model

import "time"

// ReservationStatus enumerates the states of the booking state
// machine.  A reservation starts PENDING, becomes PAID when the
// payment processor confirms, and ends CANCELLED.  CANCELLED is
// terminal.
type ReservationStatus string

const (
	ReservationPending   ReservationStatus = "PENDING"
	ReservationPaid      ReservationStatus = "PAID"
	ReservationCancelled ReservationStatus = "CANCELLED"
)

// StageType is the regulatory category under which a trainee attends
// a session.  The four categories determine which required-documents
// box and which legal paragraph apply on the convocation.
type StageType uint8

const (
	StageVoluntary    StageType = 1 // case 1: voluntary attendance
	StageProbationary StageType = 2 // case 2: probationary permit (referral letter)
	StageProsecution  StageType = 3 // case 3: alternative to prosecution
	StageCourtOrdered StageType = 4 // case 4: complementary sentence
)

// Valid reports whether t is one of the four regulatory categories.
func (t StageType) Valid() bool { return t >= StageVoluntary && t <= StageCourtOrdered }

// PaymentMethod is the settlement channel chosen at booking time.
// The workflow only records it; settlement itself happens at the
// external payment processor.
type PaymentMethod string

const (
	PaymentCard     PaymentMethod = "CARD"
	PaymentCheque   PaymentMethod = "CHEQUE"
	PaymentTransfer PaymentMethod = "TRANSFER"
)

// Reservation is one customer's claim on one seat in one session.
// At most one non-cancelled reservation may exist per (customer,
// session) pair; the store enforces this with a unique index scoped
// to non-cancelled rows.
//
// Fields:
//  ID            – primary key identifier.
//  CustomerID    – customer holding the seat.
//  SessionID     – session the seat belongs to.
//  Status        – PENDING, PAID or CANCELLED.
//  StageType     – regulatory category (1..4).
//  PaymentMethod – settlement channel recorded at booking.
//  CapacityToken – token minted by the ledger when the seat was taken.
//  BookedAt      – booking timestamp.
//  PaidAt        – when payment was confirmed (nullable).
//  CancelledAt   – when the reservation was cancelled (nullable).
type Reservation struct {
	ID            uint64            // reservations.id
	CustomerID    uint64            // reservations.customer_id
	SessionID     uint64            // reservations.session_id
	Status        ReservationStatus // reservations.status
	StageType     StageType         // reservations.stage_type
	PaymentMethod PaymentMethod     // reservations.payment_method
	CapacityToken string            // reservations.capacity_token
	BookedAt      time.Time         // reservations.booked_at
	PaidAt        *time.Time        // reservations.paid_at (nullable)
	CancelledAt   *time.Time        // reservations.cancelled_at (nullable)
}
