package model

import "time"

// Session represents a scheduled occurrence of the safety-training
// course.  Capacity is tracked with a pair of counters: TotalSeats is
// fixed by the administrator while RemainingSeats is mutated only by
// the capacity ledger (decrement on booking, increment on
// cancellation or transfer).  The invariant 0 <= RemainingSeats <=
// TotalSeats is enforced by the ledger SQL.
//
// Fields:
//  ID             – primary key identifier.
//  Number         – human-readable session number (e.g. "2026-014").
//  Title          – course title shown on documents.
//  Street         – street line of the venue address.
//  PostalCode     – postal code of the venue.
//  City           – city of the venue.
//  StartDate      – first day of the session.
//  EndDate        – last day of the session.
//  MorningStart   – start of the morning window ("08:30").
//  MorningEnd     – end of the morning window.
//  AfternoonStart – start of the afternoon window.
//  AfternoonEnd   – end of the afternoon window.
//  PriceCents     – gross price in cents for one seat.
//  TotalSeats     – seat capacity of the session.
//  RemainingSeats – seats still available for booking.
//  Agreement      – optional regulatory agreement reference.
//  CreatedAt      – creation timestamp.
//  UpdatedAt      – last update timestamp.
type Session struct {
	ID             uint64     // sessions.id
	Number         string     // sessions.session_number
	Title          string     // sessions.title
	Street         string     // sessions.street
	PostalCode     string     // sessions.postal_code
	City           string     // sessions.city
	StartDate      time.Time  // sessions.start_date
	EndDate        time.Time  // sessions.end_date
	MorningStart   string     // sessions.morning_start
	MorningEnd     string     // sessions.morning_end
	AfternoonStart string     // sessions.afternoon_start
	AfternoonEnd   string     // sessions.afternoon_end
	PriceCents     uint32     // sessions.price_cents
	TotalSeats     uint32     // sessions.total_seats
	RemainingSeats uint32     // sessions.remaining_seats
	Agreement      *Agreement // sessions.agreement_* (nullable)
	CreatedAt      time.Time  // sessions.created_at
	UpdatedAt      time.Time  // sessions.updated_at
}

// Agreement references the regulatory approval under which a session
// is run.  Sessions without an approval carry a nil Agreement and the
// convocation omits the agreement line.
type Agreement struct {
	DepartmentCode string  // sessions.agreement_department_code
	Number         string  // sessions.agreement_number
	DepartmentName *string // sessions.agreement_department_name (nullable)
}
