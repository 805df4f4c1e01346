// Package service implements the reservation workflow, the billing
// address resolver and the invoice issuer.  Services are written
// against the ports interfaces so transaction boundaries stay
// deterministic and tests can substitute in-memory stores.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/avassel/stagebook/internal/model"
	"github.com/avassel/stagebook/internal/service/ports"
)

// ReservationWorkflow orchestrates the booking state machine.  Every
// mutation runs inside one store transaction together with the seat
// counter it affects; notifications go out only after the commit and
// never block or undo it.
type ReservationWorkflow struct {
	store    ports.Store
	notifier ports.Notifier
	log      *zap.Logger
}

// NewReservationWorkflow wires the workflow with its store and
// notifier.  notifier may be nil, in which case no notifications are
// attempted.
func NewReservationWorkflow(store ports.Store, notifier ports.Notifier, log *zap.Logger) *ReservationWorkflow {
	if store == nil {
		panic("nil store passed to NewReservationWorkflow")
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &ReservationWorkflow{store: store, notifier: notifier, log: log}
}

// BookingResult is returned by Create.  NotifyWarning carries the
// secondary "reservation created, but the notification failed"
// condition; the reservation itself committed either way.
type BookingResult struct {
	Reservation   *model.Reservation
	NotifyWarning string
}

// Create books one seat for the customer on the session.  The
// duplicate check, the seat decrement and the reservation insert run
// in one transaction, so for a session with N remaining seats at most
// N concurrent calls can succeed and the loser of a last-seat race
// observes model.ErrCapacityExceeded.  On success a
// payment-instructions notification is dispatched outside the
// transaction.
func (w *ReservationWorkflow) Create(ctx context.Context, customerID, sessionID uint64, stageType model.StageType, method model.PaymentMethod) (*BookingResult, error) {
	if !stageType.Valid() {
		return nil, &model.ValidationError{Field: "stage_type", Reason: "must be between 1 and 4"}
	}
	if method == "" {
		return nil, &model.ValidationError{Field: "payment_method", Reason: "is required"}
	}

	var (
		res  *model.Reservation
		cust *model.Customer
		sess *model.Session
	)
	err := w.store.InTx(ctx, func(uow ports.UnitOfWork) error {
		var err error
		cust, err = uow.Customer(ctx, customerID)
		if err != nil {
			return fmt.Errorf("load customer: %w", err)
		}
		exists, err := uow.HasActiveReservation(ctx, customerID, sessionID)
		if err != nil {
			return fmt.Errorf("duplicate check: %w", err)
		}
		if exists {
			return model.ErrDuplicateReservation
		}
		token, err := uow.ReserveSeat(ctx, sessionID)
		if err != nil {
			return err
		}
		sess, err = uow.Session(ctx, sessionID)
		if err != nil {
			return fmt.Errorf("load session: %w", err)
		}
		res = &model.Reservation{
			CustomerID:    customerID,
			SessionID:     sessionID,
			Status:        model.ReservationPending,
			StageType:     stageType,
			PaymentMethod: method,
			CapacityToken: token,
		}
		return uow.CreateReservation(ctx, res)
	})
	if err != nil {
		return nil, err
	}

	w.log.Info("reservation created",
		zap.Uint64("reservation_id", res.ID),
		zap.Uint64("customer_id", customerID),
		zap.Uint64("session_id", sessionID),
		zap.Uint8("stage_type", uint8(stageType)),
	)

	result := &BookingResult{Reservation: res}
	if w.notifier != nil {
		if err := w.notifier.PaymentInstructions(ctx, res, cust, sess); err != nil {
			w.log.Warn("payment instructions notification failed",
				zap.Uint64("reservation_id", res.ID), zap.Error(err))
			result.NotifyWarning = "reservation created, but the payment instructions email could not be sent"
		}
	}
	return result, nil
}

// ConfirmPayment marks the reservation paid.  The operation is
// idempotent: confirming an already paid reservation changes nothing
// and triggers no second downstream effect.  Confirming a cancelled
// reservation fails the precondition.
func (w *ReservationWorkflow) ConfirmPayment(ctx context.Context, reservationID uint64) (*model.Reservation, error) {
	var res *model.Reservation
	err := w.store.InTx(ctx, func(uow ports.UnitOfWork) error {
		var err error
		res, err = uow.ReservationForUpdate(ctx, reservationID)
		if err != nil {
			return err
		}
		switch res.Status {
		case model.ReservationPaid:
			return nil // already confirmed, nothing left to do
		case model.ReservationCancelled:
			return fmt.Errorf("%w: reservation is cancelled", model.ErrPrecondition)
		}
		now := time.Now().UTC()
		if err := uow.MarkReservationPaid(ctx, reservationID, now); err != nil {
			return err
		}
		res.Status = model.ReservationPaid
		res.PaidAt = &now
		return nil
	})
	if err != nil {
		return nil, err
	}
	w.log.Info("payment confirmed", zap.Uint64("reservation_id", reservationID))
	return res, nil
}

// Cancel moves a pending or paid reservation to the terminal
// CANCELLED state and returns its seat to the session.  While a
// non-void invoice exists the cancellation is rejected with
// ErrInvoiceOutstanding; the operator must void the invoice first.
func (w *ReservationWorkflow) Cancel(ctx context.Context, reservationID uint64) (*model.Reservation, error) {
	var res *model.Reservation
	err := w.store.InTx(ctx, func(uow ports.UnitOfWork) error {
		var err error
		res, err = uow.ReservationForUpdate(ctx, reservationID)
		if err != nil {
			return err
		}
		if res.Status == model.ReservationCancelled {
			return fmt.Errorf("%w: reservation is already cancelled", model.ErrPrecondition)
		}
		if _, err := uow.ActiveInvoiceForUpdate(ctx, reservationID); err == nil {
			return model.ErrInvoiceOutstanding
		} else if !isNotFound(err) {
			return err
		}
		if err := uow.ReleaseSeat(ctx, res.SessionID); err != nil {
			return err
		}
		now := time.Now().UTC()
		if err := uow.MarkReservationCancelled(ctx, reservationID, now); err != nil {
			return err
		}
		res.Status = model.ReservationCancelled
		res.CancelledAt = &now
		return nil
	})
	if err != nil {
		return nil, err
	}
	w.log.Info("reservation cancelled", zap.Uint64("reservation_id", reservationID))
	return res, nil
}

// Transfer moves a pending or paid reservation to another session.
// Releasing the old seat, reserving the new one and repointing the
// reservation happen in a single transaction; a full target session
// fails the reserve and rolls the release back, leaving the original
// booking untouched with no capacity leak.
func (w *ReservationWorkflow) Transfer(ctx context.Context, reservationID, newSessionID uint64) (*model.Reservation, error) {
	var res *model.Reservation
	err := w.store.InTx(ctx, func(uow ports.UnitOfWork) error {
		var err error
		res, err = uow.ReservationForUpdate(ctx, reservationID)
		if err != nil {
			return err
		}
		if res.Status == model.ReservationCancelled {
			return fmt.Errorf("%w: reservation is cancelled", model.ErrPrecondition)
		}
		if res.SessionID == newSessionID {
			return nil // nothing to move
		}
		if err := uow.ReleaseSeat(ctx, res.SessionID); err != nil {
			return err
		}
		token, err := uow.ReserveSeat(ctx, newSessionID)
		if err != nil {
			return err
		}
		if err := uow.MoveReservation(ctx, reservationID, newSessionID, token); err != nil {
			return err
		}
		res.SessionID = newSessionID
		res.CapacityToken = token
		return nil
	})
	if err != nil {
		return nil, err
	}
	w.log.Info("reservation transferred",
		zap.Uint64("reservation_id", reservationID),
		zap.Uint64("session_id", newSessionID),
	)
	return res, nil
}

// SendReservationMail gathers session, customer and invoice facts and
// hands them to the notifier together with the operator's optional
// message.  When a sent invoice exists it is marked SENT afterwards.
func (w *ReservationWorkflow) SendReservationMail(ctx context.Context, reservationID uint64, customMessage string) error {
	if w.notifier == nil {
		return fmt.Errorf("%w: no notifier configured", model.ErrPrecondition)
	}
	res, err := w.store.Reservation(ctx, reservationID)
	if err != nil {
		return err
	}
	cust, err := w.store.Customer(ctx, res.CustomerID)
	if err != nil {
		return fmt.Errorf("load customer: %w", err)
	}
	sess, err := w.store.Session(ctx, res.SessionID)
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}
	inv, err := w.store.ActiveInvoice(ctx, reservationID)
	if err != nil && !isNotFound(err) {
		return err
	}
	if err := w.notifier.ReservationMail(ctx, res, cust, sess, inv, customMessage); err != nil {
		return fmt.Errorf("publish mail event: %w", err)
	}
	if inv != nil && inv.Status == model.InvoiceIssued {
		err := w.store.InTx(ctx, func(uow ports.UnitOfWork) error {
			return uow.SetInvoiceStatus(ctx, inv.ID, model.InvoiceSent)
		})
		if err != nil {
			w.log.Warn("failed to mark invoice sent",
				zap.Uint64("invoice_id", inv.ID), zap.Error(err))
		}
	}
	return nil
}

func isNotFound(err error) bool {
	return errors.Is(err, model.ErrNotFound)
}
