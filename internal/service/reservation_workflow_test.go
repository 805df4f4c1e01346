package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avassel/stagebook/internal/model"
)

func seedSession(t *testing.T, store *memStore, id uint64, seats uint32) *model.Session {
	t.Helper()
	return store.addSession(model.Session{
		ID:             id,
		Number:         "2026-014",
		Title:          "Road safety awareness course",
		Street:         "12 rue des Lilas",
		PostalCode:     "69003",
		City:           "Lyon",
		StartDate:      time.Date(2026, 10, 5, 0, 0, 0, 0, time.UTC),
		EndDate:        time.Date(2026, 10, 6, 0, 0, 0, 0, time.UTC),
		MorningStart:   "08:30",
		MorningEnd:     "12:30",
		AfternoonStart: "13:30",
		AfternoonEnd:   "17:30",
		PriceCents:     23000,
		TotalSeats:     seats,
		RemainingSeats: seats,
	})
}

func seedCustomer(t *testing.T, store *memStore, id uint64) *model.Customer {
	t.Helper()
	return store.addCustomer(model.Customer{
		ID:                       id,
		FirstName:                "Claire",
		LastName:                 "Morel",
		Email:                    "claire.morel@example.org",
		HomeStreet:               "8 avenue Jean Jaures",
		HomePostalCode:           "69007",
		HomeCity:                 "Lyon",
		UseHomeAddressForBilling: true,
	})
}

func TestCreateBooksSeatAndNotifies(t *testing.T) {
	store := newMemStore()
	seedSession(t, store, 1, 10)
	seedCustomer(t, store, 7)
	notifier := &stubNotifier{}
	w := NewReservationWorkflow(store, notifier, nil)

	result, err := w.Create(context.Background(), 7, 1, model.StageVoluntary, model.PaymentCard)
	require.NoError(t, err)
	require.NotNil(t, result.Reservation)

	assert.Equal(t, model.ReservationPending, result.Reservation.Status)
	assert.NotEmpty(t, result.Reservation.CapacityToken)
	assert.Empty(t, result.NotifyWarning)
	assert.Equal(t, uint32(9), store.session(1).RemainingSeats)
	assert.Equal(t, 1, notifier.instructions)
}

func TestCreateRejectsInvalidInput(t *testing.T) {
	store := newMemStore()
	seedSession(t, store, 1, 10)
	seedCustomer(t, store, 7)
	w := NewReservationWorkflow(store, nil, nil)

	_, err := w.Create(context.Background(), 7, 1, model.StageType(5), model.PaymentCard)
	assert.True(t, model.IsValidation(err))

	_, err = w.Create(context.Background(), 7, 1, model.StageVoluntary, "")
	assert.True(t, model.IsValidation(err))

	// Nothing was written and no seat was taken.
	assert.Equal(t, uint32(10), store.session(1).RemainingSeats)
}

func TestCreateRejectsDuplicatePair(t *testing.T) {
	store := newMemStore()
	seedSession(t, store, 1, 10)
	seedCustomer(t, store, 7)
	w := NewReservationWorkflow(store, nil, nil)

	_, err := w.Create(context.Background(), 7, 1, model.StageVoluntary, model.PaymentCheque)
	require.NoError(t, err)

	_, err = w.Create(context.Background(), 7, 1, model.StageVoluntary, model.PaymentCheque)
	assert.ErrorIs(t, err, model.ErrDuplicateReservation)
	assert.Equal(t, uint32(9), store.session(1).RemainingSeats)
}

func TestCreateAllowsRebookAfterCancellation(t *testing.T) {
	store := newMemStore()
	seedSession(t, store, 1, 10)
	seedCustomer(t, store, 7)
	w := NewReservationWorkflow(store, nil, nil)

	first, err := w.Create(context.Background(), 7, 1, model.StageVoluntary, model.PaymentCard)
	require.NoError(t, err)
	_, err = w.Cancel(context.Background(), first.Reservation.ID)
	require.NoError(t, err)

	_, err = w.Create(context.Background(), 7, 1, model.StageVoluntary, model.PaymentCard)
	assert.NoError(t, err)
}

func TestConcurrentCreateNeverOversells(t *testing.T) {
	const seats = 5
	const contenders = 20

	store := newMemStore()
	seedSession(t, store, 1, seats)
	for i := uint64(1); i <= contenders; i++ {
		seedCustomer(t, store, i)
	}
	w := NewReservationWorkflow(store, nil, nil)

	var wg sync.WaitGroup
	errs := make([]error, contenders)
	for i := 0; i < contenders; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = w.Create(context.Background(), uint64(i+1), 1, model.StageVoluntary, model.PaymentCard)
		}(i)
	}
	wg.Wait()

	won := 0
	for _, err := range errs {
		if err == nil {
			won++
		} else {
			assert.ErrorIs(t, err, model.ErrCapacityExceeded)
		}
	}
	assert.Equal(t, seats, won)
	assert.Equal(t, uint32(0), store.session(1).RemainingSeats)
}

func TestCreateSucceedsWhenNotifierFails(t *testing.T) {
	store := newMemStore()
	seedSession(t, store, 1, 10)
	seedCustomer(t, store, 7)
	notifier := &stubNotifier{fail: true}
	w := NewReservationWorkflow(store, notifier, nil)

	result, err := w.Create(context.Background(), 7, 1, model.StageVoluntary, model.PaymentCard)
	require.NoError(t, err)
	assert.NotEmpty(t, result.NotifyWarning)
	// The booking itself committed.
	assert.Equal(t, uint32(9), store.session(1).RemainingSeats)
}

func TestConfirmPaymentIsIdempotent(t *testing.T) {
	store := newMemStore()
	seedSession(t, store, 1, 10)
	seedCustomer(t, store, 7)
	w := NewReservationWorkflow(store, nil, nil)

	result, err := w.Create(context.Background(), 7, 1, model.StageVoluntary, model.PaymentTransfer)
	require.NoError(t, err)
	id := result.Reservation.ID

	res, err := w.ConfirmPayment(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, res.PaidAt)
	firstPaidAt := *res.PaidAt

	res, err = w.ConfirmPayment(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, model.ReservationPaid, res.Status)
	assert.Equal(t, firstPaidAt, *store.reservation(id).PaidAt)
}

func TestConfirmPaymentRejectsCancelledReservation(t *testing.T) {
	store := newMemStore()
	seedSession(t, store, 1, 10)
	seedCustomer(t, store, 7)
	w := NewReservationWorkflow(store, nil, nil)

	result, err := w.Create(context.Background(), 7, 1, model.StageVoluntary, model.PaymentCard)
	require.NoError(t, err)
	_, err = w.Cancel(context.Background(), result.Reservation.ID)
	require.NoError(t, err)

	_, err = w.ConfirmPayment(context.Background(), result.Reservation.ID)
	assert.ErrorIs(t, err, model.ErrPrecondition)
}

func TestCancelReturnsSeat(t *testing.T) {
	store := newMemStore()
	seedSession(t, store, 1, 10)
	seedCustomer(t, store, 7)
	w := NewReservationWorkflow(store, nil, nil)

	result, err := w.Create(context.Background(), 7, 1, model.StageVoluntary, model.PaymentCard)
	require.NoError(t, err)
	require.Equal(t, uint32(9), store.session(1).RemainingSeats)

	res, err := w.Cancel(context.Background(), result.Reservation.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ReservationCancelled, res.Status)
	assert.NotNil(t, res.CancelledAt)
	assert.Equal(t, uint32(10), store.session(1).RemainingSeats)

	// Cancelling twice fails and does not release a second seat.
	_, err = w.Cancel(context.Background(), result.Reservation.ID)
	assert.ErrorIs(t, err, model.ErrPrecondition)
	assert.Equal(t, uint32(10), store.session(1).RemainingSeats)
}

func TestCancelRejectedWhileInvoiceOutstanding(t *testing.T) {
	store := newMemStore()
	seedSession(t, store, 1, 10)
	seedCustomer(t, store, 7)
	w := NewReservationWorkflow(store, nil, nil)

	result, err := w.Create(context.Background(), 7, 1, model.StageVoluntary, model.PaymentCard)
	require.NoError(t, err)
	id := result.Reservation.ID
	_, err = w.ConfirmPayment(context.Background(), id)
	require.NoError(t, err)

	issuer := NewInvoiceIssuer(store, "FA", 200, nil)
	_, _, err = issuer.Issue(context.Background(), id, IssueOptions{})
	require.NoError(t, err)

	_, err = w.Cancel(context.Background(), id)
	assert.ErrorIs(t, err, model.ErrInvoiceOutstanding)
	assert.Equal(t, uint32(9), store.session(1).RemainingSeats)

	// Voiding the invoice unblocks the cancellation.
	_, err = issuer.Void(context.Background(), id)
	require.NoError(t, err)
	_, err = w.Cancel(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, uint32(10), store.session(1).RemainingSeats)
}

func TestTransferMovesSeatAtomically(t *testing.T) {
	store := newMemStore()
	seedSession(t, store, 1, 10)
	seedSession(t, store, 2, 10)
	seedCustomer(t, store, 7)
	w := NewReservationWorkflow(store, nil, nil)

	result, err := w.Create(context.Background(), 7, 1, model.StageVoluntary, model.PaymentCard)
	require.NoError(t, err)
	oldToken := result.Reservation.CapacityToken

	res, err := w.Transfer(context.Background(), result.Reservation.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), res.SessionID)
	assert.NotEqual(t, oldToken, res.CapacityToken)
	assert.Equal(t, uint32(10), store.session(1).RemainingSeats)
	assert.Equal(t, uint32(9), store.session(2).RemainingSeats)
}

func TestTransferToFullSessionRollsBack(t *testing.T) {
	store := newMemStore()
	seedSession(t, store, 1, 10)
	seedSession(t, store, 2, 0)
	seedCustomer(t, store, 7)
	w := NewReservationWorkflow(store, nil, nil)

	result, err := w.Create(context.Background(), 7, 1, model.StageVoluntary, model.PaymentCard)
	require.NoError(t, err)

	_, err = w.Transfer(context.Background(), result.Reservation.ID, 2)
	assert.ErrorIs(t, err, model.ErrCapacityExceeded)

	// The original booking is untouched and no seat leaked.
	got := store.reservation(result.Reservation.ID)
	assert.Equal(t, uint64(1), got.SessionID)
	assert.Equal(t, uint32(9), store.session(1).RemainingSeats)
	assert.Equal(t, uint32(0), store.session(2).RemainingSeats)
}

func TestTransferToSameSessionIsNoOp(t *testing.T) {
	store := newMemStore()
	seedSession(t, store, 1, 10)
	seedCustomer(t, store, 7)
	w := NewReservationWorkflow(store, nil, nil)

	result, err := w.Create(context.Background(), 7, 1, model.StageVoluntary, model.PaymentCard)
	require.NoError(t, err)

	res, err := w.Transfer(context.Background(), result.Reservation.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, result.Reservation.CapacityToken, res.CapacityToken)
	assert.Equal(t, uint32(9), store.session(1).RemainingSeats)
}

func TestSendReservationMailMarksInvoiceSent(t *testing.T) {
	store := newMemStore()
	seedSession(t, store, 1, 10)
	seedCustomer(t, store, 7)
	notifier := &stubNotifier{}
	w := NewReservationWorkflow(store, notifier, nil)

	result, err := w.Create(context.Background(), 7, 1, model.StageVoluntary, model.PaymentCard)
	require.NoError(t, err)
	id := result.Reservation.ID
	_, err = w.ConfirmPayment(context.Background(), id)
	require.NoError(t, err)

	issuer := NewInvoiceIssuer(store, "FA", 200, nil)
	inv, _, err := issuer.Issue(context.Background(), id, IssueOptions{})
	require.NoError(t, err)

	err = w.SendReservationMail(context.Background(), id, "see you monday")
	require.NoError(t, err)
	assert.Equal(t, 1, notifier.mails)
	assert.Equal(t, "see you monday", notifier.lastMessage)

	got, err := store.ActiveInvoice(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, inv.Number, got.Number)
	assert.Equal(t, model.InvoiceSent, got.Status)
}

func TestSendReservationMailWithoutNotifier(t *testing.T) {
	store := newMemStore()
	seedSession(t, store, 1, 10)
	seedCustomer(t, store, 7)
	w := NewReservationWorkflow(store, nil, nil)

	result, err := w.Create(context.Background(), 7, 1, model.StageVoluntary, model.PaymentCard)
	require.NoError(t, err)

	err = w.SendReservationMail(context.Background(), result.Reservation.ID, "")
	assert.ErrorIs(t, err, model.ErrPrecondition)
}
