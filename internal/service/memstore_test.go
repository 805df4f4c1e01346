package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/avassel/stagebook/internal/model"
	"github.com/avassel/stagebook/internal/service/ports"
)

// memState holds everything the in-memory store knows.  InTx works on
// a deep copy and swaps it in only on success, which mirrors the
// commit/rollback behaviour of the real store closely enough for the
// workflow tests, including the transfer-to-full-session rollback.
type memState struct {
	sessions     map[uint64]*model.Session
	customers    map[uint64]*model.Customer
	reservations map[uint64]*model.Reservation
	invoices     map[uint64]*model.Invoice
	sequences    map[string]int64
	nextRes      uint64
	nextInv      uint64
	nextToken    uint64
}

func newMemState() *memState {
	return &memState{
		sessions:     map[uint64]*model.Session{},
		customers:    map[uint64]*model.Customer{},
		reservations: map[uint64]*model.Reservation{},
		invoices:     map[uint64]*model.Invoice{},
		sequences:    map[string]int64{},
		nextRes:      1,
		nextInv:      1,
		nextToken:    1,
	}
}

func (s *memState) clone() *memState {
	c := newMemState()
	c.nextRes, c.nextInv, c.nextToken = s.nextRes, s.nextInv, s.nextToken
	for id, v := range s.sessions {
		cp := *v
		c.sessions[id] = &cp
	}
	for id, v := range s.customers {
		cp := *v
		c.customers[id] = &cp
	}
	for id, v := range s.reservations {
		cp := *v
		c.reservations[id] = &cp
	}
	for id, v := range s.invoices {
		cp := *v
		c.invoices[id] = &cp
	}
	for k, v := range s.sequences {
		c.sequences[k] = v
	}
	return c
}

// memStore is the ports.Store fake used across the service tests.
type memStore struct {
	mu    sync.Mutex
	state *memState
}

var _ ports.Store = (*memStore)(nil)

func newMemStore() *memStore {
	return &memStore{state: newMemState()}
}

func (s *memStore) addSession(sess model.Session) *model.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := sess
	s.state.sessions[cp.ID] = &cp
	return &cp
}

func (s *memStore) addCustomer(c model.Customer) *model.Customer {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := c
	s.state.customers[cp.ID] = &cp
	return &cp
}

func (s *memStore) addReservation(r model.Reservation) *model.Reservation {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := r
	if cp.ID == 0 {
		cp.ID = s.state.nextRes
		s.state.nextRes++
	}
	s.state.reservations[cp.ID] = &cp
	return &cp
}

func (s *memStore) addInvoice(inv model.Invoice) *model.Invoice {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := inv
	if cp.ID == 0 {
		cp.ID = s.state.nextInv
		s.state.nextInv++
	}
	s.state.invoices[cp.ID] = &cp
	return &cp
}

func (s *memStore) session(id uint64) model.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.state.sessions[id]
}

func (s *memStore) reservation(id uint64) model.Reservation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.state.reservations[id]
}

func (s *memStore) invoiceCount(reservationID uint64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, inv := range s.state.invoices {
		if inv.ReservationID == reservationID {
			n++
		}
	}
	return n
}

func (s *memStore) InTx(ctx context.Context, fn func(ports.UnitOfWork) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	staged := s.state.clone()
	if err := fn(&memUnit{st: staged}); err != nil {
		return err
	}
	s.state = staged
	return nil
}

func (s *memStore) Session(ctx context.Context, id uint64) (*model.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return (&memUnit{st: s.state}).Session(ctx, id)
}

func (s *memStore) Customer(ctx context.Context, id uint64) (*model.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return (&memUnit{st: s.state}).Customer(ctx, id)
}

func (s *memStore) Reservation(ctx context.Context, id uint64) (*model.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return (&memUnit{st: s.state}).ReservationForUpdate(ctx, id)
}

func (s *memStore) ActiveInvoice(ctx context.Context, reservationID uint64) (*model.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return (&memUnit{st: s.state}).ActiveInvoiceForUpdate(ctx, reservationID)
}

// memUnit is the transaction-scoped view over a staged memState.
type memUnit struct {
	st *memState
}

var _ ports.UnitOfWork = (*memUnit)(nil)

func (u *memUnit) ReserveSeat(ctx context.Context, sessionID uint64) (string, error) {
	sess, ok := u.st.sessions[sessionID]
	if !ok {
		return "", model.ErrNotFound
	}
	if sess.RemainingSeats == 0 {
		return "", model.ErrCapacityExceeded
	}
	sess.RemainingSeats--
	token := fmt.Sprintf("tok-%d", u.st.nextToken)
	u.st.nextToken++
	return token, nil
}

func (u *memUnit) ReleaseSeat(ctx context.Context, sessionID uint64) error {
	sess, ok := u.st.sessions[sessionID]
	if !ok {
		return model.ErrNotFound
	}
	if sess.RemainingSeats < sess.TotalSeats {
		sess.RemainingSeats++
	}
	return nil
}

func (u *memUnit) Session(ctx context.Context, id uint64) (*model.Session, error) {
	sess, ok := u.st.sessions[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	cp := *sess
	return &cp, nil
}

func (u *memUnit) Customer(ctx context.Context, id uint64) (*model.Customer, error) {
	c, ok := u.st.customers[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (u *memUnit) HasActiveReservation(ctx context.Context, customerID, sessionID uint64) (bool, error) {
	for _, r := range u.st.reservations {
		if r.CustomerID == customerID && r.SessionID == sessionID && r.Status != model.ReservationCancelled {
			return true, nil
		}
	}
	return false, nil
}

func (u *memUnit) CreateReservation(ctx context.Context, res *model.Reservation) error {
	res.ID = u.st.nextRes
	u.st.nextRes++
	res.BookedAt = time.Now().UTC()
	cp := *res
	u.st.reservations[cp.ID] = &cp
	return nil
}

func (u *memUnit) ReservationForUpdate(ctx context.Context, id uint64) (*model.Reservation, error) {
	r, ok := u.st.reservations[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (u *memUnit) MarkReservationPaid(ctx context.Context, id uint64, at time.Time) error {
	r, ok := u.st.reservations[id]
	if !ok {
		return model.ErrNotFound
	}
	r.Status = model.ReservationPaid
	r.PaidAt = &at
	return nil
}

func (u *memUnit) MarkReservationCancelled(ctx context.Context, id uint64, at time.Time) error {
	r, ok := u.st.reservations[id]
	if !ok {
		return model.ErrNotFound
	}
	r.Status = model.ReservationCancelled
	r.CancelledAt = &at
	return nil
}

func (u *memUnit) MoveReservation(ctx context.Context, id, sessionID uint64, token string) error {
	r, ok := u.st.reservations[id]
	if !ok {
		return model.ErrNotFound
	}
	r.SessionID = sessionID
	r.CapacityToken = token
	return nil
}

func (u *memUnit) ActiveInvoiceForUpdate(ctx context.Context, reservationID uint64) (*model.Invoice, error) {
	for _, inv := range u.st.invoices {
		if inv.ReservationID == reservationID && inv.Status != model.InvoiceVoid {
			cp := *inv
			return &cp, nil
		}
	}
	return nil, model.ErrNotFound
}

func (u *memUnit) NextInvoiceSequence(ctx context.Context, year, month int) (int64, error) {
	key := fmt.Sprintf("%d-%02d", year, month)
	u.st.sequences[key]++
	return u.st.sequences[key], nil
}

func (u *memUnit) CreateInvoice(ctx context.Context, inv *model.Invoice) error {
	inv.ID = u.st.nextInv
	u.st.nextInv++
	inv.IssuedAt = time.Now().UTC()
	cp := *inv
	u.st.invoices[cp.ID] = &cp
	return nil
}

func (u *memUnit) UpdateInvoice(ctx context.Context, inv *model.Invoice) error {
	if _, ok := u.st.invoices[inv.ID]; !ok {
		return model.ErrNotFound
	}
	cp := *inv
	cp.UpdatedAt = time.Now().UTC()
	u.st.invoices[cp.ID] = &cp
	return nil
}

func (u *memUnit) SetInvoiceStatus(ctx context.Context, id uint64, status model.InvoiceStatus) error {
	inv, ok := u.st.invoices[id]
	if !ok {
		return model.ErrNotFound
	}
	inv.Status = status
	return nil
}

// stubNotifier records notification calls and can be told to fail.
type stubNotifier struct {
	mu           sync.Mutex
	fail         bool
	instructions int
	mails        int
	lastMessage  string
	lastInvoice  *model.Invoice
}

var _ ports.Notifier = (*stubNotifier)(nil)

func (n *stubNotifier) PaymentInstructions(ctx context.Context, res *model.Reservation, cust *model.Customer, sess *model.Session) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.fail {
		return fmt.Errorf("broker unavailable")
	}
	n.instructions++
	return nil
}

func (n *stubNotifier) ReservationMail(ctx context.Context, res *model.Reservation, cust *model.Customer, sess *model.Session, inv *model.Invoice, customMessage string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.fail {
		return fmt.Errorf("broker unavailable")
	}
	n.mails++
	n.lastMessage = customMessage
	n.lastInvoice = inv
	return nil
}
