package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/avassel/stagebook/internal/model"
	"github.com/avassel/stagebook/internal/service/ports"
)

// InvoiceIssuer creates and re-issues invoices for paid reservations.
// Numbers take the form PREFIX/YYYY/MM/NNNN where NNNN comes from a
// per-month sequence persisted in the store; the suffix is never
// derived from the wall clock, so two issuances racing within the
// same millisecond still get distinct numbers.
type InvoiceIssuer struct {
	store       ports.Store
	prefix      string
	vatPermille int
	log         *zap.Logger
	now         func() time.Time
}

// NewInvoiceIssuer builds an issuer with the given number prefix and
// fixed VAT rate in permille (200 = 20%).
func NewInvoiceIssuer(store ports.Store, prefix string, vatPermille int, log *zap.Logger) *InvoiceIssuer {
	if store == nil {
		panic("nil store passed to NewInvoiceIssuer")
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &InvoiceIssuer{
		store:       store,
		prefix:      prefix,
		vatPermille: vatPermille,
		log:         log,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// IssueOptions carries the optional overrides of the admin re-issue
// use case.  A zero value issues with a generated number and the
// session price.
type IssueOptions struct {
	Number      string // explicit invoice number; empty generates one
	AmountCents uint32 // explicit gross amount; zero uses the session price
}

// BillingInfo describes which address an invoice was issued to.  It
// is returned alongside the invoice for operator confirmation.
type BillingInfo struct {
	AddressKind model.AddressKind `json:"address_kind"`
	Text        string            `json:"text"`
}

// Issue generates or re-generates the invoice for a paid reservation.
// Address resolution and validation happen before any row is
// written.  When an active invoice already exists it is updated in
// place, keeping its number unless an explicit one is supplied, so
// issuing twice never yields two rows.
func (i *InvoiceIssuer) Issue(ctx context.Context, reservationID uint64, opts IssueOptions) (*model.Invoice, *BillingInfo, error) {
	var (
		inv  *model.Invoice
		info *BillingInfo
	)
	err := i.store.InTx(ctx, func(uow ports.UnitOfWork) error {
		res, err := uow.ReservationForUpdate(ctx, reservationID)
		if err != nil {
			return err
		}
		if res.Status != model.ReservationPaid {
			return model.ErrReservationNotPaid
		}
		cust, err := uow.Customer(ctx, res.CustomerID)
		if err != nil {
			return fmt.Errorf("load customer: %w", err)
		}
		snapshot, err := ResolveBillingAddress(cust)
		if err != nil {
			return err
		}
		sess, err := uow.Session(ctx, res.SessionID)
		if err != nil {
			return fmt.Errorf("load session: %w", err)
		}

		gross := sess.PriceCents
		if opts.AmountCents > 0 {
			gross = opts.AmountCents
		}
		net, tax := SplitGross(gross, i.vatPermille)

		existing, err := uow.ActiveInvoiceForUpdate(ctx, reservationID)
		switch {
		case err == nil:
			// Re-issue: update in place.  The number survives unless
			// the operator supplied a new one; amounts and the
			// billing snapshot are recomputed.
			existing.AmountCents = gross
			existing.NetCents = net
			existing.TaxCents = tax
			existing.Billing = snapshot
			existing.Status = model.InvoiceIssued
			if opts.Number != "" {
				existing.Number = opts.Number
			}
			if err := uow.UpdateInvoice(ctx, existing); err != nil {
				return fmt.Errorf("update invoice: %w", err)
			}
			inv = existing
		case errors.Is(err, model.ErrNotFound):
			number := opts.Number
			if number == "" {
				number, err = i.nextNumber(ctx, uow)
				if err != nil {
					return err
				}
			}
			inv = &model.Invoice{
				ReservationID: reservationID,
				Number:        number,
				AmountCents:   gross,
				NetCents:      net,
				TaxCents:      tax,
				Currency:      "EUR",
				Status:        model.InvoiceIssued,
				Billing:       snapshot,
			}
			if err := uow.CreateInvoice(ctx, inv); err != nil {
				return fmt.Errorf("create invoice: %w", err)
			}
		default:
			return err
		}
		info = &BillingInfo{
			AddressKind: snapshot.Kind,
			Text:        strings.Join(snapshot.Lines(), "\n"),
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	i.log.Info("invoice issued",
		zap.Uint64("reservation_id", reservationID),
		zap.String("number", inv.Number),
		zap.Uint32("amount_cents", inv.AmountCents),
	)
	return inv, info, nil
}

// Void marks the reservation's active invoice VOID.  Voiding is the
// explicit step required before an invoiced reservation can be
// cancelled.
func (i *InvoiceIssuer) Void(ctx context.Context, reservationID uint64) (*model.Invoice, error) {
	var inv *model.Invoice
	err := i.store.InTx(ctx, func(uow ports.UnitOfWork) error {
		var err error
		inv, err = uow.ActiveInvoiceForUpdate(ctx, reservationID)
		if err != nil {
			return err
		}
		if err := uow.SetInvoiceStatus(ctx, inv.ID, model.InvoiceVoid); err != nil {
			return err
		}
		inv.Status = model.InvoiceVoid
		return nil
	})
	if err != nil {
		return nil, err
	}
	i.log.Info("invoice voided",
		zap.Uint64("reservation_id", reservationID),
		zap.String("number", inv.Number),
	)
	return inv, nil
}

// nextNumber allocates the next number from the current month's
// sequence.
func (i *InvoiceIssuer) nextNumber(ctx context.Context, uow ports.UnitOfWork) (string, error) {
	now := i.now()
	year, month := now.Year(), int(now.Month())
	seq, err := uow.NextInvoiceSequence(ctx, year, month)
	if err != nil {
		return "", fmt.Errorf("allocate invoice sequence: %w", err)
	}
	return fmt.Sprintf("%s/%d/%02d/%04d", i.prefix, year, month, seq), nil
}

// SplitGross derives the net and tax parts of a gross amount at the
// given VAT rate in permille, rounding the net part half up.  The
// two parts always sum back to the gross amount.
func SplitGross(grossCents uint32, vatPermille int) (netCents, taxCents uint32) {
	denom := uint64(1000 + vatPermille)
	net := (uint64(grossCents)*1000 + denom/2) / denom
	return uint32(net), grossCents - uint32(net)
}
