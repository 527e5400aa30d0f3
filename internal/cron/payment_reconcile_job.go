package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/goldjewelmy/goldstore-backend/internal/orders"
	"github.com/goldjewelmy/goldstore-backend/internal/payments"
	"github.com/goldjewelmy/goldstore-backend/pkg/chip"
	"github.com/goldjewelmy/goldstore-backend/pkg/logger"
)

const (
	defaultReconcileLimit  = 50
	defaultReconcileAfter  = 30 * time.Minute
	defaultReconcileWindow = 72 * time.Hour
)

type awaitingOrders interface {
	ListAwaitingPayment(ctx context.Context, q orders.AwaitingPaymentQuery) ([]orders.OrderDTO, error)
	MarkPaid(ctx context.Context, id uuid.UUID) error
	MarkPaymentChecked(ctx context.Context, id uuid.UUID) error
}

type paymentLookup interface {
	GetPayment(ctx context.Context, paymentID string) (*chip.Payment, error)
}

// PaymentReconcileJobParams configures the job that catches missed webhooks.
type PaymentReconcileJobParams struct {
	Logger  *logger.Logger
	Orders  awaitingOrders
	Gateway paymentLookup
	// After skips orders younger than this so in-flight payments are left to the webhook.
	After time.Duration
	// Window stops polling checkouts abandoned longer ago than this.
	Window time.Duration
	Limit  int
}

func NewPaymentReconcileJob(params PaymentReconcileJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Orders == nil {
		return nil, fmt.Errorf("order service required")
	}
	if params.Gateway == nil {
		return nil, fmt.Errorf("payment gateway required")
	}
	after := params.After
	if after <= 0 {
		after = defaultReconcileAfter
	}
	window := params.Window
	if window <= 0 {
		window = defaultReconcileWindow
	}
	limit := params.Limit
	if limit <= 0 {
		limit = defaultReconcileLimit
	}
	return &paymentReconcileJob{
		logg:    params.Logger,
		orders:  params.Orders,
		gateway: params.Gateway,
		after:   after,
		window:  window,
		limit:   limit,
	}, nil
}

type paymentReconcileJob struct {
	logg    *logger.Logger
	orders  awaitingOrders
	gateway paymentLookup
	after   time.Duration
	window  time.Duration
	limit   int
}

func (j *paymentReconcileJob) Name() string { return "payment-reconcile" }

func (j *paymentReconcileJob) Run(ctx context.Context) error {
	pending, err := j.orders.ListAwaitingPayment(ctx, orders.AwaitingPaymentQuery{
		OlderThan: j.after,
		Within:    j.window,
		Limit:     j.limit,
	})
	if err != nil {
		return fmt.Errorf("list orders awaiting payment: %w", err)
	}

	var errs error
	paid := 0
	for i := range pending {
		marked, err := j.reconcile(ctx, &pending[i])
		if err != nil {
			errs = multierr.Append(errs, err)
		}
		if marked {
			paid++
			continue
		}
		// rotate unsettled orders to the back of the queue
		if err := j.orders.MarkPaymentChecked(ctx, pending[i].ID); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("order %s: mark checked: %w", pending[i].OrderNumber, err))
		}
	}

	j.logg.Info(j.logg.WithFields(ctx, map[string]any{
		"candidates": len(pending),
		"paid":       paid,
	}), "payment reconcile loop complete")
	return errs
}

func (j *paymentReconcileJob) reconcile(ctx context.Context, order *orders.OrderDTO) (bool, error) {
	if order.PaymentID == nil || *order.PaymentID == "" {
		return false, nil
	}
	ctx = j.logg.WithOrderID(ctx, order.ID.String())

	payment, err := j.gateway.GetPayment(ctx, *order.PaymentID)
	if err != nil {
		return false, fmt.Errorf("order %s: fetch payment: %w", order.OrderNumber, err)
	}
	if !payment.IsPaid() {
		return false, nil
	}
	if payment.Reference != "" {
		refID, err := payments.OrderIDFromReference(payment.Reference)
		if err != nil || refID != order.ID {
			j.logg.Warn(j.logg.WithField(ctx, "reference", payment.Reference), "payment reference does not match order")
			return false, nil
		}
	}
	if err := j.orders.MarkPaid(ctx, order.ID); err != nil {
		return false, fmt.Errorf("order %s: mark paid: %w", order.OrderNumber, err)
	}
	j.logg.Info(ctx, "order marked paid by reconciliation")
	return true, nil
}
