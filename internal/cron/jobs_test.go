package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/goldjewelmy/goldstore-backend/internal/goldprice"
	"github.com/goldjewelmy/goldstore-backend/internal/orders"
	"github.com/goldjewelmy/goldstore-backend/pkg/chip"
)

type stubTicker struct {
	calls int
	err   error
}

func (s *stubTicker) Tick(context.Context) (*goldprice.TickDTO, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &goldprice.TickDTO{
		SampleDTO:     goldprice.SampleDTO{PriceUSD: decimal.RequireFromString("2351.20")},
		ChangePercent: decimal.RequireFromString("0.03"),
		IsUp:          true,
	}, nil
}

func TestGoldPriceJobTicks(t *testing.T) {
	ticker := &stubTicker{}
	job, err := NewGoldPriceJob(testLogger(), ticker)
	if err != nil {
		t.Fatalf("new job: %v", err)
	}
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if ticker.calls != 1 {
		t.Fatalf("expected one tick, got %d", ticker.calls)
	}

	ticker.err = errors.New("db down")
	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected tick error to surface")
	}
}

type stubAwaiting struct {
	pending []orders.OrderDTO
	query   orders.AwaitingPaymentQuery
	marked  []uuid.UUID
	checked []uuid.UUID
	markErr error
}

func (s *stubAwaiting) ListAwaitingPayment(_ context.Context, q orders.AwaitingPaymentQuery) ([]orders.OrderDTO, error) {
	s.query = q
	return s.pending, nil
}

func (s *stubAwaiting) MarkPaymentChecked(_ context.Context, id uuid.UUID) error {
	s.checked = append(s.checked, id)
	return nil
}

func (s *stubAwaiting) MarkPaid(_ context.Context, id uuid.UUID) error {
	if s.markErr != nil {
		return s.markErr
	}
	s.marked = append(s.marked, id)
	return nil
}

type stubLookup struct {
	payments map[string]*chip.Payment
	errs     map[string]error
}

func (s *stubLookup) GetPayment(_ context.Context, id string) (*chip.Payment, error) {
	if err := s.errs[id]; err != nil {
		return nil, err
	}
	return s.payments[id], nil
}

func pendingOrder(paymentID string) orders.OrderDTO {
	id := uuid.New()
	return orders.OrderDTO{ID: id, OrderNumber: "GJM10001", PaymentID: &paymentID}
}

func TestPaymentReconcileMarksSettledOrders(t *testing.T) {
	paid := pendingOrder("pay_paid")
	open := pendingOrder("pay_open")
	broken := pendingOrder("pay_err")
	mismatched := pendingOrder("pay_other")

	store := &stubAwaiting{pending: []orders.OrderDTO{paid, open, broken, mismatched}}
	gateway := &stubLookup{
		payments: map[string]*chip.Payment{
			"pay_paid":  {ID: "pay_paid", Status: "paid", Reference: "order_" + paid.ID.String()},
			"pay_open":  {ID: "pay_open", Status: "created"},
			"pay_other": {ID: "pay_other", Status: "paid", Reference: "order_" + uuid.NewString()},
		},
		errs: map[string]error{"pay_err": errors.New("timeout")},
	}

	job, err := NewPaymentReconcileJob(PaymentReconcileJobParams{
		Logger:  testLogger(),
		Orders:  store,
		Gateway: gateway,
	})
	if err != nil {
		t.Fatalf("new job: %v", err)
	}

	err = job.Run(context.Background())
	if err == nil {
		t.Fatal("expected the gateway failure to be reported")
	}
	if len(store.marked) != 1 || store.marked[0] != paid.ID {
		t.Fatalf("expected only the settled order marked, got %v", store.marked)
	}
	if store.query.OlderThan != 30*time.Minute || store.query.Within != 72*time.Hour || store.query.Limit != 50 {
		t.Fatalf("expected default query, got %+v", store.query)
	}
	if len(store.checked) != 3 {
		t.Fatalf("expected the three unsettled orders rotated, got %v", store.checked)
	}
	for _, id := range store.checked {
		if id == paid.ID {
			t.Fatal("settled order must not be rotated")
		}
	}
}

// queueOrders hands out pending orders least recently checked first.
type queueOrders struct {
	order   []orders.OrderDTO
	settled map[uuid.UUID]bool
}

func (q *queueOrders) ListAwaitingPayment(_ context.Context, query orders.AwaitingPaymentQuery) ([]orders.OrderDTO, error) {
	out := []orders.OrderDTO{}
	for _, o := range q.order {
		if q.settled[o.ID] {
			continue
		}
		if len(out) == query.Limit {
			break
		}
		out = append(out, o)
	}
	return out, nil
}

func (q *queueOrders) MarkPaid(_ context.Context, id uuid.UUID) error {
	q.settled[id] = true
	return nil
}

func (q *queueOrders) MarkPaymentChecked(_ context.Context, id uuid.UUID) error {
	for i, o := range q.order {
		if o.ID == id {
			q.order = append(append(q.order[:i:i], q.order[i+1:]...), o)
			return nil
		}
	}
	return nil
}

func TestPaymentReconcileReachesOrdersBehindStaleBacklog(t *testing.T) {
	staleA := pendingOrder("pay_stale_a")
	staleB := pendingOrder("pay_stale_b")
	settled := pendingOrder("pay_settled")
	store := &queueOrders{
		order:   []orders.OrderDTO{staleA, staleB, settled},
		settled: map[uuid.UUID]bool{},
	}
	gateway := &stubLookup{payments: map[string]*chip.Payment{
		"pay_stale_a": {ID: "pay_stale_a", Status: "created"},
		"pay_stale_b": {ID: "pay_stale_b", Status: "created"},
		"pay_settled": {ID: "pay_settled", Status: "paid", Reference: "order_" + settled.ID.String()},
	}}

	job, err := NewPaymentReconcileJob(PaymentReconcileJobParams{
		Logger:  testLogger(),
		Orders:  store,
		Gateway: gateway,
		Limit:   2,
	})
	if err != nil {
		t.Fatalf("new job: %v", err)
	}

	for i := 0; i < 5; i++ {
		if err := job.Run(context.Background()); err != nil {
			t.Fatalf("run %d: %v", i, err)
		}
	}
	if !store.settled[settled.ID] {
		t.Fatal("order behind the stale backlog was never reconciled")
	}
	if store.settled[staleA.ID] || store.settled[staleB.ID] {
		t.Fatal("unsettled payments must stay pending")
	}
}
