package checkout

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/goldjewelmy/goldstore-backend/internal/cart"
	"github.com/goldjewelmy/goldstore-backend/internal/orders"
	"github.com/goldjewelmy/goldstore-backend/internal/payments"
	"github.com/goldjewelmy/goldstore-backend/pkg/enums"
	pkgerrors "github.com/goldjewelmy/goldstore-backend/pkg/errors"
)

type stubOrders struct {
	input  orders.CreateOrderInput
	calls  int
	result *orders.CreateOrderResult
	err    error
}

func (s *stubOrders) Create(_ context.Context, input orders.CreateOrderInput) (*orders.CreateOrderResult, error) {
	s.calls++
	s.input = input
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

type stubPayments struct {
	input  payments.CreatePaymentInput
	calls  int
	result *payments.CreatePaymentResult
	err    error
}

func (s *stubPayments) Create(_ context.Context, input payments.CreatePaymentInput) (*payments.CreatePaymentResult, error) {
	s.calls++
	s.input = input
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func validShipping() ShippingInfo {
	return ShippingInfo{
		FirstName: "Aisyah",
		LastName:  "Rahman",
		Email:     "aisyah@example.com",
		Phone:     "+60123456789",
		Address:   "12 Jalan Ampang",
		City:      "Kuala Lumpur",
		State:     "Wilayah Persekutuan",
		Postcode:  "50450",
	}
}

func filledCart(t *testing.T) *cart.Cart {
	t.Helper()
	c := cart.New(cart.NewMemoryStorage(), nil)
	ctx := context.Background()
	items := []cart.Item{
		{ID: uuid.NewString(), Name: "1g Gold Bar", PriceRM: decimal.RequireFromString("350.75"), Quantity: 2},
	}
	for _, it := range items {
		if err := c.AddItem(ctx, it); err != nil {
			t.Fatalf("add item: %v", err)
		}
	}
	return c
}

func happyCollaborators() (*stubOrders, *stubPayments, uuid.UUID) {
	orderID := uuid.New()
	return &stubOrders{result: &orders.CreateOrderResult{Success: true, ID: orderID, OrderNumber: "GJM12345"}},
		&stubPayments{result: &payments.CreatePaymentResult{Success: true, PaymentID: "pay_1", PaymentURL: "https://gate.chip-in.asia/p/pay_1"}},
		orderID
}

func TestSubmitShippingValidatesFields(t *testing.T) {
	s := NewSession(nil, nil, nil, nil)
	info := validShipping()
	info.Email = "not-an-email"
	info.Postcode = "504"
	info.City = "   "

	errs := s.SubmitShipping(info)
	for _, field := range []string{"email", "postcode", "city"} {
		if _, ok := errs[field]; !ok {
			t.Fatalf("expected error for %s, got %v", field, errs)
		}
	}
	if s.Step() != enums.CheckoutStepShipping {
		t.Fatalf("expected to stay on shipping, got %s", s.Step())
	}
}

func TestSubmitShippingAdvancesAndDefaultsCountry(t *testing.T) {
	s := NewSession(nil, nil, nil, nil)
	if errs := s.SubmitShipping(validShipping()); len(errs) > 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if s.Step() != enums.CheckoutStepPayment {
		t.Fatalf("expected payment step, got %s", s.Step())
	}
	if got := s.Shipping().Country; got != "Malaysia" {
		t.Fatalf("expected default country, got %q", got)
	}
}

func TestBillingSnapshotIgnoresLaterShippingEdits(t *testing.T) {
	s := NewSession(nil, nil, nil, nil)
	s.SubmitShipping(validShipping())
	s.SetBillingSameAsShipping(true)

	if !s.Back() {
		t.Fatal("expected back to succeed from payment")
	}
	edited := validShipping()
	edited.Address = "99 Jalan Baru"
	s.SubmitShipping(edited)

	if got := s.Billing().Address; got != "12 Jalan Ampang" {
		t.Fatalf("billing should keep the snapshot, got %q", got)
	}
}

func TestBackOnlyFromPayment(t *testing.T) {
	s := NewSession(nil, nil, nil, nil)
	if s.Back() {
		t.Fatal("back should be refused on shipping step")
	}
}

func TestSubmitRequiresPaymentStep(t *testing.T) {
	s := NewSession(filledCart(t), nil, nil, nil)
	_, err := s.Submit(context.Background(), SubmitInput{AcceptTerms: true})
	if !pkgerrors.IsCode(err, pkgerrors.CodeStateConflict) {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestSubmitGuards(t *testing.T) {
	ordersStub, paymentsStub, _ := happyCollaborators()

	s := NewSession(filledCart(t), ordersStub, paymentsStub, nil)
	s.SubmitShipping(validShipping())
	if _, err := s.Submit(context.Background(), SubmitInput{AcceptTerms: false}); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for terms, got %v", err)
	}

	empty := NewSession(cart.New(cart.NewMemoryStorage(), nil), ordersStub, paymentsStub, nil)
	empty.SubmitShipping(validShipping())
	if _, err := empty.Submit(context.Background(), SubmitInput{AcceptTerms: true}); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for empty cart, got %v", err)
	}
	if ordersStub.calls != 0 {
		t.Fatalf("no order should be created, got %d calls", ordersStub.calls)
	}
}

func TestSubmitHappyPath(t *testing.T) {
	ordersStub, paymentsStub, orderID := happyCollaborators()
	c := filledCart(t)

	s := NewSession(c, ordersStub, paymentsStub, nil)
	s.SubmitShipping(validShipping())
	s.SetBillingSameAsShipping(true)

	result, err := s.Submit(context.Background(), SubmitInput{AcceptTerms: true, PaymentMethod: "FPX", Origin: "https://goldjewel.my"})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if result.PaymentURL != "https://gate.chip-in.asia/p/pay_1" || result.OrderID != orderID {
		t.Fatalf("unexpected result %+v", result)
	}
	if !result.Totals.Total.Equal(decimal.RequireFromString("768.59")) {
		t.Fatalf("expected total 768.59, got %s", result.Totals.Total)
	}
	if !ordersStub.input.ShippingFee.Equal(decimal.NewFromInt(25)) || !ordersStub.input.Tax.Equal(decimal.RequireFromString("42.09")) {
		t.Fatalf("unexpected order totals %+v", ordersStub.input)
	}
	if ordersStub.input.PaymentMethod != "fpx" {
		t.Fatalf("expected normalized payment method, got %q", ordersStub.input.PaymentMethod)
	}
	if paymentsStub.input.OrderID != orderID.String() || paymentsStub.input.CustomerName != "Aisyah Rahman" {
		t.Fatalf("unexpected payment input %+v", paymentsStub.input)
	}
	if paymentsStub.input.ProductName != "1g Gold Bar" {
		t.Fatalf("unexpected product name %q", paymentsStub.input.ProductName)
	}
	if !c.IsEmpty() {
		t.Fatal("cart should be cleared after submit")
	}
	if s.Step() != enums.CheckoutStepSubmitted {
		t.Fatalf("expected submitted, got %s", s.Step())
	}
}

func TestSubmitPaymentFailureKeepsCartAndFails(t *testing.T) {
	ordersStub, paymentsStub, _ := happyCollaborators()
	paymentsStub.err = errors.New("gateway down")
	c := filledCart(t)

	s := NewSession(c, ordersStub, paymentsStub, nil)
	s.SubmitShipping(validShipping())

	_, err := s.Submit(context.Background(), SubmitInput{AcceptTerms: true})
	if err == nil {
		t.Fatal("expected error")
	}
	if typed := pkgerrors.As(err); typed == nil || typed.Message() != GenericFailureMessage {
		t.Fatalf("expected generic message, got %v", err)
	}
	if s.Step() != enums.CheckoutStepFailed || s.LastError() != GenericFailureMessage {
		t.Fatalf("expected failed step, got %s", s.Step())
	}
	if c.IsEmpty() {
		t.Fatal("cart must survive a failed payment")
	}

	// failed re-enables the form
	paymentsStub.err = nil
	if _, err := s.Submit(context.Background(), SubmitInput{AcceptTerms: true}); err != nil {
		t.Fatalf("retry submit: %v", err)
	}
	if ordersStub.calls != 2 {
		t.Fatalf("expected a second order on retry, got %d", ordersStub.calls)
	}
}

func TestProductName(t *testing.T) {
	items := []cart.Item{{Name: "1g Gold Bar"}, {Name: "Kijang Emas"}, {Name: "5g Bar"}}
	if got := productName(items); got != "1g Gold Bar and 2 more" {
		t.Fatalf("unexpected product name %q", got)
	}
}

func TestServiceCheckout(t *testing.T) {
	ordersStub, paymentsStub, orderID := happyCollaborators()
	svc, err := NewService(ordersStub, paymentsStub, nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	billing := &BillingInfo{ShippingInfo: validShipping()}
	billing.Address = "1 Billing Road"
	result, err := svc.Checkout(context.Background(), filledCart(t), Request{
		Shipping:    validShipping(),
		Billing:     billing,
		AcceptTerms: true,
	}, "https://goldjewel.my")
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	if result.OrderID != orderID.String() || result.OrderNumber != "GJM12345" {
		t.Fatalf("unexpected result %+v", result)
	}
	if ordersStub.input.Billing == nil || ordersStub.input.Billing.SameAsShipping || ordersStub.input.Billing.Address != "1 Billing Road" {
		t.Fatalf("expected separate billing, got %+v", ordersStub.input.Billing)
	}
}

func TestServiceCheckoutInvalidShipping(t *testing.T) {
	ordersStub, paymentsStub, _ := happyCollaborators()
	svc, _ := NewService(ordersStub, paymentsStub, nil)

	shipping := validShipping()
	shipping.Postcode = "abcde"
	_, err := svc.Checkout(context.Background(), filledCart(t), Request{Shipping: shipping, AcceptTerms: true}, "")
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	details, ok := typed.Details().(map[string]string)
	if !ok || details["postcode"] == "" {
		t.Fatalf("expected postcode detail, got %v", typed.Details())
	}
	if ordersStub.calls != 0 {
		t.Fatal("no order should be created")
	}
}
