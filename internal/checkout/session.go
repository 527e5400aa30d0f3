package checkout

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/goldjewelmy/goldstore-backend/internal/cart"
	"github.com/goldjewelmy/goldstore-backend/internal/orders"
	"github.com/goldjewelmy/goldstore-backend/internal/payments"
	"github.com/goldjewelmy/goldstore-backend/internal/pricing"
	"github.com/goldjewelmy/goldstore-backend/pkg/enums"
	pkgerrors "github.com/goldjewelmy/goldstore-backend/pkg/errors"
	"github.com/goldjewelmy/goldstore-backend/pkg/logger"
)

// GenericFailureMessage is shown to the shopper when placing the order fails.
const GenericFailureMessage = "There was an error processing your order. Please try again."

// ShippingInfo is the contact and delivery form.
type ShippingInfo struct {
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Phone     string `json:"phone" validate:"required"`
	Address   string `json:"address" validate:"required"`
	City      string `json:"city" validate:"required"`
	State     string `json:"state" validate:"required"`
	Postcode  string `json:"postcode" validate:"required,len=5,numeric"`
	Country   string `json:"country"`
}

// BillingInfo is the billing form; SameAsShipping marks a snapshot of shipping.
type BillingInfo struct {
	ShippingInfo
	SameAsShipping bool `json:"sameAsShipping"`
}

type SubmitInput struct {
	AcceptTerms   bool   `json:"acceptTerms"`
	PaymentMethod string `json:"paymentMethod"`
	Notes         string `json:"notes,omitempty"`
	Origin        string `json:"-"`
}

type SubmitResult struct {
	OrderID     uuid.UUID      `json:"orderId"`
	OrderNumber string         `json:"orderNumber"`
	PaymentID   string         `json:"paymentId"`
	PaymentURL  string         `json:"paymentUrl"`
	Totals      pricing.Totals `json:"totals"`
}

// OrderCreator persists an order.
type OrderCreator interface {
	Create(ctx context.Context, input orders.CreateOrderInput) (*orders.CreateOrderResult, error)
}

// PaymentCreator opens a gateway payment for an order.
type PaymentCreator interface {
	Create(ctx context.Context, input payments.CreatePaymentInput) (*payments.CreatePaymentResult, error)
}

// CartView is the slice of the cart the checkout needs.
type CartView interface {
	Items() []cart.Item
	Subtotal() decimal.Decimal
	IsEmpty() bool
	Clear(ctx context.Context) error
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" {
			return f.Name
		}
		return tag
	})
	return v
}

// Session is the checkout form state machine:
// shipping -> payment -> submitted, with payment -> failed -> payment on errors.
type Session struct {
	mu       sync.Mutex
	step     enums.CheckoutStep
	shipping ShippingInfo
	billing  BillingInfo
	cart     CartView
	orders   OrderCreator
	payments PaymentCreator
	logg     *logger.Logger
	lastErr  string
}

// NewSession starts a checkout at the shipping step.
func NewSession(c CartView, orderCreator OrderCreator, paymentCreator PaymentCreator, logg *logger.Logger) *Session {
	return &Session{
		step:     enums.CheckoutStepShipping,
		cart:     c,
		orders:   orderCreator,
		payments: paymentCreator,
		logg:     logg,
	}
}

func (s *Session) Step() enums.CheckoutStep {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.step
}

func (s *Session) Shipping() ShippingInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.shipping
}

func (s *Session) Billing() BillingInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.billing
}

// LastError is the user-facing message of the last failed submit.
func (s *Session) LastError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// SubmitShipping validates the form and advances to payment. On failure the
// step is unchanged and the field errors are returned.
func (s *Session) SubmitShipping(info ShippingInfo) map[string]string {
	info = normalizeShipping(info)
	if errs := validateForm(info); len(errs) > 0 {
		return errs
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.step != enums.CheckoutStepShipping {
		return map[string]string{"step": fmt.Sprintf("cannot submit shipping from %s", s.step)}
	}
	s.shipping = info
	s.step = enums.CheckoutStepPayment
	return nil
}

// SetBillingSameAsShipping copies the current shipping form into billing when
// switched on. The copy does not follow later shipping edits.
func (s *Session) SetBillingSameAsShipping(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.billing.SameAsShipping = on
	if on {
		s.billing.ShippingInfo = s.shipping
	}
}

// SetBilling stores a separate billing address.
func (s *Session) SetBilling(info BillingInfo) map[string]string {
	if info.SameAsShipping {
		s.SetBillingSameAsShipping(true)
		return nil
	}
	info.ShippingInfo = normalizeShipping(info.ShippingInfo)
	if errs := validateForm(info.ShippingInfo); len(errs) > 0 {
		return errs
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.billing = info
	return nil
}

// Back returns from payment (or failed) to the shipping form.
func (s *Session) Back() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.step != enums.CheckoutStepPayment && s.step != enums.CheckoutStepFailed {
		return false
	}
	s.step = enums.CheckoutStepShipping
	return true
}

// Submit places the order, opens the payment and clears the cart, in that order.
func (s *Session) Submit(ctx context.Context, input SubmitInput) (*SubmitResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.step != enums.CheckoutStepPayment && s.step != enums.CheckoutStepFailed {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("cannot submit from %s step", s.step))
	}
	if !input.AcceptTerms {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "terms must be accepted").
			WithDetails(map[string]string{"acceptTerms": "must be accepted"})
	}
	if s.cart == nil || s.cart.IsEmpty() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}
	if method := strings.TrimSpace(input.PaymentMethod); method != "" {
		if _, err := enums.ParsePaymentMethod(method); err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "unsupported payment method").
				WithDetails(map[string]string{"paymentMethod": "is not supported"})
		}
	}

	items := s.cart.Items()
	orderInput, err := s.buildOrderInput(items, input)
	if err != nil {
		return nil, err
	}
	totals := pricing.Breakdown(s.cart.Subtotal())
	orderInput.Subtotal = totals.Subtotal
	orderInput.ShippingFee = totals.Shipping
	orderInput.Tax = totals.Tax
	orderInput.Total = totals.Total

	created, err := s.orders.Create(ctx, orderInput)
	if err != nil {
		return nil, s.fail(ctx, "checkout.order_failed", err)
	}

	payment, err := s.payments.Create(ctx, payments.CreatePaymentInput{
		OrderID:       created.ID.String(),
		Amount:        totals.Total,
		CustomerEmail: s.shipping.Email,
		CustomerName:  strings.TrimSpace(s.shipping.FirstName + " " + s.shipping.LastName),
		ProductName:   productName(items),
		Origin:        input.Origin,
	})
	if err != nil {
		return nil, s.fail(s.withOrder(ctx, created.ID), "checkout.payment_failed", err)
	}

	if err := s.cart.Clear(ctx); err != nil && s.logg != nil {
		s.logg.Error(s.withOrder(ctx, created.ID), "checkout.cart_clear_failed", err)
	}

	s.step = enums.CheckoutStepSubmitted
	s.lastErr = ""
	return &SubmitResult{
		OrderID:     created.ID,
		OrderNumber: created.OrderNumber,
		PaymentID:   payment.PaymentID,
		PaymentURL:  payment.PaymentURL,
		Totals:      totals,
	}, nil
}

func (s *Session) buildOrderInput(items []cart.Item, input SubmitInput) (orders.CreateOrderInput, error) {
	lines := make([]orders.ItemInput, 0, len(items))
	for _, it := range items {
		productID, err := uuid.Parse(it.ID)
		if err != nil {
			return orders.CreateOrderInput{}, pkgerrors.New(pkgerrors.CodeValidation, "cart contains an unknown product").
				WithDetails(map[string]string{"id": it.ID})
		}
		lines = append(lines, orders.ItemInput{
			ProductID: productID,
			Quantity:  it.Quantity,
			Price:     it.PriceRM,
			Total:     it.LineTotal(),
		})
	}

	billing := s.billing
	if billing.SameAsShipping || billing.Address == "" {
		billing = BillingInfo{ShippingInfo: s.shipping, SameAsShipping: true}
	}

	return orders.CreateOrderInput{
		Customer: &orders.CustomerInput{
			FirstName: s.shipping.FirstName,
			LastName:  s.shipping.LastName,
			Email:     s.shipping.Email,
			Phone:     s.shipping.Phone,
		},
		Shipping: addressOf(s.shipping),
		Billing: &orders.BillingInput{
			AddressInput:   *addressOf(billing.ShippingInfo),
			SameAsShipping: billing.SameAsShipping,
		},
		Items:         lines,
		PaymentMethod: strings.ToLower(strings.TrimSpace(input.PaymentMethod)),
		Notes:         input.Notes,
	}, nil
}

// fail moves the session to failed and hides the cause behind a generic message.
func (s *Session) fail(ctx context.Context, event string, cause error) error {
	s.step = enums.CheckoutStepFailed
	s.lastErr = GenericFailureMessage
	if s.logg != nil {
		s.logg.Error(ctx, event, cause)
	}
	if pkgerrors.IsCode(cause, pkgerrors.CodeValidation) {
		return cause
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, cause, GenericFailureMessage).
		WithDetails(map[string]string{"message": GenericFailureMessage})
}

func (s *Session) withOrder(ctx context.Context, id uuid.UUID) context.Context {
	if s.logg == nil {
		return ctx
	}
	return s.logg.WithOrderID(ctx, id.String())
}

func addressOf(info ShippingInfo) *orders.AddressInput {
	return &orders.AddressInput{
		Address:  info.Address,
		City:     info.City,
		State:    info.State,
		Postcode: info.Postcode,
		Country:  info.Country,
	}
}

func productName(items []cart.Item) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0].Name
	default:
		return fmt.Sprintf("%s and %d more", items[0].Name, len(items)-1)
	}
}

func normalizeShipping(info ShippingInfo) ShippingInfo {
	info.FirstName = strings.TrimSpace(info.FirstName)
	info.LastName = strings.TrimSpace(info.LastName)
	info.Email = strings.TrimSpace(info.Email)
	info.Phone = strings.TrimSpace(info.Phone)
	info.Address = strings.TrimSpace(info.Address)
	info.City = strings.TrimSpace(info.City)
	info.State = strings.TrimSpace(info.State)
	info.Postcode = strings.TrimSpace(info.Postcode)
	info.Country = strings.TrimSpace(info.Country)
	if info.Country == "" {
		info.Country = orders.DefaultCountry
	}
	return info
}

func validateForm(info ShippingInfo) map[string]string {
	err := validate.Struct(info)
	if err == nil {
		return nil
	}
	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		return map[string]string{"form": err.Error()}
	}
	out := make(map[string]string, len(errs))
	for _, fe := range errs {
		out[fe.Field()] = fieldMessage(fe)
	}
	return out
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email"
	case "len":
		return fmt.Sprintf("must be %s characters", fe.Param())
	case "numeric":
		return "must contain only digits"
	}
	return "is invalid"
}
