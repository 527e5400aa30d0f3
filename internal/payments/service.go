// Package payments opens gateway payment sessions for storefront orders.
package payments

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/goldjewelmy/goldstore-backend/internal/pricing"
	"github.com/goldjewelmy/goldstore-backend/pkg/chip"
	"github.com/goldjewelmy/goldstore-backend/pkg/enums"
	pkgerrors "github.com/goldjewelmy/goldstore-backend/pkg/errors"
	"github.com/goldjewelmy/goldstore-backend/pkg/logger"
)

// ReferencePrefix precedes the order id in the gateway reference.
const ReferencePrefix = "order_"

// CreatePaymentInput carries the payment request. Origin is the storefront
// base URL used for the redirect targets.
type CreatePaymentInput struct {
	OrderID       string          `json:"orderId"`
	Amount        decimal.Decimal `json:"amount"`
	CustomerEmail string          `json:"customerEmail"`
	CustomerName  string          `json:"customerName"`
	ProductName   string          `json:"productName"`
	Origin        string          `json:"-"`
}

type CreatePaymentResult struct {
	Success    bool   `json:"success"`
	PaymentURL string `json:"paymentUrl"`
	PaymentID  string `json:"paymentId"`
}

// Service creates payments for orders.
type Service interface {
	Create(ctx context.Context, input CreatePaymentInput) (*CreatePaymentResult, error)
}

type gateway interface {
	CreatePayment(ctx context.Context, req chip.CreatePaymentRequest) (*chip.Payment, error)
}

type orderPayments interface {
	AttachPayment(ctx context.Context, orderID uuid.UUID, paymentID string) error
}

type service struct {
	gateway       gateway
	orders        orderPayments
	defaultOrigin string
	logg          *logger.Logger
}

// NewService wires the payment service. defaultOrigin is used when a request carries no origin.
func NewService(gw gateway, orders orderPayments, defaultOrigin string, logg *logger.Logger) (Service, error) {
	if gw == nil {
		return nil, fmt.Errorf("payment gateway required")
	}
	if orders == nil {
		return nil, fmt.Errorf("order payments required")
	}
	return &service{
		gateway:       gw,
		orders:        orders,
		defaultOrigin: strings.TrimRight(strings.TrimSpace(defaultOrigin), "/"),
		logg:          logg,
	}, nil
}

func (s *service) Create(ctx context.Context, input CreatePaymentInput) (*CreatePaymentResult, error) {
	orderID, err := validate(input)
	if err != nil {
		return nil, err
	}
	origin := strings.TrimRight(strings.TrimSpace(input.Origin), "/")
	if origin == "" {
		origin = s.defaultOrigin
	}

	id := orderID.String()
	escaped := url.QueryEscape(id)
	req := chip.CreatePaymentRequest{
		Amount:    pricing.ToMinorUnits(input.Amount),
		Currency:  string(enums.CurrencyMYR),
		Reference: ReferencePrefix + id,
		Customer: chip.Customer{
			Email:    strings.TrimSpace(input.CustomerEmail),
			FullName: strings.TrimSpace(input.CustomerName),
		},
		Product: chip.Product{
			Name:        strings.TrimSpace(input.ProductName),
			Description: fmt.Sprintf("Payment for order #%s", id),
		},
		Redirect: chip.Redirect{
			SuccessURL: fmt.Sprintf("%s/order-confirmation?order_id=%s", origin, escaped),
			FailureURL: fmt.Sprintf("%s/checkout?error=payment_failed&order_id=%s", origin, escaped),
		},
	}

	payment, err := s.gateway.CreatePayment(ctx, req)
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "Payment creation failed")
	}

	if err := s.orders.AttachPayment(ctx, orderID, payment.ID); err != nil && s.logg != nil {
		logCtx := s.logg.WithOrderID(ctx, id)
		s.logg.Error(s.logg.WithField(logCtx, "payment_id", payment.ID), "payment.attach_failed", err)
	}

	return &CreatePaymentResult{
		Success:    true,
		PaymentURL: payment.CheckoutURL,
		PaymentID:  payment.ID,
	}, nil
}

// OrderIDFromReference strips the reference prefix added at payment creation.
func OrderIDFromReference(reference string) (uuid.UUID, error) {
	return uuid.Parse(strings.TrimPrefix(strings.TrimSpace(reference), ReferencePrefix))
}

func validate(input CreatePaymentInput) (uuid.UUID, error) {
	missing := strings.TrimSpace(input.OrderID) == "" ||
		!input.Amount.IsPositive() ||
		strings.TrimSpace(input.CustomerEmail) == "" ||
		strings.TrimSpace(input.CustomerName) == "" ||
		strings.TrimSpace(input.ProductName) == ""
	if missing {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "Missing required fields")
	}
	orderID, err := uuid.Parse(strings.TrimSpace(input.OrderID))
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "orderId must be a valid id").WithDetails(map[string]string{"orderId": "must be a uuid"})
	}
	return orderID, nil
}
