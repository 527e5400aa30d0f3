package checkout

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/goldjewelmy/goldstore-backend/internal/pricing"
	pkgerrors "github.com/goldjewelmy/goldstore-backend/pkg/errors"
	"github.com/goldjewelmy/goldstore-backend/pkg/logger"
)

// Request is the single-shot checkout payload posted by the storefront.
type Request struct {
	Shipping       ShippingInfo `json:"shipping"`
	Billing        *BillingInfo `json:"billing,omitempty"`
	SameAsShipping bool         `json:"sameAsShipping"`
	AcceptTerms    bool         `json:"acceptTerms"`
	PaymentMethod  string       `json:"paymentMethod"`
	Notes          string       `json:"notes,omitempty"`
}

// Result is returned to the storefront, which redirects to PaymentURL.
type Result struct {
	OrderID     string         `json:"orderId"`
	OrderNumber string         `json:"orderNumber"`
	PaymentID   string         `json:"paymentId"`
	PaymentURL  string         `json:"paymentUrl"`
	Totals      pricing.Totals `json:"totals"`
}

// Service executes checkout orchestration.
type Service interface {
	Checkout(ctx context.Context, c CartView, req Request, origin string) (*Result, error)
}

type service struct {
	orders   OrderCreator
	payments PaymentCreator
	logg     *logger.Logger
}

func NewService(orderCreator OrderCreator, paymentCreator PaymentCreator, logg *logger.Logger) (Service, error) {
	if orderCreator == nil {
		return nil, fmt.Errorf("order creator required")
	}
	if paymentCreator == nil {
		return nil, fmt.Errorf("payment creator required")
	}
	return &service{orders: orderCreator, payments: paymentCreator, logg: logg}, nil
}

// Checkout walks a fresh session through shipping, billing and submit.
func (s *service) Checkout(ctx context.Context, c CartView, req Request, origin string) (*Result, error) {
	session := NewSession(c, s.orders, s.payments, s.logg)

	if errs := session.SubmitShipping(req.Shipping); len(errs) > 0 {
		return nil, formError("invalid shipping details", errs)
	}

	switch {
	case req.SameAsShipping || req.Billing == nil:
		session.SetBillingSameAsShipping(true)
	default:
		if errs := session.SetBilling(*req.Billing); len(errs) > 0 {
			return nil, formError("invalid billing details", prefixed("billing.", errs))
		}
	}

	submitted, err := session.Submit(ctx, SubmitInput{
		AcceptTerms:   req.AcceptTerms,
		PaymentMethod: req.PaymentMethod,
		Notes:         req.Notes,
		Origin:        origin,
	})
	if err != nil {
		return nil, err
	}

	if s.logg != nil {
		ctx = s.logg.WithOrderID(ctx, submitted.OrderID.String())
		s.logg.Info(ctx, "checkout.submitted")
	}

	return &Result{
		OrderID:     submitted.OrderID.String(),
		OrderNumber: submitted.OrderNumber,
		PaymentID:   submitted.PaymentID,
		PaymentURL:  submitted.PaymentURL,
		Totals:      submitted.Totals,
	}, nil
}

func formError(message string, fields map[string]string) error {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("%s: %s", message, strings.Join(keys, ", "))).
		WithDetails(fields)
}

func prefixed(prefix string, fields map[string]string) map[string]string {
	out := make(map[string]string, len(fields))
	for k, v := range fields {
		out[prefix+k] = v
	}
	return out
}
