package chipwebhook

import (
	"encoding/json"
	"strings"

	pkgerrors "github.com/goldjewelmy/goldstore-backend/pkg/errors"
)

const (
	EventPaymentPaid   = "payment.paid"
	EventPaymentFailed = "payment.failed"

	StatusPaid = "paid"
)

// Event is one of PaymentPaid, PaymentFailed or Unknown.
type Event interface {
	Type() string
	// IdempotencyID is empty for events that are never acted on.
	IdempotencyID() string
}

// PaymentPaid is a payment.paid notification. Only a "paid" status settles
// the order; the gateway may deliver the event earlier with another status.
type PaymentPaid struct {
	PaymentID string
	Reference string
	Status    string
}

func (e PaymentPaid) Type() string { return EventPaymentPaid }

// Settled reports whether the notification confirms the payment.
func (e PaymentPaid) Settled() bool { return e.Status == StatusPaid }

// IdempotencyID is empty until the payment is settled, so an early
// notification never shadows the confirming one.
func (e PaymentPaid) IdempotencyID() string {
	if !e.Settled() {
		return ""
	}
	return EventPaymentPaid + ":" + e.PaymentID
}

type PaymentFailed struct {
	PaymentID string
	Reference string
	Status    string
}

func (e PaymentFailed) Type() string { return EventPaymentFailed }

func (e PaymentFailed) IdempotencyID() string {
	return EventPaymentFailed + ":" + e.PaymentID
}

type Unknown struct {
	Name string
}

func (e Unknown) Type() string          { return e.Name }
func (e Unknown) IdempotencyID() string { return "" }

type envelope struct {
	Event string      `json:"event"`
	Data  payloadData `json:"data"`
}

// metadata is accepted and not decoded.
type payloadData struct {
	ID        string `json:"id"`
	Reference string `json:"reference"`
	Status    string `json:"status"`
}

// ParseEvent decodes a gateway notification. Payment events without a
// payment id are rejected.
func ParseEvent(body []byte) (Event, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid webhook payload")
	}

	name := strings.TrimSpace(env.Event)
	switch name {
	case EventPaymentPaid, EventPaymentFailed:
	default:
		return Unknown{Name: name}, nil
	}

	if strings.TrimSpace(env.Data.ID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment id missing")
	}

	if name == EventPaymentFailed {
		return PaymentFailed{
			PaymentID: env.Data.ID,
			Reference: env.Data.Reference,
			Status:    env.Data.Status,
		}, nil
	}

	return PaymentPaid{
		PaymentID: env.Data.ID,
		Reference: env.Data.Reference,
		Status:    env.Data.Status,
	}, nil
}
