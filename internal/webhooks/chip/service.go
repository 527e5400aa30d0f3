package chipwebhook

import (
	"context"

	"github.com/google/uuid"

	"github.com/goldjewelmy/goldstore-backend/internal/payments"
	pkgerrors "github.com/goldjewelmy/goldstore-backend/pkg/errors"
	"github.com/goldjewelmy/goldstore-backend/pkg/logger"
)

type orderMarker interface {
	MarkPaid(ctx context.Context, id uuid.UUID) error
}

// Ack is the body returned to the gateway.
type Ack struct {
	Received bool `json:"received,omitempty"`
	Success  bool `json:"success,omitempty"`
}

var (
	ackReceived = Ack{Received: true}
	ackSuccess  = Ack{Success: true}
)

type Service struct {
	orders orderMarker
	logg   *logger.Logger
}

func NewService(orders orderMarker, logg *logger.Logger) (*Service, error) {
	if orders == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "order service required")
	}
	return &Service{orders: orders, logg: logg}, nil
}

// HandleEvent acts on confirmed payments only; every other event is acknowledged.
// Returned errors are retryable by the gateway.
func (s *Service) HandleEvent(ctx context.Context, event Event) (Ack, error) {
	switch ev := event.(type) {
	case PaymentPaid:
		return s.handlePaid(ctx, ev)
	case PaymentFailed:
		s.warn(ctx, map[string]any{"payment_id": ev.PaymentID, "reference": ev.Reference}, "chip.payment_failed")
		return ackReceived, nil
	default:
		return ackReceived, nil
	}
}

func (s *Service) handlePaid(ctx context.Context, ev PaymentPaid) (Ack, error) {
	if !ev.Settled() {
		return ackReceived, nil
	}

	orderID, err := payments.OrderIDFromReference(ev.Reference)
	if err != nil {
		s.warn(ctx, map[string]any{"payment_id": ev.PaymentID, "reference": ev.Reference}, "chip.reference_invalid")
		return ackReceived, nil
	}

	if s.logg != nil {
		ctx = s.logg.WithOrderID(ctx, orderID.String())
	}
	if err := s.orders.MarkPaid(ctx, orderID); err != nil {
		if pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
			s.warn(ctx, map[string]any{"payment_id": ev.PaymentID}, "chip.order_missing")
			return ackReceived, nil
		}
		return Ack{}, err
	}

	if s.logg != nil {
		s.logg.Info(s.logg.WithField(ctx, "payment_id", ev.PaymentID), "chip.order_paid")
	}
	return ackSuccess, nil
}

func (s *Service) warn(ctx context.Context, fields map[string]any, msg string) {
	if s.logg == nil {
		return
	}
	s.logg.Warn(s.logg.WithFields(ctx, fields), msg)
}
