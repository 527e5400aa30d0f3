package webhooks

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/goldjewelmy/goldstore-backend/api/responses"
	chipwebhook "github.com/goldjewelmy/goldstore-backend/internal/webhooks/chip"
	"github.com/goldjewelmy/goldstore-backend/pkg/chip"
	pkgerrors "github.com/goldjewelmy/goldstore-backend/pkg/errors"
	"github.com/goldjewelmy/goldstore-backend/pkg/logger"
)

const maxWebhookBody = 1 << 20

type ChipWebhookService interface {
	HandleEvent(ctx context.Context, event chipwebhook.Event) (chipwebhook.Ack, error)
}

type chipWebhookGuard interface {
	CheckAndMark(ctx context.Context, eventID string) (bool, error)
	Delete(ctx context.Context, eventID string) error
}

type webhookMetrics interface {
	IncWebhook(event, outcome string)
}

// ChipWebhook verifies and applies gateway payment callbacks. A bad or
// missing signature is rejected with 401; duplicates are acknowledged
// without touching the order again.
func ChipWebhook(svc ChipWebhookService, secret string, guard chipWebhookGuard, stats webhookMetrics, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "webhook service unavailable"))
			return
		}
		if guard == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "idempotency guard unavailable"))
			return
		}

		payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read request body"))
			return
		}

		if err := chip.Verify(secret, payload, r.Header.Get(chip.SignatureHeader)); err != nil {
			record(stats, "unknown", "rejected")
			msg := "invalid webhook signature"
			if errors.Is(err, chip.ErrMissingSignature) {
				msg = "webhook signature missing"
			}
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, msg))
			return
		}

		event, err := chipwebhook.ParseEvent(payload)
		if err != nil {
			record(stats, "unknown", "invalid")
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if id := event.IdempotencyID(); id != "" {
			alreadyProcessed, err := guard.CheckAndMark(ctx, id)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check idempotency"))
				return
			}
			if alreadyProcessed {
				record(stats, event.Type(), "duplicate")
				responses.WriteSuccess(w, chipwebhook.Ack{Received: true})
				return
			}
		}

		ack, err := svc.HandleEvent(ctx, event)
		if err != nil {
			if id := event.IdempotencyID(); id != "" {
				_ = guard.Delete(ctx, id)
			}
			record(stats, event.Type(), "failed")
			responses.WriteError(ctx, logg, w, err)
			return
		}

		outcome := "received"
		if ack.Success {
			outcome = "processed"
		}
		record(stats, event.Type(), outcome)
		if logg != nil {
			logg.Info(logg.WithFields(ctx, map[string]any{"event": event.Type(), "outcome": outcome}), "chip.webhook.handled")
		}
		responses.WriteSuccess(w, ack)
	}
}

func record(stats webhookMetrics, event, outcome string) {
	if stats == nil {
		return
	}
	stats.IncWebhook(event, outcome)
}
