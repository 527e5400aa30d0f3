package cron

import (
	"context"
	"fmt"

	"github.com/goldjewelmy/goldstore-backend/internal/goldprice"
	"github.com/goldjewelmy/goldstore-backend/pkg/logger"
)

type goldPriceTicker interface {
	Tick(ctx context.Context) (*goldprice.TickDTO, error)
}

type goldPriceJob struct {
	logg   *logger.Logger
	ticker goldPriceTicker
}

// NewGoldPriceJob appends one simulated system sample per cycle.
func NewGoldPriceJob(logg *logger.Logger, ticker goldPriceTicker) (Job, error) {
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if ticker == nil {
		return nil, fmt.Errorf("gold price service required")
	}
	return &goldPriceJob{logg: logg, ticker: ticker}, nil
}

func (j *goldPriceJob) Name() string { return "gold-price-sampler" }

func (j *goldPriceJob) Run(ctx context.Context) error {
	tick, err := j.ticker.Tick(ctx)
	if err != nil {
		return fmt.Errorf("record gold price: %w", err)
	}
	j.logg.Info(j.logg.WithFields(ctx, map[string]any{
		"price_usd":      tick.PriceUSD.String(),
		"price_myr_gram": tick.PriceMYRPerGram.String(),
		"change_percent": tick.ChangePercent.String(),
		"is_up":          tick.IsUp,
	}), "gold price sampled")
	return nil
}
