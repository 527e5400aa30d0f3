// Package goldprice serves the gold spot price series shown on the storefront
// ticker and price history chart.
package goldprice

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/goldjewelmy/goldstore-backend/internal/pricing"
	"github.com/goldjewelmy/goldstore-backend/pkg/db/models"
	"github.com/goldjewelmy/goldstore-backend/pkg/enums"
	pkgerrors "github.com/goldjewelmy/goldstore-backend/pkg/errors"
	"github.com/goldjewelmy/goldstore-backend/pkg/logger"
)

const (
	DefaultHistoryDays = 30
	MaxHistoryDays     = 365
)

// SampleDTO is a gold price reading returned to clients.
type SampleDTO struct {
	PriceUSD        decimal.Decimal   `json:"price_usd"`
	PriceMYRPerGram decimal.Decimal   `json:"price_myr_per_gram"`
	Display         string            `json:"display"`
	Timestamp       time.Time         `json:"timestamp"`
	Source          enums.PriceSource `json:"source"`
}

// TickDTO adds the movement against the previous sample.
type TickDTO struct {
	SampleDTO
	ChangePercent decimal.Decimal `json:"change_percent"`
	IsUp          bool            `json:"is_up"`
}

// Service exposes the price series.
type Service interface {
	Latest(ctx context.Context) SampleDTO
	History(ctx context.Context, days int) ([]SampleDTO, error)
	Record(ctx context.Context, priceUSD decimal.Decimal, source enums.PriceSource) (*SampleDTO, error)
	Tick(ctx context.Context) (*TickDTO, error)
}

type priceRepository interface {
	Latest(ctx context.Context) (*models.GoldPrice, error)
	Since(ctx context.Context, from time.Time) ([]models.GoldPrice, error)
	Create(ctx context.Context, sample *models.GoldPrice) error
}

type service struct {
	repo      priceRepository
	simulator *pricing.Simulator
	logg      *logger.Logger
	now       func() time.Time
}

// NewService wires the price series service.
func NewService(repo priceRepository, simulator *pricing.Simulator, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("gold price repository required")
	}
	if simulator == nil {
		simulator = pricing.NewSimulator(nil, pricing.DefaultMaxDeltaPercent)
	}
	return &service{
		repo:      repo,
		simulator: simulator,
		logg:      logg,
		now:       func() time.Time { return time.Now().UTC() },
	}, nil
}

// Fallback is the reading served when the series is empty or unreachable.
func Fallback(at time.Time) SampleDTO {
	return SampleDTO{
		PriceUSD:        pricing.FallbackUSD,
		PriceMYRPerGram: pricing.FallbackMYRPerGram,
		Display:         pricing.FormatMYR(pricing.FallbackMYRPerGram),
		Timestamp:       at,
		Source:          enums.PriceSourceFallback,
	}
}

// Latest never fails: store errors degrade to the fallback reading.
func (s *service) Latest(ctx context.Context) SampleDTO {
	row, err := s.repo.Latest(ctx)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) && s.logg != nil {
			s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "goldprice.latest_failed")
		}
		return Fallback(s.now())
	}
	return toSampleDTO(*row)
}

func (s *service) History(ctx context.Context, days int) ([]SampleDTO, error) {
	if days == 0 {
		days = DefaultHistoryDays
	}
	if days < 0 || days > MaxHistoryDays {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("days must be between 1 and %d", MaxHistoryDays))
	}
	rows, err := s.repo.Since(ctx, s.now().AddDate(0, 0, -days))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list gold prices")
	}
	out := make([]SampleDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, toSampleDTO(row))
	}
	return out, nil
}

func (s *service) Record(ctx context.Context, priceUSD decimal.Decimal, source enums.PriceSource) (*SampleDTO, error) {
	if !priceUSD.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must be positive")
	}
	if !source.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid price source")
	}
	row := &models.GoldPrice{
		PriceUSD:        priceUSD.Round(2),
		PriceMYRPerGram: pricing.ConvertUSDPerOunceToMYRPerGram(priceUSD),
		Timestamp:       s.now(),
		Source:          source,
	}
	if err := s.repo.Create(ctx, row); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert gold price")
	}
	dto := toSampleDTO(*row)
	return &dto, nil
}

// Tick simulates the next ticker reading from the latest sample and stores it.
func (s *service) Tick(ctx context.Context) (*TickDTO, error) {
	current := s.Latest(ctx)
	quote := s.simulator.Next(current.PriceUSD)
	sample, err := s.Record(ctx, quote.PriceUSD, enums.PriceSourceSystem)
	if err != nil {
		return nil, err
	}
	return &TickDTO{
		SampleDTO:     *sample,
		ChangePercent: quote.ChangePercent,
		IsUp:          quote.IsUp,
	}, nil
}

func toSampleDTO(row models.GoldPrice) SampleDTO {
	return SampleDTO{
		PriceUSD:        row.PriceUSD,
		PriceMYRPerGram: row.PriceMYRPerGram,
		Display:         pricing.FormatMYR(row.PriceMYRPerGram),
		Timestamp:       row.Timestamp,
		Source:          row.Source,
	}
}
