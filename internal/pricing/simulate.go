package pricing

import (
	"math/rand"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultMaxDeltaPercent bounds a single simulated tick.
const DefaultMaxDeltaPercent = 0.5

// Quote is a simulated ticker reading.
type Quote struct {
	PriceUSD        decimal.Decimal `json:"priceUsd"`
	PriceMYRPerGram decimal.Decimal `json:"priceMyrPerGram"`
	ChangePercent   decimal.Decimal `json:"changePercent"`
	IsUp            bool            `json:"isUp"`
}

// Simulator produces bounded random walks of the gold price.
type Simulator struct {
	mu              sync.Mutex
	rnd             *rand.Rand
	maxDeltaPercent float64
}

// NewSimulator builds a simulator; a nil source seeds from the clock.
func NewSimulator(src rand.Source, maxDeltaPercent float64) *Simulator {
	if src == nil {
		src = rand.NewSource(time.Now().UnixNano())
	}
	if maxDeltaPercent <= 0 {
		maxDeltaPercent = DefaultMaxDeltaPercent
	}
	return &Simulator{rnd: rand.New(src), maxDeltaPercent: maxDeltaPercent}
}

// Next applies a symmetric delta in [-max, +max] percent to currentUSD.
func (s *Simulator) Next(currentUSD decimal.Decimal) Quote {
	s.mu.Lock()
	deltaPercent := (s.rnd.Float64()*2 - 1) * s.maxDeltaPercent
	s.mu.Unlock()

	delta := decimal.NewFromFloat(deltaPercent)
	next := currentUSD.Mul(decimal.NewFromInt(1).Add(delta.Div(decimal.NewFromInt(100)))).Round(2)
	return Quote{
		PriceUSD:        next,
		PriceMYRPerGram: ConvertUSDPerOunceToMYRPerGram(next),
		ChangePercent:   delta.Abs().Round(4),
		IsUp:            deltaPercent >= 0,
	}
}

// MaxDeltaPercent exposes the configured bound.
func (s *Simulator) MaxDeltaPercent() float64 {
	return s.maxDeltaPercent
}
