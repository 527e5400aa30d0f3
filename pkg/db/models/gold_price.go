package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/goldjewelmy/goldstore-backend/pkg/enums"
)

// GoldPrice is one append-only sample of the gold spot price.
type GoldPrice struct {
	ID              uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	PriceUSD        decimal.Decimal   `gorm:"column:price_usd;type:decimal(10,2);not null"`
	PriceMYRPerGram decimal.Decimal   `gorm:"column:price_myr_per_gram;type:decimal(10,2);not null"`
	Timestamp       time.Time         `gorm:"column:timestamp;not null"`
	Source          enums.PriceSource `gorm:"column:source;not null;default:'system'"`
}

func (GoldPrice) TableName() string { return "gold_prices" }

func (g *GoldPrice) BeforeCreate(*gorm.DB) error {
	ensureID(&g.ID)
	if g.Timestamp.IsZero() {
		g.Timestamp = time.Now().UTC()
	}
	return nil
}
