package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product is a read-only catalog listing priced in MYR with a USD reference price.
type Product struct {
	ID             uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	Name           string          `gorm:"column:name;not null"`
	Slug           string          `gorm:"column:slug;not null;uniqueIndex"`
	Description    *string         `gorm:"column:description"`
	Price          decimal.Decimal `gorm:"column:price;type:decimal(10,2);not null"`
	PriceUSD       decimal.Decimal `gorm:"column:price_usd;type:decimal(10,2);not null"`
	Weight         decimal.Decimal `gorm:"column:weight;type:decimal(10,2);not null"`
	Purity         string          `gorm:"column:purity;not null"`
	Dimensions     *string         `gorm:"column:dimensions"`
	ImageURL       string          `gorm:"column:image_url;not null"`
	ThumbnailURL   *string         `gorm:"column:thumbnail_url"`
	CategoryID     uuid.UUID       `gorm:"column:category_id;type:uuid;not null"`
	Featured       bool            `gorm:"column:featured;not null"`
	InStock        bool            `gorm:"column:in_stock;not null"`
	HasCertificate bool            `gorm:"column:has_certificate;not null"`
	SerialNumber   *string         `gorm:"column:serial_number"`
	CreatedAt      time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time       `gorm:"column:updated_at;autoUpdateTime"`

	Category *Category      `gorm:"foreignKey:CategoryID;references:ID"`
	Images   []ProductImage `gorm:"foreignKey:ProductID;references:ID"`
}

func (Product) TableName() string { return "products" }

func (p *Product) BeforeCreate(*gorm.DB) error {
	ensureID(&p.ID)
	return nil
}
