package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/goldjewelmy/goldstore-backend/pkg/enums"
)

// Order is the storefront order header; payment fields are updated by the gateway webhook.
type Order struct {
	ID                uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	UserID            uuid.UUID           `gorm:"column:user_id;type:uuid;not null"`
	OrderNumber       string              `gorm:"column:order_number;not null;uniqueIndex"`
	Status            enums.OrderStatus   `gorm:"column:status;not null;default:'pending'"`
	Subtotal          decimal.Decimal     `gorm:"column:subtotal;type:decimal(10,2);not null"`
	ShippingFee       decimal.Decimal     `gorm:"column:shipping_fee;type:decimal(10,2);not null;default:0"`
	Tax               decimal.Decimal     `gorm:"column:tax;type:decimal(10,2);not null;default:0"`
	Total             decimal.Decimal     `gorm:"column:total;type:decimal(10,2);not null"`
	ShippingAddressID uuid.UUID           `gorm:"column:shipping_address_id;type:uuid;not null"`
	BillingAddressID  uuid.UUID           `gorm:"column:billing_address_id;type:uuid;not null"`
	PaymentMethod     *string             `gorm:"column:payment_method"`
	PaymentID         *string             `gorm:"column:payment_id"`
	PaymentStatus     enums.PaymentStatus `gorm:"column:payment_status;not null;default:'pending'"`
	Notes             *string             `gorm:"column:notes"`
	CreatedAt         time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time           `gorm:"column:updated_at;autoUpdateTime"`

	ShippingAddress *Address    `gorm:"foreignKey:ShippingAddressID;references:ID"`
	BillingAddress  *Address    `gorm:"foreignKey:BillingAddressID;references:ID"`
	Items           []OrderItem `gorm:"foreignKey:OrderID;references:ID"`
}

func (Order) TableName() string { return "orders" }

func (o *Order) BeforeCreate(*gorm.DB) error {
	ensureID(&o.ID)
	return nil
}
