package orders

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/goldjewelmy/goldstore-backend/internal/catalog"
	"github.com/goldjewelmy/goldstore-backend/pkg/db/models"
	"github.com/goldjewelmy/goldstore-backend/pkg/enums"
)

// DefaultCountry is stored when an address omits its country.
const DefaultCountry = "Malaysia"

// CustomerInput identifies the buyer; email is the lookup key.
type CustomerInput struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

type AddressInput struct {
	Address  string `json:"address"`
	Address2 string `json:"address2,omitempty"`
	City     string `json:"city"`
	State    string `json:"state"`
	Postcode string `json:"postcode"`
	Country  string `json:"country,omitempty"`
}

// BillingInput reuses the shipping address when SameAsShipping is set.
type BillingInput struct {
	AddressInput
	SameAsShipping bool `json:"sameAsShipping"`
}

type ItemInput struct {
	ProductID uuid.UUID       `json:"productId"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	Total     decimal.Decimal `json:"total"`
}

// CreateOrderInput is the order payload. Zero totals are derived from the items.
type CreateOrderInput struct {
	Customer      *CustomerInput  `json:"customer"`
	Shipping      *AddressInput   `json:"shipping"`
	Billing       *BillingInput   `json:"billing,omitempty"`
	Items         []ItemInput     `json:"items"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	ShippingFee   decimal.Decimal `json:"shippingFee"`
	Tax           decimal.Decimal `json:"tax"`
	Total         decimal.Decimal `json:"total"`
	PaymentMethod string          `json:"paymentMethod"`
	Notes         string          `json:"notes,omitempty"`
}

// AwaitingPaymentQuery selects pending orders for gateway reconciliation.
// Within bounds how far back to look; zero looks at every pending order.
type AwaitingPaymentQuery struct {
	OlderThan time.Duration
	Within    time.Duration
	Limit     int
}

type CreateOrderResult struct {
	Success     bool      `json:"success"`
	ID          uuid.UUID `json:"id"`
	OrderNumber string    `json:"orderNumber"`
}

type AddressDTO struct {
	AddressLine1 string  `json:"address_line1"`
	AddressLine2 *string `json:"address_line2,omitempty"`
	City         string  `json:"city"`
	State        string  `json:"state"`
	PostalCode   string  `json:"postal_code"`
	Country      string  `json:"country"`
}

type OrderItemDTO struct {
	ID        uuid.UUID           `json:"id"`
	OrderID   uuid.UUID           `json:"order_id"`
	ProductID uuid.UUID           `json:"product_id"`
	Quantity  int                 `json:"quantity"`
	Price     decimal.Decimal     `json:"price"`
	Total     decimal.Decimal     `json:"total"`
	Product   *catalog.ProductDTO `json:"product,omitempty"`
	CreatedAt time.Time           `json:"created_at"`
}

// OrderDTO mirrors the order row with its addresses and items expanded.
type OrderDTO struct {
	ID                uuid.UUID           `json:"id"`
	UserID            uuid.UUID           `json:"user_id"`
	OrderNumber       string              `json:"order_number"`
	Status            enums.OrderStatus   `json:"status"`
	Subtotal          decimal.Decimal     `json:"subtotal"`
	ShippingFee       decimal.Decimal     `json:"shipping_fee"`
	Tax               decimal.Decimal     `json:"tax"`
	Total             decimal.Decimal     `json:"total"`
	ShippingAddressID uuid.UUID           `json:"shipping_address_id"`
	BillingAddressID  uuid.UUID           `json:"billing_address_id"`
	PaymentMethod     *string             `json:"payment_method,omitempty"`
	PaymentID         *string             `json:"payment_id,omitempty"`
	PaymentStatus     enums.PaymentStatus `json:"payment_status"`
	Notes             *string             `json:"notes,omitempty"`
	ShippingAddress   *AddressDTO         `json:"shipping_address,omitempty"`
	BillingAddress    *AddressDTO         `json:"billing_address,omitempty"`
	OrderItems        []OrderItemDTO      `json:"order_items"`
	CreatedAt         time.Time           `json:"created_at"`
	UpdatedAt         time.Time           `json:"updated_at"`
}

func toOrderDTO(o models.Order) OrderDTO {
	dto := OrderDTO{
		ID:                o.ID,
		UserID:            o.UserID,
		OrderNumber:       o.OrderNumber,
		Status:            o.Status,
		Subtotal:          o.Subtotal,
		ShippingFee:       o.ShippingFee,
		Tax:               o.Tax,
		Total:             o.Total,
		ShippingAddressID: o.ShippingAddressID,
		BillingAddressID:  o.BillingAddressID,
		PaymentMethod:     o.PaymentMethod,
		PaymentID:         o.PaymentID,
		PaymentStatus:     o.PaymentStatus,
		Notes:             o.Notes,
		ShippingAddress:   toAddressDTO(o.ShippingAddress),
		BillingAddress:    toAddressDTO(o.BillingAddress),
		OrderItems:        make([]OrderItemDTO, 0, len(o.Items)),
		CreatedAt:         o.CreatedAt,
		UpdatedAt:         o.UpdatedAt,
	}
	for _, item := range o.Items {
		row := OrderItemDTO{
			ID:        item.ID,
			OrderID:   item.OrderID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.Price,
			Total:     item.Total,
			CreatedAt: item.CreatedAt,
		}
		if item.Product != nil {
			product := catalog.NewProductDTO(*item.Product)
			row.Product = &product
		}
		dto.OrderItems = append(dto.OrderItems, row)
	}
	return dto
}

func toAddressDTO(a *models.Address) *AddressDTO {
	if a == nil {
		return nil
	}
	return &AddressDTO{
		AddressLine1: a.AddressLine1,
		AddressLine2: a.AddressLine2,
		City:         a.City,
		State:        a.State,
		PostalCode:   a.PostalCode,
		Country:      a.Country,
	}
}

func toAddressModel(userID uuid.UUID, in AddressInput, isDefault bool) *models.Address {
	country := strings.TrimSpace(in.Country)
	if country == "" {
		country = DefaultCountry
	}
	return &models.Address{
		UserID:       userID,
		AddressLine1: strings.TrimSpace(in.Address),
		AddressLine2: optionalString(in.Address2),
		City:         strings.TrimSpace(in.City),
		State:        strings.TrimSpace(in.State),
		PostalCode:   strings.TrimSpace(in.Postcode),
		Country:      country,
		IsDefault:    isDefault,
	}
}

func optionalString(value string) *string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
