package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/goldjewelmy/goldstore-backend/internal/pricing"
	"github.com/goldjewelmy/goldstore-backend/pkg/db/models"
)

// ProductDTO is the product payload returned to storefront clients.
type ProductDTO struct {
	ID             uuid.UUID         `json:"id"`
	Name           string            `json:"name"`
	Slug           string            `json:"slug"`
	Description    *string           `json:"description,omitempty"`
	Price          decimal.Decimal   `json:"price"`
	PriceDisplay   string            `json:"price_display"`
	PriceUSD       decimal.Decimal   `json:"price_usd"`
	Weight         decimal.Decimal   `json:"weight"`
	Purity         string            `json:"purity"`
	Dimensions     *string           `json:"dimensions,omitempty"`
	ImageURL       string            `json:"image_url"`
	ThumbnailURL   *string           `json:"thumbnail_url,omitempty"`
	CategoryID     uuid.UUID         `json:"category_id"`
	Category       *CategoryDTO      `json:"category,omitempty"`
	Featured       bool              `json:"featured"`
	InStock        bool              `json:"in_stock"`
	HasCertificate bool              `json:"has_certificate"`
	SerialNumber   *string           `json:"serial_number,omitempty"`
	Images         []ProductImageDTO `json:"images,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
}

type CategoryDTO struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description *string   `json:"description,omitempty"`
	ImageURL    *string   `json:"image_url,omitempty"`
}

type ProductImageDTO struct {
	ID           uuid.UUID `json:"id"`
	ImageURL     string    `json:"image_url"`
	AltText      *string   `json:"alt_text,omitempty"`
	DisplayOrder int       `json:"display_order"`
}

// ProductDetailDTO pairs a product with its related listings.
type ProductDetailDTO struct {
	ProductDTO
	Related []ProductDTO `json:"related"`
}

// NewProductDTO maps a product row, with any preloaded associations, to its payload.
func NewProductDTO(p models.Product) ProductDTO {
	dto := ProductDTO{
		ID:             p.ID,
		Name:           p.Name,
		Slug:           p.Slug,
		Description:    p.Description,
		Price:          p.Price,
		PriceDisplay:   pricing.FormatMYR(p.Price),
		PriceUSD:       p.PriceUSD,
		Weight:         p.Weight,
		Purity:         p.Purity,
		Dimensions:     p.Dimensions,
		ImageURL:       p.ImageURL,
		ThumbnailURL:   p.ThumbnailURL,
		CategoryID:     p.CategoryID,
		Featured:       p.Featured,
		InStock:        p.InStock,
		HasCertificate: p.HasCertificate,
		SerialNumber:   p.SerialNumber,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
	if p.Category != nil {
		c := toCategoryDTO(*p.Category)
		dto.Category = &c
	}
	for _, img := range p.Images {
		dto.Images = append(dto.Images, toProductImageDTO(img))
	}
	return dto
}

func toProductDTOs(rows []models.Product) []ProductDTO {
	out := make([]ProductDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, NewProductDTO(row))
	}
	return out
}

func toCategoryDTO(c models.Category) CategoryDTO {
	return CategoryDTO{
		ID:          c.ID,
		Name:        c.Name,
		Slug:        c.Slug,
		Description: c.Description,
		ImageURL:    c.ImageURL,
	}
}

func toProductImageDTO(img models.ProductImage) ProductImageDTO {
	return ProductImageDTO{
		ID:           img.ID,
		ImageURL:     img.ImageURL,
		AltText:      img.AltText,
		DisplayOrder: img.DisplayOrder,
	}
}
