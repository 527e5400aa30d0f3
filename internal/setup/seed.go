package setup

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"

	"github.com/goldjewelmy/goldstore-backend/pkg/db/models"
	"github.com/goldjewelmy/goldstore-backend/pkg/enums"
	pkgerrors "github.com/goldjewelmy/goldstore-backend/pkg/errors"
)

//go:embed catalog.yaml
var catalogYAML []byte

type seedFile struct {
	Categories []seedCategory `yaml:"categories"`
	Products   []seedProduct  `yaml:"products"`
	Images     []seedImage    `yaml:"images"`
	GoldPrices seedPrices     `yaml:"gold_prices"`
}

type seedCategory struct {
	Name        string `yaml:"name"`
	Slug        string `yaml:"slug"`
	Description string `yaml:"description"`
	ImageURL    string `yaml:"image_url"`
}

type seedProduct struct {
	Name           string `yaml:"name"`
	Slug           string `yaml:"slug"`
	Description    string `yaml:"description"`
	Price          string `yaml:"price"`
	PriceUSD       string `yaml:"price_usd"`
	Weight         string `yaml:"weight"`
	Purity         string `yaml:"purity"`
	Dimensions     string `yaml:"dimensions"`
	ImageURL       string `yaml:"image_url"`
	ThumbnailURL   string `yaml:"thumbnail_url"`
	Category       string `yaml:"category"`
	Featured       bool   `yaml:"featured"`
	InStock        bool   `yaml:"in_stock"`
	HasCertificate bool   `yaml:"has_certificate"`
	SerialNumber   string `yaml:"serial_number"`
}

type seedImage struct {
	Product      string `yaml:"product"`
	ImageURL     string `yaml:"image_url"`
	AltText      string `yaml:"alt_text"`
	DisplayOrder int    `yaml:"display_order"`
}

type seedPrices struct {
	Days                  int     `yaml:"days"`
	BaseUSD               string  `yaml:"base_usd"`
	BaseMYRPerGram        string  `yaml:"base_myr_per_gram"`
	MaxFluctuationPercent float64 `yaml:"max_fluctuation_percent"`
}

// GroupOutcome is the result of seeding one table.
type GroupOutcome struct {
	Inserted int  `json:"inserted"`
	Skipped  bool `json:"skipped"`
}

type SeedReport struct {
	Categories    GroupOutcome `json:"categories"`
	Products      GroupOutcome `json:"products"`
	ProductImages GroupOutcome `json:"product_images"`
	GoldPrices    GroupOutcome `json:"gold_prices"`
}

func loadSeedFile() (*seedFile, error) {
	var f seedFile
	if err := yaml.Unmarshal(catalogYAML, &f); err != nil {
		return nil, fmt.Errorf("decode seed catalog: %w", err)
	}
	return &f, nil
}

// Seed inserts the demo data. Each group is skipped when its table already has rows.
func (s *Service) Seed(ctx context.Context) (*SeedReport, error) {
	if s.db == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "database handle required")
	}
	file, err := loadSeedFile()
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load seed catalog")
	}

	report := &SeedReport{}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var stepErr error
		if report.Categories, stepErr = seedGroup(tx, &models.Category{}, func() (int, error) {
			return s.seedCategories(tx, file.Categories)
		}); stepErr != nil {
			return stepErr
		}
		if report.Products, stepErr = seedGroup(tx, &models.Product{}, func() (int, error) {
			return s.seedProducts(tx, file.Products)
		}); stepErr != nil {
			return stepErr
		}
		if report.ProductImages, stepErr = seedGroup(tx, &models.ProductImage{}, func() (int, error) {
			return s.seedImages(tx, file.Images)
		}); stepErr != nil {
			return stepErr
		}
		report.GoldPrices, stepErr = seedGroup(tx, &models.GoldPrice{}, func() (int, error) {
			return s.seedGoldPrices(tx, file.GoldPrices)
		})
		return stepErr
	})
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return nil, typed
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "seed database")
	}

	if s.logg != nil {
		s.logg.Info(s.logg.WithFields(ctx, map[string]any{
			"categories":  report.Categories.Inserted,
			"products":    report.Products.Inserted,
			"images":      report.ProductImages.Inserted,
			"gold_prices": report.GoldPrices.Inserted,
		}), "setup.seeded")
	}
	return report, nil
}

func seedGroup(tx *gorm.DB, model any, insert func() (int, error)) (GroupOutcome, error) {
	var count int64
	if err := tx.Model(model).Count(&count).Error; err != nil {
		return GroupOutcome{}, err
	}
	if count > 0 {
		return GroupOutcome{Skipped: true}, nil
	}
	n, err := insert()
	if err != nil {
		return GroupOutcome{}, err
	}
	return GroupOutcome{Inserted: n}, nil
}

func (s *Service) seedCategories(tx *gorm.DB, in []seedCategory) (int, error) {
	rows := make([]models.Category, 0, len(in))
	for _, c := range in {
		rows = append(rows, models.Category{
			Name:        c.Name,
			Slug:        c.Slug,
			Description: optional(c.Description),
			ImageURL:    optional(c.ImageURL),
		})
	}
	if err := tx.Create(&rows).Error; err != nil {
		return 0, err
	}
	return len(rows), nil
}

func (s *Service) seedProducts(tx *gorm.DB, in []seedProduct) (int, error) {
	var categories []models.Category
	if err := tx.Find(&categories).Error; err != nil {
		return 0, err
	}
	bySlug := make(map[string]uuid.UUID, len(categories))
	for _, c := range categories {
		bySlug[c.Slug] = c.ID
	}

	rows := make([]models.Product, 0, len(in))
	for _, p := range in {
		categoryID, ok := bySlug[p.Category]
		if !ok {
			return 0, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("category %q not found for product %s", p.Category, p.Slug))
		}
		price, err := decimal.NewFromString(p.Price)
		if err != nil {
			return 0, fmt.Errorf("product %s price: %w", p.Slug, err)
		}
		priceUSD, err := decimal.NewFromString(p.PriceUSD)
		if err != nil {
			return 0, fmt.Errorf("product %s price_usd: %w", p.Slug, err)
		}
		weight, err := decimal.NewFromString(p.Weight)
		if err != nil {
			return 0, fmt.Errorf("product %s weight: %w", p.Slug, err)
		}
		rows = append(rows, models.Product{
			Name:           p.Name,
			Slug:           p.Slug,
			Description:    optional(p.Description),
			Price:          price,
			PriceUSD:       priceUSD,
			Weight:         weight,
			Purity:         p.Purity,
			Dimensions:     optional(p.Dimensions),
			ImageURL:       p.ImageURL,
			ThumbnailURL:   optional(p.ThumbnailURL),
			CategoryID:     categoryID,
			Featured:       p.Featured,
			InStock:        p.InStock,
			HasCertificate: p.HasCertificate,
			SerialNumber:   optional(p.SerialNumber),
		})
	}
	if err := tx.Create(&rows).Error; err != nil {
		return 0, err
	}
	return len(rows), nil
}

func (s *Service) seedImages(tx *gorm.DB, in []seedImage) (int, error) {
	var products []models.Product
	if err := tx.Select("id", "slug").Find(&products).Error; err != nil {
		return 0, err
	}
	bySlug := make(map[string]uuid.UUID, len(products))
	for _, p := range products {
		bySlug[p.Slug] = p.ID
	}

	rows := make([]models.ProductImage, 0, len(in))
	for _, img := range in {
		productID, ok := bySlug[img.Product]
		if !ok {
			return 0, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("product %q not found for image", img.Product))
		}
		rows = append(rows, models.ProductImage{
			ProductID:    productID,
			ImageURL:     img.ImageURL,
			AltText:      optional(img.AltText),
			DisplayOrder: img.DisplayOrder,
		})
	}
	if len(rows) == 0 {
		return 0, nil
	}
	if err := tx.Create(&rows).Error; err != nil {
		return 0, err
	}
	return len(rows), nil
}

// seedGoldPrices writes one sample per day from Days ago through today, each
// within MaxFluctuationPercent of the base prices.
func (s *Service) seedGoldPrices(tx *gorm.DB, cfg seedPrices) (int, error) {
	baseUSD, err := decimal.NewFromString(cfg.BaseUSD)
	if err != nil {
		return 0, fmt.Errorf("base usd: %w", err)
	}
	baseMYR, err := decimal.NewFromString(cfg.BaseMYRPerGram)
	if err != nil {
		return 0, fmt.Errorf("base myr: %w", err)
	}

	now := s.now().UTC()
	rows := make([]models.GoldPrice, 0, cfg.Days+1)
	for i := cfg.Days; i >= 0; i-- {
		fluctuation := (s.rng.Float64()*2 - 1) * cfg.MaxFluctuationPercent
		factor := decimal.NewFromFloat(1 + fluctuation/100)
		rows = append(rows, models.GoldPrice{
			PriceUSD:        baseUSD.Mul(factor).Round(2),
			PriceMYRPerGram: baseMYR.Mul(factor).Round(2),
			Timestamp:       now.AddDate(0, 0, -i),
			Source:          enums.PriceSourceSeed,
		})
	}
	if err := tx.Create(&rows).Error; err != nil {
		return 0, err
	}
	return len(rows), nil
}

func optional(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
