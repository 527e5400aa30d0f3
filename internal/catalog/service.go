package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/goldjewelmy/goldstore-backend/pkg/db/models"
	pkgerrors "github.com/goldjewelmy/goldstore-backend/pkg/errors"
)

// ListInput filters the product listing. Category takes precedence over Featured.
type ListInput struct {
	CategorySlug string
	Featured     bool
	Limit        int
}

// Service exposes read-only catalog queries.
type Service interface {
	ListProducts(ctx context.Context, input ListInput) ([]ProductDTO, error)
	GetProduct(ctx context.Context, slug string) (*ProductDetailDTO, error)
	GetProductByID(ctx context.Context, id uuid.UUID) (*ProductDTO, error)
	ListRelated(ctx context.Context, productID uuid.UUID) ([]ProductDTO, error)
	ListCategories(ctx context.Context) ([]CategoryDTO, error)
}

type catalogRepository interface {
	ListProducts(ctx context.Context, limit int) ([]models.Product, error)
	ListFeatured(ctx context.Context, limit int) ([]models.Product, error)
	FindBySlug(ctx context.Context, slug string) (*models.Product, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	FindCategoryBySlug(ctx context.Context, slug string) (*models.Category, error)
	ListByCategory(ctx context.Context, categoryID uuid.UUID, limit int) ([]models.Product, error)
	ListCategories(ctx context.Context) ([]models.Category, error)
	ListRelated(ctx context.Context, categoryID, productID uuid.UUID, limit int) ([]models.Product, error)
}

type service struct {
	repo catalogRepository
}

// NewService wires the catalog service to its repository.
func NewService(repo catalogRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) ListProducts(ctx context.Context, input ListInput) ([]ProductDTO, error) {
	if input.Limit < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "limit must be non-negative")
	}

	var (
		rows []models.Product
		err  error
	)
	switch slug := strings.TrimSpace(input.CategorySlug); {
	case slug != "":
		category, cerr := s.repo.FindCategoryBySlug(ctx, slug)
		if cerr != nil {
			if errors.Is(cerr, gorm.ErrRecordNotFound) {
				return []ProductDTO{}, nil
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, cerr, "load category")
		}
		rows, err = s.repo.ListByCategory(ctx, category.ID, input.Limit)
	case input.Featured:
		rows, err = s.repo.ListFeatured(ctx, input.Limit)
	default:
		rows, err = s.repo.ListProducts(ctx, input.Limit)
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	return toProductDTOs(rows), nil
}

func (s *service) GetProduct(ctx context.Context, slug string) (*ProductDetailDTO, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "slug is required")
	}
	product, err := s.repo.FindBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}

	related, err := s.repo.ListRelated(ctx, product.CategoryID, product.ID, RelatedLimit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list related products")
	}
	return &ProductDetailDTO{
		ProductDTO: NewProductDTO(*product),
		Related:    toProductDTOs(related),
	}, nil
}

func (s *service) GetProductByID(ctx context.Context, id uuid.UUID) (*ProductDTO, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	dto := NewProductDTO(*product)
	return &dto, nil
}

func (s *service) ListRelated(ctx context.Context, productID uuid.UUID) ([]ProductDTO, error) {
	product, err := s.repo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	rows, err := s.repo.ListRelated(ctx, product.CategoryID, product.ID, RelatedLimit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list related products")
	}
	return toProductDTOs(rows), nil
}

func (s *service) ListCategories(ctx context.Context) ([]CategoryDTO, error) {
	rows, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list categories")
	}
	out := make([]CategoryDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, toCategoryDTO(row))
	}
	return out, nil
}
