package goldprice

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/goldjewelmy/goldstore-backend/pkg/db/models"
)

// Repository persists the append-only gold price series.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// Latest returns the most recent sample.
func (r *Repository) Latest(ctx context.Context) (*models.GoldPrice, error) {
	var row models.GoldPrice
	if err := r.db.WithContext(ctx).Order("timestamp DESC").First(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// Since returns samples taken at or after from, oldest first.
func (r *Repository) Since(ctx context.Context, from time.Time) ([]models.GoldPrice, error) {
	var rows []models.GoldPrice
	err := r.db.WithContext(ctx).
		Where("timestamp >= ?", from).
		Order("timestamp ASC").
		Find(&rows).
		Error
	return rows, err
}

// Create appends a sample.
func (r *Repository) Create(ctx context.Context, sample *models.GoldPrice) error {
	return r.db.WithContext(ctx).Create(sample).Error
}

// Count returns the number of stored samples.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.GoldPrice{}).Count(&n).Error
	return n, err
}
