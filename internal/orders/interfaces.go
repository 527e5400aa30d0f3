package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/goldjewelmy/goldstore-backend/pkg/db/models"
)

// Repository persists customers, addresses and orders.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	CreateUser(ctx context.Context, user *models.User) error
	CreateAddress(ctx context.Context, address *models.Address) error
	CreateOrder(ctx context.Context, order *models.Order) error
	CreateOrderItems(ctx context.Context, items []models.OrderItem) error

	FindOrderDetail(ctx context.Context, id uuid.UUID) (*models.Order, error)
	ListOrdersByUser(ctx context.Context, userID uuid.UUID) ([]models.Order, error)
	UpdatePayment(ctx context.Context, id uuid.UUID, fields map[string]any) (int64, error)
	ListAwaitingPayment(ctx context.Context, createdAfter, createdBefore time.Time, limit int) ([]models.Order, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}
