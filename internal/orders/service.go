package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/goldjewelmy/goldstore-backend/internal/pricing"
	"github.com/goldjewelmy/goldstore-backend/pkg/db"
	"github.com/goldjewelmy/goldstore-backend/pkg/db/models"
	"github.com/goldjewelmy/goldstore-backend/pkg/enums"
	pkgerrors "github.com/goldjewelmy/goldstore-backend/pkg/errors"
	"github.com/goldjewelmy/goldstore-backend/pkg/logger"
)

const (
	maxOrderNumberAttempts = 5
	orderNumberSavepoint   = "order_number"
	orderNumberConstraint  = "orders_order_number_key"
)

const msgMissingFields = "Missing required fields"

// Service creates and reads storefront orders.
type Service interface {
	Create(ctx context.Context, input CreateOrderInput) (*CreateOrderResult, error)
	Get(ctx context.Context, id uuid.UUID) (*OrderDTO, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]OrderDTO, error)
	AttachPayment(ctx context.Context, id uuid.UUID, paymentID string) error
	MarkPaid(ctx context.Context, id uuid.UUID) error
	ListAwaitingPayment(ctx context.Context, q AwaitingPaymentQuery) ([]OrderDTO, error)
	MarkPaymentChecked(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo    Repository
	tx      txRunner
	numbers NumberGenerator
	logg    *logger.Logger
	now     func() time.Time
}

// NewService builds the order service.
func NewService(repo Repository, tx txRunner, numbers NumberGenerator, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if numbers == nil {
		numbers = NewRandomNumberGenerator(nil)
	}
	return &service{
		repo:    repo,
		tx:      tx,
		numbers: numbers,
		logg:    logg,
		now:     func() time.Time { return time.Now().UTC() },
	}, nil
}

// Create writes the customer, addresses, order and items in one transaction.
func (s *service) Create(ctx context.Context, input CreateOrderInput) (*CreateOrderResult, error) {
	if err := validateCreate(input); err != nil {
		return nil, err
	}
	order, items, err := s.buildOrder(input)
	if err != nil {
		return nil, err
	}
	email := strings.ToLower(strings.TrimSpace(input.Customer.Email))

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		user, err := repo.FindUserByEmail(ctx, email)
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "Failed to create user")
			}
			user = &models.User{
				Email:     email,
				FirstName: optionalString(input.Customer.FirstName),
				LastName:  optionalString(input.Customer.LastName),
				Phone:     optionalString(input.Customer.Phone),
			}
			if err := repo.CreateUser(ctx, user); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "Failed to create user")
			}
		}

		shipping := toAddressModel(user.ID, *input.Shipping, true)
		if err := repo.CreateAddress(ctx, shipping); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "Failed to create shipping address")
		}

		billingID := shipping.ID
		if input.Billing != nil && !input.Billing.SameAsShipping {
			billing := toAddressModel(user.ID, input.Billing.AddressInput, false)
			if err := repo.CreateAddress(ctx, billing); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "Failed to create billing address")
			}
			billingID = billing.ID
		}

		order.UserID = user.ID
		order.ShippingAddressID = shipping.ID
		order.BillingAddressID = billingID
		if err := s.insertWithUniqueNumber(ctx, tx, repo, order); err != nil {
			return err
		}

		for i := range items {
			items[i].OrderID = order.ID
		}
		if err := repo.CreateOrderItems(ctx, items); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "Failed to create order items")
		}
		return nil
	})
	if err != nil {
		if pkgerrors.As(err) == nil {
			err = pkgerrors.Wrap(pkgerrors.CodeInternal, err, "Failed to create order")
		}
		return nil, err
	}

	if s.logg != nil {
		logCtx := s.logg.WithOrderID(ctx, order.ID.String())
		s.logg.Info(s.logg.WithField(logCtx, "order_number", order.OrderNumber), "order.created")
	}
	return &CreateOrderResult{Success: true, ID: order.ID, OrderNumber: order.OrderNumber}, nil
}

// insertWithUniqueNumber retries with a fresh number when the order number
// collides. A savepoint keeps the surrounding transaction usable after the
// failed insert.
func (s *service) insertWithUniqueNumber(ctx context.Context, tx *gorm.DB, repo Repository, order *models.Order) error {
	var lastErr error
	for attempt := 1; attempt <= maxOrderNumberAttempts; attempt++ {
		order.ID = uuid.Nil
		order.OrderNumber = s.numbers.Next()

		if err := tx.SavePoint(orderNumberSavepoint).Error; err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "Failed to create order")
		}
		err := repo.CreateOrder(ctx, order)
		if err == nil {
			return nil
		}
		if !isOrderNumberCollision(err) {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "Failed to create order")
		}
		if rbErr := tx.RollbackTo(orderNumberSavepoint).Error; rbErr != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, rbErr, "Failed to create order")
		}
		lastErr = err
		if s.logg != nil {
			s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
				"order_number": order.OrderNumber,
				"attempt":      attempt,
			}), "order.number_collision")
		}
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, lastErr, "Failed to allocate order number")
}

func isOrderNumberCollision(err error) bool {
	if db.IsUniqueViolation(err, orderNumberConstraint) {
		return true
	}
	return db.IsUniqueViolation(err, "") && strings.Contains(err.Error(), "order_number")
}

func (s *service) buildOrder(input CreateOrderInput) (*models.Order, []models.OrderItem, error) {
	items := make([]models.OrderItem, 0, len(input.Items))
	sum := decimal.Zero
	for _, in := range input.Items {
		total := in.Total
		if total.IsZero() {
			total = in.Price.Mul(decimal.NewFromInt(int64(in.Quantity)))
		}
		items = append(items, models.OrderItem{
			ProductID: in.ProductID,
			Quantity:  in.Quantity,
			Price:     in.Price,
			Total:     total,
		})
		sum = sum.Add(total)
	}

	totals := pricing.Totals{
		Subtotal: input.Subtotal,
		Shipping: input.ShippingFee,
		Tax:      input.Tax,
		Total:    input.Total,
	}
	if totals.Subtotal.IsZero() && totals.Total.IsZero() {
		totals = pricing.Breakdown(sum)
	}

	order := &models.Order{
		Status:        enums.OrderStatusPending,
		Subtotal:      totals.Subtotal,
		ShippingFee:   totals.Shipping,
		Tax:           totals.Tax,
		Total:         totals.Total,
		PaymentMethod: optionalString(input.PaymentMethod),
		PaymentStatus: enums.PaymentStatusPending,
		Notes:         optionalString(input.Notes),
	}
	return order, items, nil
}

func validateCreate(input CreateOrderInput) error {
	if input.Customer == nil || input.Shipping == nil || len(input.Items) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, msgMissingFields)
	}

	details := map[string]string{}
	if strings.TrimSpace(input.Customer.Email) == "" {
		details["customer.email"] = "is required"
	}
	for i, item := range input.Items {
		if item.ProductID == uuid.Nil {
			details[fmt.Sprintf("items[%d].productId", i)] = "is required"
		}
		if item.Quantity < 1 {
			details[fmt.Sprintf("items[%d].quantity", i)] = "must be at least 1"
		}
		if item.Price.IsNegative() {
			details[fmt.Sprintf("items[%d].price", i)] = "must not be negative"
		}
	}
	if method := strings.TrimSpace(input.PaymentMethod); method != "" {
		if _, err := enums.ParsePaymentMethod(method); err != nil {
			details["paymentMethod"] = "is not supported"
		}
	}
	if len(details) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, msgMissingFields).WithDetails(details)
	}
	return nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*OrderDTO, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "orderId is required")
	}
	order, err := s.repo.FindOrderDetail(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	dto := toOrderDTO(*order)
	return &dto, nil
}

func (s *service) ListByUser(ctx context.Context, userID uuid.UUID) ([]OrderDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "userId is required")
	}
	rows, err := s.repo.ListOrdersByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "Failed to fetch orders")
	}
	return toOrderDTOs(rows), nil
}

// AttachPayment records the gateway payment id; payment status stays pending.
func (s *service) AttachPayment(ctx context.Context, id uuid.UUID, paymentID string) error {
	paymentID = strings.TrimSpace(paymentID)
	if paymentID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "payment id is required")
	}
	n, err := s.repo.UpdatePayment(ctx, id, map[string]any{
		"payment_id": paymentID,
		"updated_at": s.now(),
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "attach payment")
	}
	if n == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "Order not found")
	}
	return nil
}

// MarkPaid sets the order paid and processing. Repeating it is harmless.
func (s *service) MarkPaid(ctx context.Context, id uuid.UUID) error {
	n, err := s.repo.UpdatePayment(ctx, id, map[string]any{
		"payment_status": enums.PaymentStatusPaid,
		"status":         enums.OrderStatusProcessing,
		"updated_at":     s.now(),
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark order paid")
	}
	if n == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "Order not found")
	}
	return nil
}

func (s *service) ListAwaitingPayment(ctx context.Context, q AwaitingPaymentQuery) ([]OrderDTO, error) {
	now := s.now()
	var createdAfter time.Time
	if q.Within > 0 {
		createdAfter = now.Add(-q.Within)
	}
	rows, err := s.repo.ListAwaitingPayment(ctx, createdAfter, now.Add(-q.OlderThan), q.Limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders awaiting payment")
	}
	return toOrderDTOs(rows), nil
}

// MarkPaymentChecked bumps updated_at so the next reconcile pass moves on to
// other orders.
func (s *service) MarkPaymentChecked(ctx context.Context, id uuid.UUID) error {
	n, err := s.repo.UpdatePayment(ctx, id, map[string]any{"updated_at": s.now()})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark payment checked")
	}
	if n == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "Order not found")
	}
	return nil
}

func toOrderDTOs(rows []models.Order) []OrderDTO {
	out := make([]OrderDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, toOrderDTO(row))
	}
	return out
}
