package subscriptions

import (
	"context"
	"errors"
	"time"

	"github.com/feedbackfix/feedbackfix-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository exposes persistence helpers for subscription records.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByUserID(ctx context.Context, userID uuid.UUID) (*models.Subscription, error)
	FindByCustomerIDForUpdate(ctx context.Context, customerID string) (*models.Subscription, error)
	FindByUserIDForUpdate(ctx context.Context, userID uuid.UUID) (*models.Subscription, error)
	Create(ctx context.Context, sub *models.Subscription) error
	Update(ctx context.Context, sub *models.Subscription) error
	ListStale(ctx context.Context, updatedBefore time.Time, limit int) ([]models.Subscription, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a subscription repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) FindByUserID(ctx context.Context, userID uuid.UUID) (*models.Subscription, error) {
	return r.findOne(ctx, r.db, "user_id = ?", userID)
}

// FindByCustomerIDForUpdate takes a row lock so concurrent webhook deliveries
// for the same customer serialize their status writes.
func (r *repositoryImpl) FindByCustomerIDForUpdate(ctx context.Context, customerID string) (*models.Subscription, error) {
	return r.findOne(ctx, r.db.Clauses(clause.Locking{Strength: "UPDATE"}), "stripe_customer_id = ?", customerID)
}

func (r *repositoryImpl) FindByUserIDForUpdate(ctx context.Context, userID uuid.UUID) (*models.Subscription, error) {
	return r.findOne(ctx, r.db.Clauses(clause.Locking{Strength: "UPDATE"}), "user_id = ?", userID)
}

func (r *repositoryImpl) findOne(ctx context.Context, db *gorm.DB, query string, arg any) (*models.Subscription, error) {
	var sub models.Subscription
	err := db.WithContext(ctx).Where(query, arg).First(&sub).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *repositoryImpl) Create(ctx context.Context, sub *models.Subscription) error {
	return r.db.WithContext(ctx).Create(sub).Error
}

func (r *repositoryImpl) Update(ctx context.Context, sub *models.Subscription) error {
	return r.db.WithContext(ctx).Save(sub).Error
}

// ListStale returns subscriptions with a Stripe reference that have not been
// touched since updatedBefore, oldest first, for reconciliation.
func (r *repositoryImpl) ListStale(ctx context.Context, updatedBefore time.Time, limit int) ([]models.Subscription, error) {
	var subs []models.Subscription
	err := r.db.WithContext(ctx).
		Where("stripe_subscription_id IS NOT NULL AND updated_at < ?", updatedBefore).
		Order("updated_at ASC").
		Limit(limit).
		Find(&subs).Error
	if err != nil {
		return nil, err
	}
	return subs, nil
}
