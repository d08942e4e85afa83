package repository

import (
	"context"
	"errors"
	"time"

	"eventpass/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// OrderCacheRepository mirrors backend orders locally, with event
// fields denormalized so order history renders offline.
type OrderCacheRepository interface {
	Upsert(ctx context.Context, order *model.CachedOrder) error
	ReplaceAll(ctx context.Context, userID string, orders []model.CachedOrder) error
	Get(ctx context.Context, orderID string) (*model.CachedOrder, error)
	ListByUser(ctx context.Context, userID string) ([]model.CachedOrder, error)
	ListByStatus(ctx context.Context, status string) ([]model.CachedOrder, error)
	// Decide moves a pending order to its terminal status. Returns
	// ErrStale when the order already left pending.
	Decide(ctx context.Context, orderID, status string) error
}

type orderCacheRepoImpl struct {
	db *gorm.DB
}

func NewOrderCacheRepository(db *gorm.DB) OrderCacheRepository {
	return &orderCacheRepoImpl{db: db}
}

func (r *orderCacheRepoImpl) Upsert(ctx context.Context, order *model.CachedOrder) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(order).Error
}

// ReplaceAll swaps the user's cached orders for the freshly fetched
// set in one transaction. Backend truth wins over any local echo.
func (r *orderCacheRepoImpl) ReplaceAll(ctx context.Context, userID string, orders []model.CachedOrder) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&model.CachedOrder{}).Error; err != nil {
			return err
		}
		if len(orders) == 0 {
			return nil
		}
		return tx.Create(&orders).Error
	})
}

func (r *orderCacheRepoImpl) Get(ctx context.Context, orderID string) (*model.CachedOrder, error) {
	var order model.CachedOrder
	err := r.db.WithContext(ctx).Where("id = ?", orderID).First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderCacheRepoImpl) ListByUser(ctx context.Context, userID string) ([]model.CachedOrder, error) {
	var orders []model.CachedOrder
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&orders).Error
	return orders, err
}

func (r *orderCacheRepoImpl) ListByStatus(ctx context.Context, status string) ([]model.CachedOrder, error) {
	var orders []model.CachedOrder
	err := r.db.WithContext(ctx).
		Where("status = ?", status).
		Order("created_at ASC").
		Find(&orders).Error
	return orders, err
}

func (r *orderCacheRepoImpl) Decide(ctx context.Context, orderID, status string) error {
	result := r.db.WithContext(ctx).Model(&model.CachedOrder{}).
		Where("id = ? AND status = ?", orderID, string(model.OrderPending)).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrStale
	}
	return nil
}
