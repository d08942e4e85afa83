package repository

import (
	"context"
	"errors"
	"time"

	"eventpass/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TicketCacheRepository mirrors the user's issued tickets. The used
// flag is monotone: MarkUsed only ever flips false to true.
type TicketCacheRepository interface {
	ReplaceAll(ctx context.Context, tickets []model.CachedTicket) error
	Upsert(ctx context.Context, ticket *model.CachedTicket) error
	List(ctx context.Context) ([]model.CachedTicket, error)
	GetByTicketID(ctx context.Context, ticketID string) (*model.CachedTicket, error)
	MarkUsed(ctx context.Context, ticketID string) error
}

type ticketCacheRepoImpl struct {
	db *gorm.DB
}

func NewTicketCacheRepository(db *gorm.DB) TicketCacheRepository {
	return &ticketCacheRepoImpl{db: db}
}

func (r *ticketCacheRepoImpl) ReplaceAll(ctx context.Context, tickets []model.CachedTicket) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&model.CachedTicket{}).Error; err != nil {
			return err
		}
		if len(tickets) == 0 {
			return nil
		}
		return tx.Create(&tickets).Error
	})
}

func (r *ticketCacheRepoImpl) Upsert(ctx context.Context, ticket *model.CachedTicket) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(ticket).Error
}

func (r *ticketCacheRepoImpl) List(ctx context.Context) ([]model.CachedTicket, error) {
	var tickets []model.CachedTicket
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&tickets).Error
	return tickets, err
}

func (r *ticketCacheRepoImpl) GetByTicketID(ctx context.Context, ticketID string) (*model.CachedTicket, error) {
	var ticket model.CachedTicket
	err := r.db.WithContext(ctx).Where("ticket_id = ?", ticketID).First(&ticket).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketCacheRepoImpl) MarkUsed(ctx context.Context, ticketID string) error {
	return r.db.WithContext(ctx).Model(&model.CachedTicket{}).
		Where("ticket_id = ? AND is_used = ?", ticketID, false).
		Updates(map[string]interface{}{
			"is_used":    true,
			"updated_at": time.Now(),
		}).Error
}
