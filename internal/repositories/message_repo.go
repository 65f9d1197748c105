package repositories

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/Gopher0727/Concord/internal/models"
)

type IMessageRepository interface {
	Create(ctx context.Context, message *models.Message) error
	FindByID(ctx context.Context, id string) (*models.Message, error)
	Update(ctx context.Context, message *models.Message) error
	Delete(ctx context.Context, id string) error
	// ListByChannel returns messages newest-first; a non-zero before bound
	// pages backwards through history.
	ListByChannel(ctx context.Context, channelID string, limit int, before time.Time) ([]*models.Message, error)
	ListByConversation(ctx context.Context, conversationID string, limit int, before time.Time) ([]*models.Message, error)
}

type MessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) IMessageRepository {
	return &MessageRepository{db: db}
}

func (r *MessageRepository) Create(ctx context.Context, message *models.Message) error {
	return r.db.WithContext(ctx).Create(message).Error
}

func (r *MessageRepository) FindByID(ctx context.Context, id string) (*models.Message, error) {
	var message models.Message
	err := r.db.WithContext(ctx).First(&message, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &message, nil
}

func (r *MessageRepository) Update(ctx context.Context, message *models.Message) error {
	return r.db.WithContext(ctx).Save(message).Error
}

func (r *MessageRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&models.Message{}, "id = ?", id).Error
}

func (r *MessageRepository) ListByChannel(ctx context.Context, channelID string, limit int, before time.Time) ([]*models.Message, error) {
	return r.list(ctx, "channel_id = ?", channelID, limit, before)
}

func (r *MessageRepository) ListByConversation(ctx context.Context, conversationID string, limit int, before time.Time) ([]*models.Message, error) {
	return r.list(ctx, "conversation_id = ?", conversationID, limit, before)
}

func (r *MessageRepository) list(ctx context.Context, cond, id string, limit int, before time.Time) ([]*models.Message, error) {
	q := r.db.WithContext(ctx).Where(cond, id)
	if !before.IsZero() {
		q = q.Where("created_at < ?", before)
	}
	var messages []*models.Message
	err := q.Order("created_at desc").Limit(limit).Find(&messages).Error
	return messages, err
}
