package repositories

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/Gopher0727/Concord/internal/models"
)

type IConversationRepository interface {
	Create(ctx context.Context, conversation *models.Conversation) error
	FindByID(ctx context.Context, id string) (*models.Conversation, error)
	FindByParticipantKey(ctx context.Context, key string) (*models.Conversation, error)
	ListForUser(ctx context.Context, userID string) ([]*models.Conversation, error)
	SetLastMessage(ctx context.Context, conversationID, messageID string) error
}

type ConversationRepository struct {
	db *gorm.DB
}

func NewConversationRepository(db *gorm.DB) IConversationRepository {
	return &ConversationRepository{db: db}
}

func (r *ConversationRepository) Create(ctx context.Context, conversation *models.Conversation) error {
	return r.db.WithContext(ctx).Create(conversation).Error
}

func (r *ConversationRepository) FindByID(ctx context.Context, id string) (*models.Conversation, error) {
	var conversation models.Conversation
	err := r.db.WithContext(ctx).First(&conversation, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &conversation, nil
}

func (r *ConversationRepository) FindByParticipantKey(ctx context.Context, key string) (*models.Conversation, error) {
	var conversation models.Conversation
	err := r.db.WithContext(ctx).First(&conversation, "participant_key = ?", key).Error
	if err != nil {
		return nil, err
	}
	return &conversation, nil
}

func (r *ConversationRepository) ListForUser(ctx context.Context, userID string) ([]*models.Conversation, error) {
	var conversations []*models.Conversation
	err := r.db.WithContext(ctx).
		Where("participants @> ?", fmt.Sprintf("[%q]", userID)).
		Order("updated_at desc").
		Find(&conversations).Error
	return conversations, err
}

func (r *ConversationRepository) SetLastMessage(ctx context.Context, conversationID, messageID string) error {
	return r.db.WithContext(ctx).
		Model(&models.Conversation{}).
		Where("id = ?", conversationID).
		Update("last_message_id", messageID).Error
}
