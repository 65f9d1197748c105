package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Gopher0727/Concord/internal/models"
	"github.com/Gopher0727/Concord/internal/repositories"
	"github.com/Gopher0727/Concord/internal/ws"
)

type OpenConversationRequest struct {
	RecipientID string `json:"recipient_id" binding:"required"`
}

type IConversationService interface {
	OpenConversation(ctx context.Context, creatorID string, req *OpenConversationRequest) (*models.Conversation, error)
	GetConversation(ctx context.Context, userID, conversationID string) (*models.Conversation, error)
	ListConversations(ctx context.Context, userID string) ([]*models.Conversation, error)
}

type ConversationService struct {
	conversationRepo repositories.IConversationRepository
	userRepo         repositories.IUserRepository
	broadcast        Broadcaster
}

func NewConversationService(conversationRepo repositories.IConversationRepository, userRepo repositories.IUserRepository, broadcast Broadcaster) IConversationService {
	return &ConversationService{
		conversationRepo: conversationRepo,
		userRepo:         userRepo,
		broadcast:        broadcast,
	}
}

// OpenConversation creates the direct-message container for an unordered
// user pair. At most one conversation exists per pair; opening a second one
// is a conflict that names the existing id.
func (s *ConversationService) OpenConversation(ctx context.Context, creatorID string, req *OpenConversationRequest) (*models.Conversation, error) {
	if req.RecipientID == creatorID {
		return nil, fmt.Errorf("%w: cannot open a conversation with yourself", ErrValidation)
	}
	if _, err := s.userRepo.FindByID(ctx, req.RecipientID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find recipient: %w", err)
	}

	key := models.ParticipantKeyFor(creatorID, req.RecipientID)
	if existing, err := s.conversationRepo.FindByParticipantKey(ctx, key); err == nil {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateConversation, existing.ID)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check conversation: %w", err)
	}

	conversation := &models.Conversation{
		ID:             uuid.New().String(),
		ParticipantKey: key,
		Participants:   models.StringList{creatorID, req.RecipientID},
		CreatorID:      creatorID,
	}
	if err := s.conversationRepo.Create(ctx, conversation); err != nil {
		return nil, fmt.Errorf("failed to create conversation: %w", err)
	}

	s.broadcast.Publish(
		ws.NewEvent(ws.EventNewConversation, conversation),
		ws.UserRoom(req.RecipientID),
	)
	return conversation, nil
}

func (s *ConversationService) GetConversation(ctx context.Context, userID, conversationID string) (*models.Conversation, error) {
	conversation, err := s.conversationRepo.FindByID(ctx, conversationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrConversationNotFound
		}
		return nil, fmt.Errorf("failed to find conversation: %w", err)
	}
	if !conversation.HasParticipant(userID) {
		return nil, ErrForbidden
	}
	return conversation, nil
}

func (s *ConversationService) ListConversations(ctx context.Context, userID string) ([]*models.Conversation, error) {
	conversations, err := s.conversationRepo.ListForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	return conversations, nil
}
