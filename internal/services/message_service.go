package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Gopher0727/Concord/internal/models"
	"github.com/Gopher0727/Concord/internal/permissions"
	"github.com/Gopher0727/Concord/internal/repositories"
	"github.com/Gopher0727/Concord/internal/ws"
)

type SendMessageRequest struct {
	Content     string   `json:"content" binding:"required"`
	Attachments []string `json:"attachments"`
}

type EditMessageRequest struct {
	Content string `json:"content" binding:"required"`
}

type ListMessagesRequest struct {
	Limit  int
	Before time.Time
}

type IMessageService interface {
	SendChannelMessage(ctx context.Context, authorID, channelID string, req *SendMessageRequest) (*models.Message, error)
	SendDirectMessage(ctx context.Context, authorID, conversationID string, req *SendMessageRequest) (*models.Message, error)
	EditMessage(ctx context.Context, actorID, messageID string, req *EditMessageRequest) (*models.Message, error)
	DeleteMessage(ctx context.Context, actorID, messageID string) error
	ListChannelMessages(ctx context.Context, userID, channelID string, req *ListMessagesRequest) ([]*models.Message, error)
	ListConversationMessages(ctx context.Context, userID, conversationID string, req *ListMessagesRequest) ([]*models.Message, error)
}

type MessageService struct {
	messageRepo      repositories.IMessageRepository
	channelRepo      repositories.IChannelRepository
	guildRepo        repositories.IGuildRepository
	conversationRepo repositories.IConversationRepository
	broadcast        Broadcaster
}

func NewMessageService(
	messageRepo repositories.IMessageRepository,
	channelRepo repositories.IChannelRepository,
	guildRepo repositories.IGuildRepository,
	conversationRepo repositories.IConversationRepository,
	broadcast Broadcaster,
) IMessageService {
	return &MessageService{
		messageRepo:      messageRepo,
		channelRepo:      channelRepo,
		guildRepo:        guildRepo,
		conversationRepo: conversationRepo,
		broadcast:        broadcast,
	}
}

// SendChannelMessage requires guild membership and the send-messages
// capability; on success the event targets only the channel room.
func (s *MessageService) SendChannelMessage(ctx context.Context, authorID, channelID string, req *SendMessageRequest) (*models.Message, error) {
	content, err := validateContent(req.Content)
	if err != nil {
		return nil, err
	}

	channel, err := s.channelRepo.FindByID(ctx, channelID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrChannelNotFound
		}
		return nil, fmt.Errorf("failed to find channel: %w", err)
	}
	guild, err := s.guildRepo.FindByID(ctx, channel.GuildID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGuildNotFound
		}
		return nil, fmt.Errorf("failed to find guild: %w", err)
	}
	if !guild.IsMember(authorID) {
		return nil, ErrNotMember
	}
	if !guild.HasCapability(authorID, permissions.SendMessages) {
		return nil, ErrForbidden
	}

	message := &models.Message{
		ID:          uuid.New().String(),
		Content:     content,
		AuthorID:    authorID,
		ChannelID:   &channel.ID,
		Attachments: req.Attachments,
	}
	if err := s.messageRepo.Create(ctx, message); err != nil {
		return nil, fmt.Errorf("failed to create message: %w", err)
	}

	s.broadcast.Publish(ws.NewEvent(ws.EventNewMessage, message), ws.ChannelRoom(channel.ID))
	return message, nil
}

// SendDirectMessage is authorized by participation alone. The event targets
// the conversation room plus each participant's user room, so a recipient who
// never joined the conversation room is still notified.
func (s *MessageService) SendDirectMessage(ctx context.Context, authorID, conversationID string, req *SendMessageRequest) (*models.Message, error) {
	content, err := validateContent(req.Content)
	if err != nil {
		return nil, err
	}

	conversation, err := s.loadConversation(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if !conversation.HasParticipant(authorID) {
		return nil, ErrForbidden
	}

	message := &models.Message{
		ID:             uuid.New().String(),
		Content:        content,
		AuthorID:       authorID,
		ConversationID: &conversation.ID,
		Attachments:    req.Attachments,
	}
	if err := s.messageRepo.Create(ctx, message); err != nil {
		return nil, fmt.Errorf("failed to create message: %w", err)
	}
	if err := s.conversationRepo.SetLastMessage(ctx, conversation.ID, message.ID); err != nil {
		return nil, fmt.Errorf("failed to update conversation: %w", err)
	}

	s.broadcast.Publish(ws.NewEvent(ws.EventNewMessage, message), dmRooms(conversation)...)
	return message, nil
}

// EditMessage is authorized by authorship alone, independent of role
// permissions.
func (s *MessageService) EditMessage(ctx context.Context, actorID, messageID string, req *EditMessageRequest) (*models.Message, error) {
	content, err := validateContent(req.Content)
	if err != nil {
		return nil, err
	}

	message, err := s.loadMessage(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if message.AuthorID != actorID {
		return nil, ErrForbidden
	}

	message.Content = content
	if err := s.messageRepo.Update(ctx, message); err != nil {
		return nil, fmt.Errorf("failed to update message: %w", err)
	}

	rooms, err := s.containerRooms(ctx, message)
	if err != nil {
		return nil, err
	}
	s.broadcast.Publish(ws.NewEvent(ws.EventMessageUpdate, message), rooms...)
	return message, nil
}

func (s *MessageService) DeleteMessage(ctx context.Context, actorID, messageID string) error {
	message, err := s.loadMessage(ctx, messageID)
	if err != nil {
		return err
	}
	if message.AuthorID != actorID {
		return ErrForbidden
	}

	if err := s.messageRepo.Delete(ctx, messageID); err != nil {
		return fmt.Errorf("failed to delete message: %w", err)
	}

	rooms, err := s.containerRooms(ctx, message)
	if err != nil {
		return err
	}
	payload := ws.MessageDeletePayload{
		ID:             message.ID,
		ChannelID:      message.ChannelID,
		ConversationID: message.ConversationID,
	}
	s.broadcast.Publish(ws.NewEvent(ws.EventMessageDelete, payload), rooms...)
	return nil
}

func (s *MessageService) ListChannelMessages(ctx context.Context, userID, channelID string, req *ListMessagesRequest) ([]*models.Message, error) {
	channel, err := s.channelRepo.FindByID(ctx, channelID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrChannelNotFound
		}
		return nil, fmt.Errorf("failed to find channel: %w", err)
	}
	guild, err := s.guildRepo.FindByID(ctx, channel.GuildID)
	if err != nil {
		return nil, fmt.Errorf("failed to find guild: %w", err)
	}
	if !guild.IsMember(userID) {
		return nil, ErrNotMember
	}

	messages, err := s.messageRepo.ListByChannel(ctx, channelID, normalizeLimit(req.Limit), req.Before)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	return messages, nil
}

func (s *MessageService) ListConversationMessages(ctx context.Context, userID, conversationID string, req *ListMessagesRequest) ([]*models.Message, error) {
	conversation, err := s.loadConversation(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if !conversation.HasParticipant(userID) {
		return nil, ErrForbidden
	}

	messages, err := s.messageRepo.ListByConversation(ctx, conversationID, normalizeLimit(req.Limit), req.Before)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	return messages, nil
}

// containerRooms resolves the broadcast targets for an existing message:
// its channel room, or for direct messages the conversation room plus both
// participants' user rooms.
func (s *MessageService) containerRooms(ctx context.Context, message *models.Message) ([]string, error) {
	if message.ChannelID != nil {
		return []string{ws.ChannelRoom(*message.ChannelID)}, nil
	}
	conversation, err := s.loadConversation(ctx, *message.ConversationID)
	if err != nil {
		return nil, err
	}
	return dmRooms(conversation), nil
}

func dmRooms(conversation *models.Conversation) []string {
	rooms := []string{ws.ConversationRoom(conversation.ID)}
	for _, participant := range conversation.Participants {
		rooms = append(rooms, ws.UserRoom(participant))
	}
	return rooms
}

func (s *MessageService) loadMessage(ctx context.Context, messageID string) (*models.Message, error) {
	message, err := s.messageRepo.FindByID(ctx, messageID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMessageNotFound
		}
		return nil, fmt.Errorf("failed to find message: %w", err)
	}
	return message, nil
}

func (s *MessageService) loadConversation(ctx context.Context, conversationID string) (*models.Conversation, error) {
	conversation, err := s.conversationRepo.FindByID(ctx, conversationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrConversationNotFound
		}
		return nil, fmt.Errorf("failed to find conversation: %w", err)
	}
	return conversation, nil
}

func validateContent(content string) (string, error) {
	trimmed := strings.TrimSpace(content)
	if len(trimmed) == 0 {
		return "", fmt.Errorf("%w: message content must not be empty", ErrValidation)
	}
	if len(trimmed) > models.MaxMessageLength {
		return "", fmt.Errorf("%w: message content exceeds %d characters", ErrValidation, models.MaxMessageLength)
	}
	return trimmed, nil
}

func normalizeLimit(limit int) int {
	if limit <= 0 || limit > 100 {
		return 50
	}
	return limit
}
