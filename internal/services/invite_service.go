package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Gopher0727/Concord/internal/models"
	"github.com/Gopher0727/Concord/internal/permissions"
	"github.com/Gopher0727/Concord/internal/repositories"
	"github.com/Gopher0727/Concord/internal/ws"
)

type CreateInviteRequest struct {
	// MaxUses of zero means unlimited.
	MaxUses int `json:"max_uses" binding:"min=0"`
	// TTLHours of zero applies the default seven-day expiry.
	TTLHours int `json:"ttl_hours" binding:"min=0"`
}

type IInviteService interface {
	CreateInvite(ctx context.Context, creatorID, guildID string, req *CreateInviteRequest) (*models.Invite, error)
	Redeem(ctx context.Context, userID, code string) (*models.Guild, error)
	DeleteInvite(ctx context.Context, actorID, inviteID string) error
	ListGuildInvites(ctx context.Context, actorID, guildID string) ([]*models.Invite, error)
}

// InviteService is the invite ledger: it issues codes, enforces expiry and
// use counts, and drives the atomic consume-invite → add-member transition.
type InviteService struct {
	inviteRepo repositories.IInviteRepository
	guildRepo  repositories.IGuildRepository
	userRepo   repositories.IUserRepository
	broadcast  Broadcaster
}

func NewInviteService(
	inviteRepo repositories.IInviteRepository,
	guildRepo repositories.IGuildRepository,
	userRepo repositories.IUserRepository,
	broadcast Broadcaster,
) IInviteService {
	return &InviteService{
		inviteRepo: inviteRepo,
		guildRepo:  guildRepo,
		userRepo:   userRepo,
		broadcast:  broadcast,
	}
}

func (s *InviteService) CreateInvite(ctx context.Context, creatorID, guildID string, req *CreateInviteRequest) (*models.Invite, error) {
	guild, err := s.loadGuild(ctx, guildID)
	if err != nil {
		return nil, err
	}
	if !guild.IsMember(creatorID) {
		return nil, ErrNotMember
	}
	if !guild.HasCapability(creatorID, permissions.CreateInvite) {
		return nil, ErrForbidden
	}

	code, err := s.generateUniqueCode(ctx)
	if err != nil {
		return nil, err
	}

	ttl := models.DefaultInviteTTL
	if req.TTLHours > 0 {
		ttl = time.Duration(req.TTLHours) * time.Hour
	}

	invite := &models.Invite{
		ID:        uuid.New().String(),
		Code:      code,
		GuildID:   guild.ID,
		CreatorID: creatorID,
		MaxUses:   req.MaxUses,
		ExpiresAt: time.Now().Add(ttl),
	}
	if err := s.inviteRepo.Create(ctx, invite); err != nil {
		return nil, fmt.Errorf("failed to create invite: %w", err)
	}
	return invite, nil
}

// Redeem walks the invite state machine. The happy path delegates the
// three-part transition (member list, @everyone role, use counter) to a
// single store transaction, so a failed redeem leaves both the invite and
// the guild exactly as they were.
func (s *InviteService) Redeem(ctx context.Context, userID, code string) (*models.Guild, error) {
	invite, err := s.inviteRepo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInviteNotFound
		}
		return nil, fmt.Errorf("failed to find invite: %w", err)
	}
	if invite.Expired(time.Now()) {
		return nil, ErrInviteExpired
	}
	if invite.Exhausted() {
		return nil, ErrInviteExhausted
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	guild, _, err := s.inviteRepo.Redeem(ctx, code, userID)
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrInviteExpired):
			return nil, ErrInviteExpired
		case errors.Is(err, repositories.ErrInviteExhausted):
			return nil, ErrInviteExhausted
		case errors.Is(err, repositories.ErrAlreadyMember):
			return nil, ErrAlreadyMember
		case errors.Is(err, gorm.ErrRecordNotFound):
			return nil, ErrInviteNotFound
		}
		return nil, fmt.Errorf("failed to redeem invite: %w", err)
	}

	s.broadcast.Publish(
		ws.NewEvent(ws.EventMemberJoin, ws.MemberJoinPayload{GuildID: guild.ID, User: user}),
		ws.GuildRoom(guild.ID),
	)
	return guild, nil
}

// DeleteInvite is permitted for the invite's creator or anyone holding
// manage-guild.
func (s *InviteService) DeleteInvite(ctx context.Context, actorID, inviteID string) error {
	invite, err := s.inviteRepo.FindByID(ctx, inviteID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInviteNotFound
		}
		return fmt.Errorf("failed to find invite: %w", err)
	}

	if actorID != invite.CreatorID {
		guild, err := s.loadGuild(ctx, invite.GuildID)
		if err != nil {
			return err
		}
		if !guild.HasCapability(actorID, permissions.ManageGuild) {
			return ErrForbidden
		}
	}

	if err := s.inviteRepo.Delete(ctx, inviteID); err != nil {
		return fmt.Errorf("failed to delete invite: %w", err)
	}
	return nil
}

func (s *InviteService) ListGuildInvites(ctx context.Context, actorID, guildID string) ([]*models.Invite, error) {
	guild, err := s.loadGuild(ctx, guildID)
	if err != nil {
		return nil, err
	}
	if !guild.HasCapability(actorID, permissions.ManageGuild) {
		return nil, ErrForbidden
	}

	invites, err := s.inviteRepo.ListByGuild(ctx, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to list invites: %w", err)
	}
	return invites, nil
}

// generateUniqueCode retries against the store's unique code index; the
// store-level constraint is what actually guarantees global uniqueness.
func (s *InviteService) generateUniqueCode(ctx context.Context) (string, error) {
	const maxAttempts = 10
	for i := 0; i < maxAttempts; i++ {
		code := generateInviteCode()
		_, err := s.inviteRepo.FindByCode(ctx, code)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return code, nil
			}
			return "", fmt.Errorf("failed to check invite code: %w", err)
		}
	}
	return "", errors.New("failed to generate unique invite code after maximum attempts")
}

// generateInviteCode produces a random 8-character hex code.
func generateInviteCode() string {
	bytes := make([]byte, 4)
	if _, err := rand.Read(bytes); err != nil {
		return uuid.New().String()[:8]
	}
	return hex.EncodeToString(bytes)
}

func (s *InviteService) loadGuild(ctx context.Context, guildID string) (*models.Guild, error) {
	guild, err := s.guildRepo.FindByID(ctx, guildID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGuildNotFound
		}
		return nil, fmt.Errorf("failed to find guild: %w", err)
	}
	return guild, nil
}
