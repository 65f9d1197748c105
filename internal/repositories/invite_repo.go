package repositories

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Gopher0727/Concord/internal/models"
)

type IInviteRepository interface {
	Create(ctx context.Context, invite *models.Invite) error
	FindByID(ctx context.Context, id string) (*models.Invite, error)
	FindByCode(ctx context.Context, code string) (*models.Invite, error)
	Delete(ctx context.Context, id string) error
	ListByGuild(ctx context.Context, guildID string) ([]*models.Invite, error)
	// Redeem applies the full consume-invite transition atomically: add the
	// user to the guild's member list and @everyone role, and increment the
	// invite's use counter. On any failure the prior state is unchanged.
	Redeem(ctx context.Context, code, userID string) (*models.Guild, *models.Invite, error)
}

type InviteRepository struct {
	db *gorm.DB
}

func NewInviteRepository(db *gorm.DB) IInviteRepository {
	return &InviteRepository{db: db}
}

func (r *InviteRepository) Create(ctx context.Context, invite *models.Invite) error {
	return r.db.WithContext(ctx).Create(invite).Error
}

func (r *InviteRepository) FindByID(ctx context.Context, id string) (*models.Invite, error) {
	var invite models.Invite
	err := r.db.WithContext(ctx).First(&invite, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &invite, nil
}

func (r *InviteRepository) FindByCode(ctx context.Context, code string) (*models.Invite, error) {
	var invite models.Invite
	err := r.db.WithContext(ctx).First(&invite, "code = ?", code).Error
	if err != nil {
		return nil, err
	}
	return &invite, nil
}

func (r *InviteRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&models.Invite{}, "id = ?", id).Error
}

func (r *InviteRepository) ListByGuild(ctx context.Context, guildID string) ([]*models.Invite, error) {
	var invites []*models.Invite
	err := r.db.WithContext(ctx).
		Where("guild_id = ?", guildID).
		Order("created_at desc").
		Find(&invites).Error
	return invites, err
}

func (r *InviteRepository) Redeem(ctx context.Context, code, userID string) (*models.Guild, *models.Invite, error) {
	var guild models.Guild
	var invite models.Invite

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Lock the invite and guild rows for the duration of the transition
		// so concurrent redemptions serialize on the use counter.
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&invite, "code = ?", code).Error; err != nil {
			return err
		}
		if invite.Expired(time.Now()) {
			return ErrInviteExpired
		}
		if invite.Exhausted() {
			return ErrInviteExhausted
		}

		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&guild, "id = ?", invite.GuildID).Error; err != nil {
			return err
		}
		if guild.IsMember(userID) {
			return ErrAlreadyMember
		}

		guild.AddMember(userID)
		if err := tx.Model(&models.Guild{}).
			Where("id = ?", guild.ID).
			Updates(map[string]any{"members": guild.Members, "roles": guild.Roles}).Error; err != nil {
			return err
		}

		// Guarded increment: the row lock makes the Exhausted check above
		// sufficient, the guard is a second line of defense.
		res := tx.Model(&models.Invite{}).
			Where("id = ? AND (max_uses = 0 OR uses < max_uses)", invite.ID).
			Update("uses", gorm.Expr("uses + 1"))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrInviteExhausted
		}
		invite.Uses++
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return &guild, &invite, nil
}
