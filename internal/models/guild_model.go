package models

import (
	"time"

	"github.com/Gopher0727/Concord/internal/permissions"
)

// EveryoneRoleName is the default role every member belongs to.
const EveryoneRoleName = "@everyone"

// Role is a named permission bundle embedded in its guild row. Roles are
// index-addressable within the guild aggregate so that every role mutation
// rides the guild's single-row atomic update.
type Role struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Color       string          `json:"color"`
	Position    int             `json:"position"`
	Permissions permissions.Set `json:"permissions"`
	Members     StringList      `json:"members"`

	// Managed roles are created with the guild and cannot be deleted.
	Managed bool `json:"managed"`
}

// Guild is the aggregate root for a community: member ids and roles are
// serialized into jsonb columns on the guild row itself.
type Guild struct {
	ID      string     `gorm:"primaryKey;type:varchar(64)" json:"id"`
	Name    string     `gorm:"not null;type:varchar(255)" json:"name"`
	OwnerID string     `gorm:"not null;type:varchar(64)" json:"owner_id"`
	Members StringList `gorm:"type:jsonb" json:"members"`
	Roles   RoleList   `gorm:"type:jsonb" json:"roles"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Guild) TableName() string {
	return "guilds"
}

// IsMember reports whether userID is in the member list. The owner is always
// implicitly a member.
func (g *Guild) IsMember(userID string) bool {
	return userID == g.OwnerID || g.Members.Contains(userID)
}

// EffectiveCapabilities resolves the capability set for userID against the
// current guild snapshot. The owner holds the full permission universe
// regardless of role assignments; everyone else gets the union of the
// permissions of every role whose member set contains them. The receiver is
// never mutated, and no result is cached: role membership can change between
// calls, so every gated action re-resolves.
func (g *Guild) EffectiveCapabilities(userID string) permissions.Set {
	if userID == g.OwnerID {
		return permissions.All()
	}
	var set permissions.Set
	for i := range g.Roles {
		if g.Roles[i].Members.Contains(userID) {
			set = set.Union(g.Roles[i].Permissions)
		}
	}
	return set
}

// HasCapability reports whether userID may perform an action gated by p.
// Administrator implies every other permission.
func (g *Guild) HasCapability(userID string, p permissions.Permission) bool {
	return g.EffectiveCapabilities(userID).Allows(p)
}

// RoleByID returns a pointer into the guild's role slice, or nil.
func (g *Guild) RoleByID(roleID string) *Role {
	for i := range g.Roles {
		if g.Roles[i].ID == roleID {
			return &g.Roles[i]
		}
	}
	return nil
}

// EveryoneRole returns the @everyone role, or nil if the aggregate is corrupt.
func (g *Guild) EveryoneRole() *Role {
	for i := range g.Roles {
		if g.Roles[i].Name == EveryoneRoleName {
			return &g.Roles[i]
		}
	}
	return nil
}

// AddMember inserts userID into the member list and the @everyone role.
// Adding an existing member is a no-op.
func (g *Guild) AddMember(userID string) {
	if !g.Members.Contains(userID) {
		g.Members = append(g.Members, userID)
	}
	if everyone := g.EveryoneRole(); everyone != nil && !everyone.Members.Contains(userID) {
		everyone.Members = append(everyone.Members, userID)
	}
}

// RemoveMember removes userID from the member list and from every role
// member set, keeping the aggregate internally consistent.
func (g *Guild) RemoveMember(userID string) {
	g.Members = g.Members.Without(userID)
	for i := range g.Roles {
		g.Roles[i].Members = g.Roles[i].Members.Without(userID)
	}
}

// NextRolePosition returns a rank above every existing role.
func (g *Guild) NextRolePosition() int {
	max := -1
	for i := range g.Roles {
		if g.Roles[i].Position > max {
			max = g.Roles[i].Position
		}
	}
	return max + 1
}
