// Package permissions defines the capability vocabulary for guild-scoped
// actions and the set type used to grant them to roles.
package permissions

import (
	"encoding/json"
	"fmt"

	"github.com/bits-and-blooms/bitset"
)

// Permission is an atomic authorization flag.
type Permission uint

const (
	SendMessages Permission = iota
	ManageChannels
	ManageRoles
	KickMembers
	CreateInvite
	ManageGuild
	// Administrator implies every other permission.
	Administrator

	permissionCount
)

var names = map[Permission]string{
	SendMessages:   "send-messages",
	ManageChannels: "manage-channels",
	ManageRoles:    "manage-roles",
	KickMembers:    "kick-members",
	CreateInvite:   "create-invite",
	ManageGuild:    "manage-guild",
	Administrator:  "administrator",
}

func (p Permission) String() string {
	if name, ok := names[p]; ok {
		return name
	}
	return fmt.Sprintf("permission(%d)", uint(p))
}

// Parse maps a permission name back to its Permission value.
func Parse(name string) (Permission, error) {
	for p, n := range names {
		if n == name {
			return p, nil
		}
	}
	return 0, fmt.Errorf("unknown permission %q", name)
}

// Universe lists every defined permission.
func Universe() []Permission {
	all := make([]Permission, 0, permissionCount)
	for p := Permission(0); p < permissionCount; p++ {
		all = append(all, p)
	}
	return all
}

// Set is an immutable-by-convention collection of permissions backed by a
// bitset. The zero value is the empty set. JSON form is the sorted list of
// permission names.
type Set struct {
	bits *bitset.BitSet
}

// NewSet builds a set holding exactly the given permissions.
func NewSet(perms ...Permission) Set {
	s := Set{bits: bitset.New(uint(permissionCount))}
	for _, p := range perms {
		s.bits.Set(uint(p))
	}
	return s
}

// All returns the full permission universe.
func All() Set {
	return NewSet(Universe()...)
}

// Has reports whether p itself is in the set.
func (s Set) Has(p Permission) bool {
	return s.bits != nil && s.bits.Test(uint(p))
}

// Allows reports whether the set grants p, either directly or through
// Administrator.
func (s Set) Allows(p Permission) bool {
	return s.Has(p) || s.Has(Administrator)
}

// Union returns a new set containing every permission from both sets.
func (s Set) Union(o Set) Set {
	switch {
	case s.bits == nil:
		return o.clone()
	case o.bits == nil:
		return s.clone()
	}
	return Set{bits: s.bits.Union(o.bits)}
}

// Empty reports whether the set grants nothing.
func (s Set) Empty() bool {
	return s.bits == nil || s.bits.None()
}

// Names returns the permission names in declaration order.
func (s Set) Names() []string {
	out := []string{}
	for p := Permission(0); p < permissionCount; p++ {
		if s.Has(p) {
			out = append(out, p.String())
		}
	}
	return out
}

func (s Set) clone() Set {
	if s.bits == nil {
		return Set{}
	}
	return Set{bits: s.bits.Clone()}
}

func (s Set) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Names())
}

func (s *Set) UnmarshalJSON(data []byte) error {
	var raw []string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	perms := make([]Permission, 0, len(raw))
	for _, name := range raw {
		p, err := Parse(name)
		if err != nil {
			return err
		}
		perms = append(perms, p)
	}
	*s = NewSet(perms...)
	return nil
}
