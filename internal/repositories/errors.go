package repositories

import "errors"

// Typed outcomes of the invite redemption transition. The transaction in
// InviteRepository.Redeem re-validates these under row locks, so they can
// surface even after the service-level pre-checks passed.
var (
	ErrInviteExpired   = errors.New("invite has expired")
	ErrInviteExhausted = errors.New("invite has no remaining uses")
	ErrAlreadyMember   = errors.New("user is already a member of this guild")
)
