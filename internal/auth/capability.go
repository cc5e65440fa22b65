package auth

import (
	"context"

	"github.com/techexpert/helpdesk/internal/domain"
	"github.com/techexpert/helpdesk/internal/repository"
)

// CapabilityChecker answers whether a user may perform a capability. The
// lifecycle engine consults this collaborator instead of comparing role
// strings itself.
type CapabilityChecker interface {
	HasCapability(ctx context.Context, userID int64, capability domain.Capability) (bool, error)
}

type roleCapabilityChecker struct {
	users repository.UserRepository
}

// NewCapabilityChecker derives capabilities from stored role membership.
func NewCapabilityChecker(users repository.UserRepository) CapabilityChecker {
	return &roleCapabilityChecker{users: users}
}

func (c *roleCapabilityChecker) HasCapability(ctx context.Context, userID int64, capability domain.Capability) (bool, error) {
	user, err := c.users.GetByID(ctx, userID)
	if err != nil {
		return false, err
	}
	if !user.Active {
		return false, nil
	}
	for _, role := range user.Roles {
		for _, granted := range domain.CapabilitiesForRole(role) {
			if granted == capability {
				return true, nil
			}
		}
	}
	return false, nil
}
