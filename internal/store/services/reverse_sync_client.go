package services

import (
	"electromart/internal/store/models"
	"electromart/pkg/syncwire"
)

// RoleNotifier propagates a role change back to the user-management service.
// Calls are best-effort: the store is authoritative for roles on its own
// side, and the peer converges on its next push.
type RoleNotifier interface {
	NotifyRole(userID string, role models.Role, brand *models.Brand) error
}

// ReverseSyncClient tells the user-management service to raise a user's role,
// authenticated by the same shared secret as the forward channel. Brand
// details ride along for future use; the peer ignores them today.
type ReverseSyncClient struct {
	client *syncwire.Client
}

// NewReverseSyncClient creates a reverse sync client.
func NewReverseSyncClient(client *syncwire.Client) *ReverseSyncClient {
	return &ReverseSyncClient{client: client}
}

// NotifyRole pushes a role-only update for the user.
func (c *ReverseSyncClient) NotifyRole(userID string, role models.Role, brand *models.Brand) error {
	msg := syncwire.RoleUpdate{ID: userID, Role: string(role)}
	if brand != nil {
		msg.BrandID = brand.ID
		msg.BrandSlug = brand.Slug
	}
	return c.client.PostJSON("/internal/sync/users", msg)
}
