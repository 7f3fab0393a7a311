package domain

import (
	"context"
	"time"
)

// UserSummary is the public projection of a user attached to activities and
// messages: display data only, never credential material.
// swagger:model UserSummary
type UserSummary struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
}

// UserContact is the internal projection used for email notifications.
type UserContact struct {
	ID    string
	Name  string
	Email string
}

// UserRepository exposes read-only access to users. User identity is owned
// by an external system; this service only references users by id.
type UserRepository interface {
	GetSummary(ctx context.Context, id string) (*UserSummary, error)
	ListSummaries(ctx context.Context, ids []string) (map[string]*UserSummary, error)
	GetContact(ctx context.Context, id string) (*UserContact, error)
}

// TokenIssuer issues tokens (e.g. JWT) for an authenticated user.
type TokenIssuer interface {
	Issue(userID string, expiry time.Duration) (string, error)
}

// TokenVerifier verifies a token and returns the authenticated user ID.
type TokenVerifier interface {
	Verify(token string) (userID string, err error)
}
