package repository

import (
	"context"

	"github.com/sportsmatch/sportsmatch/internal/model"
)

// AuthenticationRepository reconciles external identities with local users.
type AuthenticationRepository interface {
	// GetUserByProviderUID loads the local user linked to the external
	// (provider, subject) identity. errs.ErrNotFound when no link exists.
	GetUserByProviderUID(ctx context.Context, provider model.AuthenticationProvider, uid string) (*model.User, error)

	// EmailExists reports whether any local user owns the email.
	EmailExists(ctx context.Context, email string) (bool, error)

	// CreateUserWithAuthentication provisions a local user from verified
	// provider claims together with its authentication row, atomically:
	// both inserts happen inside one transaction, and a failure of either
	// rolls the whole attempt back. A user row must never survive without
	// its authentication row.
	CreateUserWithAuthentication(ctx context.Context, provider model.AuthenticationProvider, info model.ExternalUserInfo, passwordDigest string) (*model.User, error)
}
