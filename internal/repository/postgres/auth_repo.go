package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/sportsmatch/sportsmatch/internal/errs"
	"github.com/sportsmatch/sportsmatch/internal/model"
)

// AuthenticationRepo implements AuthenticationRepository using PostgreSQL.
type AuthenticationRepo struct{ db *DB }

// NewAuthenticationRepo constructs an authentication repository.
func NewAuthenticationRepo(db *DB) *AuthenticationRepo { return &AuthenticationRepo{db: db} }

// GetUserByProviderUID selects the local user linked to the external
// (provider, subject) identity.
func (r *AuthenticationRepo) GetUserByProviderUID(ctx context.Context, provider model.AuthenticationProvider, uid string) (*model.User, error) {
	const q = `
SELECT ` + userColumnsQ + `
FROM users AS u
WHERE EXISTS (
    SELECT 1
    FROM authentications AS a
    WHERE u.id = a.user_id
    AND a.provider = $1
    AND a.uid = $2
)`
	u, err := scanUser(r.db.Pool.QueryRow(ctx, q, string(provider), uid))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

// EmailExists reports whether any local user owns the email.
func (r *AuthenticationRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`
	var exists bool
	if err := r.db.Pool.QueryRow(ctx, q, email).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// CreateUserWithAuthentication provisions a local user from verified
// provider claims, inside one transaction with its authentication row.
// Either insert failing rolls back both: a user row never persists
// without an authentication row.
func (r *AuthenticationRepo) CreateUserWithAuthentication(
	ctx context.Context, provider model.AuthenticationProvider, info model.ExternalUserInfo, passwordDigest string,
) (u *model.User, err error) {
	tx, err := r.db.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
			return
		}
		if e := tx.Commit(ctx); e != nil {
			err = e
		}
	}()

	const insUser = `
INSERT INTO users (name, email, avatar, role, email_verification_status, password_digest)
VALUES ($1, $2, $3, 'general', 'verified', $4)
RETURNING ` + userColumns
	const insAuth = `
INSERT INTO authentications (provider, uid, user_id)
VALUES ($1, $2, $3)`

	avatar := defaultAvatar
	if info.Picture != nil {
		avatar = *info.Picture
	}
	u, err = scanUser(tx.QueryRow(ctx, insUser, info.Name, info.Email, avatar, passwordDigest))
	if err != nil {
		if isUniqueViolation(err) {
			err = errs.ErrEmailTaken
		}
		return nil, err
	}

	if _, err = tx.Exec(ctx, insAuth, string(provider), info.Subject, u.ID); err != nil {
		if isUniqueViolation(err) {
			err = errs.ErrAlreadyExists
		}
		return nil, err
	}
	return u, nil
}

// defaultAvatar is used when the provider supplies no picture claim.
const defaultAvatar = "https://storage.googleapis.com/sportsmatch-assets/default-avatar.png"
