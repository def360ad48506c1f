package postgres

import (
	"context"
	"errors"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/sportsmatch/sportsmatch/internal/errs"
	"github.com/sportsmatch/sportsmatch/internal/model"
	"github.com/sportsmatch/sportsmatch/internal/relay"
)

// UserRepo implements UserRepository using PostgreSQL.
type UserRepo struct{ db *DB }

// NewUserRepo constructs a user repository.
func NewUserRepo(db *DB) *UserRepo { return &UserRepo{db: db} }

const userColumns = `id, name, email, unverified_email, avatar, role, introduction,
email_verification_status, email_verification_code, email_verification_code_expires_at,
password_digest, created_at`

// qualified for joins against tables that also carry an id column
const userColumnsQ = `u.id, u.name, u.email, u.unverified_email, u.avatar, u.role, u.introduction,
u.email_verification_status, u.email_verification_code, u.email_verification_code_expires_at,
u.password_digest, u.created_at`

func scanUser(row pgx.Row) (*model.User, error) {
	var (
		u    model.User
		role string
		evs  string
	)
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.UnverifiedEmail, &u.Avatar, &role,
		&u.Introduction, &evs, &u.EmailVerificationCode, &u.EmailVerificationExpires,
		&u.PasswordDigest, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	u.Role = model.UserRole(role)
	u.EmailVerificationStatus = model.EmailVerificationStatus(evs)
	return &u, nil
}

// GetByID selects a user by ID.
func (r *UserRepo) GetByID(ctx context.Context, id int64) (*model.User, error) {
	const q = `
SELECT ` + userColumns + `
FROM users WHERE id = $1`
	u, err := scanUser(r.db.Pool.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

// GetByIDs bulk-selects users. Missing ids are simply absent from the map.
func (r *UserRepo) GetByIDs(ctx context.Context, ids []int64) (map[int64]model.User, error) {
	q, args, err := psql.Select(userColumns).From("users").Where(sq.Eq{"id": ids}).ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.db.Pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[int64]model.User, len(ids))
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out[u.ID] = *u
	}
	return out, rows.Err()
}

// ListFollowing returns users the follower follows, newest follow first.
// Both ordering and the after-anchor run over relationship row ids; the
// anchor user id is resolved to its relationship row via a subselect.
func (r *UserRepo) ListFollowing(ctx context.Context, followerID int64, p relay.SearchParams) ([]model.User, error) {
	const q = `
SELECT ` + userColumnsQ + `
FROM users AS u
INNER JOIN relationships AS r ON u.id = r.followed_id
WHERE r.follower_id = $1
AND ($2 OR r.id < (SELECT id
                   FROM relationships
                   WHERE follower_id = $3
                   AND followed_id = $4))
ORDER BY r.id DESC
LIMIT $5`
	rows, err := r.db.Pool.Query(ctx, q, followerID, !p.UseAfter, followerID, p.After, p.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *u)
	}
	return out, rows.Err()
}

// HasNextFollowing reports whether the follower has a follow edge older
// than the (followerID, followedID) one. Probe counterpart of
// ListFollowing, scoped to the same follower.
func (r *UserRepo) HasNextFollowing(ctx context.Context, followerID, followedID int64) (bool, error) {
	const q = `
SELECT EXISTS (
    SELECT id
    FROM relationships
    WHERE follower_id = $1
    AND id < (SELECT id
              FROM relationships
              WHERE follower_id = $2
              AND followed_id = $3)
)`
	var exists bool
	if err := r.db.Pool.QueryRow(ctx, q, followerID, followerID, followedID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}
