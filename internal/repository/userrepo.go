// Package repository defines storage interfaces implemented by concrete backends.
package repository

import (
	"context"

	"github.com/sportsmatch/sportsmatch/internal/model"
	"github.com/sportsmatch/sportsmatch/internal/relay"
)

// UserRepository provides read access to users and the follow graph.
type UserRepository interface {
	// GetByID loads a user by ID.
	GetByID(ctx context.Context, id int64) (*model.User, error)

	// GetByIDs bulk-loads users; absent ids are simply missing from the map.
	GetByIDs(ctx context.Context, ids []int64) (map[int64]model.User, error)

	// ListFollowing returns users the follower follows, newest follow first.
	// Ordering and the after-anchor are by relationship row id, not user id.
	ListFollowing(ctx context.Context, followerID int64, p relay.SearchParams) ([]model.User, error)

	// HasNextFollowing reports whether a follow edge older than the
	// (followerID, followedID) edge exists. Probe counterpart of ListFollowing.
	HasNextFollowing(ctx context.Context, followerID, followedID int64) (bool, error)
}
