package repository

import (
	"context"

	"github.com/sportsmatch/sportsmatch/internal/model"
)

// TagRepository provides bulk access to recruitment tags.
type TagRepository interface {
	// ByRecruitmentIDs returns the tags of each recruitment. Recruitments
	// without tags are absent from the map; callers treat that as an
	// empty list, not an error.
	ByRecruitmentIDs(ctx context.Context, recruitmentIDs []int64) (map[int64][]model.Tag, error)
}

// SportRepository provides bulk access to the sports reference table.
type SportRepository interface {
	GetByIDs(ctx context.Context, ids []int64) (map[int64]model.Sport, error)
}

// PrefectureRepository provides bulk access to the prefectures reference table.
type PrefectureRepository interface {
	GetByIDs(ctx context.Context, ids []int64) (map[int64]model.Prefecture, error)
}

// StockRepository provides bulk access to stock associations.
// Pair keys are ordered tuples [user_id, recruitment_id]; the
// association is directional.
type StockRepository interface {
	// CountByRecruitmentIDs returns each recruitment's stock count.
	CountByRecruitmentIDs(ctx context.Context, recruitmentIDs []int64) (map[int64]int64, error)

	// ExistingPairs reports which of the given [user_id, recruitment_id]
	// pairs have a stock row.
	ExistingPairs(ctx context.Context, pairs [][2]int64) (map[[2]int64]struct{}, error)
}

// FollowRepository provides bulk access to follow edges.
// Pair keys are ordered tuples [follower_id, followed_id].
type FollowRepository interface {
	// ExistingPairs reports which of the given [follower_id, followed_id]
	// pairs have a relationship row.
	ExistingPairs(ctx context.Context, pairs [][2]int64) (map[[2]int64]struct{}, error)
}
