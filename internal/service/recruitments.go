// Package service contains application services for browsing and login.
package service

import (
	"context"

	"github.com/sportsmatch/sportsmatch/internal/model"
	"github.com/sportsmatch/sportsmatch/internal/relay"
	"github.com/sportsmatch/sportsmatch/internal/repository"
)

// Node kinds encoded into opaque ids and cursors.
const (
	KindUser        = "User"
	KindRecruitment = "Recruitment"
	KindTag         = "Tag"
	KindSport       = "Sport"
	KindPrefecture  = "Prefecture"
)

// BrowseService exposes the collections and detail lookups of the API.
type BrowseService interface {
	// Recruitment loads one recruitment. errs.ErrNotFound when absent.
	Recruitment(ctx context.Context, id int64) (*model.Recruitment, error)

	// User loads one user. errs.ErrNotFound when absent.
	User(ctx context.Context, id int64) (*model.User, error)

	// PublishedRecruitments pages through all published recruitments,
	// newest first.
	PublishedRecruitments(ctx context.Context, first *int32, after *string) (relay.Connection[model.Recruitment], error)

	// UserRecruitments pages through one user's recruitments with an
	// optional status filter.
	UserRecruitments(ctx context.Context, userID int64, f repository.RecruitmentFilter, first *int32, after *string) (relay.Connection[model.Recruitment], error)

	// StockedRecruitments pages through the recruitments a user stocked,
	// ordered by when they were stocked.
	StockedRecruitments(ctx context.Context, userID int64, first *int32, after *string) (relay.Connection[model.Recruitment], error)

	// Following pages through the users someone follows, ordered by when
	// the follow happened.
	Following(ctx context.Context, followerID int64, first *int32, after *string) (relay.Connection[model.User], error)
}

// BrowseServiceImpl implements BrowseService over the repositories.
type BrowseServiceImpl struct {
	recruitments repository.RecruitmentRepository
	users        repository.UserRepository
}

// NewBrowseService constructs BrowseService with required dependencies.
func NewBrowseService(recruitments repository.RecruitmentRepository, users repository.UserRepository) *BrowseServiceImpl {
	return &BrowseServiceImpl{recruitments: recruitments, users: users}
}

func recruitmentID(r model.Recruitment) int64 { return r.ID }
func userID(u model.User) int64               { return u.ID }

// Recruitment loads one recruitment by id.
func (s *BrowseServiceImpl) Recruitment(ctx context.Context, id int64) (*model.Recruitment, error) {
	return s.recruitments.Get(ctx, id)
}

// User loads one user by id.
func (s *BrowseServiceImpl) User(ctx context.Context, id int64) (*model.User, error) {
	return s.users.GetByID(ctx, id)
}

// PublishedRecruitments lists published recruitments; the has-next probe
// runs under the same published-only predicate as the page query.
func (s *BrowseServiceImpl) PublishedRecruitments(ctx context.Context, first *int32, after *string) (relay.Connection[model.Recruitment], error) {
	p, err := relay.NewSearchParams(first, after)
	if err != nil {
		return relay.Connection[model.Recruitment]{}, err
	}
	items, err := s.recruitments.ListPublished(ctx, p)
	if err != nil {
		return relay.Connection[model.Recruitment]{}, err
	}
	return relay.NewConnection(ctx, items, KindRecruitment, recruitmentID, s.recruitments.HasNextPublished)
}

// UserRecruitments lists one user's recruitments; the probe carries the
// identical owner and status filter.
func (s *BrowseServiceImpl) UserRecruitments(ctx context.Context, ownerID int64, f repository.RecruitmentFilter, first *int32, after *string) (relay.Connection[model.Recruitment], error) {
	p, err := relay.NewSearchParams(first, after)
	if err != nil {
		return relay.Connection[model.Recruitment]{}, err
	}
	items, err := s.recruitments.ListByUser(ctx, ownerID, f, p)
	if err != nil {
		return relay.Connection[model.Recruitment]{}, err
	}
	probe := func(ctx context.Context, anchor int64) (bool, error) {
		return s.recruitments.HasNextByUser(ctx, ownerID, f, anchor)
	}
	return relay.NewConnection(ctx, items, KindRecruitment, recruitmentID, probe)
}

// StockedRecruitments lists a user's stocked recruitments. Ordering and
// probing run over the user's stock rows, not recruitment ids.
func (s *BrowseServiceImpl) StockedRecruitments(ctx context.Context, ownerID int64, first *int32, after *string) (relay.Connection[model.Recruitment], error) {
	p, err := relay.NewSearchParams(first, after)
	if err != nil {
		return relay.Connection[model.Recruitment]{}, err
	}
	items, err := s.recruitments.ListStockedByUser(ctx, ownerID, p)
	if err != nil {
		return relay.Connection[model.Recruitment]{}, err
	}
	probe := func(ctx context.Context, anchor int64) (bool, error) {
		return s.recruitments.HasNextStockedByUser(ctx, ownerID, anchor)
	}
	return relay.NewConnection(ctx, items, KindRecruitment, recruitmentID, probe)
}

// Following lists followed users. Cursors encode user ids; their rank in
// the ordering is resolved through the follower's relationship rows.
func (s *BrowseServiceImpl) Following(ctx context.Context, followerID int64, first *int32, after *string) (relay.Connection[model.User], error) {
	p, err := relay.NewSearchParams(first, after)
	if err != nil {
		return relay.Connection[model.User]{}, err
	}
	items, err := s.users.ListFollowing(ctx, followerID, p)
	if err != nil {
		return relay.Connection[model.User]{}, err
	}
	probe := func(ctx context.Context, anchor int64) (bool, error) {
		return s.users.HasNextFollowing(ctx, followerID, anchor)
	}
	return relay.NewConnection(ctx, items, KindUser, userID, probe)
}
