package repository

import (
	"context"

	"github.com/sportsmatch/sportsmatch/internal/model"
	"github.com/sportsmatch/sportsmatch/internal/relay"
)

// RecruitmentFilter bundles the predicate shared by a page query and its
// has-next probe, so the two can never drift apart at call sites.
type RecruitmentFilter struct {
	UseStatus bool
	Status    model.RecruitmentStatus
}

// RecruitmentRepository provides paginated and bulk access to recruitments.
// Every List method is paired with the HasNext probe that shares its
// filter; PageInfo must be derived through that pair only.
type RecruitmentRepository interface {
	// Get loads one recruitment by id.
	Get(ctx context.Context, id int64) (*model.Recruitment, error)

	// ListPublished returns published recruitments, newest first.
	ListPublished(ctx context.Context, p relay.SearchParams) ([]model.Recruitment, error)

	// HasNextPublished reports whether a published recruitment with id
	// strictly below the anchor exists.
	HasNextPublished(ctx context.Context, anchor int64) (bool, error)

	// ListByUser returns one user's recruitments, optionally filtered by
	// status, newest first.
	ListByUser(ctx context.Context, userID int64, f RecruitmentFilter, p relay.SearchParams) ([]model.Recruitment, error)

	// HasNextByUser is the probe counterpart of ListByUser.
	HasNextByUser(ctx context.Context, userID int64, f RecruitmentFilter, anchor int64) (bool, error)

	// ListStockedByUser returns recruitments the user stocked, ordered by
	// stock row id descending; the after-anchor is a recruitment id whose
	// position is resolved through the user's stock row.
	ListStockedByUser(ctx context.Context, userID int64, p relay.SearchParams) ([]model.Recruitment, error)

	// HasNextStockedByUser is the probe counterpart of ListStockedByUser.
	HasNextStockedByUser(ctx context.Context, userID, anchor int64) (bool, error)
}
