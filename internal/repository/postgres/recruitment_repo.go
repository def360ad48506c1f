package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/sportsmatch/sportsmatch/internal/errs"
	"github.com/sportsmatch/sportsmatch/internal/model"
	"github.com/sportsmatch/sportsmatch/internal/relay"
	"github.com/sportsmatch/sportsmatch/internal/repository"
)

// RecruitmentRepo implements RecruitmentRepository using PostgreSQL.
type RecruitmentRepo struct{ db *DB }

// NewRecruitmentRepo constructs a recruitment repository.
func NewRecruitmentRepo(db *DB) *RecruitmentRepo { return &RecruitmentRepo{db: db} }

const recruitmentColumns = `id, title, category, venue, venue_lat, venue_lng, start_at,
closing_at, detail, sport_id, prefecture_id, status, user_id, published_at, created_at`

const recruitmentColumnsQ = `r.id, r.title, r.category, r.venue, r.venue_lat, r.venue_lng, r.start_at,
r.closing_at, r.detail, r.sport_id, r.prefecture_id, r.status, r.user_id, r.published_at, r.created_at`

func scanRecruitment(row pgx.Row) (*model.Recruitment, error) {
	var (
		rec      model.Recruitment
		category string
		status   string
	)
	err := row.Scan(&rec.ID, &rec.Title, &category, &rec.Venue, &rec.VenueLat, &rec.VenueLng,
		&rec.StartAt, &rec.ClosingAt, &rec.Detail, &rec.SportID, &rec.PrefectureID,
		&status, &rec.UserID, &rec.PublishedAt, &rec.CreatedAt)
	if err != nil {
		return nil, err
	}
	rec.Category = model.RecruitmentCategory(category)
	rec.Status = model.RecruitmentStatus(status)
	return &rec, nil
}

func (r *RecruitmentRepo) queryMany(ctx context.Context, q string, args ...any) ([]model.Recruitment, error) {
	rows, err := r.db.Pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Recruitment
	for rows.Next() {
		rec, err := scanRecruitment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}

// Get selects one recruitment by id.
func (r *RecruitmentRepo) Get(ctx context.Context, id int64) (*model.Recruitment, error) {
	const q = `
SELECT ` + recruitmentColumns + `
FROM recruitments WHERE id = $1`
	rec, err := scanRecruitment(r.db.Pool.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return rec, nil
}

// ListPublished returns published recruitments, newest first. With
// UseAfter unset the anchor predicate collapses to TRUE: the first page
// is unbounded rather than bounded by id 0.
func (r *RecruitmentRepo) ListPublished(ctx context.Context, p relay.SearchParams) ([]model.Recruitment, error) {
	const q = `
SELECT ` + recruitmentColumns + `
FROM recruitments
WHERE ($1 OR id < $2)
AND status = 'published'
ORDER BY id DESC
LIMIT $3`
	return r.queryMany(ctx, q, !p.UseAfter, p.After, p.Limit)
}

// HasNextPublished reports whether a published recruitment beyond the
// anchor exists. Probe counterpart of ListPublished.
func (r *RecruitmentRepo) HasNextPublished(ctx context.Context, anchor int64) (bool, error) {
	const q = `
SELECT EXISTS (
    SELECT id
    FROM recruitments
    WHERE id < $1
    AND status = 'published'
)`
	var exists bool
	if err := r.db.Pool.QueryRow(ctx, q, anchor).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// ListByUser returns one user's recruitments, optionally status-filtered,
// newest first.
func (r *RecruitmentRepo) ListByUser(ctx context.Context, userID int64, f repository.RecruitmentFilter, p relay.SearchParams) ([]model.Recruitment, error) {
	const q = `
SELECT ` + recruitmentColumns + `
FROM recruitments
WHERE user_id = $1
AND ($2 OR status = $3)
AND ($4 OR id < $5)
ORDER BY id DESC
LIMIT $6`
	return r.queryMany(ctx, q, userID, !f.UseStatus, string(f.Status), !p.UseAfter, p.After, p.Limit)
}

// HasNextByUser is the probe counterpart of ListByUser: same owner, same
// status predicate.
func (r *RecruitmentRepo) HasNextByUser(ctx context.Context, userID int64, f repository.RecruitmentFilter, anchor int64) (bool, error) {
	const q = `
SELECT EXISTS (
    SELECT id
    FROM recruitments
    WHERE user_id = $1
    AND ($2 OR status = $3)
    AND id < $4
)`
	var exists bool
	if err := r.db.Pool.QueryRow(ctx, q, userID, !f.UseStatus, string(f.Status), anchor).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// ListStockedByUser returns recruitments the user stocked, ordered by
// stock row id descending. The anchor is a recruitment id; its position
// in the ordering is resolved through the user's own stock row.
func (r *RecruitmentRepo) ListStockedByUser(ctx context.Context, userID int64, p relay.SearchParams) ([]model.Recruitment, error) {
	const q = `
SELECT ` + recruitmentColumnsQ + `
FROM recruitments AS r
INNER JOIN stocks AS s ON r.id = s.recruitment_id
WHERE s.user_id = $1
AND ($2 OR s.id < (SELECT id
                   FROM stocks
                   WHERE user_id = $3
                   AND recruitment_id = $4))
ORDER BY s.id DESC
LIMIT $5`
	return r.queryMany(ctx, q, userID, !p.UseAfter, userID, p.After, p.Limit)
}

// HasNextStockedByUser is the probe counterpart of ListStockedByUser,
// scoped to the same user's stocks.
func (r *RecruitmentRepo) HasNextStockedByUser(ctx context.Context, userID, anchor int64) (bool, error) {
	const q = `
SELECT EXISTS (
    SELECT id
    FROM stocks
    WHERE user_id = $1
    AND id < (SELECT id
              FROM stocks
              WHERE user_id = $2
              AND recruitment_id = $3)
)`
	var exists bool
	if err := r.db.Pool.QueryRow(ctx, q, userID, userID, anchor).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}
