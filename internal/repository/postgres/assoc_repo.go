package postgres

import (
	"context"

	sq "github.com/Masterminds/squirrel"

	"github.com/sportsmatch/sportsmatch/internal/model"
)

// TagRepo implements TagRepository using PostgreSQL.
type TagRepo struct{ db *DB }

// NewTagRepo constructs a tag repository.
func NewTagRepo(db *DB) *TagRepo { return &TagRepo{db: db} }

// ByRecruitmentIDs bulk-selects the tags of each recruitment. Untagged
// recruitments are absent from the map.
func (r *TagRepo) ByRecruitmentIDs(ctx context.Context, recruitmentIDs []int64) (map[int64][]model.Tag, error) {
	q, args, err := psql.Select("t.id", "t.name", "rt.recruitment_id").
		From("tags AS t").
		Join("recruitment_tags AS rt ON t.id = rt.tag_id").
		Where(sq.Eq{"rt.recruitment_id": recruitmentIDs}).
		ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.db.Pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[int64][]model.Tag)
	for rows.Next() {
		var (
			tag           model.Tag
			recruitmentID int64
		)
		if err := rows.Scan(&tag.ID, &tag.Name, &recruitmentID); err != nil {
			return nil, err
		}
		out[recruitmentID] = append(out[recruitmentID], tag)
	}
	return out, rows.Err()
}

// SportRepo implements SportRepository using PostgreSQL.
type SportRepo struct{ db *DB }

// NewSportRepo constructs a sport repository.
func NewSportRepo(db *DB) *SportRepo { return &SportRepo{db: db} }

// GetByIDs bulk-selects sports.
func (r *SportRepo) GetByIDs(ctx context.Context, ids []int64) (map[int64]model.Sport, error) {
	q, args, err := psql.Select("id", "name").From("sports").Where(sq.Eq{"id": ids}).ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.db.Pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[int64]model.Sport, len(ids))
	for rows.Next() {
		var s model.Sport
		if err := rows.Scan(&s.ID, &s.Name); err != nil {
			return nil, err
		}
		out[s.ID] = s
	}
	return out, rows.Err()
}

// PrefectureRepo implements PrefectureRepository using PostgreSQL.
type PrefectureRepo struct{ db *DB }

// NewPrefectureRepo constructs a prefecture repository.
func NewPrefectureRepo(db *DB) *PrefectureRepo { return &PrefectureRepo{db: db} }

// GetByIDs bulk-selects prefectures.
func (r *PrefectureRepo) GetByIDs(ctx context.Context, ids []int64) (map[int64]model.Prefecture, error) {
	q, args, err := psql.Select("id", "name").From("prefectures").Where(sq.Eq{"id": ids}).ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.db.Pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[int64]model.Prefecture, len(ids))
	for rows.Next() {
		var p model.Prefecture
		if err := rows.Scan(&p.ID, &p.Name); err != nil {
			return nil, err
		}
		out[p.ID] = p
	}
	return out, rows.Err()
}

// StockRepo implements StockRepository using PostgreSQL.
type StockRepo struct{ db *DB }

// NewStockRepo constructs a stock repository.
func NewStockRepo(db *DB) *StockRepo { return &StockRepo{db: db} }

// CountByRecruitmentIDs returns each recruitment's stock count.
// Recruitments nobody stocked are absent; callers read that as zero.
func (r *StockRepo) CountByRecruitmentIDs(ctx context.Context, recruitmentIDs []int64) (map[int64]int64, error) {
	q, args, err := psql.Select("recruitment_id", "COUNT(*)").
		From("stocks").
		Where(sq.Eq{"recruitment_id": recruitmentIDs}).
		GroupBy("recruitment_id").
		ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.db.Pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[int64]int64, len(recruitmentIDs))
	for rows.Next() {
		var id, count int64
		if err := rows.Scan(&id, &count); err != nil {
			return nil, err
		}
		out[id] = count
	}
	return out, rows.Err()
}

// ExistingPairs reports which [user_id, recruitment_id] pairs have a
// stock row. The tuple is ordered; pairs are deduplicated upstream.
func (r *StockRepo) ExistingPairs(ctx context.Context, pairs [][2]int64) (map[[2]int64]struct{}, error) {
	return existingPairs(ctx, r.db, "stocks", "user_id", "recruitment_id", pairs)
}

// FollowRepo implements FollowRepository using PostgreSQL.
type FollowRepo struct{ db *DB }

// NewFollowRepo constructs a follow repository.
func NewFollowRepo(db *DB) *FollowRepo { return &FollowRepo{db: db} }

// ExistingPairs reports which [follower_id, followed_id] pairs have a
// relationship row.
func (r *FollowRepo) ExistingPairs(ctx context.Context, pairs [][2]int64) (map[[2]int64]struct{}, error) {
	return existingPairs(ctx, r.db, "relationships", "follower_id", "followed_id", pairs)
}

func existingPairs(ctx context.Context, db *DB, table, colA, colB string, pairs [][2]int64) (map[[2]int64]struct{}, error) {
	if len(pairs) == 0 {
		return map[[2]int64]struct{}{}, nil
	}
	cond := make(sq.Or, 0, len(pairs))
	for _, p := range pairs {
		cond = append(cond, sq.Expr("("+colA+" = ? AND "+colB+" = ?)", p[0], p[1]))
	}
	q, args, err := psql.Select(colA, colB).From(table).Where(cond).ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := db.Pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[[2]int64]struct{}, len(pairs))
	for rows.Next() {
		var a, b int64
		if err := rows.Scan(&a, &b); err != nil {
			return nil, err
		}
		out[[2]int64{a, b}] = struct{}{}
	}
	return out, rows.Err()
}
