package httpserver

import (
	"context"
	"time"

	"github.com/sportsmatch/sportsmatch/internal/loader"
	"github.com/sportsmatch/sportsmatch/internal/model"
	"github.com/sportsmatch/sportsmatch/internal/relay"
	"github.com/sportsmatch/sportsmatch/internal/service"
)

// View types returned by the JSON API. Entity ids are opaque tokens.

type pageInfoView struct {
	StartCursor     *string `json:"startCursor"`
	EndCursor       *string `json:"endCursor"`
	HasNextPage     bool    `json:"hasNextPage"`
	HasPreviousPage bool    `json:"hasPreviousPage"`
}

type edgeView[T any] struct {
	Cursor string `json:"cursor"`
	Node   T      `json:"node"`
}

type connectionView[T any] struct {
	Edges    []edgeView[T] `json:"edges"`
	PageInfo pageInfoView  `json:"pageInfo"`
}

type refView struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type tagView struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type userView struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Avatar          string  `json:"avatar"`
	Introduction    *string `json:"introduction"`
	ViewerFollowing *bool   `json:"viewerFollowing,omitempty"`
}

type recruitmentView struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	Category      string     `json:"category"`
	Venue         *string    `json:"venue"`
	VenueLat      *float64   `json:"venueLat"`
	VenueLng      *float64   `json:"venueLng"`
	StartAt       *time.Time `json:"startAt"`
	ClosingAt     *time.Time `json:"closingAt"`
	Detail        *string    `json:"detail"`
	Status        string     `json:"status"`
	PublishedAt   *time.Time `json:"publishedAt"`
	User          *userView  `json:"user"`
	Sport         *refView   `json:"sport"`
	Prefecture    *refView   `json:"prefecture"`
	Tags          []tagView  `json:"tags"`
	StockCount    int64      `json:"stockCount"`
	ViewerStocked *bool      `json:"viewerStocked"`
}

func newUserView(u model.User) userView {
	return userView{
		ID:           relay.EncodeID(service.KindUser, u.ID),
		Name:         u.Name,
		Avatar:       u.Avatar,
		Introduction: u.Introduction,
	}
}

func pageInfoViewOf(pi relay.PageInfo) pageInfoView {
	return pageInfoView{
		StartCursor:     pi.StartCursor,
		EndCursor:       pi.EndCursor,
		HasNextPage:     pi.HasNextPage,
		HasPreviousPage: pi.HasPreviousPage,
	}
}

// recruitmentThunks holds the pending association loads for one node.
// All thunks across a page are registered before any is resolved, so
// each association costs one bulk fetch per page.
type recruitmentThunks struct {
	user    func() (model.User, bool, error)
	sport   func() (model.Sport, bool, error)
	pref    func() (model.Prefecture, bool, error)
	tags    func() ([]model.Tag, bool, error)
	stocks  func() (int64, bool, error)
	stocked func() (struct{}, bool, error)
}

func registerRecruitmentThunks(ctx context.Context, b *loader.Bundle, r model.Recruitment, viewer *int64) recruitmentThunks {
	t := recruitmentThunks{
		user:   b.Users.LoadThunk(ctx, r.UserID),
		sport:  b.Sports.LoadThunk(ctx, r.SportID),
		pref:   b.Prefectures.LoadThunk(ctx, r.PrefectureID),
		tags:   b.RecruitmentTags.LoadThunk(ctx, r.ID),
		stocks: b.StockCounts.LoadThunk(ctx, r.ID),
	}
	if viewer != nil {
		t.stocked = b.ViewerStocked.LoadThunk(ctx, [2]int64{*viewer, r.ID})
	}
	return t
}

// renderRecruitment builds the enriched view of one recruitment.
func renderRecruitment(ctx context.Context, b *loader.Bundle, r model.Recruitment, viewer *int64) (recruitmentView, error) {
	return resolveRecruitmentView(r, registerRecruitmentThunks(ctx, b, r, viewer))
}

func renderRecruitmentConnection(ctx context.Context, b *loader.Bundle, conn relay.Connection[model.Recruitment], viewer *int64) (connectionView[recruitmentView], error) {
	pending := make([]recruitmentThunks, len(conn.Edges))
	for i, e := range conn.Edges {
		pending[i] = registerRecruitmentThunks(ctx, b, e.Node, viewer)
	}

	out := connectionView[recruitmentView]{
		Edges:    make([]edgeView[recruitmentView], 0, len(conn.Edges)),
		PageInfo: pageInfoViewOf(conn.PageInfo),
	}
	for i, e := range conn.Edges {
		v, err := resolveRecruitmentView(e.Node, pending[i])
		if err != nil {
			return connectionView[recruitmentView]{}, err
		}
		out.Edges = append(out.Edges, edgeView[recruitmentView]{Cursor: e.Cursor, Node: v})
	}
	return out, nil
}

func resolveRecruitmentView(r model.Recruitment, t recruitmentThunks) (recruitmentView, error) {
	v := recruitmentView{
		ID:          relay.EncodeID(service.KindRecruitment, r.ID),
		Title:       r.Title,
		Category:    string(r.Category),
		Venue:       r.Venue,
		VenueLat:    r.VenueLat,
		VenueLng:    r.VenueLng,
		StartAt:     r.StartAt,
		ClosingAt:   r.ClosingAt,
		Detail:      r.Detail,
		Status:      string(r.Status),
		PublishedAt: r.PublishedAt,
		Tags:        []tagView{},
	}

	if u, ok, err := t.user(); err != nil {
		return recruitmentView{}, err
	} else if ok {
		uv := newUserView(u)
		v.User = &uv
	}
	if s, ok, err := t.sport(); err != nil {
		return recruitmentView{}, err
	} else if ok {
		v.Sport = &refView{ID: relay.EncodeID(service.KindSport, s.ID), Name: s.Name}
	}
	if p, ok, err := t.pref(); err != nil {
		return recruitmentView{}, err
	} else if ok {
		v.Prefecture = &refView{ID: relay.EncodeID(service.KindPrefecture, p.ID), Name: p.Name}
	}
	if tags, ok, err := t.tags(); err != nil {
		return recruitmentView{}, err
	} else if ok {
		for _, tag := range tags {
			v.Tags = append(v.Tags, tagView{ID: relay.EncodeID(service.KindTag, tag.ID), Name: tag.Name})
		}
	}
	if n, ok, err := t.stocks(); err != nil {
		return recruitmentView{}, err
	} else if ok {
		v.StockCount = n
	}
	if t.stocked != nil {
		_, ok, err := t.stocked()
		if err != nil {
			return recruitmentView{}, err
		}
		v.ViewerStocked = &ok
	}
	return v, nil
}

func renderUserConnection(ctx context.Context, b *loader.Bundle, conn relay.Connection[model.User], viewer *int64) (connectionView[userView], error) {
	var pending []func() (struct{}, bool, error)
	if viewer != nil {
		pending = make([]func() (struct{}, bool, error), len(conn.Edges))
		for i, e := range conn.Edges {
			pending[i] = b.Following.LoadThunk(ctx, [2]int64{*viewer, e.Node.ID})
		}
	}

	out := connectionView[userView]{
		Edges:    make([]edgeView[userView], 0, len(conn.Edges)),
		PageInfo: pageInfoViewOf(conn.PageInfo),
	}
	for i, e := range conn.Edges {
		v := newUserView(e.Node)
		if pending != nil {
			_, ok, err := pending[i]()
			if err != nil {
				return connectionView[userView]{}, err
			}
			v.ViewerFollowing = &ok
		}
		out.Edges = append(out.Edges, edgeView[userView]{Cursor: e.Cursor, Node: v})
	}
	return out, nil
}
