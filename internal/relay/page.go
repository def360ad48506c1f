package relay

import (
	"context"
	"errors"
)

// Page request validation failures, surfaced to the client as-is.
var (
	// ErrMissingParameters indicates neither first nor after was supplied.
	ErrMissingParameters = errors.New("either [first] or [first, after] must be supplied")

	// ErrMissingLimit indicates after was supplied without first.
	ErrMissingLimit = errors.New("after requires first")

	// ErrEmptyCursor indicates after was supplied as an empty string.
	ErrEmptyCursor = errors.New("after cursor is empty")

	// ErrBadCursor indicates after failed opaque-id decoding.
	ErrBadCursor = errors.New("after cursor is invalid")
)

// SearchParams is a validated page request. UseAfter=false means "first
// page": the query layer must treat it as no bound at all, never as
// bound = 0 (0 is not a valid surrogate key).
type SearchParams struct {
	UseAfter bool
	After    int64
	Limit    int32
}

// NewSearchParams validates the client-supplied (first, after) pair and
// decodes the anchor. The cursor kind is not checked here; collections
// that require it wrap the cursor with DecodeTypedID before calling.
func NewSearchParams(first *int32, after *string) (SearchParams, error) {
	switch {
	case first == nil && after == nil:
		return SearchParams{}, ErrMissingParameters
	case first == nil:
		return SearchParams{}, ErrMissingLimit
	case after == nil:
		return SearchParams{Limit: *first}, nil
	}
	if *after == "" {
		return SearchParams{}, ErrEmptyCursor
	}
	anchor, err := DecodeID(*after)
	if err != nil {
		return SearchParams{}, ErrBadCursor
	}
	return SearchParams{UseAfter: true, After: anchor, Limit: *first}, nil
}

// PageInfo mirrors the connection pageInfo surface. Only forward paging
// is implemented; StartCursor and HasPreviousPage stay defaulted.
type PageInfo struct {
	StartCursor     *string
	EndCursor       *string
	HasNextPage     bool
	HasPreviousPage bool
}

// Edge pairs a node with its opaque cursor.
type Edge[T any] struct {
	Cursor string
	Node   T
}

// Connection is one page of a collection.
type Connection[T any] struct {
	Edges    []Edge[T]
	PageInfo PageInfo
}

// ProbeFunc reports whether a row strictly beyond the anchor exists.
// The probe must be scoped to the exact filter predicate of the page
// query that produced the items; repositories bundle the two so call
// sites cannot pair a page with a differently-scoped probe.
type ProbeFunc func(ctx context.Context, anchor int64) (bool, error)

// NewPageInfo derives pageInfo from the last item of a page. lastID is
// nil for an empty page, which yields the all-default PageInfo. The
// existence probe replaces limit+1 over-fetching and must return the
// same boolean an over-fetch would.
func NewPageInfo(ctx context.Context, kind string, lastID *int64, probe ProbeFunc) (PageInfo, error) {
	if lastID == nil {
		return PageInfo{}, nil
	}
	hasNext, err := probe(ctx, *lastID)
	if err != nil {
		return PageInfo{}, err
	}
	cursor := EncodeID(kind, *lastID)
	return PageInfo{HasNextPage: hasNext, EndCursor: &cursor}, nil
}

// NewConnection builds the edges and pageInfo for one result page.
// Cursors always derive from each item's own id; endCursor from the
// last item, never the first.
func NewConnection[T any](ctx context.Context, items []T, kind string, id func(T) int64, probe ProbeFunc) (Connection[T], error) {
	conn := Connection[T]{Edges: make([]Edge[T], 0, len(items))}
	for _, item := range items {
		conn.Edges = append(conn.Edges, Edge[T]{Cursor: EncodeID(kind, id(item)), Node: item})
	}
	var lastID *int64
	if len(items) > 0 {
		v := id(items[len(items)-1])
		lastID = &v
	}
	info, err := NewPageInfo(ctx, kind, lastID, probe)
	if err != nil {
		return Connection[T]{}, err
	}
	conn.PageInfo = info
	return conn, nil
}
