package relay

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func i32(v int32) *int32   { return &v }
func str(v string) *string { return &v }

func TestNewSearchParams_FirstOnly(t *testing.T) {
	p, err := NewSearchParams(i32(10), nil)
	require.NoError(t, err)
	require.False(t, p.UseAfter)
	require.Equal(t, int64(0), p.After)
	require.Equal(t, int32(10), p.Limit)
}

func TestNewSearchParams_FirstAndAfter(t *testing.T) {
	p, err := NewSearchParams(i32(5), str(EncodeID("Recruitment", 40)))
	require.NoError(t, err)
	require.True(t, p.UseAfter)
	require.Equal(t, int64(40), p.After)
	require.Equal(t, int32(5), p.Limit)
}

func TestNewSearchParams_Invalid(t *testing.T) {
	_, err := NewSearchParams(nil, nil)
	require.ErrorIs(t, err, ErrMissingParameters)

	_, err = NewSearchParams(nil, str(EncodeID("User", 1)))
	require.ErrorIs(t, err, ErrMissingLimit)

	_, err = NewSearchParams(i32(3), str(""))
	require.ErrorIs(t, err, ErrEmptyCursor)

	_, err = NewSearchParams(i32(3), str("not-a-cursor"))
	require.ErrorIs(t, err, ErrBadCursor)
}

func TestNewPageInfo_EmptyPage(t *testing.T) {
	probeCalled := false
	info, err := NewPageInfo(context.Background(), "User", nil, func(context.Context, int64) (bool, error) {
		probeCalled = true
		return true, nil
	})
	require.NoError(t, err)
	require.False(t, probeCalled)
	require.False(t, info.HasNextPage)
	require.Nil(t, info.EndCursor)
	require.Nil(t, info.StartCursor)
	require.False(t, info.HasPreviousPage)
}

func TestNewConnection_CursorFromLastItem(t *testing.T) {
	type row struct{ ID int64 }
	items := []row{{5}, {4}}

	var probedAnchor int64
	conn, err := NewConnection(context.Background(), items, "Recruitment",
		func(r row) int64 { return r.ID },
		func(_ context.Context, anchor int64) (bool, error) {
			probedAnchor = anchor
			return true, nil
		})
	require.NoError(t, err)
	require.Len(t, conn.Edges, 2)
	require.Equal(t, EncodeID("Recruitment", 5), conn.Edges[0].Cursor)
	require.Equal(t, EncodeID("Recruitment", 4), conn.Edges[1].Cursor)
	require.Equal(t, int64(4), probedAnchor)
	require.True(t, conn.PageInfo.HasNextPage)
	require.NotNil(t, conn.PageInfo.EndCursor)

	id, err := DecodeID(*conn.PageInfo.EndCursor)
	require.NoError(t, err)
	require.Equal(t, int64(4), id)
}
