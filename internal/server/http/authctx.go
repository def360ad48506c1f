package httpserver

import "context"

type ctxKey string

const viewerIDKey ctxKey = "sm.viewerID"

// WithViewerID stores the authenticated viewer's user id in context.
func WithViewerID(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, viewerIDKey, id)
}

// ViewerIDFromCtx fetches the viewer's user id from context. The second
// result is false for anonymous requests.
func ViewerIDFromCtx(ctx context.Context) (int64, bool) {
	v := ctx.Value(viewerIDKey)
	if v == nil {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok
}
