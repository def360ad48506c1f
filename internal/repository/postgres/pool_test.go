package postgres

import (
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/require"
)

func newDB(t *testing.T) (*DB, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	return &DB{Pool: mock}, mock
}

var userCols = []string{
	"id", "name", "email", "unverified_email", "avatar", "role", "introduction",
	"email_verification_status", "email_verification_code", "email_verification_code_expires_at",
	"password_digest", "created_at",
}

func userRow(id int64, name, email string) []any {
	return []any{
		id, name, email, nil, "https://example.com/a.png", "general", nil,
		"verified", nil, nil, "x", time.Now(),
	}
}

var recruitmentCols = []string{
	"id", "title", "category", "venue", "venue_lat", "venue_lng", "start_at",
	"closing_at", "detail", "sport_id", "prefecture_id", "status", "user_id",
	"published_at", "created_at",
}

func recruitmentRow(id int64, title, status string, userID int64) []any {
	now := time.Now()
	return []any{
		id, title, "opponent", nil, nil, nil, nil,
		nil, nil, int64(1), int64(13), status, userID,
		&now, now,
	}
}
