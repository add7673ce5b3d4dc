package calls

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"outbound-dialer/pkg/utils"
)

func TestLog_RecordFillsPlaceholders(t *testing.T) {
	now := time.Unix(1700000000, 0).UTC()
	l := NewLog(NewMemoryRepo())
	l.clock = func() time.Time { return now }

	c, err := l.Record(context.Background(), PlacedCall{UserID: "u1", RequestID: "req-1", To: "+1", LeadName: "Alice A"})
	require.NoError(t, err)
	assert.NotEmpty(t, c.ID)
	assert.Equal(t, now, c.StartTime)
	assert.Equal(t, StatusInProgress, c.Status)
	assert.Equal(t, ConversationInCallQueue, c.ConversationStatus)

	_, err = l.Record(context.Background(), PlacedCall{UserID: "u1"})
	assert.ErrorIs(t, err, ErrInvalidCall)
}

func TestMemoryRepo_UserScopedAndRange(t *testing.T) {
	ctx := context.Background()
	now := time.Unix(1700000000, 0).UTC()
	r := NewMemoryRepo()
	require.NoError(t, r.Append(ctx, PlacedCall{UserID: "u1", RequestID: "a", StartTime: now.Add(-2 * time.Hour)}))
	require.NoError(t, r.Append(ctx, PlacedCall{UserID: "u1", RequestID: "b", StartTime: now}))
	require.NoError(t, r.Append(ctx, PlacedCall{UserID: "u2", RequestID: "c", StartTime: now}))

	all, err := r.List(ctx, "u1", time.Time{}, time.Time{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "b", all[0].RequestID)

	recent, err := r.List(ctx, "u1", now.Add(-time.Hour), now.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, recent, 1)

	_, err = r.Get(ctx, "u2", "a")
	assert.ErrorIs(t, err, ErrNotFound)
}

// Runs against a real database when TEST_DATABASE_DSN is set.
func TestPostgresRepo(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		t.Skip("TEST_DATABASE_DSN not set")
	}
	ctx := context.Background()
	db, err := utils.OpenPostgres(ctx, "pgx", dsn, utils.PostgresPoolConfig{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	repo := NewPostgresRepo(db)
	require.NoError(t, repo.EnsureSchema(ctx))

	user := "test-" + uuid.NewString()
	c, err := NewLog(repo).Record(ctx, PlacedCall{UserID: user, OutboundID: "out", RequestID: "req-1", To: "+1", QueuePosition: 3})
	require.NoError(t, err)

	got, err := repo.Get(ctx, user, "req-1")
	require.NoError(t, err)
	assert.Equal(t, c.ID, got.ID)
	assert.Equal(t, 3, got.QueuePosition)

	list, err := repo.List(ctx, user, time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
