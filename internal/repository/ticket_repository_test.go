package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-desk/internal/config"
	"github.com/spec-kit/ticket-desk/internal/domain"
	"github.com/spec-kit/ticket-desk/internal/persistence"
)

func newTestRepo(t *testing.T) (TicketRepository, *persistence.SQLite) {
	t.Helper()
	ctx := context.Background()

	db, err := persistence.NewSQLite(ctx, config.SQLiteConfig{Path: ":memory:"}, zap.NewNop())
	require.NoError(t, err, "failed to open test database")
	require.NoError(t, persistence.Bootstrap(ctx, db, zap.NewNop()))
	t.Cleanup(db.Close)

	return NewTicketRepository(db.Handle()), db
}

func newTicket(threadID string) *domain.Ticket {
	return &domain.Ticket{
		Title:       "Design new landing page",
		Description: "Hero section plus pricing table",
		SubmittedBy: "alice",
		ThreadID:    threadID,
	}
}

func TestCreateSetsDefaults(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	ticket := newTicket("thread-1")
	require.NoError(t, repo.Create(ctx, ticket))
	require.NotZero(t, ticket.ID)

	stored, err := repo.GetByThreadID(ctx, "thread-1")
	require.NoError(t, err)
	require.Equal(t, domain.TicketStatusOpen, stored.Status)
	require.Nil(t, stored.CompletedAt)
	require.False(t, stored.CreatedAt.IsZero())
	require.Equal(t, "Design new landing page", stored.Title)
	require.Equal(t, "Hero section plus pricing table", stored.Description)
	require.Equal(t, "alice", stored.SubmittedBy)
	require.Empty(t, stored.AssignedTeam)
	require.Empty(t, stored.Priority)
	require.Empty(t, stored.Deadline)
}

func TestCreateThenListRoundTrip(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newTicket("thread-1")))

	all, err := repo.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	require.Equal(t, "Design new landing page", all[0].Title)
	require.Equal(t, "thread-1", all[0].ThreadID)
}

func TestUpdateAssignment(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	ticket := newTicket("thread-1")
	require.NoError(t, repo.Create(ctx, ticket))

	require.NoError(t, repo.UpdateAssignment(ctx, "thread-1", "Design Team", "High", "25 Apr 2025"))

	stored, err := repo.GetByThreadID(ctx, "thread-1")
	require.NoError(t, err)
	require.Equal(t, "Design Team", stored.AssignedTeam)
	require.Equal(t, "High", stored.Priority)
	require.Equal(t, "25 Apr 2025", stored.Deadline)

	// Assignment never touches identity or lifecycle columns.
	require.Equal(t, ticket.CreatedAt.Unix(), stored.CreatedAt.Unix())
	require.Equal(t, domain.TicketStatusOpen, stored.Status)
	require.Equal(t, "thread-1", stored.ThreadID)
}

func TestUpdateAssignmentMissingRow(t *testing.T) {
	repo, _ := newTestRepo(t)
	err := repo.UpdateAssignment(context.Background(), "no-such-thread", "Design Team", "High", "25 Apr 2025")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestComplete(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newTicket("thread-1")))
	require.NoError(t, repo.Complete(ctx, "thread-1"))

	stored, err := repo.GetByThreadID(ctx, "thread-1")
	require.NoError(t, err)
	require.Equal(t, domain.TicketStatusCompleted, stored.Status)
	require.NotNil(t, stored.CompletedAt)
	require.False(t, stored.CompletedAt.Before(stored.CreatedAt))
}

func TestCompleteTwiceRewritesTimestamp(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newTicket("thread-1")))
	require.NoError(t, repo.Complete(ctx, "thread-1"))

	first, err := repo.GetByThreadID(ctx, "thread-1")
	require.NoError(t, err)

	time.Sleep(10 * time.Millisecond)
	require.NoError(t, repo.Complete(ctx, "thread-1"))

	second, err := repo.GetByThreadID(ctx, "thread-1")
	require.NoError(t, err)
	require.Equal(t, domain.TicketStatusCompleted, second.Status)
	require.False(t, second.CompletedAt.Before(*first.CompletedAt))
}

func TestCompleteMissingRow(t *testing.T) {
	repo, _ := newTestRepo(t)
	require.ErrorIs(t, repo.Complete(context.Background(), "no-such-thread"), ErrNotFound)
}

func TestDeleteRemovesExactlyOneRow(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newTicket("thread-1")))
	other := newTicket("thread-2")
	other.Title = "Fix login bug"
	require.NoError(t, repo.Create(ctx, other))

	require.NoError(t, repo.Delete(ctx, "thread-1"))

	all, err := repo.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	require.Equal(t, "thread-2", all[0].ThreadID)
}

func TestDeleteMissingRowLeavesTableUnchanged(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newTicket("thread-1")))
	require.ErrorIs(t, repo.Delete(ctx, "no-such-thread"), ErrNotFound)

	all, err := repo.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
}

func TestGetByThreadIDMissing(t *testing.T) {
	repo, _ := newTestRepo(t)
	_, err := repo.GetByThreadID(context.Background(), "no-such-thread")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestNextSequence(t *testing.T) {
	repo, db := newTestRepo(t)
	ctx := context.Background()

	seq, err := repo.NextSequence(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 1, seq)

	require.NoError(t, repo.Create(ctx, newTicket("thread-1")))

	seq, err = repo.NextSequence(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 2, seq)

	// A fresh repository over the same database sees the same sequence:
	// the counter lives in the store, not the process.
	rebuilt := NewTicketRepository(db.Handle())
	seq, err = rebuilt.NextSequence(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 2, seq)
}

func TestListAllInTableOrder(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	for _, threadID := range []string{"thread-1", "thread-2", "thread-3"} {
		require.NoError(t, repo.Create(ctx, newTicket(threadID)))
	}

	all, err := repo.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.Equal(t, "thread-1", all[0].ThreadID)
	require.Equal(t, "thread-3", all[2].ThreadID)
}
