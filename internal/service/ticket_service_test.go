package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-desk/internal/auth"
	"github.com/spec-kit/ticket-desk/internal/config"
	"github.com/spec-kit/ticket-desk/internal/domain"
	"github.com/spec-kit/ticket-desk/internal/events"
	"github.com/spec-kit/ticket-desk/internal/persistence"
	"github.com/spec-kit/ticket-desk/internal/repository"
	apperrors "github.com/spec-kit/ticket-desk/pkg/util"
)

const privilegedRole = "role-pm"

var (
	pmActor   = Actor{ID: "u1", DisplayName: "alice", Roles: []string{privilegedRole}}
	userActor = Actor{ID: "u2", DisplayName: "bob"}
)

// fakeMessenger records outbound platform calls and can be told to fail.
type fakeMessenger struct {
	mu           sync.Mutex
	threadSeq    int
	threadNames  []string
	panelThreads []string
	panelEdits   int
	notices      []string
	archived     map[string]bool // threadID -> locked
	failArchive  bool
	failCreate   bool
}

func newFakeMessenger() *fakeMessenger {
	return &fakeMessenger{archived: make(map[string]bool)}
}

func (f *fakeMessenger) CreateThread(ctx context.Context, name string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failCreate {
		return "", errors.New("gateway down")
	}
	f.threadSeq++
	f.threadNames = append(f.threadNames, name)
	return fmt.Sprintf("thread-%d", f.threadSeq), nil
}

func (f *fakeMessenger) PostTicketPanel(ctx context.Context, threadID string, ticket *domain.Ticket) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.panelThreads = append(f.panelThreads, threadID)
	return "panel-" + threadID, nil
}

func (f *fakeMessenger) UpdateTicketPanel(ctx context.Context, threadID, messageID string, ticket *domain.Ticket) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.panelEdits++
	return nil
}

func (f *fakeMessenger) NotifyThread(ctx context.Context, threadID, content string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.notices = append(f.notices, content)
	return nil
}

func (f *fakeMessenger) ArchiveThread(ctx context.Context, threadID string, lock bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failArchive {
		return errors.New("archive failed")
	}
	f.archived[threadID] = lock
	return nil
}

func newTestTicketService(t *testing.T) (*TicketService, repository.TicketRepository, *fakeMessenger) {
	t.Helper()
	ctx := context.Background()

	db, err := persistence.NewSQLite(ctx, config.SQLiteConfig{Path: ":memory:"}, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, persistence.Bootstrap(ctx, db, zap.NewNop()))
	t.Cleanup(db.Close)

	repo := repository.NewTicketRepository(db.Handle())
	messenger := newFakeMessenger()
	svc := NewTicketService(TicketDependencies{
		TicketRepo: repo,
		Messenger:  messenger,
		Dispatcher: events.NewInMemoryDispatcher(),
		Authorizer: auth.NewAuthorizer([]string{privilegedRole}),
		Logger:     zap.NewNop(),
	})
	return svc, repo, messenger
}

func submit(t *testing.T, svc *TicketService, title string) *domain.Ticket {
	t.Helper()
	ticket, err := svc.SubmitTicket(context.Background(), userActor, SubmitInput{
		Title:       title,
		Description: "Describe the task",
	})
	require.NoError(t, err)
	return ticket
}

func TestSubmitTicket(t *testing.T) {
	svc, repo, messenger := newTestTicketService(t)
	ctx := context.Background()

	ticket := submit(t, svc, "Design new landing page")

	require.Equal(t, "thread-1", ticket.ThreadID)
	require.Equal(t, []string{"ticket-0001 | Design new landing page"}, messenger.threadNames)
	require.Equal(t, []string{"thread-1"}, messenger.panelThreads)

	stored, err := repo.GetByThreadID(ctx, "thread-1")
	require.NoError(t, err)
	require.Equal(t, domain.TicketStatusOpen, stored.Status)
	require.Nil(t, stored.CompletedAt)
	require.Equal(t, "bob", stored.SubmittedBy)
}

func TestSubmitTicketTruncatesThreadName(t *testing.T) {
	svc, _, messenger := newTestTicketService(t)

	longTitle := strings.Repeat("x", 45)
	submit(t, svc, longTitle)

	require.Equal(t, "ticket-0001 | "+strings.Repeat("x", 30), messenger.threadNames[0])
}

func TestSubmitTicketSequenceComesFromStore(t *testing.T) {
	svc, _, messenger := newTestTicketService(t)

	submit(t, svc, "First")
	submit(t, svc, "Second")
	submit(t, svc, "Third")

	require.Equal(t, []string{
		"ticket-0001 | First",
		"ticket-0002 | Second",
		"ticket-0003 | Third",
	}, messenger.threadNames)
}

func TestSubmitTicketRequiresTitle(t *testing.T) {
	svc, repo, _ := newTestTicketService(t)

	_, err := svc.SubmitTicket(context.Background(), userActor, SubmitInput{Title: "   "})
	requireCode(t, err, "VALIDATION_FAILED")

	all, listErr := repo.ListAll(context.Background())
	require.NoError(t, listErr)
	require.Empty(t, all)
}

func TestSubmitTicketThreadCreationFailure(t *testing.T) {
	svc, repo, messenger := newTestTicketService(t)
	messenger.failCreate = true

	_, err := svc.SubmitTicket(context.Background(), userActor, SubmitInput{Title: "Doomed"})
	require.Error(t, err)

	all, listErr := repo.ListAll(context.Background())
	require.NoError(t, listErr)
	require.Empty(t, all, "no row without a thread")
}

func TestUpdateAssignment(t *testing.T) {
	svc, repo, messenger := newTestTicketService(t)
	ctx := context.Background()

	ticket := submit(t, svc, "Design new landing page")

	updated, err := svc.UpdateAssignment(ctx, pmActor, ticket.ThreadID, "panel-thread-1", AssignmentInput{
		Team:     "Design Team",
		Priority: "High",
		Deadline: "25-04-2025",
	})
	require.NoError(t, err)
	require.Equal(t, "Design Team", updated.AssignedTeam)
	require.Equal(t, "25 Apr 2025", updated.Deadline)
	require.Equal(t, 1, messenger.panelEdits)

	stored, err := repo.GetByThreadID(ctx, ticket.ThreadID)
	require.NoError(t, err)
	require.Equal(t, "25 Apr 2025", stored.Deadline)
	require.Equal(t, domain.TicketStatusOpen, stored.Status)
	require.Equal(t, ticket.CreatedAt.Unix(), stored.CreatedAt.Unix())
}

func TestUpdateAssignmentUnauthorized(t *testing.T) {
	svc, repo, _ := newTestTicketService(t)
	ctx := context.Background()

	ticket := submit(t, svc, "Design new landing page")

	_, err := svc.UpdateAssignment(ctx, userActor, ticket.ThreadID, "", AssignmentInput{
		Team:     "Design Team",
		Priority: "High",
		Deadline: "25-04-2025",
	})
	requireCode(t, err, "FORBIDDEN")

	stored, getErr := repo.GetByThreadID(ctx, ticket.ThreadID)
	require.NoError(t, getErr)
	require.Empty(t, stored.AssignedTeam)
}

func TestUpdateAssignmentRejectsBadDeadline(t *testing.T) {
	svc, repo, _ := newTestTicketService(t)
	ctx := context.Background()

	ticket := submit(t, svc, "Design new landing page")

	_, err := svc.UpdateAssignment(ctx, pmActor, ticket.ThreadID, "", AssignmentInput{
		Team:     "Design Team",
		Priority: "High",
		Deadline: "31-2-2025",
	})
	requireCode(t, err, "VALIDATION_FAILED")

	// Rejection means no partial update.
	stored, getErr := repo.GetByThreadID(ctx, ticket.ThreadID)
	require.NoError(t, getErr)
	require.Empty(t, stored.AssignedTeam)
	require.Empty(t, stored.Priority)
	require.Empty(t, stored.Deadline)
}

func TestUpdateAssignmentStaleThread(t *testing.T) {
	svc, _, _ := newTestTicketService(t)

	_, err := svc.UpdateAssignment(context.Background(), pmActor, "no-such-thread", "", AssignmentInput{
		Team:     "Design Team",
		Priority: "High",
		Deadline: "25-04-2025",
	})
	requireCode(t, err, "NOT_FOUND")
}

func TestCompleteTicket(t *testing.T) {
	svc, repo, messenger := newTestTicketService(t)
	ctx := context.Background()

	ticket := submit(t, svc, "Design new landing page")
	require.NoError(t, svc.CompleteTicket(ctx, pmActor, ticket.ThreadID, "panel-thread-1"))

	stored, err := repo.GetByThreadID(ctx, ticket.ThreadID)
	require.NoError(t, err)
	require.Equal(t, domain.TicketStatusCompleted, stored.Status)
	require.NotNil(t, stored.CompletedAt)
	require.False(t, stored.CompletedAt.Before(stored.CreatedAt))

	locked, archived := messenger.archived[ticket.ThreadID]
	require.True(t, archived, "thread archived")
	require.False(t, locked, "completion archives without locking")
}

func TestCompleteTicketRequiresPrivilege(t *testing.T) {
	svc, repo, _ := newTestTicketService(t)
	ctx := context.Background()

	ticket := submit(t, svc, "Design new landing page")
	err := svc.CompleteTicket(ctx, userActor, ticket.ThreadID, "")
	requireCode(t, err, "FORBIDDEN")

	stored, getErr := repo.GetByThreadID(ctx, ticket.ThreadID)
	require.NoError(t, getErr)
	require.Equal(t, domain.TicketStatusOpen, stored.Status)
}

func TestCompleteTicketArchivalFailureIsBestEffort(t *testing.T) {
	svc, repo, messenger := newTestTicketService(t)
	ctx := context.Background()

	ticket := submit(t, svc, "Design new landing page")
	messenger.failArchive = true

	require.NoError(t, svc.CompleteTicket(ctx, pmActor, ticket.ThreadID, ""))

	stored, err := repo.GetByThreadID(ctx, ticket.ThreadID)
	require.NoError(t, err)
	require.Equal(t, domain.TicketStatusCompleted, stored.Status)
}

func TestDeleteTicket(t *testing.T) {
	svc, repo, messenger := newTestTicketService(t)
	ctx := context.Background()

	ticket := submit(t, svc, "Design new landing page")
	require.NoError(t, svc.DeleteTicket(ctx, pmActor, ticket.ThreadID))

	_, err := repo.GetByThreadID(ctx, ticket.ThreadID)
	require.ErrorIs(t, err, repository.ErrNotFound)

	locked, archived := messenger.archived[ticket.ThreadID]
	require.True(t, archived)
	require.True(t, locked, "deletion locks the thread")
}

func TestDeleteTicketRequiresPrivilege(t *testing.T) {
	svc, repo, _ := newTestTicketService(t)
	ctx := context.Background()

	ticket := submit(t, svc, "Design new landing page")
	requireCode(t, svc.DeleteTicket(ctx, userActor, ticket.ThreadID), "FORBIDDEN")

	_, err := repo.GetByThreadID(ctx, ticket.ThreadID)
	require.NoError(t, err)
}

func TestDeleteTicketStaleThread(t *testing.T) {
	svc, _, _ := newTestTicketService(t)
	requireCode(t, svc.DeleteTicket(context.Background(), pmActor, "no-such-thread"), "NOT_FOUND")
}

func requireCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	domainErr := apperrors.ToDomainError(err)
	require.Equal(t, code, domainErr.Code)
}
