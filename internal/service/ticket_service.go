package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-desk/internal/auth"
	"github.com/spec-kit/ticket-desk/internal/domain"
	"github.com/spec-kit/ticket-desk/internal/events"
	"github.com/spec-kit/ticket-desk/internal/platform"
	"github.com/spec-kit/ticket-desk/internal/repository"
	apperrors "github.com/spec-kit/ticket-desk/pkg/util"
)

// Actor identifies the platform user driving a transition, with the
// role membership delivered alongside the event.
type Actor struct {
	ID          string
	DisplayName string
	Roles       []string
}

// TicketService coordinates the ticket lifecycle: it reacts to platform
// events, enforces authorization, drives the store, and emits
// confirmations back through the platform boundary.
type TicketService struct {
	tickets    repository.TicketRepository
	messenger  platform.Messenger
	dispatcher events.Dispatcher
	authorizer *auth.Authorizer
	logger     *zap.Logger
}

// TicketDependencies bundles collaborators for the service.
type TicketDependencies struct {
	TicketRepo repository.TicketRepository
	Messenger  platform.Messenger
	Dispatcher events.Dispatcher
	Authorizer *auth.Authorizer
	Logger     *zap.Logger
}

// SubmitInput describes the ticket submission form.
type SubmitInput struct {
	Title       string
	Description string
}

// AssignmentInput describes the update form.
type AssignmentInput struct {
	Team     string
	Priority string
	Deadline string
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		tickets:    deps.TicketRepo,
		messenger:  deps.Messenger,
		dispatcher: deps.Dispatcher,
		authorizer: deps.Authorizer,
		logger:     deps.Logger,
	}
}

// Authorized reports whether the actor holds a privileged role. Used by
// the platform edge to gate forms before they are even shown.
func (s *TicketService) Authorized(actor Actor) bool {
	return s.authorizer.IsPrivileged(actor.Roles)
}

// SubmitTicket creates a ticket from a submitted form: it opens a new
// discussion thread, inserts the row, and posts the action panel. Any
// authenticated user may submit.
func (s *TicketService) SubmitTicket(ctx context.Context, actor Actor, input SubmitInput) (*domain.Ticket, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, apperrors.NewValidationError("ticket title is required", nil)
	}
	if actor.DisplayName == "" {
		return nil, apperrors.NewValidationError("submitter display name is required", nil)
	}

	seq, err := s.tickets.NextSequence(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	threadID, err := s.messenger.CreateThread(ctx, ThreadName(seq, title))
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	ticket := &domain.Ticket{
		Title:       title,
		Description: strings.TrimSpace(input.Description),
		SubmittedBy: actor.DisplayName,
		ThreadID:    threadID,
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}

	if _, err := s.messenger.PostTicketPanel(ctx, threadID, ticket); err != nil {
		// The row is in; a missing panel is a UI gap, not a lost ticket.
		s.logger.Warn("failed to post action panel", zap.String("thread_id", threadID), zap.Error(err))
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketCreated,
		ThreadID: threadID,
		Actor:    eventActor(actor),
		Payload: events.TicketCreatedPayload{
			TicketID: ticket.ID,
			Title:    ticket.Title,
			Sequence: seq,
		},
	})
	return ticket, nil
}

// UpdateAssignment sets team, priority, and deadline on the ticket
// behind threadID. Privileged role required; a malformed deadline
// rejects the whole update.
func (s *TicketService) UpdateAssignment(ctx context.Context, actor Actor, threadID, panelMessageID string, input AssignmentInput) (*domain.Ticket, error) {
	if !s.authorizer.IsPrivileged(actor.Roles) {
		return nil, apperrors.NewForbidden("you are not authorized to update tickets")
	}

	deadline, err := NormalizeDeadline(input.Deadline)
	if err != nil {
		return nil, apperrors.NewValidationError("invalid deadline format, use DD-MM-YYYY", nil)
	}

	team := strings.TrimSpace(input.Team)
	priority := strings.TrimSpace(input.Priority)

	if err := s.tickets.UpdateAssignment(ctx, threadID, team, priority, deadline); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"thread_id": threadID})
		}
		return nil, apperrors.MapError(err)
	}

	ticket, err := s.tickets.GetByThreadID(ctx, threadID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	if panelMessageID != "" {
		if err := s.messenger.UpdateTicketPanel(ctx, threadID, panelMessageID, ticket); err != nil {
			s.logger.Warn("failed to refresh action panel", zap.String("thread_id", threadID), zap.Error(err))
		}
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketAssigned,
		ThreadID: threadID,
		Actor:    eventActor(actor),
		Payload: events.TicketAssignedPayload{
			AssignedTeam: team,
			Priority:     priority,
			Deadline:     deadline,
		},
	})
	return ticket, nil
}

// CompleteTicket marks the ticket completed and archives its thread.
// Archival is best-effort: failure is logged and does not undo the
// completion or the actor-facing success.
func (s *TicketService) CompleteTicket(ctx context.Context, actor Actor, threadID, panelMessageID string) error {
	if !s.authorizer.IsPrivileged(actor.Roles) {
		return apperrors.NewForbidden("you are not authorized to complete tickets")
	}

	if err := s.tickets.Complete(ctx, threadID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NewNotFound("ticket", map[string]any{"thread_id": threadID})
		}
		return apperrors.MapError(err)
	}

	if panelMessageID != "" {
		if ticket, err := s.tickets.GetByThreadID(ctx, threadID); err == nil {
			if err := s.messenger.UpdateTicketPanel(ctx, threadID, panelMessageID, ticket); err != nil {
				s.logger.Warn("failed to refresh action panel", zap.String("thread_id", threadID), zap.Error(err))
			}
		}
	}

	archived := s.archiveThread(ctx, threadID, false, "📁 This thread will now be archived.")

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketCompleted,
		ThreadID: threadID,
		Actor:    eventActor(actor),
		Payload:  events.TicketCompletedPayload{Archived: archived},
	})
	return nil
}

// DeleteTicket permanently removes the ticket row, then archives and
// locks the thread best-effort. Privileged role required.
func (s *TicketService) DeleteTicket(ctx context.Context, actor Actor, threadID string) error {
	if !s.authorizer.IsPrivileged(actor.Roles) {
		return apperrors.NewForbidden("you are not authorized to delete tickets")
	}

	if err := s.tickets.Delete(ctx, threadID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NewNotFound("ticket", map[string]any{"thread_id": threadID})
		}
		return apperrors.MapError(err)
	}

	s.archiveThread(ctx, threadID, true, "🗑️ This ticket has been permanently removed.")

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketDeleted,
		ThreadID: threadID,
		Actor:    eventActor(actor),
		Payload:  events.TicketDeletedPayload{},
	})
	return nil
}

func (s *TicketService) archiveThread(ctx context.Context, threadID string, lock bool, farewell string) bool {
	if err := s.messenger.NotifyThread(ctx, threadID, farewell); err != nil {
		s.logger.Warn("failed to post archive notice", zap.String("thread_id", threadID), zap.Error(err))
	}
	if err := s.messenger.ArchiveThread(ctx, threadID, lock); err != nil {
		s.logger.Warn("failed to archive thread", zap.String("thread_id", threadID), zap.Error(err))
		return false
	}
	return true
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("failed to publish event", zap.String("event_type", string(event.Type)), zap.Error(err))
	}
}

// ThreadName builds the human-readable thread label from the persisted
// sequence and a truncated title. Display only, never a stored key.
func ThreadName(seq int64, title string) string {
	return fmt.Sprintf("ticket-%04d | %s", seq, truncate(title, 30))
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

func eventActor(actor Actor) events.Actor {
	return events.Actor{UserID: actor.ID, DisplayName: actor.DisplayName}
}
