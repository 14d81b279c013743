package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-desk/internal/events"
	"github.com/spec-kit/ticket-desk/internal/platform"
)

// NotificationService reacts to lifecycle events with thread
// announcements and structured logs. Announcement failures never affect
// the transition that triggered them.
type NotificationService struct {
	dispatcher   events.Dispatcher
	messenger    platform.Messenger
	teamMentions map[string]string
	logger       *zap.Logger
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, messenger platform.Messenger, teamMentions map[string]string, logger *zap.Logger) *NotificationService {
	return &NotificationService{
		dispatcher:   dispatcher,
		messenger:    messenger,
		teamMentions: teamMentions,
		logger:       logger,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventTicketCreated, n.handleTicketCreated)
	n.dispatcher.Subscribe(events.EventTicketAssigned, n.handleTicketAssigned)
	n.dispatcher.Subscribe(events.EventTicketCompleted, n.handleTicketCompleted)
	n.dispatcher.Subscribe(events.EventTicketDeleted, n.handleTicketDeleted)
	n.dispatcher.Subscribe(events.EventExportGenerated, n.handleExportGenerated)
}

func (n *NotificationService) handleTicketCreated(ctx context.Context, event events.Event) error {
	n.logger.Info("TicketCreated", zap.String("thread_id", event.ThreadID), zap.Any("payload", event.Payload))
	return nil
}

// handleTicketAssigned pings the assigned team in the ticket thread,
// using the configured role mention when one exists.
func (n *NotificationService) handleTicketAssigned(ctx context.Context, event events.Event) error {
	n.logger.Info("TicketAssigned", zap.String("thread_id", event.ThreadID), zap.Any("payload", event.Payload))

	payload, ok := event.Payload.(events.TicketAssignedPayload)
	if !ok || event.ThreadID == "" {
		return nil
	}

	target := payload.AssignedTeam
	if mention, found := n.teamMentions[payload.AssignedTeam]; found {
		target = strings.TrimSpace(payload.AssignedTeam + " " + mention)
	}
	content := fmt.Sprintf("📢 Ticket updated — %s", target)
	if err := n.messenger.NotifyThread(ctx, event.ThreadID, content); err != nil {
		n.logger.Warn("failed to announce assignment", zap.String("thread_id", event.ThreadID), zap.Error(err))
	}
	return nil
}

func (n *NotificationService) handleTicketCompleted(ctx context.Context, event events.Event) error {
	n.logger.Info("TicketCompleted", zap.String("thread_id", event.ThreadID), zap.Any("payload", event.Payload))
	return nil
}

func (n *NotificationService) handleTicketDeleted(ctx context.Context, event events.Event) error {
	n.logger.Info("TicketDeleted", zap.String("thread_id", event.ThreadID), zap.Any("payload", event.Payload))
	return nil
}

func (n *NotificationService) handleExportGenerated(ctx context.Context, event events.Event) error {
	n.logger.Info("ExportGenerated", zap.Any("payload", event.Payload))
	return nil
}
