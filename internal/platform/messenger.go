// Package platform defines the outbound chat-platform boundary. The
// lifecycle services depend only on these interfaces; the discord
// subpackage provides the concrete gateway.
package platform

import (
	"context"

	"github.com/spec-kit/ticket-desk/internal/domain"
)

// Messenger covers every outbound call the ticket lifecycle needs from
// the chat platform.
type Messenger interface {
	// CreateThread opens a new discussion thread under the ticket parent
	// channel and returns its identifier.
	CreateThread(ctx context.Context, name string) (string, error)

	// PostTicketPanel posts the ticket embed with its action controls
	// into the thread and returns the panel message identifier.
	PostTicketPanel(ctx context.Context, threadID string, ticket *domain.Ticket) (string, error)

	// UpdateTicketPanel rewrites the panel embed after a state change.
	UpdateTicketPanel(ctx context.Context, threadID, messageID string, ticket *domain.Ticket) error

	// NotifyThread posts a plain announcement message into the thread.
	NotifyThread(ctx context.Context, threadID, content string) error

	// ArchiveThread archives the thread, optionally locking it.
	ArchiveThread(ctx context.Context, threadID string, lock bool) error
}
