package events

import "time"

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated   EventType = "ticket_created"
	EventTicketAssigned  EventType = "ticket_assigned"
	EventTicketCompleted EventType = "ticket_completed"
	EventTicketDeleted   EventType = "ticket_deleted"
	EventExportGenerated EventType = "export_generated"
)

// Actor identifies the platform user behind an event.
type Actor struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
}

// Event represents a lifecycle event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	ThreadID  string      `json:"thread_id,omitempty"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	TicketID int64  `json:"ticket_id"`
	Title    string `json:"title"`
	Sequence int64  `json:"sequence"`
}

// TicketAssignedPayload payload.
type TicketAssignedPayload struct {
	AssignedTeam string `json:"assigned_team"`
	Priority     string `json:"priority"`
	Deadline     string `json:"deadline"`
}

// TicketCompletedPayload payload.
type TicketCompletedPayload struct {
	Archived bool `json:"archived"`
}

// TicketDeletedPayload payload.
type TicketDeletedPayload struct{}

// ExportGeneratedPayload payload.
type ExportGeneratedPayload struct {
	Path        string `json:"path"`
	TicketCount int    `json:"ticket_count"`
}
