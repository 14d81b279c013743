package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen      TicketStatus = "open"
	TicketStatusCompleted TicketStatus = "completed"
)

// TicketPriority enumerates urgency labels. The update form accepts free
// text, so these are conventions rather than enforced values.
type TicketPriority string

const (
	TicketPriorityLow      TicketPriority = "Low"
	TicketPriorityMedium   TicketPriority = "Medium"
	TicketPriorityHigh     TicketPriority = "High"
	TicketPriorityCritical TicketPriority = "Critical"
)

// Ticket is the sole persisted entity: one tracked unit of work created
// from a submitted form, keyed externally by its discussion thread.
type Ticket struct {
	ID           int64
	Title        string
	Description  string
	AssignedTeam string
	Priority     string
	Deadline     string
	SubmittedBy  string
	ThreadID     string
	Status       TicketStatus
	CreatedAt    time.Time
	CompletedAt  *time.Time
}

// Completed reports whether the ticket reached its terminal state.
func (t *Ticket) Completed() bool {
	return t.Status == TicketStatusCompleted && t.CompletedAt != nil
}
