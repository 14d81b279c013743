package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/spec-kit/ticket-desk/internal/domain"
)

// TicketRepository encapsulates ticket persistence. Lookups are keyed by
// the external discussion-thread identifier.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	UpdateAssignment(ctx context.Context, threadID, team, priority, deadline string) error
	Complete(ctx context.Context, threadID string) error
	Delete(ctx context.Context, threadID string) error
	GetByThreadID(ctx context.Context, threadID string) (*domain.Ticket, error)
	ListAll(ctx context.Context) ([]domain.Ticket, error)
	NextSequence(ctx context.Context) (int64, error)
}

type ticketRepository struct {
	db *sql.DB
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(db *sql.DB) TicketRepository {
	return &ticketRepository{db: db}
}

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (title, description, assigned_team, priority, deadline, submitted_by, thread_id, status, created_at, completed_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, NULL)`

	ticket.Status = domain.TicketStatusOpen
	ticket.CreatedAt = time.Now().UTC()
	ticket.CompletedAt = nil

	res, err := r.db.ExecContext(ctx, query,
		ticket.Title,
		ticket.Description,
		ticket.AssignedTeam,
		ticket.Priority,
		ticket.Deadline,
		ticket.SubmittedBy,
		ticket.ThreadID,
		ticket.Status,
		ticket.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create ticket: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("create ticket: %w", err)
	}
	ticket.ID = id
	return nil
}

func (r *ticketRepository) UpdateAssignment(ctx context.Context, threadID, team, priority, deadline string) error {
	const query = `
        UPDATE tickets SET assigned_team = ?, priority = ?, deadline = ?
        WHERE thread_id = ?`
	res, err := r.db.ExecContext(ctx, query, team, priority, deadline, threadID)
	if err != nil {
		return fmt.Errorf("update assignment: %w", err)
	}
	return requireRows(res)
}

func (r *ticketRepository) Complete(ctx context.Context, threadID string) error {
	// Deliberately not scoped by status: a repeat completion rewrites
	// completed_at, matching the store contract.
	const query = `
        UPDATE tickets SET status = ?, completed_at = ?
        WHERE thread_id = ?`
	res, err := r.db.ExecContext(ctx, query, domain.TicketStatusCompleted, time.Now().UTC(), threadID)
	if err != nil {
		return fmt.Errorf("complete ticket: %w", err)
	}
	return requireRows(res)
}

func (r *ticketRepository) Delete(ctx context.Context, threadID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tickets WHERE thread_id = ?`, threadID)
	if err != nil {
		return fmt.Errorf("delete ticket: %w", err)
	}
	return requireRows(res)
}

func (r *ticketRepository) GetByThreadID(ctx context.Context, threadID string) (*domain.Ticket, error) {
	const query = `
        SELECT id, title, description, assigned_team, priority, deadline,
               submitted_by, thread_id, status, created_at, completed_at
        FROM tickets WHERE thread_id = ?`

	var (
		ticket    domain.Ticket
		completed sql.NullTime
	)
	err := r.db.QueryRowContext(ctx, query, threadID).Scan(
		&ticket.ID,
		&ticket.Title,
		&ticket.Description,
		&ticket.AssignedTeam,
		&ticket.Priority,
		&ticket.Deadline,
		&ticket.SubmittedBy,
		&ticket.ThreadID,
		&ticket.Status,
		&ticket.CreatedAt,
		&completed,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get ticket: %w", err)
	}
	if completed.Valid {
		t := completed.Time
		ticket.CompletedAt = &t
	}
	return &ticket, nil
}

func (r *ticketRepository) ListAll(ctx context.Context) ([]domain.Ticket, error) {
	const query = `
        SELECT id, title, description, assigned_team, priority, deadline,
               submitted_by, thread_id, status, created_at, completed_at
        FROM tickets ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list tickets: %w", err)
	}
	defer rows.Close()

	var result []domain.Ticket
	for rows.Next() {
		var (
			ticket    domain.Ticket
			completed sql.NullTime
		)
		if err := rows.Scan(
			&ticket.ID,
			&ticket.Title,
			&ticket.Description,
			&ticket.AssignedTeam,
			&ticket.Priority,
			&ticket.Deadline,
			&ticket.SubmittedBy,
			&ticket.ThreadID,
			&ticket.Status,
			&ticket.CreatedAt,
			&completed,
		); err != nil {
			return nil, fmt.Errorf("scan ticket: %w", err)
		}
		if completed.Valid {
			t := completed.Time
			ticket.CompletedAt = &t
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}

// NextSequence derives the next human-readable ticket number from the
// store so restarts neither reset nor collide it.
func (r *ticketRepository) NextSequence(ctx context.Context) (int64, error) {
	var next int64
	err := r.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(id), 0) + 1 FROM tickets`).Scan(&next)
	if err != nil {
		return 0, fmt.Errorf("next sequence: %w", err)
	}
	return next, nil
}

func requireRows(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
