package service

import (
	"context"
	"encoding/csv"
	"math"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-desk/internal/auth"
	"github.com/spec-kit/ticket-desk/internal/domain"
	"github.com/spec-kit/ticket-desk/internal/events"
	"github.com/spec-kit/ticket-desk/internal/repository"
	apperrors "github.com/spec-kit/ticket-desk/pkg/util"
)

// exportHeader is the fixed column set of the performance report.
var exportHeader = []string{
	"Title",
	"Assigned Team",
	"Submitted By",
	"Status",
	"Created At",
	"Completed At",
	"Time Taken (hrs)",
}

// ExportService renders the ticket performance report: every ticket row
// plus the elapsed hours between creation and completion.
type ExportService struct {
	tickets    repository.TicketRepository
	dispatcher events.Dispatcher
	authorizer *auth.Authorizer
	logger     *zap.Logger
}

// ExportDependencies bundles collaborators for the service.
type ExportDependencies struct {
	TicketRepo repository.TicketRepository
	Dispatcher events.Dispatcher
	Authorizer *auth.Authorizer
	Logger     *zap.Logger
}

// NewExportService constructs the service.
func NewExportService(deps ExportDependencies) *ExportService {
	return &ExportService{
		tickets:    deps.TicketRepo,
		dispatcher: deps.Dispatcher,
		authorizer: deps.Authorizer,
		logger:     deps.Logger,
	}
}

// Export writes the report to path, overwriting any existing file, and
// returns the number of ticket rows written. Privileged role required.
func (s *ExportService) Export(ctx context.Context, actor Actor, path string) (int, error) {
	if !s.authorizer.IsPrivileged(actor.Roles) {
		return 0, apperrors.NewForbidden("you are not authorized to export tickets")
	}

	tickets, err := s.tickets.ListAll(ctx)
	if err != nil {
		return 0, apperrors.MapError(err)
	}

	file, err := os.Create(path)
	if err != nil {
		return 0, apperrors.MapError(err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(exportHeader); err != nil {
		return 0, apperrors.MapError(err)
	}
	for i := range tickets {
		if err := writer.Write(exportRow(&tickets[i])); err != nil {
			return 0, apperrors.MapError(err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return 0, apperrors.MapError(err)
	}

	s.logger.Info("ticket performance exported",
		zap.String("path", path),
		zap.Int("tickets", len(tickets)))

	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventExportGenerated,
			Actor:     eventActor(actor),
			Timestamp: time.Now().UTC(),
			Payload: events.ExportGeneratedPayload{
				Path:        path,
				TicketCount: len(tickets),
			},
		})
	}
	return len(tickets), nil
}

func exportRow(t *domain.Ticket) []string {
	completedAt := ""
	if t.CompletedAt != nil {
		completedAt = t.CompletedAt.UTC().Format(time.RFC3339)
	}
	return []string{
		t.Title,
		t.AssignedTeam,
		t.SubmittedBy,
		string(t.Status),
		t.CreatedAt.UTC().Format(time.RFC3339),
		completedAt,
		hoursTaken(t),
	}
}

// hoursTaken renders elapsed hours rounded to two decimals, minimally
// formatted (2.5, not 2.50). Empty when either timestamp is missing.
func hoursTaken(t *domain.Ticket) string {
	if t.CompletedAt == nil || t.CreatedAt.IsZero() {
		return ""
	}
	hours := t.CompletedAt.Sub(t.CreatedAt).Seconds() / 3600
	rounded := math.Round(hours*100) / 100
	return strconv.FormatFloat(rounded, 'f', -1, 64)
}
