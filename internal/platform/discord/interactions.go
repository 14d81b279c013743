package discord

import (
	"context"
	"os"
	"strings"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-desk/internal/service"
	apperrors "github.com/spec-kit/ticket-desk/pkg/util"
)

const exportCommand = "!export"

func (g *Gateway) onInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.Type {
	case discordgo.InteractionMessageComponent:
		g.handleComponent(i)
	case discordgo.InteractionModalSubmit:
		g.handleModalSubmit(i)
	}
}

func (g *Gateway) handleComponent(i *discordgo.InteractionCreate) {
	ctx := context.Background()
	actor := actorFromInteraction(i)
	data := i.MessageComponentData()

	switch data.CustomID {
	case customIDOpenTicket:
		g.respondModal(i, submitModal())

	case customIDUpdate:
		// The form itself is gated so an unprivileged actor is turned
		// away before typing anything; the service checks again on
		// submit.
		if !g.tickets.Authorized(actor) {
			g.respondEphemeral(i, "❌ You are not authorized to update tickets.")
			return
		}
		g.respondModal(i, updateModal(i.Message.ID))

	case customIDComplete:
		if err := g.tickets.CompleteTicket(ctx, actor, i.ChannelID, i.Message.ID); err != nil {
			g.respondError(i, "ticket_complete", err)
			return
		}
		g.metrics.RecordInteraction("ticket_complete")
		g.respondEphemeral(i, "✅ Ticket marked as completed!")

	case customIDDelete:
		if err := g.tickets.DeleteTicket(ctx, actor, i.ChannelID); err != nil {
			g.respondError(i, "ticket_delete", err)
			return
		}
		g.metrics.RecordInteraction("ticket_delete")
		g.respondEphemeral(i, "🗑️ Ticket deleted from system. Archiving thread...")
	}
}

func (g *Gateway) handleModalSubmit(i *discordgo.InteractionCreate) {
	ctx := context.Background()
	actor := actorFromInteraction(i)
	data := i.ModalSubmitData()
	inputs := modalInputs(data)

	switch {
	case data.CustomID == customIDSubmitModal:
		_, err := g.tickets.SubmitTicket(ctx, actor, service.SubmitInput{
			Title:       inputs["title"],
			Description: inputs["description"],
		})
		if err != nil {
			g.respondError(i, "ticket_submit", err)
			return
		}
		g.metrics.RecordInteraction("ticket_submit")
		g.respondEphemeral(i, "✅ Ticket created! Check the thread.")

		if err := g.PostPrompt(); err != nil {
			g.logger.Warn("failed to refresh ticket prompt", zap.Error(err))
		}

	case strings.HasPrefix(data.CustomID, customIDUpdateModal+customIDSeparator):
		panelMessageID := strings.TrimPrefix(data.CustomID, customIDUpdateModal+customIDSeparator)
		ticket, err := g.tickets.UpdateAssignment(ctx, actor, i.ChannelID, panelMessageID, service.AssignmentInput{
			Team:     inputs["team"],
			Priority: inputs["priority"],
			Deadline: inputs["deadline"],
		})
		if err != nil {
			g.respondError(i, "ticket_update", err)
			return
		}
		g.metrics.RecordInteraction("ticket_update")
		g.respondEphemeral(i, "✅ Ticket updated and assigned to "+ticket.AssignedTeam+"!")
	}
}

// onMessageCreate handles the privileged !export prefix command.
func (g *Gateway) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot {
		return
	}
	if strings.TrimSpace(m.Content) != exportCommand {
		return
	}

	actor := actorFromMessage(m)
	count, err := g.exports.Export(context.Background(), actor, g.exportPath)
	if err != nil {
		g.metrics.RecordError("export", apperrors.ToDomainError(err).Code)
		g.sendErrorMessage(m.ChannelID, err)
		return
	}
	g.metrics.RecordInteraction("export")

	file, err := os.Open(g.exportPath)
	if err != nil {
		g.logger.Error("failed to open export file", zap.String("path", g.exportPath), zap.Error(err))
		_, _ = g.session.ChannelMessageSend(m.ChannelID, "❌ Something went wrong. Please try again.")
		return
	}
	defer file.Close()

	_, err = g.session.ChannelMessageSendComplex(m.ChannelID, &discordgo.MessageSend{
		Content: "📊 Ticket performance exported:",
		Files: []*discordgo.File{{
			Name:        "ticket_performance.csv",
			ContentType: "text/csv",
			Reader:      file,
		}},
	})
	if err != nil {
		g.logger.Error("failed to upload export", zap.Error(err))
		return
	}
	g.logger.Info("export delivered",
		zap.String("channel_id", m.ChannelID),
		zap.Int("tickets", count),
		zap.String("actor", actor.DisplayName))
}

func (g *Gateway) respondModal(i *discordgo.InteractionCreate, data *discordgo.InteractionResponseData) {
	err := g.session.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: data,
	})
	if err != nil {
		g.logger.Warn("failed to open modal", zap.Error(err))
	}
}

func (g *Gateway) respondEphemeral(i *discordgo.InteractionCreate, content string) {
	err := g.session.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		g.logger.Warn("failed to send ephemeral reply", zap.Error(err))
	}
}

// respondError maps a service error to an ephemeral reply. Authorization,
// validation, and not-found messages are shown as-is; anything else is
// an unspecified failure.
func (g *Gateway) respondError(i *discordgo.InteractionCreate, kind string, err error) {
	domainErr := apperrors.ToDomainError(err)
	g.metrics.RecordError(kind, domainErr.Code)

	if domainErr.UserVisible() {
		g.respondEphemeral(i, "❌ "+capitalize(domainErr.Message)+".")
		return
	}
	g.logger.Error("interaction failed", zap.String("kind", kind), zap.Error(err))
	g.respondEphemeral(i, "❌ Something went wrong. Please try again.")
}

func (g *Gateway) sendErrorMessage(channelID string, err error) {
	domainErr := apperrors.ToDomainError(err)
	content := "❌ Something went wrong. Please try again."
	if domainErr.UserVisible() {
		content = "❌ " + capitalize(domainErr.Message) + "."
	} else {
		g.logger.Error("export failed", zap.Error(err))
	}
	_, _ = g.session.ChannelMessageSend(channelID, content)
}

func actorFromInteraction(i *discordgo.InteractionCreate) service.Actor {
	if i.Member != nil && i.Member.User != nil {
		return service.Actor{
			ID:          i.Member.User.ID,
			DisplayName: displayName(i.Member.Nick, i.Member.User),
			Roles:       i.Member.Roles,
		}
	}
	if i.User != nil {
		return service.Actor{ID: i.User.ID, DisplayName: displayName("", i.User)}
	}
	return service.Actor{}
}

func actorFromMessage(m *discordgo.MessageCreate) service.Actor {
	actor := service.Actor{ID: m.Author.ID, DisplayName: displayName("", m.Author)}
	if m.Member != nil {
		actor.Roles = m.Member.Roles
		actor.DisplayName = displayName(m.Member.Nick, m.Author)
	}
	return actor
}

func displayName(nick string, user *discordgo.User) string {
	if nick != "" {
		return nick
	}
	if user == nil {
		return ""
	}
	if user.GlobalName != "" {
		return user.GlobalName
	}
	return user.Username
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
