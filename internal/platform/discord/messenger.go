package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/spec-kit/ticket-desk/internal/domain"
)

// threadAutoArchiveMinutes keeps ticket threads listed for a week of
// inactivity before Discord hides them.
const threadAutoArchiveMinutes = 10080

// CreateThread opens a public thread under the ticket parent channel.
func (g *Gateway) CreateThread(ctx context.Context, name string) (string, error) {
	thread, err := g.session.ThreadStartComplex(g.cfg.ParentChannelID, &discordgo.ThreadStart{
		Name:                name,
		Type:                discordgo.ChannelTypeGuildPublicThread,
		AutoArchiveDuration: threadAutoArchiveMinutes,
	})
	if err != nil {
		return "", fmt.Errorf("create thread: %w", err)
	}
	return thread.ID, nil
}

// PostTicketPanel posts the embed plus action controls into the thread.
func (g *Gateway) PostTicketPanel(ctx context.Context, threadID string, ticket *domain.Ticket) (string, error) {
	msg, err := g.session.ChannelMessageSendComplex(threadID, &discordgo.MessageSend{
		Content:    "📬 Ticket submitted by " + ticket.SubmittedBy,
		Embeds:     []*discordgo.MessageEmbed{g.ticketEmbed(ticket)},
		Components: panelComponents(),
	})
	if err != nil {
		return "", fmt.Errorf("post ticket panel: %w", err)
	}
	return msg.ID, nil
}

// UpdateTicketPanel rewrites the panel embed; the action controls on the
// message are left untouched.
func (g *Gateway) UpdateTicketPanel(ctx context.Context, threadID, messageID string, ticket *domain.Ticket) error {
	if _, err := g.session.ChannelMessageEditEmbed(threadID, messageID, g.ticketEmbed(ticket)); err != nil {
		return fmt.Errorf("update ticket panel: %w", err)
	}
	return nil
}

// NotifyThread posts a plain announcement into the thread.
func (g *Gateway) NotifyThread(ctx context.Context, threadID, content string) error {
	if _, err := g.session.ChannelMessageSend(threadID, content); err != nil {
		return fmt.Errorf("notify thread: %w", err)
	}
	return nil
}

// ArchiveThread archives and optionally locks the thread.
func (g *Gateway) ArchiveThread(ctx context.Context, threadID string, lock bool) error {
	archived := true
	edit := &discordgo.ChannelEdit{Archived: &archived}
	if lock {
		locked := true
		edit.Locked = &locked
	}
	if _, err := g.session.ChannelEditComplex(threadID, edit); err != nil {
		return fmt.Errorf("archive thread: %w", err)
	}
	return nil
}

// PostPrompt re-posts the "Open Ticket" prompt in the parent channel,
// removing the bot's previous prompt messages first so only one button
// is live.
func (g *Gateway) PostPrompt() error {
	botID := ""
	if g.session.State != nil && g.session.State.User != nil {
		botID = g.session.State.User.ID
	}

	if botID != "" {
		messages, err := g.session.ChannelMessages(g.cfg.ParentChannelID, 50, "", "", "")
		if err == nil {
			for _, msg := range messages {
				if msg.Author != nil && msg.Author.ID == botID && len(msg.Components) > 0 {
					_ = g.session.ChannelMessageDelete(g.cfg.ParentChannelID, msg.ID)
				}
			}
		}
	}

	_, err := g.session.ChannelMessageSendComplex(g.cfg.ParentChannelID, &discordgo.MessageSend{
		Content:    "🎫 Click below to submit a ticket:",
		Components: promptComponents(),
	})
	if err != nil {
		return fmt.Errorf("post prompt: %w", err)
	}
	return nil
}
