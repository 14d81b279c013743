package discord

import (
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/spec-kit/ticket-desk/internal/domain"
)

// Component custom IDs routed by the interaction handler. The update
// modal carries the panel message ID after the separator so the submit
// can refresh the right message.
const (
	customIDOpenTicket  = "ticket_open"
	customIDSubmitModal = "ticket_submit_modal"
	customIDUpdate      = "ticket_update"
	customIDUpdateModal = "ticket_update_modal"
	customIDComplete    = "ticket_complete"
	customIDDelete      = "ticket_delete"

	customIDSeparator = ":"
)

const embedColor = 0x5865F2 // blurple

// ticketEmbed renders the action-panel embed for the ticket's current
// state, mirroring the assignment fields once they are populated.
func (g *Gateway) ticketEmbed(t *domain.Ticket) *discordgo.MessageEmbed {
	title := "📩 New Ticket: " + t.Title
	if t.Completed() {
		title = "✅ Completed Ticket: " + t.Title
	}

	embed := &discordgo.MessageEmbed{
		Title:       title,
		Description: t.Description,
		Color:       embedColor,
		Footer:      &discordgo.MessageEmbedFooter{Text: "Submitted by " + t.SubmittedBy},
	}

	if t.AssignedTeam != "" || t.Priority != "" || t.Deadline != "" {
		team := t.AssignedTeam
		if mention, ok := g.cfg.TeamMentions[t.AssignedTeam]; ok {
			team = strings.TrimSpace(team + " " + mention)
		}
		embed.Fields = []*discordgo.MessageEmbedField{
			{Name: "Assigned Team", Value: orDash(team)},
			{Name: "Priority", Value: orDash(t.Priority)},
			{Name: "Deadline", Value: orDash(t.Deadline)},
		}
	}
	return embed
}

func orDash(s string) string {
	if s == "" {
		return "—"
	}
	return s
}

// panelComponents are the ticket action controls.
func panelComponents() []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label:    "✏️ Update Ticket",
					Style:    discordgo.PrimaryButton,
					CustomID: customIDUpdate,
				},
				discordgo.Button{
					Label:    "✅ Mark as Completed",
					Style:    discordgo.SuccessButton,
					CustomID: customIDComplete,
				},
				discordgo.Button{
					Label:    "🗑️ Delete Ticket",
					Style:    discordgo.DangerButton,
					CustomID: customIDDelete,
				},
			},
		},
	}
}

// promptComponents is the single "Open Ticket" button posted in the
// parent channel.
func promptComponents() []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label:    "📩 Open Ticket",
					Style:    discordgo.PrimaryButton,
					CustomID: customIDOpenTicket,
				},
			},
		},
	}
}

// submitModal is the ticket submission form.
func submitModal() *discordgo.InteractionResponseData {
	return &discordgo.InteractionResponseData{
		CustomID: customIDSubmitModal,
		Title:    "Submit a Ticket",
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{
				Components: []discordgo.MessageComponent{
					discordgo.TextInput{
						CustomID:    "title",
						Label:       "Ticket Title",
						Style:       discordgo.TextInputShort,
						Placeholder: "e.g. Design new landing page",
						Required:    true,
					},
				},
			},
			discordgo.ActionsRow{
				Components: []discordgo.MessageComponent{
					discordgo.TextInput{
						CustomID:    "description",
						Label:       "Description",
						Style:       discordgo.TextInputParagraph,
						Placeholder: "Describe the task",
						MaxLength:   1000,
					},
				},
			},
		},
	}
}

// updateModal is the assignment form; panelMessageID rides along in the
// custom ID.
func updateModal(panelMessageID string) *discordgo.InteractionResponseData {
	return &discordgo.InteractionResponseData{
		CustomID: customIDUpdateModal + customIDSeparator + panelMessageID,
		Title:    "Update Ticket Details",
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{
				Components: []discordgo.MessageComponent{
					discordgo.TextInput{
						CustomID:    "team",
						Label:       "Assigned Team",
						Style:       discordgo.TextInputShort,
						Placeholder: "e.g. Design Team",
						Required:    true,
					},
				},
			},
			discordgo.ActionsRow{
				Components: []discordgo.MessageComponent{
					discordgo.TextInput{
						CustomID:    "priority",
						Label:       "Priority",
						Style:       discordgo.TextInputShort,
						Placeholder: "Low, Medium, High, Critical",
						Required:    true,
					},
				},
			},
			discordgo.ActionsRow{
				Components: []discordgo.MessageComponent{
					discordgo.TextInput{
						CustomID:    "deadline",
						Label:       "Deadline (DD-MM-YYYY)",
						Style:       discordgo.TextInputShort,
						Placeholder: "e.g. 25-04-2025",
						Required:    true,
					},
				},
			},
		},
	}
}

// modalInputs flattens modal submit components into customID -> value.
func modalInputs(data discordgo.ModalSubmitInteractionData) map[string]string {
	out := make(map[string]string)
	for _, row := range data.Components {
		actionsRow, ok := row.(*discordgo.ActionsRow)
		if !ok {
			continue
		}
		for _, comp := range actionsRow.Components {
			if input, ok := comp.(*discordgo.TextInput); ok {
				out[input.CustomID] = input.Value
			}
		}
	}
	return out
}
