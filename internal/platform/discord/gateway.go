// Package discord adapts the chat-platform boundary to Discord via
// discordgo. It translates gateway interactions into lifecycle-service
// calls and implements platform.Messenger for the outbound direction.
package discord

import (
	"fmt"
	"sync/atomic"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-desk/internal/config"
	"github.com/spec-kit/ticket-desk/internal/observability"
	"github.com/spec-kit/ticket-desk/internal/service"
)

// Gateway owns the Discord session and routes its events.
type Gateway struct {
	session    *discordgo.Session
	cfg        config.DiscordConfig
	exportPath string
	tickets    *service.TicketService
	exports    *service.ExportService
	logger     *zap.Logger
	metrics    *observability.Metrics
	ready      atomic.Bool
}

// NewGateway builds the session without connecting. Bind must be called
// before Open so interaction handlers have their services.
func NewGateway(cfg config.DiscordConfig, exportPath string, logger *zap.Logger, metrics *observability.Metrics) (*Gateway, error) {
	session, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentGuilds |
		discordgo.IntentGuildMessages |
		discordgo.IntentMessageContent

	return &Gateway{
		session:    session,
		cfg:        cfg,
		exportPath: exportPath,
		logger:     logger,
		metrics:    metrics,
	}, nil
}

// Bind attaches the lifecycle services and registers event handlers.
func (g *Gateway) Bind(tickets *service.TicketService, exports *service.ExportService) {
	g.tickets = tickets
	g.exports = exports

	g.session.AddHandler(g.onReady)
	g.session.AddHandler(g.onInteractionCreate)
	g.session.AddHandler(g.onMessageCreate)
}

// Open connects to the gateway.
func (g *Gateway) Open() error {
	if err := g.session.Open(); err != nil {
		return fmt.Errorf("open discord session: %w", err)
	}
	return nil
}

// Close disconnects from the gateway.
func (g *Gateway) Close() {
	if g != nil && g.session != nil {
		_ = g.session.Close()
	}
}

// Connected reports whether the gateway has seen Ready.
func (g *Gateway) Connected() bool {
	return g != nil && g.ready.Load()
}

func (g *Gateway) onReady(s *discordgo.Session, r *discordgo.Ready) {
	g.ready.Store(true)
	g.logger.Info("discord gateway ready",
		zap.String("user", r.User.Username),
		zap.Int("guilds", len(r.Guilds)))

	if err := g.PostPrompt(); err != nil {
		g.logger.Warn("failed to post ticket prompt", zap.Error(err))
	}
}
