package discord

import (
	"context"
	"fmt"

	"gametable/internal/customid"
	"gametable/internal/games"
	"gametable/internal/models"
	"gametable/internal/router"
	"gametable/internal/services/game"
	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"
)

// Bot represents the Discord bot instance
type Bot struct {
	session     *discordgo.Session
	commands    map[string]CommandHandler
	commandIDs  map[string]string // Maps command name to command ID
	gameService game.Service
	router      *router.Router
	registry    *games.Registry
	logger      zerolog.Logger
	config      *Config
}

// Config holds the configuration for the bot
type Config struct {
	// Discord bot token
	Token string

	// Application ID for the bot
	ApplicationID string

	// Optional guild ID for development (server-specific commands)
	GuildID string

	// Game session service
	GameService game.Service

	// Action router for game control clicks
	Router *router.Router

	// Registry of game handlers
	Registry *games.Registry

	// Logger
	Logger zerolog.Logger
}

// New creates a new Discord bot
func New(cfg *Config) (*Bot, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	if cfg.Token == "" {
		return nil, fmt.Errorf("token cannot be empty")
	}

	if cfg.GameService == nil {
		return nil, fmt.Errorf("game service cannot be nil")
	}

	if cfg.Router == nil {
		return nil, fmt.Errorf("router cannot be nil")
	}

	if cfg.Registry == nil {
		return nil, fmt.Errorf("registry cannot be nil")
	}

	session, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create Discord session: %w", err)
	}

	bot := &Bot{
		session:     session,
		commands:    make(map[string]CommandHandler),
		commandIDs:  make(map[string]string),
		gameService: cfg.GameService,
		router:      cfg.Router,
		registry:    cfg.Registry,
		logger:      cfg.Logger,
		config:      cfg,
	}

	session.AddHandler(bot.handleInteraction)

	return bot, nil
}

// Start opens the Discord connection and registers commands
func (b *Bot) Start() error {
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("failed to open Discord connection: %w", err)
	}

	gameCmd := NewGameCommand(b.gameService, b.registry, b)
	if err := b.RegisterCommand(gameCmd); err != nil {
		return fmt.Errorf("failed to register game command: %w", err)
	}

	b.logger.Info().Msg("bot is running")
	return nil
}

// Stop gracefully shuts down the Discord connection
func (b *Bot) Stop() error {
	appID := b.config.ApplicationID
	if appID == "" {
		appID = b.session.State.User.ID
	}

	for cmdName, cmdID := range b.commandIDs {
		if err := b.session.ApplicationCommandDelete(appID, b.config.GuildID, cmdID); err != nil {
			b.logger.Warn().Err(err).Str("command", cmdName).Msg("failed to delete command")
		}
	}

	return b.session.Close()
}

// RegisterCommand registers a command with Discord
func (b *Bot) RegisterCommand(cmd CommandHandler) error {
	appID := b.config.ApplicationID
	if appID == "" {
		appID = b.session.State.User.ID
	}

	createdCmd, err := b.session.ApplicationCommandCreate(appID, b.config.GuildID, cmd.GetCommand())
	if err != nil {
		return fmt.Errorf("failed to create command %s: %w", cmd.GetName(), err)
	}

	b.commands[cmd.GetName()] = cmd
	b.commandIDs[cmd.GetName()] = createdCmd.ID
	b.logger.Info().Str("command", cmd.GetName()).Str("id", createdCmd.ID).Msg("registered command")

	return nil
}

// handleInteraction handles Discord interactions
func (b *Bot) handleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		if h, ok := b.commands[i.ApplicationCommandData().Name]; ok {
			if err := h.Handle(s, i); err != nil {
				b.logger.Error().Err(err).Str("command", i.ApplicationCommandData().Name).Msg("command failed")
			}
		}
	case discordgo.InteractionMessageComponent:
		if err := b.handleComponentInteraction(s, i); err != nil {
			b.logger.Error().Err(err).Msg("component interaction failed")
		}
	}
}

// handleComponentInteraction handles button clicks and other component
// interactions. Lobby controls are handled here against the session service;
// everything else is a game action and goes through the router.
func (b *Bot) handleComponentInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	customID := i.MessageComponentData().CustomID
	actorID, actorName, avatarURL := interactionActor(i)

	decoded, err := customid.Decode(customID)
	if err != nil {
		// Unknown control, possibly from an old deployment; acknowledge and
		// swallow rather than surface a protocol error
		b.logger.Debug().Err(err).Str("custom_id", customID).Msg("undecodable control")
		return AckComponent(s, i)
	}

	switch decoded.Action {
	case ActionLobbyJoin:
		return b.handleLobbyJoin(s, i, decoded.SessionID, actorID, actorName, avatarURL)
	case ActionLobbyLeave:
		return b.handleLobbyLeave(s, i, decoded.SessionID, actorID)
	case ActionLobbyStart:
		return b.handleLobbyStart(s, i, decoded.SessionID, actorID)
	default:
		return b.handleGameAction(s, i, customID, decoded.SessionID, actorID, actorName)
	}
}

func (b *Bot) handleLobbyJoin(s *discordgo.Session, i *discordgo.InteractionCreate, sessionID, actorID, actorName, avatarURL string) error {
	ctx := context.Background()

	out, err := b.gameService.JoinSession(ctx, &game.JoinSessionInput{
		SessionID:  sessionID,
		PlayerID:   actorID,
		PlayerName: actorName,
		AvatarURL:  avatarURL,
	})
	if err != nil {
		return RespondWithEphemeralMessage(s, i, friendlyError(err))
	}

	b.updateSessionMessage(s, out.Session)
	return RespondWithEphemeralMessage(s, i, "You're in! Wait for the game to start.")
}

func (b *Bot) handleLobbyLeave(s *discordgo.Session, i *discordgo.InteractionCreate, sessionID, actorID string) error {
	ctx := context.Background()

	out, err := b.gameService.LeaveSession(ctx, &game.LeaveSessionInput{
		SessionID: sessionID,
		PlayerID:  actorID,
	})
	if err != nil {
		return RespondWithEphemeralMessage(s, i, friendlyError(err))
	}

	b.updateSessionMessage(s, out.Session)

	if out.Ended {
		return RespondWithEphemeralMessage(s, i, "You left and the lobby was closed.")
	}
	return RespondWithEphemeralMessage(s, i, "You left the game.")
}

func (b *Bot) handleLobbyStart(s *discordgo.Session, i *discordgo.InteractionCreate, sessionID, actorID string) error {
	ctx := context.Background()

	current, err := b.gameService.GetSession(ctx, &game.GetSessionInput{SessionID: sessionID})
	if err != nil {
		return RespondWithEphemeralMessage(s, i, friendlyError(err))
	}

	if current.Session.HostID != actorID {
		return RespondWithEphemeralMessage(s, i, "Only the host can start the game.")
	}

	out, err := b.gameService.StartGame(ctx, &game.StartGameInput{SessionID: sessionID})
	if err != nil {
		return RespondWithEphemeralMessage(s, i, friendlyError(err))
	}

	b.updateSessionMessage(s, out.Session)
	return RespondWithEphemeralMessage(s, i, "Game started!")
}

// handleGameAction routes a game control click through the action router.
// The conclusion check runs in the router's Done callback: queued games
// execute the action on a drain goroutine, so inspecting the session before
// Done fires would see the pre-action state.
func (b *Bot) handleGameAction(s *discordgo.Session, i *discordgo.InteractionCreate, customID, sessionID, actorID, actorName string) error {
	ctx := context.Background()

	b.router.HandleActionEvent(ctx, &router.Event{
		RawCustomID: customID,
		ActorID:     actorID,
		ActorName:   actorName,
		Ack: func() error {
			return AckComponent(s, i)
		},
		Notify: func(content string) error {
			return FollowupEphemeral(s, i, content)
		},
		Done: func() {
			b.concludeIfFinished(ctx, s, sessionID)
		},
	})

	return nil
}

// concludeIfFinished re-reads a session after an action ran, ends it when
// the game handler reports it finished, and re-renders its message.
func (b *Bot) concludeIfFinished(ctx context.Context, s *discordgo.Session, sessionID string) {
	out, err := b.gameService.GetSession(ctx, &game.GetSessionInput{SessionID: sessionID})
	if err != nil {
		// Session ended mid-action; the router already notified the actor
		return
	}
	session := out.Session

	if session.Status == models.SessionStatusActive {
		if handler, ok := b.registry.Get(session.GameType); ok && handler.Finished(session) {
			endOut, err := b.gameService.EndSession(ctx, &game.EndSessionInput{
				SessionID: session.ID,
				WinnerID:  session.WinnerID,
				Reason:    models.EndReasonFinished,
			})
			if err != nil {
				b.logger.Error().Err(err).Str("session_id", session.ID).Msg("failed to conclude finished game")
			} else {
				session = endOut.Session
			}
		}
	}

	b.updateSessionMessage(s, session)
}

// SessionStarted implements game.Observer; a countdown moved a lobby into
// play on a timer goroutine and the channel message needs re-rendering.
func (b *Bot) SessionStarted(session *models.Session) {
	b.updateSessionMessage(b.session, session)
}

// SessionEnded implements game.Observer for deferred terminal transitions
func (b *Bot) SessionEnded(session *models.Session, reason models.EndReason) {
	b.updateSessionMessage(b.session, session)
}

// updateSessionMessage re-renders the channel message backing a session
func (b *Bot) updateSessionMessage(s *discordgo.Session, session *models.Session) {
	if session == nil || session.MessageID == "" {
		return
	}

	embeds := []*discordgo.MessageEmbed{renderSessionEmbed(session)}
	components := renderSessionComponents(session)

	_, err := s.ChannelMessageEditComplex(&discordgo.MessageEdit{
		Channel:    session.ChannelID,
		ID:         session.MessageID,
		Embeds:     &embeds,
		Components: &components,
	})
	if err != nil {
		b.logger.Warn().Err(err).Str("session_id", session.ID).Msg("failed to update session message")
	}
}

// interactionActor extracts the acting user from a guild or DM interaction
func interactionActor(i *discordgo.InteractionCreate) (id, name, avatarURL string) {
	if i.Member != nil && i.Member.User != nil {
		user := i.Member.User
		name = user.Username
		if i.Member.Nick != "" {
			name = i.Member.Nick
		}
		return user.ID, name, user.AvatarURL("")
	}

	if i.User != nil {
		return i.User.ID, i.User.Username, i.User.AvatarURL("")
	}

	return "", "", ""
}

// friendlyError maps service errors to user-facing messages
func friendlyError(err error) string {
	switch err {
	case game.ErrSessionNotFound:
		return "This game has ended."
	case game.ErrChannelHasGame:
		return "There's already a game running in this channel."
	case game.ErrInvalidGameType:
		return "Unknown game type."
	case game.ErrGameAlreadyStarted:
		return "The game has already started."
	case game.ErrGameFull:
		return "The game is full."
	case game.ErrAlreadyInGame:
		return "You're already in this game."
	case game.ErrPlayerInOtherGame:
		return "You're already in another game. Leave it first."
	case game.ErrNotInGame:
		return "You're not in this game."
	case game.ErrNotEnoughPlayers:
		return "Not enough players to start yet."
	case game.ErrBusyTryAgain:
		return "The game is busy, try again in a moment."
	default:
		return fmt.Sprintf("Something went wrong: %v", err)
	}
}
