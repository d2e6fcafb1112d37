package discord

import (
	"context"
	"fmt"

	"gametable/internal/games"
	"gametable/internal/models"
	"gametable/internal/services/game"
	"github.com/bwmarrin/discordgo"
)

// GameCommand handles the /game slash command
type GameCommand struct {
	BaseCommand
	gameService game.Service
	registry    *games.Registry
	bot         *Bot
}

// NewGameCommand creates a new game command handler
func NewGameCommand(gameService game.Service, registry *games.Registry, bot *Bot) *GameCommand {
	var choices []*discordgo.ApplicationCommandOptionChoice
	for _, gameType := range registry.GameTypes() {
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{
			Name:  gameType,
			Value: gameType,
		})
	}

	return &GameCommand{
		BaseCommand: BaseCommand{
			Name:        "game",
			Description: "Manage multiplayer game sessions in this channel",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "create",
					Description: "Open a new game lobby in this channel",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "type",
							Description: "Which game to play",
							Required:    true,
							Choices:     choices,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "join",
					Description: "Join the game lobby in this channel",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "leave",
					Description: "Leave the game in this channel",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "start",
					Description: "Start the game early (host only)",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "stop",
					Description: "Stop the game in this channel (host only)",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "status",
					Description: "Show the current game's status",
				},
			},
		},
		gameService: gameService,
		registry:    registry,
		bot:         bot,
	}
}

// Handle processes a /game interaction
func (c *GameCommand) Handle(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	data := i.ApplicationCommandData()
	if len(data.Options) == 0 {
		return RespondWithEphemeralMessage(s, i, "Missing subcommand.")
	}

	sub := data.Options[0]
	switch sub.Name {
	case "create":
		return c.handleCreate(s, i, sub)
	case "join":
		return c.handleJoin(s, i)
	case "leave":
		return c.handleLeave(s, i)
	case "start":
		return c.handleStart(s, i)
	case "stop":
		return c.handleStop(s, i)
	case "status":
		return c.handleStatus(s, i)
	default:
		return RespondWithEphemeralMessage(s, i, fmt.Sprintf("Unknown subcommand: %s", sub.Name))
	}
}

func (c *GameCommand) handleCreate(s *discordgo.Session, i *discordgo.InteractionCreate, sub *discordgo.ApplicationCommandInteractionDataOption) error {
	ctx := context.Background()
	actorID, actorName, avatarURL := interactionActor(i)

	if len(sub.Options) == 0 {
		return RespondWithEphemeralMessage(s, i, "Pick a game type.")
	}
	gameType := sub.Options[0].StringValue()

	out, err := c.gameService.CreateSession(ctx, &game.CreateSessionInput{
		GameType:      gameType,
		GuildID:       i.GuildID,
		ChannelID:     i.ChannelID,
		HostID:        actorID,
		HostName:      actorName,
		HostAvatarURL: avatarURL,
	})
	if err != nil {
		return RespondWithEphemeralMessage(s, i, friendlyError(err))
	}
	session := out.Session

	embeds := []*discordgo.MessageEmbed{renderSessionEmbed(session)}
	msg, err := s.ChannelMessageSendComplex(i.ChannelID, &discordgo.MessageSend{
		Embeds:     embeds,
		Components: renderSessionComponents(session),
	})
	if err != nil {
		return RespondWithEphemeralMessage(s, i, fmt.Sprintf("Failed to post the lobby message: %v", err))
	}

	attachOut, err := c.gameService.AttachMessage(ctx, &game.AttachMessageInput{
		SessionID: session.ID,
		MessageID: msg.ID,
	})
	if err == nil {
		// Re-render so the controls carry the post-attach version
		c.bot.updateSessionMessage(s, attachOut.Session)
	}

	return RespondWithEphemeralMessage(s, i, "Lobby created! You're seated as the host.")
}

func (c *GameCommand) handleJoin(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	ctx := context.Background()
	actorID, actorName, avatarURL := interactionActor(i)

	channelOut, err := c.gameService.GetSessionByChannel(ctx, &game.GetSessionByChannelInput{ChannelID: i.ChannelID})
	if err != nil {
		return RespondWithEphemeralMessage(s, i, "No game in this channel. Use `/game create` to open one.")
	}

	out, err := c.gameService.JoinSession(ctx, &game.JoinSessionInput{
		SessionID:  channelOut.Session.ID,
		PlayerID:   actorID,
		PlayerName: actorName,
		AvatarURL:  avatarURL,
	})
	if err != nil {
		return RespondWithEphemeralMessage(s, i, friendlyError(err))
	}

	c.bot.updateSessionMessage(s, out.Session)
	return RespondWithEphemeralMessage(s, i, "You're in! Wait for the game to start.")
}

func (c *GameCommand) handleLeave(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	ctx := context.Background()
	actorID, _, _ := interactionActor(i)

	channelOut, err := c.gameService.GetSessionByChannel(ctx, &game.GetSessionByChannelInput{ChannelID: i.ChannelID})
	if err != nil {
		return RespondWithEphemeralMessage(s, i, "No game in this channel.")
	}

	out, err := c.gameService.LeaveSession(ctx, &game.LeaveSessionInput{
		SessionID: channelOut.Session.ID,
		PlayerID:  actorID,
	})
	if err != nil {
		return RespondWithEphemeralMessage(s, i, friendlyError(err))
	}

	c.bot.updateSessionMessage(s, out.Session)

	if out.Ended {
		return RespondWithEphemeralMessage(s, i, "You left and the lobby was closed.")
	}
	return RespondWithEphemeralMessage(s, i, "You left the game.")
}

func (c *GameCommand) handleStart(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	ctx := context.Background()
	actorID, _, _ := interactionActor(i)

	channelOut, err := c.gameService.GetSessionByChannel(ctx, &game.GetSessionByChannelInput{ChannelID: i.ChannelID})
	if err != nil {
		return RespondWithEphemeralMessage(s, i, "No game in this channel.")
	}

	if channelOut.Session.HostID != actorID {
		return RespondWithEphemeralMessage(s, i, "Only the host can start the game.")
	}

	out, err := c.gameService.StartGame(ctx, &game.StartGameInput{SessionID: channelOut.Session.ID})
	if err != nil {
		return RespondWithEphemeralMessage(s, i, friendlyError(err))
	}

	c.bot.updateSessionMessage(s, out.Session)
	return RespondWithEphemeralMessage(s, i, "Game started!")
}

func (c *GameCommand) handleStop(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	ctx := context.Background()
	actorID, _, _ := interactionActor(i)

	channelOut, err := c.gameService.GetSessionByChannel(ctx, &game.GetSessionByChannelInput{ChannelID: i.ChannelID})
	if err != nil {
		return RespondWithEphemeralMessage(s, i, "No game in this channel.")
	}

	if channelOut.Session.HostID != actorID {
		return RespondWithEphemeralMessage(s, i, "Only the host can stop the game.")
	}

	out, err := c.gameService.EndSession(ctx, &game.EndSessionInput{
		SessionID: channelOut.Session.ID,
		Reason:    models.EndReasonStopped,
	})
	if err != nil {
		return RespondWithEphemeralMessage(s, i, friendlyError(err))
	}

	c.bot.updateSessionMessage(s, out.Session)
	return RespondWithEphemeralMessage(s, i, "Game stopped.")
}

func (c *GameCommand) handleStatus(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	ctx := context.Background()

	channelOut, err := c.gameService.GetSessionByChannel(ctx, &game.GetSessionByChannelInput{ChannelID: i.ChannelID})
	if err != nil {
		return RespondWithEphemeralMessage(s, i, "No game in this channel. Use `/game create` to open one.")
	}

	return RespondWithEphemeralEmbed(s, i, renderSessionEmbed(channelOut.Session))
}
