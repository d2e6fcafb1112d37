package discord

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"gametable/internal/customid"
	"gametable/internal/games/highroll"
	"gametable/internal/games/vote"
	"gametable/internal/models"
	"github.com/bwmarrin/discordgo"
)

// Lobby control actions, handled by the bot itself rather than a game handler
const (
	ActionLobbyJoin  = "lobby_join"
	ActionLobbyLeave = "lobby_leave"
	ActionLobbyStart = "lobby_start"
)

const (
	colorGreen = 0x00ff00
	colorBlue  = 0x3498db
	colorRed   = 0xff0000
)

// encodeControl builds a control identifier carrying the session's current
// phase and version, so the click is rejected as stale after any commit.
func encodeControl(session *models.Session, action, payload string) string {
	encoded, err := customid.Encode(&customid.ActionID{
		SessionID: session.ID,
		Action:    action,
		Payload:   payload,
		Phase:     session.Phase,
		Version:   session.Version,
	})
	if err != nil {
		return ""
	}
	return encoded
}

// renderSessionEmbed builds the channel message embed for a session
func renderSessionEmbed(session *models.Session) *discordgo.MessageEmbed {
	var title, description string
	color := colorGreen

	switch session.Status {
	case models.SessionStatusWaiting:
		title = fmt.Sprintf("%s — waiting for players", titleCase(session.GameType))
		description = "Click Join to take a seat. The host can start early once enough players are in."
		if !session.CountdownDeadline.IsZero() {
			description += fmt.Sprintf("\nStarts <t:%d:R> if enough players have joined.", session.CountdownDeadline.Unix())
		}
		color = colorBlue
	case models.SessionStatusActive:
		title = fmt.Sprintf("%s — in progress", titleCase(session.GameType))
		description = "The game has begun! Use the controls below."
	case models.SessionStatusCompleted:
		title = fmt.Sprintf("%s — finished", titleCase(session.GameType))
		if session.WinnerID != "" {
			if p := session.Player(session.WinnerID); p != nil {
				description = fmt.Sprintf("🏆 **%s** wins!", p.Name)
			} else {
				description = "The game has ended."
			}
		} else {
			description = "The game has ended."
		}
	case models.SessionStatusCancelled:
		title = fmt.Sprintf("%s — cancelled", titleCase(session.GameType))
		description = "This game was cancelled."
		color = colorRed
	}

	fields := []*discordgo.MessageEmbedField{
		{
			Name:   "Status",
			Value:  string(session.Status),
			Inline: true,
		},
		{
			Name:   "Players",
			Value:  fmt.Sprintf("%d / %d", len(session.Players), session.Settings.MaxPlayers),
			Inline: true,
		},
	}

	if roster := renderRoster(session); roster != "" {
		fields = append(fields, &discordgo.MessageEmbedField{
			Name:   "Seats",
			Value:  roster,
			Inline: false,
		})
	}

	return &discordgo.MessageEmbed{
		Title:       title,
		Description: description,
		Color:       color,
		Fields:      fields,
		Timestamp:   time.Now().Format(time.RFC3339),
	}
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// renderRoster lists the seated players, ordered by slot for slotted
// lobbies and by join time otherwise
func renderRoster(session *models.Session) string {
	players := make([]*models.Player, len(session.Players))
	copy(players, session.Players)

	if session.Settings.LobbyType == models.LobbyTypeSlotted {
		sort.Slice(players, func(i, j int) bool { return players[i].Slot < players[j].Slot })
	}

	var sb strings.Builder
	for _, p := range players {
		name := p.Name
		if p.ID == session.HostID {
			name += " (host)"
		}
		if p.ID == session.WinnerID {
			name += " 🏆"
		}

		if session.Settings.LobbyType == models.LobbyTypeSlotted {
			fmt.Fprintf(&sb, "`%d.` %s\n", p.Slot, name)
		} else {
			fmt.Fprintf(&sb, "%s\n", name)
		}
	}
	return sb.String()
}

// renderSessionComponents builds the message controls for a session's
// current state. Every control snapshots the phase and version at render
// time.
func renderSessionComponents(session *models.Session) []discordgo.MessageComponent {
	switch session.Status {
	case models.SessionStatusWaiting:
		return lobbyComponents(session)
	case models.SessionStatusActive:
		return gameComponents(session)
	default:
		return []discordgo.MessageComponent{}
	}
}

func lobbyComponents(session *models.Session) []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label:    "Join",
					Style:    discordgo.SuccessButton,
					CustomID: encodeControl(session, ActionLobbyJoin, ""),
				},
				discordgo.Button{
					Label:    "Leave",
					Style:    discordgo.SecondaryButton,
					CustomID: encodeControl(session, ActionLobbyLeave, ""),
				},
				discordgo.Button{
					Label:    "Start",
					Style:    discordgo.PrimaryButton,
					CustomID: encodeControl(session, ActionLobbyStart, ""),
				},
			},
		},
	}
}

func gameComponents(session *models.Session) []discordgo.MessageComponent {
	switch session.GameType {
	case highroll.GameType:
		return []discordgo.MessageComponent{
			discordgo.ActionsRow{
				Components: []discordgo.MessageComponent{
					discordgo.Button{
						Label:    "Roll",
						Style:    discordgo.PrimaryButton,
						CustomID: encodeControl(session, highroll.ActionRoll, ""),
						Emoji:    &discordgo.ComponentEmoji{Name: "🎲"},
					},
				},
			},
		}
	case vote.GameType:
		return []discordgo.MessageComponent{
			discordgo.ActionsRow{
				Components: []discordgo.MessageComponent{
					discordgo.Button{
						Label:    "Yes",
						Style:    discordgo.SuccessButton,
						CustomID: encodeControl(session, vote.ActionBallot, "yes"),
					},
					discordgo.Button{
						Label:    "No",
						Style:    discordgo.DangerButton,
						CustomID: encodeControl(session, vote.ActionBallot, "no"),
					},
				},
			},
		}
	default:
		return []discordgo.MessageComponent{}
	}
}
