package discord

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/badwolfdev/queuebot/internal/common/queuekey"
	"github.com/badwolfdev/queuebot/internal/models"
	"github.com/badwolfdev/queuebot/internal/queue"
	"github.com/badwolfdev/queuebot/internal/room"
	"github.com/badwolfdev/queuebot/internal/services/matchmaker"
)

// CanCommand handles the /can command
type CanCommand struct {
	BaseCommand
	matchmaker matchmaker.Service
}

// NewCanCommand creates a new can command handler
func NewCanCommand(m matchmaker.Service) *CanCommand {
	return &CanCommand{
		BaseCommand: BaseCommand{
			Name:        "can",
			Description: "Join the queue",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "host",
					Description: "Can you host?",
					Choices: []*discordgo.ApplicationCommandOptionChoice{
						{Name: "No", Value: "No"},
						{Name: "Yes", Value: "Yes"},
					},
				},
			},
		},
		matchmaker: m,
	}
}

// Handle processes a Discord interaction for the can command
func (c *CanCommand) Handle(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	ctx := context.Background()

	resolved, err := c.matchmaker.ResolveQueueChannel(ctx, &matchmaker.ResolveQueueChannelInput{
		ChannelID: i.ChannelID,
	})
	if err != nil {
		return RespondWithEphemeralMessage(s, i, fmt.Sprintf("Error: %v", err))
	}
	if !resolved.Found {
		return RespondWithEphemeralMessage(s, i, "Queueing is not allowed in this channel.")
	}

	name := displayName(i)
	canHost := optionString(i.ApplicationCommandData().Options, "host") == "Yes"

	out, err := c.matchmaker.JoinQueue(ctx, &matchmaker.JoinQueueInput{
		Ladder:     resolved.Ladder,
		PlayerName: name,
		DiscordID:  interactionUserID(i),
		CanHost:    canHost,
		ChannelID:  i.ChannelID,
	})
	if err != nil {
		if errors.Is(err, matchmaker.ErrNoRating) {
			return RespondWithMessage(s, i, fmt.Sprintf(
				"No %s rating found for %s. Not allowed to queue.", ladderLabel(resolved.Ladder), name))
		}
		return RespondWithEphemeralMessage(s, i, fmt.Sprintf("Failed to join the queue: %v", err))
	}

	if out.AlreadyQueued {
		if out.HostChanged {
			hostState := "no longer"
			if out.Player.CanHost {
				hostState = "now"
			}
			return RespondWithMessage(s, i, fmt.Sprintf("%s is %s a host.", name, hostState))
		}
		return RespondWithMessage(s, i, fmt.Sprintf(
			"%s is already in the %s queue.", name, ladderLabel(resolved.Ladder)))
	}

	return RespondWithMessage(s, i, fmt.Sprintf(
		"%s has joined the %s queue.", name, ladderLabel(resolved.Ladder)))
}

// DropCommand handles the /drop command
type DropCommand struct {
	BaseCommand
	matchmaker matchmaker.Service
}

// NewDropCommand creates a new drop command handler
func NewDropCommand(m matchmaker.Service) *DropCommand {
	return &DropCommand{
		BaseCommand: BaseCommand{
			Name:        "drop",
			Description: "Leave the queue",
		},
		matchmaker: m,
	}
}

// Handle processes a Discord interaction for the drop command
func (c *DropCommand) Handle(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	ctx := context.Background()

	resolved, err := c.matchmaker.ResolveQueueChannel(ctx, &matchmaker.ResolveQueueChannelInput{
		ChannelID: i.ChannelID,
	})
	if err != nil {
		return RespondWithEphemeralMessage(s, i, fmt.Sprintf("Error: %v", err))
	}
	if !resolved.Found {
		return RespondWithEphemeralMessage(s, i, "Queueing is not allowed in this channel.")
	}

	name := displayName(i)
	_, err = c.matchmaker.LeaveQueue(ctx, &matchmaker.LeaveQueueInput{
		Ladder:     resolved.Ladder,
		PlayerName: name,
	})
	if err != nil {
		if errors.Is(err, matchmaker.ErrNotInQueue) {
			return RespondWithMessage(s, i, fmt.Sprintf(
				"%s is not in the %s queue.", name, ladderLabel(resolved.Ladder)))
		}
		return RespondWithEphemeralMessage(s, i, fmt.Sprintf("Error: %v", err))
	}

	return RespondWithMessage(s, i, fmt.Sprintf(
		"Removed %s from the %s queue due to: dropped", name, ladderLabel(resolved.Ladder)))
}

// FriendCommand handles the /friend command
type FriendCommand struct {
	BaseCommand
	matchmaker matchmaker.Service
}

// NewFriendCommand creates a new friend command handler
func NewFriendCommand(m matchmaker.Service) *FriendCommand {
	return &FriendCommand{
		BaseCommand: BaseCommand{
			Name:        "friend",
			Description: "Queue together with another waiting player",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:         discordgo.ApplicationCommandOptionString,
					Name:         "player",
					Description:  "The queued player to team up with",
					Required:     true,
					Autocomplete: true,
				},
			},
		},
		matchmaker: m,
	}
}

// Handle processes a Discord interaction for the friend command
func (c *FriendCommand) Handle(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	ctx := context.Background()

	resolved, err := c.matchmaker.ResolveQueueChannel(ctx, &matchmaker.ResolveQueueChannelInput{
		ChannelID: i.ChannelID,
	})
	if err != nil {
		return RespondWithEphemeralMessage(s, i, fmt.Sprintf("Error: %v", err))
	}
	if !resolved.Found {
		return RespondWithEphemeralMessage(s, i, "Queueing is not allowed in this channel.")
	}

	name := displayName(i)
	friendName := optionString(i.ApplicationCommandData().Options, "player")

	out, err := c.matchmaker.JoinQueueWithFriend(ctx, &matchmaker.JoinQueueWithFriendInput{
		Ladder:     resolved.Ladder,
		PlayerName: name,
		FriendName: friendName,
	})
	switch {
	case errors.Is(err, matchmaker.ErrNotInQueue):
		return RespondWithEphemeralMessage(s, i, fmt.Sprintf(
			"%s is not in the %s queue.", name, ladderLabel(resolved.Ladder)))
	case errors.Is(err, matchmaker.ErrFriendNotInQueue):
		return RespondWithEphemeralMessage(s, i, fmt.Sprintf(
			"%s is not in the %s queue.", friendName, ladderLabel(resolved.Ladder)))
	case errors.Is(err, queue.ErrTooManyPlayers):
		return RespondWithEphemeralMessage(s, i, "Your group is already full.")
	case errors.Is(err, queue.ErrGroupCombination):
		return RespondWithEphemeralMessage(s, i, fmt.Sprintf(
			"%s is already queueing with someone else.", friendName))
	case err != nil:
		return RespondWithEphemeralMessage(s, i, fmt.Sprintf("Failed to add friend: %v", err))
	}

	return RespondWithMessage(s, i, fmt.Sprintf(
		"%s and %s are now queueing together (group of %d).", name, friendName, out.GroupSize))
}

// Autocomplete offers the queued players matching the typed prefix
func (c *FriendCommand) Autocomplete(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	return respondWithQueuedPlayers(s, i, c.matchmaker)
}

// RemoveCommand handles the /remove command
type RemoveCommand struct {
	BaseCommand
	matchmaker matchmaker.Service
}

// NewRemoveCommand creates a new remove command handler
func NewRemoveCommand(m matchmaker.Service) *RemoveCommand {
	return &RemoveCommand{
		BaseCommand: BaseCommand{
			Name:        "remove",
			Description: "Remove a player from the queue",
			AdminOnly:   true,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:         discordgo.ApplicationCommandOptionString,
					Name:         "player",
					Description:  "Specify which player to remove from the queue",
					Required:     true,
					Autocomplete: true,
				},
			},
		},
		matchmaker: m,
	}
}

// Handle processes a Discord interaction for the remove command
func (c *RemoveCommand) Handle(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	player := optionString(i.ApplicationCommandData().Options, "player")
	return removeFromQueue(s, i, c.matchmaker, player, "Moderator removed")
}

// Autocomplete offers the queued players matching the typed prefix
func (c *RemoveCommand) Autocomplete(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	return respondWithQueuedPlayers(s, i, c.matchmaker)
}

// listCooldown rate-limits /list per channel
const listCooldown = 30 * time.Second

// ListCommand handles the /list command
type ListCommand struct {
	BaseCommand
	matchmaker matchmaker.Service

	mu       sync.Mutex
	lastUsed map[string]time.Time
}

// NewListCommand creates a new list command handler
func NewListCommand(m matchmaker.Service) *ListCommand {
	return &ListCommand{
		BaseCommand: BaseCommand{
			Name:        "list",
			Description: "List players in the queue",
		},
		matchmaker: m,
		lastUsed:   make(map[string]time.Time),
	}
}

// Handle processes a Discord interaction for the list command
func (c *ListCommand) Handle(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	ctx := context.Background()

	resolved, err := c.matchmaker.ResolveQueueChannel(ctx, &matchmaker.ResolveQueueChannelInput{
		ChannelID: i.ChannelID,
	})
	if err != nil {
		return RespondWithEphemeralMessage(s, i, fmt.Sprintf("Error: %v", err))
	}
	if !resolved.Found {
		return RespondWithEphemeralMessage(s, i, "Queueing is not allowed in this channel.")
	}

	if retry := c.cooldownRemaining(i.ChannelID); retry > 0 {
		seconds := int(retry.Seconds()) + 1
		plural := "s"
		if seconds == 1 {
			plural = ""
		}
		return RespondWithEphemeralMessage(s, i, fmt.Sprintf(
			"This command is on cooldown. Try again after %d second%s.", seconds, plural))
	}

	out, err := c.matchmaker.ListQueue(ctx, &matchmaker.ListQueueInput{Ladder: resolved.Ladder})
	if err != nil {
		return RespondWithEphemeralMessage(s, i, fmt.Sprintf("Error: %v", err))
	}

	if len(out.Entries) == 0 {
		return RespondWithMessage(s, i, fmt.Sprintf(
			"No players in the %s queue.", ladderLabel(resolved.Ladder)))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s queue:", ladderLabel(resolved.Ladder))
	for index, entry := range out.Entries {
		fmt.Fprintf(&b, "\n%d. %s (%d LR)", index+1, entry.Player.Name, entry.Player.LR)
		if entry.Player.CanHost {
			b.WriteString(" - host")
		}
		if entry.GroupNumber > 0 {
			fmt.Fprintf(&b, " (group %d)", entry.GroupNumber)
		}
	}
	return RespondWithMessage(s, i, b.String())
}

// cooldownRemaining returns how long the channel must wait, starting a new
// window when none is active.
func (c *ListCommand) cooldownRemaining(channelID string) time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	if last, ok := c.lastUsed[channelID]; ok {
		if remaining := listCooldown - now.Sub(last); remaining > 0 {
			return remaining
		}
	}
	c.lastUsed[channelID] = now
	return 0
}

// ExtendCommand handles the /extend command
type ExtendCommand struct {
	BaseCommand
	matchmaker matchmaker.Service
}

// NewExtendCommand creates a new extend command handler
func NewExtendCommand(m matchmaker.Service) *ExtendCommand {
	return &ExtendCommand{
		BaseCommand: BaseCommand{
			Name: "extend",
			Description: fmt.Sprintf("Extend channel access for players by %d minutes",
				int(room.ExtensionTime.Minutes())),
		},
		matchmaker: m,
	}
}

// Handle processes a Discord interaction for the extend command
func (c *ExtendCommand) Handle(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	ctx := context.Background()

	resolved, err := c.matchmaker.ResolveRoomChannel(ctx, &matchmaker.ResolveRoomChannelInput{
		ChannelID: i.ChannelID,
	})
	if err != nil {
		if errors.Is(err, matchmaker.ErrRoomNotFound) {
			return RespondWithEphemeralMessage(s, i, "This is not a room channel.")
		}
		return RespondWithEphemeralMessage(s, i, fmt.Sprintf("Error: %v", err))
	}

	out, err := c.matchmaker.ExtendRoom(ctx, &matchmaker.ExtendRoomInput{RoomID: resolved.RoomID})
	switch {
	case errors.Is(err, room.ErrNotExpiringSoon):
		return RespondWithEphemeralMessage(s, i, fmt.Sprintf(
			"Players still have access for %d minutes, so your request has been ignored.", out.MinutesLeft))
	case errors.Is(err, room.ErrMaxAccessExceeded):
		return RespondWithEphemeralMessage(s, i,
			"Cannot extend player access. The maximum time players can view this channel has been reached.")
	case err != nil:
		return RespondWithEphemeralMessage(s, i, fmt.Sprintf("Error: %v", err))
	}

	return RespondWithMessage(s, i, fmt.Sprintf(
		"Channel access for players has been extended by %d minutes.", int(room.ExtensionTime.Minutes())))
}

// VoteCommand handles the /vote command
type VoteCommand struct {
	BaseCommand
	matchmaker matchmaker.Service
}

// NewVoteCommand creates a new vote command handler
func NewVoteCommand(m matchmaker.Service) *VoteCommand {
	choices := make([]*discordgo.ApplicationCommandOptionChoice, 0, len(models.Formats()))
	for _, f := range models.Formats() {
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{
			Name:  string(f),
			Value: string(f),
		})
	}

	return &VoteCommand{
		BaseCommand: BaseCommand{
			Name:        "vote",
			Description: "Vote for the event's format",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "format",
					Description: "The format you want to play",
					Required:    true,
					Choices:     choices,
				},
			},
		},
		matchmaker: m,
	}
}

// Handle processes a Discord interaction for the vote command
func (c *VoteCommand) Handle(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	ctx := context.Background()

	resolved, err := c.matchmaker.ResolveRoomChannel(ctx, &matchmaker.ResolveRoomChannelInput{
		ChannelID: i.ChannelID,
	})
	if err != nil {
		if errors.Is(err, matchmaker.ErrRoomNotFound) {
			return RespondWithEphemeralMessage(s, i, "This is not a room channel.")
		}
		return RespondWithEphemeralMessage(s, i, fmt.Sprintf("Error: %v", err))
	}

	format, err := models.ParseFormat(optionString(i.ApplicationCommandData().Options, "format"))
	if err != nil {
		return RespondWithEphemeralMessage(s, i, fmt.Sprintf("Error: %v", err))
	}

	_, err = c.matchmaker.CastVote(ctx, &matchmaker.CastVoteInput{
		RoomID:   resolved.RoomID,
		VoterKey: queuekey.Normalize(displayName(i)),
		Option:   format,
	})
	if err != nil {
		if errors.Is(err, matchmaker.ErrVotingClosed) {
			return RespondWithEphemeralMessage(s, i, "Voting is closed.")
		}
		return RespondWithEphemeralMessage(s, i, fmt.Sprintf("Error: %v", err))
	}

	return RespondWithEphemeralMessage(s, i, fmt.Sprintf("Your vote for %s has been recorded.", format))
}

// removeFromQueue resolves the channel's ladder and removes the named player,
// reporting the reason the way the queue channels expect.
func removeFromQueue(s *discordgo.Session, i *discordgo.InteractionCreate, m matchmaker.Service, player, reason string) error {
	ctx := context.Background()

	resolved, err := m.ResolveQueueChannel(ctx, &matchmaker.ResolveQueueChannelInput{
		ChannelID: i.ChannelID,
	})
	if err != nil {
		return RespondWithEphemeralMessage(s, i, fmt.Sprintf("Error: %v", err))
	}
	if !resolved.Found {
		return RespondWithEphemeralMessage(s, i, "Queueing is not allowed in this channel.")
	}

	_, err = m.ForceRemove(ctx, &matchmaker.ForceRemoveInput{
		Ladder:     resolved.Ladder,
		PlayerName: player,
	})
	if err != nil {
		if errors.Is(err, matchmaker.ErrNotInQueue) {
			return RespondWithMessage(s, i, fmt.Sprintf(
				"%s is not in the %s queue.", player, ladderLabel(resolved.Ladder)))
		}
		return RespondWithEphemeralMessage(s, i, fmt.Sprintf("Error: %v", err))
	}

	return RespondWithMessage(s, i, fmt.Sprintf(
		"Removed %s from the %s queue due to: %s", player, ladderLabel(resolved.Ladder), reason))
}

// respondWithQueuedPlayers answers a player-name autocomplete with the
// channel's queued players matching the typed text.
func respondWithQueuedPlayers(s *discordgo.Session, i *discordgo.InteractionCreate, m matchmaker.Service) error {
	ctx := context.Background()

	resolved, err := m.ResolveQueueChannel(ctx, &matchmaker.ResolveQueueChannelInput{
		ChannelID: i.ChannelID,
	})
	if err != nil || !resolved.Found {
		return RespondWithChoices(s, i, nil)
	}

	out, err := m.ListQueue(ctx, &matchmaker.ListQueueInput{Ladder: resolved.Ladder})
	if err != nil {
		return RespondWithChoices(s, i, nil)
	}

	var current string
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Focused {
			current = opt.StringValue()
		}
	}
	current = strings.ToLower(current)

	var choices []*discordgo.ApplicationCommandOptionChoice
	for _, entry := range out.Entries {
		if current != "" && !strings.Contains(strings.ToLower(entry.Player.Name), current) {
			continue
		}
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{
			Name:  entry.Player.Name,
			Value: entry.Player.Name,
		})
		// Discord caps autocomplete responses at 25 choices
		if len(choices) == 25 {
			break
		}
	}
	return RespondWithChoices(s, i, choices)
}

// optionString returns the named string option, or ""
func optionString(options []*discordgo.ApplicationCommandInteractionDataOption, name string) string {
	for _, opt := range options {
		if opt.Name == name {
			return opt.StringValue()
		}
	}
	return ""
}
