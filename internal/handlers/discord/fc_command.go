package discord

import (
	"context"
	"errors"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/badwolfdev/queuebot/internal/repositories/friendcode"
)

// FCCommand handles the /fc command group
type FCCommand struct {
	BaseCommand
	friendCodes friendcode.Repository
}

// NewFCCommand creates a new fc command handler
func NewFCCommand(repo friendcode.Repository) *FCCommand {
	return &FCCommand{
		BaseCommand: BaseCommand{
			Name:        "fc",
			Description: "Show, set, or remove your FC",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "show",
					Description: "Send your FC",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "set",
					Description: "Set your FC",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "fc",
							Description: "Your FC",
							Required:    true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "remove",
					Description: "Remove your FC",
				},
			},
		},
		friendCodes: repo,
	}
}

// Handle processes a Discord interaction for the fc command
func (c *FCCommand) Handle(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	options := i.ApplicationCommandData().Options
	if len(options) == 0 {
		return RespondWithEphemeralMessage(s, i, "Unknown subcommand.")
	}
	sub := options[0]
	ctx := context.Background()
	userID := interactionUserID(i)

	switch sub.Name {
	case "show":
		fc, err := c.friendCodes.Get(ctx, userID)
		if err != nil {
			if errors.Is(err, friendcode.ErrNotFound) {
				return RespondWithEphemeralMessage(s, i, "Use `/fc set` to set your FC.")
			}
			return RespondWithEphemeralMessage(s, i, fmt.Sprintf("Error: %v", err))
		}
		return RespondWithMessage(s, i, fc)

	case "set":
		fc := optionString(sub.Options, "fc")
		if err := c.friendCodes.Set(ctx, userID, fc); err != nil {
			if errors.Is(err, friendcode.ErrInvalidFormat) {
				return RespondWithEphemeralMessage(s, i,
					"Your FC must be in the following format (each x represents a digit): `xxxx-xxxx-xxxx`")
			}
			return RespondWithEphemeralMessage(s, i, fmt.Sprintf("Error: %v", err))
		}
		return RespondWithEphemeralMessage(s, i, fmt.Sprintf("I have set your FC to %s", fc))

	case "remove":
		if err := c.friendCodes.Remove(ctx, userID); err != nil {
			return RespondWithEphemeralMessage(s, i, fmt.Sprintf("Error: %v", err))
		}
		return RespondWithEphemeralMessage(s, i, "I have deleted your FC")

	default:
		return RespondWithEphemeralMessage(s, i, fmt.Sprintf("Unknown subcommand: %s", sub.Name))
	}
}
