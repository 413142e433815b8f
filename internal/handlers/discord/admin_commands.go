package discord

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/badwolfdev/queuebot/internal/models"
	"github.com/badwolfdev/queuebot/internal/services/matchmaker"
)

// ladderChoices is the rt_or_ct option shared by the admin commands
func ladderChoices() []*discordgo.ApplicationCommandOptionChoice {
	choices := make([]*discordgo.ApplicationCommandOptionChoice, 0, len(models.Ladders()))
	for _, ladder := range models.Ladders() {
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{
			Name:  ladderLabel(ladder),
			Value: string(ladder),
		})
	}
	return choices
}

// QueueChannelsCommand handles the /queueing-channels command group
type QueueChannelsCommand struct {
	BaseCommand
	matchmaker matchmaker.Service
}

// NewQueueChannelsCommand creates a new queueing-channels command handler
func NewQueueChannelsCommand(m matchmaker.Service) *QueueChannelsCommand {
	return &QueueChannelsCommand{
		BaseCommand: BaseCommand{
			Name:        "queueing-channels",
			Description: "Administrative commands to add, remove, or view channels that Queuebot monitors for queueing",
			AdminOnly:   true,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "add",
					Description: "Specify a channel that players can queue in",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:         discordgo.ApplicationCommandOptionChannel,
							Name:         "channel",
							Description:  "In what channel is queueing to be allowed?",
							Required:     true,
							ChannelTypes: []discordgo.ChannelType{discordgo.ChannelTypeGuildText},
						},
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "rt_or_ct",
							Description: "Will queueing here be for RTs or CTs?",
							Required:    true,
							Choices:     ladderChoices(),
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "remove",
					Description: "Specify a channel that players are not allowed to queue in anymore",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:         discordgo.ApplicationCommandOptionChannel,
							Name:         "channel",
							Description:  "In what channel is queueing no longer allowed?",
							Required:     true,
							ChannelTypes: []discordgo.ChannelType{discordgo.ChannelTypeGuildText},
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "view",
					Description: "Display all channels that players can queue in",
				},
			},
		},
		matchmaker: m,
	}
}

// Handle processes a Discord interaction for the queueing-channels command
func (c *QueueChannelsCommand) Handle(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	options := i.ApplicationCommandData().Options
	if len(options) == 0 {
		return RespondWithEphemeralMessage(s, i, "Unknown subcommand.")
	}
	sub := options[0]

	switch sub.Name {
	case "add":
		return c.handleAdd(s, i, sub.Options)
	case "remove":
		return c.handleRemove(s, i, sub.Options)
	case "view":
		return c.handleView(s, i)
	default:
		return RespondWithEphemeralMessage(s, i, fmt.Sprintf("Unknown subcommand: %s", sub.Name))
	}
}

func (c *QueueChannelsCommand) handleAdd(s *discordgo.Session, i *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) error {
	ctx := context.Background()
	channelID := optionChannelID(options, "channel")
	ladder, err := models.ParseLadder(optionString(options, "rt_or_ct"))
	if err != nil {
		return RespondWithEphemeralMessage(s, i, fmt.Sprintf("Error: %v", err))
	}

	_, err = c.matchmaker.AddQueueChannel(ctx, &matchmaker.AddQueueChannelInput{
		Ladder:    ladder,
		ChannelID: channelID,
	})
	if err != nil {
		if errors.Is(err, matchmaker.ErrChannelAlreadyMonitored) {
			resolved, resolveErr := c.matchmaker.ResolveQueueChannel(ctx, &matchmaker.ResolveQueueChannelInput{
				ChannelID: channelID,
			})
			if resolveErr == nil && resolved.Found {
				return RespondWithMessage(s, i, fmt.Sprintf(
					"%s is already being monitored for %ss", channelMention(channelID), ladderLabel(resolved.Ladder)))
			}
		}
		return RespondWithEphemeralMessage(s, i, fmt.Sprintf("Error: %v", err))
	}

	return RespondWithMessage(s, i, fmt.Sprintf(
		"Players who queue in %s will now be added to the %s queue.",
		channelMention(channelID), ladderLabel(ladder)))
}

func (c *QueueChannelsCommand) handleRemove(s *discordgo.Session, i *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) error {
	channelID := optionChannelID(options, "channel")

	out, err := c.matchmaker.RemoveQueueChannel(context.Background(), &matchmaker.RemoveQueueChannelInput{
		ChannelID: channelID,
	})
	if err != nil {
		if errors.Is(err, matchmaker.ErrChannelNotMonitored) {
			return RespondWithMessage(s, i, "I wasn't allowing players to queue in this channel in the first place.")
		}
		return RespondWithEphemeralMessage(s, i, fmt.Sprintf("Error: %v", err))
	}

	return RespondWithMessage(s, i, fmt.Sprintf(
		"I will not allow queueing in %s for %ss anymore", channelMention(channelID), ladderLabel(out.Ladder)))
}

func (c *QueueChannelsCommand) handleView(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	out, err := c.matchmaker.QueueChannels(context.Background())
	if err != nil {
		return RespondWithEphemeralMessage(s, i, fmt.Sprintf("Error: %v", err))
	}

	var lines []string
	for _, ladder := range models.Ladders() {
		mentions := make([]string, 0, len(out.Channels[ladder]))
		for _, channelID := range out.Channels[ladder] {
			mentions = append(mentions, channelMention(channelID))
		}
		lines = append(lines, fmt.Sprintf("Queueing for %ss is allowed in the following channels: %s",
			ladderLabel(ladder), strings.Join(mentions, ", ")))
	}
	return RespondWithMessage(s, i, strings.Join(lines, "\n"))
}

// CategoryCommand handles the /category command group
type CategoryCommand struct {
	BaseCommand
	matchmaker matchmaker.Service
}

// NewCategoryCommand creates a new category command handler
func NewCategoryCommand(m matchmaker.Service) *CategoryCommand {
	return &CategoryCommand{
		BaseCommand: BaseCommand{
			Name:        "category",
			Description: "Administrative commands to view or set the category that channels are made in for gathered lineups",
			AdminOnly:   true,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "set",
					Description: "Set a category that text channels will be created under",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:         discordgo.ApplicationCommandOptionChannel,
							Name:         "category",
							Description:  "Category that text channels will be created under for lineups that gather",
							Required:     true,
							ChannelTypes: []discordgo.ChannelType{discordgo.ChannelTypeGuildCategory},
						},
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "rt_or_ct",
							Description: "Will this category be for RTs or CTs?",
							Required:    true,
							Choices:     ladderChoices(),
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "view",
					Description: "Display the set categories that text channels will be created under when lineups gather",
				},
			},
		},
		matchmaker: m,
	}
}

// Handle processes a Discord interaction for the category command
func (c *CategoryCommand) Handle(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	options := i.ApplicationCommandData().Options
	if len(options) == 0 {
		return RespondWithEphemeralMessage(s, i, "Unknown subcommand.")
	}
	sub := options[0]

	switch sub.Name {
	case "set":
		return c.handleSet(s, i, sub.Options)
	case "view":
		return c.handleView(s, i)
	default:
		return RespondWithEphemeralMessage(s, i, fmt.Sprintf("Unknown subcommand: %s", sub.Name))
	}
}

func (c *CategoryCommand) handleSet(s *discordgo.Session, i *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) error {
	categoryID := optionChannelID(options, "category")
	ladder, err := models.ParseLadder(optionString(options, "rt_or_ct"))
	if err != nil {
		return RespondWithEphemeralMessage(s, i, fmt.Sprintf("Error: %v", err))
	}

	_, err = c.matchmaker.SetCategory(context.Background(), &matchmaker.SetCategoryInput{
		Ladder:     ladder,
		CategoryID: categoryID,
	})
	if err != nil {
		return RespondWithEphemeralMessage(s, i, fmt.Sprintf("Error: %v", err))
	}

	return RespondWithMessage(s, i, fmt.Sprintf(
		"Text channels will be created under the %s category for lineups that gather for %ss.",
		channelMention(categoryID), ladderLabel(ladder)))
}

func (c *CategoryCommand) handleView(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	out, err := c.matchmaker.Categories(context.Background())
	if err != nil {
		return RespondWithEphemeralMessage(s, i, fmt.Sprintf("Error: %v", err))
	}

	var lines []string
	for _, ladder := range models.Ladders() {
		mention := "Not set"
		if categoryID, ok := out.Categories[ladder]; ok {
			mention = channelMention(categoryID)
		}
		lines = append(lines, fmt.Sprintf(
			"Lineups gathered for %ss will have their rooms created under the following category: %s",
			ladderLabel(ladder), mention))
	}
	return RespondWithMessage(s, i, strings.Join(lines, "\n"))
}

// SaveCommand handles the /save command
type SaveCommand struct {
	BaseCommand
	matchmaker matchmaker.Service
}

// NewSaveCommand creates a new save command handler
func NewSaveCommand(m matchmaker.Service) *SaveCommand {
	return &SaveCommand{
		BaseCommand: BaseCommand{
			Name:        "save",
			Description: "Save data internally",
			AdminOnly:   true,
		},
		matchmaker: m,
	}
}

// Handle processes a Discord interaction for the save command
func (c *SaveCommand) Handle(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	if err := c.matchmaker.Save(context.Background()); err != nil {
		return RespondWithEphemeralMessage(s, i, fmt.Sprintf("Failed to save: %v", err))
	}
	return RespondWithMessage(s, i, "Saved.")
}

// DebugQueueCommand handles the /debug-queue command
type DebugQueueCommand struct {
	BaseCommand
	matchmaker matchmaker.Service
}

// NewDebugQueueCommand creates a new debug-queue command handler
func NewDebugQueueCommand(m matchmaker.Service) *DebugQueueCommand {
	return &DebugQueueCommand{
		BaseCommand: BaseCommand{
			Name:        "debug-queue",
			Description: "Outputs scores of all lineups",
			AdminOnly:   true,
		},
		matchmaker: m,
	}
}

// Handle processes a Discord interaction for the debug-queue command
func (c *DebugQueueCommand) Handle(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	out, err := c.matchmaker.DebugReport(context.Background())
	if err != nil {
		return RespondWithEphemeralMessage(s, i, fmt.Sprintf("Error: %v", err))
	}
	return RespondWithFile(s, i, "queue_data.txt", strings.Join(out.Reports, "\n"))
}

// AddPlayersCommand handles the /add testing command
type AddPlayersCommand struct {
	BaseCommand
	matchmaker matchmaker.Service
}

// NewAddPlayersCommand creates a new add command handler
func NewAddPlayersCommand(m matchmaker.Service) *AddPlayersCommand {
	return &AddPlayersCommand{
		BaseCommand: BaseCommand{
			Name:        "add",
			Description: "TESTING ONLY: Add players to the queue.",
			AdminOnly:   true,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "players",
					Description: "Specify which players to add to the queue. Separate player names with a comma.",
					Required:    true,
				},
			},
		},
		matchmaker: m,
	}
}

// Handle processes a Discord interaction for the add command
func (c *AddPlayersCommand) Handle(s *discordgo.Session, i *discordgo.InteractionCreate) error {
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

	var results []string
	for _, raw := range strings.Split(optionString(i.ApplicationCommandData().Options, "players"), ",") {
		name := strings.TrimSpace(raw)
		if name == "" {
			continue
		}
		results = append(results, c.addOne(ctx, resolved.Ladder, name, i))
	}
	return RespondWithFile(s, i, "results.txt", strings.Join(results, "\n"))
}

func (c *AddPlayersCommand) addOne(ctx context.Context, ladder models.Ladder, name string, i *discordgo.InteractionCreate) string {
	out, err := c.matchmaker.JoinQueue(ctx, &matchmaker.JoinQueueInput{
		Ladder:     ladder,
		PlayerName: name,
		DiscordID:  interactionUserID(i),
		ChannelID:  i.ChannelID,
	})
	switch {
	case errors.Is(err, matchmaker.ErrNoRating):
		return fmt.Sprintf("No %s rating found for %s. Not allowed to queue.", ladderLabel(ladder), name)
	case err != nil:
		return fmt.Sprintf("Failed to add %s: %v", name, err)
	case out.AlreadyQueued:
		return fmt.Sprintf("%s is already in the %s queue.", name, ladderLabel(ladder))
	default:
		return fmt.Sprintf("%s has joined the %s queue.", name, ladderLabel(ladder))
	}
}

// optionChannelID returns the named channel option's ID, or ""
func optionChannelID(options []*discordgo.ApplicationCommandInteractionDataOption, name string) string {
	for _, opt := range options {
		if opt.Name == name {
			if ch := opt.ChannelValue(nil); ch != nil {
				return ch.ID
			}
		}
	}
	return ""
}
