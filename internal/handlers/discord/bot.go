package discord

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/badwolfdev/queuebot/internal/models"
	"github.com/badwolfdev/queuebot/internal/repositories/friendcode"
	"github.com/badwolfdev/queuebot/internal/services/matchmaker"
)

// Bot represents the Discord bot instance
type Bot struct {
	session     *discordgo.Session
	commands    map[string]CommandHandler
	commandIDs  map[string]string // Maps command name to command ID
	matchmaker  matchmaker.Service
	friendCodes friendcode.Repository
	config      *Config
}

// Config holds the configuration for the bot
type Config struct {
	// Session is the shared Discord session
	Session *discordgo.Session

	// Application ID for the bot
	ApplicationID string

	// Optional guild ID for development (server-specific commands)
	GuildID string

	// Matchmaker service
	Matchmaker matchmaker.Service

	// Friend code repository
	FriendCodes friendcode.Repository
}

// New creates a new Discord bot
func New(cfg *Config) (*Bot, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}

	if cfg.Session == nil {
		return nil, errors.New("session cannot be nil")
	}

	if cfg.Matchmaker == nil {
		return nil, errors.New("matchmaker service cannot be nil")
	}

	if cfg.FriendCodes == nil {
		return nil, errors.New("friend code repository cannot be nil")
	}

	bot := &Bot{
		session:     cfg.Session,
		commands:    make(map[string]CommandHandler),
		commandIDs:  make(map[string]string),
		matchmaker:  cfg.Matchmaker,
		friendCodes: cfg.FriendCodes,
		config:      cfg,
	}

	// Register the interaction and message handlers
	cfg.Session.AddHandler(bot.handleInteraction)
	cfg.Session.AddHandler(bot.handleMessage)

	return bot, nil
}

// Start initializes the Discord connection and registers commands
func (b *Bot) Start() error {
	// Open the websocket connection to Discord
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("failed to open Discord connection: %w", err)
	}

	handlers := []CommandHandler{
		NewCanCommand(b.matchmaker),
		NewDropCommand(b.matchmaker),
		NewFriendCommand(b.matchmaker),
		NewRemoveCommand(b.matchmaker),
		NewListCommand(b.matchmaker),
		NewExtendCommand(b.matchmaker),
		NewVoteCommand(b.matchmaker),
		NewFCCommand(b.friendCodes),
		NewQueueChannelsCommand(b.matchmaker),
		NewCategoryCommand(b.matchmaker),
		NewSaveCommand(b.matchmaker),
		NewDebugQueueCommand(b.matchmaker),
		NewAddPlayersCommand(b.matchmaker),
	}
	for _, h := range handlers {
		if err := b.RegisterCommand(h); err != nil {
			return fmt.Errorf("failed to register %s command: %w", h.GetName(), err)
		}
	}

	log.Println("Bot is now running. Press CTRL-C to exit.")
	return nil
}

// Stop gracefully shuts down the Discord connection
func (b *Bot) Stop() error {
	// Remove all commands
	appID := b.config.ApplicationID
	if appID == "" {
		appID = b.session.State.User.ID
	}

	for cmdName, cmdID := range b.commandIDs {
		if err := b.session.ApplicationCommandDelete(appID, b.config.GuildID, cmdID); err != nil {
			log.Printf("Failed to delete command %s (ID: %s): %v", cmdName, cmdID, err)
		}
	}

	return b.session.Close()
}

// RegisterCommand registers a command with Discord
func (b *Bot) RegisterCommand(cmd CommandHandler) error {
	appID := b.config.ApplicationID
	if appID == "" {
		// Fall back to session user ID if application ID is not provided
		appID = b.session.State.User.ID
	}

	// If guild ID is provided, register command for that specific guild.
	// Otherwise, register it globally.
	guildID := b.config.GuildID
	if guildID != "" {
		log.Printf("Registering command %s for guild %s", cmd.GetName(), guildID)
	} else {
		log.Printf("Registering command %s globally", cmd.GetName())
	}

	createdCmd, err := b.session.ApplicationCommandCreate(appID, guildID, cmd.GetCommand())
	if err != nil {
		return fmt.Errorf("failed to create command %s: %w", cmd.GetName(), err)
	}

	b.commands[cmd.GetName()] = cmd
	b.commandIDs[cmd.GetName()] = createdCmd.ID

	return nil
}

// handleInteraction handles Discord interactions
func (b *Bot) handleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		if h, ok := b.commands[i.ApplicationCommandData().Name]; ok {
			if err := h.Handle(s, i); err != nil {
				log.Printf("Error handling command %s: %v", i.ApplicationCommandData().Name, err)
			}
		}
	case discordgo.InteractionApplicationCommandAutocomplete:
		h, ok := b.commands[i.ApplicationCommandData().Name]
		if !ok {
			return
		}
		if ac, ok := h.(Autocompleter); ok {
			if err := ac.Autocomplete(s, i); err != nil {
				log.Printf("Error handling autocomplete for %s: %v", i.ApplicationCommandData().Name, err)
			}
		}
	}
}

// handleMessage tracks queued-player activity from ordinary chat messages
func (b *Bot) handleMessage(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot {
		return
	}

	name := m.Author.Username
	if m.Member != nil && m.Member.Nick != "" {
		name = m.Member.Nick
	}

	_, err := b.matchmaker.UpdateActivity(context.Background(), &matchmaker.UpdateActivityInput{
		PlayerName: name,
		ChannelID:  m.ChannelID,
	})
	if err != nil {
		log.Printf("Error updating player activity: %v", err)
	}
}

// displayName returns the guild nickname when set, the username otherwise
func displayName(i *discordgo.InteractionCreate) string {
	if i.Member != nil {
		if i.Member.Nick != "" {
			return i.Member.Nick
		}
		if i.Member.User != nil {
			return i.Member.User.Username
		}
	}
	if i.User != nil {
		return i.User.Username
	}
	return ""
}

// interactionUserID returns the numeric Discord ID of the invoking user
func interactionUserID(i *discordgo.InteractionCreate) int64 {
	var raw string
	if i.Member != nil && i.Member.User != nil {
		raw = i.Member.User.ID
	} else if i.User != nil {
		raw = i.User.ID
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0
	}
	return id
}

func channelMention(channelID string) string {
	return "<#" + channelID + ">"
}

// ladderLabel renders a ladder the way chat messages spell it
func ladderLabel(ladder models.Ladder) string {
	return strings.ToUpper(string(ladder))
}
