package discord

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/bwmarrin/discordgo"
)

// Gateway adapts a discordgo session to the orchestrator's chat boundary
type Gateway struct {
	session *discordgo.Session
}

// GatewayConfig holds the configuration for the gateway
type GatewayConfig struct {
	// Session is the shared Discord session
	Session *discordgo.Session
}

// NewGateway creates a gateway over an existing Discord session
func NewGateway(cfg *GatewayConfig) (*Gateway, error) {
	if cfg == nil || cfg.Session == nil {
		return nil, errors.New("session cannot be nil")
	}
	return &Gateway{session: cfg.Session}, nil
}

// SendMessage posts a message and returns its ID
func (g *Gateway) SendMessage(ctx context.Context, channelID, text string) (string, error) {
	msg, err := g.session.ChannelMessageSend(channelID, text)
	if err != nil {
		return "", fmt.Errorf("failed to send message to channel %s: %w", channelID, err)
	}
	return msg.ID, nil
}

// EditMessage replaces the content of a previously sent message
func (g *Gateway) EditMessage(ctx context.Context, channelID, messageID, text string) error {
	if _, err := g.session.ChannelMessageEdit(channelID, messageID, text); err != nil {
		return fmt.Errorf("failed to edit message %s in channel %s: %w", messageID, channelID, err)
	}
	return nil
}

// GrantChannelVisibility sets or clears per-player view overwrites on a room
// channel. Revoking deletes the overwrite so the channel falls back to the
// category's permissions.
func (g *Gateway) GrantChannelVisibility(ctx context.Context, channelID string, playerIDs []int64, visible bool) error {
	for _, id := range playerIDs {
		userID := strconv.FormatInt(id, 10)
		if visible {
			err := g.session.ChannelPermissionSet(channelID, userID,
				discordgo.PermissionOverwriteTypeMember, discordgo.PermissionViewChannel, 0)
			if err != nil {
				return fmt.Errorf("failed to grant channel %s access for user %s: %w", channelID, userID, err)
			}
			continue
		}
		if err := g.session.ChannelPermissionDelete(channelID, userID); err != nil {
			return fmt.Errorf("failed to revoke channel %s access for user %s: %w", channelID, userID, err)
		}
	}
	return nil
}

// FindFreeChannel returns the first text channel under the category that no
// active room is bound to, or "" when every channel is taken.
func (g *Gateway) FindFreeChannel(ctx context.Context, categoryID string, busy []string) (string, error) {
	category, err := g.session.Channel(categoryID)
	if err != nil {
		return "", fmt.Errorf("failed to look up category %s: %w", categoryID, err)
	}

	channels, err := g.session.GuildChannels(category.GuildID)
	if err != nil {
		return "", fmt.Errorf("failed to list channels for guild %s: %w", category.GuildID, err)
	}

	busySet := make(map[string]bool, len(busy))
	for _, id := range busy {
		busySet[id] = true
	}

	for _, ch := range channels {
		if ch.ParentID != categoryID || ch.Type != discordgo.ChannelTypeGuildText {
			continue
		}
		if busySet[ch.ID] {
			continue
		}
		return ch.ID, nil
	}
	return "", nil
}
