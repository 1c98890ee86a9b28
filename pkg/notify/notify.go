// Package notify posts formatted reports into Discord channels and webhooks.
// Delivery is fire-and-forget: failures are logged and never retried.
package notify

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"
)

const avatarURL = "https://cdn.discordapp.com/avatars/861602324543307786/83f879567954aee29bc9fd534bc05b1f.webp"

type Service struct {
	session *discordgo.Session
}

func NewService(session *discordgo.Session) *Service {
	return &Service{session: session}
}

// SendChannel posts to a channel, optionally prefixed with a role ping.
func (s *Service) SendChannel(channelID, content string, embed *discordgo.MessageEmbed, pingRole string) {
	msg := &discordgo.MessageSend{Content: content}
	if pingRole != "" {
		msg.Content = fmt.Sprintf("<@&%s> %s", pingRole, content)
	}
	if embed != nil {
		msg.Embeds = []*discordgo.MessageEmbed{embed}
	}
	if _, err := s.session.ChannelMessageSendComplex(channelID, msg); err != nil {
		log.Warn().Err(err).Str("channel", channelID).Msg("failed to send channel message")
	}
}

// SendWebhook posts to a webhook URL under the given display name.
func (s *Service) SendWebhook(url, username, content string, embed *discordgo.MessageEmbed) {
	id, token, err := parseWebhookURL(url)
	if err != nil {
		log.Warn().Err(err).Msg("invalid webhook url")
		return
	}
	params := &discordgo.WebhookParams{
		Content:   content,
		Username:  username,
		AvatarURL: avatarURL,
	}
	if embed != nil {
		params.Embeds = []*discordgo.MessageEmbed{embed}
	}
	if _, err := s.session.WebhookExecute(id, token, false, params); err != nil {
		log.Warn().Err(err).Msg("failed to execute webhook")
	}
}

func parseWebhookURL(url string) (id, token string, err error) {
	const marker = "/webhooks/"
	idx := strings.Index(url, marker)
	if idx < 0 {
		return "", "", fmt.Errorf("not a webhook url: %q", url)
	}
	parts := strings.Split(strings.TrimSuffix(url[idx+len(marker):], "/"), "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("not a webhook url: %q", url)
	}
	return parts[0], parts[1], nil
}
