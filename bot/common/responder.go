package common

import (
	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// Responder is the part of *discordgo.Session used to answer interactions
type Responder interface {
	InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error
	FollowupMessageCreate(interaction *discordgo.Interaction, wait bool, data *discordgo.WebhookParams, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// DeferResponse acknowledges an interaction so the answer can be sent as a follow-up
func DeferResponse(s Responder, i *discordgo.InteractionCreate) error {
	return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	})
}

// FollowUp sends the single follow-up message of a deferred interaction
func FollowUp(s Responder, i *discordgo.InteractionCreate, content string) {
	_, err := s.FollowupMessageCreate(i.Interaction, false, &discordgo.WebhookParams{
		Content:         Truncate(content, MaxMessageLength),
		AllowedMentions: &discordgo.MessageAllowedMentions{},
	})
	if err != nil {
		log.Errorf("Error sending follow-up message: %v", err)
	}
}

// FollowUpWithEmbed sends an embed as the follow-up message
func FollowUpWithEmbed(s Responder, i *discordgo.InteractionCreate, embed *discordgo.MessageEmbed) {
	_, err := s.FollowupMessageCreate(i.Interaction, false, &discordgo.WebhookParams{
		Embeds:          []*discordgo.MessageEmbed{ClampEmbed(embed)},
		AllowedMentions: &discordgo.MessageAllowedMentions{},
	})
	if err != nil {
		log.Errorf("Error sending follow-up embed: %v", err)
	}
}
