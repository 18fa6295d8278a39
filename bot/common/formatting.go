package common

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
)

// ChannelMention formats a channel id as <#id>
func ChannelMention(id int64) string {
	return fmt.Sprintf("<#%d>", id)
}

// RoleMention formats a role id as <@&id>
func RoleMention(id int64) string {
	return fmt.Sprintf("<@&%d>", id)
}

// FormatOptionalChannel renders a nullable channel reference
func FormatOptionalChannel(id *int64) string {
	if id == nil {
		return NotSet
	}
	return ChannelMention(*id)
}

// FormatOptionalRole renders a nullable role reference
func FormatOptionalRole(id *int64) string {
	if id == nil {
		return NotSet
	}
	return RoleMention(*id)
}

// FormatError renders a failure the way every handler reports it
func FormatError(err error) string {
	return fmt.Sprintf("Error: %v", err)
}

// Capitalize upper-cases the first letter of s
func Capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// FormatNameList joins names as "#a, #b", or "none" when empty
func FormatNameList(names []string, prefix string) string {
	if len(names) == 0 {
		return "none"
	}
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = prefix + n
	}
	return strings.Join(out, ", ")
}

// Truncate shortens s to at most limit runes, ending with an ellipsis when cut
func Truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	if limit <= 1 {
		return string(runes[:limit])
	}
	return string(runes[:limit-1]) + "…"
}

// ClampEmbed truncates the description and field values of embed to Discord's limits
func ClampEmbed(embed *discordgo.MessageEmbed) *discordgo.MessageEmbed {
	if embed == nil {
		return nil
	}
	embed.Description = Truncate(embed.Description, MaxEmbedDescriptionLength)
	for _, field := range embed.Fields {
		field.Value = Truncate(field.Value, MaxEmbedFieldLength)
	}
	return embed
}
