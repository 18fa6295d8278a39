package contest

import (
	"strconv"

	"contestbot/domain/entities"

	"github.com/bwmarrin/discordgo"
)

// channelOptionID returns the channel option, falling back to the invoking channel
func channelOptionID(i *discordgo.InteractionCreate) (int64, bool) {
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Type == discordgo.ApplicationCommandOptionChannel {
			return parseSnowflake(opt.ChannelValue(nil).ID)
		}
	}
	return parseSnowflake(i.ChannelID)
}

// roleOption returns the role option, nil when it was omitted
func roleOption(i *discordgo.InteractionCreate) *entities.GuildRole {
	data := i.ApplicationCommandData()
	for _, opt := range data.Options {
		if opt.Type != discordgo.ApplicationCommandOptionRole {
			continue
		}

		roleID := opt.RoleValue(nil, "").ID
		id, ok := parseSnowflake(roleID)
		if !ok {
			return nil
		}

		role := &entities.GuildRole{ID: id}
		if data.Resolved != nil {
			if resolved, ok := data.Resolved.Roles[roleID]; ok && resolved != nil {
				role.Name = resolved.Name
				role.Position = resolved.Position
			}
		}
		return role
	}
	return nil
}

func parseSnowflake(s string) (int64, bool) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}
