package services

import (
	"fmt"

	"contestbot/domain/entities"
)

const (
	// botBaseRights is what the bot needs to post in a contest channel
	botBaseRights = entities.PermissionViewChannel | entities.PermissionSendMessages | entities.PermissionReadMessageHistory

	// botFullRights additionally lets the bot manage the channel and its threads
	botFullRights = botBaseRights | entities.PermissionManageChannels | entities.PermissionManageThreads

	// hiddenFromEveryone is denied to @everyone on every contest channel by default
	hiddenFromEveryone = entities.PermissionViewChannel | entities.PermissionSendMessages
)

// everyoneRoleID returns the id of the @everyone role, which equals the guild id
func everyoneRoleID(guildID int64) int64 {
	return guildID
}

// defaultOverwrites is the baseline for the contest category and every new channel
func defaultOverwrites(guildID, botID int64) entities.OverwriteSet {
	return entities.OverwriteSet{
		entities.MemberOverwrite(botID, botBaseRights, 0),
		entities.RoleOverwrite(everyoneRoleID(guildID), 0, hiddenFromEveryone),
	}
}

// botFullOverwrite grants the bot full management of a category or channel
func botFullOverwrite(botID int64) entities.Overwrite {
	return entities.MemberOverwrite(botID, botFullRights, 0)
}

// viewOnlyOverwrite lets @everyone read but not post
func viewOnlyOverwrite(guildID int64) entities.Overwrite {
	return entities.RoleOverwrite(
		everyoneRoleID(guildID),
		entities.PermissionViewChannel|entities.PermissionReadMessageHistory,
		entities.PermissionSendMessages,
	)
}

// contestRoleOverwrites restricts an announcement channel to the contest role
func contestRoleOverwrites(guildID, botID, roleID int64) entities.OverwriteSet {
	return entities.OverwriteSet{
		botFullOverwrite(botID),
		entities.RoleOverwrite(
			roleID,
			entities.PermissionViewChannel|entities.PermissionReadMessageHistory,
			entities.PermissionSendMessages,
		),
		entities.RoleOverwrite(
			everyoneRoleID(guildID),
			0,
			entities.PermissionViewChannel|entities.PermissionReadMessageHistory|entities.PermissionSendMessages,
		),
	}
}

// canManageRole reports whether a role sits strictly below the bot's top role.
// Discord rejects overwrites for roles at or above it.
func canManageRole(role *entities.GuildRole, botTopPosition int) bool {
	return role != nil && role.Position < botTopPosition
}

// composeChannelOverwrites builds the overwrites of a new contest channel:
// defaults, then extras the bot is allowed to set, then the bot's full rights.
// @everyone sits at the bottom of the hierarchy and is always settable.
func composeChannelOverwrites(
	guildID, botID int64,
	extras entities.OverwriteSet,
	roles []*entities.GuildRole,
	botTopPosition int,
) (entities.OverwriteSet, []string) {
	overwrites := defaultOverwrites(guildID, botID)
	var warnings []string

	for _, extra := range extras {
		if extra.TargetType == entities.OverwriteTargetRole && extra.TargetID != everyoneRoleID(guildID) {
			role := entities.FindRoleByID(roles, extra.TargetID)
			if !canManageRole(role, botTopPosition) {
				name := fmt.Sprintf("%d", extra.TargetID)
				if role != nil {
					name = role.Name
				}
				warnings = append(warnings, fmt.Sprintf("skipped overwrite for role %s due to role hierarchy (bot role too low)", name))
				continue
			}
		}
		overwrites = overwrites.Set(extra)
	}

	return overwrites.Set(botFullOverwrite(botID)), warnings
}
