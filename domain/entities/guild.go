package entities

// ChannelKind is the subset of Discord channel types the contest feature cares about
type ChannelKind string

const (
	ChannelKindUnknown  ChannelKind = ""
	ChannelKindText     ChannelKind = "text"
	ChannelKindForum    ChannelKind = "forum"
	ChannelKindCategory ChannelKind = "category"
	ChannelKindVoice    ChannelKind = "voice"
	ChannelKindOther    ChannelKind = "other"
)

// GuildChannel is a channel or category of a guild
type GuildChannel struct {
	ID         int64
	GuildID    int64
	Name       string
	Kind       ChannelKind
	ParentID   int64 // 0 when the channel has no category
	Overwrites OverwriteSet
}

// IsForum checks if the channel is a forum channel
func (c *GuildChannel) IsForum() bool {
	return c.Kind == ChannelKindForum
}

// IsText checks if the channel is a text channel
func (c *GuildChannel) IsText() bool {
	return c.Kind == ChannelKindText
}

// IsCategory checks if the channel is a category
func (c *GuildChannel) IsCategory() bool {
	return c.Kind == ChannelKindCategory
}

// GuildRole is a role of a guild
type GuildRole struct {
	ID       int64
	Name     string
	Position int
}

// FindChannelByName returns the first channel with the exact name, or nil
func FindChannelByName(channels []*GuildChannel, name string) *GuildChannel {
	for _, ch := range channels {
		if ch.Name == name {
			return ch
		}
	}
	return nil
}

// FindCategoryByName returns the first category with the exact name, or nil
func FindCategoryByName(channels []*GuildChannel, name string) *GuildChannel {
	for _, ch := range channels {
		if ch.IsCategory() && ch.Name == name {
			return ch
		}
	}
	return nil
}

// FindRoleByName returns the first role with the exact name, or nil
func FindRoleByName(roles []*GuildRole, name string) *GuildRole {
	for _, r := range roles {
		if r.Name == name {
			return r
		}
	}
	return nil
}

// TopRolePosition returns the highest position among the roles with the given ids, 0 when none match
func TopRolePosition(roles []*GuildRole, ids []int64) int {
	held := make(map[int64]bool, len(ids))
	for _, id := range ids {
		held[id] = true
	}

	top := 0
	for _, r := range roles {
		if held[r.ID] && r.Position > top {
			top = r.Position
		}
	}
	return top
}

// FindRoleByID returns the role with the given id, or nil
func FindRoleByID(roles []*GuildRole, id int64) *GuildRole {
	for _, r := range roles {
		if r.ID == id {
			return r
		}
	}
	return nil
}
