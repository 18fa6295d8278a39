package common

// Discord color constants
const (
	ColorPrimary = 0x5865F2 // Discord blurple
	ColorSuccess = 0x57F287 // Green
	ColorDanger  = 0xED4245 // Red
	ColorWarning = 0xFEE75C // Yellow
)

// NotSet is shown for unset configuration fields
const NotSet = "not set"

// Discord message limits
const (
	MaxMessageLength          = 2000
	MaxEmbedDescriptionLength = 4096
	MaxEmbedFieldLength       = 1024
)
