package common

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// BotError represents a structured error with user-facing and internal messages
type BotError struct {
	UserMessage string // Message shown to Discord user
	LogMessage  string // Internal message for logging
	Err         error  // Underlying error
}

// Error implements the error interface
func (e *BotError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.LogMessage, e.Err)
	}
	return e.LogMessage
}

// Unwrap returns the underlying error
func (e *BotError) Unwrap() error {
	return e.Err
}

// NewUserError creates an error for user-caused issues
func NewUserError(userMessage string, logMessage string) *BotError {
	return &BotError{
		UserMessage: userMessage,
		LogMessage:  logMessage,
	}
}

// NewSystemError creates an error for store or platform failures.
// The user sees "Error: <cause>".
func NewSystemError(err error, logMessage string) *BotError {
	return &BotError{
		UserMessage: FormatError(err),
		LogMessage:  logMessage,
		Err:         err,
	}
}

// FollowUpWithError logs a handler error and reports it as the follow-up message
func FollowUpWithError(s Responder, i *discordgo.InteractionCreate, err error) {
	fields := log.Fields{
		"guild_id": i.GuildID,
		"command":  commandName(i),
	}
	if i.Member != nil && i.Member.User != nil {
		fields["user_id"] = i.Member.User.ID
	}

	botErr, ok := err.(*BotError)
	if !ok {
		botErr = NewSystemError(err, "Unexpected error in bot command")
	}

	if botErr.Err == nil {
		log.WithFields(fields).Info(botErr.LogMessage)
	} else {
		log.WithFields(fields).WithError(botErr.Err).Error(botErr.LogMessage)
	}

	FollowUp(s, i, botErr.UserMessage)
}

func commandName(i *discordgo.InteractionCreate) string {
	if i.Type != discordgo.InteractionApplicationCommand {
		return ""
	}
	return i.ApplicationCommandData().Name
}
