package utils

import (
	"errors"
	"fmt"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/ellavondegurechaff/slotbot/internal/domain/credential"
	"github.com/ellavondegurechaff/slotbot/internal/domain/prompt"
	"github.com/ellavondegurechaff/slotbot/internal/domain/slots"
	"github.com/ellavondegurechaff/slotbot/slotbot/config"
)

// ResponseHandler provides standardized responses for slot commands
type ResponseHandler struct{}

var EH = &ResponseHandler{}

type ErrorType int

const (
	// UserError - bad input, validation failures
	UserError ErrorType = iota
	// SystemError - storage or platform failures
	SystemError
	NotFoundError
	PermissionError
	// BusinessLogicError - slot rules such as one slot per owner
	BusinessLogicError
)

func getErrorPrefix(errorType ErrorType) string {
	switch errorType {
	case UserError:
		return "⚠️"
	case SystemError:
		return "🔧"
	case NotFoundError:
		return "🔍"
	case PermissionError:
		return "🚫"
	case BusinessLogicError:
		return "⏰"
	default:
		return "❌"
	}
}

func getErrorColor(errorType ErrorType) int {
	switch errorType {
	case UserError, BusinessLogicError:
		return config.WarningColor
	case NotFoundError:
		return config.InfoColor
	default:
		return config.ErrorColor
	}
}

// ClassifyError maps slot errors to a category and the text shown to the user.
func ClassifyError(err error) (ErrorType, string) {
	switch {
	case errors.Is(err, slots.ErrNotFound):
		return NotFoundError, "That channel is not an active slot."
	case errors.Is(err, slots.ErrDuplicateOwner):
		return BusinessLogicError, "That user already owns an active slot."
	case errors.Is(err, slots.ErrUnauthorized):
		return PermissionError, "You are not allowed to do that for this slot."
	case errors.Is(err, credential.ErrMalformedToken):
		return UserError, "That recovery key is not valid."
	case errors.Is(err, slots.ErrExpired):
		return BusinessLogicError, "That slot has already expired and cannot be restored."
	case errors.Is(err, slots.ErrAlreadyExists):
		return BusinessLogicError, "A slot channel with that name already exists."
	case errors.Is(err, slots.ErrInvalidRequest):
		return UserError, err.Error()
	case errors.Is(err, prompt.ErrTimeout):
		return UserError, prompt.TimeoutText
	case errors.Is(err, slots.ErrProvisioning):
		return SystemError, "Discord rejected the channel change. Check the bot's permissions and try again."
	default:
		return SystemError, "Something went wrong. Please try again later."
	}
}

// ErrorEmbed renders err as a classified embed.
func ErrorEmbed(err error) discord.Embed {
	errorType, _ := ClassifyError(err)
	return discord.Embed{
		Description: ErrorText(err),
		Color:       getErrorColor(errorType),
	}
}

// ErrorText is the plain-text form of ErrorEmbed for replies outside an interaction.
func ErrorText(err error) string {
	errorType, message := ClassifyError(err)
	return getErrorPrefix(errorType) + " " + message
}

func SuccessEmbed(message string) discord.Embed {
	return discord.Embed{
		Description: "✅ " + message,
		Color:       config.SuccessColor,
	}
}

func InfoEmbed(message string) discord.Embed {
	return discord.Embed{
		Description: message,
		Color:       config.InfoColor,
	}
}

// CreateError responds with the classified error as an ephemeral embed.
func (h *ResponseHandler) CreateError(event *handler.CommandEvent, err error) error {
	return event.CreateMessage(discord.MessageCreate{
		Embeds: []discord.Embed{ErrorEmbed(err)},
		Flags:  discord.MessageFlagEphemeral,
	})
}

func (h *ResponseHandler) CreateUserError(event *handler.CommandEvent, message string) error {
	return event.CreateMessage(discord.MessageCreate{
		Embeds: []discord.Embed{{
			Description: getErrorPrefix(UserError) + " " + message,
			Color:       getErrorColor(UserError),
		}},
		Flags: discord.MessageFlagEphemeral,
	})
}

func (h *ResponseHandler) CreatePermissionError(event *handler.CommandEvent, action string) error {
	return event.CreateMessage(discord.MessageCreate{
		Embeds: []discord.Embed{{
			Description: fmt.Sprintf("%s You don't have permission to %s", getErrorPrefix(PermissionError), action),
			Color:       getErrorColor(PermissionError),
		}},
		Flags: discord.MessageFlagEphemeral,
	})
}

func (h *ResponseHandler) CreateSuccessEmbed(event *handler.CommandEvent, message string) error {
	return event.CreateMessage(discord.MessageCreate{
		Embeds: []discord.Embed{SuccessEmbed(message)},
	})
}

func (h *ResponseHandler) CreateEphemeralInfo(event *handler.CommandEvent, message string) error {
	return event.CreateMessage(discord.MessageCreate{
		Embeds: []discord.Embed{InfoEmbed(message)},
		Flags:  discord.MessageFlagEphemeral,
	})
}

// UpdateWithError fills a deferred response with the classified error.
func (h *ResponseHandler) UpdateWithError(event *handler.CommandEvent, err error) error {
	_, uerr := event.UpdateInteractionResponse(discord.MessageUpdate{
		Embeds: &[]discord.Embed{ErrorEmbed(err)},
	})
	return uerr
}

func (h *ResponseHandler) UpdateWithSuccess(event *handler.CommandEvent, message string) error {
	_, err := event.UpdateInteractionResponse(discord.MessageUpdate{
		Embeds: &[]discord.Embed{SuccessEmbed(message)},
	})
	return err
}
