package commands

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/ellavondegurechaff/slotbot/internal/domain/prompt"
	"github.com/ellavondegurechaff/slotbot/internal/domain/slots"
	"github.com/ellavondegurechaff/slotbot/slotbot"
	"github.com/ellavondegurechaff/slotbot/slotbot/config"
	"github.com/ellavondegurechaff/slotbot/slotbot/utils"
)

var Revoke = discord.SlashCommandCreate{
	Name:        "revoke",
	Description: "🗑️ Revoke a slot and delete its channel (admin)",
	Options: []discord.ApplicationCommandOption{
		slotOption,
		discord.ApplicationCommandOptionString{
			Name:        "reason",
			Description: "Why the slot is revoked; asked for if left out",
			Required:    false,
		},
	},
}

var reasonQuestion = prompt.Question{
	Name:  "reason",
	Text:  "📝 Why is this slot being revoked?",
	Parse: prompt.ParseText,
}

func RevokeHandler(b *slotbot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		actor := actorFor(b, e)
		if !actor.Admin {
			return utils.EH.CreatePermissionError(e, "revoke slots")
		}

		slot, err := slotFromEvent(b, e)
		if err != nil {
			return utils.EH.CreateError(e, err)
		}

		reason, _ := e.SlashCommandInteractionData().OptString("reason")
		reason = strings.TrimSpace(reason)
		if reason != "" {
			if err := e.DeferCreateMessage(true); err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(context.Background(), config.CommandExecutionTimeout)
			defer cancel()
			if err := b.Lifecycle.RevokeSlot(ctx, slot.ChannelID, reason, actor); err != nil {
				return utils.EH.UpdateWithError(e, err)
			}
			if err := utils.EH.UpdateWithSuccess(e, revokedMessage(slot, reason)); err != nil {
				// The response channel may have been the slot itself.
				slog.Debug("Revoke confirmation not delivered", slog.Any("error", err))
			}
			return nil
		}

		if err := utils.EH.CreateEphemeralInfo(e, fmt.Sprintf("Revoking **%s**. Reply with a reason within %s.",
			slot.Name, b.Prompts.Timeout())); err != nil {
			return err
		}

		channelID := e.ChannelID()
		ctx, cancel := context.WithTimeout(context.Background(), config.CommandExecutionTimeout)
		defer cancel()
		return b.Prompts.Start(ctx, prompt.Key{UserID: actor.ID, ChannelID: channelID}, prompt.Session{
			Questions: []prompt.Question{reasonQuestion},
			OnComplete: func(ctx context.Context, answers prompt.Answers) {
				reason, _ := answers["reason"].(string)
				text := "✅ " + revokedMessage(slot, reason)
				if err := b.Lifecycle.RevokeSlot(ctx, slot.ChannelID, reason, actor); err != nil {
					text = utils.ErrorText(err)
				}
				if channelID == slot.ChannelID {
					return
				}
				if _, err := b.Provisioner.SendMessage(ctx, channelID, text); err != nil {
					slog.Warn("Failed to confirm revoke", slog.Any("error", err))
				}
			},
		})
	}
}

func revokedMessage(slot slots.Slot, reason string) string {
	return fmt.Sprintf("Slot **%s** (<@%s>) revoked. Reason: %s", slot.Name, slot.OwnerID, reason)
}
