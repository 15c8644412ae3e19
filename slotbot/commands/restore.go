package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/ellavondegurechaff/slotbot/slotbot"
	"github.com/ellavondegurechaff/slotbot/slotbot/config"
	"github.com/ellavondegurechaff/slotbot/slotbot/utils"
)

var Restore = discord.SlashCommandCreate{
	Name:        "restore",
	Description: "🔑 Restore your slot from its recovery key",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionString{
			Name:        "key",
			Description: "The recovery key you were sent when the slot was created",
			Required:    true,
		},
	},
}

func RestoreHandler(b *slotbot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		// Keys are pasted from DMs, often wrapped in backticks.
		key := strings.Trim(strings.TrimSpace(e.SlashCommandInteractionData().String("key")), "`")

		if err := e.DeferCreateMessage(true); err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(context.Background(), config.CommandExecutionTimeout)
		defer cancel()

		slot, err := b.Lifecycle.RestoreSlot(ctx, key, e.User().ID)
		if err != nil {
			return utils.EH.UpdateWithError(e, err)
		}
		return utils.EH.UpdateWithSuccess(e, fmt.Sprintf("Slot <#%s> restored, expires <t:%d:R>.",
			slot.ChannelID, slot.ExpiresAt.Unix()))
	}
}
