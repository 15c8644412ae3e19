package commands

import (
	"context"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/ellavondegurechaff/slotbot/slotbot"
	"github.com/ellavondegurechaff/slotbot/slotbot/config"
	"github.com/ellavondegurechaff/slotbot/slotbot/utils"
)

var Key = discord.SlashCommandCreate{
	Name:        "key",
	Description: "🔑 Send the slot's recovery key to its owner again",
	Options:     []discord.ApplicationCommandOption{slotOption},
}

func KeyHandler(b *slotbot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		slot, err := slotFromEvent(b, e)
		if err != nil {
			return utils.EH.CreateError(e, err)
		}

		ctx, cancel := context.WithTimeout(context.Background(), config.CommandExecutionTimeout)
		defer cancel()
		if _, err := b.Lifecycle.IssueKey(ctx, slot.ChannelID, actorFor(b, e)); err != nil {
			return utils.EH.CreateError(e, err)
		}
		return utils.EH.CreateEphemeralInfo(e, "🔑 The recovery key for **"+slot.Name+"** was sent to its owner by DM.")
	}
}
