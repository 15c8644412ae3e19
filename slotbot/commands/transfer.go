package commands

import (
	"context"
	"fmt"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/ellavondegurechaff/slotbot/slotbot"
	"github.com/ellavondegurechaff/slotbot/slotbot/config"
	"github.com/ellavondegurechaff/slotbot/slotbot/utils"
)

var Transfer = discord.SlashCommandCreate{
	Name:        "transfer",
	Description: "🎁 Hand a slot over to another user",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionUser{
			Name:        "user",
			Description: "The new owner",
			Required:    true,
		},
		slotOption,
	},
}

func TransferHandler(b *slotbot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		slot, err := slotFromEvent(b, e)
		if err != nil {
			return utils.EH.CreateError(e, err)
		}
		newOwner := e.SlashCommandInteractionData().User("user")
		if newOwner.Bot {
			return utils.EH.CreateUserError(e, "Slots cannot be given to bots.")
		}

		if err := e.DeferCreateMessage(true); err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(context.Background(), config.CommandExecutionTimeout)
		defer cancel()

		if err := b.Lifecycle.TransferSlot(ctx, slot.ChannelID, actorFor(b, e), newOwner.ID); err != nil {
			return utils.EH.UpdateWithError(e, err)
		}
		return utils.EH.UpdateWithSuccess(e, fmt.Sprintf("Slot **%s** now belongs to <@%s>.", slot.Name, newOwner.ID))
	}
}
