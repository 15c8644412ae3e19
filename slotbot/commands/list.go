package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/disgoorg/paginator"
	"github.com/ellavondegurechaff/slotbot/internal/domain/slots"
	"github.com/ellavondegurechaff/slotbot/slotbot"
	"github.com/ellavondegurechaff/slotbot/slotbot/config"
	"github.com/ellavondegurechaff/slotbot/slotbot/utils"
)

var List = discord.SlashCommandCreate{
	Name:        "slots",
	Description: "📋 List active slots, soonest expiry first",
}

func listPage(all []slots.Slot, page int, now time.Time) string {
	start := page * config.SlotsPerPage
	end := min(start+config.SlotsPerPage, len(all))

	var sb strings.Builder
	for i, s := range all[start:end] {
		fmt.Fprintf(&sb, "`%d.` <#%s> • <@%s> • %s left\n",
			start+i+1, s.ChannelID, s.OwnerID, slots.FormatRemaining(s.Remaining(now)))
	}
	return sb.String()
}

func ListHandler(b *slotbot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		all := b.Registry.All()
		if len(all) == 0 {
			return utils.EH.CreateEphemeralInfo(e, "There are no active slots.")
		}

		now := b.Registry.Now()
		totalPages := (len(all) + config.SlotsPerPage - 1) / config.SlotsPerPage

		return b.Paginator.Create(e.Respond, paginator.Pages{
			ID:      e.ID().String(),
			Creator: e.User().ID,
			PageFunc: func(page int, embed *discord.EmbedBuilder) {
				embed.
					SetTitle("📋 Active slots").
					SetDescription(listPage(all, page, now)).
					SetColor(config.EmbedDefaultColor).
					SetFooter(fmt.Sprintf("Page %d/%d • Total: %d", page+1, totalPages, len(all)), "")
			},
			Pages:      totalPages,
			ExpireMode: paginator.ExpireModeAfterLastUsage,
		}, false)
	}
}
