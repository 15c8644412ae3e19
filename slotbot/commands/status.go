package commands

import (
	"fmt"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/ellavondegurechaff/slotbot/internal/domain/slots"
	"github.com/ellavondegurechaff/slotbot/slotbot"
	"github.com/ellavondegurechaff/slotbot/slotbot/config"
	"github.com/ellavondegurechaff/slotbot/slotbot/utils"
)

var Status = discord.SlashCommandCreate{
	Name:        "status",
	Description: "📊 Show a slot's owner, expiry and today's @here usage",
	Options:     []discord.ApplicationCommandOption{slotOption},
}

// pingsToday is the slot's @here count for the current UTC day.
func pingsToday(slot slots.Slot, now time.Time) int {
	if slot.LastPingResetDay != slots.DayKey(now) {
		return 0
	}
	return slot.PingCount
}

func statusEmbed(slot slots.Slot, now time.Time, limit int) discord.Embed {
	return discord.NewEmbedBuilder().
		SetTitle("📊 "+slot.Name).
		SetColor(config.InfoColor).
		AddField("Owner", fmt.Sprintf("<@%s>", slot.OwnerID), true).
		AddField("Channel", fmt.Sprintf("<#%s>", slot.ChannelID), true).
		AddField("Created", fmt.Sprintf("<t:%d:D>", slot.CreatedAt.Unix()), true).
		AddField("Duration", fmt.Sprintf("%d days", slot.DurationDays()), true).
		AddField("Expires", fmt.Sprintf("<t:%d:f>", slot.ExpiresAt.Unix()), true).
		AddField("Remaining", slots.FormatRemaining(slot.Remaining(now)), true).
		AddField("@here today", fmt.Sprintf("%d/%d", pingsToday(slot, now), limit), true).
		Build()
}

func StatusHandler(b *slotbot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		slot, err := slotFromEvent(b, e)
		if err != nil {
			return utils.EH.CreateError(e, err)
		}
		return e.CreateMessage(discord.MessageCreate{
			Embeds: []discord.Embed{statusEmbed(slot, b.Registry.Now(), b.Policy.Limit())},
			Flags:  discord.MessageFlagEphemeral,
		})
	}
}
