package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/ellavondegurechaff/slotbot/slotbot"
	"github.com/ellavondegurechaff/slotbot/slotbot/config"
	"github.com/ellavondegurechaff/slotbot/slotbot/utils"
)

var Help = discord.SlashCommandCreate{
	Name:        "help",
	Description: "📖 Show the slot commands and rules",
}

var Version = discord.SlashCommandCreate{
	Name:        "version",
	Description: "version command",
}

type commandInfo struct {
	Name        string
	Description string
	Admin       bool
}

var helpEntries = []commandInfo{
	{"create [user] [days] [name]", "Create a slot; missing options are asked for in the channel", true},
	{"revoke [slot] [reason]", "Revoke a slot and delete its channel", true},
	{"transfer user [slot]", "Give your slot to someone else", false},
	{"restore key", "Rebuild your slot from its recovery key", false},
	{"status [slot]", "Owner, expiry and today's @here usage", false},
	{"slots", "List every active slot", false},
	{"key [slot]", "DM the recovery key to the slot owner again", false},
}

func helpText(hereLimit int, admin bool) string {
	var sb strings.Builder
	for _, c := range helpEntries {
		if c.Admin && !admin {
			continue
		}
		fmt.Fprintf(&sb, "`/%s`\n%s\n", c.Name, c.Description)
	}
	fmt.Fprintf(&sb, "\n**Rules**\nMax **%d** `@here` per day. The next one revokes the slot.\n`@everyone` revokes the slot immediately.", hereLimit)
	return sb.String()
}

func HelpHandler(b *slotbot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		embed := discord.NewEmbedBuilder().
			SetTitle("📖 SlotBot").
			SetDescription(helpText(b.Policy.Limit(), actorFor(b, e).Admin)).
			SetColor(config.InfoColor).
			Build()
		return e.CreateMessage(discord.MessageCreate{
			Embeds: []discord.Embed{embed},
			Flags:  discord.MessageFlagEphemeral,
		})
	}
}

func versionText(version, commit string, procs []utils.ProcessInfo, now time.Time) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Version: %s\nCommit: %s", version, commit)
	for _, p := range procs {
		fmt.Fprintf(&sb, "\n`%s` up %s", p.Name, now.Sub(p.StartedAt).Truncate(time.Second))
	}
	return sb.String()
}

func VersionHandler(b *slotbot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		return e.CreateMessage(discord.MessageCreate{
			Content: versionText(b.Version, b.Commit, b.Processes.ListProcesses(), time.Now()),
		})
	}
}
