package slots

import (
	"fmt"
	"strings"
	"time"

	"github.com/disgoorg/snowflake/v2"
)

const (
	ReasonExpired   = "expired"
	ReasonEveryone  = "used @everyone mention"
	ReasonHereLimit = "exceeded @here mention limit"
)

// NormalizeName mirrors how the platform renders text channel names.
func NormalizeName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	name = strings.Join(strings.Fields(name), "-")
	return strings.Trim(name, "-")
}

// FormatRemaining renders a duration as "3d 4h 12m".
func FormatRemaining(d time.Duration) string {
	if d <= 0 {
		return "expired"
	}
	d = d.Round(time.Minute)
	days := d / (24 * time.Hour)
	d -= days * 24 * time.Hour
	hours := d / time.Hour
	d -= hours * time.Hour
	minutes := d / time.Minute

	switch {
	case days > 0:
		return fmt.Sprintf("%dd %dh %dm", days, hours, minutes)
	case hours > 0:
		return fmt.Sprintf("%dh %dm", hours, minutes)
	default:
		return fmt.Sprintf("%dm", minutes)
	}
}

func mention(id snowflake.ID) string {
	return "<@" + id.String() + ">"
}

func RulesText(ownerID snowflake.ID, hereLimit int) string {
	return fmt.Sprintf("%s **Slot rules**\n"+
		"• Max **%d** `@here` pings per day.\n"+
		"• **NO** `@everyone` pings.\n"+
		"• Follow staff instructions.", mention(ownerID), hereLimit)
}

func TimerText(slot Slot, now time.Time) string {
	return fmt.Sprintf("⏳ Time remaining: **%s** (expires <t:%d:f>)",
		FormatRemaining(slot.Remaining(now)), slot.ExpiresAt.Unix())
}

func createdText(slot Slot, key string) string {
	return fmt.Sprintf("🎉 Your slot **%s** is live! Slot-ID: `%s` (expires <t:%d:R>).\n"+
		"Keep this recovery key somewhere safe, it restores the slot with `/restore`:\n`%s`",
		slot.Name, slot.ChannelID, slot.ExpiresAt.Unix(), key)
}

func keyText(slot Slot, key string) string {
	return fmt.Sprintf("🔑 Recovery key for slot **%s**:\n`%s`", slot.Name, key)
}

func revokedText(slot Slot, reason string, actor Actor) string {
	return fmt.Sprintf("❌ Your slot **%s** was revoked.\nReason: %s\nBy: %s", slot.Name, reason, actor)
}

func transferredText(slot Slot) string {
	return fmt.Sprintf("🎁 You have been given control of slot **%s**", slot.Name)
}

func warnText(slot Slot, count, limit int) string {
	return fmt.Sprintf("⚠️ Slot **%s** has used **%d/%d** `@here` pings today. One more and the slot is revoked.",
		slot.Name, count, limit)
}

func ReminderText(slot Slot, days int) string {
	unit := "days"
	if days == 1 {
		unit = "day"
	}
	return fmt.Sprintf("⏰ Slot **%s** expires in **%d %s** (<t:%d:f>).", slot.Name, days, unit, slot.ExpiresAt.Unix())
}

// RepostText is posted in place of a removed @here message.
func RepostText(authorID snowflake.ID, text string) string {
	return fmt.Sprintf("**%s:** %s", mention(authorID), text)
}
