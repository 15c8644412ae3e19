package handlers

import (
	"context"
	"log/slog"

	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/events"
	"github.com/disgoorg/snowflake/v2"
	"github.com/ellavondegurechaff/slotbot/internal/domain/prompt"
	"github.com/ellavondegurechaff/slotbot/internal/domain/slots"
	"github.com/ellavondegurechaff/slotbot/slotbot"
	"github.com/ellavondegurechaff/slotbot/slotbot/config"
	"github.com/ellavondegurechaff/slotbot/slotbot/logger"
)

const (
	reasonStripHere    = "@here removed from slot message"
	reasonBrokeMention = "broadcast mention broke slot rules"
)

// MessageHandler routes guild messages to open prompt sessions first and to
// the mention policy otherwise.
func MessageHandler(b *slotbot.Bot) bot.EventListener {
	return bot.NewListenerFunc(func(e *events.GuildMessageCreate) {
		if e.GuildID != b.Cfg.Bot.GuildID {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), config.ProvisionTimeout)
		defer cancel()

		HandleMessage(ctx, b.Prompts, b.Policy, b.Provisioner, slots.Message{
			ID:        e.MessageID,
			ChannelID: e.ChannelID,
			AuthorID:  e.Message.Author.ID,
			AuthorBot: e.Message.Author.Bot,
			Content:   e.Message.Content,
		})
	})
}

// MessageInspector is the part of the policy the message handler needs.
type MessageInspector interface {
	Inspect(ctx context.Context, msg slots.Message) (slots.Verdict, error)
}

// Moderator removes offending messages from slot channels.
type Moderator interface {
	DeleteMessage(ctx context.Context, channelID, messageID snowflake.ID, reason string) error
	SendMessage(ctx context.Context, channelID snowflake.ID, content string) (snowflake.ID, error)
}

// HandleMessage feeds msg to a waiting prompt session, or runs it through the
// mention policy. Messages carrying @here or @everyone always go to the
// policy, even when a session is waiting on their author.
func HandleMessage(ctx context.Context, prompts *prompt.Manager, policy MessageInspector, mod Moderator, msg slots.Message) {
	if msg.AuthorBot {
		return
	}
	if prompts != nil && slots.Classify(msg.Content) == slots.MentionNone &&
		prompts.Feed(ctx, prompt.Key{UserID: msg.AuthorID, ChannelID: msg.ChannelID}, msg.Content) {
		return
	}

	verdict, err := policy.Inspect(ctx, msg)
	if err != nil {
		logger.LogError("Mention policy failed", err,
			slog.String("channel_id", msg.ChannelID.String()),
			slog.String("user_id", msg.AuthorID.String()))
		return
	}
	if verdict.Mention == slots.MentionNone {
		return
	}

	logger.LogPolicy("Mention inspected", msg.ChannelID.String(), msg.AuthorID.String(),
		slog.String("action", verdict.Action.String()),
		slog.String("state", verdict.State.String()),
		slog.Int("count", verdict.Count),
		slog.String("reason", verdict.Reason))

	moderate(ctx, mod, msg, verdict)
}

// moderate deletes a message that broke the rules. An allowed @here is
// reposted by the bot without the mention.
func moderate(ctx context.Context, mod Moderator, msg slots.Message, v slots.Verdict) {
	if mod == nil || !v.InSlot || msg.ID == 0 {
		return
	}

	if v.Action == slots.ActionRevoke {
		// The channel is usually gone by now, which the delete tolerates.
		if err := mod.DeleteMessage(ctx, msg.ChannelID, msg.ID, reasonBrokeMention); err != nil {
			slog.Debug("Failed to delete offending message",
				slog.String("channel_id", msg.ChannelID.String()),
				slog.Any("error", err))
		}
		return
	}
	if v.Mention != slots.MentionHere {
		return
	}

	if err := mod.DeleteMessage(ctx, msg.ChannelID, msg.ID, reasonStripHere); err != nil {
		logger.LogError("Failed to remove @here message", err,
			slog.String("channel_id", msg.ChannelID.String()))
		return
	}
	text := slots.StripBroadcast(msg.Content)
	if text == "" {
		return
	}
	if _, err := mod.SendMessage(ctx, msg.ChannelID, slots.RepostText(msg.AuthorID, text)); err != nil {
		logger.LogError("Failed to repost slot message", err,
			slog.String("channel_id", msg.ChannelID.String()))
	}
}
