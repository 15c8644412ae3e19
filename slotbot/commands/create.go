package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/disgoorg/snowflake/v2"
	"github.com/ellavondegurechaff/slotbot/internal/domain/prompt"
	"github.com/ellavondegurechaff/slotbot/internal/domain/slots"
	"github.com/ellavondegurechaff/slotbot/slotbot"
	"github.com/ellavondegurechaff/slotbot/slotbot/config"
	"github.com/ellavondegurechaff/slotbot/slotbot/logger"
	"github.com/ellavondegurechaff/slotbot/slotbot/utils"
)

var (
	minDays = 1
	maxDays = prompt.MaxDays
)

var Create = discord.SlashCommandCreate{
	Name:        "create",
	Description: "🎟️ Create a slot channel for a user (admin)",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionUser{
			Name:        "user",
			Description: "Slot owner",
			Required:    false,
		},
		discord.ApplicationCommandOptionInt{
			Name:        "days",
			Description: "How long the slot lives",
			Required:    false,
			MinValue:    &minDays,
			MaxValue:    &maxDays,
		},
		discord.ApplicationCommandOptionString{
			Name:        "name",
			Description: "Channel name",
			Required:    false,
		},
	},
}

type createOptions struct {
	OwnerID snowflake.ID
	Days    int
	Name    string
}

// questions lists prompts for every option the command did not supply.
func (o createOptions) questions() []prompt.Question {
	var qs []prompt.Question
	if o.OwnerID == 0 {
		qs = append(qs, prompt.Question{Name: "user", Text: "👤 Who owns the slot? Mention them or paste their ID.", Parse: prompt.ParseUser})
	}
	if o.Days == 0 {
		qs = append(qs, prompt.Question{Name: "days", Text: "📅 How many days should the slot last?", Parse: prompt.ParseDays})
	}
	if o.Name == "" {
		qs = append(qs, prompt.Question{Name: "name", Text: "🏷️ What should the channel be called?", Parse: prompt.ParseText})
	}
	return qs
}

func (o createOptions) withAnswers(a prompt.Answers) createOptions {
	if v, ok := a["user"].(snowflake.ID); ok {
		o.OwnerID = v
	}
	if v, ok := a["days"].(int); ok {
		o.Days = v
	}
	if v, ok := a["name"].(string); ok {
		o.Name = v
	}
	return o
}

func (o createOptions) request(actor slots.Actor) slots.CreateRequest {
	return slots.CreateRequest{
		OwnerID:  o.OwnerID,
		Name:     o.Name,
		Duration: time.Duration(o.Days) * 24 * time.Hour,
		Actor:    actor,
	}
}

func createdMessage(slot slots.Slot, now time.Time) string {
	return fmt.Sprintf("Slot <#%s> created for <@%s>, expires <t:%d:R> (%d days).",
		slot.ChannelID, slot.OwnerID, slot.ExpiresAt.Unix(), slot.RemainingDays(now))
}

func CreateHandler(b *slotbot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		actor := actorFor(b, e)
		if !actor.Admin {
			return utils.EH.CreatePermissionError(e, "create slots")
		}

		data := e.SlashCommandInteractionData()
		var opts createOptions
		if user, ok := data.OptUser("user"); ok {
			opts.OwnerID = user.ID
		}
		opts.Days, _ = data.OptInt("days")
		opts.Name, _ = data.OptString("name")

		questions := opts.questions()
		if len(questions) == 0 {
			if err := e.DeferCreateMessage(false); err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(context.Background(), config.CommandExecutionTimeout)
			defer cancel()

			slot, err := b.Lifecycle.CreateSlot(ctx, opts.request(actor))
			if err != nil {
				return utils.EH.UpdateWithError(e, err)
			}
			return utils.EH.UpdateWithSuccess(e, createdMessage(slot, b.Registry.Now()))
		}

		if err := utils.EH.CreateEphemeralInfo(e, fmt.Sprintf("📝 Answer the questions below in this channel. You have %s per answer.",
			b.Prompts.Timeout())); err != nil {
			return err
		}

		channelID := e.ChannelID()
		ctx, cancel := context.WithTimeout(context.Background(), config.CommandExecutionTimeout)
		defer cancel()
		return b.Prompts.Start(ctx, prompt.Key{UserID: actor.ID, ChannelID: channelID}, prompt.Session{
			Questions: questions,
			OnComplete: func(ctx context.Context, answers prompt.Answers) {
				reply := func(content string) {
					if _, err := b.Provisioner.SendMessage(ctx, channelID, content); err != nil {
						logger.LogError("Failed to answer prompt", err)
					}
				}
				slot, err := b.Lifecycle.CreateSlot(ctx, opts.withAnswers(answers).request(actor))
				if err != nil {
					reply(utils.ErrorText(err))
					return
				}
				reply("✅ " + createdMessage(slot, b.Registry.Now()))
			},
		})
	}
}
