package commands

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/disgoorg/snowflake/v2"
	"github.com/ellavondegurechaff/slotbot/internal/domain/slots"
	"github.com/ellavondegurechaff/slotbot/slotbot"
	"github.com/ellavondegurechaff/slotbot/slotbot/config"
	"github.com/sahilm/fuzzy"
)

var slotOption = discord.ApplicationCommandOptionString{
	Name:         "slot",
	Description:  "The slot channel (defaults to this channel or your own slot)",
	Required:     false,
	Autocomplete: true,
}

type slotNames []slots.Slot

func (s slotNames) Len() int            { return len(s) }
func (s slotNames) String(i int) string { return s[i].Name }

// matchSlots ranks slots by fuzzy match on the channel name. An empty query
// returns the soonest-expiring slots.
func matchSlots(all []slots.Slot, query string, limit int) []slots.Slot {
	query = strings.TrimSpace(strings.ToLower(query))
	if query == "" {
		return all[:min(limit, len(all))]
	}

	matches := fuzzy.FindFrom(query, slotNames(all))
	out := make([]slots.Slot, 0, min(limit, len(matches)))
	for _, m := range matches {
		if len(out) == limit {
			break
		}
		out = append(out, all[m.Index])
	}
	return out
}

// resolveSlot finds the slot a command is about: the explicit option (a
// channel ID from autocomplete or a name), else the channel the command ran
// in, else the caller's own slot.
func resolveSlot(reg *slots.Registry, value string, channelID, userID snowflake.ID) (slots.Slot, error) {
	value = strings.TrimSpace(value)
	if value != "" {
		if id, err := snowflake.Parse(strings.Trim(value, "<#>")); err == nil {
			return reg.Get(id)
		}
		if slot, ok := reg.FindByName(slots.NormalizeName(value)); ok {
			return slot, nil
		}
		return slots.Slot{}, fmt.Errorf("%w: %q", slots.ErrNotFound, value)
	}

	if slot, err := reg.Get(channelID); err == nil {
		return slot, nil
	}
	if slot, ok := reg.OwnerHasLive(userID); ok {
		return slot, nil
	}
	return slots.Slot{}, slots.ErrNotFound
}

func slotFromEvent(b *slotbot.Bot, e *handler.CommandEvent) (slots.Slot, error) {
	value, _ := e.SlashCommandInteractionData().OptString("slot")
	return resolveSlot(b.Registry, value, e.ChannelID(), e.User().ID)
}

func SlotAutocompleteHandler(b *slotbot.Bot) handler.AutocompleteHandler {
	return func(e *handler.AutocompleteEvent) error {
		focused := e.Data.Focused()
		if focused.Name != "slot" {
			return e.AutocompleteResult(nil)
		}

		var query string
		if focused.Value != nil {
			if err := json.Unmarshal(focused.Value, &query); err != nil {
				return e.AutocompleteResult(nil)
			}
		}

		matched := matchSlots(b.Registry.All(), query, config.MaxAutocompleteChoices)
		choices := make([]discord.AutocompleteChoice, 0, len(matched))
		for _, s := range matched {
			choices = append(choices, discord.AutocompleteChoiceString{
				Name:  s.Name,
				Value: s.ChannelID.String(),
			})
		}
		return e.AutocompleteResult(choices)
	}
}
