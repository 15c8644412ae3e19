package commands

import (
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/ellavondegurechaff/slotbot/slotbot"
	"github.com/ellavondegurechaff/slotbot/slotbot/handlers"
)

var Commands = []discord.ApplicationCommandCreate{
	Create,
	Revoke,
	Transfer,
	Restore,
	Status,
	List,
	Key,
	Help,
	Version,
}

// Register mounts every slot command on h.
func Register(h *handler.Mux, b *slotbot.Bot) {
	h.Command("/create", handlers.WrapWithLogging("create", CreateHandler(b)))
	h.Command("/revoke", handlers.WrapWithLogging("revoke", RevokeHandler(b)))
	h.Command("/transfer", handlers.WrapWithLogging("transfer", TransferHandler(b)))
	h.Command("/restore", handlers.WrapWithLogging("restore", RestoreHandler(b)))
	h.Command("/status", handlers.WrapWithLogging("status", StatusHandler(b)))
	h.Command("/slots", handlers.WrapWithLogging("slots", ListHandler(b)))
	h.Command("/key", handlers.WrapWithLogging("key", KeyHandler(b)))
	h.Command("/help", handlers.WrapWithLogging("help", HelpHandler(b)))
	h.Command("/version", VersionHandler(b))

	for _, name := range []string{"/revoke", "/transfer", "/status", "/key"} {
		h.Autocomplete(name, handlers.WrapAutocompleteWithLogging(name, SlotAutocompleteHandler(b)))
	}
}
