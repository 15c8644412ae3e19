package commands

import (
	"slices"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/disgoorg/snowflake/v2"
	"github.com/ellavondegurechaff/slotbot/internal/domain/slots"
	"github.com/ellavondegurechaff/slotbot/slotbot"
)

// isAdmin reports whether the member holds Administrator or one of the
// configured admin roles.
func isAdmin(permissions discord.Permissions, roleIDs []snowflake.ID, adminRoles []snowflake.ID) bool {
	if permissions.Has(discord.PermissionAdministrator) {
		return true
	}
	for _, id := range roleIDs {
		if slices.Contains(adminRoles, id) {
			return true
		}
	}
	return false
}

func actorFor(b *slotbot.Bot, e *handler.CommandEvent) slots.Actor {
	actor := slots.Actor{ID: e.User().ID}
	if member := e.Member(); member != nil {
		actor.Admin = isAdmin(member.Permissions, member.RoleIDs, b.Cfg.Bot.AdminRoles)
	}
	return actor
}
