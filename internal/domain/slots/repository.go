package slots

import (
	"context"

	"github.com/disgoorg/snowflake/v2"
)

//go:generate mockgen -destination=mock/repository.go -package=mock . Repository

// Repository persists slots and their per-day ping counters.
type Repository interface {
	Create(ctx context.Context, slot Slot) error
	UpdateOwner(ctx context.Context, channelID snowflake.ID, ownerID snowflake.ID) error
	UpdateReminderDay(ctx context.Context, channelID snowflake.ID, day int) error
	UpdateTimerMessage(ctx context.Context, channelID snowflake.ID, messageID snowflake.ID) error
	SavePingCount(ctx context.Context, channelID snowflake.ID, day string, count int) error
	GetPingCount(ctx context.Context, channelID snowflake.ID, day string) (int, error)
	// Delete removes the slot and every ping counter recorded for it.
	Delete(ctx context.Context, channelID snowflake.ID) error
	GetAll(ctx context.Context) ([]Slot, error)
}
