package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Slot struct {
	bun.BaseModel `bun:"table:slots,alias:s"`

	ID              int64     `bun:"id,pk,autoincrement"`
	GuildID         int64     `bun:"guild_id,notnull"`
	ChannelID       int64     `bun:"channel_id,notnull,unique"`
	OwnerID         int64     `bun:"owner_id,notnull"`
	Name            string    `bun:"name,notnull"`
	CreatedAt       time.Time `bun:"created_at,notnull,default:current_timestamp"`
	DurationDays    int       `bun:"duration_days,notnull"`
	ExpiresAt       time.Time `bun:"expires_at,notnull"`
	LastReminderDay *int      `bun:"last_reminder_day"`
	TimerMessageID  *int64    `bun:"timer_message_id"`
}

// SlotPing is the @here counter for one channel on one UTC day.
type SlotPing struct {
	bun.BaseModel `bun:"table:slot_pings,alias:sp"`

	ID        int64     `bun:"id,pk,autoincrement"`
	ChannelID int64     `bun:"channel_id,notnull,unique:slot_pings_channel_day"`
	DateKey   string    `bun:"date_key,notnull,unique:slot_pings_channel_day"`
	PingCount int       `bun:"ping_count,notnull,default:0"`
	UpdatedAt time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}
