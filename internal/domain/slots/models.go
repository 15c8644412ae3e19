package slots

import (
	"time"

	"github.com/disgoorg/snowflake/v2"
)

// DayLayout is the UTC date key used for ping counters.
const DayLayout = "2006-01-02"

type Slot struct {
	GuildID          snowflake.ID
	ChannelID        snowflake.ID
	OwnerID          snowflake.ID
	Name             string
	CreatedAt        time.Time
	ExpiresAt        time.Time
	PingCount        int
	LastPingResetDay string
	// LastReminderDay is nil until the first reminder has gone out.
	LastReminderDay *int
	TimerMessageID  *snowflake.ID
}

// Live reports whether the slot is still within its lifetime at now.
func (s Slot) Live(now time.Time) bool {
	return now.Before(s.ExpiresAt)
}

// Remaining is the time left until expiry, never negative.
func (s Slot) Remaining(now time.Time) time.Duration {
	if d := s.ExpiresAt.Sub(now); d > 0 {
		return d
	}
	return 0
}

// RemainingDays rounds the remaining lifetime up to whole days.
func (s Slot) RemainingDays(now time.Time) int {
	d := s.ExpiresAt.Sub(now)
	if d <= 0 {
		return 0
	}
	days := int(d / (24 * time.Hour))
	if d%(24*time.Hour) != 0 {
		days++
	}
	return days
}

// DurationDays is the slot's total lifetime rounded to whole days.
func (s Slot) DurationDays() int {
	return int((s.ExpiresAt.Sub(s.CreatedAt) + 12*time.Hour) / (24 * time.Hour))
}

func (s Slot) clone() Slot {
	c := s
	if s.LastReminderDay != nil {
		v := *s.LastReminderDay
		c.LastReminderDay = &v
	}
	if s.TimerMessageID != nil {
		v := *s.TimerMessageID
		c.TimerMessageID = &v
	}
	return c
}

// DayKey formats t as the UTC day key.
func DayKey(t time.Time) string {
	return t.UTC().Format(DayLayout)
}

// Actor is whoever is driving an operation.
type Actor struct {
	ID    snowflake.ID
	Admin bool
}

// SystemActor is used for scheduler and policy-triggered actions.
var SystemActor = Actor{Admin: true}

func (a Actor) String() string {
	if a.ID == 0 {
		return "system"
	}
	return "<@" + a.ID.String() + ">"
}
