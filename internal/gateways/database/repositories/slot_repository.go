package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/ellavondegurechaff/slotbot/internal/domain/logger"
	"github.com/ellavondegurechaff/slotbot/internal/domain/slots"
	"github.com/ellavondegurechaff/slotbot/internal/gateways/database/models"
	"github.com/uptrace/bun"
)

const defaultTimeout = 10 * time.Second

type slotRepository struct {
	db *bun.DB
}

var _ slots.Repository = &slotRepository{}

func NewSlotRepository(db *bun.DB) *slotRepository {
	return &slotRepository{db: db}
}

func (r *slotRepository) Create(ctx context.Context, slot slots.Slot) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	ql := logger.NewQueryLogger("insert", "slots", slot.ChannelID.String())
	res, err := r.db.NewInsert().
		Model(toModel(slot)).
		Exec(ctx)
	if err != nil {
		return ql.Log(err, 0)
	}
	return ql.Log(nil, rowsAffected(res))
}

func (r *slotRepository) UpdateOwner(ctx context.Context, channelID snowflake.ID, ownerID snowflake.ID) error {
	return r.updateSlot(ctx, "update_owner", channelID, "owner_id = ?", int64(ownerID))
}

func (r *slotRepository) UpdateReminderDay(ctx context.Context, channelID snowflake.ID, day int) error {
	return r.updateSlot(ctx, "update_reminder_day", channelID, "last_reminder_day = ?", day)
}

func (r *slotRepository) UpdateTimerMessage(ctx context.Context, channelID snowflake.ID, messageID snowflake.ID) error {
	return r.updateSlot(ctx, "update_timer_message", channelID, "timer_message_id = ?", int64(messageID))
}

func (r *slotRepository) updateSlot(ctx context.Context, operation string, channelID snowflake.ID, set string, value any) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	ql := logger.NewQueryLogger(operation, "slots", channelID.String())
	res, err := r.db.NewUpdate().
		Model((*models.Slot)(nil)).
		Set(set, value).
		Where("channel_id = ?", int64(channelID)).
		Exec(ctx)
	if err != nil {
		return ql.Log(err, 0)
	}

	affected := rowsAffected(res)
	if affected == 0 {
		return ql.Log(slots.ErrNotFound, 0)
	}
	return ql.Log(nil, affected)
}

func (r *slotRepository) SavePingCount(ctx context.Context, channelID snowflake.ID, day string, count int) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	ping := &models.SlotPing{
		ChannelID: int64(channelID),
		DateKey:   day,
		PingCount: count,
		UpdatedAt: time.Now(),
	}

	ql := logger.NewQueryLogger("upsert", "slot_pings", channelID.String())
	res, err := r.db.NewInsert().
		Model(ping).
		On("CONFLICT (channel_id, date_key) DO UPDATE").
		Set("ping_count = EXCLUDED.ping_count").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return ql.Log(err, 0)
	}
	return ql.Log(nil, rowsAffected(res))
}

func (r *slotRepository) GetPingCount(ctx context.Context, channelID snowflake.ID, day string) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	ping := new(models.SlotPing)
	err := r.db.NewSelect().
		Model(ping).
		Where("channel_id = ?", int64(channelID)).
		Where("date_key = ?", day).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get ping count: %w", err)
	}
	return ping.PingCount, nil
}

// Delete removes the slot and every ping counter row for its channel.
func (r *slotRepository) Delete(ctx context.Context, channelID snowflake.ID) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	ql := logger.NewQueryLogger("delete", "slots", channelID.String())
	var affected int64
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().
			Model((*models.SlotPing)(nil)).
			Where("channel_id = ?", int64(channelID)).
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to delete ping counters: %w", err)
		}

		res, err := tx.NewDelete().
			Model((*models.Slot)(nil)).
			Where("channel_id = ?", int64(channelID)).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to delete slot: %w", err)
		}
		affected = rowsAffected(res)
		return nil
	})
	return ql.Log(err, affected)
}

func (r *slotRepository) GetAll(ctx context.Context) ([]slots.Slot, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var rows []*models.Slot
	if err := r.db.NewSelect().
		Model(&rows).
		Order("expires_at ASC").
		Scan(ctx); err != nil {
		return nil, fmt.Errorf("failed to get slots: %w", err)
	}

	out := make([]slots.Slot, 0, len(rows))
	for _, row := range rows {
		out = append(out, toDomain(row))
	}
	return out, nil
}

func rowsAffected(res sql.Result) int64 {
	n, err := res.RowsAffected()
	if err != nil {
		return 0
	}
	return n
}

func toModel(s slots.Slot) *models.Slot {
	m := &models.Slot{
		GuildID:         int64(s.GuildID),
		ChannelID:       int64(s.ChannelID),
		OwnerID:         int64(s.OwnerID),
		Name:            s.Name,
		CreatedAt:       s.CreatedAt,
		DurationDays:    s.DurationDays(),
		ExpiresAt:       s.ExpiresAt,
		LastReminderDay: s.LastReminderDay,
	}
	if s.TimerMessageID != nil {
		id := int64(*s.TimerMessageID)
		m.TimerMessageID = &id
	}
	return m
}

func toDomain(m *models.Slot) slots.Slot {
	s := slots.Slot{
		GuildID:         snowflake.ID(m.GuildID),
		ChannelID:       snowflake.ID(m.ChannelID),
		OwnerID:         snowflake.ID(m.OwnerID),
		Name:            m.Name,
		CreatedAt:       m.CreatedAt.UTC(),
		ExpiresAt:       m.ExpiresAt.UTC(),
		LastReminderDay: m.LastReminderDay,
	}
	if m.TimerMessageID != nil {
		id := snowflake.ID(*m.TimerMessageID)
		s.TimerMessageID = &id
	}
	// Rows written before expires_at existed only carry the duration.
	if s.ExpiresAt.IsZero() && m.DurationDays > 0 {
		s.ExpiresAt = s.CreatedAt.Add(time.Duration(m.DurationDays) * 24 * time.Hour)
	}
	return s
}
