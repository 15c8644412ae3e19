package slots

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/ellavondegurechaff/slotbot/internal/domain/credential"
)

type LifecycleConfig struct {
	GuildID      snowflake.ID
	CategoryID   snowflake.ID
	AdminRoleIDs []snowflake.ID
	// BotUserID gets manage access so the bot can keep editing the channel.
	BotUserID snowflake.ID
	HereLimit int
	Observer  Observer
}

type CreateRequest struct {
	OwnerID  snowflake.ID
	Name     string
	Duration time.Duration
	Actor    Actor
}

// Lifecycle creates, transfers, revokes and restores slots, keeping the
// registry and the platform channel in step.
type Lifecycle struct {
	registry    *Registry
	provisioner Provisioner
	notifier    Notifier
	codec       *credential.Codec
	cfg         LifecycleConfig
}

func NewLifecycle(registry *Registry, provisioner Provisioner, notifier Notifier, codec *credential.Codec, cfg LifecycleConfig) *Lifecycle {
	if cfg.HereLimit <= 0 {
		cfg.HereLimit = DefaultHereLimit
	}
	cfg.Observer = observerOrNop(cfg.Observer)
	return &Lifecycle{
		registry:    registry,
		provisioner: provisioner,
		notifier:    notifier,
		codec:       codec,
		cfg:         cfg,
	}
}

func (l *Lifecycle) Registry() *Registry {
	return l.registry
}

// CreateSlot provisions a channel for the owner and registers it. The slot
// is only registered after the channel exists; if registration fails the
// channel is deleted again.
func (l *Lifecycle) CreateSlot(ctx context.Context, req CreateRequest) (Slot, error) {
	name := NormalizeName(req.Name)
	if name == "" {
		return Slot{}, fmt.Errorf("%w: slot name is required", ErrInvalidRequest)
	}
	if req.Duration <= 0 {
		return Slot{}, fmt.Errorf("%w: duration must be positive", ErrInvalidRequest)
	}
	if req.OwnerID == 0 {
		return Slot{}, fmt.Errorf("%w: owner is required", ErrInvalidRequest)
	}
	if _, ok := l.registry.OwnerHasLive(req.OwnerID); ok {
		return Slot{}, ErrDuplicateOwner
	}

	now := l.registry.Now().UTC()
	slot, err := l.provisionAndRegister(ctx, Slot{
		GuildID:   l.cfg.GuildID,
		OwnerID:   req.OwnerID,
		Name:      name,
		CreatedAt: now,
		ExpiresAt: now.Add(req.Duration),
	})
	if err != nil {
		return Slot{}, err
	}

	slog.Info("Slot created",
		slog.String("type", "sys"),
		slog.String("channel_id", slot.ChannelID.String()),
		slog.String("owner_id", slot.OwnerID.String()),
		slog.String("slot_name", slot.Name),
		slog.String("actor", req.Actor.String()),
		slog.Time("expires_at", slot.ExpiresAt))
	l.cfg.Observer.SlotCreated(false)

	if key, err := l.encodeKey(slot); err == nil {
		l.notify(ctx, slot.OwnerID, createdText(slot, key))
	} else {
		slog.Error("Failed to encode recovery key",
			slog.String("channel_id", slot.ChannelID.String()),
			slog.Any("error", err))
	}
	return slot, nil
}

func (l *Lifecycle) provisionAndRegister(ctx context.Context, slot Slot) (Slot, error) {
	channelID, err := l.provisioner.CreateChannel(ctx, l.channelSpec(slot.Name, slot.OwnerID))
	if err != nil {
		return Slot{}, fmt.Errorf("%w: create channel: %w", ErrProvisioning, err)
	}
	slot.ChannelID = channelID

	registered, err := l.registry.Create(ctx, slot)
	if err != nil {
		if delErr := l.provisioner.DeleteChannel(ctx, channelID, "slot registration failed"); delErr != nil {
			slog.Error("Failed to roll back slot channel",
				slog.String("channel_id", channelID.String()),
				slog.Any("error", delErr))
		}
		return Slot{}, err
	}

	if _, err := l.provisioner.SendMessage(ctx, channelID, RulesText(slot.OwnerID, l.cfg.HereLimit)); err != nil {
		slog.Warn("Failed to post slot rules",
			slog.String("channel_id", channelID.String()),
			slog.Any("error", err))
	}

	timerID, err := l.provisioner.SendMessage(ctx, channelID, TimerText(registered, l.registry.Now()))
	if err != nil {
		slog.Warn("Failed to post slot timer",
			slog.String("channel_id", channelID.String()),
			slog.Any("error", err))
		return registered, nil
	}
	if err := l.registry.SetTimerMessage(ctx, channelID, timerID); err != nil {
		slog.Warn("Failed to record slot timer message",
			slog.String("channel_id", channelID.String()),
			slog.Any("error", err))
		return registered, nil
	}
	registered.TimerMessageID = &timerID
	return registered, nil
}

func (l *Lifecycle) channelSpec(name string, ownerID snowflake.ID) ChannelSpec {
	overwrites := []Overwrite{
		// The @everyone role shares the guild's ID.
		{PrincipalID: l.cfg.GuildID, Kind: PrincipalRole, Access: AccessReadOnly},
		{PrincipalID: ownerID, Kind: PrincipalMember, Access: AccessReadWrite},
	}
	for _, roleID := range l.cfg.AdminRoleIDs {
		overwrites = append(overwrites, Overwrite{PrincipalID: roleID, Kind: PrincipalRole, Access: AccessManage})
	}
	if l.cfg.BotUserID != 0 {
		overwrites = append(overwrites, Overwrite{PrincipalID: l.cfg.BotUserID, Kind: PrincipalMember, Access: AccessManage})
	}
	return ChannelSpec{
		Name:       name,
		ParentID:   l.cfg.CategoryID,
		Topic:      "Slot owned by " + mention(ownerID),
		Overwrites: overwrites,
	}
}

// RevokeSlot tears a slot down. Revoking an unknown slot is a no-op.
func (l *Lifecycle) RevokeSlot(ctx context.Context, channelID snowflake.ID, reason string, actor Actor) error {
	slot, err := l.registry.Remove(ctx, channelID)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		slog.Error("Slot storage delete failed, retrying on the next sweep",
			slog.String("channel_id", channelID.String()),
			slog.Any("error", err))
	}

	slog.Info("Slot revoked",
		slog.String("type", "sys"),
		slog.String("channel_id", channelID.String()),
		slog.String("owner_id", slot.OwnerID.String()),
		slog.String("reason", reason),
		slog.String("actor", actor.String()))
	l.cfg.Observer.SlotRevoked(reason)

	l.notify(ctx, slot.OwnerID, revokedText(slot, reason, actor))

	if err := l.provisioner.DeleteChannel(ctx, channelID, reason); err != nil {
		return fmt.Errorf("%w: delete channel: %w", ErrProvisioning, err)
	}
	return nil
}

// TransferSlot hands the slot to newOwnerID. Only the current owner or an
// admin may do this.
func (l *Lifecycle) TransferSlot(ctx context.Context, channelID snowflake.ID, actor Actor, newOwnerID snowflake.ID) error {
	slot, err := l.registry.Get(channelID)
	if err != nil {
		return err
	}
	if actor.ID != slot.OwnerID && !actor.Admin {
		return ErrUnauthorized
	}
	if newOwnerID == 0 {
		return fmt.Errorf("%w: new owner is required", ErrInvalidRequest)
	}
	if newOwnerID == slot.OwnerID {
		return nil
	}
	if _, ok := l.registry.OwnerHasLive(newOwnerID); ok {
		return ErrDuplicateOwner
	}

	grant := Overwrite{PrincipalID: newOwnerID, Kind: PrincipalMember, Access: AccessReadWrite}
	if err := l.provisioner.SetPermission(ctx, channelID, grant); err != nil {
		return fmt.Errorf("%w: grant new owner: %w", ErrProvisioning, err)
	}

	if err := l.registry.UpdateOwner(ctx, channelID, newOwnerID); err != nil {
		grant.Access = AccessInherit
		if rbErr := l.provisioner.SetPermission(ctx, channelID, grant); rbErr != nil {
			slog.Error("Failed to roll back new owner grant",
				slog.String("channel_id", channelID.String()),
				slog.Any("error", rbErr))
		}
		return err
	}

	revoke := Overwrite{PrincipalID: slot.OwnerID, Kind: PrincipalMember, Access: AccessInherit}
	if err := l.provisioner.SetPermission(ctx, channelID, revoke); err != nil {
		slog.Error("Failed to clear previous owner permissions",
			slog.String("channel_id", channelID.String()),
			slog.String("previous_owner_id", slot.OwnerID.String()),
			slog.Any("error", err))
	}

	slog.Info("Slot transferred",
		slog.String("type", "sys"),
		slog.String("channel_id", channelID.String()),
		slog.String("previous_owner_id", slot.OwnerID.String()),
		slog.String("owner_id", newOwnerID.String()),
		slog.String("actor", actor.String()))
	l.cfg.Observer.SlotTransferred()

	l.notify(ctx, newOwnerID, transferredText(slot))
	return nil
}

// RestoreSlot rebuilds a slot from a recovery key presented by its owner.
func (l *Lifecycle) RestoreSlot(ctx context.Context, token string, requesterID snowflake.ID) (Slot, error) {
	cred, err := l.codec.Decode(token)
	if err != nil {
		return Slot{}, err
	}
	if cred.OwnerID != requesterID {
		return Slot{}, ErrUnauthorized
	}

	now := l.registry.Now()
	if !now.Before(cred.ExpiresAt) {
		return Slot{}, ErrExpired
	}

	name := NormalizeName(cred.ChannelName)
	if _, ok := l.registry.FindByName(name); ok {
		return Slot{}, ErrAlreadyExists
	}
	exists, err := l.provisioner.ChannelExists(ctx, name)
	if err != nil {
		return Slot{}, fmt.Errorf("%w: lookup channel: %w", ErrProvisioning, err)
	}
	if exists {
		return Slot{}, ErrAlreadyExists
	}
	if _, ok := l.registry.OwnerHasLive(requesterID); ok {
		return Slot{}, ErrDuplicateOwner
	}

	// A count from an earlier day has already reset.
	today := DayKey(now)
	pings := 0
	if cred.PingDay == today {
		pings = cred.PingCount
	}

	slot, err := l.provisionAndRegister(ctx, Slot{
		GuildID:          l.cfg.GuildID,
		OwnerID:          cred.OwnerID,
		Name:             name,
		CreatedAt:        now.UTC(),
		ExpiresAt:        cred.ExpiresAt,
		PingCount:        pings,
		LastPingResetDay: today,
	})
	if err != nil {
		return Slot{}, err
	}

	slog.Info("Slot restored",
		slog.String("type", "sys"),
		slog.String("channel_id", slot.ChannelID.String()),
		slog.String("owner_id", slot.OwnerID.String()),
		slog.String("slot_name", slot.Name),
		slog.Time("expires_at", slot.ExpiresAt))
	l.cfg.Observer.SlotCreated(true)

	if key, err := l.encodeKey(slot); err == nil {
		l.notify(ctx, slot.OwnerID, keyText(slot, key))
	}
	return slot, nil
}

// Reconcile drops registered slots whose channel no longer exists, such as
// rows left behind by a failed storage delete. Slots whose channel cannot be
// checked are kept. It returns how many slots were dropped.
func (l *Lifecycle) Reconcile(ctx context.Context) (int, error) {
	dropped := 0
	for _, slot := range l.registry.All() {
		if ctx.Err() != nil {
			return dropped, ctx.Err()
		}
		alive, err := l.provisioner.ChannelAlive(ctx, slot.ChannelID)
		if err != nil {
			slog.Warn("Failed to check slot channel",
				slog.String("channel_id", slot.ChannelID.String()),
				slog.Any("error", err))
			continue
		}
		if alive {
			continue
		}
		if _, err := l.registry.Remove(ctx, slot.ChannelID); err != nil && !errors.Is(err, ErrNotFound) {
			slog.Error("Failed to drop slot without channel",
				slog.String("channel_id", slot.ChannelID.String()),
				slog.Any("error", err))
		}
		slog.Info("Dropped slot without channel",
			slog.String("type", "sys"),
			slog.String("channel_id", slot.ChannelID.String()),
			slog.String("owner_id", slot.OwnerID.String()))
		dropped++
	}
	return dropped, nil
}

// IssueKey DMs a fresh recovery key to the slot owner and returns it.
func (l *Lifecycle) IssueKey(ctx context.Context, channelID snowflake.ID, actor Actor) (string, error) {
	slot, err := l.registry.Get(channelID)
	if err != nil {
		return "", err
	}
	if actor.ID != slot.OwnerID && !actor.Admin {
		return "", ErrUnauthorized
	}

	key, err := l.encodeKey(slot)
	if err != nil {
		return "", err
	}
	l.notify(ctx, slot.OwnerID, keyText(slot, key))
	return key, nil
}

func (l *Lifecycle) encodeKey(slot Slot) (string, error) {
	cred := credential.Credential{
		OwnerID:     slot.OwnerID,
		ChannelName: slot.Name,
		ExpiresAt:   slot.ExpiresAt,
	}
	if today := DayKey(l.registry.Now()); slot.LastPingResetDay == today && slot.PingCount > 0 {
		cred.PingCount = slot.PingCount
		cred.PingDay = today
	}
	return l.codec.Encode(cred)
}

func (l *Lifecycle) notify(ctx context.Context, userID snowflake.ID, content string) {
	if err := l.notifier.SendDirect(ctx, userID, content); err != nil {
		slog.Warn("Failed to send direct message",
			slog.String("user_id", userID.String()),
			slog.Any("error", err))
	}
}
