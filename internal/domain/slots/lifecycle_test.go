package slots_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/ellavondegurechaff/slotbot/internal/domain/credential"
	"github.com/ellavondegurechaff/slotbot/internal/domain/slots"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestLifecycle_CreateSlot(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	h.prov.EXPECT().CreateChannel(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, spec slots.ChannelSpec) (snowflake.ID, error) {
			assert.Equal(t, "drop-zone", spec.Name)
			assert.Equal(t, categoryID, spec.ParentID)
			assert.Contains(t, spec.Overwrites, slots.Overwrite{PrincipalID: guildID, Kind: slots.PrincipalRole, Access: slots.AccessReadOnly})
			assert.Contains(t, spec.Overwrites, slots.Overwrite{PrincipalID: ownerA, Kind: slots.PrincipalMember, Access: slots.AccessReadWrite})
			assert.Contains(t, spec.Overwrites, slots.Overwrite{PrincipalID: adminRole, Kind: slots.PrincipalRole, Access: slots.AccessManage})
			assert.Contains(t, spec.Overwrites, slots.Overwrite{PrincipalID: botUser, Kind: slots.PrincipalMember, Access: slots.AccessManage})
			return 10, nil
		})
	h.prov.EXPECT().SendMessage(gomock.Any(), snowflake.ID(10), gomock.Any()).Return(snowflake.ID(1), nil)
	h.prov.EXPECT().SendMessage(gomock.Any(), snowflake.ID(10), gomock.Any()).Return(snowflake.ID(2), nil)

	var key string
	h.notifier.EXPECT().SendDirect(gomock.Any(), ownerA, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ snowflake.ID, content string) error {
			key = content
			return nil
		})

	slot, err := h.lifecycle.CreateSlot(ctx, slots.CreateRequest{
		OwnerID:  ownerA,
		Name:     "Drop Zone",
		Duration: 7 * 24 * time.Hour,
		Actor:    slots.Actor{ID: ownerB, Admin: true},
	})
	require.NoError(t, err)
	assert.Equal(t, snowflake.ID(10), slot.ChannelID)
	assert.Equal(t, epoch.Add(7*24*time.Hour), slot.ExpiresAt)
	require.NotNil(t, slot.TimerMessageID)
	assert.Equal(t, snowflake.ID(2), *slot.TimerMessageID)
	assert.Contains(t, key, "drop-zone")

	got, err := h.registry.Get(10)
	require.NoError(t, err)
	assert.Equal(t, ownerA, got.OwnerID)
	assert.Equal(t, 7, got.DurationDays())
}

func TestLifecycle_CreateSlotRejects(t *testing.T) {
	h := newHarness(t)
	h.seed(t, 10, ownerA, time.Hour)

	tests := []struct {
		name string
		req  slots.CreateRequest
		want error
	}{
		{"duplicate owner", slots.CreateRequest{OwnerID: ownerA, Name: "x", Duration: time.Hour}, slots.ErrDuplicateOwner},
		{"empty name", slots.CreateRequest{OwnerID: ownerB, Name: "  ", Duration: time.Hour}, slots.ErrInvalidRequest},
		{"zero duration", slots.CreateRequest{OwnerID: ownerB, Name: "x"}, slots.ErrInvalidRequest},
		{"no owner", slots.CreateRequest{Name: "x", Duration: time.Hour}, slots.ErrInvalidRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.lifecycle.CreateSlot(context.Background(), tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}
	assert.Equal(t, 1, h.registry.Len())
}

func TestLifecycle_CreateSlotProvisioningFailure(t *testing.T) {
	h := newHarness(t)
	h.prov.EXPECT().CreateChannel(gomock.Any(), gomock.Any()).Return(snowflake.ID(0), errors.New("missing permissions"))

	_, err := h.lifecycle.CreateSlot(context.Background(), slots.CreateRequest{OwnerID: ownerA, Name: "x", Duration: time.Hour})
	assert.ErrorIs(t, err, slots.ErrProvisioning)
	assert.Equal(t, 0, h.registry.Len())
}

func TestLifecycle_CreateSlotRollsBackChannel(t *testing.T) {
	h := newHarness(t)
	// Another slot already occupies the channel ID the platform hands back.
	h.seed(t, 10, ownerB, time.Hour)

	h.prov.EXPECT().CreateChannel(gomock.Any(), gomock.Any()).Return(snowflake.ID(10), nil)
	h.prov.EXPECT().DeleteChannel(gomock.Any(), snowflake.ID(10), gomock.Any()).Return(nil)

	_, err := h.lifecycle.CreateSlot(context.Background(), slots.CreateRequest{OwnerID: ownerA, Name: "x", Duration: time.Hour})
	assert.ErrorIs(t, err, slots.ErrAlreadyExists)

	got, err := h.registry.Get(10)
	require.NoError(t, err)
	assert.Equal(t, ownerB, got.OwnerID)
}

func TestLifecycle_RevokeSlot(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.seed(t, 10, ownerA, time.Hour)
	admin := slots.Actor{ID: ownerC, Admin: true}

	h.notifier.EXPECT().SendDirect(gomock.Any(), ownerA, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ snowflake.ID, content string) error {
			assert.Contains(t, content, "spamming")
			assert.Contains(t, content, "<@"+ownerC.String()+">")
			return errors.New("dms closed")
		})
	h.prov.EXPECT().DeleteChannel(gomock.Any(), snowflake.ID(10), "spamming").Return(nil)

	require.NoError(t, h.lifecycle.RevokeSlot(ctx, 10, "spamming", admin))
	assert.Equal(t, 0, h.registry.Len())

	// Second revoke is a no-op: no further provisioner or notifier calls.
	require.NoError(t, h.lifecycle.RevokeSlot(ctx, 10, "spamming", admin))
}

func TestLifecycle_RevokeSlotChannelDeleteFails(t *testing.T) {
	h := newHarness(t)
	h.seed(t, 10, ownerA, time.Hour)

	h.notifier.EXPECT().SendDirect(gomock.Any(), ownerA, gomock.Any()).Return(nil)
	h.prov.EXPECT().DeleteChannel(gomock.Any(), snowflake.ID(10), gomock.Any()).Return(errors.New("gone"))

	err := h.lifecycle.RevokeSlot(context.Background(), 10, slots.ReasonExpired, slots.SystemActor)
	assert.ErrorIs(t, err, slots.ErrProvisioning)
	assert.Equal(t, 0, h.registry.Len())
}

func TestLifecycle_TransferSlot(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.seed(t, 10, ownerA, time.Hour)

	err := h.lifecycle.TransferSlot(ctx, 10, slots.Actor{ID: ownerC}, ownerB)
	assert.ErrorIs(t, err, slots.ErrUnauthorized)
	got, _ := h.registry.Get(10)
	assert.Equal(t, ownerA, got.OwnerID)

	gomock.InOrder(
		h.prov.EXPECT().SetPermission(gomock.Any(), snowflake.ID(10),
			slots.Overwrite{PrincipalID: ownerB, Kind: slots.PrincipalMember, Access: slots.AccessReadWrite}).Return(nil),
		h.prov.EXPECT().SetPermission(gomock.Any(), snowflake.ID(10),
			slots.Overwrite{PrincipalID: ownerA, Kind: slots.PrincipalMember, Access: slots.AccessInherit}).Return(nil),
	)
	h.notifier.EXPECT().SendDirect(gomock.Any(), ownerB, gomock.Any()).Return(nil)

	require.NoError(t, h.lifecycle.TransferSlot(ctx, 10, slots.Actor{ID: ownerA}, ownerB))
	got, _ = h.registry.Get(10)
	assert.Equal(t, ownerB, got.OwnerID)
}

func TestLifecycle_TransferSlotRejects(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.seed(t, 10, ownerA, time.Hour)
	h.seed(t, 11, ownerB, time.Hour)
	admin := slots.Actor{ID: ownerC, Admin: true}

	assert.ErrorIs(t, h.lifecycle.TransferSlot(ctx, 99, admin, ownerC), slots.ErrNotFound)
	assert.ErrorIs(t, h.lifecycle.TransferSlot(ctx, 10, admin, ownerB), slots.ErrDuplicateOwner)
	assert.ErrorIs(t, h.lifecycle.TransferSlot(ctx, 10, admin, 0), slots.ErrInvalidRequest)
	assert.NoError(t, h.lifecycle.TransferSlot(ctx, 10, admin, ownerA))

	h.prov.EXPECT().SetPermission(gomock.Any(), snowflake.ID(10), gomock.Any()).Return(errors.New("forbidden"))
	assert.ErrorIs(t, h.lifecycle.TransferSlot(ctx, 10, admin, ownerC), slots.ErrProvisioning)

	got, _ := h.registry.Get(10)
	assert.Equal(t, ownerA, got.OwnerID)
}

func TestLifecycle_RestoreSlot(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	valid, err := h.codec.Encode(credential.Credential{
		OwnerID:     ownerA,
		ChannelName: "drop-zone",
		ExpiresAt:   epoch.Add(48 * time.Hour),
		PingCount:   1,
		PingDay:     slots.DayKey(epoch),
	})
	require.NoError(t, err)

	expired, err := h.codec.Encode(credential.Credential{
		OwnerID:     ownerA,
		ChannelName: "drop-zone",
		ExpiresAt:   epoch.Add(-time.Minute),
	})
	require.NoError(t, err)

	t.Run("malformed", func(t *testing.T) {
		_, err := h.lifecycle.RestoreSlot(ctx, "garbage", ownerA)
		assert.ErrorIs(t, err, slots.ErrMalformedToken)
	})

	t.Run("wrong requester", func(t *testing.T) {
		_, err := h.lifecycle.RestoreSlot(ctx, valid, ownerB)
		assert.ErrorIs(t, err, slots.ErrUnauthorized)
	})

	t.Run("expired", func(t *testing.T) {
		_, err := h.lifecycle.RestoreSlot(ctx, expired, ownerA)
		assert.ErrorIs(t, err, slots.ErrExpired)
	})

	t.Run("channel still exists", func(t *testing.T) {
		h.prov.EXPECT().ChannelExists(gomock.Any(), "drop-zone").Return(true, nil)
		_, err := h.lifecycle.RestoreSlot(ctx, valid, ownerA)
		assert.ErrorIs(t, err, slots.ErrAlreadyExists)
	})

	t.Run("success", func(t *testing.T) {
		h.prov.EXPECT().ChannelExists(gomock.Any(), "drop-zone").Return(false, nil)
		h.expectProvision(20)
		h.notifier.EXPECT().SendDirect(gomock.Any(), ownerA, gomock.Any()).Return(nil)

		slot, err := h.lifecycle.RestoreSlot(ctx, valid, ownerA)
		require.NoError(t, err)
		assert.Equal(t, snowflake.ID(20), slot.ChannelID)
		assert.Equal(t, 1, slot.PingCount)
		assert.True(t, slot.ExpiresAt.Equal(epoch.Add(48*time.Hour)))
		assert.Equal(t, 2, slot.RemainingDays(epoch))
	})

	t.Run("registered twice", func(t *testing.T) {
		_, err := h.lifecycle.RestoreSlot(ctx, valid, ownerA)
		assert.ErrorIs(t, err, slots.ErrAlreadyExists)
	})
}

func TestLifecycle_RestoreSlotPingCountFollowsDay(t *testing.T) {
	tests := []struct {
		name       string
		restoreIn  time.Duration
		wantPings  int
		wantAction slots.Action
	}{
		{"same day keeps today's count", time.Hour, 2, slots.ActionRevoke},
		{"later day starts fresh", 48 * time.Hour, 0, slots.ActionAllow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			ctx := context.Background()
			policy := slots.NewPolicy(h.registry, h.lifecycle, h.notifier, 2)
			h.seed(t, 10, ownerA, 5*24*time.Hour)

			here := slots.Message{ChannelID: 10, AuthorID: ownerA, Content: "@here drop"}
			h.notifier.EXPECT().SendDirect(gomock.Any(), ownerA, gomock.Any()).Return(nil) // 2/2 warning
			for range 2 {
				_, err := policy.Inspect(ctx, here)
				require.NoError(t, err)
			}

			h.notifier.EXPECT().SendDirect(gomock.Any(), ownerA, gomock.Any()).Return(nil)
			key, err := h.lifecycle.IssueKey(ctx, 10, slots.Actor{ID: ownerA})
			require.NoError(t, err)
			_, err = h.registry.Remove(ctx, 10)
			require.NoError(t, err)

			h.clock.Advance(tt.restoreIn)
			h.prov.EXPECT().ChannelExists(gomock.Any(), "slot-10").Return(false, nil)
			h.expectProvision(20)
			h.notifier.EXPECT().SendDirect(gomock.Any(), ownerA, gomock.Any()).Return(nil)

			restored, err := h.lifecycle.RestoreSlot(ctx, key, ownerA)
			require.NoError(t, err)
			assert.Equal(t, tt.wantPings, restored.PingCount)
			assert.Equal(t, slots.DayKey(h.clock.Now()), restored.LastPingResetDay)

			if tt.wantAction == slots.ActionRevoke {
				h.notifier.EXPECT().SendDirect(gomock.Any(), ownerA, gomock.Any()).Return(nil)
				h.prov.EXPECT().DeleteChannel(gomock.Any(), snowflake.ID(20), slots.ReasonHereLimit).Return(nil)
			}
			v, err := policy.Inspect(ctx, slots.Message{ChannelID: 20, AuthorID: ownerA, Content: "@here again"})
			require.NoError(t, err)
			assert.Equal(t, tt.wantAction, v.Action)
			assert.Equal(t, tt.wantPings+1, v.Count)
		})
	}
}

func TestLifecycle_IssueKey(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.seed(t, 10, ownerA, 24*time.Hour)

	_, err := h.lifecycle.IssueKey(ctx, 10, slots.Actor{ID: ownerB})
	assert.ErrorIs(t, err, slots.ErrUnauthorized)

	h.notifier.EXPECT().SendDirect(gomock.Any(), ownerA, gomock.Any()).Return(nil)
	key, err := h.lifecycle.IssueKey(ctx, 10, slots.Actor{ID: ownerA})
	require.NoError(t, err)

	cred, err := h.codec.Decode(key)
	require.NoError(t, err)
	assert.Equal(t, ownerA, cred.OwnerID)
	assert.Equal(t, "slot-10", cred.ChannelName)
	assert.True(t, cred.ExpiresAt.Equal(epoch.Add(24*time.Hour)))
}

func TestLifecycle_Reconcile(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.seed(t, 10, ownerA, 24*time.Hour)
	h.seed(t, 11, ownerB, 48*time.Hour)
	h.seed(t, 12, ownerC, 72*time.Hour)

	h.prov.EXPECT().ChannelAlive(gomock.Any(), snowflake.ID(10)).Return(true, nil)
	h.prov.EXPECT().ChannelAlive(gomock.Any(), snowflake.ID(11)).Return(false, nil)
	h.prov.EXPECT().ChannelAlive(gomock.Any(), snowflake.ID(12)).Return(false, errors.New("rate limited"))

	dropped, err := h.lifecycle.Reconcile(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, dropped)

	_, err = h.registry.Get(11)
	assert.ErrorIs(t, err, slots.ErrNotFound)
	_, err = h.registry.Get(10)
	assert.NoError(t, err)
	_, err = h.registry.Get(12)
	assert.NoError(t, err, "unchecked channels are kept")

	// The dropped owner can take a new slot.
	h.seed(t, 13, ownerB, time.Hour)
}
