package slots_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/ellavondegurechaff/slotbot/internal/domain/credential"
	"github.com/ellavondegurechaff/slotbot/internal/domain/slots"
	"github.com/ellavondegurechaff/slotbot/internal/domain/slots/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const (
	guildID    snowflake.ID = 900000000000000001
	categoryID snowflake.ID = 900000000000000002
	adminRole  snowflake.ID = 900000000000000003
	botUser    snowflake.ID = 900000000000000004

	ownerA snowflake.ID = 100000000000000001
	ownerB snowflake.ID = 100000000000000002
	ownerC snowflake.ID = 100000000000000003
)

var epoch = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newClock() *fakeClock {
	return &fakeClock{t: epoch}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type harness struct {
	clock     *fakeClock
	registry  *slots.Registry
	prov      *mock.MockProvisioner
	notifier  *mock.MockNotifier
	codec     *credential.Codec
	lifecycle *slots.Lifecycle
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	ctrl := gomock.NewController(t)
	clock := newClock()
	codec, err := credential.NewCodec([]byte("test-signing-key-0123456789"))
	require.NoError(t, err)

	h := &harness{
		clock:    clock,
		registry: slots.NewRegistry(nil, slots.WithClock(clock.Now)),
		prov:     mock.NewMockProvisioner(ctrl),
		notifier: mock.NewMockNotifier(ctrl),
		codec:    codec,
	}
	h.lifecycle = slots.NewLifecycle(h.registry, h.prov, h.notifier, codec, slots.LifecycleConfig{
		GuildID:      guildID,
		CategoryID:   categoryID,
		AdminRoleIDs: []snowflake.ID{adminRole},
		BotUserID:    botUser,
		HereLimit:    2,
	})
	return h
}

// seed registers a slot directly, bypassing provisioning.
func (h *harness) seed(t *testing.T, channelID, ownerID snowflake.ID, lifetime time.Duration) slots.Slot {
	t.Helper()
	now := h.clock.Now()
	s, err := h.registry.Create(context.Background(), slots.Slot{
		GuildID:   guildID,
		ChannelID: channelID,
		OwnerID:   ownerID,
		Name:      "slot-" + channelID.String(),
		CreatedAt: now,
		ExpiresAt: now.Add(lifetime),
	})
	require.NoError(t, err)
	return s
}

// expectProvision allows the messages posted while a slot is being set up.
func (h *harness) expectProvision(channelID snowflake.ID) {
	h.prov.EXPECT().CreateChannel(gomock.Any(), gomock.Any()).Return(channelID, nil)
	h.prov.EXPECT().SendMessage(gomock.Any(), channelID, gomock.Any()).Return(snowflake.ID(1), nil)
	h.prov.EXPECT().SendMessage(gomock.Any(), channelID, gomock.Any()).Return(snowflake.ID(2), nil)
}
