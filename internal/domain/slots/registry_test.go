package slots_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/ellavondegurechaff/slotbot/internal/domain/slots"
	"github.com/ellavondegurechaff/slotbot/internal/domain/slots/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestRegistry_CreateAndGet(t *testing.T) {
	clock := newClock()
	r := slots.NewRegistry(nil, slots.WithClock(clock.Now))
	ctx := context.Background()

	created, err := r.Create(ctx, slots.Slot{ChannelID: 10, OwnerID: ownerA, Name: "alpha", ExpiresAt: epoch.Add(24 * time.Hour)})
	require.NoError(t, err)
	assert.Equal(t, epoch, created.CreatedAt)
	assert.Equal(t, "2026-03-10", created.LastPingResetDay)

	got, err := r.Get(10)
	require.NoError(t, err)
	assert.Equal(t, ownerA, got.OwnerID)
	assert.Equal(t, "alpha", got.Name)

	_, err = r.Get(11)
	assert.ErrorIs(t, err, slots.ErrNotFound)
}

func TestRegistry_CreateDuplicateOwner(t *testing.T) {
	clock := newClock()
	r := slots.NewRegistry(nil, slots.WithClock(clock.Now))
	ctx := context.Background()

	_, err := r.Create(ctx, slots.Slot{ChannelID: 10, OwnerID: ownerA, Name: "alpha", ExpiresAt: epoch.Add(time.Hour)})
	require.NoError(t, err)

	_, err = r.Create(ctx, slots.Slot{ChannelID: 11, OwnerID: ownerA, Name: "beta", ExpiresAt: epoch.Add(time.Hour)})
	assert.ErrorIs(t, err, slots.ErrDuplicateOwner)
	assert.Equal(t, 1, r.Len())

	_, err = r.Create(ctx, slots.Slot{ChannelID: 10, OwnerID: ownerB, Name: "gamma", ExpiresAt: epoch.Add(time.Hour)})
	assert.ErrorIs(t, err, slots.ErrAlreadyExists)

	// An expired slot no longer counts against the owner.
	clock.Advance(2 * time.Hour)
	_, err = r.Create(ctx, slots.Slot{ChannelID: 12, OwnerID: ownerA, Name: "delta", ExpiresAt: clock.Now().Add(time.Hour)})
	assert.NoError(t, err)
}

func TestRegistry_ConcurrentCreateSameOwner(t *testing.T) {
	r := slots.NewRegistry(nil, slots.WithClock(newClock().Now))

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := r.Create(context.Background(), slots.Slot{
				ChannelID: snowflake.ID(1000 + i),
				OwnerID:   ownerA,
				Name:      "race",
				ExpiresAt: epoch.Add(time.Hour),
			})
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, r.Len())
}

func TestRegistry_BumpPingResetsOnNewDay(t *testing.T) {
	clock := newClock()
	r := slots.NewRegistry(nil, slots.WithClock(clock.Now))
	ctx := context.Background()

	_, err := r.Create(ctx, slots.Slot{
		ChannelID:        10,
		OwnerID:          ownerA,
		Name:             "alpha",
		ExpiresAt:        epoch.Add(72 * time.Hour),
		PingCount:        2,
		LastPingResetDay: "2026-03-10",
	})
	require.NoError(t, err)

	count, err := r.BumpPing(ctx, 10, "2026-03-11")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	count, err = r.BumpPing(ctx, 10, "2026-03-11")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	got, err := r.Get(10)
	require.NoError(t, err)
	assert.Equal(t, 2, got.PingCount)
	assert.Equal(t, "2026-03-11", got.LastPingResetDay)
}

func TestRegistry_BumpPingConcurrent(t *testing.T) {
	r := slots.NewRegistry(nil, slots.WithClock(newClock().Now))
	ctx := context.Background()
	_, err := r.Create(ctx, slots.Slot{ChannelID: 10, OwnerID: ownerA, Name: "alpha", ExpiresAt: epoch.Add(time.Hour)})
	require.NoError(t, err)

	const n = 200
	var wg sync.WaitGroup
	seen := make([]int, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c, err := r.BumpPing(ctx, 10, "2026-03-10")
			if err == nil {
				seen[i] = c
			}
		}(i)
	}
	wg.Wait()

	got, err := r.Get(10)
	require.NoError(t, err)
	assert.Equal(t, n, got.PingCount)

	unique := make(map[int]bool, n)
	for _, c := range seen {
		unique[c] = true
	}
	assert.Len(t, unique, n, "every bump must observe a distinct count")
}

func TestRegistry_RemoveIsTerminal(t *testing.T) {
	r := slots.NewRegistry(nil, slots.WithClock(newClock().Now))
	ctx := context.Background()
	_, err := r.Create(ctx, slots.Slot{ChannelID: 10, OwnerID: ownerA, Name: "alpha", ExpiresAt: epoch.Add(time.Hour)})
	require.NoError(t, err)

	removed, err := r.Remove(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, ownerA, removed.OwnerID)

	_, err = r.Remove(ctx, 10)
	assert.ErrorIs(t, err, slots.ErrNotFound)
	_, err = r.BumpPing(ctx, 10, "2026-03-10")
	assert.ErrorIs(t, err, slots.ErrNotFound)
	assert.ErrorIs(t, r.UpdateOwner(ctx, 10, ownerB), slots.ErrNotFound)
	assert.ErrorIs(t, r.SetReminderDay(ctx, 10, 3), slots.ErrNotFound)
}

func TestRegistry_UpdateOwner(t *testing.T) {
	r := slots.NewRegistry(nil, slots.WithClock(newClock().Now))
	ctx := context.Background()
	for i, owner := range []snowflake.ID{ownerA, ownerB} {
		_, err := r.Create(ctx, slots.Slot{ChannelID: snowflake.ID(10 + i), OwnerID: owner, Name: "s", ExpiresAt: epoch.Add(time.Hour)})
		require.NoError(t, err)
	}

	assert.ErrorIs(t, r.UpdateOwner(ctx, 10, ownerB), slots.ErrDuplicateOwner)
	require.NoError(t, r.UpdateOwner(ctx, 10, ownerC))

	got, err := r.Get(10)
	require.NoError(t, err)
	assert.Equal(t, ownerC, got.OwnerID)
	assert.ErrorIs(t, r.UpdateOwner(ctx, 99, ownerC), slots.ErrNotFound)

	// The previous owner is free again.
	_, err = r.Create(ctx, slots.Slot{ChannelID: 12, OwnerID: ownerA, Name: "s", ExpiresAt: epoch.Add(time.Hour)})
	assert.NoError(t, err)
}

func TestRegistry_UpdateOwnerStorageFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mock.NewMockRepository(ctrl)
	r := slots.NewRegistry(repo, slots.WithClock(newClock().Now))
	ctx := context.Background()

	repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
	_, err := r.Create(ctx, slots.Slot{ChannelID: 10, OwnerID: ownerA, Name: "alpha", ExpiresAt: epoch.Add(time.Hour)})
	require.NoError(t, err)

	repo.EXPECT().UpdateOwner(gomock.Any(), snowflake.ID(10), ownerB).Return(errors.New("db down"))
	require.Error(t, r.UpdateOwner(ctx, 10, ownerB))

	got, err := r.Get(10)
	require.NoError(t, err)
	assert.Equal(t, ownerA, got.OwnerID)

	// Neither owner is left reserved by the failed transfer.
	repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
	_, err = r.Create(ctx, slots.Slot{ChannelID: 11, OwnerID: ownerB, Name: "beta", ExpiresAt: epoch.Add(time.Hour)})
	assert.NoError(t, err)
	_, err = r.Create(ctx, slots.Slot{ChannelID: 12, OwnerID: ownerA, Name: "gamma", ExpiresAt: epoch.Add(time.Hour)})
	assert.ErrorIs(t, err, slots.ErrDuplicateOwner)
}

func TestRegistry_PendingCreateDoesNotBlockOtherSlots(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mock.NewMockRepository(ctrl)
	r := slots.NewRegistry(repo, slots.WithClock(newClock().Now))
	ctx := context.Background()

	repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
	_, err := r.Create(ctx, slots.Slot{ChannelID: 10, OwnerID: ownerA, Name: "alpha", ExpiresAt: epoch.Add(time.Hour)})
	require.NoError(t, err)

	writing := make(chan struct{})
	release := make(chan struct{})
	repo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(func(context.Context, slots.Slot) error {
		close(writing)
		<-release
		return nil
	})

	created := make(chan error, 1)
	go func() {
		_, err := r.Create(ctx, slots.Slot{ChannelID: 11, OwnerID: ownerB, Name: "beta", ExpiresAt: epoch.Add(time.Hour)})
		created <- err
	}()
	<-writing

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, err := r.Get(10)
		assert.NoError(t, err)
		repo.EXPECT().SavePingCount(gomock.Any(), snowflake.ID(10), "2026-03-10", 1).Return(nil)
		count, err := r.BumpPing(ctx, 10, "2026-03-10")
		assert.NoError(t, err)
		assert.Equal(t, 1, count)

		// The owner is already reserved by the create in flight.
		_, err = r.Create(ctx, slots.Slot{ChannelID: 12, OwnerID: ownerB, Name: "gamma", ExpiresAt: epoch.Add(time.Hour)})
		assert.ErrorIs(t, err, slots.ErrDuplicateOwner)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("other slots blocked behind a pending storage write")
	}

	close(release)
	require.NoError(t, <-created)
	got, err := r.Get(11)
	require.NoError(t, err)
	assert.Equal(t, ownerB, got.OwnerID)
}

func TestRegistry_RetryOrphans(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mock.NewMockRepository(ctrl)
	r := slots.NewRegistry(repo, slots.WithClock(newClock().Now))
	ctx := context.Background()

	repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
	_, err := r.Create(ctx, slots.Slot{ChannelID: 10, OwnerID: ownerA, Name: "alpha", ExpiresAt: epoch.Add(time.Hour)})
	require.NoError(t, err)

	repo.EXPECT().Delete(gomock.Any(), snowflake.ID(10)).Return(errors.New("db down"))
	removed, err := r.Remove(ctx, 10)
	require.Error(t, err)
	assert.Equal(t, ownerA, removed.OwnerID)
	assert.Equal(t, 0, r.Len())

	repo.EXPECT().Delete(gomock.Any(), snowflake.ID(10)).Return(errors.New("still down"))
	assert.Equal(t, 1, r.RetryOrphans(ctx))

	repo.EXPECT().Delete(gomock.Any(), snowflake.ID(10)).Return(nil)
	assert.Equal(t, 0, r.RetryOrphans(ctx))
	assert.Equal(t, 0, r.RetryOrphans(ctx))
}

func TestRegistry_ListExpiringAndExpired(t *testing.T) {
	clock := newClock()
	r := slots.NewRegistry(nil, slots.WithClock(clock.Now))
	ctx := context.Background()

	lifetimes := map[snowflake.ID]time.Duration{
		10: -time.Minute,
		11: 0,
		12: 12 * time.Hour,
		13: 48 * time.Hour,
		14: 10 * 24 * time.Hour,
	}
	i := 0
	for ch, life := range lifetimes {
		i++
		_, err := r.Create(ctx, slots.Slot{ChannelID: ch, OwnerID: snowflake.ID(500 + i), Name: "s", CreatedAt: epoch.Add(-time.Hour), ExpiresAt: epoch.Add(life)})
		require.NoError(t, err)
	}

	collect := func(seq func(func(slots.Slot) bool)) []snowflake.ID {
		var ids []snowflake.ID
		seq(func(s slots.Slot) bool {
			ids = append(ids, s.ChannelID)
			return true
		})
		return ids
	}

	expiring := r.ListExpiring(48 * time.Hour)
	assert.Equal(t, []snowflake.ID{12, 13}, collect(expiring))
	// Restartable: a second pass sees the same set.
	assert.Equal(t, []snowflake.ID{12, 13}, collect(expiring))

	assert.ElementsMatch(t, []snowflake.ID{10, 11}, collect(r.ListExpired(clock.Now())))

	// Early stop.
	var first []snowflake.ID
	for s := range r.ListExpiring(30 * 24 * time.Hour) {
		first = append(first, s.ChannelID)
		break
	}
	assert.Equal(t, []snowflake.ID{12}, first)
}

func TestRegistry_WriteThrough(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mock.NewMockRepository(ctrl)
	r := slots.NewRegistry(repo, slots.WithClock(newClock().Now))
	ctx := context.Background()

	repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(errors.New("db down"))
	_, err := r.Create(ctx, slots.Slot{ChannelID: 10, OwnerID: ownerA, Name: "alpha", ExpiresAt: epoch.Add(time.Hour)})
	require.Error(t, err)
	assert.Equal(t, 0, r.Len())

	repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
	_, err = r.Create(ctx, slots.Slot{ChannelID: 10, OwnerID: ownerA, Name: "alpha", ExpiresAt: epoch.Add(time.Hour)})
	require.NoError(t, err)

	repo.EXPECT().SavePingCount(gomock.Any(), snowflake.ID(10), "2026-03-10", 1).Return(nil)
	count, err := r.BumpPing(ctx, 10, "2026-03-10")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	repo.EXPECT().SavePingCount(gomock.Any(), snowflake.ID(10), "2026-03-10", 2).Return(errors.New("db down"))
	_, err = r.BumpPing(ctx, 10, "2026-03-10")
	require.Error(t, err)
	got, _ := r.Get(10)
	assert.Equal(t, 1, got.PingCount, "failed persist must not advance the counter")

	repo.EXPECT().Delete(gomock.Any(), snowflake.ID(10)).Return(nil)
	_, err = r.Remove(ctx, 10)
	require.NoError(t, err)
}

func TestRegistry_Load(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mock.NewMockRepository(ctrl)
	r := slots.NewRegistry(repo, slots.WithClock(newClock().Now))

	repo.EXPECT().GetAll(gomock.Any()).Return([]slots.Slot{
		{ChannelID: 10, OwnerID: ownerA, Name: "alpha", ExpiresAt: epoch.Add(time.Hour)},
		{ChannelID: 11, OwnerID: ownerB, Name: "beta", ExpiresAt: epoch.Add(2 * time.Hour)},
	}, nil)
	repo.EXPECT().GetPingCount(gomock.Any(), snowflake.ID(10), "2026-03-10").Return(2, nil)
	repo.EXPECT().GetPingCount(gomock.Any(), snowflake.ID(11), "2026-03-10").Return(0, nil)

	n, err := r.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	got, err := r.Get(10)
	require.NoError(t, err)
	assert.Equal(t, 2, got.PingCount)
	assert.Equal(t, "2026-03-10", got.LastPingResetDay)
}

func TestSlot_RemainingDays(t *testing.T) {
	s := slots.Slot{ExpiresAt: epoch.Add(4*24*time.Hour + 12*time.Hour)}
	assert.Equal(t, 5, s.RemainingDays(epoch))
	assert.Equal(t, 1, s.RemainingDays(s.ExpiresAt.Add(-time.Minute)))
	assert.Equal(t, 0, s.RemainingDays(s.ExpiresAt))
	assert.Equal(t, 4, slots.Slot{ExpiresAt: epoch.Add(96 * time.Hour)}.RemainingDays(epoch))
}
