package slots

import (
	"context"
	"fmt"
	"iter"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/disgoorg/snowflake/v2"
)

type entry struct {
	mu      sync.Mutex
	slot    Slot
	removed bool
}

// Registry is the authoritative set of live slots keyed by channel ID.
//
// Lock order is Registry.mu before entry.mu, and Registry.mu is never held
// across a storage call. The owners index reserves an owner for a slot while
// its create or transfer is still being persisted; a new entry stays locked
// until its row is written, so readers of that one slot wait for it.
// ExpiresAt never changes after an entry is added, so the index checks read
// it without the entry lock.
type Registry struct {
	mu      sync.RWMutex
	entries map[snowflake.ID]*entry
	owners  map[snowflake.ID]snowflake.ID
	// orphans are removed slots whose rows could not be deleted yet.
	orphans map[snowflake.ID]struct{}
	repo    Repository
	now     func() time.Time
}

type RegistryOpt func(*Registry)

// WithClock overrides the registry's time source.
func WithClock(now func() time.Time) RegistryOpt {
	return func(r *Registry) {
		r.now = now
	}
}

// NewRegistry creates a registry persisting through repo. A nil repo keeps
// everything in memory.
func NewRegistry(repo Repository, opts ...RegistryOpt) *Registry {
	r := &Registry{
		entries: make(map[snowflake.ID]*entry),
		owners:  make(map[snowflake.ID]snowflake.ID),
		orphans: make(map[snowflake.ID]struct{}),
		repo:    repo,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Load replaces the in-memory state with what the repository holds.
func (r *Registry) Load(ctx context.Context) (int, error) {
	if r.repo == nil {
		return 0, nil
	}

	stored, err := r.repo.GetAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to load slots: %w", err)
	}

	now := r.now()
	today := DayKey(now)
	entries := make(map[snowflake.ID]*entry, len(stored))
	owners := make(map[snowflake.ID]snowflake.ID, len(stored))
	for _, s := range stored {
		count, err := r.repo.GetPingCount(ctx, s.ChannelID, today)
		if err != nil {
			return 0, fmt.Errorf("failed to load ping count for %s: %w", s.ChannelID, err)
		}
		s.PingCount = count
		s.LastPingResetDay = today
		entries[s.ChannelID] = &entry{slot: s.clone()}
		if cur, ok := owners[s.OwnerID]; !ok || !entries[cur].slot.Live(now) {
			owners[s.OwnerID] = s.ChannelID
		}
	}

	r.mu.Lock()
	r.entries = entries
	r.owners = owners
	r.mu.Unlock()
	return len(entries), nil
}

// ownerBusy reports whether ownerID holds or is being given a live slot
// other than except. Callers hold r.mu. ExpiresAt never changes after insert,
// so it is read without the entry lock.
func (r *Registry) ownerBusy(ownerID, except snowflake.ID, now time.Time) bool {
	channelID, ok := r.owners[ownerID]
	if !ok || channelID == except {
		return false
	}
	e, ok := r.entries[channelID]
	return ok && now.Before(e.slot.ExpiresAt)
}

// releaseOwner drops the owner's index entry if it still points at channelID.
// Callers hold r.mu.
func (r *Registry) releaseOwner(ownerID, channelID snowflake.ID) {
	if r.owners[ownerID] == channelID {
		delete(r.owners, ownerID)
	}
}

// Create registers a new slot. It fails with ErrDuplicateOwner when the owner
// already holds a live slot and with ErrAlreadyExists when the channel is
// already registered.
func (r *Registry) Create(ctx context.Context, slot Slot) (Slot, error) {
	if slot.ChannelID == 0 || slot.OwnerID == 0 {
		return Slot{}, fmt.Errorf("%w: channel and owner are required", ErrInvalidRequest)
	}

	now := r.now()
	if slot.CreatedAt.IsZero() {
		slot.CreatedAt = now.UTC()
	}
	if slot.LastPingResetDay == "" {
		slot.LastPingResetDay = DayKey(now)
	}

	r.mu.Lock()
	if _, ok := r.entries[slot.ChannelID]; ok {
		r.mu.Unlock()
		return Slot{}, ErrAlreadyExists
	}
	if r.ownerBusy(slot.OwnerID, slot.ChannelID, now) {
		r.mu.Unlock()
		return Slot{}, ErrDuplicateOwner
	}
	e := &entry{slot: slot.clone()}
	e.mu.Lock()
	r.entries[slot.ChannelID] = e
	r.owners[slot.OwnerID] = slot.ChannelID
	delete(r.orphans, slot.ChannelID)
	r.mu.Unlock()

	if err := r.persistNew(ctx, slot); err != nil {
		e.removed = true
		e.mu.Unlock()

		r.mu.Lock()
		if r.entries[slot.ChannelID] == e {
			delete(r.entries, slot.ChannelID)
		}
		r.releaseOwner(slot.OwnerID, slot.ChannelID)
		r.mu.Unlock()
		return Slot{}, err
	}
	e.mu.Unlock()
	return slot.clone(), nil
}

func (r *Registry) persistNew(ctx context.Context, slot Slot) error {
	if r.repo == nil {
		return nil
	}
	if err := r.repo.Create(ctx, slot); err != nil {
		return fmt.Errorf("failed to persist slot: %w", err)
	}
	if slot.PingCount > 0 {
		if err := r.repo.SavePingCount(ctx, slot.ChannelID, slot.LastPingResetDay, slot.PingCount); err != nil {
			return fmt.Errorf("failed to persist ping count: %w", err)
		}
	}
	return nil
}

func (r *Registry) lookup(channelID snowflake.ID) (*entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[channelID]
	return e, ok
}

func (r *Registry) Get(channelID snowflake.ID) (Slot, error) {
	e, ok := r.lookup(channelID)
	if !ok {
		return Slot{}, ErrNotFound
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.removed {
		return Slot{}, ErrNotFound
	}
	return e.slot.clone(), nil
}

// UpdateOwner moves the slot to newOwnerID.
func (r *Registry) UpdateOwner(ctx context.Context, channelID snowflake.ID, newOwnerID snowflake.ID) error {
	r.mu.Lock()
	e, ok := r.entries[channelID]
	if !ok {
		r.mu.Unlock()
		return ErrNotFound
	}
	if r.ownerBusy(newOwnerID, channelID, r.now()) {
		r.mu.Unlock()
		return ErrDuplicateOwner
	}
	r.owners[newOwnerID] = channelID
	r.mu.Unlock()

	e.mu.Lock()
	oldOwnerID := e.slot.OwnerID
	err := ErrNotFound
	if !e.removed {
		err = nil
		if r.repo != nil {
			if perr := r.repo.UpdateOwner(ctx, channelID, newOwnerID); perr != nil {
				err = fmt.Errorf("failed to persist owner: %w", perr)
			}
		}
		if err == nil {
			e.slot.OwnerID = newOwnerID
		}
	}
	e.mu.Unlock()

	if oldOwnerID == newOwnerID {
		return err
	}
	r.mu.Lock()
	if err != nil {
		r.releaseOwner(newOwnerID, channelID)
	} else {
		r.releaseOwner(oldOwnerID, channelID)
	}
	r.mu.Unlock()
	return err
}

// BumpPing increments the slot's @here counter for day, resetting it first
// when the last reset happened on a different day. It returns the new count.
func (r *Registry) BumpPing(ctx context.Context, channelID snowflake.ID, day string) (int, error) {
	e, ok := r.lookup(channelID)
	if !ok {
		return 0, ErrNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.removed {
		return 0, ErrNotFound
	}

	count := e.slot.PingCount
	if e.slot.LastPingResetDay != day {
		count = 0
	}
	count++

	if r.repo != nil {
		if err := r.repo.SavePingCount(ctx, channelID, day, count); err != nil {
			return 0, fmt.Errorf("failed to persist ping count: %w", err)
		}
	}

	e.slot.PingCount = count
	e.slot.LastPingResetDay = day
	return count, nil
}

// Remove deletes the slot and its ping counters. The in-memory entry is gone
// even when the repository delete fails; that error is still returned and the
// row is kept as an orphan for RetryOrphans.
func (r *Registry) Remove(ctx context.Context, channelID snowflake.ID) (Slot, error) {
	e, ok := r.lookup(channelID)
	if !ok {
		return Slot{}, ErrNotFound
	}

	e.mu.Lock()
	removed := e.removed
	e.removed = true
	slot := e.slot.clone()
	e.mu.Unlock()
	if removed {
		return Slot{}, ErrNotFound
	}

	r.mu.Lock()
	if r.entries[channelID] == e {
		delete(r.entries, channelID)
	}
	r.releaseOwner(slot.OwnerID, channelID)
	r.mu.Unlock()

	if r.repo != nil {
		if err := r.repo.Delete(ctx, channelID); err != nil {
			r.mu.Lock()
			r.orphans[channelID] = struct{}{}
			r.mu.Unlock()
			return slot, fmt.Errorf("failed to delete slot from storage: %w", err)
		}
	}
	return slot, nil
}

// RetryOrphans deletes rows left behind by failed removals and returns how
// many are still pending.
func (r *Registry) RetryOrphans(ctx context.Context) int {
	r.mu.RLock()
	pending := make([]snowflake.ID, 0, len(r.orphans))
	for id := range r.orphans {
		pending = append(pending, id)
	}
	r.mu.RUnlock()
	if r.repo == nil || len(pending) == 0 {
		return len(pending)
	}

	left := 0
	for _, id := range pending {
		if err := r.repo.Delete(ctx, id); err != nil {
			left++
			continue
		}
		r.mu.Lock()
		delete(r.orphans, id)
		r.mu.Unlock()
	}
	return left
}

// SetReminderDay records the remaining-day bucket the owner was last reminded for.
func (r *Registry) SetReminderDay(ctx context.Context, channelID snowflake.ID, day int) error {
	return r.mutate(channelID, func(s *Slot) error {
		if r.repo != nil {
			if err := r.repo.UpdateReminderDay(ctx, channelID, day); err != nil {
				return fmt.Errorf("failed to persist reminder day: %w", err)
			}
		}
		s.LastReminderDay = &day
		return nil
	})
}

func (r *Registry) SetTimerMessage(ctx context.Context, channelID snowflake.ID, messageID snowflake.ID) error {
	return r.mutate(channelID, func(s *Slot) error {
		if r.repo != nil {
			if err := r.repo.UpdateTimerMessage(ctx, channelID, messageID); err != nil {
				return fmt.Errorf("failed to persist timer message: %w", err)
			}
		}
		s.TimerMessageID = &messageID
		return nil
	})
}

func (r *Registry) mutate(channelID snowflake.ID, fn func(s *Slot) error) error {
	e, ok := r.lookup(channelID)
	if !ok {
		return ErrNotFound
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.removed {
		return ErrNotFound
	}
	return fn(&e.slot)
}

// OwnerHasLive returns the owner's live slot, if any.
func (r *Registry) OwnerHasLive(ownerID snowflake.ID) (Slot, bool) {
	now := r.now()
	for _, s := range r.All() {
		if s.OwnerID == ownerID && s.Live(now) {
			return s, true
		}
	}
	return Slot{}, false
}

// FindByName looks a slot up by channel name, ignoring case.
func (r *Registry) FindByName(name string) (Slot, bool) {
	for _, s := range r.All() {
		if strings.EqualFold(s.Name, name) {
			return s, true
		}
	}
	return Slot{}, false
}

// All returns a snapshot of every slot ordered by expiry.
func (r *Registry) All() []Slot {
	r.mu.RLock()
	entries := make([]*entry, 0, len(r.entries))
	for _, e := range r.entries {
		entries = append(entries, e)
	}
	r.mu.RUnlock()

	out := make([]Slot, 0, len(entries))
	for _, e := range entries {
		e.mu.Lock()
		if !e.removed {
			out = append(out, e.slot.clone())
		}
		e.mu.Unlock()
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].ExpiresAt.Equal(out[j].ExpiresAt) {
			return out[i].ExpiresAt.Before(out[j].ExpiresAt)
		}
		return out[i].ChannelID < out[j].ChannelID
	})
	return out
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// ListExpiring yields slots whose remaining lifetime is in (0, within].
// Each range over the sequence takes a fresh snapshot.
func (r *Registry) ListExpiring(within time.Duration) iter.Seq[Slot] {
	return func(yield func(Slot) bool) {
		now := r.now()
		for _, s := range r.All() {
			rem := s.ExpiresAt.Sub(now)
			if rem > 0 && rem <= within {
				if !yield(s) {
					return
				}
			}
		}
	}
}

// ListExpired yields slots with expiresAt <= now.
func (r *Registry) ListExpired(now time.Time) iter.Seq[Slot] {
	return func(yield func(Slot) bool) {
		for _, s := range r.All() {
			if !s.Live(now) {
				if !yield(s) {
					return
				}
			}
		}
	}
}

// Now is the registry's clock.
func (r *Registry) Now() time.Time {
	return r.now()
}
