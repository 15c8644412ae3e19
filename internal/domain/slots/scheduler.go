package slots

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultExpiryInterval     = time.Minute
	DefaultReminderInterval   = time.Hour
	DefaultReminderWindowDays = 5
	defaultSweepParallelism   = 4
	slotActionTimeout         = 30 * time.Second
)

const (
	sweepExpiry   = "expiry"
	sweepReminder = "reminder"
)

type SchedulerConfig struct {
	ExpiryInterval     time.Duration
	ReminderInterval   time.Duration
	ReminderWindowDays int
	Parallelism        int
	Observer           Observer
}

// SweepReport summarises one pass over the registry.
type SweepReport struct {
	Scanned  int
	Revoked  int
	Updated  int
	Reminded int
	Failed   int
}

// ProcessStarter runs named background loops; utils.BackgroundProcessManager satisfies it.
type ProcessStarter interface {
	StartProcess(name, description string, fn func(ctx context.Context))
}

// Scheduler drives the periodic expiry and reminder sweeps.
type Scheduler struct {
	registry    *Registry
	revoker     Revoker
	provisioner Provisioner
	notifier    Notifier
	cfg         SchedulerConfig
	group       singleflight.Group
}

func NewScheduler(registry *Registry, revoker Revoker, provisioner Provisioner, notifier Notifier, cfg SchedulerConfig) *Scheduler {
	if cfg.ExpiryInterval <= 0 {
		cfg.ExpiryInterval = DefaultExpiryInterval
	}
	if cfg.ReminderInterval <= 0 {
		cfg.ReminderInterval = DefaultReminderInterval
	}
	if cfg.ReminderWindowDays <= 0 {
		cfg.ReminderWindowDays = DefaultReminderWindowDays
	}
	if cfg.Parallelism <= 0 {
		cfg.Parallelism = defaultSweepParallelism
	}
	cfg.Observer = observerOrNop(cfg.Observer)
	return &Scheduler{
		registry:    registry,
		revoker:     revoker,
		provisioner: provisioner,
		notifier:    notifier,
		cfg:         cfg,
	}
}

// Start registers both sweeps as background processes. Each loop sweeps once
// right away so slots that expired while the bot was down are handled.
func (s *Scheduler) Start(ps ProcessStarter) {
	ps.StartProcess("slot-expiry-sweep", "revokes expired slots and refreshes timers", func(ctx context.Context) {
		s.loop(ctx, s.cfg.ExpiryInterval, s.RunExpirySweep)
	})
	ps.StartProcess("slot-reminder-sweep", "reminds owners about upcoming expiry", func(ctx context.Context) {
		s.loop(ctx, s.cfg.ReminderInterval, s.RunReminderSweep)
	})
}

func (s *Scheduler) loop(ctx context.Context, interval time.Duration, sweep func(context.Context) (SweepReport, error)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := sweep(ctx); err != nil {
			slog.Error("Slot sweep failed", slog.Any("error", err))
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// RunExpirySweep revokes expired slots and refreshes timer messages on the
// rest. Concurrent callers share a single running sweep.
func (s *Scheduler) RunExpirySweep(ctx context.Context) (SweepReport, error) {
	return s.do(ctx, sweepExpiry, s.expirySweep)
}

// RunReminderSweep reminds owners whose slot is within the reminder window.
func (s *Scheduler) RunReminderSweep(ctx context.Context) (SweepReport, error) {
	return s.do(ctx, sweepReminder, s.reminderSweep)
}

func (s *Scheduler) do(ctx context.Context, key string, fn func(context.Context) SweepReport) (SweepReport, error) {
	start := time.Now()
	v, err, shared := s.group.Do(key, func() (any, error) {
		return fn(ctx), nil
	})
	if err != nil {
		return SweepReport{}, err
	}
	report := v.(SweepReport)
	if !shared {
		s.cfg.Observer.SweepFinished(key, report, time.Since(start))
		slog.Info("Slot sweep finished",
			slog.String("type", "sys"),
			slog.String("sweep", key),
			slog.Int("scanned", report.Scanned),
			slog.Int("revoked", report.Revoked),
			slog.Int("updated", report.Updated),
			slog.Int("reminded", report.Reminded),
			slog.Int("failed", report.Failed),
			slog.Duration("took", time.Since(start)))
	}
	return report, nil
}

type counters struct {
	revoked, updated, reminded, failed atomic.Int32
}

func (c *counters) report(scanned int) SweepReport {
	return SweepReport{
		Scanned:  scanned,
		Revoked:  int(c.revoked.Load()),
		Updated:  int(c.updated.Load()),
		Reminded: int(c.reminded.Load()),
		Failed:   int(c.failed.Load()),
	}
}

func (s *Scheduler) expirySweep(ctx context.Context) SweepReport {
	if left := s.registry.RetryOrphans(ctx); left > 0 {
		slog.Warn("Revoked slots still present in storage", slog.Int("pending", left))
	}

	now := s.registry.Now()
	all := s.registry.All()

	var c counters
	var g errgroup.Group
	g.SetLimit(s.cfg.Parallelism)

	for _, slot := range all {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			actionCtx, cancel := context.WithTimeout(ctx, slotActionTimeout)
			defer cancel()

			if !slot.Live(now) {
				if err := s.revoker.RevokeSlot(actionCtx, slot.ChannelID, ReasonExpired, SystemActor); err != nil {
					c.failed.Add(1)
					slog.Error("Failed to revoke expired slot",
						slog.String("channel_id", slot.ChannelID.String()),
						slog.Any("error", err))
					return nil
				}
				c.revoked.Add(1)
				return nil
			}

			if slot.TimerMessageID == nil {
				return nil
			}
			if err := s.provisioner.EditMessage(actionCtx, slot.ChannelID, *slot.TimerMessageID, TimerText(slot, now)); err != nil {
				c.failed.Add(1)
				slog.Warn("Failed to update slot timer",
					slog.String("channel_id", slot.ChannelID.String()),
					slog.Any("error", err))
				return nil
			}
			c.updated.Add(1)
			return nil
		})
	}
	_ = g.Wait()

	return c.report(len(all))
}

func (s *Scheduler) reminderSweep(ctx context.Context) SweepReport {
	now := s.registry.Now()
	all := s.registry.All()

	var c counters
	var g errgroup.Group
	g.SetLimit(s.cfg.Parallelism)

	for _, slot := range all {
		if ctx.Err() != nil {
			break
		}
		days := slot.RemainingDays(now)
		if days <= 0 || days > s.cfg.ReminderWindowDays {
			continue
		}
		if slot.LastReminderDay != nil && *slot.LastReminderDay == days {
			continue
		}

		g.Go(func() error {
			actionCtx, cancel := context.WithTimeout(ctx, slotActionTimeout)
			defer cancel()

			text := ReminderText(slot, days)
			delivered := false
			if err := s.notifier.SendDirect(actionCtx, slot.OwnerID, text); err != nil {
				slog.Warn("Failed to DM expiry reminder",
					slog.String("channel_id", slot.ChannelID.String()),
					slog.String("owner_id", slot.OwnerID.String()),
					slog.Any("error", err))
			} else {
				delivered = true
			}
			if _, err := s.provisioner.SendMessage(actionCtx, slot.ChannelID, mention(slot.OwnerID)+" "+text); err != nil {
				slog.Warn("Failed to post expiry reminder",
					slog.String("channel_id", slot.ChannelID.String()),
					slog.Any("error", err))
			} else {
				delivered = true
			}

			if !delivered {
				c.failed.Add(1)
				return nil
			}
			if err := s.registry.SetReminderDay(actionCtx, slot.ChannelID, days); err != nil {
				c.failed.Add(1)
				slog.Warn("Failed to record reminder",
					slog.String("channel_id", slot.ChannelID.String()),
					slog.Any("error", err))
				return nil
			}
			c.reminded.Add(1)
			return nil
		})
	}
	_ = g.Wait()

	return c.report(len(all))
}
