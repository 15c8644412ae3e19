package slotbot

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/disgoorg/disgo"
	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/cache"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"github.com/disgoorg/disgo/gateway"
	"github.com/disgoorg/paginator"
	"github.com/ellavondegurechaff/slotbot/internal/domain/credential"
	"github.com/ellavondegurechaff/slotbot/internal/domain/prompt"
	"github.com/ellavondegurechaff/slotbot/internal/domain/slots"
	"github.com/ellavondegurechaff/slotbot/slotbot/config"
	"github.com/ellavondegurechaff/slotbot/slotbot/database"
	"github.com/ellavondegurechaff/slotbot/slotbot/metrics"
	"github.com/ellavondegurechaff/slotbot/slotbot/services"
	"github.com/ellavondegurechaff/slotbot/slotbot/utils"
	"github.com/prometheus/client_golang/prometheus"
)

func New(cfg Config, version string, commit string) *Bot {
	return &Bot{
		Cfg:       cfg,
		Paginator: paginator.New(),
		Version:   version,
		Commit:    commit,
		Processes: utils.NewBackgroundProcessManager(),
	}
}

type Bot struct {
	Cfg       Config
	Client    bot.Client
	Paginator *paginator.Manager
	Version   string
	Commit    string
	DB        *database.DB

	Registry    *slots.Registry
	Lifecycle   *slots.Lifecycle
	Policy      *slots.Policy
	Scheduler   *slots.Scheduler
	Prompts     *prompt.Manager
	Provisioner *services.ChannelProvisioner
	Notifier    *services.DMNotifier
	Metrics     *metrics.Metrics
	Processes   *utils.BackgroundProcessManager
}

func (b *Bot) SetupBot(listeners ...bot.EventListener) error {
	client, err := disgo.New(b.Cfg.Bot.Token,
		bot.WithGatewayConfigOpts(gateway.WithIntents(gateway.IntentGuilds, gateway.IntentGuildMessages, gateway.IntentMessageContent)),
		bot.WithCacheConfigOpts(cache.WithCaches(cache.FlagGuilds)),
		bot.WithEventListeners(b.Paginator),
		bot.WithEventListeners(listeners...),
	)
	if err != nil {
		return err
	}

	b.Client = client
	return nil
}

// SetupSlots builds the slot services on top of the disgo client and loads
// persisted slots into the registry. SetupBot must have run first.
func (b *Bot) SetupSlots(ctx context.Context, repo slots.Repository, reg prometheus.Registerer) error {
	codec, err := credential.NewCodec([]byte(b.Cfg.Slots.RecoveryKey))
	if err != nil {
		return fmt.Errorf("failed to create recovery key codec: %w", err)
	}

	rest := b.Client.Rest()
	b.Provisioner = services.NewChannelProvisioner(rest, b.Cfg.Bot.GuildID)
	b.Notifier, err = services.NewDMNotifier(rest, config.DMChannelCacheSize, b.Cfg.Slots.DMPerSecond, b.Cfg.Slots.DMBurst)
	if err != nil {
		return err
	}

	b.Registry = slots.NewRegistry(repo)
	b.Metrics = metrics.New(reg, b.Registry.Len)

	b.Lifecycle = slots.NewLifecycle(b.Registry, b.Provisioner, b.Notifier, codec, slots.LifecycleConfig{
		GuildID:      b.Cfg.Bot.GuildID,
		CategoryID:   b.Cfg.Bot.CategoryID,
		AdminRoleIDs: b.Cfg.Bot.AdminRoles,
		BotUserID:    b.Client.ID(),
		HereLimit:    b.Cfg.Slots.HereLimit,
		Observer:     b.Metrics,
	})
	b.Policy = slots.NewPolicy(b.Registry, b.Lifecycle, b.Notifier, b.Cfg.Slots.HereLimit,
		slots.WithPolicyObserver(b.Metrics))
	b.Scheduler = slots.NewScheduler(b.Registry, b.Lifecycle, b.Provisioner, b.Notifier, slots.SchedulerConfig{
		ExpiryInterval:     b.Cfg.Slots.ExpiryInterval(),
		ReminderInterval:   b.Cfg.Slots.ReminderInterval(),
		ReminderWindowDays: b.Cfg.Slots.ReminderDays,
		Parallelism:        b.Cfg.Slots.SweepParallelism,
		Observer:           b.Metrics,
	})
	b.Prompts = prompt.NewManager(b.Provisioner, b.Cfg.Slots.PromptTimeout())

	n, err := b.Registry.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load slots: %w", err)
	}
	dropped, err := b.Lifecycle.Reconcile(ctx)
	if err != nil {
		return fmt.Errorf("failed to reconcile slots: %w", err)
	}
	slog.Info("Slots loaded",
		slog.String("type", "sys"),
		slog.Int("count", n-dropped),
		slog.Int("dropped", dropped))
	return nil
}

func (b *Bot) OnReady(_ *events.Ready) {
	slog.Info("SlotBot is now ready",
		slog.String("type", "sys"),
		slog.String("version", b.Version),
		slog.String("commit", b.Commit),
		slog.Int("live_slots", b.Registry.Len()))

	ctx, cancel := context.WithTimeout(context.Background(), config.PresenceTimeout)
	defer cancel()

	if err := b.Client.SetPresence(ctx,
		gateway.WithWatchingActivity(fmt.Sprintf("%d slots", b.Registry.Len())),
		gateway.WithOnlineStatus(discord.OnlineStatusOnline)); err != nil {
		slog.Error("Failed to set presence", slog.String("type", "error"), slog.Any("error", err))
	}
}
