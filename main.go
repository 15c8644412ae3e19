package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/handler"
	"github.com/ellavondegurechaff/slotbot/internal/gateways/database/repositories"
	"github.com/ellavondegurechaff/slotbot/slotbot"
	"github.com/ellavondegurechaff/slotbot/slotbot/commands"
	"github.com/ellavondegurechaff/slotbot/slotbot/config"
	"github.com/ellavondegurechaff/slotbot/slotbot/database"
	"github.com/ellavondegurechaff/slotbot/slotbot/handlers"
	"github.com/ellavondegurechaff/slotbot/slotbot/logger"
	"github.com/ellavondegurechaff/slotbot/slotbot/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	slog.SetDefault(slog.New(logger.NewHandler()))

	shouldSyncCommands := flag.Bool("sync-commands", false, "Whether to sync commands to discord")
	path := flag.String("config", "config.toml", "path to config")
	flag.Parse()

	cfg, err := slotbot.LoadConfig(*path)
	if err != nil {
		slog.Error("Failed to load configuration", slog.String("type", "sys"), slog.Any("error", err))
		os.Exit(-1)
	}
	slog.SetDefault(slog.New(logger.NewHandler(
		logger.WithLevel(cfg.Log.Level),
		logger.WithSource(cfg.Log.AddSource),
	)))
	logger.LogSystem("Starting SlotBot",
		slog.String("version", version),
		slog.String("commit", commit),
		slog.String("config", cfg.String()))

	ctx, cancel := context.WithTimeout(context.Background(), config.StartupTimeout)
	defer cancel()

	dbStartTime := time.Now()
	db, err := database.New(ctx, cfg.DB)
	if err != nil {
		logger.LogError("Database connection failed", err,
			slog.Duration("attempted_for", time.Since(dbStartTime)))
		os.Exit(-1)
	}
	defer db.Close()
	logger.LogSystem("Database connected",
		slog.String("database", cfg.DB.Database),
		slog.Duration("took", time.Since(dbStartTime)))

	if err = db.InitializeSchema(ctx); err != nil {
		logger.LogError("Failed to initialize database schema", err)
		os.Exit(-1)
	}

	b := slotbot.New(*cfg, version, commit)
	b.DB = db

	h := handler.New()
	if err = b.SetupBot(h, bot.NewListenerFunc(b.OnReady), handlers.MessageHandler(b)); err != nil {
		slog.Error("Failed to setup bot",
			slog.String("type", "sys"),
			slog.Any("error", err),
			slog.String("error_details", fmt.Sprintf("%+v", err)),
			slog.String("component", "bot_setup"),
			slog.String("status", "failed"),
		)
		os.Exit(-1)
	}

	if err = b.SetupSlots(ctx, repositories.NewSlotRepository(db.BunDB()), prometheus.DefaultRegisterer); err != nil {
		logger.LogError("Failed to set up slots", err)
		os.Exit(-1)
	}
	commands.Register(h, b)

	b.Scheduler.Start(b.Processes)
	b.Processes.StartProcess("ping-prune", "Drops @here counters from past days", func(ctx context.Context) {
		pruneLoop(ctx, db, cfg.Slots.PingRetention())
	})
	if cfg.Metrics.Addr != "" {
		b.Processes.StartProcess("metrics", "Prometheus /metrics endpoint", func(ctx context.Context) {
			metrics.Serve(ctx, cfg.Metrics.Addr, prometheus.DefaultGatherer)
		})
	}

	defer func() {
		if err := b.Processes.Shutdown(config.ShutdownTimeout); err != nil {
			logger.LogError("Background processes did not stop in time", err)
		}
		ctx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
		defer cancel()
		b.Client.Close(ctx)
	}()

	if *shouldSyncCommands {
		logger.LogSystem("Syncing commands", slog.Any("guild_ids", cfg.Bot.DevGuilds))
		if err = handler.SyncCommands(b.Client, commands.Commands, cfg.Bot.DevGuilds); err != nil {
			slog.Error("Failed to sync commands",
				slog.String("type", "sys"),
				slog.Any("error", err),
				slog.String("component", "command_sync"),
				slog.String("status", "failed"),
			)
		}
	}

	if err = b.Client.OpenGateway(ctx); err != nil {
		slog.Error("Failed to open gateway",
			slog.String("type", "sys"),
			slog.Any("error", err),
			slog.String("component", "gateway"),
			slog.String("status", "failed"),
		)
		os.Exit(-1)
	}

	logger.LogSystem("Bot is running. Press CTRL-C to exit.")
	s := make(chan os.Signal, 1)
	signal.Notify(s, syscall.SIGINT, syscall.SIGTERM)
	<-s
	logger.LogSystem("Shutting down bot...")
}

func pruneLoop(ctx context.Context, db *database.DB, retention time.Duration) {
	ticker := time.NewTicker(6 * time.Hour)
	defer ticker.Stop()
	for {
		n, err := db.PrunePings(ctx, time.Now().Add(-retention))
		if err != nil {
			logger.LogError("Failed to prune ping counters", err)
		} else if n > 0 {
			logger.LogSystem("Pruned ping counters", slog.Int64("rows", n))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
