package services

import (
	"context"
	"fmt"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/rest"
	"github.com/disgoorg/snowflake/v2"
	"github.com/ellavondegurechaff/slotbot/internal/domain/slots"
	lru "github.com/hashicorp/golang-lru"
	"golang.org/x/time/rate"
)

// DirectREST is the subset of the disgo REST client used for direct messages.
type DirectREST interface {
	CreateDMChannel(userID snowflake.ID, opts ...rest.RequestOpt) (*discord.DMChannel, error)
	CreateMessage(channelID snowflake.ID, messageCreate discord.MessageCreate, opts ...rest.RequestOpt) (*discord.Message, error)
}

// DMNotifier sends direct messages to slot owners. DM channel IDs are cached
// and sends are paced so a sweep revoking many slots does not trip Discord's
// DM spam limits.
type DMNotifier struct {
	rest     DirectREST
	channels *lru.Cache
	limiter  *rate.Limiter
}

var _ slots.Notifier = (*DMNotifier)(nil)

func NewDMNotifier(client DirectREST, cacheSize int, perSecond float64, burst int) (*DMNotifier, error) {
	cache, err := lru.New(cacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create dm channel cache: %w", err)
	}
	return &DMNotifier{
		rest:     client,
		channels: cache,
		limiter:  rate.NewLimiter(rate.Limit(perSecond), burst),
	}, nil
}

func (n *DMNotifier) SendDirect(ctx context.Context, userID snowflake.ID, content string) error {
	if err := n.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("dm rate limit: %w", err)
	}

	channelID, err := n.dmChannel(ctx, userID)
	if err != nil {
		return err
	}

	_, err = n.rest.CreateMessage(channelID, discord.MessageCreate{Content: content}, rest.WithCtx(ctx))
	if err != nil {
		// The DM channel may be stale; look it up again next time.
		n.channels.Remove(userID)
		return fmt.Errorf("failed to send dm: %w", err)
	}
	return nil
}

func (n *DMNotifier) dmChannel(ctx context.Context, userID snowflake.ID) (snowflake.ID, error) {
	if cached, ok := n.channels.Get(userID); ok {
		return cached.(snowflake.ID), nil
	}
	ch, err := n.rest.CreateDMChannel(userID, rest.WithCtx(ctx))
	if err != nil {
		return 0, fmt.Errorf("failed to open dm channel: %w", err)
	}
	n.channels.Add(userID, ch.ID())
	return ch.ID(), nil
}
