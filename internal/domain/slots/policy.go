package slots

import (
	"context"
	"errors"
	"log/slog"
	"regexp"
	"strings"

	"github.com/disgoorg/snowflake/v2"
)

const DefaultHereLimit = 2

var (
	herePattern     = regexp.MustCompile(`(?i)@here`)
	everyonePattern = regexp.MustCompile(`(?i)@everyone`)
)

type Mention int

const (
	MentionNone Mention = iota
	MentionHere
	MentionEveryone
)

var broadcastPattern = regexp.MustCompile(`(?i)@(here|everyone)`)

// StripBroadcast removes @here and @everyone from content.
func StripBroadcast(content string) string {
	return strings.TrimSpace(broadcastPattern.ReplaceAllString(content, ""))
}

// Classify reports the broadest broadcast mention in content.
func Classify(content string) Mention {
	switch {
	case everyonePattern.MatchString(content):
		return MentionEveryone
	case herePattern.MatchString(content):
		return MentionHere
	default:
		return MentionNone
	}
}

type Action int

const (
	ActionAllow Action = iota
	ActionWarn
	ActionRevoke
)

func (a Action) String() string {
	switch a {
	case ActionAllow:
		return "allow"
	case ActionWarn:
		return "warn"
	case ActionRevoke:
		return "revoke"
	default:
		return "unknown"
	}
}

type State int

const (
	StateNormal State = iota
	StateWarned
	StateRevoked
)

func (s State) String() string {
	switch s {
	case StateNormal:
		return "normal"
	case StateWarned:
		return "warned"
	case StateRevoked:
		return "revoked"
	default:
		return "unknown"
	}
}

type Message struct {
	ID        snowflake.ID
	ChannelID snowflake.ID
	AuthorID  snowflake.ID
	AuthorBot bool
	Content   string
}

type Verdict struct {
	Action  Action
	State   State
	Mention Mention
	Count   int
	Reason  string
	// InSlot is set when the message was posted in a slot channel.
	InSlot bool
}

// Revoker is the part of the lifecycle the policy needs.
type Revoker interface {
	RevokeSlot(ctx context.Context, channelID snowflake.ID, reason string, actor Actor) error
}

// Policy enforces broadcast-mention rules inside slot channels.
type Policy struct {
	registry *Registry
	revoker  Revoker
	notifier Notifier
	limit    int
	observer Observer
}

type PolicyOpt func(*Policy)

func WithPolicyObserver(o Observer) PolicyOpt {
	return func(p *Policy) {
		p.observer = observerOrNop(o)
	}
}

func NewPolicy(registry *Registry, revoker Revoker, notifier Notifier, limit int, opts ...PolicyOpt) *Policy {
	if limit <= 0 {
		limit = DefaultHereLimit
	}
	p := &Policy{
		registry: registry,
		revoker:  revoker,
		notifier: notifier,
		limit:    limit,
		observer: nopObserver{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Policy) Limit() int {
	return p.limit
}

// Inspect classifies msg and applies the penalty for its slot, if any.
func (p *Policy) Inspect(ctx context.Context, msg Message) (Verdict, error) {
	v, err := p.inspect(ctx, msg)
	if v.Mention != MentionNone {
		p.observer.MentionInspected(v)
	}
	return v, err
}

func (p *Policy) inspect(ctx context.Context, msg Message) (Verdict, error) {
	if msg.AuthorBot {
		return Verdict{}, nil
	}

	kind := Classify(msg.Content)
	if kind == MentionNone {
		return Verdict{}, nil
	}

	slot, err := p.registry.Get(msg.ChannelID)
	if errors.Is(err, ErrNotFound) {
		return Verdict{Mention: kind}, nil
	}
	if err != nil {
		return Verdict{}, err
	}

	if kind == MentionEveryone {
		return p.revoke(ctx, slot, kind, slot.PingCount, ReasonEveryone)
	}

	count, err := p.registry.BumpPing(ctx, slot.ChannelID, DayKey(p.registry.Now()))
	if errors.Is(err, ErrNotFound) {
		// Revoked between lookup and bump.
		return Verdict{Action: ActionRevoke, State: StateRevoked, Mention: kind, InSlot: true}, nil
	}
	if err != nil {
		return Verdict{}, err
	}

	switch {
	case count > p.limit:
		return p.revoke(ctx, slot, kind, count, ReasonHereLimit)
	case count == p.limit:
		if err := p.notifier.SendDirect(ctx, slot.OwnerID, warnText(slot, count, p.limit)); err != nil {
			slog.Warn("Failed to warn slot owner",
				slog.String("channel_id", slot.ChannelID.String()),
				slog.String("owner_id", slot.OwnerID.String()),
				slog.Any("error", err))
		}
		return Verdict{Action: ActionWarn, State: StateWarned, Mention: kind, Count: count, InSlot: true}, nil
	default:
		return Verdict{Action: ActionAllow, State: StateNormal, Mention: kind, Count: count, InSlot: true}, nil
	}
}

func (p *Policy) revoke(ctx context.Context, slot Slot, kind Mention, count int, reason string) (Verdict, error) {
	v := Verdict{Action: ActionRevoke, State: StateRevoked, Mention: kind, Count: count, Reason: reason, InSlot: true}
	if err := p.revoker.RevokeSlot(ctx, slot.ChannelID, reason, SystemActor); err != nil {
		return v, err
	}
	return v, nil
}
