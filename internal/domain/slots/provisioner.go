package slots

import (
	"context"

	"github.com/disgoorg/snowflake/v2"
)

//go:generate mockgen -destination=mock/provisioner.go -package=mock . Provisioner,Notifier

// Access is the coarse permission level granted to a principal on a slot channel.
type Access int

const (
	// AccessInherit removes any explicit overwrite for the principal.
	AccessInherit Access = iota
	AccessHidden
	AccessReadOnly
	AccessReadWrite
	AccessManage
)

func (a Access) String() string {
	switch a {
	case AccessInherit:
		return "inherit"
	case AccessHidden:
		return "hidden"
	case AccessReadOnly:
		return "read-only"
	case AccessReadWrite:
		return "read-write"
	case AccessManage:
		return "read-write-manage"
	default:
		return "unknown"
	}
}

type PrincipalKind int

const (
	PrincipalRole PrincipalKind = iota
	PrincipalMember
)

type Overwrite struct {
	PrincipalID snowflake.ID
	Kind        PrincipalKind
	Access      Access
}

type ChannelSpec struct {
	Name       string
	ParentID   snowflake.ID
	Topic      string
	Overwrites []Overwrite
}

// Provisioner manages the chat platform resources behind a slot.
type Provisioner interface {
	CreateChannel(ctx context.Context, spec ChannelSpec) (snowflake.ID, error)
	DeleteChannel(ctx context.Context, channelID snowflake.ID, reason string) error
	SetPermission(ctx context.Context, channelID snowflake.ID, overwrite Overwrite) error
	ChannelExists(ctx context.Context, name string) (bool, error)
	// ChannelAlive reports whether the channel with this ID still exists.
	ChannelAlive(ctx context.Context, channelID snowflake.ID) (bool, error)
	SendMessage(ctx context.Context, channelID snowflake.ID, content string) (snowflake.ID, error)
	EditMessage(ctx context.Context, channelID snowflake.ID, messageID snowflake.ID, content string) error
	DeleteMessage(ctx context.Context, channelID snowflake.ID, messageID snowflake.ID, reason string) error
}

// Notifier delivers private messages. Delivery may fail when the recipient
// has DMs closed; callers log and move on.
type Notifier interface {
	SendDirect(ctx context.Context, userID snowflake.ID, content string) error
}
