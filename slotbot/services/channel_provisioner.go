package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/rest"
	"github.com/disgoorg/snowflake/v2"
	"github.com/ellavondegurechaff/slotbot/internal/domain/slots"
)

// ChannelREST is the subset of the disgo REST client the provisioner uses.
type ChannelREST interface {
	CreateGuildChannel(guildID snowflake.ID, guildChannelCreate discord.GuildChannelCreate, opts ...rest.RequestOpt) (discord.GuildChannel, error)
	GetGuildChannels(guildID snowflake.ID, opts ...rest.RequestOpt) ([]discord.GuildChannel, error)
	DeleteChannel(channelID snowflake.ID, opts ...rest.RequestOpt) error
	UpdatePermissionOverwrite(channelID snowflake.ID, overwriteID snowflake.ID, permissionOverwrite discord.PermissionOverwriteUpdate, opts ...rest.RequestOpt) error
	DeletePermissionOverwrite(channelID snowflake.ID, overwriteID snowflake.ID, opts ...rest.RequestOpt) error
	CreateMessage(channelID snowflake.ID, messageCreate discord.MessageCreate, opts ...rest.RequestOpt) (*discord.Message, error)
	UpdateMessage(channelID snowflake.ID, messageID snowflake.ID, messageUpdate discord.MessageUpdate, opts ...rest.RequestOpt) (*discord.Message, error)
	DeleteMessage(channelID snowflake.ID, messageID snowflake.ID, opts ...rest.RequestOpt) error
	GetChannel(channelID snowflake.ID, opts ...rest.RequestOpt) (discord.Channel, error)
}

const (
	readOnlyAllow  = discord.PermissionViewChannel | discord.PermissionReadMessageHistory
	readWriteAllow = readOnlyAllow | discord.PermissionSendMessages | discord.PermissionEmbedLinks |
		discord.PermissionAttachFiles | discord.PermissionMentionEveryone
	manageAllow = readWriteAllow | discord.PermissionManageChannels | discord.PermissionManageMessages |
		discord.PermissionManageRoles
)

// ChannelProvisioner manages slot channels in a single guild.
type ChannelProvisioner struct {
	rest    ChannelREST
	guildID snowflake.ID
}

var _ slots.Provisioner = (*ChannelProvisioner)(nil)

func NewChannelProvisioner(client ChannelREST, guildID snowflake.ID) *ChannelProvisioner {
	return &ChannelProvisioner{rest: client, guildID: guildID}
}

func (p *ChannelProvisioner) CreateChannel(ctx context.Context, spec slots.ChannelSpec) (snowflake.ID, error) {
	overwrites := make([]discord.PermissionOverwrite, 0, len(spec.Overwrites))
	for _, o := range spec.Overwrites {
		if o.Access == slots.AccessInherit {
			continue
		}
		overwrites = append(overwrites, toOverwrite(o))
	}

	create := discord.GuildTextChannelCreate{
		Name:                 spec.Name,
		Topic:                spec.Topic,
		ParentID:             spec.ParentID,
		PermissionOverwrites: overwrites,
	}

	ch, err := p.rest.CreateGuildChannel(p.guildID, create, rest.WithCtx(ctx))
	if err != nil {
		return 0, fmt.Errorf("failed to create channel %q: %w", spec.Name, err)
	}
	return ch.ID(), nil
}

func (p *ChannelProvisioner) DeleteChannel(ctx context.Context, channelID snowflake.ID, reason string) error {
	if err := p.rest.DeleteChannel(channelID, rest.WithCtx(ctx), rest.WithReason(reason)); err != nil {
		if isUnknown(err) {
			slog.Debug("Slot channel already gone", slog.String("channel_id", channelID.String()))
			return nil
		}
		return fmt.Errorf("failed to delete channel: %w", err)
	}
	return nil
}

func (p *ChannelProvisioner) SetPermission(ctx context.Context, channelID snowflake.ID, o slots.Overwrite) error {
	if o.Access == slots.AccessInherit {
		err := p.rest.DeletePermissionOverwrite(channelID, o.PrincipalID, rest.WithCtx(ctx))
		if err != nil && !isUnknown(err) {
			return fmt.Errorf("failed to clear permissions: %w", err)
		}
		return nil
	}

	allow, deny := permissions(o.Access)
	var update discord.PermissionOverwriteUpdate
	if o.Kind == slots.PrincipalRole {
		update = discord.RolePermissionOverwriteUpdate{Allow: &allow, Deny: &deny}
	} else {
		update = discord.MemberPermissionOverwriteUpdate{Allow: &allow, Deny: &deny}
	}
	if err := p.rest.UpdatePermissionOverwrite(channelID, o.PrincipalID, update, rest.WithCtx(ctx)); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	return nil
}

func (p *ChannelProvisioner) ChannelExists(ctx context.Context, name string) (bool, error) {
	channels, err := p.rest.GetGuildChannels(p.guildID, rest.WithCtx(ctx))
	if err != nil {
		return false, fmt.Errorf("failed to list channels: %w", err)
	}
	for _, ch := range channels {
		if strings.EqualFold(ch.Name(), name) {
			return true, nil
		}
	}
	return false, nil
}

func (p *ChannelProvisioner) ChannelAlive(ctx context.Context, channelID snowflake.ID) (bool, error) {
	if _, err := p.rest.GetChannel(channelID, rest.WithCtx(ctx)); err != nil {
		if isUnknown(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to get channel: %w", err)
	}
	return true, nil
}

func (p *ChannelProvisioner) SendMessage(ctx context.Context, channelID snowflake.ID, content string) (snowflake.ID, error) {
	msg, err := p.rest.CreateMessage(channelID, discord.MessageCreate{
		Content:         content,
		AllowedMentions: &discord.AllowedMentions{Parse: []discord.AllowedMentionType{discord.AllowedMentionTypeUsers}},
	}, rest.WithCtx(ctx))
	if err != nil {
		return 0, fmt.Errorf("failed to send message: %w", err)
	}
	return msg.ID, nil
}

func (p *ChannelProvisioner) EditMessage(ctx context.Context, channelID, messageID snowflake.ID, content string) error {
	if _, err := p.rest.UpdateMessage(channelID, messageID, discord.MessageUpdate{Content: &content}, rest.WithCtx(ctx)); err != nil {
		return fmt.Errorf("failed to edit message: %w", err)
	}
	return nil
}

// DeleteMessage removes a message; one that is already gone counts as deleted.
func (p *ChannelProvisioner) DeleteMessage(ctx context.Context, channelID, messageID snowflake.ID, reason string) error {
	if err := p.rest.DeleteMessage(channelID, messageID, rest.WithCtx(ctx), rest.WithReason(reason)); err != nil {
		if isUnknown(err) {
			return nil
		}
		return fmt.Errorf("failed to delete message: %w", err)
	}
	return nil
}

func permissions(access slots.Access) (allow, deny discord.Permissions) {
	switch access {
	case slots.AccessHidden:
		return discord.PermissionsNone, discord.PermissionViewChannel
	case slots.AccessReadOnly:
		return readOnlyAllow, discord.PermissionSendMessages | discord.PermissionMentionEveryone
	case slots.AccessReadWrite:
		return readWriteAllow, discord.PermissionsNone
	case slots.AccessManage:
		return manageAllow, discord.PermissionsNone
	default:
		return discord.PermissionsNone, discord.PermissionsNone
	}
}

func toOverwrite(o slots.Overwrite) discord.PermissionOverwrite {
	allow, deny := permissions(o.Access)
	if o.Kind == slots.PrincipalRole {
		return discord.RolePermissionOverwrite{RoleID: o.PrincipalID, Allow: allow, Deny: deny}
	}
	return discord.MemberPermissionOverwrite{UserID: o.PrincipalID, Allow: allow, Deny: deny}
}

// isUnknown reports Discord's 404 "unknown ..." responses.
func isUnknown(err error) bool {
	var restErr *rest.Error
	if errors.As(err, &restErr) && restErr.Response != nil {
		return restErr.Response.StatusCode == http.StatusNotFound
	}
	return false
}
