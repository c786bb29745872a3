// Copyright 2024-2026 Aiku AI

package irc

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	up "go.mau.fi/util/configupgrade"
	"gopkg.in/yaml.v3"
	"maunium.net/go/mautrix/id"
)

//go:embed example-config.yaml
var ExampleConfig string

// Default identifier templates, used when the config leaves them empty.
const (
	DefaultUserTemplate        = "@irc_$SERVER_$NICK"
	DefaultDisplaynameTemplate = "$NICK (IRC)"
	DefaultAliasTemplate       = "#irc_$SERVER_$CHANNEL"
	DefaultNickTemplate        = "M-$DISPLAY"
)

// Config holds the per-network configuration for the bridge. It is loaded
// once at startup; after PostProcess it is immutable and safe for
// concurrent reads.
type Config struct {
	// Domain is the IRC network's domain, substituted for $SERVER in the
	// identifier templates.
	Domain string `yaml:"domain"`
	// HomeserverDomain is appended (escaped) to every rendered identifier
	// and anchors the claim patterns.
	HomeserverDomain string `yaml:"homeserver_domain"`

	BotConfig       BotConfig             `yaml:"bot_config"`
	PrivateMessages PrivateMessagesConfig `yaml:"private_messages"`
	DynamicChannels DynamicChannelsConfig `yaml:"dynamic_channels"`
	MatrixClients   MatrixClientsConfig   `yaml:"matrix_clients"`
	IRCClients      IRCClientsConfig      `yaml:"irc_clients"`
	MembershipLists MembershipSyncConfig  `yaml:"membership_lists"`

	matcher    *IdentityMatcher
	nickMapper *NickMapper
}

// BotConfig configures the network's bridge bot presence.
type BotConfig struct {
	Enabled               bool   `yaml:"enabled"`
	Nick                  string `yaml:"nick"`
	JoinChannelsIfNoUsers bool   `yaml:"join_channels_if_no_users"`
}

// PrivateMessagesConfig controls 1:1 bridging.
type PrivateMessagesConfig struct {
	Enabled           bool `yaml:"enabled"`
	FederationAllowed bool `yaml:"federation_allowed"`
}

// DynamicChannelsConfig controls on-demand channel bridging via aliases.
type DynamicChannelsConfig struct {
	Enabled       bool        `yaml:"enabled"`
	Published     bool        `yaml:"published"`
	CreateAlias   bool        `yaml:"create_alias"`
	JoinRule      string      `yaml:"join_rule"`
	AliasTemplate string      `yaml:"alias_template"`
	Whitelist     []id.UserID `yaml:"whitelist"`
}

// MatrixClientsConfig configures the virtual Matrix users minted for IRC
// users.
type MatrixClientsConfig struct {
	UserTemplate        string `yaml:"user_template"`
	DisplaynameTemplate string `yaml:"displayname_template"`
	JoinAttempts        int    `yaml:"join_attempts"`
}

// IRCClientsConfig configures the virtual IRC clients minted for Matrix
// users.
type IRCClientsConfig struct {
	NickTemplate     string `yaml:"nick_template"`
	AllowNickChanges bool   `yaml:"allow_nick_changes"`
	MaxClients       int    `yaml:"max_clients"`
	// IdleTimeout is in seconds; 0 disables idle disconnection.
	IdleTimeout int `yaml:"idle_timeout"`
	// IllegalNickChars overrides the character class stripped during nick
	// derivation. Empty uses DefaultIllegalNickChars.
	IllegalNickChars string `yaml:"illegal_nick_chars"`
}

func (c *Config) UnmarshalYAML(node *yaml.Node) error {
	type rawConfig Config
	return node.Decode((*rawConfig)(c))
}

// PostProcess fills template defaults, builds the identity matcher and nick
// mapper, and runs the render/extract round-trip self-test so that broken
// templates fail at startup rather than during event handling.
func (c *Config) PostProcess() error {
	if c.MatrixClients.UserTemplate == "" {
		c.MatrixClients.UserTemplate = DefaultUserTemplate
	}
	if c.MatrixClients.DisplaynameTemplate == "" {
		c.MatrixClients.DisplaynameTemplate = DefaultDisplaynameTemplate
	}
	if c.DynamicChannels.AliasTemplate == "" {
		c.DynamicChannels.AliasTemplate = DefaultAliasTemplate
	}
	if c.IRCClients.NickTemplate == "" {
		c.IRCClients.NickTemplate = DefaultNickTemplate
	}

	nickMapper, err := NewNickMapper(c.IRCClients.NickTemplate, c.IRCClients.IllegalNickChars)
	if err != nil {
		return fmt.Errorf("failed to post-process config: %w", err)
	}
	c.nickMapper = nickMapper

	c.matcher = NewIdentityMatcher(
		c.Domain, c.HomeserverDomain,
		c.MatrixClients.UserTemplate,
		c.MatrixClients.DisplaynameTemplate,
		c.DynamicChannels.AliasTemplate,
	)
	if err := c.matcher.SelfTest(); err != nil {
		return fmt.Errorf("failed to post-process config: %w", err)
	}
	return nil
}

// Validate logs warnings for config entries that are syntactically legal but
// cannot have any effect. The checks themselves are pure predicates; only
// the logging is a side effect, which is why this is separate from
// PostProcess.
func (c *Config) Validate(log zerolog.Logger) {
	if !strings.Contains(c.IRCClients.NickTemplate, PlaceholderDisplay) &&
		!strings.Contains(c.IRCClients.NickTemplate, PlaceholderUserID) &&
		!strings.Contains(c.IRCClients.NickTemplate, PlaceholderLocalpart) {
		log.Warn().
			Str("nick_template", c.IRCClients.NickTemplate).
			Msg("Nick template references no placeholder, every Matrix user will collide on the same nick")
	}
	for _, rule := range c.MembershipLists.Rooms {
		if !rule.Valid() {
			log.Warn().
				Str("room", string(rule.Room)).
				Msg("Malformed room ID in membership_lists.rooms, override will never match")
		}
	}
	for _, rule := range c.MembershipLists.Channels {
		if !rule.Valid() {
			log.Warn().
				Str("channel", rule.Channel).
				Msg("Malformed channel name in membership_lists.channels, override will never match")
		}
	}
}

// Matcher returns the identity matcher built by PostProcess.
func (c *Config) Matcher() *IdentityMatcher {
	return c.matcher
}

// NickMapper returns the nick mapper built by PostProcess.
func (c *Config) NickMapper() *NickMapper {
	return c.nickMapper
}

// AllowsNickChanges reports whether Matrix users may change their IRC nick.
func (c *Config) AllowsNickChanges() bool {
	return c.IRCClients.AllowNickChanges
}

// AllowsPMs reports whether private messages are bridged at all.
func (c *Config) AllowsPMs() bool {
	return c.PrivateMessages.Enabled
}

// ShouldFederatePMs reports whether bridged PM rooms allow federation.
func (c *Config) ShouldFederatePMs() bool {
	return c.PrivateMessages.FederationAllowed
}

// CreatesDynamicAliases reports whether the bridge publishes aliases for
// dynamically bridged channels.
func (c *Config) CreatesDynamicAliases() bool {
	return c.DynamicChannels.Enabled && c.DynamicChannels.CreateAlias
}

// ShouldPublishRooms reports whether dynamically bridged rooms go in the
// public room directory.
func (c *Config) ShouldPublishRooms() bool {
	return c.DynamicChannels.Published
}

// GetJoinRule returns the join rule for dynamically bridged rooms,
// defaulting to public.
func (c *Config) GetJoinRule() string {
	if c.DynamicChannels.JoinRule == "" {
		return "public"
	}
	return c.DynamicChannels.JoinRule
}

// IsInWhitelist reports whether the user may join dynamically bridged
// channels. An empty whitelist admits everyone.
func (c *Config) IsInWhitelist(userID id.UserID) bool {
	if len(c.DynamicChannels.Whitelist) == 0 {
		return true
	}
	for _, allowed := range c.DynamicChannels.Whitelist {
		if allowed == userID {
			return true
		}
	}
	return false
}

func upgradeConfig(helper up.Helper) {
	helper.Copy(up.Str, "domain")
	helper.Copy(up.Str, "homeserver_domain")
	helper.Copy(up.Bool, "bot_config", "enabled")
	helper.Copy(up.Str, "bot_config", "nick")
	helper.Copy(up.Bool, "bot_config", "join_channels_if_no_users")
	helper.Copy(up.Bool, "private_messages", "enabled")
	helper.Copy(up.Bool, "private_messages", "federation_allowed")
	helper.Copy(up.Bool, "dynamic_channels", "enabled")
	helper.Copy(up.Bool, "dynamic_channels", "published")
	helper.Copy(up.Bool, "dynamic_channels", "create_alias")
	helper.Copy(up.Str, "dynamic_channels", "join_rule")
	helper.Copy(up.Str, "dynamic_channels", "alias_template")
	helper.Copy(up.List, "dynamic_channels", "whitelist")
	helper.Copy(up.Str, "matrix_clients", "user_template")
	helper.Copy(up.Str, "matrix_clients", "displayname_template")
	helper.Copy(up.Int, "matrix_clients", "join_attempts")
	helper.Copy(up.Str, "irc_clients", "nick_template")
	helper.Copy(up.Bool, "irc_clients", "allow_nick_changes")
	helper.Copy(up.Int, "irc_clients", "max_clients")
	helper.Copy(up.Int, "irc_clients", "idle_timeout")
	helper.Copy(up.Str, "irc_clients", "illegal_nick_chars")
	helper.Copy(up.Bool, "membership_lists", "enabled")
	helper.Copy(up.Map, "membership_lists", "global")
	helper.Copy(up.List, "membership_lists", "rooms")
	helper.Copy(up.List, "membership_lists", "channels")
}

// ConfigUpgrader returns the configupgrade upgrader for this config block.
func ConfigUpgrader() up.Upgrader {
	return &up.StructUpgrader{
		SimpleUpgrader: up.SimpleUpgrader(upgradeConfig),
		Blocks:         nil,
		Base:           ExampleConfig,
	}
}
