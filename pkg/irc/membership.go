// Copyright 2024-2026 Aiku AI

package irc

import (
	"errors"
	"fmt"
	"strings"

	"maunium.net/go/mautrix/id"
)

// MembershipSyncKind distinguishes the one-time join/leave sync performed
// when a room or channel is first bridged from the ongoing sync of
// individual membership changes.
type MembershipSyncKind string

const (
	SyncInitial     MembershipSyncKind = "initial"
	SyncIncremental MembershipSyncKind = "incremental"
)

// ErrInvalidSyncKind is returned when a caller passes a sync kind outside
// {initial, incremental}. This is a contract violation, never silently
// defaulted.
var ErrInvalidSyncKind = errors.New("invalid membership sync kind")

func (k MembershipSyncKind) validate() error {
	switch k {
	case SyncInitial, SyncIncremental:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrInvalidSyncKind, k)
	}
}

// SyncFlags holds the per-kind sync toggles for one direction.
type SyncFlags struct {
	Initial     bool `yaml:"initial"`
	Incremental bool `yaml:"incremental"`
}

func (f SyncFlags) forKind(kind MembershipSyncKind) bool {
	if kind == SyncInitial {
		return f.Initial
	}
	return f.Incremental
}

// GlobalSyncFlags holds the network-wide sync defaults per direction.
type GlobalSyncFlags struct {
	IRCToMatrix SyncFlags `yaml:"irc_to_matrix"`
	MatrixToIRC SyncFlags `yaml:"matrix_to_irc"`
}

// RoomOverride overrides the Matrix-to-IRC sync defaults for one room.
type RoomOverride struct {
	Room        id.RoomID `yaml:"room"`
	MatrixToIRC SyncFlags `yaml:"matrix_to_irc"`
}

// Valid reports whether the override names a plausible Matrix room ID.
// The resolver matches by exact equality, so a malformed ID never fires;
// the config loader is expected to log against this predicate.
func (r RoomOverride) Valid() bool {
	return strings.HasPrefix(string(r.Room), "!") && strings.ContainsRune(string(r.Room), ':')
}

// ChannelOverride overrides the IRC-to-Matrix sync defaults for one channel.
type ChannelOverride struct {
	Channel     string    `yaml:"channel"`
	IRCToMatrix SyncFlags `yaml:"irc_to_matrix"`
}

// Valid reports whether the override names a plausible IRC channel.
func (c ChannelOverride) Valid() bool {
	return strings.HasPrefix(c.Channel, "#") || strings.HasPrefix(c.Channel, "&")
}

// MembershipSyncConfig controls which membership changes cross the bridge.
// Overrides are kept in configuration order, not in a lookup table: the
// resolver applies every matching entry in turn, so when several rules name
// the same room or channel the last one in the list wins. That ordering is
// part of the configuration contract.
type MembershipSyncConfig struct {
	Enabled  bool              `yaml:"enabled"`
	Global   GlobalSyncFlags   `yaml:"global"`
	Rooms    []RoomOverride    `yaml:"rooms"`
	Channels []ChannelOverride `yaml:"channels"`
}

// ShouldSyncToIRC resolves whether a Matrix membership change in the given
// room should be mirrored into IRC. An empty roomID resolves the global
// default. When sync is disabled for the network, the answer is false no
// matter what the overrides say.
func (m *MembershipSyncConfig) ShouldSyncToIRC(kind MembershipSyncKind, roomID id.RoomID) (bool, error) {
	if err := kind.validate(); err != nil {
		return false, err
	}
	if !m.Enabled {
		return false, nil
	}
	sync := m.Global.MatrixToIRC.forKind(kind)
	if roomID == "" {
		return sync, nil
	}
	for _, rule := range m.Rooms {
		if rule.Room == roomID {
			sync = rule.MatrixToIRC.forKind(kind)
		}
	}
	return sync, nil
}

// ShouldSyncToMatrix resolves whether an IRC membership change on the given
// channel should be mirrored into Matrix. An empty channel resolves the
// global default.
func (m *MembershipSyncConfig) ShouldSyncToMatrix(kind MembershipSyncKind, channel string) (bool, error) {
	if err := kind.validate(); err != nil {
		return false, err
	}
	if !m.Enabled {
		return false, nil
	}
	sync := m.Global.IRCToMatrix.forKind(kind)
	if channel == "" {
		return sync, nil
	}
	for _, rule := range m.Channels {
		if rule.Channel == channel {
			sync = rule.IRCToMatrix.forKind(kind)
		}
	}
	return sync, nil
}
