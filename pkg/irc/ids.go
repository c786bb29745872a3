// Copyright 2024-2026 Aiku AI

package irc

import (
	"strings"

	"maunium.net/go/mautrix/bridgev2/networkid"
)

// MakeUserID creates a networkid.UserID from an IRC nick. Nicks are
// case-insensitive on IRC, so the ID is folded to lower case to keep ghost
// lookups stable across nick-case changes.
func MakeUserID(nick string) networkid.UserID {
	return networkid.UserID(strings.ToLower(nick))
}

// ParseUserID extracts the (folded) IRC nick from a networkid.UserID.
func ParseUserID(userID networkid.UserID) string {
	return string(userID)
}

// MakePortalID creates a networkid.PortalID from an IRC channel name.
// Channel names are case-insensitive like nicks.
func MakePortalID(channel string) networkid.PortalID {
	return networkid.PortalID(strings.ToLower(channel))
}

// ParsePortalID extracts the IRC channel name from a PortalID.
func ParsePortalID(portalID networkid.PortalID) string {
	return string(portalID)
}

// MakeUserLoginID creates a UserLoginID from the nick a Matrix user
// connects with.
func MakeUserLoginID(nick string) networkid.UserLoginID {
	return networkid.UserLoginID(strings.ToLower(nick))
}

// makePortalKey creates a networkid.PortalKey from an IRC channel name.
func makePortalKey(channel string) networkid.PortalKey {
	return networkid.PortalKey{
		ID: MakePortalID(channel),
	}
}
