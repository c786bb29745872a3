// Copyright 2024-2026 Aiku AI

// Package irc implements the identity and policy core of a Matrix-IRC
// bridge: template-driven translation between IRC names (nicks, channels)
// and the Matrix user IDs and room aliases that represent them, nick
// derivation for Matrix users appearing on IRC, and membership-list sync
// policy resolution.
//
// # Identifier templates
//
// Virtual Matrix user IDs and room aliases are minted from operator-supplied
// templates such as "@irc_$SERVER_$NICK". The same template is compiled into
// an anchored regular expression for the reverse direction. That reverse
// direction is a security boundary: [IdentityMatcher.ClaimsUserID] decides
// whether an incoming Matrix ID belongs to this bridge, so an escaping bug
// there is a spoofing bug. The compiler substitutes literal values, escapes
// the entire intermediate string, then splices raw pattern fragments in over
// the doubly-escaped placeholder tokens, and finally anchors the homeserver
// domain as a literal suffix.
//
// # Membership sync policy
//
// [MembershipSyncConfig] resolves whether a membership change crosses the
// bridge, from a global per-direction default plus ordered per-room and
// per-channel overrides. Matching overrides are applied in configuration
// order and the last one wins.
//
// # Purity
//
// Everything here is built once from static configuration via
// [Config.PostProcess] and is immutable afterwards. All operations are pure
// and safe for unsynchronized concurrent use. Connection handling and
// message routing live in the network layer, not in this package.
package irc
