// Copyright 2024-2026 Aiku AI

package irc

import (
	"fmt"
	"regexp"

	"maunium.net/go/mautrix/id"
)

// IdentityMatcher decides whether a Matrix identifier belongs to this
// bridge's virtual-user namespace and translates between IRC names and the
// Matrix identifiers that encode them. This is a security boundary: a claim
// that matches too loosely lets a user on another homeserver impersonate a
// bridged IRC user.
//
// The matcher is built once from the network config and never mutated, so
// any number of goroutines may call its methods without synchronization.
type IdentityMatcher struct {
	domain     string
	homeserver string

	userTemplate        string
	displaynameTemplate string
	aliasTemplate       string

	claimUser  *regexp.Regexp
	parseUser  *regexp.Regexp
	claimAlias *regexp.Regexp
	parseAlias *regexp.Regexp
}

// NewIdentityMatcher precompiles the claim and extraction patterns for the
// given templates. The homeserver is anchored as a literal, escaped suffix
// in every pattern, so identifiers from other homeservers are never claimed
// even when their localpart matches the template shape.
func NewIdentityMatcher(domain, homeserver, userTemplate, displaynameTemplate, aliasTemplate string) *IdentityMatcher {
	m := &IdentityMatcher{
		domain:              domain,
		homeserver:          homeserver,
		userTemplate:        userTemplate,
		displaynameTemplate: displaynameTemplate,
		aliasTemplate:       aliasTemplate,
	}
	server := map[string]string{PlaceholderServer: domain}
	suffix := escapeRegex(":" + homeserver)
	// Claims use a greedy wildcard, extraction a non-greedy capture. With
	// both ends anchored they accept the same inputs; the non-greedy capture
	// keeps the extracted name stable when it contains the suffix separator.
	m.claimUser = compileTemplatePattern(userTemplate, server,
		map[string]string{PlaceholderNick: ".*"}, suffix)
	m.parseUser = compileTemplatePattern(userTemplate, server,
		map[string]string{PlaceholderNick: "(.*?)"}, suffix)
	m.claimAlias = compileTemplatePattern(aliasTemplate, server,
		map[string]string{PlaceholderChannel: ".*"}, suffix)
	m.parseAlias = compileTemplatePattern(aliasTemplate, server,
		map[string]string{PlaceholderChannel: "(.*?)"}, suffix)
	return m
}

// ClaimsUserID reports whether the given Matrix user ID was minted by this
// bridge's user template.
func (m *IdentityMatcher) ClaimsUserID(userID id.UserID) bool {
	return m.claimUser.MatchString(string(userID))
}

// NickFromUserID extracts the IRC nick embedded in a bridge-minted user ID.
// An ID that is not claimed, or that encodes an empty nick, yields ok=false.
func (m *IdentityMatcher) NickFromUserID(userID id.UserID) (nick string, ok bool) {
	// A template missing $NICK compiles to a pattern without a capture
	// group; that counts as no match, same as an empty capture.
	match := m.parseUser.FindStringSubmatch(string(userID))
	if len(match) < 2 || match[1] == "" {
		return "", false
	}
	return match[1], true
}

// FormatUserID renders the Matrix user ID for an IRC nick.
func (m *IdentityMatcher) FormatUserID(nick string) id.UserID {
	localpart := renderTemplate(m.userTemplate, map[string]string{
		PlaceholderServer: m.domain,
		PlaceholderNick:   nick,
	})
	return id.UserID(localpart + ":" + m.homeserver)
}

// FormatDisplayname renders the Matrix displayname for an IRC nick.
func (m *IdentityMatcher) FormatDisplayname(nick string) string {
	return renderTemplate(m.displaynameTemplate, map[string]string{
		PlaceholderServer: m.domain,
		PlaceholderNick:   nick,
	})
}

// ClaimsAlias reports whether the given room alias was minted by this
// bridge's alias template.
func (m *IdentityMatcher) ClaimsAlias(alias id.RoomAlias) bool {
	return m.claimAlias.MatchString(string(alias))
}

// ChannelFromAlias extracts the IRC channel name embedded in a bridge-minted
// room alias. ok=false when the alias is not claimed or encodes an empty
// channel name.
func (m *IdentityMatcher) ChannelFromAlias(alias id.RoomAlias) (channel string, ok bool) {
	match := m.parseAlias.FindStringSubmatch(string(alias))
	if len(match) < 2 || match[1] == "" {
		return "", false
	}
	return match[1], true
}

// FormatAlias renders the Matrix room alias for an IRC channel.
func (m *IdentityMatcher) FormatAlias(channel string) id.RoomAlias {
	localpart := renderTemplate(m.aliasTemplate, map[string]string{
		PlaceholderServer:  m.domain,
		PlaceholderChannel: channel,
	})
	return id.RoomAlias(localpart + ":" + m.homeserver)
}

// SelfTest renders synthetic names through both templates and extracts them
// back. Misconfigured templates (a missing $NICK, stray pattern syntax) are
// caught here at startup instead of deep inside event handling.
func (m *IdentityMatcher) SelfTest() error {
	const nick = "roundtrip"
	userID := m.FormatUserID(nick)
	if !m.ClaimsUserID(userID) {
		return fmt.Errorf("user template %q: rendered ID %s is not claimed back", m.userTemplate, userID)
	}
	if got, ok := m.NickFromUserID(userID); !ok || got != nick {
		return fmt.Errorf("user template %q: rendered ID %s extracts nick %q, want %q", m.userTemplate, userID, got, nick)
	}
	const channel = "#roundtrip"
	alias := m.FormatAlias(channel)
	if !m.ClaimsAlias(alias) {
		return fmt.Errorf("alias template %q: rendered alias %s is not claimed back", m.aliasTemplate, alias)
	}
	if got, ok := m.ChannelFromAlias(alias); !ok || got != channel {
		return fmt.Errorf("alias template %q: rendered alias %s extracts channel %q, want %q", m.aliasTemplate, alias, got, channel)
	}
	return nil
}
