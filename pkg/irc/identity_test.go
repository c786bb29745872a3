// Copyright 2024-2026 Aiku AI

package irc

import (
	"testing"

	"maunium.net/go/mautrix/id"
)

func testMatcher() *IdentityMatcher {
	return NewIdentityMatcher(
		"freenode", "example.org",
		"@$SERVER_$NICK",
		"$NICK (IRC)",
		"#irc_$SERVER_$CHANNEL",
	)
}

func TestFormatUserID(t *testing.T) {
	t.Parallel()
	got := testMatcher().FormatUserID("bob")
	if got != id.UserID("@freenode_bob:example.org") {
		t.Errorf("FormatUserID: got %q, want %q", got, "@freenode_bob:example.org")
	}
}

func TestClaimsUserID(t *testing.T) {
	t.Parallel()
	m := testMatcher()
	tests := []struct {
		name   string
		userID id.UserID
		want   bool
	}{
		{"own ghost", "@freenode_bob:example.org", true},
		{"other homeserver", "@freenode_bob:other.org", false},
		{"homeserver with trailing garbage", "@freenode_bob:example.org.evil", false},
		{"wrong server prefix", "@oftc_bob:example.org", false},
		{"plain user", "@bob:example.org", false},
		{"empty", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := m.ClaimsUserID(tt.userID); got != tt.want {
				t.Errorf("ClaimsUserID(%q) = %v, want %v", tt.userID, got, tt.want)
			}
		})
	}
}

func TestNickFromUserID(t *testing.T) {
	t.Parallel()
	m := testMatcher()
	tests := []struct {
		name     string
		userID   id.UserID
		wantNick string
		wantOK   bool
	}{
		{"simple", "@freenode_bob:example.org", "bob", true},
		{"nick with separator", "@freenode_a:b:example.org", "a:b", true},
		{"not claimed", "@freenode_bob:other.org", "", false},
		{"empty nick is no match", "@freenode_:example.org", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			nick, ok := m.NickFromUserID(tt.userID)
			if ok != tt.wantOK || nick != tt.wantNick {
				t.Errorf("NickFromUserID(%q) = (%q, %v), want (%q, %v)",
					tt.userID, nick, ok, tt.wantNick, tt.wantOK)
			}
		})
	}
}

func TestUserIDRoundTrip(t *testing.T) {
	t.Parallel()
	m := testMatcher()
	nicks := []string{"bob", "Bob", "b.b", "nick{x}", "a:b", "we|rd", "[ops]"}
	for _, nick := range nicks {
		userID := m.FormatUserID(nick)
		if !m.ClaimsUserID(userID) {
			t.Errorf("rendered ID %q for nick %q is not claimed", userID, nick)
		}
		got, ok := m.NickFromUserID(userID)
		if !ok || got != nick {
			t.Errorf("round trip for %q: got (%q, %v)", nick, got, ok)
		}
	}
}

// A domain containing regex metacharacters must match itself literally, not
// as a pattern. Getting this wrong turns the claim check into a spoofing
// vector.
func TestClaimsUserIDEscapesDomain(t *testing.T) {
	t.Parallel()
	m := NewIdentityMatcher(
		"irc.libera.chat", "matrix.example.org",
		"@$SERVER/$NICK",
		"$NICK",
		"#$SERVER_$CHANNEL",
	)
	if !m.ClaimsUserID("@irc.libera.chat/bob:matrix.example.org") {
		t.Error("legitimate ghost ID not claimed")
	}
	if m.ClaimsUserID("@ircXlibera.chat/bob:matrix.example.org") {
		t.Error("dot in domain matched as wildcard in claim pattern")
	}
	if m.ClaimsUserID("@irc.libera.chat/bob:matrixXexample.org") {
		t.Error("dot in homeserver suffix matched as wildcard")
	}
}

func TestFormatDisplayname(t *testing.T) {
	t.Parallel()
	got := testMatcher().FormatDisplayname("bob")
	if got != "bob (IRC)" {
		t.Errorf("FormatDisplayname: got %q, want %q", got, "bob (IRC)")
	}
}

func TestFormatAlias(t *testing.T) {
	t.Parallel()
	got := testMatcher().FormatAlias("#python")
	if got != id.RoomAlias("#irc_freenode_#python:example.org") {
		t.Errorf("FormatAlias: got %q", got)
	}
}

func TestClaimsAlias(t *testing.T) {
	t.Parallel()
	m := testMatcher()
	tests := []struct {
		name  string
		alias id.RoomAlias
		want  bool
	}{
		{"own alias", "#irc_freenode_#python:example.org", true},
		{"channel containing separator", "#irc_freenode_#py:thon:example.org", true},
		{"other homeserver", "#irc_freenode_#python:other.org", false},
		{"unrelated alias", "#python:example.org", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := m.ClaimsAlias(tt.alias); got != tt.want {
				t.Errorf("ClaimsAlias(%q) = %v, want %v", tt.alias, got, tt.want)
			}
		})
	}
}

func TestChannelFromAlias(t *testing.T) {
	t.Parallel()
	m := testMatcher()
	channel, ok := m.ChannelFromAlias("#irc_freenode_#python:example.org")
	if !ok || channel != "#python" {
		t.Errorf("ChannelFromAlias: got (%q, %v), want (%q, true)", channel, ok, "#python")
	}
	if _, ok := m.ChannelFromAlias("#irc_freenode_:example.org"); ok {
		t.Error("empty channel capture should not match")
	}
}

func TestAliasRoundTrip(t *testing.T) {
	t.Parallel()
	m := testMatcher()
	channels := []string{"#python", "#a:b", "#with.dots", "&local"}
	for _, channel := range channels {
		alias := m.FormatAlias(channel)
		got, ok := m.ChannelFromAlias(alias)
		if !ok || got != channel {
			t.Errorf("alias round trip for %q: got (%q, %v)", channel, got, ok)
		}
	}
}

func TestSelfTest(t *testing.T) {
	t.Parallel()
	if err := testMatcher().SelfTest(); err != nil {
		t.Errorf("SelfTest on a valid matcher: %v", err)
	}
}

func TestSelfTestCatchesBrokenTemplates(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name          string
		userTemplate  string
		aliasTemplate string
	}{
		{"user template without nick token", "@$SERVER_bot", "#irc_$SERVER_$CHANNEL"},
		{"alias template without channel token", "@$SERVER_$NICK", "#irc_$SERVER"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			m := NewIdentityMatcher("freenode", "example.org",
				tt.userTemplate, "$NICK", tt.aliasTemplate)
			if err := m.SelfTest(); err == nil {
				t.Error("SelfTest should fail for a template missing its variable token")
			}
		})
	}
}
