// Copyright 2024-2026 Aiku AI

package irc

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"maunium.net/go/mautrix/id"
)

// DefaultIllegalNickChars matches every character that may not appear in an
// IRC nickname. RFC 2812 allows letters, digits and []\`_^{|}-.
const DefaultIllegalNickChars = "[^A-Za-z0-9\\[\\]\\{\\}\\^\\\\|`_-]"

// ErrNoLegalNickChars is returned when neither the displayname nor the
// localpart of a Matrix user ID contains a single legal nick character.
var ErrNoLegalNickChars = errors.New("no legal nick characters")

// NickMapper derives IRC nicks for Matrix users from the configured nick
// template. Immutable after construction; DeriveNick is pure and safe for
// concurrent use.
type NickMapper struct {
	template string
	illegal  *regexp.Regexp
}

// NewNickMapper compiles the illegal-character class for the given nick
// template. An empty illegalChars falls back to DefaultIllegalNickChars.
func NewNickMapper(nickTemplate, illegalChars string) (*NickMapper, error) {
	if illegalChars == "" {
		illegalChars = DefaultIllegalNickChars
	}
	illegal, err := regexp.Compile(illegalChars)
	if err != nil {
		return nil, fmt.Errorf("invalid illegal nick character class %q: %w", illegalChars, err)
	}
	return &NickMapper{template: nickTemplate, illegal: illegal}, nil
}

// DeriveNick builds an IRC nick for the given Matrix user. The displayname
// is preferred when it still has content after stripping illegal characters;
// otherwise the user ID's localpart is used. An empty displayName means no
// displayname is set.
//
// The template may reference $DISPLAY (the chosen candidate), $USERID (the
// raw Matrix ID) and $LOCALPART.
func (nm *NickMapper) DeriveNick(userID id.UserID, displayName string) (string, error) {
	localpart := strings.TrimPrefix(string(userID), "@")
	if idx := strings.IndexByte(localpart, ':'); idx >= 0 {
		localpart = localpart[:idx]
	}
	localpart = nm.illegal.ReplaceAllString(localpart, "")

	candidate := nm.illegal.ReplaceAllString(displayName, "")
	if candidate == "" {
		candidate = localpart
	}
	if candidate == "" {
		return "", fmt.Errorf("deriving nick for %s: %w", userID, ErrNoLegalNickChars)
	}

	return renderTemplate(nm.template, map[string]string{
		PlaceholderDisplay:   candidate,
		PlaceholderUserID:    string(userID),
		PlaceholderLocalpart: localpart,
	}), nil
}
