// Copyright 2024-2026 Aiku AI

package irc

import (
	"regexp"
	"strings"
)

// Template placeholders. Each template context accepts a documented subset;
// unknown placeholders are left in place as literal text.
const (
	PlaceholderServer    = "$SERVER"
	PlaceholderNick      = "$NICK"
	PlaceholderChannel   = "$CHANNEL"
	PlaceholderDisplay   = "$DISPLAY"
	PlaceholderUserID    = "$USERID"
	PlaceholderLocalpart = "$LOCALPART"
)

// escapeRegex escapes text so that, inside a regular expression, it matches
// itself and only itself, character for character.
func escapeRegex(text string) string {
	return regexp.QuoteMeta(text)
}

// escapedTokenPattern returns a pattern that finds a placeholder token inside
// a template that has already been escaped once. The token's own
// metacharacters (the leading $) were escaped along with the rest of the
// template, so the token must be escaped a second time before it can be
// searched for.
func escapedTokenPattern(token string) *regexp.Regexp {
	return regexp.MustCompile(escapeRegex(escapeRegex(token)))
}

// renderTemplate substitutes every occurrence of each placeholder with its
// literal value. No escaping is applied; this is the forward (generation)
// direction.
func renderTemplate(template string, literals map[string]string) string {
	for token, value := range literals {
		template = strings.ReplaceAll(template, token, value)
	}
	return template
}

// compileTemplatePattern turns a placeholder template into an anchored
// regular expression.
//
// literals are substituted first, as plain text. The whole intermediate
// string is then escaped, which makes the template's literal text and the
// substituted values safe even when they contain regex metacharacters (a
// domain like "irc.example.com" must match its dots literally). fragments
// are substituted last and are raw regex, so callers can splice in wildcards
// or capturing groups; their tokens are located with escapedTokenPattern
// because the escape pass has already run. suffix is appended unescaped and
// must be pre-escaped by the caller if it is to match literally.
//
// There is no failure mode: a template that never mentions a fragment's
// token simply produces a pattern that cannot match anything useful, which
// the startup round-trip self-test catches.
func compileTemplatePattern(template string, literals, fragments map[string]string, suffix string) *regexp.Regexp {
	expr := template
	for token, value := range literals {
		expr = strings.ReplaceAll(expr, token, value)
	}
	expr = escapeRegex(expr)
	for token, fragment := range fragments {
		expr = escapedTokenPattern(token).ReplaceAllLiteralString(expr, fragment)
	}
	return regexp.MustCompile("^" + expr + suffix + "$")
}
