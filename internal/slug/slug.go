// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package slug turns titles into URL path segments and keeps them unique.
package slug

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	// disallowed is anything left that is not a word character, space or hyphen.
	disallowed = regexp.MustCompile(`[^a-z0-9_\s-]`)
	// separators are runs of spaces and hyphens.
	separators = regexp.MustCompile(`[\s-]+`)
)

// suffixLen is the number of hex characters appended on a collision.
const suffixLen = 8

// Generate lowercases s, folds accented Latin letters to ASCII and joins the
// remaining words with single hyphens. "Crème Brûlée, 2026!" becomes
// "creme-brulee-2026". Scripts with no ASCII folding are dropped.
func Generate(s string) string {
	s = strings.ToLower(toASCII(s))
	s = disallowed.ReplaceAllString(s, "")
	s = separators.ReplaceAllString(strings.TrimSpace(s), "-")
	return strings.Trim(s, "-_")
}

// toASCII decomposes s, strips combining marks and drops whatever is still
// outside ASCII.
func toASCII(s string) string {
	t := transform.Chain(
		norm.NFKD,
		runes.Remove(runes.In(unicode.Mn)),
		runes.Remove(runes.Predicate(func(r rune) bool { return r > unicode.MaxASCII })),
	)
	out, _, err := transform.String(t, s)
	if err != nil {
		return ""
	}
	return out
}

// From returns the slug for title, or a random token when nothing survives
// Generate.
func From(title string) string {
	if s := Generate(title); s != "" {
		return s
	}
	return token()
}

// Disambiguate appends a random hex suffix to base. Stores call it after a
// unique violation on the slug column and retry.
func Disambiguate(base string) string {
	return base + "-" + token()
}

func token() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:suffixLen]
}
