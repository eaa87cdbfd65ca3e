// Copyright (c) 2026 Digital Hub. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package slug derives ASCII URL slugs from article titles.
//
// Titles are mostly French or Kirundi, so accents are folded to their base
// letter ("Élections à Gitega" becomes "elections-a-gitega").
package slug

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// MaxLen caps the slug length. Longer titles are cut at a word boundary.
const MaxLen = 80

// From converts a title into a lowercase, hyphen-separated ASCII slug.
//
// Any run of characters outside [a-z0-9] becomes a single hyphen. The result
// never starts or ends with a hyphen and is empty when the title holds no
// ASCII letter or digit.
func From(title string) string {
	// Transformers keep state, so each call builds its own chain.
	fold := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(fold, title)
	if err != nil {
		folded = title
	}

	var builder strings.Builder
	builder.Grow(len(folded))

	pendingHyphen := false
	for _, r := range strings.ToLower(folded) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingHyphen && builder.Len() > 0 {
				builder.WriteByte('-')
			}
			pendingHyphen = false
			builder.WriteRune(r)
			continue
		}
		pendingHyphen = true
	}

	return truncate(builder.String())
}

func truncate(slug string) string {
	if len(slug) <= MaxLen {
		return slug
	}

	cut := slug[:MaxLen]
	if i := strings.LastIndexByte(cut, '-'); i > 0 {
		cut = cut[:i]
	}
	return strings.TrimRight(cut, "-")
}
