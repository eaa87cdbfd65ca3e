// Copyright (c) 2026 Digital Hub. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package slug_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/digitalhub/pkg/slug"
)

func TestFrom(t *testing.T) {
	tests := []struct {
		name  string
		title string
		want  string
	}{
		{"accents", "Élections à Gitega", "elections-a-gitega"},
		{"punctuation", "  Intamba: 100% en forme!  ", "intamba-100-en-forme"},
		{"apostrophe", "L'équipe d'Ibikorwa", "l-equipe-d-ibikorwa"},
		{"no ascii", "¿¡…!?", ""},
		{"already slug", "nouvelle-route", "nouvelle-route"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, slug.From(tt.title))
		})
	}
}

func TestFrom_TruncatesAtWordBoundary(t *testing.T) {
	title := strings.Repeat("bujumbura ", 12)

	got := slug.From(title)

	assert.LessOrEqual(t, len(got), slug.MaxLen)
	assert.False(t, strings.HasSuffix(got, "-"))
	assert.True(t, strings.HasSuffix(got, "bujumbura"))
}
