// RecipeFinder - Semantic Recipe Search and Recommendation Service
// Copyright 2026 The RecipeFinder Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/recipefinder/recipefinder

package ingest

import (
	"testing"
)

func TestParseList(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		want   []string
		wantOK bool
	}{
		{
			name:   "json array",
			input:  `["1 c. sugar", "3 Tbsp. cocoa"]`,
			want:   []string{"1 c. sugar", "3 Tbsp. cocoa"},
			wantOK: true,
		},
		{
			name:   "python single quotes",
			input:  `['1 lb beef', '2 carrots']`,
			want:   []string{"1 lb beef", "2 carrots"},
			wantOK: true,
		},
		{
			name:   "python mixed quotes",
			input:  `['eggs', "milk"]`,
			want:   []string{"eggs", "milk"},
			wantOK: true,
		},
		{
			name:   "escaped apostrophe",
			input:  `['mom\'s sauce']`,
			want:   []string{"mom's sauce"},
			wantOK: true,
		},
		{
			name:   "escaped backslash and newline",
			input:  `['a\\b', 'line\nbreak']`,
			want:   []string{`a\b`, "line\nbreak"},
			wantOK: true,
		},
		{
			name:   "bare numbers",
			input:  `[1, 2.5]`,
			want:   []string{"1", "2.5"},
			wantOK: true,
		},
		{
			name:   "empty list",
			input:  `[]`,
			want:   []string{},
			wantOK: true,
		},
		{
			name:   "surrounding whitespace",
			input:  "  ['eggs']  ",
			want:   []string{"eggs"},
			wantOK: true,
		},
		{
			name:   "residual csv quote doubling",
			input:  `[""sugar"", ""cocoa""]`,
			want:   []string{"sugar", "cocoa"},
			wantOK: true,
		},
		{
			name:   "doubly escaped quotes",
			input:  `[""""sugar"""", """"cocoa""""]`,
			want:   []string{"sugar", "cocoa"},
			wantOK: true,
		},
		{
			name:   "not a list",
			input:  "just some text",
			wantOK: false,
		},
		{
			name:   "empty string",
			input:  "",
			wantOK: false,
		},
		{
			name:   "unterminated string",
			input:  `['eggs`,
			wantOK: false,
		},
		{
			name:   "unescaped inner apostrophe",
			input:  `['it's fine']`,
			wantOK: false,
		},
		{
			name:   "bare word element",
			input:  `[eggs]`,
			wantOK: false,
		},
		{
			name:   "trailing junk",
			input:  `['eggs'];`,
			wantOK: false,
		},
		{
			name:   "nested list",
			input:  `[['eggs']]`,
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseList(tt.input)
			if ok != tt.wantOK {
				t.Fatalf("parseList(%q) ok = %v, want %v", tt.input, ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if len(got) != len(tt.want) {
				t.Fatalf("parseList(%q) = %v, want %v", tt.input, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("parseList(%q)[%d] = %q, want %q", tt.input, i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestDecodeListText(t *testing.T) {
	got := decodeListText(`[""""a"""", ""b""]`)
	want := `["a", "b"]`
	if got != want {
		t.Errorf("decodeListText() = %q, want %q", got, want)
	}
}

func TestCleanList(t *testing.T) {
	got := cleanList([]string{"  eggs ", "", "   ", "milk"})
	want := []string{"eggs", "milk"}
	if len(got) != len(want) {
		t.Fatalf("cleanList() = %v, want %v", got, want)
	}
	for i := range got {
		if got[i] != want[i] {
			t.Errorf("cleanList()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
