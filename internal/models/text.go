// RecipeFinder - Semantic Recipe Search and Recommendation Service
// Copyright 2026 The RecipeFinder Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/recipefinder/recipefinder

package models

import (
	"regexp"
	"strings"
)

var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	// Unicode word characters, matching the original preprocessing which
	// kept accented letters in ingredient names.
	nonWordChars = regexp.MustCompile(`[^\p{L}\p{N}_\s]`)
)

// NormalizeText canonicalizes one ingredient or direction string for
// embedding and index metadata: trim, lowercase, collapse whitespace
// runs, then strip everything that is not a word character or space.
//
// The steps run in exactly this order. Stripping after collapsing means
// punctuation flanked by spaces leaves a double space behind ("a - b"
// becomes "a  b"); indexed data produced by the original pipeline has
// the same shape, and reordering the steps would change every stored
// embedding.
func NormalizeText(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	s = whitespaceRun.ReplaceAllString(s, " ")
	return nonWordChars.ReplaceAllString(s, "")
}

// NormalizeTextList applies NormalizeText to each element and drops
// entries that normalize to empty.
func NormalizeTextList(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if n := NormalizeText(item); n != "" {
			out = append(out, n)
		}
	}
	return out
}

// TitleKey canonicalizes a recipe title for autocomplete matching:
// lowercase with whitespace runs collapsed to single spaces. Punctuation
// is kept so "mom's lasagna" stays searchable as typed.
func TitleKey(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
