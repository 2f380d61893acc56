// RecipeFinder - Semantic Recipe Search and Recommendation Service
// Copyright 2026 The RecipeFinder Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/recipefinder/recipefinder

package ingest

import (
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
)

// parseList parses a CSV list column: a JSON array (RecipeNLG exports)
// or a Python list literal (pandas-era dumps with single quotes).
// Returns false when the text is not a list.
//
// Some exports wrap whole rows in an extra layer of quoting, leaving
// residual doubled quotes inside the field after CSV decoding. Parsing
// is tried verbatim first so legitimate adjacent quotes survive, then
// retried with doubled quotes collapsed.
func parseList(s string) ([]string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, false
	}
	if items, ok := tryParseList(s); ok {
		return items, true
	}
	if decoded := decodeListText(s); decoded != s {
		if items, ok := tryParseList(decoded); ok {
			return items, true
		}
	}
	return nil, false
}

// decodeListText collapses CSV quote doubling. Four quotes first:
// a doubly escaped quote must not decay into two singles.
func decodeListText(s string) string {
	s = strings.ReplaceAll(s, `""""`, `"`)
	return strings.ReplaceAll(s, `""`, `"`)
}

func tryParseList(s string) ([]string, bool) {
	var arr []any
	if err := json.Unmarshal([]byte(s), &arr); err == nil {
		out := make([]string, 0, len(arr))
		for _, v := range arr {
			switch t := v.(type) {
			case string:
				out = append(out, t)
			case float64:
				out = append(out, strconv.FormatFloat(t, 'f', -1, 64))
			default:
				return nil, false
			}
		}
		return out, true
	}
	return parsePythonList(s)
}

// parsePythonList parses a bracketed list of quoted strings or bare
// numbers: ['eggs', "milk", 3]. Escaped quotes and backslashes inside
// strings are honored; anything else fails the parse, and the caller
// skips the row.
func parsePythonList(s string) ([]string, bool) {
	n := len(s)
	i := skipSpace(s, 0)
	if i >= n || s[i] != '[' {
		return nil, false
	}
	i = skipSpace(s, i+1)

	out := []string{}
	if i < n && s[i] == ']' {
		return out, skipSpace(s, i+1) == n
	}

	for {
		if i >= n {
			return nil, false
		}
		switch s[i] {
		case '\'', '"':
			item, next, ok := parseQuoted(s, i)
			if !ok {
				return nil, false
			}
			out = append(out, item)
			i = next
		default:
			start := i
			for i < n && s[i] != ',' && s[i] != ']' {
				i++
			}
			tok := strings.TrimSpace(s[start:i])
			if !isNumber(tok) {
				return nil, false
			}
			out = append(out, tok)
		}

		i = skipSpace(s, i)
		if i >= n {
			return nil, false
		}
		switch s[i] {
		case ',':
			i = skipSpace(s, i+1)
		case ']':
			return out, skipSpace(s, i+1) == n
		default:
			return nil, false
		}
	}
}

// parseQuoted reads a quoted string starting at s[i] and returns the
// unescaped content and the index past the closing quote. Byte-wise
// copying keeps multibyte runes intact since the delimiters are ASCII.
func parseQuoted(s string, i int) (string, int, bool) {
	quote := s[i]
	i++
	var b strings.Builder
	for i < len(s) {
		c := s[i]
		if c == '\\' && i+1 < len(s) {
			switch next := s[i+1]; next {
			case '\\', '\'', '"':
				b.WriteByte(next)
				i += 2
				continue
			case 'n':
				b.WriteByte('\n')
				i += 2
				continue
			case 't':
				b.WriteByte('\t')
				i += 2
				continue
			default:
				// Python leaves unknown escapes verbatim
				b.WriteByte(c)
				i++
				continue
			}
		}
		if c == quote {
			return b.String(), i + 1, true
		}
		b.WriteByte(c)
		i++
	}
	return "", 0, false
}

func skipSpace(s string, i int) int {
	for i < len(s) && (s[i] == ' ' || s[i] == '\t' || s[i] == '\n' || s[i] == '\r') {
		i++
	}
	return i
}

func isNumber(s string) bool {
	if s == "" {
		return false
	}
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

// cleanList trims items and drops empties, matching the original
// importer's row filter.
func cleanList(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if t := strings.TrimSpace(item); t != "" {
			out = append(out, t)
		}
	}
	return out
}
