// SPDX-License-Identifier: MIT

// Package standardize normalizes raw per-engine results into the common
// schema: whitespace/HTML-entity cleanup, length caps, and URL-based
// dedup.
package standardize

import (
	"html"
	"strings"

	"github.com/apimgr/seesea/src/model"
)

const (
	TitleMaxLength   = 200
	ContentMaxLength = 500
)

// CleanText collapses runs of whitespace, decodes HTML entities, and
// truncates to maxLength, appending "..." when truncated.
func CleanText(text string, maxLength int) string {
	fields := strings.Fields(text)
	cleaned := strings.Join(fields, " ")
	cleaned = html.UnescapeString(cleaned)

	if len(cleaned) > maxLength {
		cut := maxLength - 3
		if cut < 0 {
			cut = 0
		}
		runes := []rune(cleaned)
		if cut > len(runes) {
			cut = len(runes)
		}
		return string(runes[:cut]) + "..."
	}
	return cleaned
}

// StandardizeItem cleans title/content to their caps and guards against an
// empty URL in place.
func StandardizeItem(item *model.SearchResultItem) {
	item.Title = CleanText(item.Title, TitleMaxLength)
	item.Content = CleanText(item.Content, ContentMaxLength)
	if strings.TrimSpace(item.URL) == "" {
		item.URL = "#"
	}
}

// DeduplicateByURL retains the first occurrence per case-normalized,
// trimmed URL. Applying it twice is idempotent, a second pass can never
// find anything left to remove since every remaining URL is already unique.
func DeduplicateByURL(items []model.SearchResultItem) []model.SearchResultItem {
	seen := make(map[string]struct{}, len(items))
	out := make([]model.SearchResultItem, 0, len(items))
	for _, item := range items {
		key := strings.ToLower(strings.TrimSpace(item.URL))
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, item)
	}
	return out
}

// StandardizeResults standardizes every item, then deduplicates by URL.
func StandardizeResults(result *model.SearchResult) {
	for i := range result.Items {
		StandardizeItem(&result.Items[i])
	}
	result.Items = DeduplicateByURL(result.Items)
}
