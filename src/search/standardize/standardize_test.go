// SPDX-License-Identifier: MIT

package standardize

import (
	"strings"
	"testing"

	"github.com/apimgr/seesea/src/model"
	"github.com/stretchr/testify/assert"
)

func TestCleanTextCollapsesWhitespace(t *testing.T) {
	assert.Equal(t, "hello world", CleanText("  hello   world  ", 100))
}

func TestCleanTextTruncatesWithEllipsis(t *testing.T) {
	long := strings.Repeat("a", 300)
	cleaned := CleanText(long, 100)
	assert.LessOrEqual(t, len(cleaned), 103)
	assert.True(t, strings.HasSuffix(cleaned, "..."))
}

func TestCleanTextDecodesEntities(t *testing.T) {
	assert.Equal(t, "Tom & Jerry", CleanText("Tom &amp; Jerry", 100))
}

func TestStandardizeItemEmptyURLBecomesHash(t *testing.T) {
	item := model.SearchResultItem{Title: "t", Content: "c", URL: "   "}
	StandardizeItem(&item)
	assert.Equal(t, "#", item.URL)
}

func TestDeduplicateByURLKeepsFirstOccurrence(t *testing.T) {
	items := []model.SearchResultItem{
		{Title: "first", URL: "https://Example.com/A"},
		{Title: "second", URL: "https://example.com/a"},
		{Title: "third", URL: "https://example.com/b"},
	}
	out := DeduplicateByURL(items)
	assert.Len(t, out, 2)
	assert.Equal(t, "first", out[0].Title)
}

func TestDeduplicateByURLIsIdempotent(t *testing.T) {
	items := []model.SearchResultItem{
		{URL: "https://a.example/"},
		{URL: "https://a.example/"},
		{URL: "https://b.example/"},
	}
	once := DeduplicateByURL(items)
	twice := DeduplicateByURL(once)
	assert.Equal(t, once, twice)
}
