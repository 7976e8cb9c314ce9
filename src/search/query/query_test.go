// SPDX-License-Identifier: MIT

package query

import (
	"testing"

	"github.com/apimgr/seesea/src/model"
	"github.com/stretchr/testify/assert"
)

func TestParseNormalizesCase(t *testing.T) {
	p := NewParser()
	parsed := p.Parse("  Hello World  ")
	assert.Equal(t, "hello world", parsed.Normalized)
	assert.Equal(t, "  Hello World  ", parsed.Original)
}

func TestDetectIntent(t *testing.T) {
	p := NewParser()
	cases := map[string]model.QueryIntent{
		"site:github.com golang":  model.IntentNavigational,
		"buy a new laptop":        model.IntentTransactional,
		"coffee near me":          model.IntentLocal,
		"news: election results":  model.IntentNews,
		"image: sunset":           model.IntentImage,
		"video: go tutorial":      model.IntentVideo,
		"code: quicksort":         model.IntentCode,
		"history of rome":         model.IntentInformational,
	}
	for q, want := range cases {
		assert.Equal(t, want, p.Parse(q).Intent, "query=%q", q)
	}
}

func TestDetectLanguage(t *testing.T) {
	p := NewParser()
	assert.Equal(t, "en", p.Parse("hello world").Language)
	assert.Equal(t, "zh", p.Parse("你好世界").Language)
}

func TestParseNeverRejects(t *testing.T) {
	p := NewParser()
	parsed := p.Parse("")
	assert.Equal(t, "", parsed.Normalized)
	assert.Equal(t, model.IntentInformational, parsed.Intent)
}
