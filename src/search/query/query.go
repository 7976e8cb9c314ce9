// SPDX-License-Identifier: MIT

// Package query normalizes raw query strings and annotates them with
// intent and language; it never rejects a query.
package query

import (
	"strings"

	"github.com/apimgr/seesea/src/model"
)

// ParsedQuery is the parser's output: the original string plus annotations
// that guide engine selection and get echoed into response metadata.
type ParsedQuery struct {
	Original string
	Normalized string
	Intent model.QueryIntent
	Language string // empty means undetermined
	Region string
	ExpandedTerms []string
}

// Parser turns raw query strings into ParsedQuery values.
type Parser struct {
	EnableIntentDetection bool
	EnableLanguageDetection bool
}

// NewParser returns a Parser with both detection passes enabled.
func NewParser() *Parser {
	return &Parser{EnableIntentDetection: true, EnableLanguageDetection: true}
}

// Parse normalizes query and fills in intent/language per the parser's
// configuration.
func (p *Parser) Parse(q string) ParsedQuery {
	normalized := p.normalize(q)

	intent := model.IntentInformational
	if p.EnableIntentDetection {
		intent = p.detectIntent(normalized)
	}

	language := ""
	if p.EnableLanguageDetection {
		language = p.detectLanguage(normalized)
	}

	return ParsedQuery{
		Original: q,
		Normalized: normalized,
		Intent: intent,
		Language: language,
	}
}

func (p *Parser) normalize(q string) string {
	return strings.ToLower(strings.TrimSpace(q))
}

// detectIntent matches substrings in the order given, first match
// wins.
func (p *Parser) detectIntent(q string) model.QueryIntent {
	switch {
	case strings.Contains(q, "site:"):
		return model.IntentNavigational
	case strings.Contains(q, "buy") || strings.Contains(q, "price") || strings.Contains(q, "购买"):
		return model.IntentTransactional
	case strings.Contains(q, "near me") || strings.Contains(q, "附近"):
		return model.IntentLocal
	case strings.Contains(q, "news:") || strings.HasPrefix(q, "新闻"):
		return model.IntentNews
	case strings.Contains(q, "image:") || strings.Contains(q, "图片"):
		return model.IntentImage
	case strings.Contains(q, "video:") || strings.Contains(q, "视频"):
		return model.IntentVideo
	case strings.Contains(q, "code:") || strings.Contains(q, "代码"):
		return model.IntentCode
	default:
		return model.IntentInformational
	}
}

// detectLanguage returns "zh" if any CJK codepoint is present, "en" if every
// rune is ASCII, else "" (undetermined).
func (p *Parser) detectLanguage(q string) string {
	hasCJK := false
	allASCII := true
	for _, r := range q {
		if r >= 0x4E00 && r <= 0x9FFF {
			hasCJK = true
		}
		if r > 0x7F {
			allASCII = false
		}
	}
	switch {
	case hasCJK:
		return "zh"
	case allASCII:
		return "en"
	default:
		return ""
	}
}

// Expand returns synonym/related terms for q. No synonym store is wired
// up yet; this stays an explicit no-op rather than faking expansion.
func (p *Parser) Expand(q string) []string {
	return nil
}
