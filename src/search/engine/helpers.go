// SPDX-License-Identifier: MIT

package engine

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// DefaultUserAgent is the fallback UA when the privacy manager hasn't
// overridden it via synthetic headers: a current Windows Chrome string.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

// GenerateResultID derives a short stable id from a result's url+source,
// useful for client-side dedup keys distinct from the cache's URL-based
// dedup.
func GenerateResultID(url, source string) string {
	hash := sha256.Sum256([]byte(url + source))
	return hex.EncodeToString(hash[:8])
}

// BrowserHeaders returns the baseline header set every HTML-scraping engine
// sends, matching common browser Fetch metadata.
func BrowserHeaders(ua string) map[string]string {
	if ua == "" {
		ua = DefaultUserAgent
	}
	return map[string]string{
		"User-Agent":      ua,
		"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
		"Accept-Language": "en-US,en;q=0.9",
	}
}

// cleanText trims and collapses whitespace out of a goquery text node ,
// separate from standardize.CleanText, which also enforces length caps;
// this is the raw scrape-time cleanup engines apply before results reach
// standardization.
func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// extractObjects scans a large JSON blob for every balanced {...} object
// whose text contains marker, without unmarshalling the whole tree, used
// for deeply-nested, version-drifting payloads like YouTube's ytInitialData
// where modeling the full shape would break on every frontend release.
func extractObjects(blob []byte, marker string) [][]byte {
	var out [][]byte
	var starts []int
	inString := false
	escaped := false

	for i, b := range blob {
		switch {
		case inString:
			if escaped {
				escaped = false
			} else if b == '\\' {
				escaped = true
			} else if b == '"' {
				inString = false
			}
			continue
		case b == '"':
			inString = true
		case b == '{':
			starts = append(starts, i)
		case b == '}':
			if len(starts) == 0 {
				continue
			}
			start := starts[len(starts)-1]
			starts = starts[:len(starts)-1]
			obj := blob[start : i+1]
			if bytes.Contains(obj, []byte(marker)) {
				out = append(out, obj)
			}
		}
	}
	return out
}
