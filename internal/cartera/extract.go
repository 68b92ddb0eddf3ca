// Package cartera implements the accounts-receivable normalization
// pipeline: payload extraction, field-name reconciliation, totals
// aggregation, and currency formatting. Everything here is pure and
// request-scoped.
package cartera

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/madecentro/cartera-bfa-go/internal/domain"
)

const snippetLimit = 500

// Extractor locates a JSON array textually embedded inside a named SOAP
// result element. The upstream embeds JSON as the element's inner text,
// often with HTML-entity-escaped quotes, so this is a bracket-scanning
// heuristic rather than an XML parser. It implements port.PayloadExtractor.
type Extractor struct {
	resultRe *regexp.Regexp
}

// NewExtractor builds an extractor for the given result element name.
// Tag matching is case-insensitive and tolerates namespace prefixes and
// attributes.
func NewExtractor(resultElement string) *Extractor {
	name := regexp.QuoteMeta(resultElement)
	return &Extractor{
		resultRe: regexp.MustCompile(`(?is)<(?:[\w.-]+:)?` + name + `(?:\s[^>]*)?>(.*?)</(?:[\w.-]+:)?` + name + `\s*>`),
	}
}

// entity unescaping runs in fixed order, ampersand last, so already-decoded
// text is never double-unescaped.
var entityUnescaper = strings.NewReplacer(
	"&quot;", `"`,
	"&apos;", "'",
	"&lt;", "<",
	"&gt;", ">",
	"&amp;", "&",
)

// Extract never fails: a missing or malformed payload is a structured
// not-OK result with a diagnostic snippet, because "no data" is a valid
// business outcome for a customer with zero documents.
func (e *Extractor) Extract(raw string) domain.ExtractResult {
	candidate := raw
	if m := e.resultRe.FindStringSubmatch(raw); m != nil {
		candidate = m[1]
	}

	if strings.Contains(candidate, "&") {
		candidate = entityUnescaper.Replace(candidate)
	}

	start := strings.Index(candidate, "[")
	end := strings.LastIndex(candidate, "]")
	if start < 0 || end < 0 || start >= end {
		return notOK("no JSON array found in response", candidate)
	}

	var items []domain.RawLineItem
	if err := json.Unmarshal([]byte(candidate[start:end+1]), &items); err != nil {
		return notOK("embedded payload is not a JSON array: "+err.Error(), candidate)
	}

	return domain.ExtractResult{OK: true, Items: items}
}

func notOK(reason, text string) domain.ExtractResult {
	snippet := strings.TrimSpace(text)
	if len(snippet) > snippetLimit {
		snippet = snippet[:snippetLimit]
	}
	if snippet == "" {
		snippet = "(empty response)"
	}
	return domain.ExtractResult{Reason: reason, Snippet: snippet}
}
