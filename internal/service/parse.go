package service

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/clauselens/clauselens/internal/domain"
)

var fencedBlockRe = regexp.MustCompile("(?s)```(?:json)?\\s*(\\[.*?\\])\\s*```")

// decodeJSONArray parses a model response expected to contain a JSON array,
// trying strategies in order: direct parse, fenced code block, first
// top-level bracketed substring. Malformed JSON is expected output, not an
// exceptional condition, so every strategy failure returns false instead of
// an error and the caller degrades to an empty list.
func decodeJSONArray(raw string, v interface{}) bool {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return false
	}

	if json.Unmarshal([]byte(raw), v) == nil {
		return true
	}

	if m := fencedBlockRe.FindStringSubmatch(raw); m != nil {
		if json.Unmarshal([]byte(m[1]), v) == nil {
			return true
		}
	}

	if candidate, ok := firstTopLevelArray(raw); ok {
		if json.Unmarshal([]byte(candidate), v) == nil {
			return true
		}
	}

	return false
}

// firstTopLevelArray scans for the first balanced [...] substring, ignoring
// brackets inside JSON strings.
func firstTopLevelArray(raw string) (string, bool) {
	start := strings.IndexByte(raw, '[')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(raw); i++ {
		ch := raw[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return raw[start : i+1], true
			}
		}
	}
	return "", false
}

// rawRiskyTerm tolerates a string severity before normalization.
type rawRiskyTerm struct {
	Term        string `json:"term"`
	Severity    string `json:"severity"`
	Explanation string `json:"explanation"`
}

// decodeRiskyTerms parses and sanitizes the risk-extraction facet output.
// Items missing term or explanation are dropped; severity is coerced to a
// known level, defaulting to moderate.
func decodeRiskyTerms(raw string) []domain.RiskyTerm {
	var parsed []rawRiskyTerm
	if !decodeJSONArray(raw, &parsed) {
		return []domain.RiskyTerm{}
	}

	terms := make([]domain.RiskyTerm, 0, len(parsed))
	for _, item := range parsed {
		term := domain.RiskyTerm{
			Term:        strings.TrimSpace(item.Term),
			Severity:    domain.NormalizeSeverity(item.Severity),
			Explanation: strings.TrimSpace(item.Explanation),
		}
		if !domain.ValidateRiskyTerm(term) {
			continue
		}
		terms = append(terms, term)
	}
	return terms
}

// decodeLegalReferences parses and sanitizes the legal-reference facet
// output. Items are kept only when title, url, and relevance are present
// and the URL parses as a well-formed absolute URL.
func decodeLegalReferences(raw string) []domain.LegalReference {
	var parsed []domain.LegalReference
	if !decodeJSONArray(raw, &parsed) {
		return []domain.LegalReference{}
	}

	refs := make([]domain.LegalReference, 0, len(parsed))
	for _, item := range parsed {
		ref := domain.LegalReference{
			Title:     strings.TrimSpace(item.Title),
			URL:       strings.TrimSpace(item.URL),
			Relevance: strings.TrimSpace(item.Relevance),
		}
		if !domain.ValidateLegalReference(ref) {
			continue
		}
		refs = append(refs, ref)
	}
	return refs
}
