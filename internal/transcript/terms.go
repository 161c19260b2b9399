package transcript

import (
	"strings"

	"github.com/antzucaro/matchr"
)

// fuzzyThreshold is the minimum Jaro-Winkler score for a transcript token to
// be rewritten to a canonical program term.
const fuzzyThreshold = 0.90

// minFuzzyTokenLen guards short tokens: two- and three-letter words score
// deceptively high against short program names.
const minFuzzyTokenLen = 4

// exactReplacements maps known mis-transcriptions of program names to their
// canonical form. Matched case-insensitively on word boundaries.
var exactReplacements = map[string]string{
	"sdr":  "STR",
	"strr": "STR",
	"s t r": "STR",
}

// canonicalTerms is the program vocabulary for the fuzzy pass. Keys are the
// lowercase canonical spellings; values are the replacement text.
var canonicalTerms = map[string]string{
	"mykasih":   "MyKasih",
	"sumbangan": "sumbangan",
	"tunai":     "tunai",
}

// fuzzyStopList holds common Malay words that score close to a program term
// but must never be rewritten ("saya" vs "sara", "terima kasih" vs "kasih").
var fuzzyStopList = map[string]struct{}{
	"saya": {}, "sana": {}, "kasih": {}, "terima": {}, "sama": {},
}

// TermNormalizer rewrites transcript tokens that are close mis-hearings of
// program vocabulary (STR, MyKasih, sumbangan tunai) to their canonical
// spelling. It is pure and safe for concurrent use.
type TermNormalizer struct{}

// NewTermNormalizer returns a ready-to-use [TermNormalizer].
func NewTermNormalizer() *TermNormalizer {
	return &TermNormalizer{}
}

// Normalize applies exact replacements followed by a fuzzy Jaro-Winkler pass
// over individual tokens. Punctuation attached to a token is preserved.
func (n *TermNormalizer) Normalize(text string) string {
	if strings.TrimSpace(text) == "" {
		return text
	}

	// Multi-word exact replacements first, on the whole string.
	lower := strings.ToLower(text)
	for wrong, canonical := range exactReplacements {
		if !strings.Contains(wrong, " ") {
			continue
		}
		if idx := strings.Index(lower, wrong); idx >= 0 {
			text = text[:idx] + canonical + text[idx+len(wrong):]
			lower = strings.ToLower(text)
		}
	}

	tokens := strings.Fields(text)
	for i, tok := range tokens {
		core, prefix, suffix := splitPunct(tok)
		if core == "" {
			continue
		}
		coreLower := strings.ToLower(core)

		if canonical, ok := exactReplacements[coreLower]; ok {
			tokens[i] = prefix + canonical + suffix
			continue
		}

		if len([]rune(coreLower)) < minFuzzyTokenLen {
			continue
		}
		if _, stopped := fuzzyStopList[coreLower]; stopped {
			continue
		}
		if _, already := canonicalTerms[coreLower]; already {
			tokens[i] = prefix + canonicalTerms[coreLower] + suffix
			continue
		}

		for termLower, canonical := range canonicalTerms {
			if matchr.JaroWinkler(coreLower, termLower, false) >= fuzzyThreshold {
				tokens[i] = prefix + canonical + suffix
				break
			}
		}
	}

	return strings.Join(tokens, " ")
}

// splitPunct separates leading and trailing punctuation from a token.
func splitPunct(tok string) (core, prefix, suffix string) {
	start := 0
	for start < len(tok) && strings.ContainsRune(".,!?\"'()", rune(tok[start])) {
		start++
	}
	end := len(tok)
	for end > start && strings.ContainsRune(".,!?\"'()", rune(tok[end-1])) {
		end--
	}
	return tok[start:end], tok[:start], tok[end:]
}
