// Package reply provides the display-language model and the localized
// message catalog used by the dialogue state machine. Every user-facing
// string lives here, keyed by message and language, so that the state
// machine never embeds literals and missing translations are caught by
// [Catalog.Validate] at test time instead of at runtime.
package reply

// Language is one of the assistant's internal display-language buckets.
type Language string

const (
	// LangBM is Bahasa Melayu (Malay), the default.
	LangBM Language = "BM"

	// LangBI is Bahasa Inggeris (English).
	LangBI Language = "BI"

	// LangBC is Mandarin Chinese.
	LangBC Language = "BC"

	// LangHK is Cantonese (Hong Kong script and lexicon).
	LangHK Language = "HK"
)

// IsValid reports whether l is a recognised display language.
func (l Language) IsValid() bool {
	switch l {
	case LangBM, LangBI, LangBC, LangHK:
		return true
	}
	return false
}

// preferenceMap maps stored profile language-preference codes onto display
// languages. Tamil maps to English because no Tamil voice is provisioned.
var preferenceMap = map[string]Language{
	"ms":    LangBM,
	"en":    LangBI,
	"zh":    LangBC,
	"zh-HK": LangHK,
	"HK":    LangHK,
	"hk":    LangHK,
	"ta":    LangBI,
}

// ResolveLanguage maps a stored language-preference code to a display
// language. Unknown or empty codes default to [LangBM].
func ResolveLanguage(preference string) Language {
	if lang, ok := preferenceMap[preference]; ok {
		return lang
	}
	return LangBM
}
