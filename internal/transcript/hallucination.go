// Package transcript post-processes raw speech-to-text output before it
// reaches the intent classifier.
//
// Whisper-family models produce degenerate looping output on silence, noise,
// and very short utterances: a single character, a hyphenated letter chain,
// a domain suffix, or a whole sentence repeated until the token budget runs
// out. The [Detector] recognises these loops and salvages whatever genuine
// content appeared before the loop started, so that a garbled transcript
// degrades to an "I didn't hear anything" turn instead of a misclassification.
package transcript

import (
	"strings"
	"unicode"
)

// Detection thresholds. These are tuned empirically against the failure
// modes of the transcription model in use, not proven-optimal values.
const (
	// charRunLimit flags a single character repeated this many times in a row.
	charRunLimit = 5

	// hyphenRunLimit flags a letter-hyphen chain ("R-R-R-R-R") of this many letters.
	hyphenRunLimit = 5

	// dotExtensionLimit flags a dot-word unit (".com") repeated this many times.
	dotExtensionLimit = 4

	// sentenceRepeatLimit flags a sentence of at least sentenceMinLen
	// characters appearing this many times.
	sentenceRepeatLimit = 3
	sentenceMinLen      = 10

	// wordRepeatLimit flags a word longer than 2 characters appearing this
	// many times in a transcript of at least wordRepeatMinWords words.
	wordRepeatLimit    = 8
	wordRepeatMinWords = 8

	// maxCleanLength and minUniqueChars flag long transcripts with almost no
	// character diversity once hyphens, spaces, and punctuation are stripped.
	maxCleanLength = 200
	minUniqueChars = 8

	// minSalvageLength is the minimum number of non-whitespace characters a
	// salvaged transcript must keep to still count as input. Below this the
	// caller must treat the utterance as empty.
	minSalvageLength = 5

	// shortCommandMaxLen is the transcript length above which a leading
	// confirmation word is taken as the whole utterance.
	shortCommandMaxLen = 50
)

// confirmationWords are short command words that hallucination padding tends
// to bury. When one of these starts a suspiciously long transcript, the word
// alone is the user's intent.
var confirmationWords = map[string]struct{}{
	"yes": {}, "no": {}, "ok": {}, "okay": {}, "ya": {}, "yup": {},
	"nope": {}, "sure": {}, "confirm": {}, "cancel": {}, "skip": {},
	"next": {}, "back": {}, "help": {}, "stop": {}, "done": {}, "submit": {},
}

// Detector recognises degenerate speech-to-text output. The zero value is
// ready to use; all methods are pure and safe for concurrent use.
type Detector struct{}

// NewDetector returns a ready-to-use [Detector].
func NewDetector() *Detector {
	return &Detector{}
}

// Clean is the full transcript-cleaning entry point used by the turn
// pipeline. It applies, in order:
//
//  1. The short-confirmation override: a long transcript whose first word is
//     a known confirmation/command word collapses to that single word.
//  2. Hallucination detection and salvage via [Detector.Detect].
//  3. The minimum-salvage rule: when a hallucinated transcript salvages to
//     fewer than minSalvageLength non-whitespace characters, Clean returns
//     the empty string so the caller handles the turn as silence.
func (d *Detector) Clean(text string) string {
	if word, ok := shortConfirmation(text); ok {
		return word
	}

	hallucinated, salvaged := d.Detect(text)
	if !hallucinated {
		return text
	}
	if countNonSpace(salvaged) < minSalvageLength {
		return ""
	}
	return salvaged
}

// Detect reports whether text is a degenerate transcription artifact and, if
// so, returns the genuine content that appeared before the loop started.
// Empty input and clean input are returned unchanged with hallucinated=false.
func (d *Detector) Detect(text string) (hallucinated bool, salvaged string) {
	if strings.TrimSpace(text) == "" {
		return false, text
	}

	loopStart := earliestLoopStart(text)
	if loopStart < 0 && !hasRepeatedSentence(text) && !hasRepeatedWord(text) && !lacksDiversity(text) {
		return false, text
	}

	// Character-level loops mark where the degenerate tail begins; everything
	// from there on is model artifact.
	if loopStart >= 0 {
		text = text[:loopStart]
	}
	return true, salvage(text)
}

// earliestLoopStart returns the byte index where the first character-level
// loop (char run, hyphen chain, or dot-extension chain) begins, or -1 when
// none is present.
func earliestLoopStart(text string) int {
	earliest := -1
	for _, idx := range []int{
		charRunStart(text, charRunLimit),
		hyphenRunStart(text, hyphenRunLimit),
		dotExtensionRunStart(text, dotExtensionLimit),
	} {
		if idx >= 0 && (earliest < 0 || idx < earliest) {
			earliest = idx
		}
	}
	return earliest
}

// shortConfirmation reports whether text should collapse to its first word.
func shortConfirmation(text string) (string, bool) {
	if len(text) <= shortCommandMaxLen {
		return "", false
	}
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return "", false
	}
	first := strings.ToLower(strings.Trim(fields[0], ".,!?"))
	if _, ok := confirmationWords[first]; ok {
		return first, true
	}
	return "", false
}

// charRunStart returns the byte index where the first run of a single rune
// repeated limit+ times begins, or -1.
func charRunStart(text string, limit int) int {
	var prev rune
	run := 0
	runStart := 0
	for i, r := range text {
		if r == prev {
			run++
		} else {
			prev = r
			run = 1
			runStart = i
		}
		if run >= limit {
			return runStart
		}
	}
	return -1
}

// hyphenRunStart returns the byte index where a chain of the same letter
// joined by hyphens ("R-R-R-R-R") of at least limit letters begins, or -1.
func hyphenRunStart(text string, limit int) int {
	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		if runes[i] == '-' || unicode.IsSpace(runes[i]) {
			continue
		}
		c := runes[i]
		count := 1
		j := i
		for j+2 < len(runes) && runes[j+1] == '-' && runes[j+2] == c {
			count++
			j += 2
		}
		if count >= limit {
			return byteIndex(text, i)
		}
	}
	return -1
}

// dotExtensionRunStart returns the byte index where a dot-word unit such as
// ".com" repeated back-to-back limit+ times begins, or -1.
func dotExtensionRunStart(text string, limit int) int {
	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		if runes[i] != '.' {
			continue
		}
		unit := dotUnitAt(runes, i)
		if unit == "" {
			continue
		}
		count := 1
		pos := i + len([]rune(unit))
		for {
			next := dotUnitAt(runes, pos)
			if next != unit {
				break
			}
			count++
			pos += len([]rune(unit))
		}
		if count >= limit {
			return byteIndex(text, i)
		}
	}
	return -1
}

// dotUnitAt returns the ".word" unit starting at rune index i, or "" when the
// position does not start a dot followed by letters.
func dotUnitAt(runes []rune, i int) string {
	if i >= len(runes) || runes[i] != '.' {
		return ""
	}
	j := i + 1
	for j < len(runes) && unicode.IsLetter(runes[j]) {
		j++
	}
	if j == i+1 {
		return ""
	}
	return string(runes[i:j])
}

// byteIndex converts a rune index into a byte index within text.
func byteIndex(text string, runeIdx int) int {
	count := 0
	for i := range text {
		if count == runeIdx {
			return i
		}
		count++
	}
	return len(text)
}

// hasRepeatedSentence reports whether any normalised sentence of at least
// sentenceMinLen characters appears sentenceRepeatLimit+ times.
func hasRepeatedSentence(text string) bool {
	counts := make(map[string]int)
	for _, s := range splitSentences(text) {
		norm := normalizeSentence(s)
		if len(norm) < sentenceMinLen {
			continue
		}
		counts[norm]++
		if counts[norm] >= sentenceRepeatLimit {
			return true
		}
	}
	return false
}

// hasRepeatedWord reports whether any word longer than 2 characters appears
// wordRepeatLimit+ times in a transcript of at least wordRepeatMinWords words.
func hasRepeatedWord(text string) bool {
	fields := strings.Fields(strings.ToLower(text))
	if len(fields) < wordRepeatMinWords {
		return false
	}
	counts := make(map[string]int)
	for _, w := range fields {
		w = strings.Trim(w, ".,!?-")
		if len(w) <= 2 {
			continue
		}
		counts[w]++
		if counts[w] >= wordRepeatLimit {
			return true
		}
	}
	return false
}

// lacksDiversity reports whether a long transcript collapses to fewer than
// minUniqueChars distinct characters once hyphens, spaces, and punctuation
// are stripped.
func lacksDiversity(text string) bool {
	if len(text) <= maxCleanLength {
		return false
	}
	unique := make(map[rune]struct{})
	for _, r := range strings.ToLower(text) {
		if unicode.IsSpace(r) || unicode.IsPunct(r) || r == '-' {
			continue
		}
		unique[r] = struct{}{}
		if len(unique) >= minUniqueChars {
			return false
		}
	}
	return len(unique) < minUniqueChars
}

// salvage keeps the sentences that precede the start of a loop. Sentences
// are walked in order; the first time a normalised sentence of at least
// sentenceMinLen characters is seen a third time, the output is cut to
// everything before that sentence's first occurrence.
func salvage(text string) string {
	sentences := splitSentences(text)

	counts := make(map[string]int)
	firstSeen := make(map[string]int)
	cut := len(sentences)

	for i, s := range sentences {
		norm := normalizeSentence(s)
		if len(norm) < sentenceMinLen {
			continue
		}
		if _, ok := firstSeen[norm]; !ok {
			firstSeen[norm] = i
		}
		counts[norm]++
		if counts[norm] >= sentenceRepeatLimit {
			cut = firstSeen[norm]
			break
		}
	}

	kept := sentences[:cut]
	for i := range kept {
		kept[i] = strings.TrimSpace(kept[i])
	}
	return strings.TrimSpace(strings.Join(kept, " "))
}

// splitSentences splits text on `.`, `!`, and `?` boundaries; each sentence
// retains its terminal punctuation.
func splitSentences(text string) []string {
	var sentences []string
	var b strings.Builder
	for _, r := range text {
		b.WriteRune(r)
		if r == '.' || r == '!' || r == '?' {
			if s := strings.TrimSpace(b.String()); s != "" {
				sentences = append(sentences, s)
			}
			b.Reset()
		}
	}
	if s := strings.TrimSpace(b.String()); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}

// normalizeSentence lowercases and trims a sentence for repeat counting.
func normalizeSentence(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// countNonSpace returns the number of non-whitespace runes in s.
func countNonSpace(s string) int {
	n := 0
	for _, r := range s {
		if !unicode.IsSpace(r) {
			n++
		}
	}
	return n
}
