// Package intent classifies cleaned utterances into dialogue decisions.
//
// The primary path wraps an external language model with step-aware prompts
// and retry/backoff ([Classifier]); the fallback path is a deterministic
// multilingual keyword matcher ([KeywordClassifier]) that needs no network
// and never fails. Both paths produce the same [dialog.Decision] variants, so
// the state machine cannot tell which one answered.
package intent

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/wanhafiz/suara/internal/dialog"
)

// minICDigits is the shortest digit run accepted as an IC number.
const minICDigits = 6

// yesKeywords and noKeywords answer confirmation steps. Matching is on word
// boundaries or as an utterance prefix; the prefix rule covers scripts
// without word spacing.
var yesKeywords = []string{
	"ya", "yes", "ok", "okay", "boleh", "betul", "sure", "yup", "iya",
	"yaya", "baik",
	"是", "好", "可以", "对", "係", "好呀",
	"ஆமாம்", "சரி",
}

var noKeywords = []string{
	"tidak", "no", "tak", "taknak", "jangan", "cancel", "batal",
	"不", "不要", "唔係", "唔好",
	"இல்லை", "வேண்டாம்",
}

// thankYouPhrases suppress the MyKasih keyword group: "terima kasih" would
// otherwise match on its "kasih" substring.
var thankYouPhrases = []string{"terima kasih", "thank you", "谢谢", "多謝"}

// topicGroup maps one keyword list to an action. Groups are checked in order;
// the first match wins.
type topicGroup struct {
	action        dialog.Action
	keywords      []string
	excludeThanks bool
}

var topicGroups = []topicGroup{
	{
		action: dialog.ActionCheckSTRStatus,
		keywords: []string{
			"str", "sumbangan", "tunai", "sumbangan tunai", "bantuan tunai",
			"check str", "cek str",
			"现金援助", "現金援助", "援助金",
			"உதவித்தொகை",
		},
	},
	{
		action:        dialog.ActionCheckMyKasihBalance,
		excludeThanks: true,
		keywords: []string{
			"mykasih", "my kasih", "sara", "baki", "balance", "kasih",
			"余额", "結餘",
			"இருப்பு",
		},
	},
	{
		action: dialog.ActionApplySTR,
		keywords: []string{
			"mohon", "apply", "daftar str", "permohonan",
			"申请", "申請",
			"விண்ணப்பிக்க",
		},
	},
	{
		action: dialog.ActionOpenQR,
		keywords: []string{
			"qr", "scan", "bayar", "payment", "pay", "kod qr", "imbas",
			"二维码", "扫码", "掃碼", "支付", "付款",
			"கட்டணம்",
		},
	},
	{
		action: dialog.ActionCheckReminders,
		keywords: []string{
			"reminder", "peringatan", "temujanji", "appointment",
			"提醒", "约会", "約會",
			"நினைவூட்டல்",
		},
	},
	{
		action: dialog.ActionGoHome,
		keywords: []string{
			"home", "balik", "main", "utama", "keluar",
			"主页", "主頁", "返回",
			"முகப்பு",
		},
	},
}

var amountPattern = regexp.MustCompile(`[0-9]+(?:\.[0-9]+)?`)

// KeywordClassifier is the deterministic fallback classifier. It is pure,
// needs no external services, and is safe for concurrent use.
type KeywordClassifier struct{}

// NewKeywordClassifier returns a ready-to-use [KeywordClassifier].
func NewKeywordClassifier() *KeywordClassifier {
	return &KeywordClassifier{}
}

var _ dialog.Classifier = (*KeywordClassifier)(nil)

// Classify maps text to a decision for step using keyword lists.
//
// On confirmation-shaped steps the yes/no sets are checked before anything
// else, so a topic word inside a longer answer ("tidak mahu STR") cannot
// override the expected yes/no. Topic groups are then scanned in priority
// order; outside those, each step degrades to its zero-value variant.
func (c *KeywordClassifier) Classify(_ context.Context, text string, step dialog.Step) dialog.Decision {
	lower := strings.ToLower(text)

	if step.ExpectsConfirmation() {
		if yes, ok := matchConfirmation(lower); ok {
			return dialog.ConfirmDecision{Confirmed: yes}
		}
		if step == dialog.StepAskAmount {
			if amount, ok := extractAmount(lower); ok {
				return dialog.AmountDecision{Amount: amount, Present: true}
			}
		}
	}

	if step == dialog.StepAskIC {
		if ic := extractDigits(text); len(ic) >= minICDigits {
			return dialog.ICDecision{IC: ic}
		}
		return dialog.ICDecision{}
	}

	for _, group := range topicGroups {
		if group.excludeThanks && containsThanks(lower) {
			continue
		}
		for _, kw := range group.keywords {
			if strings.Contains(lower, kw) {
				return dialog.ActionDecision{Action: group.action}
			}
		}
	}

	switch step {
	case dialog.StepConfirmIC, dialog.StepAskNavigation:
		return dialog.ConfirmDecision{}
	case dialog.StepAskAmount:
		return dialog.AmountDecision{}
	}
	return dialog.ActionDecision{Action: dialog.ActionUnknown}
}

// matchConfirmation checks the yes list before the no list; ok is false when
// neither list matched.
func matchConfirmation(lower string) (yes, ok bool) {
	tokens := tokenSet(lower)
	for _, kw := range yesKeywords {
		if tokens[kw] || strings.HasPrefix(lower, kw) {
			return true, true
		}
	}
	for _, kw := range noKeywords {
		if tokens[kw] || strings.HasPrefix(lower, kw) {
			return false, true
		}
	}
	return false, false
}

func tokenSet(lower string) map[string]bool {
	set := make(map[string]bool)
	for _, f := range strings.Fields(lower) {
		set[strings.Trim(f, ".,!?")] = true
	}
	return set
}

func containsThanks(lower string) bool {
	for _, phrase := range thankYouPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

// extractDigits concatenates every digit in text, so spoken groupings like
// "9011 2233 4455" collapse into one number.
func extractDigits(text string) string {
	var b strings.Builder
	for _, r := range text {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func extractAmount(lower string) (float64, bool) {
	match := amountPattern.FindString(lower)
	if match == "" {
		return 0, false
	}
	amount, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0, false
	}
	return amount, true
}
