package intent

import (
	"context"
	"testing"

	"github.com/wanhafiz/suara/internal/dialog"
)

func TestKeyword_ConfirmationPrecedesTopics(t *testing.T) {
	t.Parallel()

	c := NewKeywordClassifier()
	// A topic word inside a refusal must not override the expected yes/no.
	got := c.Classify(context.Background(), "tidak mahu STR", dialog.StepConfirmIC)
	want := dialog.ConfirmDecision{Confirmed: false}
	if got != want {
		t.Errorf("Classify = %#v, want %#v", got, want)
	}

	got = c.Classify(context.Background(), "ya, buka halaman sara", dialog.StepAskNavigation)
	if got != (dialog.ConfirmDecision{Confirmed: true}) {
		t.Errorf("Classify = %#v, want confirmed", got)
	}
}

func TestKeyword_TopicGroups(t *testing.T) {
	t.Parallel()

	tests := []struct {
		text string
		want dialog.Action
	}{
		{"nak cek sumbangan tunai", dialog.ActionCheckSTRStatus},
		{"berapa baki saya", dialog.ActionCheckMyKasihBalance},
		{"saya nak mohon bantuan", dialog.ActionApplySTR},
		{"buka qr untuk bayar", dialog.ActionOpenQR},
		{"scan untuk pembayaran", dialog.ActionOpenQR},
		{"ada temujanji esok?", dialog.ActionCheckReminders},
		{"balik ke halaman utama", dialog.ActionGoHome},
		{"cerita pasal cuaca", dialog.ActionUnknown},
	}
	c := NewKeywordClassifier()
	for _, tt := range tests {
		got := c.Classify(context.Background(), tt.text, dialog.StepIdle)
		ad, ok := got.(dialog.ActionDecision)
		if !ok {
			t.Errorf("Classify(%q) = %#v, want ActionDecision", tt.text, got)
			continue
		}
		if ad.Action != tt.want {
			t.Errorf("Classify(%q) = %v, want %v", tt.text, ad.Action, tt.want)
		}
	}
}

func TestKeyword_ThankYouDoesNotMatchBalance(t *testing.T) {
	t.Parallel()

	c := NewKeywordClassifier()
	got := c.Classify(context.Background(), "terima kasih banyak", dialog.StepIdle)
	if got != (dialog.ActionDecision{Action: dialog.ActionUnknown}) {
		t.Errorf("Classify = %#v, want unknown action", got)
	}

	// Without the thank-you phrase, "kasih" still matches the balance group.
	got = c.Classify(context.Background(), "semak kasih saya", dialog.StepIdle)
	if got != (dialog.ActionDecision{Action: dialog.ActionCheckMyKasihBalance}) {
		t.Errorf("Classify = %#v, want balance action", got)
	}
}

func TestKeyword_MultilingualMatches(t *testing.T) {
	t.Parallel()

	tests := []struct {
		text string
		want dialog.Action
	}{
		{"我要现金援助", dialog.ActionCheckSTRStatus},
		{"我的余额还有多少", dialog.ActionCheckMyKasihBalance},
		{"打开二维码", dialog.ActionOpenQR},
		{"返回主頁", dialog.ActionGoHome},
		{"இருப்பு எவ்வளவு", dialog.ActionCheckMyKasihBalance},
	}
	c := NewKeywordClassifier()
	for _, tt := range tests {
		got := c.Classify(context.Background(), tt.text, dialog.StepIdle)
		if got != (dialog.ActionDecision{Action: tt.want}) {
			t.Errorf("Classify(%q) = %#v, want %v", tt.text, got, tt.want)
		}
	}
}

func TestKeyword_MultilingualConfirmations(t *testing.T) {
	t.Parallel()

	tests := []struct {
		text string
		want bool
	}{
		{"好", true},
		{"可以", true},
		{"唔好", false},
		{"சரி", true},
		{"வேண்டாம்", false},
	}
	c := NewKeywordClassifier()
	for _, tt := range tests {
		got := c.Classify(context.Background(), tt.text, dialog.StepAskNavigation)
		if got != (dialog.ConfirmDecision{Confirmed: tt.want}) {
			t.Errorf("Classify(%q) = %#v, want confirmed=%v", tt.text, got, tt.want)
		}
	}
}

func TestKeyword_ICDigitsExtracted(t *testing.T) {
	t.Parallel()

	c := NewKeywordClassifier()
	got := c.Classify(context.Background(), "nombor dia 9011 2233 4455", dialog.StepAskIC)
	if got != (dialog.ICDecision{IC: "901122334455"}) {
		t.Errorf("Classify = %#v, want concatenated digits", got)
	}

	got = c.Classify(context.Background(), "tak ingat la", dialog.StepAskIC)
	if got != (dialog.ICDecision{}) {
		t.Errorf("Classify = %#v, want empty IC decision", got)
	}
}

func TestKeyword_AmountParsedWhenNoConfirmation(t *testing.T) {
	t.Parallel()

	c := NewKeywordClassifier()
	got := c.Classify(context.Background(), "letak 250.50 sebulan", dialog.StepAskAmount)
	if got != (dialog.AmountDecision{Amount: 250.50, Present: true}) {
		t.Errorf("Classify = %#v, want amount 250.50", got)
	}
}
