package transcript

import "testing"

func TestNormalize_ExactReplacements(t *testing.T) {
	t.Parallel()

	n := NewTermNormalizer()
	tests := []struct {
		in   string
		want string
	}{
		{"check my SDR status", "check my STR status"},
		{"nak cek strr", "nak cek STR"},
		{"saya nak semak baki", "saya nak semak baki"},
	}
	for _, tt := range tests {
		if got := n.Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalize_FuzzyProgramTerms(t *testing.T) {
	t.Parallel()

	n := NewTermNormalizer()
	if got := n.Normalize("baki mykasih saya"); got != "baki MyKasih saya" {
		t.Errorf("Normalize = %q, want canonical MyKasih casing", got)
	}
}

func TestNormalize_StopListProtected(t *testing.T) {
	t.Parallel()

	n := NewTermNormalizer()
	// "saya" and "terima kasih" must never be rewritten to program terms.
	in := "terima kasih, saya faham"
	if got := n.Normalize(in); got != in {
		t.Errorf("Normalize(%q) = %q, want unchanged", in, got)
	}
}

func TestNormalize_PreservesPunctuation(t *testing.T) {
	t.Parallel()

	n := NewTermNormalizer()
	if got := n.Normalize("nak cek sdr."); got != "nak cek STR." {
		t.Errorf("Normalize = %q, want trailing punctuation kept", got)
	}
}
