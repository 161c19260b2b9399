package reply

import (
	"strings"
	"testing"
)

func TestResolveLanguage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		pref string
		want Language
	}{
		{"ms", LangBM},
		{"en", LangBI},
		{"zh", LangBC},
		{"zh-HK", LangHK},
		{"HK", LangHK},
		{"hk", LangHK},
		{"ta", LangBI},
		{"fr", LangBM},
		{"", LangBM},
		{"MS", LangBM},
	}
	for _, tt := range tests {
		if got := ResolveLanguage(tt.pref); got != tt.want {
			t.Errorf("ResolveLanguage(%q) = %v, want %v", tt.pref, got, tt.want)
		}
	}
}

func TestDefaultCatalog_Exhaustive(t *testing.T) {
	t.Parallel()

	if err := DefaultCatalog.Validate(); err != nil {
		t.Fatal(err)
	}

	// Every key the state machine uses must cover all four languages.
	langs := []Language{LangBM, LangBI, LangBC, LangHK}
	for _, key := range DefaultCatalog.Keys() {
		for _, lang := range langs {
			if DefaultCatalog.Render(key, lang) == "" {
				t.Errorf("key %q has no %v entry and no BM fallback", key, lang)
			}
		}
	}
}

func TestCatalog_RenderFallsBackToBM(t *testing.T) {
	t.Parallel()

	c := NewCatalog(map[Key]map[Language]string{
		"greeting": {LangBM: "Selamat datang"},
	})
	if got := c.Render("greeting", LangHK); got != "Selamat datang" {
		t.Errorf("Render fell back to %q, want BM entry", got)
	}
	if got := c.Render("missing", LangBM); got != "" {
		t.Errorf("Render(unknown key) = %q, want empty", got)
	}
}

func TestCatalog_RenderFormatsArgs(t *testing.T) {
	t.Parallel()

	got := DefaultCatalog.Render(KeySTRApproved, LangBI, 500)
	if !strings.Contains(got, "500") {
		t.Errorf("Render(KeySTRApproved) = %q, want payment amount included", got)
	}

	got = DefaultCatalog.Render(KeyConfirmIC, LangBM, "9 0 1 1 2 2")
	if !strings.Contains(got, "9 0 1 1 2 2") {
		t.Errorf("Render(KeyConfirmIC) = %q, want spelled-out IC included", got)
	}
}

func TestCatalog_ValidateMissingBM(t *testing.T) {
	t.Parallel()

	c := NewCatalog(map[Key]map[Language]string{
		"broken": {LangBI: "English only"},
	})
	if err := c.Validate(); err == nil {
		t.Error("Validate() = nil, want error for missing BM entry")
	}
}
