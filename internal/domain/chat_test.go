package domain_test

import (
	"strings"
	"testing"

	"github.com/nexuspro/nexus/internal/domain"
)

func TestDeriveTitleShortInput(t *testing.T) {
	for _, input := range []string{"Hi", "exactly twenty-five chars"} {
		if got := domain.DeriveTitle(input); got != input {
			t.Fatalf("DeriveTitle(%q) = %q, want input verbatim", input, got)
		}
	}
}

func TestDeriveTitleTruncatesLongInput(t *testing.T) {
	input := strings.Repeat("a", 40)

	got := domain.DeriveTitle(input)

	want := strings.Repeat("a", 25) + "..."
	if got != want {
		t.Fatalf("DeriveTitle = %q, want %q", got, want)
	}
	if len(got) != 28 {
		t.Fatalf("title length = %d, want 28", len(got))
	}
}

func TestDeriveTitleCountsRunes(t *testing.T) {
	input := strings.Repeat("ü", 26)

	got := domain.DeriveTitle(input)

	if want := strings.Repeat("ü", 25) + "..."; got != want {
		t.Fatalf("DeriveTitle = %q, want %q", got, want)
	}
}

func TestConfigPatchApply(t *testing.T) {
	cfg := domain.DefaultConfig()

	temp := 1.2
	maxTokens := 512
	patched := domain.ConfigPatch{
		Temperature:     &temp,
		MaxOutputTokens: &maxTokens,
	}.Apply(cfg)

	if patched.Temperature != 1.2 {
		t.Fatalf("Temperature = %v, want 1.2", patched.Temperature)
	}
	if patched.MaxOutputTokens == nil || *patched.MaxOutputTokens != 512 {
		t.Fatalf("MaxOutputTokens not applied: %+v", patched.MaxOutputTokens)
	}
	// Untouched fields keep their values.
	if patched.TopP != cfg.TopP || patched.TopK != cfg.TopK {
		t.Fatalf("unpatched fields changed: %+v", patched)
	}
	if patched.SystemInstruction != cfg.SystemInstruction {
		t.Fatalf("system instruction changed unexpectedly")
	}
}

func TestCredentialsSet(t *testing.T) {
	creds := domain.DefaultCredentials()
	if creds.Gemini != domain.ManagedCredential {
		t.Fatalf("default gemini credential = %q, want managed sentinel", creds.Gemini)
	}

	if err := creds.Set("openai", "sk-test"); err != nil {
		t.Fatalf("Set(openai) failed: %v", err)
	}
	if creds.OpenAI != "sk-test" {
		t.Fatalf("OpenAI key = %q", creds.OpenAI)
	}

	if err := creds.Set("anthropic", "x"); err != domain.ErrUnknownProvider {
		t.Fatalf("expected ErrUnknownProvider, got %v", err)
	}
}
