package phone

import "testing"

func TestNormalize_LocalMobileGetsCountryPrefix(t *testing.T) {
	n := NewNormalizer("996", "KG")

	got := n.Normalize("700100518")
	if got != "996700100518" {
		t.Fatalf("expected 996700100518, got %q", got)
	}
}

func TestNormalize_PunctuatedInternationalMatchesBareForm(t *testing.T) {
	n := NewNormalizer("996", "KG")

	punctuated := n.Normalize("+996 (700) 100-518")
	bare := n.Normalize("996700100518")

	if punctuated != bare {
		t.Fatalf("expected identical canonical forms, got %q and %q", punctuated, bare)
	}
	if punctuated != "996700100518" {
		t.Fatalf("expected 996700100518, got %q", punctuated)
	}
}

func TestNormalize_ExistingPrefixPassesThrough(t *testing.T) {
	n := NewNormalizer("996", "KG")

	got := n.Normalize("996555123456")
	if got != "996555123456" {
		t.Fatalf("expected pass-through, got %q", got)
	}
}

func TestNormalize_TrunkZeroDropped(t *testing.T) {
	n := NewNormalizer("996", "KG")

	got := n.Normalize("0700100518")
	if got != "996700100518" {
		t.Fatalf("expected 996700100518, got %q", got)
	}
}

func TestNormalize_FallbackPrepends(t *testing.T) {
	n := NewNormalizer("996", "KG")

	got := n.Normalize("12345")
	if got != "99612345" {
		t.Fatalf("expected best-effort prepend, got %q", got)
	}
}

func TestNormalize_EmptyInput(t *testing.T) {
	n := NewNormalizer("996", "KG")

	if got := n.Normalize("   "); got != "" {
		t.Fatalf("expected empty result, got %q", got)
	}
}

func TestNormalize_Deterministic(t *testing.T) {
	n := NewNormalizer("996", "KG")

	inputs := []string{"700100518", "+996 700 100 518", "0700100518", "996-700-100-518"}
	for _, input := range inputs {
		first := n.Normalize(input)
		second := n.Normalize(input)
		if first != second {
			t.Fatalf("normalization of %q not deterministic: %q vs %q", input, first, second)
		}
	}
}
