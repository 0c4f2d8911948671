package signal

import "testing"

func TestNormalizeHeadline(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Stripe Launches  New   API", "stripe launches new api"},
		{"  Résumé  review ", "resume review"},
		{"ALL\tCAPS\nHEADLINE", "all caps headline"},
		{"", ""},
	}

	for _, c := range cases {
		got := NormalizeHeadline(c.in)
		if got != c.want {
			t.Errorf("NormalizeHeadline(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestSimilarityRatio_Identical(t *testing.T) {
	if got := SimilarityRatio("stripe raises funding", "stripe raises funding"); got != 1.0 {
		t.Errorf("Expected 1.0 for identical strings, got %f", got)
	}
}

func TestSimilarityRatio_Empty(t *testing.T) {
	if got := SimilarityRatio("", ""); got != 0 {
		t.Errorf("Expected 0 for two empty strings, got %f", got)
	}
	if got := SimilarityRatio("headline", ""); got != 0 {
		t.Errorf("Expected 0 against empty string, got %f", got)
	}
}

func TestSimilarityRatio_Disjoint(t *testing.T) {
	if got := SimilarityRatio("abc", "xyz"); got != 0 {
		t.Errorf("Expected 0 for disjoint strings, got %f", got)
	}
}

func TestSimilarityRatio_KnownValues(t *testing.T) {
	// 20 chars each, 17-char common subsequence: 2*17/40 = 0.85.
	atBoundary := SimilarityRatio("abcdefghijklmnopqrst", "abcdefghijklmnopqvwx")
	if atBoundary != 0.85 {
		t.Errorf("Expected ratio 0.85, got %f", atBoundary)
	}

	// 25 chars each, 21-char common subsequence: 2*21/50 = 0.84.
	belowBoundary := SimilarityRatio("abcdefghijklmnopqrstuvwxy", "abcdefghijklmnopqrstuz123")
	if belowBoundary != 0.84 {
		t.Errorf("Expected ratio 0.84, got %f", belowBoundary)
	}
}

func TestHeadlineSimilarity_NormalizesBeforeComparing(t *testing.T) {
	got := HeadlineSimilarity("Stripe  Raises $600M", "stripe raises $600m")
	if got != 1.0 {
		t.Errorf("Expected 1.0 after normalization, got %f", got)
	}
}
