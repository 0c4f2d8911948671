package signal

import (
	"strings"
	"testing"
	"time"
)

func TestResolver_MergesCorroboratingSources(t *testing.T) {
	resolver := NewResolver(0.70)
	date := NewDate(2025, time.October, 15)

	signals := []Signal{
		{ID: "a", Headline: "Stripe raises $600M Series H funding round", Description: "Crunchbase verified filing.",
			Source: "Crunchbase", Confidence: ConfidenceHigh, Date: date},
		{ID: "b", Headline: "Stripe raises $600M Series H funding", Description: "Short press item.",
			Source: "TechCrunch", Confidence: ConfidenceMedium, Date: date},
		{ID: "c", Headline: "Stripe raises $600M Series H", Description: "Extended coverage with round details, investor list and valuation commentary.",
			Source: "Bloomberg", Confidence: ConfidenceMedium, Date: date},
	}

	out := resolver.Run(signals)
	if len(out) != 1 {
		t.Fatalf("Expected 1 merged signal, got %d", len(out))
	}

	merged := out[0]
	if merged.Source != "Crunchbase" {
		t.Errorf("Primary source should be the highest tier, got %s", merged.Source)
	}
	if merged.Confidence != ConfidenceHigh {
		t.Errorf("Merged confidence must equal the maximum tier, got %s", merged.Confidence)
	}
	if len(merged.Sources) != 3 {
		t.Fatalf("Expected 3 contributing sources, got %v", merged.Sources)
	}
	want := []string{"Crunchbase", "TechCrunch", "Bloomberg"}
	for i, source := range want {
		if merged.Sources[i] != source {
			t.Errorf("Sources[%d] = %s, want %s", i, merged.Sources[i], source)
		}
	}
	if !strings.Contains(merged.Note, "3 sources") {
		t.Errorf("Note should mention the number of merged sources, got %q", merged.Note)
	}
	// The most detailed description wins regardless of tier.
	if !strings.Contains(merged.Description, "investor list") {
		t.Errorf("Expected the longest description, got %q", merged.Description)
	}
	if merged.Headline != "Stripe raises $600M Series H funding round" {
		t.Errorf("Headline must come from the primary member, got %q", merged.Headline)
	}
}

func TestResolver_TransitiveClosure(t *testing.T) {
	resolver := NewResolver(0.70)
	date := NewDate(2025, time.October, 15)

	// A~B = 28/34, B~C = 20/24, but A~C = 20/30 which is below 0.70; the
	// three must still form one group through B.
	signals := []Signal{
		{ID: "a", Headline: "abcdefghijklmnopqrst", Source: "One", Confidence: ConfidenceMedium, Date: date},
		{ID: "b", Headline: "abcdefghijklmn", Source: "Two", Confidence: ConfidenceMedium, Date: date},
		{ID: "c", Headline: "abcdefghij", Source: "Three", Confidence: ConfidenceMedium, Date: date},
	}

	out := resolver.Run(signals)
	if len(out) != 1 {
		t.Fatalf("Expected transitive closure to produce 1 group, got %d", len(out))
	}
	if len(out[0].Sources) != 3 {
		t.Errorf("Expected 3 sources in merged signal, got %v", out[0].Sources)
	}
}

func TestResolver_SingletonsPassThroughUnchanged(t *testing.T) {
	resolver := NewResolver(0.70)

	signals := []Signal{
		{ID: "a", Headline: "payments platform expands into brazil", Source: "News",
			Confidence: ConfidenceMedium, Date: NewDate(2025, time.October, 15)},
		{ID: "b", Headline: "chief revenue officer departs company", Source: "LinkedIn",
			Confidence: ConfidenceHigh, Date: NewDate(2025, time.November, 2)},
	}

	out := resolver.Run(signals)
	if len(out) != 2 {
		t.Fatalf("Expected 2 signals, got %d", len(out))
	}
	for _, sig := range out {
		if sig.Sources != nil {
			t.Errorf("Singleton should carry no sources list, got %v", sig.Sources)
		}
		if sig.Note != "" {
			t.Errorf("Singleton should carry no note, got %q", sig.Note)
		}
	}
}

func TestResolver_DifferentDatesNeverGroup(t *testing.T) {
	resolver := NewResolver(0.70)

	signals := []Signal{
		{ID: "a", Headline: "identical headline", Source: "One", Confidence: ConfidenceMedium,
			Date: NewDate(2025, time.October, 15)},
		{ID: "b", Headline: "identical headline", Source: "Two", Confidence: ConfidenceMedium,
			Date: NewDate(2025, time.October, 16)},
	}

	out := resolver.Run(signals)
	if len(out) != 2 {
		t.Errorf("Signals on different dates must not group, got %d", len(out))
	}
}

func TestResolver_SurfacesMetadataDisagreement(t *testing.T) {
	resolver := NewResolver(0.70)
	date := NewDate(2025, time.October, 15)

	signals := []Signal{
		{ID: "a", Headline: "company valued at new round", Source: "Crunchbase", Confidence: ConfidenceHigh,
			Date: date, Metadata: map[string]interface{}{"valuation": "$95B"}},
		{ID: "b", Headline: "company valued at new round", Source: "Bloomberg", Confidence: ConfidenceMedium,
			Date: date, Metadata: map[string]interface{}{"valuation": "$91B"}},
	}

	out := resolver.Run(signals)
	if len(out) != 1 {
		t.Fatalf("Expected 1 merged signal, got %d", len(out))
	}
	note := out[0].Note
	if !strings.Contains(note, "valuation") {
		t.Errorf("Note should surface the disagreeing key, got %q", note)
	}
	if !strings.Contains(note, "$95B") || !strings.Contains(note, "$91B") {
		t.Errorf("Note should surface both conflicting values, got %q", note)
	}
}

func TestResolver_ConfidenceMonotonicity(t *testing.T) {
	resolver := NewResolver(0.70)
	date := NewDate(2025, time.October, 15)

	signals := []Signal{
		{ID: "a", Headline: "shared event headline", Source: "Blog", Confidence: ConfidenceLow, Date: date},
		{ID: "b", Headline: "shared event headline", Source: "Reuters", Confidence: ConfidenceMedium, Date: date},
	}

	out := resolver.Run(signals)
	if len(out) != 1 {
		t.Fatalf("Expected 1 merged signal, got %d", len(out))
	}
	if out[0].Confidence != ConfidenceMedium {
		t.Errorf("Merged confidence must be the group maximum, got %s", out[0].Confidence)
	}
	if out[0].Source != "Reuters" {
		t.Errorf("Primary must be the highest-tier member, got %s", out[0].Source)
	}
}
