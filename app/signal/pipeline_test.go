package signal

import (
	"encoding/json"
	"reflect"
	"testing"
	"time"
)

func fixedNow() time.Time {
	return time.Date(2025, time.November, 10, 12, 0, 0, 0, time.UTC)
}

func newTestPipeline(t *testing.T, opts Options) *Pipeline {
	t.Helper()
	p, err := NewPipeline(NewTrustTable(), opts)
	if err != nil {
		t.Fatalf("NewPipeline failed: %v", err)
	}
	p.now = fixedNow
	return p
}

func sampleRecords() []SourceRecord {
	return []SourceRecord{
		{Collector: "Crunchbase", Record: RawRecord{
			"signal_type": "funding",
			"headline":    "Stripe raises $600M Series H funding round",
			"description": "Verified filing.",
			"date":        "2025-10-15",
			"source":      "Crunchbase",
		}},
		// 28-char prefix of the 42-char Crunchbase headline: similarity
		// 2*28/70 = 0.80, below the dedup threshold but above the conflict
		// grouping threshold.
		{Collector: "news", Record: RawRecord{
			"title":       "Stripe raises $600M Series H",
			"description": "Press coverage of the round.",
			"publishedAt": "2025-10-15",
			"url":         "https://techcrunch.com/stripe-series-h",
			"source":      map[string]interface{}{"name": "TechCrunch"},
		}},
		{Collector: "news", Record: RawRecord{
			"title":       "Stripe raises $600M Series H",
			"description": "Syndicated copy of the same article.",
			"publishedAt": "2025-10-15",
			"url":         "https://techcrunch.com/stripe-series-h",
			"source":      map[string]interface{}{"name": "TechCrunch"},
		}},
		{Collector: "linkedin", Record: RawRecord{
			"signal_type": "hiring",
			"description": "Hiring for 80 open positions in enterprise sales",
			"date":        "2025-11-01",
			"source":      "LinkedIn",
			"metadata":    map[string]interface{}{"total_openings": 80},
		}},
		{Collector: "blog", Record: RawRecord{
			"signal_type": "announcement",
			"headline":    "Low-trust rumor about an acquisition",
			"date":        "2025-11-02",
			"source":      "Random Blog",
		}},
		{Collector: "github", Record: RawRecord{
			"signal_type":      "sdk_update",
			"technical_detail": "Ancient SDK release notes",
			"date":             "2024-01-01",
			"source":           "GitHub",
		}},
	}
}

func TestPipeline_RejectsInvalidOptions(t *testing.T) {
	invalid := []Options{
		{MaxSignals: -1, MinConfidence: ConfidenceMedium, FuzzyDedupThreshold: 0.85, ConflictGroupThreshold: 0.7},
		{MaxSignals: 15, MinConfidence: "bogus", FuzzyDedupThreshold: 0.85, ConflictGroupThreshold: 0.7},
		{MaxSignals: 15, MinConfidence: ConfidenceMedium, DaysLookback: -5, FuzzyDedupThreshold: 0.85, ConflictGroupThreshold: 0.7},
		{MaxSignals: 15, MinConfidence: ConfidenceMedium, FuzzyDedupThreshold: 1.5, ConflictGroupThreshold: 0.7},
		{MaxSignals: 15, MinConfidence: ConfidenceMedium, FuzzyDedupThreshold: 0.6, ConflictGroupThreshold: 0.7},
	}

	for i, opts := range invalid {
		if _, err := NewPipeline(NewTrustTable(), opts); err == nil {
			t.Errorf("Options %d should have been rejected: %+v", i, opts)
		}
	}
}

func TestPipeline_Idempotence(t *testing.T) {
	records := sampleRecords()

	first := newTestPipeline(t, DefaultOptions()).Run(records)
	second := newTestPipeline(t, DefaultOptions()).Run(records)

	if !reflect.DeepEqual(first, second) {
		t.Error("Two runs on the same input must produce identical output")
	}

	firstJSON, err := json.Marshal(first)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	secondJSON, err := json.Marshal(second)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(firstJSON) != string(secondJSON) {
		t.Error("Serialized output must be byte-identical across runs")
	}
}

func TestPipeline_EndToEnd(t *testing.T) {
	result := newTestPipeline(t, DefaultOptions()).Run(sampleRecords())

	// The two TechCrunch records share a URL: exactly one survives dedup.
	if result.DuplicatesRemoved != 1 {
		t.Errorf("Expected 1 duplicate removed, got %d", result.DuplicatesRemoved)
	}

	// The Crunchbase and TechCrunch signals describe the same round on the
	// same date and merge; the rumor is low confidence and filtered; the
	// 2024 SDK note is outside the 90-day lookback.
	if len(result.Signals) != 2 {
		t.Fatalf("Expected 2 signals, got %d: %+v", len(result.Signals), result.Signals)
	}

	ids := make(map[string]bool)
	for _, sig := range result.Signals {
		if ids[sig.ID] {
			t.Errorf("Duplicate id in output: %s", sig.ID)
		}
		ids[sig.ID] = true

		if sig.PrimaryCategory == "" {
			t.Errorf("Signal %s missing primary category", sig.ID)
		}
	}

	var merged *Signal
	for i := range result.Signals {
		if result.Signals[i].Source == "Crunchbase" {
			merged = &result.Signals[i]
		}
	}
	if merged == nil {
		t.Fatalf("Merged Crunchbase signal not found in %+v", result.Signals)
	}
	if len(merged.Sources) != 2 {
		t.Errorf("Expected 2 contributing sources, got %v", merged.Sources)
	}
	if merged.Confidence != ConfidenceHigh {
		t.Errorf("Merged signal should keep high confidence, got %s", merged.Confidence)
	}

	if result.Summary.Total != 2 {
		t.Errorf("Summary total = %d, want 2", result.Summary.Total)
	}
	if result.Summary.EarliestDate.String() != "2025-10-15" {
		t.Errorf("Earliest date = %s, want 2025-10-15", result.Summary.EarliestDate)
	}
	if result.Summary.LatestDate.String() != "2025-11-01" {
		t.Errorf("Latest date = %s, want 2025-11-01", result.Summary.LatestDate)
	}
}

func TestPipeline_MinConfidenceFilter(t *testing.T) {
	opts := DefaultOptions()
	opts.MinConfidence = ConfidenceHigh

	result := newTestPipeline(t, opts).Run(sampleRecords())

	for _, sig := range result.Signals {
		if sig.Confidence != ConfidenceHigh {
			t.Errorf("With min_confidence=high, got %s signal %s", sig.Confidence, sig.ID)
		}
	}
}

func TestPipeline_MaxSignalsCap(t *testing.T) {
	opts := DefaultOptions()
	opts.MaxSignals = 1

	result := newTestPipeline(t, opts).Run(sampleRecords())
	if len(result.Signals) != 1 {
		t.Errorf("Expected exactly 1 signal with cap 1, got %d", len(result.Signals))
	}
}

func TestPipeline_UnknownDatesExcludedUnderLookback(t *testing.T) {
	records := []SourceRecord{
		{Collector: "news", Record: RawRecord{
			"title":  "Article with no date",
			"source": map[string]interface{}{"name": "Reuters"},
		}},
	}

	withLookback := newTestPipeline(t, DefaultOptions()).Run(records)
	if len(withLookback.Signals) != 0 {
		t.Errorf("Unknown dates must be excluded under a finite lookback, got %d", len(withLookback.Signals))
	}

	opts := DefaultOptions()
	opts.DaysLookback = 0
	withoutLookback := newTestPipeline(t, opts).Run(records)
	if len(withoutLookback.Signals) != 1 {
		t.Errorf("Without lookback the undated signal should survive, got %d", len(withoutLookback.Signals))
	}
}

func TestPipeline_EmptyInputIsValid(t *testing.T) {
	result := newTestPipeline(t, DefaultOptions()).Run(nil)

	if len(result.Signals) != 0 {
		t.Errorf("Expected empty result, got %d signals", len(result.Signals))
	}
	if result.Summary.Total != 0 {
		t.Errorf("Expected zero summary total, got %d", result.Summary.Total)
	}
}

func TestPipeline_SortOrder(t *testing.T) {
	result := newTestPipeline(t, DefaultOptions()).Run(sampleRecords())

	for i := 1; i < len(result.Signals); i++ {
		prev, curr := result.Signals[i-1], result.Signals[i]
		if prev.Confidence.Rank() < curr.Confidence.Rank() {
			t.Errorf("Signals not sorted by confidence desc at %d", i)
		}
		if prev.Confidence.Rank() == curr.Confidence.Rank() && prev.Date.Key() < curr.Date.Key() {
			t.Errorf("Signals not sorted by date desc within tier at %d", i)
		}
	}
}

func TestDate_JSONRoundTrip(t *testing.T) {
	type doc struct {
		Known   Date `json:"known"`
		Unknown Date `json:"unknown"`
	}

	in := doc{Known: NewDate(2025, time.October, 15)}
	data, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var out doc
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if !out.Known.Equal(in.Known) {
		t.Errorf("Known date did not round-trip: %s", out.Known)
	}
	if !out.Unknown.IsZero() {
		t.Errorf("Unknown date did not round-trip: %s", out.Unknown)
	}
}
