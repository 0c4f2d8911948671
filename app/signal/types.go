package signal

import (
	"fmt"
	"time"
)

// Confidence is the ordinal trust level of a signal, derived from the trust
// tier of its source.
type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// Rank returns the ordinal position of the confidence level for comparison.
// Unknown values rank below low.
func (c Confidence) Rank() int {
	switch c {
	case ConfidenceHigh:
		return 3
	case ConfidenceMedium:
		return 2
	case ConfidenceLow:
		return 1
	default:
		return 0
	}
}

func ParseConfidence(s string) (Confidence, error) {
	switch Confidence(s) {
	case ConfidenceLow, ConfidenceMedium, ConfidenceHigh:
		return Confidence(s), nil
	}
	return "", fmt.Errorf("invalid confidence level: %q", s)
}

// Category is one of the seven GTM classification dimensions.
type Category string

const (
	CategoryTiming      Category = "TIMING"
	CategoryMessaging   Category = "MESSAGING"
	CategoryICP         Category = "ICP"
	CategoryCompetitive Category = "COMPETITIVE"
	CategoryProduct     Category = "PRODUCT"
	CategoryMarket      Category = "MARKET"
	CategoryTalent      Category = "TALENT"
)

// Categories lists all categories in canonical order. Score ties are broken
// by this order so classification stays deterministic.
var Categories = []Category{
	CategoryTiming,
	CategoryMessaging,
	CategoryICP,
	CategoryCompetitive,
	CategoryProduct,
	CategoryMarket,
	CategoryTalent,
}

// Date is a calendar date without time-of-day semantics. The zero value
// means the date is unknown; unknown dates sort last and never participate
// in fuzzy matching.
type Date struct {
	year  int
	month time.Month
	day   int
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{year: year, month: month, day: day}
}

func DateOf(t time.Time) Date {
	if t.IsZero() {
		return Date{}
	}
	y, m, d := t.Date()
	return Date{year: y, month: m, day: d}
}

// ParseDate parses a "2006-01-02" string; an empty string is the unknown
// date.
func ParseDate(s string) (Date, error) {
	if s == "" {
		return Date{}, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date value: %w", err)
	}
	return DateOf(t), nil
}

func (d Date) IsZero() bool {
	return d.year == 0 && d.month == 0 && d.day == 0
}

// Key returns a sortable integer representation (0 for unknown dates).
func (d Date) Key() int {
	return d.year*10000 + int(d.month)*100 + d.day
}

func (d Date) Equal(other Date) bool {
	return d.Key() == other.Key()
}

func (d Date) Before(other Date) bool {
	return d.Key() < other.Key()
}

func (d Date) Time() time.Time {
	if d.IsZero() {
		return time.Time{}
	}
	return time.Date(d.year, d.month, d.day, 0, 0, 0, 0, time.UTC)
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return fmt.Sprintf("%04d-%02d-%02d", d.year, int(d.month), d.day)
}

// Compact returns the date as YYYYMMDD, or 00000000 for unknown dates.
// Used in signal identifiers.
func (d Date) Compact() string {
	if d.IsZero() {
		return "00000000"
	}
	return fmt.Sprintf("%04d%02d%02d", d.year, int(d.month), d.day)
}

// MarshalJSON encodes the date as "2006-01-02", or an empty string when
// unknown, so the persisted artifact round-trips losslessly.
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return fmt.Errorf("invalid date value: %s", s)
	}
	s = s[1 : len(s)-1]
	if s == "" {
		*d = Date{}
		return nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return fmt.Errorf("invalid date value: %w", err)
	}
	*d = DateOf(t)
	return nil
}

// RawRecord is a source-specific record as returned by a collector. Its
// shape depends entirely on which collector produced it; the normalizer's
// per-collector adapters are the only code that interprets it.
type RawRecord map[string]interface{}

// SourceRecord pairs a raw record with the name of the collector that
// produced it.
type SourceRecord struct {
	Collector string
	Record    RawRecord
}

// Signal is one unit of intelligence about the target company in the
// unified schema. Signals are created by the Normalizer, removed by the
// Deduplicator, merged by the Resolver and annotated by the Classifier;
// after classification they are never mutated.
type Signal struct {
	ID          string                 `json:"id"`
	Type        string                 `json:"type"`
	Headline    string                 `json:"headline"`
	Description string                 `json:"description"`
	Date        Date                   `json:"date"`
	Source      string                 `json:"source"`
	SourceURL   string                 `json:"source_url,omitempty"`
	Confidence  Confidence             `json:"confidence"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`

	// Set by the Resolver on merged signals only.
	Sources []string `json:"sources,omitempty"`
	Note    string   `json:"note,omitempty"`

	// Set by the Classifier.
	PrimaryCategory     Category             `json:"primary_category,omitempty"`
	SecondaryCategories []Category           `json:"secondary_categories,omitempty"`
	CategoryScores      map[Category]float64 `json:"category_scores,omitempty"`
}

// Summary aggregates counts over the pipeline's final signal list.
type Summary struct {
	Total        int                `json:"total_signals"`
	ByType       map[string]int     `json:"by_type"`
	BySource     map[string]int     `json:"by_source"`
	ByConfidence map[Confidence]int `json:"by_confidence"`
	EarliestDate Date               `json:"earliest_date"`
	LatestDate   Date               `json:"latest_date"`
}

// Options configures the aggregation pipeline. Invalid options are rejected
// at pipeline construction, before any processing begins.
type Options struct {
	MaxSignals             int        `json:"max_signals"`
	MinConfidence          Confidence `json:"min_confidence"`
	DaysLookback           int        `json:"days_lookback"`
	FuzzyDedupThreshold    float64    `json:"fuzzy_dedup_threshold"`
	ConflictGroupThreshold float64    `json:"conflict_group_threshold"`
}

func DefaultOptions() Options {
	return Options{
		MaxSignals:             15,
		MinConfidence:          ConfidenceMedium,
		DaysLookback:           90,
		FuzzyDedupThreshold:    0.85,
		ConflictGroupThreshold: 0.70,
	}
}

func (o Options) Validate() error {
	if o.MaxSignals < 0 {
		return fmt.Errorf("max signals must be non-negative, got %d", o.MaxSignals)
	}
	if _, err := ParseConfidence(string(o.MinConfidence)); err != nil {
		return err
	}
	if o.DaysLookback < 0 {
		return fmt.Errorf("days lookback must be non-negative, got %d", o.DaysLookback)
	}
	if o.FuzzyDedupThreshold < 0 || o.FuzzyDedupThreshold > 1 {
		return fmt.Errorf("fuzzy dedup threshold must be in [0,1], got %g", o.FuzzyDedupThreshold)
	}
	if o.ConflictGroupThreshold < 0 || o.ConflictGroupThreshold > 1 {
		return fmt.Errorf("conflict group threshold must be in [0,1], got %g", o.ConflictGroupThreshold)
	}
	if o.ConflictGroupThreshold > o.FuzzyDedupThreshold {
		return fmt.Errorf("conflict group threshold (%g) must not exceed fuzzy dedup threshold (%g)",
			o.ConflictGroupThreshold, o.FuzzyDedupThreshold)
	}
	return nil
}
