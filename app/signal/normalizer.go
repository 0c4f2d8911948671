package signal

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"

	"github.com/araddon/dateparse"
)

const headlineMaxLen = 120

// Draft holds the collector-specific fields an adapter extracted from a raw
// record. The normalizer fills in everything else (confidence, id,
// fallback headline).
type Draft struct {
	Type        string
	Headline    string
	Description string
	URL         string
	Source      string
	Date        Date
	Metadata    map[string]interface{}
}

// AdapterFunc maps one collector's raw record shape onto a Draft.
type AdapterFunc func(RawRecord) Draft

// Normalizer converts source-specific raw records into the unified Signal
// schema. It never fails hard: missing fields are synthesized best-effort,
// and only records with no inferable type, no date and no text content are
// skipped (and counted).
type Normalizer struct {
	trust    *TrustTable
	adapters map[string]AdapterFunc
	order    []string
}

func NewNormalizer(trust *TrustTable) *Normalizer {
	n := &Normalizer{
		trust:    trust,
		adapters: make(map[string]AdapterFunc),
	}
	n.Register("news", newsAdapter)
	n.Register("crunchbase", businessAdapter)
	n.Register("linkedin", businessAdapter)
	n.Register("github", technicalAdapter)
	n.Register("changelog", technicalAdapter)
	return n
}

// Register installs an adapter for the given collector name. Lookup is
// case-insensitive on the collector name, falling back to a substring match
// and finally to a generic adapter.
func (n *Normalizer) Register(collector string, fn AdapterFunc) {
	name := strings.ToLower(collector)
	if _, exists := n.adapters[name]; !exists {
		n.order = append(n.order, name)
	}
	n.adapters[name] = fn
}

// Run normalizes a batch of records, one Signal per usable record, and
// returns the skipped-record count alongside.
func (n *Normalizer) Run(records []SourceRecord) ([]Signal, int) {
	signals := make([]Signal, 0, len(records))
	skipped := 0

	for _, rec := range records {
		sig, ok := n.Normalize(rec)
		if !ok {
			skipped++
			continue
		}
		signals = append(signals, sig)
	}

	if skipped > 0 {
		slog.Debug("Skipped unusable records", "skipped", skipped, "total", len(records))
	}

	return signals, skipped
}

// Normalize converts a single raw record into a Signal. The second return
// value is false for genuinely unusable records.
func (n *Normalizer) Normalize(rec SourceRecord) (Signal, bool) {
	draft := n.adapterFor(rec.Collector)(rec.Record)

	if draft.Source == "" {
		draft.Source = rec.Collector
	}

	// Genuinely unusable: nothing to type it by, no date and no text.
	if draft.Type == "" && draft.Date.IsZero() && draft.Headline == "" && draft.Description == "" {
		return Signal{}, false
	}

	if draft.Type == "" {
		draft.Type = "unknown"
	}
	if draft.Headline == "" {
		if draft.Description != "" {
			draft.Headline = draft.Description
		} else {
			draft.Headline = fmt.Sprintf("Signal from %s", draft.Source)
		}
	}
	draft.Headline = truncate(strings.TrimSpace(draft.Headline), headlineMaxLen)

	sig := Signal{
		ID:          GenerateID(draft.Source, draft.URL, draft.Headline, draft.Date),
		Type:        draft.Type,
		Headline:    draft.Headline,
		Description: strings.TrimSpace(draft.Description),
		Date:        draft.Date,
		Source:      draft.Source,
		SourceURL:   draft.URL,
		Confidence:  n.trust.Confidence(draft.Source),
		Metadata:    draft.Metadata,
	}

	return sig, true
}

func (n *Normalizer) adapterFor(collector string) AdapterFunc {
	name := strings.ToLower(collector)
	if fn, ok := n.adapters[name]; ok {
		return fn
	}
	for _, key := range n.order {
		if strings.Contains(name, key) {
			return n.adapters[key]
		}
	}
	return genericAdapter
}

// GenerateID builds the stable signal identifier SIG-YYYYMMDD-XXXXXXXX from
// source, reference (source URL when present, normalized headline
// otherwise) and date. The same inputs always produce the same id, so
// re-aggregation is idempotent.
func GenerateID(source, url, headline string, date Date) string {
	ref := url
	if ref == "" {
		ref = NormalizeHeadline(headline)
	}
	sum := sha256.Sum256([]byte(source + "|" + ref + "|" + date.String()))
	return fmt.Sprintf("SIG-%s-%s", date.Compact(), strings.ToUpper(hex.EncodeToString(sum[:4])))
}

// newsAdapter handles records shaped like news articles: title, description
// or content, publication timestamp, article URL and an outlet name.
func newsAdapter(r RawRecord) Draft {
	source := stringField(r, "source")
	if source == "" {
		// NewsAPI-style nested source object.
		if m, ok := r["source"].(map[string]interface{}); ok {
			if name, ok := m["name"].(string); ok {
				source = name
			}
		}
	}

	return Draft{
		Type:        firstNonEmpty(stringField(r, "signal_type"), "news"),
		Headline:    stringField(r, "title", "headline"),
		Description: stringField(r, "description", "content", "summary"),
		URL:         stringField(r, "url", "source_url", "link"),
		Source:      source,
		Date:        dateField(r, "date", "publishedAt", "published_at"),
		Metadata:    mapField(r, "metadata"),
	}
}

// businessAdapter handles Crunchbase/LinkedIn-style records, folding the
// well-known metadata figures into the description the way the upstream
// collectors report them.
func businessAdapter(r RawRecord) Draft {
	description := stringField(r, "description")
	meta := mapField(r, "metadata")

	var extra []string
	for _, key := range []struct{ field, label string }{
		{"amount_raised", "Amount"},
		{"valuation", "Valuation"},
		{"funding_round", "Round"},
		{"total_openings", "Open positions"},
		{"department", "Department"},
	} {
		if v, ok := meta[key.field]; ok {
			extra = append(extra, fmt.Sprintf("%s: %v", key.label, v))
		}
	}
	if len(extra) > 0 {
		description = strings.TrimSpace(description + "\n" + strings.Join(extra, "\n"))
	}

	return Draft{
		Type:        stringField(r, "signal_type"),
		Headline:    firstNonEmpty(stringField(r, "headline"), stringField(r, "description")),
		Description: description,
		URL:         stringField(r, "source_url", "url"),
		Source:      stringField(r, "source"),
		Date:        dateField(r, "date", "date_detected"),
		Metadata:    meta,
	}
}

// technicalAdapter handles GitHub and API-changelog records.
func technicalAdapter(r RawRecord) Draft {
	detail := stringField(r, "technical_detail", "description")
	description := detail
	if implication := stringField(r, "strategic_implication"); implication != "" {
		description = description + "\n\nStrategic implication: " + implication
	}

	meta := mapField(r, "metadata")
	var extra []string
	for _, key := range []struct{ field, label string }{
		{"repository", "Repository"},
		{"version", "Version"},
		{"api_name", "API"},
	} {
		if v, ok := meta[key.field]; ok {
			extra = append(extra, fmt.Sprintf("%s: %v", key.label, v))
		}
	}
	if len(extra) > 0 {
		description = strings.TrimSpace(description + "\n" + strings.Join(extra, "\n"))
	}

	return Draft{
		Type:        stringField(r, "signal_type"),
		Headline:    firstNonEmpty(stringField(r, "headline"), detail),
		Description: description,
		URL:         stringField(r, "source_url", "url"),
		Source:      stringField(r, "source"),
		Date:        dateField(r, "date", "date_detected"),
		Metadata:    meta,
	}
}

// genericAdapter is the fallback for collectors without a registered
// adapter. It reads the common field names and nothing else.
func genericAdapter(r RawRecord) Draft {
	return Draft{
		Type:        stringField(r, "signal_type", "type"),
		Headline:    stringField(r, "headline", "title", "description"),
		Description: stringField(r, "description", "content", "technical_detail"),
		URL:         stringField(r, "source_url", "url", "link"),
		Source:      stringField(r, "source"),
		Date:        dateField(r, "date", "date_detected", "publishedAt"),
		Metadata:    mapField(r, "metadata"),
	}
}

func stringField(r RawRecord, keys ...string) string {
	for _, key := range keys {
		if v, ok := r[key].(string); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

func mapField(r RawRecord, key string) map[string]interface{} {
	if m, ok := r[key].(map[string]interface{}); ok {
		return m
	}
	return nil
}

// dateField parses the first present date-ish field. Records carry dates in
// wildly different formats (RFC3339 timestamps, bare dates, US-style
// strings); anything unparseable is treated as unknown rather than an
// error.
func dateField(r RawRecord, keys ...string) Date {
	for _, key := range keys {
		s, ok := r[key].(string)
		if !ok || strings.TrimSpace(s) == "" {
			continue
		}
		t, err := dateparse.ParseAny(strings.TrimSpace(s))
		if err != nil {
			continue
		}
		return DateOf(t)
	}
	return Date{}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen])
}
