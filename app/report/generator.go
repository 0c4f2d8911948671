package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/lysyi3m/signal-comb/app/signal"
)

// Metadata describes one aggregation run inside the JSON artifact.
type Metadata struct {
	TargetCompany     string         `json:"target_company"`
	GeneratedAt       time.Time      `json:"generated_at"`
	TotalCollected    int            `json:"total_collected"`
	Skipped           int            `json:"skipped"`
	DuplicatesRemoved int            `json:"duplicates_removed"`
	Summary           signal.Summary `json:"summary"`
}

// Document is the persisted artifact of an aggregation run.
type Document struct {
	Metadata Metadata        `json:"metadata"`
	Signals  []signal.Signal `json:"signals"`
}

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

func (g *Generator) Build(targetCompany string, generatedAt time.Time, result *signal.Result) Document {
	return Document{
		Metadata: Metadata{
			TargetCompany:     targetCompany,
			GeneratedAt:       generatedAt.UTC(),
			TotalCollected:    result.TotalCollected,
			Skipped:           result.Skipped,
			DuplicatesRemoved: result.DuplicatesRemoved,
			Summary:           result.Summary,
		},
		Signals: result.Signals,
	}
}

// WriteJSON writes the artifact to dir, plus a stable latest.json copy for
// consumers that always want the newest run.
func (g *Generator) WriteJSON(dir string, doc Document) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode artifact: %w", err)
	}
	data = append(data, '\n')

	path := filepath.Join(dir, fmt.Sprintf("signals_%s.json", doc.Metadata.GeneratedAt.Format("20060102_150405")))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write artifact: %w", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "latest.json"), data, 0644); err != nil {
		return "", fmt.Errorf("failed to write latest artifact: %w", err)
	}

	return path, nil
}

// WriteMarkdown renders the human-readable report next to the JSON artifact.
func (g *Generator) WriteMarkdown(dir string, doc Document) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	content := g.RenderMarkdown(doc)

	path := filepath.Join(dir, fmt.Sprintf("report_%s.md", doc.Metadata.GeneratedAt.Format("20060102_150405")))
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "latest.md"), []byte(content), 0644); err != nil {
		return "", fmt.Errorf("failed to write latest report: %w", err)
	}

	return path, nil
}

// RenderMarkdown builds the report body: run summary up top, then signals
// grouped by primary category in canonical order.
func (g *Generator) RenderMarkdown(doc Document) string {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# Signal Report: %s\n\n", doc.Metadata.TargetCompany)
	fmt.Fprintf(&buf, "Generated: %s\n\n", doc.Metadata.GeneratedAt.Format("2006-01-02 15:04 MST"))

	buf.WriteString("## Summary\n\n")
	fmt.Fprintf(&buf, "- Signals: %d (from %d collected records)\n", doc.Metadata.Summary.Total, doc.Metadata.TotalCollected)
	fmt.Fprintf(&buf, "- Duplicates removed: %d\n", doc.Metadata.DuplicatesRemoved)
	fmt.Fprintf(&buf, "- Unusable records skipped: %d\n", doc.Metadata.Skipped)
	if !doc.Metadata.Summary.EarliestDate.IsZero() {
		fmt.Fprintf(&buf, "- Date range: %s to %s\n", doc.Metadata.Summary.EarliestDate, doc.Metadata.Summary.LatestDate)
	}
	buf.WriteString("\n")

	grouped := make(map[signal.Category][]signal.Signal)
	for _, sig := range doc.Signals {
		grouped[sig.PrimaryCategory] = append(grouped[sig.PrimaryCategory], sig)
	}

	for _, category := range signal.Categories {
		signals := grouped[category]
		if len(signals) == 0 {
			continue
		}

		fmt.Fprintf(&buf, "## %s (%d)\n\n", category, len(signals))
		for _, sig := range signals {
			g.writeSignal(&buf, sig)
		}
	}

	return buf.String()
}

func (g *Generator) writeSignal(buf *bytes.Buffer, sig signal.Signal) {
	fmt.Fprintf(buf, "### %s\n\n", sig.Headline)

	fmt.Fprintf(buf, "- Confidence: %s\n", sig.Confidence)
	if !sig.Date.IsZero() {
		fmt.Fprintf(buf, "- Date: %s\n", sig.Date)
	}
	if len(sig.Sources) > 0 {
		fmt.Fprintf(buf, "- Sources: %s\n", strings.Join(sig.Sources, ", "))
	} else {
		fmt.Fprintf(buf, "- Source: %s\n", sig.Source)
	}
	if sig.SourceURL != "" {
		fmt.Fprintf(buf, "- Link: %s\n", sig.SourceURL)
	}
	if len(sig.SecondaryCategories) > 0 {
		labels := make([]string, len(sig.SecondaryCategories))
		for i, c := range sig.SecondaryCategories {
			labels[i] = string(c)
		}
		fmt.Fprintf(buf, "- Also relevant to: %s\n", strings.Join(labels, ", "))
	}
	buf.WriteString("\n")

	if sig.Description != "" {
		fmt.Fprintf(buf, "%s\n\n", sig.Description)
	}
	if sig.Note != "" {
		fmt.Fprintf(buf, "> %s\n\n", sig.Note)
	}
}
