package signal

import "strings"

// TrustTable maps source names to confidence tiers. It is the single source
// of truth for confidence: the Normalizer derives each signal's confidence
// from it and the Resolver ranks merge candidates with it. The table is
// immutable after construction.
type TrustTable struct {
	tier1 []string
	tier2 []string
}

// NewTrustTable returns the default trust tiers: primary/official sources
// and verified-data APIs are tier 1 (high), established press outlets are
// tier 2 (medium), everything else is tier 3 (low).
func NewTrustTable() *TrustTable {
	return &TrustTable{
		tier1: []string{
			"crunchbase",
			"github",
			"linkedin",
			"official",
			"api changelog",
			"press release",
		},
		tier2: []string{
			"techcrunch",
			"bloomberg",
			"reuters",
			"wall street journal",
			"financial times",
			"the information",
			"cnbc",
			"forbes",
		},
	}
}

// Confidence returns the confidence tier for a source name. Matching is
// case-insensitive and substring-based so "Stripe Official Blog" lands in
// the same tier as "official". Entries are checked in declaration order.
func (t *TrustTable) Confidence(source string) Confidence {
	name := strings.ToLower(source)
	for _, s := range t.tier1 {
		if strings.Contains(name, s) {
			return ConfidenceHigh
		}
	}
	for _, s := range t.tier2 {
		if strings.Contains(name, s) {
			return ConfidenceMedium
		}
	}
	return ConfidenceLow
}
