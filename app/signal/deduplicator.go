package signal

import "log/slog"

// Deduplicator collapses exact and near-duplicate signals into one
// representative each. It only removes signals; content merging is the
// Resolver's job. Three rules apply in order of strictness, first match
// wins per pair:
//
//  1. identical id
//  2. identical non-empty source URL
//  3. same date and normalized headline similarity >= the fuzzy threshold
//
// When a duplicate pair is found the signal with the higher confidence tier
// is kept; on a tie, the one with the longer description; on a further tie,
// the one seen first.
type Deduplicator struct {
	threshold float64
}

func NewDeduplicator(threshold float64) *Deduplicator {
	return &Deduplicator{threshold: threshold}
}

type dedupSlot struct {
	sig     Signal
	removed bool
}

// Run returns the deduplicated list, in first-seen order, together with the
// number of removed duplicates.
func (d *Deduplicator) Run(signals []Signal) ([]Signal, int) {
	slots := make([]*dedupSlot, 0, len(signals))
	byID := make(map[string]*dedupSlot)
	byURL := make(map[string]*dedupSlot)

	// Exact id and URL matches first.
	for _, sig := range signals {
		if existing, ok := byID[sig.ID]; ok {
			existing.sig = preferred(existing.sig, sig)
			continue
		}
		if sig.SourceURL != "" {
			if existing, ok := byURL[sig.SourceURL]; ok {
				existing.sig = preferred(existing.sig, sig)
				byID[sig.ID] = existing
				continue
			}
		}

		slot := &dedupSlot{sig: sig}
		slots = append(slots, slot)
		byID[sig.ID] = slot
		if sig.SourceURL != "" {
			byURL[sig.SourceURL] = slot
		}
	}

	// Fuzzy headline matches within same-date buckets. Partitioning by date
	// bounds the quadratic comparison; signals with unknown dates never
	// fuzzy-match.
	buckets := make(map[int][]*dedupSlot)
	for _, slot := range slots {
		key := slot.sig.Date.Key()
		if key == 0 {
			continue
		}
		buckets[key] = append(buckets[key], slot)
	}

	for _, bucket := range buckets {
		for i, slot := range bucket {
			if slot.removed {
				continue
			}
			headline := NormalizeHeadline(slot.sig.Headline)
			for _, other := range bucket[i+1:] {
				if other.removed {
					continue
				}
				ratio := SimilarityRatio(headline, NormalizeHeadline(other.sig.Headline))
				if ratio >= d.threshold {
					slot.sig = preferred(slot.sig, other.sig)
					other.removed = true
					headline = NormalizeHeadline(slot.sig.Headline)
				}
			}
		}
	}

	out := make([]Signal, 0, len(slots))
	for _, slot := range slots {
		if !slot.removed {
			out = append(out, slot.sig)
		}
	}

	removed := len(signals) - len(out)
	if removed > 0 {
		slog.Debug("Removed duplicate signals", "removed", removed, "unique", len(out))
	}

	return out, removed
}

// preferred picks the representative of a duplicate pair: higher confidence
// tier, then longer description, then the incumbent.
func preferred(kept, candidate Signal) Signal {
	if candidate.Confidence.Rank() > kept.Confidence.Rank() {
		return candidate
	}
	if candidate.Confidence.Rank() == kept.Confidence.Rank() &&
		len(candidate.Description) > len(kept.Description) {
		return candidate
	}
	return kept
}
