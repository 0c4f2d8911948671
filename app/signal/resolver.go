package signal

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
)

// Resolver finds groups of signals that describe the same underlying event
// with differing details and reconciles each group into a single signal.
// Two signals are related iff they share a date and their headline
// similarity meets the group threshold, which is deliberately looser than
// the dedup threshold. Relatedness is closed transitively within a date
// bucket: if A relates to B and B to C, all three form one group even when
// A and C fall below the threshold pairwise.
type Resolver struct {
	threshold float64
}

func NewResolver(threshold float64) *Resolver {
	return &Resolver{threshold: threshold}
}

// Run reconciles the signal list, one output signal per distinct event.
// Groups of size one pass through untouched. Output preserves the input
// order of each group's first member.
func (r *Resolver) Run(signals []Signal) []Signal {
	// Partition indices by date; unknown dates never group.
	buckets := make(map[int][]int)
	for i, sig := range signals {
		key := sig.Date.Key()
		if key == 0 {
			continue
		}
		buckets[key] = append(buckets[key], i)
	}

	parent := make([]int, len(signals))
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(i int) int {
		if parent[i] != i {
			parent[i] = find(parent[i])
		}
		return parent[i]
	}
	union := func(a, b int) {
		ra, rb := find(a), find(b)
		if ra == rb {
			return
		}
		if ra < rb {
			parent[rb] = ra
		} else {
			parent[ra] = rb
		}
	}

	for _, bucket := range buckets {
		headlines := make([]string, len(bucket))
		for i, idx := range bucket {
			headlines[i] = NormalizeHeadline(signals[idx].Headline)
		}
		for i := range bucket {
			for j := i + 1; j < len(bucket); j++ {
				if SimilarityRatio(headlines[i], headlines[j]) >= r.threshold {
					union(bucket[i], bucket[j])
				}
			}
		}
	}

	// Collect groups keyed by root, members in input order.
	groups := make(map[int][]int)
	var roots []int
	for i := range signals {
		root := find(i)
		if _, seen := groups[root]; !seen {
			roots = append(roots, root)
		}
		groups[root] = append(groups[root], i)
	}
	sort.Ints(roots)

	merged := 0
	out := make([]Signal, 0, len(roots))
	for _, root := range roots {
		members := groups[root]
		if len(members) == 1 {
			out = append(out, signals[members[0]])
			continue
		}
		group := make([]Signal, len(members))
		for i, idx := range members {
			group[i] = signals[idx]
		}
		out = append(out, r.resolve(group))
		merged += len(members) - 1
	}

	if merged > 0 {
		slog.Debug("Resolved conflicting signals", "merged", merged, "events", len(out))
	}

	return out
}

// resolve reconciles one group of size >= 2 into a single signal.
func (r *Resolver) resolve(group []Signal) Signal {
	primary := group[0]
	for _, sig := range group[1:] {
		if sig.Confidence.Rank() > primary.Confidence.Rank() {
			primary = sig
		}
	}

	resolved := primary

	// Most detailed description wins regardless of tier; a lower-confidence
	// source may contribute text while the primary sets attribution.
	for _, sig := range group {
		if len(sig.Description) > len(resolved.Description) {
			resolved.Description = sig.Description
		}
	}

	// All distinct contributing sources, in first-encountered order, with
	// the primary's source leading.
	sources := []string{primary.Source}
	seen := map[string]bool{primary.Source: true}
	for _, sig := range group {
		if !seen[sig.Source] {
			seen[sig.Source] = true
			sources = append(sources, sig.Source)
		}
	}
	resolved.Sources = sources

	if len(sources) > 1 {
		note := fmt.Sprintf("Information aggregated from %d sources: %s",
			len(sources), strings.Join(sources, ", "))
		if disagreement := describeDisagreements(group); disagreement != "" {
			note += ". " + disagreement
		}
		resolved.Note = note
	}

	return resolved
}

// describeDisagreements surfaces conflicting extractable facts instead of
// silently picking one value: any metadata key reported with differing
// values by group members is named together with the values seen.
func describeDisagreements(group []Signal) string {
	keySet := make(map[string]bool)
	for _, sig := range group {
		for key := range sig.Metadata {
			keySet[key] = true
		}
	}
	keys := make([]string, 0, len(keySet))
	for key := range keySet {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var conflicts []string
	for _, key := range keys {
		var values []string
		seen := make(map[string]bool)
		for _, sig := range group {
			v, ok := sig.Metadata[key]
			if !ok {
				continue
			}
			repr := fmt.Sprintf("%v", v)
			if !seen[repr] {
				seen[repr] = true
				values = append(values, repr)
			}
		}
		if len(values) > 1 {
			conflicts = append(conflicts, fmt.Sprintf("%s (%s)", key, strings.Join(values, " vs ")))
		}
	}

	if len(conflicts) == 0 {
		return ""
	}
	return "Sources disagree on: " + strings.Join(conflicts, ", ")
}
