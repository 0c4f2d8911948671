package signal

import (
	"sort"
	"strings"
)

const (
	// primaryThreshold is the minimum score the top category must reach,
	// otherwise classification falls back to the default category.
	primaryThreshold = 0.2
	// secondaryThreshold is the minimum score for a secondary label.
	secondaryThreshold = 0.3
	// defaultCategory is assigned when no score clears primaryThreshold, so
	// every signal always carries a primary label.
	defaultCategory = CategoryProduct

	keywordWeight = 0.4
	typeWeight    = 0.3
	patternWeight = 0.3
)

// Classifier scores signals against the seven-category taxonomy and
// assigns primary and secondary labels. Classification is a pure function
// of a signal's text and type; it never fails, a signal without textual
// content simply receives all-zero scores and the default category.
type Classifier struct{}

func NewClassifier() *Classifier {
	return &Classifier{}
}

// Run classifies every signal, returning annotated copies.
func (c *Classifier) Run(signals []Signal) []Signal {
	out := make([]Signal, len(signals))
	for i, sig := range signals {
		out[i] = c.Classify(sig)
	}
	return out
}

// Classify annotates one signal with category scores and labels.
func (c *Classifier) Classify(sig Signal) Signal {
	text := strings.ToLower(sig.Headline + " " + sig.Description)
	sigType := strings.ToLower(sig.Type)

	scores := make(map[Category]float64, len(Categories))
	for _, category := range Categories {
		scores[category] = scoreCategory(text, sigType, taxonomy[category])
	}

	primary, secondaries := assignCategories(scores)

	sig.PrimaryCategory = primary
	sig.SecondaryCategories = secondaries
	sig.CategoryScores = scores
	return sig
}

// scoreCategory combines three independent evidence channels into one score
// in [0,1]: keyword density (0.4), type correlation (0.3) and structural
// pattern matches (0.3). Keyword density saturates rather than growing
// linearly, so a single strong hit still contributes meaningfully.
func scoreCategory(text, sigType string, rule CategoryRule) float64 {
	score := 0.0

	hits := 0
	for _, keyword := range rule.Keywords {
		if strings.Contains(text, keyword) {
			hits++
		}
	}
	if hits > 0 {
		density := float64(hits) / float64(len(rule.Keywords)) * 2
		if density > keywordWeight {
			density = keywordWeight
		}
		score += density
	}

	if rule.Types[sigType] {
		score += typeWeight
	}

	matches := 0
	for _, pattern := range rule.Patterns {
		if pattern.MatchString(text) {
			matches++
		}
	}
	if matches > 0 {
		structural := float64(matches) / float64(len(rule.Patterns)) * 0.5
		if structural > patternWeight {
			structural = patternWeight
		}
		score += structural
	}

	if score > 1.0 {
		score = 1.0
	}
	return score
}

// assignCategories picks the primary label (argmax, subject to the minimum
// threshold) and up to two secondary labels. Ties break by canonical
// category order so the result is deterministic.
func assignCategories(scores map[Category]float64) (Category, []Category) {
	ranked := make([]Category, len(Categories))
	copy(ranked, Categories)
	sort.SliceStable(ranked, func(i, j int) bool {
		return scores[ranked[i]] > scores[ranked[j]]
	})

	primary := defaultCategory
	if scores[ranked[0]] >= primaryThreshold {
		primary = ranked[0]
	}

	var secondaries []Category
	for _, category := range ranked {
		if category == primary {
			continue
		}
		if scores[category] >= secondaryThreshold {
			secondaries = append(secondaries, category)
		}
		if len(secondaries) == 2 {
			break
		}
	}

	return primary, secondaries
}
