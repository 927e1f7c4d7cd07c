package engine

import (
	"sort"
	"strings"

	"finboard/internal/core"
)

// ClassifierRule maps a lower-case description substring to a source label.
// Rules are evaluated in order; the first match wins.
type ClassifierRule struct {
	Match string
	Label string
}

// DefaultSourceRules reproduce the historical income attribution: scan the
// description for these substrings in priority order, fall back to "Other".
var DefaultSourceRules = []ClassifierRule{
	{Match: "salary", Label: "Salary"},
	{Match: "freelance", Label: "Freelance"},
	{Match: "business", Label: "Business"},
	{Match: "investment", Label: "Investment"},
}

const fallbackSourceLabel = "Other"

// IncomeSources groups income transactions by classified source, sorted by
// descending total. A nil rule list uses DefaultSourceRules. Ties keep
// first-seen order.
func IncomeSources(txs []core.Transaction, rules []ClassifierRule) []SourceSum {
	if rules == nil {
		rules = DefaultSourceRules
	}
	index := make(map[string]int)
	sums := make([]SourceSum, 0)
	for _, tx := range txs {
		if tx.Type != core.Income {
			continue
		}
		label := classify(tx.Description, rules)
		i, ok := index[label]
		if !ok {
			i = len(sums)
			index[label] = i
			sums = append(sums, SourceSum{Name: label})
		}
		sums[i].ValueCents += tx.Amount.Cents
		sums[i].Count++
	}
	sort.SliceStable(sums, func(i, j int) bool {
		return sums[i].ValueCents > sums[j].ValueCents
	})
	return sums
}

func classify(description string, rules []ClassifierRule) string {
	desc := strings.ToLower(description)
	for _, r := range rules {
		if strings.Contains(desc, r.Match) {
			return r.Label
		}
	}
	return fallbackSourceLabel
}
