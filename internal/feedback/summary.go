package feedback

import (
	"math"
	"sort"

	"ai-diet-planner/internal/domain"
)

// Summary aggregates a window of feedback records.
type Summary struct {
	Count            int                      `json:"count"`
	AverageAdherence float64                  `json:"average_adherence"`
	Sentiments       map[domain.Sentiment]int `json:"sentiments"`
	TopSuggestions   []string                 `json:"top_suggestions"`
}

const maxTopSuggestions = 3

// Summarize computes adherence and sentiment totals over records. The
// average is rounded to two decimals and is 0 for an empty window.
func Summarize(records []domain.FeedbackRecord) Summary {
	s := Summary{
		Sentiments:     map[domain.Sentiment]int{},
		TopSuggestions: []string{},
	}
	if len(records) == 0 {
		return s
	}

	counts := map[string]int{}
	var total float64
	for _, r := range records {
		total += r.Analysis.AdherenceScore
		s.Sentiments[r.Analysis.Sentiment]++
		for _, sug := range r.Analysis.Suggestions {
			counts[sug]++
		}
	}
	s.Count = len(records)
	s.AverageAdherence = math.Round(total/float64(len(records))*100) / 100

	suggestions := make([]string, 0, len(counts))
	for sug := range counts {
		suggestions = append(suggestions, sug)
	}
	sort.Slice(suggestions, func(i, j int) bool {
		if counts[suggestions[i]] != counts[suggestions[j]] {
			return counts[suggestions[i]] > counts[suggestions[j]]
		}
		return suggestions[i] < suggestions[j]
	})
	if len(suggestions) > maxTopSuggestions {
		suggestions = suggestions[:maxTopSuggestions]
	}
	s.TopSuggestions = suggestions

	return s
}
