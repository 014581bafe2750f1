package stats

import (
	"sort"

	"github.com/verte-zerg/tuiread/internal/model"
)

// TopDocumentsByWords returns the names of the top N documents by words read.
func TopDocumentsByWords(aggs []model.DocumentAggregate, n int) []string {
	if n <= 0 || len(aggs) == 0 {
		return nil
	}
	sorted := make([]model.DocumentAggregate, len(aggs))
	copy(sorted, aggs)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Words == sorted[j].Words {
			return sorted[i].Document < sorted[j].Document
		}
		return sorted[i].Words > sorted[j].Words
	})
	n = min(n, len(sorted))
	out := make([]string, 0, n)
	for _, agg := range sorted[:n] {
		out = append(out, agg.Document)
	}
	return out
}
