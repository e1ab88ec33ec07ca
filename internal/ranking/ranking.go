// Package ranking orders extracted records and builds the top-N view.
package ranking

import (
	"sort"

	"github.com/law-makers/stockcrawl/pkg/models"
)

// RankAndTruncate returns a copy of records sorted ascending by rank and the
// first min(topN, len) of them projected to TopNView. Ties keep extraction order.
func RankAndTruncate(records []models.StockRecord, topN int) ([]models.StockRecord, []models.TopNView) {
	sorted := make([]models.StockRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Rank < sorted[j].Rank
	})

	n := topN
	if n > len(sorted) {
		n = len(sorted)
	}
	if n < 0 {
		n = 0
	}

	top := make([]models.TopNView, 0, n)
	for _, rec := range sorted[:n] {
		top = append(top, rec.View())
	}
	return sorted, top
}
