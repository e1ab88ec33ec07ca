package extract

import (
	"strconv"
	"strings"

	"github.com/law-makers/stockcrawl/pkg/models"
)

var glyphReplacer = strings.NewReplacer("▲", "", "▼", "")

// Normalize turns a raw field set into a record. index is the number of
// rows extracted before this one in the same pass; it provides the rank
// when the page rank is not a positive integer.
func Normalize(raw RawFieldSet, index int) models.StockRecord {
	rank, err := strconv.Atoi(raw.Rank)
	if err != nil || rank <= 0 {
		rank = index + 1
	}

	return models.StockRecord{
		Rank:          rank,
		Name:          raw.Name,
		Symbol:        raw.Symbol,
		Price:         raw.Cells[0],
		Change:        stripGlyphs(raw.Cells[1]),
		ChangePercent: stripGlyphs(raw.Cells[2]),
		High:          raw.Cells[3],
		Low:           raw.Cells[4],
		PriceDiff:     raw.Cells[5],
		Volume:        raw.Cells[6],
		Turnover:      raw.Cells[7],
	}
}

func stripGlyphs(s string) string {
	return strings.TrimSpace(glyphReplacer.Replace(s))
}
