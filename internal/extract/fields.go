package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/law-makers/stockcrawl/pkg/models"
)

// Number of positional data cells in a row
const dataCellCount = 8

// exchangeSuffix is appended to listed symbols on the page
const exchangeSuffix = ".TW"

// RawFieldSet holds the unnormalized strings recovered from one row
type RawFieldSet struct {
	Rank   string
	Name   string
	Symbol string
	// Cells in page order: price, change, change percent, high, low,
	// price diff, volume, turnover.
	Cells [dataCellCount]string
}

var (
	leftPanelCascade = Cascade{
		ByClass("div", "D(f) Start(0)"),
		BySelector(`div[class*="Start(0)"]`),
	}
	rankCascade = Cascade{
		ByClass("div", "W(40px)"),
		BySelector(`div[class*="W(40px)"]`),
	}
	nameCascade = Cascade{
		ByClass("div", "Lh(20px)"),
		BySelector(`div[class*="Fw(600)"]`),
	}
	symbolCascade = Cascade{
		ByClass("span", "Fz(14px)"),
		BySelector(`span[class*="C(#979ba7)"]`),
	}
	cellCascade = Cascade{
		ByClass("div", "Fxg(1)"),
		BySelector(`div[class*="Fxg(1)"]`),
	}

	labelled = []Texter{ChildText("span"), OwnText()}
)

// ExtractFields reads the raw fields of one row. It reports false when the
// row has no left panel, in which case the row must be skipped.
func ExtractFields(row *goquery.Selection) (RawFieldSet, bool) {
	var raw RawFieldSet

	left := leftPanelCascade.First(row)
	if left.Length() == 0 {
		return raw, false
	}

	raw.Rank = TextOf(rankCascade.First(left), "0", labelled...)
	raw.Name = TextOf(nameCascade.First(left), models.NotAvailable, OwnText())

	raw.Symbol = models.NotAvailable
	if symbol := symbolCascade.First(left); symbol.Length() > 0 {
		raw.Symbol = strings.ReplaceAll(strings.TrimSpace(symbol.Text()), exchangeSuffix, "")
	}

	cells := cellCascade.All(row)
	for i := range raw.Cells {
		if i >= cells.Length() {
			raw.Cells[i] = models.NotAvailable
			continue
		}
		raw.Cells[i] = TextOf(cells.Eq(i), models.NotAvailable, labelled...)
	}

	return raw, true
}
