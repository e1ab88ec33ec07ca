package hybrid

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/law-makers/stockcrawl/internal/extract"
)

// HasRankingRows reports whether html already carries ranking rows, i.e.
// the server rendered the list and no browser is needed
func HasRankingRows(html string) bool {
	if strings.TrimSpace(html) == "" {
		return false
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return false
	}
	return extract.LocateRows(doc.Selection).Length() > 0
}

// CountScripts returns the number of <script> elements in html
func CountScripts(html string) int {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return 0
	}
	return doc.Find("script").Length()
}
