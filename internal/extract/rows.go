package extract

import "github.com/PuerkitoBio/goquery"

// rowCascade locates the repeating ranking rows
var rowCascade = Cascade{
	ByClass("li", "List(n)"),
	BySelector(`div[class*="table-body"] li`),
}

// LocateRows returns the ranking row elements of the page. An empty
// selection is a valid result that callers must treat as a structural failure.
func LocateRows(doc *goquery.Selection) *goquery.Selection {
	return rowCascade.All(doc)
}
