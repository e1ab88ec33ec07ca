// Package extract turns the volume ranking page into stock records.
//
// Every lookup on the page goes through a Cascade: an ordered list of
// selector strategies tried until one matches. All structural knowledge of
// the page lives in the cascades declared in rows.go and fields.go.
package extract

import (
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/law-makers/stockcrawl/pkg/models"
	"github.com/rs/zerolog/log"
)

var (
	// ErrEmptyDocument is returned for blank markup
	ErrEmptyDocument = errors.New("empty HTML document")
	// ErrNoRows is returned when neither row selector matches
	ErrNoRows = errors.New("no ranking rows found")
)

// Result is the outcome of one extraction pass, in document order
type Result struct {
	Records   []models.StockRecord
	RowsFound int
	Skipped   int
}

// ParseHTML parses raw markup and extracts every ranking row
func ParseHTML(html string) (*Result, error) {
	if strings.TrimSpace(html) == "" {
		return nil, ErrEmptyDocument
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return ParseDocument(doc)
}

// ParseDocument extracts every ranking row of an already parsed document.
// Rows that cannot be read are skipped; an empty Records slice with a nil
// error means rows were found but none of them survived.
func ParseDocument(doc *goquery.Document) (*Result, error) {
	rows := LocateRows(doc.Selection)
	if rows.Length() == 0 {
		return nil, ErrNoRows
	}
	return parseRows(rows), nil
}

func parseRows(rows *goquery.Selection) *Result {
	res := &Result{
		Records:   make([]models.StockRecord, 0, rows.Length()),
		RowsFound: rows.Length(),
	}

	rows.Each(func(i int, row *goquery.Selection) {
		raw, ok := extractRow(i, row)
		if !ok {
			res.Skipped++
			return
		}
		res.Records = append(res.Records, Normalize(raw, len(res.Records)))
	})

	log.Debug().
		Int("rows", res.RowsFound).
		Int("records", len(res.Records)).
		Int("skipped", res.Skipped).
		Msg("Extraction completed")

	return res
}

// extractRow isolates a single row so a failure never leaks a partial record
func extractRow(i int, row *goquery.Selection) (raw RawFieldSet, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			log.Warn().Int("row", i+1).Interface("panic", r).Msg("Row extraction failed, skipping")
			raw, ok = RawFieldSet{}, false
		}
	}()

	raw, ok = ExtractFields(row)
	if !ok {
		log.Warn().Int("row", i+1).Msg("Left panel not found, skipping row")
	}
	return raw, ok
}
