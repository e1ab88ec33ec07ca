package output

import (
	"encoding/csv"
	"os"
	"strconv"

	"github.com/law-makers/stockcrawl/pkg/models"
)

// recordHeader matches the JSON keys of models.StockRecord
var recordHeader = []string{
	"rank", "name", "symbol", "price", "change", "change_percent",
	"high", "low", "price_diff", "volume_shrs", "turnover_B_NTD",
}

func recordRow(r models.StockRecord) []string {
	return []string{
		strconv.Itoa(r.Rank), r.Name, r.Symbol, r.Price, r.Change, r.ChangePercent,
		r.High, r.Low, r.PriceDiff, r.Volume, r.Turnover,
	}
}

// SaveCSV writes the ranking batch to a CSV file. Returns an error on failure.
func SaveCSV(records []models.StockRecord, filepath string) error {
	file, err := os.Create(filepath)
	if err != nil {
		return err
	}
	defer file.Close()

	// UTF-8 BOM
	if _, err := file.WriteString("\ufeff"); err != nil {
		return err
	}

	writer := csv.NewWriter(file)
	if err := writer.Write(recordHeader); err != nil {
		return err
	}
	for _, r := range records {
		if err := writer.Write(recordRow(r)); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}
