package output

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/law-makers/stockcrawl/pkg/models"
)

const xlsxSheet = "Ranking"

// SaveXLSX writes the ranking batch to a single-sheet workbook
func SaveXLSX(report models.RankingReport, filepath string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", xlsxSheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	header := make([]interface{}, len(recordHeader))
	for i, h := range recordHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(xlsxSheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, r := range report.RankingData {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{
			r.Rank, r.Name, r.Symbol, r.Price, r.Change, r.ChangePercent,
			r.High, r.Low, r.PriceDiff, r.Volume, r.Turnover,
		}
		if err := f.SetSheetRow(xlsxSheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}

	if err := f.SetDocProps(&excelize.DocProperties{
		Title:       report.Source,
		Description: fmt.Sprintf("execution %d, %s", report.ExecutionCount, report.LastUpdated),
	}); err != nil {
		return fmt.Errorf("failed to set properties: %w", err)
	}

	if err := f.SaveAs(filepath); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}
