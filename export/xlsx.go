package export

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/use-agent/gleaner/models"
)

const xlsxSheet = "Results"

// XLSX writes "<base>.xlsx" with the tabular columns on a "Results" sheet.
func (r *Registry) XLSX(records []models.ScrapedRecord, basePath string) (string, error) {
	path := basePath + ".xlsx"

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", xlsxSheet); err != nil {
		return "", err
	}

	header := make([]any, len(tabularHeader))
	for i, h := range tabularHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(xlsxSheet, "A1", &header); err != nil {
		return "", err
	}
	for i := range records {
		row := tabularRow(&records[i])
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return "", err
		}
		if err := f.SetSheetRow(xlsxSheet, cell, &row); err != nil {
			return "", fmt.Errorf("row %d: %w", i+1, err)
		}
	}
	if err := f.SetPanes(xlsxSheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}
	if err := f.SaveAs(path); err != nil {
		return "", err
	}
	return path, nil
}
