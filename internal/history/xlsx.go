package history

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"
)

const xlsxSheet = "履歴"

// ExportXLSX renders the history as a one-sheet workbook.
func (r *Repository) ExportXLSX(ctx context.Context) ([]byte, error) {
	t, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	return encodeXLSX(t)
}

func encodeXLSX(t Table) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), xlsxSheet); err != nil {
		return nil, fmt.Errorf("name sheet: %w", err)
	}

	rows := make([][]string, 0, len(t.Rows)+1)
	if len(t.Columns) > 0 {
		rows = append(rows, t.Columns)
	}
	rows = append(rows, t.Rows...)

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return nil, err
		}
		vals := make([]interface{}, len(row))
		for j, v := range row {
			vals[j] = v
		}
		if err := f.SetSheetRow(xlsxSheet, cell, &vals); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	if len(t.Columns) > 0 {
		if err := f.SetPanes(xlsxSheet, &excelize.Panes{
			Freeze:      true,
			YSplit:      1,
			TopLeftCell: "A2",
			ActivePane:  "bottomLeft",
		}); err != nil {
			return nil, fmt.Errorf("freeze header: %w", err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
