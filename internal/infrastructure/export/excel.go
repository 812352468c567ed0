package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// Workbook пишет xlsx: по листу <Код>_Plaka на каждую категорию,
// строка заголовков и по строке на запись.
func (e *Exporter) Workbook(w io.Writer, sheets []Sheet) error {
	if len(sheets) == 0 {
		return fmt.Errorf("workbook needs at least one sheet")
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#F2F2F2"}},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	ref := e.reportTime()
	defaultSheet := f.GetSheetName(0)

	for i, sh := range sheets {
		name := sh.Entry.SheetName()
		if i == 0 {
			if err := f.SetSheetName(defaultSheet, name); err != nil {
				return fmt.Errorf("failed to rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("failed to create sheet %s: %w", name, err)
		}

		cols := Columns(sh.Entry)
		if err := setRow(f, name, 1, cols); err != nil {
			return err
		}
		for j, r := range sh.Records {
			if err := setRow(f, name, j+2, e.Row(sh.Entry, r, ref)); err != nil {
				return err
			}
		}

		last, err := excelize.CoordinatesToCellName(len(cols), 1)
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(name, "A1", last, header); err != nil {
			return fmt.Errorf("failed to style header: %w", err)
		}
		lastCol, err := excelize.ColumnNumberToName(len(cols))
		if err != nil {
			return err
		}
		if err := f.SetColWidth(name, "A", lastCol, 18); err != nil {
			return fmt.Errorf("failed to set column width: %w", err)
		}
	}
	f.SetActiveSheet(0)

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
		return fmt.Errorf("failed to write row %d: %w", row, err)
	}
	return nil
}
