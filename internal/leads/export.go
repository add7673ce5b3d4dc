package leads

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

var exportHeader = []string{"firstName", "lastName", "email", "phoneNumber", "status"}

const templateSheet = "Leads"

// WriteCSV writes leads with a header row. Fields are quoted as needed.
func WriteCSV(w io.Writer, leads []Lead) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return err
	}
	for _, l := range leads {
		if err := cw.Write([]string{l.FirstName, l.LastName, l.Email, l.PhoneNumber, string(l.Status)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func ExportCSV(leads []Lead) (string, error) {
	var b strings.Builder
	if err := WriteCSV(&b, leads); err != nil {
		return "", err
	}
	return b.String(), nil
}

// ExportTemplateXLSX writes a one-sheet workbook with the four import columns and an example row.
func ExportTemplateXLSX(w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), templateSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if err := f.SetSheetRow(templateSheet, "A1", &[]any{"firstName", "lastName", "email", "phoneNumber"}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if err := f.SetSheetRow(templateSheet, "A2", &[]any{"John", "Doe", "john@example.com", "+1234567890"}); err != nil {
		return fmt.Errorf("write example: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}
	if err := f.SetCellStyle(templateSheet, "A1", "D1", bold); err != nil {
		return fmt.Errorf("header style: %w", err)
	}
	if err := f.SetColWidth(templateSheet, "A", "D", 20); err != nil {
		return fmt.Errorf("column width: %w", err)
	}

	return f.Write(w)
}

// readXLSX returns the first sheet's rows, padded to the header width
// since trailing empty cells are not materialized.
func readXLSX(src io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(src)
	if err != nil {
		return nil, fmt.Errorf("%w: unreadable workbook: %v", ErrValidation, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: workbook has no sheets", ErrValidation)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("%w: read sheet: %v", ErrValidation, err)
	}

	out := rows[:0]
	for _, row := range rows {
		if len(row) == 0 {
			continue
		}
		out = append(out, row)
	}
	if len(out) > 0 {
		width := len(out[0])
		for i, row := range out[1:] {
			for len(row) < width {
				row = append(row, "")
			}
			out[i+1] = row
		}
	}
	return out, nil
}
