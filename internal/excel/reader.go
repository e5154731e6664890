// Package excel implements the spreadsheet side of the carnet store: parsing
// uploaded workbooks, reconciling them row by row against the store, and
// rendering the active record set back into a workbook.
package excel

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Column titles understood on import. Matching is case-insensitive and
// treats spaces and underscores alike, so exports from older tools keep
// round-tripping.
const (
	colSurname        = "surname"
	colGivenName      = "given name"
	colNationalID     = "national id"
	colEmployeeNumber = "employee number"
	colQualification  = "qualification date"
	colExpiration     = "expiration date"
	colMedical        = "medical fitness"
)

// Row is one data row of an uploaded workbook, untouched except for cell
// trimming. Number is the 1-based sheet row (the header is row 1).
type Row struct {
	Number            int
	Surname           string
	GivenName         string
	NationalID        string
	EmployeeNumber    string
	QualificationDate string
	ExpirationDate    string
	MedicalFitness    string
}

// ReadCarnets parses the first sheet of an xlsx stream into rows. A missing
// or empty sheet is a file-level error; per-cell problems are left for the
// reconciler so one bad row never aborts the batch.
func ReadCarnets(r io.Reader) ([]Row, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %q is empty", sheets[0])
	}

	cols := map[string]int{}
	for i, title := range rows[0] {
		cols[normalizeTitle(title)] = i
	}

	out := make([]Row, 0, len(rows)-1)
	for i, cells := range rows[1:] {
		row := Row{
			Number:            i + 2, // 1-based, after the header row
			Surname:           cell(cells, cols, colSurname),
			GivenName:         cell(cells, cols, colGivenName),
			NationalID:        cell(cells, cols, colNationalID),
			EmployeeNumber:    cell(cells, cols, colEmployeeNumber),
			QualificationDate: cell(cells, cols, colQualification),
			ExpirationDate:    cell(cells, cols, colExpiration),
			MedicalFitness:    cell(cells, cols, colMedical),
		}
		out = append(out, row)
	}

	return out, nil
}

func normalizeTitle(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.ReplaceAll(s, "_", " ")
}

func cell(cells []string, cols map[string]int, title string) string {
	i, ok := cols[title]
	if !ok || i >= len(cells) {
		return ""
	}
	return strings.TrimSpace(cells[i])
}
