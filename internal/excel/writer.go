package excel

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/segtrack/carnets/internal/models"
)

const sheetName = "Carnets"

// exportDateLayout is day/month/year; normalizeDate on the import side
// accepts it back.
const exportDateLayout = "02/01/2006"

var exportHeader = []any{
	"Surname", "Given Name", "National ID", "Employee Number",
	"Qualification Date", "Expiration Date", "Medical Fitness", "Status",
}

// BuildWorkbook renders the given records into an xlsx workbook, one row per
// carnet in the order given, with the derived status upper-cased.
func BuildWorkbook(carnets []models.Carnet, today time.Time) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", sheetName)

	if err := f.SetSheetRow(sheetName, "A1", &exportHeader); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}

	for i, c := range carnets {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		row := []any{
			c.Surname,
			c.GivenName,
			c.NationalID,
			c.EmployeeNumber,
			c.QualificationDate.Format(exportDateLayout),
			c.ExpirationDate.Format(exportDateLayout),
			c.MedicalFitness,
			strings.ToUpper(c.Status(today)),
		}
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("serialize workbook: %w", err)
	}

	return buf, nil
}

// ExportFilename embeds the current date in the download name.
func ExportFilename(today time.Time) string {
	return "carnets_" + today.Format("20060102") + ".xlsx"
}
