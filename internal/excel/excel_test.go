package excel_test

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/segtrack/carnets/internal/excel"
	"github.com/segtrack/carnets/internal/models"
	"github.com/segtrack/carnets/pkg/repository"
	"github.com/segtrack/carnets/pkg/repository/mock"
)

func date(s string) time.Time {
	t, err := time.Parse(models.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

// buildUpload writes a workbook from raw cell rows, header included.
func buildUpload(t *testing.T, rows [][]any) *bytes.Buffer {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		if err := f.SetSheetRow("Sheet1", cell, &row); err != nil {
			t.Fatalf("set row: %v", err)
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return buf
}

var uploadHeader = []any{"Surname", "Given Name", "National ID", "Employee Number", "Qualification Date", "Expiration Date", "Medical Fitness"}

func TestReadCarnets(t *testing.T) {
	buf := buildUpload(t, [][]any{
		uploadHeader,
		{"Perez", "Juan", "1001", "A-1", "2024-01-10", "2026-01-10", "Fit"},
		{"Gomez", "Ana", "1002", "B-2", "10/01/2024", "10/01/2026", ""},
	})

	rows, err := excel.ReadCarnets(buf)
	if err != nil {
		t.Fatalf("ReadCarnets: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].Number != 2 || rows[1].Number != 3 {
		t.Fatalf("row numbers: %d, %d", rows[0].Number, rows[1].Number)
	}
	if rows[0].Surname != "Perez" || rows[0].ExpirationDate != "2026-01-10" {
		t.Fatalf("row 2 parsed wrong: %+v", rows[0])
	}
	if rows[1].QualificationDate != "10/01/2024" || rows[1].MedicalFitness != "" {
		t.Fatalf("row 3 parsed wrong: %+v", rows[1])
	}
}

func TestReadCarnetsHeaderAliases(t *testing.T) {
	// underscore titles, as older exports produced them
	buf := buildUpload(t, [][]any{
		{"SURNAME", "given_name", "National_ID", "employee number", "Qualification_Date", "Expiration_Date", "Medical_Fitness"},
		{"Suarez", "Carla", "2001", "C-3", "2024-02-01", "2026-02-01", "Fit"},
	})

	rows, err := excel.ReadCarnets(buf)
	if err != nil {
		t.Fatalf("ReadCarnets: %v", err)
	}
	if len(rows) != 1 || rows[0].Surname != "Suarez" || rows[0].GivenName != "Carla" {
		t.Fatalf("alias headers not matched: %+v", rows)
	}
}

func TestReadCarnetsRejectsGarbage(t *testing.T) {
	if _, err := excel.ReadCarnets(strings.NewReader("not a workbook")); err == nil {
		t.Fatalf("expected error for non-xlsx input")
	}
}

func TestImportPartialSuccess(t *testing.T) {
	ctx := context.Background()
	repo := mock.NewCarnetRepo()

	// an existing active carnet that row 5 will collide with
	if _, err := repo.Create(ctx, &repository.CarnetInput{
		Surname: "Held", GivenName: "Ya", NationalID: "5005", EmployeeNumber: "E-5",
		QualificationDate: "2024-01-01", ExpirationDate: "2026-01-01",
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	buf := buildUpload(t, [][]any{
		uploadHeader,
		{"R2", "A", "5002", "E-1", "2024-01-01", "2026-01-01", ""},
		{"R3", "B", "5003", "E-2", "2024-01-01", "bad-date", ""},
		{"R4", "C", "5004", "E-3", "2024-01-01", "2026-01-01", ""},
		{"R5", "D", "5005", "E-4", "2024-01-01", "2026-01-01", ""},
		{"R6", "E", "5006", "E-5", "2024-01-01", "2026-01-01", ""},
	})
	rows, err := excel.ReadCarnets(buf)
	if err != nil {
		t.Fatalf("ReadCarnets: %v", err)
	}

	res := excel.Import(ctx, repo, rows)

	if res.Imported != 3 {
		t.Fatalf("imported = %d, want 3 (errors: %v)", res.Imported, res.Errors)
	}
	if len(res.Errors) != 2 {
		t.Fatalf("errors = %v, want 2 entries", res.Errors)
	}
	if !strings.HasPrefix(res.Errors[0], "row 3:") || !strings.Contains(res.Errors[0], "bad-date") {
		t.Fatalf("first error should reference row 3: %q", res.Errors[0])
	}
	if !strings.HasPrefix(res.Errors[1], "row 5:") || !strings.Contains(res.Errors[1], "5005") {
		t.Fatalf("second error should reference row 5 and the national id: %q", res.Errors[1])
	}

	// rows before, between and after the failures were committed
	for _, nid := range []string{"5002", "5004", "5006"} {
		found := false
		for _, c := range repo.Carnets {
			if c.NationalID == nid && c.Active {
				found = true
			}
		}
		if !found {
			t.Fatalf("row with national id %s not persisted", nid)
		}
	}
}

func TestImportMissingFieldsReported(t *testing.T) {
	ctx := context.Background()
	repo := mock.NewCarnetRepo()

	buf := buildUpload(t, [][]any{
		{"Surname", "Given Name", "National ID", "Employee Number", "Qualification Date", "Expiration Date"},
		{"", "A", "6001", "E-1", "2024-01-01", "2026-01-01"},
	})
	rows, err := excel.ReadCarnets(buf)
	if err != nil {
		t.Fatalf("ReadCarnets: %v", err)
	}

	res := excel.Import(ctx, repo, rows)
	if res.Imported != 0 || len(res.Errors) != 1 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if !strings.HasPrefix(res.Errors[0], "row 2:") || !strings.Contains(res.Errors[0], "surname") {
		t.Fatalf("error should name the missing field: %q", res.Errors[0])
	}
}

func TestExportRoundTrip(t *testing.T) {
	ctx := context.Background()
	today := date("2025-06-15")

	carnets := []models.Carnet{
		{Surname: "Perez", GivenName: "Juan", NationalID: "7001", EmployeeNumber: "A-1",
			QualificationDate: date("2024-01-10"), ExpirationDate: date("2026-01-10"), MedicalFitness: "Fit", Active: true},
		{Surname: "Gomez", GivenName: "Ana", NationalID: "7002", EmployeeNumber: "B-2",
			QualificationDate: date("2024-02-01"), ExpirationDate: date("2025-06-20"), MedicalFitness: "Fit", Active: true},
	}

	buf, err := excel.BuildWorkbook(carnets, today)
	if err != nil {
		t.Fatalf("BuildWorkbook: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("reopen workbook: %v", err)
	}
	defer f.Close()

	cells, err := f.GetRows("Carnets")
	if err != nil {
		t.Fatalf("sheet Carnets missing: %v", err)
	}
	if len(cells) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(cells))
	}
	if cells[1][4] != "10/01/2024" || cells[1][5] != "10/01/2026" {
		t.Fatalf("dates not day/month/year: %v", cells[1])
	}
	if cells[1][7] != "ACTIVE" || cells[2][7] != "WARNING" {
		t.Fatalf("statuses not upper-cased derived values: %v / %v", cells[1][7], cells[2][7])
	}

	// importing the export into an empty store reproduces the record set
	rows, err := excel.ReadCarnets(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("ReadCarnets: %v", err)
	}
	repo := mock.NewCarnetRepo()
	res := excel.Import(ctx, repo, rows)
	if res.Imported != 2 || len(res.Errors) != 0 {
		t.Fatalf("round-trip import failed: %+v", res)
	}
	for i, c := range repo.Carnets {
		if c.NationalID != carnets[i].NationalID ||
			!c.ExpirationDate.Equal(carnets[i].ExpirationDate) ||
			!c.QualificationDate.Equal(carnets[i].QualificationDate) {
			t.Fatalf("round-trip mismatch at %d: %+v vs %+v", i, c, carnets[i])
		}
	}
}

func TestExportFilename(t *testing.T) {
	got := excel.ExportFilename(date("2025-06-15"))
	if got != "carnets_20250615.xlsx" {
		t.Fatalf("filename: %q", got)
	}
}
