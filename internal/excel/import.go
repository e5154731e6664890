package excel

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/segtrack/carnets/internal/models"
	"github.com/segtrack/carnets/pkg/repository"
)

// importDateLayouts are the date formats accepted on import. The second is
// the export format, so a workbook produced by this service re-imports as-is.
var importDateLayouts = []string{models.DateLayout, "02/01/2006"}

// Result reports a bulk import: how many rows were persisted and one
// human-readable outcome per skipped or failed row, in row order.
type Result struct {
	Imported int      `json:"imported_count"`
	Errors   []string `json:"errors"`
}

// Import reconciles parsed rows against the store, row by row. Duplicate
// active national ids are skipped, rows with field-level failures are
// recorded and skipped, and everything else is persisted. There is no batch
// rollback: rows committed before a later failure stay committed.
func Import(ctx context.Context, repo repository.CarnetRepo, rows []Row) *Result {
	res := &Result{Errors: []string{}}

	for _, row := range rows {
		in := &repository.CarnetInput{
			Surname:        row.Surname,
			GivenName:      row.GivenName,
			NationalID:     row.NationalID,
			EmployeeNumber: row.EmployeeNumber,
			MedicalFitness: row.MedicalFitness,
		}

		var err error
		if in.QualificationDate, err = normalizeDate(row.QualificationDate); err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("row %d: qualification_date: %v", row.Number, err))
			continue
		}
		if in.ExpirationDate, err = normalizeDate(row.ExpirationDate); err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("row %d: expiration_date: %v", row.Number, err))
			continue
		}

		if _, err := repo.Create(ctx, in); err != nil {
			switch {
			case errors.Is(err, repository.ErrDuplicateID):
				res.Errors = append(res.Errors, fmt.Sprintf("row %d: national id %s already exists", row.Number, row.NationalID))
			default:
				res.Errors = append(res.Errors, fmt.Sprintf("row %d: %v", row.Number, err))
			}
			continue
		}

		res.Imported++
	}

	return res
}

// normalizeDate converts an accepted import layout to the ISO form the store
// expects. Empty values pass through so the store reports the missing field.
func normalizeDate(value string) (string, error) {
	if value == "" {
		return "", nil
	}
	for _, layout := range importDateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.Format(models.DateLayout), nil
		}
	}
	return "", fmt.Errorf("invalid date %q", value)
}
