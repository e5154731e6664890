package sqlite

import (
	"database/sql"
	"log/slog"
	"time"

	"github.com/segtrack/carnets/internal/db"
	"github.com/segtrack/carnets/internal/models"
	"github.com/segtrack/carnets/pkg/repository"
)

// SQLiteRepo implements the carnet store on the internal DB wrapper.
type SQLiteRepo struct {
	conn     *db.DB
	defaults models.Defaults
	logger   *slog.Logger
}

// Ensure SQLiteRepo implements the public contract.
var _ repository.CarnetRepo = (*SQLiteRepo)(nil)

func New(conn *db.DB, defaults models.Defaults, logger *slog.Logger) *SQLiteRepo {
	if logger == nil {
		logger = slog.Default()
	}
	return &SQLiteRepo{conn: conn, defaults: defaults, logger: logger}
}

func now() int64 {
	return time.Now().UTC().UnixMilli()
}

// parseDate parses an ISO date field, reporting a ValidationError on
// malformed input so nothing is written for the record.
func parseDate(field, value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, repository.NewValidationError(field, "required")
	}
	t, err := time.Parse(models.DateLayout, value)
	if err != nil {
		return time.Time{}, repository.NewValidationError(field, "invalid date %q, want YYYY-MM-DD", value)
	}
	return t, nil
}

func formatDate(t time.Time) string {
	return t.Format(models.DateLayout)
}

// carnetColumns is the select list shared by every read path.
const carnetColumns = `id, surname, given_name, national_id, employee_number, qualification_date, expiration_date, medical_fitness, employer, authorization_type, resolution_reference, created, updated, active`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCarnet(row rowScanner) (*models.Carnet, error) {
	var c models.Carnet
	var qual, exp string
	var active int64
	if err := row.Scan(&c.ID, &c.Surname, &c.GivenName, &c.NationalID, &c.EmployeeNumber, &qual, &exp, &c.MedicalFitness, &c.Employer, &c.AuthorizationType, &c.ResolutionReference, &c.Created, &c.Updated, &active); err != nil {
		return nil, err
	}

	// stored dates were validated on write; a scan failure here means the
	// table was edited out of band
	if qual != "" {
		t, err := time.Parse(models.DateLayout, qual)
		if err != nil {
			return nil, err
		}
		c.QualificationDate = t
	}
	if exp != "" {
		t, err := time.Parse(models.DateLayout, exp)
		if err != nil {
			return nil, err
		}
		c.ExpirationDate = t
	}
	c.Active = active != 0

	return &c, nil
}

func collectCarnets(rows *sql.Rows) ([]models.Carnet, error) {
	defer rows.Close()

	out := []models.Carnet{}
	for rows.Next() {
		c, err := scanCarnet(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}

	return out, rows.Err()
}
