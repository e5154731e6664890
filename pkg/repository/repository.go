package repository

import (
	"context"
	"time"

	"github.com/segtrack/carnets/internal/models"
)

// Repository contracts for the carnet store. These are the public interfaces
// consumers should depend on; concrete implementations live under internal/.

// CarnetInput carries the fields accepted on creation. Date fields are ISO
// `YYYY-MM-DD` strings and are parsed by the store; malformed values fail
// with a ValidationError before anything is written.
type CarnetInput struct {
	Surname           string `json:"surname"`
	GivenName         string `json:"given_name"`
	NationalID        string `json:"national_id"`
	EmployeeNumber    string `json:"employee_number"`
	QualificationDate string `json:"qualification_date"`
	ExpirationDate    string `json:"expiration_date"`
	MedicalFitness    string `json:"medical_fitness,omitempty"`
}

// CarnetUpdate is a partial update: only non-nil fields overwrite the stored
// record. The store refreshes the updated timestamp on every call, even when
// no field is supplied.
type CarnetUpdate struct {
	Surname           *string `json:"surname,omitempty"`
	GivenName         *string `json:"given_name,omitempty"`
	NationalID        *string `json:"national_id,omitempty"`
	EmployeeNumber    *string `json:"employee_number,omitempty"`
	QualificationDate *string `json:"qualification_date,omitempty"`
	ExpirationDate    *string `json:"expiration_date,omitempty"`
	MedicalFitness    *string `json:"medical_fitness,omitempty"`
}

type CarnetRepo interface {
	// ListActive returns all records whose soft-delete flag is still set,
	// in natural (insertion) order.
	ListActive(ctx context.Context) ([]models.Carnet, error)

	// Get returns the active record with the given id, or ErrNotFound.
	Get(ctx context.Context, id int64) (*models.Carnet, error)

	// Create validates and persists a new record. Returns ErrDuplicateID
	// when an active record already holds the same national id.
	Create(ctx context.Context, in *CarnetInput) (*models.Carnet, error)

	// Update applies a partial update to an active record and returns the
	// stored result. ErrNotFound when the id is unknown or inactive.
	Update(ctx context.Context, id int64, in *CarnetUpdate) (*models.Carnet, error)

	// SoftDelete flips the active flag. A second call on the same id fails
	// with ErrNotFound, since the record is no longer active.
	SoftDelete(ctx context.Context, id int64) error

	// Search filters active records by case-insensitive substring match on
	// surname, given name, national id or employee number, then by derived
	// status when one is given. An empty result is not an error.
	Search(ctx context.Context, query, status string, today time.Time) ([]models.Carnet, error)

	// ListExpiring returns active records whose expiration date falls on or
	// before today+within days. Already-expired records are included.
	ListExpiring(ctx context.Context, today time.Time, within int) ([]models.Carnet, error)

	// Stats counts active records per derived status in a single pass.
	Stats(ctx context.Context, today time.Time) (*models.Statistics, error)
}
