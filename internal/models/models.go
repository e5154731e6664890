package models

import "time"

// DateLayout is the wire format for calendar dates (ISO 8601 date).
const DateLayout = "2006-01-02"

// WarningWindowDays is the single source of truth for the "expiring soon"
// window. Both the status evaluator and the alerts query use it.
const WarningWindowDays = 30

// Derived lifecycle statuses. Never stored; computed from the expiration
// date at read time.
const (
	StatusActive  = "active"
	StatusWarning = "warning"
	StatusExpired = "expired"
	StatusUnknown = "unknown"
)

type Carnet struct {
	ID                  int64     `json:"id" db:"id"`
	Surname             string    `json:"surname" db:"surname"`
	GivenName           string    `json:"given_name" db:"given_name"`
	NationalID          string    `json:"national_id" db:"national_id"`
	EmployeeNumber      string    `json:"employee_number" db:"employee_number"`
	QualificationDate   time.Time `json:"qualification_date" db:"qualification_date"`
	ExpirationDate      time.Time `json:"expiration_date" db:"expiration_date"`
	MedicalFitness      string    `json:"medical_fitness" db:"medical_fitness"`
	Employer            string    `json:"employer" db:"employer"`
	AuthorizationType   string    `json:"authorization_type" db:"authorization_type"`
	ResolutionReference string    `json:"resolution_reference" db:"resolution_reference"`
	Created             int64     `json:"created" db:"created"`
	Updated             int64     `json:"updated" db:"updated"`
	Active              bool      `json:"active" db:"active"`
}

// Status derives the carnet lifecycle status against the given reference day.
func (c *Carnet) Status(today time.Time) string {
	return Status(c.ExpirationDate, today)
}

// Status is the pure evaluator: expired when the expiration date is in the
// past, warning when it falls within the warning window (inclusive on both
// ends), active otherwise. A zero expiration date yields unknown.
func Status(expiration, today time.Time) string {
	if expiration.IsZero() {
		return StatusUnknown
	}

	days := DaysBetween(today, expiration)
	switch {
	case days < 0:
		return StatusExpired
	case days <= WarningWindowDays:
		return StatusWarning
	default:
		return StatusActive
	}
}

// DaysBetween returns the number of whole calendar days from one date to
// another, ignoring the time-of-day component of both.
func DaysBetween(from, to time.Time) int {
	return int(truncateDay(to).Sub(truncateDay(from)) / (24 * time.Hour))
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Statistics is the per-status breakdown over the active record set.
// Records with an unknown status count toward Total only.
type Statistics struct {
	Total   int `json:"total"`
	Active  int `json:"active_count"`
	Warning int `json:"warning_count"`
	Expired int `json:"expired_count"`
}

// Defaults are the constants applied to optional fields on creation when the
// request leaves them empty. Overridable through configuration.
type Defaults struct {
	MedicalFitness      string
	Employer            string
	AuthorizationType   string
	ResolutionReference string
}
