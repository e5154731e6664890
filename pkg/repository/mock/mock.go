// Package mock provides an in-memory CarnetRepo for tests that do not need
// a real database, with per-operation error injection.
package mock

import (
	"context"
	"strings"
	"time"

	"github.com/segtrack/carnets/internal/models"
	"github.com/segtrack/carnets/pkg/repository"
)

type CarnetRepo struct {
	Carnets []models.Carnet
	nextID  int64

	ListErr   error
	GetErr    error
	CreateErr error
	UpdateErr error
	DeleteErr error
	StatsErr  error
}

var _ repository.CarnetRepo = (*CarnetRepo)(nil)

func NewCarnetRepo() *CarnetRepo {
	return &CarnetRepo{nextID: 1}
}

func (m *CarnetRepo) ListActive(ctx context.Context) ([]models.Carnet, error) {
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	out := []models.Carnet{}
	for _, c := range m.Carnets {
		if c.Active {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *CarnetRepo) Get(ctx context.Context, id int64) (*models.Carnet, error) {
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	for i := range m.Carnets {
		if m.Carnets[i].ID == id && m.Carnets[i].Active {
			c := m.Carnets[i]
			return &c, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *CarnetRepo) Create(ctx context.Context, in *repository.CarnetInput) (*models.Carnet, error) {
	if m.CreateErr != nil {
		return nil, m.CreateErr
	}
	for _, c := range m.Carnets {
		if c.Active && c.NationalID == in.NationalID {
			return nil, repository.ErrDuplicateID
		}
	}
	for field, v := range map[string]string{
		"surname":         in.Surname,
		"given_name":      in.GivenName,
		"national_id":     in.NationalID,
		"employee_number": in.EmployeeNumber,
	} {
		if strings.TrimSpace(v) == "" {
			return nil, repository.NewValidationError(field, "required")
		}
	}
	qual, err := time.Parse(models.DateLayout, in.QualificationDate)
	if err != nil {
		return nil, repository.NewValidationError("qualification_date", "invalid date %q", in.QualificationDate)
	}
	exp, err := time.Parse(models.DateLayout, in.ExpirationDate)
	if err != nil {
		return nil, repository.NewValidationError("expiration_date", "invalid date %q", in.ExpirationDate)
	}

	c := models.Carnet{
		ID:                m.nextID,
		Surname:           in.Surname,
		GivenName:         in.GivenName,
		NationalID:        in.NationalID,
		EmployeeNumber:    in.EmployeeNumber,
		QualificationDate: qual,
		ExpirationDate:    exp,
		MedicalFitness:    in.MedicalFitness,
		Active:            true,
	}
	if c.MedicalFitness == "" {
		c.MedicalFitness = "Fit"
	}
	m.nextID++
	m.Carnets = append(m.Carnets, c)
	return &c, nil
}

func (m *CarnetRepo) Update(ctx context.Context, id int64, in *repository.CarnetUpdate) (*models.Carnet, error) {
	if m.UpdateErr != nil {
		return nil, m.UpdateErr
	}
	for i := range m.Carnets {
		if m.Carnets[i].ID != id || !m.Carnets[i].Active {
			continue
		}
		c := &m.Carnets[i]
		if in.Surname != nil {
			c.Surname = *in.Surname
		}
		if in.GivenName != nil {
			c.GivenName = *in.GivenName
		}
		if in.NationalID != nil {
			c.NationalID = *in.NationalID
		}
		if in.EmployeeNumber != nil {
			c.EmployeeNumber = *in.EmployeeNumber
		}
		if in.MedicalFitness != nil {
			c.MedicalFitness = *in.MedicalFitness
		}
		if in.QualificationDate != nil {
			t, err := time.Parse(models.DateLayout, *in.QualificationDate)
			if err != nil {
				return nil, repository.NewValidationError("qualification_date", "invalid date %q", *in.QualificationDate)
			}
			c.QualificationDate = t
		}
		if in.ExpirationDate != nil {
			t, err := time.Parse(models.DateLayout, *in.ExpirationDate)
			if err != nil {
				return nil, repository.NewValidationError("expiration_date", "invalid date %q", *in.ExpirationDate)
			}
			c.ExpirationDate = t
		}
		out := *c
		return &out, nil
	}
	return nil, repository.ErrNotFound
}

func (m *CarnetRepo) SoftDelete(ctx context.Context, id int64) error {
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	for i := range m.Carnets {
		if m.Carnets[i].ID == id && m.Carnets[i].Active {
			m.Carnets[i].Active = false
			return nil
		}
	}
	return repository.ErrNotFound
}

func (m *CarnetRepo) Search(ctx context.Context, query, status string, today time.Time) ([]models.Carnet, error) {
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	q := strings.ToLower(query)
	out := []models.Carnet{}
	for _, c := range m.Carnets {
		if !c.Active {
			continue
		}
		if q != "" &&
			!strings.Contains(strings.ToLower(c.Surname), q) &&
			!strings.Contains(strings.ToLower(c.GivenName), q) &&
			!strings.Contains(strings.ToLower(c.NationalID), q) &&
			!strings.Contains(strings.ToLower(c.EmployeeNumber), q) {
			continue
		}
		if status != "" && c.Status(today) != status {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (m *CarnetRepo) ListExpiring(ctx context.Context, today time.Time, within int) ([]models.Carnet, error) {
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	out := []models.Carnet{}
	for _, c := range m.Carnets {
		if c.Active && models.DaysBetween(today, c.ExpirationDate) <= within {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *CarnetRepo) Stats(ctx context.Context, today time.Time) (*models.Statistics, error) {
	if m.StatsErr != nil {
		return nil, m.StatsErr
	}
	stats := &models.Statistics{}
	for _, c := range m.Carnets {
		if !c.Active {
			continue
		}
		stats.Total++
		switch c.Status(today) {
		case models.StatusActive:
			stats.Active++
		case models.StatusWarning:
			stats.Warning++
		case models.StatusExpired:
			stats.Expired++
		}
	}
	return stats, nil
}
