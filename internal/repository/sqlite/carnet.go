package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/segtrack/carnets/internal/models"
	"github.com/segtrack/carnets/pkg/repository"
)

func (r *SQLiteRepo) ListActive(ctx context.Context) ([]models.Carnet, error) {
	rows, err := r.conn.QueryRows(ctx, `SELECT `+carnetColumns+` FROM carnets WHERE active = 1 ORDER BY id`)
	if err != nil {
		return nil, err
	}

	return collectCarnets(rows)
}

func (r *SQLiteRepo) Get(ctx context.Context, id int64) (*models.Carnet, error) {
	row := r.conn.QueryRow(ctx, `SELECT `+carnetColumns+` FROM carnets WHERE id = ? AND active = 1`, id)
	c, err := scanCarnet(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, repository.ErrNotFound
		}

		return nil, err
	}

	return c, nil
}

func (r *SQLiteRepo) Create(ctx context.Context, in *repository.CarnetInput) (*models.Carnet, error) {
	if in == nil {
		return nil, fmt.Errorf("input is nil")
	}

	c := models.Carnet{
		Surname:             strings.TrimSpace(in.Surname),
		GivenName:           strings.TrimSpace(in.GivenName),
		NationalID:          strings.TrimSpace(in.NationalID),
		EmployeeNumber:      strings.TrimSpace(in.EmployeeNumber),
		MedicalFitness:      strings.TrimSpace(in.MedicalFitness),
		Employer:            r.defaults.Employer,
		AuthorizationType:   r.defaults.AuthorizationType,
		ResolutionReference: r.defaults.ResolutionReference,
		Active:              true,
	}
	if c.MedicalFitness == "" {
		c.MedicalFitness = r.defaults.MedicalFitness
	}

	// validate everything before touching the table
	for field, v := range map[string]string{
		"surname":         c.Surname,
		"given_name":      c.GivenName,
		"national_id":     c.NationalID,
		"employee_number": c.EmployeeNumber,
	} {
		if v == "" {
			return nil, repository.NewValidationError(field, "required")
		}
	}

	qual, err := parseDate("qualification_date", in.QualificationDate)
	if err != nil {
		return nil, err
	}
	exp, err := parseDate("expiration_date", in.ExpirationDate)
	if err != nil {
		return nil, err
	}
	if qual.After(exp) {
		return nil, repository.NewValidationError("qualification_date", "must not be after expiration_date")
	}
	c.QualificationDate = qual
	c.ExpirationDate = exp

	ts := now()
	c.Created = ts
	c.Updated = ts

	tx, err := r.conn.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var count int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(1) FROM carnets WHERE national_id = ? AND active = 1`, c.NationalID).Scan(&count); err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, repository.ErrDuplicateID
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO carnets (surname, given_name, national_id, employee_number, qualification_date, expiration_date, medical_fitness, employer, authorization_type, resolution_reference, created, updated, active)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 1)`,
		c.Surname, c.GivenName, c.NationalID, c.EmployeeNumber, formatDate(c.QualificationDate), formatDate(c.ExpirationDate), c.MedicalFitness, c.Employer, c.AuthorizationType, c.ResolutionReference, c.Created, c.Updated)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	c.ID = id
	return &c, nil
}

func (r *SQLiteRepo) Update(ctx context.Context, id int64, in *repository.CarnetUpdate) (*models.Carnet, error) {
	if in == nil {
		in = &repository.CarnetUpdate{}
	}

	tx, err := r.conn.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx, `SELECT `+carnetColumns+` FROM carnets WHERE id = ? AND active = 1`, id)
	c, err := scanCarnet(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, repository.ErrNotFound
		}

		return nil, err
	}

	// apply the partial input in memory; any validation failure returns
	// before the UPDATE so no partial change persists
	if in.Surname != nil {
		c.Surname = strings.TrimSpace(*in.Surname)
	}
	if in.GivenName != nil {
		c.GivenName = strings.TrimSpace(*in.GivenName)
	}
	if in.NationalID != nil {
		c.NationalID = strings.TrimSpace(*in.NationalID)
	}
	if in.EmployeeNumber != nil {
		c.EmployeeNumber = strings.TrimSpace(*in.EmployeeNumber)
	}
	if in.MedicalFitness != nil {
		c.MedicalFitness = strings.TrimSpace(*in.MedicalFitness)
	}
	if in.QualificationDate != nil {
		t, err := parseDate("qualification_date", *in.QualificationDate)
		if err != nil {
			return nil, err
		}
		c.QualificationDate = t
	}
	if in.ExpirationDate != nil {
		t, err := parseDate("expiration_date", *in.ExpirationDate)
		if err != nil {
			return nil, err
		}
		c.ExpirationDate = t
	}

	for field, v := range map[string]string{
		"surname":         c.Surname,
		"given_name":      c.GivenName,
		"national_id":     c.NationalID,
		"employee_number": c.EmployeeNumber,
	} {
		if v == "" {
			return nil, repository.NewValidationError(field, "required")
		}
	}
	if c.QualificationDate.After(c.ExpirationDate) {
		return nil, repository.NewValidationError("qualification_date", "must not be after expiration_date")
	}

	if in.NationalID != nil {
		var count int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(1) FROM carnets WHERE national_id = ? AND active = 1 AND id != ?`, c.NationalID, id).Scan(&count); err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, repository.ErrDuplicateID
		}
	}

	c.Updated = now()
	res, err := tx.ExecContext(ctx,
		`UPDATE carnets SET surname = ?, given_name = ?, national_id = ?, employee_number = ?, qualification_date = ?, expiration_date = ?, medical_fitness = ?, updated = ? WHERE id = ? AND active = 1`,
		c.Surname, c.GivenName, c.NationalID, c.EmployeeNumber, formatDate(c.QualificationDate), formatDate(c.ExpirationDate), c.MedicalFitness, c.Updated, id)
	if err != nil {
		return nil, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, repository.ErrNotFound
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return c, nil
}

func (r *SQLiteRepo) SoftDelete(ctx context.Context, id int64) error {
	res, err := r.conn.Exec(ctx, `UPDATE carnets SET active = 0, updated = ? WHERE id = ? AND active = 1`, now(), id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return repository.ErrNotFound
	}

	return nil
}

func (r *SQLiteRepo) Search(ctx context.Context, query, status string, today time.Time) ([]models.Carnet, error) {
	q := `SELECT ` + carnetColumns + ` FROM carnets WHERE active = 1`
	args := []any{}
	if query != "" {
		pattern := "%" + strings.ToLower(query) + "%"
		q += ` AND (LOWER(surname) LIKE ? OR LOWER(given_name) LIKE ? OR LOWER(national_id) LIKE ? OR LOWER(employee_number) LIKE ?)`
		args = append(args, pattern, pattern, pattern, pattern)
	}
	q += ` ORDER BY id`

	rows, err := r.conn.QueryRows(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	carnets, err := collectCarnets(rows)
	if err != nil {
		return nil, err
	}

	// the status filter works on the derived status, so it is applied after
	// the text match rather than in SQL
	if status == "" {
		return carnets, nil
	}
	out := []models.Carnet{}
	for _, c := range carnets {
		if c.Status(today) == status {
			out = append(out, c)
		}
	}

	return out, nil
}

func (r *SQLiteRepo) ListExpiring(ctx context.Context, today time.Time, within int) ([]models.Carnet, error) {
	limit := today.AddDate(0, 0, within)
	rows, err := r.conn.QueryRows(ctx, `SELECT `+carnetColumns+` FROM carnets WHERE active = 1 AND expiration_date <= ? ORDER BY id`, formatDate(limit))
	if err != nil {
		return nil, err
	}

	return collectCarnets(rows)
}

func (r *SQLiteRepo) Stats(ctx context.Context, today time.Time) (*models.Statistics, error) {
	rows, err := r.conn.QueryRows(ctx, `SELECT expiration_date FROM carnets WHERE active = 1`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := models.Statistics{}
	for rows.Next() {
		var exp string
		if err := rows.Scan(&exp); err != nil {
			return nil, err
		}
		stats.Total++

		var t time.Time
		if exp != "" {
			if t, err = time.Parse(models.DateLayout, exp); err != nil {
				return nil, err
			}
		}
		switch models.Status(t, today) {
		case models.StatusActive:
			stats.Active++
		case models.StatusWarning:
			stats.Warning++
		case models.StatusExpired:
			stats.Expired++
		}
	}

	return &stats, rows.Err()
}
