package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/davaardana/dacoklinik-web/internal/domain/medicine"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type MedicinesRepo struct {
	pool *pgxpool.Pool
}

func NewMedicinesRepo(pool *pgxpool.Pool) *MedicinesRepo {
	return &MedicinesRepo{
		pool: pool,
	}
}

const medicineColumns = `id, name, price, stock, unit, description, created_at, updated_at`

func (r *MedicinesRepo) List(ctx context.Context, search *string) ([]medicine.Medicine, error) {
	query := `SELECT ` + medicineColumns + ` FROM medicines ORDER BY created_at DESC`

	var args []interface{}

	if search != nil {
		// price/stock are matched as text so "25" finds both names and values
		query = `SELECT ` + medicineColumns + ` FROM medicines
			WHERE name ILIKE $1 OR price::TEXT ILIKE $1 OR stock::TEXT ILIKE $1
			ORDER BY created_at DESC`
		args = append(args, "%"+*search+"%")
	}

	rows, err := r.pool.Query(ctx, query, args...)

	if err != nil {
		return nil, err
	}

	defer rows.Close()

	output := make([]medicine.Medicine, 0)

	for rows.Next() {
		var m medicine.Medicine

		err = scanMedicine(rows, &m)

		if err != nil {
			return nil, err
		}

		output = append(output, m)
	}

	err = rows.Err()

	if err != nil {
		return nil, err
	}

	return output, nil
}

func (r *MedicinesRepo) Create(ctx context.Context, req medicine.UpsertRequest) (medicine.Medicine, error) {
	now := time.Now().UTC()

	m := medicine.Medicine{
		ID:          uuid.NewString(),
		Name:        req.Name,
		Price:       req.Price,
		Stock:       req.Stock,
		Unit:        req.Unit,
		Description: req.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if m.Unit == "" {
		m.Unit = medicine.DefaultUnit
	}

	_, err := r.pool.Exec(ctx,
		`INSERT INTO medicines (id, name, price, stock, unit, description, created_at, updated_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		m.ID, m.Name, m.Price, m.Stock, m.Unit, m.Description, m.CreatedAt, m.UpdatedAt,
	)

	if err != nil {
		return medicine.Medicine{}, err
	}

	return m, nil
}

func (r *MedicinesRepo) Update(ctx context.Context, id string, req medicine.UpsertRequest) (medicine.Medicine, error) {
	unit := req.Unit

	if unit == "" {
		unit = medicine.DefaultUnit
	}

	var m medicine.Medicine

	row := r.pool.QueryRow(ctx,
		`UPDATE medicines
			SET name = $2,
					price = $3,
					stock = $4,
					unit = $5,
					description = $6,
					updated_at = NOW()
		WHERE id = $1
		RETURNING `+medicineColumns,
		id, req.Name, req.Price, req.Stock, unit, req.Description,
	)

	err := scanMedicine(row, &m)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return medicine.Medicine{}, medicine.ErrNotFound
		}

		return medicine.Medicine{}, err
	}

	return m, nil
}

func (r *MedicinesRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM medicines WHERE id = $1`, id)

	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return medicine.ErrNotFound
	}

	return nil
}

func scanMedicine(row pgx.Row, m *medicine.Medicine) error {
	return row.Scan(
		&m.ID,
		&m.Name,
		&m.Price,
		&m.Stock,
		&m.Unit,
		&m.Description,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
}
