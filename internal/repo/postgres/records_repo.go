package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/davaardana/dacoklinik-web/internal/domain/record"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// listLimit bounds every record listing; the clinic's forms never page past
// the most recent hundred entries.
const listLimit = 100

type RecordsRepo struct {
	pool *pgxpool.Pool
}

func NewRecordsRepo(pool *pgxpool.Pool) *RecordsRepo {
	return &RecordsRepo{
		pool: pool,
	}
}

const recordColumns = `id, patient_name, birth_place, birth_date, department, pic,
	medical_history, subjective, blood_pressure, spo2, pulse, respiration,
	therapy, examiner, created_at`

func (r *RecordsRepo) List(ctx context.Context, filter record.ListFilter) ([]record.Record, error) {
	baseQuery := `SELECT ` + recordColumns + ` FROM medical_records`

	var conds []string
	var args []interface{}

	argsPosition := 1

	if filter.Search != nil {
		pattern := "%" + *filter.Search + "%"
		conds = append(conds, fmt.Sprintf(`(patient_name ILIKE $%d
			OR department ILIKE $%d
			OR pic ILIKE $%d
			OR examiner ILIKE $%d
			OR medical_history ILIKE $%d
			OR subjective ILIKE $%d
			OR therapy ILIKE $%d)`,
			argsPosition, argsPosition, argsPosition, argsPosition, argsPosition, argsPosition, argsPosition))
		args = append(args, pattern)
		argsPosition++
	}

	if filter.From != nil {
		conds = append(conds, fmt.Sprintf("created_at >= $%d", argsPosition))
		args = append(args, *filter.From)
		argsPosition++
	}

	if filter.To != nil {
		conds = append(conds, fmt.Sprintf("created_at <= $%d", argsPosition))
		args = append(args, *filter.To)
		argsPosition++
	}

	query := baseQuery

	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}

	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", argsPosition)
	args = append(args, listLimit)

	rows, err := r.pool.Query(ctx, query, args...)

	if err != nil {
		return nil, err
	}

	defer rows.Close()

	output := make([]record.Record, 0, listLimit)

	for rows.Next() {
		var rec record.Record

		err = scanRecord(rows, &rec)

		if err != nil {
			return nil, err
		}

		output = append(output, rec)
	}

	err = rows.Err()

	if err != nil {
		return nil, err
	}

	return output, nil
}

func (r *RecordsRepo) Create(ctx context.Context, req record.UpsertRequest, examiner string) (record.Record, error) {
	rec := newFromRequest(req, examiner)

	_, err := r.pool.Exec(ctx,
		`INSERT INTO medical_records (
			id, patient_name, birth_place, birth_date, department, pic,
			medical_history, subjective, blood_pressure, spo2, pulse,
			respiration, therapy, examiner, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)`,
		rec.ID, rec.PatientName, rec.BirthPlace, rec.BirthDate, rec.Department, rec.PIC,
		rec.MedicalHistory, rec.Subjective, rec.BloodPressure, rec.SpO2, rec.Pulse,
		rec.Respiration, rec.Therapy, rec.Examiner, rec.CreatedAt,
	)

	if err != nil {
		return record.Record{}, err
	}

	return rec, nil
}

func (r *RecordsRepo) Update(ctx context.Context, id string, req record.UpsertRequest) (record.Record, error) {
	var rec record.Record

	row := r.pool.QueryRow(ctx,
		`UPDATE medical_records
			SET patient_name = $2,
					birth_place = $3,
					birth_date = $4,
					department = $5,
					pic = $6,
					medical_history = $7,
					subjective = $8,
					blood_pressure = $9,
					spo2 = $10,
					pulse = $11,
					respiration = $12,
					therapy = $13
		WHERE id = $1
		RETURNING `+recordColumns,
		id,
		req.PatientName,
		req.BirthPlace,
		req.BirthDate,
		req.Department,
		req.PIC,
		req.MedicalHistory,
		req.Subjective,
		req.BloodPressure,
		req.SpO2,
		req.Pulse,
		req.Respiration,
		req.Therapy,
	)

	err := scanRecord(row, &rec)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return record.Record{}, record.ErrNotFound
		}

		return record.Record{}, err
	}

	return rec, nil
}

func (r *RecordsRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM medical_records WHERE id = $1`, id)

	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return record.ErrNotFound
	}

	return nil
}

// Summary runs the dashboard aggregate in one round trip. Vitals are text
// columns, so each is cast after stripping empties; the systolic side of
// "120/80" is what feeds the blood pressure average.
func (r *RecordsRepo) Summary(ctx context.Context) (record.Summary, error) {
	var s record.Summary

	err := r.pool.QueryRow(ctx, `
		SELECT
			COUNT(*) AS total_patients,
			COUNT(*) FILTER (WHERE DATE(created_at) = CURRENT_DATE) AS today_checkups,
			COALESCE(AVG(NULLIF(split_part(blood_pressure, '/', 1), '')::INT), 0) AS blood_pressure_avg,
			COALESCE(AVG(NULLIF(spo2, '')::INT), 0) AS spo2_avg,
			COALESCE(AVG(NULLIF(pulse, '')::INT), 0) AS pulse_avg,
			COALESCE(AVG(NULLIF(respiration, '')::INT), 0) AS respiration_avg
		FROM medical_records
	`).Scan(
		&s.TotalPatients,
		&s.TodayCheckups,
		&s.BloodPressureAvg,
		&s.SpO2Avg,
		&s.PulseAvg,
		&s.RespirationAvg,
	)

	if err != nil {
		return record.Summary{}, err
	}

	return s, nil
}

func newFromRequest(req record.UpsertRequest, examiner string) record.Record {
	return record.Record{
		ID:             uuid.NewString(),
		PatientName:    req.PatientName,
		BirthPlace:     req.BirthPlace,
		BirthDate:      req.BirthDate,
		Department:     req.Department,
		PIC:            req.PIC,
		MedicalHistory: req.MedicalHistory,
		Subjective:     req.Subjective,
		BloodPressure:  req.BloodPressure,
		SpO2:           req.SpO2,
		Pulse:          req.Pulse,
		Respiration:    req.Respiration,
		Therapy:        req.Therapy,
		Examiner:       examiner,
		CreatedAt:      time.Now().UTC(),
	}
}

func scanRecord(row pgx.Row, rec *record.Record) error {
	return row.Scan(
		&rec.ID,
		&rec.PatientName,
		&rec.BirthPlace,
		&rec.BirthDate,
		&rec.Department,
		&rec.PIC,
		&rec.MedicalHistory,
		&rec.Subjective,
		&rec.BloodPressure,
		&rec.SpO2,
		&rec.Pulse,
		&rec.Respiration,
		&rec.Therapy,
		&rec.Examiner,
		&rec.CreatedAt,
	)
}
