// Package pgstore keeps the motor catalog in PostgreSQL.
package pgstore

import (
	"context"
	"database/sql"
	"fmt"

	"motor-picker/internal/catalog"
	apperrors "motor-picker/internal/common/errors"
	"motor-picker/internal/common/logger"
	"motor-picker/internal/models"
)

// Schema creates the motors table. position preserves catalog order.
const Schema = `CREATE TABLE IF NOT EXISTS motors (
	id                       TEXT PRIMARY KEY,
	position                 INTEGER NOT NULL,
	supplier                 TEXT NOT NULL,
	series                   TEXT NOT NULL,
	motor_type               TEXT NOT NULL,
	gear_ratio               TEXT NOT NULL,
	url                      TEXT NOT NULL DEFAULT '',
	voltage                  DOUBLE PRECISION NOT NULL CHECK (voltage > 0),
	free_run_current_a       DOUBLE PRECISION NOT NULL DEFAULT 0,
	stall_current_a          DOUBLE PRECISION NOT NULL DEFAULT 0,
	rpm_no_load              DOUBLE PRECISION NOT NULL CHECK (rpm_no_load > 0),
	torque_rated_nm          DOUBLE PRECISION NOT NULL CHECK (torque_rated_nm > 0),
	output_shaft_diameter_mm DOUBLE PRECISION NOT NULL DEFAULT 0
)`

const selectMotors = `SELECT id, supplier, series, motor_type, gear_ratio, url, voltage, free_run_current_a, stall_current_a, rpm_no_load, torque_rated_nm, output_shaft_diameter_mm FROM motors ORDER BY position, id`

const insertMotor = `INSERT INTO motors (id, position, supplier, series, motor_type, gear_ratio, url, voltage, free_run_current_a, stall_current_a, rpm_no_load, torque_rated_nm, output_shaft_diameter_mm) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13) ON CONFLICT (id) DO NOTHING`

type Store struct {
	db     *sql.DB
	logger logger.Logger
}

func New(db *sql.DB, log logger.Logger) *Store {
	return &Store{
		db:     db,
		logger: log.WithFields(map[string]interface{}{"component": "pgstore"}),
	}
}

func (s *Store) Name() string { return "postgres" }

// Migrate creates the motors table when it does not exist.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, Schema); err != nil {
		return apperrors.NewQueryExecutionFailedError("create motors table", err)
	}
	return nil
}

// Load reads every row in position order and validates the result.
func (s *Store) Load(ctx context.Context) (*catalog.Catalog, error) {
	rows, err := s.db.QueryContext(ctx, selectMotors)
	if err != nil {
		return nil, apperrors.NewCatalogLoadFailedError(s.Name(), err)
	}
	defer rows.Close()

	var motors []models.MotorSpec
	for rows.Next() {
		var m models.MotorSpec
		var series string
		if err := rows.Scan(
			&m.ID, &m.Supplier, &series, &m.MotorType, &m.GearRatio, &m.URL,
			&m.Voltage, &m.FreeRunCurrentA, &m.StallCurrentA,
			&m.RPMNoLoad, &m.TorqueRatedNm, &m.OutputShaftDiameterMM,
		); err != nil {
			return nil, apperrors.NewCatalogLoadFailedError(s.Name(), fmt.Errorf("scan motor row: %w", err))
		}
		if m.Series, err = models.ParseSeries(series); err != nil {
			return nil, apperrors.NewCatalogInvalidEntryError(m.ID, err.Error())
		}
		motors = append(motors, m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewCatalogLoadFailedError(s.Name(), err)
	}

	cat, err := catalog.New(motors)
	if err != nil {
		return nil, err
	}

	s.logger.Info("catalog loaded", map[string]interface{}{
		"entries": cat.Len(),
		"version": cat.Version(),
	})
	return cat, nil
}

// Seed inserts the catalog in one transaction. Existing ids are left
// untouched so the table only ever grows. It returns the number of new rows.
func (s *Store) Seed(ctx context.Context, cat *catalog.Catalog) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, apperrors.NewDatabaseConnectionFailedError(err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, insertMotor)
	if err != nil {
		return 0, apperrors.NewQueryExecutionFailedError("prepare motor insert", err)
	}
	defer stmt.Close()

	var inserted int64
	for i, m := range cat.Motors() {
		res, err := stmt.ExecContext(ctx,
			m.ID, i, m.Supplier, string(m.Series), m.MotorType, m.GearRatio, m.URL,
			m.Voltage, m.FreeRunCurrentA, m.StallCurrentA,
			m.RPMNoLoad, m.TorqueRatedNm, m.OutputShaftDiameterMM,
		)
		if err != nil {
			return 0, apperrors.NewQueryExecutionFailedError("insert motor "+m.ID, err)
		}
		if n, err := res.RowsAffected(); err == nil {
			inserted += n
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, apperrors.NewQueryExecutionFailedError("commit motor seed", err)
	}

	s.logger.Info("catalog seeded", map[string]interface{}{
		"entries":  cat.Len(),
		"inserted": inserted,
	})
	return inserted, nil
}
