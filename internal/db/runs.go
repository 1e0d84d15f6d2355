package db

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/banshee-data/shockcooling/internal/model"
	"github.com/banshee-data/shockcooling/internal/sweep"
)

// SweepRun describes one sweep: the model, its construction constants and
// the shared time series.
type SweepRun struct {
	RunID       string    `json:"run_id"`
	Model       string    `json:"model"`
	DisplayName string    `json:"display_name"`
	Mcore       float64   `json:"mcore"`
	Kappa       float64   `json:"kappa"`
	Times       []float64 `json:"times"`
	CreatedAt   time.Time `json:"created_at"`
}

// CandidateRow is one stored candidate. Summary values are NaN for
// rejected candidates.
type CandidateRow struct {
	Index    int
	Params   model.Params
	Status   string
	Reason   string
	Summary  sweep.Summary
	Rejected bool
}

const (
	statusOK       = "ok"
	statusRejected = "rejected"
)

// RecordRun stores the run header and every result in one transaction and
// returns the new run id. The header's mcore and kappa are read from m.
func (db *DB) RecordRun(m model.ShockCoolingModel, times []float64, results []sweep.Result) (string, error) {
	timesJSON, err := json.Marshal(times)
	if err != nil {
		return "", fmt.Errorf("failed to encode times: %w", err)
	}

	runID := uuid.NewString()
	tx, err := db.Begin()
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		`INSERT INTO sweep_runs (run_id, model, display_name, mcore, kappa, times_json)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		runID, m.Name(), m.DisplayName(), m.Mcore(), m.Kappa(), string(timesJSON),
	); err != nil {
		return "", fmt.Errorf("failed to insert run: %w", err)
	}

	candStmt, err := tx.Prepare(
		`INSERT INTO sweep_candidates (
			run_id, candidate_index, re, me, ve, off, status, reason,
			peak_temperature_k, min_temperature_k, mean_radius_cm, radius_stddev_cm
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", err
	}
	defer candStmt.Close()

	pointStmt, err := tx.Prepare(
		`INSERT INTO sweep_curve_points (run_id, candidate_index, t_days, radius_cm, temperature_k)
		 VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return "", err
	}
	defer pointStmt.Close()

	for _, r := range results {
		status, reason := statusOK, sql.NullString{}
		if r.Rejected {
			status = statusRejected
			if r.Err != nil {
				reason = sql.NullString{String: r.Err.Error(), Valid: true}
			}
		}
		if _, err := candStmt.Exec(
			runID, r.Index, r.Params.Re, r.Params.Me, r.Params.Ve, r.Params.Off, status, reason,
			nullable(r.Summary.PeakTemperature, r.Rejected),
			nullable(r.Summary.MinTemperature, r.Rejected),
			nullable(r.Summary.MeanRadius, r.Rejected),
			nullable(r.Summary.RadiusStdDev, r.Rejected),
		); err != nil {
			return "", fmt.Errorf("failed to insert candidate %d: %w", r.Index, err)
		}

		for i := range r.Curve.Time {
			if _, err := pointStmt.Exec(
				runID, r.Index, r.Curve.Time[i],
				nullable(r.Curve.Radius[i], false),
				nullable(r.Curve.Temperature[i], false),
			); err != nil {
				return "", fmt.Errorf("failed to insert curve point: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	return runID, nil
}

// Runs returns stored runs, newest first.
func (db *DB) Runs() ([]SweepRun, error) {
	rows, err := db.Query(`SELECT run_id, model, display_name, mcore, kappa, times_json, created_at
		FROM sweep_runs ORDER BY created_at DESC, rowid DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []SweepRun
	for rows.Next() {
		var (
			r         SweepRun
			timesJSON string
			created   string
		)
		if err := rows.Scan(&r.RunID, &r.Model, &r.DisplayName, &r.Mcore, &r.Kappa, &timesJSON, &created); err != nil {
			return nil, err
		}
		r.CreatedAt = parseTimestamp(created)
		if err := json.Unmarshal([]byte(timesJSON), &r.Times); err != nil {
			return nil, fmt.Errorf("run %s: failed to decode times: %w", r.RunID, err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Candidates returns the candidates of a run in index order.
func (db *DB) Candidates(runID string) ([]CandidateRow, error) {
	rows, err := db.Query(`SELECT candidate_index, re, me, ve, off, status, reason,
			peak_temperature_k, min_temperature_k, mean_radius_cm, radius_stddev_cm
		FROM sweep_candidates WHERE run_id = ? ORDER BY candidate_index`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CandidateRow
	for rows.Next() {
		var (
			c                    CandidateRow
			reason               sql.NullString
			peak, lo, mean, sdev sql.NullFloat64
		)
		if err := rows.Scan(&c.Index, &c.Params.Re, &c.Params.Me, &c.Params.Ve, &c.Params.Off,
			&c.Status, &reason, &peak, &lo, &mean, &sdev); err != nil {
			return nil, err
		}
		c.Reason = reason.String
		c.Rejected = c.Status == statusRejected
		c.Summary = sweep.Summary{
			PeakTemperature: fromNull(peak),
			MinTemperature:  fromNull(lo),
			MeanRadius:      fromNull(mean),
			RadiusStdDev:    fromNull(sdev),
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Curve returns the stored curve of one candidate. Non-finite values are
// stored as NULL and read back as NaN.
func (db *DB) Curve(runID string, index int) (model.Curve, error) {
	rows, err := db.Query(`SELECT t_days, radius_cm, temperature_k FROM sweep_curve_points
		WHERE run_id = ? AND candidate_index = ? ORDER BY rowid`, runID, index)
	if err != nil {
		return model.Curve{}, err
	}
	defer rows.Close()

	var c model.Curve
	for rows.Next() {
		var (
			t       float64
			r, temp sql.NullFloat64
		)
		if err := rows.Scan(&t, &r, &temp); err != nil {
			return model.Curve{}, err
		}
		c.Time = append(c.Time, t)
		c.Radius = append(c.Radius, fromNull(r))
		c.Temperature = append(c.Temperature, fromNull(temp))
	}
	return c, rows.Err()
}

// DeleteRun removes a run and, through cascading keys, its candidates and curves.
func (db *DB) DeleteRun(runID string) error {
	res, err := db.Exec(`DELETE FROM sweep_runs WHERE run_id = ?`, runID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("run %s not found", runID)
	}
	return nil
}

func nullable(v float64, null bool) sql.NullFloat64 {
	if null || math.IsNaN(v) || math.IsInf(v, 0) {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: v, Valid: true}
}

func fromNull(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Float64
}

// parseTimestamp accepts both the driver's RFC 3339 rendering and SQLite's
// CURRENT_TIMESTAMP text. Unparseable values yield the zero time.
func parseTimestamp(s string) time.Time {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
