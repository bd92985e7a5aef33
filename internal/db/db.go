// Package db persists built stimulus models, ALT reports, and response
// trigger events in sqlite. Models are stored as their originating
// parameters rather than the full frame series: the builders are pure, so
// rebuilding from parameters reproduces the series exactly.
package db

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/strobe-lab/loomstim/internal/alt"
	"github.com/strobe-lab/loomstim/internal/stimulus"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

type DB struct {
	*sql.DB
}

// NewDB opens (or creates) the sqlite database at path. Run MigrateUp before
// first use.
func NewDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(`PRAGMA foreign_keys = ON; PRAGMA busy_timeout = 5000;`); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set pragmas: %w", err)
	}
	return &DB{db}, nil
}

// ModelRecord is one row of the models table.
type ModelRecord struct {
	ID         string          `json:"id"`
	Kind       string          `json:"kind"`
	FrameRate  float64         `json:"frame_rate"`
	FrameCount int             `json:"frame_count"`
	Params     json.RawMessage `json:"params"`
	CreatedAt  string          `json:"created_at"`
}

// SaveModel stores a model's parameters and returns the new row id.
func (db *DB) SaveModel(m stimulus.Model) (string, error) {
	var params interface{}
	switch mm := m.(type) {
	case *stimulus.ConstantSpeedModel:
		params = mm.Params()
	case *stimulus.VariableSpeedModel:
		params = mm.Params()
	case *stimulus.DiameterModel:
		params = mm.Params()
	default:
		return "", fmt.Errorf("%w: unrecognised model kind %T", stimulus.ErrInvalidInput, m)
	}

	data, err := json.Marshal(params)
	if err != nil {
		return "", fmt.Errorf("failed to marshal model params: %w", err)
	}

	id := uuid.NewString()
	_, err = db.Exec(
		`INSERT INTO models (id, kind, frame_rate, frame_count, params) VALUES (?, ?, ?, ?, ?)`,
		id, string(m.Kind()), m.FrameRate(), m.FrameCount(), string(data),
	)
	if err != nil {
		return "", err
	}
	return id, nil
}

// GetModel rebuilds the stored model from its parameters.
func (db *DB) GetModel(id string) (stimulus.Model, error) {
	var kind string
	var params []byte
	err := db.QueryRow(`SELECT kind, params FROM models WHERE id = ?`, id).Scan(&kind, &params)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: model %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}

	switch stimulus.Kind(kind) {
	case stimulus.KindConstantSpeed:
		var p stimulus.ConstantSpeedParams
		if err := json.Unmarshal(params, &p); err != nil {
			return nil, fmt.Errorf("failed to parse stored params: %w", err)
		}
		return stimulus.NewConstantSpeedModel(p)
	case stimulus.KindVariableSpeed:
		var p stimulus.VariableSpeedParams
		if err := json.Unmarshal(params, &p); err != nil {
			return nil, fmt.Errorf("failed to parse stored params: %w", err)
		}
		return stimulus.NewVariableSpeedModel(p)
	case stimulus.KindDiameter:
		var p stimulus.DiameterParams
		if err := json.Unmarshal(params, &p); err != nil {
			return nil, fmt.Errorf("failed to parse stored params: %w", err)
		}
		return stimulus.NewDiameterModel(p)
	default:
		return nil, fmt.Errorf("%w: stored model %s has unknown kind %q", stimulus.ErrInvalidInput, id, kind)
	}
}

// ListModels returns the most recent model rows, newest first.
func (db *DB) ListModels(limit int) ([]ModelRecord, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := db.Query(
		`SELECT id, kind, frame_rate, frame_count, params, created_at
		 FROM models ORDER BY created_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ModelRecord
	for rows.Next() {
		var r ModelRecord
		var params string
		if err := rows.Scan(&r.ID, &r.Kind, &r.FrameRate, &r.FrameCount, &params, &r.CreatedAt); err != nil {
			return nil, err
		}
		r.Params = json.RawMessage(params)
		out = append(out, r)
	}
	return out, rows.Err()
}

// ReportRecord is one row of the alt_reports table. Nullable columns map to
// nil pointers.
type ReportRecord struct {
	ID                    string   `json:"id"`
	ModelID               string   `json:"model_id"`
	ResponseFrame         int      `json:"response_frame"`
	ResponseFrameAdjusted int      `json:"response_frame_adjusted"`
	Latency               float64  `json:"latency"`
	ALT                   *float64 `json:"alt"`
	ALTDeg                *float64 `json:"alt_deg"`
	NewDistance           *float64 `json:"new_distance"`
	DistancePerceived     *float64 `json:"distance_perceived"`
	SpeedPerceived        *float64 `json:"speed_perceived"`
	DistanceInModel       *float64 `json:"distance_in_model"`
	SpeedInModel          *float64 `json:"speed_in_model"`
	CreatedAt             string   `json:"created_at"`
}

// SaveReport stores an ALT report against a saved model and returns the new
// row id. NaN fields become NULLs.
func (db *DB) SaveReport(modelID string, rep *alt.Report) (string, error) {
	id := uuid.NewString()
	_, err := db.Exec(
		`INSERT INTO alt_reports (
			id, model_id, response_frame, response_frame_adjusted, latency,
			alt, alt_deg, new_distance, distance_perceived, speed_perceived,
			distance_in_model, speed_in_model
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, modelID, rep.ResponseFrame, rep.ResponseFrameAdjusted, rep.LatencyApplied,
		nullFloat(rep.ALT), nullFloat(rep.ALTDeg), nullFloat(rep.NewDistanceApplied),
		nullFloat(rep.DistancePerceived), nullFloat(rep.SpeedPerceived),
		nullFloat(rep.DistanceInModel), nullFloat(rep.SpeedInModel),
	)
	if err != nil {
		return "", err
	}
	return id, nil
}

// ListReports returns stored reports, newest first, optionally filtered by
// model id.
func (db *DB) ListReports(modelID string, limit int) ([]ReportRecord, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `SELECT id, model_id, response_frame, response_frame_adjusted, latency,
			alt, alt_deg, new_distance, distance_perceived, speed_perceived,
			distance_in_model, speed_in_model, created_at
		FROM alt_reports`
	args := []interface{}{}
	if modelID != "" {
		query += ` WHERE model_id = ?`
		args = append(args, modelID)
	}
	query += ` ORDER BY created_at DESC, id LIMIT ?`
	args = append(args, limit)

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ReportRecord
	for rows.Next() {
		var r ReportRecord
		var altV, altDeg, newDist, distP, speedP, distM, speedM sql.NullFloat64
		if err := rows.Scan(
			&r.ID, &r.ModelID, &r.ResponseFrame, &r.ResponseFrameAdjusted, &r.Latency,
			&altV, &altDeg, &newDist, &distP, &speedP, &distM, &speedM, &r.CreatedAt,
		); err != nil {
			return nil, err
		}
		r.ALT = floatPtr(altV)
		r.ALTDeg = floatPtr(altDeg)
		r.NewDistance = floatPtr(newDist)
		r.DistancePerceived = floatPtr(distP)
		r.SpeedPerceived = floatPtr(speedP)
		r.DistanceInModel = floatPtr(distM)
		r.SpeedInModel = floatPtr(speedM)
		out = append(out, r)
	}
	return out, rows.Err()
}

// TriggerEvent is one row of the trigger_events table.
type TriggerEvent struct {
	ID        int64   `json:"id"`
	Clock     float64 `json:"clock"`
	Frame     int     `json:"frame"`
	CreatedAt string  `json:"created_at"`
}

// RecordTriggerEvent stores a response event from the trigger box: the
// device clock (seconds since power-on) and the playback frame at which the
// specimen responded.
func (db *DB) RecordTriggerEvent(clock float64, frame int) error {
	_, err := db.Exec(`INSERT INTO trigger_events (clock, frame) VALUES (?, ?)`, clock, frame)
	return err
}

// ListTriggerEvents returns recorded trigger events, newest first.
func (db *DB) ListTriggerEvents(limit int) ([]TriggerEvent, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := db.Query(
		`SELECT id, clock, frame, created_at FROM trigger_events ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TriggerEvent
	for rows.Next() {
		var e TriggerEvent
		if err := rows.Scan(&e.ID, &e.Clock, &e.Frame, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// nullFloat converts a float to a nullable column value; NaN and infinities
// become NULL.
func nullFloat(f float64) sql.NullFloat64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: f, Valid: true}
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
