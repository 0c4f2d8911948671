package database

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/lysyi3m/signal-comb/app/signal"
)

type SignalRepositoryImpl struct {
	db *DB
}

var _ SignalRepository = (*SignalRepositoryImpl)(nil)

func NewSignalRepository(db *DB) *SignalRepositoryImpl {
	return &SignalRepositoryImpl{db: db}
}

// SaveSignals stores a run's final signal list. Position preserves pipeline
// output order, which is part of the run's contract.
func (r *SignalRepositoryImpl) SaveSignals(runID int64, signals []signal.Signal) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO signals (run_id, id, position, type, headline, description, date, source, source_url,
			confidence, metadata, sources, note, primary_category, secondary_categories, category_scores)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, sig := range signals {
		metadata, err := encodeJSON(sig.Metadata)
		if err != nil {
			return fmt.Errorf("failed to encode metadata for %s: %w", sig.ID, err)
		}
		sources, err := encodeJSON(sig.Sources)
		if err != nil {
			return fmt.Errorf("failed to encode sources for %s: %w", sig.ID, err)
		}
		secondary, err := encodeJSON(sig.SecondaryCategories)
		if err != nil {
			return fmt.Errorf("failed to encode secondary categories for %s: %w", sig.ID, err)
		}
		scores, err := encodeJSON(sig.CategoryScores)
		if err != nil {
			return fmt.Errorf("failed to encode category scores for %s: %w", sig.ID, err)
		}

		_, err = stmt.Exec(runID, sig.ID, i, sig.Type, sig.Headline, sig.Description,
			sig.Date.String(), sig.Source, sig.SourceURL, string(sig.Confidence),
			metadata, sources, sig.Note, string(sig.PrimaryCategory), secondary, scores)
		if err != nil {
			return fmt.Errorf("failed to insert signal %s: %w", sig.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit signals: %w", err)
	}

	return nil
}

func (r *SignalRepositoryImpl) GetSignals(runID int64) ([]signal.Signal, error) {
	rows, err := r.db.Query(`
		SELECT id, type, headline, description, date, source, source_url,
			confidence, metadata, sources, note, primary_category, secondary_categories, category_scores
		FROM signals
		WHERE run_id = ?
		ORDER BY position
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query signals: %w", err)
	}
	defer rows.Close()

	var signals []signal.Signal
	for rows.Next() {
		sig, err := scanSignal(rows)
		if err != nil {
			return nil, err
		}
		signals = append(signals, sig)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate signals: %w", err)
	}

	return signals, nil
}

func scanSignal(rows *sql.Rows) (signal.Signal, error) {
	var sig signal.Signal
	var date, confidence, primary string
	var metadata, sources, secondary, scores sql.NullString

	err := rows.Scan(&sig.ID, &sig.Type, &sig.Headline, &sig.Description, &date,
		&sig.Source, &sig.SourceURL, &confidence, &metadata, &sources, &sig.Note,
		&primary, &secondary, &scores)
	if err != nil {
		return signal.Signal{}, fmt.Errorf("failed to scan signal: %w", err)
	}

	sig.Confidence = signal.Confidence(confidence)
	sig.PrimaryCategory = signal.Category(primary)

	if date != "" {
		parsed, err := signal.ParseDate(date)
		if err != nil {
			return signal.Signal{}, fmt.Errorf("invalid stored date for %s: %w", sig.ID, err)
		}
		sig.Date = parsed
	}

	if err := decodeJSON(metadata, &sig.Metadata); err != nil {
		return signal.Signal{}, fmt.Errorf("invalid stored metadata for %s: %w", sig.ID, err)
	}
	if err := decodeJSON(sources, &sig.Sources); err != nil {
		return signal.Signal{}, fmt.Errorf("invalid stored sources for %s: %w", sig.ID, err)
	}
	if err := decodeJSON(secondary, &sig.SecondaryCategories); err != nil {
		return signal.Signal{}, fmt.Errorf("invalid stored secondary categories for %s: %w", sig.ID, err)
	}
	if err := decodeJSON(scores, &sig.CategoryScores); err != nil {
		return signal.Signal{}, fmt.Errorf("invalid stored category scores for %s: %w", sig.ID, err)
	}

	return sig, nil
}

func encodeJSON(v interface{}) (sql.NullString, error) {
	if v == nil {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}, err
	}
	if string(data) == "null" {
		return sql.NullString{}, nil
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

func decodeJSON(src sql.NullString, dst interface{}) error {
	if !src.Valid || src.String == "" {
		return nil
	}
	return json.Unmarshal([]byte(src.String), dst)
}
