package database

import (
	"database/sql"
	"fmt"
)

type RunRepositoryImpl struct {
	db *DB
}

var _ RunRepository = (*RunRepositoryImpl)(nil)

func NewRunRepository(db *DB) *RunRepositoryImpl {
	return &RunRepositoryImpl{db: db}
}

func (r *RunRepositoryImpl) CreateRun(run Run) (int64, error) {
	result, err := r.db.Exec(`
		INSERT INTO runs (target_company, generated_at, options, total_collected, skipped, duplicates_removed, total_signals)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, run.TargetCompany, run.GeneratedAt.UTC(), run.Options, run.TotalCollected, run.Skipped, run.DuplicatesRemoved, run.TotalSignals)
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get run id: %w", err)
	}

	return id, nil
}

func (r *RunRepositoryImpl) GetLatestRun() (*Run, error) {
	return r.scanRun(r.db.QueryRow(`
		SELECT id, target_company, generated_at, options, total_collected, skipped, duplicates_removed, total_signals, created_at
		FROM runs
		ORDER BY generated_at DESC, id DESC
		LIMIT 1
	`))
}

func (r *RunRepositoryImpl) GetRun(id int64) (*Run, error) {
	return r.scanRun(r.db.QueryRow(`
		SELECT id, target_company, generated_at, options, total_collected, skipped, duplicates_removed, total_signals, created_at
		FROM runs
		WHERE id = ?
	`, id))
}

func (r *RunRepositoryImpl) GetRunCount() (int, error) {
	var count int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM runs`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count runs: %w", err)
	}
	return count, nil
}

func (r *RunRepositoryImpl) scanRun(row *sql.Row) (*Run, error) {
	var run Run
	err := row.Scan(&run.ID, &run.TargetCompany, &run.GeneratedAt, &run.Options, &run.TotalCollected,
		&run.Skipped, &run.DuplicatesRemoved, &run.TotalSignals, &run.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan run: %w", err)
	}
	return &run, nil
}
