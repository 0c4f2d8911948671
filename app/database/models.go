package database

import (
	"time"
)

// Run is one recorded aggregation run. Signals reference their run so past
// outputs remain queryable after newer runs complete.
type Run struct {
	ID                int64
	TargetCompany     string
	GeneratedAt       time.Time
	Options           string // JSON snapshot of the pipeline options used
	TotalCollected    int
	Skipped           int
	DuplicatesRemoved int
	TotalSignals      int
	CreatedAt         time.Time
}
