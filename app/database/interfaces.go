package database

import (
	"github.com/lysyi3m/signal-comb/app/signal"
)

type RunRepository interface {
	CreateRun(run Run) (int64, error)
	GetLatestRun() (*Run, error)
	GetRun(id int64) (*Run, error)
	GetRunCount() (int, error)
}

type SignalRepository interface {
	SaveSignals(runID int64, signals []signal.Signal) error
	GetSignals(runID int64) ([]signal.Signal, error)
}
