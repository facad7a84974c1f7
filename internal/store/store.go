// Package store persists the run ledger: one record per classification
// run plus its pipeline phases, behind SQLite (default) or Postgres.
package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/terralab/landcover-cli/internal/config"
	"github.com/terralab/landcover-cli/internal/model"
)

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	Status model.RunStatus `json:"status,omitempty"`
	Scene  string          `json:"scene,omitempty"`
	Limit  int             `json:"limit,omitempty"`
	Offset int             `json:"offset,omitempty"`
}

// Store defines the persistence interface for the run ledger.
type Store interface {
	// Runs
	CreateRun(ctx context.Context, scene string) (*model.Run, error)
	UpdateRunStatus(ctx context.Context, runID string, status model.RunStatus) error
	UpdateRunResult(ctx context.Context, runID string, result *model.RunResult) error
	GetRun(ctx context.Context, runID string) (*model.Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error)

	// Phases
	CreatePhase(ctx context.Context, runID string, name string) (*model.RunPhase, error)
	CompletePhase(ctx context.Context, phaseID string, status string, detail string) error

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// Phase statuses recorded in the ledger.
const (
	PhaseStatusRunning  = "running"
	PhaseStatusComplete = "complete"
	PhaseStatusFailed   = "failed"
)

// Open creates the configured store backend and runs migrations.
func Open(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	var s Store
	switch cfg.Driver {
	case "sqlite", "":
		st, err := NewSQLite(cfg.Path)
		if err != nil {
			return nil, err
		}
		s = st
	case "postgres":
		st, err := NewPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		s = st
	default:
		return nil, eris.Errorf("store: unknown driver %q", cfg.Driver)
	}
	if err := s.Migrate(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}
