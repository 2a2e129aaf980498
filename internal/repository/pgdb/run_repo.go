package pgdb

import (
	"context"

	"github.com/MametaroGG/BoothPic/internal/usecase"
	"github.com/MametaroGG/BoothPic/pkg/e"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jimlawless/whereami"
)

// RunRepo ведёт историю запусков индексации в PostgreSQL.
type RunRepo struct {
	pool *pgxpool.Pool
}

func NewRunRepo(pool *pgxpool.Pool) *RunRepo {
	return &RunRepo{pool: pool}
}

// CreateRun регистрирует начало запуска и возвращает его ID.
func (r *RunRepo) CreateRun(ctx context.Context) (int64, error) {
	query := `
		INSERT INTO indexing_runs DEFAULT VALUES
		RETURNING id;
	`

	var id int64
	if err := r.pool.QueryRow(ctx, query).Scan(&id); err != nil {
		return 0, e.Wrap(whereami.WhereAmI(), err)
	}

	return id, nil
}

// FinishRun фиксирует итог запуска.
func (r *RunRepo) FinishRun(ctx context.Context, runID int64, report *usecase.SeedReport) error {
	query := `
		UPDATE indexing_runs
		SET finished_at = now(),
		    processed   = $2,
		    indexed     = $3,
		    upserts     = $4,
		    early_exit  = $5
		WHERE id = $1;
	`

	if _, err := r.pool.Exec(ctx, query, runID, report.Processed, report.Indexed, report.Upserts, report.EarlyExit); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}
