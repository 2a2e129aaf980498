package pgdb

import (
	"context"

	"github.com/MametaroGG/BoothPic/pkg/e"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jimlawless/whereami"
)

// OptOutRepo хранит идентификаторы магазинов, исключённых из поиска.
type OptOutRepo struct {
	pool *pgxpool.Pool
}

func NewOptOutRepo(pool *pgxpool.Pool) *OptOutRepo {
	return &OptOutRepo{pool: pool}
}

// Add идемпотентно сохраняет идентификаторы, игнорируя дубликаты.
func (o *OptOutRepo) Add(ctx context.Context, identifiers []string) error {
	query := `
		INSERT INTO opted_out_shops(identifier) VALUES ($1)
		ON CONFLICT (identifier) DO NOTHING;
	`

	for _, id := range identifiers {
		if _, err := o.pool.Exec(ctx, query, id); err != nil {
			return e.Wrap(whereami.WhereAmI(), err)
		}
	}

	return nil
}

// List возвращает все исключённые идентификаторы.
func (o *OptOutRepo) List(ctx context.Context) ([]string, error) {
	query := `
		SELECT identifier FROM opted_out_shops
		ORDER BY identifier;
	`

	rows, err := o.pool.Query(ctx, query)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	defer rows.Close()

	var identifiers []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}
		identifiers = append(identifiers, id)
	}
	if err := rows.Err(); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return identifiers, nil
}
