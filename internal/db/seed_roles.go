package db

import (
	"context"

	"github.com/geocoder89/parkinghub/internal/domain/role"
	"github.com/jackc/pgx/v5/pgxpool"
)

// EnsureRoles inserts each named role unless it already exists.
func EnsureRoles(ctx context.Context, pool *pgxpool.Pool, names []string) (int, error) {
	created := 0

	for _, name := range names {
		r := role.New(name, nil)

		tag, err := pool.Exec(ctx,
			`INSERT INTO roles (id, name, description, created_at)
			VALUES ($1,$2,$3,$4)
			ON CONFLICT (name) DO NOTHING`,
			r.ID, r.Name, r.Description, r.CreatedAt,
		)

		if err != nil {
			return created, err
		}

		created += int(tag.RowsAffected())
	}

	return created, nil
}
