package postgres

import (
	"context"
	"errors"

	"github.com/geocoder89/parkinghub/internal/domain/role"
	"github.com/geocoder89/parkinghub/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type RolesRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewRolesRepo(pool *pgxpool.Pool, prom *observability.Prom) *RolesRepo {
	return &RolesRepo{pool: pool, prom: prom}
}

func (r *RolesRepo) GetByName(ctx context.Context, name string) (role.Role, error) {
	var out role.Role

	err := r.prom.ObserveDB("roles.get_by_name", func() error {
		return r.pool.QueryRow(ctx,
			`SELECT id, name, description, created_at FROM roles WHERE name = $1`,
			name,
		).Scan(&out.ID, &out.Name, &out.Description, &out.CreatedAt)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return role.Role{}, role.ErrNotFound
		}
		return role.Role{}, err
	}

	return out, nil
}

func (r *RolesRepo) Create(ctx context.Context, in role.Role) error {
	err := r.prom.ObserveDB("roles.create", func() error {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO roles (id, name, description, created_at) VALUES ($1,$2,$3,$4)`,
			in.ID, in.Name, in.Description, in.CreatedAt,
		)
		return err
	})

	if isConstraintViolation(err, codeUniqueViolation, "roles_name_uniq") {
		return role.ErrNameTaken
	}

	return err
}
