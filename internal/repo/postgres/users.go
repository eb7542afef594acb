package postgres

import (
	"context"
	"errors"

	"github.com/geocoder89/parkinghub/internal/domain/user"
	"github.com/geocoder89/parkinghub/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UsersRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewUsersRepo(pool *pgxpool.Pool, prom *observability.Prom) *UsersRepo {
	return &UsersRepo{pool: pool, prom: prom}
}

const selectUserWithRole = `
	SELECT u.id, u.username, u.password_hash, u.hint, u.role_id, u.created_at, r.name
	FROM users u
	LEFT JOIN roles r ON r.id = u.role_id
`

func scanUserWithRole(row pgx.Row) (user.WithRole, error) {
	var u user.WithRole

	err := row.Scan(
		&u.ID,
		&u.Username,
		&u.PasswordHash,
		&u.Hint,
		&u.RoleID,
		&u.CreatedAt,
		&u.RoleName,
	)

	return u, err
}

func (r *UsersRepo) GetByUsername(ctx context.Context, username string) (user.WithRole, error) {
	var u user.WithRole

	err := r.prom.ObserveDB("users.get_by_username", func() error {
		var err error
		u, err = scanUserWithRole(r.pool.QueryRow(ctx, selectUserWithRole+` WHERE u.username = $1`, username))
		return err
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.WithRole{}, user.ErrNotFound
		}

		return user.WithRole{}, err
	}
	return u, nil
}

func (r *UsersRepo) GetByID(ctx context.Context, id string) (user.WithRole, error) {
	var u user.WithRole

	err := r.prom.ObserveDB("users.get_by_id", func() error {
		var err error
		u, err = scanUserWithRole(r.pool.QueryRow(ctx, selectUserWithRole+` WHERE u.id = $1`, id))
		return err
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.WithRole{}, user.ErrNotFound
		}

		return user.WithRole{}, err
	}
	return u, nil
}

// Create inserts u. The username constraint is the authoritative duplicate
// guard; callers may pre-check but must handle ErrUsernameTaken.
func (r *UsersRepo) Create(ctx context.Context, u user.User) error {
	err := r.prom.ObserveDB("users.create", func() error {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO users (id, username, password_hash, hint, role_id, created_at)
			VALUES ($1,$2,$3,$4,$5,$6)`,
			u.ID, u.Username, u.PasswordHash, u.Hint, u.RoleID, u.CreatedAt,
		)
		return err
	})

	switch {
	case err == nil:
		return nil
	case isConstraintViolation(err, codeUniqueViolation, "users_username_uniq"):
		return user.ErrUsernameTaken
	case isConstraintViolation(err, codeForeignKeyViolation, "users_role_id_fkey"):
		return user.ErrUnknownRole
	default:
		return err
	}
}

func (r *UsersRepo) List(ctx context.Context) ([]user.WithRole, error) {
	var rows pgx.Rows

	err := r.prom.ObserveDB("users.list", func() error {
		var err error
		rows, err = r.pool.Query(ctx, selectUserWithRole+` ORDER BY u.created_at ASC, u.id ASC`)
		return err
	})

	if err != nil {
		return nil, err
	}

	defer rows.Close()

	out := make([]user.WithRole, 0)

	for rows.Next() {
		u, err := scanUserWithRole(rows)

		if err != nil {
			return nil, err
		}

		out = append(out, u)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return out, nil
}
