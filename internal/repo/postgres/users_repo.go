package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/widiatmoko/jurnalku/internal/domain/user"
	"github.com/widiatmoko/jurnalku/internal/observability"
)

type UsersRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewUsersRepo(pool *pgxpool.Pool, prom *observability.Prom) *UsersRepo {
	return &UsersRepo{pool: pool, prom: prom}
}

func (r *UsersRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

const userColumns = `id, name, role, nisn, nip, nik, username, avatar, child_ids, password_hash, created_at, updated_at`

func scanUser(row pgx.Row) (user.User, error) {
	var u user.User
	err := row.Scan(
		&u.ID,
		&u.Name,
		&u.Role,
		&u.NISN,
		&u.NIP,
		&u.NIK,
		&u.Username,
		&u.Avatar,
		&u.ChildIDs,
		&u.PasswordHash,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	return u, err
}

func (r *UsersRepo) List(ctx context.Context) ([]user.User, error) {
	var out []user.User

	err := r.observe("users.list", func() error {
		rows, err := r.pool.Query(
			ctx,
			`SELECT `+userColumns+`
	         FROM users
	         ORDER BY lower(name) ASC, id ASC`,
		)
		if err != nil {
			return err
		}
		defer rows.Close()

		out = make([]user.User, 0)
		for rows.Next() {
			u, err := scanUser(rows)
			if err != nil {
				return err
			}
			out = append(out, u)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *UsersRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.observe("users.count", func() error {
		return r.pool.QueryRow(ctx, `SELECT count(*) FROM users`).Scan(&n)
	})
	return n, err
}

func (r *UsersRepo) GetByID(ctx context.Context, id string) (user.User, error) {
	var u user.User
	err := r.observe("users.get_by_id", func() error {
		var err error
		u, err = scanUser(r.pool.QueryRow(
			ctx,
			`SELECT `+userColumns+` FROM users WHERE id = $1`,
			id,
		))
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, err
	}
	return u, nil
}

func (r *UsersRepo) GetByLogin(ctx context.Context, role, identifier string) (user.User, error) {
	var u user.User
	err := r.observe("users.get_by_login", func() error {
		var err error
		u, err = scanUser(r.pool.QueryRow(
			ctx,
			`SELECT `+userColumns+`
	         FROM users
	         WHERE role = $1
	           AND $2 <> ''
	           AND $2 = CASE role
	                      WHEN 'STUDENT' THEN nisn
	                      WHEN 'TEACHER' THEN nip
	                      WHEN 'PARENT'  THEN nik
	                      WHEN 'ADMIN'   THEN username
	                    END`,
			role, identifier,
		))
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, err
	}
	return u, nil
}

func (r *UsersRepo) Create(ctx context.Context, u user.User) (user.User, error) {
	err := r.observe("users.create", func() error {
		_, err := r.pool.Exec(
			ctx,
			`INSERT INTO users (id, name, role, nisn, nip, nik, username, avatar, child_ids, password_hash, created_at, updated_at)
	         VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
			u.ID, u.Name, u.Role, u.NISN, u.NIP, u.NIK, u.Username, u.Avatar, u.ChildIDs, u.PasswordHash, u.CreatedAt, u.UpdatedAt,
		)
		return err
	})
	if err != nil {
		return user.User{}, mapUniqueViolation(err, user.ErrLoginTaken)
	}
	return u, nil
}

func (r *UsersRepo) Update(ctx context.Context, u user.User) (user.User, error) {
	var tag pgconn.CommandTag
	err := r.observe("users.update", func() error {
		var err error
		tag, err = r.pool.Exec(
			ctx,
			`UPDATE users
	         SET name = $2, role = $3, nisn = $4, nip = $5, nik = $6, username = $7,
	             avatar = $8, child_ids = $9, password_hash = $10, updated_at = $11
	         WHERE id = $1`,
			u.ID, u.Name, u.Role, u.NISN, u.NIP, u.NIK, u.Username, u.Avatar, u.ChildIDs, u.PasswordHash, u.UpdatedAt,
		)
		return err
	})
	if err != nil {
		return user.User{}, mapUniqueViolation(err, user.ErrLoginTaken)
	}
	if tag.RowsAffected() == 0 {
		return user.User{}, user.ErrNotFound
	}
	return u, nil
}

// Delete is idempotent: removing an id that is already gone is not an error.
func (r *UsersRepo) Delete(ctx context.Context, id string) error {
	return r.observe("users.delete", func() error {
		_, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
		return err
	})
}

func (r *UsersRepo) DeleteAll(ctx context.Context) error {
	return r.observe("users.delete_all", func() error {
		_, err := r.pool.Exec(ctx, `DELETE FROM users`)
		return err
	})
}

func mapUniqueViolation(err error, to error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return to
	}
	return err
}
