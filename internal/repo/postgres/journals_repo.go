package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/widiatmoko/jurnalku/internal/domain/journal"
	"github.com/widiatmoko/jurnalku/internal/observability"
)

type JournalsRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewJournalsRepo(pool *pgxpool.Pool, prom *observability.Prom) *JournalsRepo {
	return &JournalsRepo{pool: pool, prom: prom}
}

func (r *JournalsRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

const entryColumns = `id, student_id, date, category, content, feedback, feedback_by, created_at, updated_at`

func scanEntry(row pgx.Row) (journal.Entry, error) {
	var e journal.Entry
	err := row.Scan(
		&e.ID,
		&e.StudentID,
		&e.Date,
		&e.Category,
		&e.Content,
		&e.Feedback,
		&e.FeedbackBy,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	return e, err
}

func (r *JournalsRepo) List(ctx context.Context) ([]journal.Entry, error) {
	var out []journal.Entry

	err := r.observe("journals.list", func() error {
		rows, err := r.pool.Query(
			ctx,
			`SELECT `+entryColumns+`
	         FROM journals
	         ORDER BY date DESC, created_at DESC, id ASC`,
		)
		if err != nil {
			return err
		}
		defer rows.Close()

		out = make([]journal.Entry, 0)
		for rows.Next() {
			e, err := scanEntry(rows)
			if err != nil {
				return err
			}
			out = append(out, e)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *JournalsRepo) GetByID(ctx context.Context, id string) (journal.Entry, error) {
	var e journal.Entry
	err := r.observe("journals.get_by_id", func() error {
		var err error
		e, err = scanEntry(r.pool.QueryRow(
			ctx,
			`SELECT `+entryColumns+` FROM journals WHERE id = $1`,
			id,
		))
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return journal.Entry{}, journal.ErrNotFound
		}
		return journal.Entry{}, err
	}
	return e, nil
}

func (r *JournalsRepo) Create(ctx context.Context, e journal.Entry) (journal.Entry, error) {
	err := r.observe("journals.create", func() error {
		_, err := r.pool.Exec(
			ctx,
			`INSERT INTO journals (id, student_id, date, category, content, feedback, feedback_by, created_at, updated_at)
	         VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
			e.ID, e.StudentID, e.Date, e.Category, e.Content, e.Feedback, e.FeedbackBy, e.CreatedAt, e.UpdatedAt,
		)
		return err
	})
	if err != nil {
		return journal.Entry{}, err
	}
	return e, nil
}

func (r *JournalsRepo) Update(ctx context.Context, e journal.Entry) (journal.Entry, error) {
	var tag pgconn.CommandTag
	err := r.observe("journals.update", func() error {
		var err error
		tag, err = r.pool.Exec(
			ctx,
			`UPDATE journals
	         SET student_id = $2, date = $3, category = $4, content = $5,
	             feedback = $6, feedback_by = $7, updated_at = $8
	         WHERE id = $1`,
			e.ID, e.StudentID, e.Date, e.Category, e.Content, e.Feedback, e.FeedbackBy, e.UpdatedAt,
		)
		return err
	})
	if err != nil {
		return journal.Entry{}, err
	}
	if tag.RowsAffected() == 0 {
		return journal.Entry{}, journal.ErrNotFound
	}
	return e, nil
}

func (r *JournalsRepo) Delete(ctx context.Context, id string) error {
	return r.observe("journals.delete", func() error {
		_, err := r.pool.Exec(ctx, `DELETE FROM journals WHERE id = $1`, id)
		return err
	})
}

func (r *JournalsRepo) DeleteAll(ctx context.Context) error {
	return r.observe("journals.delete_all", func() error {
		_, err := r.pool.Exec(ctx, `DELETE FROM journals`)
		return err
	})
}

func (r *JournalsRepo) DeleteByStudent(ctx context.Context, studentID string) error {
	return r.observe("journals.delete_by_student", func() error {
		_, err := r.pool.Exec(ctx, `DELETE FROM journals WHERE student_id = $1`, studentID)
		return err
	})
}
