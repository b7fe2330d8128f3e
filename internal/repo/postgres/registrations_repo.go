package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/chancity/tournamenthub/internal/domain/job"
	"github.com/chancity/tournamenthub/internal/domain/registration"
	"github.com/chancity/tournamenthub/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type RegistrationRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
	jobs *JobsRepo
}

func NewRegistrationsRepo(pool *pgxpool.Pool, prom *observability.Prom, jobs *JobsRepo) *RegistrationRepo {
	return &RegistrationRepo{
		pool: pool,
		prom: prom,
		jobs: jobs,
	}
}

func (repo *RegistrationRepo) observe(op string, fn func() error) error {
	if repo.prom != nil {
		return repo.prom.ObserveDB(op, fn)
	}
	return fn()
}

const registrationColumns = `id, team_name, category, team_size, contact_name, designation, email,
	phone, alt_phone, players, terms_accepted, newsletter_subscribed, status, created_at, updated_at`

func scanRegistration(row pgx.Row) (registration.Registration, error) {
	var r registration.Registration
	var status string

	err := row.Scan(
		&r.ID, &r.TeamName, &r.Category, &r.TeamSize, &r.ContactName, &r.Designation, &r.Email,
		&r.Phone, &r.AltPhone, &r.Players, &r.TermsAccepted, &r.NewsletterSubscribed, &status,
		&r.CreatedAt, &r.UpdatedAt,
	)
	r.Status = registration.Status(status)

	return r, err
}

// Create stores reg and enqueues its follow-up jobs in one transaction.
func (repo *RegistrationRepo) Create(ctx context.Context, reg registration.Registration, jobReqs []job.CreateRequest) (out registration.Registration, err error) {
	tx, err := repo.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return
	}

	defer func() {
		_ = tx.Rollback(ctx)
	}()

	err = repo.observe("registrations.create.insert", func() error {
		_, e := tx.Exec(ctx, `
		INSERT INTO registrations (`+registrationColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
	`, reg.ID, reg.TeamName, reg.Category, reg.TeamSize, reg.ContactName, reg.Designation, reg.Email,
			reg.Phone, reg.AltPhone, reg.Players, reg.TermsAccepted, reg.NewsletterSubscribed,
			string(reg.Status), reg.CreatedAt, reg.UpdatedAt)
		return e
	})
	if err != nil {
		return
	}

	for _, req := range jobReqs {
		// a replayed idempotency key is skipped by ON CONFLICT
		if _, err = repo.jobs.CreateTx(ctx, tx, req); err != nil {
			err = fmt.Errorf("enqueue %s: %w", req.Type, err)
			return
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return
	}

	out = reg
	return
}

func (repo *RegistrationRepo) GetByID(ctx context.Context, id string) (registration.Registration, error) {
	var r registration.Registration

	err := repo.observe("registrations.get_by_id", func() error {
		var err error
		r, err = scanRegistration(repo.pool.QueryRow(ctx,
			`SELECT `+registrationColumns+` FROM registrations WHERE id = $1`, id))
		return err
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return registration.Registration{}, registration.ErrNotFound
		}
		return registration.Registration{}, err
	}

	return r, nil
}

func listWhere(f registration.ListFilter) (string, []any) {
	conds := make([]string, 0, 2)
	args := make([]any, 0, 4)

	if s := strings.TrimSpace(f.Search); s != "" {
		args = append(args, "%"+s+"%")
		n := len(args)
		conds = append(conds, fmt.Sprintf("(team_name ILIKE $%d OR contact_name ILIKE $%d OR email ILIKE $%d)", n, n, n))
	}

	if f.Status != "" {
		args = append(args, string(f.Status))
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}

	if len(conds) == 0 {
		return "", args
	}

	return " WHERE " + strings.Join(conds, " AND "), args
}

// List returns one page of registrations, newest first, and the total match count.
func (repo *RegistrationRepo) List(ctx context.Context, f registration.ListFilter) ([]registration.Registration, int, error) {
	where, args := listWhere(f)

	var total int
	err := repo.observe("registrations.list.count", func() error {
		return repo.pool.QueryRow(ctx, `SELECT COUNT(*) FROM registrations`+where, args...).Scan(&total)
	})
	if err != nil {
		return nil, 0, err
	}

	pageArgs := append(args, f.Limit, f.Offset())
	q := fmt.Sprintf(`SELECT `+registrationColumns+` FROM registrations%s
		ORDER BY created_at DESC, id DESC
		LIMIT $%d OFFSET $%d`, where, len(args)+1, len(args)+2)

	var rows pgx.Rows
	err = repo.observe("registrations.list", func() error {
		var qerr error
		rows, qerr = repo.pool.Query(ctx, q, pageArgs...)
		return qerr
	})
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]registration.Registration, 0, f.Limit)
	for rows.Next() {
		r, scanErr := scanRegistration(rows)
		if scanErr != nil {
			return nil, 0, scanErr
		}
		out = append(out, r)
	}

	if err := rows.Err(); err != nil {
		if repo.prom != nil {
			repo.prom.DbErrorsTotal.WithLabelValues("registrations.list", "rows_err").Inc()
		}
		return nil, 0, err
	}

	return out, total, nil
}

func (repo *RegistrationRepo) UpdateStatus(ctx context.Context, id string, status registration.Status) (registration.Registration, error) {
	if !status.IsValid() {
		return registration.Registration{}, registration.ErrInvalidStatus
	}

	var r registration.Registration
	err := repo.observe("registrations.update_status", func() error {
		var err error
		r, err = scanRegistration(repo.pool.QueryRow(ctx, `
		UPDATE registrations
		SET status = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING `+registrationColumns, id, string(status)))
		return err
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return registration.Registration{}, registration.ErrNotFound
		}
		return registration.Registration{}, err
	}

	return r, nil
}

func (repo *RegistrationRepo) Delete(ctx context.Context, id string) (err error) {
	var tag pgconn.CommandTag

	err = repo.observe("registrations.delete", func() error {
		var err error
		tag, err = repo.pool.Exec(ctx, `DELETE FROM registrations WHERE id = $1`, id)
		return err
	})
	if err != nil {
		return
	}

	if tag.RowsAffected() == 0 {
		err = registration.ErrNotFound
	}
	return
}

func (repo *RegistrationRepo) Stats(ctx context.Context) (registration.Stats, error) {
	st := registration.Stats{
		ByStatus:   map[registration.Status]int{},
		ByCategory: map[string]int{},
	}

	err := repo.observe("registrations.stats.totals", func() error {
		return repo.pool.QueryRow(ctx,
			`SELECT COUNT(*), COALESCE(SUM(team_size), 0) FROM registrations`,
		).Scan(&st.Total, &st.TotalPlayers)
	})
	if err != nil {
		return registration.Stats{}, err
	}

	err = repo.groupCount(ctx, "registrations.stats.by_status",
		`SELECT status, COUNT(*) FROM registrations GROUP BY status`,
		func(k string, n int) { st.ByStatus[registration.Status(k)] = n })
	if err != nil {
		return registration.Stats{}, err
	}

	err = repo.groupCount(ctx, "registrations.stats.by_category",
		`SELECT category, COUNT(*) FROM registrations GROUP BY category`,
		func(k string, n int) { st.ByCategory[k] = n })
	if err != nil {
		return registration.Stats{}, err
	}

	return st, nil
}

func (repo *RegistrationRepo) groupCount(ctx context.Context, op, q string, put func(string, int)) error {
	var rows pgx.Rows

	err := repo.observe(op, func() error {
		var qerr error
		rows, qerr = repo.pool.Query(ctx, q)
		return qerr
	})
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var k string
		var n int
		if err := rows.Scan(&k, &n); err != nil {
			return err
		}
		put(k, n)
	}

	return rows.Err()
}
