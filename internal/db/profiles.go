package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// PgxPoolIface is the subset of *pgxpool.Pool the repository needs.
type PgxPoolIface interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Begin(ctx context.Context) (pgx.Tx, error)
}

// ProfileRepository reads and writes worker_profiles.
type ProfileRepository struct {
	pool PgxPoolIface
}

// NewProfileRepository creates a repository over pool.
func NewProfileRepository(pool PgxPoolIface) *ProfileRepository {
	return &ProfileRepository{pool: pool}
}

const upsertProfileSQL = `
insert into worker_profiles
  (owner_id, session_id, document, completed_steps, progress, visa_type, nationality, desired_province, saved_at)
values
  (@owner_id, @session_id, @document, @completed_steps, @progress, @visa_type, @nationality, @desired_province, @saved_at)
on conflict (owner_id) do update set
  session_id       = excluded.session_id,
  document         = excluded.document,
  completed_steps  = excluded.completed_steps,
  progress         = excluded.progress,
  visa_type        = excluded.visa_type,
  nationality      = excluded.nationality,
  desired_province = excluded.desired_province,
  saved_at         = excluded.saved_at;
`

const insertRevisionSQL = `
insert into worker_profile_revisions (owner_id, session_id, document, saved_at)
values (@owner_id, @session_id, @document, @saved_at);
`

// SaveProfile upserts the profile and appends a revision in one transaction.
func (r *ProfileRepository) SaveProfile(ctx context.Context, p ProfileRecord) error {
	if p.OwnerID == uuid.Nil {
		return fmt.Errorf("save profile: owner id is required")
	}

	args := pgx.NamedArgs{
		"owner_id":         p.OwnerID,
		"session_id":       p.SessionID,
		"document":         []byte(p.Document),
		"completed_steps":  p.CompletedSteps,
		"progress":         p.Progress,
		"visa_type":        p.VisaType,
		"nationality":      p.Nationality,
		"desired_province": p.DesiredProvince,
		"saved_at":         p.SavedAt,
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("pool.Begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, upsertProfileSQL, args); err != nil {
		return fmt.Errorf("upsert profile: %w", err)
	}
	if _, err := tx.Exec(ctx, insertRevisionSQL, args); err != nil {
		return fmt.Errorf("insert revision: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("tx.Commit: %w", err)
	}
	return nil
}

// GetProfile returns the saved profile of owner or ErrNotFound.
func (r *ProfileRepository) GetProfile(ctx context.Context, ownerID uuid.UUID) (*ProfileRecord, error) {
	query := `
select owner_id, session_id, document, completed_steps, progress,
       visa_type, nationality, desired_province, saved_at
from worker_profiles
where owner_id = $1;
`
	var (
		out   ProfileRecord
		doc   []byte
		steps []int16
	)
	err := r.pool.QueryRow(ctx, query, ownerID).Scan(
		&out.OwnerID,
		&out.SessionID,
		&doc,
		&steps,
		&out.Progress,
		&out.VisaType,
		&out.Nationality,
		&out.DesiredProvince,
		&out.SavedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("row.Scan: %w", err)
	}

	out.Document = doc
	out.CompletedSteps = make([]int, len(steps))
	for i, s := range steps {
		out.CompletedSteps[i] = int(s)
	}
	return &out, nil
}

// ListRevisions returns the most recent saves of owner, newest first.
func (r *ProfileRepository) ListRevisions(ctx context.Context, ownerID uuid.UUID, limit int) ([]Revision, error) {
	if limit <= 0 {
		limit = 20
	}
	query := `
select id, session_id, document, saved_at
from worker_profile_revisions
where owner_id = $1
order by saved_at desc
limit $2;
`
	rows, err := r.pool.Query(ctx, query, ownerID, limit)
	if err != nil {
		return nil, fmt.Errorf("pool.Query: %w", err)
	}
	defer rows.Close()

	var out []Revision
	for rows.Next() {
		var (
			rev Revision
			doc []byte
		)
		if err := rows.Scan(&rev.ID, &rev.SessionID, &doc, &rev.SavedAt); err != nil {
			return nil, fmt.Errorf("rows.Scan: %w", err)
		}
		rev.Document = doc
		out = append(out, rev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows.Err: %w", err)
	}
	return out, nil
}

// DeleteProfile removes the profile of owner and its revisions.
func (r *ProfileRepository) DeleteProfile(ctx context.Context, ownerID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `delete from worker_profiles where owner_id = $1`, ownerID)
	if err != nil {
		return fmt.Errorf("pool.Exec: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
