package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"storyadmin/internal/domain/models"
	"storyadmin/internal/storage"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

const draftsTable = "drafts"

type DraftRepo struct {
	db  *pgxpool.Pool
	sb  sq.StatementBuilderType
	cap int
}

func NewDraftRepository(db *pgxpool.Pool, maxEntries int) *DraftRepo {
	if maxEntries <= 0 {
		maxEntries = 10
	}

	return &DraftRepo{
		db:  db,
		sb:  sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
		cap: maxEntries,
	}
}

func (r *DraftRepo) SaveDraft(ctx context.Context, draft models.Draft) error {
	const op = "repository.draft_repository.SaveDraft"

	form, err := json.Marshal(draft.Form)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	sections, err := json.Marshal(draft.Sections)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	query, args, err := r.sb.Insert(draftsTable).
		Columns("id", "title", "form", "sections", "created_at", "updated_at").
		Values(draft.ID, draft.Title, form, sections, draft.CreatedAt, draft.UpdatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return r.trimToCap(ctx)
}

// trimToCap evicts the oldest drafts so that at most cap entries remain.
func (r *DraftRepo) trimToCap(ctx context.Context) error {
	const op = "repository.draft_repository.trimToCap"

	query := fmt.Sprintf(
		`DELETE FROM %s WHERE id NOT IN (SELECT id FROM %s ORDER BY created_at DESC LIMIT $1)`,
		draftsTable, draftsTable,
	)

	if _, err := r.db.Exec(ctx, query, r.cap); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (r *DraftRepo) ListDrafts(ctx context.Context) ([]models.Draft, error) {
	const op = "repository.draft_repository.ListDrafts"

	query, args, err := r.sb.Select("id", "title", "form", "sections", "created_at", "updated_at").
		From(draftsTable).
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var drafts []models.Draft
	for rows.Next() {
		draft, err := scanDraft(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		drafts = append(drafts, draft)
	}

	return drafts, rows.Err()
}

func (r *DraftRepo) GetDraft(ctx context.Context, id int64) (models.Draft, error) {
	const op = "repository.draft_repository.GetDraft"

	query, args, err := r.sb.Select("id", "title", "form", "sections", "created_at", "updated_at").
		From(draftsTable).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return models.Draft{}, fmt.Errorf("%s: %w", op, err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return models.Draft{}, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	if !rows.Next() {
		return models.Draft{}, fmt.Errorf("%s: %w", op, storage.ErrDraftNotFound)
	}

	draft, err := scanDraft(rows)
	if err != nil {
		return models.Draft{}, fmt.Errorf("%s: %w", op, err)
	}

	return draft, nil
}

func (r *DraftRepo) DeleteDraft(ctx context.Context, id int64) error {
	const op = "repository.draft_repository.DeleteDraft"

	query, args, err := r.sb.Delete(draftsTable).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrDraftNotFound)
	}

	return nil
}

func (r *DraftRepo) PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	const op = "repository.draft_repository.PurgeOlderThan"

	query, args, err := r.sb.Delete(draftsTable).
		Where(sq.Lt{"created_at": cutoff}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return tag.RowsAffected(), nil
}

func scanDraft(rows pgx.Rows) (models.Draft, error) {
	var (
		draft    models.Draft
		form     []byte
		sections []byte
	)

	if err := rows.Scan(&draft.ID, &draft.Title, &form, &sections, &draft.CreatedAt, &draft.UpdatedAt); err != nil {
		return models.Draft{}, err
	}

	if err := json.Unmarshal(form, &draft.Form); err != nil {
		return models.Draft{}, err
	}

	if err := json.Unmarshal(sections, &draft.Sections); err != nil {
		return models.Draft{}, err
	}

	return draft, nil
}
