package category

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

var (
	ErrNotFound      = errors.New("category not found")
	ErrDuplicateName = errors.New("category name already exists")
)

type SQLRepository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *SQLRepository {
	return &SQLRepository{db: db}
}

func (r *SQLRepository) List(ctx context.Context, search string) ([]Category, error) {
	categories := []Category{}
	err := r.db.SelectContext(ctx, &categories, `
		SELECT * FROM categories
		WHERE name ILIKE $1 AND deleted_at IS NULL
		ORDER BY id
	`, "%"+search+"%")
	return categories, err
}

func (r *SQLRepository) ListActive(ctx context.Context) ([]Category, error) {
	categories := []Category{}
	err := r.db.SelectContext(ctx, &categories, `
		SELECT * FROM categories
		WHERE state = $1 AND deleted_at IS NULL
		ORDER BY id
	`, StateActive)
	return categories, err
}

func (r *SQLRepository) GetByID(ctx context.Context, id int64) (*Category, error) {
	cat := &Category{}
	err := r.db.GetContext(ctx, cat, `
		SELECT * FROM categories WHERE id = $1 AND deleted_at IS NULL
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return cat, err
}

// CountByIDs reports how many of the given ids reference live
// categories. Used to validate category selections before syncing.
func (r *SQLRepository) CountByIDs(ctx context.Context, ids []int64) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `
		SELECT COUNT(*) FROM categories
		WHERE id = ANY($1) AND deleted_at IS NULL
	`, pq.Array(ids))
	return count, err
}

func (r *SQLRepository) Create(ctx context.Context, p Params) (*Category, error) {
	if p.State == 0 {
		p.State = StateActive
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var exists bool
	if err := tx.GetContext(ctx, &exists, `
		SELECT EXISTS (SELECT 1 FROM categories WHERE name = $1 AND deleted_at IS NULL)
	`, p.Name); err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicateName
	}

	cat := &Category{}
	err = tx.QueryRowxContext(ctx, `
		INSERT INTO categories (name, description, state)
		VALUES ($1, $2, $3)
		RETURNING id, name, description, state, created_at, updated_at, deleted_at
	`, p.Name, p.Description, p.State).StructScan(cat)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return cat, nil
}

func (r *SQLRepository) Update(ctx context.Context, id int64, p Params) (*Category, error) {
	if p.State == 0 {
		p.State = StateActive
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var exists bool
	if err := tx.GetContext(ctx, &exists, `
		SELECT EXISTS (SELECT 1 FROM categories WHERE name = $1 AND id != $2 AND deleted_at IS NULL)
	`, p.Name, id); err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicateName
	}

	cat := &Category{}
	err = tx.QueryRowxContext(ctx, `
		UPDATE categories
		SET name = $2, description = $3, state = $4, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING id, name, description, state, created_at, updated_at, deleted_at
	`, id, p.Name, p.Description, p.State).StructScan(cat)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return cat, nil
}

func (r *SQLRepository) SoftDelete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE categories SET deleted_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
	`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
