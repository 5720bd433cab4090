package doctype

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
)

var (
	ErrNotFound      = errors.New("document type not found")
	ErrDuplicateName = errors.New("document type name already exists")
)

type SQLRepository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *SQLRepository {
	return &SQLRepository{db: db}
}

func (r *SQLRepository) List(ctx context.Context, search string) ([]TypeDocument, error) {
	types := []TypeDocument{}
	err := r.db.SelectContext(ctx, &types, `
		SELECT * FROM type_documents
		WHERE name ILIKE $1 AND deleted_at IS NULL
		ORDER BY id
	`, "%"+search+"%")
	return types, err
}

func (r *SQLRepository) GetByID(ctx context.Context, id int64) (*TypeDocument, error) {
	td := &TypeDocument{}
	err := r.db.GetContext(ctx, td, `
		SELECT * FROM type_documents WHERE id = $1 AND deleted_at IS NULL
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return td, err
}

func (r *SQLRepository) Create(ctx context.Context, p Params) (*TypeDocument, error) {
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
		SELECT EXISTS (SELECT 1 FROM type_documents WHERE name = $1 AND deleted_at IS NULL)
	`, p.Name); err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicateName
	}

	td := &TypeDocument{}
	err = tx.QueryRowxContext(ctx, `
		INSERT INTO type_documents (name, state)
		VALUES ($1, $2)
		RETURNING id, name, state, created_at, updated_at, deleted_at
	`, p.Name, p.State).StructScan(td)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return td, nil
}

func (r *SQLRepository) Update(ctx context.Context, id int64, p Params) (*TypeDocument, error) {
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
		SELECT EXISTS (SELECT 1 FROM type_documents WHERE name = $1 AND id != $2 AND deleted_at IS NULL)
	`, p.Name, id); err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicateName
	}

	td := &TypeDocument{}
	err = tx.QueryRowxContext(ctx, `
		UPDATE type_documents
		SET name = $2, state = $3, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING id, name, state, created_at, updated_at, deleted_at
	`, id, p.Name, p.State).StructScan(td)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return td, nil
}

func (r *SQLRepository) SoftDelete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE type_documents SET deleted_at = NOW(), updated_at = NOW()
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
