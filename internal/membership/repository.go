package membership

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
)

var (
	ErrNotFound      = errors.New("membership not found")
	ErrDuplicateName = errors.New("membership name already exists")
)

type SQLRepository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *SQLRepository {
	return &SQLRepository{db: db}
}

func (r *SQLRepository) List(ctx context.Context, search string) ([]Membership, error) {
	memberships := []Membership{}
	err := r.db.SelectContext(ctx, &memberships, `
		SELECT * FROM memberships
		WHERE name ILIKE $1 AND deleted_at IS NULL
		ORDER BY id
	`, "%"+search+"%")
	return memberships, err
}

// ListActive returns the plans the bot is allowed to offer.
func (r *SQLRepository) ListActive(ctx context.Context) ([]Membership, error) {
	memberships := []Membership{}
	err := r.db.SelectContext(ctx, &memberships, `
		SELECT * FROM memberships
		WHERE state = $1 AND deleted_at IS NULL
		ORDER BY price_cents
	`, StateActive)
	return memberships, err
}

func (r *SQLRepository) GetByID(ctx context.Context, id int64) (*Membership, error) {
	m := &Membership{}
	err := r.db.GetContext(ctx, m, `
		SELECT * FROM memberships WHERE id = $1 AND deleted_at IS NULL
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return m, err
}

func (r *SQLRepository) Create(ctx context.Context, p Params) (*Membership, error) {
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
		SELECT EXISTS (SELECT 1 FROM memberships WHERE name = $1 AND deleted_at IS NULL)
	`, p.Name); err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicateName
	}

	m := &Membership{}
	err = tx.QueryRowxContext(ctx, `
		INSERT INTO memberships (name, description, price_cents, daily_limit, max_specialists, state)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, name, description, price_cents, daily_limit, max_specialists, state, created_at, updated_at, deleted_at
	`, p.Name, p.Description, p.PriceCents, p.DailyLimit, p.MaxSpecialists, p.State).StructScan(m)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return m, nil
}

func (r *SQLRepository) Update(ctx context.Context, id int64, p Params) (*Membership, error) {
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
		SELECT EXISTS (SELECT 1 FROM memberships WHERE name = $1 AND id != $2 AND deleted_at IS NULL)
	`, p.Name, id); err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicateName
	}

	m := &Membership{}
	err = tx.QueryRowxContext(ctx, `
		UPDATE memberships
		SET name = $2, description = $3, price_cents = $4, daily_limit = $5, max_specialists = $6, state = $7, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING id, name, description, price_cents, daily_limit, max_specialists, state, created_at, updated_at, deleted_at
	`, id, p.Name, p.Description, p.PriceCents, p.DailyLimit, p.MaxSpecialists, p.State).StructScan(m)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return m, nil
}

func (r *SQLRepository) SoftDelete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE memberships SET deleted_at = NOW(), updated_at = NOW()
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
