package client

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/alberthlima/saas-legal/internal/db"
)

// PageSize is the fixed page size of the admin client listing.
const PageSize = 10

var (
	ErrNotFound            = errors.New("client not found")
	ErrDuplicateTelegramID = errors.New("telegram id already registered")
)

type SQLRepository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *SQLRepository {
	return &SQLRepository{db: db}
}

func (r *SQLRepository) Register(ctx context.Context, p RegisterParams) (*Client, error) {
	c := &Client{}
	err := r.db.QueryRowxContext(ctx, `
		INSERT INTO clients (telegram_id, name, ci, phone, city, client_type, state)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, telegram_id, name, ci, phone, city, client_type, state, created_at, updated_at, deleted_at
	`, p.TelegramID, p.Name, p.CI, p.Phone, p.City, p.ClientType, StateActive).StructScan(c)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return nil, ErrDuplicateTelegramID
		}
		return nil, err
	}
	return c, nil
}

func (r *SQLRepository) GetByID(ctx context.Context, id int64) (*Client, error) {
	c := &Client{}
	err := r.db.GetContext(ctx, c, `
		SELECT * FROM clients WHERE id = $1 AND deleted_at IS NULL
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return c, err
}

func (r *SQLRepository) GetByTelegramID(ctx context.Context, telegramID int64) (*Client, error) {
	c := &Client{}
	err := r.db.GetContext(ctx, c, `
		SELECT * FROM clients WHERE telegram_id = $1 AND deleted_at IS NULL
	`, telegramID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return c, err
}

func (r *SQLRepository) TelegramIDExists(ctx context.Context, telegramID int64) (bool, error) {
	return db.Exists(ctx, r.db, `
		SELECT EXISTS (SELECT 1 FROM clients WHERE telegram_id = $1 AND deleted_at IS NULL)
	`, telegramID)
}

// List returns one fixed-size page of clients whose name contains the
// search term, newest first.
func (r *SQLRepository) List(ctx context.Context, search string, page int) ([]Client, int64, error) {
	if page < 1 {
		page = 1
	}
	pattern := "%" + search + "%"

	var total int64
	if err := r.db.GetContext(ctx, &total, `
		SELECT COUNT(*) FROM clients WHERE name ILIKE $1 AND deleted_at IS NULL
	`, pattern); err != nil {
		return nil, 0, err
	}

	clients := []Client{}
	err := r.db.SelectContext(ctx, &clients, `
		SELECT * FROM clients
		WHERE name ILIKE $1 AND deleted_at IS NULL
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`, pattern, PageSize, (page-1)*PageSize)
	return clients, total, err
}

func (r *SQLRepository) Update(ctx context.Context, id int64, p UpdateParams) (*Client, error) {
	c := &Client{}
	err := r.db.QueryRowxContext(ctx, `
		UPDATE clients
		SET name = $2, ci = $3, phone = $4, city = $5, client_type = $6, state = $7, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING id, telegram_id, name, ci, phone, city, client_type, state, created_at, updated_at, deleted_at
	`, id, p.Name, p.CI, p.Phone, p.City, p.ClientType, p.State).StructScan(c)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return c, err
}

// SoftDelete archives the client. Clients are never hard-deleted.
func (r *SQLRepository) SoftDelete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE clients SET deleted_at = NOW(), updated_at = NOW()
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
