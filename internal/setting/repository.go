package setting

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
)

var ErrNotFound = errors.New("settings row not found")

// settingsRowID pins the singleton. Migrations seed the row, so reads
// after a migrated boot never miss.
const settingsRowID = 1

const settingColumns = `id, contact_name, telegram_user, bank_details, admin_telegram_id, qr, created_at, updated_at`

type SQLRepository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *SQLRepository {
	return &SQLRepository{db: db}
}

func (r *SQLRepository) Get(ctx context.Context) (*Setting, error) {
	s := &Setting{}
	err := r.db.GetContext(ctx, s, `
		SELECT `+settingColumns+` FROM settings WHERE id = $1
	`, settingsRowID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return s, err
}

func (r *SQLRepository) Update(ctx context.Context, p Params) (*Setting, error) {
	s := &Setting{}
	err := r.db.QueryRowxContext(ctx, `
		UPDATE settings
		SET contact_name = $2, telegram_user = $3, bank_details = $4,
		    admin_telegram_id = $5, updated_at = NOW()
		WHERE id = $1
		RETURNING `+settingColumns+`
	`, settingsRowID, p.ContactName, p.TelegramUser, p.BankDetails,
		p.AdminTelegramID).StructScan(s)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return s, err
}

func (r *SQLRepository) UpdateQR(ctx context.Context, path string) (*Setting, error) {
	s := &Setting{}
	err := r.db.QueryRowxContext(ctx, `
		UPDATE settings SET qr = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING `+settingColumns+`
	`, settingsRowID, path).StructScan(s)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return s, err
}
