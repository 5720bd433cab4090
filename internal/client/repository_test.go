package client

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

func setupClientMock(t *testing.T) (*SQLRepository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	repo := NewRepository(sqlxDB)

	closer := func() { sqlxDB.Close() }
	return repo, mock, closer
}

func clientColumns() []string {
	return []string{"id", "telegram_id", "name", "ci", "phone", "city", "client_type", "state", "created_at", "updated_at", "deleted_at"}
}

func TestRegister(t *testing.T) {
	repo, mock, close := setupClientMock(t)
	defer close()

	now := time.Now()
	ci := "1234567"

	mock.ExpectQuery(regexp.QuoteMeta(`
		INSERT INTO clients (telegram_id, name, ci, phone, city, client_type, state)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, telegram_id, name, ci, phone, city, client_type, state, created_at, updated_at, deleted_at
	`)).
		WithArgs(int64(555), "Juan Pérez", &ci, nil, nil, nil, StateActive).
		WillReturnRows(sqlmock.NewRows(clientColumns()).
			AddRow(1, 555, "Juan Pérez", ci, nil, nil, nil, 1, now, now, nil))

	c, err := repo.Register(context.Background(), RegisterParams{
		TelegramID: 555,
		Name:       "Juan Pérez",
		CI:         &ci,
	})
	require.NoError(t, err)
	require.Equal(t, int64(555), c.TelegramID)
	require.Equal(t, StateActive, c.State)
}

func TestGetByTelegramIDNotFound(t *testing.T) {
	repo, mock, close := setupClientMock(t)
	defer close()

	mock.ExpectQuery(regexp.QuoteMeta(`
		SELECT * FROM clients WHERE telegram_id = $1 AND deleted_at IS NULL
	`)).
		WithArgs(int64(999)).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByTelegramID(context.Background(), 999)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestTelegramIDExists(t *testing.T) {
	repo, mock, close := setupClientMock(t)
	defer close()

	mock.ExpectQuery(regexp.QuoteMeta(`
		SELECT EXISTS (SELECT 1 FROM clients WHERE telegram_id = $1 AND deleted_at IS NULL)
	`)).
		WithArgs(int64(555)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := repo.TelegramIDExists(context.Background(), 555)
	require.NoError(t, err)
	require.True(t, exists)
}

func TestListPaginatesAtTen(t *testing.T) {
	repo, mock, close := setupClientMock(t)
	defer close()

	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta(`
		SELECT COUNT(*) FROM clients WHERE name ILIKE $1 AND deleted_at IS NULL
	`)).
		WithArgs("%juan%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(25))

	mock.ExpectQuery(regexp.QuoteMeta(`
		SELECT * FROM clients
		WHERE name ILIKE $1 AND deleted_at IS NULL
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`)).
		WithArgs("%juan%", PageSize, 10).
		WillReturnRows(sqlmock.NewRows(clientColumns()).
			AddRow(11, 556, "Juana", nil, nil, nil, nil, 1, now, now, nil))

	clients, total, err := repo.List(context.Background(), "juan", 2)
	require.NoError(t, err)
	require.Equal(t, int64(25), total)
	require.Len(t, clients, 1)
}

func TestSoftDeleteNotFound(t *testing.T) {
	repo, mock, close := setupClientMock(t)
	defer close()

	mock.ExpectExec(regexp.QuoteMeta(`
		UPDATE clients SET deleted_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
	`)).
		WithArgs(int64(77)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.SoftDelete(context.Background(), 77)
	require.ErrorIs(t, err, ErrNotFound)
}
