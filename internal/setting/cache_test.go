package setting

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/require"
)

type stubRepo struct {
	setting  *Setting
	getCalls int
}

func (s *stubRepo) Get(ctx context.Context) (*Setting, error) {
	s.getCalls++
	return s.setting, nil
}

func (s *stubRepo) Update(ctx context.Context, p Params) (*Setting, error) {
	s.setting.BankDetails = p.BankDetails
	return s.setting, nil
}

func (s *stubRepo) UpdateQR(ctx context.Context, path string) (*Setting, error) {
	s.setting.QR = &path
	return s.setting, nil
}

func testSetting() *Setting {
	return &Setting{
		ID:              1,
		ContactName:     "Admin SaaS Legal",
		TelegramUser:    "@SaaSLegalAdmin",
		BankDetails:     "Banco Unión, Cuenta: 100-200-300",
		AdminTelegramID: 42,
		CreatedAt:       time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		UpdatedAt:       time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestCachedGetMissThenHit(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	inner := &stubRepo{setting: testSetting()}
	repo := NewCachedRepository(inner, rdb)

	raw, err := json.Marshal(inner.setting)
	require.NoError(t, err)

	mock.ExpectGet(cacheKey).RedisNil()
	mock.ExpectSet(cacheKey, raw, cacheTTL).SetVal("OK")

	s, err := repo.Get(context.Background())
	require.NoError(t, err)
	require.Equal(t, "Banco Unión, Cuenta: 100-200-300", s.BankDetails)
	require.Equal(t, 1, inner.getCalls)

	mock.ExpectGet(cacheKey).SetVal(string(raw))

	s, err = repo.Get(context.Background())
	require.NoError(t, err)
	require.Equal(t, "Banco Unión, Cuenta: 100-200-300", s.BankDetails)
	require.Equal(t, 1, inner.getCalls, "cache hit must not touch the database")

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCachedUpdateInvalidates(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	inner := &stubRepo{setting: testSetting()}
	repo := NewCachedRepository(inner, rdb)

	mock.ExpectDel(cacheKey).SetVal(1)

	s, err := repo.Update(context.Background(), Params{
		ContactName:     "Admin SaaS Legal",
		TelegramUser:    "@SaaSLegalAdmin",
		BankDetails:     "Banco Nacional, Cuenta: 1234567890",
		AdminTelegramID: 42,
	})
	require.NoError(t, err)
	require.Equal(t, "Banco Nacional, Cuenta: 1234567890", s.BankDetails)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCachedGetSurvivesRedisDown(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	inner := &stubRepo{setting: testSetting()}
	repo := NewCachedRepository(inner, rdb)

	mock.ExpectGet(cacheKey).SetErr(context.DeadlineExceeded)

	raw, err := json.Marshal(inner.setting)
	require.NoError(t, err)
	mock.ExpectSet(cacheKey, raw, cacheTTL).SetErr(context.DeadlineExceeded)

	s, err := repo.Get(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(42), s.AdminTelegramID)
	require.Equal(t, 1, inner.getCalls)
}
