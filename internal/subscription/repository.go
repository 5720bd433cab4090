package subscription

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/alberthlima/saas-legal/internal/client"
)

var (
	ErrNotFound         = errors.New("subscription not found")
	ErrNoCurrent        = errors.New("no current subscription")
	ErrCategoryNotFound = errors.New("category not found")
)

const subscriptionColumns = `id, client_id, membership_id, status, start_date, end_date, voucher, created_at, updated_at, deleted_at`

type SQLRepository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *SQLRepository {
	return &SQLRepository{db: db}
}

// StartIntent cancels every pending subscription of the client and
// creates a fresh pending_payment one. The client row is locked for the
// duration of the transaction, so two concurrent intents for the same
// client serialize instead of both inserting a pending row; the partial
// unique index on (client_id) WHERE pending backs this at the schema
// level.
func (r *SQLRepository) StartIntent(ctx context.Context, clientID, membershipID int64) (*Subscription, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var lockedID int64
	err = tx.GetContext(ctx, &lockedID, `
		SELECT id FROM clients WHERE id = $1 AND deleted_at IS NULL FOR UPDATE
	`, clientID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, client.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE subscriptions SET status = $2, updated_at = NOW()
		WHERE client_id = $1 AND status = $3 AND deleted_at IS NULL
	`, clientID, StatusCancelled, StatusPendingPayment); err != nil {
		return nil, err
	}

	sub := &Subscription{}
	err = tx.QueryRowxContext(ctx, `
		INSERT INTO subscriptions (client_id, membership_id, status)
		VALUES ($1, $2, $3)
		RETURNING `+subscriptionColumns+`
	`, clientID, membershipID, StatusPendingPayment).StructScan(sub)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return sub, nil
}

func (r *SQLRepository) GetByID(ctx context.Context, id int64) (*Subscription, error) {
	sub := &Subscription{}
	err := r.db.GetContext(ctx, sub, `
		SELECT `+subscriptionColumns+` FROM subscriptions
		WHERE id = $1 AND deleted_at IS NULL
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return sub, err
}

// Current returns the most recently created pending or active
// subscription of the client, or ErrNoCurrent.
func (r *SQLRepository) Current(ctx context.Context, clientID int64) (*Subscription, error) {
	sub := &Subscription{}
	err := r.db.GetContext(ctx, sub, `
		SELECT `+subscriptionColumns+` FROM subscriptions
		WHERE client_id = $1 AND status IN ($2, $3) AND deleted_at IS NULL
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`, clientID, StatusPendingPayment, StatusActive)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoCurrent
	}
	return sub, err
}

// SetCategories replaces the subscription's category set. Associations
// outside the new set are removed, missing ones added, the intersection
// left untouched. An empty set clears everything.
func (r *SQLRepository) SetCategories(ctx context.Context, subID int64, categoryIDs []int64) error {
	if categoryIDs == nil {
		// pq.Array(nil) encodes SQL NULL and NULL array membership
		// tests are never true, which would skip the delete below.
		categoryIDs = []int64{}
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var exists bool
	if err := tx.GetContext(ctx, &exists, `
		SELECT EXISTS (SELECT 1 FROM subscriptions WHERE id = $1 AND deleted_at IS NULL)
	`, subID); err != nil {
		return err
	}
	if !exists {
		return ErrNotFound
	}

	if len(categoryIDs) > 0 {
		var count int
		if err := tx.GetContext(ctx, &count, `
			SELECT COUNT(*) FROM categories WHERE id = ANY($1) AND deleted_at IS NULL
		`, pq.Array(categoryIDs)); err != nil {
			return err
		}
		if count != len(dedupe(categoryIDs)) {
			return ErrCategoryNotFound
		}
	}

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM subscription_categories
		WHERE subscription_id = $1 AND NOT (category_id = ANY($2))
	`, subID, pq.Array(categoryIDs)); err != nil {
		return err
	}

	if len(categoryIDs) > 0 {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO subscription_categories (subscription_id, category_id)
			SELECT $1, unnest($2::bigint[])
			ON CONFLICT DO NOTHING
		`, subID, pq.Array(categoryIDs)); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *SQLRepository) CategoryIDs(ctx context.Context, subID int64) ([]int64, error) {
	ids := []int64{}
	err := r.db.SelectContext(ctx, &ids, `
		SELECT category_id FROM subscription_categories
		WHERE subscription_id = $1
		ORDER BY category_id
	`, subID)
	return ids, err
}

func (r *SQLRepository) UpdateVoucher(ctx context.Context, subID int64, path string) (*Subscription, error) {
	sub := &Subscription{}
	err := r.db.QueryRowxContext(ctx, `
		UPDATE subscriptions SET voucher = $2, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING `+subscriptionColumns+`
	`, subID, path).StructScan(sub)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return sub, err
}

// Approve activates the subscription with the given window. Dates are
// always overwritten, also on re-approval.
func (r *SQLRepository) Approve(ctx context.Context, subID int64, start, end time.Time) (*Subscription, error) {
	sub := &Subscription{}
	err := r.db.QueryRowxContext(ctx, `
		UPDATE subscriptions SET status = $2, start_date = $3, end_date = $4, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING `+subscriptionColumns+`
	`, subID, StatusActive, start, end).StructScan(sub)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return sub, err
}

// Cancel moves the subscription to cancelled regardless of its prior
// status. Cancelling an already-cancelled subscription is a no-op that
// still succeeds.
func (r *SQLRepository) Cancel(ctx context.Context, subID int64) (*Subscription, error) {
	sub := &Subscription{}
	err := r.db.QueryRowxContext(ctx, `
		UPDATE subscriptions SET status = $2, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING `+subscriptionColumns+`
	`, subID, StatusCancelled).StructScan(sub)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return sub, err
}

// List returns the full admin listing, newest first. The panel loads
// the whole result set; there is no pagination here.
func (r *SQLRepository) List(ctx context.Context, search string) ([]AdminRow, error) {
	rows := []AdminRow{}
	err := r.db.SelectContext(ctx, &rows, `
		SELECT s.id, c.name AS client_name, m.name AS membership_name,
		       s.start_date, s.end_date, s.status, s.created_at
		FROM subscriptions s
		JOIN clients c ON c.id = s.client_id
		JOIN memberships m ON m.id = s.membership_id
		WHERE s.deleted_at IS NULL
		  AND (c.name ILIKE $1 OR m.name ILIKE $1)
		ORDER BY s.id DESC
	`, "%"+search+"%")
	return rows, err
}

func (r *SQLRepository) SoftDelete(ctx context.Context, subID int64) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE subscriptions SET deleted_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
	`, subID)
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

func dedupe(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := ids[:0:0]
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
