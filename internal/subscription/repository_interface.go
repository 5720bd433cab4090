package subscription

import (
	"context"
	"time"
)

type Repository interface {
	StartIntent(ctx context.Context, clientID, membershipID int64) (*Subscription, error)
	GetByID(ctx context.Context, id int64) (*Subscription, error)
	Current(ctx context.Context, clientID int64) (*Subscription, error)
	SetCategories(ctx context.Context, subID int64, categoryIDs []int64) error
	CategoryIDs(ctx context.Context, subID int64) ([]int64, error)
	UpdateVoucher(ctx context.Context, subID int64, path string) (*Subscription, error)
	Approve(ctx context.Context, subID int64, start, end time.Time) (*Subscription, error)
	Cancel(ctx context.Context, subID int64) (*Subscription, error)
	List(ctx context.Context, search string) ([]AdminRow, error)
	SoftDelete(ctx context.Context, subID int64) error
}
