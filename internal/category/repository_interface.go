package category

import "context"

type Repository interface {
	List(ctx context.Context, search string) ([]Category, error)
	ListActive(ctx context.Context) ([]Category, error)
	GetByID(ctx context.Context, id int64) (*Category, error)
	CountByIDs(ctx context.Context, ids []int64) (int, error)
	Create(ctx context.Context, p Params) (*Category, error)
	Update(ctx context.Context, id int64, p Params) (*Category, error)
	SoftDelete(ctx context.Context, id int64) error
}
