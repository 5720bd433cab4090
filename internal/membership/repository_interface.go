package membership

import "context"

type Repository interface {
	List(ctx context.Context, search string) ([]Membership, error)
	ListActive(ctx context.Context) ([]Membership, error)
	GetByID(ctx context.Context, id int64) (*Membership, error)
	Create(ctx context.Context, p Params) (*Membership, error)
	Update(ctx context.Context, id int64, p Params) (*Membership, error)
	SoftDelete(ctx context.Context, id int64) error
}
