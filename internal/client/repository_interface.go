package client

import "context"

type Repository interface {
	Register(ctx context.Context, p RegisterParams) (*Client, error)
	GetByID(ctx context.Context, id int64) (*Client, error)
	GetByTelegramID(ctx context.Context, telegramID int64) (*Client, error)
	TelegramIDExists(ctx context.Context, telegramID int64) (bool, error)
	List(ctx context.Context, search string, page int) ([]Client, int64, error)
	Update(ctx context.Context, id int64, p UpdateParams) (*Client, error)
	SoftDelete(ctx context.Context, id int64) error
}
