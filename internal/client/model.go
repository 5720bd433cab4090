package client

import "time"

// State of a client account. Stored as a smallint for compatibility
// with the rest of the platform (1 active, 2 blocked).
type State int16

const (
	StateActive  State = 1
	StateBlocked State = 2
)

type Client struct {
	ID         int64      `db:"id" json:"id"`
	TelegramID int64      `db:"telegram_id" json:"telegram_id"`
	Name       string     `db:"name" json:"name"`
	CI         *string    `db:"ci" json:"ci,omitempty"`
	Phone      *string    `db:"phone" json:"phone,omitempty"`
	City       *string    `db:"city" json:"city,omitempty"`
	ClientType *string    `db:"client_type" json:"client_type,omitempty"`
	State      State      `db:"state" json:"state"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time  `db:"updated_at" json:"updated_at"`
	DeletedAt  *time.Time `db:"deleted_at" json:"-"`
}

// RegisterParams is what the bot sends on first contact.
type RegisterParams struct {
	TelegramID int64   `json:"telegram_id" binding:"required"`
	Name       string  `json:"name" binding:"required"`
	CI         *string `json:"ci"`
	Phone      *string `json:"phone"`
	City       *string `json:"city"`
	ClientType *string `json:"client_type"`
}

type UpdateParams struct {
	Name       string  `json:"name" binding:"required"`
	CI         *string `json:"ci"`
	Phone      *string `json:"phone"`
	City       *string `json:"city"`
	ClientType *string `json:"client_type"`
	State      State   `json:"state" binding:"required,oneof=1 2"`
}
