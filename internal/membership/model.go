package membership

import "time"

// State of a plan (1 active, 2 inactive). Inactive plans are hidden
// from the bot but stay attached to historical subscriptions.
type State int16

const (
	StateActive   State = 1
	StateInactive State = 2
)

type Membership struct {
	ID             int64      `db:"id" json:"id"`
	Name           string     `db:"name" json:"name"`
	Description    string     `db:"description" json:"description"`
	PriceCents     int64      `db:"price_cents" json:"price_cents"`
	DailyLimit     int        `db:"daily_limit" json:"daily_limit"`
	MaxSpecialists int        `db:"max_specialists" json:"max_specialists"`
	State          State      `db:"state" json:"state"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updated_at"`
	DeletedAt      *time.Time `db:"deleted_at" json:"-"`
}

type Params struct {
	Name           string `json:"name" binding:"required"`
	Description    string `json:"description"`
	PriceCents     int64  `json:"price_cents" binding:"required,gte=0"`
	DailyLimit     int    `json:"daily_limit" binding:"required,gte=1"`
	MaxSpecialists int    `json:"max_specialists" binding:"required,gte=1"`
	State          State  `json:"state" binding:"omitempty,oneof=1 2"`
}
