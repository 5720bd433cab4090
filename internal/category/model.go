package category

import "time"

type State int16

const (
	StateActive   State = 1
	StateInactive State = 2
)

// Category is a legal practice area (civil, penal, laboral, ...).
type Category struct {
	ID          int64      `db:"id" json:"id"`
	Name        string     `db:"name" json:"name"`
	Description string     `db:"description" json:"description"`
	State       State      `db:"state" json:"state"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
	DeletedAt   *time.Time `db:"deleted_at" json:"-"`
}

type Params struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	State       State  `json:"state" binding:"omitempty,oneof=1 2"`
}
