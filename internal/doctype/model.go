package doctype

import "time"

type State int16

const (
	StateActive   State = 1
	StateInactive State = 2
)

// TypeDocument classifies uploaded legal documents (ley, decreto,
// jurisprudencia, ...).
type TypeDocument struct {
	ID        int64      `db:"id" json:"id"`
	Name      string     `db:"name" json:"name"`
	State     State      `db:"state" json:"state"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt time.Time  `db:"updated_at" json:"updated_at"`
	DeletedAt *time.Time `db:"deleted_at" json:"-"`
}

type Params struct {
	Name  string `json:"name" binding:"required"`
	State State  `json:"state" binding:"omitempty,oneof=1 2"`
}
