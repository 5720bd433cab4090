package document

import "time"

// State of a knowledge-base document (1 active, 2 inactive). Inactive
// documents stay stored but are flagged as such to the ingestion
// service.
type State int16

const (
	StateActive   State = 1
	StateInactive State = 2
)

type Document struct {
	ID             int64      `db:"id" json:"id"`
	TypeDocumentID int64      `db:"type_document_id" json:"type_document_id"`
	Name           string     `db:"name" json:"name"`
	Description    string     `db:"description" json:"description"`
	File           string     `db:"file" json:"file"`
	FileURL        string     `db:"-" json:"file_url,omitempty"`
	State          State      `db:"state" json:"state"`
	CategoryIDs    []int64    `db:"-" json:"category_ids"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updated_at"`
	DeletedAt      *time.Time `db:"deleted_at" json:"-"`
}

// Params is the multipart form for create and update. The PDF file
// itself is read separately; on update it is optional.
type Params struct {
	Name           string  `form:"name" binding:"required"`
	Description    string  `form:"description"`
	TypeDocumentID int64   `form:"type_document_id" binding:"required"`
	State          State   `form:"state" binding:"omitempty,oneof=1 2"`
	CategoryIDs    []int64 `form:"category_ids"`
}
