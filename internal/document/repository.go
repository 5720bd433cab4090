package document

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

var (
	ErrNotFound         = errors.New("document not found")
	ErrCategoryNotFound = errors.New("category not found")
	ErrTypeNotFound     = errors.New("document type not found")
)

const documentColumns = `id, type_document_id, name, description, file, state, created_at, updated_at, deleted_at`

type Repository interface {
	Create(ctx context.Context, p Params, filePath string) (*Document, error)
	GetByID(ctx context.Context, id int64) (*Document, error)
	List(ctx context.Context, search string) ([]Document, error)
	Update(ctx context.Context, id int64, p Params, filePath *string) (*Document, error)
	SoftDelete(ctx context.Context, id int64) (*Document, error)
}

type SQLRepository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *SQLRepository {
	return &SQLRepository{db: db}
}

func (r *SQLRepository) Create(ctx context.Context, p Params, filePath string) (*Document, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if err := r.checkRefs(ctx, tx, p); err != nil {
		return nil, err
	}

	state := p.State
	if state == 0 {
		state = StateActive
	}

	doc := &Document{}
	err = tx.QueryRowxContext(ctx, `
		INSERT INTO documents (type_document_id, name, description, file, state)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+documentColumns+`
	`, p.TypeDocumentID, p.Name, p.Description, filePath, state).StructScan(doc)
	if err != nil {
		return nil, err
	}

	if err := syncCategories(ctx, tx, doc.ID, p.CategoryIDs); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	doc.CategoryIDs = normalize(p.CategoryIDs)
	return doc, nil
}

func (r *SQLRepository) GetByID(ctx context.Context, id int64) (*Document, error) {
	doc := &Document{}
	err := r.db.GetContext(ctx, doc, `
		SELECT `+documentColumns+` FROM documents
		WHERE id = $1 AND deleted_at IS NULL
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := r.loadCategories(ctx, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func (r *SQLRepository) List(ctx context.Context, search string) ([]Document, error) {
	docs := []Document{}
	err := r.db.SelectContext(ctx, &docs, `
		SELECT `+documentColumns+` FROM documents
		WHERE deleted_at IS NULL AND name ILIKE $1
		ORDER BY id DESC
	`, "%"+search+"%")
	if err != nil {
		return nil, err
	}

	for i := range docs {
		if err := r.loadCategories(ctx, &docs[i]); err != nil {
			return nil, err
		}
	}
	return docs, nil
}

// Update rewrites the row and resyncs the category set. filePath is nil
// when the caller keeps the stored PDF.
func (r *SQLRepository) Update(ctx context.Context, id int64, p Params, filePath *string) (*Document, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if err := r.checkRefs(ctx, tx, p); err != nil {
		return nil, err
	}

	state := p.State
	if state == 0 {
		state = StateActive
	}

	doc := &Document{}
	err = tx.QueryRowxContext(ctx, `
		UPDATE documents
		SET type_document_id = $2, name = $3, description = $4,
		    file = COALESCE($5, file), state = $6, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING `+documentColumns+`
	`, id, p.TypeDocumentID, p.Name, p.Description, filePath, state).StructScan(doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := syncCategories(ctx, tx, doc.ID, p.CategoryIDs); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	doc.CategoryIDs = normalize(p.CategoryIDs)
	return doc, nil
}

func (r *SQLRepository) SoftDelete(ctx context.Context, id int64) (*Document, error) {
	doc := &Document{}
	err := r.db.QueryRowxContext(ctx, `
		UPDATE documents SET deleted_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING `+documentColumns+`
	`, id).StructScan(doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return doc, err
}

func (r *SQLRepository) loadCategories(ctx context.Context, doc *Document) error {
	ids := []int64{}
	err := r.db.SelectContext(ctx, &ids, `
		SELECT category_id FROM document_categories
		WHERE document_id = $1
		ORDER BY category_id
	`, doc.ID)
	if err != nil {
		return err
	}
	doc.CategoryIDs = ids
	return nil
}

func (r *SQLRepository) checkRefs(ctx context.Context, tx *sqlx.Tx, p Params) error {
	var exists bool
	if err := tx.GetContext(ctx, &exists, `
		SELECT EXISTS (SELECT 1 FROM type_documents WHERE id = $1 AND deleted_at IS NULL)
	`, p.TypeDocumentID); err != nil {
		return err
	}
	if !exists {
		return ErrTypeNotFound
	}

	if len(p.CategoryIDs) == 0 {
		return nil
	}

	ids := normalize(p.CategoryIDs)
	var count int
	if err := tx.GetContext(ctx, &count, `
		SELECT COUNT(*) FROM categories WHERE id = ANY($1) AND deleted_at IS NULL
	`, pq.Array(ids)); err != nil {
		return err
	}
	if count != len(ids) {
		return ErrCategoryNotFound
	}
	return nil
}

func syncCategories(ctx context.Context, tx *sqlx.Tx, docID int64, categoryIDs []int64) error {
	ids := normalize(categoryIDs)

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM document_categories
		WHERE document_id = $1 AND NOT (category_id = ANY($2))
	`, docID, pq.Array(ids)); err != nil {
		return err
	}

	if len(ids) == 0 {
		return nil
	}

	_, err := tx.ExecContext(ctx, `
		INSERT INTO document_categories (document_id, category_id)
		SELECT $1, unnest($2::bigint[])
		ON CONFLICT DO NOTHING
	`, docID, pq.Array(ids))
	return err
}

// normalize dedupes and guarantees a non-nil slice so pq.Array encodes
// an empty array instead of NULL.
func normalize(ids []int64) []int64 {
	out := make([]int64, 0, len(ids))
	seen := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
