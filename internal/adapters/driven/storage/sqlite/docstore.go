package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/corpora-dev/corpora/internal/core/domain"
	"github.com/corpora-dev/corpora/internal/core/ports/driven"
)

// documentStore implements driven.DocumentStore.
type documentStore struct {
	store *Store
}

var _ driven.DocumentStore = (*documentStore)(nil)

// Save stores or updates a document.
func (s *documentStore) Save(ctx context.Context, doc *domain.Document) error {
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO documents (id, filename, type, content, status, error, chunks_count, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			filename = excluded.filename,
			type = excluded.type,
			content = excluded.content,
			status = excluded.status,
			error = excluded.error,
			chunks_count = excluded.chunks_count
	`, doc.ID, doc.Filename, string(doc.Type), doc.Content, string(doc.Status),
		doc.Stats.Error, doc.Stats.ChunksCount, doc.CreatedAt)

	if err != nil {
		return fmt.Errorf("saving document: %w", err)
	}
	return nil
}

// Get retrieves a document by ID.
func (s *documentStore) Get(ctx context.Context, id string) (*domain.Document, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, filename, type, content, status, error, chunks_count, created_at
		FROM documents WHERE id = ?
	`, id)

	var doc domain.Document
	var docType, status string
	if err := row.Scan(&doc.ID, &doc.Filename, &docType, &doc.Content,
		&status, &doc.Stats.Error, &doc.Stats.ChunksCount, &doc.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning document: %w", err)
	}

	doc.Type = domain.DocumentType(docType)
	doc.Status = domain.ProcessingStatus(status)
	return &doc, nil
}

// List returns documents with pagination, oldest first.
func (s *documentStore) List(ctx context.Context, skip, limit int) ([]domain.Document, error) {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 {
		limit = -1 // no limit
	}

	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, filename, type, content, status, error, chunks_count, created_at
		FROM documents
		ORDER BY created_at, id
		LIMIT ? OFFSET ?
	`, limit, skip)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	docs := []domain.Document{}
	for rows.Next() {
		var doc domain.Document
		var docType, status string
		if err := rows.Scan(&doc.ID, &doc.Filename, &docType, &doc.Content,
			&status, &doc.Stats.Error, &doc.Stats.ChunksCount, &doc.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}
		doc.Type = domain.DocumentType(docType)
		doc.Status = domain.ProcessingStatus(status)
		docs = append(docs, doc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating documents: %w", err)
	}

	return docs, nil
}

// Delete removes a document.
func (s *documentStore) Delete(ctx context.Context, id string) error {
	res, err := s.store.db.ExecContext(ctx, "DELETE FROM documents WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking delete result: %w", err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
