package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresDocumentStore keeps every collection in the JSONB documents table.
type PostgresDocumentStore struct {
	pool *pgxpool.Pool
}

// NewPostgresDocumentStore returns a store backed by the given pool.
func NewPostgresDocumentStore(pool *pgxpool.Pool) *PostgresDocumentStore {
	return &PostgresDocumentStore{pool: pool}
}

func (s *PostgresDocumentStore) Create(ctx context.Context, collection string, doc Document) (string, error) {
	const query = `
        INSERT INTO documents (collection, id, data)
        VALUES ($1, $2, $3::jsonb)`

	payload, err := json.Marshal(doc.withoutID())
	if err != nil {
		return "", fmt.Errorf("encode document: %w", err)
	}
	id := uuid.NewString()
	if _, err := s.pool.Exec(ctx, query, collection, id, string(payload)); err != nil {
		return "", err
	}
	return id, nil
}

func (s *PostgresDocumentStore) Get(ctx context.Context, collection, id string) (Document, error) {
	const query = `
        SELECT data FROM documents WHERE collection=$1 AND id=$2`

	var raw []byte
	if err := s.pool.QueryRow(ctx, query, collection, id).Scan(&raw); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrDocumentNotFound
		}
		return nil, err
	}
	return decodeRow(id, raw)
}

func (s *PostgresDocumentStore) Find(ctx context.Context, collection string, q Query) ([]Document, error) {
	where := q.Where
	if where == nil {
		where = map[string]any{}
	}
	filter, err := json.Marshal(where)
	if err != nil {
		return nil, fmt.Errorf("encode filter: %w", err)
	}

	query := `
        SELECT id, data FROM documents
        WHERE collection=$1 AND data @> $2::jsonb`
	if q.NewestFirst {
		query += " ORDER BY created_at DESC, id DESC"
	} else {
		query += " ORDER BY created_at ASC, id ASC"
	}
	if q.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", q.Limit)
	}

	rows, err := s.pool.Query(ctx, query, collection, string(filter))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Document
	for rows.Next() {
		var (
			id  string
			raw []byte
		)
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, err
		}
		doc, err := decodeRow(id, raw)
		if err != nil {
			return nil, err
		}
		result = append(result, doc)
	}
	return result, rows.Err()
}

func (s *PostgresDocumentStore) FindAll(ctx context.Context, collection string) ([]Document, error) {
	return s.Find(ctx, collection, Query{})
}

func (s *PostgresDocumentStore) Update(ctx context.Context, collection, id string, fields Document) error {
	const query = `
        UPDATE documents SET data = data || $3::jsonb, updated_at=NOW()
        WHERE collection=$1 AND id=$2`

	payload, err := json.Marshal(fields.withoutID())
	if err != nil {
		return fmt.Errorf("encode fields: %w", err)
	}
	cmd, err := s.pool.Exec(ctx, query, collection, id, string(payload))
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrDocumentNotFound
	}
	return nil
}

func (s *PostgresDocumentStore) Delete(ctx context.Context, collection, id string) error {
	const query = `DELETE FROM documents WHERE collection=$1 AND id=$2`

	cmd, err := s.pool.Exec(ctx, query, collection, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrDocumentNotFound
	}
	return nil
}

func decodeRow(id string, raw []byte) (Document, error) {
	doc := Document{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode document %s: %w", id, err)
	}
	doc["id"] = id
	return doc, nil
}
