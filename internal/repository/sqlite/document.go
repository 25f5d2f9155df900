package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hasan-mia/manufacturer-server/internal/apperror"
	"github.com/hasan-mia/manufacturer-server/internal/repository"
	"github.com/rs/xid"
)

// DocumentStore implements repository.DocumentRepository on the documents
// table.
type DocumentStore struct {
	conn *sql.DB
}

var _ repository.DocumentRepository = (*DocumentStore)(nil)

// Insert stores a new document. The generated id is written into the body
// under "id" before storage, so every document read back identifies itself.
//
// xid IDs are 20 chars, URL-safe, and sort by creation time — a drop-in for
// the object ids the frontend already treats as opaque strings.
func (s *DocumentStore) Insert(ctx context.Context, collection string, fields map[string]any) (string, error) {
	id := xid.New().String()

	body := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		body[k] = v
	}
	body["id"] = id

	raw, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("sqlite: encoding %s document: %w", collection, err)
	}

	now := time.Now()
	_, err = s.conn.ExecContext(ctx,
		`INSERT INTO documents (collection, id, body, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)`,
		collection, id, string(raw), now, now,
	)
	if err != nil {
		return "", fmt.Errorf("sqlite: inserting into %s: %w", collection, err)
	}

	return id, nil
}

// Get returns the raw document body, or apperror.ErrNotFound.
func (s *DocumentStore) Get(ctx context.Context, collection, id string) (json.RawMessage, error) {
	var body string
	err := s.conn.QueryRowContext(ctx,
		`SELECT body FROM documents WHERE collection = ? AND id = ?`,
		collection, id,
	).Scan(&body)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound(collection, id)
		}
		return nil, fmt.Errorf("sqlite: getting %s/%s: %w", collection, id, err)
	}

	return json.RawMessage(body), nil
}

// List returns every document in the collection, newest first.
func (s *DocumentStore) List(ctx context.Context, collection string) ([]json.RawMessage, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT body FROM documents
		 WHERE collection = ?
		 ORDER BY created_at DESC`,
		collection,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing %s: %w", collection, err)
	}
	defer rows.Close()

	return scanBodies(rows, collection)
}

// ListByField returns the documents whose top-level field equals value.
// json_extract pulls the field out of the stored body; the path is built
// with string concatenation inside SQL so the field name itself stays a
// bound parameter.
func (s *DocumentStore) ListByField(ctx context.Context, collection, field, value string) ([]json.RawMessage, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT body FROM documents
		 WHERE collection = ? AND json_extract(body, '$.' || ?) = ?
		 ORDER BY created_at DESC`,
		collection, field, value,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: filtering %s by %s: %w", collection, field, err)
	}
	defer rows.Close()

	return scanBodies(rows, collection)
}

// Upsert merges fields into the document at (collection, id), inserting it
// when absent. json_patch implements the merge: provided fields overwrite,
// everything else in the stored body survives — the same shape of partial
// update the PUT routes have always exposed.
func (s *DocumentStore) Upsert(ctx context.Context, collection, id string, fields map[string]any) (bool, error) {
	err := s.Update(ctx, collection, id, fields)
	if err == nil {
		return false, nil
	}
	if !isNotFound(err) {
		return false, err
	}

	// Absent — create the document under the caller's id.
	body := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		body[k] = v
	}
	body["id"] = id

	raw, marshalErr := json.Marshal(body)
	if marshalErr != nil {
		return false, fmt.Errorf("sqlite: encoding %s document: %w", collection, marshalErr)
	}

	now := time.Now()
	_, err = s.conn.ExecContext(ctx,
		`INSERT INTO documents (collection, id, body, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)`,
		collection, id, string(raw), now, now,
	)
	if err != nil {
		return false, fmt.Errorf("sqlite: upserting %s/%s: %w", collection, id, err)
	}

	return true, nil
}

// Update merges fields into an existing document; unknown ids are NotFound.
func (s *DocumentStore) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	raw, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("sqlite: encoding %s patch: %w", collection, err)
	}

	result, err := s.conn.ExecContext(ctx,
		`UPDATE documents
		 SET body = json_patch(body, ?), updated_at = ?
		 WHERE collection = ? AND id = ?`,
		string(raw), time.Now(), collection, id,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating %s/%s: %w", collection, id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound(collection, id)
	}

	return nil
}

// Delete removes the document at (collection, id).
func (s *DocumentStore) Delete(ctx context.Context, collection, id string) error {
	result, err := s.conn.ExecContext(ctx,
		`DELETE FROM documents WHERE collection = ? AND id = ?`,
		collection, id,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting %s/%s: %w", collection, id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound(collection, id)
	}

	return nil
}

// scanBodies drains a body-only result set into raw JSON documents.
func scanBodies(rows *sql.Rows, collection string) ([]json.RawMessage, error) {
	docs := []json.RawMessage{}
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("sqlite: scanning %s row: %w", collection, err)
		}
		docs = append(docs, json.RawMessage(body))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating %s: %w", collection, err)
	}
	return docs, nil
}

func isNotFound(err error) bool {
	return errors.Is(err, apperror.ErrNotFound)
}
