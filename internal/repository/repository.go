// Package repository declares the storage interfaces the rest of the
// application programs against. The concrete implementation lives in the
// sqlite subpackage; services and middleware only ever see these interfaces,
// which is what makes them testable with in-memory fakes.
package repository

import (
	"context"
	"encoding/json"

	"github.com/hasan-mia/manufacturer-server/internal/model"
)

// UserRepository stores identities keyed by email. There is exactly one
// record per email: Upsert either creates it or refreshes its profile.
type UserRepository interface {
	// Upsert writes the profile fields of the user keyed by Email,
	// inserting the record if absent. It never touches the role. The
	// returned result reports whether a record was created.
	Upsert(ctx context.Context, user *model.User) (model.UpsertResult, error)

	// GetByEmail returns the identity or apperror.ErrNotFound.
	GetByEmail(ctx context.Context, email string) (*model.User, error)

	// List returns all identities, newest first.
	List(ctx context.Context) ([]model.User, error)

	// SetRole updates the role of an existing identity. Unknown emails
	// are apperror.ErrNotFound — promotion does not create records.
	SetRole(ctx context.Context, email, role string) error

	// Delete removes the identity. Unknown emails are apperror.ErrNotFound.
	Delete(ctx context.Context, email string) error
}

// DocumentRepository is the filter-based store behind every non-user
// resource: schemaless JSON documents grouped into named collections.
// Every operation is atomic per document; there are no cross-collection
// transactions, and concurrent writers race with last-write-wins.
type DocumentRepository interface {
	// Insert stores a new document and returns its generated id. The
	// stored body always contains the id under the "id" field.
	Insert(ctx context.Context, collection string, fields map[string]any) (string, error)

	// Get returns the document body or apperror.ErrNotFound.
	Get(ctx context.Context, collection, id string) (json.RawMessage, error)

	// List returns every document in the collection, newest first.
	List(ctx context.Context, collection string) ([]json.RawMessage, error)

	// ListByField returns the documents whose top-level field equals value.
	ListByField(ctx context.Context, collection, field, value string) ([]json.RawMessage, error)

	// Upsert merges fields into the document, creating it when absent.
	// Fields not present in the merge survive untouched. Reports whether
	// the document was created.
	Upsert(ctx context.Context, collection, id string, fields map[string]any) (bool, error)

	// Update merges fields into an existing document; unknown ids are
	// apperror.ErrNotFound.
	Update(ctx context.Context, collection, id string, fields map[string]any) error

	// Delete removes the document; unknown ids are apperror.ErrNotFound.
	Delete(ctx context.Context, collection, id string) error
}
