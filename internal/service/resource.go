package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hasan-mia/manufacturer-server/internal/apperror"
	"github.com/hasan-mia/manufacturer-server/internal/model"
	"github.com/hasan-mia/manufacturer-server/internal/repository"
)

// isNotFound reports whether err is (or wraps) the NotFound sentinel.
func isNotFound(err error) bool {
	return errors.Is(err, apperror.ErrNotFound)
}

// ResourceService is the business logic for one document-backed CRUD
// family. One instance is constructed per resource (products, blogs, ...)
// with that resource's collection and update whitelist; every instance
// shares the same repository.
type ResourceService struct {
	docs     repository.DocumentRepository
	resource model.Resource
	logger   *slog.Logger
}

// NewResourceService creates the service for one resource family.
func NewResourceService(docs repository.DocumentRepository, resource model.Resource, logger *slog.Logger) *ResourceService {
	return &ResourceService{
		docs:     docs,
		resource: resource,
		logger:   logger,
	}
}

// Resource returns the resource description this service serves.
func (s *ResourceService) Resource() model.Resource {
	return s.resource
}

// Create stores a new document and returns it as stored (id included).
func (s *ResourceService) Create(ctx context.Context, fields map[string]any) (json.RawMessage, error) {
	if len(fields) == 0 {
		return nil, apperror.ValidationFailed("body", s.resource.Name+" body is required")
	}
	// The id is always server-generated; a client-supplied one is ignored.
	delete(fields, "id")

	id, err := s.docs.Insert(ctx, s.resource.Collection, fields)
	if err != nil {
		s.logger.Error("failed to create "+s.resource.Name, slog.String("error", err.Error()))
		return nil, fmt.Errorf("creating %s: %w", s.resource.Name, err)
	}

	s.logger.Info(s.resource.Name+" created", slog.String("id", id))

	return s.docs.Get(ctx, s.resource.Collection, id)
}

// List returns every document in the family's collection.
func (s *ResourceService) List(ctx context.Context) ([]json.RawMessage, error) {
	docs, err := s.docs.List(ctx, s.resource.Collection)
	if err != nil {
		s.logger.Error("failed to list "+s.resource.Plural, slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing %s: %w", s.resource.Plural, err)
	}
	return docs, nil
}

// ListByOwner returns the documents whose email field matches.
func (s *ResourceService) ListByOwner(ctx context.Context, email string) ([]json.RawMessage, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, apperror.ValidationFailed("email", "email is required")
	}

	docs, err := s.docs.ListByField(ctx, s.resource.Collection, "email", email)
	if err != nil {
		return nil, fmt.Errorf("listing %s for %s: %w", s.resource.Plural, email, err)
	}
	return docs, nil
}

// Get returns one document or apperror.ErrNotFound.
func (s *ResourceService) Get(ctx context.Context, id string) (json.RawMessage, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", s.resource.Name+" id is required")
	}
	return s.docs.Get(ctx, s.resource.Collection, id)
}

// Update merges the whitelisted fields into the document at id, creating it
// when absent (upsert). Fields outside the whitelist are dropped from the
// patch, so an update can never flip payment state or rewrite the id.
// Returns the document as stored after the merge.
func (s *ResourceService) Update(ctx context.Context, id string, fields map[string]any) (json.RawMessage, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", s.resource.Name+" id is required")
	}

	patch := make(map[string]any, len(s.resource.UpdateFields))
	for _, field := range s.resource.UpdateFields {
		if v, ok := fields[field]; ok {
			patch[field] = v
		}
	}
	if len(patch) == 0 {
		return nil, apperror.ValidationFailed("body",
			fmt.Sprintf("%s update must set at least one of: %s",
				s.resource.Name, strings.Join(s.resource.UpdateFields, ", ")))
	}

	created, err := s.docs.Upsert(ctx, s.resource.Collection, id, patch)
	if err != nil {
		s.logger.Error("failed to update "+s.resource.Name,
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("updating %s %s: %w", s.resource.Name, id, err)
	}

	s.logger.Info(s.resource.Name+" updated",
		slog.String("id", id),
		slog.Bool("created", created),
	)

	return s.docs.Get(ctx, s.resource.Collection, id)
}

// Delete removes one document.
func (s *ResourceService) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return apperror.ValidationFailed("id", s.resource.Name+" id is required")
	}

	if err := s.docs.Delete(ctx, s.resource.Collection, id); err != nil {
		return err
	}

	s.logger.Info(s.resource.Name+" deleted", slog.String("id", id))
	return nil
}
