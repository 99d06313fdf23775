// Package repository defines the storage port for versioned documents and
// its MongoDB, PostgreSQL, and in-memory implementations.
//
// All implementations honor the same contract: soft-deleted documents are
// invisible to every operation, updates snapshot the prior state into the
// version history atomically, and listings come back newest-updated first.
package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/docvault/docvault/internal/document"
)

// Repository is the persistence port for versioned documents.
//
// Lookups that miss, and any operation aimed at a soft-deleted document,
// return document.ErrNotFound (Delete reports the same condition through
// its bool instead). Transient backend failures surface as
// document.ErrUnavailable once the retry budget is spent; backend error
// types never cross this boundary.
type Repository interface {
	// Create persists a brand-new document under doc.ID.
	Create(ctx context.Context, doc *document.Document) (*document.Document, error)

	// GetByID returns the live document with the given id.
	GetByID(ctx context.Context, id uuid.UUID) (*document.Document, error)

	// Update appends a snapshot of the current state to the version
	// history and applies the patch, both as one atomic step. An empty
	// patch returns the document unchanged with no snapshot taken.
	Update(ctx context.Context, id uuid.UUID, in document.UpdateInput) (*document.Document, error)

	// Delete soft-deletes a live document. It reports false when the
	// document is absent or already deleted.
	Delete(ctx context.Context, id uuid.UUID) (bool, error)

	// Restore brings a soft-deleted document back and returns it.
	Restore(ctx context.Context, id uuid.UUID) (*document.Document, error)

	// List returns live documents ordered by most recent update. The
	// window starts after skip documents and holds at most limit.
	List(ctx context.Context, skip, limit int) ([]*document.Document, error)

	// GetVersions returns the document's version history, oldest first.
	GetVersions(ctx context.Context, id uuid.UUID) ([]document.Version, error)
}
