// Package service wires the document repository and cache together and
// owns the coherence protocol between them.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/docvault/docvault/internal/document"
	"github.com/docvault/docvault/internal/document/repository"
	"github.com/docvault/docvault/pkg/logger"
	"github.com/docvault/docvault/pkg/metrics"
)

// Cache is the slice of the cache layer the service drives. It is
// fire-and-forget by contract: implementations swallow their own errors,
// so a degraded cache never fails a request.
type Cache interface {
	GetDocument(ctx context.Context, id uuid.UUID) (*document.Document, bool)
	SetDocument(ctx context.Context, d *document.Document)
	InvalidateDocument(ctx context.Context, id uuid.UUID)
	GetVersions(ctx context.Context, id uuid.UUID) ([]document.Version, bool)
	SetVersions(ctx context.Context, id uuid.UUID, versions []document.Version)
	InvalidateVersions(ctx context.Context, id uuid.UUID)
	GetList(ctx context.Context, skip, limit int) ([]*document.Document, bool)
	SetList(ctx context.Context, docs []*document.Document, skip, limit int)
	InvalidateLists(ctx context.Context)
}

// Service is the transport-facing API for documents. Ids arrive as raw
// strings and are validated here, so transports stay dumb.
type Service interface {
	Create(ctx context.Context, in document.CreateInput) (*document.Document, error)
	Get(ctx context.Context, id string) (*document.Document, error)
	Update(ctx context.Context, id string, in document.UpdateInput) (*document.Document, error)
	Delete(ctx context.Context, id string) error
	Restore(ctx context.Context, id string) (*document.Document, error)
	List(ctx context.Context, params document.ListParams) ([]*document.Document, error)
	Versions(ctx context.Context, id string) ([]document.Version, error)
	Version(ctx context.Context, id, versionID string) (*document.Version, error)
}

// New builds the document service on top of a repository and a cache.
func New(repo repository.Repository, cache Cache) Service {
	return &documentService{repo: repo, cache: cache}
}

type documentService struct {
	repo  repository.Repository
	cache Cache
}

func (s *documentService) Create(ctx context.Context, in document.CreateInput) (doc *document.Document, err error) {
	defer func() { s.observe("create", err) }()
	if err = in.Validate(); err != nil {
		return nil, err
	}
	doc = document.New(in, time.Now())
	if doc, err = s.repo.Create(ctx, doc); err != nil {
		return nil, err
	}
	logger.Infof("created document %s (%q by %s)", doc.ID, doc.Title, doc.Metadata.Author)
	s.cache.SetDocument(ctx, doc)
	s.cache.SetVersions(ctx, doc.ID, doc.Versions)
	s.cache.InvalidateLists(ctx)
	return doc, nil
}

func (s *documentService) Get(ctx context.Context, id string) (doc *document.Document, err error) {
	defer func() { s.observe("get", err) }()
	docID, err := document.ParseID(id)
	if err != nil {
		return nil, err
	}
	if cached, ok := s.cache.GetDocument(ctx, docID); ok {
		return cached, nil
	}
	if doc, err = s.repo.GetByID(ctx, docID); err != nil {
		return nil, err
	}
	s.cache.SetDocument(ctx, doc)
	return doc, nil
}

func (s *documentService) Update(ctx context.Context, id string, in document.UpdateInput) (doc *document.Document, err error) {
	defer func() { s.observe("update", err) }()
	docID, err := document.ParseID(id)
	if err != nil {
		return nil, err
	}
	if err = in.Validate(); err != nil {
		return nil, err
	}
	// existence check goes to the repository, never the cache
	if _, err = s.repo.GetByID(ctx, docID); err != nil {
		return nil, err
	}
	if doc, err = s.repo.Update(ctx, docID, in); err != nil {
		return nil, err
	}
	logger.Debugf("updated document %s, history now %d deep", doc.ID, len(doc.Versions))
	s.cache.SetDocument(ctx, doc)
	s.cache.SetVersions(ctx, doc.ID, doc.Versions)
	s.cache.InvalidateLists(ctx)
	return doc, nil
}

func (s *documentService) Delete(ctx context.Context, id string) (err error) {
	defer func() { s.observe("delete", err) }()
	docID, err := document.ParseID(id)
	if err != nil {
		return err
	}
	deleted, err := s.repo.Delete(ctx, docID)
	if err != nil {
		return err
	}
	if !deleted {
		return fmt.Errorf("%w: %s", document.ErrNotFound, docID)
	}
	logger.Infof("soft-deleted document %s", docID)
	s.cache.InvalidateDocument(ctx, docID)
	s.cache.InvalidateVersions(ctx, docID)
	s.cache.InvalidateLists(ctx)
	return nil
}

func (s *documentService) Restore(ctx context.Context, id string) (doc *document.Document, err error) {
	defer func() { s.observe("restore", err) }()
	docID, err := document.ParseID(id)
	if err != nil {
		return nil, err
	}
	if doc, err = s.repo.Restore(ctx, docID); err != nil {
		return nil, err
	}
	logger.Infof("restored document %s", docID)
	s.cache.SetDocument(ctx, doc)
	s.cache.SetVersions(ctx, doc.ID, doc.Versions)
	s.cache.InvalidateLists(ctx)
	return doc, nil
}

func (s *documentService) List(ctx context.Context, params document.ListParams) (docs []*document.Document, err error) {
	defer func() { s.observe("list", err) }()
	if err = params.Validate(); err != nil {
		return nil, err
	}
	if cached, ok := s.cache.GetList(ctx, params.Skip, params.Limit); ok {
		return cached, nil
	}
	if docs, err = s.repo.List(ctx, params.Skip, params.Limit); err != nil {
		return nil, err
	}
	s.cache.SetList(ctx, docs, params.Skip, params.Limit)
	return docs, nil
}

func (s *documentService) Versions(ctx context.Context, id string) (versions []document.Version, err error) {
	defer func() { s.observe("versions", err) }()
	docID, err := document.ParseID(id)
	if err != nil {
		return nil, err
	}
	return s.versionHistory(ctx, docID)
}

func (s *documentService) Version(ctx context.Context, id, versionID string) (v *document.Version, err error) {
	defer func() { s.observe("version", err) }()
	docID, err := document.ParseID(id)
	if err != nil {
		return nil, err
	}
	vid, err := uuid.Parse(versionID)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed version id %q", document.ErrInvalid, versionID)
	}
	versions, err := s.versionHistory(ctx, docID)
	if err != nil {
		return nil, err
	}
	for i := range versions {
		if versions[i].VersionID == vid {
			found := versions[i]
			return &found, nil
		}
	}
	return nil, fmt.Errorf("%w: version %s", document.ErrNotFound, vid)
}

func (s *documentService) versionHistory(ctx context.Context, docID uuid.UUID) ([]document.Version, error) {
	if cached, ok := s.cache.GetVersions(ctx, docID); ok {
		return cached, nil
	}
	versions, err := s.repo.GetVersions(ctx, docID)
	if err != nil {
		return nil, err
	}
	s.cache.SetVersions(ctx, docID, versions)
	return versions, nil
}

func (s *documentService) observe(op string, err error) {
	outcome := "ok"
	switch {
	case err == nil:
	case errors.Is(err, document.ErrInvalid):
		outcome = "invalid"
	case errors.Is(err, document.ErrNotFound):
		outcome = "not_found"
	default:
		outcome = "error"
	}
	metrics.DocumentOps.WithLabelValues(op, outcome).Inc()
}
