package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/docvault/docvault/internal/document"
)

// PostgresRepo keeps documents and their version history in separate
// tables. Snapshot-and-patch runs in one transaction with the document
// row locked, which gives the same atomicity the embedded Mongo layout
// gets from a single replace.
type PostgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresRepo(pool *pgxpool.Pool) *PostgresRepo {
	return &PostgresRepo{pool: pool}
}

const schemaDDL = `
CREATE TABLE IF NOT EXISTS documents (
	id         UUID PRIMARY KEY,
	title      TEXT NOT NULL,
	content    TEXT NOT NULL,
	status     TEXT NOT NULL,
	author     TEXT NOT NULL,
	tags       TEXT[],
	category   TEXT,
	comments   TEXT[],
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL,
	is_deleted BOOLEAN NOT NULL DEFAULT FALSE
);

CREATE TABLE IF NOT EXISTS document_versions (
	seq         BIGSERIAL PRIMARY KEY,
	version_id  UUID NOT NULL UNIQUE,
	document_id UUID NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
	title       TEXT NOT NULL,
	content     TEXT NOT NULL,
	status      TEXT NOT NULL,
	author      TEXT NOT NULL,
	tags        TEXT[],
	category    TEXT,
	comments    TEXT[],
	created_at  TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS documents_live_recency_idx
	ON documents (updated_at DESC) WHERE NOT is_deleted;
CREATE INDEX IF NOT EXISTS document_versions_document_idx
	ON document_versions (document_id, seq);
`

// EnsureSchema creates the tables and indexes if they are missing. Safe
// to run on every startup.
func (p *PostgresRepo) EnsureSchema(ctx context.Context) error {
	if _, err := p.pool.Exec(ctx, schemaDDL); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// querier is the subset of pgx shared by *pgxpool.Pool and pgx.Tx, so the
// same loaders run inside and outside transactions.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const documentColumns = `id, title, content, status, author, tags, category, comments, created_at, updated_at, is_deleted`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocumentRow(row rowScanner) (*document.Document, error) {
	var (
		d        document.Document
		status   string
		category *string
	)
	err := row.Scan(&d.ID, &d.Title, &d.Content, &status, &d.Metadata.Author,
		&d.Metadata.Tags, &category, &d.Comments, &d.CreatedAt, &d.UpdatedAt, &d.IsDeleted)
	if err != nil {
		return nil, err
	}
	d.Status = document.Status(status)
	if category != nil {
		d.Metadata.Category = *category
	}
	d.CreatedAt = d.CreatedAt.UTC()
	d.UpdatedAt = d.UpdatedAt.UTC()
	d.Versions = []document.Version{}
	return &d, nil
}

func nullStr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func (p *PostgresRepo) Create(ctx context.Context, doc *document.Document) (*document.Document, error) {
	err := withRetry(ctx, "postgres", "create", func() error {
		_, err := p.pool.Exec(ctx,
			`INSERT INTO documents (id, title, content, status, author, tags, category, comments, created_at, updated_at, is_deleted)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
			doc.ID, doc.Title, doc.Content, string(doc.Status), doc.Metadata.Author,
			doc.Metadata.Tags, nullStr(doc.Metadata.Category), doc.Comments,
			doc.CreatedAt, doc.UpdatedAt, doc.IsDeleted)
		return err
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

func (p *PostgresRepo) GetByID(ctx context.Context, id uuid.UUID) (*document.Document, error) {
	var out *document.Document
	err := withRetry(ctx, "postgres", "get", func() error {
		row := p.pool.QueryRow(ctx,
			`SELECT `+documentColumns+` FROM documents WHERE id = $1 AND NOT is_deleted`, id)
		doc, err := scanDocumentRow(row)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return document.ErrNotFound
			}
			return err
		}
		doc.Versions, err = p.loadVersions(ctx, p.pool, id)
		if err != nil {
			return err
		}
		out = doc
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (p *PostgresRepo) Update(ctx context.Context, id uuid.UUID, in document.UpdateInput) (*document.Document, error) {
	var out *document.Document
	err := withRetry(ctx, "postgres", "update", func() error {
		tx, err := p.pool.Begin(ctx)
		if err != nil {
			return err
		}
		defer tx.Rollback(ctx)

		row := tx.QueryRow(ctx,
			`SELECT `+documentColumns+` FROM documents WHERE id = $1 AND NOT is_deleted FOR UPDATE`, id)
		cur, err := scanDocumentRow(row)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return document.ErrNotFound
			}
			return err
		}
		cur.Versions, err = p.loadVersions(ctx, tx, id)
		if err != nil {
			return err
		}
		if !in.HasChanges() {
			out = cur
			return nil
		}

		next := document.Revise(cur, in, time.Now())
		snap := next.Versions[len(next.Versions)-1]
		_, err = tx.Exec(ctx,
			`INSERT INTO document_versions (version_id, document_id, title, content, status, author, tags, category, comments, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			snap.VersionID, id, snap.Title, snap.Content, string(snap.Status), snap.Author,
			snap.Tags, nullStr(snap.Category), snap.Comments, snap.Timestamp)
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctx,
			`UPDATE documents SET title = $2, content = $3, status = $4, author = $5, tags = $6, category = $7, comments = $8, updated_at = $9
			 WHERE id = $1`,
			id, next.Title, next.Content, string(next.Status), next.Metadata.Author,
			next.Metadata.Tags, nullStr(next.Metadata.Category), next.Comments, next.UpdatedAt)
		if err != nil {
			return err
		}
		if err := tx.Commit(ctx); err != nil {
			return err
		}
		out = next
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (p *PostgresRepo) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	deleted := false
	err := withRetry(ctx, "postgres", "delete", func() error {
		tag, err := p.pool.Exec(ctx,
			`UPDATE documents SET is_deleted = TRUE, updated_at = $2 WHERE id = $1 AND NOT is_deleted`,
			id, time.Now().UTC())
		if err != nil {
			return err
		}
		deleted = tag.RowsAffected() == 1
		return nil
	})
	if err != nil {
		return false, err
	}
	return deleted, nil
}

func (p *PostgresRepo) Restore(ctx context.Context, id uuid.UUID) (*document.Document, error) {
	var out *document.Document
	err := withRetry(ctx, "postgres", "restore", func() error {
		row := p.pool.QueryRow(ctx,
			`UPDATE documents SET is_deleted = FALSE, updated_at = $2 WHERE id = $1 AND is_deleted RETURNING `+documentColumns,
			id, time.Now().UTC())
		doc, err := scanDocumentRow(row)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return document.ErrNotFound
			}
			return err
		}
		doc.Versions, err = p.loadVersions(ctx, p.pool, id)
		if err != nil {
			return err
		}
		out = doc
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (p *PostgresRepo) List(ctx context.Context, skip, limit int) ([]*document.Document, error) {
	var out []*document.Document
	err := withRetry(ctx, "postgres", "list", func() error {
		rows, err := p.pool.Query(ctx,
			`SELECT `+documentColumns+` FROM documents WHERE NOT is_deleted
			 ORDER BY updated_at DESC, id DESC OFFSET $1 LIMIT $2`, skip, limit)
		if err != nil {
			return err
		}
		defer rows.Close()

		docs := []*document.Document{}
		ids := []uuid.UUID{}
		for rows.Next() {
			doc, err := scanDocumentRow(rows)
			if err != nil {
				return err
			}
			docs = append(docs, doc)
			ids = append(ids, doc.ID)
		}
		if err := rows.Err(); err != nil {
			return err
		}

		byDoc, err := p.versionsByDocument(ctx, p.pool, ids)
		if err != nil {
			return err
		}
		for _, doc := range docs {
			if vs, ok := byDoc[doc.ID]; ok {
				doc.Versions = vs
			}
		}
		out = docs
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (p *PostgresRepo) GetVersions(ctx context.Context, id uuid.UUID) ([]document.Version, error) {
	var out []document.Version
	err := withRetry(ctx, "postgres", "versions", func() error {
		var found uuid.UUID
		err := p.pool.QueryRow(ctx,
			`SELECT id FROM documents WHERE id = $1 AND NOT is_deleted`, id).Scan(&found)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return document.ErrNotFound
			}
			return err
		}
		versions, err := p.loadVersions(ctx, p.pool, id)
		if err != nil {
			return err
		}
		out = versions
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (p *PostgresRepo) loadVersions(ctx context.Context, q querier, id uuid.UUID) ([]document.Version, error) {
	byDoc, err := p.versionsByDocument(ctx, q, []uuid.UUID{id})
	if err != nil {
		return nil, err
	}
	if vs, ok := byDoc[id]; ok {
		return vs, nil
	}
	return []document.Version{}, nil
}

func (p *PostgresRepo) versionsByDocument(ctx context.Context, q querier, ids []uuid.UUID) (map[uuid.UUID][]document.Version, error) {
	byDoc := make(map[uuid.UUID][]document.Version, len(ids))
	if len(ids) == 0 {
		return byDoc, nil
	}
	rows, err := q.Query(ctx,
		`SELECT document_id, version_id, title, content, status, author, tags, category, comments, created_at
		 FROM document_versions WHERE document_id = ANY($1) ORDER BY document_id, seq`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			docID    uuid.UUID
			v        document.Version
			status   string
			category *string
		)
		err := rows.Scan(&docID, &v.VersionID, &v.Title, &v.Content, &status, &v.Author,
			&v.Tags, &category, &v.Comments, &v.Timestamp)
		if err != nil {
			return nil, err
		}
		v.Status = document.Status(status)
		if category != nil {
			v.Category = *category
		}
		v.Timestamp = v.Timestamp.UTC()
		byDoc[docID] = append(byDoc[docID], v)
	}
	return byDoc, rows.Err()
}
