package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/docvault/docvault/internal/document"
	"github.com/docvault/docvault/pkg/logger"
)

// replaceAttempts caps optimistic-lock rounds within a single update.
const replaceAttempts = 3

// MongoRepo stores each document as one record with its version history
// embedded, so snapshot-and-patch lands in a single replace.
type MongoRepo struct {
	col *mongo.Collection
}

func NewMongoRepo(col *mongo.Collection) *MongoRepo {
	// index for listing live documents newest first
	idx := mongo.IndexModel{Keys: bson.D{{Key: "isDeleted", Value: 1}, {Key: "updatedAt", Value: -1}}}
	if _, err := col.Indexes().CreateOne(context.Background(), idx); err != nil {
		logger.Warnf("document index build failed, listings fall back to collection scans: %v", err)
	}
	return &MongoRepo{col: col}
}

// documentRecord is the BSON shape of a document. Conversion between the
// entity and storage happens here and nowhere else.
type documentRecord struct {
	ID        string          `bson:"_id"`
	Title     string          `bson:"title"`
	Content   string          `bson:"content"`
	Status    string          `bson:"status"`
	Metadata  metadataRecord  `bson:"metadata"`
	Comments  []string        `bson:"comments"`
	Versions  []versionRecord `bson:"versions"`
	CreatedAt time.Time       `bson:"createdAt"`
	UpdatedAt time.Time       `bson:"updatedAt"`
	IsDeleted bool            `bson:"isDeleted"`
}

type metadataRecord struct {
	Author   string   `bson:"author"`
	Tags     []string `bson:"tags"`
	Category string   `bson:"category,omitempty"`
}

type versionRecord struct {
	VersionID string    `bson:"versionId"`
	Title     string    `bson:"title"`
	Content   string    `bson:"content"`
	Status    string    `bson:"status"`
	Author    string    `bson:"author"`
	Tags      []string  `bson:"tags"`
	Category  string    `bson:"category,omitempty"`
	Comments  []string  `bson:"comments"`
	Timestamp time.Time `bson:"timestamp"`
}

func newDocumentRecord(d *document.Document) documentRecord {
	versions := make([]versionRecord, 0, len(d.Versions))
	for _, v := range d.Versions {
		versions = append(versions, newVersionRecord(v))
	}
	return documentRecord{
		ID:      d.ID.String(),
		Title:   d.Title,
		Content: d.Content,
		Status:  string(d.Status),
		Metadata: metadataRecord{
			Author:   d.Metadata.Author,
			Tags:     d.Metadata.Tags,
			Category: d.Metadata.Category,
		},
		Comments:  d.Comments,
		Versions:  versions,
		CreatedAt: d.CreatedAt.UTC(),
		UpdatedAt: d.UpdatedAt.UTC(),
		IsDeleted: d.IsDeleted,
	}
}

func newVersionRecord(v document.Version) versionRecord {
	return versionRecord{
		VersionID: v.VersionID.String(),
		Title:     v.Title,
		Content:   v.Content,
		Status:    string(v.Status),
		Author:    v.Author,
		Tags:      v.Tags,
		Category:  v.Category,
		Comments:  v.Comments,
		Timestamp: v.Timestamp.UTC(),
	}
}

func (r documentRecord) toDocument() (*document.Document, error) {
	id, err := uuid.Parse(r.ID)
	if err != nil {
		return nil, fmt.Errorf("document %q: corrupt id: %v", r.ID, err)
	}
	versions := make([]document.Version, 0, len(r.Versions))
	for _, v := range r.Versions {
		dv, err := v.toVersion()
		if err != nil {
			return nil, fmt.Errorf("document %q: %v", r.ID, err)
		}
		versions = append(versions, dv)
	}
	return &document.Document{
		ID:      id,
		Title:   r.Title,
		Content: r.Content,
		Status:  document.Status(r.Status),
		Metadata: document.Metadata{
			Author:   r.Metadata.Author,
			Tags:     r.Metadata.Tags,
			Category: r.Metadata.Category,
		},
		Comments:  r.Comments,
		Versions:  versions,
		CreatedAt: r.CreatedAt.UTC(),
		UpdatedAt: r.UpdatedAt.UTC(),
		IsDeleted: r.IsDeleted,
	}, nil
}

func (r versionRecord) toVersion() (document.Version, error) {
	vid, err := uuid.Parse(r.VersionID)
	if err != nil {
		return document.Version{}, fmt.Errorf("corrupt version id %q: %v", r.VersionID, err)
	}
	return document.Version{
		VersionID: vid,
		Title:     r.Title,
		Content:   r.Content,
		Status:    document.Status(r.Status),
		Author:    r.Author,
		Tags:      r.Tags,
		Category:  r.Category,
		Comments:  r.Comments,
		Timestamp: r.Timestamp.UTC(),
	}, nil
}

func liveFilter(id uuid.UUID) bson.M {
	return bson.M{"_id": id.String(), "isDeleted": false}
}

func (m *MongoRepo) Create(ctx context.Context, doc *document.Document) (*document.Document, error) {
	err := withRetry(ctx, "mongo", "create", func() error {
		_, err := m.col.InsertOne(ctx, newDocumentRecord(doc))
		return err
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

func (m *MongoRepo) GetByID(ctx context.Context, id uuid.UUID) (*document.Document, error) {
	var out *document.Document
	err := withRetry(ctx, "mongo", "get", func() error {
		var rec documentRecord
		if err := m.col.FindOne(ctx, liveFilter(id)).Decode(&rec); err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return document.ErrNotFound
			}
			return err
		}
		doc, err := rec.toDocument()
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

func (m *MongoRepo) Update(ctx context.Context, id uuid.UUID, in document.UpdateInput) (*document.Document, error) {
	var out *document.Document
	err := withRetry(ctx, "mongo", "update", func() error {
		for attempt := 0; attempt < replaceAttempts; attempt++ {
			var rec documentRecord
			if err := m.col.FindOne(ctx, liveFilter(id)).Decode(&rec); err != nil {
				if errors.Is(err, mongo.ErrNoDocuments) {
					return document.ErrNotFound
				}
				return err
			}
			cur, err := rec.toDocument()
			if err != nil {
				return err
			}
			if !in.HasChanges() {
				out = cur
				return nil
			}
			next := document.Revise(cur, in, time.Now())
			// the updatedAt and version-count guards make the replace a
			// compare-and-swap: it only lands if nobody touched the record
			// since the read. The count catches writes that share a
			// millisecond with the state they replaced.
			res, err := m.col.ReplaceOne(ctx,
				bson.M{
					"_id":       rec.ID,
					"isDeleted": false,
					"updatedAt": rec.UpdatedAt,
					"versions":  bson.M{"$size": len(rec.Versions)},
				},
				newDocumentRecord(next))
			if err != nil {
				return err
			}
			if res.MatchedCount == 1 {
				out = next
				return nil
			}
		}
		return errors.New("update contention budget exhausted")
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (m *MongoRepo) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	deleted := false
	err := withRetry(ctx, "mongo", "delete", func() error {
		res, err := m.col.UpdateOne(ctx, liveFilter(id),
			bson.M{"$set": bson.M{"isDeleted": true, "updatedAt": time.Now().UTC()}})
		if err != nil {
			return err
		}
		deleted = res.MatchedCount == 1
		return nil
	})
	if err != nil {
		return false, err
	}
	return deleted, nil
}

func (m *MongoRepo) Restore(ctx context.Context, id uuid.UUID) (*document.Document, error) {
	var out *document.Document
	err := withRetry(ctx, "mongo", "restore", func() error {
		filter := bson.M{"_id": id.String(), "isDeleted": true}
		update := bson.M{"$set": bson.M{"isDeleted": false, "updatedAt": time.Now().UTC()}}
		opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
		var rec documentRecord
		if err := m.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&rec); err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return document.ErrNotFound
			}
			return err
		}
		doc, err := rec.toDocument()
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

func (m *MongoRepo) List(ctx context.Context, skip, limit int) ([]*document.Document, error) {
	var out []*document.Document
	err := withRetry(ctx, "mongo", "list", func() error {
		opts := options.Find().
			SetSort(bson.D{{Key: "updatedAt", Value: -1}, {Key: "_id", Value: -1}}).
			SetSkip(int64(skip)).
			SetLimit(int64(limit))
		cur, err := m.col.Find(ctx, bson.M{"isDeleted": false}, opts)
		if err != nil {
			return err
		}
		defer cur.Close(ctx)
		docs := []*document.Document{}
		for cur.Next(ctx) {
			var rec documentRecord
			if err := cur.Decode(&rec); err != nil {
				return err
			}
			doc, err := rec.toDocument()
			if err != nil {
				return err
			}
			docs = append(docs, doc)
		}
		if err := cur.Err(); err != nil {
			return err
		}
		out = docs
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (m *MongoRepo) GetVersions(ctx context.Context, id uuid.UUID) ([]document.Version, error) {
	var out []document.Version
	err := withRetry(ctx, "mongo", "versions", func() error {
		opts := options.FindOne().SetProjection(bson.M{"versions": 1})
		var rec documentRecord
		if err := m.col.FindOne(ctx, liveFilter(id), opts).Decode(&rec); err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return document.ErrNotFound
			}
			return err
		}
		versions := make([]document.Version, 0, len(rec.Versions))
		for _, v := range rec.Versions {
			dv, err := v.toVersion()
			if err != nil {
				return err
			}
			versions = append(versions, dv)
		}
		out = versions
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
