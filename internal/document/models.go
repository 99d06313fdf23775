package document

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Status is the publication state of a document. Soft deletion is tracked
// separately through IsDeleted and does not interact with status.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
	StatusArchived  Status = "archived"
)

// Metadata carries descriptive fields that travel with a document.
type Metadata struct {
	Author   string   `json:"author"`
	Tags     []string `json:"tags"`
	Category string   `json:"category,omitempty"`
}

// Document is the versioned document entity. Storage backends map it to
// their own record shapes; this struct stays free of storage concerns.
type Document struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Status    Status    `json:"status"`
	Metadata  Metadata  `json:"metadata"`
	Comments  []string  `json:"comments"`
	Versions  []Version `json:"versions"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	IsDeleted bool      `json:"isDeleted"`
}

// Version is an immutable snapshot of a document's mutable fields, taken
// just before an update was applied.
type Version struct {
	VersionID uuid.UUID `json:"versionId"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Status    Status    `json:"status"`
	Author    string    `json:"author"`
	Tags      []string  `json:"tags"`
	Category  string    `json:"category,omitempty"`
	Comments  []string  `json:"comments"`
	Timestamp time.Time `json:"timestamp"`
}

// ParseID parses a caller-supplied document id. Malformed values are
// reported as ErrInvalid so transports map them to a bad request.
func ParseID(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: malformed document id %q", ErrInvalid, s)
	}
	return id, nil
}

// New assembles a fresh document from validated creation input. Status
// defaults to draft when the input leaves it unset.
func New(in CreateInput, at time.Time) *Document {
	status := StatusDraft
	if in.Status != "" {
		status = Status(in.Status)
	}
	now := at.UTC()
	return &Document{
		ID:      uuid.New(),
		Title:   in.Title,
		Content: in.Content,
		Status:  status,
		Metadata: Metadata{
			Author:   in.Author,
			Tags:     cloneStrings(in.Tags),
			Category: in.Category,
		},
		Comments:  cloneStrings(in.Comments),
		Versions:  []Version{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Snapshot captures the document's current mutable fields as a version
// entry. The snapshot gets its own id and the time it was taken.
func Snapshot(d *Document, at time.Time) Version {
	return Version{
		VersionID: uuid.New(),
		Title:     d.Title,
		Content:   d.Content,
		Status:    d.Status,
		Author:    d.Metadata.Author,
		Tags:      cloneStrings(d.Metadata.Tags),
		Category:  d.Metadata.Category,
		Comments:  cloneStrings(d.Comments),
		Timestamp: at.UTC(),
	}
}

// Revise returns a copy of d with a snapshot of the pre-update state
// appended to the version history and the fields present in the patch
// applied. All storage backends funnel updates through this helper.
func Revise(d *Document, in UpdateInput, at time.Time) *Document {
	next := d.Clone()
	next.Versions = append(next.Versions, Snapshot(d, at))
	if in.Title != nil {
		next.Title = *in.Title
	}
	if in.Content != nil {
		next.Content = *in.Content
	}
	if in.Status != nil {
		next.Status = Status(*in.Status)
	}
	if in.Author != nil {
		next.Metadata.Author = *in.Author
	}
	if in.Tags != nil {
		next.Metadata.Tags = cloneStrings(in.Tags)
	}
	if in.Category != nil {
		next.Metadata.Category = *in.Category
	}
	if in.Comments != nil {
		next.Comments = cloneStrings(in.Comments)
	}
	next.UpdatedAt = at.UTC()
	return next
}

// Clone returns a deep copy. Repositories hand out clones so a caller can
// never mutate shared state through a returned pointer.
func (d *Document) Clone() *Document {
	out := *d
	out.Metadata.Tags = cloneStrings(d.Metadata.Tags)
	out.Comments = cloneStrings(d.Comments)
	if d.Versions != nil {
		out.Versions = make([]Version, len(d.Versions))
		for i, v := range d.Versions {
			v.Tags = cloneStrings(v.Tags)
			v.Comments = cloneStrings(v.Comments)
			out.Versions[i] = v
		}
	}
	return &out
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
