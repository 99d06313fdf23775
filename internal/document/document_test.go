package document

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateInputValidate(t *testing.T) {
	valid := CreateInput{Title: "Q3 report", Content: "first draft", Author: "alice"}
	require.NoError(t, valid.Validate())

	withStatus := valid
	withStatus.Status = "published"
	require.NoError(t, withStatus.Validate())

	cases := []struct {
		name string
		in   CreateInput
	}{
		{"missing title", CreateInput{Content: "body", Author: "alice"}},
		{"whitespace title", CreateInput{Title: "   ", Content: "body", Author: "alice"}},
		{"missing content", CreateInput{Title: "t", Author: "alice"}},
		{"whitespace content", CreateInput{Title: "t", Content: " \t ", Author: "alice"}},
		{"missing author", CreateInput{Title: "t", Content: "body"}},
		{"unknown status", CreateInput{Title: "t", Content: "body", Author: "alice", Status: "retired"}},
		{"author too long", CreateInput{Title: "t", Content: "body", Author: strings.Repeat("a", 101)}},
		{"blank comment", CreateInput{Title: "t", Content: "body", Author: "alice", Comments: []string{"fine", "  "}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.in.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalid)
		})
	}
}

func TestUpdateInputValidate(t *testing.T) {
	require.NoError(t, UpdateInput{}.Validate(), "empty patch is valid")

	title := "new title"
	require.NoError(t, UpdateInput{Title: &title}.Validate())

	blank := "   "
	assert.ErrorIs(t, UpdateInput{Title: &blank}.Validate(), ErrInvalid)
	assert.ErrorIs(t, UpdateInput{Content: &blank}.Validate(), ErrInvalid)
	assert.ErrorIs(t, UpdateInput{Author: &blank}.Validate(), ErrInvalid)

	bogus := "retired"
	assert.ErrorIs(t, UpdateInput{Status: &bogus}.Validate(), ErrInvalid)

	empty := ""
	assert.ErrorIs(t, UpdateInput{Status: &empty}.Validate(), ErrInvalid,
		"a supplied status must name a real state, empty included")

	long := strings.Repeat("a", 101)
	assert.ErrorIs(t, UpdateInput{Author: &long}.Validate(), ErrInvalid)

	assert.ErrorIs(t, UpdateInput{Comments: []string{""}}.Validate(), ErrInvalid)
}

func TestUpdateInputHasChanges(t *testing.T) {
	assert.False(t, UpdateInput{}.HasChanges())

	title := "t"
	assert.True(t, UpdateInput{Title: &title}.HasChanges())
	assert.True(t, UpdateInput{Tags: []string{}}.HasChanges(), "empty slice clears tags, so it counts")
}

func TestListParamsValidate(t *testing.T) {
	require.NoError(t, DefaultListParams().Validate())
	require.NoError(t, ListParams{Skip: 40, Limit: 100}.Validate())

	assert.ErrorIs(t, ListParams{Skip: -1, Limit: 10}.Validate(), ErrInvalid)
	assert.ErrorIs(t, ListParams{Skip: 0, Limit: 0}.Validate(), ErrInvalid)
	assert.ErrorIs(t, ListParams{Skip: 0, Limit: -5}.Validate(), ErrInvalid)
	assert.ErrorIs(t, ListParams{Skip: 0, Limit: 101}.Validate(), ErrInvalid)
}

func TestParseID(t *testing.T) {
	id := uuid.New()
	got, err := ParseID(id.String())
	require.NoError(t, err)
	assert.Equal(t, id, got)

	_, err = ParseID("not-a-uuid")
	assert.ErrorIs(t, err, ErrInvalid)

	_, err = ParseID("")
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestNewDefaults(t *testing.T) {
	now := time.Now()
	doc := New(CreateInput{Title: "notes", Content: "body", Author: "bob"}, now)

	assert.NotEqual(t, uuid.Nil, doc.ID)
	assert.Equal(t, StatusDraft, doc.Status)
	assert.Equal(t, "bob", doc.Metadata.Author)
	assert.NotNil(t, doc.Versions)
	assert.Empty(t, doc.Versions)
	assert.False(t, doc.IsDeleted)
	assert.Equal(t, doc.CreatedAt, doc.UpdatedAt)
	assert.Equal(t, time.UTC, doc.CreatedAt.Location())
}

func TestReviseSnapshotsPriorState(t *testing.T) {
	created := time.Now()
	doc := New(CreateInput{
		Title:   "spec",
		Content: "v1",
		Author:  "alice",
		Tags:    []string{"infra"},
	}, created)

	title := "spec (edited)"
	next := Revise(doc, UpdateInput{Title: &title}, created.Add(time.Minute))

	require.Len(t, next.Versions, 1)
	snap := next.Versions[0]
	assert.NotEqual(t, uuid.Nil, snap.VersionID)
	assert.Equal(t, "spec", snap.Title, "snapshot holds the pre-update title")
	assert.Equal(t, "v1", snap.Content)
	assert.Equal(t, StatusDraft, snap.Status)
	assert.Equal(t, "alice", snap.Author)
	assert.Equal(t, []string{"infra"}, snap.Tags)

	assert.Equal(t, "spec (edited)", next.Title)
	assert.Equal(t, "v1", next.Content, "untouched fields survive the patch")
	assert.True(t, next.UpdatedAt.After(doc.UpdatedAt))

	// source document is never mutated
	assert.Empty(t, doc.Versions)
	assert.Equal(t, "spec", doc.Title)
}

func TestReviseAppliesPartialPatch(t *testing.T) {
	now := time.Now()
	doc := New(CreateInput{
		Title:    "roadmap",
		Content:  "q1 goals",
		Author:   "alice",
		Tags:     []string{"plan"},
		Category: "planning",
	}, now)

	status := "published"
	next := Revise(doc, UpdateInput{Status: &status, Tags: []string{"plan", "final"}}, now.Add(time.Second))

	assert.Equal(t, StatusPublished, next.Status)
	assert.Equal(t, []string{"plan", "final"}, next.Metadata.Tags)
	assert.Equal(t, "alice", next.Metadata.Author)
	assert.Equal(t, "planning", next.Metadata.Category)

	require.Len(t, next.Versions, 1)
	assert.Equal(t, StatusDraft, next.Versions[0].Status)
	assert.Equal(t, []string{"plan"}, next.Versions[0].Tags)
}

func TestReviseStacksVersionsOldestFirst(t *testing.T) {
	now := time.Now()
	doc := New(CreateInput{Title: "a", Content: "c1", Author: "bob"}, now)

	c2, c3 := "c2", "c3"
	doc = Revise(doc, UpdateInput{Content: &c2}, now.Add(time.Second))
	doc = Revise(doc, UpdateInput{Content: &c3}, now.Add(2*time.Second))

	require.Len(t, doc.Versions, 2)
	assert.Equal(t, "c1", doc.Versions[0].Content)
	assert.Equal(t, "c2", doc.Versions[1].Content)
	assert.NotEqual(t, doc.Versions[0].VersionID, doc.Versions[1].VersionID)
	assert.Equal(t, "c3", doc.Content)
}

func TestCloneIsolatesSlices(t *testing.T) {
	now := time.Now()
	doc := New(CreateInput{
		Title:    "t",
		Content:  "c",
		Author:   "alice",
		Tags:     []string{"x"},
		Comments: []string{"first"},
	}, now)
	body := "c2"
	doc = Revise(doc, UpdateInput{Content: &body}, now.Add(time.Second))

	clone := doc.Clone()
	clone.Metadata.Tags[0] = "mutated"
	clone.Comments[0] = "mutated"
	clone.Versions[0].Tags[0] = "mutated"

	assert.Equal(t, "x", doc.Metadata.Tags[0])
	assert.Equal(t, "first", doc.Comments[0])
	assert.Equal(t, "x", doc.Versions[0].Tags[0])
}
