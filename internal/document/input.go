package document

import (
	"errors"
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

var statusValues = []interface{}{
	string(StatusDraft),
	string(StatusPublished),
	string(StatusArchived),
}

// validStatus rejects any supplied status outside the enum. Unlike In it
// does not give empty strings a pass: once a status is present, even "",
// it must name one of the three real states. Nil pointers still pass,
// meaning "leave the status alone".
var validStatus = validation.By(func(value interface{}) error {
	v, isNil := validation.Indirect(value)
	if isNil {
		return nil
	}
	s, _ := v.(string)
	switch Status(s) {
	case StatusDraft, StatusPublished, StatusArchived:
		return nil
	}
	return errors.New("must be one of draft, published or archived")
})

// notBlank rejects strings that are empty or whitespace only. Nil pointers
// pass, so the same rule serves required and optional fields.
var notBlank = validation.By(func(value interface{}) error {
	v, isNil := validation.Indirect(value)
	if isNil {
		return nil
	}
	s, _ := v.(string)
	if strings.TrimSpace(s) == "" {
		return errors.New("cannot be blank")
	}
	return nil
})

// CreateInput is the payload for creating a document. The wire shape is
// flat; author, tags, and category fold into Metadata on the entity.
type CreateInput struct {
	Title    string   `json:"title"`
	Content  string   `json:"content"`
	Status   string   `json:"status,omitempty"`
	Author   string   `json:"author"`
	Tags     []string `json:"tags,omitempty"`
	Category string   `json:"category,omitempty"`
	Comments []string `json:"comments,omitempty"`
}

func (in CreateInput) Validate() error {
	err := validation.ValidateStruct(&in,
		validation.Field(&in.Title, notBlank),
		validation.Field(&in.Content, notBlank),
		validation.Field(&in.Status, validation.In(statusValues...)),
		validation.Field(&in.Author, notBlank, validation.Length(1, 100)),
		validation.Field(&in.Comments, validation.Each(notBlank)),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}

// UpdateInput is a partial patch. Nil fields are left untouched; a nil
// Tags or Comments slice means "not supplied", not "clear".
type UpdateInput struct {
	Title    *string  `json:"title,omitempty"`
	Content  *string  `json:"content,omitempty"`
	Status   *string  `json:"status,omitempty"`
	Author   *string  `json:"author,omitempty"`
	Tags     []string `json:"tags,omitempty"`
	Category *string  `json:"category,omitempty"`
	Comments []string `json:"comments,omitempty"`
}

// HasChanges reports whether the patch touches any field. An empty patch
// is a no-op: no snapshot is taken and the document stays as it is.
func (in UpdateInput) HasChanges() bool {
	return in.Title != nil || in.Content != nil || in.Status != nil ||
		in.Author != nil || in.Tags != nil || in.Category != nil || in.Comments != nil
}

func (in UpdateInput) Validate() error {
	err := validation.ValidateStruct(&in,
		validation.Field(&in.Title, notBlank),
		validation.Field(&in.Content, notBlank),
		validation.Field(&in.Status, validStatus),
		validation.Field(&in.Author, notBlank, validation.Length(1, 100)),
		validation.Field(&in.Comments, validation.Each(notBlank)),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}

// ListParams is a pagination window over live documents.
type ListParams struct {
	Skip  int `json:"skip"`
	Limit int `json:"limit"`
}

// DefaultListParams is the window transports fall back to when the caller
// sends no pagination: the first page of ten.
func DefaultListParams() ListParams {
	return ListParams{Skip: 0, Limit: 10}
}

func (p ListParams) Validate() error {
	err := validation.ValidateStruct(&p,
		validation.Field(&p.Skip, validation.Min(0)),
		validation.Field(&p.Limit, validation.Required, validation.Min(1), validation.Max(100)),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}
