package entities

import (
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/pranavrajput12/PRSNL-sub011/pkg/errors"
)

// ContentType is the kind of captured content an entity represents.
type ContentType string

const (
	ContentTypeArticle  ContentType = "article"
	ContentTypeVideo    ContentType = "video"
	ContentTypeCode     ContentType = "code"
	ContentTypeRecipe   ContentType = "recipe"
	ContentTypeBookmark ContentType = "bookmark"
	ContentTypeDocument ContentType = "document"
	ContentTypeOther    ContentType = "other"
)

// DefaultImportance is assigned to entities captured without an explicit weight.
const DefaultImportance = 1.0

var validContentTypes = map[ContentType]bool{
	ContentTypeArticle:  true,
	ContentTypeVideo:    true,
	ContentTypeCode:     true,
	ContentTypeRecipe:   true,
	ContentTypeBookmark: true,
	ContentTypeDocument: true,
	ContentTypeOther:    true,
}

// IsValid reports whether the content type is one of the known kinds.
func (c ContentType) IsValid() bool {
	return validContentTypes[c]
}

// ParseContentType normalises free text into a ContentType.
func ParseContentType(s string) (ContentType, error) {
	ct := ContentType(strings.ToLower(strings.TrimSpace(s)))
	if ct == "" {
		return ContentTypeOther, nil
	}
	if !ct.IsValid() {
		return "", apperrors.NewValidationErrorf("unknown content type %q", s)
	}
	return ct, nil
}

// Entity is a captured content item and a node of the knowledge graph.
type Entity struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	ContentType ContentType `json:"content_type"`
	Summary     string      `json:"summary,omitempty"`
	Embedding   []float32   `json:"embedding,omitempty"`
	Domain      string      `json:"domain,omitempty"`
	Tags        []string    `json:"tags,omitempty"`
	Importance  float64     `json:"importance"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// NewEntity builds an entity with defaults applied. An empty id gets a fresh UUID.
func NewEntity(id, title string, contentType ContentType) *Entity {
	if id == "" {
		id = uuid.NewString()
	}
	now := time.Now().UTC()
	return &Entity{
		ID:          id,
		Title:       title,
		ContentType: contentType,
		Importance:  DefaultImportance,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Normalize fills defaults for fields a caller may have left empty.
func (e *Entity) Normalize() {
	if e.ContentType == "" {
		e.ContentType = ContentTypeOther
	}
	if e.Importance == 0 {
		e.Importance = DefaultImportance
	}
	e.Domain = strings.TrimSpace(e.Domain)
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	if e.UpdatedAt.IsZero() {
		e.UpdatedAt = e.CreatedAt
	}
}

// Validate checks the value invariants of an entity.
func (e *Entity) Validate() error {
	if strings.TrimSpace(e.ID) == "" {
		return apperrors.NewValidationError("entity id is required")
	}
	if strings.TrimSpace(e.Title) == "" {
		return apperrors.NewValidationError("entity title is required")
	}
	if !e.ContentType.IsValid() {
		return apperrors.NewValidationErrorf("unknown content type %q", e.ContentType)
	}
	if e.Importance < 0 {
		return apperrors.NewValidationError("importance must not be negative")
	}
	return nil
}

// HasEmbedding reports whether a usable embedding vector is present.
func (e *Entity) HasEmbedding() bool {
	return len(e.Embedding) > 0
}

// Text returns the searchable text of the entity.
func (e *Entity) Text() string {
	if e.Summary == "" {
		return e.Title
	}
	return e.Title + " " + e.Summary
}

// Clone returns a deep copy so snapshots never share slices with the store.
func (e *Entity) Clone() *Entity {
	c := *e
	if e.Embedding != nil {
		c.Embedding = append([]float32(nil), e.Embedding...)
	}
	if e.Tags != nil {
		c.Tags = append([]string(nil), e.Tags...)
	}
	return &c
}
