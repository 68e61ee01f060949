package entities

import (
	"fmt"
	"math"
	"strings"
	"time"

	apperrors "github.com/pranavrajput12/PRSNL-sub011/pkg/errors"
)

// RelationshipType labels the semantics of a directed edge.
type RelationshipType string

const (
	RelationshipRelatedTo    RelationshipType = "related_to"
	RelationshipSimilarTo    RelationshipType = "similar_to"
	RelationshipExtends      RelationshipType = "extends"
	RelationshipBuildsOn     RelationshipType = "builds_on"
	RelationshipPrerequisite RelationshipType = "prerequisite"
	RelationshipEnables      RelationshipType = "enables"
	RelationshipDependsOn    RelationshipType = "depends_on"
	RelationshipContradicts  RelationshipType = "contradicts"
	RelationshipImplements   RelationshipType = "implements"
	RelationshipReferences   RelationshipType = "references"
	RelationshipPartOf       RelationshipType = "part_of"
	RelationshipContains     RelationshipType = "contains"
	RelationshipExplains     RelationshipType = "explains"
	RelationshipDemonstrates RelationshipType = "demonstrates"
	RelationshipApplies      RelationshipType = "applies"
	RelationshipDuplicate    RelationshipType = "duplicate"
	RelationshipAlternative  RelationshipType = "alternative"
	RelationshipPrecedes     RelationshipType = "precedes"
	RelationshipFollows      RelationshipType = "follows"
	RelationshipConcurrent   RelationshipType = "concurrent"
	RelationshipOppositeOf   RelationshipType = "opposite_of"

	// RelationshipExplainedBy only appears on reversed path edges.
	RelationshipExplainedBy RelationshipType = "explained_by"
)

var validRelationshipTypes = map[RelationshipType]bool{
	RelationshipRelatedTo:    true,
	RelationshipSimilarTo:    true,
	RelationshipExtends:      true,
	RelationshipBuildsOn:     true,
	RelationshipPrerequisite: true,
	RelationshipEnables:      true,
	RelationshipDependsOn:    true,
	RelationshipContradicts:  true,
	RelationshipImplements:   true,
	RelationshipReferences:   true,
	RelationshipPartOf:       true,
	RelationshipContains:     true,
	RelationshipExplains:     true,
	RelationshipDemonstrates: true,
	RelationshipApplies:      true,
	RelationshipDuplicate:    true,
	RelationshipAlternative:  true,
	RelationshipPrecedes:     true,
	RelationshipFollows:      true,
	RelationshipConcurrent:   true,
	RelationshipOppositeOf:   true,
}

var symmetricTypes = map[RelationshipType]bool{
	RelationshipRelatedTo:   true,
	RelationshipSimilarTo:   true,
	RelationshipConcurrent:  true,
	RelationshipOppositeOf:  true,
	RelationshipDuplicate:   true,
	RelationshipAlternative: true,
	RelationshipContradicts: true,
}

var reverseTypes = map[RelationshipType]RelationshipType{
	RelationshipPrecedes:     RelationshipFollows,
	RelationshipFollows:      RelationshipPrecedes,
	RelationshipContains:     RelationshipPartOf,
	RelationshipPartOf:       RelationshipContains,
	RelationshipPrerequisite: RelationshipEnables,
	RelationshipEnables:      RelationshipPrerequisite,
	RelationshipDependsOn:    RelationshipEnables,
	RelationshipExplains:     RelationshipExplainedBy,
}

// AllRelationshipTypes returns the writable types in a stable order.
func AllRelationshipTypes() []RelationshipType {
	return []RelationshipType{
		RelationshipRelatedTo, RelationshipSimilarTo, RelationshipExtends, RelationshipBuildsOn,
		RelationshipPrerequisite, RelationshipEnables, RelationshipDependsOn, RelationshipContradicts,
		RelationshipImplements, RelationshipReferences, RelationshipPartOf, RelationshipContains,
		RelationshipExplains, RelationshipDemonstrates, RelationshipApplies, RelationshipDuplicate,
		RelationshipAlternative, RelationshipPrecedes, RelationshipFollows, RelationshipConcurrent,
		RelationshipOppositeOf,
	}
}

// IsValid reports whether the type may be stored.
func (t RelationshipType) IsValid() bool {
	return validRelationshipTypes[t]
}

// IsSymmetric reports whether the edge reads the same in both directions.
func (t RelationshipType) IsSymmetric() bool {
	return symmetricTypes[t]
}

// Reverse returns the label of the edge when traversed from target to source.
// Types without a known inverse read as related_to.
func (t RelationshipType) Reverse() RelationshipType {
	if t.IsSymmetric() {
		return t
	}
	if r, ok := reverseTypes[t]; ok {
		return r
	}
	return RelationshipRelatedTo
}

// ParseRelationshipType normalises and validates a type name.
func ParseRelationshipType(s string) (RelationshipType, error) {
	t := RelationshipType(strings.ToLower(strings.TrimSpace(s)))
	if !t.IsValid() {
		return "", apperrors.NewValidationErrorf("unknown relationship type %q", s)
	}
	return t, nil
}

// Origin records who asserted a relationship.
type Origin string

const (
	OriginManual      Origin = "manual"
	OriginAISuggested Origin = "ai_suggested"
)

// IsValid reports whether the origin is known.
func (o Origin) IsValid() bool {
	return o == OriginManual || o == OriginAISuggested
}

// RelationshipKey is the composite identity of a relationship.
type RelationshipKey struct {
	SourceID string           `json:"source_id"`
	TargetID string           `json:"target_id"`
	Type     RelationshipType `json:"type"`
}

func (k RelationshipKey) String() string {
	return fmt.Sprintf("%s->%s:%s", k.SourceID, k.TargetID, k.Type)
}

// Relationship is a typed, directed, confidence-scored edge.
type Relationship struct {
	SourceID   string           `json:"source_id"`
	TargetID   string           `json:"target_id"`
	Type       RelationshipType `json:"type"`
	Confidence float64          `json:"confidence"`
	Strength   float64          `json:"strength"`
	Context    string           `json:"context,omitempty"`
	Origin     Origin           `json:"origin"`
	CreatedAt  time.Time        `json:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at"`

	// defaultStrength marks Strength as a creation default rather than a
	// value the caller asked for.
	defaultStrength bool
}

// WithDefaultStrength sets a strength that only applies when the edge is
// created. Merging into an existing edge keeps the stored strength.
func (r *Relationship) WithDefaultStrength(strength float64) *Relationship {
	r.Strength = strength
	r.defaultStrength = true
	return r
}

// Key returns the composite identity of the relationship.
func (r *Relationship) Key() RelationshipKey {
	return RelationshipKey{SourceID: r.SourceID, TargetID: r.TargetID, Type: r.Type}
}

// Touches reports whether the relationship references the entity at either end.
func (r *Relationship) Touches(entityID string) bool {
	return r.SourceID == entityID || r.TargetID == entityID
}

// Other returns the endpoint opposite to entityID.
func (r *Relationship) Other(entityID string) string {
	if r.SourceID == entityID {
		return r.TargetID
	}
	return r.SourceID
}

// Validate checks the value invariants. Entity existence is checked by the store.
func (r *Relationship) Validate() error {
	if r.SourceID == "" || r.TargetID == "" {
		return apperrors.NewValidationError("source and target are required")
	}
	if r.SourceID == r.TargetID {
		return apperrors.NewValidationError("relationship cannot reference the same entity on both ends")
	}
	if !r.Type.IsValid() {
		return apperrors.NewValidationErrorf("unknown relationship type %q", r.Type)
	}
	if math.IsNaN(r.Confidence) || r.Confidence < 0 || r.Confidence > 1 {
		return apperrors.NewValidationErrorf("confidence %.3f outside [0,1]", r.Confidence)
	}
	if math.IsNaN(r.Strength) || r.Strength < 0 || r.Strength > 1 {
		return apperrors.NewValidationErrorf("strength %.3f outside [0,1]", r.Strength)
	}
	if !r.Origin.IsValid() {
		return apperrors.NewValidationErrorf("unknown origin %q", r.Origin)
	}
	return nil
}

// Normalize fills in defaults for optional fields.
func (r *Relationship) Normalize() {
	if r.Origin == "" {
		r.Origin = OriginManual
	}
	now := time.Now().UTC()
	if r.CreatedAt.IsZero() {
		r.CreatedAt = now
	}
	if r.UpdatedAt.IsZero() {
		r.UpdatedAt = r.CreatedAt
	}
}

// MergeInto applies an update of the same triple onto the stored edge.
// Confidence and context are replaced. Strength is replaced only when the
// update carries an explicit one. A manual write promotes an ai_suggested
// edge to manual; otherwise the stored origin is kept. Identity and
// creation time never change.
func (r *Relationship) MergeInto(existing *Relationship) {
	existing.Confidence = r.Confidence
	existing.Context = r.Context
	if !r.defaultStrength {
		existing.Strength = r.Strength
	}
	if existing.Origin == OriginAISuggested && r.Origin == OriginManual {
		existing.Origin = OriginManual
	}
	existing.UpdatedAt = time.Now().UTC()
}

// Clone returns a copy of the relationship as stored.
func (r *Relationship) Clone() *Relationship {
	c := *r
	c.defaultStrength = false
	return &c
}
