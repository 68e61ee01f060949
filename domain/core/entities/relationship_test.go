package entities

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/pranavrajput12/PRSNL-sub011/pkg/errors"
)

func TestRelationshipType_Reverse(t *testing.T) {
	tests := []struct {
		typ  RelationshipType
		want RelationshipType
	}{
		{RelationshipPrecedes, RelationshipFollows},
		{RelationshipFollows, RelationshipPrecedes},
		{RelationshipContains, RelationshipPartOf},
		{RelationshipPrerequisite, RelationshipEnables},
		{RelationshipDependsOn, RelationshipEnables},
		{RelationshipExplains, RelationshipExplainedBy},
		{RelationshipSimilarTo, RelationshipSimilarTo},
		{RelationshipContradicts, RelationshipContradicts},
		{RelationshipImplements, RelationshipRelatedTo},
	}

	for _, tt := range tests {
		t.Run(string(tt.typ), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.typ.Reverse())
		})
	}
}

func TestParseRelationshipType(t *testing.T) {
	typ, err := ParseRelationshipType("  Builds_On ")
	require.NoError(t, err)
	assert.Equal(t, RelationshipBuildsOn, typ)

	_, err = ParseRelationshipType("explained_by")
	assert.Error(t, err, "reverse-only labels are not writable")

	assert.Len(t, AllRelationshipTypes(), len(validRelationshipTypes))
}

func TestRelationship_MergeInto(t *testing.T) {
	newExisting := func(origin Origin) *Relationship {
		r := &Relationship{SourceID: "a", TargetID: "b", Type: RelationshipExtends, Confidence: 0.4, Strength: 0.3, Origin: origin}
		r.Normalize()
		return r
	}

	t.Run("explicit strength replaces stored value", func(t *testing.T) {
		existing := newExisting(OriginManual)
		created := existing.CreatedAt

		update := &Relationship{SourceID: "a", TargetID: "b", Type: RelationshipExtends, Confidence: 0.9, Strength: 0.5, Context: "ch. 3", Origin: OriginManual}
		update.MergeInto(existing)

		assert.Equal(t, 0.9, existing.Confidence)
		assert.Equal(t, 0.5, existing.Strength)
		assert.Equal(t, "ch. 3", existing.Context)
		assert.Equal(t, created, existing.CreatedAt)
		assert.Equal(t, "a->b:extends", existing.Key().String())
	})

	t.Run("default strength keeps stored value", func(t *testing.T) {
		existing := newExisting(OriginManual)

		update := (&Relationship{SourceID: "a", TargetID: "b", Type: RelationshipExtends, Confidence: 0.9, Origin: OriginManual}).WithDefaultStrength(1)
		update.MergeInto(existing)

		assert.Equal(t, 0.9, existing.Confidence)
		assert.Equal(t, 0.3, existing.Strength)
	})

	tests := []struct {
		name   string
		stored Origin
		update Origin
		want   Origin
	}{
		{"suggestion keeps manual origin", OriginManual, OriginAISuggested, OriginManual},
		{"manual write promotes suggestion", OriginAISuggested, OriginManual, OriginManual},
		{"suggestion stays suggestion", OriginAISuggested, OriginAISuggested, OriginAISuggested},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			existing := newExisting(tt.stored)
			update := &Relationship{SourceID: "a", TargetID: "b", Type: RelationshipExtends, Confidence: 0.6, Strength: 0.6, Origin: tt.update}
			update.MergeInto(existing)
			assert.Equal(t, tt.want, existing.Origin)
		})
	}
}

func TestRelationship_ValidateRejectsNaN(t *testing.T) {
	tests := []struct {
		name string
		rel  *Relationship
	}{
		{"nan confidence", &Relationship{SourceID: "a", TargetID: "b", Type: RelationshipExtends, Confidence: math.NaN(), Strength: 1, Origin: OriginManual}},
		{"nan strength", &Relationship{SourceID: "a", TargetID: "b", Type: RelationshipExtends, Confidence: 0.5, Strength: math.NaN(), Origin: OriginManual}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, apperrors.IsValidation(tt.rel.Validate()))
		})
	}
}

func TestRelationship_CloneDropsDefaultStrengthMark(t *testing.T) {
	r := (&Relationship{SourceID: "a", TargetID: "b", Type: RelationshipExtends, Confidence: 0.5, Origin: OriginManual}).WithDefaultStrength(1)
	stored := r.Clone()

	existing := &Relationship{Strength: 0.2}
	stored.MergeInto(existing)
	assert.Equal(t, 1.0, existing.Strength)
}

func TestEntity_NormalizeAndClone(t *testing.T) {
	e := &Entity{ID: "a", Title: "Title", Domain: "  Design ", Tags: []string{"ui"}}
	e.Normalize()

	assert.Equal(t, ContentTypeOther, e.ContentType)
	assert.Equal(t, DefaultImportance, e.Importance)
	assert.Equal(t, "Design", e.Domain)
	require.NoError(t, e.Validate())

	c := e.Clone()
	c.Tags[0] = "ux"
	assert.Equal(t, "ui", e.Tags[0])

	ct, err := ParseContentType("")
	require.NoError(t, err)
	assert.Equal(t, ContentTypeOther, ct)
	_, err = ParseContentType("hologram")
	assert.Error(t, err)
}
