package services

import (
	"fmt"
	"math"
	"sort"

	"github.com/pranavrajput12/PRSNL-sub011/domain/core/aggregates"
	"github.com/pranavrajput12/PRSNL-sub011/domain/core/entities"
	apperrors "github.com/pranavrajput12/PRSNL-sub011/pkg/errors"
)

// SuggesterConfig tunes relationship suggestions.
type SuggesterConfig struct {
	// GlobalSampleSize is how many of the most important entities seed
	// suggestions when no focus entity is given.
	GlobalSampleSize int `yaml:"global_sample_size" json:"global_sample_size"`
	// StrongSimilarity marks a pair as closely related.
	StrongSimilarity float64 `yaml:"strong_similarity" json:"strong_similarity"`
	// DuplicateSimilarity marks near-identical content of the same type.
	DuplicateSimilarity float64 `yaml:"duplicate_similarity" json:"duplicate_similarity"`
	// SpecificityGap is the richness difference that makes a pair asymmetric.
	SpecificityGap  int     `yaml:"specificity_gap" json:"specificity_gap"`
	MaxPatternBoost float64 `yaml:"max_pattern_boost" json:"max_pattern_boost"`

	BaseConfidence map[entities.RelationshipType]float64 `yaml:"base_confidence" json:"base_confidence"`
}

// DefaultSuggesterConfig returns the documented defaults.
func DefaultSuggesterConfig() SuggesterConfig {
	return SuggesterConfig{
		GlobalSampleSize:    20,
		StrongSimilarity:    0.75,
		DuplicateSimilarity: 0.97,
		SpecificityGap:      2,
		MaxPatternBoost:     0.1,
		BaseConfidence: map[entities.RelationshipType]float64{
			entities.RelationshipPrerequisite: 0.8,
			entities.RelationshipExtends:      0.75,
			entities.RelationshipImplements:   0.7,
			entities.RelationshipDuplicate:    0.7,
			entities.RelationshipRelatedTo:    0.65,
			entities.RelationshipReferences:   0.6,
		},
	}
}

var suggestionReasons = map[entities.RelationshipType]string{
	entities.RelationshipDuplicate:    "Entities capture nearly identical content",
	entities.RelationshipRelatedTo:    "Entities share a domain and closely related content",
	entities.RelationshipImplements:   "Code entity is a practical application of the concept",
	entities.RelationshipExtends:      "Source covers the target's topic in more depth",
	entities.RelationshipPrerequisite: "Source introduces foundations the target builds on",
	entities.RelationshipReferences:   "Entities overlap across different domains",
}

// SuggestionQuery describes a suggestion request. An empty EntityID
// suggests across a sample of the whole graph.
type SuggestionQuery struct {
	EntityID          string
	MinConfidence     float64
	Limit             int
	RelationshipTypes []entities.RelationshipType
}

// Suggestion is a proposed, explainable relationship.
type Suggestion struct {
	SourceID            string                    `json:"source_entity_id"`
	TargetID            string                    `json:"target_entity_id"`
	SourceTitle         string                    `json:"source_entity_name"`
	TargetTitle         string                    `json:"target_entity_name"`
	SuggestedType       entities.RelationshipType `json:"suggested_relationship"`
	ConfidenceScore     float64                   `json:"confidence_score"`
	Reasoning           string                    `json:"reasoning"`
	SemanticSimilarity  float64                   `json:"semantic_similarity"`
	CoOccurrence        float64                   `json:"co_occurrence"`
	Similarity          float64                   `json:"similarity"`
	ExistingConnections int                       `json:"existing_connections"`
}

// SuggestionResult is the ranked output of the suggester.
type SuggestionResult struct {
	Suggestions         []Suggestion `json:"suggestions"`
	CandidatesEvaluated int          `json:"candidates_evaluated"`
	Truncated           bool         `json:"truncated"`
}

// RelationshipSuggester proposes edges between unconnected entities.
type RelationshipSuggester struct {
	scorer *SimilarityScorer
	config SuggesterConfig
}

// NewRelationshipSuggester creates a suggester.
func NewRelationshipSuggester(scorer *SimilarityScorer, config SuggesterConfig) *RelationshipSuggester {
	return &RelationshipSuggester{scorer: scorer, config: config}
}

// Suggest ranks candidate relationships by confidence. Pairs already linked
// by any relationship in either direction are never proposed.
func (s *RelationshipSuggester) Suggest(snap *aggregates.Snapshot, q SuggestionQuery) (*SuggestionResult, error) {
	if q.Limit < 1 {
		return nil, apperrors.NewValidationError("limit must be >= 1")
	}
	if q.MinConfidence < 0 || q.MinConfidence > 1 {
		return nil, apperrors.NewValidationError("min_confidence must be within [0,1]")
	}

	var sources []*entities.Entity
	if q.EntityID != "" {
		e, ok := snap.Entity(q.EntityID)
		if !ok {
			return nil, apperrors.NewNotFoundError("entity " + q.EntityID)
		}
		sources = []*entities.Entity{e}
	} else {
		sources = s.globalSample(snap)
	}

	allowed := make(map[entities.RelationshipType]bool, len(q.RelationshipTypes))
	for _, t := range q.RelationshipTypes {
		allowed[t] = true
	}
	typeFreq := relationshipTypeFrequency(snap)
	features := s.scorer.FeatureIndex(snap.Entities())

	inSample := make(map[string]bool, len(sources))
	for _, src := range sources {
		inSample[src.ID] = true
	}

	result := &SuggestionResult{Suggestions: []Suggestion{}}
	for _, src := range sources {
		fs := features[src.ID]
		for _, cand := range snap.Entities() {
			if cand.ID == src.ID || snap.Connected(src.ID, cand.ID) {
				continue
			}
			// Each sampled pair is evaluated once, from the lower id.
			if q.EntityID == "" && inSample[cand.ID] && cand.ID < src.ID {
				continue
			}
			result.CandidatesEvaluated++

			sug := s.evaluate(fs, features[cand.ID], typeFreq, snap.RelationshipCount())
			if len(allowed) > 0 && !allowed[sug.SuggestedType] {
				continue
			}
			if sug.ConfidenceScore < q.MinConfidence {
				continue
			}
			sug.ExistingConnections = snap.Degree(cand.ID)
			result.Suggestions = append(result.Suggestions, sug)
		}
	}

	sort.Slice(result.Suggestions, func(i, j int) bool {
		a, b := result.Suggestions[i], result.Suggestions[j]
		if a.ConfidenceScore != b.ConfidenceScore {
			return a.ConfidenceScore > b.ConfidenceScore
		}
		if a.Similarity != b.Similarity {
			return a.Similarity > b.Similarity
		}
		if a.SourceID != b.SourceID {
			return a.SourceID < b.SourceID
		}
		return a.TargetID < b.TargetID
	})
	if len(result.Suggestions) > q.Limit {
		result.Suggestions = result.Suggestions[:q.Limit]
		result.Truncated = true
	}
	return result, nil
}

func (s *RelationshipSuggester) evaluate(src, dst Features, typeFreq map[entities.RelationshipType]int, totalRels int) Suggestion {
	sim := s.scorer.ScoreFeatures(src, dst)
	sourceID, targetID := src.Entity.ID, dst.Entity.ID
	relType := s.classify(src, dst, sim)

	// prerequisite reads from the more general entity to the richer one
	if relType == entities.RelationshipPrerequisite {
		sourceID, targetID = targetID, sourceID
	}
	source, target := src.Entity, dst.Entity
	if sourceID != src.Entity.ID {
		source, target = target, source
	}

	boost := 0.0
	if totalRels > 0 {
		boost = math.Min(s.config.MaxPatternBoost, float64(typeFreq[relType])/100)
	}
	confidence := math.Min(1, s.config.BaseConfidence[relType]*sim.Score+boost)
	confidence = math.Round(confidence*1e4) / 1e4

	reported := sim.SemanticSimilarity
	if !sim.HasSemantic {
		reported = sim.CoOccurrence
	}

	return Suggestion{
		SourceID:           source.ID,
		TargetID:           target.ID,
		SourceTitle:        source.Title,
		TargetTitle:        target.Title,
		SuggestedType:      relType,
		ConfidenceScore:    confidence,
		Reasoning:          fmt.Sprintf("%s (semantic similarity: %.2f)", suggestionReasons[relType], reported),
		SemanticSimilarity: sim.SemanticSimilarity,
		CoOccurrence:       sim.CoOccurrence,
		Similarity:         sim.Score,
	}
}

// classify picks a relationship type for src -> dst from similarity, domain
// agreement and how much richer one entity is than the other.
func (s *RelationshipSuggester) classify(src, dst Features, sim Similarity) entities.RelationshipType {
	sameDomain := src.domain != "" && src.domain == dst.domain
	sameType := src.Entity.ContentType == dst.Entity.ContentType

	if sim.HasSemantic && sim.SemanticSimilarity >= s.config.DuplicateSimilarity && sameType {
		return entities.RelationshipDuplicate
	}
	if src.Entity.ContentType == entities.ContentTypeCode && dst.Entity.ContentType != entities.ContentTypeCode && sim.Score >= s.config.StrongSimilarity {
		return entities.RelationshipImplements
	}
	if sameDomain && sim.Score >= s.config.StrongSimilarity {
		return entities.RelationshipRelatedTo
	}

	diff := specificity(src) - specificity(dst)
	switch {
	case diff >= s.config.SpecificityGap:
		return entities.RelationshipExtends
	case -diff >= s.config.SpecificityGap:
		return entities.RelationshipPrerequisite
	case sameDomain:
		return entities.RelationshipRelatedTo
	default:
		return entities.RelationshipReferences
	}
}

// specificity grows with domain labelling, tagging and keyword richness.
func specificity(f Features) int {
	score := len(f.Tags) + len(f.Keywords)/5
	if f.domain != "" {
		score += 2
	}
	return score
}

func (s *RelationshipSuggester) globalSample(snap *aggregates.Snapshot) []*entities.Entity {
	ents := append([]*entities.Entity(nil), snap.Entities()...)
	sort.SliceStable(ents, func(i, j int) bool {
		if ents[i].Importance != ents[j].Importance {
			return ents[i].Importance > ents[j].Importance
		}
		return ents[i].ID < ents[j].ID
	})
	if len(ents) > s.config.GlobalSampleSize {
		ents = ents[:s.config.GlobalSampleSize]
	}
	return ents
}

func relationshipTypeFrequency(snap *aggregates.Snapshot) map[entities.RelationshipType]int {
	freq := make(map[entities.RelationshipType]int)
	for _, r := range snap.Relationships() {
		freq[r.Type]++
	}
	return freq
}
