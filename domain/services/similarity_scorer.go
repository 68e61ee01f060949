package services

import (
	"math"
	"strings"

	"github.com/pranavrajput12/PRSNL-sub011/domain/core/entities"
)

// SimilarityConfig weights the signals blended by the SimilarityScorer.
type SimilarityConfig struct {
	// SemanticWeight and CoOccurrenceWeight blend the two components when
	// both entities carry comparable embeddings. They are normalised.
	SemanticWeight     float64 `yaml:"semantic_weight" json:"semantic_weight"`
	CoOccurrenceWeight float64 `yaml:"co_occurrence_weight" json:"co_occurrence_weight"`

	// Co-occurrence signal weights. The sum is clamped to 1.
	DomainWeight      float64 `yaml:"domain_weight" json:"domain_weight"`
	TagWeight         float64 `yaml:"tag_weight" json:"tag_weight"`
	KeywordWeight     float64 `yaml:"keyword_weight" json:"keyword_weight"`
	ContentTypeWeight float64 `yaml:"content_type_weight" json:"content_type_weight"`

	MinWordLength int `yaml:"min_word_length" json:"min_word_length"`
}

// DefaultSimilarityConfig returns the documented defaults.
func DefaultSimilarityConfig() SimilarityConfig {
	return SimilarityConfig{
		SemanticWeight:     0.7,
		CoOccurrenceWeight: 0.3,
		DomainWeight:       0.5,
		TagWeight:          0.3,
		KeywordWeight:      0.2,
		ContentTypeWeight:  0.1,
		MinWordLength:      3,
	}
}

// Similarity is the output of the scorer with its breakdown.
type Similarity struct {
	Score              float64 `json:"score"`
	SemanticSimilarity float64 `json:"semantic_similarity"`
	CoOccurrence       float64 `json:"co_occurrence"`
	HasSemantic        bool    `json:"has_semantic"`
}

// Features are the per-entity inputs of the scorer, extracted once.
type Features struct {
	Entity   *entities.Entity
	Keywords map[string]bool
	Tags     map[string]bool
	domain   string
}

// SimilarityScorer computes pairwise entity affinity. It is pure and safe
// for concurrent use.
type SimilarityScorer struct {
	config   SimilarityConfig
	analyzer TextAnalyzer
}

// NewSimilarityScorer creates a scorer. A nil analyzer uses the default one.
func NewSimilarityScorer(config SimilarityConfig, analyzer TextAnalyzer) *SimilarityScorer {
	if analyzer == nil {
		analyzer = NewDefaultTextAnalyzer(config.MinWordLength)
	}
	return &SimilarityScorer{config: config, analyzer: analyzer}
}

// Analyzer exposes the text analyzer shared with the engines.
func (s *SimilarityScorer) Analyzer() TextAnalyzer {
	return s.analyzer
}

// Features extracts the scoring inputs of an entity.
func (s *SimilarityScorer) Features(e *entities.Entity) Features {
	tags := make(map[string]bool, len(e.Tags))
	for _, t := range e.Tags {
		if n := strings.ToLower(strings.TrimSpace(t)); n != "" {
			tags[n] = true
		}
	}
	return Features{
		Entity:   e,
		Keywords: s.analyzer.Keywords(e.Text()),
		Tags:     tags,
		domain:   strings.ToLower(e.Domain),
	}
}

// FeatureIndex extracts features for every entity, keyed by id.
func (s *SimilarityScorer) FeatureIndex(ents []*entities.Entity) map[string]Features {
	idx := make(map[string]Features, len(ents))
	for _, e := range ents {
		idx[e.ID] = s.Features(e)
	}
	return idx
}

// Score compares two entities.
func (s *SimilarityScorer) Score(a, b *entities.Entity) Similarity {
	return s.ScoreFeatures(s.Features(a), s.Features(b))
}

// ScoreFeatures compares two pre-extracted feature sets. Without comparable
// embeddings the score is the co-occurrence component alone.
func (s *SimilarityScorer) ScoreFeatures(a, b Features) Similarity {
	co := s.coOccurrence(a, b)
	sem, ok := CosineSimilarity(a.Entity.Embedding, b.Entity.Embedding)
	if !ok {
		return Similarity{Score: co, CoOccurrence: co}
	}

	total := s.config.SemanticWeight + s.config.CoOccurrenceWeight
	if total <= 0 {
		total = 1
	}
	score := (s.config.SemanticWeight*sem + s.config.CoOccurrenceWeight*co) / total
	return Similarity{
		Score:              clamp01(score),
		SemanticSimilarity: sem,
		CoOccurrence:       co,
		HasSemantic:        true,
	}
}

// SemanticAffinity is the embedding similarity when both entities have
// comparable embeddings, and the co-occurrence component otherwise.
func (s *SimilarityScorer) SemanticAffinity(a, b Features) float64 {
	if sem, ok := CosineSimilarity(a.Entity.Embedding, b.Entity.Embedding); ok {
		return sem
	}
	return s.coOccurrence(a, b)
}

// CoOccurrence scores shared domain, tags, keywords and content type.
func (s *SimilarityScorer) CoOccurrence(a, b Features) float64 {
	return s.coOccurrence(a, b)
}

func (s *SimilarityScorer) coOccurrence(a, b Features) float64 {
	score := 0.0
	if a.domain != "" && a.domain == b.domain {
		score += s.config.DomainWeight
	}
	score += s.config.TagWeight * Jaccard(a.Tags, b.Tags)
	score += s.config.KeywordWeight * Jaccard(a.Keywords, b.Keywords)
	if a.Entity.ContentType == b.Entity.ContentType {
		score += s.config.ContentTypeWeight
	}
	return clamp01(score)
}

// CosineSimilarity returns the cosine of two vectors clamped to [0,1]. The
// second result is false when either vector is empty, the lengths differ or
// a vector has zero norm.
func CosineSimilarity(a, b []float32) (float64, bool) {
	if len(a) == 0 || len(a) != len(b) {
		return 0, false
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0, false
	}
	return clamp01(dot / (math.Sqrt(na) * math.Sqrt(nb))), true
}

func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v) || v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
