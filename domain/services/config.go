package services

// AnalyticsConfig bundles the tunables of every analytics engine. It is
// loaded from YAML and may be replaced at runtime.
type AnalyticsConfig struct {
	Similarity SimilarityConfig `yaml:"similarity" json:"similarity"`
	Path       PathConfig       `yaml:"path" json:"path"`
	Suggester  SuggesterConfig  `yaml:"suggester" json:"suggester"`
	Clustering ClusteringConfig `yaml:"clustering" json:"clustering"`
	Gaps       GapConfig        `yaml:"gaps" json:"gaps"`
}

// DefaultAnalyticsConfig returns the defaults of every engine.
func DefaultAnalyticsConfig() AnalyticsConfig {
	return AnalyticsConfig{
		Similarity: DefaultSimilarityConfig(),
		Path:       DefaultPathConfig(),
		Suggester:  DefaultSuggesterConfig(),
		Clustering: DefaultClusteringConfig(),
		Gaps:       DefaultGapConfig(),
	}
}

// Engines is the set of analytics engines built from one AnalyticsConfig.
type Engines struct {
	Config     AnalyticsConfig
	Scorer     *SimilarityScorer
	Paths      *PathFinder
	Suggester  *RelationshipSuggester
	Clustering *ClusteringEngine
	Gaps       *GapAnalyzer
}

// NewEngines wires all engines around a shared similarity scorer.
func NewEngines(config AnalyticsConfig) *Engines {
	scorer := NewSimilarityScorer(config.Similarity, nil)
	return &Engines{
		Config:     config,
		Scorer:     scorer,
		Paths:      NewPathFinder(config.Path),
		Suggester:  NewRelationshipSuggester(scorer, config.Suggester),
		Clustering: NewClusteringEngine(scorer, config.Clustering),
		Gaps:       NewGapAnalyzer(scorer, config.Gaps),
	}
}
