package valueobjects

import (
	"strings"

	apperrors "github.com/pranavrajput12/PRSNL-sub011/pkg/errors"
)

// Severity ranks a knowledge gap. Ordering: low < medium < high < critical.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

var severityRank = map[Severity]int{
	SeverityLow:      0,
	SeverityMedium:   1,
	SeverityHigh:     2,
	SeverityCritical: 3,
}

// ParseSeverity validates a severity name.
func ParseSeverity(s string) (Severity, error) {
	sev := Severity(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := severityRank[sev]; !ok {
		return "", apperrors.NewValidationErrorf("unknown severity %q", s)
	}
	return sev, nil
}

// Rank returns the ordinal of the severity.
func (s Severity) Rank() int {
	return severityRank[s]
}

// AtLeast reports whether s is as severe as min.
func (s Severity) AtLeast(min Severity) bool {
	return s.Rank() >= min.Rank()
}

// AnalysisDepth controls how many gap rules run.
type AnalysisDepth string

const (
	DepthQuick         AnalysisDepth = "quick"
	DepthStandard      AnalysisDepth = "standard"
	DepthComprehensive AnalysisDepth = "comprehensive"
)

// ParseAnalysisDepth validates a depth name.
func ParseAnalysisDepth(s string) (AnalysisDepth, error) {
	switch d := AnalysisDepth(strings.ToLower(strings.TrimSpace(s))); d {
	case DepthQuick, DepthStandard, DepthComprehensive:
		return d, nil
	default:
		return "", apperrors.NewValidationErrorf("unknown analysis depth %q", s)
	}
}

// AtLeast reports whether d is at least as thorough as other.
func (d AnalysisDepth) AtLeast(other AnalysisDepth) bool {
	order := map[AnalysisDepth]int{DepthQuick: 0, DepthStandard: 1, DepthComprehensive: 2}
	return order[d] >= order[other]
}

// ClusterAlgorithm selects a clustering strategy.
type ClusterAlgorithm string

const (
	ClusterSemantic   ClusterAlgorithm = "semantic"
	ClusterStructural ClusterAlgorithm = "structural"
	ClusterHybrid     ClusterAlgorithm = "hybrid"
)

// ParseClusterAlgorithm validates an algorithm name.
func ParseClusterAlgorithm(s string) (ClusterAlgorithm, error) {
	switch a := ClusterAlgorithm(strings.ToLower(strings.TrimSpace(s))); a {
	case ClusterSemantic, ClusterStructural, ClusterHybrid:
		return a, nil
	default:
		return "", apperrors.NewValidationErrorf("unknown clustering algorithm %q", s)
	}
}

// LearningDifficulty buckets a path by how hard it is to follow.
type LearningDifficulty string

const (
	DifficultyEasy   LearningDifficulty = "easy"
	DifficultyMedium LearningDifficulty = "medium"
	DifficultyHard   LearningDifficulty = "hard"
)
