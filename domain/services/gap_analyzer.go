package services

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/pranavrajput12/PRSNL-sub011/domain/core/aggregates"
	"github.com/pranavrajput12/PRSNL-sub011/domain/core/entities"
	"github.com/pranavrajput12/PRSNL-sub011/domain/core/valueobjects"
)

// GapType names a kind of knowledge gap.
type GapType string

const (
	GapIsolatedEntity      GapType = "isolated_entity"
	GapWeaklyConnected     GapType = "weakly_connected"
	GapWeakDomain          GapType = "weak_domain"
	GapMissingRelationship GapType = "missing_relationship"
	GapConceptual          GapType = "conceptual_gap"
)

// GapConfig holds the thresholds of the gap rules.
type GapConfig struct {
	// Completeness blends coverage, density and interconnectedness.
	CoverageWeight       float64 `yaml:"coverage_weight" json:"coverage_weight"`
	DensityWeight        float64 `yaml:"density_weight" json:"density_weight"`
	InterconnectedWeight float64 `yaml:"interconnected_weight" json:"interconnected_weight"`
	// DensityCap is the edge density treated as fully dense.
	DensityCap float64 `yaml:"density_cap" json:"density_cap"`

	WeakDomainThreshold   float64 `yaml:"weak_domain_threshold" json:"weak_domain_threshold"`
	WeakDomainHighBelow   float64 `yaml:"weak_domain_high_below" json:"weak_domain_high_below"`
	WeakDomainMinEntities int     `yaml:"weak_domain_min_entities" json:"weak_domain_min_entities"`

	// Isolated entity severity by importance.
	IsolatedCriticalImportance float64 `yaml:"isolated_critical_importance" json:"isolated_critical_importance"`
	IsolatedHighImportance     float64 `yaml:"isolated_high_importance" json:"isolated_high_importance"`
	IsolatedMediumImportance   float64 `yaml:"isolated_medium_importance" json:"isolated_medium_importance"`

	ConceptualImportanceDelta float64 `yaml:"conceptual_importance_delta" json:"conceptual_importance_delta"`

	CoOccurrenceThreshold float64 `yaml:"co_occurrence_threshold" json:"co_occurrence_threshold"`
	MinCoOccurringPairs   int     `yaml:"min_co_occurring_pairs" json:"min_co_occurring_pairs"`

	MaxRecommendations int `yaml:"max_recommendations" json:"max_recommendations"`
	MaxAffected        int `yaml:"max_affected" json:"max_affected"`
}

// DefaultGapConfig returns the documented defaults.
func DefaultGapConfig() GapConfig {
	return GapConfig{
		CoverageWeight:             0.5,
		DensityWeight:              0.3,
		InterconnectedWeight:       0.2,
		DensityCap:                 0.5,
		WeakDomainThreshold:        0.5,
		WeakDomainHighBelow:        0.2,
		WeakDomainMinEntities:      3,
		IsolatedCriticalImportance: 2.0,
		IsolatedHighImportance:     1.0,
		IsolatedMediumImportance:   0.5,
		ConceptualImportanceDelta:  0.3,
		CoOccurrenceThreshold:      0.3,
		MinCoOccurringPairs:        2,
		MaxRecommendations:         4,
		MaxAffected:                10,
	}
}

var hierarchicalTypes = map[entities.RelationshipType]bool{
	entities.RelationshipPrerequisite: true,
	entities.RelationshipExtends:      true,
	entities.RelationshipBuildsOn:     true,
	entities.RelationshipEnables:      true,
}

// GapQuery describes one gap analysis run.
type GapQuery struct {
	Depth        valueobjects.AnalysisDepth
	MinSeverity  valueobjects.Severity
	FocusDomains []string
}

// Gap is a detected deficiency in the graph.
type Gap struct {
	Type             GapType               `json:"gap_type"`
	Severity         valueobjects.Severity `json:"severity"`
	Confidence       float64               `json:"confidence_score"`
	Title            string                `json:"title"`
	Description      string                `json:"description"`
	Domain           string                `json:"domain,omitempty"`
	AffectedEntities []string              `json:"affected_entities"`
	SuggestedActions []string              `json:"suggested_actions"`
}

// DomainReport summarises the coverage of one domain.
type DomainReport struct {
	Name                string   `json:"domain_name"`
	EntityCount         int      `json:"entity_count"`
	RelationshipCount   int      `json:"relationship_count"`
	RelationshipDensity float64  `json:"relationship_density"`
	Interconnectedness  float64  `json:"interconnectedness"`
	CompletenessScore   float64  `json:"completeness_score"`
	KeyEntities         []string `json:"key_entities"`
	MissingConcepts     []string `json:"missing_concepts"`
}

// GapSummary counts the detected gaps before severity filtering.
type GapSummary struct {
	TotalDetected int                           `json:"total_detected"`
	Returned      int                           `json:"returned"`
	BySeverity    map[valueobjects.Severity]int `json:"by_severity"`
	ByType        map[GapType]int               `json:"by_type"`
}

// GapAnalysis is the output of the analyzer.
type GapAnalysis struct {
	OverallCompleteness float64        `json:"overall_completeness"`
	Gaps                []Gap          `json:"gaps"`
	Domains             []DomainReport `json:"domains"`
	Recommendations     []string       `json:"recommendations"`
	Summary             GapSummary     `json:"analysis_summary"`
	StoreVersion        uint64         `json:"store_version"`
}

// GapAnalyzer evaluates domain coverage and surfaces missing knowledge.
type GapAnalyzer struct {
	scorer *SimilarityScorer
	config GapConfig
}

// NewGapAnalyzer creates a gap analyzer.
func NewGapAnalyzer(scorer *SimilarityScorer, config GapConfig) *GapAnalyzer {
	return &GapAnalyzer{scorer: scorer, config: config}
}

type domainStats struct {
	name     string
	members  []*entities.Entity
	internal int
	incident int
	crossing int
	report   DomainReport
}

// Analyze partitions entities by domain, scores each domain and runs the
// gap rules enabled for the requested depth.
func (a *GapAnalyzer) Analyze(snap *aggregates.Snapshot, q GapQuery) *GapAnalysis {
	domainOf, domains := a.partition(snap, q.FocusDomains)

	analysis := &GapAnalysis{
		Gaps:            []Gap{},
		Domains:         []DomainReport{},
		Recommendations: []string{},
		Summary: GapSummary{
			BySeverity: make(map[valueobjects.Severity]int),
			ByType:     make(map[GapType]int),
		},
		StoreVersion: snap.Version(),
	}
	if len(domains) == 0 {
		return analysis
	}

	a.measure(snap, domainOf, domains)

	weighted, count := 0.0, 0
	for _, d := range domains {
		analysis.Domains = append(analysis.Domains, d.report)
		weighted += d.report.CompletenessScore * float64(d.report.EntityCount)
		count += d.report.EntityCount
	}
	analysis.OverallCompleteness = clamp01(weighted / float64(count))

	var gaps []Gap
	gaps = append(gaps, a.isolatedGaps(snap, domainOf)...)
	gaps = append(gaps, a.weakDomainGaps(domains)...)
	if q.Depth.AtLeast(valueobjects.DepthStandard) {
		gaps = append(gaps, a.weaklyConnectedGaps(snap, domainOf)...)
		gaps = append(gaps, a.conceptualGaps(snap, domainOf)...)
	}
	if q.Depth.AtLeast(valueobjects.DepthComprehensive) {
		gaps = append(gaps, a.missingRelationshipGaps(snap, domains)...)
	}

	sort.SliceStable(gaps, func(i, j int) bool {
		if gaps[i].Severity.Rank() != gaps[j].Severity.Rank() {
			return gaps[i].Severity.Rank() > gaps[j].Severity.Rank()
		}
		if gaps[i].Confidence != gaps[j].Confidence {
			return gaps[i].Confidence > gaps[j].Confidence
		}
		if gaps[i].Type != gaps[j].Type {
			return gaps[i].Type < gaps[j].Type
		}
		return gaps[i].Title < gaps[j].Title
	})

	analysis.Summary.TotalDetected = len(gaps)
	for _, g := range gaps {
		analysis.Summary.BySeverity[g.Severity]++
		analysis.Summary.ByType[g.Type]++
		if g.Severity.AtLeast(q.MinSeverity) {
			analysis.Gaps = append(analysis.Gaps, g)
		}
	}
	analysis.Summary.Returned = len(analysis.Gaps)
	analysis.Recommendations = a.recommendations(analysis, gaps)
	return analysis
}

func (a *GapAnalyzer) partition(snap *aggregates.Snapshot, focus []string) (map[string]string, []*domainStats) {
	focusSet := make(map[string]bool, len(focus))
	for _, f := range focus {
		focusSet[strings.ToLower(f)] = true
	}

	domainOf := make(map[string]string)
	byName := make(map[string]*domainStats)
	for _, e := range snap.Entities() {
		d := ClassifyDomain(e, a.scorer.Analyzer())
		if len(focusSet) > 0 && !focusSet[strings.ToLower(d)] {
			continue
		}
		domainOf[e.ID] = d
		if byName[d] == nil {
			byName[d] = &domainStats{name: d}
		}
		byName[d].members = append(byName[d].members, e)
	}

	domains := make([]*domainStats, 0, len(byName))
	for _, d := range byName {
		domains = append(domains, d)
	}
	sort.Slice(domains, func(i, j int) bool { return domains[i].name < domains[j].name })
	return domainOf, domains
}

func (a *GapAnalyzer) measure(snap *aggregates.Snapshot, domainOf map[string]string, domains []*domainStats) {
	byName := make(map[string]*domainStats, len(domains))
	for _, d := range domains {
		byName[d.name] = d
	}

	crossing := make(map[string]bool)
	for _, r := range snap.Relationships() {
		ds, okS := domainOf[r.SourceID]
		dt, okT := domainOf[r.TargetID]
		if okS {
			byName[ds].incident++
		}
		if okT && dt != ds {
			byName[dt].incident++
		}
		if okS && okT && ds == dt {
			byName[ds].internal++
		}
		if ds != dt {
			crossing[r.SourceID] = true
			crossing[r.TargetID] = true
		}
	}

	cw, dw, iw := a.config.CoverageWeight, a.config.DensityWeight, a.config.InterconnectedWeight
	if len(domains) == 1 {
		// a lone domain cannot have cross-domain edges
		iw = 0
	}
	totalWeight := cw + dw + iw

	for _, d := range domains {
		n := len(d.members)
		for _, e := range d.members {
			if crossing[e.ID] {
				d.crossing++
			}
		}

		density := 0.0
		if n > 1 {
			density = float64(d.internal) / float64(n*(n-1))
		}
		expected := math.Max(1, math.Floor(float64(n)*complexityFactor(d.name)))
		coverage := math.Min(1, float64(d.incident)/expected)
		densityScore := 0.0
		if a.config.DensityCap > 0 {
			densityScore = math.Min(1, density/a.config.DensityCap)
		}
		inter := float64(d.crossing) / float64(n)

		completeness := 0.0
		if totalWeight > 0 {
			completeness = (cw*coverage + dw*densityScore + iw*inter) / totalWeight
		}

		d.report = DomainReport{
			Name:                d.name,
			EntityCount:         n,
			RelationshipCount:   d.incident,
			RelationshipDensity: roundScore(math.Min(1, density)),
			Interconnectedness:  roundScore(inter),
			CompletenessScore:   clamp01(completeness),
			KeyEntities:         keyEntities(snap, d.members, 3),
			MissingConcepts:     missingConcepts(d.name, d.members, 3),
		}
		if d.report.MissingConcepts == nil {
			d.report.MissingConcepts = []string{}
		}
	}
}

func keyEntities(snap *aggregates.Snapshot, members []*entities.Entity, limit int) []string {
	sorted := append([]*entities.Entity(nil), members...)
	sort.SliceStable(sorted, func(i, j int) bool {
		di, dj := snap.Degree(sorted[i].ID), snap.Degree(sorted[j].ID)
		if di != dj {
			return di > dj
		}
		if sorted[i].Importance != sorted[j].Importance {
			return sorted[i].Importance > sorted[j].Importance
		}
		return sorted[i].ID < sorted[j].ID
	})
	out := make([]string, 0, limit)
	for i := 0; i < len(sorted) && i < limit; i++ {
		out = append(out, sorted[i].ID)
	}
	return out
}

func (a *GapAnalyzer) isolatedSeverity(importance float64) valueobjects.Severity {
	switch {
	case importance >= a.config.IsolatedCriticalImportance:
		return valueobjects.SeverityCritical
	case importance >= a.config.IsolatedHighImportance:
		return valueobjects.SeverityHigh
	case importance >= a.config.IsolatedMediumImportance:
		return valueobjects.SeverityMedium
	default:
		return valueobjects.SeverityLow
	}
}

func (a *GapAnalyzer) isolatedGaps(snap *aggregates.Snapshot, domainOf map[string]string) []Gap {
	var gaps []Gap
	for _, e := range snap.Entities() {
		d, ok := domainOf[e.ID]
		if !ok || snap.Degree(e.ID) > 0 {
			continue
		}
		gaps = append(gaps, Gap{
			Type:             GapIsolatedEntity,
			Severity:         a.isolatedSeverity(e.Importance),
			Confidence:       0.9,
			Title:            fmt.Sprintf("Isolated entity: %s", e.Title),
			Description:      fmt.Sprintf("%q has no relationships to other knowledge", e.Title),
			Domain:           d,
			AffectedEntities: []string{e.ID},
			SuggestedActions: []string{
				"Connect this entity to related concepts",
				"Review whether it belongs to an existing topic",
			},
		})
	}
	return gaps
}

func (a *GapAnalyzer) weaklyConnectedGaps(snap *aggregates.Snapshot, domainOf map[string]string) []Gap {
	var gaps []Gap
	for _, e := range snap.Entities() {
		d, ok := domainOf[e.ID]
		if !ok || snap.Degree(e.ID) != 1 {
			continue
		}
		gaps = append(gaps, Gap{
			Type:             GapWeaklyConnected,
			Severity:         valueobjects.SeverityLow,
			Confidence:       0.7,
			Title:            fmt.Sprintf("Weakly connected: %s", e.Title),
			Description:      fmt.Sprintf("%q is linked to only one other entity", e.Title),
			Domain:           d,
			AffectedEntities: []string{e.ID},
			SuggestedActions: []string{"Add relationships to strengthen this entity's context"},
		})
	}
	return gaps
}

func (a *GapAnalyzer) weakDomainGaps(domains []*domainStats) []Gap {
	var gaps []Gap
	for _, d := range domains {
		r := d.report
		if r.CompletenessScore >= a.config.WeakDomainThreshold || r.EntityCount < a.config.WeakDomainMinEntities {
			continue
		}
		severity := valueobjects.SeverityMedium
		if r.CompletenessScore < a.config.WeakDomainHighBelow {
			severity = valueobjects.SeverityHigh
		}
		actions := []string{fmt.Sprintf("Create relationships between %s entities", d.name)}
		for _, c := range r.MissingConcepts {
			actions = append(actions, fmt.Sprintf("Capture material on %s", c))
		}
		gaps = append(gaps, Gap{
			Type:             GapWeakDomain,
			Severity:         severity,
			Confidence:       0.8,
			Title:            fmt.Sprintf("Weak domain: %s", d.name),
			Description:      fmt.Sprintf("%s is %.0f%% complete across %d entities", d.name, r.CompletenessScore*100, r.EntityCount),
			Domain:           d.name,
			AffectedEntities: capIDs(entityIDs(d.members), a.config.MaxAffected),
			SuggestedActions: actions,
		})
	}
	return gaps
}

func (a *GapAnalyzer) conceptualGaps(snap *aggregates.Snapshot, domainOf map[string]string) []Gap {
	var gaps []Gap
	for _, r := range snap.Relationships() {
		if !hierarchicalTypes[r.Type] {
			continue
		}
		if _, ok := domainOf[r.SourceID]; !ok {
			continue
		}
		src, _ := snap.Entity(r.SourceID)
		dst, _ := snap.Entity(r.TargetID)
		if math.Abs(src.Importance-dst.Importance) <= a.config.ConceptualImportanceDelta {
			continue
		}
		gaps = append(gaps, Gap{
			Type:             GapConceptual,
			Severity:         valueobjects.SeverityMedium,
			Confidence:       0.6,
			Title:            fmt.Sprintf("Conceptual gap: %s → %s", src.Title, dst.Title),
			Description:      fmt.Sprintf("%q %s %q but their weight in the collection differs sharply", src.Title, r.Type, dst.Title),
			Domain:           domainOf[r.SourceID],
			AffectedEntities: []string{src.ID, dst.ID},
			SuggestedActions: []string{"Capture intermediate material bridging these concepts"},
		})
	}
	return gaps
}

// missingRelationshipGaps flags domain pairs whose entities overlap in
// keywords or tags but are not linked by any relationship.
func (a *GapAnalyzer) missingRelationshipGaps(snap *aggregates.Snapshot, domains []*domainStats) []Gap {
	features := make(map[string]Features)
	for _, d := range domains {
		for _, e := range d.members {
			features[e.ID] = a.scorer.Features(e)
		}
	}

	var gaps []Gap
	for i := 0; i < len(domains); i++ {
		for j := i + 1; j < len(domains); j++ {
			di, dj := domains[i], domains[j]
			if len(di.members) < 2 || len(dj.members) < 2 {
				continue
			}

			linked := false
			pairs := 0
			affected := make(map[string]bool)
			for _, x := range di.members {
				for _, y := range dj.members {
					if snap.Connected(x.ID, y.ID) {
						linked = true
					}
					if a.scorer.CoOccurrence(features[x.ID], features[y.ID]) >= a.config.CoOccurrenceThreshold {
						pairs++
						affected[x.ID] = true
						affected[y.ID] = true
					}
				}
			}
			if linked || pairs < a.config.MinCoOccurringPairs {
				continue
			}

			severity := valueobjects.SeverityMedium
			if pairs >= 2*a.config.MinCoOccurringPairs+1 {
				severity = valueobjects.SeverityHigh
			}
			ids := make([]string, 0, len(affected))
			for id := range affected {
				ids = append(ids, id)
			}
			sort.Strings(ids)
			gaps = append(gaps, Gap{
				Type:             GapMissingRelationship,
				Severity:         severity,
				Confidence:       0.65,
				Title:            fmt.Sprintf("Missing links: %s ↔ %s", di.name, dj.name),
				Description:      fmt.Sprintf("%d overlapping entity pairs between %s and %s have no relationships", pairs, di.name, dj.name),
				AffectedEntities: capIDs(ids, a.config.MaxAffected),
				SuggestedActions: []string{
					fmt.Sprintf("Add references or related_to relationships between %s and %s", di.name, dj.name),
					"Review relationship suggestions for these entities",
				},
			})
		}
	}
	return gaps
}

func (a *GapAnalyzer) recommendations(analysis *GapAnalysis, all []Gap) []string {
	var recs []string
	if analysis.OverallCompleteness < 0.6 {
		recs = append(recs, fmt.Sprintf("Build more relationships between existing entities (overall completeness %.0f%%)", analysis.OverallCompleteness*100))
	}

	var weak []string
	isolated, conceptual := 0, 0
	for _, g := range all {
		switch g.Type {
		case GapWeakDomain:
			weak = append(weak, g.Domain)
		case GapIsolatedEntity:
			isolated++
		case GapConceptual:
			conceptual++
		}
	}
	if len(weak) > 0 {
		recs = append(recs, fmt.Sprintf("Strengthen weak domains: %s", strings.Join(weak, ", ")))
	}
	if isolated > 5 {
		recs = append(recs, fmt.Sprintf("Review %d isolated entities and connect them to related concepts", isolated))
	}
	if conceptual > 3 {
		recs = append(recs, fmt.Sprintf("Bridge %d conceptual gaps with intermediate material", conceptual))
	}
	if len(recs) == 0 {
		recs = append(recs, "Knowledge graph shows good completeness; keep connecting new captures")
	}
	if len(recs) > a.config.MaxRecommendations {
		recs = recs[:a.config.MaxRecommendations]
	}
	return recs
}

func entityIDs(ents []*entities.Entity) []string {
	ids := make([]string, len(ents))
	for i, e := range ents {
		ids[i] = e.ID
	}
	return ids
}

func capIDs(ids []string, limit int) []string {
	if limit > 0 && len(ids) > limit {
		return ids[:limit]
	}
	return ids
}
