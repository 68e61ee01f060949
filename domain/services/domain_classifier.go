package services

import (
	"strings"

	"github.com/pranavrajput12/PRSNL-sub011/domain/core/entities"
)

// Knowledge domains assigned to entities captured without a domain label.
const (
	DomainTechnology  = "Technology"
	DomainMarketing   = "Digital Marketing"
	DomainAI          = "Artificial Intelligence"
	DomainDesign      = "Design"
	DomainBusiness    = "Business"
	DomainDataScience = "Data Science"
	DomainGeneral     = "General Knowledge"
)

type domainRule struct {
	domain   string
	keywords []string
}

// Rules are checked in order; the first match wins.
var domainRules = []domainRule{
	{DomainTechnology, []string{"javascript", "python", "react", "code", "programming", "api", "framework", "golang", "kubernetes", "database"}},
	{DomainMarketing, []string{"seo", "marketing", "content", "traffic", "optimization", "keyword", "campaign"}},
	{DomainAI, []string{"ai", "machine learning", "artificial intelligence", "neural", "model", "chatbot", "llm", "embedding"}},
	{DomainDesign, []string{"design", "ui", "ux", "user experience", "interface", "visual", "typography"}},
	{DomainBusiness, []string{"business", "strategy", "management", "leadership", "entrepreneurship", "startup"}},
	{DomainDataScience, []string{"data", "analytics", "analysis", "statistics", "metrics", "visualization"}},
}

// domainComplexity scales how many relationships a domain is expected to hold per entity.
var domainComplexity = map[string]float64{
	DomainTechnology:  2.5,
	DomainAI:          2.0,
	DomainDataScience: 2.0,
	DomainMarketing:   1.5,
	DomainDesign:      1.5,
	DomainBusiness:    1.8,
	DomainGeneral:     1.0,
}

var foundationalConcepts = map[string][]string{
	DomainTechnology:  {"fundamentals", "best practices", "architecture", "testing", "deployment"},
	DomainAI:          {"algorithms", "training", "data preprocessing", "evaluation", "ethics"},
	DomainMarketing:   {"analytics", "conversion", "audience", "strategy", "metrics"},
	DomainDesign:      {"principles", "accessibility", "user research", "prototyping", "testing"},
	DomainBusiness:    {"strategy", "analysis", "planning", "execution", "metrics"},
	DomainDataScience: {"statistics", "visualization", "modeling", "validation", "interpretation"},
}

// ClassifyDomain returns the entity's own domain, or infers one from its
// title and summary. Single words match whole tokens; phrases match as
// substrings.
func ClassifyDomain(e *entities.Entity, analyzer TextAnalyzer) string {
	if e.Domain != "" {
		return e.Domain
	}

	text := strings.ToLower(e.Text())
	tokens := make(map[string]bool)
	for _, w := range analyzer.Tokenize(text) {
		tokens[w] = true
	}

	for _, rule := range domainRules {
		for _, kw := range rule.keywords {
			if strings.Contains(kw, " ") {
				if strings.Contains(text, kw) {
					return rule.domain
				}
			} else if tokens[kw] {
				return rule.domain
			}
		}
	}
	return DomainGeneral
}

func complexityFactor(domain string) float64 {
	if f, ok := domainComplexity[domain]; ok {
		return f
	}
	return 1.0
}

// missingConcepts lists up to limit foundational concepts of a known domain
// that no entity title mentions.
func missingConcepts(domain string, members []*entities.Entity, limit int) []string {
	titles := make([]string, len(members))
	for i, e := range members {
		titles[i] = strings.ToLower(e.Title)
	}

	var missing []string
	for _, concept := range foundationalConcepts[domain] {
		found := false
		for _, t := range titles {
			if strings.Contains(t, concept) {
				found = true
				break
			}
		}
		if !found {
			missing = append(missing, titleCase(concept))
		}
		if len(missing) == limit {
			break
		}
	}
	return missing
}
