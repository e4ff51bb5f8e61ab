// Package parser turns a raw query into the distinct index terms to score.
package parser

import (
	"strings"

	"github.com/Adithya-Monish-Kumar-K/News-Retrieval-Platform/internal/normalizer"
)

type QueryType int

const (
	// QueryOR scores every document containing at least one term.
	QueryOR QueryType = iota
	// QueryAND keeps only documents containing every term.
	QueryAND
)

// QueryPlan is the normalized form of a query. Terms and ExcludeTerms hold
// distinct terms in first-occurrence order.
type QueryPlan struct {
	Terms        []string
	Type         QueryType
	ExcludeTerms []string
	RawQuery     string
}

// Empty reports whether the query has nothing to score.
func (p *QueryPlan) Empty() bool {
	return len(p.Terms) == 0
}

// Parse normalizes query with n. The upper-case words AND, OR and NOT act as
// operators: AND switches to conjunctive matching, NOT excludes documents
// containing the following word. Without operators the whole query goes
// through the normalizer exactly as document text does.
func Parse(query string, n *normalizer.Normalizer) *QueryPlan {
	plan := &QueryPlan{
		Terms:        make([]string, 0),
		ExcludeTerms: make([]string, 0),
		Type:         QueryOR,
		RawQuery:     query,
	}
	if strings.TrimSpace(query) == "" {
		return plan
	}
	words := strings.Fields(query)
	if !hasOperator(words) {
		plan.Terms = appendDistinct(plan.Terms, n.Normalize(query))
		return plan
	}

	var pending []string
	flush := func() {
		if len(pending) > 0 {
			plan.Terms = appendDistinct(plan.Terms, n.Normalize(strings.Join(pending, " ")))
			pending = pending[:0]
		}
	}
	excludeNext := false
	for _, word := range words {
		switch word {
		case "AND":
			flush()
			plan.Type = QueryAND
			continue
		case "OR":
			flush()
			continue
		case "NOT":
			flush()
			excludeNext = true
			continue
		}
		if excludeNext {
			plan.ExcludeTerms = appendDistinct(plan.ExcludeTerms, n.Normalize(word))
			excludeNext = false
			continue
		}
		pending = append(pending, word)
	}
	flush()
	return plan
}

func hasOperator(words []string) bool {
	for _, w := range words {
		if w == "AND" || w == "OR" || w == "NOT" {
			return true
		}
	}
	return false
}

func appendDistinct(dst, terms []string) []string {
	for _, t := range terms {
		dup := false
		for _, existing := range dst {
			if existing == t {
				dup = true
				break
			}
		}
		if !dup {
			dst = append(dst, t)
		}
	}
	return dst
}
