// internal/engine/intent/classifier.go
package intent

import (
	"regexp"
	"strings"
)

// Intent is a business query category.
type Intent string

const (
	SegmentAnalysis   Intent = "segment_analysis"
	Comparison        Intent = "comparison"
	ChurnAnalysis     Intent = "churn_analysis"
	MarketingStrategy Intent = "marketing_strategy"
	CustomerBehavior  Intent = "customer_behavior"
	BusinessMetrics   Intent = "business_metrics"
	General           Intent = "general"
)

type rule struct {
	intent   Intent
	patterns []*regexp.Regexp
}

// rules are checked in order and the first matching pattern wins, so
// earlier intents take priority over later ones.
var rules = []rule{
	{SegmentAnalysis, compile(
		`segment.*analysis`, `analyze.*segment`, `segment.*performance`,
		`which.*segment`, `best.*segment`, `profitable.*segment`,
	)},
	{Comparison, compile(
		`compare.*segment`, `segment.*vs`, `difference.*between`,
		`segment.*comparison`, `versus`, `vs`,
	)},
	{ChurnAnalysis, compile(
		`churn.*risk`, `retention`, `customer.*leaving`,
		`why.*churn`, `prevent.*churn`, `at.*risk`,
	)},
	{MarketingStrategy, compile(
		`marketing.*strategy`, `campaign`, `promote`,
		`target.*customer`, `recommendation`, `suggest.*marketing`,
	)},
	{CustomerBehavior, compile(
		`customer.*behavior`, `buying.*pattern`, `purchase.*pattern`,
		`customer.*characteristics`, `why.*customer`,
	)},
	{BusinessMetrics, compile(
		`revenue`, `profit`, `clv`, `lifetime.*value`,
		`total.*sales`, `performance.*metric`,
	)},
}

func compile(patterns ...string) []*regexp.Regexp {
	compiled := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		compiled[i] = regexp.MustCompile(p)
	}
	return compiled
}

// Classify maps a free-form query to its intent. Matching is
// case-insensitive and unknown queries fall through to General.
func Classify(query string) Intent {
	lowered := strings.ToLower(query)
	for _, r := range rules {
		for _, p := range r.patterns {
			if p.MatchString(lowered) {
				return r.intent
			}
		}
	}
	return General
}

// Supported lists the recognized intents in priority order, General
// excluded.
func Supported() []Intent {
	intents := make([]Intent, len(rules))
	for i, r := range rules {
		intents[i] = r.intent
	}
	return intents
}
