// internal/engine/entities/extractor.go
package entities

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Segment references come in a few spellings plus bare numbers. The
// bare-number pattern over-matches on purpose; callers filter against
// the known segment ids.
var segmentPatterns = []*regexp.Regexp{
	regexp.MustCompile(`segment\s+(\d+)`),
	regexp.MustCompile(`cluster\s+(\d+)`),
	regexp.MustCompile(`group\s+(\d+)`),
	regexp.MustCompile(`\b(\d+)\b`),
}

// Extract pulls the segment numbers mentioned in a query, deduplicated
// and sorted ascending.
func Extract(query string) []int {
	lowered := strings.ToLower(query)

	seen := make(map[int]bool)
	for _, p := range segmentPatterns {
		for _, m := range p.FindAllStringSubmatch(lowered, -1) {
			n, err := strconv.Atoi(m[1])
			if err != nil {
				continue
			}
			seen[n] = true
		}
	}

	numbers := make([]int, 0, len(seen))
	for n := range seen {
		numbers = append(numbers, n)
	}
	sort.Ints(numbers)
	return numbers
}

// ExtractKnown extracts segment numbers and keeps only those present
// in the known id set, preserving ascending order.
func ExtractKnown(query string, known []int) []int {
	valid := make(map[int]bool, len(known))
	for _, id := range known {
		valid[id] = true
	}

	var filtered []int
	for _, n := range Extract(query) {
		if valid[n] {
			filtered = append(filtered, n)
		}
	}
	return filtered
}
