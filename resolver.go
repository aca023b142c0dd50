package cityfill

import (
	"math"
	"regexp"
	"strings"
	"sync"
)

// stateSuffixRegex splits a normalized query into a name and a trailing
// two-letter region code, e.g. "springfield il" → ("springfield", "il").
var stateSuffixRegex = sync.OnceValue(func() *regexp.Regexp {
	return regexp.MustCompile(`(?i)^(.*?)[ ,]+([a-z]{2})$`)
})

// abbreviations are whole-word expansions tried when the literal name is
// not in the index.
var abbreviations = sync.OnceValue(func() []abbreviation {
	return []abbreviation{
		{regexp.MustCompile(`(^|\s)st\b`), "${1}saint"},
		{regexp.MustCompile(`(^|\s)ft\b`), "${1}fort"},
		{regexp.MustCompile(`(^|\s)mt\b`), "${1}mount"},
	}
})

type abbreviation struct {
	re  *regexp.Regexp
	rep string
}

// Population bias used to break near-ties in fuzzy matching. A group's
// score is its edit distance minus min(pop/populationBiasScale,
// maxPopulationBias); the bias never exceeds one edit.
const (
	populationBiasScale = 1e7
	maxPopulationBias   = 0.1
)

// maxQueryLen caps the runes of a guess considered by Resolve. Longer input
// is truncated so edit-distance scans stay bounded.
const maxQueryLen = 100

// Resolver maps free-text guesses to city records.
type Resolver struct {
	index *CityIndex
}

// NewResolver returns a resolver reading from idx. The resolver sees later
// rebuilds of idx.
func NewResolver(idx *CityIndex) *Resolver {
	return &Resolver{index: idx}
}

// Resolve returns the cities best matching input, or nil when nothing
// matches. Stages run in order and the first one producing a candidate
// wins:
//
//  1. exact "name, state" label
//  2. exact name, optionally filtered by a trailing two-letter state code
//  3. the same after expanding st/ft/mt
//  4. the first label starting with the input
//  5. the closest name by bounded edit distance, biased toward big cities
//
// Multiple results are ordered by population, largest first.
func (r *Resolver) Resolve(input string) []City {
	if runes := []rune(input); len(runes) > maxQueryLen {
		input = string(runes[:maxQueryLen])
	}
	query := Normalize(input)
	if query == "" {
		return nil
	}

	if c, ok := r.index.ByLabel(query); ok {
		return []City{c}
	}

	name, state := splitState(query)
	if found := r.byName(name, state); len(found) > 0 {
		return found
	}

	expanded := expandAbbreviations(name)
	if expanded != name {
		if found := r.byName(expanded, state); len(found) > 0 {
			return found
		}
	}

	for _, label := range r.index.labelOrder {
		if strings.HasPrefix(label, query) {
			c, _ := r.index.ByLabel(label)
			return []City{c}
		}
	}

	return r.fuzzy(expanded, state)
}

// byName returns the records named name in the given state (any state when
// state is empty), largest first.
func (r *Resolver) byName(name, state string) []City {
	found := filterState(r.index.ByName(name), state)
	sortByPopulation(found)
	return found
}

func (r *Resolver) fuzzy(name, state string) []City {
	thresh := fuzzyThreshold(name)

	var best []City
	bestScore := math.Inf(1)
	for _, key := range r.index.nameOrder {
		d := boundedEditDistance(name, key, thresh)
		if d > thresh {
			continue
		}
		group := r.index.byName[key]
		if state != "" && !hasState(group, state) {
			continue
		}
		score := float64(d) - math.Min(float64(topPopulation(group))/populationBiasScale, maxPopulationBias)
		if score < bestScore {
			bestScore = score
			best = group
		}
	}
	if best == nil {
		return nil
	}

	out := make([]City, len(best))
	copy(out, best)
	out = filterState(out, state)
	sortByPopulation(out)
	return out
}

// splitState separates a trailing two-letter region code from a normalized
// query. The code is returned upper-cased, or empty when there is none.
func splitState(query string) (name, state string) {
	m := stateSuffixRegex().FindStringSubmatch(query)
	if m == nil {
		return query, ""
	}
	return strings.TrimSpace(m[1]), strings.ToUpper(m[2])
}

func expandAbbreviations(name string) string {
	for _, a := range abbreviations() {
		name = a.re.ReplaceAllString(name, a.rep)
	}
	return name
}

// fuzzyThreshold scales the tolerated edit distance with the query length.
func fuzzyThreshold(s string) int {
	n := len([]rune(s))
	switch {
	case n <= 6:
		return 2
	case n <= 10:
		return 3
	default:
		return 4
	}
}

func filterState(cities []City, state string) []City {
	if state == "" {
		return cities
	}
	out := cities[:0]
	for _, c := range cities {
		if strings.EqualFold(c.State, state) {
			out = append(out, c)
		}
	}
	return out
}

func hasState(cities []City, state string) bool {
	for _, c := range cities {
		if strings.EqualFold(c.State, state) {
			return true
		}
	}
	return false
}

func topPopulation(cities []City) int {
	top := 0
	for i, c := range cities {
		if i == 0 || c.Population > top {
			top = c.Population
		}
	}
	return top
}

// boundedEditDistance returns the Levenshtein distance between a and b
// counted in runes, or limit+1 whenever the distance exceeds limit. The
// scan stops early when the lengths differ by more than limit or when every
// cell of the current row already does.
func boundedEditDistance(a, b string, limit int) int {
	ar, br := []rune(a), []rune(b)
	if diff := len(ar) - len(br); diff > limit || -diff > limit {
		return limit + 1
	}

	row := make([]int, len(br)+1)
	for j := range row {
		row[j] = j
	}
	for i := 1; i <= len(ar); i++ {
		prev := row[0]
		row[0] = i
		rowMin := row[0]
		for j := 1; j <= len(br); j++ {
			cur := row[j]
			cost := 1
			if ar[i-1] == br[j-1] {
				cost = 0
			}
			row[j] = min(row[j]+1, row[j-1]+1, prev+cost)
			prev = cur
			if row[j] < rowMin {
				rowMin = row[j]
			}
		}
		if rowMin > limit {
			return limit + 1
		}
	}
	return min(row[len(br)], limit+1)
}
