package cityfill

import (
	"sort"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// City is one record of a city dataset. Records are loaded in bulk and never
// modified.
type City struct {
	Name       string  `json:"name"`
	State      string  `json:"state"`
	Lat        float64 `json:"lat"`
	Lon        float64 `json:"lon"`
	Population int     `json:"pop,omitempty"`
}

// Label returns the display label, e.g. "Austin, TX".
func (c City) Label() string {
	return c.Name + ", " + c.State
}

// Key returns the composite identity of the record: name, state and the
// exact coordinates. Two records are the same city only if all four match.
func (c City) Key() string {
	return c.Name + "|" + c.State + "|" + formatCoord(c.Lat) + "|" + formatCoord(c.Lon)
}

// Center returns the city's position.
func (c City) Center() Point {
	return Point{Lat: c.Lat, Lon: c.Lon}
}

// formatCoord prints the shortest representation that parses back to v.
func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// sortByPopulation orders cities by population, largest first. The sort is
// stable so equal populations keep dataset order.
func sortByPopulation(cities []City) {
	sort.SliceStable(cities, func(i, j int) bool {
		return cities[i].Population > cities[j].Population
	})
}

// Normalize derives the lookup key for free text: accents are decomposed
// and dropped, every run of characters that are neither letters nor digits
// becomes a single space, and the result is trimmed and lowercased.
//
//	Normalize("  St. Louis,MO ") == "st louis mo"
//	Normalize("Española")        == "espanola"
func Normalize(s string) string {
	folded, _, err := transform.String(accentFolder(), s)
	if err != nil {
		folded = norm.NFKD.String(s)
	}

	var b strings.Builder
	b.Grow(len(folded))
	gap := false
	for _, r := range folded {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			if gap && b.Len() > 0 {
				b.WriteByte(' ')
			}
			gap = false
			b.WriteRune(r)
			continue
		}
		gap = true
	}
	return strings.ToLower(b.String())
}

// accentFolder returns a fresh transformer; transform chains keep state and
// are not safe to share.
func accentFolder() transform.Transformer {
	return transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))
}
