package cityfill

import (
	"fmt"
	"io"
)

// Minimum record counts for the shipped datasets.
const (
	min50kCities = 100
	min30kCities = 110
)

// knownGuesses are queries whose resolution must not change.
var knownGuesses = []struct {
	query     string
	wantCount int
	wantFirst string // label of the first match
}{
	{"Springfield, IL", 1, "Springfield, IL"},
	{"springfield mo", 1, "Springfield, MO"},
	{"Sprngfeld, IL", 1, "Springfield, IL"},
	{"St Louis", 1, "Saint Louis, MO"},
	{"ft worth", 1, "Fort Worth, TX"},
	{"Mt Vernon, NY", 1, "Mount Vernon, NY"},
	{"Austin, TX", 1, "Austin, TX"},
	{"Springfield", 5, "Springfield, MO"},
}

// knownPoints are positions whose land classification must not change.
var knownPoints = []struct {
	name string
	p    Point
	land bool
}{
	{"Denver", Point{Lat: 39.74, Lon: -104.99}, true},
	{"Chicago", Point{Lat: 41.88, Lon: -87.63}, true},
	{"Gulf of Mexico", Point{Lat: 26.0, Lon: -90.0}, false},
	{"Pacific", Point{Lat: 40.0, Lon: -128.0}, false},
	{"Great Salt Lake", Point{Lat: 41.2, Lon: -112.5}, false},
}

// ValidateData loads the datasets and the land boundary from dataDir (or
// the embedded copies) and checks them against known answers, writing
// progress to w. It returns the first failure.
func ValidateData(dataDir string, w io.Writer) error {
	sets := make(map[Cutoff][]City)
	for _, cutoff := range []Cutoff{Cutoff50k, Cutoff30k} {
		cities, err := LoadDataset(dataDir, cutoff)
		if err != nil {
			return fmt.Errorf("failed to load dataset: %w", err)
		}
		sets[cutoff] = cities
	}

	if n := len(sets[Cutoff50k]); n < min50kCities {
		return fmt.Errorf("50k city count too low: got %d, want >= %d", n, min50kCities)
	}
	if n := len(sets[Cutoff30k]); n < min30kCities {
		return fmt.Errorf("30k city count too low: got %d, want >= %d", n, min30kCities)
	}
	fmt.Fprintf(w, "      City count: %d / %d (OK)\n", len(sets[Cutoff50k]), len(sets[Cutoff30k]))

	for cutoff, cities := range sets {
		floor := 50_000
		if cutoff == Cutoff30k {
			floor = 30_000
		}
		for _, c := range cities {
			if !IsRegion(c.State) {
				return fmt.Errorf("%s: %s has unknown region %q", cutoff, c.Label(), c.State)
			}
			if c.Population < floor {
				return fmt.Errorf("%s: %s population %d below cutoff", cutoff, c.Label(), c.Population)
			}
		}
	}
	larger := make(map[string]bool, len(sets[Cutoff30k]))
	for _, c := range sets[Cutoff30k] {
		larger[c.Key()] = true
	}
	for _, c := range sets[Cutoff50k] {
		if !larger[c.Key()] {
			return fmt.Errorf("%s is in the 50k dataset but not the 30k dataset", c.Label())
		}
	}
	fmt.Fprintf(w, "      Regions and cutoffs: OK\n")

	fmt.Fprintf(w, "      Guess resolution: ")
	resolver := NewResolver(NewCityIndex(sets[Cutoff50k]))
	for _, tc := range knownGuesses {
		got := resolver.Resolve(tc.query)
		if len(got) != tc.wantCount {
			return fmt.Errorf("resolve(%q) returned %d cities, want %d", tc.query, len(got), tc.wantCount)
		}
		if got[0].Label() != tc.wantFirst {
			return fmt.Errorf("resolve(%q) = %q, want %q", tc.query, got[0].Label(), tc.wantFirst)
		}
	}
	fmt.Fprintf(w, "%d queries OK\n", len(knownGuesses))

	mask, err := LoadReferenceMask(dataDir)
	if err != nil {
		return fmt.Errorf("failed to load land boundary: %w", err)
	}
	fmt.Fprintf(w, "      Land boundary: ")
	for _, tc := range knownPoints {
		if got := mask.Contains(tc.p); got != tc.land {
			return fmt.Errorf("land(%s) = %v, want %v", tc.name, got, tc.land)
		}
	}
	fmt.Fprintf(w, "%d points OK\n", len(knownPoints))

	grid, err := BuildCoverageGrid(ReferenceGridConfig(), mask)
	if err != nil {
		return fmt.Errorf("failed to build reference grid: %w", err)
	}
	if grid.Len() == 0 || grid.TotalWeight <= 0 {
		return fmt.Errorf("reference grid is empty")
	}
	fmt.Fprintf(w, "      Reference grid: %d samples (OK)\n", grid.Len())

	return nil
}
