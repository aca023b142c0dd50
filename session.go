package cityfill

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strconv"
	"strings"
)

// duplicateTolerance is how close a new circle's center (degrees) and
// radius (meters) must be to an existing circle to count as the same one.
const duplicateTolerance = 1e-6

// PlacedCircle is a circle on the map. CityKey is the key of the city that
// was guessed, or empty for circles restored without one.
type PlacedCircle struct {
	Center       Point
	RadiusMeters float64
	CityKey      string
}

// Placement reports the effect of placing one circle.
type Placement struct {
	Placed   bool    // false when the circle duplicated an existing one
	Revealed int     // cities revealed for the first time
	Covered  float64 // weight added to the covered total
	Events   []Event
}

// Outcome reports the effect of a guess.
type Outcome struct {
	Rejected bool   // no city matched
	Cities   []City // every city the guess resolved to
	Placed   int    // circles actually added
	Revealed int
	Covered  float64
	Events   []Event
}

// Stats summarises the session for display.
type Stats struct {
	Circles       int
	Revealed      int
	CoveredWeight float64
	TotalWeight   float64
	Percent       float64
}

func (st Stats) String() string {
	return fmt.Sprintf("Circles: %d · Cities Revealed: %d · Map Covered: %s%%",
		st.Circles, st.Revealed, FormatPercent(st.Percent))
}

// FormatPercent prints p with one decimal place, dropping a trailing ".0".
func FormatPercent(p float64) string {
	s := strconv.FormatFloat(p, 'f', 1, 64)
	return strings.TrimSuffix(s, ".0")
}

// Session is one player's quiz state: the circles placed, the cities they
// revealed and the grid samples they cover. A Session is not safe for
// concurrent use.
type Session struct {
	cfg *Config
	log *slog.Logger

	cities   []City
	index    *CityIndex
	resolver *Resolver
	places   *pointIndex
	grid     *CoverageGrid

	circles       []PlacedCircle
	revealed      map[string]struct{}
	labeled       map[string]struct{}
	covered       map[int]struct{}
	coveredWeight float64
}

// NewSession returns an empty session over cities, measuring coverage on
// grid. A nil grid measures nothing and reports zero coverage.
func NewSession(cities []City, grid *CoverageGrid, opts ...Option) *Session {
	return newSession(cities, grid, newConfig(opts))
}

func newSession(cities []City, grid *CoverageGrid, cfg *Config) *Session {
	if grid == nil {
		grid, _ = NewCoverageGrid(nil, nil)
	}
	s := &Session{
		cfg:      cfg,
		log:      cfg.Logger,
		index:    NewCityIndex(nil),
		grid:     grid,
		revealed: make(map[string]struct{}),
		labeled:  make(map[string]struct{}),
		covered:  make(map[int]struct{}),
	}
	s.resolver = NewResolver(s.index)
	s.setCities(cities)
	return s
}

// Start builds a session from the data files: the saved dataset preference
// (or DefaultCutoff), the reference grid over the land boundary, and any
// saved progress. The returned events redraw the restored circles.
func Start(ctx context.Context, opts ...Option) (*Session, []Event, error) {
	cfg := newConfig(opts)

	cutoff := DefaultCutoff
	saved, err := cfg.Store.LoadCutoff(ctx)
	if err != nil {
		cfg.Logger.Warn("ignoring saved dataset preference", "error", err)
	} else if saved != "" {
		if c, err := ParseCutoff(string(saved)); err == nil {
			cutoff = c
		} else {
			cfg.Logger.Warn("ignoring saved dataset preference", "error", err)
		}
	}

	cities, err := LoadDataset(cfg.DataDir, cutoff)
	if err != nil {
		return nil, nil, err
	}
	mask, err := LoadReferenceMask(cfg.DataDir)
	if err != nil {
		return nil, nil, err
	}
	grid, err := BuildCoverageGrid(ReferenceGridConfig(), mask)
	if err != nil {
		return nil, nil, err
	}

	s := newSession(cities, grid, cfg)
	events := s.RestoreSaved(ctx)
	return s, events, nil
}

func (s *Session) setCities(cities []City) {
	s.cities = cities
	s.index.Rebuild(cities)
	points := make([]Point, len(cities))
	for i, c := range cities {
		points[i] = c.Center()
	}
	s.places = newPointIndex(points)
}

// SubmitGuess resolves text and places a circle of radius meters around
// every matching city. When nothing matches the guess is rejected and the
// session is unchanged. Otherwise the events end with a pan to the first
// match.
func (s *Session) SubmitGuess(ctx context.Context, text string, radius float64) Outcome {
	cities := s.resolver.Resolve(text)
	s.cfg.Metrics.guess(len(cities) > 0)
	if len(cities) == 0 {
		s.log.Debug("guess rejected", "text", text)
		return Outcome{Rejected: true}
	}

	out := Outcome{Cities: cities}
	for _, c := range cities {
		p := s.PlaceCircle(ctx, c, radius)
		if p.Placed {
			out.Placed++
		}
		out.Revealed += p.Revealed
		out.Covered += p.Covered
		out.Events = append(out.Events, p.Events...)
	}
	out.Events = append(out.Events, Event{Kind: EventPanTo, Center: cities[0].Center(), Zoom: panZoom})
	return out
}

// PlaceCircle places a circle of radius meters centered on city. A circle
// matching an existing one has no effect.
func (s *Session) PlaceCircle(ctx context.Context, city City, radius float64) Placement {
	return s.place(ctx, city.Center(), radius, city.Key())
}

// place reveals cities, then updates coverage, then persists.
func (s *Session) place(ctx context.Context, center Point, radius float64, key string) Placement {
	if s.isDuplicate(center, radius) {
		return Placement{}
	}
	s.circles = append(s.circles, PlacedCircle{Center: center, RadiusMeters: radius, CityKey: key})

	p := Placement{
		Placed: true,
		Events: []Event{{Kind: EventDrawCircle, Center: center, RadiusMeters: radius}},
	}
	var events []Event
	p.Revealed, events = s.reveal(center, radius, key)
	p.Events = append(p.Events, events...)
	p.Covered = s.cover(center, radius)

	s.persist(ctx)
	s.cfg.Metrics.circlePlaced()
	s.cfg.Metrics.observe(s.Stats())
	return p
}

func (s *Session) isDuplicate(center Point, radius float64) bool {
	for _, c := range s.circles {
		if math.Abs(c.Center.Lat-center.Lat) < duplicateTolerance &&
			math.Abs(c.Center.Lon-center.Lon) < duplicateTolerance &&
			math.Abs(c.RadiusMeters-radius) < duplicateTolerance {
			return true
		}
	}
	return false
}

// reveal marks every city within the circle as revealed, in dataset order.
// The city matching key is labelled; a city revealed earlier by another
// circle gains its label now.
func (s *Session) reveal(center Point, radius float64, key string) (int, []Event) {
	var n int
	var events []Event
	for _, i := range s.places.within(center, radius) {
		c := s.cities[i]
		k := c.Key()
		guessed := key != "" && k == key

		if _, ok := s.revealed[k]; !ok {
			s.revealed[k] = struct{}{}
			n++
			ev := Event{Kind: EventDrawPoint, Center: c.Center(), Key: k}
			if guessed {
				s.labeled[k] = struct{}{}
				ev.Label = c.Label()
			}
			events = append(events, ev)
			continue
		}
		if _, ok := s.labeled[k]; guessed && !ok {
			s.labeled[k] = struct{}{}
			events = append(events, Event{Kind: EventLabelPoint, Center: c.Center(), Key: k, Label: c.Label()})
		}
	}
	return n, events
}

// cover adds the weight of newly covered grid samples and returns it.
func (s *Session) cover(center Point, radius float64) float64 {
	var added float64
	for _, i := range s.grid.Within(center, radius) {
		if _, ok := s.covered[i]; ok {
			continue
		}
		s.covered[i] = struct{}{}
		added += s.grid.Weights[i]
	}
	s.coveredWeight += added
	return added
}

func (s *Session) savedCircles() []SavedCircle {
	out := make([]SavedCircle, len(s.circles))
	for i, c := range s.circles {
		out[i] = SavedCircle{Lat: c.Center.Lat, Lon: c.Center.Lon, Radius: c.RadiusMeters, Key: c.CityKey}
	}
	return out
}

func (s *Session) persist(ctx context.Context) {
	if err := s.cfg.Store.SaveCircles(ctx, s.savedCircles()); err != nil {
		s.cfg.Metrics.persistFailed()
		s.log.Warn("saving progress failed", "error", err)
	}
}

// clear drops circles, reveals and coverage without touching the store.
func (s *Session) clear() []Event {
	s.circles = nil
	s.revealed = make(map[string]struct{})
	s.labeled = make(map[string]struct{})
	s.covered = make(map[int]struct{})
	s.coveredWeight = 0
	return []Event{{Kind: EventClearCircles}, {Kind: EventClearPoints}}
}

// Reset clears the session and the saved progress.
func (s *Session) Reset(ctx context.Context) []Event {
	events := s.clear()
	if err := s.cfg.Store.ClearCircles(ctx); err != nil {
		s.cfg.Metrics.persistFailed()
		s.log.Warn("clearing progress failed", "error", err)
	}
	s.cfg.Metrics.observe(s.Stats())
	return events
}

// SwitchDataset replaces the active cities, keeping every circle. Reveals
// and labels are recomputed against the new cities in circle order;
// coverage is unaffected since the grid does not depend on the dataset.
func (s *Session) SwitchDataset(cities []City) []Event {
	s.setCities(cities)
	s.revealed = make(map[string]struct{})
	s.labeled = make(map[string]struct{})

	events := []Event{{Kind: EventClearPoints}}
	for _, c := range s.circles {
		_, evs := s.reveal(c.Center, c.RadiusMeters, c.CityKey)
		events = append(events, evs...)
	}
	s.cfg.Metrics.observe(s.Stats())
	return events
}

// SelectCutoff loads the dataset for cutoff, switches to it and saves the
// preference. The session is unchanged if the dataset cannot be loaded.
func (s *Session) SelectCutoff(ctx context.Context, cutoff Cutoff) ([]Event, error) {
	cities, err := LoadDataset(s.cfg.DataDir, cutoff)
	if err != nil {
		return nil, err
	}
	events := s.SwitchDataset(cities)
	if err := s.cfg.Store.SaveCutoff(ctx, cutoff); err != nil {
		s.cfg.Metrics.persistFailed()
		s.log.Warn("saving dataset preference failed", "error", err)
	}
	return events, nil
}

// Restore clears the session and replays saved circles in order. A circle
// whose key names a city in the active dataset labels that city; any other
// circle keeps its key so a later dataset switch can still label it.
func (s *Session) Restore(ctx context.Context, saved []SavedCircle) []Event {
	events := s.clear()
	for _, sc := range saved {
		center := Point{Lat: sc.Lat, Lon: sc.Lon}
		if c, ok := s.index.ByKey(sc.Key); ok && sc.Key != "" {
			center = c.Center()
		}
		p := s.place(ctx, center, sc.Radius, sc.Key)
		events = append(events, p.Events...)
	}
	s.cfg.Metrics.observe(s.Stats())
	return events
}

// RestoreSaved restores the progress held by the store. Missing or corrupt
// progress leaves the session empty.
func (s *Session) RestoreSaved(ctx context.Context) []Event {
	saved, err := s.cfg.Store.LoadCircles(ctx)
	if err != nil {
		s.log.Warn("ignoring saved progress", "error", err)
		return nil
	}
	if len(saved) == 0 {
		return nil
	}
	return s.Restore(ctx, saved)
}

// Stats returns the current counters.
func (s *Session) Stats() Stats {
	st := Stats{
		Circles:       len(s.circles),
		Revealed:      len(s.revealed),
		CoveredWeight: s.coveredWeight,
		TotalWeight:   s.grid.TotalWeight,
	}
	if st.TotalWeight > 0 {
		st.Percent = 100 * st.CoveredWeight / st.TotalWeight
	}
	return st
}

// CircleCount returns the number of circles placed.
func (s *Session) CircleCount() int { return len(s.circles) }

// RevealedCount returns the number of distinct cities revealed.
func (s *Session) RevealedCount() int { return len(s.revealed) }

// CoveredWeight returns the total weight of covered grid samples.
func (s *Session) CoveredWeight() float64 { return s.coveredWeight }

// CoveredPercent returns the covered share of the grid, 0 to 100.
func (s *Session) CoveredPercent() float64 { return s.Stats().Percent }

// Circles returns a copy of the placed circles in placement order.
func (s *Session) Circles() []PlacedCircle {
	out := make([]PlacedCircle, len(s.circles))
	copy(out, s.circles)
	return out
}

// IsRevealed reports whether the city with key has been revealed.
func (s *Session) IsRevealed(key string) bool {
	_, ok := s.revealed[key]
	return ok
}

// IsLabeled reports whether the city with key carries a persistent label.
func (s *Session) IsLabeled(key string) bool {
	_, ok := s.labeled[key]
	return ok
}

// CoveredIndices returns the covered grid sample indices in ascending order.
func (s *Session) CoveredIndices() []int {
	out := make([]int, 0, len(s.covered))
	for i := range s.covered {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}

// Cities returns the active dataset.
func (s *Session) Cities() []City { return s.cities }

// Grid returns the coverage grid.
func (s *Session) Grid() *CoverageGrid { return s.grid }
