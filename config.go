package cityfill

import (
	"log/slog"
	"strings"
)

// Config contains configuration options for a quiz session.
type Config struct {
	DataDir string       // Directory whose files override the embedded data (default: "./cityfill-data")
	Store   Store        // Progress persistence (default: in-memory)
	Logger  *slog.Logger // Logger for swallowed errors (default: slog.Default())
	Metrics *Metrics     // Optional prometheus metrics
}

// Option is a functional option for configuring a Session.
type Option func(*Config)

// WithDataDir sets the directory checked for data files before the embedded copies.
func WithDataDir(dir string) Option {
	return func(c *Config) {
		c.DataDir = dir
	}
}

// WithStore sets where progress and the dataset preference are saved.
func WithStore(s Store) Option {
	return func(c *Config) {
		c.Store = s
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Config) {
		c.Logger = l
	}
}

// WithMetrics records session activity in m.
func WithMetrics(m *Metrics) Option {
	return func(c *Config) {
		c.Metrics = m
	}
}

// defaultConfig returns the default configuration.
func defaultConfig() *Config {
	return &Config{
		DataDir: "./cityfill-data",
	}
}

func newConfig(opts []Option) *Config {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.Store == nil {
		cfg.Store = NewMemoryStore()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return cfg
}

// Difficulty selects the radius of the circle placed around a guess.
type Difficulty string

const (
	DifficultyMega   Difficulty = "mega"
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

var difficultyRadii = map[Difficulty]float64{
	DifficultyMega:   2_000_000,
	DifficultyEasy:   300_000,
	DifficultyMedium: 180_000,
	DifficultyHard:   100_000,
}

// ParseDifficulty maps s to a difficulty, falling back to medium for
// anything unrecognised.
func ParseDifficulty(s string) Difficulty {
	d := Difficulty(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := difficultyRadii[d]; ok {
		return d
	}
	return DifficultyMedium
}

// RadiusMeters returns the circle radius for d. Unknown difficulties get
// the medium radius.
func (d Difficulty) RadiusMeters() float64 {
	if r, ok := difficultyRadii[d]; ok {
		return r
	}
	return difficultyRadii[DifficultyMedium]
}
