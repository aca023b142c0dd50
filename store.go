package cityfill

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sync"
)

// Storage keys. They match the keys the browser version of the quiz kept in
// localStorage, so exported progress can be moved between the two.
const (
	progressKey = "uscf_progress_v1"
	cutoffKey   = "uscf_cutoff"
)

// progressVersion is the payload version written by SaveCircles.
const progressVersion = 1

// SavedCircle is the persisted form of a placed circle.
type SavedCircle struct {
	Lat    float64 `json:"lat"`
	Lon    float64 `json:"lon"`
	Radius float64 `json:"radius"`
	Key    string  `json:"guessedKey,omitempty"`
}

// Store persists session progress and the dataset preference.
//
// Implementations report failures through errors; the session logs and
// ignores them, so a store that is unavailable only costs persistence.
// LoadCircles and LoadCutoff return (nil, nil) and ("", nil) when nothing has
// been saved.
type Store interface {
	SaveCircles(ctx context.Context, circles []SavedCircle) error
	LoadCircles(ctx context.Context) ([]SavedCircle, error)
	ClearCircles(ctx context.Context) error
	SaveCutoff(ctx context.Context, cutoff Cutoff) error
	LoadCutoff(ctx context.Context) (Cutoff, error)
}

type progressPayload struct {
	V       int           `json:"v"`
	Circles []SavedCircle `json:"circles"`
}

func encodeProgress(circles []SavedCircle) ([]byte, error) {
	if circles == nil {
		circles = []SavedCircle{}
	}
	return json.Marshal(progressPayload{V: progressVersion, Circles: circles})
}

// decodeProgress parses a saved payload. A payload without a circles array,
// or with a circle that could never have been placed, is corrupt.
func decodeProgress(data []byte) ([]SavedCircle, error) {
	var raw struct {
		V       int            `json:"v"`
		Circles *[]SavedCircle `json:"circles"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decoding progress: %w", err)
	}
	if raw.Circles == nil {
		return nil, errors.New("decoding progress: missing circles")
	}
	for i, c := range *raw.Circles {
		if !validCoord(c.Lat, 90) || !validCoord(c.Lon, 180) || !(c.Radius >= 0) || math.IsInf(c.Radius, 1) {
			return nil, fmt.Errorf("decoding progress: circle %d is out of range", i)
		}
	}
	return *raw.Circles, nil
}

func validCoord(v, limit float64) bool {
	return v >= -limit && v <= limit
}

// MemoryStore keeps progress in memory. It is safe for concurrent use.
type MemoryStore struct {
	mu      sync.Mutex
	circles []byte
	cutoff  Cutoff
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) SaveCircles(_ context.Context, circles []SavedCircle) error {
	b, err := encodeProgress(circles)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.circles = b
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) LoadCircles(_ context.Context) ([]SavedCircle, error) {
	m.mu.Lock()
	b := m.circles
	m.mu.Unlock()
	if b == nil {
		return nil, nil
	}
	return decodeProgress(b)
}

func (m *MemoryStore) ClearCircles(_ context.Context) error {
	m.mu.Lock()
	m.circles = nil
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) SaveCutoff(_ context.Context, cutoff Cutoff) error {
	m.mu.Lock()
	m.cutoff = cutoff
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) LoadCutoff(_ context.Context) (Cutoff, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cutoff, nil
}

// FileStore keeps one file per key in a directory.
type FileStore struct {
	dir string
}

// NewFileStore returns a store writing under dir. The directory is created
// on first save.
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

func (f *FileStore) path(key string) string {
	return filepath.Join(f.dir, key+".json")
}

// write replaces the file atomically so a crash never leaves a torn payload.
func (f *FileStore) write(key string, data []byte) error {
	if err := os.MkdirAll(f.dir, 0755); err != nil {
		return fmt.Errorf("creating store directory: %w", err)
	}
	tmp, err := os.CreateTemp(f.dir, key+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	success := false
	defer func() {
		tmp.Close()
		if !success {
			os.Remove(tmp.Name())
		}
	}()
	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("writing %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", key, err)
	}
	if err := os.Rename(tmp.Name(), f.path(key)); err != nil {
		return fmt.Errorf("renaming %s: %w", key, err)
	}
	success = true
	return nil
}

func (f *FileStore) read(key string) ([]byte, error) {
	b, err := os.ReadFile(f.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", key, err)
	}
	return b, nil
}

func (f *FileStore) SaveCircles(_ context.Context, circles []SavedCircle) error {
	b, err := encodeProgress(circles)
	if err != nil {
		return err
	}
	return f.write(progressKey, b)
}

func (f *FileStore) LoadCircles(_ context.Context) ([]SavedCircle, error) {
	b, err := f.read(progressKey)
	if err != nil || b == nil {
		return nil, err
	}
	return decodeProgress(b)
}

func (f *FileStore) ClearCircles(_ context.Context) error {
	err := os.Remove(f.path(progressKey))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing progress: %w", err)
	}
	return nil
}

func (f *FileStore) SaveCutoff(_ context.Context, cutoff Cutoff) error {
	b, err := json.Marshal(string(cutoff))
	if err != nil {
		return err
	}
	return f.write(cutoffKey, b)
}

func (f *FileStore) LoadCutoff(_ context.Context) (Cutoff, error) {
	b, err := f.read(cutoffKey)
	if err != nil || b == nil {
		return "", err
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return "", fmt.Errorf("decoding cutoff: %w", err)
	}
	return Cutoff(s), nil
}
