package cityfill

import (
	"compress/bzip2"
	"embed"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

//go:embed cityfill-data
var embeddedData embed.FS

// embeddedDir is the directory name inside embeddedData.
const embeddedDir = "cityfill-data"

// Cutoff selects a city dataset by minimum population.
type Cutoff string

const (
	Cutoff50k Cutoff = "50k" // cities with at least 50,000 people
	Cutoff30k Cutoff = "30k" // cities with at least 30,000 people
)

// DefaultCutoff is used when no preference has been saved.
const DefaultCutoff = Cutoff50k

// ErrUnknownCutoff is returned for cutoffs other than "50k" and "30k".
var ErrUnknownCutoff = errors.New("unknown dataset cutoff")

// ParseCutoff validates s.
func ParseCutoff(s string) (Cutoff, error) {
	switch c := Cutoff(strings.TrimSpace(s)); c {
	case Cutoff50k, Cutoff30k:
		return c, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownCutoff, s)
	}
}

func (c Cutoff) fileName() string {
	return "cities-" + string(c) + ".csv"
}

// landBoundaryFile is the GeoJSON land boundary of the contiguous US.
const landBoundaryFile = "us-land.geojson"

// LoadDataset returns the city records for cutoff. Files under dataDir take
// precedence over the embedded copies; either may be bzip2-compressed with
// a .bz2 suffix.
func LoadDataset(dataDir string, cutoff Cutoff) ([]City, error) {
	if _, err := ParseCutoff(string(cutoff)); err != nil {
		return nil, err
	}
	r, cleanup, err := openOptionallyBzippedFile(dataDir, cutoff.fileName())
	if err != nil {
		return nil, fmt.Errorf("loading dataset %s: %w", cutoff, err)
	}
	defer cleanup()

	cities, err := ParseCities(r)
	if err != nil {
		return nil, fmt.Errorf("loading dataset %s: %w", cutoff, err)
	}
	return cities, nil
}

// LoadReferenceMask returns the land boundary used by the reference grid.
func LoadReferenceMask(dataDir string) (*LandMask, error) {
	r, cleanup, err := openOptionallyBzippedFile(dataDir, landBoundaryFile)
	if err != nil {
		return nil, fmt.Errorf("loading land boundary: %w", err)
	}
	defer cleanup()

	m, err := LoadLandMask(r)
	if err != nil {
		return nil, fmt.Errorf("loading land boundary: %w", err)
	}
	return m, nil
}

// ParseCities reads CSV with the header name,state,lat,lon,population.
// Column order is taken from the header; population may be empty. Rows
// with unparseable coordinates are rejected rather than placed at (0,0).
func ParseCities(r io.Reader) ([]City, error) {
	cr := csv.NewReader(r)
	cr.Comment = '#'
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, h := range header {
		col[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, required := range []string{"name", "state", "lat", "lon"} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("missing column %q", required)
		}
	}
	popCol, hasPop := col["population"]

	var cities []City
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading row: %w", err)
		}
		line, _ := cr.FieldPos(0)

		lat, errLat := strconv.ParseFloat(strings.TrimSpace(rec[col["lat"]]), 64)
		lon, errLon := strconv.ParseFloat(strings.TrimSpace(rec[col["lon"]]), 64)
		if errLat != nil || errLon != nil {
			return nil, fmt.Errorf("line %d: invalid coordinates %q,%q", line, rec[col["lat"]], rec[col["lon"]])
		}

		c := City{
			Name:  strings.TrimSpace(rec[col["name"]]),
			State: strings.TrimSpace(rec[col["state"]]),
			Lat:   lat,
			Lon:   lon,
		}
		if c.Name == "" {
			return nil, fmt.Errorf("line %d: empty name", line)
		}
		if hasPop {
			if v := strings.TrimSpace(rec[popCol]); v != "" {
				pop, err := strconv.Atoi(v)
				if err != nil {
					return nil, fmt.Errorf("line %d: invalid population %q", line, v)
				}
				c.Population = pop
			}
		}
		cities = append(cities, c)
	}
	return cities, nil
}

// openOptionallyCachedFile opens name from dataDir when present, falling
// back to the embedded copy. The filesystem wins so that refreshed data can
// be validated before it is embedded.
func openOptionallyCachedFile(dataDir, name string) (fs.File, error) {
	if dataDir != "" {
		if fh, err := os.Open(filepath.Join(dataDir, name)); err == nil {
			return fh, nil
		}
	}
	return embeddedData.Open(embeddedDir + "/" + name)
}

func openOptionallyBzippedFile(dataDir, name string) (io.Reader, func() error, error) {
	fh, err := openOptionallyCachedFile(dataDir, name+".bz2")
	if err != nil {
		fh, err = openOptionallyCachedFile(dataDir, name)
		if err != nil {
			return nil, nil, fmt.Errorf("opening %s: %w", name, err)
		}
		return fh, fh.Close, nil
	}
	return bzip2.NewReader(fh), fh.Close, nil
}
