package cityfill

import (
	"bufio"
	"strings"
	"sync"
)

// Region is a first-level administrative division: a state or the District
// of Columbia.
type Region struct {
	Code string // two-letter code, e.g. "TX"
	Name string // full name, e.g. "Texas"
}

// regionsFile lists regions one per line: CC.CODE<tab>Name.
const regionsFile = "us-regions.txt"

var regions = sync.OnceValue(func() map[string]Region {
	m := make(map[string]Region)
	fh, err := embeddedData.Open(embeddedDir + "/" + regionsFile)
	if err != nil {
		return m
	}
	defer fh.Close()

	scanner := bufio.NewScanner(fh)
	for scanner.Scan() {
		fields := strings.Split(scanner.Text(), "\t")
		if len(fields) < 2 {
			continue
		}
		parts := strings.SplitN(fields[0], ".", 2)
		if len(parts) != 2 || parts[0] != "US" {
			continue
		}
		code := strings.ToUpper(parts[1])
		m[code] = Region{Code: code, Name: fields[1]}
	}
	return m
})

// IsRegion reports whether code is a known two-letter region code. The
// comparison ignores case.
func IsRegion(code string) bool {
	_, ok := regions()[strings.ToUpper(code)]
	return ok
}

// RegionName returns the full name for code, or "" if it is unknown.
func RegionName(code string) string {
	return regions()[strings.ToUpper(code)].Name
}
