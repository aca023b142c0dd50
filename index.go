package cityfill

// CityIndex holds the lookup tables over the active dataset. It is rebuilt
// from scratch whenever the dataset changes.
//
// Maps answer exact lookups; the parallel order slices record first
// insertion so that prefix and fuzzy scans visit keys in dataset order
// instead of map order.
type CityIndex struct {
	byLabel map[string]City   // Normalize("Name, ST") → first record
	byName  map[string][]City // Normalize(Name) → records in dataset order
	byKey   map[string]City   // City.Key() → first record

	labelOrder []string
	nameOrder  []string
	size       int
}

// NewCityIndex builds an index over cities.
func NewCityIndex(cities []City) *CityIndex {
	idx := &CityIndex{}
	idx.Rebuild(cities)
	return idx
}

// Rebuild discards every entry and indexes cities. Label and key collisions
// keep the first record.
func (idx *CityIndex) Rebuild(cities []City) {
	idx.byLabel = make(map[string]City, len(cities))
	idx.byName = make(map[string][]City, len(cities))
	idx.byKey = make(map[string]City, len(cities))
	idx.labelOrder = idx.labelOrder[:0]
	idx.nameOrder = idx.nameOrder[:0]
	idx.size = len(cities)

	for _, c := range cities {
		name := Normalize(c.Name)
		if _, ok := idx.byName[name]; !ok {
			idx.nameOrder = append(idx.nameOrder, name)
		}
		idx.byName[name] = append(idx.byName[name], c)

		label := Normalize(c.Label())
		if _, ok := idx.byLabel[label]; !ok {
			idx.byLabel[label] = c
			idx.labelOrder = append(idx.labelOrder, label)
		}

		key := c.Key()
		if _, ok := idx.byKey[key]; !ok {
			idx.byKey[key] = c
		}
	}
}

// ByLabel returns the record whose normalized "Name, ST" label equals label.
func (idx *CityIndex) ByLabel(label string) (City, bool) {
	c, ok := idx.byLabel[label]
	return c, ok
}

// ByName returns a copy of the records sharing the normalized name, in
// dataset order.
func (idx *CityIndex) ByName(name string) []City {
	list := idx.byName[name]
	if len(list) == 0 {
		return nil
	}
	out := make([]City, len(list))
	copy(out, list)
	return out
}

// ByKey returns the record with the given composite key.
func (idx *CityIndex) ByKey(key string) (City, bool) {
	c, ok := idx.byKey[key]
	return c, ok
}

// Len returns the number of records indexed.
func (idx *CityIndex) Len() int {
	return idx.size
}

// NameCount returns the number of distinct normalized names.
func (idx *CityIndex) NameCount() int {
	return len(idx.nameOrder)
}
