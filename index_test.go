package cityfill

import "testing"

func TestCityIndex(t *testing.T) {
	cities := []City{
		{Name: "Portland", State: "OR", Lat: 45.5152, Lon: -122.6784, Population: 652503},
		{Name: "Portland", State: "ME", Lat: 43.6591, Lon: -70.2568, Population: 68408},
		{Name: "Portland", State: "OR", Lat: 45.5152, Lon: -122.6784, Population: 1}, // exact duplicate
		{Name: "Salem", State: "OR", Lat: 44.9429, Lon: -123.0351, Population: 175535},
	}
	idx := NewCityIndex(cities)

	if idx.Len() != 4 {
		t.Errorf("Len = %d, want 4", idx.Len())
	}
	if idx.NameCount() != 2 {
		t.Errorf("NameCount = %d, want 2", idx.NameCount())
	}

	c, ok := idx.ByLabel("portland or")
	if !ok || c.Population != 652503 {
		t.Errorf("ByLabel(portland or) = %+v, %v; want the first record", c, ok)
	}
	if _, ok := idx.ByLabel("Portland, OR"); ok {
		t.Error("ByLabel must be given a normalized label")
	}

	names := idx.ByName("portland")
	if len(names) != 3 || names[0].State != "OR" || names[1].State != "ME" {
		t.Errorf("ByName(portland) = %+v", names)
	}
	names[0].Name = "changed"
	if idx.ByName("portland")[0].Name != "Portland" {
		t.Error("ByName exposed internal storage")
	}

	c, ok = idx.ByKey(cities[1].Key())
	if !ok || c.State != "ME" {
		t.Errorf("ByKey = %+v, %v", c, ok)
	}
	c, _ = idx.ByKey(cities[0].Key())
	if c.Population != 652503 {
		t.Error("duplicate key should keep the first record")
	}
}

func TestCityIndexRebuild(t *testing.T) {
	idx := NewCityIndex([]City{{Name: "Austin", State: "TX", Lat: 30.2672, Lon: -97.7431}})
	idx.Rebuild([]City{{Name: "Boise", State: "ID", Lat: 43.615, Lon: -116.2023}})

	if _, ok := idx.ByLabel("austin tx"); ok {
		t.Error("stale label survived Rebuild")
	}
	if idx.ByName("austin") != nil {
		t.Error("stale name survived Rebuild")
	}
	if _, ok := idx.ByLabel("boise id"); !ok {
		t.Error("new label missing after Rebuild")
	}
	if idx.Len() != 1 || idx.NameCount() != 1 {
		t.Errorf("Len = %d, NameCount = %d", idx.Len(), idx.NameCount())
	}
}
