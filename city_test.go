package cityfill

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Austin", "austin"},
		{"  St. Louis,MO ", "st louis mo"},
		{"Coeur d'Alene, ID", "coeur d alene id"},
		{"Winston-Salem", "winston salem"},
		{"Española", "espanola"},
		{"SAN JOSÉ", "san jose"},
		{"Ｔｏｋｙｏ", "tokyo"},
		{"29 Palms", "29 palms"},
		{"", ""},
		{" ,.-' ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := Normalize(tt.in); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	for _, s := range []string{"St. Louis, MO", "Española", "Coeur d'Alene"} {
		once := Normalize(s)
		if twice := Normalize(once); twice != once {
			t.Errorf("Normalize(Normalize(%q)) = %q, want %q", s, twice, once)
		}
	}
}

func TestCityKeyAndLabel(t *testing.T) {
	c := City{Name: "Springfield", State: "IL", Lat: 39.7817, Lon: -89.6501}
	if got := c.Label(); got != "Springfield, IL" {
		t.Errorf("Label = %q", got)
	}
	if got := c.Key(); got != "Springfield|IL|39.7817|-89.6501" {
		t.Errorf("Key = %q", got)
	}

	moved := c
	moved.Lat = 39.78170001
	if moved.Key() == c.Key() {
		t.Error("keys of records at different coordinates collide")
	}
}

func TestSortByPopulationStable(t *testing.T) {
	cities := []City{
		{Name: "A", Population: 10},
		{Name: "B", Population: 30},
		{Name: "C", Population: 10},
		{Name: "D", Population: 20},
	}
	sortByPopulation(cities)
	var got string
	for _, c := range cities {
		got += c.Name
	}
	if got != "BDAC" {
		t.Errorf("order = %s, want BDAC", got)
	}
}
