package location

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

const sampleDataset = `
[[countries]]
code = "US"
name = "United States"
cities = [
  { name = "Austin", state = "Texas" },
  { name = "Seattle", state = "Washington" },
  { name = "Houston", state = "Texas" },
]

[[countries]]
code = "NZ"
name = "New Zealand"
`

func loadSample(t *testing.T) *Index {
	t.Helper()
	idx, err := Load(strings.NewReader(sampleDataset))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	return idx
}

func TestStatesForIsDistinctInFirstAppearanceOrder(t *testing.T) {
	idx := loadSample(t)
	got := idx.StatesFor("US")
	want := []string{"Texas", "Washington"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestCitiesForFiltersByState(t *testing.T) {
	idx := loadSample(t)
	got := idx.CitiesFor("US", "Texas")
	want := []string{"Austin", "Houston"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestUnknownInputsYieldEmptyLists(t *testing.T) {
	idx := loadSample(t)
	cases := map[string][]string{
		"unknown country": idx.StatesFor("XX"),
		"empty country":   idx.StatesFor(""),
		"no cities":       idx.StatesFor("NZ"),
		"unknown state":   idx.CitiesFor("US", "Ohio"),
		"empty state":     idx.CitiesFor("US", ""),
	}
	for name, got := range cases {
		if got == nil || len(got) != 0 {
			t.Fatalf("%s: expected empty list, got %#v", name, got)
		}
	}
}

func TestCountriesPreserveDatasetOrder(t *testing.T) {
	idx := loadSample(t)
	got := idx.Countries()
	if len(got) != 2 || got[0].Code != "US" || got[1].Code != "NZ" {
		t.Fatalf("unexpected countries %+v", got)
	}
	if got[0].Cities != nil {
		t.Fatalf("country list should not carry cities")
	}
	if idx.CountryName("NZ") != "New Zealand" || idx.CountryName("XX") != "XX" {
		t.Fatalf("unexpected country names")
	}
}

func TestCountryReturnsCopy(t *testing.T) {
	idx := loadSample(t)
	c, ok := idx.Country("US")
	if !ok {
		t.Fatalf("expected US")
	}
	c.Cities[0].State = "Mutated"
	if idx.StatesFor("US")[0] != "Texas" {
		t.Fatalf("index mutated through Country result")
	}
}

func TestLoadRejectsDuplicateCodes(t *testing.T) {
	_, err := Load(strings.NewReader("[[countries]]\ncode = \"US\"\n[[countries]]\ncode = \"US\"\n"))
	if !errors.Is(err, ErrInvalidDataset) {
		t.Fatalf("expected ErrInvalidDataset, got %v", err)
	}
}

func TestLoadRejectsMalformedTOML(t *testing.T) {
	_, err := Load(strings.NewReader("[[countries]\n"))
	if !errors.Is(err, ErrInvalidDataset) {
		t.Fatalf("expected ErrInvalidDataset, got %v", err)
	}
}

func TestDefaultDataset(t *testing.T) {
	idx := Default()
	if len(idx.Countries()) == 0 {
		t.Fatalf("expected embedded countries")
	}
	if cities := idx.CitiesFor("US", "California"); len(cities) == 0 {
		t.Fatalf("expected California cities")
	}
}
