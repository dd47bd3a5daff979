// Package location holds the read-only country/state/city dataset used by the
// location pickers. The index is built once and passed by reference.
package location

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed data/countries.toml
var defaultDataset []byte

var ErrInvalidDataset = errors.New("invalid location dataset")

// City is one selectable city and the state it belongs to.
type City struct {
	Name  string `toml:"name" json:"name"`
	State string `toml:"state" json:"state"`
}

// Country is one selectable country with its cities.
type Country struct {
	Code   string `toml:"code" json:"code"`
	Name   string `toml:"name" json:"name"`
	Cities []City `toml:"cities" json:"cities,omitempty"`
}

type dataset struct {
	Countries []Country `toml:"countries"`
}

// Index answers option queries over a fixed dataset. It is safe for
// concurrent use because it is never mutated after construction.
type Index struct {
	countries []Country
	byCode    map[string]int
}

// New builds an index from countries. Codes must be unique and non-empty.
func New(countries []Country) (*Index, error) {
	idx := &Index{
		countries: make([]Country, len(countries)),
		byCode:    make(map[string]int, len(countries)),
	}
	for i, c := range countries {
		code := strings.TrimSpace(c.Code)
		if code == "" {
			return nil, fmt.Errorf("%w: country %d has no code", ErrInvalidDataset, i)
		}
		if _, dup := idx.byCode[code]; dup {
			return nil, fmt.Errorf("%w: duplicate country code %q", ErrInvalidDataset, code)
		}
		c.Code = code
		c.Cities = append([]City(nil), c.Cities...)
		idx.countries[i] = c
		idx.byCode[code] = i
	}
	return idx, nil
}

// Load decodes a TOML dataset.
func Load(r io.Reader) (*Index, error) {
	var ds dataset
	if err := toml.NewDecoder(r).Decode(&ds); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDataset, err)
	}
	return New(ds.Countries)
}

// LoadFile decodes a TOML dataset from path.
func LoadFile(path string) (*Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Load(f)
}

// Default returns the index built from the embedded dataset.
func Default() *Index {
	idx, err := Load(bytes.NewReader(defaultDataset))
	if err != nil {
		panic(fmt.Sprintf("embedded location dataset: %v", err))
	}
	return idx
}

// Countries returns the countries in dataset order, without their cities.
func (x *Index) Countries() []Country {
	out := make([]Country, len(x.countries))
	for i, c := range x.countries {
		out[i] = Country{Code: c.Code, Name: c.Name}
	}
	return out
}

// Country looks up a country by code.
func (x *Index) Country(code string) (Country, bool) {
	i, ok := x.byCode[code]
	if !ok {
		return Country{}, false
	}
	c := x.countries[i]
	c.Cities = append([]City(nil), c.Cities...)
	return c, true
}

// CountryName returns the display name for code, or code itself if unknown.
func (x *Index) CountryName(code string) string {
	if i, ok := x.byCode[code]; ok {
		return x.countries[i].Name
	}
	return code
}

// StatesFor returns the distinct states of a country in first-appearance
// order. Unknown or empty codes yield an empty list.
func (x *Index) StatesFor(code string) []string {
	i, ok := x.byCode[code]
	if !ok {
		return []string{}
	}
	seen := map[string]bool{}
	out := []string{}
	for _, c := range x.countries[i].Cities {
		if seen[c.State] {
			continue
		}
		seen[c.State] = true
		out = append(out, c.State)
	}
	return out
}

// CitiesFor returns the city names of a country's state in dataset order.
func (x *Index) CitiesFor(code, state string) []string {
	i, ok := x.byCode[code]
	if !ok {
		return []string{}
	}
	out := []string{}
	for _, c := range x.countries[i].Cities {
		if c.State == state {
			out = append(out, c.Name)
		}
	}
	return out
}
