// Package cascade derives the country/state/city picker options and applies
// the reset rule when an upstream selection changes.
package cascade

import (
	"slices"

	"resume-builder/resume/location"
	"resume-builder/resume/model"
)

// Options is what a location picker shows for one Location value.
type Options struct {
	Countries []location.Country `json:"countries"`
	States    []string           `json:"states"`
	Cities    []string           `json:"cities"`
	// Selected masks values that are not among the current options.
	Selected model.Location `json:"selected"`
}

// Resolver answers option queries against an injected index. Options are
// re-derived on every call.
type Resolver struct {
	Index *location.Index
}

// New returns a resolver over idx.
func New(idx *location.Index) Resolver {
	return Resolver{Index: idx}
}

// StatesFor returns the states offered for country.
func (r Resolver) StatesFor(country string) []string {
	if r.Index == nil {
		return []string{}
	}
	return r.Index.StatesFor(country)
}

// CitiesFor returns the cities offered for country and state.
func (r Resolver) CitiesFor(country, state string) []string {
	if r.Index == nil {
		return []string{}
	}
	return r.Index.CitiesFor(country, state)
}

// Options derives the picker options for loc. A stored state or city that is
// not an available option is shown as unselected; the stored value itself is
// left alone.
func (r Resolver) Options(loc model.Location) Options {
	out := Options{
		Countries: []location.Country{},
		States:    r.StatesFor(loc.Country),
		Cities:    r.CitiesFor(loc.Country, loc.State),
		Selected:  loc,
	}
	if r.Index != nil {
		out.Countries = r.Index.Countries()
	}
	if !slices.Contains(out.States, loc.State) {
		out.Selected.State = ""
	}
	if !slices.Contains(out.Cities, loc.City) {
		out.Selected.City = ""
	}
	if _, ok := r.country(loc.Country); !ok {
		out.Selected.Country = ""
	}
	return out
}

func (r Resolver) country(code string) (location.Country, bool) {
	if r.Index == nil {
		return location.Country{}, false
	}
	return r.Index.Country(code)
}

// Apply returns next with the cascade reset rule applied relative to prev:
// a changed country clears state and city, a changed state clears city.
func Apply(prev, next model.Location) model.Location {
	if next.Country != prev.Country {
		next.State = ""
		next.City = ""
		return next
	}
	if next.State != prev.State {
		next.City = ""
	}
	return next
}
