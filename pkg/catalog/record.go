package catalog

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Record is a single catalog entry as fetched from the service.
// Records are never modified after decoding.
type Record struct {
	// ID is assigned by the catalog service.
	ID   int    `json:"id"`
	Name string `json:"name"`

	// Height in decimetres, Weight in hectograms (service native units).
	Height int `json:"height"`
	Weight int `json:"weight"`

	BaseExperience int `json:"base_experience"`

	// Types holds the lowercase type names in slot order.
	Types []string `json:"types"`

	ArtworkURL string `json:"artwork_url"`
}

// TypeTag is one entry of the service's type vocabulary.
type TypeTag struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// HeightMetres converts the native decimetre height to metres.
func (r Record) HeightMetres() float64 {
	return float64(r.Height) / 10
}

// WeightKilograms converts the native hectogram weight to kilograms.
func (r Record) WeightKilograms() float64 {
	return float64(r.Weight) / 10
}

// Number formats the ID the way the catalog prints it, e.g. "#007".
func (r Record) Number() string {
	return fmt.Sprintf("#%03d", r.ID)
}

// DisplayName returns the name with its first letter upper-cased.
func (r Record) DisplayName() string {
	return Capitalize(r.Name)
}

// HasType reports whether the record carries the given type name.
func (r Record) HasType(name string) bool {
	for _, t := range r.Types {
		if t == name {
			return true
		}
	}
	return false
}

// Capitalize upper-cases the first letter of s.
func Capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// pokemonResponse mirrors the subset of GET /pokemon/{id} we consume.
type pokemonResponse struct {
	ID             int    `json:"id"`
	Name           string `json:"name"`
	Height         int    `json:"height"`
	Weight         int    `json:"weight"`
	BaseExperience int    `json:"base_experience"`
	Sprites        struct {
		Other struct {
			OfficialArtwork struct {
				FrontDefault string `json:"front_default"`
			} `json:"official-artwork"`
		} `json:"other"`
	} `json:"sprites"`
	Types []struct {
		Slot int `json:"slot"`
		Type struct {
			Name string `json:"name"`
			URL  string `json:"url"`
		} `json:"type"`
	} `json:"types"`
}

// typeListResponse mirrors GET /type.
type typeListResponse struct {
	Count   int       `json:"count"`
	Results []TypeTag `json:"results"`
}

// decodeRecord parses a /pokemon/{id} body into a Record.
func decodeRecord(data []byte) (*Record, error) {
	var raw pokemonResponse
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode pokemon: %w", err)
	}

	types := make([]string, 0, len(raw.Types))
	for _, t := range raw.Types {
		types = append(types, strings.ToLower(t.Type.Name))
	}

	return &Record{
		ID:             raw.ID,
		Name:           raw.Name,
		Height:         raw.Height,
		Weight:         raw.Weight,
		BaseExperience: raw.BaseExperience,
		Types:          types,
		ArtworkURL:     raw.Sprites.Other.OfficialArtwork.FrontDefault,
	}, nil
}

// decodeTypeList parses a /type body into the ordered vocabulary.
func decodeTypeList(data []byte) ([]TypeTag, error) {
	var raw typeListResponse
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode type list: %w", err)
	}
	if raw.Results == nil {
		return []TypeTag{}, nil
	}
	return raw.Results, nil
}
