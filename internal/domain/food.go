package domain

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// FoodRecord is the normalized output unit of a food search. A record always
// carries a name; either calorie field may be absent.
type FoodRecord struct {
	Name               string   `json:"name"`
	CaloriesPerServing *int     `json:"caloriesPerServing,omitempty"`
	CaloriesPer100g    *float64 `json:"caloriesPer100g,omitempty"`
	DefaultUnit        string   `json:"defaultUnit"`
}

// HasCalories reports whether the record carries any calorie information.
// Records without it sort after records that have it.
func (r FoodRecord) HasCalories() bool {
	return r.CaloriesPerServing != nil || r.CaloriesPer100g != nil
}

// SearchKey normalizes a query into the identity used for request
// deduplication: trimmed and lower-cased.
func SearchKey(query string) string {
	return strings.ToLower(strings.TrimSpace(query))
}

// FlexFloat is a float64 that accepts both JSON numbers and numeric strings.
// OpenFoodFacts nutriment values arrive in either form depending on the
// product's data source.
type FlexFloat struct {
	Value float64
	Valid bool
}

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexFloat) UnmarshalJSON(data []byte) error {
	f.Value = 0
	f.Valid = false

	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			return nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			// Non-numeric string: treat as absent rather than failing the
			// whole product list.
			return nil
		}
		f.Value = v
		f.Valid = true
		return nil
	}

	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	f.Value = v
	f.Valid = true
	return nil
}

// MarshalJSON implements json.Marshaler.
func (f FlexFloat) MarshalJSON() ([]byte, error) {
	if !f.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(f.Value)
}
