package openfoodfacts

import (
	"encoding/json"
	"math"
	"sort"
	"strings"

	"github.com/foodscout/backend/internal/domain"
)

// searchResponse mirrors the OpenFoodFacts search payload, restricted to the
// fields requested in searchFields.
type searchResponse struct {
	Products []product `json:"products"`
}

type product struct {
	ProductName string     `json:"product_name"`
	GenericName string     `json:"generic_name"`
	Brands      string     `json:"brands"`
	Nutriments  nutriments `json:"nutriments"`
}

type nutriments struct {
	EnergyKcalServing domain.FlexFloat `json:"energy-kcal_serving"`
	EnergyKcal100g    domain.FlexFloat `json:"energy-kcal_100g"`
}

// MapProducts converts a raw search response body into normalized FoodRecords
// for query: name resolution, calorie extraction, substring filtering and a
// deterministic sort order.
func MapProducts(body []byte, query string) ([]domain.FoodRecord, error) {
	var resp searchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, domain.DecodingError(err)
	}

	needle := strings.ToLower(strings.TrimSpace(query))

	records := make([]domain.FoodRecord, 0, len(resp.Products))
	for _, p := range resp.Products {
		name := strings.TrimSpace(p.ProductName)
		if name == "" {
			name = strings.TrimSpace(p.GenericName)
		}
		// A brand alone is not a food name.
		if name == "" {
			continue
		}

		if !matchesQuery(name, p.Brands, needle) {
			continue
		}

		record := domain.FoodRecord{
			Name:        name,
			DefaultUnit: "serving",
		}
		if p.Nutriments.EnergyKcalServing.Valid {
			kcal := int(math.Round(p.Nutriments.EnergyKcalServing.Value))
			record.CaloriesPerServing = &kcal
		}
		if p.Nutriments.EnergyKcal100g.Valid {
			kcal := p.Nutriments.EnergyKcal100g.Value
			record.CaloriesPer100g = &kcal
			record.DefaultUnit = "g"
		}

		records = append(records, record)
	}

	sortRecords(records)
	return records, nil
}

// matchesQuery keeps products whose resolved name or brand contains the
// lower-cased query substring.
func matchesQuery(name, brands, needle string) bool {
	if needle == "" {
		return true
	}
	if strings.Contains(strings.ToLower(name), needle) {
		return true
	}
	return brands != "" && strings.Contains(strings.ToLower(brands), needle)
}

// sortRecords orders records with calorie data before records without, then
// by case-insensitive name within each group. The order is a pure function
// of the input list.
func sortRecords(records []domain.FoodRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if a.HasCalories() != b.HasCalories() {
			return a.HasCalories()
		}
		return strings.ToLower(a.Name) < strings.ToLower(b.Name)
	})
}
