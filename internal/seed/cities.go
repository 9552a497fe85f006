package seed

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"treasurehunt/internal/geo"
)

// City is a reference point treasures are scattered around.
type City struct {
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
}

var (
	// Bogota is the default inland city centre.
	Bogota = City{Name: "Bogotá", Lat: 4.7110, Lng: -74.0721}
	// Cartagena is the default coastal city centre.
	Cartagena = City{Name: "Cartagena", Lat: 10.39972, Lng: -75.51444}
)

// maxCityLatitude bounds city centres away from the poles.
const maxCityLatitude = 90.0

// DefaultCities returns the cities seeded when Options.Cities is empty.
func DefaultCities() []City {
	return []City{Bogota, Cartagena}
}

// ParseCities reads a list like "Bogotá:4.7110:-74.0721;Medellín:6.2442:-75.5812".
// An empty string yields DefaultCities. Polar centres are rejected.
func ParseCities(raw string) ([]City, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return DefaultCities(), nil
	}

	var cities []City
	seen := make(map[string]struct{})
	for _, entry := range strings.Split(raw, ";") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		parts := strings.Split(entry, ":")
		if len(parts) != 3 {
			return nil, fmt.Errorf("city %q: want name:lat:lng", entry)
		}
		name := strings.TrimSpace(parts[0])
		if name == "" {
			return nil, fmt.Errorf("city %q: empty name", entry)
		}
		if _, dup := seen[strings.ToLower(name)]; dup {
			return nil, fmt.Errorf("city %q listed twice", name)
		}
		lat, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("city %q: latitude: %w", name, err)
		}
		lng, err := strconv.ParseFloat(strings.TrimSpace(parts[2]), 64)
		if err != nil {
			return nil, fmt.Errorf("city %q: longitude: %w", name, err)
		}
		if err := geo.Validate(lat, lng, 0); err != nil {
			return nil, fmt.Errorf("city %q: %w", name, err)
		}
		// longitude offsets scale with 1/cos(lat) and blow up at the poles
		if math.Abs(lat) >= maxCityLatitude {
			return nil, fmt.Errorf("city %q: latitude %v is polar: %w", name, lat, geo.ErrInvalidArgument)
		}
		seen[strings.ToLower(name)] = struct{}{}
		cities = append(cities, City{Name: name, Lat: lat, Lng: lng})
	}
	if len(cities) == 0 {
		return DefaultCities(), nil
	}
	return cities, nil
}
