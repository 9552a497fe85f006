// Package geo samples synthetic coordinates around reference points and
// converts them into the geometry encodings used by storage and the preview API.
package geo

import (
	"errors"
	"fmt"
	"math"
)

// KMPerDegree approximates the length of one degree of latitude.
// It is applied to longitude as well, after the cosine correction.
const KMPerDegree = 111.32

// ErrInvalidArgument is returned by Validate for out-of-domain input.
var ErrInvalidArgument = errors.New("invalid argument")

// GeoPoint is a latitude/longitude pair in degrees.
type GeoPoint struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Source yields uniform values in [0, 1). *math/rand.Rand and
// *math/rand/v2.Rand both satisfy it.
type Source interface {
	Float64() float64
}

func uniform(src Source, lo, hi float64) float64 {
	return lo + (hi-lo)*src.Float64()
}

// SampleNearby returns a random point within maxDistanceKM of the base point,
// measured in a locally linearised lat/lng plane.
//
// The angle is drawn first, then the radius. The radius is uniform in
// degree-space rather than area-uniform, so samples cluster toward the base.
// The longitude correction divides by cos(baseLat) and diverges at the poles;
// callers must not pass polar reference points. Inputs are not validated.
func SampleNearby(src Source, baseLat, baseLng, maxDistanceKM float64) GeoPoint {
	maxDistanceDegrees := maxDistanceKM / KMPerDegree

	angle := uniform(src, 0, 2*math.Pi)
	distance := uniform(src, 0, maxDistanceDegrees)

	deltaLat := distance * math.Cos(angle)
	deltaLng := distance * math.Sin(angle) / math.Cos(radians(baseLat))

	return GeoPoint{
		Latitude:  baseLat + deltaLat,
		Longitude: baseLng + deltaLng,
	}
}

// Validate reports whether the arguments are inside the sampler's domain.
func Validate(baseLat, baseLng, maxDistanceKM float64) error {
	switch {
	case math.IsNaN(baseLat) || math.IsNaN(baseLng) || math.IsNaN(maxDistanceKM):
		return fmt.Errorf("%w: NaN coordinate or distance", ErrInvalidArgument)
	case math.Abs(baseLat) > 90:
		return fmt.Errorf("%w: latitude %v outside [-90, 90]", ErrInvalidArgument, baseLat)
	case math.Abs(baseLng) > 180:
		return fmt.Errorf("%w: longitude %v outside [-180, 180]", ErrInvalidArgument, baseLng)
	case maxDistanceKM < 0:
		return fmt.Errorf("%w: negative distance %v km", ErrInvalidArgument, maxDistanceKM)
	}
	return nil
}

// SampleNearbyChecked validates its arguments before sampling.
func SampleNearbyChecked(src Source, baseLat, baseLng, maxDistanceKM float64) (GeoPoint, error) {
	if err := Validate(baseLat, baseLng, maxDistanceKM); err != nil {
		return GeoPoint{}, err
	}
	return SampleNearby(src, baseLat, baseLng, maxDistanceKM), nil
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180.0
}
