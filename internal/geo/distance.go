package geo

import "math"

const earthRadiusKM = 6371.0

func hav(angleRad float64) float64 {
	return (1 - math.Cos(angleRad)) / 2.0
}

// HaversineKM returns the great-circle distance between a and b in kilometres.
func HaversineKM(a, b GeoPoint) float64 {
	lat1, lat2 := radians(a.Latitude), radians(b.Latitude)
	dLng := radians(b.Longitude - a.Longitude)

	h := hav(lat2-lat1) + math.Cos(lat1)*math.Cos(lat2)*hav(dLng)
	return earthRadiusKM * 2.0 * math.Asin(math.Sqrt(h))
}
