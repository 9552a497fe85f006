package geo

import (
	"encoding/json"
	"fmt"

	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
)

// SRID for WGS 84 lat/lng.
const SRID = 4326

// Geometry converts p into a go-geom point. Coordinates are ordered [lng, lat].
func (p GeoPoint) Geometry() *geom.Point {
	return geom.NewPointFlat(geom.XY, []float64{p.Longitude, p.Latitude}).SetSRID(SRID)
}

// MarshalGeoJSON encodes p as a GeoJSON Point geometry.
func (p GeoPoint) MarshalGeoJSON() ([]byte, error) {
	g, err := geojson.Encode(p.Geometry())
	if err != nil {
		return nil, fmt.Errorf("geo: encode point: %w", err)
	}
	return json.Marshal(g)
}

// PointFromGeoJSON decodes a GeoJSON Point geometry.
func PointFromGeoJSON(data []byte) (GeoPoint, error) {
	var g geom.T
	if err := geojson.Unmarshal(data, &g); err != nil {
		return GeoPoint{}, fmt.Errorf("geo: decode geojson: %w", err)
	}
	pt, ok := g.(*geom.Point)
	if !ok {
		return GeoPoint{}, fmt.Errorf("geo: expected Point geometry, got %T", g)
	}
	return GeoPoint{Latitude: pt.Y(), Longitude: pt.X()}, nil
}

// Feature wraps p as a GeoJSON feature with the given id and properties.
func (p GeoPoint) Feature(id string, props map[string]interface{}) *geojson.Feature {
	return &geojson.Feature{
		ID:         id,
		Geometry:   p.Geometry(),
		Properties: props,
	}
}
