// Package models contains data structures for the application's domain models.
package models

import (
	"database/sql/driver"
	"fmt"
	"time"

	"treasurehunt/internal/geo"
)

// Treasure is a hidden item placed near a city for players to find.
type Treasure struct {
	ID          uint         `gorm:"primaryKey" json:"id"`
	CreatorID   string       `gorm:"not null;index" json:"creator_id"`
	CreatorName string       `gorm:"not null" json:"creator_name"`
	Title       string       `gorm:"not null" json:"title"`
	Location    GeoJSONPoint `gorm:"type:text;not null" json:"location"`
	Description string       `gorm:"type:text" json:"description"`
	ImageURL    string       `json:"image_url"`
	// Latitude and Longitude duplicate Location as decimal strings.
	Latitude   string     `gorm:"not null" json:"latitude"`
	Longitude  string     `gorm:"not null" json:"longitude"`
	Hint       string     `json:"hint"`
	Difficulty int        `gorm:"not null" json:"difficulty"`
	Clues      []string   `gorm:"serializer:json" json:"clues"`
	IsFound    bool       `gorm:"not null;default:false;index" json:"is_found"`
	FoundBy    *string    `json:"found_by,omitempty"`
	FoundAt    *time.Time `json:"found_at,omitempty"`
	Points     int        `gorm:"not null" json:"points"`
	CreatedAt  time.Time  `json:"created_at"`
}

// GeoJSONPoint stores a point as GeoJSON text, {"type":"Point","coordinates":[lng,lat]}.
type GeoJSONPoint struct {
	geo.GeoPoint
}

// NewGeoJSONPoint wraps p for storage.
func NewGeoJSONPoint(p geo.GeoPoint) GeoJSONPoint {
	return GeoJSONPoint{GeoPoint: p}
}

// Value implements driver.Valuer.
func (p GeoJSONPoint) Value() (driver.Value, error) {
	data, err := p.MarshalGeoJSON()
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan implements sql.Scanner.
func (p *GeoJSONPoint) Scan(value interface{}) error {
	var data []byte
	switch v := value.(type) {
	case string:
		data = []byte(v)
	case []byte:
		data = v
	case nil:
		p.GeoPoint = geo.GeoPoint{}
		return nil
	default:
		return fmt.Errorf("GeoJSONPoint: unsupported scan type %T", value)
	}
	pt, err := geo.PointFromGeoJSON(data)
	if err != nil {
		return err
	}
	p.GeoPoint = pt
	return nil
}

// MarshalJSON renders the point as a GeoJSON geometry in API responses.
func (p GeoJSONPoint) MarshalJSON() ([]byte, error) {
	return p.MarshalGeoJSON()
}

// UnmarshalJSON accepts a GeoJSON Point geometry.
func (p *GeoJSONPoint) UnmarshalJSON(data []byte) error {
	pt, err := geo.PointFromGeoJSON(data)
	if err != nil {
		return err
	}
	p.GeoPoint = pt
	return nil
}
