// Package seed fills the treasures table with plausible fake data scattered
// around a set of cities. It is intended for development and demo databases.
package seed

import (
	"strconv"
	"strings"
	"time"

	"treasurehunt/internal/geo"
	"treasurehunt/internal/models"

	"github.com/brianvoe/gofakeit/v6"
)

const (
	foundChancePercent = 30
	maxDescriptionLen  = 200
	imageWidth         = 640
	imageHeight        = 480
)

// Factory builds treasure records. It never touches the database.
type Factory struct {
	radiusKM float64
	now      func() time.Time
}

// NewFactory creates a Factory placing treasures within radiusKM of their city.
func NewFactory(radiusKM float64, now func() time.Time) *Factory {
	if now == nil {
		now = time.Now
	}
	return &Factory{radiusKM: radiusKM, now: now}
}

// BuildTreasure constructs one treasure near city. Every random value is drawn
// from f, so a Faker built from a fixed seed yields the same record.
func (fa *Factory) BuildTreasure(f *gofakeit.Faker, creator models.Creator, city City) *models.Treasure {
	now := fa.now()
	isFound := f.Number(1, 100) <= foundChancePercent
	point := geo.SampleNearby(f.Rand, city.Lat, city.Lng, fa.radiusKM)

	t := &models.Treasure{
		CreatorID:   creator.ID,
		CreatorName: creator.Name,
		Title:       f.Sentence(4),
		Location:    models.NewGeoJSONPoint(point),
		Description: truncateWords(f.Paragraph(1, 3, 12, " "), maxDescriptionLen),
		ImageURL:    f.ImageURL(imageWidth, imageHeight),
		Latitude:    formatCoord(point.Latitude),
		Longitude:   formatCoord(point.Longitude),
		Hint:        f.Sentence(6),
		Difficulty:  f.Number(1, 5),
		IsFound:     isFound,
		CreatedAt:   f.DateRange(startOfDecade(now), now),
	}

	clues := f.Number(1, 5)
	t.Clues = make([]string, 0, clues)
	for i := 0; i < clues; i++ {
		t.Clues = append(t.Clues, f.Sentence(5))
	}

	if isFound {
		foundBy := f.UUID()
		foundAt := f.DateRange(startOfYear(now), now)
		t.FoundBy = &foundBy
		t.FoundAt = &foundAt
	}
	t.Points = f.Number(1, 100)
	return t
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// truncateWords cuts s to at most max bytes on a word boundary and ends it with a period.
func truncateWords(s string, max int) string {
	s = strings.TrimSpace(s)
	if len(s) <= max {
		return s
	}
	cut := strings.LastIndexByte(s[:max], ' ')
	if cut <= 0 {
		cut = max - 1
	}
	return strings.TrimRight(s[:cut], " ,;.") + "."
}

func startOfDecade(now time.Time) time.Time {
	return time.Date(now.Year()-now.Year()%10, time.January, 1, 0, 0, 0, 0, now.Location())
}

func startOfYear(now time.Time) time.Time {
	return time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())
}
