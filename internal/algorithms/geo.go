package algorithms

import (
	"math"
	"sort"
)

const (
	EarthRadiusKm = 6371.0

	// DefaultNearbyLimit — лимит выдачи, если вызывающий его не задал
	DefaultNearbyLimit = 50

	// boxMargin расширяет SQL-префильтр: округление float не должно
	// отбрасывать кандидатов, которых оставит haversine
	boxMargin = 1.001
)

// Point — широта/долгота в градусах
type Point struct {
	Latitude  float64
	Longitude float64
}

func (p Point) IsValid() bool {
	return p.Latitude >= -90 && p.Latitude <= 90 && p.Longitude >= -180 && p.Longitude <= 180 &&
		!math.IsNaN(p.Latitude) && !math.IsNaN(p.Longitude)
}

// Locatable — кандидат, у которого могут быть координаты
type Locatable interface {
	// Location возвращает false, если координат нет
	Location() (Point, bool)
}

// Ranked — кандидат и расстояние до точки поиска
type Ranked[T any] struct {
	Item       T
	DistanceKm float64
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

// DistanceKm — расстояние по большому кругу (haversine)
func DistanceKm(a, b Point) float64 {
	dLat := toRadians(b.Latitude - a.Latitude)
	dLon := toRadians(b.Longitude - a.Longitude)

	sinLat := math.Sin(dLat / 2)
	sinLon := math.Sin(dLon / 2)
	h := sinLat*sinLat + math.Cos(toRadians(a.Latitude))*math.Cos(toRadians(b.Latitude))*sinLon*sinLon

	// из-за округления h может выйти за [0, 1]
	h = math.Min(1, math.Max(0, h))

	return EarthRadiusKm * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// FindNearby отбрасывает кандидатов без координат и дальше radiusKm,
// сортирует по возрастанию расстояния и обрезает до limit.
// При равных расстояниях сохраняется входной порядок.
func FindNearby[T Locatable](candidates []T, origin Point, radiusKm float64, limit int) []Ranked[T] {
	if limit <= 0 {
		limit = DefaultNearbyLimit
	}
	if radiusKm < 0 || math.IsNaN(radiusKm) {
		return []Ranked[T]{}
	}

	ranked := make([]Ranked[T], 0, len(candidates))
	for _, c := range candidates {
		p, ok := c.Location()
		if !ok {
			continue
		}
		d := DistanceKm(origin, p)
		if d <= radiusKm {
			ranked = append(ranked, Ranked[T]{Item: c, DistanceKm: d})
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].DistanceKm < ranked[j].DistanceKm
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

// BoundingBox — прямоугольник lat/lng, покрывающий круг заданного радиуса
type BoundingBox struct {
	MinLat, MaxLat float64
	MinLng, MaxLng float64
}

// BoxAround — прямоугольник для SQL-префильтра. ok == false, если круг
// задевает полюс или антимеридиан, тогда префильтр не применяется.
func BoxAround(origin Point, radiusKm float64) (box BoundingBox, ok bool) {
	if radiusKm <= 0 || !origin.IsValid() {
		return BoundingBox{}, false
	}

	angular := radiusKm / EarthRadiusKm * boxMargin
	lat := toRadians(origin.Latitude)
	lng := toRadians(origin.Longitude)

	minLat, maxLat := lat-angular, lat+angular
	if minLat <= -math.Pi/2 || maxLat >= math.Pi/2 {
		return BoundingBox{}, false
	}

	ratio := math.Sin(angular) / math.Cos(lat)
	if ratio >= 1 {
		return BoundingBox{}, false
	}
	dLng := math.Asin(ratio) * boxMargin
	minLng, maxLng := lng-dLng, lng+dLng
	if minLng < -math.Pi || maxLng > math.Pi {
		return BoundingBox{}, false
	}

	const toDeg = 180 / math.Pi
	return BoundingBox{
		MinLat: minLat * toDeg,
		MaxLat: maxLat * toDeg,
		MinLng: minLng * toDeg,
		MaxLng: maxLng * toDeg,
	}, true
}

func (b BoundingBox) Contains(p Point) bool {
	return p.Latitude >= b.MinLat && p.Latitude <= b.MaxLat &&
		p.Longitude >= b.MinLng && p.Longitude <= b.MaxLng
}
