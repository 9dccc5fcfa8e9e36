package algorithms

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type site struct {
	name string
	lat  *float64
	lng  *float64
}

func (s site) Location() (Point, bool) {
	if s.lat == nil || s.lng == nil {
		return Point{}, false
	}
	return Point{Latitude: *s.lat, Longitude: *s.lng}, true
}

func at(name string, lat, lng float64) site {
	return site{name: name, lat: &lat, lng: &lng}
}

var (
	newYork = Point{Latitude: 40.7128, Longitude: -74.0060}
	london  = Point{Latitude: 51.5074, Longitude: -0.1278}
	paris   = Point{Latitude: 48.8566, Longitude: 2.3522}
	sydney  = Point{Latitude: -33.8688, Longitude: 151.2093}
)

func TestDistanceKmKnownPairs(t *testing.T) {
	tests := []struct {
		name     string
		a, b     Point
		expected float64
	}{
		{"new york - london", newYork, london, 5570},
		{"london - paris", london, paris, 343.5},
		{"london - sydney", london, sydney, 16994},
		{"one degree of latitude", Point{0, 0}, Point{1, 0}, 111.19},
		{"quarter meridian", Point{0, 0}, Point{90, 0}, 10007.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DistanceKm(tt.a, tt.b)
			assert.InEpsilon(t, tt.expected, got, 0.005, "got %.3f km", got)
		})
	}
}

func TestDistanceKmSymmetricAndZeroOnlyForSamePoint(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	randomPoint := func() Point {
		return Point{Latitude: rng.Float64()*178 - 89, Longitude: rng.Float64()*358 - 179}
	}

	for i := 0; i < 500; i++ {
		a, b := randomPoint(), randomPoint()
		assert.Equal(t, DistanceKm(a, b), DistanceKm(b, a))
		assert.Zero(t, DistanceKm(a, a))
		if a != b {
			assert.Greater(t, DistanceKm(a, b), 0.0)
		}
	}
}

func TestFindNearbyFiltersAndSorts(t *testing.T) {
	candidates := []site{
		at("far", 40.9, -74.0),       // ~21 km
		{name: "no-coords"},          // пропускается
		at("close", 40.72, -74.0),    // ~1 km
		at("mid", 40.78, -73.98),     // ~8 km
		at("elsewhere", 51.5, -0.12), // London
	}

	got := FindNearby(candidates, newYork, 10, 0)

	require.Len(t, got, 2)
	assert.Equal(t, "close", got[0].Item.name)
	assert.Equal(t, "mid", got[1].Item.name)
	for i, r := range got {
		assert.LessOrEqual(t, r.DistanceKm, 10.0)
		if i > 0 {
			assert.GreaterOrEqual(t, r.DistanceKm, got[i-1].DistanceKm)
		}
	}
}

func TestFindNearbyLimitAndStableTies(t *testing.T) {
	var candidates []site
	for _, name := range []string{"a", "b", "c", "d"} {
		candidates = append(candidates, at(name, 40.7128, -74.0060))
	}

	got := FindNearby(candidates, newYork, 1, 3)

	require.Len(t, got, 3)
	assert.Equal(t, []string{"a", "b", "c"}, []string{got[0].Item.name, got[1].Item.name, got[2].Item.name})
}

func TestFindNearbyNeverExceedsRadius(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	var candidates []site
	for i := 0; i < 300; i++ {
		candidates = append(candidates, at("x", newYork.Latitude+rng.Float64()-0.5, newYork.Longitude+rng.Float64()-0.5))
	}

	for _, radius := range []float64{0.5, 5, 20, 60} {
		got := FindNearby(candidates, newYork, radius, 1000)
		for i, r := range got {
			p, _ := r.Item.Location()
			assert.LessOrEqual(t, DistanceKm(newYork, p), radius)
			if i > 0 {
				assert.GreaterOrEqual(t, r.DistanceKm, got[i-1].DistanceKm)
			}
		}
	}
}

func TestFindNearbyNegativeRadius(t *testing.T) {
	got := FindNearby([]site{at("a", 0, 0)}, Point{}, -1, 10)
	assert.Empty(t, got)
}

func TestBoxAroundContainsCircle(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for _, origin := range []Point{newYork, london, sydney, {Latitude: 70, Longitude: 20}} {
		for _, radius := range []float64{1, 10, 50, 300} {
			box, ok := BoxAround(origin, radius)
			require.True(t, ok)

			for i := 0; i < 200; i++ {
				// случайная точка на границе круга
				bearing := rng.Float64() * 2 * math.Pi
				p := destination(origin, bearing, radius*0.999)
				assert.True(t, box.Contains(p), "origin=%v radius=%v point=%v", origin, radius, p)
			}
		}
	}
}

func TestBoxAroundDegenerateCases(t *testing.T) {
	_, ok := BoxAround(Point{Latitude: 89.99, Longitude: 0}, 50)
	assert.False(t, ok, "touches the pole")

	_, ok = BoxAround(Point{Latitude: 0, Longitude: 179.99}, 50)
	assert.False(t, ok, "crosses the antimeridian")

	_, ok = BoxAround(newYork, 0)
	assert.False(t, ok)
}

// destination — точка в distanceKm от origin по азимуту bearing
func destination(origin Point, bearing, distanceKm float64) Point {
	angular := distanceKm / EarthRadiusKm
	lat1 := toRadians(origin.Latitude)
	lng1 := toRadians(origin.Longitude)

	lat2 := math.Asin(math.Sin(lat1)*math.Cos(angular) + math.Cos(lat1)*math.Sin(angular)*math.Cos(bearing))
	lng2 := lng1 + math.Atan2(math.Sin(bearing)*math.Sin(angular)*math.Cos(lat1), math.Cos(angular)-math.Sin(lat1)*math.Sin(lat2))

	return Point{Latitude: lat2 * 180 / math.Pi, Longitude: lng2 * 180 / math.Pi}
}
