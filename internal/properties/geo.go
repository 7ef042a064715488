package properties

import (
	"math"

	"github.com/umahmood/haversine"
)

const (
	earthRadiusKm   = 6371.0
	MaxRadiusKm     = 200.0
	DefaultRadiusKm = 5.0
)

// boundingBox is a cheap SQL prefilter around a point; it may over-select,
// never under-select.
type boundingBox struct {
	MinLat, MaxLat float64
	MinLng, MaxLng float64
}

func boxAround(lat, lng, radiusKm float64) boundingBox {
	angular := radiusKm / earthRadiusKm
	latDelta := degrees(angular)
	box := boundingBox{
		MinLat: math.Max(lat-latDelta, -90),
		MaxLat: math.Min(lat+latDelta, 90),
		MinLng: -180,
		MaxLng: 180,
	}
	if box.MinLat <= -90 || box.MaxLat >= 90 {
		return box
	}
	lngDelta := degrees(math.Asin(math.Sin(angular) / math.Cos(radians(lat))))
	if lng-lngDelta < -180 || lng+lngDelta > 180 {
		// Crossing the antimeridian; keep the full longitude range.
		return box
	}
	box.MinLng = lng - lngDelta
	box.MaxLng = lng + lngDelta
	return box
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }

func degrees(rad float64) float64 { return rad * 180 / math.Pi }

func distanceKm(lat1, lng1, lat2, lng2 float64) float64 {
	_, km := haversine.Distance(haversine.Coord{Lat: lat1, Lon: lng1}, haversine.Coord{Lat: lat2, Lon: lng2})
	return km
}
