// Package geo provides geographic primitives shared across modules.
// This is part of the platform layer and contains no business logic.
package geo

import "math"

const (
	// earthRadiusKm is the mean Earth radius used for great-circle distance.
	earthRadiusKm = 6371.0

	// kmPerDegreeLat is the approximate north-south span of one degree
	// of latitude.
	kmPerDegreeLat = 111.0
)

// Point is a WGS 84 coordinate pair.
type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// BoundingBox is an axis-aligned geographic box.
type BoundingBox struct {
	MinLat float64 `json:"minLat"`
	MinLon float64 `json:"minLon"`
	MaxLat float64 `json:"maxLat"`
	MaxLon float64 `json:"maxLon"`
}

// BoxAround returns a bounding box approximating a square of the given
// side length (km) centered on p. Longitude span widens with latitude so
// the box stays roughly square away from the equator.
func BoxAround(p Point, sideKm float64) BoundingBox {
	half := sideKm / 2
	latDelta := half / kmPerDegreeLat

	cosLat := math.Cos(p.Lat * math.Pi / 180)
	if cosLat < 0.01 {
		cosLat = 0.01
	}
	lonDelta := half / (kmPerDegreeLat * cosLat)

	return BoundingBox{
		MinLat: p.Lat - latDelta,
		MinLon: p.Lon - lonDelta,
		MaxLat: p.Lat + latDelta,
		MaxLon: p.Lon + lonDelta,
	}
}

// Haversine returns the great-circle distance between a and b in kilometers.
func Haversine(a, b Point) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180

	sinLat := math.Sin(dLat / 2)
	sinLon := math.Sin(dLon / 2)
	h := sinLat*sinLat + math.Cos(lat1)*math.Cos(lat2)*sinLon*sinLon

	return 2 * earthRadiusKm * math.Asin(math.Sqrt(h))
}
