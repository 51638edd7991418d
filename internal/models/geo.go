// ABOUTME: Coordinate value types for the map
// ABOUTME: GeoPoint in GeoJSON order and rectangular Bounds

package models

import (
	"fmt"
	"math"
)

// ValidateCoordinates checks if latitude and longitude are within valid ranges.
func ValidateCoordinates(lat, lng float64) error {
	if math.IsNaN(lat) || math.IsNaN(lng) {
		return fmt.Errorf("%w: coordinates cannot be NaN", ErrInvalidCoordinates)
	}
	if math.IsInf(lat, 0) || math.IsInf(lng, 0) {
		return fmt.Errorf("%w: coordinates cannot be infinite", ErrInvalidCoordinates)
	}
	if lat < -90 || lat > 90 {
		return fmt.Errorf("%w: latitude must be between -90 and 90", ErrInvalidCoordinates)
	}
	if lng < -180 || lng > 180 {
		return fmt.Errorf("%w: longitude must be between -180 and 180", ErrInvalidCoordinates)
	}
	return nil
}

// GeoPoint is a longitude/latitude pair.
type GeoPoint struct {
	Longitude float64
	Latitude  float64
}

// NewGeoPoint builds a point from latitude and longitude, the order people type them in.
func NewGeoPoint(lat, lng float64) GeoPoint {
	return GeoPoint{Longitude: lng, Latitude: lat}
}

// Coordinates returns the point as [longitude, latitude].
func (p GeoPoint) Coordinates() [2]float64 {
	return [2]float64{p.Longitude, p.Latitude}
}

// String formats the point as "[lat, lng]" for chat replies.
func (p GeoPoint) String() string {
	return fmt.Sprintf("[%g, %g]", p.Latitude, p.Longitude)
}

// Bounds is an axis-aligned rectangle given by two opposite corners.
type Bounds struct {
	Corner1 GeoPoint
	Corner2 GeoPoint
}

// NewBounds validates that the corners differ on both axes.
func NewBounds(c1, c2 GeoPoint) (Bounds, error) {
	if c1.Latitude == c2.Latitude || c1.Longitude == c2.Longitude {
		return Bounds{}, ErrInvalidBounds
	}
	return Bounds{Corner1: c1, Corner2: c2}, nil
}

// Contains reports whether p lies inside the rectangle, edges included.
func (b Bounds) Contains(p GeoPoint) bool {
	minLat, maxLat := math.Min(b.Corner1.Latitude, b.Corner2.Latitude), math.Max(b.Corner1.Latitude, b.Corner2.Latitude)
	minLng, maxLng := math.Min(b.Corner1.Longitude, b.Corner2.Longitude), math.Max(b.Corner1.Longitude, b.Corner2.Longitude)
	return p.Latitude >= minLat && p.Latitude <= maxLat &&
		p.Longitude >= minLng && p.Longitude <= maxLng
}
