package domain

import "fmt"

// Immutable geographic coordinate (latitude, longitude).
type Coordinate struct {
	Lat float64
	Lng float64
}

// Return the coordinate as [lng, lat] for external API compatibility.
func (c Coordinate) LngLat() []float64 { return []float64{c.Lng, c.Lat} }

// Validate checks the coordinate against WGS84 bounds.
func (c Coordinate) Validate() error {
	if c.Lat < -90 || c.Lat > 90 {
		return fmt.Errorf("latitude %.6f out of range [-90, 90]", c.Lat)
	}
	if c.Lng < -180 || c.Lng > 180 {
		return fmt.Errorf("longitude %.6f out of range [-180, 180]", c.Lng)
	}
	return nil
}

// Location is a coordinate with an optional human-readable name,
// as returned by the geocoder.
type Location struct {
	Coordinate
	Name string
}
