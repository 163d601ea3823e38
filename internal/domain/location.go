package domain

import (
	"fmt"
	"math"
	"time"
)

// earthRadiusMeters is the mean earth radius used by the haversine formula.
const earthRadiusMeters = 6371000.0

// DefaultMaxAccuracy is the largest accuracy radius considered usable for
// proximity features.
const DefaultMaxAccuracy = Distance(100.0)

// recentWindow is how far back a location or sighting still counts as fresh.
const recentWindow = 5 * time.Minute

// Latitude is a validated latitude in degrees.
type Latitude float64

// NewLatitude validates a latitude value.
func NewLatitude(degrees float64) (Latitude, error) {
	if degrees < -90 || degrees > 90 {
		return 0, NewInvalidLocationError(fmt.Sprintf("latitude %v out of range [-90, 90]", degrees))
	}
	return Latitude(degrees), nil
}

// Degrees returns the underlying value.
func (l Latitude) Degrees() float64 { return float64(l) }

// Longitude is a validated longitude in degrees.
type Longitude float64

// NewLongitude validates a longitude value.
func NewLongitude(degrees float64) (Longitude, error) {
	if degrees < -180 || degrees > 180 {
		return 0, NewInvalidLocationError(fmt.Sprintf("longitude %v out of range [-180, 180]", degrees))
	}
	return Longitude(degrees), nil
}

// Degrees returns the underlying value.
func (l Longitude) Degrees() float64 { return float64(l) }

// Distance is a non-negative distance in meters.
type Distance float64

// NewDistance validates a distance value.
func NewDistance(meters float64) (Distance, error) {
	if meters < 0 {
		return 0, NewInvalidLocationError(fmt.Sprintf("distance %v cannot be negative", meters))
	}
	return Distance(meters), nil
}

// Meters returns the underlying value.
func (d Distance) Meters() float64 { return float64(d) }

// Location is a validated geographic position with an accuracy radius.
type Location struct {
	Latitude  Latitude
	Longitude Longitude
	Accuracy  Distance
	Timestamp time.Time
}

// NewLocation constructs a Location, validating each component.
func NewLocation(lat, lon, accuracy float64, timestamp time.Time) (Location, error) {
	latitude, err := NewLatitude(lat)
	if err != nil {
		return Location{}, err
	}

	longitude, err := NewLongitude(lon)
	if err != nil {
		return Location{}, err
	}

	radius, err := NewDistance(accuracy)
	if err != nil {
		return Location{}, err
	}

	return Location{
		Latitude:  latitude,
		Longitude: longitude,
		Accuracy:  radius,
		Timestamp: timestamp,
	}, nil
}

// DistanceTo computes the great-circle distance to another location using the
// haversine formula.
func (l Location) DistanceTo(other Location) Distance {
	lat1 := degToRad(l.Latitude.Degrees())
	lon1 := degToRad(l.Longitude.Degrees())
	lat2 := degToRad(other.Latitude.Degrees())
	lon2 := degToRad(other.Longitude.Degrees())

	dLat := lat2 - lat1
	dLon := lon2 - lon1

	a := math.Pow(math.Sin(dLat/2), 2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Pow(math.Sin(dLon/2), 2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return Distance(c * earthRadiusMeters)
}

// IsRecent reports whether the fix is within the last five minutes.
func (l Location) IsRecent() bool {
	return l.Timestamp.After(time.Now().Add(-recentWindow))
}

// HasAcceptableAccuracy reports whether the accuracy radius is within max.
// Pass DefaultMaxAccuracy when no tighter bound applies.
func (l Location) HasAcceptableAccuracy(max Distance) bool {
	return l.Accuracy <= max
}

func degToRad(deg float64) float64 {
	return deg * math.Pi / 180
}
