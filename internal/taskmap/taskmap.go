// ABOUTME: Per-server map of stops with bounds, time zone and reset bookkeeping
// ABOUTME: Owns stop lookup, the daily reset window and document persistence

package taskmap

import (
	"fmt"
	"strings"
	"time"

	// Zone ids must resolve on hosts without a system tz database
	_ "time/tzdata"

	"github.com/harper/willow/internal/models"
)

// DefaultTimeZone is used when a map has no configured zone.
var DefaultTimeZone = time.UTC

// Clock returns the current instant.
type Clock func() time.Time

// Option configures a Taskmap.
type Option func(*Taskmap)

// WithClock replaces time.Now, for tests and replay.
func WithClock(c Clock) Option {
	return func(m *Taskmap) { m.clock = c }
}

// Taskmap is one community's map. It is not safe for concurrent use;
// callers serialize access per server.
type Taskmap struct {
	stops     []*models.Stop
	index     map[string]*models.Stop
	bounds    *models.Bounds
	location  *models.GeoPoint
	zoneID    string
	zone      *time.Location
	lastReset time.Time
	path      string
	clock     Clock
}

// New creates an empty map that saves to path.
func New(path string, opts ...Option) *Taskmap {
	m := &Taskmap{
		index: make(map[string]*models.Stop),
		path:  path,
		clock: time.Now,
		zone:  DefaultTimeZone,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.lastReset = m.Now()
	return m
}

func key(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Path returns the document path fixed at creation.
func (m *Taskmap) Path() string {
	return m.path
}

// NewStop adds a stop at point. Names are unique ignoring case and the point
// must be inside the bounds when bounds are set.
func (m *Taskmap) NewStop(point models.GeoPoint, name string) (*models.Stop, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("stop name is required")
	}
	if _, ok := m.index[key(name)]; ok {
		return nil, models.ErrDuplicateStopName
	}
	if err := models.ValidateCoordinates(point.Latitude, point.Longitude); err != nil {
		return nil, err
	}
	if m.bounds != nil && !m.bounds.Contains(point) {
		return nil, models.ErrOutOfBounds
	}

	stop := models.NewStop(point, name)
	m.addStop(stop)
	return stop, nil
}

func (m *Taskmap) addStop(stop *models.Stop) {
	m.stops = append(m.stops, stop)
	m.index[key(stop.Name)] = stop
}

// FindStop matches text against stop names, then nicknames in map order.
func (m *Taskmap) FindStop(text string) (*models.Stop, error) {
	k := key(text)
	if k == "" {
		return nil, models.ErrStopNotFound
	}
	if stop, ok := m.index[k]; ok {
		return stop, nil
	}
	for _, stop := range m.stops {
		if stop.HasNickname(text) {
			return stop, nil
		}
	}
	return nil, models.ErrStopNotFound
}

// RemoveStop deletes stop from the map.
func (m *Taskmap) RemoveStop(stop *models.Stop) error {
	for i, s := range m.stops {
		if s == stop {
			m.stops = append(m.stops[:i], m.stops[i+1:]...)
			delete(m.index, key(stop.Name))
			return nil
		}
	}
	return models.ErrStopNotFound
}

// Stops returns the stops in map order.
func (m *Taskmap) Stops() []*models.Stop {
	return append([]*models.Stop(nil), m.stops...)
}

// Len returns the number of stops.
func (m *Taskmap) Len() int {
	return len(m.stops)
}

// SetBounds records the boundary applied to later NewStop calls.
// Existing stops are not checked.
func (m *Taskmap) SetBounds(corner1, corner2 models.GeoPoint) error {
	for _, c := range []models.GeoPoint{corner1, corner2} {
		if err := models.ValidateCoordinates(c.Latitude, c.Longitude); err != nil {
			return err
		}
	}
	b, err := models.NewBounds(corner1, corner2)
	if err != nil {
		return err
	}
	m.bounds = &b
	return nil
}

// Bounds returns the configured bounds, if any.
func (m *Taskmap) Bounds() (models.Bounds, bool) {
	if m.bounds == nil {
		return models.Bounds{}, false
	}
	return *m.bounds, true
}

// SetLocation records the point the web view centres on.
func (m *Taskmap) SetLocation(lat, lng float64) error {
	if err := models.ValidateCoordinates(lat, lng); err != nil {
		return err
	}
	p := models.NewGeoPoint(lat, lng)
	m.location = &p
	return nil
}

// Location returns the web view centre, if set.
func (m *Taskmap) Location() (models.GeoPoint, bool) {
	if m.location == nil {
		return models.GeoPoint{}, false
	}
	return *m.location, true
}

// SetTimeZone sets the zone whose midnight triggers resets.
func (m *Taskmap) SetTimeZone(zoneID string) error {
	zoneID = strings.TrimSpace(zoneID)
	if zoneID == "" || zoneID == "Local" {
		return fmt.Errorf("%w: %q", models.ErrUnknownTimeZone, zoneID)
	}
	loc, err := time.LoadLocation(zoneID)
	if err != nil {
		return fmt.Errorf("%w: %q", models.ErrUnknownTimeZone, zoneID)
	}
	m.zoneID = zoneID
	m.zone = loc
	return nil
}

// TimeZone returns the configured zone id, or "" when using the default.
func (m *Taskmap) TimeZone() string {
	return m.zoneID
}

func (m *Taskmap) zoneOrDefault() *time.Location {
	if m.zone == nil {
		return DefaultTimeZone
	}
	return m.zone
}

// Now returns the current time in the map's zone.
func (m *Taskmap) Now() time.Time {
	return m.clock().In(m.zoneOrDefault())
}

// LastReset returns when the map was last reset, in the map's zone.
func (m *Taskmap) LastReset() time.Time {
	return m.lastReset.In(m.zoneOrDefault())
}
