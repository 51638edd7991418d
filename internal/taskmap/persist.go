// ABOUTME: Save and load of taskmaps as GeoJSON documents
// ABOUTME: Atomic writes so a crash never leaves a half-written map

package taskmap

import (
	"errors"
	"fmt"
	"time"

	"github.com/harper/willow/internal/geojson"
	"github.com/harper/willow/internal/models"
	"github.com/harper/willow/internal/storage"
)

// Layouts for timestamps written without an offset; they are read in the map's zone.
var naiveLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

// Document builds the GeoJSON document for the map.
func (m *Taskmap) Document() *geojson.FeatureCollection {
	props := geojson.MapProperties{
		Timezone:  m.zoneID,
		LastReset: m.LastReset().Format(time.RFC3339Nano),
	}
	if m.bounds != nil {
		props.Bounds = []geojson.PointCoordinates{
			geojson.FromPoint(m.bounds.Corner1),
			geojson.FromPoint(m.bounds.Corner2),
		}
	}
	if m.location != nil {
		loc := geojson.FromPoint(*m.location)
		props.Location = &loc
	}
	return geojson.NewFeatureCollection(m.stops, props)
}

// ErrSave wraps every failure to write a map document.
var ErrSave = errors.New("save taskmap")

// Save writes the document to the map's path.
func (m *Taskmap) Save() error {
	if m.path == "" {
		return fmt.Errorf("%w: no storage path", ErrSave)
	}
	data, err := m.Document().ToJSONIndent()
	if err != nil {
		return fmt.Errorf("%w: encode: %w", ErrSave, err)
	}
	if err := storage.AtomicWrite(m.path, data); err != nil {
		return fmt.Errorf("%w: %w", ErrSave, err)
	}
	return nil
}

// Load reads the document at path. A missing file yields storage.ErrNotFound.
func Load(path string, opts ...Option) (*Taskmap, error) {
	data, err := storage.ReadFile(path)
	if err != nil {
		return nil, err
	}
	m, err := Decode(data, path, opts...)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return m, nil
}

// LoadOrNew loads the map at path or creates a fresh one when no file exists.
// created reports which happened.
func LoadOrNew(path string, opts ...Option) (m *Taskmap, created bool, err error) {
	m, err = Load(path, opts...)
	if errors.Is(err, storage.ErrNotFound) {
		return New(path, opts...), true, nil
	}
	if err != nil {
		return nil, false, err
	}
	return m, false, nil
}

// Decode builds a map from document bytes. path becomes the map's save path.
func Decode(data []byte, path string, opts ...Option) (*Taskmap, error) {
	fc, err := geojson.Parse(data)
	if err != nil {
		return nil, err
	}

	m := New(path, opts...)

	if tz := fc.Properties.Timezone; tz != "" {
		if err := m.SetTimeZone(tz); err != nil {
			return nil, err
		}
	}
	if len(fc.Properties.Bounds) == 2 {
		b, err := models.NewBounds(fc.Properties.Bounds[0].Point(), fc.Properties.Bounds[1].Point())
		if err != nil {
			return nil, err
		}
		m.bounds = &b
	}
	if fc.Properties.Location != nil {
		p := fc.Properties.Location.Point()
		m.location = &p
	}
	if s := fc.Properties.LastReset; s != "" {
		t, err := parseTimestamp(s, m.zoneOrDefault())
		if err != nil {
			return nil, fmt.Errorf("invalid last_reset %q: %w", s, err)
		}
		m.lastReset = t
	}

	stops, err := fc.Stops()
	if err != nil {
		return nil, err
	}
	for _, stop := range stops {
		// Bounds apply to new stops only
		if _, dup := m.index[key(stop.Name)]; dup {
			return nil, fmt.Errorf("stop %q: %w", stop.Name, models.ErrDuplicateStopName)
		}
		m.addStop(stop)
	}
	return m, nil
}

func parseTimestamp(s string, loc *time.Location) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	var err error
	for _, layout := range naiveLayouts {
		var t time.Time
		if t, err = time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, err
}
