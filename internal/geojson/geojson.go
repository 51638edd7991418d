// ABOUTME: GeoJSON document codec for taskmaps
// ABOUTME: Converts stops to Point features and map settings to top-level properties

package geojson

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/harper/willow/internal/models"
)

// Type names used in documents.
const (
	TypeFeatureCollection = "FeatureCollection"
	TypeFeature           = "Feature"
	TypePoint             = "Point"
)

// FeatureCollection is a taskmap document: one feature per stop plus a
// top-level properties section for map settings.
type FeatureCollection struct {
	Type       string        `json:"type"`
	Properties MapProperties `json:"properties"`
	Features   []Feature     `json:"features"`
}

// MapProperties holds the settings the web viewer and the bot share.
type MapProperties struct {
	Bounds    []PointCoordinates `json:"bounds,omitempty"`
	Location  *PointCoordinates  `json:"location,omitempty"`
	Timezone  string             `json:"timezone,omitempty"`
	LastReset string             `json:"last_reset,omitempty"`
}

// Feature represents a GeoJSON Feature for one stop.
type Feature struct {
	Type       string         `json:"type"`
	Geometry   Geometry       `json:"geometry"`
	Properties StopProperties `json:"properties"`
}

// Geometry represents a GeoJSON Point geometry.
type Geometry struct {
	Type        string           `json:"type"`
	Coordinates PointCoordinates `json:"coordinates"`
}

// PointCoordinates represents [longitude, latitude] for a Point.
type PointCoordinates [2]float64

// StopProperties is the properties bag the web viewer reads.
type StopProperties struct {
	Name     string   `json:"Name"`
	Nickname []string `json:"Nickname"`
	TaskID   string   `json:"TaskID,omitempty"`
	Reward   string   `json:"Reward,omitempty"`
	Quest    string   `json:"Quest,omitempty"`
	Icon     string   `json:"Icon,omitempty"`
	Shadow   string   `json:"Shadow,omitempty"`
}

// FromPoint converts a model point to GeoJSON order.
func FromPoint(p models.GeoPoint) PointCoordinates {
	return PointCoordinates(p.Coordinates())
}

// Point converts back to a model point.
func (c PointCoordinates) Point() models.GeoPoint {
	return models.GeoPoint{Longitude: c[0], Latitude: c[1]}
}

// StopFeature converts a stop to a Point feature.
func StopFeature(stop *models.Stop) Feature {
	props := StopProperties{
		Name:     stop.Name,
		Nickname: append([]string{}, stop.Nicknames...),
		Icon:     stop.Icon,
		Shadow:   stop.Shadow,
	}
	if stop.Task != nil {
		props.TaskID = stop.Task.ID.String()
		props.Reward = stop.Task.Reward
		props.Quest = stop.Task.Quest
	}

	return Feature{
		Type: TypeFeature,
		Geometry: Geometry{
			Type:        TypePoint,
			Coordinates: FromPoint(stop.Location),
		},
		Properties: props,
	}
}

// Stop converts a feature back to a stop.
func (f Feature) Stop() (*models.Stop, error) {
	if f.Geometry.Type != TypePoint {
		return nil, fmt.Errorf("stop %q: unsupported geometry %q", f.Properties.Name, f.Geometry.Type)
	}
	p := f.Geometry.Coordinates.Point()
	if err := models.ValidateCoordinates(p.Latitude, p.Longitude); err != nil {
		return nil, fmt.Errorf("stop %q: %w", f.Properties.Name, err)
	}
	if f.Properties.Name == "" {
		return nil, fmt.Errorf("feature without a Name")
	}

	stop := models.NewStop(p, f.Properties.Name)
	for _, nick := range f.Properties.Nickname {
		stop.AddNickname(nick)
	}
	stop.Icon = f.Properties.Icon
	stop.Shadow = f.Properties.Shadow

	// Documents written before task ids existed carry only Reward/Quest
	if f.Properties.Reward != "" || f.Properties.Quest != "" || f.Properties.TaskID != "" {
		assigned := &models.AssignedTask{Reward: f.Properties.Reward, Quest: f.Properties.Quest}
		if f.Properties.TaskID != "" {
			id, err := uuid.Parse(f.Properties.TaskID)
			if err != nil {
				return nil, fmt.Errorf("stop %q: invalid TaskID: %w", stop.Name, err)
			}
			assigned.ID = id
		}
		stop.Task = assigned
	}
	return stop, nil
}

// NewFeatureCollection builds a document from stops in map order.
func NewFeatureCollection(stops []*models.Stop, props MapProperties) *FeatureCollection {
	features := make([]Feature, 0, len(stops))
	for _, stop := range stops {
		features = append(features, StopFeature(stop))
	}
	return &FeatureCollection{
		Type:       TypeFeatureCollection,
		Properties: props,
		Features:   features,
	}
}

// Parse decodes and checks a document.
func Parse(data []byte) (*FeatureCollection, error) {
	var fc FeatureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("parse geojson: %w", err)
	}
	if fc.Type != TypeFeatureCollection {
		return nil, fmt.Errorf("parse geojson: expected %s, got %q", TypeFeatureCollection, fc.Type)
	}
	if n := len(fc.Properties.Bounds); n != 0 && n != 2 {
		return nil, fmt.Errorf("parse geojson: bounds need 2 corners, got %d", n)
	}
	return &fc, nil
}

// Stops converts every feature to a stop.
func (fc *FeatureCollection) Stops() ([]*models.Stop, error) {
	stops := make([]*models.Stop, 0, len(fc.Features))
	for _, f := range fc.Features {
		stop, err := f.Stop()
		if err != nil {
			return nil, err
		}
		stops = append(stops, stop)
	}
	return stops, nil
}

// ToJSON serializes a FeatureCollection to JSON.
func (fc *FeatureCollection) ToJSON() ([]byte, error) {
	return json.Marshal(fc)
}

// ToJSONIndent serializes a FeatureCollection to indented JSON.
func (fc *FeatureCollection) ToJSONIndent() ([]byte, error) {
	return json.MarshalIndent(fc, "", "  ")
}
