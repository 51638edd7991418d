// ABOUTME: Stop model for a point of interest on a map
// ABOUTME: Holds at most one assigned task plus icon and shadow annotations

package models

import (
	"strings"

	"github.com/google/uuid"
)

// ShadowUnspecified marks a shadow sighting without a known pokemon.
const ShadowUnspecified = "Unknown"

// AssignedTask is a weak reference from a stop to a task in the tasklist.
// Reward and Quest are kept so the map still renders if the task is deleted.
type AssignedTask struct {
	ID     uuid.UUID
	Reward string
	Quest  string
}

// Stop is a named, located point of interest.
type Stop struct {
	Name      string
	Location  GeoPoint
	Nicknames []string
	Task      *AssignedTask
	Icon      string
	Shadow    string
}

// NewStop creates a stop with no task.
func NewStop(location GeoPoint, name string) *Stop {
	return &Stop{Name: strings.TrimSpace(name), Location: location}
}

// MatchesName reports whether text is the stop's name, ignoring case.
func (s *Stop) MatchesName(text string) bool {
	return strings.EqualFold(strings.TrimSpace(text), s.Name)
}

// HasNickname reports whether text is one of the stop's nicknames.
func (s *Stop) HasNickname(text string) bool {
	return containsFold(s.Nicknames, text)
}

// AddNickname appends a nickname. Other stops may use the same one.
func (s *Stop) AddNickname(nickname string) {
	nickname = strings.TrimSpace(nickname)
	if nickname == "" || s.HasNickname(nickname) {
		return
	}
	s.Nicknames = append(s.Nicknames, nickname)
}

// SetTask assigns t. It returns true when the stop changed and false when
// the same task, or one with the same reward, was already assigned.
// A different task yields a *TaskAlreadyAssignedError.
func (s *Stop) SetTask(t *Task) (bool, error) {
	if s.Task == nil {
		s.Task = &AssignedTask{ID: t.ID, Reward: t.Reward, Quest: t.Quest}
		return true, nil
	}
	if s.Task.ID == t.ID || strings.EqualFold(s.Task.Reward, t.Reward) {
		return false, nil
	}
	return false, &TaskAlreadyAssignedError{Reward: s.Task.Reward}
}

// HasTask reports whether a task is assigned.
func (s *Stop) HasTask() bool {
	return s.Task != nil
}

// Reset clears the task, icon and shadow annotation.
func (s *Stop) Reset() {
	s.Task = nil
	s.Icon = ""
	s.Shadow = ""
}

// SetShadow records a shadow sighting. An empty name means unspecified.
func (s *Stop) SetShadow(name string) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = ShadowUnspecified
	}
	s.Shadow = name
}

// ResetShadow clears the shadow annotation and leaves the task alone.
func (s *Stop) ResetShadow() {
	s.Shadow = ""
}

// HasShadow reports whether a shadow sighting is recorded.
func (s *Stop) HasShadow() bool {
	return s.Shadow != ""
}
