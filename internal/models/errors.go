// ABOUTME: Error taxonomy for the stop and task model
// ABOUTME: Sentinels callers branch on with errors.Is and errors.As

package models

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateStopName is returned when a stop name is already on the map.
	ErrDuplicateStopName = errors.New("a stop with that name already exists")
	// ErrDuplicateTask is returned when a quest is already in the tasklist.
	ErrDuplicateTask = errors.New("that task already exists")
	// ErrDuplicateNickname is returned when a nickname already points at another task.
	ErrDuplicateNickname = errors.New("that nickname is already used by another task")
	// ErrOutOfBounds is returned when a new stop falls outside the map bounds.
	ErrOutOfBounds = errors.New("stop is outside the map bounds")
	// ErrInvalidBounds is returned when bounds corners coincide on an axis.
	ErrInvalidBounds = errors.New("bounds corners must differ in latitude and longitude")
	// ErrUnknownTimeZone is returned when a zone id cannot be resolved.
	ErrUnknownTimeZone = errors.New("unknown time zone")
	// ErrStopNotFound is returned when no stop name or nickname matches.
	ErrStopNotFound = errors.New("stop not found")
	// ErrTaskNotFound is returned when no quest, nickname or reward matches.
	ErrTaskNotFound = errors.New("task not found")
	// ErrTaskAlreadyAssigned matches any *TaskAlreadyAssignedError.
	ErrTaskAlreadyAssigned = errors.New("stop already has a task assigned")
	// ErrInvalidCoordinates is returned when a latitude or longitude cannot be used.
	ErrInvalidCoordinates = errors.New("invalid coordinates")
	// ErrMissingPortalLocation is returned for intel URLs without a pll parameter.
	ErrMissingPortalLocation = errors.New("no portal location data in URL")
)

// TaskAlreadyAssignedError carries the reward of the task a stop already has.
type TaskAlreadyAssignedError struct {
	Reward string
}

func (e *TaskAlreadyAssignedError) Error() string {
	return fmt.Sprintf("stop already has a task assigned (%s)", e.Reward)
}

// Is reports whether target is ErrTaskAlreadyAssigned.
func (e *TaskAlreadyAssignedError) Is(target error) bool {
	return target == ErrTaskAlreadyAssigned
}
