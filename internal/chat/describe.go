// ABOUTME: Human-readable messages for engine errors
// ABOUTME: Every failure becomes a reply instead of ending the conversation

package chat

import (
	"errors"
	"fmt"

	"github.com/harper/willow/internal/coords"
	"github.com/harper/willow/internal/models"
	"github.com/harper/willow/internal/registry"
)

var (
	// ErrNotAdmin is returned for admin commands from non-admins.
	ErrNotAdmin = errors.New("only server admins can do that")
	// ErrNotMaintainer is returned for maintainer commands from anyone else.
	ErrNotMaintainer = errors.New("only the bot maintainer can do that")
	// ErrNoServer is returned for map commands sent outside a server.
	ErrNoServer = errors.New("this command only works in a server")
)

var messages = []struct {
	err error
	msg string
}{
	{models.ErrDuplicateStopName, "A stop with that name already exists."},
	{models.ErrDuplicateTask, "That task already exists."},
	{models.ErrDuplicateNickname, "That nickname is already used by another task."},
	{models.ErrOutOfBounds, "That stop is outside the map bounds."},
	{models.ErrInvalidBounds, "The bounds corners must differ in both latitude and longitude."},
	{models.ErrUnknownTimeZone, "Unknown time zone. Use a zone name like America/New_York."},
	{models.ErrStopNotFound, "Stop not found."},
	{models.ErrTaskNotFound, "Task not found."},
	{models.ErrMissingPortalLocation, "No portal location data in URL."},
	{models.ErrInvalidCoordinates, "Those coordinates are not valid. Give latitude then longitude, like 42.46 -76.51."},
	{coords.ErrMissingName, "Please give the stop a name."},
	{registry.ErrInvalidServerID, "This command only works in a server."},
	{registry.ErrMapNotFound, "No map for that server."},
	{ErrNoServer, "This command only works in a server."},
	{ErrNotAdmin, "Sorry, only server admins can do that."},
	{ErrNotMaintainer, "Sorry, you can't do that."},
}

// Describe renders err for a chat reply.
func Describe(err error) string {
	if err == nil {
		return ""
	}
	var assigned *models.TaskAlreadyAssignedError
	if errors.As(err, &assigned) {
		return fmt.Sprintf("That stop already has a task for a %s. Use resetstop if it was misreported.", assigned.Reward)
	}
	for _, m := range messages {
		if errors.Is(err, m.err) {
			return m.msg
		}
	}
	return "Something went wrong: " + err.Error()
}

// known reports whether err is one Describe has a message for.
func known(err error) bool {
	if errors.Is(err, models.ErrTaskAlreadyAssigned) {
		return true
	}
	for _, m := range messages {
		if errors.Is(err, m.err) {
			return true
		}
	}
	return false
}
