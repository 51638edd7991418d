// ABOUTME: Common storage errors
// ABOUTME: Enables consistent error handling across storage implementations

package storage

import "errors"

// ErrNotFound is returned when a requested snapshot or document does not exist.
var ErrNotFound = errors.New("not found")

// ErrWrongTool is returned when a backup file was written by something else.
var ErrWrongTool = errors.New("backup was not written by willow")
