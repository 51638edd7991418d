// ABOUTME: Two-stage resolver for free chat text
// ABOUTME: Classifies text as a stop, a task or neither

package chat

import (
	"github.com/harper/willow/internal/models"
	"github.com/harper/willow/internal/taskmap"
	"github.com/harper/willow/internal/tasklist"
)

// ResolutionKind tags what a piece of text named.
type ResolutionKind int

const (
	ResolvedNeither ResolutionKind = iota
	ResolvedStop
	ResolvedTask
)

// Resolution is the result of Resolve. Exactly one of Stop and Task is set
// unless Kind is ResolvedNeither.
type Resolution struct {
	Kind ResolutionKind
	Stop *models.Stop
	Task *models.Task
}

// Resolve tries text as a stop on m first, then as a task in tl.
func Resolve(m *taskmap.Taskmap, tl *tasklist.Tasklist, text string) Resolution {
	if m != nil {
		if stop, err := m.FindStop(text); err == nil {
			return Resolution{Kind: ResolvedStop, Stop: stop}
		}
	}
	if tl != nil {
		if task, err := tl.FindTask(text); err == nil {
			return Resolution{Kind: ResolvedTask, Task: task}
		}
	}
	return Resolution{Kind: ResolvedNeither}
}
