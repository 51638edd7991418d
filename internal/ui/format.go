// ABOUTME: Terminal UI formatting utilities
// ABOUTME: Provides human-readable output for replies, stops and tasks

package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/harper/willow/internal/chat"
	"github.com/harper/willow/internal/models"
)

// AckMark is printed for acknowledged messages.
const AckMark = "👍"

// FormatReply renders an engine reply for a terminal. Silent replies are "".
func FormatReply(r chat.Reply) string {
	switch r.Kind {
	case chat.KindAck:
		if r.AckPrevious {
			return color.GreenString(AckMark + " " + AckMark)
		}
		return color.GreenString(AckMark)
	case chat.KindText:
		return r.Text
	case chat.KindCards:
		cards := make([]string, 0, len(r.Cards))
		for _, c := range r.Cards {
			cards = append(cards, FormatCard(c))
		}
		return strings.Join(cards, "\n\n")
	default:
		return ""
	}
}

// FormatCard renders a card as a bold title and indented sections.
func FormatCard(c chat.Card) string {
	var b strings.Builder
	if c.Title != "" {
		b.WriteString(color.New(color.Bold).Sprint(c.Title))
		b.WriteString("\n")
	}
	for i, s := range c.Sections {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(color.CyanString(s.Name))
		b.WriteString("\n")
		for _, line := range strings.Split(strings.TrimRight(s.Value, "\n"), "\n") {
			b.WriteString("  " + line + "\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// FormatTask formats a task for terminal display.
func FormatTask(task *models.Task) string {
	if task == nil {
		return color.New(color.Faint).Sprint("(no task)")
	}
	line := fmt.Sprintf("%s for a %s", task.Quest, color.GreenString(task.Reward))
	if task.Shiny {
		line += " ✨"
	}
	if task.IsRareCandy() {
		line += " 🍬"
	}
	if len(task.Nicknames) > 0 {
		line += color.New(color.Faint).Sprintf(" aka %s", strings.Join(task.Nicknames, ", "))
	}
	return fmt.Sprintf("%s %s", color.New(color.Faint).Sprint(task.ID.String()[:8]), line)
}

// FormatStop formats a stop with the label of its task.
func FormatStop(stop *models.Stop, taskLabel string) string {
	if stop == nil {
		return color.New(color.Faint).Sprint("(invalid stop)")
	}
	coords := fmt.Sprintf("(%.4f, %.4f)", stop.Location.Latitude, stop.Location.Longitude)
	line := fmt.Sprintf("%s %s", color.CyanString(stop.Name), color.New(color.Faint).Sprint(coords))
	if stop.HasTask() {
		line += " - " + taskLabel
	} else {
		line += color.New(color.Faint).Sprint(" - no task")
	}
	if stop.HasShadow() {
		line += color.YellowString(" [shadow: %s]", stop.Shadow)
	}
	return line
}

// FormatRelativeTime formats a time as relative to now.
func FormatRelativeTime(t time.Time) string {
	diff := time.Since(t)

	// Handle future times (clock skew, bad data)
	if diff < 0 {
		return color.YellowString("in the future")
	}

	if diff < time.Minute {
		return "just now"
	}
	if diff < time.Hour {
		mins := int(diff.Minutes())
		if mins == 1 {
			return "1 minute ago"
		}
		return fmt.Sprintf("%d minutes ago", mins)
	}
	if diff < 24*time.Hour {
		hours := int(diff.Hours())
		if hours == 1 {
			return "1 hour ago"
		}
		return fmt.Sprintf("%d hours ago", hours)
	}
	days := int(diff.Hours() / 24)
	if days == 1 {
		return "1 day ago"
	}
	return fmt.Sprintf("%d days ago", days)
}
