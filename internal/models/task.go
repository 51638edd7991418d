// ABOUTME: Research task model
// ABOUTME: Reward/quest pairs with nickname aliases and a stable id

package models

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// RareCandy is the reward name flagged in task listings.
const RareCandy = "Rare Candy"

// Task is a quest and the reward it gives.
type Task struct {
	ID        uuid.UUID `json:"id"`
	Reward    string    `json:"reward"`
	Quest     string    `json:"quest"`
	Shiny     bool      `json:"shiny"`
	Nicknames []string  `json:"nicknames,omitempty"`
}

// NewTask creates a task with a generated UUID.
func NewTask(reward, quest string, shiny bool) *Task {
	return &Task{
		ID:     uuid.New(),
		Reward: strings.TrimSpace(reward),
		Quest:  strings.TrimSpace(quest),
		Shiny:  shiny,
	}
}

// MatchesQuest reports whether text names this task's quest, ignoring case.
func (t *Task) MatchesQuest(text string) bool {
	return strings.EqualFold(strings.TrimSpace(text), t.Quest)
}

// MatchesReward reports whether text names this task's reward, ignoring case.
func (t *Task) MatchesReward(text string) bool {
	return strings.EqualFold(strings.TrimSpace(text), t.Reward)
}

// HasNickname reports whether text is one of the task's nicknames.
func (t *Task) HasNickname(text string) bool {
	return containsFold(t.Nicknames, text)
}

// AddNickname appends a nickname unless it is already present.
// It returns false when nothing changed.
func (t *Task) AddNickname(nickname string) bool {
	nickname = strings.TrimSpace(nickname)
	if nickname == "" || t.HasNickname(nickname) {
		return false
	}
	t.Nicknames = append(t.Nicknames, nickname)
	return true
}

// IsRareCandy reports whether the reward is Rare Candy.
func (t *Task) IsRareCandy() bool {
	return strings.EqualFold(t.Reward, RareCandy)
}

// String formats the task the way listings show it.
func (t *Task) String() string {
	return fmt.Sprintf("%s for a %s", t.Quest, t.Reward)
}

// Clone returns a deep copy.
func (t *Task) Clone() *Task {
	c := *t
	c.Nicknames = append([]string(nil), t.Nicknames...)
	return &c
}

func containsFold(list []string, text string) bool {
	text = strings.TrimSpace(text)
	for _, s := range list {
		if strings.EqualFold(s, text) {
			return true
		}
	}
	return false
}
