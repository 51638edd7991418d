// ABOUTME: Prefixed chat commands for stops, tasks and map settings
// ABOUTME: Each handler maps arguments onto one core operation and saves

package chat

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/harper/willow/internal/coords"
	"github.com/harper/willow/internal/models"
	"github.com/harper/willow/internal/taskmap"
)

type command struct {
	minArgs     int
	admin       bool
	needsServer bool
	run         func(inv Invocation) (Reply, error)
}

// DeletedTask is shown for a stop whose task was removed from the tasklist.
const DeletedTask = "(deleted task)"

func (e *Engine) commandTable() map[string]command {
	listTasks := command{run: e.listTasks}
	return map[string]command{
		"addstop":       {minArgs: 1, needsServer: true, run: e.addStop},
		"settask":       {minArgs: 2, needsServer: true, run: e.setTask},
		"resetstop":     {minArgs: 1, needsServer: true, run: e.resetStop},
		"deletestop":    {minArgs: 1, needsServer: true, run: e.deleteStop},
		"nicknamestop":  {minArgs: 2, needsServer: true, run: e.nicknameStop},
		"stopinfo":      {minArgs: 1, needsServer: true, run: e.stopInfo},
		"addtask":       {minArgs: 2, run: e.addTask},
		"deletetask":    {minArgs: 1, run: e.deleteTask},
		"nicknametask":  {minArgs: 2, run: e.nicknameTask},
		"listtasks":     listTasks,
		"tasklist":      listTasks,
		"resettasklist": {run: e.resetTasklist},
		"setbounds":     {minArgs: 4, admin: true, needsServer: true, run: e.setBounds},
		"settimezone":   {minArgs: 1, admin: true, needsServer: true, run: e.setTimeZone},
		"setlocation":   {minArgs: 2, admin: true, needsServer: true, run: e.setLocation},
		"resetall":      {admin: true, needsServer: true, run: e.resetAll},
		"resetmap":      {minArgs: 1, run: e.resetMap},
		"resetallmaps":  {run: e.resetAllMaps},
		"serverid":      {admin: true, needsServer: true, run: e.serverID},
		"help":          {run: e.help},
		"setup":         {run: func(Invocation) (Reply, error) { return Cards(e.setupCard()), nil }},
	}
}

// mutate runs fn on the invocation's map and saves when fn succeeds.
func (e *Engine) mutate(inv Invocation, fn func(m *taskmap.Taskmap) error) error {
	return e.maps.With(inv.ServerID, func(m *taskmap.Taskmap) error {
		if err := fn(m); err != nil {
			return err
		}
		return m.Save()
	})
}

func (e *Engine) addStop(inv Invocation) (Reply, error) {
	parsed, err := coords.Parse(inv.Args)
	if err != nil {
		return Reply{}, err
	}
	err = e.mutate(inv, func(m *taskmap.Taskmap) error {
		_, err := m.NewStop(parsed.Location, parsed.Name)
		return err
	})
	if err != nil {
		return Reply{}, err
	}
	e.logger.Info("Stop added", "server", inv.ServerID, "stop", parsed.Name)
	return Text(fmt.Sprintf("Creating stop named: %s at %s.", parsed.Name, parsed.Location)), nil
}

// setTask takes the task first and the stop name as the remaining words.
func (e *Engine) setTask(inv Invocation) (Reply, error) {
	taskText := inv.Args[0]
	stopText := strings.Join(inv.Args[1:], " ")
	err := e.mutate(inv, func(m *taskmap.Taskmap) error {
		stop, err := m.FindStop(stopText)
		if err != nil {
			return err
		}
		task, err := e.tasks.FindTask(taskText)
		if err != nil {
			return err
		}
		return assign(stop, task, taskText)
	})
	if err != nil {
		return Reply{}, err
	}
	return Text("Task set."), nil
}

func (e *Engine) resetStop(inv Invocation) (Reply, error) {
	err := e.mutate(inv, func(m *taskmap.Taskmap) error {
		stop, err := m.FindStop(strings.Join(inv.Args, " "))
		if err != nil {
			return err
		}
		stop.Reset()
		return nil
	})
	if err != nil {
		return Reply{}, err
	}
	return Ack(), nil
}

func (e *Engine) deleteStop(inv Invocation) (Reply, error) {
	name := strings.Join(inv.Args, " ")
	err := e.mutate(inv, func(m *taskmap.Taskmap) error {
		stop, err := m.FindStop(name)
		if err != nil {
			return err
		}
		return m.RemoveStop(stop)
	})
	if err != nil {
		return Reply{}, err
	}
	e.logger.Info("Stop deleted", "server", inv.ServerID, "stop", name)
	return Ack(), nil
}

func (e *Engine) nicknameStop(inv Invocation) (Reply, error) {
	err := e.mutate(inv, func(m *taskmap.Taskmap) error {
		stop, err := m.FindStop(inv.Args[0])
		if err != nil {
			return err
		}
		stop.AddNickname(strings.Join(inv.Args[1:], " "))
		return nil
	})
	if err != nil {
		return Reply{}, err
	}
	return Ack(), nil
}

func (e *Engine) stopInfo(inv Invocation) (Reply, error) {
	var card Card
	err := e.maps.With(inv.ServerID, func(m *taskmap.Taskmap) error {
		stop, err := m.FindStop(strings.Join(inv.Args, " "))
		if err != nil {
			return err
		}
		card = e.stopCard(stop)
		return nil
	})
	if err != nil {
		return Reply{}, err
	}
	return Cards(card), nil
}

func (e *Engine) stopCard(stop *models.Stop) Card {
	card := Card{Title: stop.Name, Sections: []Section{
		{Name: "Location", Value: stop.Location.String()},
	}}
	if len(stop.Nicknames) > 0 {
		card.Sections = append(card.Sections, Section{Name: "Nicknames", Value: strings.Join(stop.Nicknames, ", ")})
	}
	task := "None"
	if stop.HasTask() {
		task = e.TaskLabel(stop.Task)
	}
	card.Sections = append(card.Sections, Section{Name: "Task", Value: task})
	if stop.HasShadow() {
		card.Sections = append(card.Sections, Section{Name: "Shadow", Value: stop.Shadow})
	}
	return card
}

// TaskLabel renders a stop's task, resolving it against the tasklist.
// Documents from before task ids carry only reward and quest text.
func (e *Engine) TaskLabel(a *models.AssignedTask) string {
	if a.ID == uuid.Nil {
		return fmt.Sprintf("%s for a %s", a.Quest, a.Reward)
	}
	task, ok := e.tasks.Get(a.ID)
	if !ok {
		return DeletedTask
	}
	return task.String()
}

// addTask reads "reward quest [shiny]".
func (e *Engine) addTask(inv Invocation) (Reply, error) {
	shiny := false
	if len(inv.Args) > 2 {
		v, err := strconv.ParseBool(inv.Args[2])
		if err != nil {
			return Text("shiny should be either 'True' or 'False'."), nil
		}
		shiny = v
	}
	task, err := e.tasks.AddTask(inv.Args[0], inv.Args[1], shiny)
	if err != nil {
		return Reply{}, err
	}
	e.logger.Info("Task added", "task", task.String(), "id", task.ID)
	return Text("Task Added"), nil
}

func (e *Engine) deleteTask(inv Invocation) (Reply, error) {
	task, err := e.tasks.FindTask(strings.Join(inv.Args, " "))
	if err != nil {
		return Reply{}, err
	}
	if err := e.tasks.RemoveTask(task.ID); err != nil {
		return Reply{}, err
	}
	e.logger.Info("Task deleted", "task", task.String(), "id", task.ID)
	return Ack(), nil
}

func (e *Engine) nicknameTask(inv Invocation) (Reply, error) {
	task, err := e.tasks.FindTask(inv.Args[0])
	if err != nil {
		return Reply{}, err
	}
	if err := e.tasks.AddNickname(task.ID, strings.Join(inv.Args[1:], " ")); err != nil {
		return Reply{}, err
	}
	return Ack(), nil
}

// TaskLines renders the tasklist the way listtasks shows it.
func (e *Engine) TaskLines() []string {
	tasks := e.tasks.Tasks()
	lines := make([]string, 0, len(tasks))
	for _, t := range tasks {
		line := t.String()
		if t.Shiny {
			line += " ✨"
		}
		if t.IsRareCandy() {
			line += " 🍬"
		}
		lines = append(lines, line)
	}
	return lines
}

func (e *Engine) listTasks(Invocation) (Reply, error) {
	lines := e.TaskLines()
	if len(lines) == 0 {
		return Text("No tasks known"), nil
	}
	return Cards(Paginate("Currently Known Tasks", lines, SectionLimit)...), nil
}

func (e *Engine) resetTasklist(Invocation) (Reply, error) {
	path, err := e.tasks.BackupAndClear(e.opts.Now())
	if err != nil {
		return Reply{}, err
	}
	e.logger.Warn("Tasklist cleared", "backup", path)
	return Text("Tasklist cleared. Backup saved to " + path), nil
}

func (e *Engine) setBounds(inv Invocation) (Reply, error) {
	c1, err := coords.ParsePoint(inv.Args[0], inv.Args[1])
	if err != nil {
		return Reply{}, err
	}
	c2, err := coords.ParsePoint(inv.Args[2], inv.Args[3])
	if err != nil {
		return Reply{}, err
	}
	if err := e.mutate(inv, func(m *taskmap.Taskmap) error { return m.SetBounds(c1, c2) }); err != nil {
		return Reply{}, err
	}
	return Ack(), nil
}

func (e *Engine) setTimeZone(inv Invocation) (Reply, error) {
	if err := e.mutate(inv, func(m *taskmap.Taskmap) error { return m.SetTimeZone(inv.Args[0]) }); err != nil {
		return Reply{}, err
	}
	return Ack(), nil
}

func (e *Engine) setLocation(inv Invocation) (Reply, error) {
	p, err := coords.ParsePoint(inv.Args[0], inv.Args[1])
	if err != nil {
		return Reply{}, err
	}
	err = e.mutate(inv, func(m *taskmap.Taskmap) error { return m.SetLocation(p.Latitude, p.Longitude) })
	if err != nil {
		return Reply{}, err
	}
	return Ack(), nil
}

func (e *Engine) resetAll(inv Invocation) (Reply, error) {
	if err := e.mutate(inv, func(m *taskmap.Taskmap) error { m.ResetAll(); return nil }); err != nil {
		return Reply{}, err
	}
	e.logger.Info("Map reset", "server", inv.ServerID, "by", inv.AuthorID)
	return Ack(), nil
}

func (e *Engine) isMaintainer(author string) bool {
	return e.opts.MaintainerID != "" && author == e.opts.MaintainerID
}

func (e *Engine) resetMap(inv Invocation) (Reply, error) {
	if !e.isMaintainer(inv.AuthorID) {
		return Reply{}, ErrNotMaintainer
	}
	server := inv.Args[0]
	err := e.maps.WithExisting(server, func(m *taskmap.Taskmap) error {
		m.ResetAll()
		return m.Save()
	})
	if err != nil {
		return Reply{}, err
	}
	e.logger.Info("Map reset", "server", server, "by", inv.AuthorID)
	return Ack(), nil
}

func (e *Engine) resetAllMaps(inv Invocation) (Reply, error) {
	if !e.isMaintainer(inv.AuthorID) {
		return Reply{}, ErrNotMaintainer
	}
	servers, err := e.maps.Servers()
	if err != nil {
		return Reply{}, err
	}
	if len(servers) == 0 {
		return Text("No maps to reset."), nil
	}

	var lines []string
	for _, server := range servers {
		err := e.maps.With(server, func(m *taskmap.Taskmap) error {
			m.ResetAll()
			if err := m.Save(); err != nil {
				return err
			}
			lines = append(lines, "Reset map: "+m.Path())
			return nil
		})
		if err != nil {
			e.logger.Error("Map reset failed", "server", server, "err", err)
			lines = append(lines, "Failed to reset "+server+": "+Describe(err))
		}
	}
	return Text(strings.Join(lines, "\n")), nil
}

func (e *Engine) serverID(inv Invocation) (Reply, error) {
	return Text(inv.ServerID), nil
}
