// ABOUTME: Transport-agnostic conversation engine
// ABOUTME: Routes commands and the stop-then-task message flow to the core

package chat

import (
	"errors"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/harper/willow/internal/models"
	"github.com/harper/willow/internal/pokedex"
	"github.com/harper/willow/internal/taskmap"
	"github.com/harper/willow/internal/tasklist"
)

// DefaultPrefix starts every command.
const DefaultPrefix = "?"

// Maps gives serialized access to each server's taskmap.
type Maps interface {
	With(serverID string, fn func(m *taskmap.Taskmap) error) error
	// WithExisting does not create a map for an unknown server.
	WithExisting(serverID string, fn func(m *taskmap.Taskmap) error) error
	Servers() ([]string, error)
}

// Options configures an Engine.
type Options struct {
	Prefix       string
	MapURL       string
	MaintainerID string
	// Now stamps tasklist backups. Defaults to time.Now.
	Now    func() time.Time
	Logger *log.Logger
}

// pending remembers a stop named by an author, waiting for the task.
type pending struct {
	author string
	stop   string
}

// Engine turns chat messages into core operations and replies.
type Engine struct {
	tasks    *tasklist.Tasklist
	maps     Maps
	opts     Options
	logger   *log.Logger
	commands map[string]command

	mu      sync.Mutex
	pending map[string]pending
}

// New creates an engine over the shared tasklist and the per-server maps.
func New(tasks *tasklist.Tasklist, maps Maps, opts Options) *Engine {
	if opts.Prefix == "" {
		opts.Prefix = DefaultPrefix
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	e := &Engine{
		tasks:   tasks,
		maps:    maps,
		opts:    opts,
		logger:  logger,
		pending: make(map[string]pending),
	}
	e.commands = e.commandTable()
	return e
}

// Prefix returns the command prefix.
func (e *Engine) Prefix() string {
	return e.opts.Prefix
}

// Handle processes one message. It never panics on core failures; they
// come back as text replies.
func (e *Engine) Handle(msg Message) Reply {
	text := strings.TrimSpace(NormalizeQuotes(msg.Text))
	if text == "" {
		return None()
	}

	if command, args, ok := ParseCommand(text, e.opts.Prefix); ok {
		e.clearPending(msg.ServerID)
		return e.Execute(Invocation{
			ServerID: msg.ServerID,
			AuthorID: msg.AuthorID,
			Admin:    msg.Admin,
			Command:  command,
			Args:     args,
		})
	}

	if msg.ServerID == "" {
		return None()
	}
	if p, ok := e.takePending(msg.ServerID, msg.AuthorID); ok {
		return e.followUp(msg, p.stop, text)
	}
	return e.freeText(msg, text)
}

// Execute runs a single command invocation.
func (e *Engine) Execute(inv Invocation) Reply {
	name := strings.ToLower(strings.TrimPrefix(inv.Command, e.opts.Prefix))
	cmd, ok := e.commands[name]
	if !ok {
		return Text("Unknown command " + e.opts.Prefix + name + ". Use " + e.opts.Prefix + "help for a list of commands.")
	}
	if cmd.needsServer && strings.TrimSpace(inv.ServerID) == "" {
		return Text(Describe(ErrNoServer))
	}
	if cmd.admin && !inv.Admin {
		return Text(Describe(ErrNotAdmin))
	}
	if len(inv.Args) < cmd.minArgs {
		return e.usage(name)
	}

	reply, err := cmd.run(inv)
	if err != nil {
		return e.fail(inv.ServerID, name, err)
	}
	e.logger.Debug("Command handled", "server", inv.ServerID, "command", name, "reply", reply.Kind)
	return reply
}

func (e *Engine) fail(serverID, what string, err error) Reply {
	if known(err) {
		e.logger.Debug("Command rejected", "server", serverID, "command", what, "err", err)
	} else {
		e.logger.Error("Command failed", "server", serverID, "command", what, "err", err)
	}
	return Text(Describe(err))
}

func (e *Engine) usage(command string) Reply {
	return Text("Not enough arguments. Use \"" + e.opts.Prefix + "help " + command + "\" for detailed instructions.")
}

func (e *Engine) clearPending(serverID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.pending, serverID)
}

func (e *Engine) setPending(serverID string, p pending) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.pending[serverID] = p
}

// takePending consumes the server's pending stop when author named it.
func (e *Engine) takePending(serverID, author string) (pending, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	p, ok := e.pending[serverID]
	if !ok || p.author != author {
		return pending{}, false
	}
	delete(e.pending, serverID)
	return p, true
}

// freeText handles a message that is not a command and not a follow-up.
// A stop name starts a two-message assignment; "stop\ntask" does it in one.
func (e *Engine) freeText(msg Message, text string) Reply {
	var reply Reply
	err := e.maps.With(msg.ServerID, func(m *taskmap.Taskmap) error {
		res := Resolve(m, nil, text)
		if res.Kind == ResolvedStop {
			e.setPending(msg.ServerID, pending{author: msg.AuthorID, stop: res.Stop.Name})
			reply = None()
			return nil
		}
		e.clearPending(msg.ServerID)

		stopText, report, found := strings.Cut(text, "\n")
		if !found {
			reply = None()
			return nil
		}
		stop, err := m.FindStop(stopText)
		if err != nil {
			reply = None()
			return nil
		}
		if err := e.report(m, stop, strings.TrimSpace(report)); err != nil {
			// The one-message form stays quiet on failure
			e.logger.Debug("Report ignored", "server", msg.ServerID, "stop", stop.Name, "err", err)
			reply = None()
			return nil
		}
		reply = Ack()
		return nil
	})
	if err != nil {
		return e.fail(msg.ServerID, "message", err)
	}
	return reply
}

// followUp applies text to the stop the author named in the previous message.
func (e *Engine) followUp(msg Message, stopName, text string) Reply {
	err := e.maps.With(msg.ServerID, func(m *taskmap.Taskmap) error {
		stop, err := m.FindStop(stopName)
		if err != nil {
			return err
		}
		return e.report(m, stop, text)
	})
	if err != nil {
		return e.fail(msg.ServerID, "report", err)
	}
	return Reply{Kind: KindAck, AckPrevious: true}
}

// report records a shadow sighting or a task on stop and saves the map.
func (e *Engine) report(m *taskmap.Taskmap, stop *models.Stop, text string) error {
	if isShadowReport(text) {
		applyShadow(stop, text)
		return m.Save()
	}

	task, err := e.tasks.FindTask(text)
	if err != nil {
		return err
	}
	if err := assign(stop, task, text); err != nil {
		return err
	}
	return m.Save()
}

// assign sets task on stop and sets the icon when text named the reward.
// A conflicting task with the same reward text counts as success.
func assign(stop *models.Stop, task *models.Task, text string) error {
	if _, err := stop.SetTask(task); err != nil {
		var assigned *models.TaskAlreadyAssignedError
		if errors.As(err, &assigned) && strings.EqualFold(assigned.Reward, task.Reward) {
			return nil
		}
		return err
	}
	if task.MatchesReward(text) {
		stop.Icon = task.Reward
	}
	return nil
}

func isShadowReport(text string) bool {
	return strings.Contains(strings.ToLower(text), "shadow")
}

// applyShadow reads "shadow <pokemon>", "shadow gone" or a bare "shadow".
func applyShadow(stop *models.Stop, text string) {
	words := strings.Fields(text)
	last := strings.Trim(words[len(words)-1], ",.!")
	switch {
	case strings.Contains(strings.ToLower(last), "shadow"):
		stop.SetShadow("")
	case strings.Contains(strings.ToLower(text), "gone"):
		stop.ResetShadow()
	default:
		if name, ok := pokedex.MatchPokemon(last); ok {
			last = name
		}
		stop.SetShadow(last)
	}
}
