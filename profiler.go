package timestats

import (
	"errors"
	"fmt"
	"strconv"
	"time"
)

// ErrUsage is returned by Profile when the flat argument list cannot
// be interpreted as a comment shorthand or name/value pairs.
var ErrUsage = errors.New("invalid profile arguments")

// Profiler owns a timing tree and the stack of currently-open scopes.
// One root node is created at construction; Profile appends nodes
// under the innermost open scope (or an explicit parent).
type Profiler struct {
	root    *Node
	stack   []*Node // open scopes, root always at index 0
	schema  ColorSchema
	enabled bool
	now     func() time.Time
	nextUID int
}

// ProfilerOption configures a Profiler at construction time.
type ProfilerOption func(*Profiler)

// WithEnabled toggles whether Profile records anything. A disabled
// Profiler turns every Profile call into a no-op; Created, Elapsed
// and the report operations are unaffected.
func WithEnabled(enabled bool) ProfilerOption {
	return func(p *Profiler) { p.enabled = enabled }
}

// WithColorSchema replaces the default severity color thresholds.
func WithColorSchema(schema ColorSchema) ProfilerOption {
	return func(p *Profiler) { p.schema = schema }
}

// WithNow replaces the wall-clock source, for tests.
func WithNow(now func() time.Time) ProfilerOption {
	return func(p *Profiler) { p.now = now }
}

// New creates a Profiler whose root node is stamped with the current
// instant.
func New(opts ...ProfilerOption) *Profiler {
	p := &Profiler{
		enabled: true,
		now:     time.Now,
		schema:  DefaultColorSchema(),
	}
	for _, opt := range opts {
		opt(p)
	}
	root := &Node{startTime: p.now(), uid: p.autoUID()}
	p.root = root
	p.stack = []*Node{root}
	return p
}

// Event holds the named options accepted by a single Profile call.
type Event struct {
	Comment string // annotation attached to the event
	Begin   string // opens a named scope
	End     string // closes the innermost open scope with this label
	Parent  string // uid of an explicit parent, overrides nesting
	UID     string // explicit identifier for the new node
}

// Profile records a timing event from a flat argument list: no
// arguments or a single string is the comment shorthand, an even
// count is name/value pairs with keys "comment", "begin", "end",
// "parent" and "uid". An odd count greater than one is a usage error.
//
// The returned uid is empty when the call yields no result: the
// profiler is disabled, or an explicit parent uid did not resolve.
func (p *Profiler) Profile(args ...any) (string, error) {
	ev, err := parseEvent(args)
	if err != nil {
		return "", err
	}
	return p.ProfileEvent(ev)
}

func parseEvent(args []any) (Event, error) {
	switch {
	case len(args) == 0:
		return Event{}, nil
	case len(args) == 1:
		s, ok := args[0].(string)
		if !ok {
			return Event{}, fmt.Errorf("%w: single argument must be a comment string, got %T (%v)", ErrUsage, args[0], args[0])
		}
		return Event{Comment: s}, nil
	case len(args)%2 != 0:
		return Event{}, fmt.Errorf("%w: expected a single comment or name/value pairs; found %d values: %v", ErrUsage, len(args), args)
	}

	var ev Event
	for i := 0; i < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok {
			return Event{}, fmt.Errorf("%w: option name must be a string, got %T (%v)", ErrUsage, args[i], args[i])
		}
		val, ok := args[i+1].(string)
		if !ok {
			return Event{}, fmt.Errorf("%w: value for %q must be a string, got %T (%v)", ErrUsage, key, args[i+1], args[i+1])
		}
		switch key {
		case "comment":
			ev.Comment = val
		case "begin":
			ev.Begin = val
		case "end":
			ev.End = val
		case "parent":
			ev.Parent = val
		case "uid":
			ev.UID = val
		default:
			return Event{}, fmt.Errorf("%w: unknown option %q", ErrUsage, key)
		}
	}
	return ev, nil
}

// ProfileEvent is the typed form of Profile.
func (p *Profiler) ProfileEvent(ev Event) (string, error) {
	if !p.enabled {
		return "", nil
	}
	now := p.now()

	if ev.End != "" {
		// Innermost-first scan over open scopes, root excluded. The
		// matched node stays in the tree; only the stack entry goes.
		for i := len(p.stack) - 1; i > 0; i-- {
			open := p.stack[i]
			if open.action != ev.End {
				continue
			}
			p.stack = append(p.stack[:i], p.stack[i+1:]...)
			open.elapsed = now.Sub(open.startTime)
			open.finalized = true
			debugf("closed scope %q uid=%s elapsed=%s", ev.End, open.uid, open.elapsed)
			return open.uid, nil
		}
		// No matching open scope. Fall through and record a plain
		// event node instead, so that a stray end call still leaves a
		// trace in the report. Callers relying on this degraded
		// behavior exist; do not turn it into an error.
		debugf("end %q matched no open scope, recording plain event", ev.End)
	}

	parent := p.stack[len(p.stack)-1]
	prev := parent
	if ev.Parent != "" {
		parent = p.root.findByUID(ev.Parent)
		if parent == nil {
			debugf("parent uid %q not found, dropping event", ev.Parent)
			return "", nil
		}
		prev = parent
	} else if len(parent.children) > 0 {
		// Point events measure from the previous sibling's start, not
		// from the parent's, so each reads as "time since the last
		// checkpoint".
		prev = parent.children[len(parent.children)-1]
	}

	node := &Node{
		startTime: now,
		action:    ev.Begin,
		comment:   ev.Comment,
		uid:       ev.UID,
	}
	if node.uid == "" {
		node.uid = p.autoUID()
	}
	if ev.Begin == "" {
		node.elapsed = now.Sub(prev.startTime)
		node.finalized = true
	}
	parent.appendChild(node)
	if ev.Begin != "" {
		p.stack = append(p.stack, node)
		debugf("opened scope %q uid=%s", ev.Begin, node.uid)
	}
	return node.uid, nil
}

// Created returns the instant the Profiler was constructed, i.e. the
// root node's start time.
func (p *Profiler) Created() time.Time { return p.root.startTime }

// Elapsed returns the time since construction, computed fresh against
// the current wall clock.
func (p *Profiler) Elapsed() time.Duration { return p.now().Sub(p.root.startTime) }

// Enabled reports whether Profile records events.
func (p *Profiler) Enabled() bool { return p.enabled }

// Root returns the tree's root node.
func (p *Profiler) Root() *Node { return p.root }

// ByUID walks the whole tree pre-order and returns the first node
// whose uid matches, or nil.
func (p *Profiler) ByUID(uid string) *Node { return p.root.findByUID(uid) }

// Schema returns the severity color thresholds in effect.
func (p *Profiler) Schema() ColorSchema { return p.schema }

func (p *Profiler) autoUID() string {
	p.nextUID++
	return strconv.Itoa(p.nextUID)
}
