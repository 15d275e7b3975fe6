package timestats

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"
)

// Payload is a node's full value record, used by the low-level merge
// helpers to graft externally-collected timings into this tree.
// Elapsed accepts a time.Duration, a float64 second count, or a
// unit-suffixed string such as "0.12s" — the string form shows up in
// timings serialized elsewhere and is normalized before storage.
type Payload struct {
	Start   time.Time
	Elapsed any
	Action  string
	Comment string
	UID     string
}

// AttachChild appends a node built from payload under the node with
// parentUID. A zero Start defaults to the current instant; an empty
// UID gets the next auto-assigned one. Returns the new node's uid.
func (p *Profiler) AttachChild(parentUID string, payload Payload) (string, error) {
	parent := p.root.findByUID(parentUID)
	if parent == nil {
		return "", fmt.Errorf("attach child: unknown parent uid %q", parentUID)
	}

	elapsed, hasElapsed, err := normalizeElapsed(payload.Elapsed)
	if err != nil {
		return "", fmt.Errorf("attach child: %w", err)
	}

	node := &Node{
		startTime: payload.Start,
		action:    payload.Action,
		comment:   payload.Comment,
		uid:       payload.UID,
		elapsed:   elapsed,
		finalized: hasElapsed,
	}
	if node.startTime.IsZero() {
		node.startTime = p.now()
	}
	if node.uid == "" {
		node.uid = p.autoUID()
	}
	parent.appendChild(node)
	return node.uid, nil
}

// SetPayload replaces a node's value record wholesale, applying the
// same elapsed normalization as AttachChild. The node keeps its uid
// unless payload carries a non-empty one.
func (p *Profiler) SetPayload(uid string, payload Payload) error {
	node := p.root.findByUID(uid)
	if node == nil {
		return fmt.Errorf("set payload: unknown uid %q", uid)
	}

	elapsed, hasElapsed, err := normalizeElapsed(payload.Elapsed)
	if err != nil {
		return fmt.Errorf("set payload: %w", err)
	}

	node.startTime = payload.Start
	node.action = payload.Action
	node.comment = payload.Comment
	node.elapsed = elapsed
	node.finalized = hasElapsed
	if payload.UID != "" {
		node.uid = payload.UID
	}
	return nil
}

// StartTime returns only the start time of the node with uid. This is
// deliberately narrower than the full value record: callers of this
// accessor depend on getting just the timestamp.
func (p *Profiler) StartTime(uid string) (time.Time, bool) {
	node := p.root.findByUID(uid)
	if node == nil {
		return time.Time{}, false
	}
	return node.startTime, true
}

// normalizeElapsed converts the accepted elapsed representations to a
// duration. The bool reports whether a value was present at all.
func normalizeElapsed(v any) (time.Duration, bool, error) {
	switch e := v.(type) {
	case nil:
		return 0, false, nil
	case time.Duration:
		return e, true, nil
	case float64:
		return time.Duration(e * float64(time.Second)), true, nil
	case int:
		return time.Duration(e) * time.Second, true, nil
	case string:
		s := strings.TrimSuffix(e, "s")
		secs, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false, fmt.Errorf("elapsed %q is not a second count", e)
		}
		return time.Duration(secs * float64(time.Second)), true, nil
	default:
		return 0, false, fmt.Errorf("elapsed has unsupported type %T", v)
	}
}

// AttachJSON grafts a serialized subtree under the node with
// parentUID. Expected shape per node: action, comment, uid and start
// (RFC 3339) strings, elapsed as a number of seconds or a "0.12s"
// string, and a children array of the same shape. Returns the uid of
// the subtree's root node.
func (p *Profiler) AttachJSON(parentUID string, data []byte) (string, error) {
	if !gjson.ValidBytes(data) {
		return "", fmt.Errorf("attach json: invalid JSON")
	}
	return p.attachResult(parentUID, gjson.ParseBytes(data))
}

func (p *Profiler) attachResult(parentUID string, r gjson.Result) (string, error) {
	payload := Payload{
		Action:  r.Get("action").String(),
		Comment: r.Get("comment").String(),
		UID:     r.Get("uid").String(),
	}
	if s := r.Get("start"); s.Exists() {
		ts, err := time.Parse(time.RFC3339Nano, s.String())
		if err != nil {
			return "", fmt.Errorf("attach json: parse start: %w", err)
		}
		payload.Start = ts
	}
	if e := r.Get("elapsed"); e.Exists() {
		if e.Type == gjson.String {
			payload.Elapsed = e.String()
		} else {
			payload.Elapsed = e.Float()
		}
	}

	uid, err := p.AttachChild(parentUID, payload)
	if err != nil {
		return "", err
	}
	for _, child := range r.Get("children").Array() {
		if _, err := p.attachResult(uid, child); err != nil {
			return "", err
		}
	}
	return uid, nil
}

// MarshalSubtree serializes the node with uid and its descendants in
// the shape AttachJSON accepts, elapsed as a unit-suffixed string.
func (p *Profiler) MarshalSubtree(uid string) ([]byte, error) {
	node := p.root.findByUID(uid)
	if node == nil {
		return nil, fmt.Errorf("marshal subtree: unknown uid %q", uid)
	}
	out, err := marshalNode(node)
	if err != nil {
		return nil, fmt.Errorf("marshal subtree: %w", err)
	}
	return pretty.Pretty([]byte(out)), nil
}

func marshalNode(n *Node) (string, error) {
	out := "{}"
	var err error
	if out, err = sjson.Set(out, "uid", n.uid); err != nil {
		return "", err
	}
	if out, err = sjson.Set(out, "action", n.action); err != nil {
		return "", err
	}
	if out, err = sjson.Set(out, "comment", n.comment); err != nil {
		return "", err
	}
	if out, err = sjson.Set(out, "start", n.startTime.Format(time.RFC3339Nano)); err != nil {
		return "", err
	}
	if n.finalized {
		if out, err = sjson.Set(out, "elapsed", fmt.Sprintf("%.6fs", n.elapsed.Seconds())); err != nil {
			return "", err
		}
	}
	for i, c := range n.children {
		child, err := marshalNode(c)
		if err != nil {
			return "", err
		}
		if out, err = sjson.SetRaw(out, "children."+strconv.Itoa(i), child); err != nil {
			return "", err
		}
	}
	return out, nil
}
