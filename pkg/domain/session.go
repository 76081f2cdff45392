package domain

import (
	"encoding/json"
	"math"
	"sort"
	"time"
)

// SessionContext is the resumable record of one in-flight Action Pipeline.
//
// It is created when a command starts resolving, registered when the pipeline
// first suspends, and destroyed when the session completes, fails or is cancelled.
// Nodes already executed before a suspension are never re-run: everything they
// learned travels forward in Variables.
type SessionContext struct {
	SessionID string  `json:"session_id"`
	Command   Command `json:"command"`

	// CurrentNodeID is the node the driver runs next.
	CurrentNodeID string `json:"current_node_id"`

	// Variables is the string-keyed bag shared by the pipeline's nodes.
	Variables map[string]any `json:"variables"`

	// StateVersion is the version of the State the session started against.
	StateVersion uint64 `json:"state_version"`

	// Snapshot references the State the session resolves against.
	// It is not persisted; the handler re-attaches the current State on resume.
	Snapshot *State `json:"-"`

	// Awaiting is the variable the pending interaction answers into.
	Awaiting string `json:"awaiting,omitempty"`

	// Trail lists the nodes executed so far, in order.
	Trail []string `json:"trail,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewSessionContext creates a context for a command resolving against snapshot.
func NewSessionContext(sessionID string, cmd Command, snapshot State, now time.Time) *SessionContext {
	snap := snapshot
	return &SessionContext{
		SessionID:    sessionID,
		Command:      cmd,
		Variables:    make(map[string]any),
		StateVersion: snapshot.Version,
		Snapshot:     &snap,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Set stores a variable.
func (c *SessionContext) Set(key string, value any) {
	if c.Variables == nil {
		c.Variables = make(map[string]any)
	}
	c.Variables[key] = value
}

// Get returns a variable.
func (c *SessionContext) Get(key string) (any, bool) {
	v, ok := c.Variables[key]
	return v, ok
}

// Has reports whether a variable is set.
func (c *SessionContext) Has(key string) bool {
	_, ok := c.Variables[key]
	return ok
}

// String returns a string variable.
func (c *SessionContext) String(key string) (string, bool) {
	v, ok := c.Variables[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Int returns a numeric variable as int.
// Values that went through a JSON round trip (float64, json.Number) are accepted.
func (c *SessionContext) Int(key string) (int, bool) {
	v, ok := c.Variables[key]
	if !ok {
		return 0, false
	}
	return toInt(v)
}

// Accept stores an interaction answer. Only the awaited variable is taken;
// without one, keys that an earlier node already set are left alone.
// It returns the keys it ignored, sorted.
func (c *SessionContext) Accept(data map[string]any) []string {
	var ignored []string
	for k, v := range data {
		switch {
		case c.Awaiting != "" && k != c.Awaiting:
			ignored = append(ignored, k)
		case c.Awaiting == "" && c.Has(k):
			ignored = append(ignored, k)
		default:
			c.Set(k, v)
		}
	}
	c.Awaiting = ""
	sort.Strings(ignored)
	return ignored
}

// Visited reports whether the node already ran in this session.
func (c *SessionContext) Visited(nodeID string) bool {
	for _, id := range c.Trail {
		if id == nodeID {
			return true
		}
	}
	return false
}

// Clone returns a deep-enough copy: variables and trail are copied,
// the snapshot pointer is shared (snapshots are immutable).
func (c *SessionContext) Clone() *SessionContext {
	if c == nil {
		return nil
	}
	next := *c
	next.Variables = make(map[string]any, len(c.Variables))
	for k, v := range c.Variables {
		next.Variables[k] = v
	}
	next.Trail = append([]string(nil), c.Trail...)
	return &next
}

// toInt accepts integers and integral floats that fit in an int.
func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int32:
		return int(n), true
	case int64:
		return int64ToInt(n)
	case float64:
		return floatToInt(n)
	case float32:
		return floatToInt(float64(n))
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, false
		}
		return int64ToInt(i)
	}
	return 0, false
}

func int64ToInt(n int64) (int, bool) {
	if n < math.MinInt || n > math.MaxInt {
		return 0, false
	}
	return int(n), true
}

func floatToInt(f float64) (int, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	// float64(math.MaxInt) rounds up to 2^63, which is already out of range.
	if f < math.MinInt || f >= math.MaxInt {
		return 0, false
	}
	return int(f), true
}
