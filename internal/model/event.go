// Package model defines core data structures for playtrace.
package model

import (
	"encoding/binary"
	"hash/fnv"
	"time"
)

// Event represents a single achievement unlock for one player.
// Events are immutable once created; filters copy, never mutate.
type Event struct {
	// CaseID identifies the player (trace).
	CaseID string

	// Activity is the achievement name.
	Activity string

	// Timestamp is the unlock time.
	Timestamp time.Time
}

// Equal reports whether two events carry identical values.
func (e Event) Equal(other Event) bool {
	return e.CaseID == other.CaseID &&
		e.Activity == other.Activity &&
		e.Timestamp.Equal(other.Timestamp)
}

// Trace is the ordered achievement history of one player. Order is the
// sequence in which events were appended, not necessarily timestamp order.
type Trace struct {
	CaseID string
	Events []Event
}

// Len returns the number of events in the trace.
func (t Trace) Len() int { return len(t.Events) }

// Equal reports whether two traces have value-equal event sequences.
// This strict equality is the basis of log set difference and is only
// meaningful between sub-logs of one common original log.
func (t Trace) Equal(other Trace) bool {
	if t.CaseID != other.CaseID || len(t.Events) != len(other.Events) {
		return false
	}
	for i := range t.Events {
		if !t.Events[i].Equal(other.Events[i]) {
			return false
		}
	}
	return true
}

// Fingerprint returns a structural hash of the full event sequence.
// Used to avoid quadratic trace comparison in set difference; collisions
// are resolved by Equal.
func (t Trace) Fingerprint() uint64 {
	h := fnv.New64a()
	var buf [8]byte

	h.Write([]byte(t.CaseID))
	binary.LittleEndian.PutUint64(buf[:], uint64(len(t.Events)))
	h.Write(buf[:])

	for _, e := range t.Events {
		h.Write([]byte(e.CaseID))
		h.Write([]byte{0})
		h.Write([]byte(e.Activity))
		binary.LittleEndian.PutUint64(buf[:], uint64(e.Timestamp.UnixNano()))
		h.Write(buf[:])
	}
	return h.Sum64()
}

// Metadata holds log-level attributes carried verbatim through every
// filter, mirroring the attributes/extensions/classifiers of the source
// log format.
type Metadata struct {
	Attributes  map[string]string
	Extensions  []string
	Classifiers map[string][]string
}

// EventLog is an ordered collection of traces. Insertion order is
// significant and preserved through filtering.
type EventLog struct {
	Traces []Trace
	Meta   Metadata
}

// NewLogLike returns an empty log carrying src's metadata. Every filter
// builds its result this way, matching the never-mutate-input contract.
func NewLogLike(src *EventLog) *EventLog {
	if src == nil {
		return &EventLog{}
	}
	return &EventLog{Meta: src.Meta}
}

// Len returns the number of traces.
func (l *EventLog) Len() int { return len(l.Traces) }

// Append adds a trace to the log.
func (l *EventLog) Append(t Trace) { l.Traces = append(l.Traces, t) }

// EventCount returns the total number of events across all traces.
func (l *EventLog) EventCount() int {
	n := 0
	for _, t := range l.Traces {
		n += len(t.Events)
	}
	return n
}
