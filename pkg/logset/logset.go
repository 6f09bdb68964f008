// Package logset provides set algebra over event logs.
//
// Operations treat traces as values: two traces are equal iff their full
// ordered event sequences are equal. This is only safe when both logs are
// sub-logs of one common original log.
package logset

import (
	"github.com/playtrace/playtrace/internal/model"
)

// Difference returns every trace of a that has no value-equal counterpart
// in b, preserving a's order. Difference(a, a) is empty; Difference(a, nil)
// is a copy of a.
func Difference(a, b *model.EventLog) *model.EventLog {
	out := model.NewLogLike(a)
	if a == nil {
		return out
	}

	// Index b by structural fingerprint; confirm matches with Equal so
	// the exact value-equality contract survives hash collisions.
	var index map[uint64][]model.Trace
	if b != nil && len(b.Traces) > 0 {
		index = make(map[uint64][]model.Trace, len(b.Traces))
		for _, t := range b.Traces {
			fp := t.Fingerprint()
			index[fp] = append(index[fp], t)
		}
	}

	for _, t := range a.Traces {
		if !containsEqual(index, t) {
			out.Append(t)
		}
	}
	return out
}

func containsEqual(index map[uint64][]model.Trace, t model.Trace) bool {
	if index == nil {
		return false
	}
	for _, candidate := range index[t.Fingerprint()] {
		if t.Equal(candidate) {
			return true
		}
	}
	return false
}

// CaseIDs returns the set of case ids appearing in the log.
func CaseIDs(log *model.EventLog) map[string]struct{} {
	ids := make(map[string]struct{})
	if log == nil {
		return ids
	}
	for _, t := range log.Traces {
		ids[t.CaseID] = struct{}{}
	}
	return ids
}
