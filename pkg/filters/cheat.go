package filters

import (
	"github.com/playtrace/playtrace/internal/model"
)

// IsCheating reports whether a trace shows a cheated achievement system:
// more than one event, all sharing a single identical timestamp. A
// single-event trace is never cheating.
func IsCheating(t model.Trace) bool {
	if len(t.Events) <= 1 {
		return false
	}
	first := t.Events[0].Timestamp.UnixNano()
	for _, e := range t.Events[1:] {
		if e.Timestamp.UnixNano() != first {
			return false
		}
	}
	return true
}

// CheatingPlayers keeps traces whose cheating classification equals
// keepCheating. The true and false calls partition the log exactly.
func CheatingPlayers(log *model.EventLog, keepCheating bool) *model.EventLog {
	out := model.NewLogLike(log)
	for _, t := range log.Traces {
		if IsCheating(t) == keepCheating {
			out.Append(t)
		}
	}
	return out
}
