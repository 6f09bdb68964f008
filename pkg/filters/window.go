package filters

import (
	"github.com/playtrace/playtrace/internal/model"
)

// ByLevelWindow restricts every trace to the window between
// startAchievement (inclusive) and endAchievement, keeping only events
// whose activity is in the markers allow-list.
//
// Per trace, events are scanned in order: inclusion begins with the event
// unlocking startAchievement and scanning stops entirely once
// endAchievement is seen. Traces are always retained, possibly empty, so
// the result stays aligned with the input.
func ByLevelWindow(log *model.EventLog, startAchievement, endAchievement string, markers []string) *model.EventLog {
	set := make(map[string]struct{}, len(markers))
	for _, m := range markers {
		set[m] = struct{}{}
	}

	out := model.NewLogLike(log)
	for _, t := range log.Traces {
		nt := model.Trace{CaseID: t.CaseID}

		include := false
		for _, e := range t.Events {
			if e.Activity == startAchievement {
				include = true
			}
			if include {
				if _, ok := set[e.Activity]; ok {
					nt.Events = append(nt.Events, e)
				}
			}
			if e.Activity == endAchievement {
				break
			}
		}
		out.Append(nt)
	}
	return out
}
