package filters

import (
	"fmt"

	"github.com/playtrace/playtrace/internal/model"
	"github.com/playtrace/playtrace/pkg/games"
)

// FirstPlaythrough keeps only achievements unlocked at or before each
// player's game completion, removing post-completion clean-up events.
//
// Precondition: every trace contains the game's end achievement, i.e. the
// log was already filtered with ByCompletion(finished=true). A trace
// without one is a fatal precondition violation. When a trace unlocks the
// end achievement more than once, the last occurrence wins.
func FirstPlaythrough(log *model.EventLog, game games.Definition) (*model.EventLog, error) {
	if !game.HasEndAchievement() {
		return nil, ErrNoEndAchievement
	}

	endTimes := make(map[string]int64, len(log.Traces))
	for _, t := range log.Traces {
		for _, e := range t.Events {
			if e.Activity == game.EndAchievement {
				endTimes[t.CaseID] = e.Timestamp.UnixNano()
			}
		}
	}

	out := model.NewLogLike(log)
	for _, t := range log.Traces {
		end, ok := endTimes[t.CaseID]
		if !ok {
			return nil, fmt.Errorf("%w: case %s", ErrMissingEndEvent, t.CaseID)
		}

		nt := model.Trace{CaseID: t.CaseID}
		for _, e := range t.Events {
			if e.Timestamp.UnixNano() <= end {
				nt.Events = append(nt.Events, e)
			}
		}
		out.Append(nt)
	}
	return out, nil
}
