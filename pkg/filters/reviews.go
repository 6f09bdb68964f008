package filters

import (
	"github.com/playtrace/playtrace/internal/model"
	"github.com/playtrace/playtrace/pkg/stats"
)

// ByReviews keeps traces of players whose review sentiment equals
// keepPositive. A case id without a stats entry is a data-integrity
// error and aborts the run.
func ByReviews(log *model.EventLog, lookup stats.PlayerLookup, keepPositive bool) (*model.EventLog, error) {
	out := model.NewLogLike(log)
	for _, t := range log.Traces {
		s, err := lookup.Lookup(t.CaseID)
		if err != nil {
			return nil, err
		}
		if s.LeftPositiveReview == keepPositive {
			out.Append(t)
		}
	}
	return out, nil
}
