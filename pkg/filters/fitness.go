package filters

import (
	"fmt"

	"github.com/playtrace/playtrace/internal/model"
	"github.com/playtrace/playtrace/pkg/mining"
)

// ByTraceFitness keeps traces that token replay found fit. The result
// sequence must align index-for-index with the log; a length mismatch is
// fatal.
func ByTraceFitness(log *model.EventLog, replayed []mining.ReplayResult) (*model.EventLog, error) {
	if len(replayed) != len(log.Traces) {
		return nil, fmt.Errorf("%w: %d results for %d traces",
			mining.ErrReplayLengthMismatch, len(replayed), len(log.Traces))
	}

	out := model.NewLogLike(log)
	for i, t := range log.Traces {
		if replayed[i].TraceIsFit {
			out.Append(t)
		}
	}
	return out, nil
}
