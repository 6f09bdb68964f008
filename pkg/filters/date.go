package filters

import (
	"time"

	"github.com/playtrace/playtrace/internal/model"
	"github.com/playtrace/playtrace/pkg/logset"
)

// DefaultStartDate is the year Steam achievements were introduced; any
// unlock before it is a data error.
var DefaultStartDate = time.Date(2008, 1, 1, 0, 0, 0, 0, time.UTC)

// unixEpoch is the first representable unlock time.
var unixEpoch = time.Unix(0, 0).UTC()

// ByDate drops whole traces that contain any event timestamped in
// [unix epoch, startDate). Implemented as the intersecting sub-log
// subtracted from the original, so surviving traces keep their order.
func ByDate(log *model.EventLog, startDate time.Time) *model.EventLog {
	incorrect := model.NewLogLike(log)
	for _, t := range log.Traces {
		for _, e := range t.Events {
			if !e.Timestamp.Before(unixEpoch) && e.Timestamp.Before(startDate) {
				incorrect.Append(t)
				break
			}
		}
	}
	return logset.Difference(log, incorrect)
}
