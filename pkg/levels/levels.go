// Package levels partitions unfinished players by the last level they
// reached and attributes their reviews to that level.
package levels

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"

	"github.com/playtrace/playtrace/internal/model"
	"github.com/playtrace/playtrace/pkg/filters"
	"github.com/playtrace/playtrace/pkg/games"
	"github.com/playtrace/playtrace/pkg/logset"
	"github.com/playtrace/playtrace/pkg/stats"
)

// Info describes the players who stalled at one level.
type Info struct {
	LevelNumPlayers           int                 `json:"level_num_players"`
	TotalNumPlayers           int                 `json:"total_num_players"`
	NegativeReviewsPercentage float64             `json:"negative_reviews_percentage"`
	Reviews                   []stats.PlayerStats `json:"reviews"`
}

// Level pairs a progress achievement with the players it stopped.
type Level struct {
	Achievement string
	Info        Info
}

// Breakdown is the ordered per-level result, keyed by the progress
// achievement that marks the level a player reached but did not pass.
type Breakdown struct {
	Levels []Level
}

// MarshalJSON renders the breakdown as a JSON object preserving level
// order.
func (b Breakdown) MarshalJSON() ([]byte, error) {
	buf := []byte{'{'}
	for i, l := range b.Levels {
		if i > 0 {
			buf = append(buf, ',')
		}
		key, err := json.Marshal(l.Achievement)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(l.Info)
		if err != nil {
			return nil, err
		}
		buf = append(buf, key...)
		buf = append(buf, ':')
		buf = append(buf, val...)
	}
	return append(buf, '}'), nil
}

// Sum returns the total of LevelNumPlayers across all levels. The peeling
// is a strict partition, so it equals TotalNumPlayers.
func (b Breakdown) Sum() int {
	n := 0
	for _, l := range b.Levels {
		n += l.Info.LevelNumPlayers
	}
	return n
}

// DivideUnfinishedByLevels splits a log of players who did not finish the
// game by the last level they reached.
//
// The input log must already be reduced to unfinished players and their
// progress-achievement events. Players without a single progress
// achievement are excluded up front; they belong to no level and do not
// count toward the totals. For each level boundary i the traces not
// containing achievement i+1 are peeled off, their reviews joined from
// player stats, and the running log shrunk by set difference, so every
// remaining player is attributed to exactly one level. A game with fewer
// than two progress achievements yields zero partitioning rounds.
func DivideUnfinishedByLevels(log *model.EventLog, game games.Definition, players stats.PlayerLookup) (Breakdown, error) {
	if !game.HasProgress() {
		return Breakdown{}, filters.ErrNoProgressAchievements
	}

	main := game.MainAchievements
	filtered := filters.ContainingActivities(log, main, true)
	total := filtered.Len()

	var out Breakdown
	for i := 0; i < len(main)-1; i++ {
		levelLog := filters.ContainingActivities(filtered, []string{main[i+1]}, false)

		info, err := levelInfo(levelLog, total, players)
		if err != nil {
			return Breakdown{}, fmt.Errorf("levels: %s at %q: %w", game.Name, main[i], err)
		}
		out.Levels = append(out.Levels, Level{Achievement: main[i], Info: info})

		filtered = logset.Difference(filtered, levelLog)
	}
	return out, nil
}

func levelInfo(levelLog *model.EventLog, total int, players stats.PlayerLookup) (Info, error) {
	ids := logset.CaseIDs(levelLog)
	sorted := make([]string, 0, len(ids))
	for id := range ids {
		sorted = append(sorted, id)
	}
	sort.Strings(sorted)

	reviews := make([]stats.PlayerStats, 0, len(sorted))
	negative := 0
	for _, id := range sorted {
		s, err := players.Lookup(id)
		if err != nil {
			return Info{}, err
		}
		reviews = append(reviews, s)
		if !s.LeftPositiveReview {
			negative++
		}
	}

	percent := 0.0
	if len(reviews) > 0 {
		percent = round2(float64(negative) / float64(len(reviews)) * 100)
	}

	return Info{
		LevelNumPlayers:           levelLog.Len(),
		TotalNumPlayers:           total,
		NegativeReviewsPercentage: percent,
		Reviews:                   reviews,
	}, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
