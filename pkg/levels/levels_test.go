package levels

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/playtrace/playtrace/internal/model"
	"github.com/playtrace/playtrace/pkg/filters"
	"github.com/playtrace/playtrace/pkg/games"
	"github.com/playtrace/playtrace/pkg/stats"
)

var ladder = games.Definition{
	Name:             "LADDER",
	EndAchievement:   "A5",
	MainAchievements: []string{"A1", "A2", "A3", "A4", "A5"},
}

// unfinishedTrace builds a trace holding the first n progress
// achievements.
func unfinishedTrace(caseID string, n int) model.Trace {
	t := model.Trace{CaseID: caseID}
	base := time.Date(2021, 3, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		t.Events = append(t.Events, model.Event{
			CaseID:    caseID,
			Activity:  ladder.MainAchievements[i],
			Timestamp: base.Add(time.Duration(i) * time.Hour),
		})
	}
	return t
}

// tenStalledPlayers builds the partition fixture: 4 players stall after
// A1, 3 after A2, 3 after A3.
func tenStalledPlayers() (*model.EventLog, *stats.PlayerFile) {
	log := &model.EventLog{}
	byCase := make(map[string]stats.PlayerStats)

	id := 0
	add := func(count, reached int, positive bool) {
		for i := 0; i < count; i++ {
			id++
			caseID := fmt.Sprintf("p%d", id)
			log.Append(unfinishedTrace(caseID, reached))
			byCase[caseID] = stats.PlayerStats{
				LeftPositiveReview: positive,
				Review:             "r" + caseID,
			}
		}
	}
	add(4, 1, false)
	add(3, 2, true)
	add(3, 3, true)

	return log, stats.NewPlayerStats(byCase)
}

func TestDivideUnfinishedByLevels(t *testing.T) {
	log, players := tenStalledPlayers()

	b, err := DivideUnfinishedByLevels(log, ladder, players)
	if err != nil {
		t.Fatal(err)
	}

	want := []struct {
		achievement string
		players     int
	}{
		{"A1", 4},
		{"A2", 3},
		{"A3", 3},
		{"A4", 0},
	}

	if len(b.Levels) != len(want) {
		t.Fatalf("got %d levels, want %d", len(b.Levels), len(want))
	}
	for i, w := range want {
		l := b.Levels[i]
		if l.Achievement != w.achievement {
			t.Errorf("level %d keyed %q, want %q", i, l.Achievement, w.achievement)
		}
		if l.Info.LevelNumPlayers != w.players {
			t.Errorf("%s: %d players, want %d", w.achievement, l.Info.LevelNumPlayers, w.players)
		}
		if l.Info.TotalNumPlayers != 10 {
			t.Errorf("%s: total %d, want 10", w.achievement, l.Info.TotalNumPlayers)
		}
	}

	// Partition sum law: every unfinished player lands in exactly one
	// level.
	if b.Sum() != log.Len() {
		t.Errorf("Sum() = %d, want %d", b.Sum(), log.Len())
	}
}

func TestDivideNegativeReviewPercentage(t *testing.T) {
	log, players := tenStalledPlayers()

	b, err := DivideUnfinishedByLevels(log, ladder, players)
	if err != nil {
		t.Fatal(err)
	}

	// All 4 players stalled at A1 left a negative review.
	if got := b.Levels[0].Info.NegativeReviewsPercentage; got != 100 {
		t.Errorf("A1 negative percentage = %v, want 100", got)
	}
	if got := b.Levels[1].Info.NegativeReviewsPercentage; got != 0 {
		t.Errorf("A2 negative percentage = %v, want 0", got)
	}
	// No players at A4 means zero, not NaN.
	if got := b.Levels[3].Info.NegativeReviewsPercentage; got != 0 {
		t.Errorf("A4 negative percentage = %v, want 0", got)
	}
	if got := len(b.Levels[0].Info.Reviews); got != 4 {
		t.Errorf("A1 carries %d reviews, want 4", got)
	}
}

func TestDivideInputUntouched(t *testing.T) {
	log, players := tenStalledPlayers()

	if _, err := DivideUnfinishedByLevels(log, ladder, players); err != nil {
		t.Fatal(err)
	}
	if log.Len() != 10 {
		t.Errorf("input log was mutated: %d traces, want 10", log.Len())
	}
}

func TestDivideExcludesPlayersWithoutProgress(t *testing.T) {
	log := &model.EventLog{}
	log.Append(unfinishedTrace("p1", 1))
	// A player whose achievements were all stripped by the progress
	// reduction belongs to no level and must not count in the totals.
	log.Append(model.Trace{CaseID: "ghost"})

	players := stats.NewPlayerStats(map[string]stats.PlayerStats{
		"p1":    {LeftPositiveReview: true},
		"ghost": {LeftPositiveReview: false},
	})

	b, err := DivideUnfinishedByLevels(log, ladder, players)
	if err != nil {
		t.Fatal(err)
	}

	a1 := b.Levels[0].Info
	if a1.LevelNumPlayers != 1 {
		t.Errorf("A1 players = %d, want 1", a1.LevelNumPlayers)
	}
	if a1.TotalNumPlayers != 1 {
		t.Errorf("A1 total = %d, want 1", a1.TotalNumPlayers)
	}
	if a1.NegativeReviewsPercentage != 0 {
		t.Errorf("A1 negative percentage = %v, want 0", a1.NegativeReviewsPercentage)
	}
	if b.Sum() != 1 {
		t.Errorf("Sum() = %d, want 1", b.Sum())
	}
}

func TestDivideRequiresProgress(t *testing.T) {
	_, players := tenStalledPlayers()
	flat := games.Definition{Name: "FLAT"}

	if _, err := DivideUnfinishedByLevels(&model.EventLog{}, flat, players); !errors.Is(err, filters.ErrNoProgressAchievements) {
		t.Errorf("err = %v, want ErrNoProgressAchievements", err)
	}

	// A single progress achievement has no boundaries: zero rounds.
	tiny := games.Definition{Name: "TINY", MainAchievements: []string{"A1"}}
	b, err := DivideUnfinishedByLevels(&model.EventLog{}, tiny, players)
	if err != nil {
		t.Fatal(err)
	}
	if len(b.Levels) != 0 {
		t.Errorf("got %d levels, want 0", len(b.Levels))
	}
}

func TestDivideMissingStatsFatal(t *testing.T) {
	log := &model.EventLog{}
	log.Append(unfinishedTrace("ghost", 1))

	_, err := DivideUnfinishedByLevels(log, ladder, stats.NewPlayerStats(nil))
	if !errors.Is(err, stats.ErrUnknownCase) {
		t.Errorf("err = %v, want ErrUnknownCase", err)
	}
}

func TestBreakdownMarshalJSONOrder(t *testing.T) {
	log, players := tenStalledPlayers()

	b, err := DivideUnfinishedByLevels(log, ladder, players)
	if err != nil {
		t.Fatal(err)
	}

	data, err := json.Marshal(b)
	if err != nil {
		t.Fatal(err)
	}

	// Keys appear in level order, not lexical order.
	s := string(data)
	last := -1
	for _, key := range []string{`"A1"`, `"A2"`, `"A3"`, `"A4"`} {
		idx := strings.Index(s, key)
		if idx < 0 {
			t.Fatalf("marshalled breakdown missing %s", key)
		}
		if idx < last {
			t.Errorf("%s out of order in %s", key, s)
		}
		last = idx
	}
}
