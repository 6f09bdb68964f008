package filters

import (
	"errors"
	"testing"
	"time"

	"github.com/playtrace/playtrace/internal/model"
	"github.com/playtrace/playtrace/pkg/games"
)

var testGame = games.Definition{
	Name:             "TEST_GAME",
	ID:               1,
	EndAchievement:   "The End",
	MainAchievements: []string{"P1", "P2", "P3"},
}

// trace builds a trace with one event per activity, spaced one hour
// apart starting at the given offset hour.
func trace(caseID string, startHour int, activities ...string) model.Trace {
	t := model.Trace{CaseID: caseID}
	base := time.Date(2021, 3, 1, 0, 0, 0, 0, time.UTC)
	for i, a := range activities {
		t.Events = append(t.Events, model.Event{
			CaseID:    caseID,
			Activity:  a,
			Timestamp: base.Add(time.Duration(startHour+i) * time.Hour),
		})
	}
	return t
}

func logOf(traces ...model.Trace) *model.EventLog {
	return &model.EventLog{Traces: traces}
}

func caseIDs(log *model.EventLog) []string {
	ids := make([]string, 0, log.Len())
	for _, t := range log.Traces {
		ids = append(ids, t.CaseID)
	}
	return ids
}

func sameIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestByActivities(t *testing.T) {
	log := logOf(
		trace("p1", 0, "P1", "Bonus", "P2"),
		trace("p2", 0, "Bonus"),
	)

	kept := ByActivities(log, []string{"P1", "P2"}, true)
	if kept.Len() != 2 {
		t.Fatalf("positive filter dropped a trace: %d traces, want 2", kept.Len())
	}
	if got := len(kept.Traces[0].Events); got != 2 {
		t.Errorf("p1 has %d events, want 2", got)
	}
	// Traces that lose every event stay, as empty.
	if got := len(kept.Traces[1].Events); got != 0 {
		t.Errorf("p2 has %d events, want 0", got)
	}

	dropped := ByActivities(log, []string{"Bonus"}, false)
	if got := len(dropped.Traces[0].Events); got != 2 {
		t.Errorf("negative filter kept %d events for p1, want 2", got)
	}
}

func TestByActivitiesIdempotent(t *testing.T) {
	log := logOf(trace("p1", 0, "P1", "Bonus", "P2"))
	once := ByActivities(log, []string{"P1", "P2"}, true)
	twice := ByActivities(once, []string{"P1", "P2"}, true)

	if once.EventCount() != twice.EventCount() {
		t.Errorf("filter not idempotent: %d events then %d", once.EventCount(), twice.EventCount())
	}
}

func TestByCompletionPartitionLaw(t *testing.T) {
	log := logOf(
		trace("p1", 0, "P1", "The End"),
		trace("p2", 0, "P1"),
		trace("p3", 0, "The End"),
		trace("p4", 0, "Bonus"),
	)

	finished, err := ByCompletion(log, testGame, true)
	if err != nil {
		t.Fatalf("ByCompletion(true): %v", err)
	}
	unfinished, err := ByCompletion(log, testGame, false)
	if err != nil {
		t.Fatalf("ByCompletion(false): %v", err)
	}

	if !sameIDs(caseIDs(finished), []string{"p1", "p3"}) {
		t.Errorf("finished = %v, want [p1 p3]", caseIDs(finished))
	}
	if !sameIDs(caseIDs(unfinished), []string{"p2", "p4"}) {
		t.Errorf("unfinished = %v, want [p2 p4]", caseIDs(unfinished))
	}
	if finished.Len()+unfinished.Len() != log.Len() {
		t.Errorf("partition law violated: %d + %d != %d",
			finished.Len(), unfinished.Len(), log.Len())
	}
}

func TestByCompletionIdempotent(t *testing.T) {
	log := logOf(trace("p1", 0, "The End"), trace("p2", 0, "P1"))

	once, err := ByCompletion(log, testGame, true)
	if err != nil {
		t.Fatal(err)
	}
	twice, err := ByCompletion(once, testGame, true)
	if err != nil {
		t.Fatal(err)
	}
	if once.Len() != twice.Len() {
		t.Errorf("filter not idempotent: %d then %d traces", once.Len(), twice.Len())
	}
}

func TestByCompletionNoEndAchievement(t *testing.T) {
	game := games.Definition{Name: "NO_END"}
	if _, err := ByCompletion(logOf(), game, true); !errors.Is(err, ErrNoEndAchievement) {
		t.Errorf("err = %v, want ErrNoEndAchievement", err)
	}
}

func TestByCompletionEmptyLog(t *testing.T) {
	out, err := ByCompletion(logOf(), testGame, true)
	if err != nil {
		t.Fatal(err)
	}
	if out.Len() != 0 {
		t.Errorf("empty log in, %d traces out", out.Len())
	}
}

func TestMainAchievements(t *testing.T) {
	log := logOf(trace("p1", 0, "P1", "Bonus", "P2", "The End"))

	out, err := MainAchievements(log, testGame)
	if err != nil {
		t.Fatal(err)
	}
	if got := out.EventCount(); got != 2 {
		t.Errorf("kept %d events, want 2", got)
	}

	if _, err := MainAchievements(log, games.Definition{Name: "FLAT"}); !errors.Is(err, ErrNoProgressAchievements) {
		t.Errorf("err = %v, want ErrNoProgressAchievements", err)
	}
}

type fakeCommonLookup map[string][]string

func (f fakeCommonLookup) CommonAchievements(game string) ([]string, error) {
	return f[game], nil
}

func TestCommonAchievements(t *testing.T) {
	log := logOf(trace("p1", 0, "P1", "Rare", "P2"))
	lookup := fakeCommonLookup{"TEST_GAME": {"P1", "P2"}}

	out, err := CommonAchievements(log, testGame, lookup)
	if err != nil {
		t.Fatal(err)
	}
	if got := out.EventCount(); got != 2 {
		t.Errorf("kept %d events, want 2", got)
	}
}

func TestContainingActivities(t *testing.T) {
	log := logOf(
		trace("p1", 0, "P1", "P2"),
		trace("p2", 0, "Bonus"),
	)

	with := ContainingActivities(log, []string{"P2"}, true)
	if !sameIDs(caseIDs(with), []string{"p1"}) {
		t.Errorf("positive = %v, want [p1]", caseIDs(with))
	}

	without := ContainingActivities(log, []string{"P2"}, false)
	if !sameIDs(caseIDs(without), []string{"p2"}) {
		t.Errorf("negative = %v, want [p2]", caseIDs(without))
	}
}
