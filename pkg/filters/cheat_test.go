package filters

import (
	"testing"
	"time"

	"github.com/playtrace/playtrace/internal/model"
)

// sameStamp builds a trace whose events all share one timestamp.
func sameStamp(caseID string, n int) model.Trace {
	t := model.Trace{CaseID: caseID}
	stamp := time.Date(2021, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		t.Events = append(t.Events, model.Event{
			CaseID:    caseID,
			Activity:  "A",
			Timestamp: stamp,
		})
	}
	return t
}

func TestIsCheating(t *testing.T) {
	tests := []struct {
		name     string
		trace    model.Trace
		cheating bool
	}{
		{"three events one timestamp", sameStamp("p1", 3), true},
		{"two events one timestamp", sameStamp("p1", 2), true},
		{"single event", sameStamp("p1", 1), false},
		{"empty trace", model.Trace{CaseID: "p1"}, false},
		{"distinct timestamps", trace("p1", 0, "A", "B"), false},
	}

	for _, tt := range tests {
		if got := IsCheating(tt.trace); got != tt.cheating {
			t.Errorf("%s: IsCheating() = %v, want %v", tt.name, got, tt.cheating)
		}
	}
}

func TestCheatingPlayersComplementLaw(t *testing.T) {
	log := logOf(
		sameStamp("p1", 3),
		trace("p2", 0, "A", "B"),
		sameStamp("p3", 1),
		sameStamp("p4", 2),
	)

	cheaters := CheatingPlayers(log, true)
	honest := CheatingPlayers(log, false)

	if !sameIDs(caseIDs(cheaters), []string{"p1", "p4"}) {
		t.Errorf("cheaters = %v, want [p1 p4]", caseIDs(cheaters))
	}
	if !sameIDs(caseIDs(honest), []string{"p2", "p3"}) {
		t.Errorf("honest = %v, want [p2 p3]", caseIDs(honest))
	}
	if cheaters.Len()+honest.Len() != log.Len() {
		t.Errorf("complement law violated: %d + %d != %d",
			cheaters.Len(), honest.Len(), log.Len())
	}
}

func TestCheatingPlayersIdempotent(t *testing.T) {
	log := logOf(sameStamp("p1", 3), trace("p2", 0, "A", "B"))

	once := CheatingPlayers(log, true)
	twice := CheatingPlayers(once, true)
	if once.Len() != twice.Len() {
		t.Errorf("filter not idempotent: %d then %d traces", once.Len(), twice.Len())
	}
}
