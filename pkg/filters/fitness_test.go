package filters

import (
	"errors"
	"testing"

	"github.com/playtrace/playtrace/pkg/mining"
)

func TestByTraceFitness(t *testing.T) {
	log := logOf(
		trace("p1", 0, "A"),
		trace("p2", 0, "B"),
		trace("p3", 0, "C"),
	)
	replayed := []mining.ReplayResult{
		{TraceIsFit: true},
		{TraceIsFit: false},
		{TraceIsFit: true},
	}

	out, err := ByTraceFitness(log, replayed)
	if err != nil {
		t.Fatal(err)
	}
	if !sameIDs(caseIDs(out), []string{"p1", "p3"}) {
		t.Errorf("fit = %v, want [p1 p3]", caseIDs(out))
	}
}

func TestByTraceFitnessLengthMismatch(t *testing.T) {
	log := logOf(trace("p1", 0, "A"), trace("p2", 0, "B"))
	replayed := []mining.ReplayResult{{TraceIsFit: true}}

	if _, err := ByTraceFitness(log, replayed); !errors.Is(err, mining.ErrReplayLengthMismatch) {
		t.Errorf("err = %v, want ErrReplayLengthMismatch", err)
	}
}
