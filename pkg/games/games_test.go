package games

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestBuiltinRegistry(t *testing.T) {
	r := Builtin()

	hades, err := r.Get("HADES")
	if err != nil {
		t.Fatal(err)
	}
	if hades.EndAchievement != "The Family Secret" {
		t.Errorf("HADES end achievement = %q", hades.EndAchievement)
	}
	if len(hades.MainAchievements) != 5 {
		t.Errorf("HADES has %d progress achievements, want 5", len(hades.MainAchievements))
	}

	if _, err := r.Get("NOT_A_GAME"); !errors.Is(err, ErrUnknownGame) {
		t.Errorf("err = %v, want ErrUnknownGame", err)
	}
}

func TestDefinitionPredicates(t *testing.T) {
	tests := []struct {
		game     string
		end      bool
		progress bool
	}{
		{"GRIS", true, true},
		{"TIS_100", true, false},
		{"FRIDAY_THE_13TH", false, false},
		{"PER_ASPERA", true, true},
	}

	r := Builtin()
	for _, tt := range tests {
		d, err := r.Get(tt.game)
		if err != nil {
			t.Fatal(err)
		}
		if d.HasEndAchievement() != tt.end {
			t.Errorf("%s: HasEndAchievement() = %v, want %v", tt.game, d.HasEndAchievement(), tt.end)
		}
		if d.HasProgress() != tt.progress {
			t.Errorf("%s: HasProgress() = %v, want %v", tt.game, d.HasProgress(), tt.progress)
		}
	}
}

func TestPerAsperaLevelMarkers(t *testing.T) {
	d, err := Builtin().Get("PER_ASPERA")
	if err != nil {
		t.Fatal(err)
	}
	if len(d.LevelMarkers) != 6 {
		t.Errorf("PER_ASPERA has %d level markers, want 6", len(d.LevelMarkers))
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "games.yaml")
	yaml := `games:
  - name: MY_GAME
    id: 12345
    end_achievement: Done
    main_achievements: [One, Two, Done]
  - name: GRIS
    id: 683320
    end_achievement: Overridden
`
	if err := os.WriteFile(path, []byte(yaml), 0644); err != nil {
		t.Fatal(err)
	}

	r := Builtin()
	if err := r.LoadFile(path); err != nil {
		t.Fatal(err)
	}

	added, err := r.Get("MY_GAME")
	if err != nil {
		t.Fatal(err)
	}
	if added.EndAchievement != "Done" || len(added.MainAchievements) != 3 {
		t.Errorf("MY_GAME loaded as %+v", added)
	}

	gris, err := r.Get("GRIS")
	if err != nil {
		t.Fatal(err)
	}
	if gris.EndAchievement != "Overridden" {
		t.Errorf("GRIS not overridden: end = %q", gris.EndAchievement)
	}
}

func TestLoadFileMissingName(t *testing.T) {
	path := filepath.Join(t.TempDir(), "games.yaml")
	if err := os.WriteFile(path, []byte("games:\n  - id: 1\n"), 0644); err != nil {
		t.Fatal(err)
	}

	if err := Builtin().LoadFile(path); err == nil {
		t.Error("definition without a name must fail to load")
	}
}

func TestAllSorted(t *testing.T) {
	defs := Builtin().All()
	if len(defs) == 0 {
		t.Fatal("no built-in definitions")
	}
	for i := 1; i < len(defs); i++ {
		if defs[i-1].Name >= defs[i].Name {
			t.Errorf("All() not sorted: %s before %s", defs[i-1].Name, defs[i].Name)
		}
	}
}
