package stats

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadPlayerStats(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "HADES_player_stats.json", `{
		"p1": {"playtime": 42.5, "left_positive_review": true, "review": "great", "collected_all": false},
		"p2": {"playtime": 7.5, "left_positive_review": false, "review": "", "collected_all": true}
	}`)

	repo, err := NewDir(dir).PlayerStats("HADES")
	if err != nil {
		t.Fatal(err)
	}

	if repo.Len() != 2 {
		t.Fatalf("loaded %d players, want 2", repo.Len())
	}

	p1, err := repo.Lookup("p1")
	if err != nil {
		t.Fatal(err)
	}
	if p1.Playtime != 42.5 || !p1.LeftPositiveReview || p1.Review != "great" {
		t.Errorf("p1 = %+v", p1)
	}

	if _, err := repo.Lookup("ghost"); !errors.Is(err, ErrUnknownCase) {
		t.Errorf("err = %v, want ErrUnknownCase", err)
	}
}

func TestAveragePlaytime(t *testing.T) {
	repo := NewPlayerStats(map[string]PlayerStats{
		"p1": {Playtime: 10},
		"p2": {Playtime: 30},
	})
	if got := repo.AveragePlaytime(); got != 20 {
		t.Errorf("AveragePlaytime() = %v, want 20", got)
	}

	if got := NewPlayerStats(nil).AveragePlaytime(); got != 0 {
		t.Errorf("empty AveragePlaytime() = %v, want 0", got)
	}
}

func TestCaseIDsSorted(t *testing.T) {
	repo := NewPlayerStats(map[string]PlayerStats{
		"p3": {}, "p1": {}, "p2": {},
	})
	ids := repo.CaseIDs()
	want := []string{"p1", "p2", "p3"}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("CaseIDs() = %v, want %v", ids, want)
		}
	}
}

func TestCommonAchievements(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "GRIS_common_achievements.json", `["Red", "Green", "Blue"]`)

	names, err := NewDir(dir).CommonAchievements("GRIS")
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 3 || names[0] != "Red" {
		t.Errorf("CommonAchievements() = %v", names)
	}
}

func TestMalformedStatsFatal(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "BAD_player_stats.json", `{"p1": `)

	if _, err := NewDir(dir).PlayerStats("BAD"); err == nil {
		t.Error("malformed stats file must fail to load")
	}
}

func TestDirPaths(t *testing.T) {
	d := NewDir("Logs")
	if got := d.LogPath("GRIS"); got != filepath.Join("Logs", "GRIS_achievement_logs.csv") {
		t.Errorf("LogPath() = %q", got)
	}
	if got := d.PlayerStatsPath("GRIS"); got != filepath.Join("Logs", "GRIS_player_stats.json") {
		t.Errorf("PlayerStatsPath() = %q", got)
	}
}
