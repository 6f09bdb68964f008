// Package stats provides file-backed repositories for per-player data
// collected alongside the achievement logs.
package stats

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// PlayerStats holds review and playtime data for one player.
type PlayerStats struct {
	Playtime           float64 `json:"playtime"`
	LeftPositiveReview bool    `json:"left_positive_review"`
	Review             string  `json:"review"`
	CollectedAll       bool    `json:"collected_all"`
}

// ErrUnknownCase is returned when a case id has no stats entry. Every
// case id in an event log is expected to have one; a miss is a
// data-integrity error and aborts the analysis run.
var ErrUnknownCase = fmt.Errorf("stats: unknown case id")

// PlayerLookup resolves a case id to its player stats.
type PlayerLookup interface {
	Lookup(caseID string) (PlayerStats, error)
}

// CommonLookup provides the precomputed common-achievement names for a
// game.
type CommonLookup interface {
	CommonAchievements(game string) ([]string, error)
}

// PlayerFile is a JSON file-backed player stats repository.
type PlayerFile struct {
	byCase map[string]PlayerStats
}

// LoadPlayerStats reads a player stats JSON file: an object mapping case
// id to stats.
func LoadPlayerStats(path string) (*PlayerFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("stats: read %s: %w", path, err)
	}

	byCase := make(map[string]PlayerStats)
	if err := json.Unmarshal(data, &byCase); err != nil {
		return nil, fmt.Errorf("stats: parse %s: %w", path, err)
	}
	return &PlayerFile{byCase: byCase}, nil
}

// NewPlayerStats builds an in-memory repository, used by tests and by
// callers that already hold the mapping.
func NewPlayerStats(byCase map[string]PlayerStats) *PlayerFile {
	return &PlayerFile{byCase: byCase}
}

// Lookup implements PlayerLookup.
func (f *PlayerFile) Lookup(caseID string) (PlayerStats, error) {
	s, ok := f.byCase[caseID]
	if !ok {
		return PlayerStats{}, fmt.Errorf("%w: %s", ErrUnknownCase, caseID)
	}
	return s, nil
}

// Len returns the number of players in the repository.
func (f *PlayerFile) Len() int { return len(f.byCase) }

// CaseIDs returns all case ids sorted, for deterministic iteration.
func (f *PlayerFile) CaseIDs() []string {
	ids := make([]string, 0, len(f.byCase))
	for id := range f.byCase {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// AveragePlaytime returns the mean playtime over all players, zero for an
// empty repository.
func (f *PlayerFile) AveragePlaytime() float64 {
	if len(f.byCase) == 0 {
		return 0
	}
	var sum float64
	for _, s := range f.byCase {
		sum += s.Playtime
	}
	return sum / float64(len(f.byCase))
}

// Dir resolves per-game data files inside one logs directory, using the
// <GAME>_<kind> naming of the telemetry exporter.
type Dir struct {
	path string
}

// NewDir creates a repository rooted at a logs directory.
func NewDir(path string) *Dir { return &Dir{path: path} }

// PlayerStatsPath returns the player stats file path for a game.
func (d *Dir) PlayerStatsPath(game string) string {
	return filepath.Join(d.path, game+"_player_stats.json")
}

// LogPath returns the achievement log CSV path for a game.
func (d *Dir) LogPath(game string) string {
	return filepath.Join(d.path, game+"_achievement_logs.csv")
}

// CommonAchievementsPath returns the common-achievements file path for a
// game.
func (d *Dir) CommonAchievementsPath(game string) string {
	return filepath.Join(d.path, game+"_common_achievements.json")
}

// PlayerStats loads the player stats repository for a game.
func (d *Dir) PlayerStats(game string) (*PlayerFile, error) {
	return LoadPlayerStats(d.PlayerStatsPath(game))
}

// CommonAchievements implements CommonLookup: a JSON array of activity
// names.
func (d *Dir) CommonAchievements(game string) ([]string, error) {
	path := d.CommonAchievementsPath(game)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("stats: read %s: %w", path, err)
	}

	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		return nil, fmt.Errorf("stats: parse %s: %w", path, err)
	}
	return names, nil
}
