// Package games provides the static registry of analyzed games.
//
// Each game is described by an immutable Definition loaded once at process
// start. Built-in definitions cover the Steam titles the telemetry was
// collected for; a YAML file can override or extend them.
package games

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Definition describes one game's achievement structure.
type Definition struct {
	// Name is the registry key and the prefix of the game's data files.
	Name string `yaml:"name"`

	// ID is the Steam application id.
	ID int `yaml:"id"`

	// EndAchievement marks full game completion. Empty for games
	// without one.
	EndAchievement string `yaml:"end_achievement"`

	// MainAchievements is the canonical, must-occur-in-order progress
	// sequence. Empty for games without progress tracking.
	MainAchievements []string `yaml:"main_achievements"`

	// LevelMarkers is the allow-list of activities retained by the
	// achievement-window filter for this game.
	LevelMarkers []string `yaml:"level_markers"`
}

// HasEndAchievement reports whether completion filtering is defined for
// the game.
func (d Definition) HasEndAchievement() bool { return d.EndAchievement != "" }

// HasProgress reports whether the game tracks ordered progress
// achievements.
func (d Definition) HasProgress() bool { return len(d.MainAchievements) > 0 }

// Registry maps game names to definitions.
type Registry struct {
	defs map[string]Definition
}

// ErrUnknownGame is returned when a game name has no definition.
var ErrUnknownGame = fmt.Errorf("games: unknown game")

// Builtin returns a registry with the built-in game definitions.
func Builtin() *Registry {
	r := &Registry{defs: make(map[string]Definition, len(builtin))}
	for _, d := range builtin {
		r.defs[d.Name] = d
	}
	return r
}

// LoadFile merges definitions from a YAML file into the registry.
// Entries with a known name replace the built-in definition.
func (r *Registry) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("games: read %s: %w", path, err)
	}

	var file struct {
		Games []Definition `yaml:"games"`
	}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("games: parse %s: %w", path, err)
	}

	for _, d := range file.Games {
		if d.Name == "" {
			return fmt.Errorf("games: definition in %s missing name", path)
		}
		r.defs[d.Name] = d
	}
	return nil
}

// Get returns the definition for name.
func (r *Registry) Get(name string) (Definition, error) {
	d, ok := r.defs[name]
	if !ok {
		return Definition{}, fmt.Errorf("%w: %s", ErrUnknownGame, name)
	}
	return d, nil
}

// All returns every definition sorted by name.
func (r *Registry) All() []Definition {
	out := make([]Definition, 0, len(r.defs))
	for _, d := range r.defs {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

var builtin = []Definition{
	{
		Name:           "GRIS",
		ID:             683320,
		EndAchievement: "The End",
		MainAchievements: []string{
			"Red", "Green", "Blue", "Yellow", "The End",
		},
	},
	{
		Name:           "HADES",
		ID:             1145360,
		EndAchievement: "The Family Secret",
		MainAchievements: []string{
			"Escaped Tartarus", "Escaped Asphodel", "Escaped Elysium",
			"Is There No Escape?", "The Family Secret",
		},
	},
	{
		Name:           "PER_ASPERA",
		ID:             803050,
		EndAchievement: "Terraformer V",
		MainAchievements: []string{
			"Terraformer I", "Terraformer II", "Terraformer III",
			"Terraformer IV", "Terraformer V",
		},
		LevelMarkers: []string{
			"Terraformer IV", "Off The Hook", "We are immortal!",
			"Doom Importer", "Magnetic Personality", "Terraformer V",
		},
	},
	{
		Name:           "BLACK_MIRROR",
		ID:             581300,
		EndAchievement: "Chapter V completed",
		MainAchievements: []string{
			"Chapter I completed", "Chapter II completed",
			"Chapter III completed", "Chapter IV completed",
			"Chapter V completed",
		},
	},
	{
		Name:           "TIS_100",
		ID:             370360,
		EndAchievement: "100_PERCENT_V1",
	},
	{
		Name: "FRIDAY_THE_13TH",
		ID:   438740,
	},
	{
		Name:           "OXYGEN_NOT_INCLUDED",
		ID:             457140,
		EndAchievement: "Home Sweet Home",
	},
	{
		Name:           "WITCHER_3",
		ID:             292030,
		EndAchievement: "Passed the Trial",
		MainAchievements: []string{
			"Lilac and Gooseberries", "Family Counselor",
			"A Friend in Need", "Necromancer", "Something More",
			"Xenonaut", "The King is Dead", "Passed the Trial",
		},
	},
}
