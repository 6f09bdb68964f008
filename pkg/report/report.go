// Package report writes analysis results to the output directory as
// JSON, XLSX and parquet files.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/playtrace/playtrace/pkg/levels"
	"github.com/playtrace/playtrace/pkg/mining"
)

// ComparisonRecord holds the per-game fitness values of the comparison
// analysis. Finished and unfinished fitness stay zero for games without
// an end achievement.
type ComparisonRecord struct {
	PositiveFitness   float64 `json:"positive_fitness"`
	NegativeFitness   float64 `json:"negative_fitness"`
	FinishedFitness   float64 `json:"finished_fitness"`
	UnfinishedFitness float64 `json:"unfinished_fitness"`
}

// CheaterStats holds the cheating summary for one game. Percentage is
// 0..100 with two decimals.
type CheaterStats struct {
	Percentage float64  `json:"percentage"`
	Cheaters   []string `json:"cheaters"`
}

// Writer persists reports under one output directory. Every run gets a
// fresh id recorded in a manifest next to the report files.
type Writer struct {
	dir   string
	runID string
	files []string
}

// NewWriter creates the output directory if needed and starts a new run.
func NewWriter(dir string) (*Writer, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("report: create %s: %w", dir, err)
	}
	return &Writer{dir: dir, runID: uuid.NewString()}, nil
}

// RunID returns the id of this report run.
func (w *Writer) RunID() string { return w.runID }

// Dir returns the output directory.
func (w *Writer) Dir() string { return w.dir }

// Path resolves a report file name inside the output directory.
func (w *Writer) Path(name string) string { return filepath.Join(w.dir, name) }

func (w *Writer) writeJSON(name string, v any) error {
	data, err := json.MarshalIndent(v, "", " ")
	if err != nil {
		return fmt.Errorf("report: marshal %s: %w", name, err)
	}
	path := w.Path(name)
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("report: write %s: %w", path, err)
	}
	w.files = append(w.files, name)
	return nil
}

// TypicalPlaythroughFitness writes the per-game fitness of the typical
// playthrough models.
func (w *Writer) TypicalPlaythroughFitness(fitness map[string]float64) error {
	return w.writeJSON("typical_playthrough_fitness_records.json", fitness)
}

// ComparisonFitness writes the fitness records of the review/completion
// comparison.
func (w *Writer) ComparisonFitness(records map[string]ComparisonRecord) error {
	return w.writeJSON("fitness_records_for_comparison.json", records)
}

// CheaterStatistics writes the per-game cheating summary.
func (w *Writer) CheaterStatistics(cheaters map[string]CheaterStats) error {
	return w.writeJSON("cheater_statistics.json", cheaters)
}

// LevelBreakdown writes the per-level unfinished-player breakdown for
// one game.
func (w *Writer) LevelBreakdown(game string, b levels.Breakdown) error {
	return w.writeJSON(game+"_unfinished_divided_by_levels.json", b)
}

// PerformanceDFG writes an aggregated directly-follows graph as a flat
// edge list, sorted for stable output.
func (w *Writer) PerformanceDFG(game, suffix string, dfg *mining.DFG) error {
	type edge struct {
		From    string  `json:"from"`
		To      string  `json:"to"`
		Seconds float64 `json:"seconds"`
	}
	out := make([]edge, 0, len(dfg.Edges))
	for e, s := range dfg.Edges {
		out = append(out, edge{From: e.From, To: e.To, Seconds: s})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].From != out[j].From {
			return out[i].From < out[j].From
		}
		return out[i].To < out[j].To
	})
	return w.writeJSON(fmt.Sprintf("%s_performance_%s.json", game, suffix), out)
}

// Manifest records the run id and every file written so far.
func (w *Writer) Manifest() error {
	manifest := struct {
		RunID       string    `json:"run_id"`
		GeneratedAt time.Time `json:"generated_at"`
		Files       []string  `json:"files"`
	}{
		RunID:       w.runID,
		GeneratedAt: time.Now().UTC(),
		Files:       w.files,
	}
	return w.writeJSON("run_manifest.json", manifest)
}
