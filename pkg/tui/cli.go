// Package tui renders analysis results on the terminal. Plain streaming
// output, no interactive screens.
package tui

import (
	"fmt"
	"sort"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/schollz/progressbar/v3"

	"github.com/playtrace/playtrace/pkg/analysis"
	"github.com/playtrace/playtrace/pkg/levels"
	"github.com/playtrace/playtrace/pkg/report"
)

// Colors
var (
	accent  = lipgloss.Color("#FF8800")
	muted   = lipgloss.Color("#666666")
	success = lipgloss.Color("#00CC66")
	white   = lipgloss.Color("#FFFFFF")
)

// Styles
var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(white)
	accentStyle  = lipgloss.NewStyle().Foreground(accent).Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(muted)
	successStyle = lipgloss.NewStyle().Foreground(success).Bold(true)
)

// PrintHeader prints the tool banner.
func PrintHeader(version string) {
	fmt.Println()
	fmt.Println(titleStyle.Render("  PLAYTRACE") + mutedStyle.Render(" v"+version))
	fmt.Println(mutedStyle.Render("  Game achievement telemetry analyzer"))
	fmt.Println()
}

// PrintDone prints a completion line with the elapsed time and run id.
func PrintDone(what, runID string, elapsed time.Duration) {
	fmt.Println()
	fmt.Printf("%s %s %s\n",
		successStyle.Render("  ✓"),
		titleStyle.Render(what),
		mutedStyle.Render(fmt.Sprintf("(%s, run %s)", formatDuration(elapsed), runID)))
	fmt.Println()
}

// PrintFitness prints a per-game fitness table.
func PrintFitness(title string, fitness map[string]float64) {
	fmt.Println(accentStyle.Render("  ▸ " + title))
	for _, game := range sortedKeys(fitness) {
		fmt.Printf("    %s %s\n",
			mutedStyle.Render(pad(game, 22)),
			titleStyle.Render(fmt.Sprintf("%.4f", fitness[game])))
	}
}

// PrintComparison prints the review/completion comparison table.
func PrintComparison(records map[string]report.ComparisonRecord) {
	fmt.Println(accentStyle.Render("  ▸ FITNESS COMPARISON"))
	fmt.Printf("    %s %s\n",
		mutedStyle.Render(pad("game", 22)),
		mutedStyle.Render("positive  negative  finished  unfinished"))

	games := make([]string, 0, len(records))
	for g := range records {
		games = append(games, g)
	}
	sort.Strings(games)

	for _, game := range games {
		r := records[game]
		fmt.Printf("    %s %8.4f  %8.4f  %8.4f  %10.4f\n",
			mutedStyle.Render(pad(game, 22)),
			r.PositiveFitness, r.NegativeFitness, r.FinishedFitness, r.UnfinishedFitness)
	}
}

// PrintCheaters prints the per-game cheating summary.
func PrintCheaters(cheaters map[string]report.CheaterStats) {
	fmt.Println(accentStyle.Render("  ▸ CHEATER STATISTICS"))

	games := make([]string, 0, len(cheaters))
	for g := range cheaters {
		games = append(games, g)
	}
	sort.Strings(games)

	for _, game := range games {
		s := cheaters[game]
		fmt.Printf("    %s %s %s\n",
			mutedStyle.Render(pad(game, 22)),
			titleStyle.Render(fmt.Sprintf("%6.2f%%", s.Percentage)),
			mutedStyle.Render(fmt.Sprintf("(%d players)", len(s.Cheaters))))
	}
}

// PrintBreakdown prints a per-level unfinished-player breakdown.
func PrintBreakdown(game string, b levels.Breakdown) {
	fmt.Println(accentStyle.Render("  ▸ " + game + " UNFINISHED BY LEVEL"))
	for _, l := range b.Levels {
		fmt.Printf("    %s %s %s\n",
			mutedStyle.Render(pad(l.Achievement, 28)),
			titleStyle.Render(fmt.Sprintf("%4d / %d", l.Info.LevelNumPlayers, l.Info.TotalNumPlayers)),
			mutedStyle.Render(fmt.Sprintf("%.2f%% negative reviews", l.Info.NegativeReviewsPercentage)))
	}
}

// PrintNoise prints the classifier comparison of one game.
func PrintNoise(r analysis.NoiseReport) {
	fmt.Println(accentStyle.Render("  ▸ " + r.Game + " NOISE DETECTION"))
	fmt.Printf("    %s %d / %d\n", mutedStyle.Render(pad("fit traces", 34)), r.FitCount, r.Total)
	fmt.Printf("    %s %d / %d\n", mutedStyle.Render(pad("sequence-correct traces", 34)), r.CorrectCount, r.Total)
	fmt.Printf("    %s %d / %d\n", mutedStyle.Render(pad("non-cheating traces", 34)), r.NonCheatingCount, r.Total)
	fmt.Printf("    %s %d / %d\n", mutedStyle.Render(pad("unfit but sequence-correct", 34)), r.UnfitNotIncorrect, r.UnfitCount)
	fmt.Printf("    %s %d / %d\n", mutedStyle.Render(pad("incorrect but fit", 34)), r.IncorrectNotUnfit, r.IncorrectCount)
	fmt.Printf("    %s %d / %d\n", mutedStyle.Render(pad("cheating but fit", 34)), r.CheatersNotUnfit, r.CheaterCount)
}

// PrintError prints an error line.
func PrintError(err error) {
	fmt.Printf("%s %v\n", accentStyle.Render("  ✗"), err)
}

// ShowProgress creates a progress bar over a known number of games.
func ShowProgress(total int64, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions64(total,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerHead:    "█",
			SaucerPadding: "░",
			BarStart:      "",
			BarEnd:        "",
		}),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionClearOnFinish(),
	)
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func pad(s string, width int) string {
	for len(s) < width {
		s += " "
	}
	return s
}

// formatDuration formats a duration in a human-readable way.
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
}
