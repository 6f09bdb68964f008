package report

import (
	"fmt"
	"sort"

	"github.com/xuri/excelize/v2"

	"github.com/playtrace/playtrace/pkg/levels"
)

// Workbook exports the analysis tables to one XLSX file: a comparison
// sheet, a cheaters sheet, and one sheet per level breakdown. Nil maps
// skip their sheet.
func (w *Writer) Workbook(name string, comparison map[string]ComparisonRecord, cheaters map[string]CheaterStats, breakdowns map[string]levels.Breakdown) error {
	f := excelize.NewFile()
	defer f.Close()

	first := true
	addSheet := func(title string) error {
		if first {
			// Rename the default sheet instead of leaving "Sheet1".
			if err := f.SetSheetName("Sheet1", title); err != nil {
				return err
			}
			first = false
			return nil
		}
		_, err := f.NewSheet(title)
		return err
	}

	if comparison != nil {
		if err := addSheet("Comparison"); err != nil {
			return fmt.Errorf("report: xlsx sheet: %w", err)
		}
		if err := writeComparisonSheet(f, comparison); err != nil {
			return fmt.Errorf("report: xlsx comparison: %w", err)
		}
	}

	if cheaters != nil {
		if err := addSheet("Cheaters"); err != nil {
			return fmt.Errorf("report: xlsx sheet: %w", err)
		}
		if err := writeCheaterSheet(f, cheaters); err != nil {
			return fmt.Errorf("report: xlsx cheaters: %w", err)
		}
	}

	games := make([]string, 0, len(breakdowns))
	for g := range breakdowns {
		games = append(games, g)
	}
	sort.Strings(games)
	for _, g := range games {
		title := "Levels " + g
		if len(title) > 31 {
			title = title[:31] // sheet name limit
		}
		if err := addSheet(title); err != nil {
			return fmt.Errorf("report: xlsx sheet: %w", err)
		}
		if err := writeLevelSheet(f, title, breakdowns[g]); err != nil {
			return fmt.Errorf("report: xlsx levels %s: %w", g, err)
		}
	}

	path := w.Path(name)
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("report: save %s: %w", path, err)
	}
	w.files = append(w.files, name)
	return nil
}

func writeComparisonSheet(f *excelize.File, records map[string]ComparisonRecord) error {
	header := []any{"Game", "Positive", "Negative", "Finished", "Unfinished"}
	if err := f.SetSheetRow("Comparison", "A1", &header); err != nil {
		return err
	}

	games := make([]string, 0, len(records))
	for g := range records {
		games = append(games, g)
	}
	sort.Strings(games)

	for i, g := range games {
		r := records[g]
		row := []any{g, r.PositiveFitness, r.NegativeFitness, r.FinishedFitness, r.UnfinishedFitness}
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow("Comparison", cell, &row); err != nil {
			return err
		}
	}
	return nil
}

func writeCheaterSheet(f *excelize.File, cheaters map[string]CheaterStats) error {
	header := []any{"Game", "Percentage", "Cheaters"}
	if err := f.SetSheetRow("Cheaters", "A1", &header); err != nil {
		return err
	}

	games := make([]string, 0, len(cheaters))
	for g := range cheaters {
		games = append(games, g)
	}
	sort.Strings(games)

	for i, g := range games {
		s := cheaters[g]
		row := []any{g, s.Percentage, len(s.Cheaters)}
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow("Cheaters", cell, &row); err != nil {
			return err
		}
	}
	return nil
}

func writeLevelSheet(f *excelize.File, sheet string, b levels.Breakdown) error {
	header := []any{"Achievement", "Players", "Total", "Negative reviews %"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}

	for i, l := range b.Levels {
		row := []any{l.Achievement, l.Info.LevelNumPlayers, l.Info.TotalNumPlayers, l.Info.NegativeReviewsPercentage}
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}
