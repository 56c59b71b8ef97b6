package services

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/Dosada05/judo-pools/snapshot"
)

var (
	rosterHeader   = []interface{}{"Nom", "Prénom", "Club", "Poids (kg)", "Hors catégorie"}
	standingHeader = []interface{}{"Rang", "Compétiteur", "Club", "Victoires", "Score", "Combats"}
	fixtureHeader  = []interface{}{"Combat", "Rouge", "Blanc", "Score rouge", "Score blanc", "Vainqueur"}
)

// buildScoreSheet renders one worksheet per pool with its roster, standings, fixtures
// and, when baseURL is set, a link to the online scoring page of the pool.
func buildScoreSheet(categoryName string, views []snapshot.PoolView, baseURL string) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	const defaultSheet = "Sheet1"
	if len(views) == 0 {
		if err := f.SetCellValue(defaultSheet, "A1", fmt.Sprintf("Aucune poule générée pour %s", categoryName)); err != nil {
			return nil, err
		}
		return writeWorkbook(f)
	}

	for i := range views {
		v := &views[i]
		sheet := fmt.Sprintf("Poule %d", v.Key.PoolNumber)
		idx, err := f.NewSheet(sheet)
		if err != nil {
			return nil, fmt.Errorf("create sheet %q: %w", sheet, err)
		}
		if i == 0 {
			f.SetActiveSheet(idx)
		}
		if err := writePoolSheet(f, sheet, categoryName, v, baseURL); err != nil {
			return nil, fmt.Errorf("write sheet %q: %w", sheet, err)
		}
	}
	if err := f.DeleteSheet(defaultSheet); err != nil {
		return nil, err
	}
	return writeWorkbook(f)
}

func writePoolSheet(f *excelize.File, sheet, categoryName string, v *snapshot.PoolView, baseURL string) error {
	names := make(map[int]string, len(v.Roster))
	row := 1
	put := func(values []interface{}) error {
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return err
		}
		row++
		return f.SetSheetRow(sheet, cell, &values)
	}

	title := fmt.Sprintf("Catégorie: %s - Poule %d (%s, %d/%d combats)", categoryName, v.Key.PoolNumber, v.Progress.Status, v.Progress.Played, v.Progress.Total)
	if err := put([]interface{}{title}); err != nil {
		return err
	}
	row++

	if err := put(rosterHeader); err != nil {
		return err
	}
	for _, c := range v.Roster {
		names[c.ID] = c.FullName()
		outside := ""
		if c.OutsideBracket {
			outside = "oui"
		}
		if err := put([]interface{}{c.LastName, c.FirstName, c.Club, c.Weight, outside}); err != nil {
			return err
		}
	}
	row++

	if err := put(standingHeader); err != nil {
		return err
	}
	for _, s := range v.Standings {
		if err := put([]interface{}{s.Rank, s.Name, s.Club, s.Victories, s.Score, s.BoutsPlayed}); err != nil {
			return err
		}
	}
	row++

	if err := put(fixtureHeader); err != nil {
		return err
	}
	for _, fx := range v.Fixtures {
		score1, score2, winner := interface{}(""), interface{}(""), ""
		if fx.Saved {
			score1, score2 = fx.Score1, fx.Score2
			winner = "égalité"
			if fx.WinnerID != nil {
				winner = names[*fx.WinnerID]
			}
		}
		label := fmt.Sprintf("%d/%d", fx.Number, fx.Total)
		if err := put([]interface{}{label, names[fx.Fighter1ID], names[fx.Fighter2ID], score1, score2, winner}); err != nil {
			return err
		}
	}

	if err := f.SetColWidth(sheet, "A", "F", 22); err != nil {
		return err
	}
	if baseURL == "" {
		return nil
	}
	row++
	link := fmt.Sprintf("%s/score_poule/%s/%d", strings.TrimRight(baseURL, "/"), url.PathEscape(categoryName), v.Key.PoolNumber)
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetCellValue(sheet, cell, "Saisir les scores en ligne"); err != nil {
		return err
	}
	return f.SetCellHyperLink(sheet, cell, link, "External")
}

func writeWorkbook(f *excelize.File) ([]byte, error) {
	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
