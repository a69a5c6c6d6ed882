package usecase

import (
	"sort"
	"time"

	"EconDash/internal/domain/models"
	"EconDash/pkg/util"
)

// Merge outer-joins the three series on date. Every date present in any
// input yields exactly one row; invalid observations leave the field nil.
// Within one series a later observation for the same date replaces an
// earlier one. Output is ordered by date ascending.
func Merge(gdp, cpi, unemp []models.RawObservation) []models.MergedRow {
	byDate := make(map[time.Time]*models.MergedRow, len(gdp))

	apply := func(obs []models.RawObservation, set func(*models.MergedRow, *float64)) {
		for _, o := range obs {
			d := util.TruncateDay(o.Date)
			row, ok := byDate[d]
			if !ok {
				row = &models.MergedRow{Date: d}
				byDate[d] = row
			}
			if !o.Valid {
				set(row, nil)
				continue
			}
			v := o.Value
			set(row, &v)
		}
	}

	apply(gdp, func(r *models.MergedRow, v *float64) { r.GDP = v })
	apply(cpi, func(r *models.MergedRow, v *float64) { r.CPI = v })
	apply(unemp, func(r *models.MergedRow, v *float64) { r.Unemployment = v })

	out := make([]models.MergedRow, 0, len(byDate))
	for _, r := range byDate {
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// Clean drops every row with at least one absent field. Order is preserved.
func Clean(rows []models.MergedRow) []models.CleanedRow {
	out := make([]models.CleanedRow, 0, len(rows))
	for _, r := range rows {
		if !r.Complete() {
			continue
		}
		out = append(out, models.CleanedRow{
			Date:         r.Date,
			GDP:          *r.GDP,
			CPI:          *r.CPI,
			Unemployment: *r.Unemployment,
		})
	}
	return out
}
