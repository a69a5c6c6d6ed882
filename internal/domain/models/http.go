package models

// Requests for dashboard HTTP endpoints.

type ChartRequest struct {
	Indicator string `query:"indicator" json:"indicator" default:"GDP" validate:"oneof=GDP CPI Unemployment"`
}

// ChartPoint is one (year, value) sample of a chart line.
type ChartPoint struct {
	Year  int     `json:"year"`
	Value float64 `json:"value"`
}

// Chart is the line chart payload for one indicator.
type Chart struct {
	Indicator  Indicator    `json:"indicator"`
	Title      string       `json:"title"`
	XAxisTitle string       `json:"x_title"`
	YAxisTitle string       `json:"y_title"`
	Points     []ChartPoint `json:"points"`
}

// BuildChart projects the yearly table onto one indicator.
func BuildChart(rows []YearlyAggregate, ind Indicator) Chart {
	pts := make([]ChartPoint, 0, len(rows))
	for _, r := range rows {
		pts = append(pts, ChartPoint{Year: r.Year, Value: r.Value(ind)})
	}
	return Chart{
		Indicator:  ind,
		Title:      "Annual US " + string(ind) + " Over Time",
		XAxisTitle: "Year",
		YAxisTitle: string(ind),
		Points:     pts,
	}
}
