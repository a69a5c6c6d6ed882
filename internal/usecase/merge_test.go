package usecase

import (
	"testing"
	"time"

	"EconDash/internal/domain/models"
)

func d(y int, m time.Month) time.Time {
	return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
}

func obs(t time.Time, v float64) models.RawObservation {
	return models.RawObservation{Date: t, Value: v, Valid: true}
}

func missing(t time.Time) models.RawObservation {
	return models.RawObservation{Date: t}
}

func TestMergeOuterJoin(t *testing.T) {
	gdp := []models.RawObservation{obs(d(2020, 1), 100), obs(d(2020, 4), 101)}
	cpi := []models.RawObservation{obs(d(2020, 1), 10), obs(d(2020, 2), 10.1), obs(d(2020, 4), 10.3)}
	unemp := []models.RawObservation{obs(d(2020, 1), 5), obs(d(2020, 2), 5.1), missing(d(2020, 4))}

	merged := Merge(gdp, cpi, unemp)
	if len(merged) != 3 {
		t.Fatalf("merged rows = %d, want 3 distinct dates", len(merged))
	}
	for i := 1; i < len(merged); i++ {
		if !merged[i-1].Date.Before(merged[i].Date) {
			t.Fatalf("rows not ascending at %d", i)
		}
	}
	if merged[1].GDP != nil || merged[1].CPI == nil || *merged[1].CPI != 10.1 {
		t.Fatalf("february row = %+v", merged[1])
	}
	if merged[2].Unemployment != nil {
		t.Fatalf("missing value must be absent, got %v", *merged[2].Unemployment)
	}

	cleaned := Clean(merged)
	if len(cleaned) != 1 {
		t.Fatalf("cleaned rows = %d, want 1", len(cleaned))
	}
	c := cleaned[0]
	if !c.Date.Equal(d(2020, 1)) || c.GDP != 100 || c.CPI != 10 || c.Unemployment != 5 {
		t.Fatalf("unexpected cleaned row %+v", c)
	}
}

func TestCleanCompleteness(t *testing.T) {
	var gdp, cpi, unemp []models.RawObservation
	for i := 0; i < 48; i++ {
		at := d(2000, time.January).AddDate(0, i, 0)
		if i%3 == 0 {
			gdp = append(gdp, obs(at, float64(i)))
		}
		if i%2 == 0 {
			cpi = append(cpi, obs(at, float64(i)))
		}
		if i%5 == 0 {
			unemp = append(unemp, missing(at))
		} else {
			unemp = append(unemp, obs(at, float64(i)))
		}
	}

	merged := Merge(gdp, cpi, unemp)
	cleaned := Clean(merged)

	complete := 0
	for _, m := range merged {
		if m.Complete() {
			complete++
		}
	}
	if len(cleaned) != complete {
		t.Fatalf("cleaned = %d, complete merged = %d", len(cleaned), complete)
	}
	for _, c := range cleaned {
		month := int(c.Date.Month()) - 1 + (c.Date.Year()-2000)*12
		if month%6 != 0 || month%5 == 0 {
			t.Fatalf("row %v must not survive cleaning", c.Date)
		}
	}
}

func TestMergeCommutative(t *testing.T) {
	a := []models.RawObservation{obs(d(2019, 1), 1), obs(d(2019, 2), 2), missing(d(2019, 3))}
	b := []models.RawObservation{obs(d(2019, 2), 20), obs(d(2019, 3), 30)}
	c := []models.RawObservation{obs(d(2019, 1), 100), obs(d(2019, 2), 200), obs(d(2019, 3), 300)}

	abc := Clean(Merge(a, b, c))
	// same series, different argument order: compare the date sets
	bca := Clean(Merge(b, c, a))
	cab := Clean(Merge(c, a, b))

	if len(abc) != len(bca) || len(abc) != len(cab) {
		t.Fatalf("row counts differ: %d %d %d", len(abc), len(bca), len(cab))
	}
	for i := range abc {
		if !abc[i].Date.Equal(bca[i].Date) || !abc[i].Date.Equal(cab[i].Date) {
			t.Fatalf("date sets differ at %d", i)
		}
	}
	if len(abc) != 1 || !abc[0].Date.Equal(d(2019, 2)) {
		t.Fatalf("unexpected result %+v", abc)
	}
}

func TestMergeEmptyOverlap(t *testing.T) {
	gdp := []models.RawObservation{obs(d(2020, 1), 1)}
	cpi := []models.RawObservation{obs(d(2020, 2), 1)}
	unemp := []models.RawObservation{obs(d(2020, 3), 1)}

	cleaned := Clean(Merge(gdp, cpi, unemp))
	if cleaned == nil || len(cleaned) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", cleaned)
	}
	if got := Clean(Merge(nil, nil, nil)); len(got) != 0 {
		t.Fatalf("expected empty result for empty input")
	}
}

func TestMergeDuplicateDateLastWins(t *testing.T) {
	gdp := []models.RawObservation{obs(d(2020, 1), 1), obs(d(2020, 1), 2)}
	cpi := []models.RawObservation{obs(d(2020, 1), 3)}
	unemp := []models.RawObservation{obs(d(2020, 1), 4)}

	cleaned := Clean(Merge(gdp, cpi, unemp))
	if len(cleaned) != 1 || cleaned[0].GDP != 2 {
		t.Fatalf("expected last duplicate to win, got %+v", cleaned)
	}
}
