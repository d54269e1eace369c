package core

import (
	"sort"
	"time"
)

type (
	// WeekBucket groups the reports submitted for one week.
	WeekBucket struct {
		WeekNumber int
		Reports    []ReportRecord
	}

	// MonthBucket is the derived month view: submitted weeks, the exhaustive
	// week set for the month, and which weeks are still missing. It is
	// recomputed from the flat report list on every read and never persisted.
	MonthBucket struct {
		Month             time.Month
		MonthName         string
		Weeks             []WeekBucket
		AllWeeks          []int
		MissingWeeks      []int
		MissedWeeksPassed int
		HasData           bool
	}
)

// BucketByMonth groups reports for the selected year into the
// year -> month -> week hierarchy.
//
// For every month, Weeks and MissingWeeks partition AllWeeks: each week of
// the month either holds at least one report or is listed missing. A missing
// week counts toward MissedWeeksPassed once its last day has elapsed. Months
// are included in the result if they hold data, have at least one elapsed
// missing week, or contain now; months entirely in the future are suppressed
// so the view never invites reports for weeks that have not started.
func BucketByMonth(reports []ReportRecord, year int, now time.Time) []MonthBucket {
	byMonth := make(map[time.Month][]ReportRecord)
	for _, r := range reports {
		if r.CreatedFor.IsZero() || r.CreatedFor.Time.Year() != year {
			continue
		}
		m := r.CreatedFor.Time.Month()
		byMonth[m] = append(byMonth[m], r)
	}

	var out []MonthBucket
	for m := time.January; m <= time.December; m++ {
		b := bucketMonth(byMonth[m], year, m, now)
		current := now.Year() == year && now.Month() == m
		if b.HasData || b.MissedWeeksPassed > 0 || current {
			out = append(out, b)
		}
	}
	return out
}

func bucketMonth(reports []ReportRecord, year int, month time.Month, now time.Time) MonthBucket {
	byWeek := make(map[int][]ReportRecord)
	for _, r := range reports {
		w := WeekNumber(r.CreatedFor.Time)
		byWeek[w] = append(byWeek[w], r)
	}

	weeks := make([]WeekBucket, 0, len(byWeek))
	for w, rs := range byWeek {
		sort.Slice(rs, func(i, j int) bool {
			return rs[i].CreatedFor.Time.Before(rs[j].CreatedFor.Time)
		})
		weeks = append(weeks, WeekBucket{WeekNumber: w, Reports: rs})
	}
	sort.Slice(weeks, func(i, j int) bool {
		return weeks[i].WeekNumber < weeks[j].WeekNumber
	})

	all := AllWeeksInMonth(year, month)
	var missing []int
	passed := 0
	for _, w := range all {
		if _, ok := byWeek[w]; ok {
			continue
		}
		missing = append(missing, w)
		if WeekHasPassed(year, w, now) {
			passed++
		}
	}

	return MonthBucket{
		Month:             month,
		MonthName:         month.String(),
		Weeks:             weeks,
		AllWeeks:          all,
		MissingWeeks:      missing,
		MissedWeeksPassed: passed,
		HasData:           len(reports) > 0,
	}
}
