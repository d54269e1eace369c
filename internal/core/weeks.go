// Package core: calendar week numbering for the weekly accomplishment report
// schedule.
//
// Week numbering rule: weeks run Monday through Sunday. Week 1 is the week
// containing January 1 of the given year, and numbers increase by one per
// week, continuing across month boundaries for the rest of the year. The
// rule is year-relative on purpose: a week that straddles two months keeps
// the same number in both, so month views never disagree about which week a
// report belongs to.
package core

import "time"

// yearWeekBase returns the Monday on or before January 1 of year.
func yearWeekBase(year int) time.Time {
	jan1 := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	offset := (int(jan1.Weekday()) + 6) % 7 // days since Monday
	return jan1.AddDate(0, 0, -offset)
}

// WeekNumber returns the year-relative week number of t.
func WeekNumber(t time.Time) int {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	days := int(day.Sub(yearWeekBase(t.Year())).Hours() / 24)
	return days/7 + 1
}

// WeekStart returns midnight on the Monday opening the given week.
func WeekStart(year, week int) time.Time {
	return yearWeekBase(year).AddDate(0, 0, (week-1)*7)
}

// WeekEnd returns the first instant after the week, midnight on the
// following Monday. The week's last day is the day before.
func WeekEnd(year, week int) time.Time {
	return WeekStart(year, week).AddDate(0, 0, 7)
}

// AllWeeksInMonth returns every week number whose Monday..Sunday range
// intersects the given month, in ascending order.
func AllWeeksInMonth(year int, month time.Month) []int {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)
	lo := WeekNumber(first)
	hi := WeekNumber(last)
	weeks := make([]int, 0, hi-lo+1)
	for w := lo; w <= hi; w++ {
		weeks = append(weeks, w)
	}
	return weeks
}

// WeekHasPassed reports whether the week's last day ended strictly before now.
func WeekHasPassed(year, week int, now time.Time) bool {
	return !now.Before(WeekEnd(year, week))
}

// WeekActionable reports whether a report may be created for the week: every
// elapsed week is actionable, and so is the week containing now even though
// it has not yet passed.
func WeekActionable(year, week int, now time.Time) bool {
	if WeekHasPassed(year, week, now) {
		return true
	}
	return now.Year() == year && WeekNumber(now) == week
}
