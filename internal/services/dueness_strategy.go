// Package services wires the pure ledger to storage and transport.
//
// Dueness of recurring templates is decided by one strategy per frequency,
// looked up through GetDuenessChecker.
package services

import (
	"fmt"
	"time"

	"pocketledger/internal/core"
)

// DuenessChecker decides whether a recurring template has to be materialized
// again at now. lastExecution is the zero time when it never ran.
type DuenessChecker interface {
	IsDue(lastExecution, now time.Time, startDate core.Date) bool
}

// DailyChecker is due once per calendar day.
type DailyChecker struct{}

func (DailyChecker) IsDue(lastExecution, now time.Time, _ core.Date) bool {
	if lastExecution.IsZero() {
		return true
	}
	return !core.DateOf(lastExecution).Equal(core.DateOf(now))
}

// WeeklyChecker is due when at least seven days have passed.
type WeeklyChecker struct{}

func (WeeklyChecker) IsDue(lastExecution, now time.Time, _ core.Date) bool {
	if lastExecution.IsZero() {
		return true
	}
	return core.DaysUntil(core.DateOf(lastExecution), core.DateOf(now)) >= 7
}

// MonthlyChecker is due once per month, from the template's day onwards.
// Days past the end of a short month fall on its last day.
type MonthlyChecker struct{}

func (MonthlyChecker) IsDue(lastExecution, now time.Time, startDate core.Date) bool {
	if lastExecution.IsZero() {
		return true
	}
	if lastExecution.Year() == now.Year() && lastExecution.Month() == now.Month() {
		return false
	}
	target := core.DateInMonth(now.Year(), int(now.Month()), startDate.Day())
	return now.Day() >= target.Day()
}

// YearlyChecker is due once per year, from the template's month and day onwards.
type YearlyChecker struct{}

func (YearlyChecker) IsDue(lastExecution, now time.Time, startDate core.Date) bool {
	if lastExecution.IsZero() {
		return true
	}
	if lastExecution.Year() == now.Year() {
		return false
	}
	month := int(now.Month())
	switch {
	case month < startDate.Month():
		return false
	case month > startDate.Month():
		return true
	}
	target := core.DateInMonth(now.Year(), month, startDate.Day())
	return now.Day() >= target.Day()
}

var duenessStrategies = map[core.Frequency]DuenessChecker{
	core.Daily:   DailyChecker{},
	core.Weekly:  WeeklyChecker{},
	core.Monthly: MonthlyChecker{},
	core.Yearly:  YearlyChecker{},
}

// GetDuenessChecker returns the checker registered for frequency.
func GetDuenessChecker(frequency core.Frequency) (DuenessChecker, error) {
	checker, ok := duenessStrategies[frequency]
	if !ok {
		return nil, fmt.Errorf("unknown recurrence frequency: %q", frequency)
	}
	return checker, nil
}

// RegisterDuenessChecker adds or replaces the checker for frequency.
// It is not safe to call while processors are running.
func RegisterDuenessChecker(frequency core.Frequency, checker DuenessChecker) {
	duenessStrategies[frequency] = checker
}
