/*
weekly.go - Read-side weekly aggregation

PURPOSE:
  Rolls a user's (or a team's) days up over a 7-day window for reporting.
  Read-only: never mutates state and reflects whatever the store currently
  holds. Rejected days are excluded from totals until released and
  re-submitted; draft, submitted and approved days all count.

WINDOW:
  [week_start, week_start+6]. The report always carries seven per-day rows;
  dates with no record appear as virtual draft days with zero hours.
*/
package timesheet

import (
	"context"

	"github.com/shopspring/decimal"
)

// WeekReport is a single user's week: the policy-filtered total plus the
// seven per-day rows in date order.
type WeekReport struct {
	UserID    UserID
	WeekStart WorkDate
	Total     decimal.Decimal
	Days      []*TimesheetDay
}

// UserWeekSummary is one row of a team summary: total hours plus status
// counts over the window, used to drive manager review queues.
type UserWeekSummary struct {
	UserID       UserID
	Total        decimal.Decimal
	StatusCounts map[DayStatus]int
}

// WeeklyTotal sums effective_total_hours over the seven days starting at
// weekStart, excluding days currently in rejected status.
func (s *Service) WeeklyTotal(ctx context.Context, userID UserID, weekStart WorkDate) (*WeekReport, error) {
	days, err := s.weekDays(ctx, userID, weekStart)
	if err != nil {
		return nil, err
	}
	return &WeekReport{
		UserID:    userID,
		WeekStart: weekStart,
		Total:     sumCountedHours(days),
		Days:      days,
	}, nil
}

// TeamWeeklySummary applies the same exclusion rule per user and adds status
// counts for the window. Dates with no record count as draft, consistent
// with GetDay's virtual-day semantics.
func (s *Service) TeamWeeklySummary(ctx context.Context, userIDs []UserID, weekStart WorkDate) ([]UserWeekSummary, error) {
	summaries := make([]UserWeekSummary, 0, len(userIDs))
	for _, userID := range userIDs {
		days, err := s.weekDays(ctx, userID, weekStart)
		if err != nil {
			return nil, err
		}
		counts := map[DayStatus]int{
			StatusDraft:     0,
			StatusSubmitted: 0,
			StatusApproved:  0,
			StatusRejected:  0,
		}
		for _, day := range days {
			counts[day.Status]++
		}
		summaries = append(summaries, UserWeekSummary{
			UserID:       userID,
			Total:        sumCountedHours(days),
			StatusCounts: counts,
		})
	}
	return summaries, nil
}

// weekDays returns exactly seven rows for the window, substituting virtual
// draft days for dates with no record.
func (s *Service) weekDays(ctx context.Context, userID UserID, weekStart WorkDate) ([]*TimesheetDay, error) {
	weekEnd := weekStart.AddDays(6)
	persisted, err := s.store.ListDaysInRange(ctx, userID, weekStart, weekEnd)
	if err != nil {
		return nil, err
	}

	byDate := make(map[string]*TimesheetDay, len(persisted))
	for _, day := range persisted {
		byDate[day.WorkDate.String()] = day
	}

	days := make([]*TimesheetDay, 0, 7)
	for i := 0; i < 7; i++ {
		date := weekStart.AddDays(i)
		if day, ok := byDate[date.String()]; ok {
			days = append(days, day)
		} else {
			days = append(days, VirtualDay(userID, date))
		}
	}
	return days, nil
}

func sumCountedHours(days []*TimesheetDay) decimal.Decimal {
	total := decimal.Zero
	for _, day := range days {
		if day.Status == StatusRejected {
			continue
		}
		total = total.Add(day.EffectiveTotalHours)
	}
	return total
}
