package timesheet_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vineops/timesheet-engine/timesheet"
)

// monday is the start of the reporting window used throughout.
func monday() timesheet.WorkDate {
	return timesheet.NewWorkDate(2025, time.May, 19)
}

func TestWeeklyTotal_ExcludesRejectedDays(t *testing.T) {
	// GIVEN: One rejected day worth 5 hours and six draft days worth 1 each
	// WHEN: Rolling up the week
	// THEN: Total is 6, not 11

	svc := newTestService()
	ctx := context.Background()

	_, err := svc.UpsertDay(ctx, "u1", monday(), timesheet.UpsertDayInput{DayHours: decPtr(5)})
	require.NoError(t, err)
	day, err := svc.GetDay(ctx, "u1", monday())
	require.NoError(t, err)
	_, err = svc.SubmitDay(ctx, day.ID)
	require.NoError(t, err)
	_, err = svc.RejectDay(ctx, day.ID, "mgr-1", "wrong block")
	require.NoError(t, err)

	for i := 1; i < 7; i++ {
		_, err := svc.UpsertDay(ctx, "u1", monday().AddDays(i), timesheet.UpsertDayInput{DayHours: decPtr(1)})
		require.NoError(t, err)
	}

	report, err := svc.WeeklyTotal(ctx, "u1", monday())
	require.NoError(t, err)

	assert.True(t, report.Total.Equal(dec(6)), "total = %v, want 6", report.Total)
	assert.Len(t, report.Days, 7)
}

func TestWeeklyTotal_EmptyWeek_AllVirtual(t *testing.T) {
	svc := newTestService()

	report, err := svc.WeeklyTotal(context.Background(), "u-nobody", monday())
	require.NoError(t, err)

	assert.True(t, report.Total.IsZero())
	require.Len(t, report.Days, 7)
	for i, day := range report.Days {
		assert.False(t, day.Persisted(), "day %d should be virtual", i)
		assert.Equal(t, timesheet.StatusDraft, day.Status)
		assert.True(t, day.WorkDate.Equal(monday().AddDays(i)))
	}
}

func TestWeeklyTotal_CountsDraftSubmittedAndApproved(t *testing.T) {
	// Policy: only rejected days are excluded. Draft, submitted and
	// approved all count, including a day released back to draft after
	// approval.

	svc := newTestService()
	ctx := context.Background()

	// Monday: draft, 2h declared
	_, err := svc.UpsertDay(ctx, "u1", monday(), timesheet.UpsertDayInput{DayHours: decPtr(2)})
	require.NoError(t, err)

	// Tuesday: submitted, 3h
	submittedDayWithHours(t, svc, "u1", monday().AddDays(1), 3)

	// Wednesday: approved, 4h
	wed := submittedDayWithHours(t, svc, "u1", monday().AddDays(2), 4)
	_, err = svc.ApproveDay(ctx, wed.ID, "mgr-1")
	require.NoError(t, err)

	// Thursday: approved then released (draft awaiting correction), 5h
	thu := submittedDayWithHours(t, svc, "u1", monday().AddDays(3), 5)
	_, err = svc.ApproveDay(ctx, thu.ID, "mgr-1")
	require.NoError(t, err)
	_, err = svc.ReleaseDay(ctx, thu.ID)
	require.NoError(t, err)

	report, err := svc.WeeklyTotal(ctx, "u1", monday())
	require.NoError(t, err)

	assert.True(t, report.Total.Equal(dec(14)), "total = %v, want 14", report.Total)
}

func submittedDayWithHours(t *testing.T, svc *timesheet.Service, user timesheet.UserID, date timesheet.WorkDate, hours float64) *timesheet.TimesheetDay {
	t.Helper()
	ctx := context.Background()

	_, err := svc.UpsertDay(ctx, user, date, timesheet.UpsertDayInput{DayHours: decPtr(hours)})
	require.NoError(t, err)
	day, err := svc.GetDay(ctx, user, date)
	require.NoError(t, err)
	day, err = svc.SubmitDay(ctx, day.ID)
	require.NoError(t, err)
	return day
}

func TestTeamWeeklySummary_StatusCountsAndExclusion(t *testing.T) {
	// GIVEN: Two users - one with a submitted and a rejected day, one idle
	// WHEN: Summarizing the team week
	// THEN: Totals exclude the rejection; counts drive the review queue

	svc := newTestService()
	ctx := context.Background()

	// u1: Monday submitted 8h, Tuesday rejected 5h
	submittedDayWithHours(t, svc, "u1", monday(), 8)
	tue := submittedDayWithHours(t, svc, "u1", monday().AddDays(1), 5)
	_, err := svc.RejectDay(ctx, tue.ID, "mgr-1", "incomplete")
	require.NoError(t, err)

	rows, err := svc.TeamWeeklySummary(ctx, []timesheet.UserID{"u1", "u2"}, monday())
	require.NoError(t, err)
	require.Len(t, rows, 2)

	u1 := rows[0]
	assert.Equal(t, timesheet.UserID("u1"), u1.UserID)
	assert.True(t, u1.Total.Equal(dec(8)), "u1 total = %v, want 8", u1.Total)
	assert.Equal(t, 1, u1.StatusCounts[timesheet.StatusSubmitted])
	assert.Equal(t, 1, u1.StatusCounts[timesheet.StatusRejected])
	assert.Equal(t, 5, u1.StatusCounts[timesheet.StatusDraft], "remaining window days are virtual drafts")
	assert.Equal(t, 0, u1.StatusCounts[timesheet.StatusApproved])

	u2 := rows[1]
	assert.True(t, u2.Total.IsZero())
	assert.Equal(t, 7, u2.StatusCounts[timesheet.StatusDraft])
}
