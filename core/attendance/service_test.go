package attendance

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusconnect/backend/core"
	inmemdoc "github.com/campusconnect/backend/storage/document/inmem"
)

var ctx = context.Background()

func day(s string) time.Time {
	d, err := time.Parse(dayFormat, s)
	if err != nil {
		panic(err)
	}
	return d
}

func setup(t *testing.T) Service {
	t.Helper()
	conf := &core.Config{Attendance: core.AttendanceConfig{WarnThresholdPct: 75}}
	return NewService(conf, inmemdoc.New())
}

func Test_service_Mark(t *testing.T) {
	svc := setup(t)

	err := svc.Mark(ctx, "t1", day("2026-08-24"), nil)
	assert.Error(t, err, "empty marks rejected")

	marks := map[string]bool{"s1": true, "s2": false}
	require.NoError(t, svc.Mark(ctx, "t1", day("2026-08-24"), marks))

	got, err := svc.SheetFor(ctx, "t1", day("2026-08-24"))
	require.NoError(t, err)
	assert.Equal(t, marks, got)

	// marking the same day again overwrites the sheet
	require.NoError(t, svc.Mark(ctx, "t1", day("2026-08-24"), map[string]bool{"s1": false}))
	got, _ = svc.SheetFor(ctx, "t1", day("2026-08-24"))
	assert.Equal(t, map[string]bool{"s1": false}, got)

	// unmarked day reads as an empty sheet
	got, err = svc.SheetFor(ctx, "t1", day("2026-08-25"))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func Test_service_SummaryOf(t *testing.T) {
	svc := setup(t)

	// no recorded days at all
	sum, err := svc.SummaryOf(ctx, "t1", "s1")
	require.NoError(t, err)
	assert.Zero(t, sum.Total)
	assert.False(t, sum.BelowThreshold)

	require.NoError(t, svc.Mark(ctx, "t1", day("2026-08-24"), map[string]bool{"s1": true, "s2": true}))
	require.NoError(t, svc.Mark(ctx, "t1", day("2026-08-25"), map[string]bool{"s1": false, "s2": true}))
	require.NoError(t, svc.Mark(ctx, "t1", day("2026-08-26"), map[string]bool{"s1": true, "s2": true}))
	// s1 not on this sheet at all; must not count against them
	require.NoError(t, svc.Mark(ctx, "t1", day("2026-08-27"), map[string]bool{"s2": true}))

	sum, err = svc.SummaryOf(ctx, "t1", "s1")
	require.NoError(t, err)
	assert.Equal(t, 2, sum.Present)
	assert.Equal(t, 3, sum.Total)
	assert.Equal(t, 66, sum.Pct)
	assert.True(t, sum.BelowThreshold)

	sum, err = svc.SummaryOf(ctx, "t1", "s2")
	require.NoError(t, err)
	assert.Equal(t, 4, sum.Present)
	assert.Equal(t, 100, sum.Pct)
	assert.False(t, sum.BelowThreshold)
}
