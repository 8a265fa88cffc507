package cadence_test

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/sendflowai/sendflow-go/pkg/cadence"
)

func TestEngagement_NoSignals(t *testing.T) {
	planner := cadence.NewPlanner()

	assert.Equal(t, 0.0, planner.Engagement(time.Now(), nil))
}

func TestEngagement_FreshSignal(t *testing.T) {
	planner := cadence.NewPlanner()
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	engagement := planner.Engagement(now, []cadence.Signal{
		{Confidence: 0.9, ObservedAt: now},
	})

	// A zero-age signal carries no decay.
	assert.InDelta(t, 0.9, engagement, 1e-9)
}

func TestEngagement_DecaysWithAge(t *testing.T) {
	planner := cadence.NewPlanner()
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	fresh := planner.Engagement(now, []cadence.Signal{
		{Confidence: 0.9, ObservedAt: now.Add(-24 * time.Hour)},
	})
	stale := planner.Engagement(now, []cadence.Signal{
		{Confidence: 0.9, ObservedAt: now.Add(-10 * 24 * time.Hour)},
	})

	assert.Greater(t, fresh, stale)

	expected := 0.9 * math.Exp(-cadence.DefaultDecayRate*10)
	assert.InDelta(t, expected, stale, 1e-9)
}

func TestEngagement_FutureSignalClampedToZeroAge(t *testing.T) {
	planner := cadence.NewPlanner()
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	engagement := planner.Engagement(now, []cadence.Signal{
		{Confidence: 0.8, ObservedAt: now.Add(time.Hour)},
	})

	assert.InDelta(t, 0.8, engagement, 1e-9)
}

func TestInterval_Bounds(t *testing.T) {
	planner := cadence.NewPlanner()

	assert.InDelta(t, cadence.DefaultMinIntervalHours, planner.Interval(1.0), 1e-9)
	assert.InDelta(t, cadence.DefaultMaxIntervalHours, planner.Interval(0.0), 1e-9)

	mid := planner.Interval(0.5)
	assert.Greater(t, mid, float64(cadence.DefaultMinIntervalHours))
	assert.Less(t, mid, float64(cadence.DefaultMaxIntervalHours))
}

func TestInterval_ClampsEngagement(t *testing.T) {
	planner := cadence.NewPlanner()

	assert.InDelta(t, planner.Interval(1.0), planner.Interval(1.7), 1e-9)
	assert.InDelta(t, planner.Interval(0.0), planner.Interval(-0.3), 1e-9)
}

func TestRecommend(t *testing.T) {
	planner := cadence.NewPlanner()
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	rec := planner.Recommend("lead-1", now, []cadence.Signal{
		{Confidence: 0.9, ObservedAt: now},
		{Confidence: 0.7, ObservedAt: now.Add(-48 * time.Hour)},
	})

	assert.Equal(t, "lead-1", rec.LeadID)
	assert.Equal(t, now, rec.GeneratedAt)
	assert.Greater(t, rec.Engagement, 0.0)
	assert.LessOrEqual(t, rec.Engagement, 1.0)
	assert.Equal(t, now.Add(time.Duration(rec.IntervalHours*float64(time.Hour))), rec.NextTouchAt)
}

func TestNewPlannerWithConfig_FallsBackToDefaults(t *testing.T) {
	planner := cadence.NewPlannerWithConfig(-1, 0, 0)

	assert.InDelta(t, cadence.DefaultMaxIntervalHours, planner.Interval(0.0), 1e-9)
	assert.InDelta(t, cadence.DefaultMinIntervalHours, planner.Interval(1.0), 1e-9)
}
