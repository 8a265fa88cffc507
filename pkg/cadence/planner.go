// Package cadence computes follow-up timing recommendations for a lead.
//
// The planner is deliberately simple arithmetic: engagement is the mean of
// recency-decayed confidence over a lead's recent memory signals, and the
// follow-up interval shrinks linearly as engagement rises. It holds the
// place a learned cadence model would occupy.
package cadence

import (
	"math"
	"time"
)

// Default planner parameters.
const (
	// DefaultDecayRate is the per-day exponential decay applied to a
	// signal's contribution: weight = e^(-decay_rate * days_old).
	DefaultDecayRate = 0.15

	// DefaultMinIntervalHours is the floor for the follow-up interval.
	DefaultMinIntervalHours = 4

	// DefaultMaxIntervalHours is the ceiling for the follow-up interval
	// (one week).
	DefaultMaxIntervalHours = 168
)

// Signal is one observation contributing to a lead's engagement: typically
// a stored memory's confidence and creation time.
type Signal struct {
	// Confidence is the signal's weight before decay, in [0,1].
	Confidence float64

	// ObservedAt is when the signal was recorded.
	ObservedAt time.Time
}

// Recommendation is the planner's output for a lead.
type Recommendation struct {
	// LeadID identifies the lead the recommendation is for.
	LeadID string `json:"lead_id"`

	// Engagement is the computed engagement score in [0,1].
	Engagement float64 `json:"engagement"`

	// IntervalHours is the recommended gap until the next touch.
	IntervalHours float64 `json:"interval_hours"`

	// NextTouchAt is GeneratedAt plus the interval.
	NextTouchAt time.Time `json:"next_touch_at"`

	// GeneratedAt is when the recommendation was computed.
	GeneratedAt time.Time `json:"generated_at"`
}

// Planner maps engagement signals to a follow-up interval.
type Planner struct {
	decayRate        float64
	minIntervalHours float64
	maxIntervalHours float64
}

// NewPlanner creates a planner with the default parameters.
func NewPlanner() *Planner {
	return NewPlannerWithConfig(DefaultDecayRate, DefaultMinIntervalHours, DefaultMaxIntervalHours)
}

// NewPlannerWithConfig creates a planner with custom parameters.
// Non-positive values fall back to the defaults.
func NewPlannerWithConfig(decayRate, minIntervalHours, maxIntervalHours float64) *Planner {
	if decayRate <= 0 {
		decayRate = DefaultDecayRate
	}
	if minIntervalHours <= 0 {
		minIntervalHours = DefaultMinIntervalHours
	}
	if maxIntervalHours <= minIntervalHours {
		maxIntervalHours = DefaultMaxIntervalHours
	}
	return &Planner{
		decayRate:        decayRate,
		minIntervalHours: minIntervalHours,
		maxIntervalHours: maxIntervalHours,
	}
}

// Engagement computes the mean recency-decayed confidence over the signals:
//
//	engagement = (1/n) * Σ confidence_i * e^(-decay_rate * days_old_i)
//
// No signals means zero engagement. The result is clamped to [0,1].
func (p *Planner) Engagement(now time.Time, signals []Signal) float64 {
	if len(signals) == 0 {
		return 0
	}

	var sum float64
	for _, sig := range signals {
		daysOld := now.Sub(sig.ObservedAt).Hours() / 24.0
		if daysOld < 0 {
			daysOld = 0
		}
		sum += sig.Confidence * math.Exp(-p.decayRate*daysOld)
	}

	engagement := sum / float64(len(signals))
	if engagement > 1.0 {
		return 1.0
	}
	if engagement < 0.0 {
		return 0.0
	}
	return engagement
}

// Interval maps engagement to an interval in hours: full engagement gets
// the minimum interval, zero engagement the maximum.
func (p *Planner) Interval(engagement float64) float64 {
	if engagement > 1.0 {
		engagement = 1.0
	}
	if engagement < 0.0 {
		engagement = 0.0
	}
	return p.minIntervalHours + (p.maxIntervalHours-p.minIntervalHours)*(1.0-engagement)
}

// Recommend computes the full recommendation for a lead.
func (p *Planner) Recommend(leadID string, now time.Time, signals []Signal) *Recommendation {
	engagement := p.Engagement(now, signals)
	interval := p.Interval(engagement)
	return &Recommendation{
		LeadID:        leadID,
		Engagement:    engagement,
		IntervalHours: interval,
		NextTouchAt:   now.Add(time.Duration(interval * float64(time.Hour))),
		GeneratedAt:   now,
	}
}
