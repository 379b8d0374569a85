package scheduler_test

import (
	"testing"
	"time"

	qt "github.com/frankban/quicktest"

	"github.com/crosspilot/crosspilot/internal/scheduler"
)

// Monday, fixed so every run sees the same seven-day window.
var refTime = time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)

func TestBestTimesRankingAndDeterminism(t *testing.T) {
	c := qt.New(t)

	s := scheduler.NewSmartScheduler()

	slots := s.BestTimes("instagram", refTime, 5)
	c.Assert(len(slots) > 0, qt.IsTrue)
	c.Assert(len(slots) <= 5, qt.IsTrue)

	for i, slot := range slots {
		c.Assert(slot.Time.After(refTime), qt.IsTrue)
		c.Assert(slot.Platform, qt.Equals, "instagram")
		if i > 0 {
			prev := slots[i-1]
			ordered := prev.Score > slot.Score ||
				(prev.Score == slot.Score && prev.Time.Before(slot.Time))
			c.Assert(ordered, qt.IsTrue)
		}
	}

	// Same inputs, same output.
	again := s.BestTimes("instagram", refTime, 5)
	c.Assert(again, qt.DeepEquals, slots)
}

func TestBestTimesEngagementLevels(t *testing.T) {
	c := qt.New(t)

	s := scheduler.NewSmartScheduler()

	for _, platform := range []string{"instagram", "x", "bluesky", "linkedin"} {
		for _, slot := range s.BestTimes(platform, refTime, 20) {
			var want string
			switch {
			case slot.Score >= 90:
				want = scheduler.LevelPeak
			case slot.Score >= 75:
				want = scheduler.LevelHigh
			case slot.Score >= 50:
				want = scheduler.LevelModerate
			default:
				want = scheduler.LevelLow
			}
			c.Assert(slot.EngagementLevel, qt.Equals, want)
			c.Assert(slot.Reason, qt.Not(qt.Equals), "")
		}
	}
}

func TestBestTimesUnknownPlatform(t *testing.T) {
	c := qt.New(t)

	s := scheduler.NewSmartScheduler()
	c.Assert(s.BestTimes("friendster", refTime, 5), qt.HasLen, 0)
}

func TestSuggestionsForPlatforms(t *testing.T) {
	c := qt.New(t)

	s := scheduler.NewSmartScheduler()

	suggestions, err := s.SuggestionsForPlatforms([]string{"instagram", "x"}, refTime)
	c.Assert(err, qt.IsNil)
	c.Assert(suggestions, qt.HasLen, 2)

	ig := suggestions["instagram"]
	c.Assert(ig.Platform, qt.Equals, "instagram")
	c.Assert(ig.BestTime.Time.After(refTime), qt.IsTrue)
	c.Assert(len(ig.AlternativeTimes) <= 4, qt.IsTrue)
	for _, alt := range ig.AlternativeTimes {
		c.Assert(alt.Score <= ig.BestTime.Score, qt.IsTrue)
	}
}

func TestSuggestionsRequirePlatforms(t *testing.T) {
	c := qt.New(t)

	s := scheduler.NewSmartScheduler()
	_, err := s.SuggestionsForPlatforms(nil, refTime)
	c.Assert(err, qt.ErrorIs, scheduler.ErrNoPlatforms)

	_, err = s.OptimalSingleTime(nil, refTime)
	c.Assert(err, qt.ErrorIs, scheduler.ErrNoPlatforms)
}

func TestSuggestionsGenericFallback(t *testing.T) {
	c := qt.New(t)

	s := scheduler.NewSmartScheduler()

	suggestions, err := s.SuggestionsForPlatforms([]string{"friendster"}, refTime)
	c.Assert(err, qt.IsNil)

	fallback := suggestions["friendster"]
	c.Assert(fallback.BestTime.Time.Hour(), qt.Equals, 10)
	c.Assert(fallback.BestTime.Score, qt.Equals, 70.0)
	c.Assert(fallback.AlternativeTimes, qt.HasLen, 1)
	c.Assert(fallback.AlternativeTimes[0].Time.Hour(), qt.Equals, 19)
	c.Assert(fallback.AlternativeTimes[0].Score, qt.Equals, 80.0)

	tomorrow := refTime.AddDate(0, 0, 1)
	c.Assert(fallback.BestTime.Time.Day(), qt.Equals, tomorrow.Day())
}

func TestOptimalSingleTime(t *testing.T) {
	c := qt.New(t)

	s := scheduler.NewSmartScheduler()

	optimal, err := s.OptimalSingleTime([]string{"instagram", "facebook"}, refTime)
	c.Assert(err, qt.IsNil)
	c.Assert(optimal.Degenerate, qt.IsFalse)
	c.Assert(optimal.Slot.Time.After(refTime), qt.IsTrue)
	c.Assert(optimal.Slot.Score > 0, qt.IsTrue)

	hour := optimal.Slot.Time.Hour()
	c.Assert(hour >= 6 && hour < 24, qt.IsTrue)

	// Same inputs, same winning instant.
	again, err := s.OptimalSingleTime([]string{"instagram", "facebook"}, refTime)
	c.Assert(err, qt.IsNil)
	c.Assert(again.Slot.Time.Equal(optimal.Slot.Time), qt.IsTrue)
}

func TestOptimalSingleTimeAveragesMissingAsZero(t *testing.T) {
	c := qt.New(t)

	s := scheduler.NewSmartScheduler()

	solo, err := s.OptimalSingleTime([]string{"instagram"}, refTime)
	c.Assert(err, qt.IsNil)

	// Adding a platform with no data at any slot halves the mean.
	mixed, err := s.OptimalSingleTime([]string{"instagram", "friendster"}, refTime)
	c.Assert(err, qt.IsNil)
	c.Assert(mixed.Slot.Score, qt.Equals, solo.Slot.Score/2)
}

func TestOptimalSingleTimeDegenerate(t *testing.T) {
	c := qt.New(t)

	s := scheduler.NewSmartScheduler()

	optimal, err := s.OptimalSingleTime([]string{"friendster", "orkut"}, refTime)
	c.Assert(err, qt.IsNil)
	c.Assert(optimal.Degenerate, qt.IsTrue)
	c.Assert(optimal.PerPlatform, qt.HasLen, 2)
	c.Assert(optimal.Platforms, qt.DeepEquals, []string{"friendster", "orkut"})

	// The headline slot is the highest-scoring per-platform best; for
	// unknown platforms both fall back to the generic morning slot.
	for _, slot := range optimal.PerPlatform {
		c.Assert(optimal.Slot.Score >= slot.Score, qt.IsTrue)
	}
	c.Assert(optimal.Slot.Score, qt.Equals, 70.0)
}
