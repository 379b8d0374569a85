package scheduler

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

// Engagement levels attached to suggested slots.
const (
	LevelPeak     = "peak"
	LevelHigh     = "high"
	LevelModerate = "moderate"
	LevelLow      = "low"
)

const (
	horizonDays        = 7
	defaultSuggestions = 5
)

var ErrNoPlatforms = errors.New("at least one platform is required")

// TimeSlot is a single suggested posting time.
type TimeSlot struct {
	Time            time.Time `json:"datetime"`
	Platform        string    `json:"platform"`
	EngagementLevel string    `json:"engagement_level"`
	Score           float64   `json:"score"`
	Reason          string    `json:"reason"`
}

// Suggestion bundles the best time for one platform with alternatives and
// narrative insights.
type Suggestion struct {
	Platform         string     `json:"platform"`
	BestTime         TimeSlot   `json:"best_time"`
	AlternativeTimes []TimeSlot `json:"alternative_times"`
	Insights         []string   `json:"insights"`
}

// OptimalTime is the single cross-platform recommendation. When the
// requested platforms share no scored slots at all, Degenerate is set and
// PerPlatform carries each platform's individual best time instead.
type OptimalTime struct {
	Slot        TimeSlot   `json:"slot"`
	Platforms   []string   `json:"platforms"`
	Degenerate  bool       `json:"degenerate"`
	PerPlatform []TimeSlot `json:"per_platform,omitempty"`
}

// SmartScheduler turns the static engagement pattern table into ranked
// posting-time suggestions. It is pure computation over the table and the
// caller-supplied reference time; construct one per process at boot.
type SmartScheduler struct{}

func NewSmartScheduler() *SmartScheduler {
	return &SmartScheduler{}
}

func levelFor(score float64) string {
	switch {
	case score >= 90:
		return LevelPeak
	case score >= 75:
		return LevelHigh
	case score >= 50:
		return LevelModerate
	default:
		return LevelLow
	}
}

func reasonFor(platform string, day time.Weekday, hour int, score float64) string {
	switch levelFor(score) {
	case LevelPeak:
		return fmt.Sprintf("Peak engagement time for %s on %ss", platform, day)
	case LevelHigh:
		return fmt.Sprintf("High engagement period - %s %d:00 is popular", day, hour)
	case LevelModerate:
		return "Moderate engagement - good for consistent posting"
	default:
		return "Lower engagement period - consider for less time-sensitive content"
	}
}

// BestTimes returns up to count candidate instants for one platform over
// the next seven days, ranked by descending score. Ties rank the earlier
// instant first, so the output is deterministic for a given from time.
// Platforms without pattern data yield an empty slice.
func (s *SmartScheduler) BestTimes(platform string, from time.Time, count int) []TimeSlot {
	if count <= 0 {
		count = defaultSuggestions
	}

	patterns, ok := engagementPatterns[platform]
	if !ok {
		return nil
	}

	var slots []TimeSlot
	for offset := 0; offset < horizonDays; offset++ {
		day := from.AddDate(0, 0, offset)
		for hour, score := range patterns[day.Weekday()] {
			slotTime := time.Date(day.Year(), day.Month(), day.Day(), hour, 0, 0, 0, from.Location())
			if !slotTime.After(from) {
				continue
			}
			slots = append(slots, TimeSlot{
				Time:            slotTime,
				Platform:        platform,
				EngagementLevel: levelFor(float64(score)),
				Score:           float64(score),
				Reason:          reasonFor(platform, day.Weekday(), hour, float64(score)),
			})
		}
	}

	sort.Slice(slots, func(i, j int) bool {
		if slots[i].Score != slots[j].Score {
			return slots[i].Score > slots[j].Score
		}
		return slots[i].Time.Before(slots[j].Time)
	})

	if len(slots) > count {
		slots = slots[:count]
	}
	return slots
}

// SuggestionsForPlatforms builds a per-platform suggestion bundle. Platforms
// missing from the pattern table get the generic fallback rather than an
// error.
func (s *SmartScheduler) SuggestionsForPlatforms(platforms []string, from time.Time) (map[string]Suggestion, error) {
	if len(platforms) == 0 {
		return nil, ErrNoPlatforms
	}

	suggestions := make(map[string]Suggestion, len(platforms))
	for _, platform := range platforms {
		slots := s.BestTimes(platform, from, defaultSuggestions)
		if len(slots) == 0 {
			suggestions[platform] = s.genericSuggestion(platform, from)
			continue
		}
		suggestions[platform] = Suggestion{
			Platform:         platform,
			BestTime:         slots[0],
			AlternativeTimes: slots[1:],
			Insights:         platformInsights[platform],
		}
	}
	return suggestions, nil
}

// OptimalSingleTime reduces several platforms' patterns to one cross-posting
// instant. Each candidate slot (hours 6-23 over the next seven days) scores
// the mean of per-platform scores, counting 0 for a platform with no data at
// that slot; the earliest instant wins ties. Platforms scoring >=75 at the
// winning slot are listed as well served.
func (s *SmartScheduler) OptimalSingleTime(platforms []string, from time.Time) (*OptimalTime, error) {
	if len(platforms) == 0 {
		return nil, ErrNoPlatforms
	}

	var (
		bestTime  time.Time
		bestScore float64
		found     bool
	)

	for offset := 0; offset < horizonDays; offset++ {
		day := from.AddDate(0, 0, offset)
		for hour := 6; hour < 24; hour++ {
			slotTime := time.Date(day.Year(), day.Month(), day.Day(), hour, 0, 0, 0, from.Location())
			if !slotTime.After(from) {
				continue
			}

			var sum float64
			for _, platform := range platforms {
				sum += float64(engagementPatterns[platform][day.Weekday()][hour])
			}
			avg := sum / float64(len(platforms))

			// Chronological iteration makes strictly-greater the
			// earlier-instant tie-break.
			if !found || avg > bestScore {
				found = true
				bestScore = avg
				bestTime = slotTime
			}
		}
	}

	if !found || bestScore == 0 {
		return s.degenerateOptimal(platforms, from), nil
	}

	var served []string
	for _, platform := range platforms {
		if float64(engagementPatterns[platform][bestTime.Weekday()][bestTime.Hour()]) >= 75 {
			served = append(served, platform)
		}
	}

	return &OptimalTime{
		Slot: TimeSlot{
			Time:            bestTime,
			Platform:        platforms[0],
			EngagementLevel: levelFor(bestScore),
			Score:           bestScore,
			Reason:          fmt.Sprintf("Optimal time across %d platforms", len(platforms)),
		},
		Platforms: served,
	}, nil
}

// degenerateOptimal handles platform sets with no shared scored slots: each
// platform keeps its own best time and the union is returned flagged as
// degenerate, with the highest-scoring individual slot as the headline.
func (s *SmartScheduler) degenerateOptimal(platforms []string, from time.Time) *OptimalTime {
	perPlatform := make([]TimeSlot, 0, len(platforms))
	for _, platform := range platforms {
		slots := s.BestTimes(platform, from, 1)
		if len(slots) == 0 {
			slots = []TimeSlot{s.genericSuggestion(platform, from).BestTime}
		}
		perPlatform = append(perPlatform, slots[0])
	}

	headline := perPlatform[0]
	for _, slot := range perPlatform[1:] {
		if slot.Score > headline.Score {
			headline = slot
		}
	}

	return &OptimalTime{
		Slot:        headline,
		Platforms:   platforms,
		Degenerate:  true,
		PerPlatform: perPlatform,
	}
}

// genericSuggestion is the fallback for platforms without pattern data:
// reasonably good next-day morning and evening slots.
func (s *SmartScheduler) genericSuggestion(platform string, from time.Time) Suggestion {
	tomorrow := from.AddDate(0, 0, 1)
	morning := time.Date(tomorrow.Year(), tomorrow.Month(), tomorrow.Day(), 10, 0, 0, 0, from.Location())
	evening := time.Date(tomorrow.Year(), tomorrow.Month(), tomorrow.Day(), 19, 0, 0, 0, from.Location())

	return Suggestion{
		Platform: platform,
		BestTime: TimeSlot{
			Time:            morning,
			Platform:        platform,
			EngagementLevel: LevelModerate,
			Score:           70,
			Reason:          "Morning posts typically perform well",
		},
		AlternativeTimes: []TimeSlot{{
			Time:            evening,
			Platform:        platform,
			EngagementLevel: LevelHigh,
			Score:           80,
			Reason:          "Evening hours see increased engagement",
		}},
		Insights: []string{"Consider experimenting with different times to find your optimal schedule"},
	}
}
