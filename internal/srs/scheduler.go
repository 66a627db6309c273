package srs

import (
	"fmt"

	"github.com/example/tapspeak/pkg/models"
)

// IntervalTable maps a stage to the number of days until the next review.
// Index 0 is stage 0 (due the same day). Tables must be monotonically
// non-decreasing in stage.
type IntervalTable [models.MaxStage + 1]int

var (
	// StandardIntervals is the default schedule.
	StandardIntervals = IntervalTable{0, 1, 3, 7, 14, 30, 365}

	// ExtendedIntervals is the older, slower-start schedule. Kept as a
	// selectable variant for deployments that enrolled words under it.
	ExtendedIntervals = IntervalTable{0, 3, 7, 14, 30, 90, 365}
)

// pointsPerCorrect is the number of correct reviews that earn one point.
const pointsPerCorrect = 10

// Scheduler reschedules words after review outcomes using a fixed
// stage-interval table. Stage is a pure scheduling variable; callers must
// never surface it as a user-facing label.
type Scheduler struct {
	intervals IntervalTable
}

// New creates a Scheduler, rejecting tables whose intervals decrease with
// stage.
func New(intervals IntervalTable) (*Scheduler, error) {
	for s := 1; s < len(intervals); s++ {
		if intervals[s] < intervals[s-1] {
			return nil, fmt.Errorf("interval table not monotonic at stage %d: %d < %d", s, intervals[s], intervals[s-1])
		}
	}
	if intervals[0] < 0 {
		return nil, fmt.Errorf("interval table has negative stage 0 interval %d", intervals[0])
	}
	return &Scheduler{intervals: intervals}, nil
}

// NextDue computes the due day for a word at the given stage reviewed on
// base day.
func (s *Scheduler) NextDue(stage int, base models.Day) models.Day {
	st := stage
	if st < 0 {
		st = 0
	}
	if st > models.MaxStage {
		st = models.MaxStage
	}
	return base.AddDays(s.intervals[st])
}

// ApplyOutcome reschedules progress after one review on the given day and
// returns the points gained (0 or more, from the 1-per-10-correct rule).
// Both progress and user are updated in place; the caller owns persistence.
//
// A record that is referenced but not enrolled is treated as enrolled today
// before the outcome applies, so a review action is never silently dropped.
func (s *Scheduler) ApplyOutcome(user *models.UserState, progress *models.WordProgress, correct bool, today models.Day) int {
	if !progress.Enrolled {
		progress.Enrolled = true
		if progress.Due.IsZero() {
			progress.Due = today
		}
	}

	if !correct {
		// Step down one stage and lock the word due for the rest of the day
		// so it repeats until answered correctly.
		if progress.Stage > 0 {
			progress.Stage--
		}
		progress.Due = today
		progress.LoopUntil = today
		return 0
	}

	if progress.Stage < models.MaxStage {
		progress.Stage++
	}
	if progress.LoopUntil == today {
		progress.LoopUntil = ""
	}
	progress.Due = s.NextDue(progress.Stage, today)

	user.ReviewCorrectSinceLastPoint++
	gained := user.ReviewCorrectSinceLastPoint / pointsPerCorrect
	if gained > 0 {
		user.ReviewCorrectSinceLastPoint %= pointsPerCorrect
		if user.Points+gained > models.PointsCap {
			gained = models.PointsCap - user.Points
		}
		user.Points += gained
	}
	return gained
}

// IsDue reports whether a word is eligible for review on the given day:
// enrolled, and either inside its same-day retry loop or at/past its due
// day. Comparison is at calendar-day granularity.
func IsDue(progress *models.WordProgress, today models.Day) bool {
	if progress == nil || !progress.Enrolled {
		return false
	}
	if progress.LoopUntil == today {
		return true
	}
	return progress.Due.OnOrBefore(today)
}
