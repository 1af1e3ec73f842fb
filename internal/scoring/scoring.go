// Package scoring computes per-issue relevance scores.
//
// The score is additive and recomputed from scratch on every sync:
//   - assigned to the current user: +50
//   - overdue (assigned only): +100, or due within 7 days: +50
//   - updated within the last 3 days (assigned only): +50
//   - description mentions the user's display name: +30
//
// Scoring never fails. Missing or unparsable inputs contribute zero,
// exactly as if the signal were absent.
package scoring

import (
	"math"
	"strings"
	"time"

	"github.com/projectlens/lens/internal/types"
)

const (
	assignedBonus = 50
	overdueBonus  = 100
	dueSoonBonus  = 50
	recentBonus   = 50
	mentionBonus  = 30

	dueSoonDays       = 7
	recentlyUpdatedIn = 3
)

// Due dates arrive either as a plain calendar date or as a full
// timestamp with a literal trailing Z. Anything else is ignored.
var dueDateLayouts = []string{
	"2006-01-02T15:04:05Z",
	"2006-01-02",
}

// Scorer computes relevance scores. The clock is injectable so the
// day-bucket boundaries are testable.
type Scorer struct {
	now func() time.Time
}

// New returns a Scorer using the wall clock.
func New() *Scorer {
	return &Scorer{now: time.Now}
}

// NewWithClock returns a Scorer with a fixed clock source for tests.
func NewWithClock(now func() time.Time) *Scorer {
	return &Scorer{now: now}
}

// Score computes the relevance score of issue for the user me.
// Always returns a non-negative integer and never fails.
func (s *Scorer) Score(issue *types.Issue, me types.User) int {
	score := 0

	if issue.Assignee != nil && issue.Assignee.ID == me.ID {
		score += assignedBonus

		if days, ok := s.daysUntilDue(issue.DueDate); ok {
			switch {
			case days < 0:
				score += overdueBonus
			case days <= dueSoonDays:
				score += dueSoonBonus
			}
		}

		if days, ok := s.daysSinceUpdated(issue.Updated); ok && days <= recentlyUpdatedIn {
			score += recentBonus
		}
	}

	// Mention heuristic: literal substring match on the display name.
	// Known-weak (partial name collisions) but kept deliberately.
	if issue.Description != "" && me.Name != "" && strings.Contains(issue.Description, me.Name) {
		score += mentionBonus
	}

	return score
}

// daysUntilDue parses the due date and returns the whole-day distance
// from today on the local calendar. ok is false when the text matches
// neither accepted layout.
func (s *Scorer) daysUntilDue(raw string) (int, bool) {
	if raw == "" {
		return 0, false
	}
	var due time.Time
	var err error
	for _, layout := range dueDateLayouts {
		due, err = time.Parse(layout, raw)
		if err == nil {
			break
		}
	}
	if err != nil {
		return 0, false
	}

	// Compare calendar days, not instants. Rounding absorbs DST
	// transitions that make a "day" 23 or 25 hours long.
	dy, dm, dd := due.Date()
	ty, tm, td := s.now().Local().Date()
	dueDay := time.Date(dy, dm, dd, 0, 0, 0, 0, time.Local)
	today := time.Date(ty, tm, td, 0, 0, 0, 0, time.Local)
	return int(math.Round(dueDay.Sub(today).Hours() / 24)), true
}

// daysSinceUpdated parses the updated timestamp (RFC 3339 with offset)
// and returns the elapsed whole days, truncated.
func (s *Scorer) daysSinceUpdated(raw string) (int, bool) {
	if raw == "" {
		return 0, false
	}
	updated, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return 0, false
	}
	return int(s.now().UTC().Sub(updated.UTC()).Hours() / 24), true
}
