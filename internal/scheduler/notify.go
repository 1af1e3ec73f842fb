package scheduler

import (
	"fmt"
	"time"

	"github.com/projectlens/lens/internal/types"
)

// ImportanceThreshold is the relevance score at or above which an
// issue counts as important.
const ImportanceThreshold = 80

// ShouldNotify reports whether an issue's score change warrants a
// notification. previous is nil when the issue has not been seen
// before. Only an upward crossing notifies: an issue that stays at or
// above the threshold is silent until it first drops below and then
// crosses again.
func ShouldNotify(previous *int, score int) bool {
	if score < ImportanceThreshold {
		return false
	}
	return previous == nil || *previous < ImportanceThreshold
}

// Presenter is the outbound port to whatever shell presents sync
// results (tray tooltip, desktop notifications, console). Calls are
// fire-and-forget: implementations must swallow their own failures,
// which never affect the sync round.
type Presenter interface {
	// SetTooltip replaces the aggregate status line.
	SetTooltip(text string)
	// Notify raises a one-shot notification.
	Notify(title, body string)
	// Refreshed signals that the store changed and views should
	// re-query it.
	Refreshed(at time.Time)
}

// NopPresenter discards all presentation events.
type NopPresenter struct{}

func (NopPresenter) SetTooltip(string)     {}
func (NopPresenter) Notify(string, string) {}
func (NopPresenter) Refreshed(time.Time)   {}

// Presentation strings are localized with the same two-language switch
// the settings table drives ("ja" is the default).

func tooltipText(lang string, importantCount int) string {
	if importantCount == 0 {
		return "ProjectLens"
	}
	if lang == "en" {
		return fmt.Sprintf("ProjectLens: %d important tickets", importantCount)
	}
	return fmt.Sprintf("ProjectLens: 重要なチケットが %d 件あります", importantCount)
}

func notificationText(lang string, newlyImportant []types.Issue) (title, body string) {
	if lang == "en" {
		title = "ProjectLens Alert"
		if len(newlyImportant) == 1 {
			body = fmt.Sprintf("New high priority issue: %s (%d)",
				newlyImportant[0].Summary, newlyImportant[0].RelevanceScore)
		} else {
			body = fmt.Sprintf("%d new high priority issues found.", len(newlyImportant))
		}
		return title, body
	}
	title = "ProjectLens 通知"
	if len(newlyImportant) == 1 {
		body = fmt.Sprintf("新しい重要な課題: %s (%d)",
			newlyImportant[0].Summary, newlyImportant[0].RelevanceScore)
	} else {
		body = fmt.Sprintf("%d件の新しい重要な課題が見つかりました。", len(newlyImportant))
	}
	return title, body
}
