package rules

import (
	"time"

	"github.com/mohammadarifzafra/topgrade-api/internal/domain/enums"
	"github.com/mohammadarifzafra/topgrade-api/internal/domain/model"
)

// CompletionThresholdPercent marks a topic completed before the literal end
// of the video, so outros and credits do not hold the status back.
const CompletionThresholdPercent = 90.0

// Platform default lesson lengths, used until a real duration is reported.
const (
	DefaultStandardTopicSeconds int64 = 1800
	DefaultAdvancedTopicSeconds int64 = 2700
)

func DefaultTopicSeconds(kind enums.CourseKind) int64 {
	if kind == enums.CourseKindAdvanced {
		return DefaultAdvancedTopicSeconds
	}
	return DefaultStandardTopicSeconds
}

// CompletionPercentage is min(100, watched/total*100), or 0 while the total
// duration is unknown.
func CompletionPercentage(watchedSeconds, totalSeconds int64) float64 {
	if totalSeconds <= 0 {
		return 0
	}
	pct := float64(watchedSeconds) / float64(totalSeconds) * 100
	if pct > 100 {
		return 100
	}
	if pct < 0 {
		return 0
	}
	return pct
}

// ApplyReport folds a watch-time report into a topic progress row.
//
// Watched seconds overwrite the stored value unconditionally (seek-position
// semantics): seeking backward lowers the recorded percentage. Status is
// one-directional regardless, so a topic that once crossed the completion
// threshold stays completed even when the percentage later drops.
func ApplyReport(prev model.TopicProgress, watchedSeconds int64, totalSeconds *int64, now time.Time) model.TopicProgress {
	next := prev

	if totalSeconds != nil && *totalSeconds > 0 {
		next.TotalSeconds = *totalSeconds
	}
	next.WatchedSeconds = watchedSeconds
	next.CompletionPercentage = CompletionPercentage(next.WatchedSeconds, next.TotalSeconds)

	switch {
	case next.CompletionPercentage >= CompletionThresholdPercent:
		next.Status = enums.ProgressStatusCompleted
		if next.StartedAt == nil {
			startedAt := now
			next.StartedAt = &startedAt
		}
		if next.CompletedAt == nil {
			completedAt := now
			next.CompletedAt = &completedAt
		}
	case next.CompletionPercentage > 0:
		if !next.Status.AtLeast(enums.ProgressStatusInProgress) {
			next.Status = enums.ProgressStatusInProgress
		}
		if next.StartedAt == nil {
			startedAt := now
			next.StartedAt = &startedAt
		}
	}

	next.LastWatchedAt = now
	return next
}

// Recount rebuilds the course aggregate from scratch over the purchase's
// topic rows. base is the previous aggregate row when one exists (its
// latched timestamps and is_completed flag survive), or a fresh row
// carrying only the purchase identity. The full recount makes the result
// independent of the order in which topic updates arrived.
func Recount(base model.CourseProgress, topics []model.TopicProgress, now time.Time) model.CourseProgress {
	agg := base
	agg.TotalTopics = len(topics)
	agg.CompletedTopics = 0
	agg.InProgressTopics = 0
	agg.TotalWatchSeconds = 0

	for _, topic := range topics {
		switch topic.Status {
		case enums.ProgressStatusCompleted:
			agg.CompletedTopics++
		case enums.ProgressStatusInProgress:
			agg.InProgressTopics++
		}
		agg.TotalWatchSeconds += topic.WatchedSeconds
	}

	if agg.TotalTopics > 0 {
		agg.CompletionPercentage = float64(agg.CompletedTopics) / float64(agg.TotalTopics) * 100
	} else {
		agg.CompletionPercentage = 0
	}

	if agg.CompletionPercentage > 0 && agg.StartedAt == nil {
		startedAt := now
		agg.StartedAt = &startedAt
	}
	if agg.CompletionPercentage >= 100 {
		agg.IsCompleted = true
		if agg.CompletedAt == nil {
			completedAt := now
			agg.CompletedAt = &completedAt
		}
	}

	agg.LastActivityAt = now
	return agg
}
