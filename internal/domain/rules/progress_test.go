package rules

import (
	"math/rand"
	"testing"
	"time"

	"github.com/mohammadarifzafra/topgrade-api/internal/domain/enums"
	"github.com/mohammadarifzafra/topgrade-api/internal/domain/model"
)

func TestApplyReportFreshTopicFullyWatched(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	prev := model.TopicProgress{
		Status:       enums.ProgressStatusNotStarted,
		TotalSeconds: DefaultStandardTopicSeconds,
	}

	total := int64(1000)
	next := ApplyReport(prev, 1000, &total, now)

	if next.CompletionPercentage != 100.0 {
		t.Fatalf("unexpected completion percentage: got %v want 100", next.CompletionPercentage)
	}
	if next.Status != enums.ProgressStatusCompleted {
		t.Fatalf("unexpected status: got %q want %q", next.Status, enums.ProgressStatusCompleted)
	}
	if next.StartedAt == nil || !next.StartedAt.Equal(now) {
		t.Fatalf("started_at not set to now: %v", next.StartedAt)
	}
	if next.CompletedAt == nil || !next.CompletedAt.Equal(now) {
		t.Fatalf("completed_at not set to now: %v", next.CompletedAt)
	}
	if !next.LastWatchedAt.Equal(now) {
		t.Fatalf("last_watched_at not refreshed: %v", next.LastWatchedAt)
	}
}

func TestApplyReportCrossesThresholdAtNinetyPercent(t *testing.T) {
	now := time.Now().UTC()
	total := int64(1000)

	below := ApplyReport(model.TopicProgress{}, 899, &total, now)
	if below.Status != enums.ProgressStatusInProgress {
		t.Fatalf("expected in_progress below threshold, got %q", below.Status)
	}
	if below.CompletedAt != nil {
		t.Fatalf("completed_at must stay unset below threshold")
	}

	at := ApplyReport(below, 900, nil, now.Add(time.Minute))
	if at.Status != enums.ProgressStatusCompleted {
		t.Fatalf("expected completed at threshold, got %q", at.Status)
	}
	if at.StartedAt == nil || !at.StartedAt.Equal(now) {
		t.Fatalf("started_at must keep its original value, got %v", at.StartedAt)
	}
}

func TestApplyReportUnknownTotalYieldsZeroPercent(t *testing.T) {
	now := time.Now().UTC()

	next := ApplyReport(model.TopicProgress{}, 500, nil, now)

	if next.CompletionPercentage != 0 {
		t.Fatalf("expected zero percentage without a total, got %v", next.CompletionPercentage)
	}
	if next.Status != enums.ProgressStatusNotStarted {
		t.Fatalf("expected not_started without a total, got %q", next.Status)
	}
	if !next.LastWatchedAt.Equal(now) {
		t.Fatalf("last_watched_at must refresh on every report")
	}
}

func TestApplyReportOverwriteNeverRegressesStatus(t *testing.T) {
	now := time.Now().UTC()
	total := int64(1000)

	completed := ApplyReport(model.TopicProgress{}, 950, &total, now)
	if completed.Status != enums.ProgressStatusCompleted {
		t.Fatalf("setup: expected completed, got %q", completed.Status)
	}

	// Seeking back to the start drops the percentage but not the status.
	rewound := ApplyReport(completed, 0, nil, now.Add(time.Minute))
	if rewound.WatchedSeconds != 0 {
		t.Fatalf("watched seconds must overwrite, got %d", rewound.WatchedSeconds)
	}
	if rewound.CompletionPercentage != 0 {
		t.Fatalf("percentage must follow the overwrite, got %v", rewound.CompletionPercentage)
	}
	if rewound.Status != enums.ProgressStatusCompleted {
		t.Fatalf("status regressed to %q", rewound.Status)
	}
	if rewound.CompletedAt == nil || !rewound.CompletedAt.Equal(*completed.CompletedAt) {
		t.Fatalf("completed_at must keep its original value")
	}
}

func TestApplyReportCapsPercentageAtHundred(t *testing.T) {
	total := int64(600)
	next := ApplyReport(model.TopicProgress{}, 1200, &total, time.Now().UTC())
	if next.CompletionPercentage != 100 {
		t.Fatalf("expected capped percentage, got %v", next.CompletionPercentage)
	}
}

func TestDefaultTopicSecondsPerKind(t *testing.T) {
	if got := DefaultTopicSeconds(enums.CourseKindStandard); got != 1800 {
		t.Fatalf("standard default: got %d want 1800", got)
	}
	if got := DefaultTopicSeconds(enums.CourseKindAdvanced); got != 2700 {
		t.Fatalf("advanced default: got %d want 2700", got)
	}
}

func TestRecountFourTopicsHalfCompleted(t *testing.T) {
	now := time.Now().UTC()
	topics := []model.TopicProgress{
		{Status: enums.ProgressStatusCompleted, WatchedSeconds: 1800},
		{Status: enums.ProgressStatusCompleted, WatchedSeconds: 1700},
		{Status: enums.ProgressStatusInProgress, WatchedSeconds: 400},
		{Status: enums.ProgressStatusNotStarted},
	}

	agg := Recount(model.CourseProgress{PurchaseID: 11, UserID: 7}, topics, now)

	if agg.CompletionPercentage != 50.0 {
		t.Fatalf("unexpected completion percentage: got %v want 50", agg.CompletionPercentage)
	}
	if agg.IsCompleted {
		t.Fatalf("course must not be completed at 50%%")
	}
	if agg.TotalTopics != 4 || agg.CompletedTopics != 2 || agg.InProgressTopics != 1 {
		t.Fatalf("unexpected counts: %+v", agg)
	}
	if agg.TotalWatchSeconds != 3900 {
		t.Fatalf("unexpected total watch seconds: got %d want 3900", agg.TotalWatchSeconds)
	}
	if agg.StartedAt == nil {
		t.Fatalf("started_at must be set once completion is above zero")
	}
	if !agg.LastActivityAt.Equal(now) {
		t.Fatalf("last_activity_at must always refresh")
	}
}

func TestRecountEmptyCourse(t *testing.T) {
	agg := Recount(model.CourseProgress{PurchaseID: 3}, nil, time.Now().UTC())
	if agg.CompletionPercentage != 0 || agg.TotalTopics != 0 {
		t.Fatalf("empty recount must be all zeroes: %+v", agg)
	}
	if agg.StartedAt != nil || agg.IsCompleted {
		t.Fatalf("empty recount must not set latches: %+v", agg)
	}
}

func TestRecountIsOrderIndependentAndIdempotent(t *testing.T) {
	now := time.Now().UTC()
	topics := []model.TopicProgress{
		{Status: enums.ProgressStatusCompleted, WatchedSeconds: 100},
		{Status: enums.ProgressStatusInProgress, WatchedSeconds: 250},
		{Status: enums.ProgressStatusCompleted, WatchedSeconds: 90},
		{Status: enums.ProgressStatusNotStarted},
		{Status: enums.ProgressStatusInProgress, WatchedSeconds: 60},
	}

	base := model.CourseProgress{PurchaseID: 9, UserID: 2}
	want := Recount(base, topics, now)

	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 20; i++ {
		shuffled := append([]model.TopicProgress(nil), topics...)
		rng.Shuffle(len(shuffled), func(a, b int) {
			shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
		})

		got := Recount(base, shuffled, now)
		if got.CompletionPercentage != want.CompletionPercentage ||
			got.CompletedTopics != want.CompletedTopics ||
			got.InProgressTopics != want.InProgressTopics ||
			got.TotalWatchSeconds != want.TotalWatchSeconds {
			t.Fatalf("recount depends on topic order: got %+v want %+v", got, want)
		}
	}

	again := Recount(want, topics, now.Add(time.Second))
	if again.CompletionPercentage != want.CompletionPercentage ||
		again.CompletedTopics != want.CompletedTopics ||
		again.TotalWatchSeconds != want.TotalWatchSeconds {
		t.Fatalf("recount is not idempotent: got %+v want %+v", again, want)
	}
}

func TestRecountCompletionLatchNeverReverts(t *testing.T) {
	now := time.Now().UTC()
	all := []model.TopicProgress{
		{Status: enums.ProgressStatusCompleted, WatchedSeconds: 900},
		{Status: enums.ProgressStatusCompleted, WatchedSeconds: 950},
	}

	done := Recount(model.CourseProgress{PurchaseID: 5}, all, now)
	if !done.IsCompleted || done.CompletedAt == nil {
		t.Fatalf("expected completed aggregate: %+v", done)
	}

	// A new topic appearing in the syllabus drops the percentage, but the
	// completion latch holds.
	grown := append(all, model.TopicProgress{Status: enums.ProgressStatusNotStarted})
	after := Recount(done, grown, now.Add(time.Hour))
	if after.CompletionPercentage >= 100 {
		t.Fatalf("percentage should drop below 100, got %v", after.CompletionPercentage)
	}
	if !after.IsCompleted {
		t.Fatalf("is_completed latch reverted")
	}
	if !after.CompletedAt.Equal(*done.CompletedAt) {
		t.Fatalf("completed_at changed after latch: %v", after.CompletedAt)
	}
}
