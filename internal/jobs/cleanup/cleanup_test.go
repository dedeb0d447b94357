package cleanup

import (
	"context"
	"testing"
	"time"

	"github.com/mohammadarifzafra/topgrade-api/internal/domain/enums"
)

func TestRunCancelsPendingOlderThanMaxAge(t *testing.T) {
	now := time.Date(2026, time.March, 3, 9, 0, 0, 0, time.UTC)

	ledger := &fakeLedger{
		rows: []pendingRow{
			{Status: enums.PurchaseStatusPending, CreatedAt: now.Add(-45 * time.Minute)},
			{Status: enums.PurchaseStatusPending, CreatedAt: now.Add(-10 * time.Minute)},
			{Status: enums.PurchaseStatusCompleted, CreatedAt: now.Add(-2 * time.Hour)},
		},
	}

	job := New(ledger, 30*time.Minute, nil)
	job.now = func() time.Time { return now }

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("run cleanup job: %v", err)
	}

	if ledger.rows[0].Status != enums.PurchaseStatusCancelled {
		t.Fatalf("expected stale pending purchase to be cancelled, got %s", ledger.rows[0].Status)
	}
	if ledger.rows[1].Status != enums.PurchaseStatusPending {
		t.Fatalf("expected fresh pending purchase to remain, got %s", ledger.rows[1].Status)
	}
	if ledger.rows[2].Status != enums.PurchaseStatusCompleted {
		t.Fatalf("expected completed purchase to be untouched, got %s", ledger.rows[2].Status)
	}
}

func TestRunIsNoOpWithoutLedger(t *testing.T) {
	job := New(nil, time.Minute, nil)
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("run cleanup job without ledger: %v", err)
	}
}

type pendingRow struct {
	Status    enums.PurchaseStatus
	CreatedAt time.Time
}

type fakeLedger struct {
	rows []pendingRow
}

func (f *fakeLedger) CancelStalePending(_ context.Context, cutoff time.Time) (int64, error) {
	var affected int64
	for i := range f.rows {
		row := &f.rows[i]
		if row.Status != enums.PurchaseStatusPending {
			continue
		}
		if row.CreatedAt.Before(cutoff) {
			row.Status = enums.PurchaseStatusCancelled
			affected++
		}
	}
	return affected, nil
}
