package visit

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/evcraddock/gatepass/internal/db"
)

func TestSaveAndLoadSnapshot(t *testing.T) {
	repo := testRepo(t)

	sched := time.Date(2025, 3, 1, 10, 0, 0, 0, time.Local)
	in := []*Visit{
		{ID: 2, VisitorName: "Bob", HostName: "carol", Scheduled: At(sched.Add(time.Hour)), Status: Approved},
		{ID: 1, VisitorName: "Ann", EmployeeName: "dave", Scheduled: At(sched), Status: Approved, CheckedIn: true, CheckInTime: At(sched)},
	}
	fetched := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	if err := repo.SaveSnapshot(in, fetched); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, at, err := repo.LoadSnapshot()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d visits, want 2", len(got))
	}
	if got[0].ID != 1 || got[1].ID != 2 {
		t.Errorf("order = [%d %d], want [1 2]", got[0].ID, got[1].ID)
	}
	if !got[0].CheckedIn || !got[0].CheckInTime.Equal(sched) {
		t.Errorf("check-in not preserved: %+v", got[0])
	}
	if got[1].Host() != "carol" {
		t.Errorf("host = %q, want carol", got[1].Host())
	}
	if !at.Equal(fetched) {
		t.Errorf("fetched_at = %v, want %v", at, fetched)
	}
}

func TestSaveSnapshotReplaces(t *testing.T) {
	repo := testRepo(t)
	now := time.Now()

	if err := repo.SaveSnapshot([]*Visit{{ID: 1}, {ID: 2}}, now); err != nil {
		t.Fatalf("first save: %v", err)
	}
	if err := repo.SaveSnapshot([]*Visit{{ID: 3}}, now); err != nil {
		t.Fatalf("second save: %v", err)
	}

	got, _, err := repo.LoadSnapshot()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 1 || got[0].ID != 3 {
		t.Errorf("got %v, want only visit 3", got)
	}
}

func TestLoadSnapshotEmpty(t *testing.T) {
	repo := testRepo(t)

	got, at, err := repo.LoadSnapshot()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got != nil {
		t.Errorf("got %v, want nil", got)
	}
	if !at.IsZero() {
		t.Errorf("fetched_at = %v, want zero", at)
	}
}

func testRepo(t *testing.T) *Repository {
	t.Helper()
	d, err := db.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() {
		if err := d.Close(); err != nil {
			t.Errorf("close db: %v", err)
		}
	})
	return NewRepository(d)
}
