package logstore

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"puffin/internal/blob"
	"puffin/internal/model"
)

// newTestStore returns a loaded store over a file blob store, with the
// clock pinned to the given instant.
func newTestStore(t *testing.T, now time.Time) (*Store, *blob.FileStore) {
	t.Helper()
	fs := blob.NewFileStore(t.TempDir())
	s := New(fs)
	s.now = func() time.Time { return now }
	s.Load(context.Background())
	t.Cleanup(s.Close)
	return s, fs
}

func seed(t *testing.T, fs *blob.FileStore, key, value string) {
	t.Helper()
	if err := fs.Set(context.Background(), key, value); err != nil {
		t.Fatalf("seeding %s: %v", key, err)
	}
}

func TestAddEntryRejectedBeforeLoad(t *testing.T) {
	s := New(blob.NewFileStore(t.TempDir()))
	defer s.Close()

	if _, err := s.AddEntry(1, model.TypeCig, AddOptions{}); err != ErrNotReady {
		t.Errorf("AddEntry before Load: err = %v, want ErrNotReady", err)
	}
	if err := s.DeleteEntry("2026-03-10", "x"); err != ErrNotReady {
		t.Errorf("DeleteEntry before Load: err = %v, want ErrNotReady", err)
	}
}

func TestAddEntryValidation(t *testing.T) {
	now := time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)
	s, _ := newTestStore(t, now)

	if _, err := s.AddEntry(-0.5, model.TypeCig, AddOptions{}); err == nil {
		t.Error("negative amount accepted")
	}
	if _, err := s.AddEntry(1, model.EntryType("vape"), AddOptions{}); err == nil {
		t.Error("unknown type accepted")
	}
	if _, err := s.AddEntry(1, model.TypeCig, AddOptions{Date: "10/03/2026"}); err == nil {
		t.Error("malformed date accepted")
	}
	if _, err := s.AddEntry(1, model.TypeCig, AddOptions{Time: "25:00"}); err == nil {
		t.Error("malformed time accepted")
	}
	if len(s.Snapshot()) != 0 {
		t.Errorf("rejected entries mutated the store: %v", s.Snapshot())
	}
}

func TestAddThenDeleteScenario(t *testing.T) {
	now := time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)
	s, _ := newTestStore(t, now)
	today := "2026-03-10"

	first, err := s.AddEntry(1, model.TypeCig, AddOptions{})
	if err != nil {
		t.Fatalf("AddEntry: %v", err)
	}
	if _, err := s.AddEntry(0.5, model.TypeCig, AddOptions{}); err != nil {
		t.Fatalf("AddEntry: %v", err)
	}

	rec, ok := s.Day(today)
	if !ok {
		t.Fatalf("no record for %s", today)
	}
	if rec.CigTotal != 1.5 || rec.OtherTotal != 0 || len(rec.Logs) != 2 {
		t.Fatalf("day = cig %v other %v logs %d, want 1.5 0 2", rec.CigTotal, rec.OtherTotal, len(rec.Logs))
	}
	if rec.Logs[0].Manual || rec.Logs[0].Time != "14:00" {
		t.Errorf("automatic entry = %+v, want manual=false time=14:00", rec.Logs[0])
	}

	if err := s.DeleteEntry(today, first.ID); err != nil {
		t.Fatalf("DeleteEntry: %v", err)
	}
	rec, _ = s.Day(today)
	if rec.CigTotal != 0.5 || len(rec.Logs) != 1 {
		t.Errorf("after delete: cig %v logs %d, want 0.5 1", rec.CigTotal, len(rec.Logs))
	}
}

func TestTotalsRecomputedNotDrifted(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	s, _ := newTestStore(t, now)
	date := "2026-02-01"

	amounts := []float64{0.35, 0.35, 0.35, 1, 0.7}
	var ids []string
	for _, a := range amounts {
		e, err := s.AddEntry(a, model.TypeCig, AddOptions{Date: date, Time: "10:00"})
		if err != nil {
			t.Fatal(err)
		}
		ids = append(ids, e.ID)
	}
	if _, err := s.AddEntry(0.2, model.TypeOther, AddOptions{Date: date, Time: "11:00"}); err != nil {
		t.Fatal(err)
	}

	check := func() {
		t.Helper()
		rec, _ := s.Day(date)
		var cig, other float64
		for _, e := range rec.Logs {
			if e.Type == model.TypeCig {
				cig += e.Amount
			} else {
				other += e.Amount
			}
		}
		if rec.CigTotal != round2(cig) || rec.OtherTotal != round2(other) {
			t.Errorf("totals drifted: cached %v/%v, recomputed %v/%v",
				rec.CigTotal, rec.OtherTotal, round2(cig), round2(other))
		}
	}

	check()
	for _, id := range []string{ids[1], ids[3]} {
		if err := s.DeleteEntry(date, id); err != nil {
			t.Fatal(err)
		}
		check()
	}
	rec, _ := s.Day(date)
	if rec.CigTotal != 1.4 {
		t.Errorf("cigTotal = %v, want 1.4", rec.CigTotal)
	}
}

func TestDeleteNonExistentIsNoOp(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	s, fs := newTestStore(t, now)

	if _, err := s.AddEntry(1, model.TypeCig, AddOptions{}); err != nil {
		t.Fatal(err)
	}
	s.Flush()
	before, _, err := fs.Get(context.Background(), dailyDataKey)
	if err != nil {
		t.Fatal(err)
	}

	if err := s.DeleteEntry("1999-01-01", "nope"); err != nil {
		t.Fatalf("delete missing date: %v", err)
	}
	if err := s.DeleteEntry("2026-03-10", "nope"); err != nil {
		t.Fatalf("delete missing id: %v", err)
	}
	s.Flush()

	after, _, err := fs.Get(context.Background(), dailyDataKey)
	if err != nil {
		t.Fatal(err)
	}
	if before != after {
		t.Error("no-op delete changed the persisted blob")
	}
}

func TestManualEntryNightOrdering(t *testing.T) {
	date := "2026-03-10"

	// Automatic 23:30 first, then a back-filled 01:15 night session.
	now := time.Date(2026, 3, 10, 23, 30, 0, 0, time.UTC)
	s, _ := newTestStore(t, now)
	if _, err := s.AddEntry(1, model.TypeCig, AddOptions{}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.AddEntry(1, model.TypeCig, AddOptions{Date: date, Time: "01:15"}); err != nil {
		t.Fatal(err)
	}
	rec, _ := s.Day(date)
	if got := []string{rec.Logs[0].Time, rec.Logs[1].Time}; got[0] != "23:30" || got[1] != "01:15" {
		t.Errorf("order = %v, want [23:30 01:15]", got)
	}
	if !rec.Logs[1].Manual {
		t.Error("back-dated entry not flagged manual")
	}

	// Same pair inserted the other way around.
	s2, _ := newTestStore(t, now)
	if _, err := s2.AddEntry(1, model.TypeCig, AddOptions{Date: date, Time: "01:15"}); err != nil {
		t.Fatal(err)
	}
	if _, err := s2.AddEntry(1, model.TypeCig, AddOptions{}); err != nil {
		t.Fatal(err)
	}
	rec, _ = s2.Day(date)
	if got := []string{rec.Logs[0].Time, rec.Logs[1].Time}; got[0] != "23:30" || got[1] != "01:15" {
		t.Errorf("order (reversed insertion) = %v, want [23:30 01:15]", got)
	}
}

func TestLoadArchivesPastYears(t *testing.T) {
	fs := blob.NewFileStore(t.TempDir())
	seed(t, fs, dailyDataKey, `{
		"2023-01-01": {"cigTotal": 2, "otherTotal": 0, "logs": []},
		"2023-01-02": {"cigTotal": 4, "otherTotal": 0, "logs": []},
		"2026-03-01": {"cigTotal": 1, "otherTotal": 0, "logs": []}
	}`)

	s := New(fs)
	s.now = func() time.Time { return time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC) }
	s.Load(context.Background())
	defer s.Close()

	got, ok := s.Archives()["2023"]
	if !ok {
		t.Fatal("no archive row for 2023")
	}
	want := model.YearSummary{CigAvg: 3, OtherAvg: 0, TotalDaysRecorded: 2}
	if got != want {
		t.Errorf("archive = %+v, want %+v", got, want)
	}
	if _, ok := s.Archives()["2026"]; ok {
		t.Error("current year was archived")
	}

	// Raw rows are retained.
	if _, ok := s.Day("2023-01-01"); !ok {
		t.Error("raw day record deleted by load")
	}

	// The archive blob was persisted.
	s.Flush()
	raw, ok, err := fs.Get(context.Background(), archivesKey)
	if err != nil || !ok {
		t.Fatalf("archives blob missing after load: ok=%v err=%v", ok, err)
	}
	var persisted model.YearlyArchive
	if err := json.Unmarshal([]byte(raw), &persisted); err != nil {
		t.Fatal(err)
	}
	if persisted["2023"] != want {
		t.Errorf("persisted archive = %+v, want %+v", persisted["2023"], want)
	}
}

func TestLoadDoesNotRearchive(t *testing.T) {
	fs := blob.NewFileStore(t.TempDir())
	seed(t, fs, dailyDataKey, `{"2023-01-01": {"cigTotal": 2, "otherTotal": 0, "logs": []}}`)
	seed(t, fs, archivesKey, `{"2023": {"cigAvg": 9, "otherAvg": 9, "totalDaysRecorded": 9}}`)

	s := New(fs)
	s.now = func() time.Time { return time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC) }
	s.Load(context.Background())
	defer s.Close()

	// Existing summaries are immutable.
	if got := s.Archives()["2023"]; got.CigAvg != 9 {
		t.Errorf("archive recomputed: %+v", got)
	}
}

func TestLoadStripsLegacyFields(t *testing.T) {
	fs := blob.NewFileStore(t.TempDir())
	seed(t, fs, dailyDataKey, `{
		"2026-03-01": {"cigTotal": 1, "otherTotal": 0, "logs": [
			{"id": "a", "amount": 1, "time": "10:00", "type": "cig", "synced": true}
		]}
	}`)

	s := New(fs)
	s.now = func() time.Time { return time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC) }
	s.Load(context.Background())
	s.Flush()
	defer s.Close()

	raw, _, err := fs.Get(context.Background(), dailyDataKey)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(raw, "synced") {
		t.Errorf("legacy field survived rewrite: %s", raw)
	}
	rec, _ := s.Day("2026-03-01")
	if len(rec.Logs) != 1 || rec.Logs[0].ID != "a" {
		t.Errorf("entry lost during migration: %+v", rec)
	}
}

func TestLoadRecoversFromCorruptBlob(t *testing.T) {
	dir := t.TempDir()
	fs := blob.NewFileStore(dir)
	seed(t, fs, dailyDataKey, `{bad json`)
	seed(t, fs, archivesKey, `also bad`)

	s := New(fs)
	s.Load(context.Background())
	defer s.Close()

	if !s.Ready() {
		t.Error("store not ready after corrupt load")
	}
	if len(s.Snapshot()) != 0 || len(s.Archives()) != 0 {
		t.Error("corrupt load produced non-empty state")
	}
	if _, err := s.AddEntry(1, model.TypeCig, AddOptions{}); err != nil {
		t.Errorf("AddEntry after recovery: %v", err)
	}
	s.Flush()

	// The unreadable payloads were backed up before the empty-state
	// fallback, and the post-recovery write did not destroy them.
	backup, err := os.ReadFile(filepath.Join(dir, dailyDataKey+".json.corrupt"))
	if err != nil {
		t.Fatalf("daily backup missing after recovery: %v", err)
	}
	if string(backup) != `{bad json` {
		t.Errorf("daily backup = %q, want original payload", backup)
	}
	if _, err := os.Stat(filepath.Join(dir, archivesKey+".json.corrupt")); err != nil {
		t.Errorf("archives backup missing after recovery: %v", err)
	}
}

func TestPurgeArchivedYears(t *testing.T) {
	fs := blob.NewFileStore(t.TempDir())
	seed(t, fs, dailyDataKey, `{
		"2023-01-01": {"cigTotal": 2, "otherTotal": 0, "logs": []},
		"2026-03-01": {"cigTotal": 1, "otherTotal": 0, "logs": []}
	}`)

	s := New(fs)
	s.now = func() time.Time { return time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC) }
	s.Load(context.Background())
	defer s.Close()

	removed, err := s.PurgeArchivedYears()
	if err != nil {
		t.Fatal(err)
	}
	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}
	if _, ok := s.Day("2023-01-01"); ok {
		t.Error("archived day survived purge")
	}
	if _, ok := s.Day("2026-03-01"); !ok {
		t.Error("current-year day purged")
	}
	if _, ok := s.Archives()["2023"]; !ok {
		t.Error("archive summary lost during purge")
	}
}
