// Package logstore owns the authoritative date-keyed mapping of day
// records: it appends and deletes individual log entries, recomputes
// per-day totals from the raw logs on every mutation, and rolls past
// years into frozen archive summaries on load.
package logstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/charmbracelet/log"
	"github.com/oklog/ulid/v2"

	"puffin/internal/blob"
	"puffin/internal/dayclock"
	"puffin/internal/model"
)

// Blob keys. The _v3 suffix is the schema generation; bumping it
// orphans older blobs rather than migrating them in place.
const (
	dailyDataKey = "dailyData_v3"
	archivesKey  = "yearlyArchives_v3"
)

// ErrNotReady is returned by mutations issued before Load completes.
var ErrNotReady = errors.New("log store not loaded")

// AddOptions are the optional parts of AddEntry. A zero value means
// "log now, for today, without a comment".
type AddOptions struct {
	// Date is an explicit YYYY-MM-DD target. Supplying it marks the
	// entry as manual and triggers time-sorted insertion.
	Date string
	// Time is an explicit HH:MM clock (24-hour). Empty means now.
	Time string
	// Comment is a free-text annotation.
	Comment string
}

// Store is the LogStore: in-memory state plus a write queue flushing
// full-state snapshots to the blob store. It is not safe for
// concurrent use; the expected caller is a single UI/event thread.
type Store struct {
	data     model.DailyData
	archives model.YearlyArchive
	blobs    blob.Store
	queue    *blob.Queue
	ready    bool

	now     func() time.Time
	entropy *rand.Rand
}

// New creates a Store over the given blob store. Call Load before any
// mutation, and Close when done.
func New(bs blob.Store) *Store {
	return &Store{
		data:     model.DailyData{},
		archives: model.YearlyArchive{},
		blobs:    bs,
		queue:    blob.NewQueue(bs),
		now:      time.Now,
		entropy:  rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Ready reports whether Load has completed.
func (s *Store) Ready() bool { return s.ready }

// Snapshot returns the current daily mapping. The returned map is the
// live state; callers must treat it as read-only.
func (s *Store) Snapshot() model.DailyData { return s.data }

// Archives returns the yearly archive summaries, read-only.
func (s *Store) Archives() model.YearlyArchive { return s.archives }

// Day returns the record for a date key.
func (s *Store) Day(date string) (model.DayRecord, bool) {
	rec, ok := s.data[date]
	return rec, ok
}

// Load reads both blobs and brings the store to Ready. Failures are
// recovered locally: an unreadable or corrupt blob yields an empty
// state and a warning, never an error. Past years not yet archived are
// rolled up, and entries carrying legacy fields are rewritten in the
// v3 shape.
func (s *Store) Load(ctx context.Context) {
	defer func() { s.ready = true }()

	raw, hasDaily, err := s.blobs.Get(ctx, dailyDataKey)
	if err != nil {
		log.Warn("daily data unreadable, starting empty", "err", err)
		hasDaily = false
	} else if hasDaily {
		var parsed model.DailyData
		if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
			log.Warn("daily data corrupt, backing up and starting empty", "err", err)
			s.quarantine(ctx, dailyDataKey)
			hasDaily = false
		} else {
			s.data = parsed
		}
	}
	if s.data == nil {
		s.data = model.DailyData{}
	}

	rawArch, ok, err := s.blobs.Get(ctx, archivesKey)
	if err != nil {
		log.Warn("archives unreadable, starting empty", "err", err)
	} else if ok {
		var parsed model.YearlyArchive
		if err := json.Unmarshal([]byte(rawArch), &parsed); err != nil {
			log.Warn("archives corrupt, backing up and starting empty", "err", err)
			s.quarantine(ctx, archivesKey)
		} else {
			s.archives = parsed
		}
	}
	if s.archives == nil {
		s.archives = model.YearlyArchive{}
	}

	if hasDaily && stripLegacyFields([]byte(raw)) {
		log.Info("stripped legacy entry fields, rewriting daily data")
		s.persistDaily()
	}

	if s.archivePastYears() {
		s.persistArchives()
	}
}

// AddEntry records a new session. amount must be non-negative and typ
// one of the known categories; date and time fall back to "now" when
// not supplied. The affected day's totals are recomputed from its full
// log slice and the whole mapping is queued for persistence.
func (s *Store) AddEntry(amount float64, typ model.EntryType, opts AddOptions) (model.LogEntry, error) {
	if !s.ready {
		return model.LogEntry{}, ErrNotReady
	}
	if amount < 0 {
		return model.LogEntry{}, fmt.Errorf("amount must be non-negative, got %v", amount)
	}
	if !model.ValidTypes[typ] {
		return model.LogEntry{}, fmt.Errorf("unknown entry type %q", typ)
	}

	now := s.now()
	date := opts.Date
	manual := false
	if date == "" {
		date = dayclock.DateKey(now)
	} else {
		if _, err := dayclock.ParseDateKey(date); err != nil {
			return model.LogEntry{}, err
		}
		manual = true
	}

	clock := opts.Time
	if clock == "" {
		clock = dayclock.ClockTime(now)
	} else if _, _, err := dayclock.ParseClock(clock); err != nil {
		return model.LogEntry{}, err
	}

	entry := model.LogEntry{
		ID:      s.newID(now),
		Amount:  amount,
		Time:    clock,
		Type:    typ,
		Manual:  manual,
		Comment: opts.Comment,
	}

	rec := s.data[date]
	rec.Logs = append(rec.Logs, entry)
	// Manual entries slot into time order. Automatic entries append,
	// which already is time order unless an earlier manual insertion
	// (e.g. a back-filled night session) broke monotonicity.
	if manual || appendBrokeOrder(rec.Logs) {
		sort.SliceStable(rec.Logs, func(i, j int) bool {
			return dayclock.SortMinutes(rec.Logs[i].Time) < dayclock.SortMinutes(rec.Logs[j].Time)
		})
	}
	recomputeTotals(&rec)
	s.data[date] = rec

	s.persistDaily()
	return entry, nil
}

// DeleteEntry removes the entry with the given id from the given day.
// Unknown dates and ids are silent no-ops: the store is left untouched
// and nothing is persisted.
func (s *Store) DeleteEntry(date, id string) error {
	if !s.ready {
		return ErrNotReady
	}
	rec, ok := s.data[date]
	if !ok {
		return nil
	}

	filtered := rec.Logs[:0:0]
	for _, e := range rec.Logs {
		if e.ID != id {
			filtered = append(filtered, e)
		}
	}
	if len(filtered) == len(rec.Logs) {
		return nil
	}

	rec.Logs = filtered
	recomputeTotals(&rec)
	s.data[date] = rec

	s.persistDaily()
	return nil
}

// PurgeArchivedYears deletes the raw day records of every year that
// already has an archive summary. Load never does this on its own;
// purging is an explicit, destructive opt-in. Returns the number of
// day records removed.
func (s *Store) PurgeArchivedYears() (int, error) {
	if !s.ready {
		return 0, ErrNotReady
	}
	removed := 0
	for date := range s.data {
		if _, ok := s.archives[dayclock.YearOf(date)]; ok {
			delete(s.data, date)
			removed++
		}
	}
	if removed > 0 {
		log.Info("purged archived day records", "days", removed)
		s.persistDaily()
	}
	return removed, nil
}

// Flush blocks until all queued writes have been applied.
func (s *Store) Flush() { s.queue.Flush() }

// Close drains the write queue and stops it.
func (s *Store) Close() { s.queue.Close() }

// quarantine preserves an undecodable blob before the empty-state
// fallback, so the next full-state write cannot destroy it.
func (s *Store) quarantine(ctx context.Context, key string) {
	if err := s.blobs.Quarantine(ctx, key); err != nil {
		log.Warn("could not back up corrupt blob", "key", key, "err", err)
	}
}

// appendBrokeOrder reports whether the freshly appended last log sorts
// before its predecessor under the night-adjusted clock.
func appendBrokeOrder(logs []model.LogEntry) bool {
	n := len(logs)
	if n < 2 {
		return false
	}
	return dayclock.SortMinutes(logs[n-1].Time) < dayclock.SortMinutes(logs[n-2].Time)
}

func (s *Store) newID(t time.Time) string {
	return ulid.MustNew(ulid.Timestamp(t), s.entropy).String()
}

// recomputeTotals rebuilds both cached totals from the raw logs. Never
// increment the totals in place: recomputation is what keeps them from
// drifting after deletions.
func recomputeTotals(rec *model.DayRecord) {
	var cig, other float64
	for _, e := range rec.Logs {
		switch e.Type {
		case model.TypeOther:
			other += e.Amount
		default:
			cig += e.Amount
		}
	}
	rec.CigTotal = round2(cig)
	rec.OtherTotal = round2(other)
}

// round2 rounds half away from zero to 2 decimal places, the precision
// persisted for all totals and averages.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// archivePastYears computes a frozen summary for every year present in
// the daily data that is not the current year and has no archive row
// yet. Raw day records are retained. Reports whether the archive grew.
func (s *Store) archivePastYears() bool {
	currentYear := s.now().Format("2006")

	days := map[string]int{}
	cigSums := map[string]float64{}
	otherSums := map[string]float64{}
	for date, rec := range s.data {
		year := dayclock.YearOf(date)
		if year == currentYear {
			continue
		}
		if _, done := s.archives[year]; done {
			continue
		}
		days[year]++
		cigSums[year] += rec.CigTotal
		otherSums[year] += rec.OtherTotal
	}

	changed := false
	for year, n := range days {
		if n == 0 {
			continue
		}
		s.archives[year] = model.YearSummary{
			CigAvg:            round2(cigSums[year] / float64(n)),
			OtherAvg:          round2(otherSums[year] / float64(n)),
			TotalDaysRecorded: n,
		}
		log.Info("archived year", "year", year, "days", n)
		changed = true
	}
	return changed
}

func (s *Store) persistDaily() {
	payload, err := json.Marshal(s.data)
	if err != nil {
		log.Warn("cannot encode daily data, skipping write", "err", err)
		return
	}
	s.queue.Enqueue(dailyDataKey, string(payload))
}

func (s *Store) persistArchives() {
	payload, err := json.Marshal(s.archives)
	if err != nil {
		log.Warn("cannot encode archives, skipping write", "err", err)
		return
	}
	s.queue.Enqueue(archivesKey, string(payload))
}
