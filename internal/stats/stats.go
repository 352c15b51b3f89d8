// Package stats derives read-only aggregates from the log store's
// in-memory snapshot. Everything here is a pure function: no mutation,
// no persistence, cheap enough to recompute on every read.
package stats

import (
	"time"

	"puffin/internal/dayclock"
	"puffin/internal/model"
)

// Rolling is a fixed-window sum and its per-day average. The average
// divides by the window length: days without a record contribute zero,
// they do not shrink the denominator.
type Rolling struct {
	Sum     float64
	Average float64
}

// RollingSum aggregates the per-day type totals over the windowDays
// calendar days ending at anchor, inclusive.
func RollingSum(data model.DailyData, typ model.EntryType, windowDays int, anchor time.Time) Rolling {
	if windowDays <= 0 {
		return Rolling{}
	}
	var sum float64
	for i := 0; i < windowDays; i++ {
		key := dayclock.DateKey(anchor.AddDate(0, 0, -i))
		if rec, ok := data[key]; ok {
			sum += rec.Total(typ)
		}
	}
	return Rolling{Sum: sum, Average: sum / float64(windowDays)}
}

// Month is a month-to-date sum and its average per elapsed day of the
// month, not per recorded day.
type Month struct {
	Sum     float64
	Average float64
}

// MonthToDate aggregates the per-day type totals over every date key
// in now's calendar month, dividing by now's day of month.
func MonthToDate(data model.DailyData, typ model.EntryType, now time.Time) Month {
	prefix := dayclock.MonthPrefix(now) + "-"
	var sum float64
	for key, rec := range data {
		if len(key) >= len(prefix) && key[:len(prefix)] == prefix {
			sum += rec.Total(typ)
		}
	}
	return Month{Sum: sum, Average: sum / float64(now.Day())}
}

// Bucket is a time-of-day slot.
type Bucket int

const (
	// BucketNone is the no-data sentinel: returned as the peak when
	// every bucket sums to zero.
	BucketNone Bucket = iota
	BucketNight
	BucketMorning
	BucketAfternoon
	BucketEvening
)

// String returns the bucket label with its hour range.
func (b Bucket) String() string {
	switch b {
	case BucketNight:
		return "night (00-08)"
	case BucketMorning:
		return "morning (08-12)"
	case BucketAfternoon:
		return "afternoon (12-17)"
	case BucketEvening:
		return "evening (17-24)"
	}
	return "no data"
}

// Histogram is the per-bucket breakdown of a date range plus the
// range-wide total and per-calendar-day average.
type Histogram struct {
	Night     float64
	Morning   float64
	Afternoon float64
	Evening   float64

	// Peak is the bucket with the largest sum. Ties break toward the
	// earlier bucket: night > morning > afternoon > evening.
	Peak    Bucket
	PeakSum float64

	// Total sums the per-day type totals over the range, so entries
	// whose clock cannot be parsed still count here even though the
	// buckets skip them.
	Total   float64
	Average float64
}

// PeriodHistogram buckets every matching entry in [start, end]
// (inclusive date keys) by its time-of-day hour. Malformed times are
// skipped, never fatal.
func PeriodHistogram(data model.DailyData, typ model.EntryType, start, end string) Histogram {
	var h Histogram
	for date, rec := range data {
		// ISO date keys order lexically.
		if date < start || date > end {
			continue
		}
		h.Total += rec.Total(typ)
		for _, e := range rec.Logs {
			if e.Type != typ {
				continue
			}
			hour, ok := dayclock.HourOf(e.Time)
			if !ok {
				continue
			}
			switch {
			case hour < 8:
				h.Night += e.Amount
			case hour < 12:
				h.Morning += e.Amount
			case hour < 17:
				h.Afternoon += e.Amount
			default:
				h.Evening += e.Amount
			}
		}
	}

	if days := dayclock.DaysInclusive(start, end); days > 0 {
		h.Average = h.Total / float64(days)
	}

	h.Peak, h.PeakSum = peak(h)
	return h
}

// peak applies the fixed tie-break priority.
func peak(h Histogram) (Bucket, float64) {
	max := h.Night
	for _, v := range []float64{h.Morning, h.Afternoon, h.Evening} {
		if v > max {
			max = v
		}
	}
	if max <= 0 {
		return BucketNone, 0
	}
	switch max {
	case h.Night:
		return BucketNight, max
	case h.Morning:
		return BucketMorning, max
	case h.Afternoon:
		return BucketAfternoon, max
	}
	return BucketEvening, max
}
