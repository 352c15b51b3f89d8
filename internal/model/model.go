package model

// EntryType is the category of a logged session.
type EntryType string

const (
	TypeCig   EntryType = "cig"
	TypeOther EntryType = "other"
)

// ValidTypes are the allowed entry categories.
var ValidTypes = map[EntryType]bool{
	TypeCig:   true,
	TypeOther: true,
}

// Amount caps enforced at input time. The long-session flag raises the
// per-entry ceiling; it never changes how averages are computed.
const (
	DefaultAmountCap     = 1.00
	LongSessionAmountCap = 1.20
)

// LogEntry represents a single recorded session.
type LogEntry struct {
	ID     string    `json:"id"`
	Amount float64   `json:"amount"`
	// Time is wall-clock time of day in canonical 24-hour HH:MM form.
	// Display formatting (12h) is applied at render time, never stored.
	Time    string    `json:"time"`
	Type    EntryType `json:"type"`
	Manual  bool      `json:"manual,omitempty"`
	Comment string    `json:"comment,omitempty"`
}

// DayRecord is the aggregate for one calendar date. CigTotal and
// OtherTotal are derived caches: always recomputed from Logs, never
// incremented in place.
type DayRecord struct {
	CigTotal   float64    `json:"cigTotal"`
	OtherTotal float64    `json:"otherTotal"`
	Logs       []LogEntry `json:"logs"`
}

// Total returns the cached per-type total for the day.
func (d DayRecord) Total(t EntryType) float64 {
	if t == TypeOther {
		return d.OtherTotal
	}
	return d.CigTotal
}

// DailyData maps ISO date keys (YYYY-MM-DD) to day records.
type DailyData map[string]DayRecord

// YearSummary is the frozen roll-up for a past year.
type YearSummary struct {
	CigAvg            float64 `json:"cigAvg"`
	OtherAvg          float64 `json:"otherAvg"`
	TotalDaysRecorded int     `json:"totalDaysRecorded"`
}

// YearlyArchive maps year keys (YYYY) to frozen summaries.
type YearlyArchive map[string]YearSummary
