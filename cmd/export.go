package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"puffin/internal/dayclock"
	"puffin/internal/model"
)

var (
	exportFrom   string
	exportTo     string
	exportFormat string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export log entries to stdout",
	Args:  cobra.NoArgs,
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportFrom, "from", "", "Range start YYYY-MM-DD (default first of month)")
	exportCmd.Flags().StringVar(&exportTo, "to", "", "Range end YYYY-MM-DD (default today)")
	exportCmd.Flags().StringVar(&exportFormat, "format", "csv", "Output format: csv, json, md")
}

// exportRow flattens one entry with its parent date.
type exportRow struct {
	Date    string  `json:"date"`
	ID      string  `json:"id"`
	Type    string  `json:"type"`
	Amount  float64 `json:"amount"`
	Time    string  `json:"time"`
	Manual  bool    `json:"manual"`
	Comment string  `json:"comment,omitempty"`
}

func runExport(cmd *cobra.Command, args []string) error {
	now := time.Now()
	from := exportFrom
	if from == "" {
		from = dayclock.MonthPrefix(now) + "-01"
	}
	to := exportTo
	if to == "" {
		to = dayclock.DateKey(now)
	}
	start, err := dayclock.ParseDateKey(from)
	if err != nil {
		return err
	}
	end, err := dayclock.ParseDateKey(to)
	if err != nil {
		return err
	}
	if end.Before(start) {
		return fmt.Errorf("end %s precedes start %s", to, from)
	}

	st, cfg, cleanup, err := openStore()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	defer cleanup()

	var rows []exportRow
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		date := dayclock.DateKey(d)
		rec, ok := st.Day(date)
		if !ok {
			continue
		}
		for _, e := range rec.Logs {
			rows = append(rows, exportRow{
				Date:    date,
				ID:      e.ID,
				Type:    string(e.Type),
				Amount:  e.Amount,
				Time:    e.Time,
				Manual:  e.Manual,
				Comment: e.Comment,
			})
		}
	}

	switch exportFormat {
	case "json":
		data, err := json.MarshalIndent(rows, "", "  ")
		if err != nil {
			fmt.Fprintln(os.Stderr, "error encoding JSON:", err)
			os.Exit(2)
		}
		fmt.Println(string(data))
	case "md":
		printMarkdown(rows, cfg.TimeFormat)
	default: // csv
		printCSV(rows)
	}
	return nil
}

func printMarkdown(rows []exportRow, timeFormat string) {
	if len(rows) == 0 {
		fmt.Println("No entries found.")
		return
	}
	var currentDay string
	for _, r := range rows {
		if r.Date != currentDay {
			fmt.Println(r.Date)
			currentDay = r.Date
		}
		printEntry(model.LogEntry{
			ID:      r.ID,
			Amount:  r.Amount,
			Time:    r.Time,
			Type:    model.EntryType(r.Type),
			Manual:  r.Manual,
			Comment: r.Comment,
		}, timeFormat)
	}
}

func printCSV(rows []exportRow) {
	fmt.Println("date,id,type,amount,time,manual,comment")
	for _, r := range rows {
		fmt.Printf("%s,%s,%s,%g,%s,%t,%s\n",
			csvEscape(r.Date),
			csvEscape(r.ID),
			csvEscape(r.Type),
			r.Amount,
			csvEscape(r.Time),
			r.Manual,
			csvEscape(r.Comment),
		)
	}
}

// csvEscape wraps a field in quotes if it contains a comma, quote, or
// newline.
func csvEscape(s string) string {
	needsQuote := false
	for _, c := range s {
		if c == ',' || c == '"' || c == '\n' || c == '\r' {
			needsQuote = true
			break
		}
	}
	if !needsQuote {
		return s
	}
	// Escape internal double quotes by doubling them.
	escaped := ""
	for _, c := range s {
		if c == '"' {
			escaped += "\""
		}
		escaped += string(c)
	}
	return `"` + escaped + `"`
}
