package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"puffin/internal/dayclock"
	"puffin/internal/model"
)

var (
	listDate string
	listType string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List a day's entries",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func init() {
	listCmd.Flags().StringVar(&listDate, "date", "", "Day to list, YYYY-MM-DD (default today)")
	listCmd.Flags().StringVar(&listType, "type", "", "Filter by type: cig or other")
}

func runList(cmd *cobra.Command, args []string) error {
	st, cfg, cleanup, err := openStore()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	defer cleanup()

	date := listDate
	if date == "" {
		date = dayclock.DateKey(time.Now())
	} else if _, err := dayclock.ParseDateKey(date); err != nil {
		return err
	}

	rec, ok := st.Day(date)
	if !ok || len(rec.Logs) == 0 {
		fmt.Printf("%s: no entries.\n", date)
		return nil
	}

	fmt.Println(date)
	for _, e := range rec.Logs {
		if listType != "" && string(e.Type) != listType {
			continue
		}
		printEntry(e, cfg.TimeFormat)
	}
	fmt.Printf("Totals: cig %.2f, other %.2f\n", rec.CigTotal, rec.OtherTotal)
	return nil
}

func printEntry(e model.LogEntry, timeFormat string) {
	fmt.Println(formatEntry(e, timeFormat))
}

// formatEntry renders one entry line, with the clock in the configured
// display format.
func formatEntry(e model.LogEntry, timeFormat string) string {
	line := fmt.Sprintf("%-9s%-7s%.2f", dayclock.FormatDisplay(e.Time, timeFormat), e.Type, e.Amount)
	if e.Manual {
		line += "  (manual)"
	}
	if e.Comment != "" {
		line += "  " + e.Comment
	}
	return fmt.Sprintf("%s  [%s]", line, e.ID)
}
