package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"puffin/internal/dayclock"
	"puffin/internal/model"
	"puffin/internal/stats"
)

var periodType string

var periodCmd = &cobra.Command{
	Use:   "period <start> <end>",
	Short: "Analyse an arbitrary date range",
	Long: `period breaks a date range down by time-of-day bucket and reports
the peak period, the range total and the per-day average.`,
	Args: cobra.ExactArgs(2),
	RunE: runPeriod,
}

func init() {
	periodCmd.Flags().StringVar(&periodType, "type", "cig", "Entry type: cig or other")
}

func runPeriod(cmd *cobra.Command, args []string) error {
	start, end := args[0], args[1]
	if _, err := dayclock.ParseDateKey(start); err != nil {
		return err
	}
	if _, err := dayclock.ParseDateKey(end); err != nil {
		return err
	}
	if dayclock.DaysInclusive(start, end) == 0 {
		return fmt.Errorf("end %s precedes start %s", end, start)
	}

	typ := model.EntryType(periodType)
	if !model.ValidTypes[typ] {
		return fmt.Errorf("unknown entry type %q", periodType)
	}

	st, _, cleanup, err := openStore()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	defer cleanup()

	h := stats.PeriodHistogram(st.Snapshot(), typ, start, end)

	fmt.Printf("%s – %s (%s)\n", start, end, typ)
	fmt.Println("--------------------------------")
	fmt.Printf("%-20s%.1f\n", "night (00-08)", h.Night)
	fmt.Printf("%-20s%.1f\n", "morning (08-12)", h.Morning)
	fmt.Printf("%-20s%.1f\n", "afternoon (12-17)", h.Afternoon)
	fmt.Printf("%-20s%.1f\n", "evening (17-24)", h.Evening)
	fmt.Println("--------------------------------")
	if h.Peak == stats.BucketNone {
		fmt.Println("Peak period: no data")
	} else {
		fmt.Printf("Peak period: %s with %.1f units\n", h.Peak, h.PeakSum)
	}
	fmt.Printf("%-20s%.1f\n", "Total", h.Total)
	fmt.Printf("%-20s%.2f\n", "Average / day", h.Average)
	return nil
}
