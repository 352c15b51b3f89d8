package cmd

import (
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"puffin/internal/dayclock"
	"puffin/internal/model"
	"puffin/internal/stats"
)

var statsType string

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show rolling and month-to-date statistics",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

func init() {
	statsCmd.Flags().StringVar(&statsType, "type", "cig", "Entry type: cig or other")
}

func runStats(cmd *cobra.Command, args []string) error {
	st, _, cleanup, err := openStore()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	defer cleanup()

	typ := model.EntryType(statsType)
	if !model.ValidTypes[typ] {
		return fmt.Errorf("unknown entry type %q", statsType)
	}

	now := time.Now()
	data := st.Snapshot()
	week := stats.RollingSum(data, typ, 7, now)
	month := stats.MonthToDate(data, typ, now)

	fmt.Printf("Last 7 days (%s)\n", typ)
	fmt.Println("--------------------------------")
	fmt.Printf("%-20s%.1f\n", "Total", week.Sum)
	fmt.Printf("%-20s%.2f\n", "Daily average", week.Average)
	fmt.Println()
	fmt.Printf("Month %s\n", dayclock.MonthPrefix(now))
	fmt.Println("--------------------------------")
	fmt.Printf("%-20s%.1f\n", "Total", month.Sum)
	fmt.Printf("%-20s%.2f\n", "Average / day", month.Average)

	archives := st.Archives()
	if len(archives) == 0 {
		return nil
	}
	years := make([]string, 0, len(archives))
	for y := range archives {
		years = append(years, y)
	}
	sort.Strings(years)

	fmt.Println()
	fmt.Println("Archived years")
	fmt.Println("--------------------------------")
	for _, y := range years {
		a := archives[y]
		fmt.Printf("%s  cig %.2f/day  other %.2f/day  (%d days)\n",
			y, a.CigAvg, a.OtherAvg, a.TotalDaysRecorded)
	}
	return nil
}
