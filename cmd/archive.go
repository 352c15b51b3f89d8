package cmd

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"
)

var archiveCmd = &cobra.Command{
	Use:   "archive",
	Short: "Show frozen yearly summaries",
	Args:  cobra.NoArgs,
	RunE:  runArchive,
}

var archivePurgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete raw day records for archived years",
	Long: `purge removes the per-day records of every year that already has an
archive summary. The summaries themselves are kept. This is
irreversible; by default archived years keep their raw data.`,
	Args: cobra.NoArgs,
	RunE: runArchivePurge,
}

func init() {
	archiveCmd.AddCommand(archivePurgeCmd)
}

func runArchive(cmd *cobra.Command, args []string) error {
	st, _, cleanup, err := openStore()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	defer cleanup()

	archives := st.Archives()
	if len(archives) == 0 {
		fmt.Println("No archived years.")
		return nil
	}

	years := make([]string, 0, len(archives))
	for y := range archives {
		years = append(years, y)
	}
	sort.Strings(years)

	for _, y := range years {
		a := archives[y]
		fmt.Printf("%s  cig %.2f/day  other %.2f/day  (%d days recorded)\n",
			y, a.CigAvg, a.OtherAvg, a.TotalDaysRecorded)
	}
	return nil
}

func runArchivePurge(cmd *cobra.Command, args []string) error {
	st, _, cleanup, err := openStore()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	defer cleanup()

	removed, err := st.PurgeArchivedYears()
	if err != nil {
		return err
	}
	if removed == 0 {
		fmt.Println("Nothing to purge.")
		return nil
	}
	fmt.Printf("Purged %d day records from archived years.\n", removed)
	return nil
}
