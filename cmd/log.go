package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"puffin/internal/dayclock"
	"puffin/internal/logstore"
	"puffin/internal/model"
)

var (
	logAmount  float64
	logType    string
	logDate    string
	logTime    string
	logComment string
)

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Record a session",
	Args:  cobra.NoArgs,
	RunE:  runLog,
}

func init() {
	logCmd.Flags().Float64Var(&logAmount, "amount", 1, "Fraction consumed, e.g. 0.35")
	logCmd.Flags().StringVar(&logType, "type", "cig", "Entry type: cig or other")
	logCmd.Flags().StringVar(&logDate, "date", "", "Back-date to YYYY-MM-DD (marks the entry manual)")
	logCmd.Flags().StringVar(&logTime, "time", "", "Explicit time HH:MM (24h); default now")
	logCmd.Flags().StringVar(&logComment, "comment", "", "Optional comment")
}

func runLog(cmd *cobra.Command, args []string) error {
	st, cfg, cleanup, err := openStore()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	defer cleanup()

	if logAmount > cfg.AmountCap() {
		return fmt.Errorf("amount %.2f exceeds the per-entry cap %.2f", logAmount, cfg.AmountCap())
	}
	if logComment != "" && !cfg.Comments {
		return fmt.Errorf("comments are disabled in the config")
	}

	entry, err := st.AddEntry(logAmount, model.EntryType(logType), logstore.AddOptions{
		Date:    logDate,
		Time:    logTime,
		Comment: logComment,
	})
	if err != nil {
		return err
	}

	when := dayclock.FormatDisplay(entry.Time, cfg.TimeFormat)
	if entry.Manual {
		fmt.Printf("Logged %.2f %s at %s on %s (manual)\n", entry.Amount, entry.Type, when, logDate)
	} else {
		fmt.Printf("Logged %.2f %s at %s\n", entry.Amount, entry.Type, when)
	}
	return nil
}
