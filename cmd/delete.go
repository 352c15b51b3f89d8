package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:   "delete <date> <id>",
	Short: "Delete a logged entry",
	Args:  cobra.ExactArgs(2),
	RunE:  runDelete,
}

func runDelete(cmd *cobra.Command, args []string) error {
	date, id := args[0], args[1]

	st, _, cleanup, err := openStore()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	defer cleanup()

	before, _ := st.Day(date)
	if err := st.DeleteEntry(date, id); err != nil {
		return err
	}
	after, _ := st.Day(date)

	if len(after.Logs) == len(before.Logs) {
		fmt.Printf("No entry %s on %s; nothing deleted.\n", id, date)
		return nil
	}
	fmt.Printf("Deleted %s from %s (cig %.2f, other %.2f remaining)\n",
		id, date, after.CigTotal, after.OtherTotal)
	return nil
}
