package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"puffin/internal/blob"
	"puffin/internal/config"
	"puffin/internal/logstore"
)

var rootCmd = &cobra.Command{
	Use:   "puffin",
	Short: "Puffin – a minimal consumption tracker",
	Long: `puffin is a single-binary, local-only consumption tracker.
Sessions are logged per day and aggregated into daily, weekly, monthly
and custom-period statistics. Data lives in ~/.puffin/.`,
}

// Execute is the entry point called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(logCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(periodCmd)
	rootCmd.AddCommand(archiveCmd)
	rootCmd.AddCommand(exportCmd)
}

// openStore loads the config, opens the configured blob backend and
// brings a loaded log store up. The returned cleanup drains pending
// writes and closes the backend.
func openStore() (*logstore.Store, config.Config, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, cfg, nil, err
	}

	dir := cfg.DataDir
	if dir == "" {
		dir, err = config.DefaultDataDir()
		if err != nil {
			return nil, cfg, nil, err
		}
	}

	var bs blob.Store
	closeBlob := func() {}
	switch cfg.Backend {
	case "sqlite":
		db, err := blob.NewSQLiteStore(filepath.Join(dir, "puffin.db"))
		if err != nil {
			return nil, cfg, nil, err
		}
		bs = db
		closeBlob = func() { _ = db.Close() }
	default:
		bs = blob.NewFileStore(dir)
	}

	st := logstore.New(bs)
	st.Load(context.Background())

	cleanup := func() {
		st.Close()
		closeBlob()
	}
	return st, cfg, cleanup, nil
}
