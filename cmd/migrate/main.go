package main

import (
	"context"                       // Context for database calls
	"fmt"                           // Report output
	"io"                            // Report destination
	"os"                            // Exit codes
	"text/tabwriter"                // Column report
	"turso_wallet/internal/config"  // Custom import path (Config)
	"turso_wallet/internal/db"      // Custom import path (Database)
	"turso_wallet/internal/logging" // Logger setup

	"github.com/sirupsen/logrus" // Logrus for structured logging
	"github.com/spf13/cobra"     // CLI framework
)

// Main entry point for migration
func main() {
	if err := newRootCmd().Execute(); err != nil {
		logrus.WithError(err).Error("migrate failed")
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var cfg *config.Config

	rootCmd := &cobra.Command{
		Use:           "migrate",
		Short:         "Manage the users table schema",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cfg = config.LoadConfig()
			logging.Setup(cfg.LogLevel, cfg.IsProd)
		},
	}

	upgradeCmd := &cobra.Command{
		Use:   "upgrade",
		Short: "Create the users table and add any missing columns",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUpgrade(cmd.Context(), cfg)
		},
	}
	verifyCmd := &cobra.Command{
		Use:   "verify",
		Short: "Compare the live users table with the expected schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(cmd.Context(), cfg, cmd.OutOrStdout())
		},
	}

	rootCmd.AddCommand(upgradeCmd, verifyCmd)
	return rootCmd
}

func runUpgrade(ctx context.Context, cfg *config.Config) error {
	conn, err := db.Open(ctx, cfg.DatabaseURL, cfg.AuthToken)
	if err != nil {
		return err
	}
	defer conn.Close()

	res, err := db.NewReconciler(conn.SQL, logrus.StandardLogger()).Run(ctx)
	if err != nil {
		return err
	}
	logrus.WithField("added", res.Added).Info("Migration completed.")
	return nil
}

func runVerify(ctx context.Context, cfg *config.Config, out io.Writer) error {
	conn, err := db.Open(ctx, cfg.DatabaseURL, cfg.AuthToken)
	if err != nil {
		return err
	}
	defer conn.Close()

	cols, err := db.DescribeTable(ctx, conn.SQL, db.UsersTable)
	if err != nil {
		return err
	}
	if len(cols) == 0 {
		return fmt.Errorf("table %s does not exist", db.UsersTable)
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CID\tNAME\tTYPE\tNOT NULL\tDEFAULT\tPK")
	for _, c := range cols {
		def := "NULL"
		if c.Default.Valid {
			def = c.Default.String
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%t\t%s\t%t\n", c.CID, c.Name, c.Type, c.NotNull, def, c.PrimaryKey)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	var missing []string
	for _, d := range db.CompareColumns(cols) {
		if d.Missing {
			missing = append(missing, d.Column)
			continue
		}
		// Retyped columns are reported but never altered
		logrus.WithFields(logrus.Fields{
			"column":   d.Column,
			"expected": d.Expected,
			"actual":   d.Actual,
		}).Warn("Column type differs from expected schema")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing columns: %v", missing)
	}
	logrus.Info("Schema verified")
	return nil
}
