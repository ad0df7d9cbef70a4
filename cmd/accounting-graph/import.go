package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yfirmy/accounting-graph/internal/common"
	"github.com/yfirmy/accounting-graph/internal/config"
	"github.com/yfirmy/accounting-graph/internal/engine"
	"github.com/yfirmy/accounting-graph/internal/export"
	"github.com/yfirmy/accounting-graph/internal/model"
	"github.com/yfirmy/accounting-graph/internal/ofx"
	"github.com/yfirmy/accounting-graph/internal/report"
)

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <file.ofx|file.csv>",
		Short: "Import a bank export and reconcile the balance history",
		Long: `Import a bank export (OFX/QFX or the bank's CSV download), merge its
transactions into the per-account ledger, reconstruct the daily balance
history backward from the statement balance and reconcile it against
previously certified checkpoints.

Examples:
  # Import an OFX export
  accounting-graph import ~/Downloads/export.ofx

  # Preview which transactions are new, without writing
  accounting-graph import --dry-run ~/Downloads/export.ofx

  # CSV exports carry no account id; supply it explicitly
  accounting-graph import --account 12345 ~/Downloads/export.csv`,
		Args: cobra.ExactArgs(1),
		RunE: runImport,
	}

	cmd.Flags().BoolP("dry-run", "d", false, "Preview which transactions are new, without writing")
	cmd.Flags().Bool("debug", false, "Dump every known transaction while processing")
	cmd.Flags().Bool("csv-output", false, "Use semicolon separators in transaction dumps")
	cmd.Flags().String("account", "0", "Account id for CSV imports (CSV files carry none)")

	return cmd
}

func runImport(cmd *cobra.Command, args []string) error {
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	debug, _ := cmd.Flags().GetBool("debug")
	csvOutput, _ := cmd.Flags().GetBool("csv-output")
	accountID, _ := cmd.Flags().GetString("account")

	statements, err := parseExport(cmd.Context(), args[0], accountID)
	if err != nil {
		return err
	}

	accounts := config.NewAccounts()
	renderer := report.NewRenderer(os.Stdout, csvOutput)
	processor := engine.NewProcessor(accounts.StorageDir(), accounts, renderer, engine.Options{
		DryRun: dryRun,
		Debug:  debug,
	})

	return processor.Run(cmd.Context(), statements)
}

func parseExport(ctx context.Context, path, accountID string) ([]*model.AccountStatement, error) {
	f, err := os.Open(config.ExpandPath(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open export file: %w", err)
	}
	defer func() { _ = f.Close() }()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".ofx", ".qfx":
		return ofx.NewParser().ParseFile(ctx, f)
	case ".csv":
		stmt, err := export.NewParser().ParseFile(ctx, f, accountID)
		if err != nil {
			return nil, err
		}
		return []*model.AccountStatement{stmt}, nil
	default:
		return nil, fmt.Errorf("%w: %s", common.ErrUnknownFileFormat, filepath.Ext(path))
	}
}
