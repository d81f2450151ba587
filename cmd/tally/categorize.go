package main

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/Veraticus/tally/internal/cli"
	"github.com/Veraticus/tally/internal/common"
	"github.com/Veraticus/tally/internal/engine"
	"github.com/spf13/cobra"
)

func categorizeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categorize <input> <output>",
		Short: "Categorize a ledger and write the tagged copy",
		Long: `Categorize every transaction of a ledger.

Input is a CSV, OFX or QFX file (local path or gs:// URI), a SQLite ledger
written by a previous run, "plaid" or "simplefin" to fetch recent transactions.
Output is a CSV file (local path or gs:// URI), a .db/.sqlite file, or
"sheets" to write to Google Sheets.

Nothing is written unless every group was categorized.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runCategorize(cmd, args[0], args[1])
		},
	}

	cmd.Flags().String("input-format", "", "input format (csv, ofx, qfx, sqlite, plaid, simplefin); detected from the input by default")
	cmd.Flags().String("output-format", "", "output format (csv, sqlite, sheets); detected from the output by default")
	cmd.Flags().Bool("no-progress", false, "do not draw a progress bar")

	_ = a.v.BindPFlag("categorize.input_format", cmd.Flags().Lookup("input-format"))
	_ = a.v.BindPFlag("categorize.output_format", cmd.Flags().Lookup("output-format"))
	_ = a.v.BindPFlag("categorize.no_progress", cmd.Flags().Lookup("no-progress"))

	return cmd
}

func (a *app) runCategorize(cmd *cobra.Command, input, output string) error {
	ctx := cmd.Context()

	inFormat, err := detectInputFormat(input, a.v.GetString("categorize.input_format"))
	if err != nil {
		return err
	}
	outFormat, err := detectOutputFormat(output, a.v.GetString("categorize.output_format"))
	if err != nil {
		return err
	}

	oracles, err := a.buildOracles(ctx)
	if err != nil {
		return common.NewUserError("check the llm.oracles configuration", err)
	}

	reader, closeReader, err := openReader(ctx, a.settings, input, inFormat)
	if err != nil {
		return fmt.Errorf("failed to open input: %w", err)
	}
	defer func() {
		if err := closeReader(); err != nil {
			slog.Warn("Failed to close input", "error", err)
		}
	}()

	writer, closeWriter, err := openWriter(ctx, a.settings, output, outFormat)
	if err != nil {
		return fmt.Errorf("failed to open output: %w", err)
	}
	defer func() {
		if err := closeWriter(); err != nil {
			slog.Warn("Failed to close output", "error", err)
		}
	}()

	cfg := engine.DefaultConfig()
	if !a.v.GetBool("categorize.no_progress") {
		cfg.Progress = cli.NewGroupProgress(cmd.ErrOrStderr()).Report
	}

	eng, err := engine.NewWithConfig(reader, oracles, writer, cfg)
	if err != nil {
		return err
	}

	slog.Info("Categorizing ledger",
		"input", input,
		"input_format", inFormat,
		"output", output,
		"output_format", outFormat,
		"oracles", len(oracles))

	stats, err := eng.Run(ctx)
	if err != nil {
		if errors.Is(err, common.ErrClassificationFailed) {
			return common.NewUserError("categorization aborted; nothing was written", err)
		}
		return err
	}

	out := cmd.OutOrStdout()
	if _, err := fmt.Fprintln(out, cli.RenderSummary(stats)); err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Wrote %d transactions to %s", stats.TotalTransactions, output)))
	return err
}
