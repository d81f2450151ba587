package main

import (
	"fmt"

	"github.com/Veraticus/tally/internal/cli"
	"github.com/Veraticus/tally/internal/engine"
	"github.com/spf13/cobra"
)

func tokensCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tokens <input>",
		Short: "Show the tokens each transaction is grouped by",
		Long: `Print the tokens derived from every transaction of a ledger without
calling any oracle. With --groups, print the resulting groups instead.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runTokens(cmd, args[0])
		},
	}

	cmd.Flags().Bool("groups", false, "print groups and their signatures")
	cmd.Flags().String("input-format", "", "input format (csv, ofx, qfx, sqlite, plaid, simplefin)")

	_ = a.v.BindPFlag("tokens.groups", cmd.Flags().Lookup("groups"))
	_ = a.v.BindPFlag("tokens.input_format", cmd.Flags().Lookup("input-format"))

	return cmd
}

func (a *app) runTokens(cmd *cobra.Command, input string) error {
	ctx := cmd.Context()

	format, err := detectInputFormat(input, a.v.GetString("tokens.input_format"))
	if err != nil {
		return err
	}

	reader, closeReader, err := openReader(ctx, a.settings, input, format)
	if err != nil {
		return fmt.Errorf("failed to open input: %w", err)
	}
	defer func() { _ = closeReader() }()

	transactions, err := reader.ReadTransactions(ctx)
	if err != nil {
		return err
	}

	if a.v.GetBool("tokens.groups") {
		return cli.WriteGroups(cmd.OutOrStdout(), engine.GroupBySignature(transactions))
	}
	return cli.WriteTokens(cmd.OutOrStdout(), transactions)
}
