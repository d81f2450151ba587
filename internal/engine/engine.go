// Package engine implements the grouping and consensus pipeline that
// categorizes a ledger.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/tally/internal/common"
	"github.com/Veraticus/tally/internal/model"
	"github.com/Veraticus/tally/internal/service"
	"golang.org/x/sync/errgroup"
)

// ProgressFunc is called after each group is categorized.
type ProgressFunc func(done, total int)

// Config holds optional settings for the engine.
type Config struct {
	Logger   *slog.Logger
	Progress ProgressFunc
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Logger: slog.Default(),
	}
}

// Engine reads a ledger, groups it by token signature, asks every oracle
// about each group and writes the tagged ledger back out.
type Engine struct {
	reader   service.TransactionReader
	writer   service.TransactionWriter
	logger   *slog.Logger
	progress ProgressFunc
	oracles  []Oracle
}

// New creates an engine with the default configuration.
func New(reader service.TransactionReader, oracles []Oracle, writer service.TransactionWriter) (*Engine, error) {
	return NewWithConfig(reader, oracles, writer, DefaultConfig())
}

// NewWithConfig creates an engine. At least one oracle is required.
func NewWithConfig(reader service.TransactionReader, oracles []Oracle, writer service.TransactionWriter, cfg Config) (*Engine, error) {
	if len(oracles) == 0 {
		return nil, fmt.Errorf("%w: at least one categorization oracle is required", common.ErrMissingConfig)
	}
	if reader == nil {
		return nil, fmt.Errorf("%w: transaction reader is required", common.ErrMissingConfig)
	}
	if writer == nil {
		return nil, fmt.Errorf("%w: transaction writer is required", common.ErrMissingConfig)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	registered := make([]Oracle, len(oracles))
	copy(registered, oracles)

	return &Engine{
		reader:   reader,
		writer:   writer,
		oracles:  registered,
		logger:   logger,
		progress: cfg.Progress,
	}, nil
}

// Run categorizes the whole ledger. Any oracle failure aborts the run
// before anything is written.
func (e *Engine) Run(ctx context.Context) (service.CompletionStats, error) {
	start := time.Now()
	var stats service.CompletionStats

	transactions, err := e.reader.ReadTransactions(ctx)
	if err != nil {
		return stats, fmt.Errorf("failed to read transactions: %w", err)
	}

	groups := GroupBySignature(transactions)
	stats.TotalTransactions = len(transactions)
	stats.Groups = len(groups)

	e.logger.Info("Grouped transactions",
		"transactions", len(transactions),
		"groups", len(groups),
		"oracles", len(e.oracles))

	categorized := make([]model.Transaction, 0, len(transactions))

	for i, group := range groups {
		name, answers, err := e.categorizeGroup(ctx, group)
		stats.OracleCalls += len(e.oracles)
		if err != nil {
			return stats, err
		}

		if len(answers) > 1 && name != answers[0] {
			stats.Disagreements++
		}

		category := model.NewCategory(name)
		for _, txn := range group.Transactions {
			categorized = append(categorized, txn.WithCategory(category))
		}

		e.logger.Debug("Categorized group",
			"signature", group.Signature,
			"size", len(group.Transactions),
			"answers", answers,
			"category", name)

		if e.progress != nil {
			e.progress(i+1, len(groups))
		}
	}

	if err := e.writer.WriteTransactions(ctx, categorized); err != nil {
		return stats, fmt.Errorf("failed to write transactions: %w", err)
	}

	stats.Duration = time.Since(start)

	e.logger.Info("Categorization complete",
		"transactions", stats.TotalTransactions,
		"groups", stats.Groups,
		"oracle_calls", stats.OracleCalls,
		"disagreements", stats.Disagreements,
		"duration", stats.Duration)

	return stats, nil
}

// categorizeGroup queries all oracles concurrently for one group and
// resolves their answers. Answers are kept in oracle registration order.
func (e *Engine) categorizeGroup(ctx context.Context, group Group) (string, []string, error) {
	answers := make([]string, len(e.oracles))
	g, gctx := errgroup.WithContext(ctx)

	for i, oracle := range e.oracles {
		g.Go(func() error {
			answer, err := oracle.Categorize(gctx, group.Tokens)
			if err != nil {
				return fmt.Errorf("%w: oracle %d for tokens %v: %w", common.ErrClassificationFailed, i, group.Tokens, err)
			}
			answers[i] = answer
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return "", nil, err
	}

	return Resolve(answers), answers, nil
}
