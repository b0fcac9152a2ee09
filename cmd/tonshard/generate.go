package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"tonshard/internal/account"
	"tonshard/internal/netshards"
	"tonshard/internal/search"
	"tonshard/internal/shard"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	genDepth   int
	genWorkers int
	genTimeout time.Duration
	genNet     bool
)

var generateCmd = &cobra.Command{
	Use:   "generate <shard>",
	Short: "Brute-force a fresh wallet whose address lands in the given shard",
	Long: `Generate derives random mnemonics until one of them produces a wallet
address inside the requested shard. The shard accepts the tagged hex
word ("0:a000000000000000"), an explicit bit prefix ("0:p10110100") or
an index at a depth ("0:5/3"). Expected work grows as 2^depth.`,
	Args: cobra.ExactArgs(1),
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().IntVar(&genDepth, "depth", -1, "match depth in bits (default: the target shard's own depth)")
	generateCmd.Flags().IntVar(&genWorkers, "workers", 0, "number of search workers (0 = config, then one per CPU)")
	generateCmd.Flags().DurationVar(&genTimeout, "timeout", 0, "give up after this long (0 = no limit)")
	generateCmd.Flags().BoolVar(&genNet, "net", false, "require the target to be covered by an active network shard")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	target, err := shard.Parse(args[0])
	if err != nil {
		return err
	}

	depth := target.Depth
	if genDepth >= 0 {
		if genDepth > shard.MaxDepth {
			return fmt.Errorf("%w: depth %d out of range 0..%d", shard.ErrInvalidShard, genDepth, shard.MaxDepth)
		}
		depth = uint8(genDepth)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if genTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, genTimeout)
		defer cancel()
	}

	if genNet {
		live, err := netshards.Connect(ctx, cfg.NetConfigURL, logger)
		if err != nil {
			return err
		}
		active, err := live.ActiveShards(ctx)
		if err != nil {
			return err
		}
		if !coveredBy(active, target) {
			return fmt.Errorf("%w: %s is not covered by any active network shard", shard.ErrInvalidShard, target)
		}
	}

	workers := genWorkers
	if workers == 0 {
		workers = cfg.Workers
	}
	engine := search.New(search.Config{
		Workers:          workers,
		ProgressInterval: cfg.ProgressInterval,
		Logger:           logger,
	})

	logger.Info("searching for account",
		zap.String("shard", target.String()),
		zap.Uint8("depth", depth),
		zap.Int("workers", workers))

	start := time.Now()
	res, err := engine.Find(ctx, target, depth)
	if err != nil {
		return err
	}

	at, err := shard.Of(res.Address, depth)
	if err != nil {
		return err
	}
	logger.Info("account found",
		zap.Int64("attempts", engine.Stats().Attempts),
		zap.Duration("elapsed", time.Since(start)))

	fmt.Printf("Address:       %s\n", account.Format(res.Address))
	fmt.Printf("Address (raw): %s\n", account.FormatRaw(res.Address))
	fmt.Printf("Shard:         %s\n", at)
	fmt.Printf("Mnemonic:      %s\n", res.Mnemonic)
	return nil
}

func coveredBy(active []shard.ID, target shard.ID) bool {
	for _, s := range active {
		if s.Matches(target) {
			return true
		}
	}
	return false
}
