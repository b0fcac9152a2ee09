package main

import (
	"fmt"

	"tonshard/internal/netshards"
	"tonshard/internal/shard"

	"github.com/spf13/cobra"
)

var (
	lookupDepth int
	lookupNet   bool
)

var shardCmd = &cobra.Command{
	Use:   "shard <address>",
	Short: "Print the shard an address belongs to",
	Args:  cobra.ExactArgs(1),
	RunE:  runShard,
}

func init() {
	shardCmd.Flags().IntVar(&lookupDepth, "depth", -1, "subdivision depth in bits (default from TONSHARD_DEPTH)")
	shardCmd.Flags().BoolVar(&lookupNet, "net", false, "resolve against the live shard configuration instead of a fixed depth")
	rootCmd.AddCommand(shardCmd)
}

func runShard(cmd *cobra.Command, args []string) error {
	if lookupNet {
		live, err := netshards.Connect(cmd.Context(), cfg.NetConfigURL, logger)
		if err != nil {
			return err
		}
		active, err := live.ActiveShards(cmd.Context())
		if err != nil {
			return err
		}
		id, ok, err := shard.ResolveIn(active, args[0])
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("no active shard contains %s", args[0])
		}
		fmt.Println(id)
		return nil
	}

	depth := cfg.DefaultDepth
	if lookupDepth >= 0 {
		if lookupDepth > shard.MaxDepth {
			return fmt.Errorf("%w: depth %d out of range 0..%d", shard.ErrInvalidShard, lookupDepth, shard.MaxDepth)
		}
		depth = uint8(lookupDepth)
	}

	id, err := shard.Locate(args[0], depth)
	if err != nil {
		return err
	}
	fmt.Println(id)
	return nil
}
