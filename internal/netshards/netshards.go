// Package netshards reads the live shard configuration from the TON
// network over liteservers.
package netshards

import (
	"context"
	"fmt"

	"tonshard/internal/shard"

	"github.com/xssnick/tonutils-go/liteclient"
	"github.com/xssnick/tonutils-go/ton"
	"go.uber.org/zap"
)

// Client queries the current shard split of the chain.
type Client struct {
	api ton.APIClientWrapped
	log *zap.Logger
}

// Connect dials a liteserver pool described by a global config URL.
func Connect(ctx context.Context, configURL string, log *zap.Logger) (*Client, error) {
	if log == nil {
		log = zap.NewNop()
	}
	pool := liteclient.NewConnectionPool()
	if err := pool.AddConnectionsFromConfigUrl(ctx, configURL); err != nil {
		return nil, fmt.Errorf("connect liteservers: %w", err)
	}
	return &Client{api: ton.NewAPIClient(pool), log: log}, nil
}

// ActiveShards returns the basechain shards of the latest masterchain
// block. The masterchain root itself is not part of the list.
func (c *Client) ActiveShards(ctx context.Context) ([]shard.ID, error) {
	master, err := c.api.CurrentMasterchainInfo(ctx)
	if err != nil {
		return nil, fmt.Errorf("masterchain info: %w", err)
	}
	blocks, err := c.api.GetBlockShardsInfo(ctx, master)
	if err != nil {
		return nil, fmt.Errorf("block shards info: %w", err)
	}

	ids := make([]shard.ID, 0, len(blocks))
	for _, b := range blocks {
		id, err := shard.Decode(b.Workchain, uint64(b.Shard))
		if err != nil {
			c.log.Warn("skipping unrecognized shard",
				zap.Int32("workchain", b.Workchain),
				zap.Int64("shard", b.Shard),
				zap.Error(err))
			continue
		}
		ids = append(ids, id)
	}
	c.log.Debug("fetched shard configuration",
		zap.Uint32("seqno", master.SeqNo),
		zap.Int("shards", len(ids)))
	return ids, nil
}
