// Package search brute-forces fresh wallets until one lands in a
// target shard.
package search

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"runtime"
	"sync/atomic"
	"time"

	"tonshard/internal/account"
	"tonshard/internal/keygen"
	"tonshard/internal/shard"

	"github.com/xssnick/tonutils-go/address"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrCancelled means the search was stopped by deadline or
	// interrupt before a match was found.
	ErrCancelled = errors.New("search cancelled")

	// ErrAttemptsExhausted means a configured attempt budget ran out.
	ErrAttemptsExhausted = errors.New("attempt budget exhausted")
)

// errFound unwinds the worker group once a candidate is claimed.
var errFound = errors.New("candidate found")

// Result is the single surviving candidate of a search. The caller
// owns it exclusively; rejected candidates are never retained.
type Result struct {
	Mnemonic keygen.Mnemonic
	Address  *address.Address
}

// Config tunes a search engine.
type Config struct {
	// Workers is the number of concurrent generators. 0 means one
	// per available CPU.
	Workers int

	// Entropy builds the per-worker randomness source. Nil means
	// crypto/rand for every worker.
	Entropy func() io.Reader

	// Wordlist overrides the mnemonic dictionary. Nil means the
	// BIP39 English list.
	Wordlist []string

	// MaxAttempts bounds the total candidates tried. 0 means
	// unbounded; the expected count is about 2^depth.
	MaxAttempts int64

	// ProgressInterval enables periodic attempt-rate logging when
	// positive.
	ProgressInterval time.Duration

	Logger *zap.Logger
}

// Stats reports search progress counters.
type Stats struct {
	Attempts int64
}

// Engine runs concurrent derive-and-check loops. Each worker owns an
// independent derivation pipeline; the only shared state is the
// attempt counter and the claim-once result slot.
type Engine struct {
	cfg      Config
	attempts atomic.Int64
}

// New builds an engine, applying defaults for unset config fields.
func New(cfg Config) *Engine {
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	if cfg.Entropy == nil {
		cfg.Entropy = func() io.Reader { return rand.Reader }
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Engine{cfg: cfg}
}

// Stats returns counters for the current or last Find call.
func (e *Engine) Stats() Stats {
	return Stats{Attempts: e.attempts.Load()}
}

// Find generates fresh key pairs until one yields an address whose
// shard at the given depth matches target, and returns it. The first
// worker to claim a match wins; the others stop within one iteration.
// On cancellation it returns ErrCancelled and no partial result.
func (e *Engine) Find(ctx context.Context, target shard.ID, depth uint8) (*Result, error) {
	if depth > shard.MaxDepth {
		return nil, fmt.Errorf("%w: depth %d out of range 0..%d", shard.ErrInvalidShard, depth, shard.MaxDepth)
	}
	e.attempts.Store(0)

	g, ctx := errgroup.WithContext(ctx)

	var claimed atomic.Bool
	var result *Result // written once by the claiming worker

	if e.cfg.ProgressInterval > 0 {
		g.Go(func() error {
			e.report(ctx)
			return nil
		})
	}

	for i := 0; i < e.cfg.Workers; i++ {
		g.Go(func() error {
			deriver := keygen.NewDeriverWith(e.cfg.Entropy(), e.cfg.Wordlist)
			for {
				select {
				case <-ctx.Done():
					return ctx.Err()
				default:
				}
				if e.cfg.MaxAttempts > 0 && e.attempts.Load() >= e.cfg.MaxAttempts {
					return ErrAttemptsExhausted
				}

				m, err := deriver.NewMnemonic()
				if err != nil {
					return err
				}
				kp := keygen.DeriveKeyPair(keygen.DeriveSeed(m))
				addr, err := account.Compute(kp.Public, target.Workchain)
				if err != nil {
					return err
				}
				e.attempts.Add(1)

				at, err := shard.Of(addr, depth)
				if err != nil {
					return err
				}
				if !at.Matches(target) {
					continue
				}
				if claimed.CompareAndSwap(false, true) {
					result = &Result{Mnemonic: m, Address: addr}
				}
				return errFound
			}
		})
	}

	err := g.Wait()
	if claimed.Load() {
		return result, nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil, fmt.Errorf("%w: %v", ErrCancelled, err)
	}
	return nil, err
}

func (e *Engine) report(ctx context.Context) {
	ticker := time.NewTicker(e.cfg.ProgressInterval)
	defer ticker.Stop()

	var last int64
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cur := e.attempts.Load()
			e.cfg.Logger.Info("searching",
				zap.Int64("attempts", cur),
				zap.Float64("rate", float64(cur-last)/e.cfg.ProgressInterval.Seconds()))
			last = cur
		}
	}
}
