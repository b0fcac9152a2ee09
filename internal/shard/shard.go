// Package shard encodes TON shard identifiers and decides which
// accounts fall inside them.
//
// A shard is a bit prefix of the 256-bit account id within one
// workchain. The canonical wire form is a 64-bit word carrying the
// prefix in its highest bits, followed by a single tag bit, with all
// lower bits zero. ID keeps the prefix and its bit length as separate
// fields so the matching predicate stays independent of the word
// encoding.
package shard

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math/bits"
	"strconv"
	"strings"

	"github.com/xssnick/tonutils-go/address"
)

const (
	// MaxDepth is the deepest supported shard split.
	MaxDepth = 60

	// MasterchainID and BasechainID are the recognized workchains.
	MasterchainID int32 = -1
	BasechainID   int32 = 0
)

// ErrInvalidShard means shard text or a shard word is malformed or
// out of the supported range.
var ErrInvalidShard = errors.New("invalid shard")

// ID identifies a shard by workchain, bit prefix and split depth.
// Prefix holds the top Depth bits left-aligned; lower bits are zero.
// Depth 0 is the root shard covering the whole workchain.
type ID struct {
	Workchain int32
	Prefix    uint64
	Depth     uint8
}

// New validates and builds an ID, masking Prefix to Depth bits.
func New(workchain int32, prefix uint64, depth uint8) (ID, error) {
	if depth > MaxDepth {
		return ID{}, fmt.Errorf("%w: depth %d out of range 0..%d", ErrInvalidShard, depth, MaxDepth)
	}
	if err := checkWorkchain(workchain); err != nil {
		return ID{}, err
	}
	return ID{Workchain: workchain, Prefix: prefix & prefixMask(depth), Depth: depth}, nil
}

// Root returns the depth-0 shard covering the whole workchain.
func Root(workchain int32) ID { return ID{Workchain: workchain} }

// Encode returns the canonical tagged 64-bit shard word.
func (s ID) Encode() uint64 { return s.Prefix | 1<<(63-s.Depth) }

// Decode parses a tagged 64-bit shard word.
func Decode(workchain int32, raw uint64) (ID, error) {
	if raw == 0 {
		return ID{}, fmt.Errorf("%w: zero shard word", ErrInvalidShard)
	}
	depth := 63 - uint8(bits.TrailingZeros64(raw))
	if depth > MaxDepth {
		return ID{}, fmt.Errorf("%w: depth %d out of range 0..%d", ErrInvalidShard, depth, MaxDepth)
	}
	if err := checkWorkchain(workchain); err != nil {
		return ID{}, err
	}
	return ID{Workchain: workchain, Prefix: raw ^ 1<<(63-depth), Depth: depth}, nil
}

// Of extracts the top depth bits of the account id as the address's
// shard at that subdivision depth.
func Of(addr *address.Address, depth uint8) (ID, error) {
	if depth > MaxDepth {
		return ID{}, fmt.Errorf("%w: depth %d out of range 0..%d", ErrInvalidShard, depth, MaxDepth)
	}
	data := addr.Data()
	if len(data) != 32 {
		return ID{}, fmt.Errorf("%w: account id is %d bytes, want 32", ErrInvalidShard, len(data))
	}
	top := binary.BigEndian.Uint64(data[:8])
	return ID{Workchain: addr.Workchain(), Prefix: top & prefixMask(depth), Depth: depth}, nil
}

// Matches reports whether the two shards overlap: same workchain and
// bit-identical prefixes up to the shallower depth. A root shard
// therefore matches every shard of its workchain.
func (s ID) Matches(o ID) bool {
	if s.Workchain != o.Workchain {
		return false
	}
	depth := s.Depth
	if o.Depth < depth {
		depth = o.Depth
	}
	return (s.Prefix^o.Prefix)&prefixMask(depth) == 0
}

// String renders the canonical "workchain:hex16" tagged form. It is
// the inverse of Parse.
func (s ID) String() string {
	return fmt.Sprintf("%d:%016x", s.Workchain, s.Encode())
}

// Parse accepts three notations:
//
//	[wc:]HEX        tagged shard word, short hex right-padded ("0:a000000000000000", "a8")
//	wc:pBITS        explicit bit prefix ("0:p10110100"); 'p' avoids clashing with hex digits
//	wc:INDEX/DEPTH  decimal shard index at a split depth ("0:5/3")
//
// The workchain defaults to the basechain when omitted.
func Parse(text string) (ID, error) {
	workchain := BasechainID
	body := text
	if i := strings.LastIndexByte(text, ':'); i >= 0 {
		w, err := strconv.ParseInt(text[:i], 10, 32)
		if err != nil {
			return ID{}, fmt.Errorf("%w: bad workchain %q", ErrInvalidShard, text[:i])
		}
		workchain = int32(w)
		body = text[i+1:]
	}
	if err := checkWorkchain(workchain); err != nil {
		return ID{}, err
	}

	switch {
	case body == "":
		return ID{}, fmt.Errorf("%w: empty shard", ErrInvalidShard)
	case body[0] == 'p':
		return parseBits(workchain, body[1:])
	case strings.ContainsRune(body, '/'):
		return parseIndex(workchain, body)
	default:
		return parseWord(workchain, body)
	}
}

func parseWord(workchain int32, body string) (ID, error) {
	if len(body) > 16 {
		return ID{}, fmt.Errorf("%w: shard word %q longer than 16 hex digits", ErrInvalidShard, body)
	}
	v, err := strconv.ParseUint(body, 16, 64)
	if err != nil {
		return ID{}, fmt.Errorf("%w: bad shard word %q", ErrInvalidShard, body)
	}
	return Decode(workchain, v<<(4*(16-len(body))))
}

func parseBits(workchain int32, body string) (ID, error) {
	if len(body) > MaxDepth {
		return ID{}, fmt.Errorf("%w: prefix %q longer than %d bits", ErrInvalidShard, body, MaxDepth)
	}
	var prefix uint64
	for i, c := range body {
		switch c {
		case '1':
			prefix |= 1 << (63 - i)
		case '0':
		default:
			return ID{}, fmt.Errorf("%w: bad prefix bit %q", ErrInvalidShard, string(c))
		}
	}
	return ID{Workchain: workchain, Prefix: prefix, Depth: uint8(len(body))}, nil
}

func parseIndex(workchain int32, body string) (ID, error) {
	idxText, depthText, _ := strings.Cut(body, "/")
	idx, err := strconv.ParseUint(idxText, 10, 64)
	if err != nil {
		return ID{}, fmt.Errorf("%w: bad shard index %q", ErrInvalidShard, idxText)
	}
	depth, err := strconv.ParseUint(depthText, 10, 8)
	if err != nil || depth > MaxDepth {
		return ID{}, fmt.Errorf("%w: bad depth %q", ErrInvalidShard, depthText)
	}
	if depth == 0 {
		if idx != 0 {
			return ID{}, fmt.Errorf("%w: index %d at depth 0", ErrInvalidShard, idx)
		}
		return Root(workchain), nil
	}
	if idx >= 1<<depth {
		return ID{}, fmt.Errorf("%w: index %d out of range at depth %d", ErrInvalidShard, idx, depth)
	}
	return ID{Workchain: workchain, Prefix: idx << (64 - depth), Depth: uint8(depth)}, nil
}

func checkWorkchain(workchain int32) error {
	if workchain != BasechainID && workchain != MasterchainID {
		return fmt.Errorf("%w: unknown workchain %d", ErrInvalidShard, workchain)
	}
	return nil
}

func prefixMask(depth uint8) uint64 {
	if depth == 0 {
		return 0
	}
	return ^uint64(0) << (64 - depth)
}
