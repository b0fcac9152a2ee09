package shard

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecodeEncodeRoundTrip(t *testing.T) {
	cases := []struct {
		raw    uint64
		prefix uint64
		depth  uint8
	}{
		{0x8000000000000000, 0, 0},
		{0x2000000000000000, 0x0000000000000000, 2},
		{0x6000000000000000, 0x4000000000000000, 2},
		{0xa000000000000000, 0x8000000000000000, 2},
		{0xe000000000000000, 0xc000000000000000, 2},
		{0xb480000000000000, 0xb400000000000000, 8},
	}
	for _, tc := range cases {
		id, err := Decode(0, tc.raw)
		require.NoError(t, err)
		require.Equal(t, tc.prefix, id.Prefix, "raw %016x", tc.raw)
		require.Equal(t, tc.depth, id.Depth, "raw %016x", tc.raw)
		require.Equal(t, tc.raw, id.Encode(), "raw %016x", tc.raw)
	}
}

func TestDecodeRejects(t *testing.T) {
	_, err := Decode(0, 0)
	require.ErrorIs(t, err, ErrInvalidShard)

	// tag bit deeper than the supported split depth
	_, err = Decode(0, 1)
	require.ErrorIs(t, err, ErrInvalidShard)

	_, err = Decode(7, 0x8000000000000000)
	require.ErrorIs(t, err, ErrInvalidShard)
}

func TestParseForms(t *testing.T) {
	cases := []struct {
		text string
		want ID
	}{
		{"0:a000000000000000", ID{Workchain: 0, Prefix: 0x8000000000000000, Depth: 2}},
		{"a000000000000000", ID{Workchain: 0, Prefix: 0x8000000000000000, Depth: 2}},
		{"a", ID{Workchain: 0, Prefix: 0x8000000000000000, Depth: 2}},
		{"-1:8000000000000000", ID{Workchain: -1, Prefix: 0, Depth: 0}},
		{"0:p10110100", ID{Workchain: 0, Prefix: 0xb400000000000000, Depth: 8}},
		{"0:p", ID{Workchain: 0, Prefix: 0, Depth: 0}},
		{"0:5/3", ID{Workchain: 0, Prefix: 0xa000000000000000, Depth: 3}},
		{"0:0/0", ID{Workchain: 0, Prefix: 0, Depth: 0}},
	}
	for _, tc := range cases {
		got, err := Parse(tc.text)
		require.NoError(t, err, "input %q", tc.text)
		require.Equal(t, tc.want, got, "input %q", tc.text)
	}
}

func TestParseRejects(t *testing.T) {
	for _, text := range []string{
		"",
		"0:",
		"0:xyz",
		"0:123456789012345678",
		"0:0",
		"0:p102",
		"0:8/3",
		"0:1/0",
		"0:0/61",
		"2:a000000000000000",
		"one:a000000000000000",
	} {
		_, err := Parse(text)
		require.ErrorIs(t, err, ErrInvalidShard, "input %q", text)
	}
}

func TestStringRoundTrip(t *testing.T) {
	for _, text := range []string{"0:a000000000000000", "-1:8000000000000000", "0:b480000000000000"} {
		id, err := Parse(text)
		require.NoError(t, err)
		back, err := Parse(id.String())
		require.NoError(t, err)
		require.Equal(t, id, back)
		require.Equal(t, text, id.String())
	}
}

func TestNewMasksPrefix(t *testing.T) {
	id, err := New(0, 0xffffffffffffffff, 2)
	require.NoError(t, err)
	require.Equal(t, uint64(0xc000000000000000), id.Prefix)

	_, err = New(0, 0, 61)
	require.ErrorIs(t, err, ErrInvalidShard)
	_, err = New(3, 0, 2)
	require.ErrorIs(t, err, ErrInvalidShard)
}

// Vectors taken from live testnet state with four basechain shards.
func TestLocateAgainstNetworkShards(t *testing.T) {
	netShards := make([]ID, 0, 4)
	for _, raw := range []uint64{
		0x2000000000000000,
		0x6000000000000000,
		0xa000000000000000,
		0xe000000000000000,
	} {
		id, err := Decode(0, raw)
		require.NoError(t, err)
		netShards = append(netShards, id)
	}

	cases := []struct {
		addr string
		want uint64
	}{
		{"0:af78316b56ee5f7e88f3558ad3b5ebbafd49304249e48dd33c9f27e63b7c8fe7", 0xa000000000000000},
		{"0:80fa1ebdd70277ca902d52cb2007cf910ca572b80f7c186fbb86e116cf4c66ba", 0xa000000000000000},
		{"0:923150e0c668cb309dc3d43449be197e17f5095378260e7715e278eaa80941ab", 0xa000000000000000},
		{"0:684c17d1138bcd4355aa88cc30dacba8cda4d8f3de4392cb5a7f4bec030190af", 0x6000000000000000},
		{"0:51cca3ff74207b3ed8f075740b126c320e795ec4f19f70b80d9cf919fc292594", 0x6000000000000000},
		{"0:b19a8a1821d01279aeb98e84a2ed002e4a30633264702b1059cebe73100d6b95", 0xa000000000000000},
	}
	for _, tc := range cases {
		id, err := Locate(tc.addr, 2)
		require.NoError(t, err, "address %s", tc.addr)
		require.Equal(t, tc.want, id.Encode(), "address %s", tc.addr)

		got, ok, err := ResolveIn(netShards, tc.addr)
		require.NoError(t, err)
		require.True(t, ok, "address %s", tc.addr)
		require.Equal(t, tc.want, got.Encode(), "address %s", tc.addr)
	}
}

func TestResolveInNoCover(t *testing.T) {
	only, err := Decode(0, 0xe000000000000000)
	require.NoError(t, err)

	_, ok, err := ResolveIn([]ID{only}, "0:51cca3ff74207b3ed8f075740b126c320e795ec4f19f70b80d9cf919fc292594")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestLocateRejectsBadInput(t *testing.T) {
	_, err := Locate("garbage", 2)
	require.Error(t, err)

	_, err = Locate("0:51cca3ff74207b3ed8f075740b126c320e795ec4f19f70b80d9cf919fc292594", 61)
	require.ErrorIs(t, err, ErrInvalidShard)
}

func TestMatchesRootUniversal(t *testing.T) {
	addrs := []string{
		"0:af78316b56ee5f7e88f3558ad3b5ebbafd49304249e48dd33c9f27e63b7c8fe7",
		"0:51cca3ff74207b3ed8f075740b126c320e795ec4f19f70b80d9cf919fc292594",
	}
	for _, addr := range addrs {
		for depth := uint8(0); depth <= MaxDepth; depth += 10 {
			id, err := Locate(addr, depth)
			require.NoError(t, err)
			require.True(t, id.Matches(Root(0)), "address %s depth %d", addr, depth)
			require.True(t, Root(0).Matches(id), "address %s depth %d", addr, depth)
		}
	}
}

func TestMatchesPrefixMonotonic(t *testing.T) {
	const addr = "0:af78316b56ee5f7e88f3558ad3b5ebbafd49304249e48dd33c9f27e63b7c8fe7"

	target, err := Locate(addr, 16)
	require.NoError(t, err)
	for depth := uint8(0); depth <= 16; depth++ {
		at, err := Locate(addr, depth)
		require.NoError(t, err)
		require.True(t, at.Matches(target), "depth %d", depth)
	}
}

func TestMatchesEqualDepth(t *testing.T) {
	a := ID{Workchain: 0, Prefix: 0xb400000000000000, Depth: 8}
	b := ID{Workchain: 0, Prefix: 0xb400000000000000, Depth: 8}
	c := ID{Workchain: 0, Prefix: 0xb500000000000000, Depth: 8}
	other := ID{Workchain: -1, Prefix: 0xb400000000000000, Depth: 8}

	require.True(t, a.Matches(b))
	require.False(t, a.Matches(c))
	require.False(t, a.Matches(other))
}
