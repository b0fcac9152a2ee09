package shard

import (
	"tonshard/internal/account"
)

// Locate parses an address in either textual form and returns its
// shard at the given depth. Pure computation, no search.
func Locate(text string, depth uint8) (ID, error) {
	addr, err := account.Parse(text)
	if err != nil {
		return ID{}, err
	}
	return Of(addr, depth)
}

// ResolveIn finds which shard of a known set, typically the live
// network configuration, contains the address. The second return is
// false when no shard in the set covers it.
func ResolveIn(shards []ID, text string) (ID, bool, error) {
	addr, err := account.Parse(text)
	if err != nil {
		return ID{}, false, err
	}
	for _, s := range shards {
		at, err := Of(addr, s.Depth)
		if err != nil {
			return ID{}, false, err
		}
		if at.Matches(s) {
			return s, true, nil
		}
	}
	return ID{}, false, nil
}
