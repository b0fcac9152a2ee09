// Package account maps public keys to TON wallet addresses and
// converts addresses between their textual forms.
package account

import (
	"crypto/ed25519"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/xssnick/tonutils-go/address"
	"github.com/xssnick/tonutils-go/tlb"
	"github.com/xssnick/tonutils-go/ton/wallet"
)

// ErrMalformedAddress means address text failed decoding or its
// checksum did not match.
var ErrMalformedAddress = errors.New("malformed address")

// Compute derives the wallet V4R2 address for a public key in the
// given workchain. The account id is the hash of the wallet state
// init, so identical keys always produce identical addresses.
func Compute(pub ed25519.PublicKey, workchain int32) (*address.Address, error) {
	if len(pub) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("public key is %d bytes, want %d", len(pub), ed25519.PublicKeySize)
	}
	state, err := wallet.GetStateInit(pub, wallet.V4R2, wallet.DefaultSubwallet)
	if err != nil {
		return nil, fmt.Errorf("build state init: %w", err)
	}
	stateCell, err := tlb.ToCell(state)
	if err != nil {
		return nil, fmt.Errorf("serialize state init: %w", err)
	}
	return address.NewAddress(0, byte(workchain), stateCell.Hash()), nil
}

// Parse decodes the user-friendly base64 form or the raw
// "workchain:hex" form.
func Parse(text string) (*address.Address, error) {
	text = strings.TrimSpace(text)
	if strings.ContainsRune(text, ':') {
		addr, err := address.ParseRawAddr(text)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedAddress, err)
		}
		return addr, nil
	}
	addr, err := address.ParseAddr(text)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedAddress, err)
	}
	return addr, nil
}

// Format returns the user-friendly checksummed form.
func Format(a *address.Address) string { return a.String() }

// FormatRaw returns the "workchain:hex" form accepted by Parse.
func FormatRaw(a *address.Address) string {
	return fmt.Sprintf("%d:%s", a.Workchain(), hex.EncodeToString(a.Data()))
}
