// Package keygen derives TON wallet keys from randomly drawn mnemonics.
package keygen

import (
	"crypto/ed25519"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha512"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/tyler-smith/go-bip39"
	"golang.org/x/crypto/pbkdf2"
)

// WordCount is the number of words in a generated phrase.
const WordCount = 24

const (
	kdfIterations = 100000
	seedSalt      = "TON default seed"
	versionSalt   = "TON seed version"
)

var (
	// ErrEntropyExhausted means the underlying random source failed.
	// It is fatal and non-retryable.
	ErrEntropyExhausted = errors.New("entropy source exhausted")

	// ErrInvalidMnemonic means a phrase failed dictionary or seed checks.
	ErrInvalidMnemonic = errors.New("invalid mnemonic")
)

// Mnemonic is an ordered 24-word phrase.
type Mnemonic []string

func (m Mnemonic) String() string { return strings.Join(m, " ") }

// Seed is the 32-byte ed25519 seed derived from a mnemonic.
type Seed [32]byte

// KeyPair holds an ed25519 key pair derived from a seed.
type KeyPair struct {
	Public  ed25519.PublicKey
	Private ed25519.PrivateKey
}

// Deriver generates mnemonics from an entropy source and a wordlist.
// Both are injectable so tests can substitute deterministic ones.
type Deriver struct {
	entropy io.Reader
	words   []string
	index   map[string]struct{}
}

// NewDeriver returns a Deriver backed by crypto/rand and the BIP39
// English wordlist.
func NewDeriver() *Deriver { return NewDeriverWith(nil, nil) }

// NewDeriverWith builds a Deriver with an explicit entropy source and
// wordlist. Nil arguments fall back to the defaults of NewDeriver.
func NewDeriverWith(entropy io.Reader, wordlist []string) *Deriver {
	if entropy == nil {
		entropy = rand.Reader
	}
	if wordlist == nil {
		wordlist = bip39.GetWordList()
	}
	index := make(map[string]struct{}, len(wordlist))
	for _, w := range wordlist {
		index[w] = struct{}{}
	}
	return &Deriver{entropy: entropy, words: wordlist, index: index}
}

// NewMnemonic draws 24 random dictionary words and retries until the
// phrase passes the TON seed version check. Roughly 1 in 256 draws
// pass, so expect a few hundred iterations per call.
func (d *Deriver) NewMnemonic() (Mnemonic, error) {
	buf := make([]byte, 2*WordCount)
	for {
		if _, err := io.ReadFull(d.entropy, buf); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrEntropyExhausted, err)
		}
		m := make(Mnemonic, WordCount)
		for i := range m {
			// 2048 words divide 65536 evenly, so there is no modulo bias
			m[i] = d.words[int(binary.BigEndian.Uint16(buf[2*i:]))%len(d.words)]
		}
		if isBasicSeed(hmacEntropy(m)) {
			return m, nil
		}
	}
}

// Validate checks that every word is in the dictionary and that the
// phrase passes the seed version check. Passphrase-less phrases only.
func (d *Deriver) Validate(m Mnemonic) error {
	if len(m) != WordCount {
		return fmt.Errorf("%w: got %d words, want %d", ErrInvalidMnemonic, len(m), WordCount)
	}
	for _, w := range m {
		if _, ok := d.index[w]; !ok {
			return fmt.Errorf("%w: unknown word %q", ErrInvalidMnemonic, w)
		}
	}
	if !isBasicSeed(hmacEntropy(m)) {
		return fmt.Errorf("%w: seed version check failed", ErrInvalidMnemonic)
	}
	return nil
}

// DeriveSeed runs the TON key derivation over a phrase. The same
// phrase always yields the same seed.
func DeriveSeed(m Mnemonic) Seed {
	var s Seed
	copy(s[:], pbkdf2.Key(hmacEntropy(m), []byte(seedSalt), kdfIterations, len(s), sha512.New))
	return s
}

// DeriveKeyPair expands a seed into an ed25519 key pair.
func DeriveKeyPair(s Seed) KeyPair {
	priv := ed25519.NewKeyFromSeed(s[:])
	return KeyPair{Public: priv.Public().(ed25519.PublicKey), Private: priv}
}

// hmacEntropy computes HMAC-SHA512 keyed by the phrase over an empty
// passphrase, the common input of both PBKDF2 stages.
func hmacEntropy(m Mnemonic) []byte {
	mac := hmac.New(sha512.New, []byte(m.String()))
	return mac.Sum(nil)
}

func isBasicSeed(entropy []byte) bool {
	p := pbkdf2.Key(entropy, []byte(versionSalt), kdfIterations/256, 64, sha512.New)
	return p[0] == 0
}
