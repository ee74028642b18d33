package account

import (
	"encoding/hex"
	"errors"

	"golang.org/x/crypto/blake2b"
)

// TaxIDHasher produces the one-way hash stored next to a tax id
type TaxIDHasher interface {
	Hash(taxID string) string
}

// Blake2bHasher is a keyed BLAKE2b-256 TaxIDHasher
type Blake2bHasher struct {
	key []byte
}

// NewBlake2bHasher creates a hasher keyed with pepper (at most 64 bytes)
func NewBlake2bHasher(pepper string) (*Blake2bHasher, error) {
	if len(pepper) > blake2b.Size {
		return nil, errors.New("tax id pepper must be at most 64 bytes")
	}
	return &Blake2bHasher{key: []byte(pepper)}, nil
}

// Hash implements TaxIDHasher. Input is normalized first so that
// formatting differences hash to the same value.
func (h *Blake2bHasher) Hash(taxID string) string {
	mac, err := blake2b.New256(h.key)
	if err != nil {
		// key length is checked in the constructor
		panic(err)
	}
	mac.Write([]byte(NormalizeTaxID(taxID)))
	return hex.EncodeToString(mac.Sum(nil))
}
