package test

import (
	"math/rand"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"perun.network/perun-btc-paychan/wallet"
)

// NewRandomKey derives a private key from rng, so failing tests can be
// reproduced from their seed.
func NewRandomKey(rng *rand.Rand) *secp256k1.PrivateKey {
	for {
		var b [32]byte
		rng.Read(b[:])
		var s secp256k1.ModNScalar
		if overflow := s.SetBytes(&b); overflow == 0 && !s.IsZero() {
			return secp256k1.NewPrivateKey(&s)
		}
	}
}

func NewRandomAccount(rng *rand.Rand) *wallet.Account {
	return wallet.NewAccountFromKey(NewRandomKey(rng))
}
