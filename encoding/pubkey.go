package encoding

import (
	"encoding/hex"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/pkg/errors"
)

func EncodePubKey(key *btcec.PublicKey) string {
	return hex.EncodeToString(key.SerializeCompressed())
}

func DecodePubKey(s string) (*btcec.PublicKey, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, errors.Wrap(err, "decoding public key hex")
	}
	return btcec.ParsePubKey(b)
}

// DecodePubKeyPair decodes the payer and provider keys of a record.
func DecodePubKeyPair(keys []string) (payer, provider *btcec.PublicKey, err error) {
	if len(keys) != 2 {
		return nil, nil, errors.Errorf("expected 2 public keys, got %d", len(keys))
	}
	if payer, err = DecodePubKey(keys[0]); err != nil {
		return nil, nil, errors.Wrap(err, "payer key")
	}
	if provider, err = DecodePubKey(keys[1]); err != nil {
		return nil, nil, errors.Wrap(err, "provider key")
	}
	return payer, provider, nil
}
