package wallet

import (
	"encoding/hex"
	"errors"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"perun.network/go-perun/wallet"
)

const CompressedPublicKeyLength = 33

// Address identifies a channel participant by its compressed public key.
type Address struct {
	PubKey *secp256k1.PublicKey
}

func (a Address) MarshalBinary() (data []byte, err error) {
	if a.PubKey == nil {
		return nil, errors.New("public key is nil")
	}
	return a.PubKey.SerializeCompressed(), nil
}

func (a *Address) UnmarshalBinary(data []byte) error {
	if len(data) != CompressedPublicKeyLength {
		return errors.New("invalid public key length")
	}
	pubKey, err := secp256k1.ParsePubKey(data)
	if err != nil {
		return err
	}
	a.PubKey = pubKey
	return nil
}

func (a Address) String() string {
	if a.PubKey == nil {
		return ""
	}
	return hex.EncodeToString(a.PubKey.SerializeCompressed())
}

func (a Address) Equal(address wallet.Address) bool {
	addr, ok := address.(*Address)
	if !ok || addr.PubKey == nil || a.PubKey == nil {
		return false
	}
	return a.PubKey.IsEqual(addr.PubKey)
}
