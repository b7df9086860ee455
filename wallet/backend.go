package wallet

import (
	"errors"
	"io"

	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"golang.org/x/crypto/blake2b"
	"perun.network/go-perun/wallet"
)

type backend struct {
}

var Backend = backend{}

func init() {
	wallet.SetBackend(Backend)
}

func (b backend) NewAddress() wallet.Address {
	return &Address{}
}

// DecodeSig reads a padded DER signature of PaddedSignatureLength bytes. The
// padding is kept, VerifySignature strips it.
func (b backend) DecodeSig(reader io.Reader) (wallet.Sig, error) {
	sig := make([]byte, PaddedSignatureLength)
	if _, err := io.ReadFull(reader, sig); err != nil {
		return nil, err
	}
	return sig, nil
}

// VerifySignature checks a padded signature over the blake2b-256 digest of
// msg against the public key of a.
func (b backend) VerifySignature(msg []byte, sig wallet.Sig, a wallet.Address) (bool, error) {
	addr, ok := a.(*Address)
	if !ok {
		return false, errors.New("address is not of type Address")
	}
	if addr.PubKey == nil {
		return false, errors.New("public key is nil")
	}
	der, err := RemovePadding(sig)
	if err != nil {
		return false, err
	}
	signature, err := ecdsa.ParseDERSignature(der)
	if err != nil {
		return false, err
	}
	hash := blake2b.Sum256(msg)
	return signature.Verify(hash[:], addr.PubKey), nil
}
