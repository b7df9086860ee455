package backend

import (
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
)

type Signer interface {
	// SignInput returns the signature (with sighash byte) for input idx of tx
	// spending an output locked by redeemScript.
	SignInput(tx *wire.MsgTx, idx int, redeemScript []byte) ([]byte, error)
	// PubKey returns the public key of the signer.
	PubKey() *btcec.PublicKey
}

// LocalSigner signs with a private key held in memory. Signatures are
// deterministic (RFC6979), so signing the same transaction twice yields the
// same bytes.
type LocalSigner struct {
	key *btcec.PrivateKey
}

var _ Signer = (*LocalSigner)(nil)

func NewSigner(key *btcec.PrivateKey) *LocalSigner {
	return &LocalSigner{key: key}
}

func (s LocalSigner) SignInput(tx *wire.MsgTx, idx int, redeemScript []byte) ([]byte, error) {
	return txscript.RawTxInSignature(tx, idx, redeemScript, txscript.SigHashAll, s.key)
}

func (s LocalSigner) PubKey() *btcec.PublicKey {
	return s.key.PubKey()
}
