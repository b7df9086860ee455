package wallet

import (
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"golang.org/x/crypto/blake2b"
	"perun.network/go-perun/wallet"
)

// Account is a channel key. The same key signs channel transactions (through
// txscript) and off-chain messages such as payment receipts (through SignData).
type Account struct {
	key *secp256k1.PrivateKey
}

var _ wallet.Account = (*Account)(nil)

func (a Account) Address() wallet.Address {
	return &Address{PubKey: a.key.PubKey()}
}

// SignData signs the blake2b-256 digest of data. The DER signature is padded
// to PaddedSignatureLength.
func (a Account) SignData(data []byte) ([]byte, error) {
	hash := blake2b.Sum256(data)
	return PadDEREncodedSignature(ecdsa.Sign(a.key, hash[:]).Serialize())
}

// Key returns the private key backing the account.
func (a Account) Key() *secp256k1.PrivateKey {
	return a.key
}

// PayToAddress returns the pay-to-pubkey-hash address of the account on the
// given network.
func (a Account) PayToAddress(net *chaincfg.Params) (btcutil.Address, error) {
	return PubKeyHashAddress(a.key.PubKey(), net)
}

func NewAccount() (*Account, error) {
	key, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		return nil, err
	}
	return &Account{key: key}, nil
}

func NewAccountFromKey(key *secp256k1.PrivateKey) *Account {
	return &Account{key: key}
}

// PubKeyHashAddress derives the P2PKH address of a compressed public key.
func PubKeyHashAddress(pubKey *secp256k1.PublicKey, net *chaincfg.Params) (btcutil.Address, error) {
	return btcutil.NewAddressPubKeyHash(btcutil.Hash160(pubKey.SerializeCompressed()), net)
}
