package backend_test

import (
	"testing"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/stretchr/testify/require"
	"perun.network/perun-btc-paychan/backend"
	wtest "perun.network/perun-btc-paychan/wallet/test"
	ptest "polycry.pt/poly-go/test"
)

func TestLocalSigner(t *testing.T) {
	rng := ptest.Prng(t)
	key, other := wtest.NewRandomKey(rng), wtest.NewRandomKey(rng)
	signer := backend.NewSigner(key)
	require.True(t, signer.PubKey().IsEqual(key.PubKey()))

	redeemScript, err := backend.MultiSigScript(key.PubKey(), other.PubKey())
	require.NoError(t, err)
	var hash chainhash.Hash
	rng.Read(hash[:])
	tx := wire.NewMsgTx(wire.TxVersion)
	tx.AddTxIn(wire.NewTxIn(wire.NewOutPoint(&hash, 0), nil, nil))
	tx.AddTxOut(wire.NewTxOut(1000, redeemScript))

	sig, err := signer.SignInput(tx, 0, redeemScript)
	require.NoError(t, err)
	require.Equal(t, byte(txscript.SigHashAll), sig[len(sig)-1])
	again, err := signer.SignInput(tx, 0, redeemScript)
	require.NoError(t, err)
	require.Equal(t, sig, again, "signatures are deterministic")

	otherSig, err := backend.NewSigner(other).SignInput(tx, 0, redeemScript)
	require.NoError(t, err)
	require.NotEqual(t, sig, otherSig)
}
