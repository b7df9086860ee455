package backend

import (
	"bytes"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/pkg/errors"
)

// VerifyFlags are the script rules a channel input must satisfy.
const VerifyFlags = txscript.ScriptBip16 |
	txscript.ScriptVerifyStrictEncoding |
	txscript.ScriptVerifyMinimalData |
	txscript.ScriptVerifySigPushOnly

// SortKeys returns the serialized compressed keys in the order they appear in
// the redeem script.
func SortKeys(a, b *btcec.PublicKey) [2][]byte {
	aPub, bPub := a.SerializeCompressed(), b.SerializeCompressed()
	if bytes.Compare(aPub, bPub) == 1 {
		aPub, bPub = bPub, aPub
	}
	return [2][]byte{aPub, bPub}
}

// MultiSigScript generates the 2-of-2 redeem script over both channel keys.
// Keys are sorted lexicographically, so the script does not depend on which
// party is passed first.
func MultiSigScript(a, b *btcec.PublicKey) ([]byte, error) {
	keys := SortKeys(a, b)
	bldr := txscript.NewScriptBuilder()
	bldr.AddOp(txscript.OP_2)
	bldr.AddData(keys[0])
	bldr.AddData(keys[1])
	bldr.AddOp(txscript.OP_2)
	bldr.AddOp(txscript.OP_CHECKMULTISIG)
	return bldr.Script()
}

// ScriptHashAddress returns the P2SH address paying to the redeem script.
func ScriptHashAddress(redeemScript []byte, net *chaincfg.Params) (*btcutil.AddressScriptHash, error) {
	return btcutil.NewAddressScriptHash(redeemScript, net)
}

// ScriptHashPkScript generates the P2SH output script paying to redeemScript.
func ScriptHashPkScript(redeemScript []byte) ([]byte, error) {
	bldr := txscript.NewScriptBuilder()
	bldr.AddOp(txscript.OP_HASH160)
	bldr.AddData(btcutil.Hash160(redeemScript))
	bldr.AddOp(txscript.OP_EQUAL)
	return bldr.Script()
}

// PkScriptAddress returns the single address an output script pays to, or nil
// for non-standard and multi-address scripts.
func PkScriptAddress(pkScript []byte, net *chaincfg.Params) btcutil.Address {
	_, addrs, _, err := txscript.ExtractPkScriptAddrs(pkScript, net)
	if err != nil || len(addrs) != 1 {
		return nil
	}
	return addrs[0]
}

// VerifyInput runs the script engine on input idx of tx against the output
// script it spends.
func VerifyInput(tx *wire.MsgTx, idx int, pkScript []byte, value int64) error {
	fetcher := txscript.NewCannedPrevOutputFetcher(pkScript, value)
	vm, err := txscript.NewEngine(pkScript, tx, idx, VerifyFlags, nil,
		txscript.NewTxSigHashes(tx, fetcher), value, fetcher)
	if err != nil {
		return errors.Wrap(err, "creating script engine")
	}
	return vm.Execute()
}
