package encoding

import (
	"github.com/btcsuite/btcd/txscript"
	"github.com/pkg/errors"
)

// PackMultiSigScriptSig builds the signature script of a 2-of-2 P2SH input.
// sigs follow the key order of the redeem script; a missing signature is
// encoded as an OP_0 placeholder so partially signed inputs survive a round
// trip through the raw transaction.
func PackMultiSigScriptSig(sigs [2][]byte, redeemScript []byte) ([]byte, error) {
	bldr := txscript.NewScriptBuilder()
	// OP_CHECKMULTISIG pops one element too many.
	bldr.AddOp(txscript.OP_0)
	for _, sig := range sigs {
		if len(sig) == 0 {
			bldr.AddOp(txscript.OP_0)
			continue
		}
		bldr.AddData(sig)
	}
	bldr.AddData(redeemScript)
	return bldr.Script()
}

// UnpackMultiSigScriptSig is the inverse of PackMultiSigScriptSig. An empty
// script yields no signatures.
func UnpackMultiSigScriptSig(script []byte) (sigs [2][]byte, redeemScript []byte, err error) {
	if len(script) == 0 {
		return sigs, nil, nil
	}
	var pushes [][]byte
	tokenizer := txscript.MakeScriptTokenizer(0, script)
	for tokenizer.Next() {
		op := tokenizer.Opcode()
		if op > txscript.OP_PUSHDATA4 {
			return sigs, nil, errors.Errorf("non-push opcode %#x in signature script", op)
		}
		pushes = append(pushes, tokenizer.Data())
	}
	if err := tokenizer.Err(); err != nil {
		return sigs, nil, errors.Wrap(err, "parsing signature script")
	}
	if len(pushes) != 4 || len(pushes[0]) != 0 {
		return sigs, nil, errors.Errorf("malformed multisig signature script with %d pushes", len(pushes))
	}
	sigs[0], sigs[1] = pushes[1], pushes[2]
	return sigs, pushes[3], nil
}
