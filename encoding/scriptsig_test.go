package encoding_test

import (
	"testing"

	"github.com/btcsuite/btcd/txscript"
	"github.com/stretchr/testify/require"
	"perun.network/perun-btc-paychan/encoding"
	ptest "polycry.pt/poly-go/test"
)

func TestMultiSigScriptSig(t *testing.T) {
	rng := ptest.Prng(t)
	redeemScript := make([]byte, 71)
	rng.Read(redeemScript)
	sig := func() []byte {
		s := make([]byte, 70+rng.Intn(3))
		rng.Read(s)
		return s
	}

	for name, sigs := range map[string][2][]byte{
		"unsigned": {},
		"first":    {sig(), nil},
		"second":   {nil, sig()},
		"both":     {sig(), sig()},
	} {
		t.Run(name, func(t *testing.T) {
			script, err := encoding.PackMultiSigScriptSig(sigs, redeemScript)
			require.NoError(t, err)
			require.True(t, txscript.IsPushOnlyScript(script))

			got, redeem, err := encoding.UnpackMultiSigScriptSig(script)
			require.NoError(t, err)
			require.Equal(t, redeemScript, redeem)
			for i := range sigs {
				require.Equal(t, len(sigs[i]) == 0, len(got[i]) == 0)
				if len(sigs[i]) > 0 {
					require.Equal(t, sigs[i], got[i])
				}
			}
		})
	}
}

func TestUnpackMultiSigScriptSig_Malformed(t *testing.T) {
	sigs, redeem, err := encoding.UnpackMultiSigScriptSig(nil)
	require.NoError(t, err)
	require.Nil(t, redeem)
	require.Equal(t, [2][]byte{}, sigs)

	for name, script := range map[string][]byte{
		"non-push":    {txscript.OP_0, txscript.OP_0, txscript.OP_0, txscript.OP_CHECKSIG},
		"three items": {txscript.OP_0, txscript.OP_0, txscript.OP_0},
		"no dummy":    {txscript.OP_DATA_1, 0x01, txscript.OP_0, txscript.OP_0, txscript.OP_0},
		"truncated":   {txscript.OP_0, txscript.OP_DATA_2, 0x01},
	} {
		_, _, err := encoding.UnpackMultiSigScriptSig(script)
		require.Error(t, err, name)
	}
}
