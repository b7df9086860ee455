package transaction

import (
	"github.com/btcsuite/btcd/wire"
	"perun.network/perun-btc-paychan/backend"
)

const (
	// DustThreshold is the smallest value an output may carry.
	DustThreshold int64 = 546

	// MaxFeeIterations bounds the fee selection loop of a payment.
	MaxFeeIterations = 8

	// bytesPerKb is the unit of fee rates.
	bytesPerKb = 1024
)

// FeeForSize returns the fee for a transaction of size bytes at feePerKb,
// truncated to whole satoshis.
func FeeForSize(size int, feePerKb int64) int64 {
	return int64(size) * feePerKb / bytesPerKb
}

// FeeWithinBand reports whether fee lies in [target, 1.1 * target) where
// target is FeeForSize(size, feePerKb). A fee equal to the target is always
// accepted, which covers a zero target.
func FeeWithinBand(fee int64, size int, feePerKb int64) bool {
	target := FeeForSize(size, feePerKb)
	if fee == target {
		return true
	}
	return fee > target && fee*10 < target*11
}

// estimateSize returns the serialized size of a transaction spending the
// funding input, fully signed, with outputs paying to pkScripts.
func estimateSize(pkScripts ...[]byte) int {
	size := backend.BaseTxSize +
		wire.VarIntSerializeSize(1) +
		backend.OutPointSize +
		wire.VarIntSerializeSize(backend.MultiSigScriptSigSize) +
		backend.MultiSigScriptSigSize +
		4 // sequence
	size += wire.VarIntSerializeSize(uint64(len(pkScripts)))
	for _, pkScript := range pkScripts {
		size += wire.NewTxOut(0, pkScript).SerializeSize()
	}
	return size
}
