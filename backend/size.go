package backend

const (
	// MultiSigSize is the size of a 2-of-2 redeem script over compressed keys:
	// OP_2 + 2 * (OP_DATA_33 + 33) + OP_2 + OP_CHECKMULTISIG.
	MultiSigSize = 1 + 2*(1+33) + 1 + 1

	// P2SHSize is the size of a pay-to-script-hash output script:
	// OP_HASH160 + OP_DATA_20 + 20 + OP_EQUAL.
	P2SHSize = 1 + 1 + 20 + 1

	// MaxSignatureSize is the size of a DER signature with sighash byte in
	// the worst case.
	MaxSignatureSize = 73

	// MultiSigScriptSigSize is the upper bound for the signature script of a
	// fully signed 2-of-2 P2SH input:
	// OP_0 + 2 * (push + sig) + push + redeem script.
	MultiSigScriptSigSize = 1 + 2*(1+MaxSignatureSize) + 1 + MultiSigSize

	// BaseTxSize is the serialized size of version and lock time.
	BaseTxSize = 4 + 4

	// OutPointSize is the size of a previous outpoint: hash + index.
	OutPointSize = 32 + 4
)
