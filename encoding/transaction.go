package encoding

import (
	"bytes"
	"encoding/hex"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/pkg/errors"
)

func EncodeTx(tx *wire.MsgTx) (string, error) {
	var buf bytes.Buffer
	buf.Grow(tx.SerializeSize())
	if err := tx.Serialize(&buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf.Bytes()), nil
}

func DecodeTx(s string) (*wire.MsgTx, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, errors.Wrap(err, "decoding transaction hex")
	}
	tx := wire.NewMsgTx(wire.TxVersion)
	if err := tx.Deserialize(bytes.NewReader(b)); err != nil {
		return nil, errors.Wrap(err, "deserializing transaction")
	}
	return tx, nil
}

// EncodeOutPoint builds the record of a funding output.
func EncodeOutPoint(op wire.OutPoint, pkScript []byte, value int64) OutPointRecord {
	return OutPointRecord{
		TxID:     op.Hash.String(),
		Index:    op.Index,
		Script:   hex.EncodeToString(pkScript),
		Satoshis: value,
	}
}

func DecodeOutPoint(r OutPointRecord) (op wire.OutPoint, pkScript []byte, err error) {
	hash, err := chainhash.NewHashFromStr(r.TxID)
	if err != nil {
		return op, nil, errors.Wrap(err, "decoding txid")
	}
	pkScript, err = hex.DecodeString(r.Script)
	if err != nil {
		return op, nil, errors.Wrap(err, "decoding output script")
	}
	return *wire.NewOutPoint(hash, r.Index), pkScript, nil
}
