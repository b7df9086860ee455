package channel

import (
	"encoding/binary"

	"perun.network/go-perun/wallet"
	"perun.network/perun-btc-paychan/transaction"
)

// Receipt acknowledges the payment a provider accepted. The payer keeps the
// latest receipt as proof of which payment the provider will settle.
type Receipt struct {
	ChannelID transaction.ID
	Sequence  uint32
	Amount    int64
	Sig       wallet.Sig
}

// Bytes returns the signed part of the receipt:
// channel id | sequence (big endian uint32) | amount (big endian int64).
func (r *Receipt) Bytes() []byte {
	data := make([]byte, len(r.ChannelID)+4+8)
	n := copy(data, r.ChannelID[:])
	binary.BigEndian.PutUint32(data[n:], r.Sequence)
	binary.BigEndian.PutUint64(data[n+4:], uint64(r.Amount))
	return data
}

func (r *Receipt) sign(acc wallet.Account) error {
	sig, err := acc.SignData(r.Bytes())
	if err != nil {
		return err
	}
	r.Sig = sig
	return nil
}

// Verify checks the receipt signature against the provider address.
func (r *Receipt) Verify(addr wallet.Address) (bool, error) {
	return wallet.VerifySignature(r.Bytes(), r.Sig, addr)
}
