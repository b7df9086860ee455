package transaction

import (
	"bytes"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/wire"
	"github.com/pkg/errors"
	"perun.network/perun-btc-paychan/backend"
	"perun.network/perun-btc-paychan/encoding"
)

// multisigInput holds the signature shares of the funding input. Shares are
// indexed in redeem script key order.
type multisigInput struct {
	channel *ChannelParams
	keys    [2][]byte
	sigs    [2][]byte
}

func newMultisigInput(c *ChannelParams) *multisigInput {
	return &multisigInput{
		channel: c,
		keys:    backend.SortKeys(c.PayerKey, c.ProviderKey),
	}
}

// addInput appends the funding input to an empty transaction.
func (m *multisigInput) addInput(tx *wire.MsgTx, sequence uint32) {
	op := m.channel.Funding.OutPoint
	in := wire.NewTxIn(&op, nil, nil)
	in.Sequence = sequence
	tx.AddTxIn(in)
}

// checkInput ensures tx spends exactly the funding output.
func (m *multisigInput) checkInput(tx *wire.MsgTx) error {
	if len(tx.TxIn) != 1 {
		return errors.Wrapf(ErrInvalidRecord, "expected 1 input, got %d", len(tx.TxIn))
	}
	if tx.TxIn[0].PreviousOutPoint != m.channel.Funding.OutPoint {
		return errors.Wrapf(ErrInvalidRecord, "input spends %v instead of funding output %v",
			tx.TxIn[0].PreviousOutPoint, m.channel.Funding.OutPoint)
	}
	return nil
}

// load restores the signature shares carried in the signature script of tx.
func (m *multisigInput) load(tx *wire.MsgTx) error {
	sigs, redeemScript, err := encoding.UnpackMultiSigScriptSig(tx.TxIn[0].SignatureScript)
	if err != nil {
		return errors.Wrap(ErrSignatureScript, err.Error())
	}
	if redeemScript != nil {
		expected, err := m.channel.RedeemScript()
		if err != nil {
			return err
		}
		if !bytes.Equal(redeemScript, expected) {
			return errors.Wrap(ErrSignatureScript, "signature script redeems a different script")
		}
	}
	m.sigs = sigs
	return nil
}

func (m *multisigInput) slot(key *btcec.PublicKey) (int, error) {
	ser := key.SerializeCompressed()
	for i, k := range m.keys {
		if bytes.Equal(k, ser) {
			return i, nil
		}
	}
	return 0, ErrUnknownKey
}

// sign adds the signature share of key to the funding input of tx.
func (m *multisigInput) sign(tx *wire.MsgTx, key *btcec.PrivateKey) error {
	signer := backend.NewSigner(key)
	i, err := m.slot(signer.PubKey())
	if err != nil {
		return err
	}
	redeemScript, err := m.channel.RedeemScript()
	if err != nil {
		return err
	}
	sig, err := signer.SignInput(tx, 0, redeemScript)
	if err != nil {
		return errors.Wrap(err, "signing funding input")
	}
	m.sigs[i] = sig
	return m.apply(tx)
}

func (m *multisigInput) signed(key *btcec.PublicKey) bool {
	i, err := m.slot(key)
	return err == nil && len(m.sigs[i]) > 0
}

// clear drops all shares. Needed whenever the signed parts of tx change.
func (m *multisigInput) clear(tx *wire.MsgTx) {
	m.sigs = [2][]byte{}
	tx.TxIn[0].SignatureScript = nil
}

func (m *multisigInput) apply(tx *wire.MsgTx) error {
	redeemScript, err := m.channel.RedeemScript()
	if err != nil {
		return err
	}
	script, err := encoding.PackMultiSigScriptSig(m.sigs, redeemScript)
	if err != nil {
		return err
	}
	tx.TxIn[0].SignatureScript = script
	return nil
}

func (m *multisigInput) verify(tx *wire.MsgTx) error {
	f := m.channel.Funding
	return backend.VerifyInput(tx, 0, f.PkScript, f.Value)
}

func (m *multisigInput) clone() *multisigInput {
	c := *m
	c.sigs = m.copySigs()
	return &c
}

func (m *multisigInput) copySigs() [2][]byte {
	var sigs [2][]byte
	for i, s := range m.sigs {
		if s != nil {
			sigs[i] = append([]byte(nil), s...)
		}
	}
	return sigs
}
