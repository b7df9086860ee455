package transaction

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/wire"
	"github.com/pkg/errors"
	"golang.org/x/crypto/blake2b"
	"perun.network/perun-btc-paychan/backend"
	"perun.network/perun-btc-paychan/encoding"
)

// ID identifies a channel.
type ID [32]byte

func (id ID) String() string {
	return hex.EncodeToString(id[:])
}

// Funding is the 2-of-2 output a channel spends for its whole lifetime.
type Funding struct {
	OutPoint wire.OutPoint
	Value    int64
	PkScript []byte
}

// ChannelParams are the constant parameters of a channel: the network, both
// channel keys and the funding output.
type ChannelParams struct {
	Network     *chaincfg.Params
	PayerKey    *btcec.PublicKey
	ProviderKey *btcec.PublicKey
	Funding     Funding

	redeemScript []byte
}

// NewChannelParams derives the P2SH funding script from the channel keys.
func NewChannelParams(net *chaincfg.Params, payer, provider *btcec.PublicKey, op wire.OutPoint, value int64) (*ChannelParams, error) {
	if net == nil {
		return nil, errors.New("network is nil")
	}
	if payer == nil || provider == nil {
		return nil, errors.New("channel key is nil")
	}
	redeemScript, err := backend.MultiSigScript(payer, provider)
	if err != nil {
		return nil, errors.Wrap(err, "building redeem script")
	}
	pkScript, err := backend.ScriptHashPkScript(redeemScript)
	if err != nil {
		return nil, errors.Wrap(err, "building funding script")
	}
	c := &ChannelParams{
		Network:     net,
		PayerKey:    payer,
		ProviderKey: provider,
		Funding: Funding{
			OutPoint: op,
			Value:    value,
			PkScript: pkScript,
		},
		redeemScript: redeemScript,
	}
	return c, c.Validate()
}

// Validate checks the funding value and that the funding script pays to the
// channel's redeem script.
func (c *ChannelParams) Validate() error {
	if c.Funding.Value <= 0 || c.Funding.Value > btcutil.MaxSatoshi {
		return errors.Wrapf(ErrInvalidAmount, "funding value %d", c.Funding.Value)
	}
	redeemScript, err := c.RedeemScript()
	if err != nil {
		return err
	}
	pkScript, err := backend.ScriptHashPkScript(redeemScript)
	if err != nil {
		return err
	}
	if !bytes.Equal(pkScript, c.Funding.PkScript) {
		return errors.Wrap(ErrInvalidRecord, "funding script does not pay to the channel keys")
	}
	return nil
}

// RedeemScript returns the 2-of-2 multisig script of the channel.
func (c *ChannelParams) RedeemScript() ([]byte, error) {
	if c.redeemScript == nil {
		s, err := backend.MultiSigScript(c.PayerKey, c.ProviderKey)
		if err != nil {
			return nil, err
		}
		c.redeemScript = s
	}
	return c.redeemScript, nil
}

// idLength is the size of the ID preimage:
// sorted keys | funding txid | output index | value.
const idLength = 2*33 + 32 + 4 + 8

// ID hashes the sorted channel keys, which determine the redeem script, and
// the funding output.
func (c *ChannelParams) ID() ID {
	var data [idLength]byte
	keys := backend.SortKeys(c.PayerKey, c.ProviderKey)
	n := copy(data[:], keys[0])
	n += copy(data[n:], keys[1])
	n += copy(data[n:], c.Funding.OutPoint.Hash[:])
	binary.BigEndian.PutUint32(data[n:], c.Funding.OutPoint.Index)
	binary.BigEndian.PutUint64(data[n+4:], uint64(c.Funding.Value))
	return blake2b.Sum256(data[:])
}

// PublicKeys returns the record form of the channel keys.
func (c *ChannelParams) PublicKeys() []string {
	return []string{encoding.EncodePubKey(c.PayerKey), encoding.EncodePubKey(c.ProviderKey)}
}

func (c *ChannelParams) fundingRecord() encoding.OutPointRecord {
	return encoding.EncodeOutPoint(c.Funding.OutPoint, c.Funding.PkScript, c.Funding.Value)
}

// channelFromRecord rebuilds the channel parameters of a record and checks
// that the stated funding script is the one of the channel keys.
func channelFromRecord(keys []string, out encoding.OutPointRecord, net *chaincfg.Params) (*ChannelParams, error) {
	payer, provider, err := encoding.DecodePubKeyPair(keys)
	if err != nil {
		return nil, errors.Wrap(ErrInvalidRecord, err.Error())
	}
	op, pkScript, err := encoding.DecodeOutPoint(out)
	if err != nil {
		return nil, errors.Wrap(ErrInvalidRecord, err.Error())
	}
	c, err := NewChannelParams(net, payer, provider, op, out.Satoshis)
	if err != nil {
		return nil, err
	}
	if !bytes.Equal(pkScript, c.Funding.PkScript) {
		return nil, errors.Wrap(ErrInvalidRecord, "funding script does not pay to the channel keys")
	}
	return c, nil
}

func decodeAddress(s string, net *chaincfg.Params) (btcutil.Address, error) {
	addr, err := btcutil.DecodeAddress(s, net)
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidRecord, "decoding address %q: %v", s, err)
	}
	if !addr.IsForNet(net) {
		return nil, errors.Wrapf(ErrInvalidRecord, "address %s is not for %s", s, net.Name)
	}
	return addr, nil
}
