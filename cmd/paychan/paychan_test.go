package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"perun.network/perun-btc-paychan/backend"
	"perun.network/perun-btc-paychan/channel"
	"perun.network/perun-btc-paychan/encoding"
	"perun.network/perun-btc-paychan/transaction"
	txtest "perun.network/perun-btc-paychan/transaction/test"
	ptest "polycry.pt/poly-go/test"
)

func TestPaychan_Restore(t *testing.T) {
	rng := ptest.Prng(t)
	c := txtest.NewRandomChannel(rng, 100_000)
	cfg := channel.Config{
		Network:        txtest.Network,
		Key:            c.ProviderKey,
		PaymentAddress: c.PaymentAddress.EncodeAddress(),
	}
	statePath := filepath.Join(t.TempDir(), "state.json")

	s, err := readState(statePath)
	require.NoError(t, err)
	pc, err := newPaychan(cfg, s)
	require.NoError(t, err)
	require.Empty(t, pc.status())

	_, err = pc.settle("")
	require.Error(t, err)

	refundRec, err := c.NewRefund(800_000).Record()
	require.NoError(t, err)
	signedRefund, err := pc.signRefund(refundRec)
	require.NoError(t, err)

	payment := c.NewPayment()
	for _, delta := range []int64{1000, 2500} {
		require.NoError(t, payment.UpdateValue(delta, 10_000))
		require.NoError(t, payment.Sign(c.PayerKey))
		rec, err := payment.Record()
		require.NoError(t, err)
		receipt, err := pc.validate(rec)
		require.NoError(t, err)
		require.Equal(t, payment.Paid(), receipt.Amount)
	}
	require.NoError(t, pc.state.write(statePath))

	s, err = readState(statePath)
	require.NoError(t, err)
	restored, err := newPaychan(cfg, s)
	require.NoError(t, err)

	statuses := restored.status()
	require.Len(t, statuses, 1)
	require.Equal(t, c.Params.ID().String(), statuses[0].ChannelID)
	require.Equal(t, int64(3500), statuses[0].CurrentAmount)
	require.Equal(t, uint32(2), statuses[0].Sequence)
	require.Equal(t, uint32(800_000), statuses[0].RefundTimeout)
	require.Equal(t, pc.status(), statuses)

	raw, err := restored.settle(c.Params.ID().String())
	require.NoError(t, err)
	tx, err := encoding.DecodeTx(raw)
	require.NoError(t, err)
	require.NoError(t, backend.VerifyInput(tx, 0, c.Params.Funding.PkScript, c.Params.Funding.Value))

	refund, err := transaction.RefundFromRecord(signedRefund, txtest.Network)
	require.NoError(t, err)
	require.True(t, refund.IsSignedBy(c.ProviderKey.PubKey()))

	t.Run("stale payment after restore", func(t *testing.T) {
		stale := c.NewPayment()
		require.NoError(t, stale.UpdateValue(3500, 10_000))
		require.NoError(t, stale.Sign(c.PayerKey))
		rec, err := stale.Record()
		require.NoError(t, err)
		_, err = restored.validate(rec)
		require.ErrorIs(t, err, channel.ErrStalePayment)
	})
	t.Run("unknown channel", func(t *testing.T) {
		_, err := restored.settle("00")
		require.Error(t, err)
	})
}

func TestState_Missing(t *testing.T) {
	s, err := readState(filepath.Join(t.TempDir(), "none.json"))
	require.NoError(t, err)
	require.NotNil(t, s.Channels)
	require.Empty(t, s.ids())
}
