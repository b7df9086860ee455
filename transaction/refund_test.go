package transaction_test

import (
	"testing"

	"github.com/btcsuite/btcd/wire"
	"github.com/stretchr/testify/require"
	"perun.network/perun-btc-paychan/transaction"
	txtest "perun.network/perun-btc-paychan/transaction/test"
	ptest "polycry.pt/poly-go/test"
)

const timeout uint32 = 800_000

func TestNewRefund(t *testing.T) {
	rng := ptest.Prng(t)
	c := txtest.NewRandomChannel(rng, funding)
	r := c.NewRefund(timeout)

	tx := r.Tx()
	require.Equal(t, timeout, tx.LockTime)
	require.Len(t, tx.TxIn, 1)
	require.Less(t, tx.TxIn[0].Sequence, uint32(wire.MaxTxInSequenceNum), "lock time must be enabled")
	require.Len(t, tx.TxOut, 1)
	require.Equal(t, funding-transaction.RefundFee, r.Value())
	require.Equal(t, timeout, r.Timeout())

	t.Run("missing timeout", func(t *testing.T) {
		_, err := transaction.NewRefund(transaction.RefundParams{
			Channel:       c.Params,
			RefundAddress: c.ChangeAddress,
		})
		require.ErrorIs(t, err, transaction.ErrMissingTimeout)
	})
	t.Run("funding below fee", func(t *testing.T) {
		small := txtest.NewRandomChannel(rng, transaction.RefundFee)
		_, err := transaction.NewRefund(transaction.RefundParams{
			Channel:       small.Params,
			RefundAddress: small.ChangeAddress,
			Timeout:       timeout,
		})
		require.ErrorIs(t, err, transaction.ErrInvalidAmount)
	})
}

func TestRefund_Sign(t *testing.T) {
	rng := ptest.Prng(t)
	c := txtest.NewRandomChannel(rng, funding)
	r := c.NewRefund(timeout)

	require.NoError(t, r.Sign(c.ProviderKey))
	require.True(t, r.IsSignedBy(c.ProviderKey.PubKey()))
	require.False(t, r.IsSignedBy(c.PayerKey.PubKey()))
	once := r.Tx()

	require.NoError(t, r.Sign(c.ProviderKey))
	require.Equal(t, once, r.Tx(), "signing twice must not change the refund")

	require.Error(t, r.Verify())
	require.NoError(t, r.Sign(c.PayerKey))
	require.NoError(t, r.Verify())
}

func TestRefund_Record(t *testing.T) {
	rng := ptest.Prng(t)
	c := txtest.NewRandomChannel(rng, funding)
	r := c.NewRefund(timeout)
	require.NoError(t, r.Sign(c.ProviderKey))

	rec, err := r.Record()
	require.NoError(t, err)
	q, err := transaction.RefundFromRecord(rec, txtest.Network)
	require.NoError(t, err)
	require.Equal(t, r.Tx().TxHash(), q.Tx().TxHash())
	require.Equal(t, r.Timeout(), q.Timeout())
	require.Equal(t, r.Value(), q.Value())
	require.Equal(t, r.RefundAddress().EncodeAddress(), q.RefundAddress().EncodeAddress())
	require.True(t, q.IsSignedBy(c.ProviderKey.PubKey()))

	require.NoError(t, q.Sign(c.PayerKey))
	require.NoError(t, q.Verify())

	t.Run("unsigned record", func(t *testing.T) {
		bare := *rec
		bare.Transaction = ""
		q, err := transaction.RefundFromRecord(&bare, txtest.Network)
		require.NoError(t, err)
		require.False(t, q.IsSignedBy(c.ProviderKey.PubKey()))
	})
	t.Run("timeout mismatch", func(t *testing.T) {
		bad := *rec
		bad.Timeout++
		_, err := transaction.RefundFromRecord(&bad, txtest.Network)
		require.ErrorIs(t, err, transaction.ErrInvalidRecord)
	})
	t.Run("final sequence", func(t *testing.T) {
		tx := r.Tx()
		tx.TxIn[0].Sequence = wire.MaxTxInSequenceNum
		_, err := transaction.NewRefund(transaction.RefundParams{
			Channel:       c.Params,
			RefundAddress: c.ChangeAddress,
			Timeout:       timeout,
			Tx:            tx,
		})
		require.ErrorIs(t, err, transaction.ErrInvalidRecord)
	})
	t.Run("foreign refund address", func(t *testing.T) {
		_, err := transaction.NewRefund(transaction.RefundParams{
			Channel:       c.Params,
			RefundAddress: txtest.NewRandomAddress(rng),
			Timeout:       timeout,
			Tx:            r.Tx(),
		})
		require.ErrorIs(t, err, transaction.ErrInvalidRecord)
	})
}
