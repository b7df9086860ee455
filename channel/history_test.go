package channel_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"perun.network/perun-btc-paychan/channel"
	ptest "polycry.pt/poly-go/test"
)

func TestHistory(t *testing.T) {
	rng := ptest.Prng(t)
	h := channel.NewHistory()
	_, ok := h.Latest()
	require.False(t, ok)

	// Random sequences with repeats.
	seqs := make([]uint32, 20)
	for i := range seqs {
		seqs[i] = uint32(rng.Intn(5))
		h.Add(&channel.Snapshot{Sequence: seqs[i], Amount: int64(i+1) * 100})
	}
	require.Equal(t, len(seqs), h.Len(), "repeated sequences are kept")

	for i, s := range h.Snapshots() {
		require.Equal(t, uint64(i), s.Index, "snapshots are in acceptance order")
		require.Equal(t, seqs[i], s.Sequence)
		require.Equal(t, int64(i+1)*100, s.Amount)
	}
	latest, ok := h.Latest()
	require.True(t, ok)
	require.Equal(t, uint64(19), latest.Index)
	require.Equal(t, int64(2000), latest.Amount)

	s, ok := h.Get(7)
	require.True(t, ok)
	require.Equal(t, int64(800), s.Amount)
	_, ok = h.Get(20)
	require.False(t, ok)
}
