package main

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/stretchr/testify/require"
	"perun.network/perun-btc-paychan/channel"
	wtest "perun.network/perun-btc-paychan/wallet/test"
	ptest "polycry.pt/poly-go/test"
)

func TestLoadConfig(t *testing.T) {
	rng := ptest.Prng(t)
	dir := t.TempDir()
	wif, err := btcutil.NewWIF(wtest.NewRandomKey(rng), &chaincfg.RegressionNetParams, true)
	require.NoError(t, err)

	path := filepath.Join(dir, "paychan.conf")
	ini := "[Application Options]\n" +
		"network=regtest\n" +
		"key=" + wif.String() + "\n" +
		"statefile=" + filepath.Join(dir, "state.json") + "\n" +
		"minrefundtimeout=1000\n"
	require.NoError(t, ioutil.WriteFile(path, []byte(ini), 0600))

	cfg, err := loadConfig(path, true)
	require.NoError(t, err)
	require.Equal(t, "regtest", cfg.Network)
	require.Equal(t, filepath.Join(dir, "state.json"), cfg.StateFile)

	pcfg, err := cfg.providerConfig(nil)
	require.NoError(t, err)
	require.Same(t, &chaincfg.RegressionNetParams, pcfg.Network)
	require.Equal(t, uint32(1000), pcfg.MinRefundTimeout)
	require.True(t, pcfg.Key.PubKey().IsEqual(wif.PrivKey.PubKey()))
	require.NotEmpty(t, pcfg.PaymentAddress, "payment address defaults to the key address")

	t.Run("missing file", func(t *testing.T) {
		missing := filepath.Join(dir, "missing.conf")
		_, err := loadConfig(missing, true)
		require.Error(t, err)
		cfg, err := loadConfig(missing, false)
		require.NoError(t, err)
		require.Equal(t, cleanAndExpandPath(defaultStateFile), cfg.StateFile)
	})
	t.Run("no network", func(t *testing.T) {
		_, err := (&config{Key: wif.String()}).providerConfig(nil)
		require.ErrorIs(t, err, channel.ErrNoNetwork)
	})
	t.Run("no key", func(t *testing.T) {
		_, err := (&config{Network: "regtest"}).providerConfig(nil)
		require.Error(t, err)
	})
}

func TestCleanAndExpandPath(t *testing.T) {
	require.Equal(t, "", cleanAndExpandPath(""))
	require.Equal(t, "/a/c", cleanAndExpandPath("/a/b/../c/"))

	t.Setenv("PAYCHAN_TEST_DIR", "/tmp/paychan")
	require.Equal(t, "/tmp/paychan/state.json", cleanAndExpandPath("$PAYCHAN_TEST_DIR/state.json"))

	home, err := os.UserHomeDir()
	if err == nil {
		require.Equal(t, filepath.Join(home, ".paychan"), cleanAndExpandPath("~/.paychan"))
	}
}
