package app

import (
	"context"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/custodytest"
	"github.com/iov-one/custody/custodytest/assert"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/x/wallet"
	"github.com/stretchr/testify/require"
	"github.com/tendermint/tendermint/libs/log"
)

func TestGenesisCreatesFundedWallet(t *testing.T) {
	ctx := context.Background()
	opts, keys, err := GenInitOptions(DefaultInitParams)
	require.NoError(t, err)
	require.Len(t, keys, 3)

	host := custodytest.NewHost()
	require.NoError(t, InitGenesis(ctx, host, opts))
	a, err := Load(ctx, host, "")
	require.NoError(t, err)

	owners := a.Wallet.Owners()
	require.Len(t, owners, 3)
	for i, k := range keys {
		require.Equal(t, k.PublicKey().Address(), owners[i])
	}
	require.Equal(t, uint32(2), a.Wallet.Required())
	require.NotNil(t, a.Token)
	require.Equal(t, a.Token.Address(), a.Wallet.Token())

	err = host.View(ctx, func(ctx context.Context, db custody.ReadOnlyKVStore) error {
		balance, err := a.Cash.Balance(db, owners[1])
		require.NoError(t, err)
		require.Equal(t, DefaultInitParams.Funds, balance)

		supply, err := a.Token.BalanceOf(db, owners[0])
		require.NoError(t, err)
		require.Equal(t, uint64(1000000000000000000), supply)
		return nil
	})
	require.NoError(t, err)

	// genesis cannot be loaded twice
	assert.IsErr(t, errors.ErrDuplicate, InitGenesis(ctx, host, opts))
}

func TestGenesisWithoutToken(t *testing.T) {
	ctx := context.Background()
	params := DefaultInitParams
	params.TokenSymbol = ""
	opts, _, err := GenInitOptions(params)
	require.NoError(t, err)

	host := custodytest.NewHost()
	require.NoError(t, InitGenesis(ctx, host, opts))
	a, err := Load(ctx, host, wallet.DefaultID)
	require.NoError(t, err)
	require.Nil(t, a.Token)
	require.Len(t, a.Wallet.Token(), 0)
}

func TestGenInitOptionsRejectsNoOwners(t *testing.T) {
	params := DefaultInitParams
	params.Owners = 0
	_, _, err := GenInitOptions(params)
	assert.IsErr(t, wallet.ErrEmptyOwnerSet, err)
}

func TestStatePersistsAcrossRestarts(t *testing.T) {
	ctx := context.Background()
	home, err := ioutil.TempDir("", "walletd")
	require.NoError(t, err)
	defer os.RemoveAll(home)

	opts, keys, err := GenInitOptions(DefaultInitParams)
	require.NoError(t, err)
	require.NoError(t, WriteGenesis(home, opts, keys))
	assert.IsErr(t, errors.ErrDuplicate, WriteGenesis(home, opts, keys))

	key, err := ReadKey(filepath.Join(home, "config", "keys", "owner-1.key"))
	require.NoError(t, err)
	require.Equal(t, keys[1].PublicKey(), key.PublicKey())

	a, err := GenerateApp(ctx, home, "", log.NewNopLogger())
	require.NoError(t, err)
	owner := keys[0].PublicKey().Address()
	index, err := a.Wallet.Submit(ctx, owner, custodytest.NewAddress(), 5, nil, wallet.AssetNative)
	require.NoError(t, err)
	require.NoError(t, a.Wallet.Confirm(ctx, owner, index))
	require.NoError(t, a.Close())

	// the genesis file is not loaded again
	b, err := GenerateApp(ctx, home, "", log.NewNopLogger())
	require.NoError(t, err)
	defer b.Close()
	n, err := b.Wallet.Count(ctx)
	require.NoError(t, err)
	require.Equal(t, uint64(1), n)
	ok, err := b.Wallet.IsConfirmed(ctx, index, owner)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestGenerateAppWithoutGenesis(t *testing.T) {
	home, err := ioutil.TempDir("", "walletd")
	require.NoError(t, err)
	defer os.RemoveAll(home)

	_, err = GenerateApp(context.Background(), home, "", log.NewNopLogger())
	require.Error(t, err)
}
