package registry_test

import (
	"context"
	"errors"
	"testing"

	"github.com/AlexZinkM/ether-keystore/internal/model"
	"github.com/AlexZinkM/ether-keystore/internal/registry"
	"github.com/AlexZinkM/ether-keystore/internal/storage"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

var (
	addrA = common.HexToAddress("0x2c7536E3605D9C16a7a3D7b1898e529396a65c23")
	addrB = common.HexToAddress("0x00000000000000000000000000000000000000bb")
)

// failingStore fails every write once broken is set
type failingStore struct {
	*storage.Memory
	broken bool
}

var errDisk = errors.New("disk full")

func (s *failingStore) AddWallet(ctx context.Context, w model.Wallet) error {
	if s.broken {
		return errDisk
	}
	return s.Memory.AddWallet(ctx, w)
}

func (s *failingStore) RemoveWallet(ctx context.Context, addr common.Address) error {
	if s.broken {
		return errDisk
	}
	return s.Memory.RemoveWallet(ctx, addr)
}

func (s *failingStore) SetRecentlyUsed(ctx context.Context, addr *common.Address) error {
	if s.broken {
		return errDisk
	}
	return s.Memory.SetRecentlyUsed(ctx, addr)
}

func open(t *testing.T, store storage.WalletStore) *registry.Registry {
	t.Helper()
	r, err := registry.Open(context.Background(), store, zaptest.NewLogger(t))
	require.NoError(t, err)
	return r
}

func TestEmptyRegistry(t *testing.T) {
	r := open(t, storage.NewMemory())

	assert.False(t, r.HasWallets())
	assert.Empty(t, r.Wallets())
	_, ok := r.RecentlyUsed()
	assert.False(t, ok)
}

func TestAddKeepsOrderAndUniqueness(t *testing.T) {
	ctx := context.Background()
	r := open(t, storage.NewMemory())

	realWallet := model.RealWallet(model.Account{Address: addrA})
	require.NoError(t, r.Add(ctx, realWallet))
	watch, err := r.AddWatch(ctx, addrB)
	require.NoError(t, err)
	assert.Equal(t, model.WalletTypeWatch, watch.Type)

	assert.True(t, r.HasWallets())
	assert.Equal(t, []model.Wallet{realWallet, watch}, r.Wallets())

	err = r.Add(ctx, model.WatchWallet(addrA))
	assert.ErrorIs(t, err, model.ErrDuplicateAccount)
	_, err = r.AddWatch(ctx, addrB)
	assert.ErrorIs(t, err, model.ErrDuplicateAccount)
	assert.Len(t, r.Wallets(), 2)

	got, ok := r.Lookup(addrA)
	require.True(t, ok)
	assert.Equal(t, realWallet, got)
}

func TestRemove(t *testing.T) {
	ctx := context.Background()
	r := open(t, storage.NewMemory())

	realWallet := model.RealWallet(model.Account{Address: addrA})
	require.NoError(t, r.Add(ctx, realWallet))

	err := r.Remove(ctx, model.WatchWallet(addrA))
	assert.ErrorIs(t, err, model.ErrUnknownWallet)

	require.NoError(t, r.Remove(ctx, realWallet))
	assert.False(t, r.HasWallets())

	err = r.Remove(ctx, realWallet)
	assert.ErrorIs(t, err, model.ErrUnknownWallet)
}

func TestRecentlyUsed(t *testing.T) {
	ctx := context.Background()
	r := open(t, storage.NewMemory())

	a := model.RealWallet(model.Account{Address: addrA})
	b := model.WatchWallet(addrB)
	require.NoError(t, r.Add(ctx, a))
	require.NoError(t, r.Add(ctx, b))

	assert.ErrorIs(t, r.SetRecentlyUsed(ctx, model.WatchWallet(addrA)), model.ErrUnknownWallet)

	require.NoError(t, r.SetRecentlyUsed(ctx, a))
	got, ok := r.RecentlyUsed()
	require.True(t, ok)
	assert.Equal(t, a, got)

	require.NoError(t, r.SetRecentlyUsed(ctx, b))
	got, ok = r.RecentlyUsed()
	require.True(t, ok)
	assert.Equal(t, b, got)

	require.NoError(t, r.ClearRecentlyUsed(ctx))
	_, ok = r.RecentlyUsed()
	assert.False(t, ok)
}

func TestRemoveClearsRecentlyUsed(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemory()
	r := open(t, store)

	a := model.RealWallet(model.Account{Address: addrA})
	b := model.WatchWallet(addrB)
	require.NoError(t, r.Add(ctx, a))
	require.NoError(t, r.Add(ctx, b))
	require.NoError(t, r.SetRecentlyUsed(ctx, a))

	require.NoError(t, r.Remove(ctx, b))
	_, ok := r.RecentlyUsed()
	assert.True(t, ok, "removing another wallet keeps the pointer")

	require.NoError(t, r.Remove(ctx, a))
	_, ok = r.RecentlyUsed()
	assert.False(t, ok)

	persisted, err := store.RecentlyUsed(ctx)
	require.NoError(t, err)
	assert.Nil(t, persisted)
}

func TestOpenRestoresState(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemory()

	r := open(t, store)
	a := model.RealWallet(model.Account{Address: addrA})
	b := model.WatchWallet(addrB)
	require.NoError(t, r.Add(ctx, a))
	require.NoError(t, r.Add(ctx, b))
	require.NoError(t, r.SetRecentlyUsed(ctx, b))

	reopened := open(t, store)
	assert.Equal(t, []model.Wallet{a, b}, reopened.Wallets())
	got, ok := reopened.RecentlyUsed()
	require.True(t, ok)
	assert.Equal(t, b, got)
}

func TestOpenDropsStaleRecentlyUsed(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemory()
	require.NoError(t, store.SetRecentlyUsed(ctx, &addrA))

	r := open(t, store)
	_, ok := r.RecentlyUsed()
	assert.False(t, ok)

	persisted, err := store.RecentlyUsed(ctx)
	require.NoError(t, err)
	assert.Nil(t, persisted)
}

func TestStoreFailureLeavesStateUnchanged(t *testing.T) {
	ctx := context.Background()
	store := &failingStore{Memory: storage.NewMemory()}
	r := open(t, store)

	a := model.RealWallet(model.Account{Address: addrA})
	require.NoError(t, r.Add(ctx, a))
	require.NoError(t, r.SetRecentlyUsed(ctx, a))

	store.broken = true

	err := r.Add(ctx, model.WatchWallet(addrB))
	require.Error(t, err)
	assert.True(t, model.IsStorageError(err))
	assert.ErrorIs(t, err, errDisk)

	err = r.Remove(ctx, a)
	assert.True(t, model.IsStorageError(err))

	err = r.ClearRecentlyUsed(ctx)
	assert.True(t, model.IsStorageError(err))

	assert.Equal(t, []model.Wallet{a}, r.Wallets())
	got, ok := r.RecentlyUsed()
	require.True(t, ok)
	assert.Equal(t, a, got)
}
