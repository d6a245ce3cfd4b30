package app

import (
	"context"
	"testing"
	"time"

	"github.com/quantumauth-io/pyro-wing-wallet/internal/chains"
	"github.com/quantumauth-io/pyro-wing-wallet/internal/config"
	"github.com/quantumauth-io/pyro-wing-wallet/internal/router"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	password   = "correct-password-123"
	devKey     = "0xac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
	devAddress = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"
)

type stubClient struct{ chains.EVMClient }

func testConfig(backend, dir string) *config.Config {
	return &config.Config{
		Host:    config.HostSettings{Transport: config.TransportNative, RequestTimeout: 5 * time.Second},
		Storage: config.StorageSettings{Backend: backend, Dir: dir},
		Policy:  config.PolicySettings{MinPasswordLength: 8},
		Ethereum: chains.Config{
			DefaultNetwork: "testnet",
			Networks: map[string]chains.NetworkConfig{
				"testnet": {ChainID: 11155111, RPCs: []chains.RPC{{Name: "a", URL: "https://sepolia.example"}}},
			},
		},
	}
}

func stubDial(context.Context, string) (chains.EVMClient, error) { return stubClient{}, nil }

func TestVaultSurvivesRestart(t *testing.T) {
	for _, backend := range []string{config.BackendFile, config.BackendSQLite} {
		t.Run(backend, func(t *testing.T) {
			ctx := context.Background()
			dir := t.TempDir()

			a, err := New(ctx, testConfig(backend, dir), WithDialer(stubDial))
			require.NoError(t, err)
			resp := a.Router.Handle(ctx, router.Request{Type: router.TypeCreateVaultFromPrivateKey, Password: password, PrivateKey: devKey})
			require.True(t, resp.OK, resp.Error)
			require.NoError(t, a.Close())

			b, err := New(ctx, testConfig(backend, dir), WithDialer(stubDial))
			require.NoError(t, err)
			t.Cleanup(func() { _ = b.Close() })

			assert.True(t, b.Router.Handle(ctx, router.Request{Type: router.TypeHasVault}).OK)
			resp = b.Router.Handle(ctx, router.Request{Type: router.TypeUnlock, Password: password})
			require.True(t, resp.OK, resp.Error)

			resp = b.Router.Handle(ctx, router.Request{Type: router.TypeGetAddress})
			require.NotNil(t, resp.Address)
			assert.Equal(t, devAddress, *resp.Address)
		})
	}
}

func TestMemoryBackendStartsEmpty(t *testing.T) {
	ctx := context.Background()
	a, err := New(ctx, testConfig(config.BackendMemory, ""), WithDialer(stubDial), WithVersion("1.2.3"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	resp := a.Router.Handle(ctx, router.Request{Type: router.TypeStatus})
	require.True(t, resp.OK)
	assert.False(t, *resp.HasVault)
	assert.Equal(t, "1.2.3", resp.Version)
	assert.Equal(t, "testnet", resp.Network)
}

func TestUnknownBackend(t *testing.T) {
	_, err := New(context.Background(), testConfig("floppy", t.TempDir()), WithDialer(stubDial))
	assert.Error(t, err)
}

func TestCloseLocks(t *testing.T) {
	ctx := context.Background()
	a, err := New(ctx, testConfig(config.BackendMemory, ""), WithDialer(stubDial))
	require.NoError(t, err)

	require.True(t, a.Router.Handle(ctx, router.Request{Type: router.TypeCreateVaultFromPrivateKey, Password: password, PrivateKey: devKey}).OK)
	require.True(t, a.Router.Handle(ctx, router.Request{Type: router.TypeUnlock, Password: password}).OK)
	require.NotNil(t, a.Custody.CurrentAddress())

	require.NoError(t, a.Close())
	assert.Nil(t, a.Custody.CurrentAddress())
}
