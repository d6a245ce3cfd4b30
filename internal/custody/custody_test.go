package custody

import (
	"context"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/quantumauth-io/pyro-wing-wallet/internal/chains"
	"github.com/quantumauth-io/pyro-wing-wallet/internal/ethwallet/userwallet"
	"github.com/quantumauth-io/pyro-wing-wallet/internal/ethwallet/wtypes"
	"github.com/quantumauth-io/pyro-wing-wallet/internal/session"
	"github.com/quantumauth-io/pyro-wing-wallet/internal/vaultstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	password      = "correct-password-123"
	devMnemonic   = "test test test test test test test test test test test junk"
	devAddress    = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"
	devPrivateKey = "0xac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
)

type stubClient struct{ chains.EVMClient }

func newSession(t *testing.T) *session.Session {
	t.Helper()
	svc, err := chains.NewService(chains.Config{
		DefaultNetwork: "testnet",
		Networks: map[string]chains.NetworkConfig{
			"testnet": {ChainID: 11155111, RPCs: []chains.RPC{{Name: "a", URL: "https://sepolia.example"}}},
		},
	}, func(context.Context, string) (chains.EVMClient, error) { return stubClient{}, nil })
	require.NoError(t, err)

	sess, err := session.New(context.Background(), svc)
	require.NoError(t, err)
	return sess
}

func newCustody(t *testing.T, backend vaultstore.Backend) *Custody {
	t.Helper()
	return New(vaultstore.New(backend), newSession(t))
}

func TestCreateLockUnlockKeepsAddress(t *testing.T) {
	ctx := context.Background()
	c := newCustody(t, vaultstore.NewMemoryBackend())

	mnemonic, err := c.CreateFromMnemonic(ctx, password, "")
	require.NoError(t, err)
	require.Len(t, strings.Fields(mnemonic), 12)

	derived, err := userwallet.FromMnemonic(mnemonic)
	require.NoError(t, err)

	require.NoError(t, c.Unlock(ctx, password))
	addr := c.CurrentAddress()
	require.NotNil(t, addr)
	assert.Equal(t, derived.Address(), *addr)

	c.Lock()
	assert.Nil(t, c.CurrentAddress())

	require.NoError(t, c.Unlock(ctx, password))
	require.NotNil(t, c.CurrentAddress())
	assert.Equal(t, derived.Address(), *c.CurrentAddress())
}

func TestUnlockAfterRestart(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	fb, err := vaultstore.NewFileBackend(dir)
	require.NoError(t, err)
	first := newCustody(t, fb)

	_, err = first.CreateFromMnemonic(ctx, password, devMnemonic)
	require.NoError(t, err)

	fb2, err := vaultstore.NewFileBackend(dir)
	require.NoError(t, err)
	second := newCustody(t, fb2)

	ok, err := second.HasVault(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Nil(t, second.CurrentAddress())

	require.NoError(t, second.Unlock(ctx, password))
	assert.Equal(t, common.HexToAddress(devAddress), *second.CurrentAddress())
}

func TestInvalidMnemonicPersistsNothing(t *testing.T) {
	ctx := context.Background()
	c := newCustody(t, vaultstore.NewMemoryBackend())

	_, err := c.CreateFromMnemonic(ctx, password, "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon")
	require.Error(t, err)
	assert.True(t, errors.Is(err, wtypes.ErrInvalidMnemonic))

	ok, err := c.HasVault(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestImportedMnemonicIsNormalised(t *testing.T) {
	ctx := context.Background()
	c := newCustody(t, vaultstore.NewMemoryBackend())

	got, err := c.CreateFromMnemonic(ctx, password, "  Test test TEST test test test test test test test test\njunk ")
	require.NoError(t, err)
	assert.Equal(t, devMnemonic, got)
}

func TestUnlockFailures(t *testing.T) {
	ctx := context.Background()
	c := newCustody(t, vaultstore.NewMemoryBackend())

	err := c.Unlock(ctx, password)
	assert.True(t, errors.Is(err, wtypes.ErrVaultNotFound))

	require.NoError(t, c.CreateFromPrivateKey(ctx, password, devPrivateKey))

	err = c.Unlock(ctx, "wrong-password-456")
	assert.True(t, errors.Is(err, wtypes.ErrWrongPassword))
	assert.Nil(t, c.CurrentAddress())

	require.NoError(t, c.Unlock(ctx, password))
	err = c.Unlock(ctx, "wrong-password-456")
	assert.True(t, errors.Is(err, wtypes.ErrWrongPassword))
	require.NotNil(t, c.CurrentAddress(), "failed unlock must not clear an existing session")
}

func TestCorruptVaultReadsAsWrongPassword(t *testing.T) {
	ctx := context.Background()
	backend := vaultstore.NewMemoryBackend()
	require.NoError(t, backend.Set(ctx, "pyro-wing-wallet-vault", []byte("garbage")))
	c := newCustody(t, backend)

	ok, err := c.HasVault(ctx)
	require.NoError(t, err)
	assert.True(t, ok)

	err = c.Unlock(ctx, password)
	assert.True(t, errors.Is(err, wtypes.ErrWrongPassword))
}

func TestExportRequiresPasswordNotSession(t *testing.T) {
	ctx := context.Background()
	c := newCustody(t, vaultstore.NewMemoryBackend())

	_, err := c.CreateFromMnemonic(ctx, password, devMnemonic)
	require.NoError(t, err)
	require.NoError(t, c.Unlock(ctx, password))

	_, err = c.ExportPrivateKey(ctx, "wrong-password-456")
	assert.True(t, errors.Is(err, wtypes.ErrWrongPassword))
	_, err = c.ExportMnemonic(ctx, "wrong-password-456")
	assert.True(t, errors.Is(err, wtypes.ErrWrongPassword))

	key, err := c.ExportPrivateKey(ctx, password)
	require.NoError(t, err)
	assert.Equal(t, devPrivateKey, key)

	m, err := c.ExportMnemonic(ctx, password)
	require.NoError(t, err)
	assert.Equal(t, devMnemonic, m)
}

func TestExportWorksWhileLocked(t *testing.T) {
	ctx := context.Background()
	c := newCustody(t, vaultstore.NewMemoryBackend())
	require.NoError(t, c.CreateFromPrivateKey(ctx, password, devPrivateKey))

	key, err := c.ExportPrivateKey(ctx, password)
	require.NoError(t, err)
	assert.Equal(t, devPrivateKey, key)

	_, err = c.ExportMnemonic(ctx, password)
	assert.True(t, errors.Is(err, wtypes.ErrNoMnemonic))
}

func TestCreateFromPrivateKeyValidates(t *testing.T) {
	ctx := context.Background()
	c := newCustody(t, vaultstore.NewMemoryBackend())

	err := c.CreateFromPrivateKey(ctx, password, strings.TrimPrefix(devPrivateKey, "0x"))
	assert.True(t, errors.Is(err, wtypes.ErrInvalidPrivateKeyFormat))

	ok, err := c.HasVault(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestImportedPrivateKeyIsCanonicalised(t *testing.T) {
	ctx := context.Background()
	c := newCustody(t, vaultstore.NewMemoryBackend())

	messy := "  0x" + strings.ToUpper(strings.TrimPrefix(devPrivateKey, "0x")) + "\n"
	require.NoError(t, c.CreateFromPrivateKey(ctx, password, messy))

	key, err := c.ExportPrivateKey(ctx, password)
	require.NoError(t, err)
	assert.Len(t, key, 66)
	assert.Equal(t, devPrivateKey, key)

	require.NoError(t, c.Unlock(ctx, password))
	assert.Equal(t, common.HexToAddress(devAddress), *c.CurrentAddress())
}

func TestPasswordPolicy(t *testing.T) {
	ctx := context.Background()
	c := newCustody(t, vaultstore.NewMemoryBackend())

	_, err := c.CreateFromMnemonic(ctx, "short", "")
	assert.True(t, errors.Is(err, wtypes.ErrWeakPassword))

	err = c.CreateFromPrivateKey(ctx, "short", devPrivateKey)
	assert.True(t, errors.Is(err, wtypes.ErrWeakPassword))

	strict := PasswordPolicy{MinLength: 8, MinScore: 3}
	assert.Error(t, strict.Check("password"))
	assert.NoError(t, strict.Check("violet-kangaroo-harbor-71!"))
}

func TestCreateReplacesVaultAndLocks(t *testing.T) {
	ctx := context.Background()
	c := newCustody(t, vaultstore.NewMemoryBackend())

	require.NoError(t, c.CreateFromPrivateKey(ctx, password, devPrivateKey))
	require.NoError(t, c.Unlock(ctx, password))

	_, err := c.CreateFromMnemonic(ctx, "another-password-1", "")
	require.NoError(t, err)
	assert.Nil(t, c.CurrentAddress())

	err = c.Unlock(ctx, password)
	assert.True(t, errors.Is(err, wtypes.ErrWrongPassword))
}

func TestReset(t *testing.T) {
	ctx := context.Background()
	c := newCustody(t, vaultstore.NewMemoryBackend())

	require.NoError(t, c.CreateFromPrivateKey(ctx, password, devPrivateKey))
	require.NoError(t, c.Unlock(ctx, password))

	require.NoError(t, c.Reset(ctx))
	assert.Nil(t, c.CurrentAddress())

	ok, err := c.HasVault(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}
