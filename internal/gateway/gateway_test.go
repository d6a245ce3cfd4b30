package gateway

import (
	"context"
	"math/big"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/quantumauth-io/pyro-wing-wallet/internal/contracts/erc20"
	"github.com/quantumauth-io/pyro-wing-wallet/internal/ethwallet/wtypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	tokenAddr     = "0x1c7D4B196Cb0C7B01d743Fbc6116a902379C7238"
	recipientAddr = "0x000000000000000000000000000000000000dEaD"
)

func TestOperationsRequireUnlock(t *testing.T) {
	fake := &fakeChain{}
	g, _ := newGateway(t, 11155111, fake)
	ctx := context.Background()

	_, err := g.GetBalance(ctx)
	assert.True(t, errors.Is(err, wtypes.ErrLocked))

	_, err = g.SendNative(ctx, recipientAddr, "0.1")
	assert.True(t, errors.Is(err, wtypes.ErrLocked))

	_, err = g.GetTokenBalance(ctx, tokenAddr)
	assert.True(t, errors.Is(err, wtypes.ErrLocked))

	_, err = g.SendToken(ctx, tokenAddr, recipientAddr, "1", 6)
	assert.True(t, errors.Is(err, wtypes.ErrLocked))

	assert.Zero(t, fake.calls)
	assert.Empty(t, fake.sent)
}

func TestOperationsFailAgainAfterLock(t *testing.T) {
	fake := &fakeChain{}
	g, sess := newGateway(t, 11155111, fake)
	sess.Bind(devAccount(t))
	sess.Clear()

	_, err := g.GetBalance(context.Background())
	assert.True(t, errors.Is(err, wtypes.ErrLocked))
}

func TestGetTokenBalanceFormatsWithTokenDecimals(t *testing.T) {
	acct := devAccount(t)
	fake := &fakeChain{
		decimals: 6,
		symbol:   "USDC",
		balances: map[common.Address]*big.Int{acct.Address(): big.NewInt(1234567890)},
	}
	g, sess := newGateway(t, 11155111, fake)
	sess.Bind(acct)

	got, err := g.GetTokenBalance(context.Background(), tokenAddr)
	require.NoError(t, err)
	assert.Equal(t, "USDC", got.Symbol)
	assert.Equal(t, uint8(6), got.Decimals)
	assert.Equal(t, "1234.56789", got.Balance)
	assert.Equal(t, 3, fake.calls)
}

func TestGetTokenBalanceWholeAmount(t *testing.T) {
	acct := devAccount(t)
	fake := &fakeChain{
		decimals: 18,
		symbol:   "DAI",
		balances: map[common.Address]*big.Int{acct.Address(): new(big.Int).Exp(big.NewInt(10), big.NewInt(19), nil)},
	}
	g, sess := newGateway(t, 11155111, fake)
	sess.Bind(acct)

	got, err := g.GetTokenBalance(context.Background(), tokenAddr)
	require.NoError(t, err)
	assert.Equal(t, "10", got.Balance)
}

func TestGetTokenBalanceNetworkFailure(t *testing.T) {
	fake := &fakeChain{callErr: errors.New("connection refused")}
	g, sess := newGateway(t, 11155111, fake)
	sess.Bind(devAccount(t))

	_, err := g.GetTokenBalance(context.Background(), tokenAddr)
	require.Error(t, err)
	assert.True(t, errors.Is(err, wtypes.ErrNetwork))

	_, err = g.GetBalance(context.Background())
	assert.True(t, errors.Is(err, wtypes.ErrNetwork))
}

func TestSendTokenEncodesTransfer(t *testing.T) {
	acct := devAccount(t)
	fake := &fakeChain{}
	g, sess := newGateway(t, 11155111, fake)
	sess.Bind(acct)

	hash, err := g.SendToken(context.Background(), tokenAddr, recipientAddr, "1.1234567", 6)
	require.NoError(t, err)
	require.Len(t, fake.sent, 1)

	tx := fake.sent[0]
	assert.Equal(t, tx.Hash().Hex(), hash)
	assert.Equal(t, common.HexToAddress(tokenAddr), *tx.To())
	assert.Zero(t, tx.Value().Sign())
	assert.Equal(t, uint64(7), tx.Nonce())
	assert.Equal(t, uint64(65000), tx.Gas())
	assert.Equal(t, big.NewInt(1_000_000_000), tx.GasTipCap())
	assert.Equal(t, big.NewInt(21_000_000_000), tx.GasFeeCap())
	assert.Equal(t, uint64(11155111), tx.ChainId().Uint64())

	to, amount, err := erc20.UnpackTransfer(tx.Data())
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress(recipientAddr), to)
	assert.Equal(t, "1123456", amount.String())

	from, err := types.Sender(types.LatestSignerForChainID(tx.ChainId()), tx)
	require.NoError(t, err)
	assert.Equal(t, acct.Address(), from)
}

func TestSendRejectsMalformedInput(t *testing.T) {
	fake := &fakeChain{}
	g, sess := newGateway(t, 11155111, fake)
	sess.Bind(devAccount(t))
	ctx := context.Background()

	for _, amount := range []string{"-1", "abc", "", "1.2.3"} {
		_, err := g.SendNative(ctx, recipientAddr, amount)
		assert.True(t, errors.Is(err, wtypes.ErrInvalidAmount), amount)

		_, err = g.SendToken(ctx, tokenAddr, recipientAddr, amount, 6)
		assert.True(t, errors.Is(err, wtypes.ErrInvalidAmount), amount)
	}

	_, err := g.SendNative(ctx, "0xnothex", "1")
	assert.True(t, errors.Is(err, wtypes.ErrInvalidAddress))

	_, err = g.GetTokenBalance(ctx, "not-an-address")
	assert.True(t, errors.Is(err, wtypes.ErrInvalidAddress))

	assert.Empty(t, fake.sent)
}

func TestSetNetworkIsIdempotent(t *testing.T) {
	fake := &fakeChain{}
	g, sess := newGateway(t, 11155111, fake)
	sess.Bind(devAccount(t))
	ctx := context.Background()

	first, err := g.SetNetwork(ctx, "testnet")
	require.NoError(t, err)
	snapFirst := sess.Snapshot()

	second, err := g.SetNetwork(ctx, "testnet")
	require.NoError(t, err)
	snapSecond := sess.Snapshot()

	assert.Equal(t, first, second)
	assert.Equal(t, snapFirst.Network, snapSecond.Network)
	assert.Same(t, snapFirst.Read, snapSecond.Read)
	assert.Equal(t, snapFirst.Write.ChainID(), snapSecond.Write.ChainID())
	assert.Equal(t, snapFirst.Write.Signer().Address(), snapSecond.Write.Signer().Address())

	alias, err := g.SetNetwork(ctx, "sepolia")
	require.NoError(t, err)
	assert.Equal(t, "testnet", alias.NetworkName)

	_, err = g.SetNetwork(ctx, "goerli")
	assert.True(t, errors.Is(err, wtypes.ErrUnknownNetwork))
	assert.Equal(t, "testnet", g.Network().NetworkName)
}

func TestSendsAreSerialised(t *testing.T) {
	fake := &fakeChain{}
	g, sess := newGateway(t, 11155111, fake)
	sess.Bind(devAccount(t))

	done := make(chan error, 8)
	for i := 0; i < 8; i++ {
		go func() {
			_, err := g.SendNative(context.Background(), recipientAddr, "0.001")
			done <- err
		}()
	}
	for i := 0; i < 8; i++ {
		require.NoError(t, <-done)
	}
	assert.Len(t, fake.sent, 8)
}
