package gateway

import (
	"context"
	"math/big"
	"sync"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/quantumauth-io/pyro-wing-wallet/internal/chains"
	"github.com/quantumauth-io/pyro-wing-wallet/internal/contracts/erc20"
	"github.com/quantumauth-io/pyro-wing-wallet/internal/ethwallet/userwallet"
	"github.com/quantumauth-io/pyro-wing-wallet/internal/session"
	"github.com/stretchr/testify/require"
)

const devPrivateKey = "0xac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"

// newGateway wires a gateway whose networks all dial to client.
func newGateway(t *testing.T, testnetChainID uint64, client chains.EVMClient) (*Gateway, *session.Session) {
	t.Helper()

	dials := map[string]int{}
	var mu sync.Mutex
	svc, err := chains.NewService(chains.Config{
		DefaultNetwork: "testnet",
		Networks: map[string]chains.NetworkConfig{
			"mainnet": {ChainID: 1, RPCs: []chains.RPC{{Name: "a", URL: "https://mainnet.example"}}},
			"testnet": {ChainID: testnetChainID, Aliases: []string{"sepolia"}, RPCs: []chains.RPC{{Name: "a", URL: "https://sepolia.example"}}},
		},
	}, func(_ context.Context, url string) (chains.EVMClient, error) {
		mu.Lock()
		dials[url]++
		mu.Unlock()
		return client, nil
	})
	require.NoError(t, err)

	sess, err := session.New(context.Background(), svc)
	require.NoError(t, err)
	return New(sess), sess
}

func devAccount(t *testing.T) *userwallet.Account {
	t.Helper()
	acct, err := userwallet.FromPrivateKeyHex(devPrivateKey)
	require.NoError(t, err)
	return acct
}

// fakeChain answers ERC-20 calls from memory and records submitted
// transactions. Methods it does not override panic through the nil embed.
type fakeChain struct {
	chains.EVMClient

	mu       sync.Mutex
	decimals uint8
	symbol   string
	balances map[common.Address]*big.Int
	callErr  error
	calls    int
	sent     []*types.Transaction
}

func (f *fakeChain) CodeAt(context.Context, common.Address, *big.Int) ([]byte, error) {
	return []byte{0x60, 0x80}, nil
}

func (f *fakeChain) CallContract(_ context.Context, msg ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++

	if f.callErr != nil {
		return nil, f.callErr
	}

	parsed, err := erc20.ParsedABI()
	if err != nil {
		return nil, err
	}
	method, err := parsed.MethodById(msg.Data[:4])
	if err != nil {
		return nil, err
	}

	switch method.Name {
	case "decimals":
		return method.Outputs.Pack(f.decimals)
	case "symbol":
		return method.Outputs.Pack(f.symbol)
	case "balanceOf":
		args, err := method.Inputs.Unpack(msg.Data[4:])
		if err != nil {
			return nil, err
		}
		bal := f.balances[args[0].(common.Address)]
		if bal == nil {
			bal = new(big.Int)
		}
		return method.Outputs.Pack(bal)
	default:
		return nil, errors.Newf("unexpected call %s", method.Name)
	}
}

func (f *fakeChain) PendingNonceAt(context.Context, common.Address) (uint64, error) {
	return 7, nil
}

func (f *fakeChain) EstimateGas(context.Context, ethereum.CallMsg) (uint64, error) {
	return 65000, nil
}

func (f *fakeChain) SuggestGasTipCap(context.Context) (*big.Int, error) {
	return big.NewInt(1_000_000_000), nil
}

func (f *fakeChain) HeaderByNumber(context.Context, *big.Int) (*types.Header, error) {
	return &types.Header{Number: big.NewInt(100), BaseFee: big.NewInt(10_000_000_000)}, nil
}

func (f *fakeChain) SendTransaction(_ context.Context, tx *types.Transaction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, tx)
	return nil
}

func (f *fakeChain) BalanceAt(context.Context, common.Address, *big.Int) (*big.Int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.callErr != nil {
		return nil, f.callErr
	}
	return big.NewInt(0), nil
}
