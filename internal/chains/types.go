package chains

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// Config is the network table the service resolves against.
type Config struct {
	Networks         map[string]NetworkConfig `json:"networks" yaml:"networks" mapstructure:"networks"`
	DefaultNetwork   string                   `json:"defaultNetwork" yaml:"defaultNetwork" mapstructure:"defaultNetwork"`
	PreferredRPCName string                   `json:"preferredRPC" yaml:"preferredRPC" mapstructure:"preferredRPC"`
}

// NetworkConfig describes a network and its RPC endpoints.
type NetworkConfig struct {
	Name       string   `json:"name" yaml:"name" mapstructure:"name"`
	ChainID    uint64   `json:"chainId" yaml:"chainId" mapstructure:"chainId"`
	ChainIDHex string   `json:"chainIdHex" yaml:"chainIdHex" mapstructure:"chainIdHex"`
	Aliases    []string `json:"aliases" yaml:"aliases" mapstructure:"aliases"`
	RPCs       []RPC    `json:"rpcs" yaml:"rpcs" mapstructure:"rpcs"`
	Explorer   string   `json:"explorer" yaml:"explorer" mapstructure:"explorer"`
}

type RPC struct {
	Name string `json:"name" yaml:"name" mapstructure:"name"`
	URL  string `json:"url" yaml:"url" mapstructure:"url"`
}

// ResolvedChain is a network with the RPC endpoint picked for it.
type ResolvedChain struct {
	NetworkName string
	ChainID     uint64
	ChainIDHex  string
	Explorer    string

	RPCName string
	URL     string
}

func (r ResolvedChain) ChainIDBig() *big.Int {
	return new(big.Int).SetUint64(r.ChainID)
}

// EVMClient is the slice of the JSON-RPC surface the wallet uses.
// *ethclient.Client and the simulated backend client both satisfy it.
type EVMClient interface {
	BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error)
	CodeAt(ctx context.Context, contract common.Address, blockNumber *big.Int) ([]byte, error)
	CallContract(ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
	HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error)
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SuggestGasTipCap(ctx context.Context) (*big.Int, error)
	EstimateGas(ctx context.Context, call ethereum.CallMsg) (uint64, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
}

// DialFunc opens a client for an RPC URL.
type DialFunc func(ctx context.Context, rpcURL string) (EVMClient, error)
