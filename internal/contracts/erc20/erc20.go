// Package erc20 is a minimal binding for the ERC-20 methods the wallet reads
// and the transfer call it signs.
package erc20

import (
	"math/big"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
)

const ABI = `[
	{"constant":true,"inputs":[],"name":"symbol","outputs":[{"name":"","type":"string"}],"stateMutability":"view","type":"function"},
	{"constant":true,"inputs":[],"name":"decimals","outputs":[{"name":"","type":"uint8"}],"stateMutability":"view","type":"function"},
	{"constant":true,"inputs":[{"name":"account","type":"address"}],"name":"balanceOf","outputs":[{"name":"","type":"uint256"}],"stateMutability":"view","type":"function"},
	{"constant":false,"inputs":[{"name":"to","type":"address"},{"name":"value","type":"uint256"}],"name":"transfer","outputs":[{"name":"","type":"bool"}],"stateMutability":"nonpayable","type":"function"}
]`

var (
	parsedOnce sync.Once
	parsedABI  abi.ABI
	parsedErr  error
)

// ParsedABI returns the parsed ERC-20 ABI.
func ParsedABI() (*abi.ABI, error) {
	parsedOnce.Do(func() {
		parsedABI, parsedErr = abi.JSON(strings.NewReader(ABI))
	})
	if parsedErr != nil {
		return nil, errors.Wrap(parsedErr, "parse erc20 abi")
	}
	return &parsedABI, nil
}

// Caller is a read-only binding to a deployed ERC-20 contract.
type Caller struct {
	address  common.Address
	contract *bind.BoundContract
}

func NewCaller(address common.Address, caller bind.ContractCaller) (*Caller, error) {
	parsed, err := ParsedABI()
	if err != nil {
		return nil, err
	}
	contract := bind.NewBoundContract(address, *parsed, caller, nil, nil)
	return &Caller{address: address, contract: contract}, nil
}

func (c *Caller) Address() common.Address { return c.address }

// Decimals is a free data retrieval call binding the contract method 0x313ce567.
func (c *Caller) Decimals(opts *bind.CallOpts) (uint8, error) {
	var out []interface{}
	if err := c.contract.Call(opts, &out, "decimals"); err != nil {
		return 0, err
	}
	return *abi.ConvertType(out[0], new(uint8)).(*uint8), nil
}

// Symbol is a free data retrieval call binding the contract method 0x95d89b41.
func (c *Caller) Symbol(opts *bind.CallOpts) (string, error) {
	var out []interface{}
	if err := c.contract.Call(opts, &out, "symbol"); err != nil {
		return "", err
	}
	return *abi.ConvertType(out[0], new(string)).(*string), nil
}

// BalanceOf is a free data retrieval call binding the contract method 0x70a08231.
func (c *Caller) BalanceOf(opts *bind.CallOpts, account common.Address) (*big.Int, error) {
	var out []interface{}
	if err := c.contract.Call(opts, &out, "balanceOf", account); err != nil {
		return nil, err
	}
	return *abi.ConvertType(out[0], new(*big.Int)).(**big.Int), nil
}

// PackTransfer encodes transfer(to, value) calldata (selector 0xa9059cbb).
func PackTransfer(to common.Address, value *big.Int) ([]byte, error) {
	parsed, err := ParsedABI()
	if err != nil {
		return nil, err
	}
	data, err := parsed.Pack("transfer", to, value)
	if err != nil {
		return nil, errors.Wrap(err, "pack transfer")
	}
	return data, nil
}

// UnpackTransfer decodes transfer calldata back into its arguments.
func UnpackTransfer(data []byte) (common.Address, *big.Int, error) {
	parsed, err := ParsedABI()
	if err != nil {
		return common.Address{}, nil, err
	}
	if len(data) < 4 {
		return common.Address{}, nil, errors.New("calldata too short")
	}
	method, err := parsed.MethodById(data[:4])
	if err != nil || method.Name != "transfer" {
		return common.Address{}, nil, errors.New("not a transfer call")
	}
	args, err := method.Inputs.Unpack(data[4:])
	if err != nil {
		return common.Address{}, nil, errors.Wrap(err, "unpack transfer")
	}
	return *abi.ConvertType(args[0], new(common.Address)).(*common.Address),
		*abi.ConvertType(args[1], new(*big.Int)).(**big.Int), nil
}
