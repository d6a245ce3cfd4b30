package gateway

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/quantumauth-io/pyro-wing-wallet/internal/contracts/erc20"
	"github.com/quantumauth-io/pyro-wing-wallet/internal/ethwallet/wtypes"
	"github.com/quantumauth-io/pyro-wing-wallet/internal/units"
	"golang.org/x/sync/errgroup"
)

type TokenBalance struct {
	Symbol   string `json:"symbol"`
	Decimals uint8  `json:"decimals"`
	Balance  string `json:"balance"`
}

// GetTokenBalance reads decimals, symbol and balanceOf(account) concurrently
// and formats the balance with the token's own decimals.
func (g *Gateway) GetTokenBalance(ctx context.Context, token string) (*TokenBalance, error) {
	snap, err := g.unlocked()
	if err != nil {
		return nil, err
	}

	tokenAddr, err := parseAddress("token", token)
	if err != nil {
		return nil, err
	}
	caller, err := erc20.NewCaller(tokenAddr, snap.Read)
	if err != nil {
		return nil, err
	}
	owner := snap.Account.Address()

	var (
		decimals uint8
		symbol   string
		raw      *big.Int
	)

	eg, egCtx := errgroup.WithContext(ctx)
	opts := &bind.CallOpts{Context: egCtx}

	eg.Go(func() error {
		v, err := caller.Decimals(opts)
		if err != nil {
			return wtypes.NetworkFailure(err, "erc20 decimals")
		}
		decimals = v
		return nil
	})
	eg.Go(func() error {
		v, err := caller.Symbol(opts)
		if err != nil {
			return wtypes.NetworkFailure(err, "erc20 symbol")
		}
		symbol = v
		return nil
	})
	eg.Go(func() error {
		v, err := caller.BalanceOf(opts, owner)
		if err != nil {
			return wtypes.NetworkFailure(err, "erc20 balanceOf")
		}
		raw = v
		return nil
	})

	if err := eg.Wait(); err != nil {
		return nil, err
	}

	return &TokenBalance{
		Symbol:   symbol,
		Decimals: decimals,
		Balance:  units.FormatUnits(raw, decimals),
	}, nil
}

// SendToken calls transfer(to, amount) on the token contract. The amount is
// scaled by the caller-supplied decimals; digits beyond that precision are
// dropped.
func (g *Gateway) SendToken(ctx context.Context, token, to, amount string, decimals uint8) (string, error) {
	snap, err := g.unlocked()
	if err != nil {
		return "", err
	}

	tokenAddr, err := parseAddress("token", token)
	if err != nil {
		return "", err
	}
	recipient, err := parseAddress("to", to)
	if err != nil {
		return "", err
	}
	value, err := units.ParseUnits(amount, decimals, units.Truncate)
	if err != nil {
		return "", err
	}

	data, err := erc20.PackTransfer(recipient, value)
	if err != nil {
		return "", err
	}

	hash, err := g.submit(ctx, snap, tokenAddr, new(big.Int), data)
	if err != nil {
		return "", err
	}
	return hash.Hex(), nil
}
