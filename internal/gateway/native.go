package gateway

import (
	"context"

	"github.com/quantumauth-io/pyro-wing-wallet/internal/ethwallet/wtypes"
	"github.com/quantumauth-io/pyro-wing-wallet/internal/units"
)

// GetBalance returns the account's native balance in ether, full precision.
func (g *Gateway) GetBalance(ctx context.Context) (string, error) {
	snap, err := g.unlocked()
	if err != nil {
		return "", err
	}

	wei, err := snap.Read.BalanceAt(ctx, snap.Account.Address(), nil)
	if err != nil {
		return "", wtypes.NetworkFailure(err, "get balance")
	}
	return units.FormatEther(wei), nil
}

// SendNative signs and submits a transfer of amountEth to `to` and returns
// the transaction hash without waiting for inclusion.
func (g *Gateway) SendNative(ctx context.Context, to, amountEth string) (string, error) {
	snap, err := g.unlocked()
	if err != nil {
		return "", err
	}

	recipient, err := parseAddress("to", to)
	if err != nil {
		return "", err
	}
	value, err := units.ParseEther(amountEth)
	if err != nil {
		return "", err
	}

	hash, err := g.submit(ctx, snap, recipient, value, nil)
	if err != nil {
		return "", err
	}
	return hash.Hex(), nil
}
