// Package gateway executes chain reads and signed writes for the unlocked
// session account.
package gateway

import (
	"context"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/quantumauth-io/pyro-wing-wallet/internal/chains"
	"github.com/quantumauth-io/pyro-wing-wallet/internal/ethwallet/wtypes"
	"github.com/quantumauth-io/pyro-wing-wallet/internal/session"
)

type Gateway struct {
	sess *session.Session
}

func New(sess *session.Session) *Gateway {
	return &Gateway{sess: sess}
}

// SetNetwork rebinds the session clients to networkName ("mainnet",
// "testnet" or a configured alias). Calling it with the active network
// rebuilds the same binding.
func (g *Gateway) SetNetwork(ctx context.Context, networkName string) (chains.ResolvedChain, error) {
	return g.sess.SwitchNetwork(ctx, networkName)
}

func (g *Gateway) Network() chains.ResolvedChain {
	return g.sess.Network()
}

// unlocked returns a snapshot that is guaranteed to carry an account and a
// write client.
func (g *Gateway) unlocked() (session.Snapshot, error) {
	snap := g.sess.Snapshot()
	if !snap.Unlocked() || snap.Write == nil {
		return session.Snapshot{}, wtypes.ErrLocked
	}
	return snap, nil
}

func parseAddress(field, s string) (common.Address, error) {
	s = strings.TrimSpace(s)
	if !common.IsHexAddress(s) {
		return common.Address{}, errors.Wrapf(wtypes.ErrInvalidAddress, "%s %q", field, s)
	}
	return common.HexToAddress(s), nil
}
