package gateway

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/quantumauth-io/pyro-wing-wallet/internal/chains"
	"github.com/quantumauth-io/pyro-wing-wallet/internal/ethwallet/wtypes"
	"github.com/quantumauth-io/pyro-wing-wallet/internal/session"
	"github.com/quantumauth-io/quantum-go-utils/log"
)

// submit builds an EIP-1559 transaction from the session account, signs it
// and hands it to the node. Sends are serialised per session so the pending
// nonce read and the submission are not interleaved with another send.
func (g *Gateway) submit(
	ctx context.Context,
	snap session.Snapshot,
	to common.Address,
	value *big.Int,
	data []byte,
) (common.Hash, error) {
	unlock := g.sess.LockSends()
	defer unlock()

	w := snap.Write
	client := w.Client()
	from := w.Signer().Address()

	nonce, err := client.PendingNonceAt(ctx, from)
	if err != nil {
		return common.Hash{}, wtypes.NetworkFailure(err, "pending nonce")
	}

	gas, err := client.EstimateGas(ctx, ethereum.CallMsg{
		From:  from,
		To:    &to,
		Value: value,
		Data:  data,
	})
	if err != nil {
		return common.Hash{}, wtypes.NetworkFailure(err, "estimate gas")
	}

	feeCap, tip, err := resolveEIP1559Fees(ctx, client)
	if err != nil {
		return common.Hash{}, err
	}

	tx := types.NewTx(&types.DynamicFeeTx{
		ChainID:   w.ChainID(),
		Nonce:     nonce,
		GasTipCap: tip,
		GasFeeCap: feeCap,
		Gas:       gas,
		To:        &to,
		Value:     value,
		Data:      data,
	})

	signed, err := w.Signer().SignTx(ctx, tx, w.ChainID())
	if err != nil {
		return common.Hash{}, err
	}

	if err := client.SendTransaction(ctx, signed); err != nil {
		return common.Hash{}, wtypes.NetworkFailure(err, "send transaction")
	}

	log.Info("gateway: transaction submitted",
		"hash", signed.Hash().Hex(),
		"network", snap.Network.NetworkName,
		"nonce", nonce,
		"to", to.Hex(),
	)
	return signed.Hash(), nil
}

// resolveEIP1559Fees returns (maxFee, tip) with maxFee = 2*baseFee + tip.
func resolveEIP1559Fees(ctx context.Context, client chains.EVMClient) (*big.Int, *big.Int, error) {
	tip, err := client.SuggestGasTipCap(ctx)
	if err != nil {
		return nil, nil, wtypes.NetworkFailure(err, "suggest tip")
	}

	hdr, err := client.HeaderByNumber(ctx, nil)
	if err != nil {
		return nil, nil, wtypes.NetworkFailure(err, "latest header")
	}
	baseFee := hdr.BaseFee
	if baseFee == nil {
		baseFee = big.NewInt(0)
	}

	maxFee := new(big.Int).Add(new(big.Int).Mul(baseFee, big.NewInt(2)), tip)
	return maxFee, tip, nil
}
