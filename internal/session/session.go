// Package session owns the unlocked wallet state: the signing account, the
// active network and the clients bound to them.
//
// All mutations (Bind, SwitchNetwork, Clear) take the write lock, so readers
// always observe a coherent tuple. Writers that race still resolve
// last-writer-wins.
package session

import (
	"context"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/quantumauth-io/pyro-wing-wallet/internal/chains"
	"github.com/quantumauth-io/pyro-wing-wallet/internal/ethwallet/wtypes"
	"github.com/quantumauth-io/quantum-go-utils/log"
)

// WriteClient pairs a chain client with the signer allowed to use it.
type WriteClient struct {
	client  chains.EVMClient
	signer  wtypes.Signer
	chainID *big.Int
}

func (w *WriteClient) Client() chains.EVMClient { return w.client }
func (w *WriteClient) Signer() wtypes.Signer    { return w.signer }
func (w *WriteClient) ChainID() *big.Int        { return new(big.Int).Set(w.chainID) }

// Snapshot is a consistent read of the session taken under the lock.
type Snapshot struct {
	Network chains.ResolvedChain
	Read    chains.EVMClient
	Account wtypes.Signer
	Write   *WriteClient
}

func (s Snapshot) Unlocked() bool { return s.Account != nil }

type Session struct {
	chains *chains.Service

	mu      sync.RWMutex
	network chains.ResolvedChain
	read    chains.EVMClient
	account wtypes.Signer
	write   *WriteClient

	sendMu sync.Mutex
}

// New binds a locked session to the service's default network.
func New(ctx context.Context, svc *chains.Service) (*Session, error) {
	s := &Session{chains: svc}
	if _, err := s.SwitchNetwork(ctx, svc.DefaultNetwork()); err != nil {
		return nil, err
	}
	return s, nil
}

// Bind installs account and builds its write client on the current network.
func (s *Session) Bind(account wtypes.Signer) {
	if account == nil {
		s.Clear()
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.account = account
	s.write = newWriteClient(s.read, account, s.network)
	log.Info("session: unlocked", "address", account.Address().Hex(), "network", s.network.NetworkName)
}

// SwitchNetwork rebinds the read client to networkName and, when unlocked,
// rebuilds the write client for the same account. The prior state is kept if
// resolution or dialing fails.
func (s *Session) SwitchNetwork(ctx context.Context, networkName string) (chains.ResolvedChain, error) {
	client, resolved, err := s.chains.ClientForNetwork(ctx, networkName)
	if err != nil {
		return chains.ResolvedChain{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.network = resolved
	s.read = client
	s.write = nil
	if s.account != nil {
		s.write = newWriteClient(client, s.account, resolved)
	}
	log.Info("session: network selected", "network", resolved.NetworkName, "chain_id", resolved.ChainID)
	return resolved, nil
}

// Clear drops the account and its write client. The read binding stays.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.account != nil {
		log.Info("session: locked")
	}
	s.account = nil
	s.write = nil
}

func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Snapshot{
		Network: s.network,
		Read:    s.read,
		Account: s.account,
		Write:   s.write,
	}
}

// Address returns the unlocked account's address.
func (s *Session) Address() (common.Address, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.account == nil {
		return common.Address{}, false
	}
	return s.account.Address(), true
}

func (s *Session) Network() chains.ResolvedChain {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.network
}

// LockSends serialises transaction submission for the session's account so
// concurrent sends do not race on the pending nonce.
func (s *Session) LockSends() func() {
	s.sendMu.Lock()
	return s.sendMu.Unlock
}

func newWriteClient(client chains.EVMClient, signer wtypes.Signer, network chains.ResolvedChain) *WriteClient {
	return &WriteClient{
		client:  client,
		signer:  signer,
		chainID: network.ChainIDBig(),
	}
}
