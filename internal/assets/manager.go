// Package assets keeps the user's custom ERC-20 token list per network. The
// list is public metadata and is stored unencrypted next to the vault.
package assets

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/quantumauth-io/pyro-wing-wallet/internal/constants"
	"github.com/quantumauth-io/pyro-wing-wallet/internal/ethwallet/wtypes"
	"github.com/quantumauth-io/pyro-wing-wallet/internal/vaultstore"
)

// Fetcher reads token metadata from chain.
type Fetcher func(ctx context.Context, token common.Address) (Asset, error)

type Manager struct {
	backend vaultstore.Backend
	key     string

	mu     sync.Mutex
	store  Store
	loaded bool
}

func NewManager(backend vaultstore.Backend) *Manager {
	return &Manager{
		backend: backend,
		key:     constants.TokensKey,
	}
}

// Load reads the token list from the backend. A missing record is an empty list.
func (m *Manager) Load(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.load(ctx)
}

func (m *Manager) load(ctx context.Context) error {
	b, err := m.backend.Get(ctx, m.key)
	if errors.Is(err, vaultstore.ErrNotFound) {
		m.store = emptyStore()
		m.loaded = true
		return nil
	}
	if err != nil {
		return errors.Wrap(err, "read token list")
	}

	var s Store
	if err := json.Unmarshal(b, &s); err != nil {
		return errors.Wrap(err, "decode token list")
	}

	normalized := emptyStore()
	if s.Schema != 0 {
		normalized.Schema = s.Schema
	}
	for netKey, byAddr := range s.Networks {
		nk := normalizeNetworkKey(netKey)
		if nk == "" {
			continue
		}
		for addrKey, asset := range byAddr {
			addr, err := normalizeAddress(addrKey)
			if err != nil {
				continue
			}
			if normalized.Networks[nk] == nil {
				normalized.Networks[nk] = map[string]Asset{}
			}
			asset.Address = addr
			normalized.Networks[nk][addr] = asset
		}
	}

	m.store = normalized
	m.loaded = true
	return nil
}

func (m *Manager) ensureLoaded(ctx context.Context) error {
	if m.loaded {
		return nil
	}
	return m.load(ctx)
}

// List returns the network's tokens ordered by symbol.
func (m *Manager) List(ctx context.Context, network string) ([]Asset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.ensureLoaded(ctx); err != nil {
		return nil, err
	}

	byAddr := m.store.Networks[normalizeNetworkKey(network)]
	out := make([]Asset, 0, len(byAddr))
	for _, a := range byAddr {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		si, sj := strings.ToLower(out[i].Symbol), strings.ToLower(out[j].Symbol)
		if si != sj {
			return si < sj
		}
		return out[i].Address < out[j].Address
	})
	return out, nil
}

// Add fetches the token's metadata and stores it. Adding a known token
// refreshes its metadata.
func (m *Manager) Add(ctx context.Context, network, address string, fetch Fetcher) (Asset, error) {
	nk := normalizeNetworkKey(network)
	if nk == "" {
		return Asset{}, errors.Wrap(wtypes.ErrUnknownNetwork, "network must not be empty")
	}
	addr, err := normalizeAddress(address)
	if err != nil {
		return Asset{}, err
	}

	a, err := fetch(ctx, common.HexToAddress(addr))
	if err != nil {
		return Asset{}, err
	}
	a.Address = addr

	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.ensureLoaded(ctx); err != nil {
		return Asset{}, err
	}
	if m.store.Networks[nk] == nil {
		m.store.Networks[nk] = map[string]Asset{}
	}
	m.store.Networks[nk][addr] = a
	if err := m.persist(ctx); err != nil {
		return Asset{}, err
	}
	return a, nil
}

func (m *Manager) Remove(ctx context.Context, network, address string) error {
	nk := normalizeNetworkKey(network)
	addr, err := normalizeAddress(address)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.ensureLoaded(ctx); err != nil {
		return err
	}

	byAddr := m.store.Networks[nk]
	if _, ok := byAddr[addr]; !ok {
		return nil
	}
	delete(byAddr, addr)
	if len(byAddr) == 0 {
		delete(m.store.Networks, nk)
	}
	return m.persist(ctx)
}

func (m *Manager) persist(ctx context.Context) error {
	b, err := json.Marshal(m.store)
	if err != nil {
		return errors.Wrap(err, "encode token list")
	}
	return errors.Wrap(m.backend.Set(ctx, m.key, b), "write token list")
}

func emptyStore() Store {
	return Store{Schema: constants.SchemaV1, Networks: map[string]map[string]Asset{}}
}

func normalizeNetworkKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// normalizeAddress => checksummed canonical form
func normalizeAddress(addr string) (string, error) {
	a := strings.TrimSpace(addr)
	if a == "" {
		return "", errors.Wrap(wtypes.ErrInvalidAddress, "empty address")
	}
	if !strings.HasPrefix(a, "0x") && !strings.HasPrefix(a, "0X") {
		a = "0x" + a
	}
	a = strings.ToLower(a)
	if !common.IsHexAddress(a) {
		return "", errors.Wrapf(wtypes.ErrInvalidAddress, "%q", addr)
	}
	return common.HexToAddress(a).Hex(), nil
}
