package chains

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/quantumauth-io/pyro-wing-wallet/internal/ethwallet/wtypes"
	"github.com/quantumauth-io/quantum-go-utils/log"
)

// Service resolves network ids to chain parameters and hands out one cached
// client per network.
type Service struct {
	cfg  Config
	dial DialFunc

	mu               sync.Mutex
	clientsByNetwork map[string]EVMClient
}

// DialEthclient dials an HTTP(S) or WS(S) endpoint with go-ethereum's ethclient.
func DialEthclient(ctx context.Context, rpcURL string) (EVMClient, error) {
	c, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func NewService(cfg Config, dial DialFunc) (*Service, error) {
	if len(cfg.Networks) == 0 {
		return nil, errors.New("chains config has no networks")
	}
	if dial == nil {
		dial = DialEthclient
	}

	normalized := make(map[string]NetworkConfig, len(cfg.Networks))
	for name, n := range cfg.Networks {
		key := strings.ToLower(strings.TrimSpace(name))
		if key == "" {
			return nil, errors.New("network with empty name")
		}
		if n.ChainID == 0 {
			return nil, errors.Newf("network %q has chainId 0", key)
		}
		n.Name = key
		if n.ChainIDHex == "" {
			n.ChainIDHex = fmt.Sprintf("0x%x", n.ChainID)
		}
		normalized[key] = n
	}
	cfg.Networks = normalized
	cfg.DefaultNetwork = strings.ToLower(strings.TrimSpace(cfg.DefaultNetwork))

	service := &Service{
		cfg:              cfg,
		dial:             dial,
		clientsByNetwork: make(map[string]EVMClient),
	}

	if _, err := service.ResolveNetworkByName(cfg.DefaultNetwork); err != nil {
		return nil, errors.Wrap(err, "default network")
	}
	return service, nil
}

func (s *Service) DefaultNetwork() string {
	return s.cfg.DefaultNetwork
}

// CanonicalName maps a network id, alias or chain id (0xaa36a7 or 11155111)
// to its configured name.
func (s *Service) CanonicalName(networkName string) (string, error) {
	key := strings.ToLower(strings.TrimSpace(networkName))
	if key == "" {
		return "", errors.Wrap(wtypes.ErrUnknownNetwork, "network name is empty")
	}
	if _, ok := s.cfg.Networks[key]; ok {
		return key, nil
	}
	for name, n := range s.cfg.Networks {
		for _, alias := range n.Aliases {
			if strings.EqualFold(strings.TrimSpace(alias), key) {
				return name, nil
			}
		}
	}
	if name, ok := s.networkForChainID(key); ok {
		return name, nil
	}
	return "", errors.Wrapf(wtypes.ErrUnknownNetwork, "%q", networkName)
}

// ClientForNetwork returns (and caches) the client for a network.
func (s *Service) ClientForNetwork(ctx context.Context, networkName string) (EVMClient, ResolvedChain, error) {
	resolved, err := s.ResolveNetworkByName(networkName)
	if err != nil {
		return nil, ResolvedChain{}, err
	}
	cacheKey := resolved.NetworkName

	s.mu.Lock()
	if existing := s.clientsByNetwork[cacheKey]; existing != nil {
		s.mu.Unlock()
		return existing, resolved, nil
	}
	s.mu.Unlock()

	// Dial outside the lock.
	dialed, err := s.dial(ctx, resolved.URL)
	if err != nil {
		return nil, ResolvedChain{}, wtypes.NetworkFailure(err, fmt.Sprintf("dial %s", resolved.NetworkName))
	}

	s.mu.Lock()
	if existing := s.clientsByNetwork[cacheKey]; existing != nil {
		s.mu.Unlock()
		safeClose(dialed)
		return existing, resolved, nil
	}
	s.clientsByNetwork[cacheKey] = dialed
	s.mu.Unlock()

	log.Info("chains: client ready", "network", resolved.NetworkName, "chain_id", resolved.ChainID, "rpc", resolved.RPCName)
	return dialed, resolved, nil
}

// Close closes all cached clients.
func (s *Service) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, c := range s.clientsByNetwork {
		safeClose(c)
		delete(s.clientsByNetwork, key)
	}
	return nil
}

func safeClose(c EVMClient) {
	if closer, ok := c.(interface{ Close() }); ok {
		closer.Close()
	}
}

// networkForChainID matches key against configured chain ids, either 0x hex
// or decimal.
func (s *Service) networkForChainID(key string) (string, bool) {
	if strings.HasPrefix(key, "0x") {
		for name, n := range s.cfg.Networks {
			if strings.EqualFold(n.ChainIDHex, key) {
				return name, true
			}
		}
		return "", false
	}
	id, err := strconv.ParseUint(key, 10, 64)
	if err != nil || id == 0 {
		return "", false
	}
	for name, n := range s.cfg.Networks {
		if n.ChainID == id {
			return name, true
		}
	}
	return "", false
}

func (s *Service) ResolveNetworkByName(networkName string) (ResolvedChain, error) {
	name, err := s.CanonicalName(networkName)
	if err != nil {
		return ResolvedChain{}, err
	}
	return s.resolveFromNetworkConfig(name, s.cfg.Networks[name])
}

func (s *Service) resolveFromNetworkConfig(networkName string, network NetworkConfig) (ResolvedChain, error) {
	// pick RPC by preferred name; otherwise first
	var selected *RPC

	if preferred := strings.TrimSpace(s.cfg.PreferredRPCName); preferred != "" {
		for i := range network.RPCs {
			if strings.EqualFold(strings.TrimSpace(network.RPCs[i].Name), preferred) {
				selected = &network.RPCs[i]
				break
			}
		}
	}
	if selected == nil {
		if len(network.RPCs) == 0 {
			return ResolvedChain{}, errors.Newf("network %q has no RPCs configured", networkName)
		}
		selected = &network.RPCs[0]
	}
	if strings.TrimSpace(selected.URL) == "" {
		return ResolvedChain{}, errors.Newf("network %q rpc %q url is empty", networkName, selected.Name)
	}

	return ResolvedChain{
		NetworkName: networkName,
		ChainID:     network.ChainID,
		ChainIDHex:  network.ChainIDHex,
		Explorer:    network.Explorer,
		RPCName:     selected.Name,
		URL:         selected.URL,
	}, nil
}
