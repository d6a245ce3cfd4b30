// Package app wires storage, chains, session, custody, gateway and router
// from a loaded config.
package app

import (
	"context"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/quantumauth-io/pyro-wing-wallet/internal/assets"
	"github.com/quantumauth-io/pyro-wing-wallet/internal/chains"
	"github.com/quantumauth-io/pyro-wing-wallet/internal/config"
	"github.com/quantumauth-io/pyro-wing-wallet/internal/constants"
	"github.com/quantumauth-io/pyro-wing-wallet/internal/custody"
	"github.com/quantumauth-io/pyro-wing-wallet/internal/gateway"
	"github.com/quantumauth-io/pyro-wing-wallet/internal/router"
	"github.com/quantumauth-io/pyro-wing-wallet/internal/session"
	"github.com/quantumauth-io/pyro-wing-wallet/internal/vaultstore"
	"github.com/quantumauth-io/quantum-go-utils/log"
)

type App struct {
	Custody *custody.Custody
	Gateway *gateway.Gateway
	Router  *router.Router
	Store   *vaultstore.Store
	Assets  *assets.Manager

	chains  *chains.Service
	closers []func() error
}

type Option func(*options)

type options struct {
	dial    chains.DialFunc
	version string
}

// WithDialer replaces the ethclient dialer, mainly for tests.
func WithDialer(d chains.DialFunc) Option {
	return func(o *options) { o.dial = d }
}

func WithVersion(v string) Option {
	return func(o *options) { o.version = v }
}

func New(ctx context.Context, cfg *config.Config, opts ...Option) (*App, error) {
	o := options{dial: chains.DialEthclient, version: "dev"}
	for _, fn := range opts {
		fn(&o)
	}

	a := &App{}
	backend, err := a.openBackend(ctx, cfg.Storage)
	if err != nil {
		return nil, err
	}
	a.Store = vaultstore.New(backend)
	a.Assets = assets.NewManager(backend)

	svc, err := chains.NewService(cfg.Ethereum, o.dial)
	if err != nil {
		_ = a.Close()
		return nil, errors.Wrap(err, "chains")
	}
	a.chains = svc
	a.closers = append(a.closers, svc.Close)

	sess, err := session.New(ctx, svc)
	if err != nil {
		_ = a.Close()
		return nil, errors.Wrap(err, "session")
	}

	policy := custody.PasswordPolicy{
		MinLength: cfg.Policy.MinPasswordLength,
		MinScore:  cfg.Policy.MinPasswordScore,
	}
	a.Custody = custody.New(a.Store, sess, custody.WithPasswordPolicy(policy))
	a.Gateway = gateway.New(sess)
	a.Router = router.New(a.Custody, a.Gateway,
		router.WithVersion(o.version),
		router.WithTimeout(cfg.Host.RequestTimeout),
		router.WithAssets(a.Assets),
	)

	log.Info("wallet core ready",
		"storage", cfg.Storage.Backend,
		"network", a.Gateway.Network().NetworkName,
	)
	return a, nil
}

func (a *App) openBackend(ctx context.Context, s config.StorageSettings) (vaultstore.Backend, error) {
	switch s.Backend {
	case config.BackendMemory:
		log.Warn("vault storage is in-memory; the vault will not survive a restart")
		return vaultstore.NewMemoryBackend(), nil
	case config.BackendSQLite:
		db, err := vaultstore.OpenSQLite(ctx, filepath.Join(s.Dir, constants.VaultDBFile))
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, db.Close)
		return db, nil
	case config.BackendFile, "":
		return vaultstore.NewFileBackend(s.Dir)
	default:
		return nil, errors.Newf("unknown storage backend %q", s.Backend)
	}
}

// Close locks the wallet and releases clients and storage.
func (a *App) Close() error {
	if a.Custody != nil {
		a.Custody.Lock()
	}
	var errs error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = errors.CombineErrors(errs, err)
		}
	}
	a.closers = nil
	return errs
}
