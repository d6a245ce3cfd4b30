// Package custody owns the vault lifecycle: creation from a mnemonic or a
// raw key, unlock into the session, lock, and password-gated export.
package custody

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/quantumauth-io/pyro-wing-wallet/internal/ethwallet/userwallet"
	"github.com/quantumauth-io/pyro-wing-wallet/internal/ethwallet/wtypes"
	"github.com/quantumauth-io/pyro-wing-wallet/internal/securefile"
	"github.com/quantumauth-io/pyro-wing-wallet/internal/session"
	"github.com/quantumauth-io/pyro-wing-wallet/internal/vaultstore"
	"github.com/quantumauth-io/quantum-go-utils/log"
)

type Custody struct {
	store  *vaultstore.Store
	sess   *session.Session
	policy PasswordPolicy
	params securefile.Params
}

type Option func(*Custody)

func WithPasswordPolicy(p PasswordPolicy) Option {
	return func(c *Custody) { c.policy = p }
}

// WithCipherParams overrides key-derivation parameters for new vaults and
// for reading existing ones.
func WithCipherParams(p securefile.Params) Option {
	return func(c *Custody) { c.params = p }
}

func New(store *vaultstore.Store, sess *session.Session, opts ...Option) *Custody {
	c := &Custody{
		store:  store,
		sess:   sess,
		policy: DefaultPasswordPolicy(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// CreateFromMnemonic seals mnemonic (or a freshly generated one when empty)
// under password and persists it. The phrase is returned once for backup.
func (c *Custody) CreateFromMnemonic(ctx context.Context, password, mnemonic string) (string, error) {
	if mnemonic == "" {
		m, err := userwallet.NewMnemonic()
		if err != nil {
			return "", err
		}
		mnemonic = m
	} else {
		mnemonic = userwallet.NormalizeMnemonic(mnemonic)
		if err := userwallet.ValidateMnemonic(mnemonic); err != nil {
			return "", err
		}
	}
	if err := c.policy.Check(password); err != nil {
		return "", err
	}

	if err := c.seal(ctx, password, userwallet.Secret{Mnemonic: mnemonic}); err != nil {
		return "", err
	}
	log.Info("custody: vault created", "kind", "mnemonic")
	return mnemonic, nil
}

// CreateFromPrivateKey seals a 0x-prefixed 32-byte hex key under password.
// The key is stored in canonical form: trimmed, 0x and lower-case hex.
func (c *Custody) CreateFromPrivateKey(ctx context.Context, password, privateKey string) error {
	acct, err := userwallet.FromPrivateKeyHex(privateKey)
	if err != nil {
		return err
	}
	if err := c.policy.Check(password); err != nil {
		return err
	}

	if err := c.seal(ctx, password, userwallet.Secret{PrivateKey: acct.PrivateKeyHex()}); err != nil {
		return err
	}
	log.Info("custody: vault created", "kind", "private_key")
	return nil
}

// seal replaces the vault record and locks the session.
func (c *Custody) seal(ctx context.Context, password string, secret userwallet.Secret) error {
	pw := []byte(password)
	defer clear(pw)

	payload, err := securefile.Encrypt(secret, pw, c.params)
	if err != nil {
		return errors.Wrap(err, "encrypt vault")
	}
	if err := c.store.Save(ctx, payload); err != nil {
		return errors.Wrap(err, "save vault")
	}
	c.sess.Clear()
	return nil
}

func (c *Custody) HasVault(ctx context.Context) (bool, error) {
	p, err := c.store.Load(ctx)
	switch {
	case errors.Is(err, vaultstore.ErrCorrupt):
		// a record exists even if it cannot be read
		return true, nil
	case err != nil:
		return false, err
	}
	return p != nil, nil
}

// Unlock decrypts the vault, derives the account and binds it to the
// session. On any failure the session is left as it was.
func (c *Custody) Unlock(ctx context.Context, password string) error {
	secret, err := c.open(ctx, password)
	if err != nil {
		return err
	}

	acct, err := userwallet.FromSecret(secret)
	if err != nil {
		return errors.Wrap(err, "derive account")
	}
	c.sess.Bind(acct)
	return nil
}

// Lock drops the unlocked account.
func (c *Custody) Lock() {
	c.sess.Clear()
}

// Reset locks the session and removes the vault record.
func (c *Custody) Reset(ctx context.Context) error {
	if err := c.store.Clear(ctx); err != nil {
		return err
	}
	c.sess.Clear()
	log.Info("custody: vault reset")
	return nil
}

// CurrentAddress returns the unlocked account's address, or nil when locked.
func (c *Custody) CurrentAddress() *common.Address {
	addr, ok := c.sess.Address()
	if !ok {
		return nil
	}
	return &addr
}

// ExportPrivateKey re-authenticates against the stored vault and returns the
// account key as 0x-prefixed hex. Session state is not consulted.
func (c *Custody) ExportPrivateKey(ctx context.Context, password string) (string, error) {
	secret, err := c.open(ctx, password)
	if err != nil {
		return "", err
	}
	acct, err := userwallet.FromSecret(secret)
	if err != nil {
		return "", errors.Wrap(err, "derive account")
	}
	return acct.PrivateKeyHex(), nil
}

// ExportMnemonic re-authenticates and returns the recovery phrase.
func (c *Custody) ExportMnemonic(ctx context.Context, password string) (string, error) {
	secret, err := c.open(ctx, password)
	if err != nil {
		return "", err
	}
	if !secret.HasMnemonic() {
		return "", wtypes.ErrNoMnemonic
	}
	return secret.Mnemonic, nil
}

// open loads and decrypts the vault record with password.
func (c *Custody) open(ctx context.Context, password string) (userwallet.Secret, error) {
	payload, err := c.store.Load(ctx)
	if errors.Is(err, vaultstore.ErrCorrupt) {
		return userwallet.Secret{}, wtypes.ErrWrongPassword
	}
	if err != nil {
		return userwallet.Secret{}, err
	}
	if payload == nil {
		return userwallet.Secret{}, wtypes.ErrVaultNotFound
	}

	pw := []byte(password)
	defer clear(pw)

	secret, err := securefile.Decrypt[userwallet.Secret](payload, pw, c.params)
	if err != nil {
		if errors.Is(err, securefile.ErrDecryption) {
			log.Warn("custody: vault authentication failed")
			return userwallet.Secret{}, wtypes.ErrWrongPassword
		}
		return userwallet.Secret{}, err
	}
	if err := secret.Validate(); err != nil {
		return userwallet.Secret{}, wtypes.ErrWrongPassword
	}
	return secret, nil
}
