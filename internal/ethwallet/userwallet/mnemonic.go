package userwallet

import (
	"strings"

	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/quantumauth-io/pyro-wing-wallet/internal/constants"
	"github.com/quantumauth-io/pyro-wing-wallet/internal/ethwallet/wtypes"
	"github.com/tyler-smith/go-bip39"
)

// NewMnemonic returns a fresh 12-word BIP-39 phrase (128 bits of entropy).
func NewMnemonic() (string, error) {
	entropy, err := bip39.NewEntropy(constants.MnemonicEntropyBits)
	if err != nil {
		return "", errors.Wrap(err, "generate entropy")
	}
	defer clear(entropy)

	m, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return "", errors.Wrap(err, "generate mnemonic")
	}
	return m, nil
}

// NormalizeMnemonic lower-cases the phrase and collapses whitespace.
func NormalizeMnemonic(m string) string {
	return strings.Join(strings.Fields(strings.ToLower(m)), " ")
}

// ValidateMnemonic checks wordlist membership and checksum.
func ValidateMnemonic(m string) error {
	if !bip39.IsMnemonicValid(m) {
		return wtypes.ErrInvalidMnemonic
	}
	return nil
}

// FromMnemonic derives the account at m/44'/60'/0'/0/0 with an empty passphrase.
func FromMnemonic(m string) (*Account, error) {
	return FromMnemonicPath(m, constants.DefaultDerivationPath)
}

func FromMnemonicPath(m, path string) (*Account, error) {
	seed, err := bip39.NewSeedWithErrorChecking(m, "")
	if err != nil {
		return nil, wtypes.ErrInvalidMnemonic
	}
	defer clear(seed)

	dp, err := accounts.ParseDerivationPath(path)
	if err != nil {
		return nil, errors.Wrapf(err, "parse derivation path %q", path)
	}

	key, err := hdkeychain.NewMaster(seed, &chaincfg.MainNetParams)
	if err != nil {
		return nil, errors.Wrap(err, "master key")
	}
	for _, idx := range dp {
		key, err = key.Derive(idx)
		if err != nil {
			return nil, errors.Wrapf(err, "derive %d", idx)
		}
	}

	priv, err := key.ECPrivKey()
	if err != nil {
		return nil, errors.Wrap(err, "extract private key")
	}
	raw := priv.Serialize()
	defer clear(raw)

	ecdsaKey, err := crypto.ToECDSA(raw)
	if err != nil {
		return nil, errors.Wrap(err, "to ecdsa")
	}
	return newAccount(ecdsaKey), nil
}
