package userwallet

import (
	"context"
	"crypto/ecdsa"
	"math/big"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/quantumauth-io/pyro-wing-wallet/internal/constants"
	"github.com/quantumauth-io/pyro-wing-wallet/internal/ethwallet/wtypes"
)

// Secret is the material sealed inside the vault. Exactly one field is set.
type Secret struct {
	Mnemonic   string `json:"mnemonic,omitempty"`
	PrivateKey string `json:"privateKey,omitempty"`
}

func (s Secret) HasMnemonic() bool { return s.Mnemonic != "" }

// Validate checks that exactly one variant is present and well formed.
func (s Secret) Validate() error {
	switch {
	case s.Mnemonic != "" && s.PrivateKey != "":
		return errors.New("secret carries both mnemonic and private key")
	case s.Mnemonic != "":
		return ValidateMnemonic(s.Mnemonic)
	case s.PrivateKey != "":
		_, err := parsePrivateKeyHex(s.PrivateKey)
		return err
	default:
		return errors.New("secret is empty")
	}
}

// Account is an unlocked EOA: the secp256k1 key and its address.
type Account struct {
	key     *ecdsa.PrivateKey
	address common.Address
}

var _ wtypes.Signer = (*Account)(nil)

// FromSecret derives the account for whichever variant s carries.
func FromSecret(s Secret) (*Account, error) {
	if s.Mnemonic != "" {
		return FromMnemonic(s.Mnemonic)
	}
	return FromPrivateKeyHex(s.PrivateKey)
}

// FromPrivateKeyHex builds an account from a 0x-prefixed 32-byte hex scalar.
func FromPrivateKeyHex(privKeyHex string) (*Account, error) {
	key, err := parsePrivateKeyHex(privKeyHex)
	if err != nil {
		return nil, err
	}
	return newAccount(key), nil
}

func newAccount(key *ecdsa.PrivateKey) *Account {
	return &Account{
		key:     key,
		address: crypto.PubkeyToAddress(key.PublicKey),
	}
}

func (a *Account) Address() common.Address {
	return a.address
}

// PrivateKeyHex returns the key as 0x + 64 lower-case hex digits.
func (a *Account) PrivateKeyHex() string {
	return hexutil.Encode(crypto.FromECDSA(a.key))
}

func (a *Account) SignTx(ctx context.Context, tx *types.Transaction, chainID *big.Int) (*types.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if chainID == nil || chainID.Sign() <= 0 {
		return nil, errors.New("chain id is required")
	}
	signed, err := types.SignTx(tx, types.LatestSignerForChainID(chainID), a.key)
	if err != nil {
		return nil, errors.Wrap(err, "sign tx")
	}
	return signed, nil
}

// --- helpers ---

func parsePrivateKeyHex(s string) (*ecdsa.PrivateKey, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, constants.HexPrefix0x) || len(s) != 66 {
		return nil, errors.Wrap(wtypes.ErrInvalidPrivateKeyFormat, "want 0x followed by 64 hex digits")
	}
	b, err := hexToBytesStrict(s[2:])
	if err != nil {
		return nil, errors.Wrap(wtypes.ErrInvalidPrivateKeyFormat, err.Error())
	}
	defer clear(b)

	key, err := crypto.ToECDSA(b)
	if err != nil {
		return nil, errors.Wrap(wtypes.ErrInvalidPrivateKeyFormat, "scalar out of range")
	}
	return key, nil
}

func hexToBytesStrict(hexStr string) ([]byte, error) {
	if len(hexStr) != 64 {
		return nil, errors.Newf("invalid privkey hex length: got %d want 64", len(hexStr))
	}
	out := make([]byte, 32)
	for i := 0; i < 32; i++ {
		hi, ok := fromHexChar(hexStr[i*2])
		if !ok {
			return nil, errors.Newf("invalid hex char at %d", i*2)
		}
		lo, ok := fromHexChar(hexStr[i*2+1])
		if !ok {
			return nil, errors.Newf("invalid hex char at %d", i*2+1)
		}
		out[i] = (hi << 4) | lo
	}
	return out, nil
}

func fromHexChar(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	default:
		return 0, false
	}
}
