package wtypes

import (
	"github.com/cockroachdb/errors"
)

// Error taxonomy shared by custody, gateway and router. Callers classify with
// errors.Is; the router surfaces err.Error() verbatim.
var (
	ErrInvalidMnemonic         = errors.New("invalid mnemonic")
	ErrInvalidPrivateKeyFormat = errors.New("invalid private key format")
	ErrVaultNotFound           = errors.New("vault not found")
	ErrWrongPassword           = errors.New("wrong password")
	ErrNoMnemonic              = errors.New("vault was imported from a private key and has no mnemonic")
	ErrLocked                  = errors.New("wallet is locked")
	ErrInvalidAmount           = errors.New("invalid amount")
	ErrNetwork                 = errors.New("network error")

	ErrInvalidAddress = errors.New("invalid address")
	ErrUnknownNetwork = errors.New("unknown network")
	ErrWeakPassword   = errors.New("password does not meet policy")
)

// NetworkFailure wraps an RPC/transport failure with the operation that caused
// it and marks it as ErrNetwork. A nil err stays nil.
func NetworkFailure(err error, op string) error {
	if err == nil {
		return nil
	}
	return errors.Mark(errors.Wrap(err, op), ErrNetwork)
}

// InvalidAmount returns ErrInvalidAmount prefixed with a short reason.
func InvalidAmount(format string, args ...any) error {
	return errors.Wrapf(ErrInvalidAmount, format, args...)
}
