package custody

import (
	"unicode/utf8"

	"github.com/cockroachdb/errors"
	"github.com/nbutton23/zxcvbn-go"
	"github.com/quantumauth-io/pyro-wing-wallet/internal/constants"
	"github.com/quantumauth-io/pyro-wing-wallet/internal/ethwallet/wtypes"
)

// PasswordPolicy applies to passwords chosen at vault creation. Unlock and
// export never apply it.
type PasswordPolicy struct {
	MinLength int
	// MinScore is the lowest accepted zxcvbn score (0-4). Zero disables it.
	MinScore int
}

func DefaultPasswordPolicy() PasswordPolicy {
	return PasswordPolicy{MinLength: constants.MinPasswordLength}
}

func (p PasswordPolicy) Check(password string) error {
	if utf8.RuneCountInString(password) < p.MinLength {
		return errors.Wrapf(wtypes.ErrWeakPassword, "password must be at least %d characters", p.MinLength)
	}
	if p.MinScore > 0 {
		if score := zxcvbn.PasswordStrength(password, nil).Score; score < p.MinScore {
			return errors.Wrapf(wtypes.ErrWeakPassword, "password strength %d/4 is below %d", score, p.MinScore)
		}
	}
	return nil
}
