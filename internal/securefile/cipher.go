// Package securefile holds the vault cipher (PBKDF2-HMAC-SHA256 + AES-256-GCM)
// and the small file helpers used to keep vault state on disk.
package securefile

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"

	"github.com/cockroachdb/errors"
	"github.com/quantumauth-io/pyro-wing-wallet/internal/constants"
	"golang.org/x/crypto/pbkdf2"
)

var (
	// ErrDecryption is returned when the payload cannot be authenticated.
	// Kept generic: wrong password and corrupted data look the same.
	ErrDecryption = errors.New("invalid password or corrupted payload")

	ErrUnsupportedVersion = errors.New("unsupported payload version")
)

// EncryptedPayload is the persisted envelope. Field names match the vault
// record written by the browser extension.
type EncryptedPayload struct {
	Version    int    `json:"v"`
	Salt       string `json:"salt"`
	IV         string `json:"iv"`
	Ciphertext string `json:"data"`
}

// Params controls key derivation. Zero fields fall back to the defaults.
type Params struct {
	Iterations int
}

func mergeParams(p ...Params) Params {
	out := Params{Iterations: constants.PBKDF2Iterations}
	if len(p) > 0 && p[0].Iterations > 0 {
		out.Iterations = p[0].Iterations
	}
	return out
}

// Encrypt serialises v to JSON and seals it under a key derived from password.
// A fresh salt and a fresh IV are drawn for every call.
func Encrypt[T any](v T, password []byte, p ...Params) (*EncryptedPayload, error) {
	params := mergeParams(p...)

	plain, err := json.Marshal(v)
	if err != nil {
		return nil, errors.Wrap(err, "marshal secret")
	}
	defer clear(plain)

	salt := make([]byte, constants.SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return nil, errors.Wrap(err, "rand salt")
	}
	iv := make([]byte, constants.IVLen)
	if _, err := rand.Read(iv); err != nil {
		return nil, errors.Wrap(err, "rand iv")
	}

	key := deriveKey(password, salt, params)
	defer clear(key)

	aead, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	ct := aead.Seal(nil, iv, plain, nil)

	return &EncryptedPayload{
		Version:    constants.SchemaV1,
		Salt:       base64.StdEncoding.EncodeToString(salt),
		IV:         base64.StdEncoding.EncodeToString(iv),
		Ciphertext: base64.StdEncoding.EncodeToString(ct),
	}, nil
}

// Decrypt opens payload with password and unmarshals the plaintext into T.
func Decrypt[T any](payload *EncryptedPayload, password []byte, p ...Params) (T, error) {
	var zero T
	if payload == nil {
		return zero, errors.New("payload is nil")
	}
	if payload.Version != constants.SchemaV1 {
		return zero, errors.Wrapf(ErrUnsupportedVersion, "version %d", payload.Version)
	}
	params := mergeParams(p...)

	salt, err := base64.StdEncoding.DecodeString(payload.Salt)
	if err != nil || len(salt) == 0 {
		return zero, ErrDecryption
	}
	iv, err := base64.StdEncoding.DecodeString(payload.IV)
	if err != nil || len(iv) != constants.IVLen {
		return zero, ErrDecryption
	}
	ct, err := base64.StdEncoding.DecodeString(payload.Ciphertext)
	if err != nil {
		return zero, ErrDecryption
	}

	key := deriveKey(password, salt, params)
	defer clear(key)

	aead, err := newGCM(key)
	if err != nil {
		return zero, err
	}

	plain, err := aead.Open(nil, iv, ct, nil)
	if err != nil {
		return zero, ErrDecryption
	}
	defer clear(plain)

	var out T
	if err := json.Unmarshal(plain, &out); err != nil {
		return zero, ErrDecryption
	}
	return out, nil
}

func deriveKey(password, salt []byte, p Params) []byte {
	return pbkdf2.Key(password, salt, p.Iterations, constants.DerivedKeyLen, sha256.New)
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, errors.Wrap(err, "aes")
	}
	// The IV is 12 bytes, the GCM standard nonce size.
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, errors.Wrap(err, "gcm")
	}
	return aead, nil
}
