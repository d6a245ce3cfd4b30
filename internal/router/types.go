package router

import (
	"encoding/json"

	"github.com/quantumauth-io/pyro-wing-wallet/internal/assets"
)

// Request is the tagged message sent by the extension. Only the fields the
// tag needs are read.
type Request struct {
	ID   string `json:"id,omitempty"`
	Type string `json:"type"`

	Password   string `json:"password,omitempty"`
	Mnemonic   string `json:"mnemonic,omitempty"`
	PrivateKey string `json:"privateKey,omitempty"`

	Token    string `json:"token,omitempty"`
	To       string `json:"to,omitempty"`
	ValueEth string `json:"valueEth,omitempty"`
	Amount   string `json:"amount,omitempty"`
	Decimals *uint8 `json:"decimals,omitempty"`

	Net  string `json:"net,omitempty"`
	Size int    `json:"size,omitempty"`
}

// Response is {ok:true, ...fields} on success and {ok:false, error} on failure.
type Response struct {
	ID    string `json:"id,omitempty"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`

	Mnemonic   string  `json:"mnemonic,omitempty"`
	PrivateKey string  `json:"privateKey,omitempty"`
	Address    *string `json:"address,omitempty"`
	Balance    string  `json:"balance,omitempty"`
	Symbol     string  `json:"symbol,omitempty"`
	Decimals   *uint8  `json:"decimals,omitempty"`
	Hash       string  `json:"hash,omitempty"`

	Network  string `json:"network,omitempty"`
	ChainID  uint64 `json:"chainId,omitempty"`
	QR       string `json:"qr,omitempty"`
	HasVault *bool  `json:"hasVault,omitempty"`
	Unlocked *bool  `json:"unlocked,omitempty"`
	Version  string `json:"version,omitempty"`

	Tokens []assets.Asset `json:"tokens,omitempty"`

	// nullAddress makes Address encode as an explicit null.
	nullAddress bool
}

// MarshalJSON keeps "address": null on a locked getAddress reply, which
// omitempty would drop.
func (r Response) MarshalJSON() ([]byte, error) {
	type plain Response
	if !r.nullAddress {
		return json.Marshal(plain(r))
	}
	return json.Marshal(struct {
		plain
		Address *string `json:"address"`
	}{plain: plain(r)})
}

const (
	TypeCreateVault               = "createVault"
	TypeCreateVaultFromPrivateKey = "createVaultFromPrivateKey"
	TypeHasVault                  = "hasVault"
	TypeUnlock                    = "unlock"
	TypeLock                      = "lock"
	TypeResetVault                = "resetVault"
	TypeGetAddress                = "getAddress"
	TypeGetAddressQR              = "getAddressQr"
	TypeGetBalance                = "getBalance"
	TypeGetErc20                  = "getErc20"
	TypeSendTx                    = "sendTx"
	TypeSendErc20                 = "sendErc20"
	TypeSetNetwork                = "setNetwork"
	TypeGetNetwork                = "getNetwork"
	TypeGetPrivateKey             = "getPrivateKey"
	TypeGetMnemonic               = "getMnemonic"
	TypeStatus                    = "status"
	TypeAddToken                  = "addToken"
	TypeListTokens                = "listTokens"
	TypeRemoveToken               = "removeToken"

	// typePrefix is accepted in front of every tag.
	typePrefix = "wallet:"

	errUnknownMessage = "unknown_message"
	errBadJSON        = "invalid json"
)
