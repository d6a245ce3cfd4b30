// Package router is the message boundary between the extension and the
// wallet core. Every request yields exactly one Response; errors and panics
// are converted to {ok:false}.
package router

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/quantumauth-io/pyro-wing-wallet/internal/assets"
	"github.com/quantumauth-io/pyro-wing-wallet/internal/custody"
	"github.com/quantumauth-io/pyro-wing-wallet/internal/ethwallet/wtypes"
	"github.com/quantumauth-io/pyro-wing-wallet/internal/gateway"
	"github.com/quantumauth-io/pyro-wing-wallet/internal/receive"
	"github.com/quantumauth-io/quantum-go-utils/log"
)

type Router struct {
	custody *custody.Custody
	gateway *gateway.Gateway

	assets *assets.Manager

	version string
	timeout time.Duration
}

type Option func(*Router)

// WithAssets enables the custom token list requests.
func WithAssets(m *assets.Manager) Option {
	return func(r *Router) { r.assets = m }
}

func WithVersion(v string) Option {
	return func(r *Router) { r.version = v }
}

// WithTimeout bounds each request. Zero leaves the caller's context as is.
func WithTimeout(d time.Duration) Option {
	return func(r *Router) { r.timeout = d }
}

func New(c *custody.Custody, g *gateway.Gateway, opts ...Option) *Router {
	r := &Router{custody: c, gateway: g, version: "dev"}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Dispatch decodes raw as a Request and handles it.
func (r *Router) Dispatch(ctx context.Context, raw []byte) Response {
	var req Request
	if err := json.Unmarshal(raw, &req); err != nil {
		return Response{OK: false, Error: errBadJSON}
	}
	return r.Handle(ctx, req)
}

// Handle runs one request. It never panics.
func (r *Router) Handle(ctx context.Context, req Request) (resp Response) {
	reqID := req.ID
	if reqID == "" {
		reqID = uuid.NewString()
	}
	tag := strings.TrimPrefix(strings.TrimSpace(req.Type), typePrefix)

	defer func() {
		if rec := recover(); rec != nil {
			log.Error("router: handler panic", "request_id", reqID, "type", tag, "panic", fmt.Sprint(rec))
			resp = Response{OK: false, Error: "internal error"}
		}
		resp.ID = req.ID
	}()

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	resp, err := r.route(ctx, tag, req)
	if err != nil {
		logFailure(reqID, tag, err)
		return Response{OK: false, Error: err.Error()}
	}
	return resp
}

func (r *Router) route(ctx context.Context, tag string, req Request) (Response, error) {
	switch tag {
	case TypeCreateVault:
		m, err := r.custody.CreateFromMnemonic(ctx, req.Password, req.Mnemonic)
		if err != nil {
			return Response{}, err
		}
		return Response{OK: true, Mnemonic: m}, nil

	case TypeCreateVaultFromPrivateKey:
		if err := r.custody.CreateFromPrivateKey(ctx, req.Password, req.PrivateKey); err != nil {
			return Response{}, err
		}
		return Response{OK: true}, nil

	case TypeHasVault:
		// ok carries the answer for this tag
		has, err := r.custody.HasVault(ctx)
		if err != nil {
			return Response{}, err
		}
		return Response{OK: has}, nil

	case TypeUnlock:
		if err := r.custody.Unlock(ctx, req.Password); err != nil {
			return Response{}, err
		}
		return Response{OK: true}, nil

	case TypeLock:
		r.custody.Lock()
		return Response{OK: true}, nil

	case TypeResetVault:
		if err := r.custody.Reset(ctx); err != nil {
			return Response{}, err
		}
		return Response{OK: true}, nil

	case TypeGetAddress:
		resp := Response{OK: true}
		if addr := r.custody.CurrentAddress(); addr != nil {
			s := addr.Hex()
			resp.Address = &s
		} else {
			resp.nullAddress = true
		}
		return resp, nil

	case TypeGetAddressQR:
		addr := r.custody.CurrentAddress()
		if addr == nil {
			return Response{}, wtypes.ErrLocked
		}
		qr, err := receive.AddressQR(*addr, req.Size)
		if err != nil {
			return Response{}, err
		}
		s := addr.Hex()
		return Response{OK: true, Address: &s, QR: qr}, nil

	case TypeGetBalance:
		bal, err := r.gateway.GetBalance(ctx)
		if err != nil {
			return Response{}, err
		}
		return Response{OK: true, Balance: bal}, nil

	case TypeGetErc20:
		tb, err := r.gateway.GetTokenBalance(ctx, req.Token)
		if err != nil {
			return Response{}, err
		}
		decimals := tb.Decimals
		return Response{OK: true, Symbol: tb.Symbol, Decimals: &decimals, Balance: tb.Balance}, nil

	case TypeSendTx:
		hash, err := r.gateway.SendNative(ctx, req.To, req.ValueEth)
		if err != nil {
			return Response{}, err
		}
		return Response{OK: true, Hash: hash}, nil

	case TypeSendErc20:
		if req.Decimals == nil {
			return Response{}, errors.New("decimals is required")
		}
		hash, err := r.gateway.SendToken(ctx, req.Token, req.To, req.Amount, *req.Decimals)
		if err != nil {
			return Response{}, err
		}
		return Response{OK: true, Hash: hash}, nil

	case TypeSetNetwork:
		n, err := r.gateway.SetNetwork(ctx, req.Net)
		if err != nil {
			return Response{}, err
		}
		return Response{OK: true, Network: n.NetworkName, ChainID: n.ChainID}, nil

	case TypeGetNetwork:
		n := r.gateway.Network()
		return Response{OK: true, Network: n.NetworkName, ChainID: n.ChainID}, nil

	case TypeGetPrivateKey:
		key, err := r.custody.ExportPrivateKey(ctx, req.Password)
		if err != nil {
			return Response{}, err
		}
		return Response{OK: true, PrivateKey: key}, nil

	case TypeGetMnemonic:
		m, err := r.custody.ExportMnemonic(ctx, req.Password)
		if err != nil {
			return Response{}, err
		}
		return Response{OK: true, Mnemonic: m}, nil

	case TypeStatus:
		has, err := r.custody.HasVault(ctx)
		if err != nil {
			return Response{}, err
		}
		unlocked := r.custody.CurrentAddress() != nil
		return Response{
			OK:       true,
			HasVault: &has,
			Unlocked: &unlocked,
			Network:  r.gateway.Network().NetworkName,
			Version:  r.version,
		}, nil

	case TypeAddToken, TypeListTokens, TypeRemoveToken:
		return r.routeTokens(ctx, tag, req)

	default:
		return Response{}, errors.New(errUnknownMessage)
	}
}

func (r *Router) routeTokens(ctx context.Context, tag string, req Request) (Response, error) {
	if r.assets == nil {
		return Response{}, errors.New("token list is not available")
	}
	network := r.gateway.Network().NetworkName

	switch tag {
	case TypeAddToken:
		var balance string
		a, err := r.assets.Add(ctx, network, req.Token, func(ctx context.Context, token common.Address) (assets.Asset, error) {
			tb, err := r.gateway.GetTokenBalance(ctx, token.Hex())
			if err != nil {
				return assets.Asset{}, err
			}
			balance = tb.Balance
			return assets.Asset{Symbol: tb.Symbol, Decimals: tb.Decimals}, nil
		})
		if err != nil {
			return Response{}, err
		}
		decimals := a.Decimals
		return Response{OK: true, Symbol: a.Symbol, Decimals: &decimals, Balance: balance, Tokens: []assets.Asset{a}}, nil

	case TypeRemoveToken:
		if err := r.assets.Remove(ctx, network, req.Token); err != nil {
			return Response{}, err
		}
		fallthrough

	default:
		list, err := r.assets.List(ctx, network)
		if err != nil {
			return Response{}, err
		}
		return Response{OK: true, Network: network, Tokens: list}, nil
	}
}

// logFailure logs the error and tag only. Request payloads can hold secrets.
func logFailure(reqID, tag string, err error) {
	switch {
	case errors.Is(err, wtypes.ErrNetwork):
		log.Error("router: request failed", "request_id", reqID, "type", tag, "error", err)
	default:
		log.Warn("router: request rejected", "request_id", reqID, "type", tag, "error", err)
	}
}
