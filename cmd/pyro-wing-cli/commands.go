package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"

	"github.com/cockroachdb/errors"
	"github.com/quantumauth-io/pyro-wing-wallet/internal/prompt"
	"github.com/quantumauth-io/pyro-wing-wallet/internal/router"
)

type handler interface {
	Handle(ctx context.Context, req router.Request) router.Response
}

type cli struct {
	router   handler
	prompt   *prompt.Prompter
	out      io.Writer
	settings Settings
}

func (c *cli) run(ctx context.Context, cmd string, args []string) error {
	if c.settings.Network != "" {
		if _, err := c.call(ctx, router.Request{Type: router.TypeSetNetwork, Net: c.settings.Network}); err != nil {
			return err
		}
	}

	switch cmd {
	case "status":
		return c.print(c.call(ctx, router.Request{Type: router.TypeStatus}))
	case "create":
		return c.create(ctx, args)
	case "import-key":
		return c.importKey(ctx)
	case "address":
		return c.withUnlock(ctx, router.Request{Type: router.TypeGetAddress})
	case "balance":
		return c.balance(ctx, args)
	case "send":
		return c.send(ctx, args)
	case "send-token":
		return c.sendToken(ctx, args)
	case "export-key":
		return c.export(ctx, router.TypeGetPrivateKey)
	case "export-mnemonic":
		return c.export(ctx, router.TypeGetMnemonic)
	case "reset":
		if !c.prompt.YesNo("Delete the vault? This cannot be undone") {
			return errors.New("aborted")
		}
		return c.print(c.call(ctx, router.Request{Type: router.TypeResetVault}))
	default:
		usage()
		return errors.Newf("unknown command %q", cmd)
	}
}

// call turns an ok:false response into an error.
func (c *cli) call(ctx context.Context, req router.Request) (router.Response, error) {
	resp := c.router.Handle(ctx, req)
	if !resp.OK {
		if resp.Error == "" {
			return resp, errors.Newf("%s: not ok", req.Type)
		}
		return resp, errors.New(resp.Error)
	}
	return resp, nil
}

func (c *cli) unlock(ctx context.Context) error {
	pw, err := c.prompt.Secret("Password")
	if err != nil {
		return err
	}
	_, err = c.call(ctx, router.Request{Type: router.TypeUnlock, Password: pw})
	return err
}

func (c *cli) withUnlock(ctx context.Context, req router.Request) error {
	if err := c.unlock(ctx); err != nil {
		return err
	}
	return c.print(c.call(ctx, req))
}

func (c *cli) create(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("create", flag.ContinueOnError)
	imp := fs.Bool("import", false, "import an existing mnemonic")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var mnemonic string
	if *imp {
		m, err := c.prompt.Secret("Mnemonic")
		if err != nil {
			return err
		}
		mnemonic = m
	}
	pw, err := c.prompt.NewPassword("Password")
	if err != nil {
		return err
	}

	resp, err := c.call(ctx, router.Request{Type: router.TypeCreateVault, Password: pw, Mnemonic: mnemonic})
	if err != nil {
		return err
	}
	if !*imp {
		_, _ = fmt.Fprintln(c.out, "Write down your recovery phrase:")
		_, _ = fmt.Fprintln(c.out, resp.Mnemonic)
		return nil
	}
	_, _ = fmt.Fprintln(c.out, "vault created")
	return nil
}

func (c *cli) importKey(ctx context.Context) error {
	key, err := c.prompt.Secret("Private key (0x...)")
	if err != nil {
		return err
	}
	pw, err := c.prompt.NewPassword("Password")
	if err != nil {
		return err
	}
	return c.print(c.call(ctx, router.Request{Type: router.TypeCreateVaultFromPrivateKey, Password: pw, PrivateKey: key}))
}

func (c *cli) balance(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("balance", flag.ContinueOnError)
	token := fs.String("token", "", "ERC-20 contract address")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *token != "" {
		return c.withUnlock(ctx, router.Request{Type: router.TypeGetErc20, Token: *token})
	}
	return c.withUnlock(ctx, router.Request{Type: router.TypeGetBalance})
}

func (c *cli) send(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("send", flag.ContinueOnError)
	to := fs.String("to", "", "recipient address")
	value := fs.String("value", "", "amount in ether")
	if err := fs.Parse(args); err != nil {
		return err
	}
	return c.withUnlock(ctx, router.Request{Type: router.TypeSendTx, To: *to, ValueEth: *value})
}

func (c *cli) sendToken(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("send-token", flag.ContinueOnError)
	token := fs.String("token", "", "ERC-20 contract address")
	to := fs.String("to", "", "recipient address")
	amount := fs.String("amount", "", "amount in token units")
	decimals := fs.Uint("decimals", 18, "token decimals")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *decimals > 255 {
		return errors.Newf("decimals %d out of range", *decimals)
	}
	d := uint8(*decimals)
	return c.withUnlock(ctx, router.Request{Type: router.TypeSendErc20, Token: *token, To: *to, Amount: *amount, Decimals: &d})
}

func (c *cli) export(ctx context.Context, tag string) error {
	if err := c.unlock(ctx); err != nil {
		return err
	}
	pw, err := c.prompt.Secret("Confirm password")
	if err != nil {
		return err
	}
	return c.print(c.call(ctx, router.Request{Type: tag, Password: pw}))
}

func (c *cli) print(resp router.Response, err error) error {
	if err != nil {
		return err
	}
	if c.settings.JSON {
		enc := json.NewEncoder(c.out)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	}

	switch {
	case resp.Address != nil:
		_, _ = fmt.Fprintln(c.out, *resp.Address)
	case resp.Hash != "":
		_, _ = fmt.Fprintln(c.out, resp.Hash)
	case resp.Balance != "":
		sym := resp.Symbol
		if sym == "" {
			sym = "ETH"
		}
		_, _ = fmt.Fprintf(c.out, "%s %s\n", resp.Balance, sym)
	case resp.PrivateKey != "":
		_, _ = fmt.Fprintln(c.out, resp.PrivateKey)
	case resp.Mnemonic != "":
		_, _ = fmt.Fprintln(c.out, resp.Mnemonic)
	case resp.HasVault != nil:
		_, _ = fmt.Fprintf(c.out, "vault: %t\nunlocked: %t\nnetwork: %s\nversion: %s\n",
			*resp.HasVault, resp.Unlocked != nil && *resp.Unlocked, resp.Network, resp.Version)
	default:
		_, _ = fmt.Fprintln(c.out, "ok")
	}
	return nil
}
