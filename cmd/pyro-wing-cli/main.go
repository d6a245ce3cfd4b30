package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/kelseyhightower/envconfig"
	"github.com/quantumauth-io/pyro-wing-wallet/internal/app"
	"github.com/quantumauth-io/pyro-wing-wallet/internal/config"
	"github.com/quantumauth-io/pyro-wing-wallet/internal/prompt"
	"github.com/quantumauth-io/quantum-go-utils/log"
)

var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

// Settings are CLI-only knobs read from PYRO_CLI_*.
type Settings struct {
	Network string `envconfig:"NETWORK"`
	JSON    bool   `envconfig:"JSON" default:"false"`
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var settings Settings
	if err := envconfig.Process("PYRO_CLI", &settings); err != nil {
		log.Fatal("failed to process cli env", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("failed to parse config", "error", err)
	}
	if err = cfg.ApplyRPCEnv(); err != nil {
		log.Fatal("failed to apply rpc overrides", "error", err)
	}

	wallet, err := app.New(ctx, cfg, app.WithVersion(Version))
	if err != nil {
		log.Fatal("wallet init failed", "error", err)
	}

	c := &cli{
		router:   wallet.Router,
		prompt:   prompt.Terminal(),
		out:      os.Stdout,
		settings: settings,
	}
	err = c.run(ctx, os.Args[1], os.Args[2:])
	if cerr := wallet.Close(); cerr != nil {
		log.Error("wallet close failed", "error", cerr)
	}
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func usage() {
	_, _ = fmt.Fprintf(os.Stderr, `pyro-wing-cli %s (%s, %s)

usage: pyro-wing-cli <command> [flags]

commands:
  status                          vault and network status
  create [-import]                create a vault (new or imported mnemonic)
  import-key                      create a vault from a private key
  address                         print the account address
  balance [-token addr]           native or ERC-20 balance
  send -to addr -value eth        send ether
  send-token -token addr -to addr -amount n -decimals d
  export-key | export-mnemonic    reveal secrets after re-entering the password
  reset                           delete the vault
`, Version, Commit, BuildDate)
}
