package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/quantumauth-io/pyro-wing-wallet/internal/app"
	"github.com/quantumauth-io/pyro-wing-wallet/internal/config"
	"github.com/quantumauth-io/pyro-wing-wallet/internal/constants"
	clienthttp "github.com/quantumauth-io/pyro-wing-wallet/internal/http"
	"github.com/quantumauth-io/pyro-wing-wallet/internal/nativemsg"
	"github.com/quantumauth-io/pyro-wing-wallet/internal/securefile"
	"github.com/quantumauth-io/quantum-go-utils/log"
)

var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

func main() {
	// The logger writes to stdout, which native messaging needs for frames.
	protoOut, claimErr := nativemsg.ClaimStdout()

	log.Info("pyro-wing-wallet",
		"version", Version,
		"commit", Commit,
		"build_date", BuildDate,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("failed to parse config", "error", err)
	}
	if err = cfg.ApplyRPCEnv(); err != nil {
		log.Fatal("failed to apply rpc overrides", "error", err)
	}

	wallet, err := app.New(ctx, cfg, app.WithVersion(Version))
	if err != nil {
		log.Error("wallet init failed", "error", err)
		return
	}
	defer func() {
		if err = wallet.Close(); err != nil {
			log.Error("wallet close failed", "error", err)
		}
	}()

	switch cfg.Host.Transport {
	case config.TransportHTTP:
		if protoOut != nil {
			_ = protoOut.Close()
		}
		token, err := issueAgentToken(cfg)
		if err != nil {
			log.Error("agent token", "error", err)
			return
		}
		server := clienthttp.NewServer(wallet.Router, clienthttp.Config{
			LocalHost:      cfg.Host.LocalHost,
			Port:           cfg.Host.Port,
			AllowedOrigins: cfg.Host.AllowedOrigins,
			Version:        Version,
			SessionToken:   token,
		})
		if err = server.Run(ctx); err != nil {
			log.Error("HTTP agent error", "error", err)
		}

	default:
		if claimErr != nil {
			log.Error("native host unavailable", "error", claimErr)
			return
		}
		defer protoOut.Close()
		serveNative(ctx, wallet, protoOut, cfg.Host.NativeInflight)
	}
}

// issueAgentToken writes the session token beside the vault, or into the
// default data dir when storage is in memory.
func issueAgentToken(cfg *config.Config) (string, error) {
	dir := cfg.Storage.Dir
	if dir == "" {
		var err error
		if dir, err = securefile.DefaultDataDir(constants.AppName); err != nil {
			return "", err
		}
	}
	token, err := clienthttp.IssueSessionToken(dir)
	if err != nil {
		return "", err
	}
	log.Info("HTTP agent token written", "dir", dir)
	return token, nil
}

// serveNative runs until the browser closes stdin or a signal arrives.
func serveNative(ctx context.Context, wallet *app.App, out io.Writer, inflight int) {
	host := nativemsg.NewHost(wallet.Router, nativemsg.WithInflight(inflight))

	done := make(chan error, 1)
	go func() {
		done <- host.Serve(ctx, os.Stdin, out)
	}()

	select {
	case err := <-done:
		if err != nil {
			log.Error("native host stopped", "error", err)
			return
		}
		log.Info("native host: stdin closed")
	case <-ctx.Done():
		log.Info("shutdown signal received")
	}
}
