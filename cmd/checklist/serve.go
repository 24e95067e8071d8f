package main

import (
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"shift-checklist/internal/auth"
	"shift-checklist/internal/session"
	"shift-checklist/internal/web"
)

var addrFlag string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the checklist web server",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&addrFlag, "addr", "", "listen address (overrides server.addr)")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	gate, err := auth.NewGate(cfg.Auth.Password)
	if err != nil {
		return err
	}
	sessions := session.NewManager(session.Options{
		Secure:  cfg.Server.SecureCookies,
		IdleTTL: cfg.GetSessionIdleTTL(),
		Logger:  logger.Named("session"),
	})
	go sessions.Run(ctx.Done(), 10*time.Minute)

	repo := newRepository()
	srv, err := web.New(web.Options{
		Catalog:       cfg.Catalog(),
		Layout:        cfg.GetLayout(),
		Gate:          gate,
		Sessions:      sessions,
		History:       repo,
		CSRFKey:       []byte(cfg.Server.CSRFKey),
		SecureCookies: cfg.Server.SecureCookies,
		Logger:        logger.Named("web"),
	})
	if err != nil {
		return err
	}

	addr := cfg.Server.Addr
	if addrFlag != "" {
		addr = addrFlag
	}
	logger.Info("starting checklist",
		zap.String("history", repo.Path()),
		zap.String("shape", string(repo.Shape())),
		zap.Bool("require_operator", cfg.Checklist.RequireOperator))
	return srv.Serve(ctx, addr, cfg.GetShutdownTimeout())
}
