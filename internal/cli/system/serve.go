package system

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/julianstephens/limitless/internal/cli"
	"github.com/julianstephens/limitless/internal/logger"
	"github.com/julianstephens/limitless/internal/server"
)

const sweepInterval = time.Minute

type ServeCmd struct{}

func (cmd *ServeCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Init(); err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	a, err := ctx.App()
	if err != nil {
		return err
	}
	defer a.Close()

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(sigCtx)
	srv := server.NewServer(a)
	g.Go(func() error {
		return srv.Run(gctx)
	})
	g.Go(func() error {
		return a.Archive.Sweep(gctx, a.Clock, sweepInterval)
	})

	logger.Info("Serving daily documents",
		"addr", a.Config.Addr,
		"storage", a.Provider.Kind(),
		"data", a.Provider.GetConfigPath(),
		"today", a.Today(),
	)
	return g.Wait()
}
