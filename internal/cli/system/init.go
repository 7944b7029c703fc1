package system

import (
	"fmt"

	"github.com/julianstephens/limitless/internal/badges"
	"github.com/julianstephens/limitless/internal/cli"
)

type InitCmd struct{}

func (cmd *InitCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Init(); err != nil {
		return err
	}
	fmt.Printf("Initialized %s storage at: %s\n", ctx.Store.Kind(), ctx.Store.GetConfigPath())

	catalog, err := badges.LoadCatalog(ctx.Config.DataDir)
	if err != nil {
		return fmt.Errorf("storage is ready but the badge catalog is invalid: %w", err)
	}
	fmt.Printf("Badge catalog: %d badges, %d missions\n", len(catalog.Badges), len(catalog.Missions))
	return nil
}
