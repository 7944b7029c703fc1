package system

import (
	"errors"
	"fmt"

	"github.com/julianstephens/limitless/internal/cli"
	"github.com/julianstephens/limitless/internal/constants"
	"github.com/julianstephens/limitless/internal/keyring"
	"github.com/julianstephens/limitless/internal/storage/postgres"
)

// KeyringSetCmd stores the PostgreSQL connection string in the OS keyring
type KeyringSetCmd struct {
	ConnectionString string `arg:"" help:"PostgreSQL connection string (URL or DSN)."`
}

func (cmd *KeyringSetCmd) Run(ctx *cli.Context) error {
	if _, err := postgres.ValidateConnString(cmd.ConnectionString); err != nil {
		if !errors.Is(err, postgres.ErrEmbeddedCredentials) {
			return fmt.Errorf("invalid connection string: %w", err)
		}
		fmt.Println(cli.WarningStyle.Render("⚠  The connection string embeds a password."))
		fmt.Println("   The server refuses such strings; keep the password in .pgpass or PGPASSWORD.")
		return err
	}

	if err := keyring.SetConnectionString(cmd.ConnectionString); err != nil {
		return err
	}
	fmt.Println(cli.SuccessStyle.Render("✓ Connection string stored in OS keyring"))
	fmt.Printf("  Start the server with --storage %s\n", constants.StoragePostgres)
	return nil
}

// KeyringGetCmd prints the stored connection string with the password masked
type KeyringGetCmd struct{}

func (cmd *KeyringGetCmd) Run(ctx *cli.Context) error {
	connStr, err := keyring.GetConnectionString()
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return fmt.Errorf("no connection string in keyring, use '%s keyring set' to store one", constants.AppName)
		}
		return err
	}
	fmt.Println(keyring.Mask(connStr))
	return nil
}

// KeyringDeleteCmd removes the stored connection string
type KeyringDeleteCmd struct{}

func (cmd *KeyringDeleteCmd) Run(ctx *cli.Context) error {
	if err := keyring.DeleteConnectionString(); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return errors.New("no connection string found in keyring")
		}
		return err
	}
	fmt.Println(cli.SuccessStyle.Render("✓ Connection string deleted from OS keyring"))
	return nil
}

// KeyringStatusCmd reports whether the OS keyring is usable
type KeyringStatusCmd struct{}

func (cmd *KeyringStatusCmd) Run(ctx *cli.Context) error {
	if !keyring.IsAvailable() {
		fmt.Println(cli.DangerStyle.Render("✗ OS keyring is not available on this system"))
		return keyring.ErrKeyringUnavailable
	}
	fmt.Println(cli.SuccessStyle.Render("✓ OS keyring is available"))
	if _, err := keyring.GetConnectionString(); err == nil {
		fmt.Println("✓ Connection string is stored")
	} else if errors.Is(err, keyring.ErrNotFound) {
		fmt.Println(cli.MutedStyle.Render("ℹ No connection string stored"))
	}
	return nil
}
