// Command idledger manages stable document identities and their ledger.
package main

import (
	"os"

	"github.com/custodia-labs/idledger/internal/adapters/driving/cli"
	"github.com/custodia-labs/idledger/internal/app"
	"github.com/custodia-labs/idledger/internal/core/ports/driving"
)

func main() {
	os.Exit(cli.Execute(cli.Openers{
		Services: openServices,
		Settings: openSettings,
	}))
}

func openServices(flag string) (*cli.Services, error) {
	home, err := app.ResolveHome(flag)
	if err != nil {
		return nil, err
	}
	a, err := app.Open(home)
	if err != nil {
		return nil, err
	}
	return &cli.Services{
		Lifecycle: a.Lifecycle,
		Cards:     a.Cards,
		Registry:  a.Registry,
		Export:    a.Export,
		History:   a.History,
		Reconcile: a.Reconcile,
		Import:    a.Import,
		Settings:  a.SettingsService,
		Close:     a.Close,
	}, nil
}

func openSettings(flag string) (driving.SettingsService, error) {
	home, err := app.ResolveHome(flag)
	if err != nil {
		return nil, err
	}
	return app.OpenSettings(home)
}
