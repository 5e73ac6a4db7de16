package commands

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"groscore/internal/app"
	identitysvc "groscore/internal/services/identity"
	"groscore/internal/store"
)

var (
	configPath string
	home       string
	passphrase string
)

func Execute() error {
	root := &cobra.Command{
		Use:          "groscore",
		Short:        "Group OSCORE security context tool",
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "TOML configuration file")
	root.PersistentFlags().StringVar(&home, "home", "", "identity dir (default from config or ~/.groscore)")
	root.PersistentFlags().StringVarP(&passphrase, "passphrase", "p", "", "passphrase sealing the identity key")

	root.AddCommand(
		keygenCmd(),
		fingerprintCmd(),
		pubkeyCmd(),
		protectCmd(),
		unprotectCmd(),
		stateCmd(),
	)
	return root.Execute()
}

func loadConfig() (*app.Config, error) {
	cfg, err := app.LoadFile(configPath)
	if err != nil {
		return nil, err
	}
	if home != "" {
		cfg.Identity.Home = home
	}
	return cfg, nil
}

// identityService resolves the identity directory from --home, then the
// config file, then the default.
func identityService() (*identitysvc.Service, error) {
	dir := home
	if dir == "" && configPath != "" {
		cfg, err := loadConfig()
		if err != nil {
			return nil, err
		}
		dir = cfg.Identity.Home
	}
	if dir == "" {
		h, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		dir = filepath.Join(h, ".groscore")
	}
	return identitysvc.New(store.NewIdentityFileStore(dir)), nil
}

func openWire() (*app.Wire, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return app.NewWire(cfg, passphrase)
}
