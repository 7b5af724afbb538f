package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/idledger/internal/core/domain"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage ledger settings",
	Long: `View and change the settings in <home>/config.toml.

Keys use dot notation, for example storage.backend or registry.strict.`,
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show every setting with its effective value",
	Args:  cobra.NoArgs,
	RunE:  runConfigList,
}

var configGetCmd = &cobra.Command{
	Use:   "get [key]",
	Short: "Print the effective value of a setting",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Change a setting",
	Long: `Validate and store a setting. List values are comma-separated:

  idledger config set import.patterns '**/*.md,**/*.mdx'`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

func init() {
	for _, c := range []*cobra.Command{configListCmd, configGetCmd, configSetCmd} {
		c.Annotations = map[string]string{openMode: openSettingsOnly}
	}
	configCmd.AddCommand(configListCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigList(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	values, err := settingValues()
	if err != nil {
		return err
	}
	for _, key := range settingsService.Keys() {
		cmd.Printf("%s = %s\n", key, values[key])
	}
	return nil
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	values, err := settingValues()
	if err != nil {
		return err
	}
	value, ok := values[args[0]]
	if !ok {
		return fmt.Errorf("%w: unknown config key %q", domain.ErrInvalidInput, args[0])
	}
	cmd.Println(value)
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	if err := settingsService.Set(args[0], args[1]); err != nil {
		return fmt.Errorf("failed to set %s: %w", args[0], err)
	}
	cmd.Printf("Set %s = %s\n", args[0], args[1])
	return nil
}

// settingValues renders the effective settings keyed by dot-notation name.
func settingValues() (map[string]string, error) {
	s, err := settingsService.Get()
	if err != nil {
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}
	return map[string]string{
		"storage.backend":         s.Storage.Backend.String(),
		"storage.cards_dir":       s.Storage.CardsDir,
		"storage.ledger_path":     s.Storage.LedgerPath,
		"storage.registry_path":   s.Storage.RegistryPath,
		"storage.database_path":   s.Storage.DatabasePath,
		"schema.card_path":        s.Schema.CardPath,
		"registry.strict":         strconv.FormatBool(s.Registry.Strict),
		"lifecycle.redeprecate":   string(s.Lifecycle.Redeprecate),
		"lifecycle.merge_workers": strconv.Itoa(s.Lifecycle.MergeWorkers),
		"metrics.textfile":        s.Metrics.Textfile,
		"import.semver":           s.Import.SemVer,
		"import.owner":            s.Import.Owner,
		"import.contract_type":    s.Import.ContractType,
		"import.patterns":         strings.Join(s.Import.Patterns, ","),
	}, nil
}
