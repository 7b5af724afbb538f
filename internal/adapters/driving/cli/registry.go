package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/idledger/internal/core/domain"
)

var registryCmd = &cobra.Command{
	Use:   "registry",
	Short: "Build and query the key registry",
	Long: `The registry maps every current key and alias to its identifier.
It is derived from the cards and can be rebuilt at any time.`,
}

var registryBuildCmd = &cobra.Command{
	Use:   "build",
	Short: "Rebuild and write the registry file",
	Args:  cobra.NoArgs,
	RunE:  runRegistryBuild,
}

var registryLookupCmd = &cobra.Command{
	Use:   "lookup [key]",
	Short: "Print the identifier for a key or alias",
	Args:  cobra.ExactArgs(1),
	RunE:  runRegistryLookup,
}

var registryWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Rebuild the registry whenever cards change",
	Long:  `Watch the cards directory and rewrite the registry file after each change. Stops on interrupt.`,
	Args:  cobra.NoArgs,
	RunE:  runRegistryWatch,
}

func init() {
	registryCmd.AddCommand(registryBuildCmd)
	registryCmd.AddCommand(registryLookupCmd)
	registryCmd.AddCommand(registryWatchCmd)
	rootCmd.AddCommand(registryCmd)
}

func runRegistryBuild(cmd *cobra.Command, _ []string) error {
	if registryService == nil {
		return errors.New("registry service not configured")
	}

	reg, err := registryService.Persist(cmd.Context())
	if err != nil {
		return fmt.Errorf("registry build failed: %w", err)
	}
	cmd.Printf("Registry written: %d identities, %d keys\n", reg.Len(), len(reg.ByKey))
	return nil
}

func runRegistryLookup(cmd *cobra.Command, args []string) error {
	if registryService == nil {
		return errors.New("registry service not configured")
	}

	id, err := registryService.Lookup(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	cmd.Println(id)
	return nil
}

func runRegistryWatch(cmd *cobra.Command, _ []string) error {
	if registryService == nil {
		return errors.New("registry service not configured")
	}

	cmd.Println("Watching for card changes (Ctrl+C to stop)")
	err := registryService.Watch(cmd.Context(), func(reg *domain.Registry, err error) {
		if err != nil {
			cmd.PrintErrf("Registry rebuild failed: %v\n", err)
			return
		}
		cmd.Printf("Registry written: %d identities\n", reg.Len())
	})
	if errors.Is(err, cmd.Context().Err()) {
		return nil
	}
	return err
}
