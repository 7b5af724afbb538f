package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/idledger/internal/core/domain"
	"github.com/custodia-labs/idledger/internal/styles"
)

var (
	mintSemVer        string
	mintOwner         string
	mintContractType  string
	mintEffectiveDate string
	mintSupersedes    string

	deprecateReason string
)

var mintCmd = &cobra.Command{
	Use:   "mint [doc-key]",
	Short: "Create a new identity",
	Long: `Mint a permanent identifier for a document key and record a CREATE event.

The key must not be the current key or an alias of any live identity.`,
	Args: cobra.ExactArgs(1),
	RunE: runMint,
}

var rekeyCmd = &cobra.Command{
	Use:   "rekey [id-or-key] [new-key]",
	Short: "Change the key of an identity",
	Long:  `Move the current key to the aliases and make new-key current. The identifier never changes.`,
	Args:  cobra.ExactArgs(2),
	RunE:  runRekey,
}

var deprecateCmd = &cobra.Command{
	Use:   "deprecate [id-or-key]",
	Short: "Retire an identity",
	Args:  cobra.ExactArgs(1),
	RunE:  runDeprecate,
}

var consolidateCmd = &cobra.Command{
	Use:   "consolidate [target] [source...]",
	Short: "Merge identities into a target",
	Long: `Absorb every source into the target and mark each source as merged.

Safe to re-run with the same arguments after a partial failure.`,
	Args: cobra.MinimumNArgs(2),
	RunE: runConsolidate,
}

var fingerprintCmd = &cobra.Command{
	Use:   "fingerprint [file|-] [id-or-key]",
	Short: "Digest document content",
	Long: `Print the content digest of a file, or stdin when the file is "-".

With an identity argument the digest is also recorded on its card.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runFingerprint,
}

func init() {
	mintCmd.Flags().StringVar(&mintSemVer, "semver", "", "semantic version of the document (required)")
	mintCmd.Flags().StringVar(&mintOwner, "owner", "", "owning team or person (required)")
	mintCmd.Flags().StringVar(&mintContractType, "contract-type", "", "document classification (required)")
	mintCmd.Flags().StringVar(&mintEffectiveDate, "effective-date", "", "YYYY-MM-DD (default today)")
	mintCmd.Flags().StringVar(&mintSupersedes, "supersedes", "", "document version this one replaces")

	deprecateCmd.Flags().StringVarP(&deprecateReason, "reason", "r", "", "reason recorded in the ledger")

	rootCmd.AddCommand(mintCmd)
	rootCmd.AddCommand(rekeyCmd)
	rootCmd.AddCommand(deprecateCmd)
	rootCmd.AddCommand(consolidateCmd)
	rootCmd.AddCommand(fingerprintCmd)
}

func runMint(cmd *cobra.Command, args []string) error {
	if lifecycle == nil {
		return errors.New("lifecycle service not configured")
	}

	card, err := lifecycle.Mint(cmd.Context(), domain.MintRequest{
		DocKey:            args[0],
		SemVer:            mintSemVer,
		Owner:             mintOwner,
		ContractType:      mintContractType,
		EffectiveDate:     mintEffectiveDate,
		SupersedesVersion: mintSupersedes,
	})
	if err != nil {
		return fmt.Errorf("mint failed: %w", err)
	}

	s := styles.DefaultStyles()
	cmd.Println(s.Success.Render(fmt.Sprintf("Minted %s", card.DocKey)))
	cmd.Printf("  ID: %s\n", card.ID)
	return nil
}

func runRekey(cmd *cobra.Command, args []string) error {
	if lifecycle == nil {
		return errors.New("lifecycle service not configured")
	}
	ctx := cmd.Context()

	card, err := resolveCard(ctx, args[0])
	if err != nil {
		return err
	}
	if err := lifecycle.Rekey(ctx, card.ID, args[1]); err != nil {
		return fmt.Errorf("rekey failed: %w", err)
	}

	s := styles.DefaultStyles()
	cmd.Println(s.Success.Render(fmt.Sprintf("Rekeyed %s -> %s", card.DocKey, args[1])))
	cmd.Printf("  ID: %s\n", card.ID)
	return nil
}

func runDeprecate(cmd *cobra.Command, args []string) error {
	if lifecycle == nil {
		return errors.New("lifecycle service not configured")
	}
	ctx := cmd.Context()

	card, err := resolveCard(ctx, args[0])
	if err != nil {
		return err
	}
	if err := lifecycle.Deprecate(ctx, card.ID, deprecateReason); err != nil {
		return fmt.Errorf("deprecate failed: %w", err)
	}

	s := styles.DefaultStyles()
	cmd.Println(s.Success.Render(fmt.Sprintf("Deprecated %s", card.DocKey)))
	cmd.Printf("  ID: %s\n", card.ID)
	return nil
}

func runConsolidate(cmd *cobra.Command, args []string) error {
	if lifecycle == nil {
		return errors.New("lifecycle service not configured")
	}
	ctx := cmd.Context()

	target, err := resolveID(ctx, args[0])
	if err != nil {
		return err
	}
	sources := make([]string, 0, len(args)-1)
	for _, arg := range args[1:] {
		id, err := resolveID(ctx, arg)
		if errors.Is(err, domain.ErrNotFound) {
			// Missing sources are absorbed by identifier.
			id, err = arg, nil
		}
		if err != nil {
			return err
		}
		sources = append(sources, id)
	}

	if err := lifecycle.Consolidate(ctx, target, sources); err != nil {
		return fmt.Errorf("consolidate failed: %w", err)
	}

	s := styles.DefaultStyles()
	cmd.Println(s.Success.Render(fmt.Sprintf("Consolidated into %s", target)))
	cmd.Printf("  Sources: %s\n", strings.Join(sources, ", "))
	return nil
}

func runFingerprint(cmd *cobra.Command, args []string) error {
	if lifecycle == nil {
		return errors.New("lifecycle service not configured")
	}
	ctx := cmd.Context()

	content, err := readInput(cmd, args[0])
	if err != nil {
		return err
	}

	var id string
	if len(args) == 2 {
		if id, err = resolveID(ctx, args[1]); err != nil {
			return err
		}
	}

	digest, err := lifecycle.UpdateFingerprint(ctx, id, content)
	if err != nil {
		return fmt.Errorf("fingerprint failed: %w", err)
	}
	cmd.Println(digest)
	return nil
}

// readInput reads a file, or the command's input when path is "-".
func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}
