package cli

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/idledger/internal/core/domain"
)

var showFollow bool

var showCmd = &cobra.Command{
	Use:   "show [id-or-key]",
	Short: "Show an identity card",
	Long: `Print the card for an identifier, current key or alias.

With --follow, merged identities are followed to the surviving card.`,
	Args: cobra.ExactArgs(1),
	RunE: runShow,
}

func init() {
	showCmd.Flags().BoolVarP(&showFollow, "follow", "f", false, "follow merges to the surviving identity")
	rootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	if cardService == nil {
		return errors.New("card service not configured")
	}
	ctx := cmd.Context()

	var (
		card *domain.Card
		err  error
	)
	if showFollow {
		card, err = cardService.Follow(ctx, args[0])
	} else {
		card, err = cardService.Resolve(ctx, args[0])
	}
	if err != nil {
		return err
	}

	printCard(cmd, card)
	return nil
}

func printCard(cmd *cobra.Command, card *domain.Card) {
	cmd.Printf("ID:            %s\n", card.ID)
	cmd.Printf("Key:           %s\n", card.DocKey)
	cmd.Printf("Status:        %s\n", card.Status)
	cmd.Printf("Version:       %d\n", card.Version)
	cmd.Printf("SemVer:        %s\n", card.SemVer)
	cmd.Printf("Owner:         %s\n", card.Owner)
	cmd.Printf("Contract type: %s\n", card.ContractType)
	cmd.Printf("Effective:     %s\n", card.EffectiveDate)
	if len(card.Aliases) > 0 {
		cmd.Printf("Aliases:       %s\n", strings.Join(card.Aliases, ", "))
	}
	if card.SupersedesVersion != nil {
		cmd.Printf("Supersedes:    %s\n", *card.SupersedesVersion)
	}
	if len(card.Absorbs) > 0 {
		cmd.Printf("Absorbs:       %s\n", strings.Join(card.Absorbs, ", "))
	}
	if card.IsMerged() {
		cmd.Printf("Merged into:   %s\n", card.MergedIntoID())
	}
	if fp := card.FingerprintValue(); fp != "" {
		cmd.Printf("Fingerprint:   %s\n", fp)
	}
}
