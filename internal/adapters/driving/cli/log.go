package cli

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/idledger/internal/core/domain"
)

var (
	logType  string
	logSince string
	logLimit int
)

var logCmd = &cobra.Command{
	Use:   "log [id-or-key]",
	Short: "Show ledger events",
	Long: `Print ledger events in append order, optionally for one identity.

--since accepts a date (2006-01-02) or an RFC 3339 timestamp.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLog,
}

func init() {
	logCmd.Flags().StringVarP(&logType, "type", "t", "", "only events of this type (CREATE, REKEY, ...)")
	logCmd.Flags().StringVar(&logSince, "since", "", "only events at or after this time")
	logCmd.Flags().IntVarP(&logLimit, "limit", "n", 0, "show only the last n events (0 = all)")
	rootCmd.AddCommand(logCmd)
}

func runLog(cmd *cobra.Command, args []string) error {
	if historyService == nil {
		return errors.New("history service not configured")
	}
	ctx := cmd.Context()

	filter := domain.EventFilter{Limit: logLimit}
	if len(args) == 1 {
		id, err := resolveID(ctx, args[0])
		if err != nil {
			return err
		}
		filter.ID = id
	}
	if logType != "" {
		t, err := domain.ParseEventType(strings.ToUpper(logType))
		if err != nil {
			return err
		}
		filter.Type = t
	}
	if logSince != "" {
		since, err := parseSince(logSince)
		if err != nil {
			return err
		}
		filter.Since = since
	}

	events, err := historyService.Events(ctx, filter)
	if err != nil {
		return fmt.Errorf("failed to read ledger: %w", err)
	}
	if len(events) == 0 {
		cmd.Println("No events found.")
		return nil
	}

	for _, e := range events {
		cmd.Printf("%s  %-18s %s  %s%s\n",
			e.Timestamp.UTC().Format(time.RFC3339), e.Type, e.ID, e.DocKey, formatData(e.Data))
	}
	return nil
}

func parseSince(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(domain.EffectiveDateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: invalid --since %q", domain.ErrInvalidInput, s)
	}
	return t, nil
}

// formatData renders a payload as sorted key=value pairs.
func formatData(data map[string]any) string {
	if len(data) == 0 {
		return ""
	}
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, data[k]))
	}
	return "  " + strings.Join(parts, " ")
}
