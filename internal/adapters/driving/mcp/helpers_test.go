package mcp

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/idledger/internal/adapters/driven/export"
	"github.com/custodia-labs/idledger/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/idledger/internal/core/domain"
	"github.com/custodia-labs/idledger/internal/core/services"
)

const (
	activeID = "01J9ZQ4N8M0000000000000001"
	mergedID = "01J9ZQ4N8M0000000000000002"
)

// stubFingerprinter returns a fixed digest and records the id it was called with.
type stubFingerprinter struct {
	digest string
	err    error
	gotID  string
}

func (s *stubFingerprinter) UpdateFingerprint(_ context.Context, id string, _ []byte) (string, error) {
	s.gotID = id
	return s.digest, s.err
}

func newTestPorts(t *testing.T) *Ports {
	t.Helper()
	ctx := context.Background()
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	req := domain.MintRequest{DocKey: "SEC-01", SemVer: "1.0.0", Owner: "Security", ContractType: "policy"}
	active := domain.NewCard(activeID, req, "2024-03-01").
		Next(domain.ChangeKey("SEC-ACCESS"), domain.Absorb(mergedID))
	req.DocKey = "SEC-OLD"
	merged := domain.NewCard(mergedID, req, "2024-03-01").Next(domain.MergeInto(activeID))

	cards := memory.NewCardStore()
	require.NoError(t, cards.Save(ctx, active))
	require.NoError(t, cards.Save(ctx, merged))

	ledger := memory.NewLedger()
	require.NoError(t, ledger.Append(ctx, domain.NewCreateEvent(active, at)))
	require.NoError(t, ledger.Append(ctx, domain.NewCreateEvent(merged, at)))
	require.NoError(t, ledger.Append(ctx, domain.NewRekeyEvent(active, "SEC-01", at.Add(time.Hour))))
	require.NoError(t, ledger.Append(ctx, domain.NewConsolidateEvent(active, []string{mergedID}, at.Add(2*time.Hour))))

	registry := services.NewRegistryService(cards, nil, nil, true)
	return &Ports{
		Cards:       services.NewCardService(cards),
		History:     services.NewHistoryService(ledger),
		Export:      services.NewExportService(registry, export.All()...),
		Fingerprint: &stubFingerprinter{digest: "abc123"},
	}
}

func newTestServer(t *testing.T, ports *Ports) *Server {
	t.Helper()
	server, err := NewServer(ports)
	require.NoError(t, err)
	return server
}
